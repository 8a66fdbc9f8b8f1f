package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_AppliesDefaultsAndOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tms_config.yml")
	yml := `
version: "1"
server:
  addr: ":9090"
revisions:
  default:
    enable_revisions: true
    enable_days_rule: true
  companies:
    acme:
      enable_revisions: true
      max_days: 10
      per_revision_days:
        1: 3
        2: 5
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "data", cfg.Server.DataDir)

	// Defaults fill in the blanks.
	assert.Equal(t, 7, cfg.Revisions.Default.MaxDays)
	assert.Equal(t, 3, cfg.Revisions.Default.RevisionLimit)

	acme, ok := cfg.Revisions.Companies["acme"]
	require.True(t, ok)
	assert.Equal(t, 10, acme.MaxDays)
	assert.Equal(t, map[int]int{1: 3, 2: 5}, acme.PerRevisionDays)

	pol := acme.ToModel()
	assert.True(t, pol.EnableRevisions)
	assert.Equal(t, 10, pol.MaxDays)
	assert.Equal(t, 3, pol.PerRevisionDays[1])
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestApplyEnv_OverridesLoadedValues(t *testing.T) {
	t.Setenv("TMS_ADDR", ":7070")
	t.Setenv("TMS_DATA_DIR", "/var/lib/tms")
	t.Setenv("TMS_MAX_OWNERS_PER_ASSIGNMENT", "25")
	t.Setenv("TMS_REVISION_MAX_DAYS", "14")
	t.Setenv("TMS_REVISION_LIMIT", "5")
	t.Setenv("TMS_ENABLE_REVISIONS", "yes")

	cfg := Default()
	cfg.ApplyEnv()

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "/var/lib/tms", cfg.Server.DataDir)
	assert.Equal(t, 25, cfg.Tasks.Generation.MaxOwnersPerAssignment)
	assert.Equal(t, 14, cfg.Revisions.Default.MaxDays)
	assert.Equal(t, 5, cfg.Revisions.Default.RevisionLimit)
	assert.True(t, cfg.Revisions.Default.EnableRevisions)
}

func TestApplyEnv_GarbageValuesIgnored(t *testing.T) {
	t.Setenv("TMS_REVISION_MAX_DAYS", "not-a-number")
	t.Setenv("TMS_REVISION_LIMIT", "-2")

	cfg := Default()
	before := cfg.Revisions.Default
	cfg.ApplyEnv()

	assert.Equal(t, before.MaxDays, cfg.Revisions.Default.MaxDays)
	assert.Equal(t, before.RevisionLimit, cfg.Revisions.Default.RevisionLimit)
}
