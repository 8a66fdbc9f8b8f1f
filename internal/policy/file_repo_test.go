package policy

import (
	"testing"

	"github.com/Finamite/TMS.finamite-sub001/internal/config"
	"github.com/Finamite/TMS.finamite-sub001/internal/model"
)

func testConfigStore() *ConfigStore {
	cfg := config.Default()
	cfg.Revisions.Default.EnableRevisions = true
	cfg.Revisions.Companies = map[string]config.RevisionPolicy{
		"globex": {EnableRevisions: true, EnableDaysRule: true, MaxDays: 14},
	}
	return NewConfigStore(cfg)
}

func TestConfigStore_Get(t *testing.T) {
	store := testConfigStore()

	if got := store.Get("globex"); !got.EnableDaysRule || got.MaxDays != 14 {
		t.Fatalf("company override not served: %+v", got)
	}
	if got := store.Get("unknown"); !got.EnableRevisions || got.EnableDaysRule {
		t.Fatalf("default policy not served: %+v", got)
	}
}

func TestFileRepo_OverridesAndFallsBack(t *testing.T) {
	dir := t.TempDir()

	repo, err := NewFileRepo(dir, testConfigStore())
	if err != nil {
		t.Fatalf("new file repo: %v", err)
	}

	if err := repo.Set("acme", model.RevisionPolicy{
		EnableRevisions:   true,
		EnableMaxRevision: true,
		RevisionLimit:     9,
	}); err != nil {
		t.Fatalf("set: %v", err)
	}

	if got := repo.Get("acme"); got.RevisionLimit != 9 {
		t.Fatalf("stored override not served: %+v", got)
	}
	// Companies without a stored override fall through to the config store.
	if got := repo.Get("globex"); got.MaxDays != 14 {
		t.Fatalf("fallback not consulted: %+v", got)
	}

	reopened, err := NewFileRepo(dir, testConfigStore())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got := reopened.Get("acme"); got.RevisionLimit != 9 {
		t.Fatalf("override lost across reopen: %+v", got)
	}
}
