package config

import (
	"os"
	"strconv"
	"strings"
)

// ApplyEnv overrides configuration from environment variables.
// Unset variables leave the loaded values alone.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv("TMS_ADDR")); v != "" {
		c.Server.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("TMS_DATA_DIR")); v != "" {
		c.Server.DataDir = v
	}
	if v := getEnvInt("TMS_MAX_OWNERS_PER_ASSIGNMENT"); v > 0 {
		c.Tasks.Generation.MaxOwnersPerAssignment = v
	}
	if v := getEnvInt("TMS_REVISION_MAX_DAYS"); v > 0 {
		c.Revisions.Default.MaxDays = v
	}
	if v := getEnvInt("TMS_REVISION_LIMIT"); v > 0 {
		c.Revisions.Default.RevisionLimit = v
	}
	if v := strings.TrimSpace(os.Getenv("TMS_ENABLE_REVISIONS")); v != "" {
		c.Revisions.Default.EnableRevisions = isTruthy(v)
	}
}

func getEnvInt(key string) int {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return num
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
