package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Finamite/TMS.finamite-sub001/internal/model"
)

type Config struct {
	Version   string    `yaml:"version" json:"version"`
	Server    Server    `yaml:"server" json:"server"`
	Tasks     Tasks     `yaml:"tasks" json:"tasks"`
	Revisions Revisions `yaml:"revisions" json:"revisions"`
}

type Server struct {
	Addr    string `yaml:"addr" json:"addr"`
	DataDir string `yaml:"data_dir" json:"data_dir"`
}

type Tasks struct {
	Generation Generation `yaml:"generation" json:"generation"`
	Approval   Approval   `yaml:"approval" json:"approval"`
}

type Generation struct {
	// MaxOwnersPerAssignment caps a single template fan-out; 0 = no cap.
	MaxOwnersPerAssignment int `yaml:"max_owners_per_assignment" json:"max_owners_per_assignment"`
}

type Approval struct {
	DefaultRequiresApproval bool `yaml:"default_requires_approval" json:"default_requires_approval"`
}

type Revisions struct {
	Default RevisionPolicy `yaml:"default" json:"default"`

	// Companies overrides the default policy per company id.
	Companies map[string]RevisionPolicy `yaml:"companies" json:"companies,omitempty"`
}

type RevisionPolicy struct {
	EnableRevisions              bool        `yaml:"enable_revisions" json:"enable_revisions"`
	EnableDaysRule               bool        `yaml:"enable_days_rule" json:"enable_days_rule"`
	MaxDays                      int         `yaml:"max_days" json:"max_days"`
	PerRevisionDays              map[int]int `yaml:"per_revision_days" json:"per_revision_days,omitempty"`
	EnableMaxRevision            bool        `yaml:"enable_max_revision" json:"enable_max_revision"`
	RevisionLimit                int         `yaml:"revision_limit" json:"revision_limit"`
	RestrictHighPriorityRevision bool        `yaml:"restrict_high_priority_revision" json:"restrict_high_priority_revision"`
}

// ToModel converts the yaml shape into the policy value the core consumes.
func (p RevisionPolicy) ToModel() model.RevisionPolicy {
	per := make(map[int]int, len(p.PerRevisionDays))
	for k, v := range p.PerRevisionDays {
		per[k] = v
	}
	return model.RevisionPolicy{
		EnableRevisions:              p.EnableRevisions,
		EnableDaysRule:               p.EnableDaysRule,
		MaxDays:                      p.MaxDays,
		PerRevisionDays:              per,
		EnableMaxRevision:            p.EnableMaxRevision,
		RevisionLimit:                p.RevisionLimit,
		RestrictHighPriorityRevision: p.RestrictHighPriorityRevision,
	}
}

func Default() *Config {
	c := &Config{}
	c.ApplyDefaults()
	return c
}

func (c *Config) ApplyDefaults() {
	if c.Version == "" {
		c.Version = "1"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.DataDir == "" {
		c.Server.DataDir = "data"
	}
	if c.Revisions.Default.MaxDays <= 0 {
		c.Revisions.Default.MaxDays = 7
	}
	if c.Revisions.Default.RevisionLimit <= 0 {
		c.Revisions.Default.RevisionLimit = 3
	}
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Config
	if err := yaml.Unmarshal(b, &r); err != nil {
		return nil, err
	}
	r.ApplyDefaults()
	return &r, nil
}
