// Package policy supplies each company's revision policy. The core only
// reads policies; an external administration surface owns writes.
package policy

import (
	"github.com/Finamite/TMS.finamite-sub001/internal/config"
	"github.com/Finamite/TMS.finamite-sub001/internal/model"
)

type Store interface {
	Get(companyID model.CompanyID) model.RevisionPolicy
}

// ConfigStore serves policies straight from loaded configuration: the
// default policy plus per-company overrides.
type ConfigStore struct {
	def       model.RevisionPolicy
	companies map[model.CompanyID]model.RevisionPolicy
}

func NewConfigStore(cfg *config.Config) *ConfigStore {
	s := &ConfigStore{
		def:       cfg.Revisions.Default.ToModel(),
		companies: map[model.CompanyID]model.RevisionPolicy{},
	}
	for cid, p := range cfg.Revisions.Companies {
		s.companies[model.CompanyID(cid)] = p.ToModel()
	}
	return s
}

func (s *ConfigStore) Get(companyID model.CompanyID) model.RevisionPolicy {
	if p, ok := s.companies[companyID]; ok {
		return p
	}
	return s.def
}
