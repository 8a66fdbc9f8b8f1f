package policy

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/Finamite/TMS.finamite-sub001/internal/model"
)

type fileState struct {
	Companies map[model.CompanyID]model.RevisionPolicy `json:"companies"`
}

// FileRepo persists per-company policy overrides as JSON and falls back to
// another store for companies without one.
type FileRepo struct {
	mu       sync.RWMutex
	path     string
	fallback Store
	s        fileState
}

func NewFileRepo(dataDir string, fallback Store) (*FileRepo, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	r := &FileRepo{
		path:     filepath.Join(dataDir, "policies.json"),
		fallback: fallback,
		s:        fileState{Companies: map[model.CompanyID]model.RevisionPolicy{}},
	}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *FileRepo) load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var loaded fileState
	if err := json.Unmarshal(b, &loaded); err != nil {
		return err
	}
	if loaded.Companies == nil {
		loaded.Companies = map[model.CompanyID]model.RevisionPolicy{}
	}
	r.s = loaded
	return nil
}

func (r *FileRepo) Get(companyID model.CompanyID) model.RevisionPolicy {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, ok := r.s.Companies[companyID]; ok {
		return p
	}
	return r.fallback.Get(companyID)
}

// Set stores a company override. Exposed for seeding and operations
// tooling; the request path never writes policies.
func (r *FileRepo) Set(companyID model.CompanyID, p model.RevisionPolicy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.s.Companies[companyID] = p

	b, err := json.MarshalIndent(r.s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, b, 0o644)
}
