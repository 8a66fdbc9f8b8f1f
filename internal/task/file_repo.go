package task

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Finamite/TMS.finamite-sub001/internal/model"
)

type fileState struct {
	Companies map[string]companyTaskState `json:"companies"`
}

type companyTaskState struct {
	Groups map[model.GroupID]model.TaskGroup   `json:"groups"`
	Tasks  map[model.TaskID]model.TaskInstance `json:"tasks"`
}

func newFileState() fileState {
	return fileState{Companies: map[string]companyTaskState{}}
}

func newCompanyTaskState() companyTaskState {
	return companyTaskState{
		Groups: map[model.GroupID]model.TaskGroup{},
		Tasks:  map[model.TaskID]model.TaskInstance{},
	}
}

type fileStore struct {
	mu   sync.RWMutex
	path string
	s    fileState
}

// FileRepo is a persistent task repository.
// It is company-scoped; call ForCompany(companyID) to get a scoped view.
type FileRepo struct {
	store     *fileStore
	companyID string
}

func NewFileRepo(dataDir string) (*FileRepo, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	st := &fileStore{
		path: filepath.Join(dataDir, "tasks.json"),
		s:    newFileState(),
	}
	if err := st.load(); err != nil {
		return nil, err
	}
	return &FileRepo{
		store:     st,
		companyID: "default",
	}, nil
}

func (s *fileStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.s = newFileState()
			return nil
		}
		return err
	}

	var loaded fileState
	if err := json.Unmarshal(b, &loaded); err != nil {
		return err
	}
	if loaded.Companies == nil {
		loaded.Companies = map[string]companyTaskState{}
	}
	for cid, cs := range loaded.Companies {
		if cs.Groups == nil {
			cs.Groups = map[model.GroupID]model.TaskGroup{}
		}
		if cs.Tasks == nil {
			cs.Tasks = map[model.TaskID]model.TaskInstance{}
		}
		loaded.Companies[cid] = cs
	}
	s.s = loaded
	return nil
}

func (s *fileStore) saveLocked() error {
	b, err := json.MarshalIndent(s.s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o644)
}

func (r *FileRepo) ForCompany(companyID string) *FileRepo {
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		companyID = "default"
	}
	return &FileRepo{
		store:     r.store,
		companyID: companyID,
	}
}

func (r *FileRepo) companyStateLocked() companyTaskState {
	cs, ok := r.store.s.Companies[r.companyID]
	if !ok {
		cs = newCompanyTaskState()
		r.store.s.Companies[r.companyID] = cs
	}
	return cs
}

func (r *FileRepo) CreateGroup(g model.TaskGroup) (model.TaskGroup, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	cs := r.companyStateLocked()
	if g.ID == "" {
		g.ID = newGroupID()
	}
	g.CreatedAt = time.Now()
	cs.Groups[g.ID] = g
	r.store.s.Companies[r.companyID] = cs

	if err := r.store.saveLocked(); err != nil {
		return model.TaskGroup{}, err
	}
	return g, nil
}

func (r *FileRepo) GetGroup(id model.GroupID) (model.TaskGroup, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	cs, ok := r.store.s.Companies[r.companyID]
	if !ok {
		return model.TaskGroup{}, ErrGroupNotFound
	}
	g, ok := cs.Groups[id]
	if !ok {
		return model.TaskGroup{}, ErrGroupNotFound
	}
	return g, nil
}

func (r *FileRepo) UpdateGroupOwner(id model.GroupID, owner model.UserID) (model.TaskGroup, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	cs := r.companyStateLocked()
	g, ok := cs.Groups[id]
	if !ok {
		return model.TaskGroup{}, ErrGroupNotFound
	}
	g.OwnerID = owner
	cs.Groups[id] = g
	r.store.s.Companies[r.companyID] = cs

	if err := r.store.saveLocked(); err != nil {
		return model.TaskGroup{}, err
	}
	return g, nil
}

func (r *FileRepo) CreateInstance(t model.TaskInstance) (model.TaskInstance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	cs := r.companyStateLocked()
	now := time.Now()
	if t.ID == "" {
		t.ID = newTaskID()
	}
	t.CreatedAt = now
	t.UpdatedAt = now
	t.Version = 1
	normalizeInstance(&t)

	cs.Tasks[t.ID] = t
	r.store.s.Companies[r.companyID] = cs

	if err := r.store.saveLocked(); err != nil {
		return model.TaskInstance{}, err
	}
	return t, nil
}

func (r *FileRepo) Get(id model.TaskID) (model.TaskInstance, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	cs, ok := r.store.s.Companies[r.companyID]
	if !ok {
		return model.TaskInstance{}, ErrNotFound
	}
	t, ok := cs.Tasks[id]
	if !ok {
		return model.TaskInstance{}, ErrNotFound
	}
	return t, nil
}

func (r *FileRepo) Update(id model.TaskID, version int64, p Patch) (model.TaskInstance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	cs := r.companyStateLocked()
	t, ok := cs.Tasks[id]
	if !ok {
		return model.TaskInstance{}, ErrNotFound
	}
	if t.Version != version {
		return model.TaskInstance{}, ErrConflict
	}

	applyPatch(&t, p)
	t.Version++
	t.UpdatedAt = time.Now()

	cs.Tasks[id] = t
	r.store.s.Companies[r.companyID] = cs

	if err := r.store.saveLocked(); err != nil {
		return model.TaskInstance{}, err
	}
	return t, nil
}

func (r *FileRepo) List(filter ListFilter) ([]model.TaskInstance, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	cs, ok := r.store.s.Companies[r.companyID]
	if !ok {
		return []model.TaskInstance{}, nil
	}

	out := make([]model.TaskInstance, 0, len(cs.Tasks))
	for _, t := range cs.Tasks {
		if matchesFilter(t, filter) {
			out = append(out, t)
		}
	}
	sortInstances(out)
	return out, nil
}

func (r *FileRepo) OpenByGroup(id model.GroupID) ([]model.TaskInstance, error) {
	return r.List(ListFilter{Status: "open", Group: id})
}
