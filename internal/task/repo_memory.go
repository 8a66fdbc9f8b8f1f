package task

import (
	"sort"
	"sync"
	"time"

	"github.com/Finamite/TMS.finamite-sub001/internal/model"
)

// MemoryRepo is an in-memory Repo for dev and test use.
type MemoryRepo struct {
	mu     sync.RWMutex
	groups map[model.GroupID]model.TaskGroup
	tasks  map[model.TaskID]model.TaskInstance
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		groups: map[model.GroupID]model.TaskGroup{},
		tasks:  map[model.TaskID]model.TaskInstance{},
	}
}

func (r *MemoryRepo) CreateGroup(g model.TaskGroup) (model.TaskGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if g.ID == "" {
		g.ID = newGroupID()
	}
	g.CreatedAt = time.Now()
	r.groups[g.ID] = g
	return g, nil
}

func (r *MemoryRepo) GetGroup(id model.GroupID) (model.TaskGroup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.groups[id]
	if !ok {
		return model.TaskGroup{}, ErrGroupNotFound
	}
	return g, nil
}

func (r *MemoryRepo) UpdateGroupOwner(id model.GroupID, owner model.UserID) (model.TaskGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.groups[id]
	if !ok {
		return model.TaskGroup{}, ErrGroupNotFound
	}
	g.OwnerID = owner
	r.groups[id] = g
	return g, nil
}

func (r *MemoryRepo) CreateInstance(t model.TaskInstance) (model.TaskInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if t.ID == "" {
		t.ID = newTaskID()
	}
	t.CreatedAt = now
	t.UpdatedAt = now
	t.Version = 1
	normalizeInstance(&t)

	r.tasks[t.ID] = t
	return t, nil
}

func (r *MemoryRepo) Get(id model.TaskID) (model.TaskInstance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return model.TaskInstance{}, ErrNotFound
	}
	return t, nil
}

func (r *MemoryRepo) Update(id model.TaskID, version int64, p Patch) (model.TaskInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		return model.TaskInstance{}, ErrNotFound
	}
	if t.Version != version {
		return model.TaskInstance{}, ErrConflict
	}

	applyPatch(&t, p)
	t.Version++
	t.UpdatedAt = time.Now()

	r.tasks[id] = t
	return t, nil
}

func (r *MemoryRepo) List(filter ListFilter) ([]model.TaskInstance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.TaskInstance, 0, len(r.tasks))
	for _, t := range r.tasks {
		if matchesFilter(t, filter) {
			out = append(out, t)
		}
	}
	sortInstances(out)
	return out, nil
}

func (r *MemoryRepo) OpenByGroup(id model.GroupID) ([]model.TaskInstance, error) {
	return r.List(ListFilter{Status: "open", Group: id})
}

// Sort: due soonest first, then created ascending for a stable order.
func sortInstances(out []model.TaskInstance) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].DueDate != out[j].DueDate {
			return out[i].DueDate < out[j].DueDate
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
}
