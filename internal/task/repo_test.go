package task

import (
	"errors"
	"testing"

	"github.com/Finamite/TMS.finamite-sub001/internal/model"
)

func TestMemoryRepo_CreateInstance_Normalizes(t *testing.T) {
	repo := NewMemoryRepo()

	created, err := repo.CreateInstance(model.TaskInstance{
		Title:   "quarterly filing",
		DueDate: "2025-03-31",
		OwnerID: "u-1",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected generated id")
	}
	if created.Status != model.StatusPending {
		t.Fatalf("expected pending status, got %q", created.Status)
	}
	if created.Priority != model.PriorityMedium {
		t.Fatalf("expected medium priority default, got %q", created.Priority)
	}
	if created.Version != 1 {
		t.Fatalf("expected version 1, got %d", created.Version)
	}
	if created.RevisionCount != 0 || created.RevisionHistory == nil {
		t.Fatalf("expected empty revision history, got count=%d history=%v", created.RevisionCount, created.RevisionHistory)
	}
}

func TestMemoryRepo_Update_StaleVersionConflicts(t *testing.T) {
	repo := NewMemoryRepo()
	created, err := repo.CreateInstance(model.TaskInstance{Title: "t", DueDate: "2025-01-10", OwnerID: "u-1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	due := "2025-01-12"
	updated, err := repo.Update(created.ID, created.Version, Patch{DueDate: &due})
	if err != nil {
		t.Fatalf("first update: %v", err)
	}
	if updated.Version != created.Version+1 {
		t.Fatalf("expected version bump, got %d", updated.Version)
	}

	// Second writer still holding the original version must be rejected.
	other := "2025-01-15"
	if _, err := repo.Update(created.ID, created.Version, Patch{DueDate: &other}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	got, err := repo.Get(created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.DueDate != "2025-01-12" {
		t.Fatalf("stale write must not land, due=%s", got.DueDate)
	}
}

func TestMemoryRepo_Update_AppendRevisionKeepsCountInSync(t *testing.T) {
	repo := NewMemoryRepo()
	created, err := repo.CreateInstance(model.TaskInstance{Title: "t", DueDate: "2025-01-10", OwnerID: "u-1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	cur := created
	for i, newDate := range []string{"2025-01-12", "2025-01-14"} {
		rev := model.Revision{PreviousDate: cur.DueDate, NewDate: newDate, Remarks: "shift", RevisedBy: "u-1"}
		next, err := repo.Update(cur.ID, cur.Version, Patch{DueDate: &newDate, AppendRevision: &rev})
		if err != nil {
			t.Fatalf("revision %d: %v", i+1, err)
		}
		if next.RevisionCount != len(next.RevisionHistory) {
			t.Fatalf("count %d != history %d", next.RevisionCount, len(next.RevisionHistory))
		}
		if next.RevisionCount != i+1 {
			t.Fatalf("expected revision count %d, got %d", i+1, next.RevisionCount)
		}
		cur = next
	}
}

func TestMemoryRepo_List_Filters(t *testing.T) {
	repo := NewMemoryRepo()

	g, err := repo.CreateGroup(model.TaskGroup{Title: "weekly report", OwnerID: "u-1"})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}

	mk := func(due string, owner model.UserID, gid model.GroupID, status model.Status) model.TaskInstance {
		t.Helper()
		created, err := repo.CreateInstance(model.TaskInstance{
			Title: "t", DueDate: due, OwnerID: owner, GroupID: gid, Status: status,
		})
		if err != nil {
			t.Fatalf("create instance: %v", err)
		}
		return created
	}

	mk("2025-01-01", "u-1", g.ID, model.StatusPending)
	mk("2025-01-02", "u-1", g.ID, model.StatusCompleted)
	mk("2025-01-03", "u-2", "", model.StatusPending)

	open, err := repo.List(ListFilter{Status: "open", Group: g.ID})
	if err != nil {
		t.Fatalf("list open: %v", err)
	}
	if len(open) != 1 || open[0].DueDate != "2025-01-01" {
		t.Fatalf("unexpected open instances: %+v", open)
	}

	byOwner, err := repo.List(ListFilter{Owner: "u-2"})
	if err != nil {
		t.Fatalf("list by owner: %v", err)
	}
	if len(byOwner) != 1 || byOwner[0].OwnerID != "u-2" {
		t.Fatalf("unexpected owner filter result: %+v", byOwner)
	}

	all, err := repo.List(ListFilter{Status: "all"})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 instances, got %d", len(all))
	}
	// Sorted by due date ascending.
	for i := 1; i < len(all); i++ {
		if all[i-1].DueDate > all[i].DueDate {
			t.Fatalf("list not sorted: %s before %s", all[i-1].DueDate, all[i].DueDate)
		}
	}
}

func TestMemoryRepo_OpenByGroup(t *testing.T) {
	repo := NewMemoryRepo()
	g, err := repo.CreateGroup(model.TaskGroup{Title: "series", OwnerID: "u-1"})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}

	for _, s := range []model.Status{model.StatusPending, model.StatusInProgress, model.StatusCompleted, model.StatusNoAction} {
		if _, err := repo.CreateInstance(model.TaskInstance{Title: "t", DueDate: "2025-02-01", OwnerID: "u-1", GroupID: g.ID, Status: s}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	open, err := repo.OpenByGroup(g.ID)
	if err != nil {
		t.Fatalf("open by group: %v", err)
	}
	if len(open) != 2 {
		t.Fatalf("expected 2 open instances, got %d", len(open))
	}
	for _, inst := range open {
		if inst.Status.IsTerminal() {
			t.Fatalf("terminal instance leaked into open set: %+v", inst)
		}
	}
}

func TestMemoryRepo_GetUnknown(t *testing.T) {
	repo := NewMemoryRepo()
	if _, err := repo.Get("task_missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetGroup("grp_missing"); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("expected ErrGroupNotFound, got %v", err)
	}
}
