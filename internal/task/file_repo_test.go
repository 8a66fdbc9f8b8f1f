package task

import (
	"errors"
	"testing"

	"github.com/Finamite/TMS.finamite-sub001/internal/model"
)

func TestFileRepo_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	repo, err := NewFileRepo(dir)
	if err != nil {
		t.Fatalf("new file repo: %v", err)
	}
	scoped := repo.ForCompany("acme")

	g, err := scoped.CreateGroup(model.TaskGroup{Title: "monthly close", OwnerID: "u-1"})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	created, err := scoped.CreateInstance(model.TaskInstance{
		Title: "close the books", GroupID: g.ID, DueDate: "2025-02-28", OwnerID: "u-1",
	})
	if err != nil {
		t.Fatalf("create instance: %v", err)
	}

	reopened, err := NewFileRepo(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := reopened.ForCompany("acme").Get(created.ID)
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if got.Title != "close the books" || got.GroupID != g.ID || got.Version != 1 {
		t.Fatalf("unexpected instance after reopen: %+v", got)
	}
	if _, err := reopened.ForCompany("acme").GetGroup(g.ID); err != nil {
		t.Fatalf("get group after reopen: %v", err)
	}
}

func TestFileRepo_CompanyIsolation(t *testing.T) {
	repo, err := NewFileRepo(t.TempDir())
	if err != nil {
		t.Fatalf("new file repo: %v", err)
	}

	a := repo.ForCompany("acme")
	b := repo.ForCompany("globex")

	created, err := a.CreateInstance(model.TaskInstance{Title: "acme only", DueDate: "2025-01-05", OwnerID: "u-1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := b.Get(created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected cross-company get to miss, got %v", err)
	}
	list, err := b.List(ListFilter{Status: "all"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list for other company, got %d", len(list))
	}
}

func TestFileRepo_UpdateConflict(t *testing.T) {
	repo, err := NewFileRepo(t.TempDir())
	if err != nil {
		t.Fatalf("new file repo: %v", err)
	}
	scoped := repo.ForCompany("acme")

	created, err := scoped.CreateInstance(model.TaskInstance{Title: "t", DueDate: "2025-01-10", OwnerID: "u-1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	owner := model.UserID("u-2")
	if _, err := scoped.Update(created.ID, created.Version, Patch{OwnerID: &owner}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := scoped.Update(created.ID, created.Version, Patch{OwnerID: &owner}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on stale version, got %v", err)
	}
}
