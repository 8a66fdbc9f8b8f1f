package revision

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/Finamite/TMS.finamite-sub001/internal/model"
	"github.com/Finamite/TMS.finamite-sub001/internal/task"
	"github.com/Finamite/TMS.finamite-sub001/internal/telemetry"
)

type fixedPolicy struct {
	pol model.RevisionPolicy
}

func (s fixedPolicy) Get(model.CompanyID) model.RevisionPolicy { return s.pol }

func newReviseServiceForTests(t *testing.T, pol model.RevisionPolicy) (*Service, task.Repo) {
	t.Helper()
	repo := task.NewMemoryRepo()
	svc := NewService(repo, fixedPolicy{pol}, telemetry.NewMemoryRepository(), log.New(io.Discard, "", 0))
	return svc, repo
}

func TestService_Revise_AppendsHistoryAndMovesDueDate(t *testing.T) {
	svc, repo := newReviseServiceForTests(t, model.RevisionPolicy{
		EnableRevisions: true,
		EnableDaysRule:  true,
		MaxDays:         7,
	})

	created, err := repo.CreateInstance(model.TaskInstance{Title: "t", DueDate: "2025-01-10", OwnerID: "u-1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Revise(context.Background(), created.ID, "2025-01-15", "vendor delay", "u-1")
	if err != nil {
		t.Fatalf("revise: %v", err)
	}
	if updated.DueDate != "2025-01-15" {
		t.Fatalf("due date not moved: %s", updated.DueDate)
	}
	if updated.RevisionCount != 1 || len(updated.RevisionHistory) != 1 {
		t.Fatalf("history not appended: %+v", updated)
	}
	rev := updated.RevisionHistory[0]
	if rev.PreviousDate != "2025-01-10" || rev.NewDate != "2025-01-15" || rev.RevisedBy != "u-1" {
		t.Fatalf("unexpected revision entry: %+v", rev)
	}

	// The second window starts from the first revision's new date.
	w, err := svc.WindowFor(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("window: %v", err)
	}
	if w.Min != "2025-01-15" || w.Max != "2025-01-22" {
		t.Fatalf("unexpected window: %+v", w)
	}
}

func TestService_Revise_ClosedTask(t *testing.T) {
	svc, repo := newReviseServiceForTests(t, model.RevisionPolicy{EnableRevisions: true})

	created, err := repo.CreateInstance(model.TaskInstance{
		Title: "t", DueDate: "2025-01-10", OwnerID: "u-1", Status: model.StatusCompleted,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Revise(context.Background(), created.ID, "2025-01-15", "late", "u-1"); !errors.Is(err, ErrTaskClosed) {
		t.Fatalf("expected ErrTaskClosed, got %v", err)
	}
}

func TestService_Revise_RejectedRequestLeavesTaskUntouched(t *testing.T) {
	svc, repo := newReviseServiceForTests(t, model.RevisionPolicy{
		EnableRevisions: true,
		EnableDaysRule:  true,
		MaxDays:         3,
	})

	created, err := repo.CreateInstance(model.TaskInstance{Title: "t", DueDate: "2025-01-10", OwnerID: "u-1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Revise(context.Background(), created.ID, "2025-02-01", "too far", "u-1"); !errors.Is(err, ErrOutOfWindow) {
		t.Fatalf("expected ErrOutOfWindow, got %v", err)
	}

	got, err := repo.Get(created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.DueDate != "2025-01-10" || got.RevisionCount != 0 || got.Version != created.Version {
		t.Fatalf("rejected revision mutated the task: %+v", got)
	}
}
