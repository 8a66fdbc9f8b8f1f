package task

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Finamite/TMS.finamite-sub001/internal/model"
)

var (
	ErrNotFound      = errors.New("task not found")
	ErrGroupNotFound = errors.New("task group not found")

	// ErrConflict means a concurrent writer got there first; the caller
	// must re-read and retry with fresh state. Mutations are never
	// silently overwritten.
	ErrConflict = errors.New("task was modified concurrently")
)

// Patch represents a partial update.
// nil pointer => "no change"
type Patch struct {
	DueDate *string       `json:"dueDate,omitempty"`
	Status  *model.Status `json:"status,omitempty"`
	OwnerID *model.UserID `json:"ownerId,omitempty"`

	// AppendRevision adds one entry to the revision history and bumps the
	// revision counter in the same write, keeping the two in lockstep.
	AppendRevision *model.Revision `json:"appendRevision,omitempty"`

	CompletionRemarks     *string             `json:"completionRemarks,omitempty"`
	CompletionAttachments *[]model.Attachment `json:"completionAttachments,omitempty"`
	CompletedAt           *time.Time          `json:"completedAt,omitempty"`
}

type ListFilter struct {
	// Status: "" | "all" | "open" | "pending" | "in_progress" | "completed" | "no_action_required"
	Status string

	Owner model.UserID
	Group model.GroupID
}

// Repo persists task groups and instances. Update takes the caller's
// expected version and fails with ErrConflict on a stale write, which is
// how revision and approval mutations on one instance are serialized.
type Repo interface {
	CreateGroup(g model.TaskGroup) (model.TaskGroup, error)
	GetGroup(id model.GroupID) (model.TaskGroup, error)
	UpdateGroupOwner(id model.GroupID, owner model.UserID) (model.TaskGroup, error)

	CreateInstance(t model.TaskInstance) (model.TaskInstance, error)
	Get(id model.TaskID) (model.TaskInstance, error)
	Update(id model.TaskID, version int64, p Patch) (model.TaskInstance, error)
	List(filter ListFilter) ([]model.TaskInstance, error)

	// OpenByGroup returns the group's non-terminal instances.
	OpenByGroup(id model.GroupID) ([]model.TaskInstance, error)
}

func newTaskID() model.TaskID {
	return model.TaskID("task_" + uuid.NewString())
}

func newGroupID() model.GroupID {
	return model.GroupID("grp_" + uuid.NewString())
}

func normalizeInstance(t *model.TaskInstance) {
	if t.Status == "" {
		t.Status = model.StatusPending
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	if t.RevisionHistory == nil {
		t.RevisionHistory = []model.Revision{}
	}
	t.RevisionCount = len(t.RevisionHistory)
}

func applyPatch(t *model.TaskInstance, p Patch) {
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.OwnerID != nil {
		t.OwnerID = *p.OwnerID
	}
	if p.AppendRevision != nil {
		t.RevisionHistory = append(t.RevisionHistory, *p.AppendRevision)
		t.RevisionCount = len(t.RevisionHistory)
	}
	if p.CompletionRemarks != nil {
		t.CompletionRemarks = *p.CompletionRemarks
	}
	if p.CompletionAttachments != nil {
		if *p.CompletionAttachments == nil {
			t.CompletionAttachments = []model.Attachment{}
		} else {
			t.CompletionAttachments = *p.CompletionAttachments
		}
	}
	if p.CompletedAt != nil {
		at := *p.CompletedAt
		t.CompletedAt = &at
	}
}

func matchesFilter(t model.TaskInstance, f ListFilter) bool {
	if f.Owner != "" && t.OwnerID != f.Owner {
		return false
	}
	if f.Group != "" && t.GroupID != f.Group {
		return false
	}
	switch f.Status {
	case "", "all":
		return true
	case "open":
		return !t.Status.IsTerminal()
	default:
		return t.Status == model.Status(f.Status)
	}
}
