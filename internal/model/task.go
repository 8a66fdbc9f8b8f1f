package model

import "time"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusNoAction   Status = "no_action_required"
)

// IsTerminal reports whether no further lifecycle transition is allowed.
// Terminal instances keep their historical owner through bulk transfers.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusNoAction
}

// Attachment is an opaque reference into the external attachment store.
// The core never interprets the bytes behind it.
type Attachment struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
}

// Revision records one approved due-date change.
type Revision struct {
	PreviousDate string    `json:"previousDate"`
	NewDate      string    `json:"newDate"`
	Remarks      string    `json:"remarks"`
	RevisedBy    UserID    `json:"revisedBy"`
	At           time.Time `json:"at"`
}

// TaskGroup ties together all instances generated from one recurrence
// template. Immutable except OwnerID, which moves via ownership transfer.
type TaskGroup struct {
	ID          GroupID         `json:"id"`
	Template    CalendarRuleSet `json:"template"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    Priority        `json:"priority"`
	OwnerID     UserID          `json:"ownerId"`
	CreatedBy   UserID          `json:"createdBy"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// TaskInstance is one concrete, dated unit of work.
//
// Invariants: RevisionCount == len(RevisionHistory), and DueDate never moves
// earlier than the prior due date through a revision.
type TaskInstance struct {
	ID          TaskID   `json:"id"`
	GroupID     GroupID  `json:"groupId,omitempty"` // empty for one-time tasks
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`

	DueDate string    `json:"dueDate"`
	Status  Status    `json:"status"`
	OwnerID UserID    `json:"ownerId"`
	Company CompanyID `json:"companyId"`

	RevisionCount   int        `json:"revisionCount"`
	RevisionHistory []Revision `json:"revisionHistory,omitempty"`

	// Attachments are carried from a reassign payload so the successor's
	// owner sees the rejected work; the core never reads their contents.
	Attachments []Attachment `json:"attachments,omitempty"`

	RequiresApproval      bool         `json:"requiresApproval"`
	CompletionRemarks     string       `json:"completionRemarks,omitempty"`
	CompletionAttachments []Attachment `json:"completionAttachments,omitempty"`

	// Version is the optimistic-concurrency token; every successful update
	// increments it and a stale writer is rejected.
	Version int64 `json:"version"`

	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// IsOneTime reports whether the instance belongs to no recurrence series.
func (t TaskInstance) IsOneTime() bool {
	return t.GroupID == ""
}

// BaseRevisionDate is the date a revision window is computed from: the last
// revision's new date, else the current due date.
func (t TaskInstance) BaseRevisionDate() string {
	if n := len(t.RevisionHistory); n > 0 {
		return t.RevisionHistory[n-1].NewDate
	}
	return t.DueDate
}
