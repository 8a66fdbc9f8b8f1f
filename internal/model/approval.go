package model

import "time"

type ApprovalOutcome string

const (
	OutcomeApproved         ApprovalOutcome = "approved"
	OutcomeRejectedNoAction ApprovalOutcome = "rejected_no_action"
	OutcomeRejectedReassign ApprovalOutcome = "rejected_reassign"
)

// ApprovalDecision is the transient record of one sign-off decision.
type ApprovalDecision struct {
	Outcome   ApprovalOutcome `json:"outcome"`
	Remarks   string          `json:"remarks"`
	DecidedBy UserID          `json:"decidedBy"`
	At        time.Time       `json:"at"`
}

// ReassignPayload seeds a successor instance after a rejected-reassign
// decision. The new owner and due date are supplied by the caller, not by
// the approval flow.
type ReassignPayload struct {
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Priority       Priority     `json:"priority"`
	Attachments    []Attachment `json:"attachments,omitempty"`
	TaskGroupID    GroupID      `json:"taskGroupId,omitempty"`
	OriginalTaskID TaskID       `json:"originalTaskId"`
}
