package telemetry

import "time"

type EventType string

const (
	EventGroupCreated      EventType = "group_created"
	EventTaskCreated       EventType = "task_created"
	EventTaskRevised       EventType = "task_revised"
	EventApprovalSubmitted EventType = "approval_submitted"
	EventApprovalDecided   EventType = "approval_decided"
	EventTaskReassigned    EventType = "task_reassigned"
	EventOwnershipShifted  EventType = "ownership_shifted"
)

type Event struct {
	ID        int           `json:"id"`
	Type      EventType     `json:"type"`
	Timestamp time.Time     `json:"timestamp"`
	Metadata  EventMetadata `json:"metadata"`
}

type EventMetadata map[string]interface{}
