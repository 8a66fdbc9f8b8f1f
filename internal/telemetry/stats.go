package telemetry

import "time"

type Stats struct {
	Period           string            `json:"period"`
	EventCounts      map[EventType]int `json:"event_counts"`
	TasksCreated     int               `json:"tasks_created"`
	GroupsCreated    int               `json:"groups_created"`
	Revisions        int               `json:"revisions"`
	Approvals        int               `json:"approvals"`
	Rejections       int               `json:"rejections"`
	Reassignments    int               `json:"reassignments"`
	OwnershipShifts  int               `json:"ownership_shifts"`
	DecisionsByKind  map[string]int    `json:"decisions_by_kind"`
	RevisionsPerTask float64           `json:"revisions_per_task"`
}

// CalculateStats computes lifecycle stats from events
func CalculateStats(events []Event, since time.Time) (Stats, error) {
	stats := Stats{
		Period:          since.Format("2006-01-02"),
		EventCounts:     make(map[EventType]int),
		DecisionsByKind: make(map[string]int),
	}

	for _, event := range events {
		stats.EventCounts[event.Type]++

		switch event.Type {
		case EventTaskCreated:
			stats.TasksCreated++
		case EventGroupCreated:
			stats.GroupsCreated++
		case EventTaskRevised:
			stats.Revisions++
		case EventTaskReassigned:
			stats.Reassignments++
		case EventOwnershipShifted:
			stats.OwnershipShifts++
		case EventApprovalDecided:
			outcome, _ := event.Metadata["outcome"].(string)
			stats.DecisionsByKind[outcome]++
			if outcome == "approved" {
				stats.Approvals++
			} else {
				stats.Rejections++
			}
		}
	}

	if stats.TasksCreated > 0 {
		stats.RevisionsPerTask = float64(stats.Revisions) / float64(stats.TasksCreated)
	}

	return stats, nil
}
