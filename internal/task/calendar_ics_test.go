package task

import (
	"strings"
	"testing"
	"time"

	"github.com/Finamite/TMS.finamite-sub001/internal/model"
)

func TestBuildTaskCalendarICS_OneTime(t *testing.T) {
	now := time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC)
	inst := model.TaskInstance{
		ID:          "task_1",
		Title:       "File quarterly return; Q1",
		Description: "Forms, receipts",
		DueDate:     "2025-03-31",
	}

	ics, err := BuildTaskCalendarICS(inst, nil, now)
	if err != nil {
		t.Fatalf("build ics: %v", err)
	}

	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"UID:task-task_1@tms",
		"DTSTART;VALUE=DATE:20250331",
		"DTEND;VALUE=DATE:20250401",
		"SUMMARY:File quarterly return\\; Q1",
		"DESCRIPTION:Forms\\, receipts",
		"END:VCALENDAR",
	} {
		if !strings.Contains(ics, want) {
			t.Fatalf("missing %q in:\n%s", want, ics)
		}
	}
	if strings.Contains(ics, "RRULE:") {
		t.Fatalf("one-time export must not carry an RRULE:\n%s", ics)
	}
}

func TestBuildTaskCalendarICS_RecurringRRULE(t *testing.T) {
	now := time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC)
	inst := model.TaskInstance{ID: "task_2", Title: "t", DueDate: "2025-01-06", GroupID: "grp_1"}

	tests := []struct {
		cycle model.CycleType
		want  string
	}{
		{model.CycleDaily, "RRULE:FREQ=DAILY;INTERVAL=1"},
		{model.CycleWeekly, "RRULE:FREQ=WEEKLY;INTERVAL=1"},
		{model.CycleMonthly, "RRULE:FREQ=MONTHLY;INTERVAL=1"},
		{model.CycleQuarterly, "RRULE:FREQ=MONTHLY;INTERVAL=3"},
		{model.CycleYearly, "RRULE:FREQ=YEARLY;INTERVAL=1"},
	}
	for _, tc := range tests {
		template := &model.CalendarRuleSet{Cycle: tc.cycle}
		ics, err := BuildTaskCalendarICS(inst, template, now)
		if err != nil {
			t.Fatalf("%s: build ics: %v", tc.cycle, err)
		}
		if !strings.Contains(ics, tc.want) {
			t.Fatalf("%s: missing %q in:\n%s", tc.cycle, tc.want, ics)
		}
	}
}

func TestBuildTaskCalendarICS_RequiresDueDate(t *testing.T) {
	if _, err := BuildTaskCalendarICS(model.TaskInstance{ID: "task_3", Title: "t"}, nil, time.Now()); err == nil {
		t.Fatalf("expected error for missing due date")
	}
	if _, err := BuildTaskCalendarICS(model.TaskInstance{ID: "task_4", Title: "t", DueDate: "31-03-2025"}, nil, time.Now()); err == nil {
		t.Fatalf("expected error for malformed due date")
	}
}
