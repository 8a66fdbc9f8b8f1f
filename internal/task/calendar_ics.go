package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/Finamite/TMS.finamite-sub001/internal/model"
)

const icsDateLayout = "20060102"

// test seam
var timeNow = time.Now

// BuildTaskCalendarICS builds a simple iCalendar event for a task instance.
// When the instance belongs to a recurrence series, the group template maps
// onto an RRULE so external calendars track the series.
func BuildTaskCalendarICS(t model.TaskInstance, template *model.CalendarRuleSet, now time.Time) (string, error) {
	dueRaw := strings.TrimSpace(t.DueDate)
	if dueRaw == "" {
		return "", fmt.Errorf("task due date required for calendar export")
	}

	due, err := time.Parse(model.DateLayout, dueRaw)
	if err != nil {
		return "", fmt.Errorf("task due date must be YYYY-MM-DD")
	}
	end := due.AddDate(0, 0, 1)

	title := strings.TrimSpace(t.Title)
	if title == "" {
		title = "Task"
	}
	desc := strings.TrimSpace(t.Description)

	uid := fmt.Sprintf("task-%s@tms", strings.TrimSpace(string(t.ID)))
	if strings.TrimSpace(string(t.ID)) == "" {
		uid = fmt.Sprintf("task-export-%d@tms", now.UnixNano())
	}

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Finamite//TMS Task Export//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"BEGIN:VEVENT",
		"UID:" + escapeICSText(uid),
		"DTSTAMP:" + now.UTC().Format("20060102T150405Z"),
		"SUMMARY:" + escapeICSText(title),
		"DTSTART;VALUE=DATE:" + due.Format(icsDateLayout),
		"DTEND;VALUE=DATE:" + end.Format(icsDateLayout),
	}
	if desc != "" {
		lines = append(lines, "DESCRIPTION:"+escapeICSText(desc))
	}
	if rrule := cycleToICSRRULE(template); rrule != "" {
		lines = append(lines, "RRULE:"+rrule)
	}
	lines = append(lines, "END:VEVENT", "END:VCALENDAR", "")

	return strings.Join(lines, "\r\n"), nil
}

func cycleToICSRRULE(template *model.CalendarRuleSet) string {
	if template == nil {
		return ""
	}

	switch template.Cycle {
	case model.CycleDaily:
		return "FREQ=DAILY;INTERVAL=1"
	case model.CycleWeekly:
		return "FREQ=WEEKLY;INTERVAL=1"
	case model.CycleMonthly:
		return "FREQ=MONTHLY;INTERVAL=1"
	case model.CycleQuarterly:
		return "FREQ=MONTHLY;INTERVAL=3"
	case model.CycleYearly:
		return "FREQ=YEARLY;INTERVAL=1"
	default:
		return ""
	}
}

func escapeICSText(s string) string {
	repl := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\r\n", "\\n",
		"\n", "\\n",
		"\r", "\\n",
	)
	return repl.Replace(s)
}
