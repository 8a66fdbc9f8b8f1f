package model

import "time"

type CycleType string

const (
	CycleOneTime   CycleType = "one_time"
	CycleDaily     CycleType = "daily"
	CycleWeekly    CycleType = "weekly"
	CycleMonthly   CycleType = "monthly"
	CycleQuarterly CycleType = "quarterly"
	CycleYearly    CycleType = "yearly"
)

// CalendarRuleSet encodes one recurrence cycle plus its exclusions.
// Weekdays follow time.Weekday numbering (Sunday = 0).
type CalendarRuleSet struct {
	Cycle CycleType `json:"cycle"`

	// AnchorDate drives one-time, quarterly and yearly cycles.
	AnchorDate string `json:"anchorDate,omitempty"`

	// WindowStart/WindowEnd bound daily, weekly and monthly cycles.
	// With Forever set, WindowEnd may be empty and generation runs to a
	// fixed horizon from WindowStart.
	WindowStart string `json:"windowStart,omitempty"`
	WindowEnd   string `json:"windowEnd,omitempty"`
	Forever     bool   `json:"forever,omitempty"`

	// YearlyDurationYears is the occurrence count for forever yearly cycles.
	YearlyDurationYears int `json:"yearlyDurationYears,omitempty"`

	// Sunday is excluded from generation unless IncludeSunday is set,
	// independent of WeekOffDays.
	IncludeSunday bool           `json:"includeSunday,omitempty"`
	WeekOffDays   []time.Weekday `json:"weekOffDays,omitempty"`

	WeeklyDays        []time.Weekday `json:"weeklyDays,omitempty"`
	MonthlyDayOfMonth int            `json:"monthlyDayOfMonth,omitempty"`
}

func (rs CalendarRuleSet) IsWeekOff(d time.Weekday) bool {
	for _, w := range rs.WeekOffDays {
		if w == d {
			return true
		}
	}
	return false
}

func (rs CalendarRuleSet) IsWeeklyDay(d time.Weekday) bool {
	for _, w := range rs.WeeklyDays {
		if w == d {
			return true
		}
	}
	return false
}
