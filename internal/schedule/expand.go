package schedule

import (
	"time"

	"github.com/Finamite/TMS.finamite-sub001/internal/model"
)

// ForeverHorizonDays bounds generation for forever daily/weekly/monthly
// templates: one year out from the window start.
const ForeverHorizonDays = 365

// Expand materializes a recurrence template into an ascending,
// duplicate-free list of due dates. It is pure: identical inputs always
// yield identical output, so a partially-failed bulk creation can be
// retried safely. An empty result is valid, not an error.
//
// windowStart/windowEnd override the template's own window when non-empty;
// anchor-driven cycles (one-time, quarterly, yearly) ignore the window.
func Expand(rs model.CalendarRuleSet, windowStart, windowEnd string) ([]string, error) {
	if err := ValidateRuleSet(rs); err != nil {
		return nil, err
	}

	switch rs.Cycle {
	case model.CycleOneTime, model.CycleQuarterly:
		return []string{rs.AnchorDate}, nil

	case model.CycleYearly:
		return expandYearly(rs), nil
	}

	start, end, err := resolveWindow(rs, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}

	var out []string
	switch rs.Cycle {
	case model.CycleDaily:
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			if excluded(rs, d) {
				continue
			}
			out = append(out, d.Format(model.DateLayout))
		}

	case model.CycleWeekly:
		// A selected weekly day that is also excluded drops that week's
		// occurrence entirely; it never shifts to an adjacent day.
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			if !rs.IsWeeklyDay(d.Weekday()) || excluded(rs, d) {
				continue
			}
			out = append(out, d.Format(model.DateLayout))
		}

	case model.CycleMonthly:
		for m := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC); !m.After(end); m = m.AddDate(0, 1, 0) {
			d := clampToMonth(m.Year(), m.Month(), rs.MonthlyDayOfMonth)
			if d.Before(start) || d.After(end) {
				continue
			}
			// An excluded month contributes zero instances.
			if excluded(rs, d) {
				continue
			}
			out = append(out, d.Format(model.DateLayout))
		}
	}

	return out, nil
}

func expandYearly(rs model.CalendarRuleSet) []string {
	anchor, _ := parseDate(rs.AnchorDate)
	if !rs.Forever {
		return []string{rs.AnchorDate}
	}
	out := make([]string, 0, rs.YearlyDurationYears)
	for i := 0; i < rs.YearlyDurationYears; i++ {
		// Anchor-aligned; a Feb 29 anchor clamps in non-leap years.
		d := clampToMonth(anchor.Year()+i, anchor.Month(), anchor.Day())
		out = append(out, d.Format(model.DateLayout))
	}
	return out
}

func resolveWindow(rs model.CalendarRuleSet, windowStart, windowEnd string) (time.Time, time.Time, error) {
	ws, we := rs.WindowStart, rs.WindowEnd
	if windowStart != "" {
		ws = windowStart
	}
	if windowEnd != "" {
		we = windowEnd
	}

	start, err := parseDate(ws)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if we == "" {
		if !rs.Forever {
			return time.Time{}, time.Time{}, ErrWindowRequired
		}
		return start, start.AddDate(0, 0, ForeverHorizonDays), nil
	}
	end, err := parseDate(we)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, ErrWindowInverted
	}
	return start, end, nil
}

// excluded applies the weekday filters shared by all windowed cycles:
// configured week-off days, plus Sunday unless explicitly included.
func excluded(rs model.CalendarRuleSet, d time.Time) bool {
	wd := d.Weekday()
	if wd == time.Sunday && !rs.IncludeSunday {
		return true
	}
	return rs.IsWeekOff(wd)
}

// clampToMonth resolves a day-of-month against a concrete month, pulling
// day 29..31 back to the month's last valid day instead of skipping.
func clampToMonth(year int, month time.Month, day int) time.Time {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
