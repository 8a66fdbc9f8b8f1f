package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/Finamite/TMS.finamite-sub001/internal/model"
)

// Template configuration errors. A rule set failing any of these is rejected
// before a single instance is created.
var (
	ErrUnknownCycle         = errors.New("unknown cycle type")
	ErrBadDate              = errors.New("date must be YYYY-MM-DD")
	ErrAnchorRequired       = errors.New("anchor date is required for this cycle")
	ErrWindowRequired       = errors.New("window start and end are required for this cycle")
	ErrWindowInverted       = errors.New("window end is before window start")
	ErrWeeklyDaysRequired   = errors.New("weekly cycle requires at least one weekly day")
	ErrWeeklyDaysForbidden  = errors.New("weekly days are only valid for a weekly cycle")
	ErrMonthlyDayRequired   = errors.New("monthly cycle requires a day of month")
	ErrMonthlyDayForbidden  = errors.New("day of month is only valid for a monthly cycle")
	ErrMonthlyDayOutOfRange = errors.New("day of month must be between 1 and 31")
	ErrYearlyDuration       = errors.New("forever yearly cycle requires a duration in years")
)

// ValidateRuleSet checks the structural invariants of a recurrence template.
// Monthly days beyond a short month's length are legal; expansion clamps
// them to the month's last valid day.
func ValidateRuleSet(rs model.CalendarRuleSet) error {
	if len(rs.WeeklyDays) > 0 && rs.Cycle != model.CycleWeekly {
		return ErrWeeklyDaysForbidden
	}
	if rs.MonthlyDayOfMonth != 0 && rs.Cycle != model.CycleMonthly {
		return ErrMonthlyDayForbidden
	}

	switch rs.Cycle {
	case model.CycleOneTime, model.CycleQuarterly:
		return requireAnchor(rs)

	case model.CycleYearly:
		if err := requireAnchor(rs); err != nil {
			return err
		}
		if rs.Forever && rs.YearlyDurationYears < 1 {
			return ErrYearlyDuration
		}
		return nil

	case model.CycleDaily:
		return validateWindow(rs)

	case model.CycleWeekly:
		if len(rs.WeeklyDays) == 0 {
			return ErrWeeklyDaysRequired
		}
		return validateWindow(rs)

	case model.CycleMonthly:
		if rs.MonthlyDayOfMonth == 0 {
			return ErrMonthlyDayRequired
		}
		if rs.MonthlyDayOfMonth < 1 || rs.MonthlyDayOfMonth > 31 {
			return ErrMonthlyDayOutOfRange
		}
		return validateWindow(rs)

	default:
		return fmt.Errorf("%w: %q", ErrUnknownCycle, rs.Cycle)
	}
}

func requireAnchor(rs model.CalendarRuleSet) error {
	if rs.AnchorDate == "" {
		return ErrAnchorRequired
	}
	if _, err := parseDate(rs.AnchorDate); err != nil {
		return err
	}
	return nil
}

func validateWindow(rs model.CalendarRuleSet) error {
	if rs.WindowStart == "" {
		return ErrWindowRequired
	}
	start, err := parseDate(rs.WindowStart)
	if err != nil {
		return err
	}
	if rs.Forever {
		return nil
	}
	if rs.WindowEnd == "" {
		return ErrWindowRequired
	}
	end, err := parseDate(rs.WindowEnd)
	if err != nil {
		return err
	}
	if end.Before(start) {
		return ErrWindowInverted
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, s)
	}
	return t, nil
}
