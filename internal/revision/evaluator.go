// Package revision governs due-date rewrites on open task instances:
// computing the policy window an instance may move within, and applying a
// validated revision.
package revision

import (
	"errors"
	"time"

	"github.com/Finamite/TMS.finamite-sub001/internal/model"
)

var (
	ErrRevisionsDisabled      = errors.New("revisions are disabled by company policy")
	ErrOutOfWindow            = errors.New("requested date is outside the allowed revision window")
	ErrRemarksRequired        = errors.New("revision remarks are required")
	ErrRevisionLimit          = errors.New("revision limit reached for this task")
	ErrHighPriorityRestricted = errors.New("high-priority one-time tasks cannot be revised")
	ErrTaskClosed             = errors.New("task is no longer open")
)

// defaultWindowDays is the practical cap when the days rule is off.
const defaultWindowDays = 365

// Window is the inclusive date range a revision may move the due date to.
type Window struct {
	Min string `json:"minDate"`
	Max string `json:"maxDate"`
}

// ComputeWindow derives the allowed reschedule window for an instance from
// its revision history and the company policy. The base date is the last
// revision's new date, else the current due date, so the window never
// reaches back before the prior due date.
func ComputeWindow(inst model.TaskInstance, pol model.RevisionPolicy) (Window, error) {
	if !pol.EnableRevisions {
		return Window{}, ErrRevisionsDisabled
	}

	base, err := time.Parse(model.DateLayout, inst.BaseRevisionDate())
	if err != nil {
		return Window{}, err
	}

	days := defaultWindowDays
	if pol.EnableDaysRule {
		days = pol.MaxDays
		if d, ok := pol.PerRevisionDays[inst.RevisionCount+1]; ok {
			days = d
		}
	}

	return Window{
		Min: base.Format(model.DateLayout),
		Max: base.AddDate(0, 0, days).Format(model.DateLayout),
	}, nil
}

// Check validates one revision request against policy. Every rule is
// independent; the first violated one is reported, and any single rule can
// trip on its own.
func Check(inst model.TaskInstance, requestedDate, remarks string, pol model.RevisionPolicy) error {
	if !pol.EnableRevisions {
		return ErrRevisionsDisabled
	}
	if isBlank(remarks) {
		return ErrRemarksRequired
	}
	if pol.EnableMaxRevision && inst.RevisionCount >= pol.RevisionLimit {
		return ErrRevisionLimit
	}
	if pol.RestrictHighPriorityRevision && inst.Priority == model.PriorityHigh && inst.IsOneTime() {
		return ErrHighPriorityRestricted
	}

	w, err := ComputeWindow(inst, pol)
	if err != nil {
		return err
	}
	if _, err := time.Parse(model.DateLayout, requestedDate); err != nil {
		return ErrOutOfWindow
	}
	// Inclusive on both ends; lexicographic compare is safe for YYYY-MM-DD.
	if requestedDate < w.Min || requestedDate > w.Max {
		return ErrOutOfWindow
	}
	return nil
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
