package revision

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Finamite/TMS.finamite-sub001/internal/model"
)

func permissivePolicy() model.RevisionPolicy {
	return model.RevisionPolicy{
		EnableRevisions: true,
	}
}

func TestComputeWindow_DaysRuleWithPerRevisionOverride(t *testing.T) {
	pol := model.RevisionPolicy{
		EnableRevisions: true,
		EnableDaysRule:  true,
		MaxDays:         7,
		PerRevisionDays: map[int]int{1: 3},
	}
	inst := model.TaskInstance{DueDate: "2025-01-10", Status: model.StatusPending}

	// First revision uses the per-revision override.
	w, err := ComputeWindow(inst, pol)
	if err != nil {
		t.Fatalf("compute window: %v", err)
	}
	if w.Min != "2025-01-10" || w.Max != "2025-01-13" {
		t.Fatalf("unexpected first window: %+v", w)
	}

	// Second revision falls through to MaxDays and is anchored on the
	// previous revision's new date.
	inst.RevisionHistory = []model.Revision{{PreviousDate: "2025-01-10", NewDate: "2025-01-12"}}
	inst.RevisionCount = 1
	w, err = ComputeWindow(inst, pol)
	if err != nil {
		t.Fatalf("compute second window: %v", err)
	}
	if w.Min != "2025-01-12" || w.Max != "2025-01-19" {
		t.Fatalf("unexpected second window: %+v", w)
	}
}

func TestComputeWindow_DaysRuleOffUsesYearCap(t *testing.T) {
	inst := model.TaskInstance{DueDate: "2025-01-10"}
	w, err := ComputeWindow(inst, permissivePolicy())
	if err != nil {
		t.Fatalf("compute window: %v", err)
	}
	if w.Min != "2025-01-10" || w.Max != "2026-01-10" {
		t.Fatalf("unexpected window: %+v", w)
	}
}

func TestCheck_RuleOrderAndIndependence(t *testing.T) {
	base := model.TaskInstance{DueDate: "2025-01-10", Status: model.StatusPending, Priority: model.PriorityMedium}

	tests := []struct {
		name    string
		inst    model.TaskInstance
		pol     model.RevisionPolicy
		date    string
		remarks string
		wantErr error
	}{
		{
			name:    "disabled policy wins over everything",
			inst:    base,
			pol:     model.RevisionPolicy{},
			date:    "2025-01-11",
			remarks: "move",
			wantErr: ErrRevisionsDisabled,
		},
		{
			name:    "blank remarks reported before window",
			inst:    base,
			pol:     model.RevisionPolicy{EnableRevisions: true, EnableDaysRule: true, MaxDays: 1},
			date:    "2025-06-01",
			remarks: "   \t\n",
			wantErr: ErrRemarksRequired,
		},
		{
			name: "revision limit",
			inst: func() model.TaskInstance {
				i := base
				i.RevisionCount = 3
				return i
			}(),
			pol:     model.RevisionPolicy{EnableRevisions: true, EnableMaxRevision: true, RevisionLimit: 3},
			date:    "2025-01-11",
			remarks: "move",
			wantErr: ErrRevisionLimit,
		},
		{
			name: "high priority one-time restricted",
			inst: func() model.TaskInstance {
				i := base
				i.Priority = model.PriorityHigh
				return i
			}(),
			pol:     model.RevisionPolicy{EnableRevisions: true, RestrictHighPriorityRevision: true},
			date:    "2025-01-11",
			remarks: "move",
			wantErr: ErrHighPriorityRestricted,
		},
		{
			name: "high priority recurring is allowed",
			inst: func() model.TaskInstance {
				i := base
				i.Priority = model.PriorityHigh
				i.GroupID = "grp_1"
				return i
			}(),
			pol:     model.RevisionPolicy{EnableRevisions: true, RestrictHighPriorityRevision: true},
			date:    "2025-01-11",
			remarks: "move",
			wantErr: nil,
		},
		{
			name:    "upper bound inclusive",
			inst:    base,
			pol:     model.RevisionPolicy{EnableRevisions: true, EnableDaysRule: true, MaxDays: 7, PerRevisionDays: map[int]int{1: 3}},
			date:    "2025-01-13",
			remarks: "move",
			wantErr: nil,
		},
		{
			name:    "one past the upper bound",
			inst:    base,
			pol:     model.RevisionPolicy{EnableRevisions: true, EnableDaysRule: true, MaxDays: 7, PerRevisionDays: map[int]int{1: 3}},
			date:    "2025-01-14",
			remarks: "move",
			wantErr: ErrOutOfWindow,
		},
		{
			name:    "before the base date",
			inst:    base,
			pol:     model.RevisionPolicy{EnableRevisions: true, EnableDaysRule: true, MaxDays: 7},
			date:    "2025-01-09",
			remarks: "move",
			wantErr: ErrOutOfWindow,
		},
		{
			name:    "garbage date",
			inst:    base,
			pol:     model.RevisionPolicy{EnableRevisions: true, EnableDaysRule: true, MaxDays: 7},
			date:    "not-a-date",
			remarks: "move",
			wantErr: ErrOutOfWindow,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Check(tc.inst, tc.date, tc.remarks, tc.pol)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}
