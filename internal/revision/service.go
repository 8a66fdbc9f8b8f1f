package revision

import (
	"context"
	"log"
	"time"

	"github.com/Finamite/TMS.finamite-sub001/internal/model"
	"github.com/Finamite/TMS.finamite-sub001/internal/policy"
	"github.com/Finamite/TMS.finamite-sub001/internal/task"
	"github.com/Finamite/TMS.finamite-sub001/internal/telemetry"
)

type Service struct {
	repo     task.Repo
	policies policy.Store
	events   telemetry.Repository
	logger   *log.Logger
}

func NewService(repo task.Repo, policies policy.Store, events telemetry.Repository, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		repo:     repo,
		policies: policies,
		events:   events,
		logger:   logger,
	}
}

// WindowFor computes the current revision window for an instance.
func (s *Service) WindowFor(ctx context.Context, id model.TaskID) (Window, error) {
	inst, err := s.repo.Get(id)
	if err != nil {
		return Window{}, err
	}
	return ComputeWindow(inst, s.policies.Get(inst.Company))
}

// Revise moves an open instance's due date inside its policy window,
// appending to the revision history. The write is a compare-and-set on the
// instance version; a concurrent mutation surfaces as task.ErrConflict and
// the instance is left unchanged.
func (s *Service) Revise(ctx context.Context, id model.TaskID, newDate, remarks string, revisedBy model.UserID) (model.TaskInstance, error) {
	if err := ctx.Err(); err != nil {
		return model.TaskInstance{}, err
	}

	inst, err := s.repo.Get(id)
	if err != nil {
		return model.TaskInstance{}, err
	}
	if inst.Status.IsTerminal() {
		return model.TaskInstance{}, ErrTaskClosed
	}

	pol := s.policies.Get(inst.Company)
	if err := Check(inst, newDate, remarks, pol); err != nil {
		return model.TaskInstance{}, err
	}

	rev := model.Revision{
		PreviousDate: inst.DueDate,
		NewDate:      newDate,
		Remarks:      remarks,
		RevisedBy:    revisedBy,
		At:           time.Now(),
	}
	updated, err := s.repo.Update(id, inst.Version, task.Patch{
		DueDate:        &newDate,
		AppendRevision: &rev,
	})
	if err != nil {
		return model.TaskInstance{}, err
	}

	if s.events != nil {
		if err := s.events.RecordEvent(telemetry.EventTaskRevised, telemetry.EventMetadata{
			"task_id":        string(id),
			"previous_date":  rev.PreviousDate,
			"new_date":       rev.NewDate,
			"revision_count": updated.RevisionCount,
		}); err != nil {
			s.logger.Printf("revision: record event: %v", err)
		}
	}
	return updated, nil
}
