// Package approval governs completion sign-off: submission moves a pending
// instance into review, a decision completes it or closes it as
// no-action-required. The reject-and-reassign branch produces a payload for
// the creation path instead of creating the successor itself.
package approval

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/Finamite/TMS.finamite-sub001/internal/model"
	"github.com/Finamite/TMS.finamite-sub001/internal/task"
	"github.com/Finamite/TMS.finamite-sub001/internal/telemetry"
)

var (
	ErrInvalidTransition   = errors.New("invalid approval transition for current status")
	ErrApprovalNotRequired = errors.New("task does not require approval")
	ErrRemarksRequired     = errors.New("rejection remarks are required")
	ErrUnknownOutcome      = errors.New("unknown decision outcome")
)

type Service struct {
	repo   task.Repo
	events telemetry.Repository
	logger *log.Logger
}

func NewService(repo task.Repo, events telemetry.Repository, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		repo:   repo,
		events: events,
		logger: logger,
	}
}

// Submit moves a pending instance into review, recording the submitted
// completion evidence. Only pending instances that require approval can be
// submitted.
func (s *Service) Submit(ctx context.Context, id model.TaskID, remarks string, attachments []model.Attachment) (model.TaskInstance, error) {
	if err := ctx.Err(); err != nil {
		return model.TaskInstance{}, err
	}

	inst, err := s.repo.Get(id)
	if err != nil {
		return model.TaskInstance{}, err
	}
	if !inst.RequiresApproval {
		return model.TaskInstance{}, ErrApprovalNotRequired
	}
	if inst.Status != model.StatusPending {
		return model.TaskInstance{}, ErrInvalidTransition
	}

	status := model.StatusInProgress
	updated, err := s.repo.Update(id, inst.Version, task.Patch{
		Status:                &status,
		CompletionRemarks:     &remarks,
		CompletionAttachments: &attachments,
	})
	if err != nil {
		return model.TaskInstance{}, err
	}

	s.record(telemetry.EventApprovalSubmitted, telemetry.EventMetadata{
		"task_id": string(id),
	})
	return updated, nil
}

// Decide resolves an in-review instance. Approve completes it; either
// reject branch closes it as no-action-required, and the reassign branch
// additionally returns the payload that seeds the successor. Acting on a
// pending or terminal instance fails without touching it.
func (s *Service) Decide(ctx context.Context, id model.TaskID, outcome model.ApprovalOutcome, remarks string, decidedBy model.UserID) (model.TaskInstance, *model.ReassignPayload, error) {
	if err := ctx.Err(); err != nil {
		return model.TaskInstance{}, nil, err
	}

	inst, err := s.repo.Get(id)
	if err != nil {
		return model.TaskInstance{}, nil, err
	}
	if inst.Status != model.StatusInProgress {
		return model.TaskInstance{}, nil, ErrInvalidTransition
	}

	var patch task.Patch
	var payload *model.ReassignPayload

	switch outcome {
	case model.OutcomeApproved:
		status := model.StatusCompleted
		now := time.Now()
		patch = task.Patch{Status: &status, CompletedAt: &now}
		if strings.TrimSpace(remarks) != "" {
			patch.CompletionRemarks = &remarks
		}

	case model.OutcomeRejectedNoAction, model.OutcomeRejectedReassign:
		if strings.TrimSpace(remarks) == "" {
			return model.TaskInstance{}, nil, ErrRemarksRequired
		}
		status := model.StatusNoAction
		patch = task.Patch{Status: &status, CompletionRemarks: &remarks}
		if outcome == model.OutcomeRejectedReassign {
			payload = &model.ReassignPayload{
				Title:          inst.Title,
				Description:    inst.Description,
				Priority:       inst.Priority,
				Attachments:    inst.CompletionAttachments,
				TaskGroupID:    inst.GroupID,
				OriginalTaskID: inst.ID,
			}
		}

	default:
		return model.TaskInstance{}, nil, ErrUnknownOutcome
	}

	updated, err := s.repo.Update(id, inst.Version, patch)
	if err != nil {
		return model.TaskInstance{}, nil, err
	}

	s.record(telemetry.EventApprovalDecided, telemetry.EventMetadata{
		"task_id":    string(id),
		"outcome":    string(outcome),
		"decided_by": string(decidedBy),
	})
	return updated, payload, nil
}

func (s *Service) record(typ telemetry.EventType, md telemetry.EventMetadata) {
	if s.events == nil {
		return
	}
	if err := s.events.RecordEvent(typ, md); err != nil {
		s.logger.Printf("approval: record %s: %v", typ, err)
	}
}
