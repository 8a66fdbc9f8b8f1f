// Package assign turns a recurrence template into persisted task groups and
// instances, fanning out across owners. It is also the creation path the
// reject-and-reassign approval branch feeds back into.
package assign

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Finamite/TMS.finamite-sub001/internal/model"
	"github.com/Finamite/TMS.finamite-sub001/internal/schedule"
	"github.com/Finamite/TMS.finamite-sub001/internal/task"
	"github.com/Finamite/TMS.finamite-sub001/internal/telemetry"
)

var (
	ErrNoOwners      = errors.New("at least one owner is required")
	ErrTooManyOwners = errors.New("owner fan-out exceeds the configured cap")
	ErrBadDueDate    = errors.New("due date must be YYYY-MM-DD")
)

type Service struct {
	repo   task.Repo
	events telemetry.Repository
	logger *log.Logger

	maxOwners int
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

// SetMaxOwners caps a single fan-out; 0 disables the cap.
func (s *Service) SetMaxOwners(n int) {
	s.maxOwners = n
}

// Metadata is the template payload shared by every generated instance.
type Metadata struct {
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Priority         model.Priority  `json:"priority"`
	RequiresApproval bool            `json:"requiresApproval"`
	CreatedBy        model.UserID    `json:"createdBy"`
	Company          model.CompanyID `json:"companyId"`
}

type CreateInput struct {
	RuleSet     model.CalendarRuleSet `json:"ruleSet"`
	WindowStart string                `json:"windowStart,omitempty"`
	WindowEnd   string                `json:"windowEnd,omitempty"`
	Owners      []model.UserID        `json:"owners"`
	Meta        Metadata              `json:"metadata"`
}

// OwnerResult reports one owner's slice of the fan-out. Failures are
// isolated per owner; a bad template is the only whole-batch error.
type OwnerResult struct {
	Owner   model.UserID   `json:"owner"`
	GroupID model.GroupID  `json:"groupId,omitempty"`
	TaskIDs []model.TaskID `json:"taskIds"`
	Error   string         `json:"error,omitempty"`
}

// CreateFromTemplate expands the template once and creates each owner's
// group and instances in parallel. Expansion is deterministic, so a
// partially-failed call can be retried for just the failed owners.
func (s *Service) CreateFromTemplate(ctx context.Context, in CreateInput) ([]OwnerResult, error) {
	if len(in.Owners) == 0 {
		return nil, ErrNoOwners
	}
	if s.maxOwners > 0 && len(in.Owners) > s.maxOwners {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyOwners, len(in.Owners), s.maxOwners)
	}

	// A malformed template is invalid for every target: abort before any
	// instance is created.
	dates, err := schedule.Expand(in.RuleSet, in.WindowStart, in.WindowEnd)
	if err != nil {
		return nil, err
	}

	results := make([]OwnerResult, len(in.Owners))
	var wg sync.WaitGroup
	for i, owner := range in.Owners {
		wg.Add(1)
		go func(i int, owner model.UserID) {
			defer wg.Done()
			results[i] = s.createForOwner(ctx, owner, dates, in)
		}(i, owner)
	}
	wg.Wait()

	return results, nil
}

func (s *Service) createForOwner(ctx context.Context, owner model.UserID, dates []string, in CreateInput) OwnerResult {
	res := OwnerResult{Owner: owner, TaskIDs: []model.TaskID{}}
	if err := ctx.Err(); err != nil {
		res.Error = err.Error()
		return res
	}

	var groupID model.GroupID
	if in.RuleSet.Cycle != model.CycleOneTime {
		g, err := s.repo.CreateGroup(model.TaskGroup{
			Template:    in.RuleSet,
			Title:       in.Meta.Title,
			Description: in.Meta.Description,
			Priority:    in.Meta.Priority,
			OwnerID:     owner,
			CreatedBy:   in.Meta.CreatedBy,
		})
		if err != nil {
			res.Error = err.Error()
			return res
		}
		groupID = g.ID
		res.GroupID = g.ID
		s.record(telemetry.EventGroupCreated, telemetry.EventMetadata{
			"group_id": string(g.ID),
			"owner_id": string(owner),
			"cycle":    string(in.RuleSet.Cycle),
		})
	}

	for _, due := range dates {
		t, err := s.repo.CreateInstance(model.TaskInstance{
			GroupID:          groupID,
			Title:            in.Meta.Title,
			Description:      in.Meta.Description,
			Priority:         in.Meta.Priority,
			DueDate:          due,
			Status:           model.StatusPending,
			OwnerID:          owner,
			Company:          in.Meta.Company,
			RequiresApproval: in.Meta.RequiresApproval,
		})
		if err != nil {
			// Report what was created so the caller can retry the rest.
			res.Error = err.Error()
			s.logger.Printf("assign: create instance for %s due %s: %v", owner, due, err)
			return res
		}
		res.TaskIDs = append(res.TaskIDs, t.ID)
		s.record(telemetry.EventTaskCreated, telemetry.EventMetadata{
			"task_id":  string(t.ID),
			"owner_id": string(owner),
			"due_date": due,
		})
	}
	return res
}

// CreateReassigned seeds the successor instance for a rejected-reassign
// decision. The payload comes from the approval flow; the new owner and due
// date are the caller's choice.
func (s *Service) CreateReassigned(ctx context.Context, p model.ReassignPayload, newOwner model.UserID, company model.CompanyID, dueDate string) (model.TaskInstance, error) {
	if newOwner == "" {
		return model.TaskInstance{}, ErrNoOwners
	}
	if _, err := time.Parse(model.DateLayout, dueDate); err != nil {
		return model.TaskInstance{}, fmt.Errorf("%w: %q", ErrBadDueDate, dueDate)
	}
	if err := ctx.Err(); err != nil {
		return model.TaskInstance{}, err
	}

	t, err := s.repo.CreateInstance(model.TaskInstance{
		GroupID:          p.TaskGroupID,
		Title:            p.Title,
		Description:      p.Description,
		Priority:         p.Priority,
		DueDate:          dueDate,
		Status:           model.StatusPending,
		OwnerID:          newOwner,
		Company:          company,
		Attachments:      p.Attachments,
		RequiresApproval: true,
	})
	if err != nil {
		return model.TaskInstance{}, err
	}

	s.record(telemetry.EventTaskReassigned, telemetry.EventMetadata{
		"task_id":          string(t.ID),
		"original_task_id": string(p.OriginalTaskID),
		"owner_id":         string(newOwner),
		"due_date":         dueDate,
	})
	return t, nil
}

func (s *Service) record(typ telemetry.EventType, md telemetry.EventMetadata) {
	if s.events == nil {
		return
	}
	if err := s.events.RecordEvent(typ, md); err != nil {
		s.logger.Printf("assign: record %s: %v", typ, err)
	}
}
