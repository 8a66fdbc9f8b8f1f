// Package transfer bulk-moves open task instances and recurrence series
// between owners. Each unit succeeds or fails on its own; the batch is
// never rolled back as a whole.
package transfer

import (
	"context"
	"errors"
	"log"

	"github.com/Finamite/TMS.finamite-sub001/internal/model"
	"github.com/Finamite/TMS.finamite-sub001/internal/task"
	"github.com/Finamite/TMS.finamite-sub001/internal/telemetry"
)

var ErrSameOwner = errors.New("source and target owner are identical")

type Coordinator struct {
	repo   task.Repo
	events telemetry.Repository
	logger *log.Logger
}

func NewCoordinator(repo task.Repo, events telemetry.Repository, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.Default()
	}
	return &Coordinator{
		repo:   repo,
		events: events,
		logger: logger,
	}
}

type ShiftResult struct {
	TaskID model.TaskID `json:"taskId"`
	OK     bool         `json:"ok"`
	Error  string       `json:"error,omitempty"`
}

type GroupShiftResult struct {
	GroupID model.GroupID `json:"groupId"`
	OK      bool          `json:"ok"`

	// Moved lists reassigned open instances; Retained lists terminal
	// instances keeping their historical owner for audit.
	Moved    []model.TaskID `json:"moved"`
	Retained []model.TaskID `json:"retained"`
	Error    string         `json:"error,omitempty"`
}

// ShiftOneTime reassigns each listed one-time instance from one owner to
// another. An id that is unknown, owned by someone else, or already closed
// fails individually and the rest of the batch proceeds.
func (c *Coordinator) ShiftOneTime(ctx context.Context, ids []model.TaskID, from, to model.UserID) ([]ShiftResult, error) {
	if from == to {
		return nil, ErrSameOwner
	}

	results := make([]ShiftResult, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, c.shiftOne(id, from, to))
	}
	return results, nil
}

func (c *Coordinator) shiftOne(id model.TaskID, from, to model.UserID) ShiftResult {
	inst, err := c.repo.Get(id)
	if err != nil {
		return ShiftResult{TaskID: id, Error: task.ErrNotFound.Error()}
	}
	if inst.OwnerID != from {
		return ShiftResult{TaskID: id, Error: task.ErrNotFound.Error()}
	}
	if inst.Status.IsTerminal() {
		return ShiftResult{TaskID: id, Error: "task is closed"}
	}

	// CAS on the read version holds the instance's serialization point for
	// the duration of the reassignment.
	if _, err := c.repo.Update(id, inst.Version, task.Patch{OwnerID: &to}); err != nil {
		return ShiftResult{TaskID: id, Error: err.Error()}
	}

	c.record(from, to, telemetry.EventMetadata{"task_id": string(id)})
	return ShiftResult{TaskID: id, OK: true}
}

// ShiftRecurring re-points whole recurrence series: the group owner plus
// every open instance. Terminal instances are left untouched so completed
// work keeps its historical owner.
func (c *Coordinator) ShiftRecurring(ctx context.Context, groupIDs []model.GroupID, from, to model.UserID) ([]GroupShiftResult, error) {
	if from == to {
		return nil, ErrSameOwner
	}

	results := make([]GroupShiftResult, 0, len(groupIDs))
	for _, gid := range groupIDs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, c.shiftGroup(gid, from, to))
	}
	return results, nil
}

func (c *Coordinator) shiftGroup(gid model.GroupID, from, to model.UserID) GroupShiftResult {
	res := GroupShiftResult{
		GroupID:  gid,
		Moved:    []model.TaskID{},
		Retained: []model.TaskID{},
	}

	g, err := c.repo.GetGroup(gid)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	if g.OwnerID != from {
		res.Error = task.ErrGroupNotFound.Error()
		return res
	}

	all, err := c.repo.List(task.ListFilter{Group: gid})
	if err != nil {
		res.Error = err.Error()
		return res
	}

	for _, inst := range all {
		if inst.Status.IsTerminal() {
			res.Retained = append(res.Retained, inst.ID)
			continue
		}
		if _, err := c.repo.Update(inst.ID, inst.Version, task.Patch{OwnerID: &to}); err != nil {
			res.Error = err.Error()
			return res
		}
		res.Moved = append(res.Moved, inst.ID)
	}

	if _, err := c.repo.UpdateGroupOwner(gid, to); err != nil {
		res.Error = err.Error()
		return res
	}

	res.OK = true
	c.record(from, to, telemetry.EventMetadata{
		"group_id": string(gid),
		"moved":    len(res.Moved),
		"retained": len(res.Retained),
	})
	return res
}

func (c *Coordinator) record(from, to model.UserID, md telemetry.EventMetadata) {
	if c.events == nil {
		return
	}
	md["from_owner"] = string(from)
	md["to_owner"] = string(to)
	if err := c.events.RecordEvent(telemetry.EventOwnershipShifted, md); err != nil {
		c.logger.Printf("transfer: record event: %v", err)
	}
}
