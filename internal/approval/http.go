package approval

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Finamite/TMS.finamite-sub001/internal/assign"
	"github.com/Finamite/TMS.finamite-sub001/internal/model"
	"github.com/Finamite/TMS.finamite-sub001/internal/task"
)

type Handler struct {
	svc         *Service
	svcResolver func(*http.Request) *Service

	assigner         *assign.Service
	assignerResolver func(*http.Request) *assign.Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) SetServiceResolver(fn func(*http.Request) *Service) {
	h.svcResolver = fn
}

// SetAssigner wires the creation path the reassign branch feeds into.
func (h *Handler) SetAssigner(svc *assign.Service) {
	h.assigner = svc
}

func (h *Handler) SetAssignerResolver(fn func(*http.Request) *assign.Service) {
	h.assignerResolver = fn
}

func (h *Handler) serviceForRequest(r *http.Request) *Service {
	if h.svcResolver != nil {
		if svc := h.svcResolver(r); svc != nil {
			return svc
		}
	}
	return h.svc
}

func (h *Handler) assignerForRequest(r *http.Request) *assign.Service {
	if h.assignerResolver != nil {
		if svc := h.assignerResolver(r); svc != nil {
			return svc
		}
	}
	return h.assigner
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

// Submit handles POST /api/tasks/{id}/submit.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, 405, "method not allowed")
		return
	}
	id := taskIDFromPath(r.URL.Path, "/submit")
	if id == "" {
		writeErr(w, 404, "not found")
		return
	}

	var in struct {
		CompletionRemarks string             `json:"completionRemarks"`
		Attachments       []model.Attachment `json:"attachments"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&in)
	}

	updated, err := h.serviceForRequest(r).Submit(r.Context(), id, in.CompletionRemarks, in.Attachments)
	if err != nil {
		writeApprovalErr(w, err)
		return
	}
	writeJSON(w, 200, updated)
}

// Decide handles POST /api/tasks/{id}/decide. When the outcome is
// rejected_reassign and the request names a new owner and due date, the
// successor instance is created in the same call; the payload is returned
// either way.
func (h *Handler) Decide(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, 405, "method not allowed")
		return
	}
	id := taskIDFromPath(r.URL.Path, "/decide")
	if id == "" {
		writeErr(w, 404, "not found")
		return
	}

	var in struct {
		Outcome   model.ApprovalOutcome `json:"outcome"`
		Remarks   string                `json:"remarks"`
		DecidedBy model.UserID          `json:"decidedBy"`
		NewOwner  model.UserID          `json:"newOwner,omitempty"`
		NewDue    string                `json:"newDueDate,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErr(w, 400, "bad json")
		return
	}

	updated, payload, err := h.serviceForRequest(r).Decide(r.Context(), id, in.Outcome, in.Remarks, in.DecidedBy)
	if err != nil {
		writeApprovalErr(w, err)
		return
	}

	out := map[string]any{"task": updated}
	if payload != nil {
		out["reassignPayload"] = payload

		if in.NewOwner != "" && in.NewDue != "" {
			if assigner := h.assignerForRequest(r); assigner != nil {
				successor, err := assigner.CreateReassigned(r.Context(), *payload, in.NewOwner, updated.Company, in.NewDue)
				if err != nil {
					out["successorError"] = err.Error()
				} else {
					out["successor"] = successor
				}
			}
		}
	}
	writeJSON(w, 200, out)
}

func writeApprovalErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, task.ErrNotFound):
		writeErr(w, 404, "not found")
	case errors.Is(err, task.ErrConflict):
		writeErr(w, 409, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		writeErr(w, 409, err.Error())
	case errors.Is(err, ErrApprovalNotRequired), errors.Is(err, ErrRemarksRequired), errors.Is(err, ErrUnknownOutcome):
		writeErr(w, 400, err.Error())
	default:
		writeErr(w, 500, err.Error())
	}
}

func taskIDFromPath(path, suffix string) model.TaskID {
	tail := strings.TrimPrefix(path, "/api/tasks/")
	tail = strings.TrimSuffix(strings.Trim(tail, "/"), strings.Trim(suffix, "/"))
	return model.TaskID(strings.Trim(tail, "/"))
}
