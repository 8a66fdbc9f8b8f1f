package revision

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Finamite/TMS.finamite-sub001/internal/model"
	"github.com/Finamite/TMS.finamite-sub001/internal/task"
)

type Handler struct {
	svc         *Service
	svcResolver func(*http.Request) *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) SetServiceResolver(fn func(*http.Request) *Service) {
	h.svcResolver = fn
}

func (h *Handler) serviceForRequest(r *http.Request) *Service {
	if h.svcResolver != nil {
		if svc := h.svcResolver(r); svc != nil {
			return svc
		}
	}
	return h.svc
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func writePolicyErr(w http.ResponseWriter, code string, err error) {
	writeJSON(w, 400, map[string]any{"error": err.Error(), "code": code})
}

// Revise handles POST /api/tasks/{id}/revise.
func (h *Handler) Revise(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, 405, "method not allowed")
		return
	}
	id := taskIDFromPath(r.URL.Path, "/revise")
	if id == "" {
		writeErr(w, 404, "not found")
		return
	}

	var in struct {
		NewDate   string       `json:"newDate"`
		Remarks   string       `json:"remarks"`
		RevisedBy model.UserID `json:"revisedBy"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErr(w, 400, "bad json")
		return
	}

	updated, err := h.serviceForRequest(r).Revise(r.Context(), id, in.NewDate, in.Remarks, in.RevisedBy)
	if err != nil {
		writeReviseErr(w, err)
		return
	}
	writeJSON(w, 200, updated)
}

// Window handles GET /api/tasks/{id}/revision-window.
func (h *Handler) Window(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, 405, "method not allowed")
		return
	}
	id := taskIDFromPath(r.URL.Path, "/revision-window")
	if id == "" {
		writeErr(w, 404, "not found")
		return
	}

	win, err := h.serviceForRequest(r).WindowFor(r.Context(), id)
	if err != nil {
		writeReviseErr(w, err)
		return
	}
	writeJSON(w, 200, win)
}

// Error kinds stay distinguishable on the wire via the code field.
func writeReviseErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, task.ErrNotFound):
		writeErr(w, 404, "not found")
	case errors.Is(err, task.ErrConflict):
		writeErr(w, 409, err.Error())
	case errors.Is(err, ErrTaskClosed):
		writeErr(w, 409, err.Error())
	case errors.Is(err, ErrRevisionsDisabled):
		writePolicyErr(w, "revisions_disabled", err)
	case errors.Is(err, ErrOutOfWindow):
		writePolicyErr(w, "out_of_window", err)
	case errors.Is(err, ErrRemarksRequired):
		writePolicyErr(w, "remarks_required", err)
	case errors.Is(err, ErrRevisionLimit):
		writePolicyErr(w, "revision_limit_exceeded", err)
	case errors.Is(err, ErrHighPriorityRestricted):
		writePolicyErr(w, "high_priority_restricted", err)
	default:
		writeErr(w, 500, err.Error())
	}
}

func taskIDFromPath(path, suffix string) model.TaskID {
	tail := strings.TrimPrefix(path, "/api/tasks/")
	tail = strings.TrimSuffix(strings.Trim(tail, "/"), strings.Trim(suffix, "/"))
	return model.TaskID(strings.Trim(tail, "/"))
}
