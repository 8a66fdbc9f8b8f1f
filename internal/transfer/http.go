package transfer

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Finamite/TMS.finamite-sub001/internal/model"
)

type Handler struct {
	coord         *Coordinator
	coordResolver func(*http.Request) *Coordinator
}

func NewHandler(coord *Coordinator) *Handler {
	return &Handler{coord: coord}
}

func (h *Handler) SetCoordinatorResolver(fn func(*http.Request) *Coordinator) {
	h.coordResolver = fn
}

func (h *Handler) coordinatorForRequest(r *http.Request) *Coordinator {
	if h.coordResolver != nil {
		if c := h.coordResolver(r); c != nil {
			return c
		}
	}
	return h.coord
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

// OneTime handles POST /api/transfer/onetime.
func (h *Handler) OneTime(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, 405, "method not allowed")
		return
	}

	var in struct {
		TaskIDs   []model.TaskID `json:"taskIds"`
		FromOwner model.UserID   `json:"fromOwner"`
		ToOwner   model.UserID   `json:"toOwner"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErr(w, 400, "bad json")
		return
	}

	results, err := h.coordinatorForRequest(r).ShiftOneTime(r.Context(), in.TaskIDs, in.FromOwner, in.ToOwner)
	if err != nil {
		if errors.Is(err, ErrSameOwner) {
			writeErr(w, 400, err.Error())
			return
		}
		writeErr(w, 500, err.Error())
		return
	}
	writeJSON(w, 200, map[string]any{"results": results})
}

// Recurring handles POST /api/transfer/recurring.
func (h *Handler) Recurring(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, 405, "method not allowed")
		return
	}

	var in struct {
		GroupIDs  []model.GroupID `json:"groupIds"`
		FromOwner model.UserID    `json:"fromOwner"`
		ToOwner   model.UserID    `json:"toOwner"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErr(w, 400, "bad json")
		return
	}

	results, err := h.coordinatorForRequest(r).ShiftRecurring(r.Context(), in.GroupIDs, in.FromOwner, in.ToOwner)
	if err != nil {
		if errors.Is(err, ErrSameOwner) {
			writeErr(w, 400, err.Error())
			return
		}
		writeErr(w, 500, err.Error())
		return
	}
	writeJSON(w, 200, map[string]any{"results": results})
}
