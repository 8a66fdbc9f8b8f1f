package assign

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Finamite/TMS.finamite-sub001/internal/schedule"
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

// POST /api/tasks — create instances from a recurrence template.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, 405, "method not allowed")
		return
	}

	var in CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErr(w, 400, "bad json")
		return
	}

	results, err := h.serviceForRequest(r).CreateFromTemplate(r.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoOwners), errors.Is(err, ErrTooManyOwners):
			writeErr(w, 400, err.Error())
		case isConfigError(err):
			writeErr(w, 400, err.Error())
		default:
			writeErr(w, 500, err.Error())
		}
		return
	}

	writeJSON(w, 201, map[string]any{"results": results})
}

func isConfigError(err error) bool {
	for _, sentinel := range []error{
		schedule.ErrUnknownCycle,
		schedule.ErrBadDate,
		schedule.ErrAnchorRequired,
		schedule.ErrWindowRequired,
		schedule.ErrWindowInverted,
		schedule.ErrWeeklyDaysRequired,
		schedule.ErrWeeklyDaysForbidden,
		schedule.ErrMonthlyDayRequired,
		schedule.ErrMonthlyDayForbidden,
		schedule.ErrMonthlyDayOutOfRange,
		schedule.ErrYearlyDuration,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
