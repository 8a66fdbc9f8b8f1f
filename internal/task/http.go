package task

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Finamite/TMS.finamite-sub001/internal/model"
)

type Handler struct {
	repo         Repo
	repoResolver func(*http.Request) Repo
}

func NewHandler(repo Repo) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) SetRepoResolver(fn func(*http.Request) Repo) {
	h.repoResolver = fn
}

func (h *Handler) repoForRequest(r *http.Request) Repo {
	if h.repoResolver != nil {
		if repo := h.repoResolver(r); repo != nil {
			return repo
		}
	}
	return h.repo
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

// /api/tasks  (collection, read side; creation goes through assign)
func (h *Handler) TasksRoot(w http.ResponseWriter, r *http.Request) {
	repo := h.repoForRequest(r)

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		filter := ListFilter{
			Status: q.Get("status"),
			Owner:  model.UserID(q.Get("owner")),
			Group:  model.GroupID(q.Get("group")),
		}
		ts, err := repo.List(filter)
		if err != nil {
			writeErr(w, 500, err.Error())
			return
		}
		writeJSON(w, 200, ts)
		return

	default:
		writeErr(w, 405, "method not allowed")
		return
	}
}

// /api/tasks/{id} and /api/tasks/{id}/calendar.ics
func (h *Handler) TasksSub(w http.ResponseWriter, r *http.Request) {
	repo := h.repoForRequest(r)

	tail := strings.TrimPrefix(r.URL.Path, "/api/tasks/")
	tail = strings.Trim(tail, "/")
	if tail == "" {
		writeErr(w, 404, "not found")
		return
	}

	parts := strings.Split(tail, "/")
	id := parts[0]

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			t, err := repo.Get(model.TaskID(id))
			if errors.Is(err, ErrNotFound) {
				writeErr(w, 404, "not found")
				return
			}
			if err != nil {
				writeErr(w, 500, err.Error())
				return
			}
			writeJSON(w, 200, t)
			return

		default:
			writeErr(w, 405, "method not allowed")
			return
		}
	}

	if len(parts) == 2 && parts[1] == "calendar.ics" {
		if r.Method != http.MethodGet {
			writeErr(w, 405, "method not allowed")
			return
		}
		t, err := repo.Get(model.TaskID(id))
		if errors.Is(err, ErrNotFound) {
			writeErr(w, 404, "not found")
			return
		}
		if err != nil {
			writeErr(w, 500, err.Error())
			return
		}

		var template *model.CalendarRuleSet
		if t.GroupID != "" {
			if g, err := repo.GetGroup(t.GroupID); err == nil {
				template = &g.Template
			}
		}
		ics, err := BuildTaskCalendarICS(t, template, timeNow())
		if err != nil {
			writeErr(w, 400, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.WriteHeader(200)
		_, _ = w.Write([]byte(ics))
		return
	}

	writeErr(w, 404, "not found")
}

// /api/groups/{id}
func (h *Handler) GroupsSub(w http.ResponseWriter, r *http.Request) {
	repo := h.repoForRequest(r)

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/groups/"), "/")
	if id == "" || r.Method != http.MethodGet {
		writeErr(w, 404, "not found")
		return
	}

	g, err := repo.GetGroup(model.GroupID(id))
	if errors.Is(err, ErrGroupNotFound) {
		writeErr(w, 404, "not found")
		return
	}
	if err != nil {
		writeErr(w, 500, err.Error())
		return
	}
	writeJSON(w, 200, g)
}
