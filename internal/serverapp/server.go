package serverapp

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/Finamite/TMS.finamite-sub001/internal/approval"
	"github.com/Finamite/TMS.finamite-sub001/internal/assign"
	"github.com/Finamite/TMS.finamite-sub001/internal/config"
	"github.com/Finamite/TMS.finamite-sub001/internal/httpmw"
	"github.com/Finamite/TMS.finamite-sub001/internal/policy"
	"github.com/Finamite/TMS.finamite-sub001/internal/revision"
	"github.com/Finamite/TMS.finamite-sub001/internal/task"
	"github.com/Finamite/TMS.finamite-sub001/internal/telemetry"
	"github.com/Finamite/TMS.finamite-sub001/internal/transfer"
)

type Options struct {
	Config  *config.Config
	DataDir string
	Logger  *log.Logger
}

// companyFromRequest scopes persistence per company. Identity and session
// handling live outside the core; the company id arrives as an opaque
// header set by the API gateway.
func companyFromRequest(r *http.Request) string {
	if cid := strings.TrimSpace(r.Header.Get(httpmw.CompanyHeader)); cid != "" {
		return cid
	}
	return strings.TrimSpace(r.URL.Query().Get("company"))
}

func NewHandler(opts Options) (http.Handler, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if strings.TrimSpace(opts.DataDir) == "" {
		opts.DataDir = opts.Config.Server.DataDir
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	mux := http.NewServeMux()
	rr := &RouteRegistry{}

	events := telemetry.NewMemoryRepository()

	taskFileRepo, err := task.NewFileRepo(filepath.Join(opts.DataDir, "tasks"))
	if err != nil {
		return nil, err
	}
	repoFor := func(r *http.Request) task.Repo {
		return taskFileRepo.ForCompany(companyFromRequest(r))
	}

	policyStore, err := policy.NewFileRepo(
		filepath.Join(opts.DataDir, "policies"),
		policy.NewConfigStore(opts.Config),
	)
	if err != nil {
		return nil, err
	}

	taskHandler := task.NewHandler(taskFileRepo)
	taskHandler.SetRepoResolver(repoFor)

	assignHandler := assign.NewHandler(nil)
	assignHandler.SetServiceResolver(func(r *http.Request) *assign.Service {
		svc := assign.NewService(repoFor(r), events, opts.Logger)
		svc.SetMaxOwners(opts.Config.Tasks.Generation.MaxOwnersPerAssignment)
		return svc
	})

	revisionHandler := revision.NewHandler(nil)
	revisionHandler.SetServiceResolver(func(r *http.Request) *revision.Service {
		return revision.NewService(repoFor(r), policyStore, events, opts.Logger)
	})

	approvalHandler := approval.NewHandler(nil)
	approvalHandler.SetServiceResolver(func(r *http.Request) *approval.Service {
		return approval.NewService(repoFor(r), events, opts.Logger)
	})
	approvalHandler.SetAssignerResolver(func(r *http.Request) *assign.Service {
		return assign.NewService(repoFor(r), events, opts.Logger)
	})

	transferHandler := transfer.NewHandler(nil)
	transferHandler.SetCoordinatorResolver(func(r *http.Request) *transfer.Coordinator {
		return transfer.NewCoordinator(repoFor(r), events, opts.Logger)
	})

	policyHandler := policy.NewHandler(policyStore)

	rr.Add(RouteDoc{Method: "POST", Pattern: "/api/tasks", Summary: "create instances from a recurrence template"})
	rr.Add(RouteDoc{Method: "GET", Pattern: "/api/tasks", Summary: "list task instances"})
	mux.HandleFunc("/api/tasks", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			assignHandler.Create(w, r)
			return
		}
		taskHandler.TasksRoot(w, r)
	})

	rr.Add(RouteDoc{Method: "GET", Pattern: "/api/tasks/{id}", Summary: "fetch one task instance"})
	rr.Add(RouteDoc{Method: "POST", Pattern: "/api/tasks/{id}/revise", Summary: "move the due date inside the policy window"})
	rr.Add(RouteDoc{Method: "GET", Pattern: "/api/tasks/{id}/revision-window", Summary: "current allowed revision window"})
	rr.Add(RouteDoc{Method: "POST", Pattern: "/api/tasks/{id}/submit", Summary: "submit completion for approval"})
	rr.Add(RouteDoc{Method: "POST", Pattern: "/api/tasks/{id}/decide", Summary: "approve or reject a submitted task"})
	rr.Add(RouteDoc{Method: "GET", Pattern: "/api/tasks/{id}/calendar.ics", Summary: "iCalendar export"})
	mux.HandleFunc("/api/tasks/", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/revise"):
			revisionHandler.Revise(w, r)
		case strings.HasSuffix(r.URL.Path, "/revision-window"):
			revisionHandler.Window(w, r)
		case strings.HasSuffix(r.URL.Path, "/submit"):
			approvalHandler.Submit(w, r)
		case strings.HasSuffix(r.URL.Path, "/decide"):
			approvalHandler.Decide(w, r)
		default:
			taskHandler.TasksSub(w, r)
		}
	})

	handle(mux, rr, "GET /api/groups/", "fetch one task group", taskHandler.GroupsSub)
	handle(mux, rr, "POST /api/transfer/onetime", "bulk-shift one-time tasks between owners", transferHandler.OneTime)
	handle(mux, rr, "POST /api/transfer/recurring", "bulk-shift recurrence series between owners", transferHandler.Recurring)
	handle(mux, rr, "GET /api/policies/", "revision policy for a company", policyHandler.Get)

	rr.Add(RouteDoc{Method: "GET", Pattern: "/api/telemetry/stats", Summary: "lifecycle event stats"})
	mux.HandleFunc("/api/telemetry/stats", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
			return
		}
		since := time.Now().AddDate(0, 0, -30)
		evs, err := events.GetEvents(since, nil)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}
		stats, err := telemetry.CalculateStats(evs, since)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, stats)
	})

	mux.HandleFunc("/api/routes", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, rr.List())
	})

	mux.Handle("/api/config", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(opts.Config); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}))

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "tms-core",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if _, err := taskFileRepo.List(task.ListFilter{Status: "all"}); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"ok":    false,
				"error": "task storage unavailable",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "tms-core",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	return httpmw.Chain(
		mux,
		httpmw.WithAccessLog(opts.Logger),
		httpmw.WithRequestID,
		httpmw.WithRecover(opts.Logger),
	), nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
