package policy

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Finamite/TMS.finamite-sub001/internal/model"
)

type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// Get handles GET /api/policies/{companyId}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusMethodNotAllowed)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "method not allowed"})
		return
	}

	companyID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/policies/"), "/")
	pol := h.store.Get(model.CompanyID(companyID))

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(pol)
}
