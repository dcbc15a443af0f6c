package api

import (
	"context"
	"net/http"

	"github.com/okian/medallion/internal/domain/types"
)

// BadgeDependencies defines the interface for badge catalog reads.
type BadgeDependencies interface {
	Badges(ctx context.Context) ([]types.Badge, error)
	Badge(ctx context.Context, id string) (types.Badge, error)
}

// BadgesHandler handles badge catalog requests.
type BadgesHandler struct {
	deps BadgeDependencies
}

// NewBadgesHandler creates a new badges handler.
func NewBadgesHandler(deps BadgeDependencies) *BadgesHandler {
	return &BadgesHandler{deps: deps}
}

// HandleList handles GET /badges requests.
func (h *BadgesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	badges, err := h.deps.Badges(r.Context())
	if err != nil {
		writeServiceError(w, "api.list_badges", err)
		return
	}
	writeJSON(w, http.StatusOK, badges)
}

// HandleGet handles GET /badges/{id} requests.
func (h *BadgesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	b, err := h.deps.Badge(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, "api.get_badge", err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}
