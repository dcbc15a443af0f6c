package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/okian/medallion/internal/domain/types"
)

// UserDependencies defines the interface for per-user reads.
type UserDependencies interface {
	UserBadges(ctx context.Context, user string, includeLocked bool) ([]types.UserBadge, error)
	Contributions(ctx context.Context, user string) (types.Contributions, error)
}

// UsersHandler handles per-user requests.
type UsersHandler struct {
	deps UserDependencies
}

// NewUsersHandler creates a new users handler.
func NewUsersHandler(deps UserDependencies) *UsersHandler {
	return &UsersHandler{deps: deps}
}

// HandleBadges handles GET /users/{user}/badges[?locked=true] requests.
func (h *UsersHandler) HandleBadges(w http.ResponseWriter, r *http.Request) {
	const op = "api.user_badges"
	includeLocked := false
	if v := r.URL.Query().Get("locked"); v != "" {
		var err error
		includeLocked, err = strconv.ParseBool(v)
		if err != nil {
			writeRequestError(w, NewKind(op, ErrBadRequest, "locked must be a boolean"))
			return
		}
	}
	badges, err := h.deps.UserBadges(r.Context(), r.PathValue("user"), includeLocked)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, badges)
}

// HandleContributions handles GET /users/{user}/contributions requests.
func (h *UsersHandler) HandleContributions(w http.ResponseWriter, r *http.Request) {
	c, err := h.deps.Contributions(r.Context(), r.PathValue("user"))
	if err != nil {
		writeServiceError(w, "api.contributions", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
