package api

import (
	"context"
	"net/http"
	"strconv"
)

const (
	defaultMaxLimit = 100
	defaultLimit    = 10
)

// LeaderboardDependencies defines the interface for leaderboard operations.
type LeaderboardDependencies interface {
	TopN(ctx context.Context, badge string, n int) ([]Entry, error)
}

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps     LeaderboardDependencies
	maxLimit int
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies, maxLimit int) *LeaderboardHandler {
	if maxLimit < 1 {
		maxLimit = defaultMaxLimit
	}
	return &LeaderboardHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetLeaderboard handles GET /badges/{id}/leaderboard?limit=N requests.
// A missing limit returns the top ten, or fewer when the cap is lower.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	n := min(defaultLimit, h.maxLimit)
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		n, err = strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeRequestError(w, NewKind(op, ErrBadRequest, "limit must be a positive integer"))
			return
		}
	}
	if n > h.maxLimit {
		writeRequestError(w, NewKind(op, ErrLimitExceeded, "max "+strconv.Itoa(h.maxLimit)))
		return
	}
	entries, err := h.deps.TopN(r.Context(), r.PathValue("id"), n)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
