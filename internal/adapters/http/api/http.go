// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/medallion/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	BadgeDependencies
	LeaderboardDependencies
	RankDependencies
	UserDependencies
	StatsProvider
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	badgesHandler      *BadgesHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler
	usersHandler       *UsersHandler
	limiter            *IPRateLimiter
}

// Option configures a Server.
type Option func(*serverOptions)

type serverOptions struct {
	maxLimit  int
	rateLimit float64
	rateBurst int
}

// WithMaxLeaderboardLimit caps the limit accepted by the leaderboard route.
func WithMaxLeaderboardLimit(n int) Option {
	return func(o *serverOptions) {
		if n > 0 {
			o.maxLimit = n
		}
	}
}

// WithRateLimit enables per-client rate limiting. A non-positive rps disables it.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *serverOptions) {
		o.rateLimit = rps
		o.rateBurst = burst
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	o := serverOptions{maxLimit: defaultMaxLimit}
	for _, opt := range opts {
		opt(&o)
	}
	s := &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
		badgesHandler:      NewBadgesHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, o.maxLimit),
		rankHandler:        NewRankHandler(deps),
		usersHandler:       NewUsersHandler(deps),
	}
	if o.rateLimit > 0 {
		s.limiter = NewIPRateLimiter(o.rateLimit, o.rateBurst)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	route := func(pattern, endpoint string, h http.HandlerFunc) {
		if s.limiter != nil {
			h = RateLimitMiddleware(s.limiter, endpoint)(h)
		}
		mux.HandleFunc(pattern, MetricsMiddleware(h, endpoint))
	}

	// Metrics are scraped, never limited.
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	route("GET /stats", "stats", s.statsHandler.HandleStats)
	route("GET /badges", "badges", s.badgesHandler.HandleList)
	route("GET /badges/{id}", "badge", s.badgesHandler.HandleGet)
	route("GET /badges/{id}/leaderboard", "leaderboard", s.leaderboardHandler.HandleGetLeaderboard)
	route("GET /badges/{id}/rank/{user}", "rank", s.rankHandler.HandleGetRank)
	route("GET /users/{user}/badges", "user_badges", s.usersHandler.HandleBadges)
	route("GET /users/{user}/contributions", "contributions", s.usersHandler.HandleContributions)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError translates an upstream error into a status and code.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	status, code := classify(err)
	writeError(w, status, code, Wrap(op, err))
}

// writeRequestError reports a request validation error built with NewKind,
// which already names the operation.
func writeRequestError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}
