package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/medallion/internal/adapters/repository"
	service "github.com/okian/medallion/internal/app"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest    = errors.New("bad request")
	ErrLimitExceeded = errors.New("limit exceeded")
	ErrRateLimited   = errors.New("too many requests")
)

// Wrap prefixes err with the operation that failed.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// NewKind returns a sentinel kind tagged with the operation and a detail.
func NewKind(op string, kind error, detail string) error {
	if detail == "" {
		return Wrap(op, kind)
	}
	return fmt.Errorf("%s: %w: %s", op, kind, detail)
}

// classify maps upstream errors to an HTTP status and a stable code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, repository.ErrInvalidLimit):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrLimitExceeded):
		return http.StatusBadRequest, "limit_exceeded"
	case errors.Is(err, service.ErrUnknownBadge):
		return http.StatusNotFound, "unknown_badge"
	case errors.Is(err, service.ErrUnknownUser):
		return http.StatusNotFound, "unknown_user"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "not_ready"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
