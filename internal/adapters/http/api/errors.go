package api

import (
	"errors"
	"net/http"

	"github.com/okian/draftsim/internal/adapters/repository"
	service "github.com/okian/draftsim/internal/app"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrStreaming  = errors.New("streaming unsupported")
)

// Error codes carried in errorResponse.
const (
	codeBadRequest   = "bad_request"
	codeNotFound     = "not_found"
	codeConflict     = "conflict"
	codeBackpressure = "backpressure"
	codeUnavailable  = "unavailable"
	codeInternal     = "internal_error"
)

// statusFor maps a service error to its HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, service.ErrPlayerNotInPool),
		errors.Is(err, repository.ErrInvalidVote):
		return http.StatusBadRequest, codeBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, service.ErrNoPendingPick),
		errors.Is(err, service.ErrWrongTeam),
		errors.Is(err, service.ErrPickSubmitted):
		return http.StatusConflict, codeConflict
	case errors.Is(err, service.ErrQueueFull):
		return http.StatusTooManyRequests, codeBackpressure
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, codeUnavailable
	default:
		return http.StatusInternalServerError, codeInternal
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	writeError(w, status, code, err)
}
