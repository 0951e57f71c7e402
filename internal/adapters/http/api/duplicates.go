package api

import (
	"context"
	"net/http"

	"github.com/okian/draftsim/internal/domain/dedupe"
	"github.com/okian/draftsim/internal/domain/model"
)

// DuplicateDependencies finds players with similar names.
type DuplicateDependencies interface {
	FindDuplicates(ctx context.Context, name string, existing []model.Candidate) []dedupe.Match
}

// DuplicateHandler handles duplicate-name checks.
type DuplicateHandler struct {
	deps DuplicateDependencies
}

// NewDuplicateHandler creates a new duplicate handler.
func NewDuplicateHandler(deps DuplicateDependencies) *DuplicateHandler {
	return &DuplicateHandler{deps: deps}
}

type duplicatesRequest struct {
	Name     string            `json:"name" validate:"required"`
	Existing []model.Candidate `json:"existing"`
}

type duplicatesResponse struct {
	Name       string         `json:"name"`
	Normalized string         `json:"normalized"`
	Matches    []dedupe.Match `json:"matches"`
}

// HandleFindDuplicates handles POST /duplicates.
func (h *DuplicateHandler) HandleFindDuplicates(w http.ResponseWriter, r *http.Request) {
	var req duplicatesRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	matches := h.deps.FindDuplicates(r.Context(), req.Name, req.Existing)
	if matches == nil {
		matches = []dedupe.Match{}
	}
	writeJSON(w, http.StatusOK, duplicatesResponse{
		Name:       req.Name,
		Normalized: dedupe.Normalize(req.Name),
		Matches:    matches,
	})
}
