package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	service "github.com/okian/draftsim/internal/app"
	"github.com/okian/draftsim/internal/domain/model"
	"github.com/okian/draftsim/internal/domain/scoring"
)

// ScoreDependencies ranks candidates and exposes the round order.
type ScoreDependencies interface {
	Order(ctx context.Context, round int) []string
	Score(ctx context.Context, in service.ScoreInput) ([]scoring.Evaluation, error)
}

// ScoreHandler handles one-shot scoring and order lookups.
type ScoreHandler struct {
	deps ScoreDependencies
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(deps ScoreDependencies) *ScoreHandler {
	return &ScoreHandler{deps: deps}
}

type scoreRequest struct {
	Round       int                    `json:"round" validate:"gte=0"`
	TeamID      string                 `json:"team_id" validate:"required,team"`
	Pool        []model.Candidate      `json:"pool" validate:"required,min=1"`
	History     []model.Pick           `json:"history"`
	Weights     model.Weights          `json:"weights"`
	DraftYear   int                    `json:"draft_year" validate:"gte=0"`
	Unfulfilled model.UnfulfilledNeeds `json:"unfulfilled"`
}

type scoreResponse struct {
	TeamID  string               `json:"team_id"`
	Round   int                  `json:"round"`
	Ranking []scoring.Evaluation `json:"ranking"`
}

type orderResponse struct {
	Round int      `json:"round"`
	Teams []string `json:"teams"`
}

// HandleScore handles POST /score.
func (h *ScoreHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	ranked, err := h.deps.Score(r.Context(), service.ScoreInput{
		Round:       req.Round,
		TeamID:      req.TeamID,
		Pool:        req.Pool,
		History:     req.History,
		Weights:     req.Weights,
		DraftYear:   req.DraftYear,
		Unfulfilled: req.Unfulfilled,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	round := req.Round
	if round <= 0 {
		round = 1
	}
	writeJSON(w, http.StatusOK, scoreResponse{TeamID: req.TeamID, Round: round, Ranking: ranked})
}

// HandleOrder handles GET /order/{round}.
func (h *ScoreHandler) HandleOrder(w http.ResponseWriter, r *http.Request) {
	round, err := strconv.Atoi(chi.URLParam(r, "round"))
	if err != nil || round <= 0 {
		writeError(w, http.StatusBadRequest, codeBadRequest, ErrBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, orderResponse{Round: round, Teams: h.deps.Order(r.Context(), round)})
}
