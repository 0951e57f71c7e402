package api

import (
	"context"
	"net/http"
)

// VoteDependencies records user votes.
type VoteDependencies interface {
	CastPlayerVote(ctx context.Context, year int, team string, player int64, count int) error
	CastPositionVote(ctx context.Context, year int, team string, round int, position string, count int) error
}

// VotesHandler handles vote requests.
type VotesHandler struct {
	deps VoteDependencies
}

// NewVotesHandler creates a new votes handler.
func NewVotesHandler(deps VoteDependencies) *VotesHandler {
	return &VotesHandler{deps: deps}
}

type playerVoteRequest struct {
	DraftYear int    `json:"draft_year" validate:"gte=0"`
	TeamID    string `json:"team_id" validate:"required,team"`
	PlayerID  int64  `json:"player_id" validate:"required"`
	Count     int    `json:"count" validate:"gte=0"`
}

type positionVoteRequest struct {
	DraftYear int    `json:"draft_year" validate:"gte=0"`
	TeamID    string `json:"team_id" validate:"required,team"`
	Round     int    `json:"round" validate:"required,gt=0"`
	Position  string `json:"position" validate:"required"`
	Count     int    `json:"count" validate:"gte=0"`
}

type ackResponse struct {
	Status string `json:"status"`
}

// HandlePlayerVote handles POST /votes/players.
func (h *VotesHandler) HandlePlayerVote(w http.ResponseWriter, r *http.Request) {
	var req playerVoteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.deps.CastPlayerVote(r.Context(), req.DraftYear, req.TeamID, req.PlayerID, req.Count); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}

// HandlePositionVote handles POST /votes/positions.
func (h *VotesHandler) HandlePositionVote(w http.ResponseWriter, r *http.Request) {
	var req positionVoteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.deps.CastPositionVote(r.Context(), req.DraftYear, req.TeamID, req.Round, req.Position, req.Count); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}
