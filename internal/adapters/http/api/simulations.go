package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/draftsim/internal/adapters/repository"
	"github.com/okian/draftsim/internal/domain/model"
)

// SimulationDependencies submits and inspects simulation runs.
type SimulationDependencies interface {
	Submit(ctx context.Context, req model.SimulationRequest) (string, error)
	Run(ctx context.Context, id string) (repository.Run, error)
	SubmitPick(ctx context.Context, runID, team string, player int64) error
}

// SimulationHandler handles simulation requests.
type SimulationHandler struct {
	deps SimulationDependencies
}

// NewSimulationHandler creates a new simulation handler.
func NewSimulationHandler(deps SimulationDependencies) *SimulationHandler {
	return &SimulationHandler{deps: deps}
}

type simulationRequest struct {
	Pool        []model.Candidate      `json:"pool" validate:"required,min=1"`
	Weights     model.Weights          `json:"weights"`
	DraftYear   int                    `json:"draft_year" validate:"gte=0"`
	Rounds      int                    `json:"rounds" validate:"gte=0,lte=20"`
	HumanTeams  []string               `json:"human_teams" validate:"omitempty,unique,dive,team"`
	Unfulfilled model.UnfulfilledNeeds `json:"unfulfilled"`
	History     []model.Pick           `json:"history"`
	Lottery     bool                   `json:"lottery"`
	Seed        int64                  `json:"seed"`
}

func (s *simulationRequest) toModel() model.SimulationRequest {
	return model.SimulationRequest{
		Pool:        s.Pool,
		Weights:     s.Weights,
		DraftYear:   s.DraftYear,
		Rounds:      s.Rounds,
		HumanTeams:  s.HumanTeams,
		Unfulfilled: s.Unfulfilled,
		History:     s.History,
		Lottery:     s.Lottery,
		Seed:        s.Seed,
	}
}

type submitResponse struct {
	ID     string               `json:"id"`
	Status repository.RunStatus `json:"status"`
}

type pickRequest struct {
	TeamID   string `json:"team_id" validate:"required,team"`
	PlayerID int64  `json:"player_id" validate:"required"`
}

// HandleSubmit handles POST /simulations.
func (h *SimulationHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req simulationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	id, err := h.deps.Submit(r.Context(), req.toModel())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Location", "/simulations/"+id)
	writeJSON(w, http.StatusAccepted, submitResponse{ID: id, Status: repository.StatusQueued})
}

// HandleGet handles GET /simulations/{id}.
func (h *SimulationHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	run, err := h.deps.Run(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// HandlePick handles POST /simulations/{id}/picks.
func (h *SimulationHandler) HandlePick(w http.ResponseWriter, r *http.Request) {
	var req pickRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.deps.SubmitPick(r.Context(), chi.URLParam(r, "id"), req.TeamID, req.PlayerID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}
