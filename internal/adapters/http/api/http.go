// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/okian/draftsim/internal/adapters/repository"
	service "github.com/okian/draftsim/internal/app"
	"github.com/okian/draftsim/internal/domain/dedupe"
	"github.com/okian/draftsim/internal/domain/lottery"
	"github.com/okian/draftsim/internal/domain/model"
	"github.com/okian/draftsim/internal/domain/scoring"
	"github.com/okian/draftsim/pkg/logger"
)

// maxBodyBytes bounds request bodies; candidate pools are the largest payload.
const maxBodyBytes = 8 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	StatsProvider

	CastPlayerVote(ctx context.Context, year int, team string, player int64, count int) error
	CastPositionVote(ctx context.Context, year int, team string, round int, position string, count int) error

	Order(ctx context.Context, round int) []string
	Score(ctx context.Context, in service.ScoreInput) ([]scoring.Evaluation, error)

	Submit(ctx context.Context, req model.SimulationRequest) (string, error)
	Run(ctx context.Context, id string) (repository.Run, error)
	SubmitPick(ctx context.Context, runID, team string, player int64) error

	Draw(ctx context.Context, in service.DrawInput) (lottery.DrawResult, error)
	ResolveFirstRound(ctx context.Context, req model.SimulationRequest) (lottery.Resolution, error)
	NewReveal(entries []model.LotteryEntry, onPhase func(lottery.Frame), onComplete func()) *lottery.Sequencer

	FindDuplicates(ctx context.Context, name string, existing []model.Candidate) []dedupe.Match
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	votesHandler      *VotesHandler
	scoreHandler      *ScoreHandler
	simulationHandler *SimulationHandler
	lotteryHandler    *LotteryHandler
	duplicateHandler  *DuplicateHandler
	logger            logger.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(deps),
		votesHandler:      NewVotesHandler(deps),
		scoreHandler:      NewScoreHandler(deps),
		simulationHandler: NewSimulationHandler(deps),
		lotteryHandler:    NewLotteryHandler(deps),
		duplicateHandler:  NewDuplicateHandler(deps),
		logger:            logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(LoggingMiddleware(s.logger))
	r.Use(MetricsMiddleware)

	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Handle("/metrics", s.healthHandler.MetricsHandler())
	r.Get("/stats", s.statsHandler.HandleStats)
	r.Get("/order/{round}", s.scoreHandler.HandleOrder)

	r.Route("/votes", func(r chi.Router) {
		r.Post("/players", s.votesHandler.HandlePlayerVote)
		r.Post("/positions", s.votesHandler.HandlePositionVote)
	})
	r.Post("/score", s.scoreHandler.HandleScore)

	r.Route("/simulations", func(r chi.Router) {
		r.Post("/", s.simulationHandler.HandleSubmit)
		r.Get("/{id}", s.simulationHandler.HandleGet)
		r.Post("/{id}/picks", s.simulationHandler.HandlePick)
	})

	r.Route("/lottery", func(r chi.Router) {
		r.Post("/draw", s.lotteryHandler.HandleDraw)
		r.Post("/resolve", s.lotteryHandler.HandleResolve)
		r.Post("/reveal", s.lotteryHandler.HandleReveal)
	})

	r.Post("/duplicates", s.duplicateHandler.HandleFindDuplicates)
}

// Router returns a chi router with every route registered.
func (s *Server) Router(ctx context.Context) chi.Router {
	r := chi.NewRouter()
	s.Register(ctx, r)
	return r
}

type errorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
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

// decodeAndValidate reads a JSON body into dst and runs struct validation.
// It writes the 400 response itself and reports whether the handler may go on.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, fmt.Errorf("%w: %v", ErrBadRequest, err))
		return false
	}
	if err := getValidator().Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    codeBadRequest,
			Message: ErrBadRequest.Error(),
			Fields:  formatValidationError(err),
		})
		return false
	}
	return true
}
