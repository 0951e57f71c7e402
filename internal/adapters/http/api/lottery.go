package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	service "github.com/okian/draftsim/internal/app"
	"github.com/okian/draftsim/internal/domain/lottery"
	"github.com/okian/draftsim/internal/domain/model"
	"github.com/okian/draftsim/pkg/logger"
)

// phasesPerEntry is the number of frames the reveal emits for one entry.
const phasesPerEntry = 6

// LotteryDependencies draws first-round lotteries and drives reveals.
type LotteryDependencies interface {
	Draw(ctx context.Context, in service.DrawInput) (lottery.DrawResult, error)
	ResolveFirstRound(ctx context.Context, req model.SimulationRequest) (lottery.Resolution, error)
	NewReveal(entries []model.LotteryEntry, onPhase func(lottery.Frame), onComplete func()) *lottery.Sequencer
}

// LotteryHandler handles lottery requests.
type LotteryHandler struct {
	deps LotteryDependencies
}

// NewLotteryHandler creates a new lottery handler.
func NewLotteryHandler(deps LotteryDependencies) *LotteryHandler {
	return &LotteryHandler{deps: deps}
}

type nominationRequest struct {
	TeamID    string          `json:"team_id" validate:"required,team"`
	Candidate model.Candidate `json:"candidate"`
}

type drawRequest struct {
	Nominations []nominationRequest `json:"nominations" validate:"required,min=1,dive"`
	Redux       bool                `json:"redux"`
	Seed        int64               `json:"seed"`
}

type drawResponse struct {
	Entries []model.LotteryEntry       `json:"entries"`
	Picks   []model.Pick               `json:"picks"`
	Losers  map[string]model.Candidate `json:"losers"`
}

type resolveRequest struct {
	Pool        []model.Candidate      `json:"pool" validate:"required,min=1"`
	Weights     model.Weights          `json:"weights"`
	DraftYear   int                    `json:"draft_year" validate:"gte=0"`
	Unfulfilled model.UnfulfilledNeeds `json:"unfulfilled"`
	Seed        int64                  `json:"seed"`
}

type revealRequest struct {
	Entries []model.LotteryEntry `json:"entries" validate:"required,min=1"`
}

// HandleDraw handles POST /lottery/draw.
func (h *LotteryHandler) HandleDraw(w http.ResponseWriter, r *http.Request) {
	var req drawRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	noms := make([]lottery.Nomination, len(req.Nominations))
	for i, n := range req.Nominations {
		noms[i] = lottery.Nomination{TeamID: n.TeamID, Candidate: n.Candidate}
	}
	res, err := h.deps.Draw(r.Context(), service.DrawInput{Nominations: noms, Redux: req.Redux, Seed: req.Seed})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, drawResponse{Entries: res.Entries, Picks: res.Picks, Losers: res.Losers})
}

// HandleResolve handles POST /lottery/resolve.
func (h *LotteryHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	res, err := h.deps.ResolveFirstRound(r.Context(), model.SimulationRequest{
		Pool:        req.Pool,
		Weights:     req.Weights,
		DraftYear:   req.DraftYear,
		Unfulfilled: req.Unfulfilled,
		Seed:        req.Seed,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleReveal handles POST /lottery/reveal. It streams one server-sent
// "phase" event per frame and a final "complete" event. A client disconnect
// cancels the sequencer.
func (h *LotteryHandler) HandleReveal(w http.ResponseWriter, r *http.Request) {
	var req revealRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, codeInternal, ErrStreaming)
		return
	}

	// A reveal outlives the server's write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	frames := make(chan lottery.Frame, len(req.Entries)*phasesPerEntry+1)
	done := make(chan struct{})
	seq := h.deps.NewReveal(req.Entries,
		func(f lottery.Frame) { frames <- f },
		func() { close(done) },
	)
	defer seq.Cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	seq.Start()

	ctx := r.Context()
	log := logger.FromContext(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Debug(ctx, "reveal stream closed by client", logger.Int("entries", len(req.Entries)))
			return
		case f := <-frames:
			if err := writeEvent(w, "phase", f); err != nil {
				log.Warn(ctx, "reveal stream write failed", logger.Error(err))
				return
			}
			flusher.Flush()
		case <-done:
			// Frames published before completion are still buffered.
			for {
				select {
				case f := <-frames:
					if err := writeEvent(w, "phase", f); err != nil {
						return
					}
				default:
					_ = writeEvent(w, "complete", map[string]int{"entries": len(req.Entries)})
					flusher.Flush()
					return
				}
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event, err)
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return fmt.Errorf("failed to write %s event: %w", event, err)
	}
	return nil
}
