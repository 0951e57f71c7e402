// Package simulation drives a multi-round virtual draft, one pick at a time.
package simulation

import (
	"context"
	"fmt"

	"github.com/okian/draftsim/internal/domain/model"
	"github.com/okian/draftsim/internal/domain/scoring"
	"github.com/okian/draftsim/pkg/logger"
	"github.com/okian/draftsim/pkg/metrics"
)

// Default driver configuration constants.
const (
	defaultRounds = 10
	seededReason  = "resolved before simulation"
)

// Ranker scores the available pool for one slot.
type Ranker interface {
	Rank(ctx context.Context, req scoring.Request) []scoring.Evaluation
}

// OrderProvider returns the team order for a round.
type OrderProvider interface {
	Order(round int) []string
}

// Turn is one human decision point. Ranked is the driver's own ranking of
// Pool for the team, computed against History and the run's merged needs.
type Turn struct {
	Round   int
	TeamID  string
	Pool    []model.Candidate
	History []model.Pick
	Ranked  []scoring.Evaluation
}

// Resolver chooses a player on behalf of a human-controlled team. The
// returned id must belong to the turn's pool; anything else triggers the
// automatic pick.
type Resolver interface {
	Resolve(ctx context.Context, turn Turn) (int64, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, turn Turn) (int64, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, turn Turn) (int64, error) {
	return f(ctx, turn)
}

// ProgressFunc is called after every round with the accumulated result, or
// nil when no pick has been made yet.
type ProgressFunc func(round int, partial *Result)

// Input is the data for one run.
type Input struct {
	Pool        []model.Candidate
	Weights     model.Weights
	DraftYear   int
	Unfulfilled model.UnfulfilledNeeds
	// History seeds the log, e.g. with a resolved first-round lottery.
	History []model.Pick
}

// Result is the outcome of a run.
type Result struct {
	Picks     []model.Pick        `json:"picks"`
	Summaries []model.PickSummary `json:"summaries"`
	Remaining []model.Candidate   `json:"remaining"`
	Rounds    int                 `json:"rounds"`
}

// Driver runs simulations. A Driver holds configuration only and may be
// reused; each Run owns its own pool and log.
type Driver struct {
	ranker      Ranker
	orders      OrderProvider
	rounds      int
	humans      map[string]struct{}
	resolver    Resolver
	progress    ProgressFunc
	development int
	logger      logger.Logger
}

// New creates a Driver.
func New(ranker Ranker, orders OrderProvider, opts ...Option) *Driver {
	d := &Driver{
		ranker: ranker,
		orders: orders,
		rounds: defaultRounds,
		humans: make(map[string]struct{}),
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// run is the mutable state of a single simulation. Nothing outside Run holds
// a reference to it.
type run struct {
	pool   []model.Candidate
	result Result
}

// Run simulates the draft. Context cancellation is honored between rounds
// only; the partial result is returned together with the context error.
func (d *Driver) Run(ctx context.Context, in Input) (*Result, error) {
	r := &run{
		pool: append([]model.Candidate(nil), in.Pool...),
	}
	for _, p := range in.History {
		r.result.Picks = append(r.result.Picks, p)
		r.result.Summaries = append(r.result.Summaries, model.PickSummary{
			Pick:   p,
			Reason: seededReason,
			Source: model.SourceLottery,
		})
		if i := model.IndexOf(r.pool, p.PlayerID); i >= 0 {
			r.pool = append(r.pool[:i], r.pool[i+1:]...)
		}
	}
	seeded := len(r.result.Picks)
	if !in.Weights.Balanced() {
		d.logger.Warn(ctx, "weights do not sum to 100; composite scores are not normalized",
			logger.Float64("sum", in.Weights.Sum()))
	}

	startRound := 1
	for _, p := range in.History {
		if p.Round >= startRound {
			startRound = p.Round + 1
		}
	}

	for round := startRound; round <= d.rounds; round++ {
		if err := ctx.Err(); err != nil {
			return d.snapshot(r), fmt.Errorf("simulation stopped before round %d: %w", round, err)
		}
		if len(r.pool) == 0 {
			break
		}

		d.playRound(ctx, r, round, in)
		r.result.Rounds = round
		metrics.RecordRoundCompleted()

		if d.progress != nil {
			if len(r.result.Picks) == 0 {
				d.progress(round, nil)
			} else {
				d.progress(round, d.snapshot(r))
			}
		}
	}

	d.logger.Debug(ctx, "simulation finished",
		logger.Int("picks", len(r.result.Picks)-seeded),
		logger.Int("remaining", len(r.pool)),
	)
	return d.snapshot(r), nil
}

// playRound processes every team of round in order. Picks are strictly
// sequential: each one changes the pool and log seen by the next.
func (d *Driver) playRound(ctx context.Context, r *run, round int, in Input) {
	for _, team := range d.orders.Order(round) {
		if len(r.pool) == 0 {
			return
		}

		ranked := d.ranker.Rank(ctx, scoring.Request{
			Round:       round,
			TeamID:      team,
			Pool:        r.pool,
			History:     r.result.Picks,
			Weights:     in.Weights,
			DraftYear:   in.DraftYear,
			Unfulfilled: in.Unfulfilled,
		})
		if len(ranked) == 0 {
			return
		}

		chosen, source := ranked[0], model.SourceAuto
		if d.isHuman(team) {
			chosen, source = d.resolveHuman(ctx, r, round, team, ranked)
		}

		idx := model.IndexOf(r.pool, chosen.Candidate.ID)
		if idx < 0 {
			d.logger.Warn(ctx, "selected player is not in the pool; ending round",
				logger.Int("round", round),
				logger.String("team", team),
				logger.Int64("playerID", chosen.Candidate.ID),
			)
			return
		}

		pick := model.Pick{
			TeamID:      team,
			PlayerID:    chosen.Candidate.ID,
			PlayerName:  chosen.Candidate.Name,
			Positions:   append([]string(nil), chosen.Candidate.Positions...),
			Round:       round,
			Development: d.isDevelopment(round),
			Label:       d.label(round),
		}
		r.result.Picks = append(r.result.Picks, pick)
		r.result.Summaries = append(r.result.Summaries, model.PickSummary{
			Pick:      pick,
			Breakdown: chosen.Breakdown,
			Reason:    chosen.Reason,
			Source:    source,
		})
		r.pool = append(r.pool[:idx], r.pool[idx+1:]...)
		metrics.RecordPick(string(source))
	}
}

// resolveHuman asks the resolver for a choice and matches it against the
// ranking. Errors and unknown ids fall back to the top-ranked candidate.
func (d *Driver) resolveHuman(ctx context.Context, r *run, round int, team string, ranked []scoring.Evaluation) (scoring.Evaluation, model.PickSource) {
	if d.resolver == nil {
		return ranked[0], model.SourceFallback
	}
	id, err := d.resolver.Resolve(ctx, Turn{
		Round:   round,
		TeamID:  team,
		Pool:    append([]model.Candidate(nil), r.pool...),
		History: append([]model.Pick(nil), r.result.Picks...),
		Ranked:  append([]scoring.Evaluation(nil), ranked...),
	})
	if err != nil {
		d.logger.Warn(ctx, "human pick resolver failed; using top-ranked candidate",
			logger.Int("round", round),
			logger.String("team", team),
			logger.Error(err),
		)
		return ranked[0], model.SourceFallback
	}
	for _, e := range ranked {
		if e.Candidate.ID == id {
			return e, model.SourceHuman
		}
	}
	d.logger.Warn(ctx, "human pick not in available pool; using top-ranked candidate",
		logger.Int("round", round),
		logger.String("team", team),
		logger.Int64("playerID", id),
	)
	return ranked[0], model.SourceFallback
}

func (d *Driver) isHuman(team string) bool {
	_, ok := d.humans[team]
	return ok
}

func (d *Driver) isDevelopment(round int) bool {
	return d.development > 0 && round >= d.development
}

// label renders the pick label, e.g. "3位" or "育成1位".
func (d *Driver) label(round int) string {
	if d.isDevelopment(round) {
		return fmt.Sprintf("育成%d位", round-d.development+1)
	}
	return fmt.Sprintf("%d位", round)
}

// snapshot copies the accumulated result so callers cannot alias run state.
func (d *Driver) snapshot(r *run) *Result {
	return &Result{
		Picks:     append([]model.Pick(nil), r.result.Picks...),
		Summaries: append([]model.PickSummary(nil), r.result.Summaries...),
		Remaining: append([]model.Candidate(nil), r.pool...),
		Rounds:    r.result.Rounds,
	}
}
