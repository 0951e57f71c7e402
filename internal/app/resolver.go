package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/draftsim/internal/adapters/repository"
	"github.com/okian/draftsim/internal/domain/scoring"
	"github.com/okian/draftsim/internal/domain/simulation"
	"github.com/okian/draftsim/pkg/logger"
)

// pendingPick is one outstanding human decision.
type pendingPick struct {
	team  string
	round int
	pool  map[int64]struct{}
	ch    chan int64
}

// pendingResolver parks a run until a human-controlled team's pick arrives
// through SubmitPick or the deadline passes.
type pendingResolver struct {
	runID   string
	runs    *repository.RunStore
	timeout time.Duration
	logger  logger.Logger

	mu      sync.Mutex
	current *pendingPick
}

func (s *Service) newResolver(runID string, log logger.Logger) *pendingResolver {
	return &pendingResolver{
		runID:   runID,
		runs:    s.runs,
		timeout: s.pickTimeout,
		logger:  log,
	}
}

// topIDs returns the ids of the first hintSize evaluations.
func topIDs(ranked []scoring.Evaluation) []int64 {
	var top []int64
	for i := 0; i < len(ranked) && i < hintSize; i++ {
		top = append(top, ranked[i].Candidate.ID)
	}
	return top
}

// Resolve publishes an awaiting-pick state and blocks for the choice. The
// hint reuses the driver's ranking so it reflects picks made earlier in the
// same round and the run's merged needs.
func (p *pendingResolver) Resolve(ctx context.Context, turn simulation.Turn) (int64, error) {
	round, team := turn.Round, turn.TeamID
	pick := &pendingPick{
		team:  team,
		round: round,
		pool:  make(map[int64]struct{}, len(turn.Pool)),
		ch:    make(chan int64, 1),
	}
	for _, c := range turn.Pool {
		pick.pool[c.ID] = struct{}{}
	}

	bg := context.WithoutCancel(ctx)
	deadline := time.Now().Add(p.timeout)
	top := topIDs(turn.Ranked)

	p.mu.Lock()
	p.current = pick
	p.mu.Unlock()
	_, _ = p.runs.Update(bg, p.runID, func(r *repository.Run) {
		r.Status = repository.StatusAwaitingPick
		r.Awaiting = &repository.Awaiting{TeamID: team, Round: round, Deadline: deadline, Top: top}
	})

	defer func() {
		p.mu.Lock()
		p.current = nil
		p.mu.Unlock()
		_, _ = p.runs.Update(bg, p.runID, func(r *repository.Run) {
			if r.Status == repository.StatusAwaitingPick {
				r.Status = repository.StatusRunning
			}
			r.Awaiting = nil
		})
	}()

	p.logger.Debug(ctx, "awaiting human pick",
		logger.String("team", team),
		logger.Int("round", round),
	)

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()
	select {
	case id := <-pick.ch:
		return id, nil
	case <-timer.C:
		return 0, fmt.Errorf("%w: %s round %d", ErrPickTimeout, team, round)
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// deliver hands a choice to the waiting run.
func (p *pendingResolver) deliver(team string, player int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return ErrNoPendingPick
	}
	if p.current.team != team {
		return fmt.Errorf("%w: awaiting %s", ErrWrongTeam, p.current.team)
	}
	if _, ok := p.current.pool[player]; !ok {
		return fmt.Errorf("%w: %d", ErrPlayerNotInPool, player)
	}
	select {
	case p.current.ch <- player:
		return nil
	default:
		return ErrPickSubmitted
	}
}
