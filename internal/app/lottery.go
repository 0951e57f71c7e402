package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/okian/draftsim/internal/domain/lottery"
	"github.com/okian/draftsim/internal/domain/model"
	"github.com/okian/draftsim/internal/domain/scoring"
	"github.com/okian/draftsim/internal/domain/types"
)

// DrawInput is a set of simultaneous first-round nominations.
type DrawInput struct {
	Nominations []lottery.Nomination
	Redux       bool
	Seed        int64
}

// Draw resolves one set of nominations. A zero seed draws from the clock.
func (s *Service) Draw(_ context.Context, in DrawInput) (lottery.DrawResult, error) {
	seen := make(map[string]struct{}, len(in.Nominations))
	for _, n := range in.Nominations {
		if !types.Valid(n.TeamID) {
			return lottery.DrawResult{}, fmt.Errorf("%w: unknown team %q", ErrInvalidRequest, n.TeamID)
		}
		if _, dup := seen[n.TeamID]; dup {
			return lottery.DrawResult{}, fmt.Errorf("%w: %s nominated twice", ErrInvalidRequest, n.TeamID)
		}
		seen[n.TeamID] = struct{}{}
	}
	label := lottery.LabelFirst
	if in.Redux {
		label = lottery.LabelFirstRedux
	}
	return lottery.Draw(in.Nominations, s.priority, label, newRand(in.Seed))
}

// ResolveFirstRound nominates every team's top-ranked player and repeats
// draws until round 1 is settled.
func (s *Service) ResolveFirstRound(ctx context.Context, req model.SimulationRequest) (lottery.Resolution, error) {
	req = s.withDefaults(req)
	if err := validateRequest(req); err != nil {
		return lottery.Resolution{}, err
	}
	return s.resolveFirstRound(ctx, req)
}

func (s *Service) resolveFirstRound(ctx context.Context, req model.SimulationRequest) (lottery.Resolution, error) {
	nominate := func(ctx context.Context, team string, taken map[int64]struct{}) (model.Candidate, bool, error) {
		avail := make([]model.Candidate, 0, len(req.Pool))
		for _, c := range req.Pool {
			if _, ok := taken[c.ID]; !ok {
				avail = append(avail, c)
			}
		}
		if len(avail) == 0 {
			return model.Candidate{}, false, nil
		}
		ranked := s.calculator.Rank(ctx, scoring.Request{
			Round:       1,
			TeamID:      team,
			Pool:        avail,
			Weights:     req.Weights,
			DraftYear:   req.DraftYear,
			Unfulfilled: req.Unfulfilled,
		})
		return ranked[0].Candidate, true, nil
	}
	return lottery.Resolve(ctx, s.orders.Teams(), nominate, s.priority, newRand(req.Seed))
}

// NewReveal builds a sequencer over entries using the service's timings and
// priority. The caller starts and cancels it.
func (s *Service) NewReveal(entries []model.LotteryEntry, onPhase func(lottery.Frame), onComplete func()) *lottery.Sequencer {
	return lottery.NewSequencer(entries,
		lottery.WithDurations(s.durations),
		lottery.WithScheduler(s.scheduler),
		lottery.WithPriority(s.priority),
		lottery.OnPhase(onPhase),
		lottery.OnComplete(onComplete),
	)
}

func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed)) //nolint:gosec // lottery draws are not security sensitive
}
