package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/okian/draftsim/internal/domain/model"
	"github.com/okian/draftsim/internal/domain/types"
)

// VoteStore accumulates crowd votes per draft year. It implements
// scoring.VoteSource.
type VoteStore struct {
	mu    sync.RWMutex
	years map[int]model.VoteAggregate
}

// NewVoteStore creates an empty vote store.
func NewVoteStore() *VoteStore {
	return &VoteStore{years: make(map[int]model.VoteAggregate)}
}

// CastPlayerVote adds count votes for team drafting player in year.
func (s *VoteStore) CastPlayerVote(ctx context.Context, year int, team string, player int64, count int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkVote(year, team, count); err != nil {
		return err
	}
	if player <= 0 {
		return fmt.Errorf("%w: player id %d", ErrInvalidVote, player)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	agg := s.yearLocked(year)
	agg.Players[model.PlayerVoteKey{TeamID: team, PlayerID: player}] += count
	return nil
}

// CastPositionVote adds count votes for team taking position in round of year.
func (s *VoteStore) CastPositionVote(ctx context.Context, year int, team string, round int, position string, count int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkVote(year, team, count); err != nil {
		return err
	}
	position = strings.TrimSpace(position)
	if round <= 0 || position == "" {
		return fmt.Errorf("%w: round %d position %q", ErrInvalidVote, round, position)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	agg := s.yearLocked(year)
	agg.Positions[model.PositionVoteKey{TeamID: team, Round: round, Position: position}] += count
	return nil
}

// Aggregate returns a copy of the totals for year. Unknown years yield an
// empty aggregate.
func (s *VoteStore) Aggregate(ctx context.Context, year int) (model.VoteAggregate, error) {
	if err := ctx.Err(); err != nil {
		return model.VoteAggregate{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := model.NewVoteAggregate()
	agg, ok := s.years[year]
	if !ok {
		return out, nil
	}
	for k, v := range agg.Players {
		out.Players[k] = v
	}
	for k, v := range agg.Positions {
		out.Positions[k] = v
	}
	return out, nil
}

// Count returns the total number of votes cast across all years.
func (s *VoteStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, agg := range s.years {
		for _, v := range agg.Players {
			total += v
		}
		for _, v := range agg.Positions {
			total += v
		}
	}
	return total
}

func (s *VoteStore) yearLocked(year int) model.VoteAggregate {
	agg, ok := s.years[year]
	if !ok {
		agg = model.NewVoteAggregate()
		s.years[year] = agg
	}
	return agg
}

func checkVote(year int, team string, count int) error {
	if year <= 0 {
		return fmt.Errorf("%w: draft year %d", ErrInvalidVote, year)
	}
	if !types.Valid(team) {
		return fmt.Errorf("%w: unknown team %q", ErrInvalidVote, team)
	}
	if count <= 0 {
		return fmt.Errorf("%w: count %d", ErrInvalidVote, count)
	}
	return nil
}
