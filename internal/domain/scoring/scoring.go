// Package scoring ranks draft candidates for a single (round, team) slot by
// blending crowd votes, team needs, scouting ratings and realism heuristics.
package scoring

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/okian/draftsim/internal/domain/model"
	"github.com/okian/draftsim/pkg/logger"
	"github.com/okian/draftsim/pkg/metrics"
)

// Rationale labels attached to evaluations.
const (
	ReasonVotes     = "high vote support"
	ReasonNeeds     = "matches team needs"
	ReasonRated     = "highly rated player"
	ReasonRecency   = "same position as recent pick"
	ReasonBalanced  = "balanced pick"
	reasonSeparator = ", "
)

// Rationale thresholds on the 0-100 layer scale.
const (
	voteReasonThreshold   = 60
	needsReasonThreshold  = 70
	ratingReasonThreshold = 70
)

// VoteSource supplies vote totals for a draft year. Implementations are
// consulted on every ranking call; results are never cached here.
type VoteSource interface {
	Aggregate(ctx context.Context, draftYear int) (model.VoteAggregate, error)
}

// Request describes one scoring call.
type Request struct {
	Round       int
	TeamID      string
	Pool        []model.Candidate
	History     []model.Pick
	Weights     model.Weights
	DraftYear   int
	Unfulfilled model.UnfulfilledNeeds // consulted only in round 2
}

// Evaluation is a scored candidate.
type Evaluation struct {
	Candidate      model.Candidate `json:"candidate"`
	Breakdown      model.Breakdown `json:"breakdown"`
	Reason         string          `json:"reason"`
	RecencyPenalty bool            `json:"recency_penalty"`
}

// Calculator computes ranked evaluations.
type Calculator struct {
	votes  VoteSource
	logger logger.Logger
}

// NewCalculator creates a calculator reading votes from source. A nil source
// behaves as if no votes were ever cast.
func NewCalculator(source VoteSource, opts ...Option) *Calculator {
	c := &Calculator{
		votes:  source,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Rank scores every candidate in req.Pool and returns them ordered by
// composite score, highest first. Ties keep pool order.
func (c *Calculator) Rank(ctx context.Context, req Request) []Evaluation {
	start := time.Now()
	defer func() {
		metrics.RecordScoringLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	agg := c.fetch(ctx, req.DraftYear)
	maxPlayer := float64(agg.MaxPlayerVotes())
	maxPosition := float64(agg.MaxPositionVotes())
	positional := agg.PositionVotes(req.TeamID, req.Round)
	teamHistory := model.TeamPicks(req.History, req.TeamID)

	var needs []string
	if req.Round == 2 && req.Unfulfilled != nil {
		needs = req.Unfulfilled[req.TeamID]
	}

	out := make([]Evaluation, 0, len(req.Pool))
	for _, cand := range req.Pool {
		vote := clamp(float64(agg.PlayerVotes(req.TeamID, cand.ID)) / maxPlayer * maxLayerScore)
		teamNeeds := needsScore(cand.Positions, positional, maxPosition)
		if len(needs) > 0 {
			teamNeeds = applyUnfulfilledBonus(teamNeeds, cand.Positions, needs)
		}
		rating := RatingScore(cand.Evaluations)
		realism, recency := realismScore(req.Round, cand.Positions, teamHistory)

		b := model.Breakdown{
			Vote:         vote,
			TeamNeeds:    teamNeeds,
			PlayerRating: rating,
			Realism:      realism,
		}
		b.Composite = composite(b, req.Weights)

		out = append(out, Evaluation{
			Candidate:      cand,
			Breakdown:      b,
			Reason:         reason(b, recency),
			RecencyPenalty: recency,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Breakdown.Composite > out[j].Breakdown.Composite
	})
	return out
}

// fetch loads the current vote aggregate, degrading to an empty one on failure.
func (c *Calculator) fetch(ctx context.Context, year int) model.VoteAggregate {
	if c.votes == nil {
		return model.NewVoteAggregate()
	}
	agg, err := c.votes.Aggregate(ctx, year)
	if err != nil {
		metrics.RecordVoteFetchFailure()
		c.logger.Warn(ctx, "vote aggregate unavailable; scoring without votes",
			logger.Int("draftYear", year),
			logger.Error(err),
		)
		return model.NewVoteAggregate()
	}
	if agg.Players == nil || agg.Positions == nil {
		filled := model.NewVoteAggregate()
		for k, v := range agg.Players {
			filled.Players[k] = v
		}
		for k, v := range agg.Positions {
			filled.Positions[k] = v
		}
		return filled
	}
	return agg
}

// composite blends the layers linearly. Weights are percentages and are not
// normalized, so unbalanced weights scale the result accordingly.
func composite(b model.Breakdown, w model.Weights) float64 {
	return b.Vote*w.Vote/100 +
		b.TeamNeeds*w.TeamNeeds/100 +
		b.PlayerRating*w.PlayerRating/100 +
		b.Realism*w.Realism/100
}

func reason(b model.Breakdown, recency bool) string {
	var parts []string
	if b.Vote > voteReasonThreshold {
		parts = append(parts, ReasonVotes)
	}
	if b.TeamNeeds > needsReasonThreshold {
		parts = append(parts, ReasonNeeds)
	}
	if b.PlayerRating > ratingReasonThreshold {
		parts = append(parts, ReasonRated)
	}
	if recency {
		parts = append(parts, ReasonRecency)
	}
	if len(parts) == 0 {
		return ReasonBalanced
	}
	return strings.Join(parts, reasonSeparator)
}
