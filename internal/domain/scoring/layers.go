package scoring

import (
	"strings"

	"github.com/okian/draftsim/internal/domain/model"
)

// Layer scale and defaults.
const (
	maxLayerScore     = 100.0
	defaultNeedsScore = 50.0
	defaultRawRating  = 50.0
)

// Position match values.
const (
	matchExact    = 100.0
	matchPartial  = 70.0
	matchNeutral  = 50.0
	matchMismatch = 30.0
)

// Round-2 unfulfilled-need bonuses.
const (
	exactNeedBonus   = 30.0
	partialNeedBonus = 15.0
)

// Rating normalization range.
const (
	ratingFloor = 30.0
	ratingCeil  = 100.0
)

// Realism penalties and normalization range.
const (
	recencyPenalty   = 30.0
	sameTypePenalty  = 40.0
	realismFloor     = 70.0
	realismCeil      = 100.0
	sameTypeMaxRound = 3
	sameTypeMinPicks = 2
	recencyWindow    = 2
)

// tier maps an evaluation label to its rank score. Order matters: the first
// label contained in an evaluation wins.
type tier struct {
	label string
	score float64
}

var tiers = []tier{
	{"1位競合", 100},
	{"1位一本釣り", 95},
	{"外れ1位", 90},
	{"2位", 80},
	{"3位", 70},
	{"4位", 60},
	{"5位", 50},
	{"6位以下", 40},
	{"育成", 30},
}

// PositionMatch scores how well a candidate's positions satisfy a requested position.
func PositionMatch(positions []string, requested string) float64 {
	if requested == model.AnyPosition || requested == model.UnspecifiedPosition {
		return matchNeutral
	}
	for _, p := range positions {
		if p == requested {
			return matchExact
		}
	}
	if (requested == model.BroadPitcher || requested == model.BroadFielder) && model.MatchesBroad(positions, requested) {
		return matchExact
	}
	want := strings.ToLower(requested)
	for _, p := range positions {
		have := strings.ToLower(p)
		if have == "" || want == "" {
			continue
		}
		if strings.Contains(have, want) || strings.Contains(want, have) {
			return matchPartial
		}
	}
	return matchMismatch
}

// needsScore is the best weighted position match over the team's voted positions.
func needsScore(positions []string, positional map[string]int, maxPosition float64) float64 {
	if len(positional) == 0 {
		return defaultNeedsScore
	}
	best := 0.0
	for pos, count := range positional {
		s := float64(count) / maxPosition * PositionMatch(positions, pos)
		if s > best {
			best = s
		}
	}
	return clamp(best)
}

// applyUnfulfilledBonus raises the needs score when the candidate fills a
// position the team missed in round 1. Only the first matching need counts.
func applyUnfulfilledBonus(score float64, positions, needs []string) float64 {
	for _, need := range needs {
		m := PositionMatch(positions, need)
		if m == matchExact {
			return clamp(score + exactNeedBonus)
		}
		if m >= matchPartial {
			return clamp(score + partialNeedBonus)
		}
	}
	return score
}

// RatingScore averages the tier scores of evaluations and rescales 30-100 onto 0-100.
func RatingScore(evaluations []string) float64 {
	sum, n := 0.0, 0
	for _, ev := range evaluations {
		for _, t := range tiers {
			if strings.Contains(ev, t.label) {
				sum += t.score
				n++
				break
			}
		}
	}
	raw := defaultRawRating
	if n > 0 {
		raw = sum / float64(n)
	}
	return clamp((raw - ratingFloor) / (ratingCeil - ratingFloor) * maxLayerScore)
}

// realismScore penalizes repetitive picks for the team. It reports whether the
// recency penalty applied.
func realismScore(round int, positions []string, teamHistory []model.Pick) (float64, bool) {
	raw := realismCeil
	recency := false

	if n := len(teamHistory); n >= recencyWindow {
		recent := teamHistory[n-recencyWindow:]
		shared := true
		for _, p := range recent {
			if !model.SharesPosition(p.Positions, positions) {
				shared = false
				break
			}
		}
		if shared {
			raw -= recencyPenalty
			recency = true
		}
	}

	if round >= 1 && round <= sameTypeMaxRound {
		var early []model.Pick
		for _, p := range teamHistory {
			if p.Round >= 1 && p.Round <= sameTypeMaxRound {
				early = append(early, p)
			}
		}
		if len(early) >= sameTypeMinPicks {
			kind := model.BroadType(early[0].Positions)
			uniform := true
			for _, p := range early[1:] {
				if model.BroadType(p.Positions) != kind {
					uniform = false
					break
				}
			}
			if uniform && model.BroadType(positions) == kind {
				raw -= sameTypePenalty
			}
		}
	}

	return clamp((raw - realismFloor) / (realismCeil - realismFloor) * maxLayerScore), recency
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > maxLayerScore:
		return maxLayerScore
	default:
		return v
	}
}
