package lottery

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/okian/draftsim/internal/domain/model"
	"github.com/okian/draftsim/pkg/metrics"
)

// First-round pick labels.
const (
	LabelFirst      = "1位"
	LabelFirstRedux = "外れ1位"
)

// ErrNoRandom is returned when a draw is attempted without a random source.
var ErrNoRandom = errors.New("lottery: random source is required")

// Nomination is a team's first-round choice.
type Nomination struct {
	TeamID    string
	Candidate model.Candidate
}

// DrawResult is the outcome of one simultaneous nomination draw.
type DrawResult struct {
	Entries []model.LotteryEntry
	Picks   []model.Pick
	// Losers maps each losing team to the player it failed to win.
	Losers map[string]model.Candidate
}

// Draw resolves one set of simultaneous nominations. Uncontested nominations
// win outright; contested ones draw a winner with rng. Nominations are
// processed in priority order so that seeded draws are reproducible.
func Draw(noms []Nomination, priority []string, label string, rng *rand.Rand) (DrawResult, error) {
	if rng == nil {
		return DrawResult{}, ErrNoRandom
	}
	ranks := make(map[string]int, len(priority))
	for i, t := range priority {
		if _, ok := ranks[t]; !ok {
			ranks[t] = i
		}
	}
	sorted := append([]Nomination(nil), noms...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return rank(ranks, sorted[i].TeamID) < rank(ranks, sorted[j].TeamID)
	})

	var order []int64
	groups := make(map[int64][]Nomination)
	for _, n := range sorted {
		id := n.Candidate.ID
		if _, ok := groups[id]; !ok {
			order = append(order, id)
		}
		groups[id] = append(groups[id], n)
	}

	res := DrawResult{Losers: make(map[string]model.Candidate)}
	for _, id := range order {
		group := groups[id]
		cand := group[0].Candidate
		if len(group) == 1 {
			res.Picks = append(res.Picks, newPick(group[0].TeamID, cand, label, nil))
			continue
		}

		teams := make([]string, len(group))
		for i, n := range group {
			teams[i] = n.TeamID
		}
		winner := teams[rng.Intn(len(teams))]
		metrics.RecordLotteryDraw(len(teams))

		position := ""
		if len(cand.Positions) > 0 {
			position = cand.Positions[0]
		}
		res.Entries = append(res.Entries, model.LotteryEntry{
			PlayerID:       cand.ID,
			PlayerName:     cand.Name,
			Team:           cand.Team,
			Position:       position,
			CompetingTeams: teams,
			WinnerTeam:     winner,
		})
		res.Picks = append(res.Picks, newPick(winner, cand, label, teams))
		for _, t := range teams {
			if t != winner {
				res.Losers[t] = cand
			}
		}
	}
	return res, nil
}

func newPick(team string, c model.Candidate, label string, contesting []string) model.Pick {
	return model.Pick{
		TeamID:          team,
		PlayerID:        c.ID,
		PlayerName:      c.Name,
		Positions:       append([]string(nil), c.Positions...),
		Round:           1,
		Contested:       len(contesting) > 1,
		ContestingTeams: append([]string(nil), contesting...),
		Label:           label,
	}
}

// NominateFunc returns a team's nomination among players not in taken. It
// reports false when the team has nobody left to nominate.
type NominateFunc func(ctx context.Context, teamID string, taken map[int64]struct{}) (model.Candidate, bool, error)

// Resolution is a fully resolved first round.
type Resolution struct {
	Entries []model.LotteryEntry   `json:"entries"`
	Picks   []model.Pick           `json:"picks"`
	Needs   model.UnfulfilledNeeds `json:"unfulfilled"`
	Draws   int                    `json:"draws"`
}

// Resolve repeats draws until every team holds a first-round pick or has
// nothing left to nominate. Losing teams re-nominate with the redux label and
// the positions of players they lost are recorded as unfulfilled needs.
func Resolve(ctx context.Context, teams []string, nominate NominateFunc, priority []string, rng *rand.Rand) (Resolution, error) {
	res := Resolution{Needs: make(model.UnfulfilledNeeds)}
	taken := make(map[int64]struct{})
	pending := append([]string(nil), teams...)
	label := LabelFirst

	for len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if res.Draws > len(teams) {
			return res, fmt.Errorf("lottery: unresolved after %d draws", res.Draws)
		}

		var noms []Nomination
		for _, team := range pending {
			c, ok, err := nominate(ctx, team, taken)
			if err != nil {
				return res, fmt.Errorf("lottery: nominate for %s: %w", team, err)
			}
			if ok {
				noms = append(noms, Nomination{TeamID: team, Candidate: c})
			}
		}
		if len(noms) == 0 {
			break
		}

		drawn, err := Draw(noms, priority, label, rng)
		if err != nil {
			return res, err
		}
		res.Draws++
		res.Entries = append(res.Entries, drawn.Entries...)
		res.Picks = append(res.Picks, drawn.Picks...)
		for _, p := range drawn.Picks {
			taken[p.PlayerID] = struct{}{}
		}

		pending = pending[:0]
		for _, n := range noms {
			lost, ok := drawn.Losers[n.TeamID]
			if !ok {
				continue
			}
			pending = append(pending, n.TeamID)
			res.Needs[n.TeamID] = appendUnique(res.Needs[n.TeamID], lost.Positions...)
		}
		label = LabelFirstRedux
	}

	// A need is fulfilled when the team's eventual pick plays that position.
	for _, p := range res.Picks {
		needs, ok := res.Needs[p.TeamID]
		if !ok {
			continue
		}
		var left []string
		for _, n := range needs {
			if !contains(p.Positions, n) {
				left = append(left, n)
			}
		}
		if len(left) == 0 {
			delete(res.Needs, p.TeamID)
		} else {
			res.Needs[p.TeamID] = left
		}
	}
	return res, nil
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func appendUnique(dst []string, vals ...string) []string {
	for _, v := range vals {
		if !contains(dst, v) {
			dst = append(dst, v)
		}
	}
	return dst
}
