package model

// PlayerVoteKey identifies crowd votes for a team drafting a specific player.
type PlayerVoteKey struct {
	TeamID   string
	PlayerID int64
}

// PositionVoteKey identifies crowd votes for the position a team should take in a round.
type PositionVoteKey struct {
	TeamID   string
	Round    int
	Position string
}

// VoteAggregate is a snapshot of vote totals for one draft year.
type VoteAggregate struct {
	Players   map[PlayerVoteKey]int
	Positions map[PositionVoteKey]int
}

// NewVoteAggregate returns an empty aggregate ready for writes.
func NewVoteAggregate() VoteAggregate {
	return VoteAggregate{
		Players:   make(map[PlayerVoteKey]int),
		Positions: make(map[PositionVoteKey]int),
	}
}

// Empty reports whether the aggregate carries no votes at all.
func (a VoteAggregate) Empty() bool {
	return len(a.Players) == 0 && len(a.Positions) == 0
}

// PlayerVotes returns the votes for team drafting player.
func (a VoteAggregate) PlayerVotes(team string, player int64) int {
	return a.Players[PlayerVoteKey{TeamID: team, PlayerID: player}]
}

// MaxPlayerVotes returns the largest team+player count, never less than 1.
func (a VoteAggregate) MaxPlayerVotes() int {
	m := 1
	for _, v := range a.Players {
		if v > m {
			m = v
		}
	}
	return m
}

// PositionVotes returns the position -> count entries for team in round.
func (a VoteAggregate) PositionVotes(team string, round int) map[string]int {
	out := make(map[string]int)
	for k, v := range a.Positions {
		if k.TeamID == team && k.Round == round {
			out[k.Position] = v
		}
	}
	return out
}

// MaxPositionVotes returns the largest positional count, never less than 1.
func (a VoteAggregate) MaxPositionVotes() int {
	m := 1
	for _, v := range a.Positions {
		if v > m {
			m = v
		}
	}
	return m
}
