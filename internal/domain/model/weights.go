package model

import "math"

// Weights are layer percentages blended into the composite score.
// They are intended to sum to 100 but this is not enforced.
type Weights struct {
	Vote         float64 `json:"vote" koanf:"vote"`
	TeamNeeds    float64 `json:"team_needs" koanf:"team_needs"`
	PlayerRating float64 `json:"player_rating" koanf:"player_rating"`
	Realism      float64 `json:"realism" koanf:"realism"`
}

// DefaultWeights returns the stock blend.
func DefaultWeights() Weights {
	return Weights{Vote: 40, TeamNeeds: 25, PlayerRating: 20, Realism: 15}
}

// Sum returns the total of all four weights.
func (w Weights) Sum() float64 {
	return w.Vote + w.TeamNeeds + w.PlayerRating + w.Realism
}

// Balanced reports whether the weights add up to 100 within rounding error.
func (w Weights) Balanced() bool {
	return math.Abs(w.Sum()-100) < 1e-9
}

// IsZero reports whether no weight was set.
func (w Weights) IsZero() bool {
	return w == Weights{}
}
