package model

// PickSource records how a pick was chosen.
type PickSource string

// Pick sources.
const (
	SourceAuto     PickSource = "auto"
	SourceHuman    PickSource = "human"
	SourceFallback PickSource = "fallback"
	SourceLottery  PickSource = "lottery"
)

// Pick is one entry of the append-only draft log.
type Pick struct {
	TeamID          string   `json:"team_id"`
	PlayerID        int64    `json:"player_id"`
	PlayerName      string   `json:"player_name"`
	Positions       []string `json:"positions,omitempty"`
	Round           int      `json:"round"`
	Development     bool     `json:"development,omitempty"`
	Contested       bool     `json:"contested,omitempty"`
	ContestingTeams []string `json:"contesting_teams,omitempty"`
	Label           string   `json:"label,omitempty"`
}

// Breakdown holds the four normalized layer scores and their weighted blend.
type Breakdown struct {
	Vote         float64 `json:"vote"`
	TeamNeeds    float64 `json:"team_needs"`
	PlayerRating float64 `json:"player_rating"`
	Realism      float64 `json:"realism"`
	Composite    float64 `json:"composite"`
}

// PickSummary pairs a pick with the scoring that justified it.
type PickSummary struct {
	Pick      Pick       `json:"pick"`
	Breakdown Breakdown  `json:"breakdown"`
	Reason    string     `json:"reason"`
	Source    PickSource `json:"source"`
}

// TeamPicks returns the picks made by team, preserving log order.
func TeamPicks(history []Pick, team string) []Pick {
	var out []Pick
	for _, p := range history {
		if p.TeamID == team {
			out = append(out, p)
		}
	}
	return out
}

// UnfulfilledNeeds maps a team to positions it wanted but did not get in round 1.
type UnfulfilledNeeds map[string][]string
