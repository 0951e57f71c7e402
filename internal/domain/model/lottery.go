package model

// LotteryEntry describes one contested first-round player for the reveal.
type LotteryEntry struct {
	PlayerID       int64    `json:"player_id"`
	PlayerName     string   `json:"player_name"`
	Team           string   `json:"team"`
	Position       string   `json:"position"`
	CompetingTeams []string `json:"competing_teams"`
	WinnerTeam     string   `json:"winner_team"`
}
