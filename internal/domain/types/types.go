// Package types contains the fixed league data shared across the application.
package types

// League identifies one of the two professional leagues.
type League string

// Leagues.
const (
	Central League = "central"
	Pacific League = "pacific"
)

// Team identifiers of the twelve professional clubs.
const (
	Giants    = "giants"
	Tigers    = "tigers"
	Dragons   = "dragons"
	BayStars  = "baystars"
	Carp      = "carp"
	Swallows  = "swallows"
	Hawks     = "hawks"
	Fighters  = "fighters"
	Marines   = "marines"
	Eagles    = "eagles"
	Lions     = "lions"
	Buffaloes = "buffaloes"
)

// Team describes a club that takes part in the draft.
type Team struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	League League `json:"league"`
}

var teams = []Team{
	{ID: Giants, Name: "読売ジャイアンツ", League: Central},
	{ID: Tigers, Name: "阪神タイガース", League: Central},
	{ID: Dragons, Name: "中日ドラゴンズ", League: Central},
	{ID: BayStars, Name: "横浜DeNAベイスターズ", League: Central},
	{ID: Carp, Name: "広島東洋カープ", League: Central},
	{ID: Swallows, Name: "東京ヤクルトスワローズ", League: Central},
	{ID: Hawks, Name: "福岡ソフトバンクホークス", League: Pacific},
	{ID: Fighters, Name: "北海道日本ハムファイターズ", League: Pacific},
	{ID: Marines, Name: "千葉ロッテマリーンズ", League: Pacific},
	{ID: Eagles, Name: "東北楽天ゴールデンイーグルス", League: Pacific},
	{ID: Lions, Name: "埼玉西武ライオンズ", League: Pacific},
	{ID: Buffaloes, Name: "オリックス・バファローズ", League: Pacific},
}

// AllTeams returns every club in registration order.
func AllTeams() []Team {
	out := make([]Team, len(teams))
	copy(out, teams)
	return out
}

// Lookup returns the club with the given id.
func Lookup(id string) (Team, bool) {
	for _, t := range teams {
		if t.ID == id {
			return t, true
		}
	}
	return Team{}, false
}

// Valid reports whether id names a known club.
func Valid(id string) bool {
	_, ok := Lookup(id)
	return ok
}
