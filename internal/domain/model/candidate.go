// Package model contains domain models passed between layers.
package model

import "strings"

// Broad position categories used by team-needs votes.
const (
	BroadPitcher = "投手"
	BroadFielder = "野手"
)

// Requested positions that express no preference.
const (
	AnyPosition         = "全ポジション"
	UnspecifiedPosition = "指定なし"
)

// pitcherRoles are pitcher positions that do not contain the word 投手.
var pitcherRoles = map[string]struct{}{
	"先発":  {},
	"中継ぎ": {},
	"抑え":  {},
}

// Candidate is a prospect eligible to be drafted.
type Candidate struct {
	ID          int64    `json:"id" koanf:"id"`
	Name        string   `json:"name" koanf:"name"`
	Team        string   `json:"team" koanf:"team"`           // amateur club or school
	Positions   []string `json:"positions" koanf:"positions"` // first entry is the primary position
	Category    string   `json:"category" koanf:"category"`   // 高校, 大学, 社会人, 独立
	Evaluations []string `json:"evaluations" koanf:"evaluations"`
	DraftYear   int      `json:"draft_year" koanf:"draft_year"`
}

// IsPitcherPosition reports whether pos names a pitching role.
func IsPitcherPosition(pos string) bool {
	if strings.Contains(pos, BroadPitcher) {
		return true
	}
	_, ok := pitcherRoles[pos]
	return ok
}

// BroadType classifies positions as pitcher or fielder by the primary position.
// An empty list is treated as fielder.
func BroadType(positions []string) string {
	if len(positions) > 0 && IsPitcherPosition(positions[0]) {
		return BroadPitcher
	}
	return BroadFielder
}

// MatchesBroad reports whether any of positions belongs to the broad category.
func MatchesBroad(positions []string, broad string) bool {
	for _, p := range positions {
		pitcher := IsPitcherPosition(p)
		if broad == BroadPitcher && pitcher {
			return true
		}
		if broad == BroadFielder && !pitcher {
			return true
		}
	}
	return false
}

// SharesPosition reports whether a and b have at least one position in common.
func SharesPosition(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// IndexOf returns the index of the candidate with id in pool, or -1.
func IndexOf(pool []Candidate, id int64) int {
	for i := range pool {
		if pool[i].ID == id {
			return i
		}
	}
	return -1
}
