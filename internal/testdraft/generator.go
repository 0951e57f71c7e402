package testdraft

import (
	"fmt"
	"math/rand"

	"github.com/okian/draftsim/internal/domain/model"
	"github.com/okian/draftsim/internal/domain/types"
)

var (
	familyNames = []string{"佐藤", "鈴木", "高橋", "田中", "伊藤", "渡辺", "山本", "中村", "小林", "加藤", "吉田", "山田"}
	givenNames  = []string{"翔", "大輝", "蓮", "悠斗", "陽向", "湊", "健太", "拓海", "颯太", "優斗", "大和", "海斗"}
	clubs       = []string{"大阪桐蔭高", "横浜高", "明治大", "早稲田大", "ENEOS", "トヨタ自動車", "徳島インディゴソックス", "仙台育英高"}
	categories  = []string{"高校", "大学", "社会人", "独立"}
	positions   = []string{"右投手", "左投手", "先発", "抑え", "捕手", "一塁手", "二塁手", "三塁手", "遊撃手", "外野手"}
	grades      = []string{"1位競合", "1位一本釣り", "外れ1位", "2位", "3位", "4位", "5位", "6位以下", "育成"}
)

// GeneratePool creates n prospects with ids 1..n. The same seed yields the
// same pool.
func GeneratePool(n, year int, seed int64) []model.Candidate {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // test data
	pool := make([]model.Candidate, n)
	for i := range pool {
		primary := positions[rng.Intn(len(positions))]
		pos := []string{primary}
		if rng.Intn(5) == 0 {
			pos = append(pos, positions[rng.Intn(len(positions))])
		}
		// Skew grades toward the late rounds like a real board.
		grade := grades[min(rng.Intn(len(grades))+rng.Intn(3), len(grades)-1)]
		pool[i] = model.Candidate{
			ID:          int64(i + 1),
			Name:        fmt.Sprintf("%s %s%d", familyNames[rng.Intn(len(familyNames))], givenNames[rng.Intn(len(givenNames))], i+1),
			Team:        clubs[rng.Intn(len(clubs))],
			Positions:   pos,
			Category:    categories[rng.Intn(len(categories))],
			Evaluations: []string{grade},
			DraftYear:   year,
		}
	}
	return pool
}

// generateVotes spreads n single votes over the pool, favoring low ids.
func generateVotes(pool []model.Candidate, n, year int, seed int64) []playerVote {
	if len(pool) == 0 {
		return nil
	}
	rng := rand.New(rand.NewSource(seed + 1)) //nolint:gosec // test data
	teams := types.AllTeams()
	votes := make([]playerVote, n)
	for i := range votes {
		idx := min(rng.Intn(len(pool)), rng.Intn(len(pool)))
		votes[i] = playerVote{
			DraftYear: year,
			TeamID:    teams[rng.Intn(len(teams))].ID,
			PlayerID:  pool[idx].ID,
			Count:     1,
		}
	}
	return votes
}
