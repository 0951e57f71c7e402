package lottery_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/okian/draftsim/internal/domain/lottery"
	"github.com/okian/draftsim/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var (
	shortstop = model.Candidate{ID: 1, Name: "SS", Positions: []string{"遊撃手"}}
	ace       = model.Candidate{ID: 2, Name: "Ace", Positions: []string{"投手"}}
	catcher   = model.Candidate{ID: 3, Name: "C", Positions: []string{"捕手"}}
	outfield  = model.Candidate{ID: 4, Name: "OF", Positions: []string{"外野手"}}
)

func TestDraw(t *testing.T) {
	Convey("Given simultaneous nominations", t, func() {
		noms := []lottery.Nomination{
			{TeamID: "tigers", Candidate: shortstop},
			{TeamID: "hawks", Candidate: shortstop},
			{TeamID: "carp", Candidate: ace},
		}
		priority := []string{"carp", "hawks", "tigers"}

		Convey("When drawn with a seeded source", func() {
			res, err := lottery.Draw(noms, priority, lottery.LabelFirst, rand.New(rand.NewSource(7)))

			Convey("Then uncontested nominations should win outright", func() {
				So(err, ShouldBeNil)
				So(len(res.Picks), ShouldEqual, 2)
				So(res.Picks[0].TeamID, ShouldEqual, "carp")
				So(res.Picks[0].Contested, ShouldBeFalse)
			})

			Convey("And the contested player should go to one competitor", func() {
				So(len(res.Entries), ShouldEqual, 1)
				e := res.Entries[0]
				So(e.CompetingTeams, ShouldResemble, []string{"hawks", "tigers"})
				So(e.WinnerTeam, ShouldBeIn, []string{"hawks", "tigers"})
				So(res.Picks[1].TeamID, ShouldEqual, e.WinnerTeam)
				So(res.Picks[1].Contested, ShouldBeTrue)
				So(len(res.Losers), ShouldEqual, 1)
			})

			Convey("And the same seed should reproduce the draw", func() {
				again, _ := lottery.Draw(noms, priority, lottery.LabelFirst, rand.New(rand.NewSource(7)))
				So(again, ShouldResemble, res)
			})
		})

		Convey("When drawn without a random source", func() {
			_, err := lottery.Draw(noms, priority, lottery.LabelFirst, nil)
			So(err, ShouldEqual, lottery.ErrNoRandom)
		})
	})
}

func TestResolve(t *testing.T) {
	Convey("Given three teams chasing the same shortstop", t, func() {
		prefs := map[string][]model.Candidate{
			"tigers": {shortstop, catcher, outfield},
			"hawks":  {shortstop, catcher, outfield},
			"carp":   {shortstop, ace},
		}
		nominate := func(_ context.Context, team string, taken map[int64]struct{}) (model.Candidate, bool, error) {
			for _, c := range prefs[team] {
				if _, ok := taken[c.ID]; !ok {
					return c, true, nil
				}
			}
			return model.Candidate{}, false, nil
		}

		Convey("When resolving the first round", func() {
			res, err := lottery.Resolve(context.Background(), []string{"tigers", "hawks", "carp"}, nominate,
				[]string{"carp", "hawks", "tigers"}, rand.New(rand.NewSource(1)))

			Convey("Then every team should end with a distinct pick", func() {
				So(err, ShouldBeNil)
				So(len(res.Picks), ShouldEqual, 3)
				seen := map[int64]bool{}
				teams := map[string]bool{}
				for _, p := range res.Picks {
					So(seen[p.PlayerID], ShouldBeFalse)
					seen[p.PlayerID] = true
					teams[p.TeamID] = true
					So(p.Round, ShouldEqual, 1)
				}
				So(len(teams), ShouldEqual, 3)
			})

			Convey("And redux picks should be labelled accordingly", func() {
				So(res.Picks[0].Label, ShouldEqual, lottery.LabelFirst)
				redux := 0
				for _, p := range res.Picks {
					if p.Label == lottery.LabelFirstRedux {
						redux++
					}
				}
				So(redux, ShouldEqual, 2)
				So(res.Draws, ShouldBeGreaterThanOrEqualTo, 2)
			})

			Convey("And losers should carry the lost shortstop as an unfulfilled need", func() {
				So(len(res.Needs), ShouldEqual, 2)
				for team, needs := range res.Needs {
					So(needs, ShouldContain, "遊撃手")
					for _, p := range res.Picks {
						if p.TeamID == team {
							So(p.PlayerID, ShouldNotEqual, shortstop.ID)
						}
					}
				}
			})
		})
	})
}
