package simulation_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/okian/draftsim/internal/domain/model"
	"github.com/okian/draftsim/internal/domain/order"
	"github.com/okian/draftsim/internal/domain/scoring"
	"github.com/okian/draftsim/internal/domain/simulation"
	. "github.com/smartystreets/goconvey/convey"
)

var tiers = []string{"1位競合", "1位一本釣り", "外れ1位", "2位", "3位", "4位", "5位", "6位以下", "育成"}

func pool(n int) []model.Candidate {
	positions := [][]string{{"投手"}, {"捕手"}, {"内野手"}, {"外野手"}}
	out := make([]model.Candidate, n)
	for i := range out {
		out[i] = model.Candidate{
			ID:          int64(i + 1),
			Name:        fmt.Sprintf("player-%d", i+1),
			Positions:   positions[i%len(positions)],
			Evaluations: []string{tiers[i%len(tiers)]},
			DraftYear:   2025,
		}
	}
	return out
}

func threeTeams() *order.Provider {
	return order.New(
		order.WithFirstRound([]string{"hawks", "lions", "carp"}),
		order.WithWaiver([]string{"carp", "lions", "hawks"}),
	)
}

type emptyRanker struct{}

func (emptyRanker) Rank(context.Context, scoring.Request) []scoring.Evaluation { return nil }

func TestDriver_Run(t *testing.T) {
	Convey("Given a driver over three teams", t, func() {
		calc := scoring.NewCalculator(nil)
		initial := pool(10)

		Convey("When the pool runs out before the last round", func() {
			d := simulation.New(calc, threeTeams(), simulation.WithRounds(10))
			res, err := d.Run(context.Background(), simulation.Input{Pool: initial})

			Convey("Then every player should be drafted exactly once", func() {
				So(err, ShouldBeNil)
				So(len(res.Picks), ShouldEqual, 10)
				seen := make(map[int64]bool)
				for _, p := range res.Picks {
					So(seen[p.PlayerID], ShouldBeFalse)
					seen[p.PlayerID] = true
				}
				So(len(res.Remaining), ShouldEqual, len(initial)-len(res.Picks))
				So(res.Rounds, ShouldEqual, 4)
			})

			Convey("And summaries should parallel picks", func() {
				So(len(res.Summaries), ShouldEqual, len(res.Picks))
				for i := range res.Picks {
					So(res.Summaries[i].Pick.PlayerID, ShouldEqual, res.Picks[i].PlayerID)
					So(res.Summaries[i].Source, ShouldEqual, model.SourceAuto)
				}
			})

			Convey("And the round order should be honored", func() {
				So(res.Picks[0].TeamID, ShouldEqual, "hawks")
				So(res.Picks[3].TeamID, ShouldEqual, "hawks")
				So(res.Picks[3].Round, ShouldEqual, 2)
				So(res.Picks[6].TeamID, ShouldEqual, "carp")
				So(res.Picks[0].Label, ShouldEqual, "1位")
			})

			Convey("And the caller's pool should be untouched", func() {
				So(len(initial), ShouldEqual, 10)
				So(initial[0].ID, ShouldEqual, 1)
			})
		})

		Convey("When the pool is larger than the draft", func() {
			d := simulation.New(calc, threeTeams(), simulation.WithRounds(2))
			res, err := d.Run(context.Background(), simulation.Input{Pool: pool(20)})

			Convey("Then it should stop after the configured rounds", func() {
				So(err, ShouldBeNil)
				So(len(res.Picks), ShouldEqual, 6)
				So(len(res.Remaining), ShouldEqual, 14)
			})
		})

		Convey("When development rounds are configured", func() {
			d := simulation.New(calc, threeTeams(), simulation.WithRounds(3), simulation.WithDevelopmentFrom(3))
			res, _ := d.Run(context.Background(), simulation.Input{Pool: pool(9)})

			Convey("Then late picks should be labelled as development picks", func() {
				So(res.Picks[8].Development, ShouldBeTrue)
				So(res.Picks[8].Label, ShouldEqual, "育成1位")
				So(res.Picks[0].Development, ShouldBeFalse)
			})
		})

		Convey("When the first round is seeded", func() {
			seed := []model.Pick{
				{TeamID: "hawks", PlayerID: 5, PlayerName: "player-5", Round: 1, Contested: true},
				{TeamID: "lions", PlayerID: 6, PlayerName: "player-6", Round: 1},
				{TeamID: "carp", PlayerID: 7, PlayerName: "player-7", Round: 1},
			}
			d := simulation.New(calc, threeTeams(), simulation.WithRounds(2))
			res, err := d.Run(context.Background(), simulation.Input{Pool: pool(10), History: seed})

			Convey("Then simulation should resume at round 2 without re-drafting seeded players", func() {
				So(err, ShouldBeNil)
				So(len(res.Picks), ShouldEqual, 6)
				So(res.Picks[3].Round, ShouldEqual, 2)
				So(res.Summaries[0].Source, ShouldEqual, model.SourceLottery)
				for _, p := range res.Picks[3:] {
					So(p.PlayerID, ShouldNotBeIn, []int64{5, 6, 7})
				}
				So(len(res.Remaining), ShouldEqual, 4)
			})
		})
	})
}

func TestDriver_HumanTeams(t *testing.T) {
	Convey("Given a human-controlled team", t, func() {
		calc := scoring.NewCalculator(nil)
		weights := model.Weights{PlayerRating: 100}

		Convey("When the resolver returns a player outside the pool", func() {
			resolver := simulation.ResolverFunc(func(context.Context, simulation.Turn) (int64, error) {
				return 999, nil
			})
			d := simulation.New(calc, threeTeams(), simulation.WithRounds(1),
				simulation.WithHumanTeams("hawks"), simulation.WithResolver(resolver))
			res, err := d.Run(context.Background(), simulation.Input{Pool: pool(5), Weights: weights})

			Convey("Then the top-ranked candidate should be recorded instead", func() {
				So(err, ShouldBeNil)
				So(res.Picks[0].TeamID, ShouldEqual, "hawks")
				So(res.Picks[0].PlayerID, ShouldEqual, 1)
				So(res.Summaries[0].Source, ShouldEqual, model.SourceFallback)
			})
		})

		Convey("When the resolver fails", func() {
			resolver := simulation.ResolverFunc(func(context.Context, simulation.Turn) (int64, error) {
				return 0, errors.New("timed out")
			})
			d := simulation.New(calc, threeTeams(), simulation.WithRounds(1),
				simulation.WithHumanTeams("hawks"), simulation.WithResolver(resolver))
			res, err := d.Run(context.Background(), simulation.Input{Pool: pool(5), Weights: weights})

			Convey("Then the run should continue with the automatic choice", func() {
				So(err, ShouldBeNil)
				So(len(res.Picks), ShouldEqual, 3)
				So(res.Picks[0].PlayerID, ShouldEqual, 1)
			})
		})

		Convey("When the resolver chooses a valid player", func() {
			var turn simulation.Turn
			resolver := simulation.ResolverFunc(func(_ context.Context, t simulation.Turn) (int64, error) {
				turn = t
				return 4, nil
			})
			d := simulation.New(calc, threeTeams(), simulation.WithRounds(1),
				simulation.WithHumanTeams("lions"), simulation.WithResolver(resolver))
			res, err := d.Run(context.Background(), simulation.Input{Pool: pool(5), Weights: weights})

			Convey("Then that player should be drafted with its own breakdown", func() {
				So(err, ShouldBeNil)
				So(res.Picks[1].TeamID, ShouldEqual, "lions")
				So(res.Picks[1].PlayerID, ShouldEqual, 4)
				So(res.Summaries[1].Source, ShouldEqual, model.SourceHuman)
				So(res.Summaries[1].Breakdown.PlayerRating, ShouldAlmostEqual, 50/0.7, 1e-9)
			})

			Convey("And the resolver should only see players still available", func() {
				So(turn.Round, ShouldEqual, 1)
				So(turn.TeamID, ShouldEqual, "lions")
				So(len(turn.Pool), ShouldEqual, 4)
				So(model.IndexOf(turn.Pool, 1), ShouldEqual, -1)
			})

			Convey("And the turn should carry the live log and ranking", func() {
				So(len(turn.History), ShouldEqual, 1)
				So(turn.History[0].TeamID, ShouldEqual, "hawks")
				So(turn.History[0].PlayerID, ShouldEqual, 1)
				So(len(turn.Ranked), ShouldEqual, 4)
				So(turn.Ranked[0].Candidate.ID, ShouldEqual, 2)
			})
		})

		Convey("When no resolver is configured", func() {
			d := simulation.New(calc, threeTeams(), simulation.WithRounds(1), simulation.WithHumanTeams("hawks"))
			res, _ := d.Run(context.Background(), simulation.Input{Pool: pool(5), Weights: weights})

			Convey("Then the team should pick automatically", func() {
				So(res.Picks[0].PlayerID, ShouldEqual, 1)
				So(res.Summaries[0].Source, ShouldEqual, model.SourceFallback)
			})
		})
	})
}

func TestDriver_Progress(t *testing.T) {
	Convey("Given a progress callback", t, func() {
		calc := scoring.NewCalculator(nil)

		Convey("When rounds complete", func() {
			var rounds []int
			var sizes []int
			d := simulation.New(calc, threeTeams(), simulation.WithRounds(3),
				simulation.WithProgress(func(round int, partial *simulation.Result) {
					rounds = append(rounds, round)
					sizes = append(sizes, len(partial.Picks))
				}))
			_, err := d.Run(context.Background(), simulation.Input{Pool: pool(12)})

			Convey("Then it should receive the accumulated result after each round", func() {
				So(err, ShouldBeNil)
				So(rounds, ShouldResemble, []int{1, 2, 3})
				So(sizes, ShouldResemble, []int{3, 6, 9})
			})
		})

		Convey("When nothing could be picked", func() {
			var got []*simulation.Result
			d := simulation.New(emptyRanker{}, threeTeams(), simulation.WithRounds(1),
				simulation.WithProgress(func(_ int, partial *simulation.Result) {
					got = append(got, partial)
				}))
			res, err := d.Run(context.Background(), simulation.Input{Pool: pool(3)})

			Convey("Then the callback should receive nil", func() {
				So(err, ShouldBeNil)
				So(len(got), ShouldEqual, 1)
				So(got[0], ShouldBeNil)
				So(len(res.Picks), ShouldEqual, 0)
				So(len(res.Remaining), ShouldEqual, 3)
			})
		})

		Convey("When the caller cancels from the callback", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			d := simulation.New(calc, threeTeams(), simulation.WithRounds(5),
				simulation.WithProgress(func(round int, _ *simulation.Result) {
					if round == 2 {
						cancel()
					}
				}))
			res, err := d.Run(ctx, simulation.Input{Pool: pool(30)})

			Convey("Then the run should stop at the round boundary with a partial result", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
				So(len(res.Picks), ShouldEqual, 6)
				So(len(res.Remaining), ShouldEqual, 24)
			})
		})
	})
}

type weightRecorder struct {
	seen []model.Weights
}

func (w *weightRecorder) Rank(_ context.Context, req scoring.Request) []scoring.Evaluation {
	w.seen = append(w.seen, req.Weights)
	out := make([]scoring.Evaluation, len(req.Pool))
	for i, c := range req.Pool {
		out[i] = scoring.Evaluation{Candidate: c}
	}
	return out
}

func TestDriver_WeightsPassThrough(t *testing.T) {
	Convey("Given a driver over a ranker that records weights", t, func() {
		rec := &weightRecorder{}
		d := simulation.New(rec, threeTeams(), simulation.WithRounds(1))

		Convey("When the input carries zero weights", func() {
			res, err := d.Run(context.Background(), simulation.Input{Pool: pool(3)})

			Convey("Then they should reach the ranker unchanged", func() {
				So(err, ShouldBeNil)
				So(res.Picks, ShouldHaveLength, 3)
				So(rec.seen, ShouldNotBeEmpty)
				for _, w := range rec.seen {
					So(w.IsZero(), ShouldBeTrue)
				}
			})
		})
	})
}
