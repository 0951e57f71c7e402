package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/okian/draftsim/internal/adapters/repository"
	service "github.com/okian/draftsim/internal/app"
	"github.com/okian/draftsim/internal/domain/lottery"
	"github.com/okian/draftsim/internal/domain/model"
	"github.com/okian/draftsim/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

var evaluations = []string{"1位競合", "外れ1位", "2位", "3位", "4位", "5位", "6位以下", "育成"}

func testPool(n int) []model.Candidate {
	pool := make([]model.Candidate, n)
	for i := range pool {
		pos := "外野手"
		if i%2 == 0 {
			pos = "投手"
		}
		pool[i] = model.Candidate{
			ID:          int64(i + 1),
			Name:        fmt.Sprintf("選手%d", i+1),
			Team:        "テスト大学",
			Positions:   []string{pos},
			Category:    "大学",
			Evaluations: []string{evaluations[i%len(evaluations)]},
			DraftYear:   2025,
		}
	}
	return pool
}

func startService(opts ...service.Option) *service.Service {
	svc := service.New(opts...)
	So(svc.Start(context.Background()), ShouldBeNil)
	return svc
}

func waitFor(svc *service.Service, id string, ok func(repository.Run) bool) repository.Run {
	deadline := time.Now().Add(5 * time.Second)
	for {
		run, err := svc.Run(context.Background(), id)
		if err == nil && ok(run) {
			return run
		}
		if time.Now().After(deadline) {
			return run
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func terminal(r repository.Run) bool { return r.Status.Terminal() }

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(service.WithWorkerCount(2), service.WithQueueSize(10))

		Convey("Submit fails before Start", func() {
			_, err := svc.Submit(context.Background(), model.SimulationRequest{Pool: testPool(4)})
			So(err, ShouldEqual, service.ErrNotStarted)
		})

		Convey("When started", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			So(svc.Start(context.Background()), ShouldBeNil)

			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, true)
			So(stats["workerCount"], ShouldEqual, 2)
			So(stats["activeWorkers"], ShouldEqual, 0)

			Convey("Then Stop marks it stopped and is idempotent", func() {
				So(svc.Stop(context.Background()), ShouldBeNil)
				So(svc.Stop(context.Background()), ShouldBeNil)
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_Submit(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := startService(service.WithWorkerCount(2), service.WithRounds(3))
		defer func() { _ = svc.Stop(context.Background()) }()
		ctx := context.Background()

		Convey("When a simulation is submitted", func() {
			id, err := svc.Submit(ctx, model.SimulationRequest{Pool: testPool(60)})
			So(err, ShouldBeNil)
			So(id, ShouldNotBeEmpty)

			run := waitFor(svc, id, terminal)

			Convey("Then every team picks once per round", func() {
				So(run.Status, ShouldEqual, repository.StatusCompleted)
				So(run.CompletedRounds, ShouldEqual, 3)
				So(len(run.Picks), ShouldEqual, 36)
				So(run.Remaining, ShouldEqual, 24)
				So(run.Picks[0].Label, ShouldEqual, "1位")
				So(run.Summaries[0].Source, ShouldEqual, model.SourceAuto)
			})

			Convey("And no player is drafted twice", func() {
				seen := map[int64]bool{}
				for _, p := range run.Picks {
					So(seen[p.PlayerID], ShouldBeFalse)
					seen[p.PlayerID] = true
				}
			})
		})

		Convey("When the pool runs out mid-draft", func() {
			id, err := svc.Submit(ctx, model.SimulationRequest{Pool: testPool(15)})
			So(err, ShouldBeNil)
			run := waitFor(svc, id, terminal)

			So(run.Status, ShouldEqual, repository.StatusCompleted)
			So(len(run.Picks), ShouldEqual, 15)
			So(run.Remaining, ShouldEqual, 0)
		})

		Convey("When the request is invalid", func() {
			_, err := svc.Submit(ctx, model.SimulationRequest{})
			So(err, ShouldWrap, service.ErrInvalidRequest)

			dup := testPool(3)
			dup[2].ID = dup[0].ID
			_, err = svc.Submit(ctx, model.SimulationRequest{Pool: dup})
			So(err, ShouldWrap, service.ErrInvalidRequest)

			_, err = svc.Submit(ctx, model.SimulationRequest{Pool: testPool(3), HumanTeams: []string{"yankees"}})
			So(err, ShouldWrap, service.ErrInvalidRequest)
		})

		Convey("When the seeded history does not match the pool", func() {
			_, err := svc.Submit(ctx, model.SimulationRequest{
				Pool:    testPool(3),
				History: []model.Pick{{TeamID: "hawks", PlayerID: 99, Round: 1}},
			})
			So(err, ShouldWrap, service.ErrInvalidRequest)

			_, err = svc.Submit(ctx, model.SimulationRequest{
				Pool: testPool(3),
				History: []model.Pick{
					{TeamID: "hawks", PlayerID: 1, Round: 1},
					{TeamID: "lions", PlayerID: 1, Round: 1},
				},
			})
			So(err, ShouldWrap, service.ErrInvalidRequest)

			id, err := svc.Submit(ctx, model.SimulationRequest{
				Pool:    testPool(30),
				History: []model.Pick{{TeamID: "hawks", PlayerID: 1, Round: 1}},
			})
			So(err, ShouldBeNil)
			So(waitFor(svc, id, terminal).Status, ShouldEqual, repository.StatusCompleted)
		})

		Convey("When the run id is unknown", func() {
			_, err := svc.Run(ctx, "missing")
			So(err, ShouldWrap, repository.ErrNotFound)
		})
	})
}

func TestService_HumanPicks(t *testing.T) {
	Convey("Given a simulation with a human-controlled team", t, func() {
		svc := startService(
			service.WithWorkerCount(1),
			service.WithRounds(1),
			service.WithHumanPickTimeout(5*time.Second),
		)
		defer func() { _ = svc.Stop(context.Background()) }()
		ctx := context.Background()

		id, err := svc.Submit(ctx, model.SimulationRequest{
			Pool:       testPool(24),
			HumanTeams: []string{types.Giants},
		})
		So(err, ShouldBeNil)

		run := waitFor(svc, id, func(r repository.Run) bool { return r.Status == repository.StatusAwaitingPick })
		So(run.Status, ShouldEqual, repository.StatusAwaitingPick)
		So(run.Awaiting, ShouldNotBeNil)
		So(run.Awaiting.TeamID, ShouldEqual, types.Giants)
		So(run.Awaiting.Round, ShouldEqual, 1)
		So(len(run.Awaiting.Top), ShouldEqual, 5)

		Convey("Then a pick for another team is rejected", func() {
			err := svc.SubmitPick(ctx, id, types.Tigers, run.Awaiting.Top[0])
			So(err, ShouldWrap, service.ErrWrongTeam)
		})

		Convey("Then a player outside the pool is rejected", func() {
			err := svc.SubmitPick(ctx, id, types.Giants, 9999)
			So(err, ShouldWrap, service.ErrPlayerNotInPool)
		})

		Convey("When the human picks a lower-ranked player", func() {
			choice := run.Awaiting.Top[4]
			So(svc.SubmitPick(ctx, id, types.Giants, choice), ShouldBeNil)

			done := waitFor(svc, id, terminal)
			So(done.Status, ShouldEqual, repository.StatusCompleted)
			So(done.Awaiting, ShouldBeNil)

			var found bool
			for _, s := range done.Summaries {
				if s.Pick.TeamID == types.Giants {
					found = true
					So(s.Pick.PlayerID, ShouldEqual, choice)
					So(s.Source, ShouldEqual, model.SourceHuman)
				}
			}
			So(found, ShouldBeTrue)

			Convey("Then later picks find nothing pending", func() {
				So(svc.SubmitPick(ctx, id, types.Giants, choice), ShouldEqual, service.ErrNoPendingPick)
			})
		})
	})

	Convey("Given a human team that never answers", t, func() {
		svc := startService(
			service.WithWorkerCount(1),
			service.WithRounds(1),
			service.WithHumanPickTimeout(20*time.Millisecond),
		)
		defer func() { _ = svc.Stop(context.Background()) }()

		id, err := svc.Submit(context.Background(), model.SimulationRequest{
			Pool:       testPool(24),
			HumanTeams: []string{types.Giants},
		})
		So(err, ShouldBeNil)

		done := waitFor(svc, id, terminal)

		Convey("Then the top-ranked player is taken on its behalf", func() {
			So(done.Status, ShouldEqual, repository.StatusCompleted)
			for _, s := range done.Summaries {
				if s.Pick.TeamID == types.Giants {
					So(s.Source, ShouldEqual, model.SourceFallback)
				}
			}
		})
	})
}

func TestService_HumanHintFollowsLiveLog(t *testing.T) {
	Convey("Given a human team drafting after a seeded first round", t, func() {
		svc := startService(
			service.WithWorkerCount(1),
			service.WithRounds(2),
			service.WithHumanPickTimeout(300*time.Millisecond),
		)
		defer func() { _ = svc.Stop(context.Background()) }()

		var history []model.Pick
		taken := make(map[int64]bool)
		for i, team := range types.AllTeams() {
			id := int64(2*i + 1)
			history = append(history, model.Pick{TeamID: team.ID, PlayerID: id, Positions: []string{"投手"}, Round: 1})
			taken[id] = true
		}
		id, err := svc.Submit(context.Background(), model.SimulationRequest{
			Pool:       testPool(40),
			History:    history,
			HumanTeams: []string{types.Giants},
		})
		So(err, ShouldBeNil)

		run := waitFor(svc, id, func(r repository.Run) bool { return r.Status == repository.StatusAwaitingPick })
		So(run.Awaiting, ShouldNotBeNil)
		So(run.Awaiting.Round, ShouldEqual, 2)
		top := run.Awaiting.Top
		So(len(top), ShouldEqual, 5)

		Convey("Then the hint should skip seeded players and lead with the automatic choice", func() {
			for _, p := range top {
				So(taken[p], ShouldBeFalse)
			}
			done := waitFor(svc, id, terminal)
			So(done.Status, ShouldEqual, repository.StatusCompleted)
			var found bool
			for _, s := range done.Summaries {
				if s.Pick.TeamID == types.Giants && s.Pick.Round == 2 {
					found = true
					So(s.Source, ShouldEqual, model.SourceFallback)
					So(s.Pick.PlayerID, ShouldEqual, top[0])
				}
			}
			So(found, ShouldBeTrue)
		})
	})
}

func TestService_QueueFull(t *testing.T) {
	Convey("Given a single worker blocked on a human pick and a queue of one", t, func() {
		svc := startService(
			service.WithWorkerCount(1),
			service.WithQueueSize(1),
			service.WithRounds(1),
			service.WithHumanPickTimeout(200*time.Millisecond),
		)
		defer func() { _ = svc.Stop(context.Background()) }()
		ctx := context.Background()
		req := model.SimulationRequest{Pool: testPool(24), HumanTeams: []string{types.Lions}}

		first, err := svc.Submit(ctx, req)
		So(err, ShouldBeNil)
		waitFor(svc, first, func(r repository.Run) bool { return r.Status == repository.StatusAwaitingPick })

		Convey("Then submissions are rejected once the buffer fills", func() {
			var rejected error
			for i := 0; i < 5 && rejected == nil; i++ {
				_, rejected = svc.Submit(ctx, req)
			}
			So(rejected, ShouldEqual, service.ErrQueueFull)
		})
	})
}

func TestService_Lottery(t *testing.T) {
	Convey("Given a service with an empty vote store", t, func() {
		svc := startService(service.WithWorkerCount(1), service.WithRounds(1))
		defer func() { _ = svc.Stop(context.Background()) }()
		ctx := context.Background()
		req := model.SimulationRequest{Pool: testPool(40), Seed: 7}

		Convey("When the first round is resolved twice with one seed", func() {
			a, err := svc.ResolveFirstRound(ctx, req)
			So(err, ShouldBeNil)
			b, err := svc.ResolveFirstRound(ctx, req)
			So(err, ShouldBeNil)

			Convey("Then both resolutions agree", func() {
				So(a.Picks, ShouldResemble, b.Picks)
				So(a.Entries, ShouldResemble, b.Entries)
			})

			Convey("Then every team holds exactly one first-round pick", func() {
				So(len(a.Picks), ShouldEqual, 12)
				So(a.Draws, ShouldBeGreaterThan, 1)
				So(len(a.Entries), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When a simulation requests a lottery", func() {
			req.Lottery = true
			id, err := svc.Submit(ctx, req)
			So(err, ShouldBeNil)
			run := waitFor(svc, id, terminal)

			Convey("Then round 1 comes from the draws", func() {
				So(run.Status, ShouldEqual, repository.StatusCompleted)
				So(len(run.Lottery), ShouldBeGreaterThan, 0)
				So(len(run.Picks), ShouldEqual, 12)
				So(run.Summaries[0].Source, ShouldEqual, model.SourceLottery)
			})
		})

		Convey("When nominations are drawn directly", func() {
			star := testPool(1)[0]
			res, err := svc.Draw(ctx, service.DrawInput{
				Nominations: []lottery.Nomination{
					{TeamID: types.Giants, Candidate: star},
					{TeamID: types.Hawks, Candidate: star},
				},
				Seed: 3,
			})
			So(err, ShouldBeNil)
			So(len(res.Entries), ShouldEqual, 1)
			So(res.Entries[0].CompetingTeams, ShouldHaveLength, 2)
			So(res.Picks[0].Label, ShouldEqual, lottery.LabelFirst)
			So(res.Losers, ShouldHaveLength, 1)
		})

		Convey("When a team nominates twice", func() {
			star := testPool(1)[0]
			_, err := svc.Draw(ctx, service.DrawInput{
				Nominations: []lottery.Nomination{
					{TeamID: types.Giants, Candidate: star},
					{TeamID: types.Giants, Candidate: star},
				},
			})
			So(err, ShouldWrap, service.ErrInvalidRequest)
		})
	})
}

func TestService_Score(t *testing.T) {
	Convey("Given votes for one player", t, func() {
		svc := service.New()
		ctx := context.Background()
		pool := testPool(6)
		So(svc.CastPlayerVote(ctx, 0, types.Carp, pool[5].ID, 10), ShouldBeNil)

		Convey("Then the voted player ranks first for that team", func() {
			ranked, err := svc.Score(ctx, service.ScoreInput{TeamID: types.Carp, Pool: pool})
			So(err, ShouldBeNil)
			So(ranked, ShouldHaveLength, 6)
			So(ranked[0].Candidate.ID, ShouldEqual, pool[5].ID)
			So(ranked[0].Breakdown.Vote, ShouldEqual, 100)
		})

		Convey("Then an unknown team is rejected", func() {
			_, err := svc.Score(ctx, service.ScoreInput{TeamID: "nobody", Pool: pool})
			So(err, ShouldWrap, service.ErrInvalidRequest)
		})

		Convey("Then the vote count is reported", func() {
			So(svc.GetStats()["votes"], ShouldBeGreaterThan, 0)
		})
	})
}

func TestService_FindDuplicates(t *testing.T) {
	Convey("Given existing players", t, func() {
		svc := service.New()
		existing := []model.Candidate{{ID: 1, Name: "山田 太郎"}, {ID: 2, Name: "佐藤 次郎"}}

		Convey("Then a spacing variant is reported", func() {
			matches := svc.FindDuplicates(context.Background(), "山田太郎", existing)
			So(matches, ShouldHaveLength, 1)
			So(matches[0].Candidate.ID, ShouldEqual, 1)
		})
	})
}
