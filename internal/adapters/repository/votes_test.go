package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/okian/draftsim/internal/domain/model"
	"github.com/okian/draftsim/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestVoteStore(t *testing.T) {
	Convey("Given an empty vote store", t, func() {
		ctx := context.Background()
		store := NewVoteStore()

		Convey("When aggregating an unknown year", func() {
			agg, err := store.Aggregate(ctx, 2025)

			Convey("Then it should return an empty, writable aggregate", func() {
				So(err, ShouldBeNil)
				So(agg.Empty(), ShouldBeTrue)
				So(agg.Players, ShouldNotBeNil)
			})
		})

		Convey("When casting player and position votes", func() {
			So(store.CastPlayerVote(ctx, 2025, types.Hawks, 7, 1), ShouldBeNil)
			So(store.CastPlayerVote(ctx, 2025, types.Hawks, 7, 2), ShouldBeNil)
			So(store.CastPlayerVote(ctx, 2024, types.Hawks, 7, 5), ShouldBeNil)
			So(store.CastPositionVote(ctx, 2025, types.Tigers, 1, " 投手 ", 4), ShouldBeNil)

			agg, err := store.Aggregate(ctx, 2025)

			Convey("Then totals should accumulate per year and key", func() {
				So(err, ShouldBeNil)
				So(agg.PlayerVotes(types.Hawks, 7), ShouldEqual, 3)
				So(agg.PositionVotes(types.Tigers, 1), ShouldResemble, map[string]int{"投手": 4})
				So(store.Count(ctx), ShouldEqual, 12)
			})

			Convey("Then the returned aggregate should be a copy", func() {
				agg.Players[model.PlayerVoteKey{TeamID: types.Hawks, PlayerID: 7}] = 100
				again, _ := store.Aggregate(ctx, 2025)
				So(again.PlayerVotes(types.Hawks, 7), ShouldEqual, 3)
			})
		})

		Convey("When casting invalid votes", func() {
			Convey("Then unknown teams should be rejected", func() {
				So(store.CastPlayerVote(ctx, 2025, "unknown", 1, 1), ShouldWrap, ErrInvalidVote)
			})
			Convey("Then non-positive counts should be rejected", func() {
				So(store.CastPlayerVote(ctx, 2025, types.Hawks, 1, 0), ShouldWrap, ErrInvalidVote)
			})
			Convey("Then missing player ids should be rejected", func() {
				So(store.CastPlayerVote(ctx, 2025, types.Hawks, 0, 1), ShouldWrap, ErrInvalidVote)
			})
			Convey("Then blank positions should be rejected", func() {
				So(store.CastPositionVote(ctx, 2025, types.Hawks, 1, "  ", 1), ShouldWrap, ErrInvalidVote)
			})
			Convey("Then invalid rounds should be rejected", func() {
				So(store.CastPositionVote(ctx, 2025, types.Hawks, 0, "捕手", 1), ShouldWrap, ErrInvalidVote)
			})
			Convey("Then invalid years should be rejected", func() {
				So(store.CastPositionVote(ctx, 0, types.Hawks, 1, "捕手", 1), ShouldWrap, ErrInvalidVote)
			})
		})

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := store.Aggregate(cctx, 2025)

			Convey("Then the fetch should fail with the context error", func() {
				So(err, ShouldEqual, context.Canceled)
			})
		})

		Convey("When voting concurrently", func() {
			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for j := 0; j < 50; j++ {
						_ = store.CastPlayerVote(ctx, 2025, types.Lions, 1, 1)
						_, _ = store.Aggregate(ctx, 2025)
					}
				}()
			}
			wg.Wait()

			Convey("Then no vote should be lost", func() {
				agg, _ := store.Aggregate(ctx, 2025)
				So(agg.PlayerVotes(types.Lions, 1), ShouldEqual, 1000)
			})
		})
	})
}
