package baas

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func newTestServer(handler http.HandlerFunc) (*httptest.Server, *Client) {
	srv := httptest.NewServer(handler)
	c, err := NewClient(srv.URL,
		WithAPIKey("k"),
		WithRate(0),
		WithBackoff(time.Millisecond, 2*time.Millisecond),
	)
	So(err, ShouldBeNil)
	return srv, c
}

func TestClientAggregate(t *testing.T) {
	Convey("Given a vote backend", t, func() {
		ctx := context.Background()

		Convey("When both endpoints answer", func() {
			var auth, year atomic.Value
			srv, c := newTestServer(func(w http.ResponseWriter, r *http.Request) {
				auth.Store(r.Header.Get("Authorization"))
				year.Store(r.URL.Query().Get("draft_year"))
				w.Header().Set("Content-Type", "application/json")
				switch r.URL.Path {
				case "/votes/players":
					_, _ = w.Write([]byte(`[{"team_id":"hawks","player_id":1,"votes":3},{"team_id":"hawks","player_id":1,"votes":2}]`))
				case "/votes/positions":
					_, _ = w.Write([]byte(`[{"team_id":"lions","round":1,"position":"投手","votes":4}]`))
				default:
					http.NotFound(w, r)
				}
			})
			defer srv.Close()

			agg, err := c.Aggregate(ctx, 2025)

			Convey("Then rows should be folded into the aggregate", func() {
				So(err, ShouldBeNil)
				So(agg.PlayerVotes("hawks", 1), ShouldEqual, 5)
				So(agg.PositionVotes("lions", 1), ShouldResemble, map[string]int{"投手": 4})
				So(auth.Load(), ShouldEqual, "Bearer k")
				So(year.Load(), ShouldEqual, "2025")
			})
		})

		Convey("When the backend returns negative counts", func() {
			srv, c := newTestServer(func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Path {
				case "/votes/players":
					_, _ = w.Write([]byte(`[{"team_id":"hawks","player_id":1,"votes":-5},{"team_id":"hawks","player_id":2,"votes":3}]`))
				case "/votes/positions":
					_, _ = w.Write([]byte(`[{"team_id":"hawks","round":1,"position":"投手","votes":-4}]`))
				}
			})
			defer srv.Close()

			agg, err := c.Aggregate(ctx, 2025)

			Convey("Then those rows should be dropped and the rest kept", func() {
				So(err, ShouldBeNil)
				So(agg.PlayerVotes("hawks", 1), ShouldEqual, 0)
				So(agg.PlayerVotes("hawks", 2), ShouldEqual, 3)
				So(agg.PositionVotes("hawks", 1), ShouldBeEmpty)
				So(agg.MaxPlayerVotes(), ShouldEqual, 3)
			})
		})

		Convey("When the backend fails transiently", func() {
			var calls int32
			srv, c := newTestServer(func(w http.ResponseWriter, r *http.Request) {
				if atomic.AddInt32(&calls, 1) <= 2 {
					w.WriteHeader(http.StatusServiceUnavailable)
					return
				}
				_, _ = w.Write([]byte(`[]`))
			})
			defer srv.Close()

			agg, err := c.Aggregate(ctx, 2025)

			Convey("Then the request should be retried", func() {
				So(err, ShouldBeNil)
				So(agg.Empty(), ShouldBeTrue)
				So(atomic.LoadInt32(&calls), ShouldEqual, 4)
			})
		})

		Convey("When the backend keeps rate limiting", func() {
			srv, c := newTestServer(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			})
			defer srv.Close()

			_, err := c.Aggregate(ctx, 2025)

			Convey("Then retries should be exhausted", func() {
				So(err, ShouldWrap, ErrRateLimited)
				So(err.Error(), ShouldContainSubstring, "max retries exceeded")
			})
		})

		Convey("When the backend rejects the request", func() {
			var calls int32
			srv, c := newTestServer(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte("nope"))
			})
			defer srv.Close()

			_, err := c.Aggregate(ctx, 2025)

			Convey("Then it should fail without retrying", func() {
				var se *StatusError
				So(errors.As(err, &se), ShouldBeTrue)
				So(se.Status, ShouldEqual, http.StatusUnauthorized)
				So(atomic.LoadInt32(&calls), ShouldEqual, 1)
			})
		})

		Convey("When the context is cancelled", func() {
			srv, c := newTestServer(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`[]`))
			})
			defer srv.Close()
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			_, err := c.Aggregate(cctx, 2025)

			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestNewClient(t *testing.T) {
	Convey("A client requires a base URL", t, func() {
		_, err := NewClient("  ")
		So(err, ShouldEqual, ErrNoBaseURL)

		c, err := NewClient("http://example.test/", WithTimeout(time.Second))
		So(err, ShouldBeNil)
		So(c.baseURL, ShouldEqual, "http://example.test")
		So(c.httpClient.Timeout, ShouldEqual, time.Second)
	})
}
