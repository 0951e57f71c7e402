package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/draftsim/internal/adapters/http/api"
	"github.com/okian/draftsim/internal/adapters/repository"
	service "github.com/okian/draftsim/internal/app"
	"github.com/okian/draftsim/internal/testdraft"
	. "github.com/smartystreets/goconvey/convey"
)

const poolYAML = `
draft_year: 2025
rounds: 2
pool:
  - id: 1
    name: 佐藤 翔
    team: 青葉高
    positions: [投手]
    category: 高校
    evaluations: [A]
    draft_year: 2025
  - id: 2
    name: 田中 海
    team: 明和大
    positions: [外野手, 一塁手]
    category: 大学
    evaluations: [B]
    draft_year: 2025
`

func TestLoadRequest(t *testing.T) {
	Convey("Given request files on disk", t, func() {
		dir := t.TempDir()

		Convey("A YAML file decodes through json field names", func() {
			path := filepath.Join(dir, "pool.yaml")
			So(os.WriteFile(path, []byte(poolYAML), 0o600), ShouldBeNil)

			req, err := loadRequest(path)
			So(err, ShouldBeNil)
			So(req.Rounds, ShouldEqual, 2)
			So(req.Pool, ShouldHaveLength, 2)
			So(req.Pool[1].Positions, ShouldResemble, []string{"外野手", "一塁手"})
			So(req.Pool[0].DraftYear, ShouldEqual, 2025)
		})

		Convey("A JSON file decodes as well", func() {
			data, err := json.Marshal(map[string]any{
				"pool":    testdraft.GeneratePool(5, 2025, 3),
				"lottery": true,
				"seed":    11,
			})
			So(err, ShouldBeNil)
			path := filepath.Join(dir, "pool.json")
			So(os.WriteFile(path, data, 0o600), ShouldBeNil)

			req, err := loadRequest(path)
			So(err, ShouldBeNil)
			So(req.Pool, ShouldHaveLength, 5)
			So(req.Lottery, ShouldBeTrue)
			So(req.Seed, ShouldEqual, 11)
		})

		Convey("A missing file is an error", func() {
			_, err := loadRequest(filepath.Join(dir, "nope.yaml"))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestCommands(t *testing.T) {
	Convey("Given a live simulator", t, func() {
		svc := service.New(service.WithWorkerCount(2), service.WithRounds(2))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer func() { _ = svc.Stop(context.Background()) }()
		srv := httptest.NewServer(api.NewServer(svc).Router(context.Background()))
		defer srv.Close()

		execute := func(args ...string) (string, error) {
			var out bytes.Buffer
			rootCmd.SetOut(&out)
			rootCmd.SetArgs(append(args, "--url", srv.URL))
			err := rootCmd.Execute()
			return out.String(), err
		}

		Convey("simulate prints the drafted table", func() {
			path := filepath.Join(t.TempDir(), "pool.yaml")
			So(os.WriteFile(path, []byte(poolYAML), 0o600), ShouldBeNil)

			out, err := execute("simulate", "--file", path, "--poll", "5ms")
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "completed")
			So(out, ShouldContainSubstring, "佐藤 翔")
			So(out, ShouldContainSubstring, "ROUND")
		})

		Convey("simulate --json emits the run record", func() {
			out, err := execute("simulate", "--file", "", "--generate", "30", "--seed", "5", "--rounds", "1", "--json", "--poll", "5ms")
			So(err, ShouldBeNil)

			var run testdraft.RunRecord
			So(json.Unmarshal([]byte(out), &run), ShouldBeNil)
			So(run.Status, ShouldEqual, repository.StatusCompleted)
			So(run.Picks, ShouldHaveLength, 12)
			simJSON = false
		})

		Convey("load runs and verifies several simulations", func() {
			out, err := execute("load", "--pool", "40", "--votes", "10", "--simulations", "2",
				"--workers", "2", "--rounds", "2", "--poll", "5ms", "--seed", "3")
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "completed=2")
			So(out, ShouldContainSubstring, "violations=0")
		})
	})
}
