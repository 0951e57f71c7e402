package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/draftsim/internal/config"
	"github.com/okian/draftsim/internal/domain/types"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("DRAFTSIM_ADDR", ":8080")
			_ = os.Setenv("DRAFTSIM_QUEUE_SIZE", "50")
			_ = os.Setenv("DRAFTSIM_WORKER_COUNT", "3")
			_ = os.Setenv("DRAFTSIM_ROUNDS", "6")
			_ = os.Setenv("DRAFTSIM_WEIGHTS__VOTE", "10")
			_ = os.Setenv("DRAFTSIM_REMOTE__RATE_PER_SECOND", "2.5")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 50)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
				convey.So(cfg.Rounds, convey.ShouldEqual, 6)
				convey.So(cfg.Weights.Vote, convey.ShouldEqual, 10)
				convey.So(cfg.Weights.TeamNeeds, convey.ShouldEqual, 25)
				convey.So(cfg.Remote.RatePerSecond, convey.ShouldEqual, 2.5)
			})
		})

		convey.Convey("When an order is supplied as a comma separated env var", func() {
			_ = os.Setenv("DRAFTSIM_LOTTERY_PRIORITY", "hawks, lions,giants")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should replace the whole list", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.LotteryPriority, convey.ShouldResemble, []string{types.Hawks, types.Lions, types.Giants})
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
rounds: 7
development_from: 6
job_timeout_seconds: 90
weights:
  vote: 25
  team_needs: 25
  player_rating: 25
  realism: 25
first_round_order: [hawks, tigers, giants, lions, dragons, marines, swallows, eagles, carp, fighters, buffaloes, baystars]
vote_source: remote
remote:
  base_url: "http://votes.local"
  api_key: secret
`
			tmpFile := createTempConfigFile(t, yamlContent)
			_ = os.Setenv("DRAFTSIM_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.Rounds, convey.ShouldEqual, 7)
				convey.So(cfg.DevelopmentFrom, convey.ShouldEqual, 6)
				convey.So(cfg.JobTimeoutSeconds, convey.ShouldEqual, 90)
				convey.So(cfg.Weights.Realism, convey.ShouldEqual, 25)
				convey.So(cfg.FirstRoundOrder[0], convey.ShouldEqual, types.Hawks)
				convey.So(cfg.VoteSource, convey.ShouldEqual, config.VoteSourceRemote)
				convey.So(cfg.Remote.BaseURL, convey.ShouldEqual, "http://votes.local")
				convey.So(cfg.Remote.TimeoutMS, convey.ShouldEqual, 5_000)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(t, "addr: \":9090\"\nqueue_size: 300\n")
			_ = os.Setenv("DRAFTSIM_CONFIG", tmpFile)
			_ = os.Setenv("DRAFTSIM_ADDR", ":8080")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 300)
			})
		})

		convey.Convey("When a YAML order is shorter than the default", func() {
			tmpFile := createTempConfigFile(t, "waiver_order: [hawks, lions]\n")
			_ = os.Setenv("DRAFTSIM_CONFIG", tmpFile)

			_, err := config.Load(ctx)

			convey.Convey("Then trailing defaults should not survive and validation should fail", func() {
				convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
				convey.So(err.Error(), convey.ShouldContainSubstring, "differ in length")
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(t, `invalid: yaml: content: [`)
			_ = os.Setenv("DRAFTSIM_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldWrap, config.ErrLoadConfig)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("DRAFTSIM_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.So(err, convey.ShouldWrap, config.ErrLoadConfig)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("DRAFTSIM_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("DRAFTSIM_QUEUE_SIZE", "invalid")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "draftsim.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearConfigEnvVars() {
	for _, key := range []string{
		"DRAFTSIM_CONFIG",
		"DRAFTSIM_ADDR",
		"DRAFTSIM_QUEUE_SIZE",
		"DRAFTSIM_WORKER_COUNT",
		"DRAFTSIM_ROUNDS",
		"DRAFTSIM_WEIGHTS__VOTE",
		"DRAFTSIM_REMOTE__RATE_PER_SECOND",
		"DRAFTSIM_LOTTERY_PRIORITY",
	} {
		_ = os.Unsetenv(key)
	}
}
