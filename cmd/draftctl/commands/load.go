package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/draftsim/internal/testdraft"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Generate votes and run concurrent simulations",
	Long: `Generate a prospect pool and fan votes, cast the votes, submit many
simulations at once and verify every finished draft.

Example:
  draftctl load
  draftctl load --pool 300 --simulations 100 --workers 16 --output out/pool.json`,
	RunE: runLoad,
}

var loadConfig testdraft.Config

func init() {
	rootCmd.AddCommand(loadCmd)

	f := loadCmd.Flags()
	f.IntVar(&loadConfig.PoolSize, "pool", testdraft.DefaultPoolSize, "generated pool size")
	f.IntVar(&loadConfig.Votes, "votes", testdraft.DefaultVotes, "player votes to cast")
	f.IntVar(&loadConfig.Simulations, "simulations", testdraft.DefaultSimulations, "simulations to submit")
	f.IntVar(&loadConfig.Rounds, "rounds", 0, "rounds per simulation (0 uses the server default)")
	f.BoolVar(&loadConfig.Lottery, "lottery", false, "resolve round 1 by lottery")
	f.IntVar(&loadConfig.Workers, "workers", testdraft.DefaultWorkers, "concurrent HTTP workers")
	f.DurationVar(&loadConfig.PollInterval, "poll", testdraft.DefaultPollInterval, "status poll interval")
	f.Int64Var(&loadConfig.Seed, "seed", 0, "generator seed (0 uses the clock)")
	f.IntVar(&loadConfig.DraftYear, "year", testdraft.DefaultDraftYear, "draft year")
	f.StringVar(&loadConfig.OutputFile, "output", "", "write the generated pool to this file")
}

func runLoad(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig
	cfg.BaseURL = baseURL
	cfg.Timeout = timeout
	cfg.Verbose = verbose

	report, err := testdraft.Run(cmd.Context(), &cfg)
	if report != nil {
		s := report.Stats
		fmt.Fprintf(cmd.OutOrStdout(), "pool=%d votes=%d/%d simulations=%d completed=%d failed=%d rejected=%d violations=%d in %s\n",
			s.PoolSize, s.VotesSubmitted, s.VotesSubmitted+s.VotesFailed,
			s.SimulationsSubmitted, s.SimulationsCompleted, s.SimulationsFailed,
			s.SimulationsRejected, s.Violations, s.Duration)
	}
	return err
}
