package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"

	"github.com/okian/draftsim/internal/domain/model"
	"github.com/okian/draftsim/internal/testdraft"
)

var errEmptyPool = errors.New("pool is empty")

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run one simulation and print the draft",
	Long: `Submit a single simulation and wait for it to finish.

The request file is YAML or JSON with the same fields as POST /simulations
(pool, weights, draft_year, rounds, human_teams, unfulfilled, history,
lottery, seed). Without --file a pool is generated.

Example:
  draftctl simulate --file pool.yaml --rounds 3
  draftctl simulate --generate 120 --lottery --seed 7`,
	RunE: runSimulate,
}

var (
	simFile     string
	simGenerate int
	simRounds   int
	simLottery  bool
	simSeed     int64
	simPoll     time.Duration
	simJSON     bool
)

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().StringVarP(&simFile, "file", "f", "", "request file (YAML or JSON)")
	simulateCmd.Flags().IntVar(&simGenerate, "generate", testdraft.DefaultPoolSize, "generated pool size when no file is given")
	simulateCmd.Flags().IntVar(&simRounds, "rounds", 0, "override rounds")
	simulateCmd.Flags().BoolVar(&simLottery, "lottery", false, "resolve round 1 by lottery")
	simulateCmd.Flags().Int64Var(&simSeed, "seed", 0, "seed for generation and lottery (0 uses the clock)")
	simulateCmd.Flags().DurationVar(&simPoll, "poll", testdraft.DefaultPollInterval, "status poll interval")
	simulateCmd.Flags().BoolVar(&simJSON, "json", false, "print the run as JSON")
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	req, err := buildRequest(cmd)
	if err != nil {
		return err
	}

	client := testdraft.NewClient(baseURL, timeout)
	run, err := testdraft.Simulate(cmd.Context(), client, req, simPoll)
	if err != nil {
		return err
	}

	if simJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(run); err != nil {
			return err
		}
	} else {
		printRun(cmd.OutOrStdout(), run)
	}
	if run.Error != "" {
		return fmt.Errorf("run %s failed: %s", run.ID, run.Error)
	}
	return nil
}

// buildRequest merges the request file, if any, with command flags.
func buildRequest(cmd *cobra.Command) (model.SimulationRequest, error) {
	var req model.SimulationRequest
	if simFile != "" {
		loaded, err := loadRequest(simFile)
		if err != nil {
			return req, err
		}
		req = loaded
	} else {
		seed := simSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		req.Pool = testdraft.GeneratePool(simGenerate, testdraft.DefaultDraftYear, seed)
		req.DraftYear = testdraft.DefaultDraftYear
	}

	if cmd.Flags().Changed("rounds") {
		req.Rounds = simRounds
	}
	if cmd.Flags().Changed("lottery") {
		req.Lottery = simLottery
	}
	if cmd.Flags().Changed("seed") {
		req.Seed = simSeed
	}
	if len(req.Pool) == 0 {
		return req, errEmptyPool
	}
	return req, nil
}

// loadRequest reads a simulation request from path. JSON parses as YAML.
func loadRequest(path string) (model.SimulationRequest, error) {
	var req model.SimulationRequest
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return req, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := k.UnmarshalWithConf("", &req, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return req, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return req, nil
}
