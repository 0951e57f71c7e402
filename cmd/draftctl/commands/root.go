// Package commands implements the draftctl command line: one-off
// simulations from a pool file and concurrent load runs against a live
// simulator.
package commands

import (
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/draftsim/internal/testdraft"
)

var (
	// Global flags
	baseURL string
	timeout time.Duration
	logFile string
	verbose bool

	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "draftctl",
	Short: "Drive a running draft simulator",
	Long: `draftctl talks to a draft simulator over HTTP.

Examples:
  draftctl simulate --file pool.yaml
  draftctl simulate --file pool.json --lottery --seed 7 --json
  draftctl load --pool 150 --votes 500 --simulations 20`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		closer, err := testdraft.SetupLogging(logFile, verbose)
		if err != nil {
			return err
		}
		logCloser = closer
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
}

// Execute runs the root command. It is called once by main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "url", testdraft.DefaultBaseURL, "simulator base URL")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", testdraft.DefaultTimeout, "HTTP request timeout")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write logs to this file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
