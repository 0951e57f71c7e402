package testdraft

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/draftsim/internal/adapters/repository"
	"github.com/okian/draftsim/internal/domain/model"
	"github.com/okian/draftsim/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// Run executes a complete load run against config.BaseURL.
func Run(ctx context.Context, config *Config) (*Report, error) {
	config.Normalize()
	log := logger.Named("testdraft")
	stats := Stats{StartTime: time.Now()}

	log.Info(ctx, "starting draft load run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("pool", config.PoolSize),
		logger.Int("votes", config.Votes),
		logger.Int("simulations", config.Simulations),
		logger.Int("workers", config.Workers),
		logger.Int64("seed", config.Seed),
		logger.Bool("lottery", config.Lottery))

	client := NewClient(config.BaseURL, config.Timeout)

	if err := client.Health(ctx); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	pool := GeneratePool(config.PoolSize, config.DraftYear, config.Seed)
	stats.PoolSize = len(pool)

	if config.Votes > 0 {
		submitVotes(ctx, config, client, generateVotes(pool, config.Votes, config.DraftYear, config.Seed), &stats)
	}

	req := model.SimulationRequest{
		Pool:      pool,
		DraftYear: config.DraftYear,
		Rounds:    config.Rounds,
		Lottery:   config.Lottery,
	}
	if config.Lottery {
		req.Seed = config.Seed
	}
	runs := runSimulations(ctx, config, client, req, &stats)

	for _, run := range runs {
		if run.Status == repository.StatusCompleted {
			stats.SimulationsCompleted++
		} else {
			stats.SimulationsFailed++
		}
		for _, err := range VerifyRun(run, pool) {
			stats.Violations++
			log.Warn(ctx, "verification failed", logger.String("runID", run.ID), logger.Error(err))
		}
	}

	if config.OutputFile != "" {
		if err := savePool(ctx, config.OutputFile, pool); err != nil {
			log.Warn(ctx, "failed to save pool", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, &stats)

	report := &Report{Stats: stats, Pool: pool, Runs: runs}
	if stats.Violations > 0 {
		return report, fmt.Errorf("%d verification failures", stats.Violations)
	}
	return report, nil
}

// Simulate submits one simulation and waits for it.
func Simulate(ctx context.Context, client *Client, req model.SimulationRequest, interval time.Duration) (RunRecord, error) {
	id, err := client.Submit(ctx, req)
	if err != nil {
		return RunRecord{}, fmt.Errorf("submit failed: %w", err)
	}
	return client.Wait(ctx, id, interval)
}

// savePool writes the generated pool as indented JSON.
func savePool(ctx context.Context, filename string, pool []model.Candidate) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(pool, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal pool: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write pool: %w", err)
	}
	logger.Named("testdraft").Info(ctx, "pool saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var completionRate, simsPerSecond float64
	if stats.SimulationsSubmitted > 0 {
		completionRate = float64(stats.SimulationsCompleted) / float64(stats.SimulationsSubmitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		simsPerSecond = float64(stats.SimulationsCompleted) / stats.Duration.Seconds()
	}

	logger.Named("testdraft").Info(ctx, "final statistics",
		logger.Int("pool", stats.PoolSize),
		logger.Int("votesSubmitted", stats.VotesSubmitted),
		logger.Int("votesFailed", stats.VotesFailed),
		logger.Int("simulationsSubmitted", stats.SimulationsSubmitted),
		logger.Int("simulationsRejected", stats.SimulationsRejected),
		logger.Int("simulationsCompleted", stats.SimulationsCompleted),
		logger.Int("simulationsFailed", stats.SimulationsFailed),
		logger.Int("violations", stats.Violations),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("completionRate", completionRate),
		logger.Float64("simulationsPerSecond", simsPerSecond))
}
