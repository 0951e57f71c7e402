// Package testdraft drives a running draft simulator over HTTP: it generates
// a prospect pool and fan votes, submits simulations concurrently, polls them
// to completion and verifies the resulting drafts.
package testdraft

import (
	"time"

	"github.com/okian/draftsim/internal/adapters/repository"
	"github.com/okian/draftsim/internal/domain/model"
)

// Config holds configuration for a load run.
type Config struct {
	BaseURL      string        // Base URL of the service
	PoolSize     int           // Number of generated prospects
	Votes        int           // Number of player votes to cast
	Simulations  int           // Number of simulations to submit
	Rounds       int           // Rounds per simulation; 0 uses the server default
	Lottery      bool          // Resolve round 1 by lottery
	Workers      int           // Number of concurrent HTTP workers
	Timeout      time.Duration // HTTP request timeout
	PollInterval time.Duration // Delay between run status polls
	Seed         int64         // Generator seed; 0 uses the clock
	DraftYear    int           // Draft year for pool and votes
	OutputFile   string        // Output file for the generated pool
	Verbose      bool          // Enable verbose logging
}

// RunRecord is the server's simulation record.
type RunRecord = repository.Run

// SubmitResponse is the reply to POST /simulations.
type SubmitResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// playerVote mirrors POST /votes/players.
type playerVote struct {
	DraftYear int    `json:"draft_year"`
	TeamID    string `json:"team_id"`
	PlayerID  int64  `json:"player_id"`
	Count     int    `json:"count"`
}

// Stats holds load run statistics.
type Stats struct {
	PoolSize             int
	VotesSubmitted       int
	VotesFailed          int
	SimulationsSubmitted int
	SimulationsRejected  int
	SimulationsCompleted int
	SimulationsFailed    int
	Violations           int
	StartTime            time.Time
	EndTime              time.Time
	Duration             time.Duration
}

// Report is what Run returns: statistics plus the finished runs.
type Report struct {
	Stats Stats
	Pool  []model.Candidate
	Runs  []RunRecord
}
