// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and DRAFTSIM_ env vars.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"runtime"

	"github.com/okian/draftsim/internal/domain/dedupe"
	"github.com/okian/draftsim/internal/domain/lottery"
	"github.com/okian/draftsim/internal/domain/model"
	"github.com/okian/draftsim/internal/domain/order"
)

// Vote source kinds.
const (
	VoteSourceMemory = "memory"
	VoteSourceRemote = "remote"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required"`

	// QueueSize bounds the in-memory simulation queue.
	QueueSize int `koanf:"queue_size" validate:"gt=0"`

	// WorkerCount sets the number of simulation workers.
	WorkerCount int `koanf:"worker_count" validate:"gt=0"`

	// RunCacheSize caps the number of simulation runs kept in memory.
	RunCacheSize int `koanf:"run_cache_size" validate:"gt=0"`

	// RunTTLSeconds expires finished runs after this many seconds.
	RunTTLSeconds int `koanf:"run_ttl_seconds" validate:"gt=0"`

	// Rounds is the number of rounds a simulation plays.
	Rounds int `koanf:"rounds" validate:"gt=0"`

	// DevelopmentFrom is the first development round; 0 disables it.
	DevelopmentFrom int `koanf:"development_from" validate:"gte=0"`

	// DraftYear selects which vote aggregate to read.
	DraftYear int `koanf:"draft_year" validate:"gt=0"`

	// Weights are the default layer weights for a simulation.
	Weights model.Weights `koanf:"weights"`

	// FirstRoundOrder is the round 1 pick order.
	FirstRoundOrder []string `koanf:"first_round_order" validate:"required,dive,team"`

	// WaiverOrder is the base order for rounds 2 and later.
	WaiverOrder []string `koanf:"waiver_order" validate:"required,dive,team"`

	// LotteryPriority orders teams inside a lottery reveal.
	LotteryPriority []string `koanf:"lottery_priority" validate:"required,dive,team"`

	// HumanPickTimeoutMS bounds how long a human-controlled team may deliberate.
	HumanPickTimeoutMS int `koanf:"human_pick_timeout_ms" validate:"gt=0"`

	// JobTimeoutSeconds bounds each simulation run; 0 means no bound.
	JobTimeoutSeconds int `koanf:"job_timeout_seconds" validate:"gte=0"`

	// SimilarityThreshold is the duplicate detection cut-off (0-100].
	SimilarityThreshold float64 `koanf:"similarity_threshold" validate:"gt=0,lte=100"`

	// VoteSource selects the vote aggregate backend.
	VoteSource string `koanf:"vote_source" validate:"oneof=memory remote"`

	// Remote configures the hosted vote backend when VoteSource is "remote".
	Remote Remote `koanf:"remote"`
}

// Remote configures the hosted vote backend.
type Remote struct {
	BaseURL       string  `koanf:"base_url"`
	APIKey        string  `koanf:"api_key"`
	RatePerSecond float64 `koanf:"rate_per_second" validate:"gte=0"`
	TimeoutMS     int     `koanf:"timeout_ms" validate:"gte=0"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		QueueSize:           1_000,
		WorkerCount:         runtime.NumCPU(),
		RunCacheSize:        1_000,
		RunTTLSeconds:       3_600,
		Rounds:              10,
		DevelopmentFrom:     0,
		DraftYear:           2025,
		Weights:             model.DefaultWeights(),
		FirstRoundOrder:     append([]string(nil), order.DefaultFirstRound...),
		WaiverOrder:         append([]string(nil), order.DefaultWaiver...),
		LotteryPriority:     lottery.DefaultPriority(),
		HumanPickTimeoutMS:  60_000,
		SimilarityThreshold: dedupe.DefaultThreshold,
		VoteSource:          VoteSourceMemory,
		Remote: Remote{
			RatePerSecond: 10,
			TimeoutMS:     5_000,
		},
	}
}
