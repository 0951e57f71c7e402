package testdraft

import "time"

// Defaults applied by Normalize.
const (
	DefaultBaseURL      = "http://localhost:9080"
	DefaultPoolSize     = 150
	DefaultVotes        = 500
	DefaultSimulations  = 20
	DefaultWorkers      = 8
	DefaultTimeout      = 30 * time.Second
	DefaultPollInterval = 100 * time.Millisecond
	DefaultDraftYear    = 2025
)

// Runner configuration constants.
const (
	WorkerChannelMultiplier = 2
	PercentageMultiplier    = 100
	teamCount               = 12
)

// Normalize fills zero fields with defaults.
func (c *Config) Normalize() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.PoolSize <= 0 {
		c.PoolSize = DefaultPoolSize
	}
	if c.Votes < 0 {
		c.Votes = 0
	}
	if c.Simulations <= 0 {
		c.Simulations = DefaultSimulations
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.DraftYear <= 0 {
		c.DraftYear = DefaultDraftYear
	}
	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano()
	}
}
