package simulation

import "github.com/okian/draftsim/pkg/logger"

// Option applies a configuration option to the Driver.
type Option func(*Driver)

// WithRounds sets the number of rounds to simulate.
func WithRounds(n int) Option {
	return func(d *Driver) {
		if n > 0 {
			d.rounds = n
		}
	}
}

// WithHumanTeams marks teams whose picks come from the Resolver.
func WithHumanTeams(ids ...string) Option {
	return func(d *Driver) {
		for _, id := range ids {
			d.humans[id] = struct{}{}
		}
	}
}

// WithResolver sets the resolver used for human-controlled teams.
func WithResolver(r Resolver) Option {
	return func(d *Driver) {
		d.resolver = r
	}
}

// WithProgress registers a callback invoked after every round.
func WithProgress(fn ProgressFunc) Option {
	return func(d *Driver) {
		d.progress = fn
	}
}

// WithDevelopmentFrom marks round and every later round as development rounds.
// Zero disables development rounds.
func WithDevelopmentFrom(round int) Option {
	return func(d *Driver) {
		if round >= 0 {
			d.development = round
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}
