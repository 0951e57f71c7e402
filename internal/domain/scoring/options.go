package scoring

import "github.com/okian/draftsim/pkg/logger"

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithLogger sets the logger used to report degraded vote fetches.
func WithLogger(l logger.Logger) Option {
	return func(c *Calculator) {
		if l != nil {
			c.logger = l
		}
	}
}
