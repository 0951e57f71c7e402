package repository

import "time"

// Default run store configuration constants.
const (
	defaultRunCapacity = 1_000
	defaultRunTTL      = time.Hour
)

// RunOption applies a configuration option to the RunStore.
type RunOption func(*RunStore)

// WithCapacity caps the number of runs kept; the least recently used run is
// evicted first.
func WithCapacity(n int) RunOption {
	return func(s *RunStore) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithTTL expires runs this long after their last write.
func WithTTL(ttl time.Duration) RunOption {
	return func(s *RunStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}
