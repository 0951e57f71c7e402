package service

import (
	"time"

	"github.com/okian/draftsim/internal/domain/lottery"
	"github.com/okian/draftsim/internal/domain/model"
	"github.com/okian/draftsim/internal/domain/scoring"
	"github.com/okian/draftsim/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of simulation workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of queued simulations.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithRunCache bounds the run store by size and TTL.
func WithRunCache(size int, ttl time.Duration) Option {
	return func(s *Service) {
		if size > 0 {
			s.runCacheSize = size
		}
		if ttl > 0 {
			s.runTTL = ttl
		}
	}
}

// WithRounds sets the default number of rounds per simulation.
func WithRounds(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.rounds = n
		}
	}
}

// WithDevelopmentFrom sets the first development round; 0 disables it.
func WithDevelopmentFrom(round int) Option {
	return func(s *Service) {
		if round >= 0 {
			s.developmentFrom = round
		}
	}
}

// WithDraftYear sets the default vote year.
func WithDraftYear(year int) Option {
	return func(s *Service) {
		if year > 0 {
			s.draftYear = year
		}
	}
}

// WithWeights sets the default layer weights.
func WithWeights(w model.Weights) Option {
	return func(s *Service) {
		if !w.IsZero() {
			s.weights = w
		}
	}
}

// WithOrders sets the round 1 and waiver orders.
func WithOrders(firstRound, waiver []string) Option {
	return func(s *Service) {
		if len(firstRound) > 0 {
			s.firstRound = append([]string(nil), firstRound...)
		}
		if len(waiver) > 0 {
			s.waiver = append([]string(nil), waiver...)
		}
	}
}

// WithLotteryPriority sets the team order used inside lottery draws and reveals.
func WithLotteryPriority(teams []string) Option {
	return func(s *Service) {
		if len(teams) > 0 {
			s.priority = append([]string(nil), teams...)
		}
	}
}

// WithRevealDurations overrides the reveal phase timings.
func WithRevealDurations(d lottery.Durations) Option {
	return func(s *Service) {
		s.durations = d
	}
}

// WithRevealScheduler replaces the wall-clock scheduler used by reveals.
func WithRevealScheduler(sched lottery.Scheduler) Option {
	return func(s *Service) {
		if sched != nil {
			s.scheduler = sched
		}
	}
}

// WithHumanPickTimeout bounds how long a human-controlled team may deliberate.
func WithHumanPickTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.pickTimeout = d
		}
	}
}

// WithJobTimeout bounds a whole simulation run, human picks included.
// Zero leaves runs unbounded.
func WithJobTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.jobTimeout = d
		}
	}
}

// WithSimilarityThreshold sets the duplicate detection threshold.
func WithSimilarityThreshold(threshold float64) Option {
	return func(s *Service) {
		if threshold > 0 && threshold <= 100 {
			s.similarity = threshold
		}
	}
}

// WithVoteSource reads vote aggregates from source instead of the in-memory
// store. Votes cast through the service still land in the in-memory store.
func WithVoteSource(source scoring.VoteSource) Option {
	return func(s *Service) {
		if source != nil {
			s.source = source
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
