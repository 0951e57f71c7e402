// Package service wires the draft engine to its stores, queue and workers and
// implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/draftsim/internal/adapters/mq/queue"
	"github.com/okian/draftsim/internal/adapters/mq/worker"
	"github.com/okian/draftsim/internal/adapters/repository"
	"github.com/okian/draftsim/internal/domain/dedupe"
	"github.com/okian/draftsim/internal/domain/lottery"
	"github.com/okian/draftsim/internal/domain/model"
	"github.com/okian/draftsim/internal/domain/order"
	"github.com/okian/draftsim/internal/domain/scoring"
	"github.com/okian/draftsim/internal/domain/simulation"
	"github.com/okian/draftsim/internal/domain/types"
	"github.com/okian/draftsim/pkg/logger"
	"github.com/okian/draftsim/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultQueueSize    = 1_000
	defaultRunCacheSize = 1_000
	defaultRunTTL       = time.Hour
	defaultRounds       = 10
	defaultDraftYear    = 2025
	defaultPickTimeout  = time.Minute
	hintSize            = 5
)

// Service implements the API dependencies for the draft simulator.
type Service struct {
	mu sync.RWMutex

	// Core components
	votes      *repository.VoteStore
	source     scoring.VoteSource
	runs       *repository.RunStore
	calculator *scoring.Calculator
	orders     *order.Provider
	detector   *dedupe.Detector
	queue      *queue.InMemoryQueue
	pool       *worker.Pool

	// Configuration
	workerCount     int
	queueSize       int
	runCacheSize    int
	runTTL          time.Duration
	rounds          int
	developmentFrom int
	draftYear       int
	weights         model.Weights
	firstRound      []string
	waiver          []string
	priority        []string
	durations       lottery.Durations
	scheduler       lottery.Scheduler
	pickTimeout     time.Duration
	jobTimeout      time.Duration
	similarity      float64

	// Human pick resolvers by run id.
	resolversMu sync.Mutex
	resolvers   map[string]*pendingResolver

	// State
	started   bool
	cancelRun context.CancelFunc

	logger logger.Logger
}

// New constructs a new Service with default configuration. Components are
// created here so that read-only calls work before Start.
func New(opts ...Option) *Service {
	s := &Service{
		votes:        repository.NewVoteStore(),
		workerCount:  runtime.NumCPU(),
		queueSize:    defaultQueueSize,
		runCacheSize: defaultRunCacheSize,
		runTTL:       defaultRunTTL,
		rounds:       defaultRounds,
		draftYear:    defaultDraftYear,
		weights:      model.DefaultWeights(),
		firstRound:   order.DefaultFirstRound,
		waiver:       order.DefaultWaiver,
		priority:     lottery.DefaultPriority(),
		durations:    lottery.DefaultDurations(),
		scheduler:    lottery.ClockScheduler{},
		pickTimeout:  defaultPickTimeout,
		similarity:   dedupe.DefaultThreshold,
		resolvers:    make(map[string]*pendingResolver),
		logger:       logger.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.source == nil {
		s.source = s.votes
	}
	s.calculator = scoring.NewCalculator(s.source, scoring.WithLogger(s.logger.Named("scoring")))
	s.orders = order.New(order.WithFirstRound(s.firstRound), order.WithWaiver(s.waiver))
	s.detector = dedupe.NewDetector(dedupe.WithThreshold(s.similarity))
	s.runs = repository.NewRunStore(repository.WithCapacity(s.runCacheSize), repository.WithTTL(s.runTTL))
	return s
}

// Start creates the queue and starts the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting draft service...")

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))

	// Workers outlive the request that started the service.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancelRun = cancel
	s.pool = worker.NewPool(s.workerCount, s.queue, worker.RunnerFunc(s.Execute),
		worker.WithLogger(s.logger), worker.WithJobTimeout(s.jobTimeout))
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "draft service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("rounds", s.rounds),
	)
	return nil
}

// Stop closes the queue and waits for running simulations to finish.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info(ctx, "stopping draft service...")
	err := s.pool.Shutdown(ctx)
	s.cancelRun()
	s.started = false
	s.logger.Info(ctx, "draft service stopped")
	return err
}

// CastPlayerVote records votes for team drafting player.
func (s *Service) CastPlayerVote(ctx context.Context, year int, team string, player int64, count int) error {
	if year == 0 {
		year = s.draftYear
	}
	if count == 0 {
		count = 1
	}
	return s.votes.CastPlayerVote(ctx, year, team, player, count)
}

// CastPositionVote records votes for team taking position in round.
func (s *Service) CastPositionVote(ctx context.Context, year int, team string, round int, position string, count int) error {
	if year == 0 {
		year = s.draftYear
	}
	if count == 0 {
		count = 1
	}
	return s.votes.CastPositionVote(ctx, year, team, round, position, count)
}

// Order returns the team order for round.
func (s *Service) Order(_ context.Context, round int) []string {
	return s.orders.Order(round)
}

// ScoreInput is a one-shot ranking request.
type ScoreInput struct {
	Round       int
	TeamID      string
	Pool        []model.Candidate
	History     []model.Pick
	Weights     model.Weights
	DraftYear   int
	Unfulfilled model.UnfulfilledNeeds
}

// Score ranks pool for one team's turn.
func (s *Service) Score(ctx context.Context, in ScoreInput) ([]scoring.Evaluation, error) {
	if !types.Valid(in.TeamID) {
		return nil, fmt.Errorf("%w: unknown team %q", ErrInvalidRequest, in.TeamID)
	}
	if in.Round <= 0 {
		in.Round = 1
	}
	if in.Weights.IsZero() {
		in.Weights = s.weights
	}
	if in.DraftYear == 0 {
		in.DraftYear = s.draftYear
	}
	return s.calculator.Rank(ctx, scoring.Request{
		Round:       in.Round,
		TeamID:      in.TeamID,
		Pool:        in.Pool,
		History:     in.History,
		Weights:     in.Weights,
		DraftYear:   in.DraftYear,
		Unfulfilled: in.Unfulfilled,
	}), nil
}

// Submit validates req, records a queued run and hands it to the workers.
func (s *Service) Submit(ctx context.Context, req model.SimulationRequest) (string, error) {
	s.mu.RLock()
	started := s.started
	q := s.queue
	s.mu.RUnlock()
	if !started {
		return "", ErrNotStarted
	}

	req = s.withDefaults(req)
	if err := validateRequest(req); err != nil {
		return "", err
	}

	id := uuid.New().String()
	now := time.Now()
	run := repository.Run{
		ID:        id,
		Status:    repository.StatusQueued,
		Rounds:    req.Rounds,
		Remaining: len(req.Pool),
		CreatedAt: now,
	}
	if err := s.runs.Put(ctx, run); err != nil {
		return "", fmt.Errorf("failed to store run: %w", err)
	}

	if !q.Enqueue(ctx, queue.Job{RunID: id, Request: req, SubmittedAt: now}) {
		_, _ = s.runs.Update(context.WithoutCancel(ctx), id, func(r *repository.Run) {
			r.Status = repository.StatusFailed
			r.Error = ErrQueueFull.Error()
		})
		s.logger.Warn(ctx, "simulation rejected", logger.String("runID", id), logger.Int("queueLength", q.Len(ctx)))
		return "", ErrQueueFull
	}

	metrics.RecordSimulationSubmitted()
	s.logger.Debug(ctx, "simulation queued",
		logger.String("runID", id),
		logger.Int("pool", len(req.Pool)),
		logger.Int("rounds", req.Rounds),
	)
	return id, nil
}

// Run returns the stored state of a simulation.
func (s *Service) Run(ctx context.Context, id string) (repository.Run, error) {
	return s.runs.Get(ctx, id)
}

// SubmitPick delivers a human-controlled team's choice to a waiting run.
func (s *Service) SubmitPick(ctx context.Context, runID, team string, player int64) error {
	if _, err := s.runs.Get(ctx, runID); err != nil {
		return err
	}
	s.resolversMu.Lock()
	r, ok := s.resolvers[runID]
	s.resolversMu.Unlock()
	if !ok {
		return ErrNoPendingPick
	}
	return r.deliver(team, player)
}

// Execute runs one queued simulation. It is the worker pool's runner.
func (s *Service) Execute(ctx context.Context, job queue.Job) error { //nolint:gocritic // hugeParam: Job mirrors the queue payload
	start := time.Now()
	req := s.withDefaults(job.Request)
	log := s.logger.Named("run").With(logger.String("runID", job.RunID))
	bg := context.WithoutCancel(ctx)

	if _, err := s.runs.Update(ctx, job.RunID, func(r *repository.Run) {
		r.Status = repository.StatusRunning
	}); err != nil {
		metrics.RecordSimulationFailed()
		return err
	}

	in := simulation.Input{
		Pool:        req.Pool,
		Weights:     req.Weights,
		DraftYear:   req.DraftYear,
		Unfulfilled: req.Unfulfilled,
		History:     req.History,
	}

	if req.Lottery && len(req.History) == 0 {
		res, err := s.resolveFirstRound(ctx, req)
		if err != nil {
			s.fail(bg, job.RunID, err)
			return err
		}
		in.History = res.Picks
		in.Unfulfilled = mergeNeeds(req.Unfulfilled, res.Needs)
		_, _ = s.runs.Update(bg, job.RunID, func(r *repository.Run) {
			r.Lottery = res.Entries
		})
	}

	opts := []simulation.Option{
		simulation.WithRounds(req.Rounds),
		simulation.WithDevelopmentFrom(s.developmentFrom),
		simulation.WithLogger(log.Named("simulation")),
		simulation.WithProgress(func(round int, partial *simulation.Result) {
			_, _ = s.runs.Update(bg, job.RunID, func(r *repository.Run) {
				r.CompletedRounds = round
				if partial != nil {
					r.Picks = partial.Picks
					r.Summaries = partial.Summaries
					r.Remaining = len(partial.Remaining)
				}
			})
		}),
	}
	if len(req.HumanTeams) > 0 {
		resolver := s.newResolver(job.RunID, log)
		s.resolversMu.Lock()
		s.resolvers[job.RunID] = resolver
		s.resolversMu.Unlock()
		defer func() {
			s.resolversMu.Lock()
			delete(s.resolvers, job.RunID)
			s.resolversMu.Unlock()
		}()
		opts = append(opts,
			simulation.WithHumanTeams(req.HumanTeams...),
			simulation.WithResolver(resolver),
		)
	}

	driver := simulation.New(s.calculator, s.orders, opts...)
	result, err := driver.Run(ctx, in)
	if err != nil {
		_, _ = s.runs.Update(bg, job.RunID, func(r *repository.Run) {
			r.Status = repository.StatusFailed
			r.Error = err.Error()
			r.Awaiting = nil
			if result != nil {
				r.Picks = result.Picks
				r.Summaries = result.Summaries
				r.Remaining = len(result.Remaining)
			}
		})
		metrics.RecordSimulationFailed()
		return err
	}

	if _, err := s.runs.Update(bg, job.RunID, func(r *repository.Run) {
		r.Status = repository.StatusCompleted
		r.Picks = result.Picks
		r.Summaries = result.Summaries
		r.Remaining = len(result.Remaining)
		r.CompletedRounds = result.Rounds
		r.Awaiting = nil
	}); err != nil {
		log.Warn(ctx, "run expired before completion was stored", logger.Error(err))
	}

	elapsed := time.Since(start)
	metrics.RecordSimulationCompleted(float64(elapsed.Microseconds()) / 1000)
	log.Info(ctx, "simulation completed",
		logger.Int("picks", len(result.Picks)),
		logger.Int("rounds", result.Rounds),
		logger.Int("remaining", len(result.Remaining)),
		logger.String("elapsed", elapsed.String()),
	)
	return nil
}

// FindDuplicates reports existing players whose names resemble name.
func (s *Service) FindDuplicates(ctx context.Context, name string, existing []model.Candidate) []dedupe.Match {
	return s.detector.FindDuplicates(ctx, name, existing)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"rounds":      s.rounds,
		"draftYear":   s.draftYear,
		"runs":        s.runs.Len(),
		"votes":       s.votes.Count(ctx),
	}

	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
		stats["activeWorkers"] = s.pool.Active()
	}

	s.resolversMu.Lock()
	stats["awaitingPicks"] = len(s.resolvers)
	s.resolversMu.Unlock()

	return stats
}

func (s *Service) withDefaults(req model.SimulationRequest) model.SimulationRequest {
	if req.Rounds <= 0 {
		req.Rounds = s.rounds
	}
	if req.DraftYear == 0 {
		req.DraftYear = s.draftYear
	}
	if req.Weights.IsZero() {
		req.Weights = s.weights
	}
	return req
}

func (s *Service) fail(ctx context.Context, runID string, err error) {
	_, _ = s.runs.Update(ctx, runID, func(r *repository.Run) {
		r.Status = repository.StatusFailed
		r.Error = err.Error()
	})
	metrics.RecordSimulationFailed()
}

func validateRequest(req model.SimulationRequest) error {
	if len(req.Pool) == 0 {
		return fmt.Errorf("%w: pool is empty", ErrInvalidRequest)
	}
	seen := make(map[int64]struct{}, len(req.Pool))
	for _, c := range req.Pool {
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("%w: duplicate player id %d", ErrInvalidRequest, c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	for _, team := range req.HumanTeams {
		if !types.Valid(team) {
			return fmt.Errorf("%w: unknown team %q", ErrInvalidRequest, team)
		}
	}
	picked := make(map[int64]struct{}, len(req.History))
	for _, p := range req.History {
		if !types.Valid(p.TeamID) {
			return fmt.Errorf("%w: unknown team %q in history", ErrInvalidRequest, p.TeamID)
		}
		if _, ok := seen[p.PlayerID]; !ok {
			return fmt.Errorf("%w: history player %d is not in the pool", ErrInvalidRequest, p.PlayerID)
		}
		if _, dup := picked[p.PlayerID]; dup {
			return fmt.Errorf("%w: history picks player %d twice", ErrInvalidRequest, p.PlayerID)
		}
		picked[p.PlayerID] = struct{}{}
	}
	return nil
}

func mergeNeeds(base, extra model.UnfulfilledNeeds) model.UnfulfilledNeeds {
	if len(base) == 0 && len(extra) == 0 {
		return nil
	}
	out := make(model.UnfulfilledNeeds, len(base)+len(extra))
	for team, needs := range base {
		out[team] = append([]string(nil), needs...)
	}
	for team, needs := range extra {
		for _, n := range needs {
			dup := false
			for _, have := range out[team] {
				if have == n {
					dup = true
					break
				}
			}
			if !dup {
				out[team] = append(out[team], n)
			}
		}
	}
	return out
}
