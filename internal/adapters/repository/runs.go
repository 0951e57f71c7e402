package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/okian/draftsim/pkg/metrics"
)

// RunStore keeps simulation runs in a size-bounded LRU whose entries expire
// after a TTL.
type RunStore struct {
	capacity int
	ttl      time.Duration

	// mu serializes read-modify-write in Update; the LRU locks itself.
	mu  sync.Mutex
	lru *expirable.LRU[string, Run]
}

// NewRunStore creates a run store with configuration options.
func NewRunStore(opts ...RunOption) *RunStore {
	s := &RunStore{
		capacity: defaultRunCapacity,
		ttl:      defaultRunTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lru = expirable.NewLRU[string, Run](s.capacity, nil, s.ttl)
	return s
}

// Put stores run, replacing any previous state with the same id.
func (s *RunStore) Put(ctx context.Context, run Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if run.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidRun)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	run.UpdatedAt = time.Now()
	s.lru.Add(run.ID, run.clone())
	metrics.UpdateRunStoreSize(s.lru.Len())
	return nil
}

// Get returns a copy of the run with id.
func (s *RunStore) Get(ctx context.Context, id string) (Run, error) {
	if err := ctx.Err(); err != nil {
		return Run{}, err
	}
	run, ok := s.lru.Get(id)
	if !ok {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return run.clone(), nil
}

// Update applies fn to the stored run under the store lock.
func (s *RunStore) Update(ctx context.Context, id string, fn func(*Run)) (Run, error) {
	if err := ctx.Err(); err != nil {
		return Run{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.lru.Get(id)
	if !ok {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	run = run.clone()
	fn(&run)
	run.UpdatedAt = time.Now()
	s.lru.Add(id, run)
	metrics.UpdateRunStoreSize(s.lru.Len())
	return run.clone(), nil
}

// Len returns the number of live runs.
func (s *RunStore) Len() int {
	return s.lru.Len()
}
