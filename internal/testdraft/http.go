package testdraft

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/draftsim/internal/domain/model"
	"github.com/okian/draftsim/pkg/logger"
)

// Client talks to the draft simulator API.
type Client struct {
	baseURL string
	client  *http.Client
}

// StatusError reports an unexpected response status.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// NewClient creates a client for baseURL with a request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Health checks GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, http.StatusOK, nil)
}

// CastPlayerVote posts one player vote.
func (c *Client) CastPlayerVote(ctx context.Context, v playerVote) error {
	return c.do(ctx, http.MethodPost, "/votes/players", v, http.StatusAccepted, nil)
}

// Submit queues a simulation and returns its id.
func (c *Client) Submit(ctx context.Context, req model.SimulationRequest) (string, error) {
	var out SubmitResponse
	if err := c.do(ctx, http.MethodPost, "/simulations", req, http.StatusAccepted, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// Run fetches a simulation record.
func (c *Client) Run(ctx context.Context, id string) (RunRecord, error) {
	var out RunRecord
	err := c.do(ctx, http.MethodGet, "/simulations/"+id, nil, http.StatusOK, &out)
	return out, err
}

// Wait polls a simulation until it reaches a terminal status.
func (c *Client) Wait(ctx context.Context, id string, interval time.Duration) (RunRecord, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		run, err := c.Run(ctx, id)
		if err != nil {
			return run, err
		}
		if run.Status.Terminal() {
			return run, nil
		}
		select {
		case <-ctx.Done():
			return run, fmt.Errorf("waiting for %s: %w", id, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any, want int, out any) error {
	var rdr io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		rdr = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != want {
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: string(bytes.TrimSpace(data))}
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", path, err)
		}
	}
	return nil
}

// submitVotes casts votes concurrently using a worker pool.
func submitVotes(ctx context.Context, config *Config, client *Client, votes []playerVote, stats *Stats) {
	log := logger.Named("testdraft")
	log.Info(ctx, "submitting votes", logger.Int("votes", len(votes)), logger.Int("workers", config.Workers))

	var submitted, failed int64
	voteChan := make(chan playerVote, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for v := range voteChan {
				if err := client.CastPlayerVote(ctx, v); err != nil {
					atomic.AddInt64(&failed, 1)
					if config.Verbose {
						log.Warn(ctx, "vote failed", logger.Error(err))
					}
					continue
				}
				atomic.AddInt64(&submitted, 1)
			}
		}()
	}

	go func() {
		defer close(voteChan)
		for _, v := range votes {
			select {
			case <-ctx.Done():
				return
			case voteChan <- v:
			}
		}
	}()
	wg.Wait()

	stats.VotesSubmitted = int(atomic.LoadInt64(&submitted))
	stats.VotesFailed = int(atomic.LoadInt64(&failed))
	log.Info(ctx, "vote submission completed",
		logger.Int("submitted", stats.VotesSubmitted),
		logger.Int("failed", stats.VotesFailed))
}

// runSimulations submits and awaits config.Simulations runs concurrently.
// Rejected submissions are counted, not retried.
func runSimulations(ctx context.Context, config *Config, client *Client, req model.SimulationRequest, stats *Stats) []RunRecord {
	log := logger.Named("testdraft")
	log.Info(ctx, "running simulations", logger.Int("simulations", config.Simulations))

	var (
		mu       sync.Mutex
		runs     []RunRecord
		rejected int64
		wg       sync.WaitGroup
	)
	jobs := make(chan int, config.Workers*WorkerChannelMultiplier)

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := range jobs {
				r := req
				if r.Seed != 0 {
					r.Seed += int64(n)
				}
				id, err := client.Submit(ctx, r)
				if err != nil {
					atomic.AddInt64(&rejected, 1)
					if config.Verbose {
						log.Warn(ctx, "simulation rejected", logger.Error(err))
					}
					continue
				}
				run, err := client.Wait(ctx, id, config.PollInterval)
				if err != nil {
					log.Warn(ctx, "simulation did not finish", logger.String("runID", id), logger.Error(err))
					continue
				}
				mu.Lock()
				runs = append(runs, run)
				mu.Unlock()
			}
		}()
	}

	go func() {
		defer close(jobs)
		for n := 0; n < config.Simulations; n++ {
			select {
			case <-ctx.Done():
				return
			case jobs <- n:
			}
		}
	}()
	wg.Wait()

	stats.SimulationsSubmitted = config.Simulations - int(rejected)
	stats.SimulationsRejected = int(rejected)
	return runs
}
