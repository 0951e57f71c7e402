// Package baas fetches vote aggregates from the hosted backend over REST.
package baas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/draftsim/internal/domain/model"
	"github.com/okian/draftsim/pkg/logger"
)

const (
	defaultRate    = 10 // requests per second
	requestTimeout = 5 * time.Second
	maxRetries     = 3
	initialBackoff = 250 * time.Millisecond
	maxBackoff     = 4 * time.Second
	userAgent      = "draftsim/1.0"
)

// PlayerVoteRow is one player vote total as served by the backend.
type PlayerVoteRow struct {
	TeamID   string `json:"team_id"`
	PlayerID int64  `json:"player_id"`
	Votes    int    `json:"votes"`
}

// PositionVoteRow is one positional vote total as served by the backend.
type PositionVoteRow struct {
	TeamID   string `json:"team_id"`
	Round    int    `json:"round"`
	Position string `json:"position"`
	Votes    int    `json:"votes"`
}

// Client is a rate-limited vote aggregate client. It implements
// scoring.VoteSource.
type Client struct {
	baseURL        string
	apiKey         string
	httpClient     *http.Client
	limiter        *rate.Limiter
	initialBackoff time.Duration
	maxBackoff     time.Duration
	logger         logger.Logger
}

// NewClient creates a client for the backend rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrNoBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("baas: parse base url: %w", err)
	}
	c := &Client{
		baseURL:        baseURL,
		httpClient:     &http.Client{Timeout: requestTimeout},
		limiter:        rate.NewLimiter(rate.Limit(defaultRate), 1),
		initialBackoff: initialBackoff,
		maxBackoff:     maxBackoff,
		logger:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Aggregate fetches player and positional vote totals for year.
func (c *Client) Aggregate(ctx context.Context, year int) (model.VoteAggregate, error) {
	agg := model.NewVoteAggregate()

	var players []PlayerVoteRow
	if err := c.get(ctx, "/votes/players", year, &players); err != nil {
		return agg, fmt.Errorf("failed to get player votes for %d: %w", year, err)
	}
	var positions []PositionVoteRow
	if err := c.get(ctx, "/votes/positions", year, &positions); err != nil {
		return agg, fmt.Errorf("failed to get position votes for %d: %w", year, err)
	}

	// Counts are non-negative; corrupt rows are dropped, not folded in.
	skipped := 0
	for _, r := range players {
		if r.Votes < 0 {
			skipped++
			continue
		}
		agg.Players[model.PlayerVoteKey{TeamID: r.TeamID, PlayerID: r.PlayerID}] += r.Votes
	}
	for _, r := range positions {
		if r.Votes < 0 {
			skipped++
			continue
		}
		agg.Positions[model.PositionVoteKey{TeamID: r.TeamID, Round: r.Round, Position: r.Position}] += r.Votes
	}
	if skipped > 0 {
		c.logger.Warn(ctx, "dropped vote rows with negative counts",
			logger.Int("draftYear", year), logger.Int("rows", skipped))
	}
	return agg, nil
}

func (c *Client) get(ctx context.Context, path string, year int, result interface{}) error {
	u := c.baseURL + path + "?draft_year=" + strconv.Itoa(year)

	var lastErr error
	backoff := c.initialBackoff

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		retry, err := c.do(ctx, u, result)
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
		lastErr = err
		if attempt == maxRetries {
			break
		}

		c.logger.Warn(ctx, "vote backend request failed, retrying",
			logger.String("url", u),
			logger.Int("attempt", attempt+1),
			logger.Error(err),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, c.maxBackoff)
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// do performs one request. The bool reports whether the failure is retryable.
func (c *Client) do(ctx context.Context, u string, result interface{}) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return true, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return false, fmt.Errorf("failed to parse JSON response: %w", err)
		}
		return false, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return true, ErrRateLimited
	case resp.StatusCode >= http.StatusInternalServerError:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return true, &StatusError{URL: u, Status: resp.StatusCode, Body: string(body)}
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, &StatusError{URL: u, Status: resp.StatusCode, Body: string(body)}
	}
}
