// Package nbastats fetches game logs and boxscores from stats.nba.com.
//
// The stats API rejects requests without the full browser header set and
// throttles aggressively, so the client spaces requests out and retries
// the boxscore endpoint with a fixed delay.
package nbastats

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// BaseURL for the stats API
	BaseURL = "https://stats.nba.com/stats"

	// UserAgent for requests
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	// MinRequestInterval to prevent rate limiting
	MinRequestInterval = 650 * time.Millisecond

	boxscoreRetries    = 3
	boxscoreRetryDelay = 1500 * time.Millisecond
)

// Client handles stats.nba.com requests with rate limiting
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.SugaredLogger

	mu          sync.Mutex
	lastRequest time.Time
	interval    time.Duration
}

// NewClient creates a new stats.nba.com client
func NewClient(log *zap.SugaredLogger) *Client {
	return &Client{
		baseURL: BaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		log:      log,
		interval: MinRequestInterval,
	}
}

// NewClientWithBaseURL overrides the API base, used by tests.
func NewClientWithBaseURL(baseURL string, log *zap.SugaredLogger) *Client {
	c := NewClient(log)
	c.baseURL = baseURL
	c.interval = 0
	return c
}

// TeamGameLog returns a team's game ids for a season, newest first.
func (c *Client) TeamGameLog(ctx context.Context, teamID int64, seasonLabel string) ([]GameLogEntry, error) {
	path := fmt.Sprintf("teamgamelog?TeamID=%d&Season=%s&SeasonType=Regular+Season", teamID, seasonLabel)

	payload, err := c.fetchJSON(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("fetch team game log: %w", err)
	}

	return ParseGameLog(payload)
}

// BoxScore returns the per-player rows of a game's traditional boxscore.
// This is one of the two endpoints that carries a fixed-delay retry loop:
// the stats API sheds load with transient 5xx/timeouts during game windows.
func (c *Client) BoxScore(ctx context.Context, gameID string) ([]BoxScorePlayer, error) {
	path := fmt.Sprintf("boxscoretraditionalv2?GameID=%s&StartPeriod=0&EndPeriod=0&StartRange=0&EndRange=0&RangeType=0", gameID)

	var lastErr error
	for attempt := 1; attempt <= boxscoreRetries; attempt++ {
		payload, err := c.fetchJSON(ctx, path)
		if err == nil {
			return ParseBoxScore(payload)
		}
		lastErr = err

		if attempt < boxscoreRetries {
			c.log.Warnf("⚠️ Boxscore fetch failed for game %s (attempt %d/%d): %v", gameID, attempt, boxscoreRetries, err)
			select {
			case <-time.After(boxscoreRetryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return nil, fmt.Errorf("fetch boxscore %s: %w", gameID, lastErr)
}

// fetchJSON performs a rate-limited GET against the stats API.
func (c *Client) fetchJSON(ctx context.Context, pathAndQuery string) (map[string]interface{}, error) {
	c.waitForInterval()

	url := fmt.Sprintf("%s/%s", c.baseURL, pathAndQuery)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Origin", "https://www.nba.com")
	req.Header.Set("Referer", "https://www.nba.com/stats/")
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("x-nba-stats-origin", "stats")
	req.Header.Set("x-nba-stats-token", "true")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", pathAndQuery, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stats API returned %d for %s", resp.StatusCode, pathAndQuery)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	return payload, nil
}

// waitForInterval enforces the minimum spacing between requests.
func (c *Client) waitForInterval() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.lastRequest.IsZero() && c.interval > 0 {
		elapsed := time.Since(c.lastRequest)
		if elapsed < c.interval {
			time.Sleep(c.interval - elapsed)
		}
	}
	c.lastRequest = time.Now()
}
