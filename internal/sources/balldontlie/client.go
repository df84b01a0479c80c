package balldontlie

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	BaseURL = "https://api.balldontlie.io/v1"

	// MinRequestInterval keeps us inside BDL's per-minute quota.
	MinRequestInterval = 1 * time.Second

	pageSize = 100

	gamesRetries    = 3
	gamesRetryDelay = 2 * time.Second
)

// Client talks to the BallDontLie v1 API. All endpoints want the API key
// in a bare Authorization header (no Bearer prefix).
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *zap.SugaredLogger

	mu          sync.Mutex
	lastRequest time.Time
	interval    time.Duration
	retryDelay  time.Duration
}

// NewClient creates a client with production defaults.
func NewClient(apiKey string, log *zap.SugaredLogger) *Client {
	return &Client{
		baseURL: BaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		log:        log,
		interval:   MinRequestInterval,
		retryDelay: gamesRetryDelay,
	}
}

// NewClientWithBaseURL creates a client pointed at a custom base URL with
// rate limiting disabled. Used by tests.
func NewClientWithBaseURL(baseURL, apiKey string, log *zap.SugaredLogger) *Client {
	c := NewClient(apiKey, log)
	c.baseURL = baseURL
	c.interval = 0
	return c
}

// GamesByDate fetches every game on the given calendar date (as BDL keys
// dates, i.e. ET). Each page fetch is retried a fixed number of times with
// a fixed delay because BDL intermittently 500s during live windows.
func (c *Client) GamesByDate(ctx context.Context, date time.Time) ([]Game, error) {
	var games []Game
	cursor := int64(0)
	for {
		query := url.Values{}
		query.Set("dates[]", date.Format("2006-01-02"))
		query.Set("per_page", strconv.Itoa(pageSize))
		if cursor > 0 {
			query.Set("cursor", strconv.FormatInt(cursor, 10))
		}

		var page gamesResponse
		var err error
		for attempt := 1; attempt <= gamesRetries; attempt++ {
			err = c.fetchJSON(ctx, "/games", query, &page)
			if err == nil {
				break
			}
			if attempt < gamesRetries {
				c.log.Warnf("⚠️ BDL games fetch attempt %d/%d failed: %v", attempt, gamesRetries, err)
				if serr := sleepCtx(ctx, c.retryDelay); serr != nil {
					return nil, serr
				}
			}
		}
		if err != nil {
			return nil, fmt.Errorf("fetching games for %s: %w", date.Format("2006-01-02"), err)
		}

		games = append(games, page.Data...)
		if page.Meta.NextCursor == nil {
			return games, nil
		}
		cursor = *page.Meta.NextCursor
	}
}

// StatsByGame fetches every player stat line for one game, following the
// pagination cursor until exhausted.
func (c *Client) StatsByGame(ctx context.Context, gameID int64) ([]Stat, error) {
	var stats []Stat
	cursor := int64(0)
	for {
		query := url.Values{}
		query.Set("game_ids[]", strconv.FormatInt(gameID, 10))
		query.Set("per_page", strconv.Itoa(pageSize))
		if cursor > 0 {
			query.Set("cursor", strconv.FormatInt(cursor, 10))
		}

		var page statsResponse
		if err := c.fetchJSON(ctx, "/stats", query, &page); err != nil {
			return nil, fmt.Errorf("fetching stats for game %d: %w", gameID, err)
		}

		stats = append(stats, page.Data...)
		if page.Meta.NextCursor == nil {
			return stats, nil
		}
		cursor = *page.Meta.NextCursor
	}
}

// SearchPlayers looks players up by name fragment. One page is enough: BDL
// matches on first or last name and a fragment rarely hits 100 players.
func (c *Client) SearchPlayers(ctx context.Context, name string) ([]Player, error) {
	query := url.Values{}
	query.Set("search", name)
	query.Set("per_page", strconv.Itoa(pageSize))

	var resp playersResponse
	if err := c.fetchJSON(ctx, "/players", query, &resp); err != nil {
		return nil, fmt.Errorf("searching players %q: %w", name, err)
	}
	return resp.Data, nil
}

// SeasonAverages fetches one player's per-game averages for a season
// (season is the start year, e.g. 2024 for 2024-25). An empty data array
// means no games played, not an error.
func (c *Client) SeasonAverages(ctx context.Context, playerID int64, season int) ([]SeasonAverage, error) {
	query := url.Values{}
	query.Set("season", strconv.Itoa(season))
	query.Set("player_id", strconv.FormatInt(playerID, 10))

	var resp seasonAveragesResponse
	if err := c.fetchJSON(ctx, "/season_averages", query, &resp); err != nil {
		return nil, fmt.Errorf("fetching season averages for player %d: %w", playerID, err)
	}
	return resp.Data, nil
}

func (c *Client) fetchJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	if err := c.waitForInterval(ctx); err != nil {
		return err
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return fmt.Errorf("BDL rejected API key (status 401)")
	case http.StatusTooManyRequests:
		return fmt.Errorf("BDL rate limit hit (status 429)")
	default:
		return fmt.Errorf("BDL returned status %d: %s", resp.StatusCode, snippet(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response: %w (body: %s)", err, snippet(body))
	}
	return nil
}

// waitForInterval blocks until the minimum spacing since the previous
// request has elapsed.
func (c *Client) waitForInterval(ctx context.Context) error {
	if c.interval <= 0 {
		return nil
	}
	c.mu.Lock()
	wait := c.interval - time.Since(c.lastRequest)
	if wait > 0 {
		c.mu.Unlock()
		if err := sleepCtx(ctx, wait); err != nil {
			return err
		}
		c.mu.Lock()
	}
	c.lastRequest = time.Now()
	c.mu.Unlock()
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func snippet(body []byte) string {
	const max = 200
	if len(body) > max {
		body = body[:max]
	}
	return string(body)
}
