package espn

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

const (
	BaseURL       = "https://site.api.espn.com/apis/site/v2/sports"
	BasketballNBA = "basketball/nba"
)

// Client handles ESPN API requests.
// Note: Uses curl internally because ESPN blocks Go's HTTP client fingerprint.
type Client struct {
	baseURL string
	log     *zap.SugaredLogger
}

// New creates an ESPN client with a custom base URL.
func New(baseURL string, log *zap.SugaredLogger) *Client {
	if baseURL == "" {
		baseURL = BaseURL
	}
	return &Client{baseURL: baseURL, log: log}
}

// NewClient creates an ESPN client with default settings.
func NewClient(log *zap.SugaredLogger) *Client {
	return New(BaseURL, log)
}

// Scoreboard fetches and parses games for a date. A zero date asks ESPN for
// its "today", which spans games within roughly 24 hours.
func (c *Client) Scoreboard(ctx context.Context, date time.Time) ([]Game, error) {
	var url string
	if date.IsZero() {
		url = fmt.Sprintf("%s/%s/scoreboard", c.baseURL, BasketballNBA)
	} else {
		url = fmt.Sprintf("%s/%s/scoreboard?dates=%s", c.baseURL, BasketballNBA, date.Format("20060102"))
	}

	raw, err := c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return c.parseScoreboard(raw), nil
}

// fetch makes an HTTP GET request using curl.
// ESPN blocks Go's HTTP client but curl works reliably.
func (c *Client) fetch(ctx context.Context, url string) (map[string]interface{}, error) {
	cmd := exec.CommandContext(ctx, "curl", "-s", "-L", "-m", "15", url)

	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("curl failed: %s (stderr: %s)", err, string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("curl execution failed: %w", err)
	}

	// ESPN serves HTML error pages for 403/404 instead of JSON
	if len(output) > 0 && output[0] == '<' {
		return nil, fmt.Errorf("ESPN returned HTML error page: %s", truncate(output, 200))
	}

	var result map[string]interface{}
	if err := json.Unmarshal(output, &result); err != nil {
		return nil, fmt.Errorf("decoding response: %w (body: %s)", err, truncate(output, 200))
	}

	return result, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
