package footywire

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const (
	BaseURL = "https://www.footywire.com"

	// FootyWire serves plain HTML but 403s default Go user agents.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

// Client scrapes FootyWire's static AFL pages.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.SugaredLogger
}

// NewClient creates a client with production defaults.
func NewClient(log *zap.SugaredLogger) *Client {
	return &Client{
		baseURL: BaseURL,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		log: log,
	}
}

// NewClientWithBaseURL creates a client pointed at a custom base URL.
// Used by tests.
func NewClientWithBaseURL(baseURL string, log *zap.SugaredLogger) *Client {
	c := NewClient(log)
	c.baseURL = baseURL
	return c
}

// Fixtures fetches and parses the season fixture list for a year.
func (c *Client) Fixtures(ctx context.Context, year int) ([]Fixture, error) {
	url := fmt.Sprintf("%s/afl/footy/ft_match_list?year=%d", c.baseURL, year)
	doc, err := c.fetchDocument(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetching fixtures for %d: %w", year, err)
	}
	return ParseFixtures(doc), nil
}

// Ladder fetches and parses the current premiership ladder.
func (c *Client) Ladder(ctx context.Context) ([]LadderEntry, error) {
	url := fmt.Sprintf("%s/afl/footy/ft_lad", c.baseURL)
	doc, err := c.fetchDocument(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetching ladder: %w", err)
	}
	return ParseLadder(doc), nil
}

func (c *Client) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("FootyWire returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}
