package basketballmonsters

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const (
	// DepthChartURL is the league-wide depth chart grid.
	DepthChartURL = "https://basketballmonster.com/nbadepthcharts.aspx"

	// UserAgent for requests
	UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// MinRequestInterval to prevent rate limiting
	MinRequestInterval = 2 * time.Second
)

// Client scrapes BasketballMonsters with a headless browser. The depth
// chart grid is rendered client-side, so a plain GET returns an empty
// shell.
type Client struct {
	lastRequest time.Time
	interval    time.Duration
	log         *zap.SugaredLogger

	allocCtx context.Context
	cancel   context.CancelFunc
}

// NewClient starts a headless Chrome allocator.
func NewClient(log *zap.SugaredLogger) (*Client, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(UserAgent),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Client{
		lastRequest: time.Time{},
		interval:    MinRequestInterval,
		log:         log,
		allocCtx:    allocCtx,
		cancel:      cancel,
	}, nil
}

// Close releases the browser allocator.
func (c *Client) Close() {
	if c.cancel != nil {
		c.cancel()
	}
}

// FetchDepthCharts renders the depth chart page and returns the parsed
// document.
func (c *Client) FetchDepthCharts(ctx context.Context) (*goquery.Document, error) {
	html, err := c.fetchWithRateLimit(ctx, DepthChartURL)
	if err != nil {
		return nil, err
	}
	return ParseHTML(html)
}

func (c *Client) fetchWithRateLimit(ctx context.Context, url string) (string, error) {
	if !c.lastRequest.IsZero() {
		elapsed := time.Since(c.lastRequest)
		if elapsed < c.interval {
			waitTime := c.interval - elapsed
			c.log.Debugf("rate limiting: waiting %v before next request", waitTime)
			time.Sleep(waitTime)
		}
	}

	html, err := c.fetch(ctx, url)
	c.lastRequest = time.Now()

	return html, err
}

func (c *Client) fetch(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 45*time.Second)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(c.allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, 45*time.Second)
	defer cancel()

	var htmlContent string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible(`table`, chromedp.ByQuery),
		chromedp.Sleep(1*time.Second), // Allow JS to render
		chromedp.OuterHTML(`html`, &htmlContent, chromedp.ByQuery),
	)

	if err != nil {
		return "", fmt.Errorf("chromedp error: %w", err)
	}

	if htmlContent == "" {
		return "", fmt.Errorf("empty HTML content returned")
	}

	return htmlContent, nil
}

// ParseHTML converts raw HTML to a goquery Document for parsing
func ParseHTML(htmlContent string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}
