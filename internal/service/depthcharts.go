package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fortuna/augur/internal/cache"
	"github.com/fortuna/augur/internal/dvp"
	"github.com/fortuna/augur/internal/metrics"
	"github.com/fortuna/augur/internal/sources/basketballmonsters"
)

// DepthChartSnapshot is the cached scrape result.
type DepthChartSnapshot struct {
	Teams     []basketballmonsters.DepthChart `json:"teams"`
	ScrapedAt time.Time                       `json:"scraped_at"`
}

// DepthChartService scrapes and caches BasketballMonsters depth charts.
type DepthChartService struct {
	client *basketballmonsters.Client
	cache  *cache.RedisCache
	log    *zap.SugaredLogger
}

// NewDepthChartService creates the service. client may be nil when
// headless Chrome is unavailable; the service then serves only what the
// cache still holds.
func NewDepthChartService(client *basketballmonsters.Client, redis *cache.RedisCache, log *zap.SugaredLogger) *DepthChartService {
	return &DepthChartService{
		client: client,
		cache:  redis,
		log:    log,
	}
}

// Charts returns the current depth charts, scraping on miss or when
// recalculate is set.
func (s *DepthChartService) Charts(ctx context.Context, recalculate bool) (*DepthChartSnapshot, error) {
	if !recalculate && s.cache != nil {
		var snap DepthChartSnapshot
		if hit, err := s.cache.GetJSON(ctx, cache.DepthChartKey(), &snap); err != nil {
			s.log.Warnf("⚠️ reading depth-chart cache: %v", err)
		} else if hit {
			return &snap, nil
		}
	}

	if s.client == nil {
		return nil, fmt.Errorf("depth-chart scraper disabled and cache empty")
	}

	doc, err := s.client.FetchDepthCharts(ctx)
	if err != nil {
		metrics.ScrapeFailures.WithLabelValues("basketballmonsters").Inc()
		return nil, fmt.Errorf("scraping depth charts: %w", err)
	}
	charts := basketballmonsters.ParseDepthCharts(doc)
	if len(charts) == 0 {
		metrics.ScrapeFailures.WithLabelValues("basketballmonsters").Inc()
		return nil, fmt.Errorf("depth-chart page yielded no teams")
	}

	snap := &DepthChartSnapshot{Teams: charts, ScrapedAt: time.Now().UTC()}
	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cache.DepthChartKey(), snap, cache.DepthChartTTL); err != nil {
			s.log.Warnf("⚠️ caching depth charts: %v", err)
		}
	}
	s.log.Infof("✓ scraped depth charts for %d teams", len(charts))
	return snap, nil
}

// BucketMap flattens the current charts into the lookup the DvP engine
// consumes.
func (s *DepthChartService) BucketMap(ctx context.Context) (dvp.BucketMap, error) {
	snap, err := s.Charts(ctx, false)
	if err != nil {
		return nil, err
	}
	return dvp.BucketMapFromCharts(snap.Teams), nil
}
