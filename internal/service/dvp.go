package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/fortuna/augur/internal/cache"
	"github.com/fortuna/augur/internal/dvp"
	"github.com/fortuna/augur/internal/metrics"
	"github.com/fortuna/augur/internal/sources/nbastats"
)

// DvPService serves defense-vs-position tables, computing on miss and
// caching the full table so any metric can be projected without a refetch.
type DvPService struct {
	engine *dvp.Engine
	charts *DepthChartService
	cache  *cache.RedisCache
	log    *zap.SugaredLogger
}

// NewDvPService creates a new DvP service. charts may be nil when the
// depth-chart scraper is disabled; bucketing then relies on the
// start-position heuristic alone.
func NewDvPService(engine *dvp.Engine, charts *DepthChartService, redis *cache.RedisCache, log *zap.SugaredLogger) *DvPService {
	return &DvPService{
		engine: engine,
		charts: charts,
		cache:  redis,
		log:    log,
	}
}

// TeamDvP is one team's table projected onto a single metric.
type TeamDvP struct {
	Team        string             `json:"team"`
	Season      string             `json:"season"`
	Metric      string             `json:"metric"`
	SampleGames int                `json:"sample_games"`
	PerGame     map[string]float64 `json:"perGame"`
	Totals      map[string]float64 `json:"totals"`
}

// GetTable returns a team's full DvP table, from cache unless recalculate
// is set.
func (s *DvPService) GetTable(ctx context.Context, team string, seasonStart, games int, recalculate bool) (*dvp.Table, error) {
	if games <= 0 {
		games = dvp.DefaultSampleGames
	}
	if games > dvp.MaxSampleGames {
		games = dvp.MaxSampleGames
	}
	team = nbastats.NormalizeAbbr(team)

	key := cache.DvPKey(team, seasonStart, games)
	if !recalculate && s.cache != nil {
		var table dvp.Table
		if hit, err := s.cache.GetJSON(ctx, key, &table); err != nil {
			s.log.Warnf("⚠️ reading DvP cache for %s: %v", team, err)
		} else if hit {
			return &table, nil
		}
	}

	table, err := s.engine.Compute(ctx, team, seasonStart, games, s.bucketMap(ctx))
	if err != nil {
		metrics.ScrapeFailures.WithLabelValues("nbastats").Inc()
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, table, cache.DvPTTL); err != nil {
			s.log.Warnf("⚠️ caching DvP table for %s: %v", team, err)
		}
	}
	return table, nil
}

// GetMetric returns one team's table projected onto a metric.
func (s *DvPService) GetMetric(ctx context.Context, team string, seasonStart, games int, metric string, recalculate bool) (*TeamDvP, error) {
	if !dvp.ValidMetric(metric) {
		return nil, fmt.Errorf("unknown metric %q", metric)
	}

	table, err := s.GetTable(ctx, team, seasonStart, games, recalculate)
	if err != nil {
		return nil, err
	}

	perGame, totals := table.MetricView(metric)
	return &TeamDvP{
		Team:        table.Team,
		Season:      table.Season,
		Metric:      metric,
		SampleGames: table.SampleGames,
		PerGame:     perGame,
		Totals:      totals,
	}, nil
}

// League assembles every team's projection for one metric. Teams that
// fail to compute are skipped with a warning; the response carries the
// ones that worked.
func (s *DvPService) League(ctx context.Context, seasonStart, games int, metric string, recalculate bool) ([]*TeamDvP, []string, error) {
	if !dvp.ValidMetric(metric) {
		return nil, nil, fmt.Errorf("unknown metric %q", metric)
	}

	teams := make([]string, 0, len(nbastats.TeamIDByAbbr))
	for abbr := range nbastats.TeamIDByAbbr {
		teams = append(teams, abbr)
	}
	sort.Strings(teams)

	tables := make([]*TeamDvP, 0, len(teams))
	var failed []string
	for _, team := range teams {
		entry, err := s.GetMetric(ctx, team, seasonStart, games, metric, recalculate)
		if err != nil {
			s.log.Warnf("⚠️ league DvP: %s: %v", team, err)
			failed = append(failed, team)
			continue
		}
		tables = append(tables, entry)
	}
	return tables, failed, nil
}

// bucketMap pulls the current depth-chart mapping, best effort.
func (s *DvPService) bucketMap(ctx context.Context) dvp.BucketMap {
	if s.charts == nil {
		return nil
	}
	depth, err := s.charts.BucketMap(ctx)
	if err != nil {
		s.log.Warnf("⚠️ depth charts unavailable, falling back to position heuristic: %v", err)
		return nil
	}
	return depth
}
