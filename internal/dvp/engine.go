package dvp

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/fortuna/augur/internal/sources/nbastats"
)

const (
	DefaultSampleGames = 20
	MaxSampleGames     = 50
)

// statsSource is the slice of the NBA Stats client the engine needs.
type statsSource interface {
	TeamGameLog(ctx context.Context, teamID int64, seasonLabel string) ([]nbastats.GameLogEntry, error)
	BoxScore(ctx context.Context, gameID string) ([]nbastats.BoxScorePlayer, error)
}

// Table is one team's defense-vs-position sheet: what opponents produced
// against them, broken down by bucket, across every tracked metric.
type Table struct {
	Team        string                        `json:"team"`
	Season      string                        `json:"season"`
	SampleGames int                           `json:"sample_games"`
	Totals      map[string]map[string]float64 `json:"totals"`
	PerGame     map[string]map[string]float64 `json:"per_game"`
	ComputedAt  time.Time                     `json:"computed_at"`
}

// MetricView projects one metric out of the table: bucket → value.
func (t *Table) MetricView(metric string) (perGame, totals map[string]float64) {
	perGame = make(map[string]float64, len(Buckets))
	totals = make(map[string]float64, len(Buckets))
	for _, bucket := range Buckets {
		perGame[bucket] = t.PerGame[bucket][metric]
		totals[bucket] = t.Totals[bucket][metric]
	}
	return perGame, totals
}

// Engine computes DvP tables from NBA Stats game logs and boxscores.
type Engine struct {
	api statsSource
	log *zap.SugaredLogger
}

func NewEngine(api statsSource, log *zap.SugaredLogger) *Engine {
	return &Engine{api: api, log: log}
}

// Compute builds the table for one team. seasonStart is the season's
// first calendar year (2024 for 2024-25); games is clamped to 1..50.
// If the requested season has no completed games yet, the previous
// season is tried once.
func (e *Engine) Compute(ctx context.Context, team string, seasonStart, games int, depth BucketMap) (*Table, error) {
	teamID, err := nbastats.ResolveTeamID(team)
	if err != nil {
		return nil, err
	}

	if games <= 0 {
		games = DefaultSampleGames
	}
	if games > MaxSampleGames {
		games = MaxSampleGames
	}

	for _, year := range []int{seasonStart, seasonStart - 1} {
		label := nbastats.SeasonLabel(year)
		table, err := e.computeSeason(ctx, teamID, label, games, depth)
		if err != nil {
			return nil, err
		}
		if table.SampleGames > 0 {
			table.Team = nbastats.NormalizeAbbr(team)
			e.log.Infof("✓ DvP %s %s: %d games sampled", table.Team, label, table.SampleGames)
			return table, nil
		}
		e.log.Warnf("⚠️ no completed games for team %d in %s, trying previous season", teamID, label)
	}

	return nil, fmt.Errorf("no completed games for %s in %s or %s",
		team, nbastats.SeasonLabel(seasonStart), nbastats.SeasonLabel(seasonStart-1))
}

func (e *Engine) computeSeason(ctx context.Context, teamID int64, label string, games int, depth BucketMap) (*Table, error) {
	entries, err := e.api.TeamGameLog(ctx, teamID, label)
	if err != nil {
		return nil, fmt.Errorf("fetching game log: %w", err)
	}
	if len(entries) > games {
		entries = entries[:games]
	}

	totals := newBucketTotals()
	processed := 0
	for _, entry := range entries {
		rows, err := e.api.BoxScore(ctx, entry.GameID)
		if err != nil {
			// One missing boxscore shrinks the sample, it doesn't kill the table
			e.log.Warnf("⚠️ skipping boxscore %s: %v", entry.GameID, err)
			continue
		}
		accumulateOpponents(rows, teamID, depth, totals)
		processed++
	}

	table := &Table{
		Season:      label,
		SampleGames: processed,
		Totals:      totals,
		PerGame:     perGameAverages(totals, processed),
		ComputedAt:  time.Now().UTC(),
	}
	return table, nil
}

// accumulateOpponents folds one boxscore into the running totals: only
// rows for the other team, only players with recorded minutes.
func accumulateOpponents(rows []nbastats.BoxScorePlayer, teamID int64, depth BucketMap, totals map[string]map[string]float64) {
	for _, row := range rows {
		if row.TeamID == teamID || row.Minutes == "" {
			continue
		}
		bucket := bucketFor(row, depth)
		totals[bucket]["pts"] += row.Points
		totals[bucket]["reb"] += row.Rebounds
		totals[bucket]["ast"] += row.Assists
		totals[bucket]["fg3m"] += row.ThreePointersMade
		totals[bucket]["stl"] += row.Steals
		totals[bucket]["blk"] += row.Blocks
	}
}

func newBucketTotals() map[string]map[string]float64 {
	totals := make(map[string]map[string]float64, len(Buckets))
	for _, bucket := range Buckets {
		totals[bucket] = make(map[string]float64, len(Metrics))
		for _, metric := range Metrics {
			totals[bucket][metric] = 0
		}
	}
	return totals
}

func perGameAverages(totals map[string]map[string]float64, processed int) map[string]map[string]float64 {
	perGame := make(map[string]map[string]float64, len(Buckets))
	for _, bucket := range Buckets {
		perGame[bucket] = make(map[string]float64, len(Metrics))
		for _, metric := range Metrics {
			if processed > 0 {
				perGame[bucket][metric] = round2(totals[bucket][metric] / float64(processed))
			} else {
				perGame[bucket][metric] = 0
			}
		}
	}
	return perGame
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
