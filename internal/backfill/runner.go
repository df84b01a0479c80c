package backfill

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fortuna/augur/internal/sources/balldontlie"
	"github.com/fortuna/augur/internal/sources/nbastats"
	"github.com/fortuna/augur/internal/store"
	"github.com/fortuna/augur/internal/store/repository"
)

// errCancelled signals that the job was cancelled mid-run. The worker
// leaves the row alone; Cancel already stamped it.
var errCancelled = errors.New("job cancelled")

// Runner ingests historical BDL boxscores for a job's date range.
type Runner struct {
	bdl   *balldontlie.Client
	games *repository.GameRepository
	stats *repository.StatsRepository
	log   *zap.SugaredLogger
}

// NewRunner constructs a runner.
func NewRunner(bdl *balldontlie.Client, games *repository.GameRepository, stats *repository.StatsRepository, log *zap.SugaredLogger) *Runner {
	return &Runner{bdl: bdl, games: games, stats: stats, log: log}
}

// Run walks the job's date range, one day at a time. Final games get
// their boxscores pulled and upserted into the stats cache. report is
// called after each day with cumulative counts; cancelled is polled
// between days.
func (r *Runner) Run(ctx context.Context, job *store.BackfillJob, report func(gamesProcessed, statsUpserted int), cancelled func() bool) error {
	dates := enumerateDates(job.StartDate, job.EndDate)
	if len(dates) == 0 {
		return nil
	}

	gamesProcessed, statsUpserted := 0, 0
	for i, date := range dates {
		if err := ctx.Err(); err != nil {
			return err
		}
		if cancelled != nil && cancelled() {
			return errCancelled
		}

		r.log.Infof("backfilling %s (%d/%d)", date.Format("2006-01-02"), i+1, len(dates))

		games, err := r.bdl.GamesByDate(ctx, date)
		if err != nil {
			return fmt.Errorf("fetching games for %s: %w", date.Format("2006-01-02"), err)
		}

		for _, g := range games {
			if !g.IsFinal() {
				continue
			}

			stats, err := r.bdl.StatsByGame(ctx, g.ID)
			if err != nil {
				return fmt.Errorf("fetching stats for game %d: %w", g.ID, err)
			}

			if err := r.games.Upsert(ctx, gameRow(g, date)); err != nil {
				r.log.Warnf("⚠️ caching game %d: %v", g.ID, err)
			}

			fetchedAt := time.Now().UTC()
			for _, s := range stats {
				if err := r.stats.Upsert(ctx, statRow(s, g.ID, fetchedAt)); err != nil {
					r.log.Warnf("⚠️ caching stat for %s in game %d: %v", s.Player.FullName(), g.ID, err)
					continue
				}
				statsUpserted++
			}
			gamesProcessed++
		}

		if report != nil {
			report(gamesProcessed, statsUpserted)
		}
	}

	return nil
}

func gameRow(g balldontlie.Game, day time.Time) *store.Game {
	gameDate := day
	if parsed, err := time.Parse("2006-01-02", g.Date); err == nil {
		gameDate = parsed
	}

	row := &store.Game{
		BDLGameID: sql.NullInt64{Int64: g.ID, Valid: true},
		HomeTeam:  nbastats.NormalizeAbbr(g.HomeTeam.Abbreviation),
		AwayTeam:  nbastats.NormalizeAbbr(g.VisitorTeam.Abbreviation),
		HomeScore: sql.NullInt32{Int32: int32(g.HomeTeamScore), Valid: true},
		AwayScore: sql.NullInt32{Int32: int32(g.VisitorTeamScore), Valid: true},
		Period:    sql.NullInt32{Int32: int32(g.Period), Valid: true},
		GameDate:  gameDate,
		Status:    g.Status,
		Source:    store.SourceBallDontLie,
	}
	if g.Time != "" {
		row.Clock = sql.NullString{String: strings.TrimSpace(g.Time), Valid: true}
	}
	if tip := g.Tipoff(); !tip.IsZero() {
		row.Tipoff = sql.NullTime{Time: tip, Valid: true}
	}
	return row
}

func statRow(s balldontlie.Stat, gameID int64, fetchedAt time.Time) *store.PlayerGameStat {
	return &store.PlayerGameStat{
		BDLGameID:           gameID,
		BDLPlayerID:         s.Player.ID,
		PlayerName:          s.Player.FullName(),
		Team:                sql.NullString{String: strings.ToUpper(s.Team.Abbreviation), Valid: s.Team.Abbreviation != ""},
		Minutes:             sql.NullString{String: s.Min, Valid: true},
		Points:              s.Points,
		Rebounds:            s.Rebounds,
		Assists:             s.Assists,
		Steals:              s.Steals,
		Blocks:              s.Blocks,
		Turnovers:           s.Turnover,
		ThreePointersMade:   s.FG3M,
		FieldGoalsMade:      s.FGM,
		FieldGoalsAttempted: s.FGA,
		FreeThrowsMade:      s.FTM,
		FreeThrowsAttempted: s.FTA,
		FetchedAt:           fetchedAt,
	}
}

func enumerateDates(start, end time.Time) []time.Time {
	if end.Before(start) {
		start, end = end, start
	}

	var dates []time.Time
	current := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	final := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	for !current.After(final) {
		dates = append(dates, current)
		current = current.AddDate(0, 0, 1)
	}

	return dates
}
