package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fortuna/augur/internal/store"
)

// StatsRepository handles the cached per-player boxscore rows
type StatsRepository struct {
	db *store.Database
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *store.Database) *StatsRepository {
	return &StatsRepository{db: db}
}

const statColumns = `id, bdl_game_id, bdl_player_id, player_name, team, minutes,
	points, rebounds, assists, steals, blocks, turnovers, three_pointers_made,
	field_goals_made, field_goals_attempted, free_throws_made, free_throws_attempted,
	fetched_at`

// GetForGame returns all cached player rows for a game
func (r *StatsRepository) GetForGame(ctx context.Context, bdlGameID int64) ([]*store.PlayerGameStat, error) {
	query := `SELECT ` + statColumns + ` FROM player_game_stats WHERE bdl_game_id = $1 ORDER BY points DESC`

	rows, err := r.db.DB().QueryContext(ctx, query, bdlGameID)
	if err != nil {
		return nil, fmt.Errorf("querying player stats: %w", err)
	}
	defer rows.Close()

	return r.scanStats(rows)
}

// GetForGameSince returns cached rows only when they were fetched after the
// cutoff. Settlement uses this so a boxscore cached mid-game is refetched.
func (r *StatsRepository) GetForGameSince(ctx context.Context, bdlGameID int64, cutoff time.Time) ([]*store.PlayerGameStat, error) {
	query := `SELECT ` + statColumns + ` FROM player_game_stats
		WHERE bdl_game_id = $1 AND fetched_at >= $2
		ORDER BY points DESC`

	rows, err := r.db.DB().QueryContext(ctx, query, bdlGameID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("querying player stats: %w", err)
	}
	defer rows.Close()

	return r.scanStats(rows)
}

// GetPlayerGame returns one player's cached row for a game
func (r *StatsRepository) GetPlayerGame(ctx context.Context, bdlGameID, bdlPlayerID int64) (*store.PlayerGameStat, error) {
	query := `SELECT ` + statColumns + ` FROM player_game_stats WHERE bdl_game_id = $1 AND bdl_player_id = $2`

	stat := &store.PlayerGameStat{}
	err := r.db.DB().QueryRowContext(ctx, query, bdlGameID, bdlPlayerID).Scan(
		&stat.ID, &stat.BDLGameID, &stat.BDLPlayerID, &stat.PlayerName, &stat.Team, &stat.Minutes,
		&stat.Points, &stat.Rebounds, &stat.Assists, &stat.Steals, &stat.Blocks, &stat.Turnovers,
		&stat.ThreePointersMade, &stat.FieldGoalsMade, &stat.FieldGoalsAttempted,
		&stat.FreeThrowsMade, &stat.FreeThrowsAttempted, &stat.FetchedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("stats not found for game %d, player %d", bdlGameID, bdlPlayerID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying player stats: %w", err)
	}

	return stat, nil
}

// Upsert inserts or refreshes one cached boxscore row
func (r *StatsRepository) Upsert(ctx context.Context, stat *store.PlayerGameStat) error {
	query := `
		INSERT INTO player_game_stats (bdl_game_id, bdl_player_id, player_name, team, minutes,
			points, rebounds, assists, steals, blocks, turnovers, three_pointers_made,
			field_goals_made, field_goals_attempted, free_throws_made, free_throws_attempted,
			fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW())
		ON CONFLICT (bdl_game_id, bdl_player_id) DO UPDATE SET
			player_name = EXCLUDED.player_name,
			team = EXCLUDED.team,
			minutes = EXCLUDED.minutes,
			points = EXCLUDED.points,
			rebounds = EXCLUDED.rebounds,
			assists = EXCLUDED.assists,
			steals = EXCLUDED.steals,
			blocks = EXCLUDED.blocks,
			turnovers = EXCLUDED.turnovers,
			three_pointers_made = EXCLUDED.three_pointers_made,
			field_goals_made = EXCLUDED.field_goals_made,
			field_goals_attempted = EXCLUDED.field_goals_attempted,
			free_throws_made = EXCLUDED.free_throws_made,
			free_throws_attempted = EXCLUDED.free_throws_attempted,
			fetched_at = NOW()
		RETURNING id
	`

	err := r.db.DB().QueryRowContext(ctx, query,
		stat.BDLGameID, stat.BDLPlayerID, stat.PlayerName, stat.Team, stat.Minutes,
		stat.Points, stat.Rebounds, stat.Assists, stat.Steals, stat.Blocks, stat.Turnovers,
		stat.ThreePointersMade, stat.FieldGoalsMade, stat.FieldGoalsAttempted,
		stat.FreeThrowsMade, stat.FreeThrowsAttempted,
	).Scan(&stat.ID)

	if err != nil {
		return fmt.Errorf("upserting player stats: %w", err)
	}

	return nil
}

// CountForGame reports how many rows are cached for a game
func (r *StatsRepository) CountForGame(ctx context.Context, bdlGameID int64) (int, error) {
	var count int
	err := r.db.DB().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM player_game_stats WHERE bdl_game_id = $1", bdlGameID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting player stats: %w", err)
	}
	return count, nil
}

// scanStats scans multiple stat rows
func (r *StatsRepository) scanStats(rows *sql.Rows) ([]*store.PlayerGameStat, error) {
	var stats []*store.PlayerGameStat
	for rows.Next() {
		stat := &store.PlayerGameStat{}
		err := rows.Scan(
			&stat.ID, &stat.BDLGameID, &stat.BDLPlayerID, &stat.PlayerName, &stat.Team, &stat.Minutes,
			&stat.Points, &stat.Rebounds, &stat.Assists, &stat.Steals, &stat.Blocks, &stat.Turnovers,
			&stat.ThreePointersMade, &stat.FieldGoalsMade, &stat.FieldGoalsAttempted,
			&stat.FreeThrowsMade, &stat.FreeThrowsAttempted, &stat.FetchedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning player stats: %w", err)
		}
		stats = append(stats, stat)
	}

	return stats, rows.Err()
}
