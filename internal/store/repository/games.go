package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fortuna/augur/internal/store"
)

// GameRepository handles the cached third-party game records
type GameRepository struct {
	db *store.Database
}

// NewGameRepository creates a new game repository
func NewGameRepository(db *store.Database) *GameRepository {
	return &GameRepository{db: db}
}

const gameColumns = `game_id, bdl_game_id, espn_game_id, game_date, tipoff,
	home_team, away_team, home_score, away_score, period, clock, status, source,
	created_at, updated_at`

// GetByBDLID finds a cached game by its BallDontLie ID
func (r *GameRepository) GetByBDLID(ctx context.Context, bdlGameID int64) (*store.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE bdl_game_id = $1`

	game := &store.Game{}
	err := r.db.DB().QueryRowContext(ctx, query, bdlGameID).Scan(
		&game.GameID, &game.BDLGameID, &game.ESPNGameID, &game.GameDate, &game.Tipoff,
		&game.HomeTeam, &game.AwayTeam, &game.HomeScore, &game.AwayScore,
		&game.Period, &game.Clock, &game.Status, &game.Source,
		&game.CreatedAt, &game.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("game not found: %d", bdlGameID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying game: %w", err)
	}

	return game, nil
}

// GetByDate returns all cached games on a specific date
func (r *GameRepository) GetByDate(ctx context.Context, date time.Time) ([]*store.Game, error) {
	day := date.Truncate(24 * time.Hour)

	query := `SELECT ` + gameColumns + ` FROM games WHERE game_date = $1 ORDER BY tipoff`

	rows, err := r.db.DB().QueryContext(ctx, query, day)
	if err != nil {
		return nil, fmt.Errorf("querying games: %w", err)
	}
	defer rows.Close()

	return r.scanGames(rows)
}

// Upsert inserts or updates a game record keyed by its BDL ID
func (r *GameRepository) Upsert(ctx context.Context, game *store.Game) error {
	if !game.BDLGameID.Valid {
		return r.upsertByESPN(ctx, game)
	}

	query := `
		INSERT INTO games (bdl_game_id, espn_game_id, game_date, tipoff,
			home_team, away_team, home_score, away_score, period, clock, status, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (bdl_game_id) DO UPDATE SET
			espn_game_id = COALESCE(EXCLUDED.espn_game_id, games.espn_game_id),
			tipoff = COALESCE(EXCLUDED.tipoff, games.tipoff),
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			period = EXCLUDED.period,
			clock = EXCLUDED.clock,
			status = EXCLUDED.status,
			source = EXCLUDED.source,
			updated_at = NOW()
		RETURNING game_id
	`

	err := r.db.DB().QueryRowContext(ctx, query,
		game.BDLGameID, game.ESPNGameID, game.GameDate, game.Tipoff,
		game.HomeTeam, game.AwayTeam, game.HomeScore, game.AwayScore,
		game.Period, game.Clock, game.Status, game.Source,
	).Scan(&game.GameID)

	if err != nil {
		return fmt.Errorf("upserting game: %w", err)
	}

	return nil
}

// upsertByESPN covers ESPN-only rows that have no BDL ID to key on
func (r *GameRepository) upsertByESPN(ctx context.Context, game *store.Game) error {
	if !game.ESPNGameID.Valid {
		return fmt.Errorf("game has neither bdl_game_id nor espn_game_id")
	}

	query := `
		INSERT INTO games (bdl_game_id, espn_game_id, game_date, tipoff,
			home_team, away_team, home_score, away_score, period, clock, status, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (espn_game_id) WHERE espn_game_id IS NOT NULL DO UPDATE SET
			tipoff = COALESCE(EXCLUDED.tipoff, games.tipoff),
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			period = EXCLUDED.period,
			clock = EXCLUDED.clock,
			status = EXCLUDED.status,
			source = EXCLUDED.source,
			updated_at = NOW()
		RETURNING game_id
	`

	err := r.db.DB().QueryRowContext(ctx, query,
		game.BDLGameID, game.ESPNGameID, game.GameDate, game.Tipoff,
		game.HomeTeam, game.AwayTeam, game.HomeScore, game.AwayScore,
		game.Period, game.Clock, game.Status, game.Source,
	).Scan(&game.GameID)

	if err != nil {
		return fmt.Errorf("upserting espn game: %w", err)
	}

	return nil
}

// CleanupStale marks games that tipped off more than 6 hours ago and
// still read as in progress as final. NBA games run about 2.5 hours;
// anything stuck past 6 is a missed status update upstream.
func (r *GameRepository) CleanupStale(ctx context.Context) (int64, error) {
	staleThreshold := time.Now().Add(-6 * time.Hour)

	query := `
		UPDATE games
		SET status = 'Final', updated_at = NOW()
		WHERE LOWER(status) NOT LIKE '%final%'
			AND tipoff IS NOT NULL
			AND tipoff < $1
	`

	result, err := r.db.DB().ExecContext(ctx, query, staleThreshold)
	if err != nil {
		return 0, fmt.Errorf("cleaning up stale games: %w", err)
	}

	return result.RowsAffected()
}

// scanGames scans multiple game rows
func (r *GameRepository) scanGames(rows *sql.Rows) ([]*store.Game, error) {
	var games []*store.Game
	for rows.Next() {
		game := &store.Game{}
		err := rows.Scan(
			&game.GameID, &game.BDLGameID, &game.ESPNGameID, &game.GameDate, &game.Tipoff,
			&game.HomeTeam, &game.AwayTeam, &game.HomeScore, &game.AwayScore,
			&game.Period, &game.Clock, &game.Status, &game.Source,
			&game.CreatedAt, &game.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning game: %w", err)
		}
		games = append(games, game)
	}

	return games, rows.Err()
}
