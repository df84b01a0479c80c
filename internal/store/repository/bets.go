package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fortuna/augur/internal/store"
)

// BetRepository handles bet and parlay-leg data access
type BetRepository struct {
	db *store.Database
}

// NewBetRepository creates a new bet repository
func NewBetRepository(db *store.Database) *BetRepository {
	return &BetRepository{db: db}
}

const betColumns = `id, user_id, bet_type, player_name, team, stat_type, line, direction,
	odds, stake, status, result, actual_value, payout,
	bdl_game_id, game_date, tipoff, settled_at, created_at, updated_at`

// GetByID finds a bet by ID, legs included for parlays
func (r *BetRepository) GetByID(ctx context.Context, betID string) (*store.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE id = $1`

	bet := &store.Bet{}
	err := r.db.DB().QueryRowContext(ctx, query, betID).Scan(
		&bet.ID, &bet.UserID, &bet.BetType, &bet.PlayerName, &bet.Team, &bet.StatType,
		&bet.Line, &bet.Direction, &bet.Odds, &bet.Stake, &bet.Status, &bet.Result,
		&bet.ActualValue, &bet.Payout, &bet.BDLGameID, &bet.GameDate, &bet.Tipoff,
		&bet.SettledAt, &bet.CreatedAt, &bet.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("bet not found: %s", betID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying bet: %w", err)
	}

	if bet.BetType == store.BetTypeParlay {
		legs, err := r.GetLegs(ctx, bet.ID)
		if err != nil {
			return nil, err
		}
		bet.Legs = legs
	}

	return bet, nil
}

// GetOpen returns all bets that have not reached a terminal status,
// legs attached. These are the candidates for a settlement pass.
func (r *BetRepository) GetOpen(ctx context.Context) ([]*store.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE status != $1 ORDER BY created_at`

	rows, err := r.db.DB().QueryContext(ctx, query, store.BetStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("querying open bets: %w", err)
	}
	defer rows.Close()

	bets, err := r.scanBets(rows)
	if err != nil {
		return nil, err
	}

	for _, bet := range bets {
		if bet.BetType != store.BetTypeParlay {
			continue
		}
		legs, err := r.GetLegs(ctx, bet.ID)
		if err != nil {
			return nil, err
		}
		bet.Legs = legs
	}

	return bets, nil
}

// List returns bets filtered by status and/or user, newest first
func (r *BetRepository) List(ctx context.Context, status, userID string, limit int) ([]*store.Bet, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `SELECT ` + betColumns + ` FROM bets WHERE 1=1`
	args := []interface{}{}

	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if userID != "" {
		args = append(args, userID)
		query += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := r.db.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying bets: %w", err)
	}
	defer rows.Close()

	return r.scanBets(rows)
}

// GetLegs returns a parlay's legs in stored order
func (r *BetRepository) GetLegs(ctx context.Context, betID string) ([]*store.ParlayLeg, error) {
	query := `
		SELECT id, bet_id, leg_index, player_name, team, stat_type, line, direction,
			odds, bdl_game_id, game_date, tipoff, result, actual_value, created_at, updated_at
		FROM parlay_legs
		WHERE bet_id = $1
		ORDER BY leg_index
	`

	rows, err := r.db.DB().QueryContext(ctx, query, betID)
	if err != nil {
		return nil, fmt.Errorf("querying parlay legs: %w", err)
	}
	defer rows.Close()

	var legs []*store.ParlayLeg
	for rows.Next() {
		leg := &store.ParlayLeg{}
		err := rows.Scan(
			&leg.ID, &leg.BetID, &leg.LegIndex, &leg.PlayerName, &leg.Team, &leg.StatType,
			&leg.Line, &leg.Direction, &leg.Odds, &leg.BDLGameID, &leg.GameDate, &leg.Tipoff,
			&leg.Result, &leg.ActualValue, &leg.CreatedAt, &leg.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning parlay leg: %w", err)
		}
		legs = append(legs, leg)
	}

	return legs, rows.Err()
}

// UpdateResult records a non-terminal result change (pending -> live)
func (r *BetRepository) UpdateResult(ctx context.Context, betID, result string) error {
	query := `UPDATE bets SET result = $2, updated_at = NOW() WHERE id = $1`

	if _, err := r.db.DB().ExecContext(ctx, query, betID, result); err != nil {
		return fmt.Errorf("updating bet result: %w", err)
	}
	return nil
}

// Settle marks a bet completed with its final result, actual value and payout
func (r *BetRepository) Settle(ctx context.Context, betID, result string, actualValue, payout float64) error {
	query := `
		UPDATE bets
		SET status = $2, result = $3, actual_value = $4, payout = $5,
			settled_at = NOW(), updated_at = NOW()
		WHERE id = $1
	`

	if _, err := r.db.DB().ExecContext(ctx, query,
		betID, store.BetStatusCompleted, result, actualValue, payout); err != nil {
		return fmt.Errorf("settling bet: %w", err)
	}
	return nil
}

// UpdateLeg records a leg's evaluated result and actual value
func (r *BetRepository) UpdateLeg(ctx context.Context, legID, result string, actualValue sql.NullFloat64) error {
	query := `UPDATE parlay_legs SET result = $2, actual_value = $3, updated_at = NOW() WHERE id = $1`

	if _, err := r.db.DB().ExecContext(ctx, query, legID, result, actualValue); err != nil {
		return fmt.Errorf("updating parlay leg: %w", err)
	}
	return nil
}

// Insert creates a bet row (plus legs for parlays). The companion app owns
// bet creation in production; this exists for the smoke scripts and tests.
func (r *BetRepository) Insert(ctx context.Context, bet *store.Bet) error {
	if bet.ID == "" {
		bet.ID = uuid.NewString()
	}
	if bet.Status == "" {
		bet.Status = store.BetStatusActive
	}
	if bet.Result == "" {
		bet.Result = store.ResultPending
	}

	query := `
		INSERT INTO bets (id, user_id, bet_type, player_name, team, stat_type, line, direction,
			odds, stake, status, result, bdl_game_id, game_date, tipoff)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.DB().ExecContext(ctx, query,
		bet.ID, bet.UserID, bet.BetType, bet.PlayerName, bet.Team, bet.StatType,
		bet.Line, bet.Direction, bet.Odds, bet.Stake, bet.Status, bet.Result,
		bet.BDLGameID, bet.GameDate, bet.Tipoff,
	)
	if err != nil {
		return fmt.Errorf("inserting bet: %w", err)
	}

	for i, leg := range bet.Legs {
		if leg.ID == "" {
			leg.ID = uuid.NewString()
		}
		leg.BetID = bet.ID
		leg.LegIndex = i
		if leg.Result == "" {
			leg.Result = store.ResultPending
		}

		legQuery := `
			INSERT INTO parlay_legs (id, bet_id, leg_index, player_name, team, stat_type,
				line, direction, odds, bdl_game_id, game_date, tipoff, result)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`
		_, err := r.db.DB().ExecContext(ctx, legQuery,
			leg.ID, leg.BetID, leg.LegIndex, leg.PlayerName, leg.Team, leg.StatType,
			leg.Line, leg.Direction, leg.Odds, leg.BDLGameID, leg.GameDate, leg.Tipoff, leg.Result,
		)
		if err != nil {
			return fmt.Errorf("inserting parlay leg %d: %w", i, err)
		}
	}

	return nil
}

// CountOpenForDate reports how many open bets reference games on a date.
// The scheduler uses this to skip settlement passes with nothing to do.
func (r *BetRepository) CountOpenForDate(ctx context.Context, date time.Time) (int, error) {
	day := date.Truncate(24 * time.Hour)

	query := `
		SELECT COUNT(DISTINCT b.id)
		FROM bets b
		LEFT JOIN parlay_legs l ON l.bet_id = b.id
		WHERE b.status != $1
			AND (b.game_date = $2 OR l.game_date = $2 OR (b.game_date IS NULL AND l.game_date IS NULL))
	`

	var count int
	err := r.db.DB().QueryRowContext(ctx, query, store.BetStatusCompleted, day).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting open bets: %w", err)
	}
	return count, nil
}

// scanBets scans multiple bet rows
func (r *BetRepository) scanBets(rows *sql.Rows) ([]*store.Bet, error) {
	var bets []*store.Bet
	for rows.Next() {
		bet := &store.Bet{}
		err := rows.Scan(
			&bet.ID, &bet.UserID, &bet.BetType, &bet.PlayerName, &bet.Team, &bet.StatType,
			&bet.Line, &bet.Direction, &bet.Odds, &bet.Stake, &bet.Status, &bet.Result,
			&bet.ActualValue, &bet.Payout, &bet.BDLGameID, &bet.GameDate, &bet.Tipoff,
			&bet.SettledAt, &bet.CreatedAt, &bet.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning bet: %w", err)
		}
		bets = append(bets, bet)
	}

	return bets, rows.Err()
}
