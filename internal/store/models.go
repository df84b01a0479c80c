package store

import (
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Bet statuses. A bet is terminal once completed.
const (
	BetStatusActive    = "active"
	BetStatusCompleted = "completed"
)

// Bet results.
const (
	ResultPending = "pending"
	ResultLive    = "live"
	ResultWin     = "win"
	ResultLoss    = "loss"
	ResultVoid    = "void"
)

// Bet types.
const (
	BetTypeSingle = "single"
	BetTypeParlay = "parlay"
)

// Over/under directions.
const (
	DirectionOver  = "over"
	DirectionUnder = "under"
)

// Bet is a sportsbook wager row. Rows are created by the companion app;
// this service only reads them and mutates status/result/actual_value/payout
// when the underlying games go final.
type Bet struct {
	ID          string          `json:"id" db:"id"`
	UserID      string          `json:"user_id" db:"user_id" validate:"required"`
	BetType     string          `json:"bet_type" db:"bet_type" validate:"required,oneof=single parlay"`
	PlayerName  sql.NullString  `json:"player_name,omitempty" db:"player_name"`
	Team        sql.NullString  `json:"team,omitempty" db:"team"`
	StatType    sql.NullString  `json:"stat_type,omitempty" db:"stat_type"`
	Line        sql.NullFloat64 `json:"line,omitempty" db:"line"`
	Direction   sql.NullString  `json:"direction,omitempty" db:"direction"`
	Odds        sql.NullInt32   `json:"odds,omitempty" db:"odds"`
	Stake       float64         `json:"stake" db:"stake" validate:"gte=0"`
	Status      string          `json:"status" db:"status" validate:"required,oneof=active completed"`
	Result      string          `json:"result" db:"result" validate:"required,oneof=pending live win loss void"`
	ActualValue sql.NullFloat64 `json:"actual_value,omitempty" db:"actual_value"`
	Payout      sql.NullFloat64 `json:"payout,omitempty" db:"payout"`
	BDLGameID   sql.NullInt64   `json:"bdl_game_id,omitempty" db:"bdl_game_id"`
	GameDate    sql.NullTime    `json:"game_date,omitempty" db:"game_date"`
	Tipoff      sql.NullTime    `json:"tipoff,omitempty" db:"tipoff"`
	SettledAt   sql.NullTime    `json:"settled_at,omitempty" db:"settled_at"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`

	// Populated from parlay_legs for parlay bets.
	Legs []*ParlayLeg `json:"legs,omitempty" db:"-"`
}

// Validate checks a bet row before the settlement engine trusts it.
// The table is written by an external app, so structure is advisory.
func (b *Bet) Validate() error {
	return validate.Struct(b)
}

// ParlayLeg is one constituent wager within a parlay bet.
type ParlayLeg struct {
	ID          string          `json:"id" db:"id"`
	BetID       string          `json:"bet_id" db:"bet_id" validate:"required"`
	LegIndex    int             `json:"leg_index" db:"leg_index"`
	PlayerName  string          `json:"player_name" db:"player_name" validate:"required"`
	Team        sql.NullString  `json:"team,omitempty" db:"team"`
	StatType    string          `json:"stat_type" db:"stat_type" validate:"required"`
	Line        float64         `json:"line" db:"line" validate:"gte=0"`
	Direction   string          `json:"direction" db:"direction" validate:"required,oneof=over under"`
	Odds        sql.NullInt32   `json:"odds,omitempty" db:"odds"`
	BDLGameID   sql.NullInt64   `json:"bdl_game_id,omitempty" db:"bdl_game_id"`
	GameDate    sql.NullTime    `json:"game_date,omitempty" db:"game_date"`
	Tipoff      sql.NullTime    `json:"tipoff,omitempty" db:"tipoff"`
	Result      string          `json:"result" db:"result" validate:"required,oneof=pending live win loss void"`
	ActualValue sql.NullFloat64 `json:"actual_value,omitempty" db:"actual_value"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// Validate checks a leg row before evaluation.
func (l *ParlayLeg) Validate() error {
	return validate.Struct(l)
}

// Game record sources.
const (
	SourceBallDontLie = "balldontlie"
	SourceESPN        = "espn"
)

// Game is a cached third-party schedule/result record. Upstream is the
// source of truth; rows here just let the resolver and slate endpoints
// reuse recent fetches.
type Game struct {
	GameID     int            `json:"game_id" db:"game_id"`
	BDLGameID  sql.NullInt64  `json:"bdl_game_id,omitempty" db:"bdl_game_id"`
	ESPNGameID sql.NullString `json:"espn_game_id,omitempty" db:"espn_game_id"`
	GameDate   time.Time      `json:"game_date" db:"game_date"`
	Tipoff     sql.NullTime   `json:"tipoff,omitempty" db:"tipoff"`
	HomeTeam   string         `json:"home_team" db:"home_team"`
	AwayTeam   string         `json:"away_team" db:"away_team"`
	HomeScore  sql.NullInt32  `json:"home_score,omitempty" db:"home_score"`
	AwayScore  sql.NullInt32  `json:"away_score,omitempty" db:"away_score"`
	Period     sql.NullInt32  `json:"period,omitempty" db:"period"`
	Clock      sql.NullString `json:"clock,omitempty" db:"clock"`
	Status     string         `json:"status" db:"status"`
	Source     string         `json:"source" db:"source"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at" db:"updated_at"`
}

// PlayerGameStat is a cached per-player boxscore row, keyed upstream:
// (bdl_game_id, bdl_player_id).
type PlayerGameStat struct {
	ID                  int            `json:"id" db:"id"`
	BDLGameID           int64          `json:"bdl_game_id" db:"bdl_game_id"`
	BDLPlayerID         int64          `json:"bdl_player_id" db:"bdl_player_id"`
	PlayerName          string         `json:"player_name" db:"player_name"`
	Team                sql.NullString `json:"team,omitempty" db:"team"`
	Minutes             sql.NullString `json:"minutes,omitempty" db:"minutes"`
	Points              int            `json:"points" db:"points"`
	Rebounds            int            `json:"rebounds" db:"rebounds"`
	Assists             int            `json:"assists" db:"assists"`
	Steals              int            `json:"steals" db:"steals"`
	Blocks              int            `json:"blocks" db:"blocks"`
	Turnovers           int            `json:"turnovers" db:"turnovers"`
	ThreePointersMade   int            `json:"three_pointers_made" db:"three_pointers_made"`
	FieldGoalsMade      int            `json:"field_goals_made" db:"field_goals_made"`
	FieldGoalsAttempted int            `json:"field_goals_attempted" db:"field_goals_attempted"`
	FreeThrowsMade      int            `json:"free_throws_made" db:"free_throws_made"`
	FreeThrowsAttempted int            `json:"free_throws_attempted" db:"free_throws_attempted"`
	FetchedAt           time.Time      `json:"fetched_at" db:"fetched_at"`
}

// Backfill job statuses.
const (
	JobStatusQueued    = "queued"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
	JobStatusCancelled = "cancelled"
)

// BackfillJob tracks one historical stat-ingestion run.
type BackfillJob struct {
	ID             string         `json:"id" db:"id"`
	StartDate      time.Time      `json:"start_date" db:"start_date"`
	EndDate        time.Time      `json:"end_date" db:"end_date"`
	Status         string         `json:"status" db:"status"`
	GamesProcessed int            `json:"games_processed" db:"games_processed"`
	StatsUpserted  int            `json:"stats_upserted" db:"stats_upserted"`
	LastError      sql.NullString `json:"last_error,omitempty" db:"last_error"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	StartedAt      sql.NullTime   `json:"started_at,omitempty" db:"started_at"`
	CompletedAt    sql.NullTime   `json:"completed_at,omitempty" db:"completed_at"`
}
