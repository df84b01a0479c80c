package settlement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fortuna/augur/internal/sources/balldontlie"
	"github.com/fortuna/augur/internal/sources/espn"
	"github.com/fortuna/augur/internal/store"
)

// Storage and upstream surfaces the engine needs. Declared here so tests
// can fake them and callers can hand in the concrete repositories.
type betStore interface {
	GetOpen(ctx context.Context) ([]*store.Bet, error)
	UpdateResult(ctx context.Context, betID, result string) error
	Settle(ctx context.Context, betID, result string, actualValue, payout float64) error
	UpdateLeg(ctx context.Context, legID, result string, actualValue sql.NullFloat64) error
}

type gameStore interface {
	GetByBDLID(ctx context.Context, bdlGameID int64) (*store.Game, error)
	Upsert(ctx context.Context, game *store.Game) error
}

type statStore interface {
	GetForGameSince(ctx context.Context, bdlGameID int64, cutoff time.Time) ([]*store.PlayerGameStat, error)
	Upsert(ctx context.Context, stat *store.PlayerGameStat) error
}

type statsAPI interface {
	GamesByDate(ctx context.Context, date time.Time) ([]balldontlie.Game, error)
	StatsByGame(ctx context.Context, gameID int64) ([]balldontlie.Stat, error)
}

type scoreboardAPI interface {
	Scoreboard(ctx context.Context, date time.Time) ([]espn.Game, error)
}

// EventPublisher receives settled bets and live-result changes. Both
// methods are best-effort from the engine's point of view.
type EventPublisher interface {
	PublishSettlement(ctx context.Context, bet *store.Bet) error
	PublishUpdate(ctx context.Context, bet *store.Bet) error
}

// Summary reports one settlement pass.
type Summary struct {
	Checked int `json:"checked"`
	Settled int `json:"settled"`
	Live    int `json:"live"`
	Pending int `json:"pending"`
	Errors  int `json:"errors"`
}

var errScoresDisagree = errors.New("sources disagree on final score")

type outcome int

const (
	outcomePending outcome = iota
	outcomeLive
	outcomeSettled
)

// Engine settles open bets against final games. One Run is one pass; the
// scheduler drives it on a ticker and the REST layer exposes it behind
// the resolve endpoint.
type Engine struct {
	bets   betStore
	games  gameStore
	stats  statStore
	bdl    statsAPI
	espn   scoreboardAPI
	events EventPublisher
	log    *zap.SugaredLogger
	now    func() time.Time
}

// NewEngine wires the engine. espn and events may be nil; the engine then
// skips the fallback source and event publishing.
func NewEngine(bets betStore, games gameStore, stats statStore, bdl statsAPI, espnAPI scoreboardAPI, events EventPublisher, log *zap.SugaredLogger) *Engine {
	return &Engine{
		bets:   bets,
		games:  games,
		stats:  stats,
		bdl:    bdl,
		espn:   espnAPI,
		events: events,
		log:    log,
		now:    time.Now,
	}
}

// Run executes one settlement pass over every non-completed bet. Bad rows
// and upstream failures are isolated per bet; the pass always finishes.
func (e *Engine) Run(ctx context.Context) (*Summary, error) {
	bets, err := e.bets.GetOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading open bets: %w", err)
	}

	pass := newResolvePass(e)
	summary := &Summary{}
	for _, bet := range bets {
		summary.Checked++
		result, err := e.settleBet(ctx, pass, bet)
		if err != nil {
			if errors.Is(err, errScoresDisagree) {
				e.log.Warnf("⚠️ bet %s held: %v", bet.ID, err)
				summary.Pending++
				continue
			}
			e.log.Warnf("⚠️ bet %s: %v", bet.ID, err)
			summary.Errors++
			continue
		}
		switch result {
		case outcomeSettled:
			summary.Settled++
		case outcomeLive:
			summary.Live++
		default:
			summary.Pending++
		}
	}

	e.log.Infof("✓ settlement pass: %d checked, %d settled, %d live, %d pending, %d errors",
		summary.Checked, summary.Settled, summary.Live, summary.Pending, summary.Errors)
	return summary, nil
}

// legView flattens a single bet's prop fields and a parlay's legs into
// one shape.
type legView struct {
	leg        *store.ParlayLeg // nil for singles
	playerName string
	statType   string
	line       float64
	direction  string
	gameID     sql.NullInt64
	gameDate   sql.NullTime
	tipoff     sql.NullTime
}

func legViews(bet *store.Bet) ([]legView, error) {
	if bet.BetType == store.BetTypeParlay {
		if len(bet.Legs) == 0 {
			return nil, fmt.Errorf("parlay has no legs")
		}
		views := make([]legView, 0, len(bet.Legs))
		for _, leg := range bet.Legs {
			if err := leg.Validate(); err != nil {
				return nil, fmt.Errorf("invalid leg %s: %w", leg.ID, err)
			}
			views = append(views, legView{
				leg:        leg,
				playerName: leg.PlayerName,
				statType:   leg.StatType,
				line:       leg.Line,
				direction:  leg.Direction,
				gameID:     leg.BDLGameID,
				gameDate:   leg.GameDate,
				tipoff:     leg.Tipoff,
			})
		}
		return views, nil
	}

	if !bet.PlayerName.Valid || !bet.StatType.Valid || !bet.Line.Valid || !bet.Direction.Valid {
		return nil, fmt.Errorf("single bet missing prop fields")
	}
	return []legView{{
		playerName: bet.PlayerName.String,
		statType:   bet.StatType.String,
		line:       bet.Line.Float64,
		direction:  bet.Direction.String,
		gameID:     bet.BDLGameID,
		gameDate:   bet.GameDate,
		tipoff:     bet.Tipoff,
	}}, nil
}

func (e *Engine) settleBet(ctx context.Context, pass *resolvePass, bet *store.Bet) (outcome, error) {
	if err := bet.Validate(); err != nil {
		return outcomePending, fmt.Errorf("invalid row: %w", err)
	}

	legs, err := legViews(bet)
	if err != nil {
		return outcomePending, err
	}

	// Resolve every leg's game first; a bet settles as a unit
	states := make([]GameState, len(legs))
	sawInProgress, sawPreTip := false, false
	for i, lv := range legs {
		if !lv.gameID.Valid {
			return outcomePending, fmt.Errorf("leg %d has no game linkage", i)
		}
		state, err := pass.gameState(ctx, lv)
		if err != nil {
			return outcomePending, err
		}
		states[i] = state
		switch Classify(state, e.now()) {
		case StateInProgress:
			sawInProgress = true
		case StatePreTip:
			sawPreTip = true
		}
	}

	if sawInProgress {
		if bet.Result != store.ResultLive {
			if err := e.bets.UpdateResult(ctx, bet.ID, store.ResultLive); err != nil {
				return outcomePending, fmt.Errorf("marking live: %w", err)
			}
			bet.Result = store.ResultLive
			e.publishUpdate(ctx, bet)
		}
		return outcomeLive, nil
	}
	if sawPreTip {
		return outcomePending, nil
	}

	// All games final: evaluate
	results := make([]string, len(legs))
	actuals := make([]float64, len(legs))
	for i, lv := range legs {
		rows, err := pass.statsForGame(ctx, states[i])
		if err != nil {
			return outcomePending, err
		}
		row, ok := FindPlayerStat(rows, lv.playerName)
		if !ok {
			e.log.Warnf("⚠️ bet %s: no stat line for %q in game %d", bet.ID, lv.playerName, states[i].BDLGameID)
			results[i] = store.ResultPending
			continue
		}
		result, actual, err := EvaluateLeg(row, lv.statType, lv.line, lv.direction)
		if err != nil {
			return outcomePending, err
		}
		results[i] = result
		actuals[i] = actual
	}

	if bet.BetType == store.BetTypeParlay {
		return e.settleParlay(ctx, bet, legs, results, actuals)
	}
	return e.settleSingle(ctx, bet, results[0], actuals[0])
}

func (e *Engine) settleSingle(ctx context.Context, bet *store.Bet, result string, actual float64) (outcome, error) {
	if result == store.ResultPending {
		return outcomePending, nil
	}

	payout := Payout(result, bet.Stake, DecimalOdds(bet.Odds.Int32))
	if err := e.bets.Settle(ctx, bet.ID, result, actual, payout); err != nil {
		return outcomePending, fmt.Errorf("persisting settlement: %w", err)
	}

	bet.Status = store.BetStatusCompleted
	bet.Result = result
	bet.ActualValue = sql.NullFloat64{Float64: actual, Valid: true}
	bet.Payout = sql.NullFloat64{Float64: payout, Valid: true}
	e.publishSettlement(ctx, bet)
	e.log.Infof("✓ settled bet %s: %s, actual %.1f, payout %.2f", bet.ID, result, actual, payout)
	return outcomeSettled, nil
}

func (e *Engine) settleParlay(ctx context.Context, bet *store.Bet, legs []legView, results []string, actuals []float64) (outcome, error) {
	// Persist leg outcomes even when the parlay can't settle yet
	for i, lv := range legs {
		if lv.leg == nil || results[i] == store.ResultPending || lv.leg.Result == results[i] {
			continue
		}
		actual := sql.NullFloat64{Float64: actuals[i], Valid: true}
		if err := e.bets.UpdateLeg(ctx, lv.leg.ID, results[i], actual); err != nil {
			return outcomePending, fmt.Errorf("persisting leg %s: %w", lv.leg.ID, err)
		}
		lv.leg.Result = results[i]
		lv.leg.ActualValue = actual
	}

	combined := CombineLegResults(results)
	if combined == store.ResultPending {
		return outcomePending, nil
	}

	multiplier := ParlayMultiplier(bet.Legs)
	payout := Payout(combined, bet.Stake, multiplier)
	actual := AchievedMultiplier(combined, bet.Legs)
	if err := e.bets.Settle(ctx, bet.ID, combined, actual, payout); err != nil {
		return outcomePending, fmt.Errorf("persisting settlement: %w", err)
	}

	bet.Status = store.BetStatusCompleted
	bet.Result = combined
	bet.ActualValue = sql.NullFloat64{Float64: actual, Valid: true}
	bet.Payout = sql.NullFloat64{Float64: payout, Valid: true}
	e.publishSettlement(ctx, bet)
	e.log.Infof("✓ settled parlay %s: %s, multiplier %.4f, payout %.2f", bet.ID, combined, actual, payout)
	return outcomeSettled, nil
}

func (e *Engine) publishSettlement(ctx context.Context, bet *store.Bet) {
	if e.events == nil {
		return
	}
	if err := e.events.PublishSettlement(ctx, bet); err != nil {
		e.log.Warnf("⚠️ publishing settlement for bet %s: %v", bet.ID, err)
	}
	e.publishUpdate(ctx, bet)
}

func (e *Engine) publishUpdate(ctx context.Context, bet *store.Bet) {
	if e.events == nil {
		return
	}
	if err := e.events.PublishUpdate(ctx, bet); err != nil {
		e.log.Warnf("⚠️ publishing update for bet %s: %v", bet.ID, err)
	}
}
