package settlement

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/fortuna/augur/internal/sources/balldontlie"
	"github.com/fortuna/augur/internal/sources/espn"
	"github.com/fortuna/augur/internal/sources/nbastats"
	"github.com/fortuna/augur/internal/store"
)

// resolvePass memoizes upstream lookups for one Run. Several bets usually
// share a game, and several games share a date; each date hits BDL at
// most once per pass and each game's box score is fetched at most once.
type resolvePass struct {
	e         *Engine
	states    map[int64]GameState
	bdlDates  map[string][]balldontlie.Game
	espnDates map[string][]espn.Game
	stats     map[int64][]*store.PlayerGameStat
}

func newResolvePass(e *Engine) *resolvePass {
	return &resolvePass{
		e:         e,
		states:    make(map[int64]GameState),
		bdlDates:  make(map[string][]balldontlie.Game),
		espnDates: make(map[string][]espn.Game),
		stats:     make(map[int64][]*store.PlayerGameStat),
	}
}

// gameState resolves one leg's game. Order: the games table when it
// already holds a final score, then BDL by date, then the ESPN
// scoreboard. A final score that the two live sources disagree on
// returns errScoresDisagree so the bet is held for the next pass.
func (p *resolvePass) gameState(ctx context.Context, lv legView) (GameState, error) {
	gameID := lv.gameID.Int64
	if state, ok := p.states[gameID]; ok {
		return state, nil
	}

	var cached *store.Game
	if row, err := p.e.games.GetByBDLID(ctx, gameID); err == nil {
		cached = row
		state := stateFromRow(row)
		if Classify(state, p.e.now()) == StateFinal {
			p.states[gameID] = state
			return state, nil
		}
	}

	date := p.legDate(lv, cached)

	if games, err := p.bdlGames(ctx, date); err == nil {
		for _, g := range games {
			if g.ID != gameID {
				continue
			}
			state := stateFromBDL(g)
			if err := p.crossCheck(ctx, state, date); err != nil {
				return GameState{}, err
			}
			p.persistGame(ctx, state, date)
			p.states[gameID] = state
			return state, nil
		}
	} else {
		p.e.log.Warnf("⚠️ BDL games for %s: %v", date.Format("2006-01-02"), err)
	}

	// ESPN carries no BDL ids; matching needs the team pair from the
	// cached row
	if cached != nil && p.e.espn != nil {
		games, err := p.espnGames(ctx, date)
		if err != nil {
			return GameState{}, fmt.Errorf("game %d unavailable from BDL and ESPN: %w", gameID, err)
		}
		if g, ok := matchESPNGame(games, cached.HomeTeam, cached.AwayTeam); ok {
			state := stateFromESPN(g, gameID)
			p.states[gameID] = state
			return state, nil
		}
	}

	return GameState{}, fmt.Errorf("game %d not found in any source", gameID)
}

// crossCheck compares a final BDL score against ESPN when the pass has
// already pulled that day's scoreboard. It never triggers an ESPN fetch
// on its own.
func (p *resolvePass) crossCheck(ctx context.Context, state GameState, date time.Time) error {
	if p.e.espn == nil {
		return nil
	}
	games, ok := p.espnDates[dateKey(date)]
	if !ok {
		return nil
	}
	g, ok := matchESPNGame(games, state.HomeTeam, state.AwayTeam)
	if !ok {
		return nil
	}
	other := stateFromESPN(g, state.BDLGameID)
	if !ScoresAgree(state, other) {
		p.e.log.Warnf("⚠️ score mismatch for %s @ %s: BDL %d-%d, ESPN %d-%d",
			state.AwayTeam, state.HomeTeam,
			state.AwayScore, state.HomeScore, other.AwayScore, other.HomeScore)
		return fmt.Errorf("%s @ %s: %w", state.AwayTeam, state.HomeTeam, errScoresDisagree)
	}
	return nil
}

func (p *resolvePass) bdlGames(ctx context.Context, date time.Time) ([]balldontlie.Game, error) {
	key := dateKey(date)
	if games, ok := p.bdlDates[key]; ok {
		return games, nil
	}
	games, err := p.e.bdl.GamesByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	p.bdlDates[key] = games
	return games, nil
}

func (p *resolvePass) espnGames(ctx context.Context, date time.Time) ([]espn.Game, error) {
	key := dateKey(date)
	if games, ok := p.espnDates[key]; ok {
		return games, nil
	}
	games, err := p.e.espn.Scoreboard(ctx, date)
	if err != nil {
		return nil, err
	}
	p.espnDates[key] = games
	return games, nil
}

// statsForGame returns the box score rows for a final game, from the
// stats table when it holds rows fetched after the game could have
// ended, otherwise from BDL with a write-back.
func (p *resolvePass) statsForGame(ctx context.Context, state GameState) ([]*store.PlayerGameStat, error) {
	if rows, ok := p.stats[state.BDLGameID]; ok {
		return rows, nil
	}

	var cutoff time.Time
	if !state.Tipoff.IsZero() {
		cutoff = state.Tipoff.Add(estimatedDuration)
	}
	rows, err := p.e.stats.GetForGameSince(ctx, state.BDLGameID, cutoff)
	if err == nil && len(rows) > 0 {
		p.stats[state.BDLGameID] = rows
		return rows, nil
	}
	if err != nil {
		p.e.log.Warnf("⚠️ reading cached stats for game %d: %v", state.BDLGameID, err)
	}

	bdlStats, err := p.e.bdl.StatsByGame(ctx, state.BDLGameID)
	if err != nil {
		return nil, fmt.Errorf("fetching stats for game %d: %w", state.BDLGameID, err)
	}
	rows = make([]*store.PlayerGameStat, 0, len(bdlStats))
	fetchedAt := p.e.now()
	for _, s := range bdlStats {
		row := statFromBDL(s, state.BDLGameID, fetchedAt)
		if err := p.e.stats.Upsert(ctx, row); err != nil {
			p.e.log.Warnf("⚠️ caching stat line for %s: %v", row.PlayerName, err)
		}
		rows = append(rows, row)
	}
	p.stats[state.BDLGameID] = rows
	return rows, nil
}

func (p *resolvePass) persistGame(ctx context.Context, state GameState, date time.Time) {
	row := &store.Game{
		BDLGameID: sql.NullInt64{Int64: state.BDLGameID, Valid: true},
		HomeTeam:  state.HomeTeam,
		AwayTeam:  state.AwayTeam,
		HomeScore: sql.NullInt32{Int32: int32(state.HomeScore), Valid: true},
		AwayScore: sql.NullInt32{Int32: int32(state.AwayScore), Valid: true},
		Status:    state.Status,
		Period:    sql.NullInt32{Int32: int32(state.Period), Valid: true},
		Clock:     sql.NullString{String: state.Clock, Valid: state.Clock != ""},
		GameDate:  date,
		Source:    state.Source,
	}
	if !state.Tipoff.IsZero() {
		row.Tipoff = sql.NullTime{Time: state.Tipoff, Valid: true}
	}
	if err := p.e.games.Upsert(ctx, row); err != nil {
		p.e.log.Warnf("⚠️ caching game %d: %v", state.BDLGameID, err)
	}
}

// legDate picks the scoreboard date for a leg: the stored game date, then
// the tipoff converted to US Eastern (both live sources key their
// schedules on Eastern dates), then today.
func (p *resolvePass) legDate(lv legView, cached *store.Game) time.Time {
	if lv.gameDate.Valid {
		return lv.gameDate.Time
	}
	if cached != nil && !cached.GameDate.IsZero() {
		return cached.GameDate
	}
	if lv.tipoff.Valid {
		return lv.tipoff.Time.In(easternTime())
	}
	return p.e.now().In(easternTime())
}

func easternTime() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.UTC
	}
	return loc
}

func dateKey(date time.Time) string {
	return date.Format("2006-01-02")
}

func stateFromRow(row *store.Game) GameState {
	state := GameState{
		HomeTeam: nbastats.NormalizeAbbr(row.HomeTeam),
		AwayTeam: nbastats.NormalizeAbbr(row.AwayTeam),
		Status:   row.Status,
		Source:   row.Source,
	}
	if row.BDLGameID.Valid {
		state.BDLGameID = row.BDLGameID.Int64
	}
	if row.ESPNGameID.Valid {
		state.ESPNID = row.ESPNGameID.String
	}
	if row.HomeScore.Valid {
		state.HomeScore = int(row.HomeScore.Int32)
	}
	if row.AwayScore.Valid {
		state.AwayScore = int(row.AwayScore.Int32)
	}
	if row.Period.Valid {
		state.Period = int(row.Period.Int32)
	}
	if row.Clock.Valid {
		state.Clock = row.Clock.String
	}
	if row.Tipoff.Valid {
		state.Tipoff = row.Tipoff.Time
	}
	return state
}

func stateFromBDL(g balldontlie.Game) GameState {
	return GameState{
		BDLGameID: g.ID,
		HomeTeam:  nbastats.NormalizeAbbr(g.HomeTeam.Abbreviation),
		AwayTeam:  nbastats.NormalizeAbbr(g.VisitorTeam.Abbreviation),
		HomeScore: g.HomeTeamScore,
		AwayScore: g.VisitorTeamScore,
		Period:    g.Period,
		Clock:     g.Time,
		Status:    g.Status,
		Tipoff:    g.Tipoff(),
		Source:    store.SourceBallDontLie,
	}
}

func stateFromESPN(g espn.Game, bdlGameID int64) GameState {
	return GameState{
		BDLGameID: bdlGameID,
		ESPNID:    g.ESPNID,
		HomeTeam:  nbastats.NormalizeAbbr(g.HomeTeam),
		AwayTeam:  nbastats.NormalizeAbbr(g.AwayTeam),
		HomeScore: g.HomeScore,
		AwayScore: g.AwayScore,
		Period:    g.Period,
		Clock:     g.Clock,
		Status:    g.Status,
		Tipoff:    g.Tipoff,
		Source:    store.SourceESPN,
	}
}

func matchESPNGame(games []espn.Game, home, away string) (espn.Game, bool) {
	h, a := nbastats.NormalizeAbbr(home), nbastats.NormalizeAbbr(away)
	for _, g := range games {
		if nbastats.NormalizeAbbr(g.HomeTeam) == h && nbastats.NormalizeAbbr(g.AwayTeam) == a {
			return g, true
		}
	}
	return espn.Game{}, false
}

func statFromBDL(s balldontlie.Stat, gameID int64, fetchedAt time.Time) *store.PlayerGameStat {
	return &store.PlayerGameStat{
		BDLGameID:           gameID,
		BDLPlayerID:         s.Player.ID,
		PlayerName:          s.PlayerName(),
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
