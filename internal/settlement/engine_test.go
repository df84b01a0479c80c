package settlement

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/fortuna/augur/internal/sources/balldontlie"
	"github.com/fortuna/augur/internal/sources/espn"
	"github.com/fortuna/augur/internal/store"
)

var (
	testNow  = time.Date(2026, 1, 16, 4, 0, 0, 0, time.UTC)
	testDate = time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
)

type settledBet struct {
	result string
	actual float64
	payout float64
}

type fakeBets struct {
	open    []*store.Bet
	settled map[string]settledBet
	results map[string]string
	legs    map[string]settledBet
}

func newFakeBets(open ...*store.Bet) *fakeBets {
	return &fakeBets{
		open:    open,
		settled: make(map[string]settledBet),
		results: make(map[string]string),
		legs:    make(map[string]settledBet),
	}
}

func (f *fakeBets) GetOpen(ctx context.Context) ([]*store.Bet, error) { return f.open, nil }

func (f *fakeBets) UpdateResult(ctx context.Context, betID, result string) error {
	f.results[betID] = result
	return nil
}

func (f *fakeBets) Settle(ctx context.Context, betID, result string, actualValue, payout float64) error {
	f.settled[betID] = settledBet{result: result, actual: actualValue, payout: payout}
	return nil
}

func (f *fakeBets) UpdateLeg(ctx context.Context, legID, result string, actualValue sql.NullFloat64) error {
	f.legs[legID] = settledBet{result: result, actual: actualValue.Float64}
	return nil
}

type fakeGames struct {
	rows    map[int64]*store.Game
	upserts int
}

func (f *fakeGames) GetByBDLID(ctx context.Context, bdlGameID int64) (*store.Game, error) {
	if row, ok := f.rows[bdlGameID]; ok {
		return row, nil
	}
	return nil, errors.New("game not found")
}

func (f *fakeGames) Upsert(ctx context.Context, game *store.Game) error {
	f.upserts++
	return nil
}

type fakeStats struct {
	rows    map[int64][]*store.PlayerGameStat
	upserts int
}

func (f *fakeStats) GetForGameSince(ctx context.Context, bdlGameID int64, cutoff time.Time) ([]*store.PlayerGameStat, error) {
	var out []*store.PlayerGameStat
	for _, row := range f.rows[bdlGameID] {
		if !row.FetchedAt.Before(cutoff) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeStats) Upsert(ctx context.Context, stat *store.PlayerGameStat) error {
	f.upserts++
	return nil
}

type fakeBDL struct {
	games      map[string][]balldontlie.Game
	stats      map[int64][]balldontlie.Stat
	gamesCalls int
	statsCalls int
	statsErr   error
}

func (f *fakeBDL) GamesByDate(ctx context.Context, date time.Time) ([]balldontlie.Game, error) {
	f.gamesCalls++
	return f.games[date.Format("2006-01-02")], nil
}

func (f *fakeBDL) StatsByGame(ctx context.Context, gameID int64) ([]balldontlie.Stat, error) {
	f.statsCalls++
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	return f.stats[gameID], nil
}

type fakeScoreboard struct {
	games []espn.Game
	calls int
}

func (f *fakeScoreboard) Scoreboard(ctx context.Context, date time.Time) ([]espn.Game, error) {
	f.calls++
	return f.games, nil
}

type fakePublisher struct {
	settlements []string
	updates     []string
}

func (f *fakePublisher) PublishSettlement(ctx context.Context, bet *store.Bet) error {
	f.settlements = append(f.settlements, bet.ID)
	return nil
}

func (f *fakePublisher) PublishUpdate(ctx context.Context, bet *store.Bet) error {
	f.updates = append(f.updates, bet.ID)
	return nil
}

func newTestEngine(bets *fakeBets, games *fakeGames, stats *fakeStats, bdl *fakeBDL, sb *fakeScoreboard, pub *fakePublisher) *Engine {
	var sbi scoreboardAPI
	if sb != nil {
		sbi = sb
	}
	var pi EventPublisher
	if pub != nil {
		pi = pub
	}
	e := NewEngine(bets, games, stats, bdl, sbi, pi, zap.NewNop().Sugar())
	e.now = func() time.Time { return testNow }
	return e
}

func singleBet(id string, gameID int64, player, statType string, line float64, direction string, odds int32, stake float64) *store.Bet {
	return &store.Bet{
		ID:         id,
		UserID:     "u1",
		BetType:    store.BetTypeSingle,
		PlayerName: sql.NullString{String: player, Valid: true},
		StatType:   sql.NullString{String: statType, Valid: true},
		Line:       sql.NullFloat64{Float64: line, Valid: true},
		Direction:  sql.NullString{String: direction, Valid: true},
		Odds:       sql.NullInt32{Int32: odds, Valid: odds != 0},
		Stake:      stake,
		Status:     store.BetStatusActive,
		Result:     store.ResultPending,
		BDLGameID:  sql.NullInt64{Int64: gameID, Valid: true},
		GameDate:   sql.NullTime{Time: testDate, Valid: true},
	}
}

func parlayLeg(id string, gameID int64, player, statType string, line float64, direction string, odds int32) *store.ParlayLeg {
	return &store.ParlayLeg{
		ID:         id,
		BetID:      "parlay1",
		PlayerName: player,
		StatType:   statType,
		Line:       line,
		Direction:  direction,
		Odds:       sql.NullInt32{Int32: odds, Valid: odds != 0},
		BDLGameID:  sql.NullInt64{Int64: gameID, Valid: true},
		GameDate:   sql.NullTime{Time: testDate, Valid: true},
		Result:     store.ResultPending,
	}
}

func bdlGame(id int64, home, away, status string, period, homeScore, awayScore int) balldontlie.Game {
	return balldontlie.Game{
		ID:               id,
		Status:           status,
		Period:           period,
		HomeTeamScore:    homeScore,
		VisitorTeamScore: awayScore,
		HomeTeam:         balldontlie.Team{Abbreviation: home},
		VisitorTeam:      balldontlie.Team{Abbreviation: away},
	}
}

func bdlStat(playerID int64, first, last, team, min string, pts, reb, ast int) balldontlie.Stat {
	return balldontlie.Stat{
		Min:      min,
		Points:   pts,
		Rebounds: reb,
		Assists:  ast,
		Player:   balldontlie.Player{ID: playerID, FirstName: first, LastName: last},
		Team:     balldontlie.Team{Abbreviation: team},
	}
}

func TestRunSettlesSingleOnFinalGame(t *testing.T) {
	bets := newFakeBets(singleBet("bet1", 101, "Stephen Curry", "pts", 25.5, "over", -110, 100))
	games := &fakeGames{rows: map[int64]*store.Game{}}
	stats := &fakeStats{rows: map[int64][]*store.PlayerGameStat{}}
	bdl := &fakeBDL{
		games: map[string][]balldontlie.Game{
			"2026-01-15": {bdlGame(101, "GSW", "LAL", "Final", 4, 120, 110)},
		},
		stats: map[int64][]balldontlie.Stat{
			101: {bdlStat(1, "Stephen", "Curry", "GSW", "36:24", 30, 5, 8)},
		},
	}
	pub := &fakePublisher{}

	engine := newTestEngine(bets, games, stats, bdl, nil, pub)
	summary, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if summary.Checked != 1 || summary.Settled != 1 {
		t.Fatalf("summary = %+v, want 1 checked 1 settled", summary)
	}
	got, ok := bets.settled["bet1"]
	if !ok {
		t.Fatal("bet1 was not settled")
	}
	if got.result != store.ResultWin {
		t.Errorf("result = %q, want win", got.result)
	}
	if got.actual != 30 {
		t.Errorf("actual = %v, want 30", got.actual)
	}
	if math.Abs(got.payout-190.91) > 1e-9 {
		t.Errorf("payout = %v, want 190.91", got.payout)
	}
	if games.upserts != 1 {
		t.Errorf("game upserts = %d, want 1", games.upserts)
	}
	if stats.upserts != 1 {
		t.Errorf("stat upserts = %d, want 1", stats.upserts)
	}
	if len(pub.settlements) != 1 || pub.settlements[0] != "bet1" {
		t.Errorf("settlement events = %v, want [bet1]", pub.settlements)
	}
}

func TestRunMarksLiveWhileInProgress(t *testing.T) {
	bets := newFakeBets(singleBet("bet1", 101, "Stephen Curry", "pts", 25.5, "over", -110, 100))
	games := &fakeGames{rows: map[int64]*store.Game{}}
	stats := &fakeStats{rows: map[int64][]*store.PlayerGameStat{}}
	bdl := &fakeBDL{
		games: map[string][]balldontlie.Game{
			"2026-01-15": {bdlGame(101, "GSW", "LAL", "3rd Qtr", 3, 78, 72)},
		},
	}
	pub := &fakePublisher{}

	engine := newTestEngine(bets, games, stats, bdl, nil, pub)
	summary, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if summary.Live != 1 || summary.Settled != 0 {
		t.Fatalf("summary = %+v, want 1 live", summary)
	}
	if bets.results["bet1"] != store.ResultLive {
		t.Errorf("bet1 result = %q, want live", bets.results["bet1"])
	}
	if len(pub.updates) != 1 {
		t.Errorf("update events = %v, want one", pub.updates)
	}
	if len(bets.settled) != 0 {
		t.Error("live bet must not settle")
	}
}

func TestRunLeavesAlreadyLiveBetAlone(t *testing.T) {
	bet := singleBet("bet1", 101, "Stephen Curry", "pts", 25.5, "over", -110, 100)
	bet.Result = store.ResultLive
	bets := newFakeBets(bet)
	bdl := &fakeBDL{
		games: map[string][]balldontlie.Game{
			"2026-01-15": {bdlGame(101, "GSW", "LAL", "3rd Qtr", 3, 78, 72)},
		},
	}

	engine := newTestEngine(bets, &fakeGames{rows: map[int64]*store.Game{}}, &fakeStats{}, bdl, nil, nil)
	if _, err := engine.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(bets.results) != 0 {
		t.Errorf("unexpected result updates: %v", bets.results)
	}
}

func TestRunHoldsParlayUntilAllGamesFinal(t *testing.T) {
	// Leg one's game is final and the leg would lose; leg two hasn't
	// tipped. The bet must stay pending with no leg written.
	bet := &store.Bet{
		ID:      "parlay1",
		UserID:  "u1",
		BetType: store.BetTypeParlay,
		Stake:   20,
		Status:  store.BetStatusActive,
		Result:  store.ResultPending,
		Legs: []*store.ParlayLeg{
			parlayLeg("leg1", 101, "Stephen Curry", "pts", 40.5, "over", -110),
			parlayLeg("leg2", 202, "Luka Dončić", "ast", 8.5, "over", -120),
		},
	}
	bets := newFakeBets(bet)
	bdl := &fakeBDL{
		games: map[string][]balldontlie.Game{
			"2026-01-15": {
				bdlGame(101, "GSW", "LAL", "Final", 4, 120, 110),
				{
					ID:       202,
					Status:   "2026-01-16T19:00:00-05:00",
					HomeTeam: balldontlie.Team{Abbreviation: "DAL"},
					VisitorTeam: balldontlie.Team{
						Abbreviation: "PHX",
					},
				},
			},
		},
		stats: map[int64][]balldontlie.Stat{
			101: {bdlStat(1, "Stephen", "Curry", "GSW", "36:24", 30, 5, 8)},
		},
	}

	engine := newTestEngine(bets, &fakeGames{rows: map[int64]*store.Game{}}, &fakeStats{rows: map[int64][]*store.PlayerGameStat{}}, bdl, nil, nil)
	summary, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if summary.Pending != 1 {
		t.Fatalf("summary = %+v, want 1 pending", summary)
	}
	if len(bets.settled) != 0 || len(bets.legs) != 0 {
		t.Error("nothing may persist while a leg's game is unplayed")
	}
	if bdl.gamesCalls != 1 {
		t.Errorf("games calls = %d, want 1 (same date shared)", bdl.gamesCalls)
	}
}

func TestRunSettlesParlayWithVoidLeg(t *testing.T) {
	bet := &store.Bet{
		ID:      "parlay1",
		UserID:  "u1",
		BetType: store.BetTypeParlay,
		Stake:   20,
		Status:  store.BetStatusActive,
		Result:  store.ResultPending,
		Legs: []*store.ParlayLeg{
			parlayLeg("leg1", 101, "Stephen Curry", "pts", 25.5, "over", 150),
			parlayLeg("leg2", 101, "Gary Payton II", "reb", 3.5, "over", -110),
		},
	}
	bets := newFakeBets(bet)
	bdl := &fakeBDL{
		games: map[string][]balldontlie.Game{
			"2026-01-15": {bdlGame(101, "GSW", "LAL", "Final", 4, 120, 110)},
		},
		stats: map[int64][]balldontlie.Stat{
			101: {
				bdlStat(1, "Stephen", "Curry", "GSW", "36:24", 30, 5, 8),
				bdlStat(2, "Gary", "Payton II", "GSW", "0:00", 0, 0, 0),
			},
		},
	}
	pub := &fakePublisher{}

	engine := newTestEngine(bets, &fakeGames{rows: map[int64]*store.Game{}}, &fakeStats{rows: map[int64][]*store.PlayerGameStat{}}, bdl, nil, pub)
	summary, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if summary.Settled != 1 {
		t.Fatalf("summary = %+v, want 1 settled", summary)
	}
	if got := bets.legs["leg1"]; got.result != store.ResultWin || got.actual != 30 {
		t.Errorf("leg1 = %+v, want win/30", got)
	}
	if got := bets.legs["leg2"]; got.result != store.ResultVoid {
		t.Errorf("leg2 = %+v, want void", got)
	}

	got := bets.settled["parlay1"]
	if got.result != store.ResultWin {
		t.Errorf("parlay result = %q, want win", got.result)
	}
	// Void leg drops out: multiplier is just the +150 leg
	if got.actual != 2.5 {
		t.Errorf("achieved multiplier = %v, want 2.5", got.actual)
	}
	if got.payout != 50 {
		t.Errorf("payout = %v, want 50", got.payout)
	}
	if bdl.statsCalls != 1 {
		t.Errorf("stats calls = %d, want 1 (both legs share the game)", bdl.statsCalls)
	}
}

func TestRunVoidsSubMinuteSingle(t *testing.T) {
	bets := newFakeBets(singleBet("bet1", 101, "Gary Payton II", "pts", 4.5, "over", -110, 25))
	bdl := &fakeBDL{
		games: map[string][]balldontlie.Game{
			"2026-01-15": {bdlGame(101, "GSW", "LAL", "Final", 4, 120, 110)},
		},
		stats: map[int64][]balldontlie.Stat{
			101: {bdlStat(2, "Gary", "Payton II", "GSW", "0:00", 0, 0, 0)},
		},
	}

	engine := newTestEngine(bets, &fakeGames{rows: map[int64]*store.Game{}}, &fakeStats{rows: map[int64][]*store.PlayerGameStat{}}, bdl, nil, nil)
	if _, err := engine.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	got := bets.settled["bet1"]
	if got.result != store.ResultVoid {
		t.Errorf("result = %q, want void", got.result)
	}
	if got.payout != 25 {
		t.Errorf("payout = %v, want stake refunded", got.payout)
	}
}

func TestRunUsesCachedFinalGameAndStats(t *testing.T) {
	tipoff := time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC)
	games := &fakeGames{rows: map[int64]*store.Game{
		101: {
			BDLGameID: sql.NullInt64{Int64: 101, Valid: true},
			HomeTeam:  "GSW",
			AwayTeam:  "LAL",
			HomeScore: sql.NullInt32{Int32: 120, Valid: true},
			AwayScore: sql.NullInt32{Int32: 110, Valid: true},
			Status:    "Final",
			GameDate:  testDate,
			Tipoff:    sql.NullTime{Time: tipoff, Valid: true},
			Source:    store.SourceBallDontLie,
		},
	}}
	cached := statLine("Stephen Curry", "36:24", 30, 5, 8)
	cached.BDLGameID = 101
	cached.FetchedAt = tipoff.Add(3 * time.Hour)
	stats := &fakeStats{rows: map[int64][]*store.PlayerGameStat{101: {cached}}}
	bets := newFakeBets(singleBet("bet1", 101, "Stephen Curry", "pts", 25.5, "over", -110, 100))
	bdl := &fakeBDL{}

	engine := newTestEngine(bets, games, stats, bdl, nil, nil)
	summary, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if summary.Settled != 1 {
		t.Fatalf("summary = %+v, want 1 settled", summary)
	}
	if bdl.gamesCalls != 0 || bdl.statsCalls != 0 {
		t.Errorf("upstream calls = %d/%d, want none", bdl.gamesCalls, bdl.statsCalls)
	}
}

func TestRunHoldsBetWhenSourcesDisagree(t *testing.T) {
	// Bet one's game is missing from BDL, forcing the ESPN scoreboard
	// fetch. Bet two's game is final on BDL but ESPN saw a different
	// score, so it must be held for the next pass.
	bet1 := singleBet("bet1", 101, "Jayson Tatum", "pts", 29.5, "over", -110, 50)
	bet2 := singleBet("bet2", 102, "Stephen Curry", "pts", 25.5, "over", -110, 50)
	bets := newFakeBets(bet1, bet2)

	games := &fakeGames{rows: map[int64]*store.Game{
		101: {
			BDLGameID: sql.NullInt64{Int64: 101, Valid: true},
			HomeTeam:  "MIA",
			AwayTeam:  "BOS",
			Status:    "scheduled",
			GameDate:  testDate,
		},
	}}
	bdl := &fakeBDL{
		games: map[string][]balldontlie.Game{
			"2026-01-15": {bdlGame(102, "GSW", "LAL", "Final", 4, 120, 110)},
		},
		stats: map[int64][]balldontlie.Stat{
			102: {bdlStat(1, "Stephen", "Curry", "GSW", "36:24", 30, 5, 8)},
		},
	}
	sb := &fakeScoreboard{games: []espn.Game{
		{
			ESPNID: "401", HomeTeam: "MIA", AwayTeam: "BOS",
			HomeScore: 60, AwayScore: 55, Period: 3, Clock: "5:12",
			Status: espn.StatusInProgress, Tipoff: testNow.Add(-90 * time.Minute),
		},
		{
			ESPNID: "402", HomeTeam: "GSW", AwayTeam: "LAL",
			HomeScore: 118, AwayScore: 110, Period: 4,
			Status: espn.StatusFinal,
		},
	}}

	engine := newTestEngine(bets, games, &fakeStats{rows: map[int64][]*store.PlayerGameStat{}}, bdl, sb, nil)
	summary, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if summary.Live != 1 || summary.Pending != 1 || summary.Errors != 0 {
		t.Fatalf("summary = %+v, want 1 live 1 pending", summary)
	}
	if len(bets.settled) != 0 {
		t.Error("disagreeing scores must not settle")
	}
	if sb.calls != 1 {
		t.Errorf("scoreboard calls = %d, want 1", sb.calls)
	}
}

func TestRunPendingWhenPlayerMissing(t *testing.T) {
	bets := newFakeBets(singleBet("bet1", 101, "Moses Moody", "pts", 8.5, "over", -110, 10))
	bdl := &fakeBDL{
		games: map[string][]balldontlie.Game{
			"2026-01-15": {bdlGame(101, "GSW", "LAL", "Final", 4, 120, 110)},
		},
		stats: map[int64][]balldontlie.Stat{
			101: {bdlStat(1, "Stephen", "Curry", "GSW", "36:24", 30, 5, 8)},
		},
	}

	engine := newTestEngine(bets, &fakeGames{rows: map[int64]*store.Game{}}, &fakeStats{rows: map[int64][]*store.PlayerGameStat{}}, bdl, nil, nil)
	summary, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if summary.Pending != 1 || summary.Settled != 0 {
		t.Fatalf("summary = %+v, want 1 pending", summary)
	}
}

func TestRunIsolatesBadRows(t *testing.T) {
	bad := singleBet("bad", 101, "Stephen Curry", "pts", 25.5, "over", -110, 100)
	bad.Stake = -5
	good := singleBet("good", 101, "Stephen Curry", "pts", 25.5, "over", -110, 100)
	bets := newFakeBets(bad, good)
	bdl := &fakeBDL{
		games: map[string][]balldontlie.Game{
			"2026-01-15": {bdlGame(101, "GSW", "LAL", "Final", 4, 120, 110)},
		},
		stats: map[int64][]balldontlie.Stat{
			101: {bdlStat(1, "Stephen", "Curry", "GSW", "36:24", 30, 5, 8)},
		},
	}

	engine := newTestEngine(bets, &fakeGames{rows: map[int64]*store.Game{}}, &fakeStats{rows: map[int64][]*store.PlayerGameStat{}}, bdl, nil, nil)
	summary, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if summary.Errors != 1 || summary.Settled != 1 {
		t.Fatalf("summary = %+v, want 1 error 1 settled", summary)
	}
	if _, ok := bets.settled["good"]; !ok {
		t.Error("valid bet must settle despite the bad row")
	}
	if _, ok := bets.settled["bad"]; ok {
		t.Error("invalid row must not settle")
	}
}
