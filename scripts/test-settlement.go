//go:build ignore

// Run with: go run scripts/test-settlement.go
package main

import (
	"database/sql"
	"log"
	"time"

	"github.com/fortuna/augur/internal/settlement"
	"github.com/fortuna/augur/internal/store"
)

// Test utility for the settlement grading pipeline. Runs synthetic
// bets through leg evaluation, finality checks, and payout math
// without touching the database.
func main() {
	log.Println("Testing Settlement Grading")
	log.Println("==============================")

	log.Println("\n--- Leg Evaluation ---")
	testLegEvaluation()

	log.Println("\n--- Finality Classification ---")
	testFinality()

	log.Println("\n--- Payout Math ---")
	testPayouts()

	log.Println("\n--- Player Name Matching ---")
	testNameMatching()

	log.Println("\n==============================")
	log.Println("✓ All Settlement Tests Complete")
}

func testLegEvaluation() {
	stat := testStat()

	cases := []struct {
		statType  string
		line      float64
		direction string
	}{
		{"pts", 25.5, store.DirectionOver},  // 28 pts -> win
		{"pts", 30.5, store.DirectionOver},  // 28 pts -> loss
		{"reb", 11.0, store.DirectionUnder}, // exactly 11 -> push/void
		{"pra", 42.5, store.DirectionOver},  // 28+11+6 = 45 -> win
		{"stocks", 3.5, store.DirectionUnder},
	}

	for i, tc := range cases {
		result, actual, err := settlement.EvaluateLeg(stat, tc.statType, tc.line, tc.direction)
		if err != nil {
			log.Printf("Test %d: %s %s %.1f -> error: %v", i+1, tc.statType, tc.direction, tc.line, err)
			continue
		}
		log.Printf("Test %d: %s %s %.1f -> %s (actual %.1f)", i+1, tc.statType, tc.direction, tc.line, result, actual)
	}
}

func testFinality() {
	now := time.Date(2025, time.January, 16, 4, 0, 0, 0, time.UTC)

	games := []struct {
		name  string
		state settlement.GameState
	}{
		{"status says final", settlement.GameState{Status: "Final", HomeScore: 112, AwayScore: 108}},
		{"Q4 clock expired", settlement.GameState{Status: "", HomeScore: 101, AwayScore: 99, Period: 4, Clock: "0:00"}},
		{"live in Q3", settlement.GameState{Status: "Q3 5:12", HomeScore: 70, AwayScore: 66, Period: 3, Clock: "5:12", Tipoff: now.Add(-90 * time.Minute)}},
		{"tipoff long past", settlement.GameState{Status: "", Tipoff: now.Add(-5 * time.Hour)}},
		{"pre-tip", settlement.GameState{Status: "7:30 PM ET", Tipoff: now.Add(2 * time.Hour)}},
	}

	for i, g := range games {
		log.Printf("Test %d (%s): %s", i+1, g.name, settlement.Classify(g.state, now))
	}

	// Two sources disagreeing on a final score should hold the bet.
	bdl := settlement.GameState{HomeTeam: "LAL", AwayTeam: "BOS", HomeScore: 112, AwayScore: 108}
	espn := settlement.GameState{HomeTeam: "LAL", AwayTeam: "BOS", HomeScore: 114, AwayScore: 108}
	log.Printf("Score agreement (112 vs 114): %v", settlement.ScoresAgree(bdl, espn))
}

func testPayouts() {
	log.Printf("Decimal odds for -110: %s", settlement.DecimalOdds(-110))
	log.Printf("Decimal odds for +150: %s", settlement.DecimalOdds(150))

	legs := []*store.ParlayLeg{
		{PlayerName: "LeBron James", StatType: "pts", Line: 25.5, Direction: store.DirectionOver, Odds: sql.NullInt32{Int32: -110, Valid: true}, Result: store.ResultWin},
		{PlayerName: "Anthony Davis", StatType: "reb", Line: 11.5, Direction: store.DirectionOver, Odds: sql.NullInt32{Int32: -115, Valid: true}, Result: store.ResultWin},
		{PlayerName: "Austin Reaves", StatType: "ast", Line: 5.5, Direction: store.DirectionUnder, Odds: sql.NullInt32{Int32: 120, Valid: true}, Result: store.ResultVoid},
	}

	results := make([]string, len(legs))
	for i, leg := range legs {
		results[i] = leg.Result
	}

	combined := settlement.CombineLegResults(results)
	multiplier := settlement.ParlayMultiplier(legs)
	payout := settlement.Payout(combined, 50, multiplier)

	log.Printf("3-leg parlay (win, win, void): %s", combined)
	log.Printf("  Achieved multiplier: %s", multiplier)
	log.Printf("  Payout on $50 stake: $%.2f", payout)

	// One loss kills the ticket.
	log.Printf("Parlay with a loss: %s", settlement.CombineLegResults([]string{store.ResultWin, store.ResultLoss, store.ResultWin}))
}

func testNameMatching() {
	rows := []*store.PlayerGameStat{
		testStat(),
		{PlayerName: "Luka Dončić", Points: 35},
		{PlayerName: "Jaren Jackson Jr.", Points: 22},
	}

	queries := []string{"LeBron James", "luka doncic", "Jaren Jackson", "Nikola Jokić"}
	for _, q := range queries {
		if stat, ok := settlement.FindPlayerStat(rows, q); ok {
			log.Printf("  ✓ %q -> %s (%d pts)", q, stat.PlayerName, stat.Points)
		} else {
			log.Printf("  ✗ %q -> no match", q)
		}
	}
}

func testStat() *store.PlayerGameStat {
	return &store.PlayerGameStat{
		BDLGameID:         15908525,
		BDLPlayerID:       237,
		PlayerName:        "LeBron James",
		Team:              sql.NullString{String: "LAL", Valid: true},
		Minutes:           sql.NullString{String: "36:42", Valid: true},
		Points:            28,
		Rebounds:          11,
		Assists:           6,
		Steals:            2,
		Blocks:            1,
		Turnovers:         3,
		ThreePointersMade: 3,
	}
}
