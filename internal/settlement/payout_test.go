package settlement

import (
	"database/sql"
	"math"
	"testing"

	"github.com/fortuna/augur/internal/store"
)

func TestDecimalOdds(t *testing.T) {
	tests := []struct {
		odds int32
		want float64
	}{
		{150, 2.5},
		{100, 2},
		{-110, 1.9091},
		{-200, 1.5},
		{0, 1},
	}

	for _, tt := range tests {
		got := DecimalOdds(tt.odds).Round(4).InexactFloat64()
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("DecimalOdds(%d) = %v, want %v", tt.odds, got, tt.want)
		}
	}
}

func TestCombineLegResults(t *testing.T) {
	tests := []struct {
		name    string
		results []string
		want    string
	}{
		{"all win", []string{store.ResultWin, store.ResultWin}, store.ResultWin},
		{"any loss kills it", []string{store.ResultWin, store.ResultLoss, store.ResultWin}, store.ResultLoss},
		{"void leg drops out", []string{store.ResultVoid, store.ResultWin, store.ResultWin}, store.ResultWin},
		{"all void refunds", []string{store.ResultVoid, store.ResultVoid}, store.ResultVoid},
		{"unevaluated leg keeps it open", []string{store.ResultWin, store.ResultPending}, store.ResultPending},
		{"empty result keeps it open", []string{store.ResultWin, ""}, store.ResultPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CombineLegResults(tt.results); got != tt.want {
				t.Errorf("CombineLegResults(%v) = %q, want %q", tt.results, got, tt.want)
			}
		})
	}
}

func TestParlayPayout(t *testing.T) {
	legs := []*store.ParlayLeg{
		{Result: store.ResultWin, Odds: sql.NullInt32{Int32: -110, Valid: true}},
		{Result: store.ResultWin, Odds: sql.NullInt32{Int32: 150, Valid: true}},
		{Result: store.ResultVoid, Odds: sql.NullInt32{Int32: 200, Valid: true}},
	}

	// 1.9090... * 2.5; the voided leg contributes nothing
	multiplier := ParlayMultiplier(legs)
	if got := multiplier.Round(4).InexactFloat64(); math.Abs(got-4.7727) > 1e-9 {
		t.Errorf("ParlayMultiplier = %v, want 4.7727", got)
	}

	if got := Payout(store.ResultWin, 50, multiplier); got != 238.64 {
		t.Errorf("Payout(win) = %v, want 238.64", got)
	}
	if got := Payout(store.ResultVoid, 50, multiplier); got != 50 {
		t.Errorf("Payout(void) = %v, want stake back", got)
	}
	if got := Payout(store.ResultLoss, 50, multiplier); got != 0 {
		t.Errorf("Payout(loss) = %v, want 0", got)
	}

	if got := AchievedMultiplier(store.ResultWin, legs); math.Abs(got-4.7727) > 1e-9 {
		t.Errorf("AchievedMultiplier(win) = %v, want 4.7727", got)
	}
	if got := AchievedMultiplier(store.ResultVoid, legs); got != 1 {
		t.Errorf("AchievedMultiplier(void) = %v, want 1", got)
	}
	if got := AchievedMultiplier(store.ResultLoss, legs); got != 0 {
		t.Errorf("AchievedMultiplier(loss) = %v, want 0", got)
	}
}

func TestParlayMultiplierMissingOdds(t *testing.T) {
	legs := []*store.ParlayLeg{
		{Result: store.ResultWin, Odds: sql.NullInt32{Int32: 150, Valid: true}},
		{Result: store.ResultWin},
	}

	// A winning leg with no recorded odds multiplies by 1
	if got := ParlayMultiplier(legs).InexactFloat64(); got != 2.5 {
		t.Errorf("ParlayMultiplier = %v, want 2.5", got)
	}
}
