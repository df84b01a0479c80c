package settlement

import (
	"testing"

	"github.com/fortuna/augur/internal/store"
)

func TestFindPlayerStat(t *testing.T) {
	rows := []*store.PlayerGameStat{
		statLine("Stephen Curry", "34", 30, 5, 8),
		statLine("Luka Dončić", "38", 35, 9, 11),
		statLine("P.J. Washington Jr.", "28", 12, 6, 2),
		statLine("Jaylen Brown", "33", 22, 6, 4),
	}

	tests := []struct {
		name       string
		query      string
		wantPlayer string
		wantOK     bool
	}{
		{"exact", "Stephen Curry", "Stephen Curry", true},
		{"case and spacing", "  stephen curry ", "Stephen Curry", true},
		{"diacritics folded", "Luka Doncic", "Luka Dončić", true},
		{"punctuation and suffix", "PJ Washington", "P.J. Washington Jr.", true},
		{"first initial", "S Curry", "Stephen Curry", true},
		{"shortened first name", "Steph Curry", "Stephen Curry", true},
		{"last name only", "Dončić", "Luka Dončić", true},
		{"not in game", "Nikola Jokic", "", false},
		{"partial token rejected", "Cur", "", false},
		{"empty query", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, ok := FindPlayerStat(rows, tt.query)
			if ok != tt.wantOK {
				t.Fatalf("FindPlayerStat(%q) ok = %v, want %v", tt.query, ok, tt.wantOK)
			}
			if ok && row.PlayerName != tt.wantPlayer {
				t.Errorf("FindPlayerStat(%q) = %q, want %q", tt.query, row.PlayerName, tt.wantPlayer)
			}
		})
	}
}

func TestFindPlayerStatPrefersExactMatch(t *testing.T) {
	// Both Morrises play; the exact name must not fall through to the
	// initial+surname tier and grab the wrong twin
	rows := []*store.PlayerGameStat{
		statLine("Marcus Morris", "30", 14, 5, 2),
		statLine("Markieff Morris", "22", 9, 6, 1),
	}

	row, ok := FindPlayerStat(rows, "Markieff Morris")
	if !ok {
		t.Fatal("expected a match")
	}
	if row.PlayerName != "Markieff Morris" {
		t.Errorf("matched %q, want Markieff Morris", row.PlayerName)
	}
}
