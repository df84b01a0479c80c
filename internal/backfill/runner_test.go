package backfill

import (
	"testing"
	"time"

	"github.com/fortuna/augur/internal/sources/balldontlie"
	"github.com/fortuna/augur/internal/store"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestEnumerateDates(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"single day", date(2025, 1, 15), date(2025, 1, 15), 1},
		{"one week inclusive", date(2025, 1, 13), date(2025, 1, 19), 7},
		{"crosses month boundary", date(2025, 1, 30), date(2025, 2, 2), 4},
		{"reversed range swaps", date(2025, 1, 19), date(2025, 1, 13), 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dates := enumerateDates(tt.start, tt.end)
			if len(dates) != tt.want {
				t.Fatalf("got %d dates, want %d", len(dates), tt.want)
			}
			for i := 1; i < len(dates); i++ {
				if !dates[i].After(dates[i-1]) {
					t.Errorf("dates not ascending at %d: %v then %v", i, dates[i-1], dates[i])
				}
			}
		})
	}
}

func TestGameRow(t *testing.T) {
	g := balldontlie.Game{
		ID:               15908525,
		Date:             "2025-01-15",
		Status:           "Final",
		Period:           4,
		Time:             " Final ",
		DateTime:         "2025-01-16T00:30:00Z",
		HomeTeamScore:    112,
		VisitorTeamScore: 108,
		HomeTeam:         balldontlie.Team{Abbreviation: "PHO"},
		VisitorTeam:      balldontlie.Team{Abbreviation: "bkn"},
	}

	row := gameRow(g, date(2025, 1, 14))
	if !row.BDLGameID.Valid || row.BDLGameID.Int64 != 15908525 {
		t.Errorf("BDLGameID = %+v", row.BDLGameID)
	}
	if row.HomeTeam != "PHX" || row.AwayTeam != "BKN" {
		t.Errorf("teams = %s/%s, want PHX/BKN", row.HomeTeam, row.AwayTeam)
	}
	if row.HomeScore.Int32 != 112 || row.AwayScore.Int32 != 108 || row.Period.Int32 != 4 {
		t.Errorf("scores mapped wrong: %+v", row)
	}
	// BDL's own date field wins over the loop day.
	if !row.GameDate.Equal(date(2025, 1, 15)) {
		t.Errorf("game date = %v, want 2025-01-15", row.GameDate)
	}
	if row.Clock.String != "Final" {
		t.Errorf("clock = %q, want trimmed", row.Clock.String)
	}
	if !row.Tipoff.Valid || !row.Tipoff.Time.Equal(time.Date(2025, 1, 16, 0, 30, 0, 0, time.UTC)) {
		t.Errorf("tipoff = %+v", row.Tipoff)
	}
	if row.Source != store.SourceBallDontLie {
		t.Errorf("source = %q", row.Source)
	}
}

func TestGameRowFallsBackToLoopDay(t *testing.T) {
	g := balldontlie.Game{ID: 1, Date: "not-a-date", Status: "Final"}
	row := gameRow(g, date(2025, 1, 14))
	if !row.GameDate.Equal(date(2025, 1, 14)) {
		t.Errorf("game date = %v, want the loop day", row.GameDate)
	}
}

func TestStatRow(t *testing.T) {
	fetchedAt := time.Date(2025, 1, 16, 4, 0, 0, 0, time.UTC)
	s := balldontlie.Stat{
		Min:      "36:24",
		Points:   31,
		Rebounds: 12,
		Assists:  6,
		Steals:   2,
		Blocks:   1,
		Turnover: 3,
		FG3M:     4,
		FGM:      11,
		FGA:      22,
		FTM:      5,
		FTA:      6,
		Player:   balldontlie.Player{ID: 15, FirstName: "Giannis", LastName: "Antetokounmpo"},
		Team:     balldontlie.Team{Abbreviation: "mil"},
	}

	row := statRow(s, 15908525, fetchedAt)
	if row.BDLGameID != 15908525 || row.BDLPlayerID != 15 {
		t.Errorf("ids = %d/%d", row.BDLGameID, row.BDLPlayerID)
	}
	if row.PlayerName != "Giannis Antetokounmpo" {
		t.Errorf("player name = %q", row.PlayerName)
	}
	if row.Team.String != "MIL" {
		t.Errorf("team = %q, want upper-cased", row.Team.String)
	}
	if row.Points != 31 || row.Rebounds != 12 || row.Assists != 6 || row.Turnovers != 3 {
		t.Errorf("counting stats mapped wrong: %+v", row)
	}
	if row.ThreePointersMade != 4 || row.FieldGoalsMade != 11 || row.FreeThrowsAttempted != 6 {
		t.Errorf("shooting splits mapped wrong: %+v", row)
	}
	if !row.FetchedAt.Equal(fetchedAt) {
		t.Errorf("fetched_at = %v", row.FetchedAt)
	}
}

func TestStatRowKeepsEmptyMinutes(t *testing.T) {
	// An empty Min means DNP; the row must still record it so settlement
	// can void the leg rather than treat the player as missing.
	row := statRow(balldontlie.Stat{Min: ""}, 1, time.Now())
	if !row.Minutes.Valid || row.Minutes.String != "" {
		t.Errorf("minutes = %+v, want valid empty string", row.Minutes)
	}
}
