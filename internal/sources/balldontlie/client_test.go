package balldontlie

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fortuna/augur/internal/logging"
)

func TestGamesByDatePagination(t *testing.T) {
	var gotAuth string
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/games" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("dates[]"); got != "2025-01-15" {
			t.Errorf("dates[] = %q, want 2025-01-15", got)
		}
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("cursor") == "" {
			fmt.Fprint(w, `{"data":[{"id":1,"status":"Final","home_team":{"abbreviation":"BOS"},"visitor_team":{"abbreviation":"MIA"}}],"meta":{"next_cursor":25,"per_page":100}}`)
			return
		}
		if got := r.URL.Query().Get("cursor"); got != "25" {
			t.Errorf("cursor = %q, want 25", got)
		}
		fmt.Fprint(w, `{"data":[{"id":2,"status":"Final","home_team":{"abbreviation":"LAL"},"visitor_team":{"abbreviation":"DEN"}}],"meta":{"per_page":100}}`)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, "test-key", logging.NewNop())
	date := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	games, err := c.GamesByDate(context.Background(), date)
	if err != nil {
		t.Fatalf("GamesByDate: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("got %d games, want 2", len(games))
	}
	if games[0].ID != 1 || games[1].ID != 2 {
		t.Errorf("game ids = %d, %d, want 1, 2", games[0].ID, games[1].ID)
	}
	if requests != 2 {
		t.Errorf("made %d requests, want 2", requests)
	}
	if gotAuth != "test-key" {
		t.Errorf("Authorization = %q, want bare key", gotAuth)
	}
}

func TestGamesByDateRetries(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests < 3 {
			http.Error(w, "upstream hiccup", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"data":[{"id":7,"status":"Final"}],"meta":{}}`)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, "k", logging.NewNop())
	c.retryDelay = 5 * time.Millisecond
	games, err := c.GamesByDate(context.Background(), time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("GamesByDate after retries: %v", err)
	}
	if len(games) != 1 || games[0].ID != 7 {
		t.Fatalf("got %+v, want one game with id 7", games)
	}
	if requests != 3 {
		t.Errorf("made %d requests, want 3", requests)
	}
}

func TestGamesByDateGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, "k", logging.NewNop())
	c.retryDelay = time.Millisecond
	if _, err := c.GamesByDate(context.Background(), time.Now()); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
}

func TestStatsByGame(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("game_ids[]"); got != "15908525" {
			t.Errorf("game_ids[] = %q, want 15908525", got)
		}
		fmt.Fprint(w, `{"data":[
			{"id":11,"min":"36:24","pts":31,"reb":12,"ast":6,"turnover":3,"player":{"id":15,"first_name":"Giannis","last_name":"Antetokounmpo"},"team":{"abbreviation":"MIL"}},
			{"id":12,"min":"","pts":0,"player":{"id":99,"first_name":"Deep","last_name":"Bench"},"team":{"abbreviation":"MIL"}}
		],"meta":{}}`)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, "k", logging.NewNop())
	stats, err := c.StatsByGame(context.Background(), 15908525)
	if err != nil {
		t.Fatalf("StatsByGame: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("got %d stat lines, want 2", len(stats))
	}
	if stats[0].PlayerName() != "Giannis Antetokounmpo" {
		t.Errorf("player name = %q", stats[0].PlayerName())
	}
	if stats[0].Min != "36:24" || stats[0].Points != 31 || stats[0].Turnover != 3 {
		t.Errorf("stat line decoded wrong: %+v", stats[0])
	}
	if stats[1].Min != "" {
		t.Errorf("DNP minutes should stay empty, got %q", stats[1].Min)
	}
}

func TestSearchPlayers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("search"); got != "curry" {
			t.Errorf("search = %q, want curry", got)
		}
		fmt.Fprint(w, `{"data":[{"id":115,"first_name":"Stephen","last_name":"Curry","position":"G","team":{"abbreviation":"GSW"}}],"meta":{}}`)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, "k", logging.NewNop())
	players, err := c.SearchPlayers(context.Background(), "curry")
	if err != nil {
		t.Fatalf("SearchPlayers: %v", err)
	}
	if len(players) != 1 || players[0].FullName() != "Stephen Curry" {
		t.Fatalf("got %+v, want Stephen Curry", players)
	}
}

func TestSeasonAveragesEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[]}`)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, "k", logging.NewNop())
	avgs, err := c.SeasonAverages(context.Background(), 115, 2024)
	if err != nil {
		t.Fatalf("SeasonAverages: %v", err)
	}
	if len(avgs) != 0 {
		t.Fatalf("got %d rows, want 0", len(avgs))
	}
}

func TestUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, "bad", logging.NewNop())
	_, err := c.SearchPlayers(context.Background(), "curry")
	if err == nil {
		t.Fatal("expected error for 401")
	}
}

func TestGameTipoff(t *testing.T) {
	tests := []struct {
		name string
		game Game
		want time.Time
	}{
		{
			name: "datetime field",
			game: Game{DateTime: "2025-01-16T00:30:00Z", Status: "Final"},
			want: time.Date(2025, 1, 16, 0, 30, 0, 0, time.UTC),
		},
		{
			name: "tipoff in status",
			game: Game{Status: "2025-01-16T02:00:00Z"},
			want: time.Date(2025, 1, 16, 2, 0, 0, 0, time.UTC),
		},
		{
			name: "no schedule info",
			game: Game{Status: "1st Qtr"},
			want: time.Time{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.game.Tipoff(); !got.Equal(tt.want) {
				t.Errorf("Tipoff() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGameIsFinal(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{"Final", true},
		{"Final/OT", true},
		{"1st Qtr", false},
		{"Halftime", false},
		{"2025-01-16T00:30:00Z", false},
		{"", false},
	}
	for _, tt := range tests {
		g := Game{Status: tt.status}
		if got := g.IsFinal(); got != tt.want {
			t.Errorf("IsFinal(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}
