package balldontlie

import (
	"fmt"
	"strings"
	"time"
)

// Team is a BDL team record, embedded in games and stats.
type Team struct {
	ID           int64  `json:"id"`
	Conference   string `json:"conference"`
	Division     string `json:"division"`
	City         string `json:"city"`
	Name         string `json:"name"`
	FullName     string `json:"full_name"`
	Abbreviation string `json:"abbreviation"`
}

// Game is one row of GET /v1/games.
//
// Status is "Final" for finished games, an RFC3339 tipoff timestamp for
// scheduled games, and a free-form label ("1st Qtr", "Halftime") while live.
type Game struct {
	ID               int64  `json:"id"`
	Date             string `json:"date"`
	Season           int    `json:"season"`
	Status           string `json:"status"`
	Period           int    `json:"period"`
	Time             string `json:"time"`
	Postseason       bool   `json:"postseason"`
	DateTime         string `json:"datetime"`
	HomeTeamScore    int    `json:"home_team_score"`
	VisitorTeamScore int    `json:"visitor_team_score"`
	HomeTeam         Team   `json:"home_team"`
	VisitorTeam      Team   `json:"visitor_team"`
}

// IsFinal reports whether BDL considers the game finished.
func (g Game) IsFinal() bool {
	return strings.Contains(strings.ToLower(g.Status), "final")
}

// Tipoff returns the scheduled start time, or the zero time when BDL
// doesn't expose one. Newer payloads carry a datetime field; older ones
// put the RFC3339 tipoff in status for games that haven't started.
func (g Game) Tipoff() time.Time {
	for _, raw := range []string{g.DateTime, g.Status} {
		if raw == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Player is one row of GET /v1/players.
type Player struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Position  string `json:"position"`
	Height    string `json:"height"`
	Weight    string `json:"weight"`
	Jersey    string `json:"jersey_number"`
	College   string `json:"college"`
	Country   string `json:"country"`
	Team      Team   `json:"team"`
}

// FullName joins first and last name the way the rest of the system keys
// players.
func (p Player) FullName() string {
	return strings.TrimSpace(fmt.Sprintf("%s %s", p.FirstName, p.LastName))
}

// Stat is one player line of GET /v1/stats.
//
// Min is left as the raw string ("36", "36:24", "0:00", or empty for DNP)
// because settlement needs to distinguish "didn't play" from "played zero
// minutes of note".
type Stat struct {
	ID       int64  `json:"id"`
	Min      string `json:"min"`
	Points   int    `json:"pts"`
	Rebounds int    `json:"reb"`
	Assists  int    `json:"ast"`
	Steals   int    `json:"stl"`
	Blocks   int    `json:"blk"`
	Turnover int    `json:"turnover"`
	FG3M     int    `json:"fg3m"`
	FGM      int    `json:"fgm"`
	FGA      int    `json:"fga"`
	FTM      int    `json:"ftm"`
	FTA      int    `json:"fta"`
	Player   Player `json:"player"`
	Team     Team   `json:"team"`
	Game     Game   `json:"game"`
}

// PlayerName returns the stat line's player as "First Last".
func (s Stat) PlayerName() string {
	return s.Player.FullName()
}

// SeasonAverage is one row of GET /v1/season_averages.
type SeasonAverage struct {
	PlayerID    int64   `json:"player_id"`
	Season      int     `json:"season"`
	GamesPlayed int     `json:"games_played"`
	Min         string  `json:"min"`
	Points      float64 `json:"pts"`
	Rebounds    float64 `json:"reb"`
	Assists     float64 `json:"ast"`
	Steals      float64 `json:"stl"`
	Blocks      float64 `json:"blk"`
	Turnover    float64 `json:"turnover"`
	FG3M        float64 `json:"fg3m"`
	FGM         float64 `json:"fgm"`
	FGA         float64 `json:"fga"`
	FTM         float64 `json:"ftm"`
	FTA         float64 `json:"fta"`
	FGPct       float64 `json:"fg_pct"`
	FG3Pct      float64 `json:"fg3_pct"`
	FTPct       float64 `json:"ft_pct"`
	OffRebounds float64 `json:"oreb"`
	DefRebounds float64 `json:"dreb"`
}

type meta struct {
	NextCursor *int64 `json:"next_cursor"`
	PerPage    int    `json:"per_page"`
}

type gamesResponse struct {
	Data []Game `json:"data"`
	Meta meta   `json:"meta"`
}

type statsResponse struct {
	Data []Stat `json:"data"`
	Meta meta   `json:"meta"`
}

type playersResponse struct {
	Data []Player `json:"data"`
	Meta meta     `json:"meta"`
}

type seasonAveragesResponse struct {
	Data []SeasonAverage `json:"data"`
}
