package nbastats

import (
	"fmt"
	"strings"
)

// GameLogEntry is one row of a team's game log.
type GameLogEntry struct {
	GameID   string `json:"game_id"`
	GameDate string `json:"game_date"`
	Matchup  string `json:"matchup"`
	Result   string `json:"result"`
}

// BoxScorePlayer is one per-player row of a traditional boxscore.
type BoxScorePlayer struct {
	TeamID            int64   `json:"team_id"`
	TeamAbbr          string  `json:"team_abbr"`
	PlayerID          int64   `json:"player_id"`
	PlayerName        string  `json:"player_name"`
	StartPosition     string  `json:"start_position"`
	Minutes           string  `json:"minutes"`
	Points            float64 `json:"points"`
	Rebounds          float64 `json:"rebounds"`
	Assists           float64 `json:"assists"`
	ThreePointersMade float64 `json:"three_pointers_made"`
	Steals            float64 `json:"steals"`
	Blocks            float64 `json:"blocks"`
	Turnovers         float64 `json:"turnovers"`
}

// resultSet is the stats API envelope: parallel headers and row arrays.
type resultSet struct {
	name    string
	headers []interface{}
	rows    []interface{}
}

// ParseGameLog extracts game log entries from a teamgamelog payload,
// newest first as the API returns them.
func ParseGameLog(payload map[string]interface{}) ([]GameLogEntry, error) {
	set := findResultSet(payload, "teamgamelog")
	if set == nil {
		set = firstResultSet(payload)
	}
	if set == nil || len(set.headers) == 0 {
		return nil, fmt.Errorf("game log payload missing result sets")
	}

	iGameID := headerIndex(set.headers, "Game_ID", "GAME_ID")
	iDate := headerIndex(set.headers, "GAME_DATE")
	iMatchup := headerIndex(set.headers, "MATCHUP")
	iWL := headerIndex(set.headers, "WL")
	if iGameID < 0 {
		return nil, fmt.Errorf("game log payload missing Game_ID column")
	}

	var entries []GameLogEntry
	for _, raw := range set.rows {
		row, ok := raw.([]interface{})
		if !ok {
			continue
		}
		entry := GameLogEntry{
			GameID:   cellString(row, iGameID),
			GameDate: cellString(row, iDate),
			Matchup:  cellString(row, iMatchup),
			Result:   cellString(row, iWL),
		}
		if entry.GameID == "" {
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// ParseBoxScore extracts the per-player rows from a boxscoretraditionalv2
// payload. The player result set is located by name; the API has shuffled
// set ordering before, so the first set is only a fallback.
func ParseBoxScore(payload map[string]interface{}) ([]BoxScorePlayer, error) {
	set := findResultSet(payload, "player")
	if set == nil {
		set = firstResultSet(payload)
	}
	if set == nil || len(set.headers) == 0 || len(set.rows) == 0 {
		return nil, fmt.Errorf("boxscore payload missing player rows")
	}

	iTeamID := headerIndex(set.headers, "TEAM_ID")
	iTeamAbbr := headerIndex(set.headers, "TEAM_ABBREVIATION")
	iPlayerID := headerIndex(set.headers, "PLAYER_ID")
	iPlayer := headerIndex(set.headers, "PLAYER_NAME")
	iStartPos := headerIndex(set.headers, "START_POSITION")
	iMin := headerIndex(set.headers, "MIN")
	iPTS := headerIndex(set.headers, "PTS")
	iREB := headerIndex(set.headers, "REB")
	iAST := headerIndex(set.headers, "AST")
	iFG3M := headerIndex(set.headers, "FG3M")
	iSTL := headerIndex(set.headers, "STL")
	iBLK := headerIndex(set.headers, "BLK")
	iTO := headerIndex(set.headers, "TO", "TOV")

	if iTeamID < 0 || iPlayer < 0 {
		return nil, fmt.Errorf("boxscore payload missing required columns")
	}

	var players []BoxScorePlayer
	for _, raw := range set.rows {
		row, ok := raw.([]interface{})
		if !ok {
			continue
		}
		players = append(players, BoxScorePlayer{
			TeamID:            cellInt64(row, iTeamID),
			TeamAbbr:          cellString(row, iTeamAbbr),
			PlayerID:          cellInt64(row, iPlayerID),
			PlayerName:        cellString(row, iPlayer),
			StartPosition:     strings.ToUpper(cellString(row, iStartPos)),
			Minutes:           cellString(row, iMin),
			Points:            cellFloat(row, iPTS),
			Rebounds:          cellFloat(row, iREB),
			Assists:           cellFloat(row, iAST),
			ThreePointersMade: cellFloat(row, iFG3M),
			Steals:            cellFloat(row, iSTL),
			Blocks:            cellFloat(row, iBLK),
			Turnovers:         cellFloat(row, iTO),
		})
	}

	return players, nil
}

// findResultSet returns the first result set whose name contains the
// given fragment (case-insensitive).
func findResultSet(payload map[string]interface{}, nameFragment string) *resultSet {
	sets, _ := payload["resultSets"].([]interface{})
	for _, raw := range sets {
		m, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		name, _ := m["name"].(string)
		if !strings.Contains(strings.ToLower(name), strings.ToLower(nameFragment)) {
			continue
		}
		return buildResultSet(name, m)
	}
	return nil
}

func firstResultSet(payload map[string]interface{}) *resultSet {
	sets, _ := payload["resultSets"].([]interface{})
	if len(sets) == 0 {
		return nil
	}
	m, ok := sets[0].(map[string]interface{})
	if !ok {
		return nil
	}
	name, _ := m["name"].(string)
	return buildResultSet(name, m)
}

func buildResultSet(name string, m map[string]interface{}) *resultSet {
	headers, _ := m["headers"].([]interface{})
	rows, _ := m["rowSet"].([]interface{})
	return &resultSet{name: name, headers: headers, rows: rows}
}

// headerIndex finds a column by any of its known names, case-insensitive.
func headerIndex(headers []interface{}, names ...string) int {
	for _, name := range names {
		for i, h := range headers {
			s, _ := h.(string)
			if strings.EqualFold(s, name) {
				return i
			}
		}
	}
	return -1
}

func cellString(row []interface{}, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	switch v := row[i].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%v", v)
	default:
		return ""
	}
}

func cellFloat(row []interface{}, i int) float64 {
	if i < 0 || i >= len(row) {
		return 0
	}
	v, _ := row[i].(float64)
	return v
}

func cellInt64(row []interface{}, i int) int64 {
	return int64(cellFloat(row, i))
}
