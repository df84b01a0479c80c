package espn

import (
	"strconv"
	"strings"
	"time"
)

// Game statuses after normalization.
const (
	StatusScheduled  = "scheduled"
	StatusInProgress = "in_progress"
	StatusFinal      = "final"
)

// Game is one scoreboard event reduced to the fields the rest of the
// system merges and settles on. Team abbreviations are ESPN's (GS, SA,
// NY...); callers normalize them before matching against other sources.
type Game struct {
	ESPNID    string
	HomeTeam  string
	AwayTeam  string
	HomeScore int
	AwayScore int
	Status    string
	Period    int
	Clock     string
	Tipoff    time.Time
}

// IsFinal reports whether ESPN marked the event completed.
func (g Game) IsFinal() bool {
	return g.Status == StatusFinal
}

// parseScoreboard extracts games from a scoreboard payload. Malformed
// events are logged and skipped so one bad row doesn't kill the slate.
func (c *Client) parseScoreboard(data map[string]interface{}) []Game {
	events := extractArray(data, "events")
	games := make([]Game, 0, len(events))
	for _, eventInterface := range events {
		event, ok := eventInterface.(map[string]interface{})
		if !ok {
			continue
		}
		game, err := parseEvent(event)
		if err != nil {
			c.log.Warnf("⚠️ skipping scoreboard event %s: %v", extractString(event, "id"), err)
			continue
		}
		games = append(games, game)
	}
	return games
}

func parseEvent(event map[string]interface{}) (Game, error) {
	game := Game{ESPNID: extractString(event, "id")}

	if dateStr := extractString(event, "date"); dateStr != "" {
		// RFC3339 first; ESPN sometimes omits seconds ("2025-11-15T01:00Z")
		tipoff, err := time.Parse(time.RFC3339, dateStr)
		if err != nil {
			tipoff, err = time.Parse("2006-01-02T15:04Z", dateStr)
		}
		if err == nil {
			game.Tipoff = tipoff
		}
	}

	status := extractMap(event, "status")
	game.Status = parseGameStatus(status)
	game.Period = extractInt(status, "period")
	game.Clock = extractString(status, "displayClock")

	competitions := extractArray(event, "competitions")
	if len(competitions) == 0 {
		return game, errNoCompetitions
	}
	comp, ok := competitions[0].(map[string]interface{})
	if !ok {
		return game, errNoCompetitions
	}

	competitors := extractArray(comp, "competitors")
	if len(competitors) < 2 {
		return game, errNoCompetitors
	}
	for _, compInterface := range competitors {
		competitor, ok := compInterface.(map[string]interface{})
		if !ok {
			continue
		}
		team := extractMap(competitor, "team")
		abbr := strings.ToUpper(extractString(team, "abbreviation"))
		score := extractInt(competitor, "score")

		switch extractString(competitor, "homeAway") {
		case "home":
			game.HomeTeam = abbr
			game.HomeScore = score
		case "away":
			game.AwayTeam = abbr
			game.AwayScore = score
		}
	}

	if game.HomeTeam == "" || game.AwayTeam == "" {
		return game, errNoCompetitors
	}
	return game, nil
}

func parseGameStatus(status map[string]interface{}) string {
	statusType := extractMap(status, "type")

	if completed, ok := statusType["completed"].(bool); ok && completed {
		return StatusFinal
	}

	if state, ok := statusType["state"].(string); ok {
		switch state {
		case "in":
			return StatusInProgress
		case "pre":
			return StatusScheduled
		case "post":
			return StatusFinal
		}
	}

	return StatusScheduled
}

type parseError string

func (e parseError) Error() string { return string(e) }

const (
	errNoCompetitions parseError = "no competitions in event"
	errNoCompetitors  parseError = "fewer than two competitors in event"
)

// JSON extraction helpers. ESPN's payload shape shifts between endpoints
// so everything tolerates missing keys.

func extractString(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		if str, ok := v.(string); ok {
			return str
		}
	}
	return ""
}

func extractInt(m map[string]interface{}, key string) int {
	v, ok := m[key]
	if !ok {
		return 0
	}
	switch val := v.(type) {
	case float64:
		return int(val)
	case string:
		i, _ := strconv.Atoi(val)
		return i
	case int:
		return val
	default:
		return 0
	}
}

func extractMap(m map[string]interface{}, key string) map[string]interface{} {
	if v, ok := m[key]; ok {
		if mapVal, ok := v.(map[string]interface{}); ok {
			return mapVal
		}
	}
	return map[string]interface{}{}
}

func extractArray(m map[string]interface{}, key string) []interface{} {
	if v, ok := m[key]; ok {
		if arrVal, ok := v.([]interface{}); ok {
			return arrVal
		}
	}
	return []interface{}{}
}
