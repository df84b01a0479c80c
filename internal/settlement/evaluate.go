package settlement

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fortuna/augur/internal/store"
)

// ParseMinutes converts a raw minutes string ("36", "36:24", "0:00", "")
// to fractional minutes.
func ParseMinutes(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "0" {
		return 0
	}

	if strings.Contains(raw, ":") {
		parts := strings.Split(raw, ":")
		mins, _ := strconv.Atoi(parts[0])
		secs := 0
		if len(parts) > 1 {
			secs, _ = strconv.Atoi(parts[1])
		}
		return float64(mins) + float64(secs)/60.0
	}

	f, _ := strconv.ParseFloat(raw, 64)
	return f
}

// underOneMinute reports whether a stat line represents a player who
// effectively didn't play. Those legs void instead of losing.
func underOneMinute(minutes string) bool {
	minutes = strings.TrimSpace(minutes)
	if minutes == "" || minutes == "0" || minutes == "0:00" {
		return true
	}
	return ParseMinutes(minutes) < 1
}

// StatTotal computes the bet-relevant total from a boxscore row,
// including combo stats.
func StatTotal(stat *store.PlayerGameStat, statType string) (float64, error) {
	pts := float64(stat.Points)
	reb := float64(stat.Rebounds)
	ast := float64(stat.Assists)

	switch normalizeStatType(statType) {
	case "pts":
		return pts, nil
	case "reb":
		return reb, nil
	case "ast":
		return ast, nil
	case "stl":
		return float64(stat.Steals), nil
	case "blk":
		return float64(stat.Blocks), nil
	case "tov":
		return float64(stat.Turnovers), nil
	case "fg3m":
		return float64(stat.ThreePointersMade), nil
	case "pra":
		return pts + reb + ast, nil
	case "pr":
		return pts + reb, nil
	case "pa":
		return pts + ast, nil
	case "ra":
		return reb + ast, nil
	case "stocks":
		return float64(stat.Steals + stat.Blocks), nil
	default:
		return 0, fmt.Errorf("unsupported stat type %q", statType)
	}
}

// normalizeStatType folds the spellings different books and the companion
// app use into canonical keys.
func normalizeStatType(statType string) string {
	s := strings.ToLower(strings.TrimSpace(statType))
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "+", "_")
	s = strings.ReplaceAll(s, " ", "_")

	switch s {
	case "pts", "points", "point":
		return "pts"
	case "reb", "rebs", "rebounds", "rebound", "trb":
		return "reb"
	case "ast", "asts", "assists", "assist":
		return "ast"
	case "stl", "stls", "steals", "steal":
		return "stl"
	case "blk", "blks", "blocks", "block":
		return "blk"
	case "to", "tov", "turnovers", "turnover":
		return "tov"
	case "fg3m", "3pm", "3ptm", "threes", "three_pointers_made", "threes_made", "3pt_made":
		return "fg3m"
	case "pra", "pts_rebs_asts", "points_rebounds_assists":
		return "pra"
	case "pr", "pts_rebs", "points_rebounds":
		return "pr"
	case "pa", "pts_asts", "points_assists":
		return "pa"
	case "ra", "rebs_asts", "rebounds_assists":
		return "ra"
	case "stocks", "stls_blks", "steals_blocks":
		return "stocks"
	default:
		return s
	}
}

// EvaluateLeg scores one leg against a matched boxscore row. The result
// is win/loss/void; actual is the stat total (0 for sub-minute voids,
// where no meaningful total exists).
func EvaluateLeg(stat *store.PlayerGameStat, statType string, line float64, direction string) (result string, actual float64, err error) {
	if underOneMinute(stat.Minutes.String) {
		return store.ResultVoid, 0, nil
	}

	actual, err = StatTotal(stat, statType)
	if err != nil {
		return "", 0, err
	}

	switch strings.ToLower(direction) {
	case store.DirectionOver:
		switch {
		case actual > line:
			return store.ResultWin, actual, nil
		case actual < line:
			return store.ResultLoss, actual, nil
		default:
			return store.ResultVoid, actual, nil // push
		}
	case store.DirectionUnder:
		switch {
		case actual < line:
			return store.ResultWin, actual, nil
		case actual > line:
			return store.ResultLoss, actual, nil
		default:
			return store.ResultVoid, actual, nil // push
		}
	default:
		return "", 0, fmt.Errorf("unknown direction %q", direction)
	}
}
