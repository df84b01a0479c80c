package nbastats

import (
	"fmt"
	"strings"
	"time"
)

// TeamIDByAbbr maps the 30 NBA franchise abbreviations to their
// stats.nba.com team ids.
var TeamIDByAbbr = map[string]int64{
	"ATL": 1610612737, "BOS": 1610612738, "BKN": 1610612751, "CHA": 1610612766, "CHI": 1610612741,
	"CLE": 1610612739, "DAL": 1610612742, "DEN": 1610612743, "DET": 1610612765, "GSW": 1610612744,
	"HOU": 1610612745, "IND": 1610612754, "LAC": 1610612746, "LAL": 1610612747, "MEM": 1610612763,
	"MIA": 1610612748, "MIL": 1610612749, "MIN": 1610612750, "NOP": 1610612740, "NYK": 1610612752,
	"OKC": 1610612760, "ORL": 1610612753, "PHI": 1610612755, "PHX": 1610612756, "POR": 1610612757,
	"SAC": 1610612758, "SAS": 1610612759, "TOR": 1610612761, "UTA": 1610612762, "WAS": 1610612764,
}

// AbbrByTeamID is the reverse lookup of TeamIDByAbbr.
var AbbrByTeamID = func() map[int64]string {
	m := make(map[int64]string, len(TeamIDByAbbr))
	for abbr, id := range TeamIDByAbbr {
		m[id] = abbr
	}
	return m
}()

// abbrAliases covers the shortened forms other sources use for a few teams.
var abbrAliases = map[string]string{
	"GS":   "GSW",
	"SA":   "SAS",
	"NO":   "NOP",
	"NY":   "NYK",
	"UTAH": "UTA",
	"WSH":  "WAS",
	"PHO":  "PHX",
	"BRK":  "BKN",
	"CHO":  "CHA",
}

// NormalizeAbbr upper-cases a team abbreviation and resolves known aliases.
func NormalizeAbbr(abbr string) string {
	abbr = strings.ToUpper(strings.TrimSpace(abbr))
	if canonical, ok := abbrAliases[abbr]; ok {
		return canonical
	}
	return abbr
}

// ResolveTeamID returns the stats.nba.com id for a team abbreviation.
func ResolveTeamID(abbr string) (int64, error) {
	normalized := NormalizeAbbr(abbr)
	id, ok := TeamIDByAbbr[normalized]
	if !ok {
		return 0, fmt.Errorf("unknown team: %s", abbr)
	}
	return id, nil
}

// SeasonLabel renders a season start year as the "2025-26" label the
// stats API expects.
func SeasonLabel(startYear int) string {
	return fmt.Sprintf("%d-%02d", startYear, (startYear+1)%100)
}

// CurrentSeasonStartYear derives the season start year from the Eastern
// Time calendar. The NBA season rolls over in October.
func CurrentSeasonStartYear(now time.Time) int {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}
	est := now.In(loc)
	if est.Month() >= time.October {
		return est.Year()
	}
	return est.Year() - 1
}
