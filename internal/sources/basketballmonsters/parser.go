package basketballmonsters

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Bucket labels in lineup order.
var PositionOrder = []string{"PG", "SG", "SF", "PF", "C"}

// DepthChart is one team's roster grid: position → players ordered from
// starter down.
type DepthChart struct {
	Team      string              `json:"team"`
	Abbr      string              `json:"abbr"`
	Positions map[string][]string `json:"positions"`
}

var depthWsRe = regexp.MustCompile(`\s+`)

// ParseDepthCharts extracts every team grid from the rendered page.
//
// The site has flipped its table orientation before, so both layouts are
// handled: rows keyed by position ("PG | starter | backup | ...") and a
// position header row with one player per column underneath. Tables that
// match neither layout are ignored.
func ParseDepthCharts(doc *goquery.Document) []DepthChart {
	var charts []DepthChart

	doc.Find("table").Each(func(_ int, tbl *goquery.Selection) {
		chart := parseTeamTable(tbl)
		if chart == nil {
			return
		}
		if chart.Team == "" {
			chart.Team = nearestHeading(tbl)
		}
		chart.Abbr = TeamAbbreviation(chart.Team)
		if len(chart.Positions) > 0 {
			charts = append(charts, *chart)
		}
	})

	return charts
}

func parseTeamTable(tbl *goquery.Selection) *DepthChart {
	chart := &DepthChart{Positions: map[string][]string{}}
	var columnHeaders []string

	tbl.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := rowCells(tr)
		if len(cells) == 0 {
			return
		}

		first := strings.ToUpper(cells[0])
		switch {
		case isPosition(first):
			// Row-per-position layout
			for _, name := range cells[1:] {
				if name != "" {
					chart.Positions[first] = append(chart.Positions[first], name)
				}
			}
		case allPositions(cells):
			columnHeaders = upperAll(cells)
		case columnHeaders != nil:
			for i, name := range cells {
				if i >= len(columnHeaders) || name == "" {
					continue
				}
				pos := columnHeaders[i]
				chart.Positions[pos] = append(chart.Positions[pos], name)
			}
		case chart.Team == "" && len(chart.Positions) == 0 && len(cells) == 1:
			// Title row before any player data
			chart.Team = cells[0]
		}
	})

	if len(chart.Positions) == 0 {
		return nil
	}
	return chart
}

// nearestHeading finds a team name in the elements before a table when
// the table itself has no title row.
func nearestHeading(tbl *goquery.Selection) string {
	for _, sel := range []string{"h2", "h3", "h4", "caption", "div", "b"} {
		if text := collapse(tbl.PrevFiltered(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

func rowCells(tr *goquery.Selection) []string {
	var cells []string
	tr.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
		cells = append(cells, collapse(cell.Text()))
	})
	// Drop trailing empties so a padded title row still counts as one cell
	for len(cells) > 0 && cells[len(cells)-1] == "" {
		cells = cells[:len(cells)-1]
	}
	return cells
}

func isPosition(s string) bool {
	for _, p := range PositionOrder {
		if s == p {
			return true
		}
	}
	return false
}

func allPositions(cells []string) bool {
	if len(cells) < len(PositionOrder) {
		return false
	}
	for _, c := range cells {
		if c != "" && !isPosition(strings.ToUpper(c)) {
			return false
		}
	}
	return true
}

func upperAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.ToUpper(c)
	}
	return out
}

func collapse(s string) string {
	return strings.TrimSpace(depthWsRe.ReplaceAllString(s, " "))
}

// teamNicknames maps franchise nicknames to tricodes for matching the
// site's team headers.
var teamNicknames = map[string]string{
	"hawks":        "ATL",
	"celtics":      "BOS",
	"nets":         "BKN",
	"hornets":      "CHA",
	"bulls":        "CHI",
	"cavaliers":    "CLE",
	"mavericks":    "DAL",
	"nuggets":      "DEN",
	"pistons":      "DET",
	"warriors":     "GSW",
	"rockets":      "HOU",
	"pacers":       "IND",
	"clippers":     "LAC",
	"lakers":       "LAL",
	"grizzlies":    "MEM",
	"heat":         "MIA",
	"bucks":        "MIL",
	"timberwolves": "MIN",
	"pelicans":     "NOP",
	"knicks":       "NYK",
	"thunder":      "OKC",
	"magic":        "ORL",
	"76ers":        "PHI",
	"suns":         "PHX",
	"blazers":      "POR",
	"kings":        "SAC",
	"spurs":        "SAS",
	"raptors":      "TOR",
	"jazz":         "UTA",
	"wizards":      "WAS",
}

// TeamAbbreviation resolves a team header like "Boston Celtics" to its
// tricode. Unmatched names come back unchanged so callers can log them.
func TeamAbbreviation(teamName string) string {
	nameLower := strings.ToLower(strings.TrimSpace(teamName))
	if nameLower == "" {
		return ""
	}

	if abbr, ok := teamNicknames[nameLower]; ok {
		return abbr
	}

	for key, abbr := range teamNicknames {
		if strings.Contains(nameLower, key) {
			return abbr
		}
	}

	return teamName
}
