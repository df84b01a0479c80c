package footywire

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Fixture is one AFL match row from ft_match_list. Round is 0 for finals
// rows; RoundName keeps the raw header ("Round 12", "Finals Week 1").
type Fixture struct {
	Round     int    `json:"round"`
	RoundName string `json:"round_name"`
	Date      string `json:"date"`
	HomeTeam  string `json:"home_team"`
	AwayTeam  string `json:"away_team"`
	Venue     string `json:"venue"`
	HomeScore int    `json:"home_score"`
	AwayScore int    `json:"away_score"`
	Played    bool   `json:"played"`
}

// LadderEntry is one AFL ladder row from ft_lad.
type LadderEntry struct {
	Position      int     `json:"position"`
	Team          string  `json:"team"`
	Played        int     `json:"played"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	Draws         int     `json:"draws"`
	PointsFor     int     `json:"points_for"`
	PointsAgainst int     `json:"points_against"`
	Percentage    float64 `json:"percentage"`
	Points        int     `json:"points"`
}

var (
	roundHeaderRe = regexp.MustCompile(`(?i)^(round\s+(\d+)|finals week\s+\d+|qualifying finals?|elimination finals?|semi finals?|preliminary finals?|grand final)$`)
	scoreRe       = regexp.MustCompile(`\b(\d{1,3})-(\d{1,3})\b`)
	wsRe          = regexp.MustCompile(`\s+`)
)

// ParseFixtures walks every table row on the fixture page. Round header
// rows set the current round; rows with a team-vs-team cell become
// fixtures. Anything unrecognized is skipped, so layout drift degrades to
// fewer rows rather than an error.
func ParseFixtures(doc *goquery.Document) []Fixture {
	var fixtures []Fixture
	round := 0
	roundName := ""

	doc.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		rowText := collapseSpace(tr.Text())

		if m := roundHeaderRe.FindStringSubmatch(rowText); m != nil {
			roundName = rowText
			round = 0
			if m[2] != "" {
				round, _ = strconv.Atoi(m[2])
			}
			return
		}

		tds := tr.Find("td")
		if tds.Length() < 3 {
			return
		}

		home, away, teamsIdx := findTeams(tds)
		if home == "" || away == "" {
			return
		}

		fixture := Fixture{
			Round:     round,
			RoundName: roundName,
			Date:      collapseSpace(tds.Eq(0).Text()),
			HomeTeam:  home,
			AwayTeam:  away,
			Venue:     findVenue(tds, teamsIdx),
		}

		if m := scoreRe.FindStringSubmatch(rowText); m != nil {
			fixture.HomeScore, _ = strconv.Atoi(m[1])
			fixture.AwayScore, _ = strconv.Atoi(m[2])
			fixture.Played = true
		}

		fixtures = append(fixtures, fixture)
	})

	return fixtures
}

// findTeams locates the cell holding both team names: two team-page links,
// or a "Home v Away" text cell for unplayed games.
func findTeams(tds *goquery.Selection) (home, away string, idx int) {
	idx = -1
	tds.EachWithBreak(func(i int, td *goquery.Selection) bool {
		links := td.Find("a").FilterFunction(func(_ int, a *goquery.Selection) bool {
			return strings.Contains(a.AttrOr("href", ""), "th-")
		})
		if links.Length() == 2 {
			home = collapseSpace(links.Eq(0).Text())
			away = collapseSpace(links.Eq(1).Text())
			idx = i
			return false
		}

		text := collapseSpace(td.Text())
		if parts := strings.Split(text, " v "); len(parts) == 2 {
			home = strings.TrimSpace(parts[0])
			away = strings.TrimSpace(parts[1])
			idx = i
			return false
		}
		return true
	})
	return home, away, idx
}

// findVenue prefers a venue-page link; otherwise the cell after the teams.
func findVenue(tds *goquery.Selection, teamsIdx int) string {
	venue := ""
	tds.EachWithBreak(func(_ int, td *goquery.Selection) bool {
		link := td.Find("a").FilterFunction(func(_ int, a *goquery.Selection) bool {
			return strings.Contains(a.AttrOr("href", ""), "ve-")
		})
		if link.Length() > 0 {
			venue = collapseSpace(link.First().Text())
			return false
		}
		return true
	})
	if venue == "" && teamsIdx >= 0 && teamsIdx+1 < tds.Length() {
		venue = collapseSpace(tds.Eq(teamsIdx + 1).Text())
	}
	return venue
}

// ParseLadder walks table rows on the ladder page. A ladder row starts
// with a numeric position and carries ten columns (pos, team, P, W, L, D,
// F, A, %, pts); everything else is a header or spacer and is skipped.
func ParseLadder(doc *goquery.Document) []LadderEntry {
	var entries []LadderEntry

	doc.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		tds := tr.Find("td")
		if tds.Length() < 10 {
			return
		}

		pos, err := strconv.Atoi(collapseSpace(tds.Eq(0).Text()))
		if err != nil || pos < 1 {
			return
		}

		entry := LadderEntry{
			Position:      pos,
			Team:          collapseSpace(tds.Eq(1).Text()),
			Played:        cellInt(tds, 2),
			Wins:          cellInt(tds, 3),
			Losses:        cellInt(tds, 4),
			Draws:         cellInt(tds, 5),
			PointsFor:     cellInt(tds, 6),
			PointsAgainst: cellInt(tds, 7),
			Points:        cellInt(tds, 9),
		}
		entry.Percentage, _ = strconv.ParseFloat(collapseSpace(tds.Eq(8).Text()), 64)

		if entry.Team != "" {
			entries = append(entries, entry)
		}
	})

	return entries
}

func cellInt(tds *goquery.Selection, i int) int {
	text := strings.ReplaceAll(collapseSpace(tds.Eq(i).Text()), ",", "")
	v, _ := strconv.Atoi(text)
	return v
}

func collapseSpace(s string) string {
	return strings.TrimSpace(wsRe.ReplaceAllString(s, " "))
}
