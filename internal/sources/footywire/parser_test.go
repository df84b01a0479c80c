package footywire

import (
	"math"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

const fixtureListHTML = `<html><body><table>
<tr><td colspan="5">Round 1</td></tr>
<tr>
  <td>Thu 6 Mar 7:40pm</td>
  <td><a href="/afl/footy/th-carlton-blues">Carlton</a> 89-102 <a href="/afl/footy/th-richmond-tigers">Richmond</a></td>
  <td><a href="/afl/footy/ve-mcg">MCG</a></td>
  <td>85,432</td>
  <td><a href="/afl/footy/mt-12345">Match</a></td>
</tr>
<tr>
  <td>Fri 7 Mar 7:50pm</td>
  <td>Geelong
 v
 Collingwood</td>
  <td><a href="/afl/footy/ve-mcg">MCG</a></td>
  <td></td>
  <td></td>
</tr>
<tr><td colspan="5">Round 2</td></tr>
<tr>
  <td>Thu 13 Mar 7:40pm</td>
  <td><a href="/afl/footy/th-sydney-swans">Sydney</a> v <a href="/afl/footy/th-brisbane-lions">Brisbane</a></td>
  <td><a href="/afl/footy/ve-scg">SCG</a></td>
  <td></td>
  <td></td>
</tr>
<tr><td>Something unrelated</td></tr>
</table></body></html>`

const ladderHTML = `<html><body><table>
<tr><td>#</td><td>Team</td><td>P</td><td>W</td><td>L</td><td>D</td><td>F</td><td>A</td><td>%</td><td>Pts</td></tr>
<tr>
  <td>1</td><td><a href="/afl/footy/th-brisbane-lions">Brisbane Lions</a></td>
  <td>22</td><td>17</td><td>5</td><td>0</td><td>1982</td><td>1501</td><td>132.0</td><td>68</td>
</tr>
<tr>
  <td>2</td><td>Geelong Cats</td>
  <td>22</td><td>16</td><td>5</td><td>1</td><td>1874</td><td>1453</td><td>129.0</td><td>66</td>
</tr>
</table></body></html>`

func docFromString(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parsing fixture HTML: %v", err)
	}
	return doc
}

func TestParseFixtures(t *testing.T) {
	fixtures := ParseFixtures(docFromString(t, fixtureListHTML))
	if len(fixtures) != 3 {
		t.Fatalf("got %d fixtures, want 3", len(fixtures))
	}

	played := fixtures[0]
	if played.Round != 1 || played.RoundName != "Round 1" {
		t.Errorf("round = %d %q, want 1 %q", played.Round, played.RoundName, "Round 1")
	}
	if played.HomeTeam != "Carlton" || played.AwayTeam != "Richmond" {
		t.Errorf("teams = %s/%s", played.HomeTeam, played.AwayTeam)
	}
	if !played.Played || played.HomeScore != 89 || played.AwayScore != 102 {
		t.Errorf("result = %v %d-%d, want played 89-102", played.Played, played.HomeScore, played.AwayScore)
	}
	if played.Venue != "MCG" {
		t.Errorf("venue = %q, want MCG", played.Venue)
	}
	if played.Date != "Thu 6 Mar 7:40pm" {
		t.Errorf("date = %q", played.Date)
	}

	textOnly := fixtures[1]
	if textOnly.HomeTeam != "Geelong" || textOnly.AwayTeam != "Collingwood" {
		t.Errorf("plain-text teams = %s/%s, want Geelong/Collingwood", textOnly.HomeTeam, textOnly.AwayTeam)
	}
	if textOnly.Played {
		t.Error("unplayed fixture marked played")
	}

	upcoming := fixtures[2]
	if upcoming.Round != 2 {
		t.Errorf("round carried over wrong: %d", upcoming.Round)
	}
	if upcoming.HomeTeam != "Sydney" || upcoming.AwayTeam != "Brisbane" {
		t.Errorf("teams = %s/%s", upcoming.HomeTeam, upcoming.AwayTeam)
	}
	if upcoming.Venue != "SCG" {
		t.Errorf("venue = %q, want SCG", upcoming.Venue)
	}
}

func TestParseFixturesEmptyPage(t *testing.T) {
	fixtures := ParseFixtures(docFromString(t, "<html><body><p>maintenance</p></body></html>"))
	if len(fixtures) != 0 {
		t.Fatalf("got %d fixtures from empty page, want 0", len(fixtures))
	}
}

func TestParseLadder(t *testing.T) {
	entries := ParseLadder(docFromString(t, ladderHTML))
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2 (header skipped)", len(entries))
	}

	top := entries[0]
	if top.Position != 1 || top.Team != "Brisbane Lions" {
		t.Errorf("top = %d %q", top.Position, top.Team)
	}
	if top.Played != 22 || top.Wins != 17 || top.Losses != 5 || top.Draws != 0 {
		t.Errorf("record = %d-%d-%d over %d", top.Wins, top.Losses, top.Draws, top.Played)
	}
	if top.PointsFor != 1982 || top.PointsAgainst != 1501 || top.Points != 68 {
		t.Errorf("points = for %d against %d pts %d", top.PointsFor, top.PointsAgainst, top.Points)
	}
	if math.Abs(top.Percentage-132.0) > 1e-9 {
		t.Errorf("percentage = %v, want 132.0", top.Percentage)
	}

	if entries[1].Draws != 1 {
		t.Errorf("draws = %d, want 1", entries[1].Draws)
	}
}
