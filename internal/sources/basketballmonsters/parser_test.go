package basketballmonsters

import (
	"reflect"
	"testing"
)

const depthChartHTML = `<html><body>
<table>
  <tr><td colspan="4">Boston Celtics</td></tr>
  <tr><td>PG</td><td>Derrick White</td><td>Payton Pritchard</td></tr>
  <tr><td>SG</td><td>Jaylen Brown</td><td></td></tr>
  <tr><td>SF</td><td>Jayson Tatum</td><td>Sam Hauser</td></tr>
  <tr><td>PF</td><td>Kristaps Porzingis</td></tr>
  <tr><td>C</td><td>Al Horford</td><td>Luke Kornet</td></tr>
</table>

<h3>Milwaukee Bucks</h3>
<table>
  <tr><th>PG</th><th>SG</th><th>SF</th><th>PF</th><th>C</th></tr>
  <tr><td>Damian Lillard</td><td>Gary Trent Jr.</td><td>Khris Middleton</td><td>Giannis Antetokounmpo</td><td>Brook Lopez</td></tr>
  <tr><td>Delon Wright</td><td>Pat Connaughton</td><td>Taurean Prince</td><td>Bobby Portis</td><td></td></tr>
</table>

<table>
  <tr><td>Home</td><td>Rankings</td><td>Projections</td></tr>
</table>
</body></html>`

func TestParseDepthCharts(t *testing.T) {
	doc, err := ParseHTML(depthChartHTML)
	if err != nil {
		t.Fatalf("ParseHTML: %v", err)
	}

	charts := ParseDepthCharts(doc)
	if len(charts) != 2 {
		t.Fatalf("got %d charts, want 2 (nav table ignored)", len(charts))
	}

	bos := charts[0]
	if bos.Team != "Boston Celtics" || bos.Abbr != "BOS" {
		t.Errorf("team = %q abbr = %q", bos.Team, bos.Abbr)
	}
	wantPG := []string{"Derrick White", "Payton Pritchard"}
	if !reflect.DeepEqual(bos.Positions["PG"], wantPG) {
		t.Errorf("PG = %v, want %v", bos.Positions["PG"], wantPG)
	}
	if got := bos.Positions["SG"]; len(got) != 1 || got[0] != "Jaylen Brown" {
		t.Errorf("SG = %v, empty cell should be dropped", got)
	}

	mil := charts[1]
	if mil.Team != "Milwaukee Bucks" || mil.Abbr != "MIL" {
		t.Errorf("team = %q abbr = %q, heading lookup failed", mil.Team, mil.Abbr)
	}
	wantPF := []string{"Giannis Antetokounmpo", "Bobby Portis"}
	if !reflect.DeepEqual(mil.Positions["PF"], wantPF) {
		t.Errorf("PF = %v, want %v", mil.Positions["PF"], wantPF)
	}
	if got := mil.Positions["C"]; len(got) != 1 || got[0] != "Brook Lopez" {
		t.Errorf("C = %v, want only Brook Lopez", got)
	}
}

func TestParseDepthChartsEmptyPage(t *testing.T) {
	doc, err := ParseHTML("<html><body><p>loading...</p></body></html>")
	if err != nil {
		t.Fatalf("ParseHTML: %v", err)
	}
	if charts := ParseDepthCharts(doc); len(charts) != 0 {
		t.Fatalf("got %d charts from empty page, want 0", len(charts))
	}
}

func TestTeamAbbreviation(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Boston Celtics", "BOS"},
		{"boston celtics", "BOS"},
		{"Philadelphia 76ers", "PHI"},
		{"Trail Blazers", "POR"},
		{"Portland Trail Blazers", "POR"},
		{"Unknown Team", "Unknown Team"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := TeamAbbreviation(tt.name); got != tt.want {
			t.Errorf("TeamAbbreviation(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
