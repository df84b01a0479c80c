package dvp

import (
	"testing"

	"github.com/fortuna/augur/internal/sources/basketballmonsters"
	"github.com/fortuna/augur/internal/sources/nbastats"
)

func TestBucketFor(t *testing.T) {
	tests := []struct {
		name   string
		player nbastats.BoxScorePlayer
		depth  BucketMap
		want   string
	}{
		{
			name:   "depth chart wins over heuristic",
			player: nbastats.BoxScorePlayer{PlayerName: "Jrue Holiday", StartPosition: "G", Assists: 9},
			depth:  BucketMap{"jrue holiday": "SG"},
			want:   "SG",
		},
		{
			name:   "guard with playmaking assists",
			player: nbastats.BoxScorePlayer{StartPosition: "G", Assists: 5},
			want:   "PG",
		},
		{
			name:   "guard with heavy turnovers",
			player: nbastats.BoxScorePlayer{StartPosition: "G", Assists: 2, Turnovers: 4},
			want:   "PG",
		},
		{
			name:   "scoring guard",
			player: nbastats.BoxScorePlayer{StartPosition: "G", Assists: 4, Turnovers: 3},
			want:   "SG",
		},
		{
			name:   "forward crashing the glass",
			player: nbastats.BoxScorePlayer{StartPosition: "F", Rebounds: 8},
			want:   "PF",
		},
		{
			name:   "shot blocking forward",
			player: nbastats.BoxScorePlayer{StartPosition: "F", Rebounds: 3, Blocks: 2},
			want:   "PF",
		},
		{
			name:   "wing forward",
			player: nbastats.BoxScorePlayer{StartPosition: "F", Rebounds: 7, Blocks: 1},
			want:   "SF",
		},
		{
			name:   "center stays center",
			player: nbastats.BoxScorePlayer{StartPosition: "C", Assists: 9},
			want:   "C",
		},
		{
			name:   "bench big with boards",
			player: nbastats.BoxScorePlayer{StartPosition: "", Rebounds: 7},
			want:   "PF",
		},
		{
			name:   "bench player defaults to center",
			player: nbastats.BoxScorePlayer{StartPosition: "", Rebounds: 6},
			want:   "C",
		},
		{
			name:   "depth entry with bad bucket ignored",
			player: nbastats.BoxScorePlayer{PlayerName: "Someone", StartPosition: "C"},
			depth:  BucketMap{"someone": "G"},
			want:   "C",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bucketFor(tt.player, tt.depth); got != tt.want {
				t.Errorf("bucketFor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBucketMapFromCharts(t *testing.T) {
	charts := []basketballmonsters.DepthChart{
		{
			Team: "Boston Celtics",
			Abbr: "BOS",
			Positions: map[string][]string{
				"PG":   {"Derrick White"},
				"C":    {"Luke Kornet"},
				"UTIL": {"Somebody Else"},
				"SF":   {"Jayson Tatum"},
			},
		},
		{
			Team: "Dallas Mavericks",
			Abbr: "DAL",
			Positions: map[string][]string{
				"PG": {"Luka Dončić"},
			},
		},
	}

	m := BucketMapFromCharts(charts)
	if got := m["derrick white"]; got != "PG" {
		t.Errorf("derrick white = %q, want PG", got)
	}
	if got := m["luka doncic"]; got != "PG" {
		t.Errorf("diacritics should normalize: luka doncic = %q, want PG", got)
	}
	if got := m["jayson tatum"]; got != "SF" {
		t.Errorf("jayson tatum = %q, want SF", got)
	}
	if _, ok := m["somebody else"]; ok {
		t.Error("unknown position label should be skipped")
	}
	if len(m) != 4 {
		t.Errorf("map size = %d, want 4", len(m))
	}
}
