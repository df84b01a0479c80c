package dvp

import (
	"github.com/fortuna/augur/internal/names"
	"github.com/fortuna/augur/internal/sources/basketballmonsters"
	"github.com/fortuna/augur/internal/sources/nbastats"
)

// Position buckets, in lineup order.
var Buckets = []string{"PG", "SG", "SF", "PF", "C"}

// Metrics tracked per bucket.
var Metrics = []string{"pts", "reb", "ast", "fg3m", "stl", "blk"}

// BucketMap maps a normalized player name to their depth-chart bucket.
// One league-wide map: player names are unique enough that keying by team
// buys nothing.
type BucketMap map[string]string

// BucketMapFromCharts flattens scraped depth charts into a lookup map.
// Unknown position labels are skipped.
func BucketMapFromCharts(charts []basketballmonsters.DepthChart) BucketMap {
	m := make(BucketMap)
	for _, chart := range charts {
		for pos, players := range chart.Positions {
			if !validBucket(pos) {
				continue
			}
			for _, player := range players {
				if key := names.Normalize(player); key != "" {
					m[key] = pos
				}
			}
		}
	}
	return m
}

func validBucket(b string) bool {
	for _, bucket := range Buckets {
		if b == bucket {
			return true
		}
	}
	return false
}

// ValidMetric reports whether the engine tracks a metric.
func ValidMetric(m string) bool {
	for _, metric := range Metrics {
		if m == metric {
			return true
		}
	}
	return false
}

// bucketFor assigns an opponent stat line to a position bucket. The depth
// chart wins when it knows the player; otherwise the listed start
// position plus the stat line decides.
func bucketFor(p nbastats.BoxScorePlayer, depth BucketMap) string {
	if depth != nil {
		if b, ok := depth[names.Normalize(p.PlayerName)]; ok && validBucket(b) {
			return b
		}
	}

	switch p.StartPosition {
	case "G":
		if p.Assists >= 5 || p.Turnovers >= 4 {
			return "PG"
		}
		return "SG"
	case "F":
		if p.Rebounds >= 8 || p.Blocks >= 2 {
			return "PF"
		}
		return "SF"
	case "C":
		return "C"
	default:
		if p.Rebounds >= 7 {
			return "PF"
		}
		return "C"
	}
}
