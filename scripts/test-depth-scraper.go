//go:build ignore

// Run with: go run scripts/test-depth-scraper.go
package main

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/fortuna/augur/internal/dvp"
	"github.com/fortuna/augur/internal/logging"
	"github.com/fortuna/augur/internal/sources/basketballmonsters"
)

// Simple test utility to verify the BasketballMonsters depth-chart
// scraper works. Needs headless Chrome on the box.
func main() {
	log.Println("Testing BasketballMonsters Depth-Chart Scraper")
	log.Println("===============================================")

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	client, err := basketballmonsters.NewClient(logging.NewNop())
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}
	defer client.Close()

	log.Println("\n1. Rendering depth-chart page...")
	doc, err := client.FetchDepthCharts(ctx)
	if err != nil {
		log.Fatalf("Failed to fetch depth charts: %v", err)
	}
	log.Println("✓ Page rendered")

	charts := basketballmonsters.ParseDepthCharts(doc)
	log.Printf("✓ Found %d team grids (expect 30)\n", len(charts))

	for _, chart := range charts {
		log.Printf("\n%s (%s):", chart.Team, chart.Abbr)
		positions := make([]string, 0, len(chart.Positions))
		for pos := range chart.Positions {
			positions = append(positions, pos)
		}
		sort.Strings(positions)
		for _, pos := range positions {
			players := chart.Positions[pos]
			if len(players) > 0 {
				log.Printf("  %-2s starter: %s (%d deep)", pos, players[0], len(players))
			}
		}
	}

	log.Println("\n2. Building position buckets...")
	buckets := dvp.BucketMapFromCharts(charts)
	log.Printf("✓ Bucketed %d players", len(buckets))

	log.Println("\n===============================================")
	log.Println("✓ Depth-Chart Scraper Test Complete")
}
