//go:build ignore

// Run with: go run test_bdl_client.go
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/fortuna/augur/internal/logging"
	"github.com/fortuna/augur/internal/sources/balldontlie"
)

func main() {
	log.Println("Testing BallDontLie API client directly...")

	client := balldontlie.NewClient(os.Getenv("BDL_API_KEY"), logging.NewNop())
	ctx := context.Background()

	// Test 1: Fetch games for a known slate date
	dateStr := "2025-01-15"
	date, _ := time.Parse("2006-01-02", dateStr)

	log.Printf("Fetching games for %s...", dateStr)
	games, err := client.GamesByDate(ctx, date)
	if err != nil {
		log.Printf("❌ ERROR: %v", err)
		return
	}

	log.Printf("✅ SUCCESS! Retrieved %d games", len(games))
	for _, g := range games {
		log.Printf("   %s @ %s: %d-%d (%s)", g.VisitorTeam.Abbreviation, g.HomeTeam.Abbreviation, g.VisitorTeamScore, g.HomeTeamScore, g.Status)
	}

	// Test 2: Player search
	log.Println("\nSearching for 'curry'...")
	players, err := client.SearchPlayers(ctx, "curry")
	if err != nil {
		log.Printf("❌ ERROR: %v", err)
		return
	}
	log.Printf("✅ SUCCESS! Found %d players", len(players))

	// Test 3: Season averages for the first hit
	if len(players) > 0 {
		p := players[0]
		log.Printf("\nFetching 2024-25 season averages for %s (id %d)...", p.FullName(), p.ID)
		averages, err := client.SeasonAverages(ctx, p.ID, 2024)
		if err != nil {
			log.Printf("❌ ERROR: %v", err)
		} else if len(averages) > 0 {
			log.Printf("✅ SUCCESS! %.1f pts / %.1f reb / %.1f ast over %d games", averages[0].Points, averages[0].Rebounds, averages[0].Assists, averages[0].GamesPlayed)
		} else {
			log.Println("   No averages returned (player may not have played this season)")
		}
	}

	log.Println("\n✅ All tests passed!")
}
