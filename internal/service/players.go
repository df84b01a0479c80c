package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fortuna/augur/internal/sources/balldontlie"
	"github.com/fortuna/augur/internal/sources/nbastats"
)

// PlayerService proxies BDL player lookups.
type PlayerService struct {
	bdl *balldontlie.Client
	log *zap.SugaredLogger
}

// NewPlayerService creates a new player service
func NewPlayerService(bdl *balldontlie.Client, log *zap.SugaredLogger) *PlayerService {
	return &PlayerService{bdl: bdl, log: log}
}

// Search finds players by name. Queries under two characters are
// rejected to keep the upstream calls bounded.
func (s *PlayerService) Search(ctx context.Context, name string) ([]balldontlie.Player, error) {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return nil, fmt.Errorf("name must be at least 2 characters")
	}

	players, err := s.bdl.SearchPlayers(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("searching players: %w", err)
	}
	return players, nil
}

// Averages returns a player's per-game season averages. season 0 means
// the current season.
func (s *PlayerService) Averages(ctx context.Context, playerID int64, season int) ([]balldontlie.SeasonAverage, error) {
	if playerID <= 0 {
		return nil, fmt.Errorf("player_id is required")
	}
	if season == 0 {
		season = nbastats.CurrentSeasonStartYear(time.Now())
	}

	averages, err := s.bdl.SeasonAverages(ctx, playerID, season)
	if err != nil {
		return nil, fmt.Errorf("fetching season averages: %w", err)
	}
	return averages, nil
}
