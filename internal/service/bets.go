package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fortuna/augur/internal/metrics"
	"github.com/fortuna/augur/internal/settlement"
	"github.com/fortuna/augur/internal/store"
	"github.com/fortuna/augur/internal/store/repository"
)

// BetService exposes read access to tracked bets and triggers
// settlement passes.
type BetService struct {
	repo   *repository.BetRepository
	engine *settlement.Engine
	log    *zap.SugaredLogger
}

// NewBetService creates a new bet service
func NewBetService(repo *repository.BetRepository, engine *settlement.Engine, log *zap.SugaredLogger) *BetService {
	return &BetService{repo: repo, engine: engine, log: log}
}

// List returns bets filtered by status and user, newest first.
func (s *BetService) List(ctx context.Context, status, userID string, limit int) ([]*store.Bet, error) {
	if status != "" && status != store.BetStatusActive && status != store.BetStatusCompleted {
		return nil, fmt.Errorf("invalid status %q", status)
	}
	bets, err := s.repo.List(ctx, status, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing bets: %w", err)
	}
	return bets, nil
}

// Get returns a bet with its legs attached for parlays.
func (s *BetService) Get(ctx context.Context, betID string) (*store.Bet, error) {
	return s.repo.GetByID(ctx, betID)
}

// Resolve runs one settlement pass over all open bets.
func (s *BetService) Resolve(ctx context.Context) (*settlement.Summary, error) {
	summary, err := s.engine.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("settlement pass: %w", err)
	}

	metrics.SettlementOutcomes.WithLabelValues("settled").Add(float64(summary.Settled))
	metrics.SettlementOutcomes.WithLabelValues("live").Add(float64(summary.Live))
	metrics.SettlementOutcomes.WithLabelValues("pending").Add(float64(summary.Pending))
	metrics.SettlementOutcomes.WithLabelValues("error").Add(float64(summary.Errors))

	return summary, nil
}
