package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fortuna/augur/internal/service"
	"github.com/fortuna/augur/internal/sources/nbastats"
	"github.com/fortuna/augur/internal/store/repository"
)

// Orchestrator runs the recurring background tasks: settlement passes,
// slate refreshes, and the daily DvP/depth-chart recompute.
type Orchestrator struct {
	config *Config

	bets   *service.BetService
	slates *service.SlateService
	dvp    *service.DvPService
	charts *service.DepthChartService
	games  *repository.GameRepository

	log    *zap.SugaredLogger
	cancel context.CancelFunc
}

// Config holds scheduler configuration
type Config struct {
	SettlementInterval time.Duration // Default: 60s
	SlateInterval      time.Duration // Default: 60s
	DailyRefreshHour   int           // Default: 5 (5 AM, after west-coast finals)
	EnableSettlement   bool          // Default: true
	EnableSlateRefresh bool          // Default: true
	EnableDailyRefresh bool          // Default: true
	MaxRetries         int           // Default: 3
	RetryDelay         time.Duration // Default: 5s
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() *Config {
	return &Config{
		SettlementInterval: 60 * time.Second,
		SlateInterval:      60 * time.Second,
		DailyRefreshHour:   5,
		EnableSettlement:   true,
		EnableSlateRefresh: true,
		EnableDailyRefresh: true,
		MaxRetries:         3,
		RetryDelay:         5 * time.Second,
	}
}

// NewOrchestrator creates a new scheduler orchestrator
func NewOrchestrator(config *Config, bets *service.BetService, slates *service.SlateService, dvpSvc *service.DvPService, charts *service.DepthChartService, games *repository.GameRepository, log *zap.SugaredLogger) *Orchestrator {
	if config == nil {
		config = DefaultConfig()
	}

	return &Orchestrator{
		config: config,
		bets:   bets,
		slates: slates,
		dvp:    dvpSvc,
		charts: charts,
		games:  games,
		log:    log,
	}
}

// Start begins all scheduled tasks and blocks until the context ends.
func (o *Orchestrator) Start(ctx context.Context) {
	o.log.Infof("scheduler starting: settlement=%v (%v), slates=%v (%v), daily refresh=%v (at %02d:00)",
		o.config.EnableSettlement, o.config.SettlementInterval,
		o.config.EnableSlateRefresh, o.config.SlateInterval,
		o.config.EnableDailyRefresh, o.config.DailyRefreshHour)

	ctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	if o.config.EnableSettlement {
		go o.runSettlementLoop(ctx)
	}
	if o.config.EnableSlateRefresh {
		go o.runSlateLoop(ctx)
	}
	if o.config.EnableDailyRefresh {
		go o.runDailyRefresh(ctx)
	}

	<-ctx.Done()
	o.log.Info("scheduler stopping...")
}

// Stop gracefully stops the scheduler
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
}

// runSettlementLoop triggers settlement passes on a fixed interval.
func (o *Orchestrator) runSettlementLoop(ctx context.Context) {
	o.log.Infof("→ settlement polling started (interval: %v)", o.config.SettlementInterval)

	ticker := time.NewTicker(o.config.SettlementInterval)
	defer ticker.Stop()

	consecutiveErrors := 0

	// Run immediately on start
	o.settleWithRetry(ctx, &consecutiveErrors)

	for {
		select {
		case <-ctx.Done():
			o.log.Info("→ settlement polling stopped")
			return
		case <-ticker.C:
			o.settleWithRetry(ctx, &consecutiveErrors)
		}
	}
}

// settleWithRetry runs one settlement pass with the standard retry
// loop. Repeated full failures slow the cadence down so a dead upstream
// isn't hammered every tick.
func (o *Orchestrator) settleWithRetry(ctx context.Context, consecutiveErrors *int) {
	const maxConsecutiveErrors = 5

	var err error
	for attempt := 1; attempt <= o.config.MaxRetries; attempt++ {
		_, err = o.bets.Resolve(ctx)
		if err == nil {
			*consecutiveErrors = 0
			break
		}

		o.log.Warnf("⚠️ settlement attempt %d/%d failed: %v", attempt, o.config.MaxRetries, err)

		if attempt < o.config.MaxRetries {
			select {
			case <-ctx.Done():
				return
			case <-time.After(o.config.RetryDelay):
			}
		}
	}

	if err != nil {
		*consecutiveErrors++
		o.log.Warnf("⚠️ all %d settlement attempts failed (consecutive: %d/%d)",
			o.config.MaxRetries, *consecutiveErrors, maxConsecutiveErrors)

		if *consecutiveErrors >= maxConsecutiveErrors {
			o.log.Warn("⚠️ high settlement error rate, backing off 30s")
			select {
			case <-ctx.Done():
			case <-time.After(30 * time.Second):
			}
		}
	}
}

// runSlateLoop keeps today's slate cache and stream fresh.
func (o *Orchestrator) runSlateLoop(ctx context.Context) {
	o.log.Infof("→ slate refresh started (interval: %v)", o.config.SlateInterval)

	ticker := time.NewTicker(o.config.SlateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			o.log.Info("→ slate refresh stopped")
			return
		case <-ticker.C:
			if _, err := o.slates.Today(ctx); err != nil {
				o.log.Warnf("⚠️ slate refresh: %v", err)
			}
		}
	}
}

// runDailyRefresh recomputes depth charts and the league DvP tables once
// a day, then sweeps stuck game rows.
func (o *Orchestrator) runDailyRefresh(ctx context.Context) {
	o.log.Infof("→ daily refresh scheduled (runs at %02d:00)", o.config.DailyRefreshHour)

	for {
		now := time.Now()
		nextRun := time.Date(now.Year(), now.Month(), now.Day(), o.config.DailyRefreshHour, 0, 0, 0, now.Location())
		if now.After(nextRun) {
			nextRun = nextRun.Add(24 * time.Hour)
		}

		o.log.Infof("next daily refresh: %s (in %v)", nextRun.Format("2006-01-02 15:04:05"), time.Until(nextRun).Round(time.Second))

		select {
		case <-ctx.Done():
			o.log.Info("→ daily refresh stopped")
			return
		case <-time.After(time.Until(nextRun)):
			o.runDailyRefreshTask(ctx)
		}
	}
}

// runDailyRefreshTask performs the daily recompute.
func (o *Orchestrator) runDailyRefreshTask(ctx context.Context) {
	start := time.Now()
	o.log.Info("daily refresh starting")

	if o.charts != nil {
		if _, err := o.charts.Charts(ctx, true); err != nil {
			o.log.Warnf("⚠️ daily depth-chart refresh: %v", err)
		}
	}

	if o.dvp != nil {
		season := nbastats.CurrentSeasonStartYear(time.Now())
		tables, failed, err := o.dvp.League(ctx, season, 0, "pts", true)
		if err != nil {
			o.log.Warnf("⚠️ daily DvP refresh: %v", err)
		} else {
			o.log.Infof("✓ recomputed DvP for %d teams (%d failed)", len(tables), len(failed))
		}
	}

	if o.games != nil {
		if n, err := o.games.CleanupStale(ctx); err != nil {
			o.log.Warnf("⚠️ stale game sweep: %v", err)
		} else if n > 0 {
			o.log.Infof("✓ swept %d stale games", n)
		}
	}

	o.log.Infof("✓ daily refresh complete in %v", time.Since(start).Round(time.Second))
}

// Status returns current scheduler status for diagnostics.
func (o *Orchestrator) Status() map[string]interface{} {
	return map[string]interface{}{
		"settlement_enabled":  o.config.EnableSettlement,
		"settlement_interval": o.config.SettlementInterval.String(),
		"slates_enabled":      o.config.EnableSlateRefresh,
		"slate_interval":      o.config.SlateInterval.String(),
		"daily_enabled":       o.config.EnableDailyRefresh,
		"daily_refresh_hour":  o.config.DailyRefreshHour,
	}
}
