package backfill

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fortuna/augur/internal/sources/balldontlie"
	"github.com/fortuna/augur/internal/store"
	"github.com/fortuna/augur/internal/store/repository"
)

// Jobs longer than a season are almost certainly a typo and would pin
// the BDL rate limiter for hours.
const maxRangeDays = 366

// Request describes a backfill invocation.
type Request struct {
	StartDate time.Time
	EndDate   time.Time
}

// StatusSummary is returned to API callers.
type StatusSummary struct {
	ActiveJob *store.BackfillJob   `json:"active_job,omitempty"`
	History   []*store.BackfillJob `json:"recent_jobs,omitempty"`
}

// Service coordinates job persistence, execution, and status reporting.
// One worker goroutine executes jobs strictly one at a time.
type Service struct {
	repo   *Repository
	runner *Runner

	historyLimit int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	log *zap.SugaredLogger
}

// NewService constructs a Service. Call Start to launch the worker.
func NewService(db *store.Database, bdl *balldontlie.Client, log *zap.SugaredLogger) *Service {
	ctx, cancel := context.WithCancel(context.Background())

	return &Service{
		repo:         NewRepository(db),
		runner:       NewRunner(bdl, repository.NewGameRepository(db), repository.NewStatsRepository(db), log),
		historyLimit: 10,
		ctx:          ctx,
		cancel:       cancel,
		log:          log,
	}
}

// Start requeues jobs orphaned by a previous crash and launches the
// worker loop.
func (s *Service) Start() {
	if err := s.repo.ResetStuckJobs(s.ctx); err != nil {
		s.log.Warnf("⚠️ resetting stuck backfill jobs: %v", err)
	}

	s.wg.Add(1)
	go s.worker()
}

// Shutdown stops the worker and waits for it to finish.
func (s *Service) Shutdown(ctx context.Context) error {
	s.cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.wg.Wait()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// Enqueue creates a new queued job for a date range.
func (s *Service) Enqueue(ctx context.Context, req Request) (*store.BackfillJob, error) {
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return nil, fmt.Errorf("start_date and end_date are required")
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, fmt.Errorf("end_date is before start_date")
	}
	if int(req.EndDate.Sub(req.StartDate).Hours()/24) > maxRangeDays {
		return nil, fmt.Errorf("date range exceeds %d days", maxRangeDays)
	}

	job := &store.BackfillJob{
		ID:        uuid.NewString(),
		StartDate: truncateDate(req.StartDate),
		EndDate:   truncateDate(req.EndDate),
		Status:    store.JobStatusQueued,
	}

	stored, err := s.repo.CreateJob(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("creating backfill job: %w", err)
	}

	s.log.Infof("✓ queued backfill %s: %s to %s", stored.ID,
		stored.StartDate.Format("2006-01-02"), stored.EndDate.Format("2006-01-02"))
	return stored, nil
}

// Get returns one job by ID.
func (s *Service) Get(ctx context.Context, jobID string) (*store.BackfillJob, error) {
	return s.repo.GetJob(ctx, jobID)
}

// Cancel stops a queued or running job. Running jobs notice between
// days and exit without overwriting the cancelled status.
func (s *Service) Cancel(ctx context.Context, jobID string) error {
	cancelled, err := s.repo.CancelJob(ctx, jobID)
	if err != nil {
		return err
	}
	if !cancelled {
		return fmt.Errorf("job %s is not cancellable", jobID)
	}
	s.log.Infof("✓ cancelled backfill %s", jobID)
	return nil
}

// Status returns the currently running job plus recent history.
func (s *Service) Status(ctx context.Context) (*StatusSummary, error) {
	active, err := s.repo.GetActiveJob(ctx)
	if err != nil {
		return nil, err
	}

	history, err := s.repo.ListRecentJobs(ctx, s.historyLimit)
	if err != nil {
		return nil, err
	}

	return &StatusSummary{ActiveJob: active, History: history}, nil
}

func (s *Service) worker() {
	defer s.wg.Done()

	ticker := time.NewTicker(3 * time.Second)
	defer ticker.Stop()

	for {
		job, err := s.repo.MarkNextJobRunning(s.ctx)
		if err != nil {
			if s.ctx.Err() != nil {
				return
			}
			s.log.Warnf("⚠️ claiming backfill job: %v", err)
		}
		if job != nil {
			s.executeJob(job)
			continue
		}

		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Service) executeJob(job *store.BackfillJob) {
	report := func(gamesProcessed, statsUpserted int) {
		if err := s.repo.UpdateProgress(s.ctx, job.ID, gamesProcessed, statsUpserted); err != nil {
			s.log.Warnf("⚠️ updating backfill progress: %v", err)
		}
	}
	cancelled := func() bool {
		current, err := s.repo.GetJob(s.ctx, job.ID)
		if err != nil {
			return false
		}
		return current.Status == store.JobStatusCancelled
	}

	err := s.runner.Run(s.ctx, job, report, cancelled)
	switch {
	case errors.Is(err, errCancelled):
		s.log.Infof("backfill %s cancelled", job.ID)
	case err != nil:
		s.log.Warnf("⚠️ backfill %s failed: %v", job.ID, err)
		if uerr := s.repo.UpdateStatus(s.ctx, job.ID, store.JobStatusFailed, err); uerr != nil {
			s.log.Warnf("⚠️ marking backfill failed: %v", uerr)
		}
	default:
		s.log.Infof("✓ backfill %s completed", job.ID)
		if uerr := s.repo.UpdateStatus(s.ctx, job.ID, store.JobStatusCompleted, nil); uerr != nil {
			s.log.Warnf("⚠️ marking backfill completed: %v", uerr)
		}
	}
}

func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
