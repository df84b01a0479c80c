package backfill

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fortuna/augur/internal/store"
)

// Repository handles persistence for backfill jobs.
type Repository struct {
	db *store.Database
}

// NewRepository constructs a Repository.
func NewRepository(db *store.Database) *Repository {
	return &Repository{db: db}
}

const jobColumns = `id, start_date, end_date, status, games_processed, stats_upserted,
	last_error, created_at, started_at, completed_at`

// CreateJob inserts a new job row and returns the stored record.
func (r *Repository) CreateJob(ctx context.Context, job *store.BackfillJob) (*store.BackfillJob, error) {
	query := `
		INSERT INTO backfill_jobs (id, start_date, end_date, status)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + jobColumns

	row := r.db.DB().QueryRowContext(ctx, query, job.ID, job.StartDate, job.EndDate, job.Status)
	return scanJob(row)
}

// GetJob finds a job by ID.
func (r *Repository) GetJob(ctx context.Context, jobID string) (*store.BackfillJob, error) {
	query := `SELECT ` + jobColumns + ` FROM backfill_jobs WHERE id = $1`

	job, err := scanJob(r.db.DB().QueryRowContext(ctx, query, jobID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("backfill job not found: %s", jobID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying backfill job: %w", err)
	}
	return job, nil
}

// UpdateStatus moves a job through its lifecycle, stamping completion
// for terminal states.
func (r *Repository) UpdateStatus(ctx context.Context, jobID, status string, lastErr error) error {
	query := `
		UPDATE backfill_jobs
		SET status = $2::text,
			last_error = $3,
			completed_at = CASE WHEN $2::text IN ('completed','failed','cancelled') THEN NOW() ELSE completed_at END
		WHERE id = $1
	`

	var errText sql.NullString
	if lastErr != nil {
		errText = sql.NullString{String: lastErr.Error(), Valid: true}
	}

	if _, err := r.db.DB().ExecContext(ctx, query, jobID, status, errText); err != nil {
		return fmt.Errorf("updating job status: %w", err)
	}
	return nil
}

// UpdateProgress updates the cumulative counters.
func (r *Repository) UpdateProgress(ctx context.Context, jobID string, gamesProcessed, statsUpserted int) error {
	query := `
		UPDATE backfill_jobs
		SET games_processed = $2,
			stats_upserted = $3
		WHERE id = $1
	`

	if _, err := r.db.DB().ExecContext(ctx, query, jobID, gamesProcessed, statsUpserted); err != nil {
		return fmt.Errorf("updating job progress: %w", err)
	}
	return nil
}

// ResetStuckJobs moves running jobs back to queued (used during service
// restarts).
func (r *Repository) ResetStuckJobs(ctx context.Context) error {
	_, err := r.db.DB().ExecContext(ctx, `
		UPDATE backfill_jobs
		SET status = 'queued', started_at = NULL
		WHERE status = 'running'
	`)
	if err != nil {
		return fmt.Errorf("resetting stuck jobs: %w", err)
	}
	return nil
}

// MarkNextJobRunning atomically claims the oldest queued job.
func (r *Repository) MarkNextJobRunning(ctx context.Context) (*store.BackfillJob, error) {
	query := `
		WITH next_job AS (
			SELECT id
			FROM backfill_jobs
			WHERE status = 'queued'
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		UPDATE backfill_jobs
		SET status = 'running',
			started_at = COALESCE(backfill_jobs.started_at, NOW())
		FROM next_job
		WHERE backfill_jobs.id = next_job.id
		RETURNING backfill_jobs.id, backfill_jobs.start_date, backfill_jobs.end_date,
			backfill_jobs.status, backfill_jobs.games_processed, backfill_jobs.stats_upserted,
			backfill_jobs.last_error, backfill_jobs.created_at,
			backfill_jobs.started_at, backfill_jobs.completed_at
	`

	job, err := scanJob(r.db.DB().QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("claiming next job: %w", err)
	}
	return job, nil
}

// CancelJob stamps a queued or running job cancelled. Returns false when
// the job is already terminal.
func (r *Repository) CancelJob(ctx context.Context, jobID string) (bool, error) {
	query := `
		UPDATE backfill_jobs
		SET status = 'cancelled', completed_at = NOW()
		WHERE id = $1 AND status IN ('queued', 'running')
	`

	res, err := r.db.DB().ExecContext(ctx, query, jobID)
	if err != nil {
		return false, fmt.Errorf("cancelling job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("cancelling job: %w", err)
	}
	return affected > 0, nil
}

// GetActiveJob returns the currently running job, if any.
func (r *Repository) GetActiveJob(ctx context.Context) (*store.BackfillJob, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM backfill_jobs
		WHERE status = 'running'
		ORDER BY started_at DESC
		LIMIT 1
	`

	job, err := scanJob(r.db.DB().QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying active job: %w", err)
	}
	return job, nil
}

// ListRecentJobs returns the most recent jobs, newest first.
func (r *Repository) ListRecentJobs(ctx context.Context, limit int) ([]*store.BackfillJob, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM backfill_jobs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.DB().QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*store.BackfillJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func scanJob(scanner interface {
	Scan(dest ...interface{}) error
}) (*store.BackfillJob, error) {
	job := &store.BackfillJob{}
	err := scanner.Scan(
		&job.ID,
		&job.StartDate,
		&job.EndDate,
		&job.Status,
		&job.GamesProcessed,
		&job.StatsUpserted,
		&job.LastError,
		&job.CreatedAt,
		&job.StartedAt,
		&job.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return job, nil
}
