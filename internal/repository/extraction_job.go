package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hivemindhq/hivemind/internal/domain"
)

type ExtractionJobRepository struct {
	db dbtx
}

func NewExtractionJobRepository(pool *pgxpool.Pool) *ExtractionJobRepository {
	return &ExtractionJobRepository{db: pool}
}

func NewExtractionJobRepositoryWithTx(tx pgx.Tx) *ExtractionJobRepository {
	return &ExtractionJobRepository{db: tx}
}

func (r *ExtractionJobRepository) Create(ctx context.Context, job *domain.ExtractionJob) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO extraction_jobs (id, space_id, entry_id, status, retries, error, created_at, processed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		job.ID, job.SpaceID, job.EntryID, job.Status, job.Retries, nullableString(job.Error), job.CreatedAt, job.ProcessedAt,
	)
	return err
}

func (r *ExtractionJobRepository) GetByID(ctx context.Context, id string) (*domain.ExtractionJob, error) {
	var job domain.ExtractionJob
	var errMsg pgtype.Text
	err := r.db.QueryRow(ctx,
		`SELECT id, space_id, entry_id, status, retries, error, created_at, processed_at
		 FROM extraction_jobs WHERE id = $1`,
		id,
	).Scan(&job.ID, &job.SpaceID, &job.EntryID, &job.Status, &job.Retries, &errMsg, &job.CreatedAt, &job.ProcessedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, err
	}
	if errMsg.Valid {
		job.Error = errMsg.String
	}
	return &job, nil
}

// ClaimPending atomically moves up to limit pending jobs to processing and
// returns them, oldest first. Skip-locked keeps concurrent workers from
// claiming the same jobs.
func (r *ExtractionJobRepository) ClaimPending(ctx context.Context, limit int) ([]*domain.ExtractionJob, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(ctx,
		`WITH cte AS (
			 SELECT id
			 FROM extraction_jobs
			 WHERE status = $1
			 ORDER BY created_at ASC
			 FOR UPDATE SKIP LOCKED
			 LIMIT $2
		 )
		 UPDATE extraction_jobs
		 SET status = $3,
		     error = NULL,
		     processed_at = NULL
		 FROM cte
		 WHERE extraction_jobs.id = cte.id
		 RETURNING extraction_jobs.id, extraction_jobs.space_id, extraction_jobs.entry_id, extraction_jobs.status,
		           extraction_jobs.retries, extraction_jobs.error, extraction_jobs.created_at, extraction_jobs.processed_at`,
		domain.ExtractionJobStatusPending, limit, domain.ExtractionJobStatusProcessing,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*domain.ExtractionJob
	for rows.Next() {
		var job domain.ExtractionJob
		var errMsg pgtype.Text
		if err := rows.Scan(&job.ID, &job.SpaceID, &job.EntryID, &job.Status, &job.Retries, &errMsg, &job.CreatedAt, &job.ProcessedAt); err != nil {
			return nil, err
		}
		if errMsg.Valid {
			job.Error = errMsg.String
		}
		jobs = append(jobs, &job)
	}
	return jobs, rows.Err()
}

func (r *ExtractionJobRepository) UpdateStatus(ctx context.Context, id string, status domain.ExtractionJobStatus, errMsg string) error {
	var processedAt *time.Time
	if status == domain.ExtractionJobStatusCompleted || status == domain.ExtractionJobStatusFailed {
		now := time.Now().UTC()
		processedAt = &now
	}

	cmdTag, err := r.db.Exec(ctx,
		`UPDATE extraction_jobs SET status = $1, error = $2, processed_at = $3 WHERE id = $4`,
		status, nullableString(errMsg), processedAt, id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}

func (r *ExtractionJobRepository) IncrementRetries(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE extraction_jobs SET retries = retries + 1 WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}

// ResetToPending requeues a failed or stuck job.
func (r *ExtractionJobRepository) ResetToPending(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE extraction_jobs SET status = $1, error = NULL, processed_at = NULL WHERE id = $2`,
		domain.ExtractionJobStatusPending, id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}
