package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/hivemindhq/hivemind/internal/domain"
	"github.com/hivemindhq/hivemind/internal/service"
)

const (
	// MaxRetries is the maximum number of retries for a failed job
	MaxRetries = 3

	// DefaultBatchDelay is the pause between entries when draining a batch
	// of claimed jobs, keeping pressure off the extraction capability.
	DefaultBatchDelay = 500 * time.Millisecond
)

// ExtractionJobRepository defines the interface for extraction job persistence
type ExtractionJobRepository interface {
	// ClaimPending retrieves and claims pending extraction jobs
	ClaimPending(ctx context.Context, limit int) ([]*domain.ExtractionJob, error)

	// UpdateStatus updates the status of an extraction job
	UpdateStatus(ctx context.Context, jobID string, status domain.ExtractionJobStatus, errMsg string) error

	// IncrementRetries increments the retry count for a job
	IncrementRetries(ctx context.Context, jobID string) error
}

// EntryFetcher resolves a claimed job's entry
type EntryFetcher interface {
	GetByID(ctx context.Context, spaceID, id string) (*domain.Entry, error)
}

// EntryPipeline runs one entry through extraction and summarization
type EntryPipeline interface {
	Process(ctx context.Context, entry *domain.Entry) *service.ProcessResult
}

// ExtractionWorker drains extraction jobs: each claimed job's entry goes
// through the pipeline sequentially, with a delay between entries.
type ExtractionWorker struct {
	repo      ExtractionJobRepository
	entries   EntryFetcher
	pipeline  EntryPipeline
	batchSize int
	delay     time.Duration
}

// NewExtractionWorker creates a new ExtractionWorker instance
func NewExtractionWorker(repo ExtractionJobRepository, entries EntryFetcher, pipeline EntryPipeline, batchSize int, delay time.Duration) *ExtractionWorker {
	if batchSize <= 0 {
		batchSize = 50
	}
	if delay < 0 {
		delay = DefaultBatchDelay
	}
	return &ExtractionWorker{
		repo:      repo,
		entries:   entries,
		pipeline:  pipeline,
		batchSize: batchSize,
		delay:     delay,
	}
}

// ProcessJobs implements the JobProcessor interface
func (w *ExtractionWorker) ProcessJobs(ctx context.Context) error {
	jobs, err := w.repo.ClaimPending(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("failed to claim pending jobs: %w", err)
	}

	if len(jobs) == 0 {
		return nil
	}

	log.Printf("Processing %d pending extraction jobs", len(jobs))

	for i, job := range jobs {
		if i > 0 && w.delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(w.delay):
			}
		}

		if err := w.processJob(ctx, job); err != nil {
			log.Printf("Error processing job %s: %v", job.ID, err)
		}
	}

	return nil
}

func (w *ExtractionWorker) processJob(ctx context.Context, job *domain.ExtractionJob) error {
	entry, err := w.entries.GetByID(ctx, job.SpaceID, job.EntryID)
	if err != nil {
		if errors.Is(err, domain.ErrEntryNotFound) {
			// The entry is gone; retrying will never help.
			return w.repo.UpdateStatus(ctx, job.ID, domain.ExtractionJobStatusFailed, "entry no longer exists")
		}
		return w.handleJobFailure(ctx, job, err)
	}

	result := w.pipeline.Process(ctx, entry)
	if !result.Success {
		return w.handleJobFailure(ctx, job, errors.New(result.Error))
	}

	if result.Warning != "" {
		log.Printf("Job %s: %s", job.ID, result.Warning)
	}

	if err := w.repo.UpdateStatus(ctx, job.ID, domain.ExtractionJobStatusCompleted, ""); err != nil {
		return fmt.Errorf("failed to update job status to completed: %w", err)
	}

	log.Printf("Job %s completed for entry %s", job.ID, job.EntryID)
	return nil
}

// handleJobFailure handles a failed job with retry logic
func (w *ExtractionWorker) handleJobFailure(ctx context.Context, job *domain.ExtractionJob, jobErr error) error {
	log.Printf("Job %s failed: %v", job.ID, jobErr)

	if err := w.repo.IncrementRetries(ctx, job.ID); err != nil {
		return fmt.Errorf("failed to increment retries: %w", err)
	}

	if job.Retries+1 >= MaxRetries {
		log.Printf("Job %s exceeded max retries (%d), marking as failed", job.ID, MaxRetries)
		errMsg := fmt.Sprintf("max retries exceeded: %v", jobErr)
		if err := w.repo.UpdateStatus(ctx, job.ID, domain.ExtractionJobStatusFailed, errMsg); err != nil {
			return fmt.Errorf("failed to update job status to failed: %w", err)
		}
		return nil
	}

	log.Printf("Job %s will be retried (attempt %d/%d)", job.ID, job.Retries+1, MaxRetries)
	errMsg := fmt.Sprintf("retry %d: %v", job.Retries+1, jobErr)
	if err := w.repo.UpdateStatus(ctx, job.ID, domain.ExtractionJobStatusPending, errMsg); err != nil {
		return fmt.Errorf("failed to reset job status to pending: %w", err)
	}
	return nil
}
