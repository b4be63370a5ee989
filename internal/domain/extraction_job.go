package domain

import (
	"fmt"
	"time"
)

// ExtractionJobStatus represents the status of an extraction job
type ExtractionJobStatus string

const (
	ExtractionJobStatusPending    ExtractionJobStatus = "pending"
	ExtractionJobStatusProcessing ExtractionJobStatus = "processing"
	ExtractionJobStatusCompleted  ExtractionJobStatus = "completed"
	ExtractionJobStatusFailed     ExtractionJobStatus = "failed"
)

// ExtractionJob represents an async entry-extraction job picked up by the
// ingestion worker.
type ExtractionJob struct {
	ID          string
	SpaceID     string
	EntryID     string
	Status      ExtractionJobStatus
	Retries     int32
	Error       string
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// NewExtractionJob creates a new ExtractionJob instance
func NewExtractionJob(
	id, spaceID, entryID string,
	status ExtractionJobStatus,
	retries int32,
	errMsg string,
	createdAt time.Time,
	processedAt *time.Time,
) *ExtractionJob {
	return &ExtractionJob{
		ID:          id,
		SpaceID:     spaceID,
		EntryID:     entryID,
		Status:      status,
		Retries:     retries,
		Error:       errMsg,
		CreatedAt:   createdAt,
		ProcessedAt: processedAt,
	}
}

// ValidateExtractionJob validates an ExtractionJob instance
func ValidateExtractionJob(j *ExtractionJob) error {
	if j == nil {
		return fmt.Errorf("extraction job cannot be nil")
	}

	if j.ID == "" {
		return fmt.Errorf("extraction job ID is required")
	}

	if j.SpaceID == "" {
		return fmt.Errorf("extraction job SpaceID is required")
	}

	if j.EntryID == "" {
		return fmt.Errorf("extraction job EntryID is required")
	}

	if !isValidExtractionJobStatus(j.Status) {
		return fmt.Errorf("extraction job Status is invalid: %s", j.Status)
	}

	if j.Retries < 0 {
		return fmt.Errorf("extraction job Retries cannot be negative")
	}

	return nil
}

// isValidExtractionJobStatus checks if an ExtractionJobStatus is valid
func isValidExtractionJobStatus(s ExtractionJobStatus) bool {
	switch s {
	case ExtractionJobStatusPending, ExtractionJobStatusProcessing,
		ExtractionJobStatusCompleted, ExtractionJobStatusFailed:
		return true
	}
	return false
}
