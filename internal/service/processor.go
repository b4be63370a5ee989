package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hivemindhq/hivemind/internal/domain"
	"github.com/hivemindhq/hivemind/internal/pagination"
	"github.com/hivemindhq/hivemind/internal/telemetry"
)

// maxMergeAttempts bounds the re-read/re-merge loop used when concurrent
// processors race on the same summary.
const maxMergeAttempts = 3

// SummaryRepositoryInterface defines the repository interface for summary persistence
type SummaryRepositoryInterface interface {
	Create(ctx context.Context, s *domain.Summary) error
	GetByID(ctx context.Context, spaceID, id string) (*domain.Summary, error)
	ListBySpace(ctx context.Context, spaceID string) ([]*domain.Summary, error)
	ListBySpaceWithCursor(ctx context.Context, spaceID string, cursor *pagination.Cursor, limit int) (*SummaryPageResult, error)
	UpdateVersioned(ctx context.Context, s *domain.Summary, expectedVersion int64) error
	ListDomains(ctx context.Context, spaceID string) ([]string, error)
}

type SummaryPageResult struct {
	Items      []*domain.Summary
	NextCursor string
	HasMore    bool
}

// ProcessResult reports what happened to a single entry in the pipeline.
type ProcessResult struct {
	Success        bool     `json:"success"`
	EntryID        string   `json:"entry_id"`
	Domain         string   `json:"domain,omitempty"`
	Subtopic       string   `json:"subtopic,omitempty"`
	Confidence     float64  `json:"confidence"`
	Skipped        bool     `json:"skipped,omitempty"`
	SummaryID      string   `json:"summary_id,omitempty"`
	SummaryCreated bool     `json:"summary_created,omitempty"`
	TopicsUpdated  []string `json:"topics_updated,omitempty"`
	NewTopicsAdded []string `json:"new_topics_added,omitempty"`
	Warning        string   `json:"warning,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// BatchResult aggregates the outcomes of a sequential batch run.
type BatchResult struct {
	Results   []*ProcessResult `json:"results"`
	Processed int              `json:"processed"`
	Failed    int              `json:"failed"`
}

// ProcessorService drives the full ingestion pipeline for an entry:
// extraction, the confidence gate, then summary creation or merge with
// provenance bookkeeping. A failure in any stage degrades the single entry's
// result, never the pipeline.
type ProcessorService struct {
	extractor   *ExtractorService
	summarizer  *SummarizerService
	summaryRepo SummaryRepositoryInterface
}

// NewProcessorService creates a new ProcessorService instance
func NewProcessorService(extractor *ExtractorService, summarizer *SummarizerService, summaryRepo SummaryRepositoryInterface) *ProcessorService {
	return &ProcessorService{
		extractor:   extractor,
		summarizer:  summarizer,
		summaryRepo: summaryRepo,
	}
}

// Process runs one entry through the pipeline. It always returns a result;
// failures are reported in the result rather than as an error so that batch
// callers can keep going.
func (s *ProcessorService) Process(ctx context.Context, entry *domain.Entry) *ProcessResult {
	ctx, span := telemetry.StartSpan(ctx, "ProcessorService.Process", telemetry.SpanAttributes{
		SpaceID:   entry.SpaceID,
		EntryID:   entry.ID,
		Operation: "process",
	})
	defer span.End()

	// Known domains steer extraction toward reusing established categories.
	// Losing the list only degrades classification, so a lookup failure is
	// logged and the entry still goes through.
	knownDomains, err := s.summaryRepo.ListDomains(ctx, entry.SpaceID)
	if err != nil {
		log.Printf("processor: listing domains for space %s failed, extracting without them: %v", entry.SpaceID, err)
		span.SetError(err)
		knownDomains = nil
	}

	extraction := s.extractor.Extract(ctx, entry, knownDomains)

	result := &ProcessResult{
		EntryID:    entry.ID,
		Domain:     extraction.Domain,
		Subtopic:   extraction.Subtopic,
		Confidence: extraction.Confidence,
	}

	// Below the confidence gate the entry stays stored but contributes
	// nothing to the knowledge base.
	if !extraction.Qualifies() || len(extraction.Topics) == 0 {
		result.Success = true
		result.Skipped = true
		return result
	}

	summaryID := domain.NewSummaryID(extraction.Domain, extraction.Subtopic)
	result.SummaryID = summaryID

	for attempt := 0; attempt < maxMergeAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			result.Error = err.Error()
			return result
		}

		existing, err := s.summaryRepo.GetByID(ctx, entry.SpaceID, summaryID)
		switch {
		case err == domain.ErrSummaryNotFound:
			created, createErr := s.createSummary(ctx, entry, extraction)
			if createErr == domain.ErrSummaryAlreadyExists {
				// Lost the creation race; re-read and merge instead.
				continue
			}
			if createErr != nil {
				span.SetError(createErr)
				result.Error = createErr.Error()
				return result
			}
			result.Success = true
			result.SummaryCreated = true
			result.TopicsUpdated = []string{}
			result.NewTopicsAdded = extraction.TopicKeys()
			result.Warning = splitWarning(created)
			return result

		case err != nil:
			span.SetError(err)
			result.Error = err.Error()
			return result
		}

		outcome := s.summarizer.Merge(ctx, existing, extraction)

		updated, updateErr := s.applyMerge(ctx, existing, entry, outcome)
		if updateErr == domain.ErrVersionConflict {
			// A concurrent merge won; retry against the fresh version.
			continue
		}
		if updateErr != nil {
			span.SetError(updateErr)
			result.Error = updateErr.Error()
			return result
		}

		result.Success = true
		result.TopicsUpdated = outcome.TopicsUpdated
		result.NewTopicsAdded = outcome.NewTopicsAdded
		result.Warning = splitWarning(updated)
		return result
	}

	result.Error = fmt.Sprintf("summary %s contended beyond %d attempts", summaryID, maxMergeAttempts)
	return result
}

// createSummary writes the first version of a summary for the extraction's
// (domain, subtopic) pair.
func (s *ProcessorService) createSummary(ctx context.Context, entry *domain.Entry, extraction *domain.Extraction) (*domain.Summary, error) {
	content := s.summarizer.Compose(ctx, extraction)
	summary := domain.NewSummary(
		entry.SpaceID,
		extraction.Domain,
		extraction.Subtopic,
		content,
		entry.ID,
		extraction.TopicKeys(),
		time.Now().UTC(),
	)
	if err := s.summaryRepo.Create(ctx, summary); err != nil {
		return nil, err
	}
	return summary, nil
}

// applyMerge folds a merge outcome into the summary and persists it with a
// conditional write on the version read before merging.
func (s *ProcessorService) applyMerge(ctx context.Context, summary *domain.Summary, entry *domain.Entry, outcome *domain.MergeOutcome) (*domain.Summary, error) {
	expected := summary.Version

	summary.Content = outcome.UpdatedContent
	for _, key := range outcome.TopicsUpdated {
		summary.AddTopicSource(key, entry.ID)
	}
	for _, key := range outcome.NewTopicsAdded {
		summary.AddTopicSource(key, entry.ID)
	}
	summary.AddContributingEntry(entry.ID)
	summary.Version = expected + 1
	summary.LastUpdated = time.Now().UTC()

	if err := s.summaryRepo.UpdateVersioned(ctx, summary, expected); err != nil {
		return nil, err
	}
	return summary, nil
}

// ProcessBatch runs entries through the pipeline sequentially with a pause
// between them. One entry's failure never stops the batch.
func (s *ProcessorService) ProcessBatch(ctx context.Context, entries []*domain.Entry, delay time.Duration) *BatchResult {
	batch := &BatchResult{Results: make([]*ProcessResult, 0, len(entries))}

	for i, entry := range entries {
		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				return batch
			case <-time.After(delay):
			}
		}

		result := s.Process(ctx, entry)
		batch.Results = append(batch.Results, result)
		if result.Success {
			batch.Processed++
		} else {
			batch.Failed++
		}
	}

	return batch
}

// splitWarning returns the advisory oversize warning, or empty.
func splitWarning(s *domain.Summary) string {
	if s == nil || !s.NeedsSplit() {
		return ""
	}
	return fmt.Sprintf(
		"summary %s has grown large (%d words, %d topics); consider splitting it into narrower subtopics",
		s.ID, s.WordCount(), s.TopicCount(),
	)
}
