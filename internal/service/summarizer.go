package service

import (
	"context"
	"log"
	"strings"

	"github.com/hivemindhq/hivemind/internal/domain"
	"github.com/hivemindhq/hivemind/internal/telemetry"
)

// SummaryWriter defines the external capability for summary text generation
type SummaryWriter interface {
	CreateSummary(ctx context.Context, domainName, subtopic string, topics []domain.Topic) (string, error)
	MergeSummary(ctx context.Context, existingContent string, topics []domain.Topic, existingKeys []string) (*domain.MergeOutcome, error)
}

// SummarizerService produces and revises summary content from extractions.
// Merging never fails: when the external merge capability errors out, the
// new content is appended verbatim so nothing contributed is lost.
type SummarizerService struct {
	writer SummaryWriter
}

// NewSummarizerService creates a new SummarizerService instance
func NewSummarizerService(writer SummaryWriter) *SummarizerService {
	return &SummarizerService{writer: writer}
}

// Compose writes the first summary content for a new (domain, subtopic)
// pair. Unlike Merge there is no existing text to preserve, so a failure
// here falls back to the extracted information itself.
func (s *SummarizerService) Compose(ctx context.Context, extraction *domain.Extraction) string {
	ctx, span := telemetry.StartSpan(ctx, "SummarizerService.Compose", telemetry.SpanAttributes{
		Operation: "compose",
	})
	defer span.End()

	content, err := s.writer.CreateSummary(ctx, extraction.Domain, extraction.Subtopic, extraction.Topics)
	if err != nil {
		log.Printf("summarizer: compose failed for %s/%s, using extracted info: %v", extraction.Domain, extraction.Subtopic, err)
		span.SetError(err)
		return composeFromTopics(extraction.Topics)
	}
	return content
}

// Merge folds an extraction into an existing summary's content and
// classifies every incoming topic key as updated or newly added.
func (s *SummarizerService) Merge(ctx context.Context, summary *domain.Summary, extraction *domain.Extraction) *domain.MergeOutcome {
	ctx, span := telemetry.StartSpan(ctx, "SummarizerService.Merge", telemetry.SpanAttributes{
		SpaceID:   summary.SpaceID,
		SummaryID: summary.ID,
		Operation: "merge",
	})
	defer span.End()

	existingKeys := make([]string, 0, len(summary.TopicSources))
	for key := range summary.TopicSources {
		existingKeys = append(existingKeys, key)
	}

	outcome, err := s.writer.MergeSummary(ctx, summary.Content, extraction.Topics, existingKeys)
	if err != nil {
		log.Printf("summarizer: merge failed for summary %s, appending content: %v", summary.ID, err)
		span.SetError(err)
		return domain.FallbackMergeOutcome(summary.Content, composeFromTopics(extraction.Topics), extraction.TopicKeys())
	}

	reconcileOutcome(outcome, summary, extraction)
	return outcome
}

// composeFromTopics renders extracted information as plain text, used when
// the text-generation capability is unavailable.
func composeFromTopics(topics []domain.Topic) string {
	parts := make([]string, 0, len(topics))
	for _, t := range topics {
		parts = append(parts, t.Label+": "+t.Info)
	}
	return strings.Join(parts, "\n\n")
}

// reconcileOutcome makes the outcome's topic classification trustworthy
// regardless of what the merge capability returned: every incoming topic key
// ends up in exactly one of the two lists, and the existing summary decides
// which one.
func reconcileOutcome(outcome *domain.MergeOutcome, summary *domain.Summary, extraction *domain.Extraction) {
	updated := make([]string, 0, len(extraction.Topics))
	added := make([]string, 0, len(extraction.Topics))
	for _, key := range extraction.TopicKeys() {
		if _, exists := summary.TopicSources[key]; exists {
			updated = append(updated, key)
		} else {
			added = append(added, key)
		}
	}
	outcome.TopicsUpdated = updated
	outcome.NewTopicsAdded = added
}
