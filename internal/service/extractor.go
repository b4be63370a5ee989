package service

import (
	"context"
	"log"
	"strings"

	"github.com/hivemindhq/hivemind/internal/domain"
	"github.com/hivemindhq/hivemind/internal/telemetry"
)

// TopicExtractor defines the external capability for topic extraction
type TopicExtractor interface {
	ExtractTopics(ctx context.Context, content string, existingDomains []string) (*domain.Extraction, error)
}

// ExtractorService classifies entry content into a domain, subtopic and
// topic list. It never fails: sparse input and extraction errors both
// degrade to the low-confidence fallback extraction, which the confidence
// gate downstream filters out.
type ExtractorService struct {
	extractor TopicExtractor
}

// NewExtractorService creates a new ExtractorService instance
func NewExtractorService(extractor TopicExtractor) *ExtractorService {
	return &ExtractorService{extractor: extractor}
}

// Extract runs topic extraction over one entry's content. existingDomains
// are the domains already known in the entry's space, so extraction can fold
// new knowledge into them instead of fragmenting across near-duplicates.
func (s *ExtractorService) Extract(ctx context.Context, entry *domain.Entry, existingDomains []string) *domain.Extraction {
	ctx, span := telemetry.StartSpan(ctx, "ExtractorService.Extract", telemetry.SpanAttributes{
		SpaceID:   entry.SpaceID,
		EntryID:   entry.ID,
		Operation: "extract",
	})
	defer span.End()

	if len(strings.TrimSpace(entry.Content)) < domain.MinEntryLength {
		return domain.FallbackExtraction()
	}

	extraction, err := s.extractor.ExtractTopics(ctx, entry.Content, existingDomains)
	if err != nil {
		log.Printf("extractor: extraction failed for entry %s, using fallback: %v", entry.ID, err)
		span.SetError(err)
		return domain.FallbackExtraction()
	}

	extraction.Normalize()
	return extraction
}
