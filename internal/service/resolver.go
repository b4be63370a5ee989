package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/hivemindhq/hivemind/internal/domain"
	"github.com/hivemindhq/hivemind/internal/telemetry"
)

// AnswerSynthesizer defines the external capability for answer synthesis
type AnswerSynthesizer interface {
	SynthesizeAnswer(ctx context.Context, query string, summaries []domain.SummaryContext) (*domain.AnswerOutcome, error)
}

// QueryLogRepositoryInterface defines the repository interface for query log persistence
type QueryLogRepositoryInterface interface {
	Create(ctx context.Context, r *domain.QueryResult) error
}

// ResolverService answers queries from stored summaries and resolves every
// answer back to the original entries it was built from.
type ResolverService struct {
	summaryRepo SummaryRepositoryInterface
	entryRepo   EntryRepositoryInterface
	queryLog    QueryLogRepositoryInterface
	synthesizer AnswerSynthesizer
	uuidGen     UUIDGenerator
}

// NewResolverService creates a new ResolverService instance
func NewResolverService(
	summaryRepo SummaryRepositoryInterface,
	entryRepo EntryRepositoryInterface,
	queryLog QueryLogRepositoryInterface,
	synthesizer AnswerSynthesizer,
) *ResolverService {
	return &ResolverService{
		summaryRepo: summaryRepo,
		entryRepo:   entryRepo,
		queryLog:    queryLog,
		synthesizer: synthesizer,
		uuidGen:     &DefaultUUIDGenerator{},
	}
}

// NewResolverServiceWithUUIDGen creates a new ResolverService with custom UUID generator (for testing)
func NewResolverServiceWithUUIDGen(
	summaryRepo SummaryRepositoryInterface,
	entryRepo EntryRepositoryInterface,
	queryLog QueryLogRepositoryInterface,
	synthesizer AnswerSynthesizer,
	uuidGen UUIDGenerator,
) *ResolverService {
	return &ResolverService{
		summaryRepo: summaryRepo,
		entryRepo:   entryRepo,
		queryLog:    queryLog,
		synthesizer: synthesizer,
		uuidGen:     uuidGen,
	}
}

// Resolve answers a query against a space's knowledge base.
func (s *ResolverService) Resolve(ctx context.Context, spaceID, query string) (*domain.QueryResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "ResolverService.Resolve", telemetry.SpanAttributes{
		SpaceID:   spaceID,
		Operation: "resolve",
	})
	defer span.End()

	if strings.TrimSpace(query) == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "query is required")
	}

	result := &domain.QueryResult{
		ID:               s.uuidGen.NewString(),
		SpaceID:          spaceID,
		Query:            query,
		SummariesUsed:    []string{},
		TopicsReferenced: map[string][]string{},
		OriginalEntries:  []string{},
		EntryDetails:     []domain.EntrySource{},
		CreatedAt:        time.Now().UTC(),
	}

	summaries, err := s.summaryRepo.ListBySpace(ctx, spaceID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	// An empty knowledge base short-circuits without a synthesis call.
	if len(summaries) == 0 {
		result.InsufficientInfo = true
		s.record(ctx, result)
		return result, nil
	}

	selected := selectSummaries(query, summaries)
	byID := make(map[string]*domain.Summary, len(selected))
	contexts := make([]domain.SummaryContext, 0, len(selected))
	for _, sum := range selected {
		byID[sum.ID] = sum
		keys := make([]string, 0, len(sum.TopicSources))
		for key := range sum.TopicSources {
			keys = append(keys, key)
		}
		contexts = append(contexts, domain.SummaryContext{
			SummaryID: sum.ID,
			Domain:    sum.Domain,
			Subtopic:  sum.Subtopic,
			Content:   sum.Content,
			Topics:    keys,
		})
	}

	outcome, err := s.synthesizer.SynthesizeAnswer(ctx, query, contexts)
	if err != nil {
		log.Printf("resolver: answer synthesis failed for space %s: %v", spaceID, err)
		span.SetError(err)
		outcome = domain.InsufficientAnswerOutcome()
	}

	result.Answer = outcome.Answer
	result.Confidence = outcome.Confidence
	result.InsufficientInfo = outcome.InsufficientInfo

	s.resolveProvenance(ctx, result, outcome, byID)

	s.record(ctx, result)
	return result, nil
}

// resolveProvenance maps the cited summaries and topic keys back to the
// entries that contributed them, fetching entry details and substituting
// placeholders for entries that no longer exist.
func (s *ResolverService) resolveProvenance(ctx context.Context, result *domain.QueryResult, outcome *domain.AnswerOutcome, byID map[string]*domain.Summary) {
	entryIDs := make([]string, 0)
	seen := make(map[string]struct{})

	for _, summaryID := range outcome.SummariesUsed {
		summary, ok := byID[summaryID]
		if !ok {
			// Synthesis cited a summary it was never given; drop it.
			continue
		}
		result.SummariesUsed = append(result.SummariesUsed, summaryID)

		keys := outcome.TopicsReferenced[summaryID]
		if len(keys) == 0 {
			// No topic-level citation; fall back to the whole summary's
			// contributing entries.
			for _, id := range summary.ContributingEntries {
				if _, dup := seen[id]; !dup {
					seen[id] = struct{}{}
					entryIDs = append(entryIDs, id)
				}
			}
			continue
		}

		cited := make([]string, 0, len(keys))
		for _, key := range keys {
			ids, known := summary.TopicSources[key]
			if !known {
				continue
			}
			cited = append(cited, key)
			for _, id := range ids {
				if _, dup := seen[id]; !dup {
					seen[id] = struct{}{}
					entryIDs = append(entryIDs, id)
				}
			}
		}
		if len(cited) > 0 {
			result.TopicsReferenced[summaryID] = cited
		}
	}

	result.OriginalEntries = entryIDs
	if len(entryIDs) == 0 {
		return
	}

	entries, err := s.entryRepo.GetByIDs(ctx, result.SpaceID, entryIDs)
	if err != nil {
		log.Printf("resolver: failed to fetch source entries for space %s: %v", result.SpaceID, err)
		entries = nil
	}

	found := make(map[string]*domain.Entry, len(entries))
	for _, e := range entries {
		found[e.ID] = e
	}

	for _, id := range entryIDs {
		entry, ok := found[id]
		if !ok {
			result.EntryDetails = append(result.EntryDetails, domain.PlaceholderEntrySource(id))
			continue
		}
		result.EntryDetails = append(result.EntryDetails, domain.EntrySource{
			EntryID:     entry.ID,
			Content:     entry.Content,
			SourceType:  entry.SourceType,
			Contributor: entry.Contributor,
			CreatedAt:   entry.CreatedAt,
		})
	}
}

// record persists the query log entry. Logging failures are not fatal to
// the query itself.
func (s *ResolverService) record(ctx context.Context, result *domain.QueryResult) {
	if s.queryLog == nil {
		return
	}
	if err := s.queryLog.Create(ctx, result); err != nil {
		log.Printf("resolver: failed to record query %s: %v", result.ID, err)
	}
}
