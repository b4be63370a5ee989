package service

import (
	"context"

	"github.com/hivemindhq/hivemind/internal/domain"
	"github.com/hivemindhq/hivemind/internal/pagination"
	"github.com/hivemindhq/hivemind/internal/telemetry"
)

// SummaryService handles read access to accumulated summaries
type SummaryService struct {
	summaryRepo SummaryRepositoryInterface
}

// NewSummaryService creates a new SummaryService instance
func NewSummaryService(summaryRepo SummaryRepositoryInterface) *SummaryService {
	return &SummaryService{summaryRepo: summaryRepo}
}

type ListSummariesInput struct {
	SpaceID string
	Cursor  string
	Limit   int
}

type ListSummariesOutput struct {
	Items   []*domain.Summary
	Cursor  string
	HasMore bool
}

// GetByID retrieves a summary by ID within a space
func (s *SummaryService) GetByID(ctx context.Context, spaceID, id string) (*domain.Summary, error) {
	ctx, span := telemetry.StartSpan(ctx, "SummaryService.GetByID", telemetry.SpanAttributes{
		SpaceID:   spaceID,
		SummaryID: id,
		Operation: "get",
	})
	defer span.End()

	return s.summaryRepo.GetByID(ctx, spaceID, id)
}

// List retrieves summaries for a space with cursor pagination
func (s *SummaryService) List(ctx context.Context, input ListSummariesInput) (*ListSummariesOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "SummaryService.List", telemetry.SpanAttributes{
		SpaceID:   input.SpaceID,
		Operation: "list",
	})
	defer span.End()

	cursor, err := pagination.DecodeCursor(input.Cursor)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
	}

	limit := input.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	page, err := s.summaryRepo.ListBySpaceWithCursor(ctx, input.SpaceID, cursor, limit)
	if err != nil {
		return nil, err
	}

	return &ListSummariesOutput{
		Items:   page.Items,
		Cursor:  page.NextCursor,
		HasMore: page.HasMore,
	}, nil
}

// ListDomains returns the distinct domains present in a space's summaries
func (s *SummaryService) ListDomains(ctx context.Context, spaceID string) ([]string, error) {
	return s.summaryRepo.ListDomains(ctx, spaceID)
}
