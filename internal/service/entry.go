package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hivemindhq/hivemind/internal/domain"
	"github.com/hivemindhq/hivemind/internal/pagination"
	"github.com/hivemindhq/hivemind/internal/telemetry"
)

// EntryRepositoryInterface defines the repository interface for entry persistence
type EntryRepositoryInterface interface {
	Create(ctx context.Context, e *domain.Entry) error
	GetByID(ctx context.Context, spaceID, id string) (*domain.Entry, error)
	GetByIDs(ctx context.Context, spaceID string, ids []string) ([]*domain.Entry, error)
	ListBySpaceWithCursor(ctx context.Context, spaceID string, cursor *pagination.Cursor, limit int) (*EntryPageResult, error)
}

type EntryPageResult struct {
	Items      []*domain.Entry
	NextCursor string
	HasMore    bool
}

// ExtractionJobRepositoryInterface defines the repository interface for extraction job persistence
type ExtractionJobRepositoryInterface interface {
	Create(ctx context.Context, job *domain.ExtractionJob) error
}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// EntryService handles business logic for raw knowledge entries
type EntryService struct {
	entryRepo EntryRepositoryInterface
	jobRepo   ExtractionJobRepositoryInterface
	uuidGen   UUIDGenerator
}

// NewEntryService creates a new EntryService instance
func NewEntryService(entryRepo EntryRepositoryInterface, jobRepo ExtractionJobRepositoryInterface) *EntryService {
	return &EntryService{
		entryRepo: entryRepo,
		jobRepo:   jobRepo,
		uuidGen:   &DefaultUUIDGenerator{},
	}
}

// NewEntryServiceWithUUIDGen creates a new EntryService with custom UUID generator (for testing)
func NewEntryServiceWithUUIDGen(entryRepo EntryRepositoryInterface, jobRepo ExtractionJobRepositoryInterface, uuidGen UUIDGenerator) *EntryService {
	return &EntryService{
		entryRepo: entryRepo,
		jobRepo:   jobRepo,
		uuidGen:   uuidGen,
	}
}

// CreateEntryInput represents the input for contributing an entry
type CreateEntryInput struct {
	SpaceID     string
	Content     string
	SourceType  domain.SourceType
	Contributor string
	Metadata    domain.EntryMetadata
}

type ListEntriesInput struct {
	SpaceID string
	Cursor  string
	Limit   int
}

type ListEntriesOutput struct {
	Items   []*domain.Entry
	Cursor  string
	HasMore bool
}

// Create stores an immutable entry and queues an extraction job for the
// ingestion worker. The entry is persisted even if its content later turns
// out to be unextractable.
func (s *EntryService) Create(ctx context.Context, input CreateEntryInput) (*domain.Entry, error) {
	ctx, span := telemetry.StartSpan(ctx, "EntryService.Create", telemetry.SpanAttributes{
		SpaceID:   input.SpaceID,
		Operation: "create",
	})
	defer span.End()

	if strings.TrimSpace(input.Content) == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "entry content is required")
	}
	if input.SourceType == "" {
		input.SourceType = domain.SourceTypeManual
	}

	now := time.Now().UTC()
	entry := &domain.Entry{
		ID:          s.uuidGen.NewString(),
		SpaceID:     input.SpaceID,
		Content:     input.Content,
		SourceType:  input.SourceType,
		Contributor: input.Contributor,
		Metadata:    input.Metadata,
		CreatedAt:   now,
	}

	if err := domain.ValidateEntry(entry); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid entry", err)
	}

	if err := s.entryRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	job := &domain.ExtractionJob{
		ID:        s.uuidGen.NewString(),
		SpaceID:   entry.SpaceID,
		EntryID:   entry.ID,
		Status:    domain.ExtractionJobStatusPending,
		Retries:   0,
		CreatedAt: now,
	}

	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}

	return entry, nil
}

// GetByID retrieves an entry by ID within a space
func (s *EntryService) GetByID(ctx context.Context, spaceID, id string) (*domain.Entry, error) {
	ctx, span := telemetry.StartSpan(ctx, "EntryService.GetByID", telemetry.SpanAttributes{
		SpaceID:   spaceID,
		EntryID:   id,
		Operation: "get",
	})
	defer span.End()

	return s.entryRepo.GetByID(ctx, spaceID, id)
}

// List retrieves entries for a space with cursor pagination
func (s *EntryService) List(ctx context.Context, input ListEntriesInput) (*ListEntriesOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "EntryService.List", telemetry.SpanAttributes{
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

	page, err := s.entryRepo.ListBySpaceWithCursor(ctx, input.SpaceID, cursor, limit)
	if err != nil {
		return nil, err
	}

	return &ListEntriesOutput{
		Items:   page.Items,
		Cursor:  page.NextCursor,
		HasMore: page.HasMore,
	}, nil
}
