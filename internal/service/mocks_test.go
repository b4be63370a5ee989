package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/hivemindhq/hivemind/internal/domain"
	"github.com/hivemindhq/hivemind/internal/pagination"
)

// FixedUUIDGenerator returns preset IDs in order, for deterministic tests
type FixedUUIDGenerator struct {
	IDs  []string
	next int
}

func (g *FixedUUIDGenerator) NewString() string {
	if g.next >= len(g.IDs) {
		return "uuid-overflow"
	}
	id := g.IDs[g.next]
	g.next++
	return id
}

// MockEntryRepository is a mock implementation of EntryRepositoryInterface
type MockEntryRepository struct {
	mock.Mock
}

func (m *MockEntryRepository) Create(ctx context.Context, e *domain.Entry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEntryRepository) GetByID(ctx context.Context, spaceID, id string) (*domain.Entry, error) {
	args := m.Called(ctx, spaceID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Entry), args.Error(1)
}

func (m *MockEntryRepository) GetByIDs(ctx context.Context, spaceID string, ids []string) ([]*domain.Entry, error) {
	args := m.Called(ctx, spaceID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Entry), args.Error(1)
}

func (m *MockEntryRepository) ListBySpaceWithCursor(ctx context.Context, spaceID string, cursor *pagination.Cursor, limit int) (*EntryPageResult, error) {
	args := m.Called(ctx, spaceID, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*EntryPageResult), args.Error(1)
}

// MockExtractionJobRepository is a mock implementation of ExtractionJobRepositoryInterface
type MockExtractionJobRepository struct {
	mock.Mock
}

func (m *MockExtractionJobRepository) Create(ctx context.Context, job *domain.ExtractionJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

// MockSummaryRepository is a mock implementation of SummaryRepositoryInterface
type MockSummaryRepository struct {
	mock.Mock
}

func (m *MockSummaryRepository) Create(ctx context.Context, s *domain.Summary) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSummaryRepository) GetByID(ctx context.Context, spaceID, id string) (*domain.Summary, error) {
	args := m.Called(ctx, spaceID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Summary), args.Error(1)
}

func (m *MockSummaryRepository) ListBySpace(ctx context.Context, spaceID string) ([]*domain.Summary, error) {
	args := m.Called(ctx, spaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Summary), args.Error(1)
}

func (m *MockSummaryRepository) ListBySpaceWithCursor(ctx context.Context, spaceID string, cursor *pagination.Cursor, limit int) (*SummaryPageResult, error) {
	args := m.Called(ctx, spaceID, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SummaryPageResult), args.Error(1)
}

func (m *MockSummaryRepository) UpdateVersioned(ctx context.Context, s *domain.Summary, expectedVersion int64) error {
	args := m.Called(ctx, s, expectedVersion)
	return args.Error(0)
}

func (m *MockSummaryRepository) ListDomains(ctx context.Context, spaceID string) ([]string, error) {
	args := m.Called(ctx, spaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockQueryLogRepository is a mock implementation of QueryLogRepositoryInterface
type MockQueryLogRepository struct {
	mock.Mock
}

func (m *MockQueryLogRepository) Create(ctx context.Context, r *domain.QueryResult) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

// MockSpaceRepository is a mock implementation of SpaceRepository
type MockSpaceRepository struct {
	mock.Mock
}

func (m *MockSpaceRepository) Create(ctx context.Context, space *domain.Space) error {
	args := m.Called(ctx, space)
	return args.Error(0)
}

func (m *MockSpaceRepository) GetByID(ctx context.Context, id string) (*domain.Space, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Space), args.Error(1)
}

func (m *MockSpaceRepository) GetByName(ctx context.Context, name string) (*domain.Space, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Space), args.Error(1)
}

func (m *MockSpaceRepository) List(ctx context.Context) ([]*domain.Space, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Space), args.Error(1)
}

func (m *MockSpaceRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAPIKeyRepository is a mock implementation of APIKeyRepository
type MockAPIKeyRepository struct {
	mock.Mock
}

func (m *MockAPIKeyRepository) Create(ctx context.Context, key *domain.APIKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockAPIKeyRepository) GetByID(ctx context.Context, id string) (*domain.APIKey, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APIKey), args.Error(1)
}

func (m *MockAPIKeyRepository) GetByHash(ctx context.Context, hash string) (*domain.APIKey, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APIKey), args.Error(1)
}

func (m *MockAPIKeyRepository) GetBySpaceID(ctx context.Context, spaceID string) ([]*domain.APIKey, error) {
	args := m.Called(ctx, spaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.APIKey), args.Error(1)
}

func (m *MockAPIKeyRepository) Revoke(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAPIKeyRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTopicExtractor is a mock implementation of TopicExtractor
type MockTopicExtractor struct {
	mock.Mock
}

func (m *MockTopicExtractor) ExtractTopics(ctx context.Context, content string, existingDomains []string) (*domain.Extraction, error) {
	args := m.Called(ctx, content, existingDomains)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Extraction), args.Error(1)
}

// MockSummaryWriter is a mock implementation of SummaryWriter
type MockSummaryWriter struct {
	mock.Mock
}

func (m *MockSummaryWriter) CreateSummary(ctx context.Context, domainName, subtopic string, topics []domain.Topic) (string, error) {
	args := m.Called(ctx, domainName, subtopic, topics)
	return args.String(0), args.Error(1)
}

func (m *MockSummaryWriter) MergeSummary(ctx context.Context, existingContent string, topics []domain.Topic, existingKeys []string) (*domain.MergeOutcome, error) {
	args := m.Called(ctx, existingContent, topics, existingKeys)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MergeOutcome), args.Error(1)
}

// MockAnswerSynthesizer is a mock implementation of AnswerSynthesizer
type MockAnswerSynthesizer struct {
	mock.Mock
}

func (m *MockAnswerSynthesizer) SynthesizeAnswer(ctx context.Context, query string, summaries []domain.SummaryContext) (*domain.AnswerOutcome, error) {
	args := m.Called(ctx, query, summaries)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnswerOutcome), args.Error(1)
}
