package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hivemindhq/hivemind/internal/api/handlers"
	"github.com/hivemindhq/hivemind/internal/domain"
	"github.com/hivemindhq/hivemind/internal/service"
)

const testToken = "hvm_0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

type MockAuthValidator struct {
	mock.Mock
}

func (m *MockAuthValidator) ValidateAPIKey(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

type MockEntryService struct {
	mock.Mock
}

func (m *MockEntryService) Create(ctx context.Context, input service.CreateEntryInput) (*domain.Entry, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Entry), args.Error(1)
}

func (m *MockEntryService) GetByID(ctx context.Context, spaceID, id string) (*domain.Entry, error) {
	args := m.Called(ctx, spaceID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Entry), args.Error(1)
}

func (m *MockEntryService) List(ctx context.Context, input service.ListEntriesInput) (*service.ListEntriesOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListEntriesOutput), args.Error(1)
}

type MockSummaryReader struct {
	mock.Mock
}

func (m *MockSummaryReader) GetByID(ctx context.Context, spaceID, id string) (*domain.Summary, error) {
	args := m.Called(ctx, spaceID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Summary), args.Error(1)
}

func (m *MockSummaryReader) List(ctx context.Context, input service.ListSummariesInput) (*service.ListSummariesOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListSummariesOutput), args.Error(1)
}

func (m *MockSummaryReader) ListDomains(ctx context.Context, spaceID string) ([]string, error) {
	args := m.Called(ctx, spaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockQueryResolver struct {
	mock.Mock
}

func (m *MockQueryResolver) Resolve(ctx context.Context, spaceID, query string) (*domain.QueryResult, error) {
	args := m.Called(ctx, spaceID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QueryResult), args.Error(1)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) CreateSpace(ctx context.Context, name string) (*domain.Space, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Space), args.Error(1)
}

func (m *MockAuthService) CreateAPIKey(ctx context.Context, spaceID, name string) (string, error) {
	args := m.Called(ctx, spaceID, name)
	return args.String(0), args.Error(1)
}

func setupRouter() (http.Handler, *MockAuthValidator, *MockEntryService, *MockSummaryReader, *MockQueryResolver, *MockAuthService) {
	authValidator := new(MockAuthValidator)
	entrySvc := new(MockEntryService)
	summarySvc := new(MockSummaryReader)
	querySvc := new(MockQueryResolver)
	authSvc := new(MockAuthService)

	cfg := RouterConfig{
		AuthValidator:  authValidator,
		EntryHandler:   handlers.NewEntryHandler(entrySvc),
		SummaryHandler: handlers.NewSummaryHandler(summarySvc),
		QueryHandler:   handlers.NewQueryHandler(querySvc),
		AuthHandler:    handlers.NewAuthHandler(authSvc),
	}

	router := NewRouter(cfg)
	return router, authValidator, entrySvc, summarySvc, querySvc, authSvc
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router, _, _, _, _, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "ok", data["status"])
}

func TestRouter_AuthenticatedRoutes_RequireAuth(t *testing.T) {
	router, authValidator, _, _, _, _ := setupRouter()

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/entries"},
		{http.MethodGet, "/entries"},
		{http.MethodGet, "/entries/123"},
		{http.MethodGet, "/summaries"},
		{http.MethodGet, "/summaries/domains"},
		{http.MethodGet, "/summaries/prog__go"},
		{http.MethodPost, "/query"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			req := httptest.NewRequest(route.method, route.path, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}

	authValidator.AssertExpectations(t)
}

func TestRouter_AuthenticatedRoutes_WithValidAuth(t *testing.T) {
	router, authValidator, _, summarySvc, _, _ := setupRouter()

	authValidator.On("ValidateAPIKey", mock.Anything, testToken).Return("space-789", nil)

	expected := domain.NewSummary("space-789", "programming", "golang",
		"Goroutines are lightweight threads.", "entry-1", []string{"goroutines"}, time.Now().UTC())
	summarySvc.On("GetByID", mock.Anything, "space-789", "programming__golang").Return(expected, nil)

	req := httptest.NewRequest(http.MethodGet, "/summaries/programming__golang", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	authValidator.AssertExpectations(t)
	summarySvc.AssertExpectations(t)
}

func TestRouter_QueryRoute(t *testing.T) {
	router, authValidator, _, _, querySvc, _ := setupRouter()

	authValidator.On("ValidateAPIKey", mock.Anything, testToken).Return("space-789", nil)

	result := &domain.QueryResult{
		ID:               "q-1",
		SpaceID:          "space-789",
		Query:            "how do goroutines work",
		Answer:           "Goroutines are lightweight threads.",
		SummariesUsed:    []string{"programming__golang"},
		TopicsReferenced: map[string][]string{"programming__golang": {"goroutines"}},
		OriginalEntries:  []string{"entry-1"},
		Confidence:       0.9,
		CreatedAt:        time.Now().UTC(),
	}
	querySvc.On("Resolve", mock.Anything, "space-789", "how do goroutines work").Return(result, nil)

	body := strings.NewReader(`{"query": "how do goroutines work"}`)
	req := httptest.NewRequest(http.MethodPost, "/query", body)
	req.Header.Set("Authorization", "Bearer "+testToken)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	querySvc.AssertExpectations(t)
}

func TestRouter_SpaceRoute_NoAuthRequired(t *testing.T) {
	router, _, _, _, _, authSvc := setupRouter()

	expected := &domain.Space{
		ID:        "space-123",
		Name:      "Test Space",
		CreatedAt: time.Now().UTC(),
	}
	authSvc.On("CreateSpace", mock.Anything, "Test Space").Return(expected, nil)

	body := strings.NewReader(`{"name": "Test Space"}`)
	req := httptest.NewRequest(http.MethodPost, "/spaces", body)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	authSvc.AssertExpectations(t)
}
