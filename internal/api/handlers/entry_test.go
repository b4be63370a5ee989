package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hivemindhq/hivemind/internal/api/middleware"
	"github.com/hivemindhq/hivemind/internal/domain"
	"github.com/hivemindhq/hivemind/internal/service"
)

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

func newTestEntry() *domain.Entry {
	return &domain.Entry{
		ID:          "entry-123",
		SpaceID:     "space-456",
		Content:     "Goroutines are lightweight threads managed by the Go runtime.",
		SourceType:  domain.SourceTypeManual,
		Contributor: "alice",
		CreatedAt:   time.Now().UTC(),
	}
}

func requestWithSpaceID(method, url string, body []byte) *http.Request {
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	ctx := context.WithValue(req.Context(), middleware.SpaceIDKey, "space-456")
	return req.WithContext(ctx)
}

func TestEntryHandler_Create_Success(t *testing.T) {
	mockSvc := new(MockEntryService)
	handler := NewEntryHandler(mockSvc)

	expected := newTestEntry()
	mockSvc.On("Create", mock.Anything, mock.MatchedBy(func(input service.CreateEntryInput) bool {
		return input.SpaceID == "space-456" && input.Content == expected.Content
	})).Return(expected, nil)

	body := `{"content":"Goroutines are lightweight threads managed by the Go runtime.","source_type":"manual","contributor":"alice"}`
	req := requestWithSpaceID(http.MethodPost, "/entries", []byte(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data EntryResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "entry-123", resp.Data.ID)
	assert.Equal(t, "manual", resp.Data.SourceType)
	mockSvc.AssertExpectations(t)
}

func TestEntryHandler_Create_MissingContent(t *testing.T) {
	mockSvc := new(MockEntryService)
	handler := NewEntryHandler(mockSvc)

	req := requestWithSpaceID(http.MethodPost, "/entries", []byte(`{"source_type":"manual"}`))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestEntryHandler_Create_InvalidSourceType(t *testing.T) {
	mockSvc := new(MockEntryService)
	handler := NewEntryHandler(mockSvc)

	mockSvc.On("Create", mock.Anything, mock.Anything).Return(nil, domain.ErrInvalidSourceType)

	body := `{"content":"some perfectly fine content","source_type":"telepathy"}`
	req := requestWithSpaceID(http.MethodPost, "/entries", []byte(body))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEntryHandler_Create_Unauthorized(t *testing.T) {
	mockSvc := new(MockEntryService)
	handler := NewEntryHandler(mockSvc)

	// No space id in context
	req := httptest.NewRequest(http.MethodPost, "/entries", bytes.NewReader([]byte(`{"content":"x"}`)))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEntryHandler_Get_Success(t *testing.T) {
	mockSvc := new(MockEntryService)
	handler := NewEntryHandler(mockSvc)

	expected := newTestEntry()
	mockSvc.On("GetByID", mock.Anything, "space-456", "entry-123").Return(expected, nil)

	req := requestWithSpaceID(http.MethodGet, "/entries/entry-123", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "entry-123")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()

	handler.Get(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestEntryHandler_Get_NotFound(t *testing.T) {
	mockSvc := new(MockEntryService)
	handler := NewEntryHandler(mockSvc)

	mockSvc.On("GetByID", mock.Anything, "space-456", "missing").Return(nil, domain.ErrEntryNotFound)

	req := requestWithSpaceID(http.MethodGet, "/entries/missing", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "missing")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()

	handler.Get(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEntryHandler_List_Success(t *testing.T) {
	mockSvc := new(MockEntryService)
	handler := NewEntryHandler(mockSvc)

	output := &service.ListEntriesOutput{
		Items:   []*domain.Entry{newTestEntry()},
		Cursor:  "next-cursor",
		HasMore: true,
	}
	mockSvc.On("List", mock.Anything, service.ListEntriesInput{
		SpaceID: "space-456",
		Limit:   10,
	}).Return(output, nil)

	req := requestWithSpaceID(http.MethodGet, "/entries?limit=10", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data EntryListResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.Items, 1)
	assert.True(t, resp.Data.HasMore)
	assert.Equal(t, "next-cursor", resp.Data.Cursor)
	mockSvc.AssertExpectations(t)
}
