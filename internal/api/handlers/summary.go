package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hivemindhq/hivemind/internal/api"
	"github.com/hivemindhq/hivemind/internal/api/middleware"
	"github.com/hivemindhq/hivemind/internal/domain"
	"github.com/hivemindhq/hivemind/internal/service"
)

type SummaryReader interface {
	GetByID(ctx context.Context, spaceID, id string) (*domain.Summary, error)
	List(ctx context.Context, input service.ListSummariesInput) (*service.ListSummariesOutput, error)
	ListDomains(ctx context.Context, spaceID string) ([]string, error)
}

type SummaryHandler struct {
	svc SummaryReader
}

func NewSummaryHandler(svc SummaryReader) *SummaryHandler {
	return &SummaryHandler{svc: svc}
}

type SummaryResponse struct {
	ID                  string              `json:"id"`
	SpaceID             string              `json:"space_id"`
	Domain              string              `json:"domain"`
	Subtopic            string              `json:"subtopic"`
	Content             string              `json:"content"`
	TopicSources        map[string][]string `json:"topic_sources"`
	ContributingEntries []string            `json:"contributing_entries"`
	EntryCount          int                 `json:"entry_count"`
	Version             int64               `json:"version"`
	CreatedAt           string              `json:"created_at"`
	LastUpdated         string              `json:"last_updated"`
}

func summaryToResponse(s *domain.Summary) *SummaryResponse {
	return &SummaryResponse{
		ID:                  s.ID,
		SpaceID:             s.SpaceID,
		Domain:              s.Domain,
		Subtopic:            s.Subtopic,
		Content:             s.Content,
		TopicSources:        s.TopicSources,
		ContributingEntries: s.ContributingEntries,
		EntryCount:          s.EntryCount,
		Version:             s.Version,
		CreatedAt:           s.CreatedAt.Format(time.RFC3339),
		LastUpdated:         s.LastUpdated.Format(time.RFC3339),
	}
}

func (h *SummaryHandler) Get(w http.ResponseWriter, r *http.Request) {
	spaceID := middleware.GetSpaceID(r.Context())
	if spaceID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	summary, err := h.svc.GetByID(r.Context(), spaceID, id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, summaryToResponse(summary))
}

type SummaryListResponse struct {
	Items   []*SummaryResponse `json:"items"`
	Cursor  string             `json:"cursor,omitempty"`
	HasMore bool               `json:"has_more"`
}

func (h *SummaryHandler) List(w http.ResponseWriter, r *http.Request) {
	spaceID := middleware.GetSpaceID(r.Context())
	if spaceID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	cursor := r.URL.Query().Get("cursor")
	limitStr := r.URL.Query().Get("limit")
	limit := 0
	if limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	output, err := h.svc.List(r.Context(), service.ListSummariesInput{
		SpaceID: spaceID,
		Cursor:  cursor,
		Limit:   limit,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*SummaryResponse, len(output.Items))
	for i, s := range output.Items {
		responses[i] = summaryToResponse(s)
	}

	api.Success(w, http.StatusOK, SummaryListResponse{
		Items:   responses,
		Cursor:  output.Cursor,
		HasMore: output.HasMore,
	})
}

type DomainListResponse struct {
	Domains []string `json:"domains"`
}

func (h *SummaryHandler) ListDomains(w http.ResponseWriter, r *http.Request) {
	spaceID := middleware.GetSpaceID(r.Context())
	if spaceID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	domains, err := h.svc.ListDomains(r.Context(), spaceID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, DomainListResponse{Domains: domains})
}
