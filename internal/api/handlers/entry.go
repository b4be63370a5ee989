package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hivemindhq/hivemind/internal/api"
	"github.com/hivemindhq/hivemind/internal/api/middleware"
	"github.com/hivemindhq/hivemind/internal/domain"
	"github.com/hivemindhq/hivemind/internal/service"
)

type EntryService interface {
	Create(ctx context.Context, input service.CreateEntryInput) (*domain.Entry, error)
	GetByID(ctx context.Context, spaceID, id string) (*domain.Entry, error)
	List(ctx context.Context, input service.ListEntriesInput) (*service.ListEntriesOutput, error)
}

type EntryHandler struct {
	svc EntryService
}

func NewEntryHandler(svc EntryService) *EntryHandler {
	return &EntryHandler{svc: svc}
}

type CreateEntryRequest struct {
	Content     string               `json:"content"`
	SourceType  string               `json:"source_type"`
	Contributor string               `json:"contributor"`
	Metadata    domain.EntryMetadata `json:"metadata"`
}

type EntryResponse struct {
	ID          string               `json:"id"`
	SpaceID     string               `json:"space_id"`
	Content     string               `json:"content"`
	SourceType  string               `json:"source_type"`
	Contributor string               `json:"contributor,omitempty"`
	Metadata    domain.EntryMetadata `json:"metadata"`
	CreatedAt   string               `json:"created_at"`
}

func entryToResponse(e *domain.Entry) *EntryResponse {
	return &EntryResponse{
		ID:          e.ID,
		SpaceID:     e.SpaceID,
		Content:     e.Content,
		SourceType:  string(e.SourceType),
		Contributor: e.Contributor,
		Metadata:    e.Metadata,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}
}

func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	spaceID := middleware.GetSpaceID(r.Context())
	if spaceID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Content == "" {
		api.Error(w, http.StatusBadRequest, "content is required")
		return
	}

	input := service.CreateEntryInput{
		SpaceID:     spaceID,
		Content:     req.Content,
		SourceType:  domain.SourceType(req.SourceType),
		Contributor: req.Contributor,
		Metadata:    req.Metadata,
	}

	entry, err := h.svc.Create(r.Context(), input)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, entryToResponse(entry))
}

func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	entry, err := h.svc.GetByID(r.Context(), spaceID, id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, entryToResponse(entry))
}

type EntryListResponse struct {
	Items   []*EntryResponse `json:"items"`
	Cursor  string           `json:"cursor,omitempty"`
	HasMore bool             `json:"has_more"`
}

func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
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

	output, err := h.svc.List(r.Context(), service.ListEntriesInput{
		SpaceID: spaceID,
		Cursor:  cursor,
		Limit:   limit,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*EntryResponse, len(output.Items))
	for i, e := range output.Items {
		responses[i] = entryToResponse(e)
	}

	api.Success(w, http.StatusOK, EntryListResponse{
		Items:   responses,
		Cursor:  output.Cursor,
		HasMore: output.HasMore,
	})
}
