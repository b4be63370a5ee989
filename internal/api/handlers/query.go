package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hivemindhq/hivemind/internal/api"
	"github.com/hivemindhq/hivemind/internal/api/middleware"
	"github.com/hivemindhq/hivemind/internal/domain"
)

type QueryResolver interface {
	Resolve(ctx context.Context, spaceID, query string) (*domain.QueryResult, error)
}

type QueryHandler struct {
	svc QueryResolver
}

func NewQueryHandler(svc QueryResolver) *QueryHandler {
	return &QueryHandler{svc: svc}
}

type QueryRequest struct {
	Query string `json:"query"`
}

type EntrySourceResponse struct {
	EntryID     string `json:"entry_id"`
	Content     string `json:"content"`
	SourceType  string `json:"source_type,omitempty"`
	Contributor string `json:"contributor,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	Missing     bool   `json:"missing,omitempty"`
}

type QueryResponse struct {
	ID               string                `json:"id"`
	Query            string                `json:"query"`
	Answer           string                `json:"answer"`
	SummariesUsed    []string              `json:"summaries_used"`
	TopicsReferenced map[string][]string   `json:"topics_referenced"`
	OriginalEntries  []string              `json:"original_entries"`
	EntryDetails     []EntrySourceResponse `json:"entry_details"`
	Confidence       float64               `json:"confidence"`
	InsufficientInfo bool                  `json:"insufficient_info"`
	CreatedAt        string                `json:"created_at"`
}

func queryToResponse(q *domain.QueryResult) *QueryResponse {
	details := make([]EntrySourceResponse, len(q.EntryDetails))
	for i, d := range q.EntryDetails {
		resp := EntrySourceResponse{
			EntryID:     d.EntryID,
			Content:     d.Content,
			SourceType:  string(d.SourceType),
			Contributor: d.Contributor,
			Missing:     d.Missing,
		}
		if !d.CreatedAt.IsZero() {
			resp.CreatedAt = d.CreatedAt.Format(time.RFC3339)
		}
		details[i] = resp
	}

	return &QueryResponse{
		ID:               q.ID,
		Query:            q.Query,
		Answer:           q.Answer,
		SummariesUsed:    q.SummariesUsed,
		TopicsReferenced: q.TopicsReferenced,
		OriginalEntries:  q.OriginalEntries,
		EntryDetails:     details,
		Confidence:       q.Confidence,
		InsufficientInfo: q.InsufficientInfo,
		CreatedAt:        q.CreatedAt.Format(time.RFC3339),
	}
}

func (h *QueryHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	spaceID := middleware.GetSpaceID(r.Context())
	if spaceID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Query == "" {
		api.Error(w, http.StatusBadRequest, "query is required")
		return
	}

	result, err := h.svc.Resolve(r.Context(), spaceID, req.Query)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, queryToResponse(result))
}
