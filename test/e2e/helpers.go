//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hivemindhq/hivemind/internal/api/handlers"
	"github.com/hivemindhq/hivemind/internal/domain"
	"github.com/hivemindhq/hivemind/internal/jobs"
	"github.com/hivemindhq/hivemind/internal/repository"
	"github.com/hivemindhq/hivemind/internal/server"
	"github.com/hivemindhq/hivemind/internal/service"
	"github.com/hivemindhq/hivemind/internal/testutil"
)

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	Pool         *pgxpool.Pool
	ServerURL    string
	ServerCloser func()
	Extraction   *jobs.ExtractionWorker
	SpaceID      string
	APIKeyToken  string
	HTTPClient   *http.Client
}

// SetupE2EEnv creates a full E2E test environment with a container-backed
// database and a running HTTP server. The external text-generation capability
// is replaced with a deterministic scripted stand-in.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}

	serverURL, serverCloser, extraction := startServer(t, pool, port)

	return &E2ETestEnv{
		T:            t,
		Ctx:          ctx,
		PostgresC:    pgC,
		Pool:         pool,
		ServerURL:    serverURL,
		ServerCloser: serverCloser,
		Extraction:   extraction,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
}

// Bootstrap creates a space and API key for testing
func (e *E2ETestEnv) Bootstrap() {
	spaceResp, err := e.Post("/spaces", map[string]string{"name": "E2E Test Space"}, "")
	if err != nil {
		e.T.Fatalf("failed to create space: %v", err)
	}

	var spaceData struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(spaceResp.Data, &spaceData); err != nil {
		e.T.Fatalf("failed to parse space response: %v", err)
	}
	e.SpaceID = spaceData.ID

	keyResp, err := e.Post("/apikeys", map[string]string{
		"space_id": e.SpaceID,
		"name":     "e2e-test-key",
	}, "")
	if err != nil {
		e.T.Fatalf("failed to create API key: %v", err)
	}

	var keyData struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(keyResp.Data, &keyData); err != nil {
		e.T.Fatalf("failed to parse key response: %v", err)
	}
	e.APIKeyToken = keyData.Token
}

// DrainJobs runs the extraction worker until no pending jobs remain, standing
// in for the background poll loop so tests stay deterministic.
func (e *E2ETestEnv) DrainJobs() {
	for i := 0; i < 5; i++ {
		if err := e.Extraction.ProcessJobs(e.Ctx); err != nil {
			e.T.Fatalf("failed to process extraction jobs: %v", err)
		}

		var pending int
		err := e.Pool.QueryRow(e.Ctx,
			"SELECT COUNT(*) FROM extraction_jobs WHERE status = 'pending'").Scan(&pending)
		if err != nil {
			e.T.Fatalf("failed to count pending jobs: %v", err)
		}
		if pending == 0 {
			return
		}
	}
	e.T.Fatal("extraction jobs still pending after draining")
}

// APIResponse represents a standard API response
type APIResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error,omitempty"`
}

// Get performs a GET request
func (e *E2ETestEnv) Get(path, authToken string) (*APIResponse, error) {
	return e.doRequest("GET", path, nil, authToken)
}

// Post performs a POST request
func (e *E2ETestEnv) Post(path string, body interface{}, authToken string) (*APIResponse, error) {
	return e.doRequest("POST", path, body, authToken)
}

func (e *E2ETestEnv) doRequest(method, path string, body interface{}, authToken string) (*APIResponse, error) {
	url := e.ServerURL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}

	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
		}
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiResp.Error)
	}

	return &apiResp, nil
}

// startServer starts the HTTP server with all handlers and a scripted LLM
func startServer(t *testing.T, pool *pgxpool.Pool, port int) (string, func(), *jobs.ExtractionWorker) {
	entryRepo := repository.NewEntryRepository(pool)
	summaryRepo := repository.NewSummaryRepository(pool)
	jobRepo := repository.NewExtractionJobRepository(pool)
	spaceRepo := repository.NewSpaceRepository(pool)
	apiKeyRepo := repository.NewAPIKeyRepository(pool)
	queryLogRepo := repository.NewQueryLogRepository(pool)

	uuidGen := &service.DefaultUUIDGenerator{}
	authSvc := service.NewAuthService(spaceRepo, apiKeyRepo, uuidGen)
	entrySvc := service.NewEntryService(entryRepo, jobRepo)
	summarySvc := service.NewSummaryService(summaryRepo)

	llm := &scriptedLLM{}
	extractor := service.NewExtractorService(llm)
	summarizer := service.NewSummarizerService(llm)
	processor := service.NewProcessorService(extractor, summarizer, summaryRepo)
	resolver := service.NewResolverService(summaryRepo, entryRepo, queryLogRepo, llm)

	extraction := jobs.NewExtractionWorker(jobRepo, entryRepo, processor, 10, 10*time.Millisecond)

	cfg := server.RouterConfig{
		AuthValidator:  authSvc,
		EntryHandler:   handlers.NewEntryHandler(entrySvc),
		SummaryHandler: handlers.NewSummaryHandler(summarySvc),
		QueryHandler:   handlers.NewQueryHandler(resolver),
		AuthHandler:    handlers.NewAuthHandler(authSvc),
	}

	router := server.NewRouter(cfg)
	addr := fmt.Sprintf(":%d", port)

	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := fmt.Sprintf("http://localhost:%d", port)
	waitForServer(t, serverURL, 10*time.Second)

	return serverURL, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}, extraction
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not start within %v", timeout)
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// scriptedLLM is a deterministic rule-based stand-in for the external
// text-generation capability, covering extraction, summary writing and
// answer synthesis.
type scriptedLLM struct{}

func (s *scriptedLLM) ExtractTopics(ctx context.Context, content string, existingDomains []string) (*domain.Extraction, error) {
	lower := strings.ToLower(content)

	switch {
	case strings.Contains(lower, "goroutine") || strings.Contains(lower, "channel"):
		return &domain.Extraction{
			Domain:   "programming",
			Subtopic: "golang",
			Topics: []domain.Topic{
				{Key: "concurrency", Label: "Concurrency", Info: content},
			},
			Confidence: 0.9,
		}, nil
	case strings.Contains(lower, "interview"):
		return &domain.Extraction{
			Domain:   "careers",
			Subtopic: "interviews",
			Topics: []domain.Topic{
				{Key: "interview_structure", Label: "Interview structure", Info: content},
			},
			Confidence: 0.8,
		}, nil
	case strings.Contains(lower, "gossip"):
		return &domain.Extraction{
			Domain:     "general",
			Subtopic:   "chatter",
			Topics:     []domain.Topic{{Key: "chatter", Label: "Chatter", Info: content}},
			Confidence: 0.2,
		}, nil
	}

	return nil, fmt.Errorf("no extraction rule matches content")
}

func (s *scriptedLLM) CreateSummary(ctx context.Context, domainName, subtopic string, topics []domain.Topic) (string, error) {
	lines := make([]string, len(topics))
	for i, t := range topics {
		lines[i] = t.Info
	}
	return strings.Join(lines, "\n"), nil
}

func (s *scriptedLLM) MergeSummary(ctx context.Context, existingContent string, topics []domain.Topic, existingKeys []string) (*domain.MergeOutcome, error) {
	known := make(map[string]bool, len(existingKeys))
	for _, k := range existingKeys {
		known[k] = true
	}

	var updated, added []string
	lines := []string{existingContent}
	for _, t := range topics {
		if known[t.Key] {
			updated = append(updated, t.Key)
		} else {
			added = append(added, t.Key)
		}
		lines = append(lines, t.Info)
	}

	return &domain.MergeOutcome{
		UpdatedContent: strings.Join(lines, "\n"),
		TopicsUpdated:  updated,
		NewTopicsAdded: added,
		MergeNotes:     "scripted merge",
	}, nil
}

func (s *scriptedLLM) SynthesizeAnswer(ctx context.Context, query string, summaries []domain.SummaryContext) (*domain.AnswerOutcome, error) {
	if len(summaries) == 0 {
		return domain.InsufficientAnswerOutcome(), nil
	}

	used := make([]string, len(summaries))
	referenced := make(map[string][]string, len(summaries))
	for i, sc := range summaries {
		used[i] = sc.SummaryID
		referenced[sc.SummaryID] = sc.Topics
	}

	return &domain.AnswerOutcome{
		Answer:           "Based on the shared knowledge: " + summaries[0].Content,
		SummariesUsed:    used,
		TopicsReferenced: referenced,
		Confidence:       0.85,
	}, nil
}
