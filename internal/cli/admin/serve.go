package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/hivemindhq/hivemind/internal/api/handlers"
	"github.com/hivemindhq/hivemind/internal/config"
	"github.com/hivemindhq/hivemind/internal/domain"
	"github.com/hivemindhq/hivemind/internal/jobs"
	"github.com/hivemindhq/hivemind/internal/llm"
	"github.com/hivemindhq/hivemind/internal/repository"
	"github.com/hivemindhq/hivemind/internal/server"
	"github.com/hivemindhq/hivemind/internal/service"
	"github.com/hivemindhq/hivemind/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the hivemind API server and the background ingestion worker",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	log.Println("connected to database")

	// Run migrations unless --no-migrate flag is set
	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	entryRepo := repository.NewEntryRepository(pool)
	summaryRepo := repository.NewSummaryRepository(pool)
	jobRepo := repository.NewExtractionJobRepository(pool)
	spaceRepo := repository.NewSpaceRepository(pool)
	apiKeyRepo := repository.NewAPIKeyRepository(pool)
	queryLogRepo := repository.NewQueryLogRepository(pool)

	uuidGen := &service.DefaultUUIDGenerator{}
	authSvc := service.NewAuthService(spaceRepo, apiKeyRepo, uuidGen)

	if cfg.InitSpaceName != "" {
		if err := bootstrapInitialSpace(ctx, cfg, spaceRepo, authSvc); err != nil {
			return fmt.Errorf("failed to bootstrap initial space: %w", err)
		}
	}

	entrySvc := service.NewEntryService(entryRepo, jobRepo)
	summarySvc := service.NewSummaryService(summaryRepo)

	var queryResolver handlers.QueryResolver = &NoOpQueryResolver{}
	var worker *jobs.Worker
	if cfg.HasOpenAI() {
		llmClient := llm.NewClientWithConfig(llm.Config{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			Timeout: cfg.LLMTimeout(),
		})

		extractor := service.NewExtractorService(llmClient)
		summarizer := service.NewSummarizerService(llmClient)
		processor := service.NewProcessorService(extractor, summarizer, summaryRepo)
		queryResolver = service.NewResolverService(summaryRepo, entryRepo, queryLogRepo, llmClient)

		extractionWorker := jobs.NewExtractionWorker(jobRepo, entryRepo, processor, cfg.WorkerBatchSize, cfg.BatchDelay())
		worker = jobs.NewWorker(extractionWorker, cfg.WorkerInterval())
		go worker.Start(ctx)
		log.Println("ingestion worker started")
	} else {
		log.Println("OPENAI_API_KEY not set: ingestion worker and query resolution disabled")
	}

	routerCfg := server.RouterConfig{
		AuthValidator:  authSvc,
		EntryHandler:   handlers.NewEntryHandler(entrySvc),
		SummaryHandler: handlers.NewSummaryHandler(summarySvc),
		QueryHandler:   handlers.NewQueryHandler(queryResolver),
		AuthHandler:    handlers.NewAuthHandler(authSvc),
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if worker != nil {
		worker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// NoOpQueryResolver stands in when no LLM provider is configured.
type NoOpQueryResolver struct{}

func (r *NoOpQueryResolver) Resolve(ctx context.Context, spaceID, query string) (*domain.QueryResult, error) {
	return nil, fmt.Errorf("query resolution not configured: OPENAI_API_KEY required")
}

func bootstrapInitialSpace(ctx context.Context, cfg *config.Config, spaceRepo *repository.SpaceRepository, authSvc *service.AuthService) error {
	space, err := spaceRepo.GetByName(ctx, cfg.InitSpaceName)
	if err != nil && err != domain.ErrSpaceNotFound {
		return fmt.Errorf("failed to check existing space: %w", err)
	}

	if space == nil {
		space, err = authSvc.CreateSpace(ctx, cfg.InitSpaceName)
		if err != nil {
			return fmt.Errorf("failed to create space: %w", err)
		}
		log.Printf("bootstrap: created space '%s' (id: %s)", space.Name, space.ID)
	} else {
		log.Printf("bootstrap: space '%s' already exists (id: %s)", space.Name, space.ID)
	}

	if cfg.InitAPIKey != "" {
		if !service.IsValidAPIToken(cfg.InitAPIKey) {
			return fmt.Errorf("invalid HIVEMIND_INIT_API_KEY format (expected 'hvm_<64 hex chars>')")
		}

		if _, err := authSvc.ValidateAPIKey(ctx, cfg.InitAPIKey); err == nil {
			log.Println("bootstrap: API key already exists")
			return nil
		}

		if err := authSvc.CreateAPIKeyWithToken(ctx, space.ID, "bootstrap", cfg.InitAPIKey); err != nil {
			return fmt.Errorf("failed to create API key: %w", err)
		}
		log.Printf("bootstrap: created API key")
	}

	return nil
}

func runMigrations(databaseURL string) error {
	// Create a sql.DB connection for golang-migrate
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	// Create postgres driver instance
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Create migrate instance with file source
	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	// Run migrations
	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	// Get migration version and status
	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
