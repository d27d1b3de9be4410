package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/brocketdesign/chatlamix/internal/api"
	"github.com/brocketdesign/chatlamix/internal/blob"
	"github.com/brocketdesign/chatlamix/internal/config"
	"github.com/brocketdesign/chatlamix/internal/dedup"
	"github.com/brocketdesign/chatlamix/internal/events"
	"github.com/brocketdesign/chatlamix/internal/platform/logger"
	"github.com/brocketdesign/chatlamix/internal/platform/postgres"
	"github.com/brocketdesign/chatlamix/internal/provider"
	"github.com/brocketdesign/chatlamix/internal/scheduler"
	"github.com/brocketdesign/chatlamix/internal/store"
	"github.com/brocketdesign/chatlamix/internal/task"
)

// application bundles everything the server needs at runtime so that
// main stays a thin shell around initialization and shutdown.
type application struct {
	cfg       *config.Config
	logger    *slog.Logger
	db        *sql.DB
	hub       *events.Hub
	scheduler *scheduler.Scheduler
	router    http.Handler
	sweeper   *task.RecoverySweeper
}

// initializeApp loads configuration, connects the database, runs
// migrations, and wires every component up to the HTTP router.
func initializeApp(ctx context.Context) (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.Setup(cfg.Server.LogLevel)
	appLogger.Info("configuration loaded", "port", cfg.Server.Port, "log_level", cfg.Server.LogLevel)

	db, err := setupDatabase(ctx, cfg.Database.URL, appLogger)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db, appLogger); err != nil {
		closeDatabase(db, appLogger)
		return nil, err
	}

	// Stores share one database handle; transactional writes go through
	// the runner and per-store WithTx.
	taskStore := postgres.NewPostgresTaskStore(db)
	artifactStore := postgres.NewPostgresArtifactStore(db)
	conversationStore := postgres.NewPostgresConversationStore(db)
	milestoneStore := postgres.NewPostgresMilestoneStore(db)
	txRunner := store.NewSQLRunner(db)

	hub := events.NewHub(appLogger)

	signer := provider.NewCallbackSigner(
		cfg.Webhook.TokenSecret,
		cfg.Webhook.TokenTTL,
		cfg.Webhook.CallbackBaseURL,
	)

	adapters, err := setupAdapters(ctx, cfg, appLogger)
	if err != nil {
		closeDatabase(db, appLogger)
		return nil, err
	}

	applier := task.NewSideEffectApplier(
		txRunner,
		artifactStore,
		conversationStore,
		milestoneStore,
		hub,
		nil,
		appLogger,
	)
	completion := task.NewCompletionHandler(taskStore, artifactStore, applier, hub, appLogger)
	generation := task.NewGenerationService(
		taskStore,
		adapters,
		dedup.NewGroup(appLogger),
		completion,
		signer,
		appLogger,
	)

	sweeper := task.NewRecoverySweeper(taskStore, appLogger)

	sched := scheduler.New(appLogger)
	reconciler := task.NewReconciler(
		taskStore,
		adapters,
		completion,
		cfg.Scheduler.ReconcileInterval,
		appLogger,
	)
	if _, err := sched.Register("reconcile", cfg.Scheduler.ReconcileInterval, reconciler.Run); err != nil {
		closeDatabase(db, appLogger)
		return nil, fmt.Errorf("failed to register reconcile job: %w", err)
	}

	router := setupRouter(
		api.NewGenerateHandler(generation),
		api.NewWebhookHandler(signer, completion),
		api.NewEventsHandler(hub),
		appLogger,
	)

	return &application{
		cfg:       cfg,
		logger:    appLogger,
		db:        db,
		hub:       hub,
		scheduler: sched,
		router:    router,
		sweeper:   sweeper,
	}, nil
}

// setupAdapters constructs the provider adapter for each supported task
// kind. The video provider is asynchronous and reports back through the
// webhook; the merge provider finishes within the request.
func setupAdapters(ctx context.Context, cfg *config.Config, log *slog.Logger) ([]provider.Adapter, error) {
	httpClient := &http.Client{Timeout: cfg.Provider.SubmitTimeout}

	video := provider.NewVideoGenerator(
		cfg.Provider.VideoEndpoint,
		cfg.Provider.VideoAPIKey,
		httpClient,
		cfg.Provider.MaxPromptRunes,
		cfg.Provider.DefaultVideoPrompt,
		log,
	)

	blobs := blob.NewHTTPStore(cfg.Blob.BaseURL, httpClient, log)
	merge, err := provider.NewFaceMerger(
		ctx,
		cfg.Provider.GeminiAPIKey,
		cfg.Provider.GeminiModel,
		blobs,
		httpClient,
		cfg.Provider.MaxPromptRunes,
		cfg.Provider.DefaultMergePrompt,
		log,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create face merge provider: %w", err)
	}

	return []provider.Adapter{video, merge}, nil
}

// Run recovers orphaned tasks, starts the background jobs, and serves
// HTTP until ctx is canceled or a shutdown signal arrives.
func (a *application) Run(ctx context.Context) error {
	// Tasks left in pending or processing by a previous crash go to the
	// background queue before we accept new work; the reconciler picks
	// them up from there.
	if err := a.sweeper.Sweep(ctx); err != nil {
		return fmt.Errorf("startup recovery sweep failed: %w", err)
	}

	return startHTTPServer(ctx, a.cfg.Server.Port, a.router, a.logger)
}

// Close releases background jobs and the database handle.
func (a *application) Close() {
	a.scheduler.StopAll()
	closeDatabase(a.db, a.logger)
}
