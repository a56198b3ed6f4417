package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pezzottify/catalog-server/internal/api"
	"github.com/pezzottify/catalog-server/internal/audit"
	"github.com/pezzottify/catalog-server/internal/authz"
	"github.com/pezzottify/catalog-server/internal/bandwidth"
	"github.com/pezzottify/catalog-server/internal/catalog"
	"github.com/pezzottify/catalog-server/internal/config"
	"github.com/pezzottify/catalog-server/internal/logging"
	"github.com/pezzottify/catalog-server/internal/schema"
	"github.com/pezzottify/catalog-server/internal/scheduler"
	"github.com/pezzottify/catalog-server/internal/search"
	"github.com/pezzottify/catalog-server/internal/search/factory"
	"github.com/pezzottify/catalog-server/internal/streaming"
	"github.com/pezzottify/catalog-server/internal/supervisor"
	"github.com/pezzottify/catalog-server/internal/supervisor/services"
	"github.com/pezzottify/catalog-server/internal/sync"
	"github.com/pezzottify/catalog-server/internal/useraccount"
	"github.com/pezzottify/catalog-server/internal/wsbroker"

	_ "github.com/mattn/go-sqlite3"
)

const (
	exitOK = 0
	// exitStartupError (1) is zerolog's own os.Exit(1) on a Fatal event;
	// every config/schema/store setup failure above logs through Fatal and
	// never reaches the rest of main.
	exitFatalRuntime  = 2
	shutdownTimeout   = 10 * time.Second
	bandwidthFlushInt = 30 * time.Second
	finalFlushTimeout = 5 * time.Second
)

// openServerDB opens db/server.db the same way internal/catalog and
// internal/useraccount open theirs; server.db has no store package of its
// own since bandwidth, audit, and scheduler history each own one table
// family in it rather than a full CRUD surface.
func openServerDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open server db: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping server db: %w", err)
	}
	return db, nil
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			logging.Error().Interface("panic", r).Msg("fatal panic in main")
			os.Exit(exitFatalRuntime)
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	if err := cfg.Validate(); err != nil {
		logging.Fatal().Err(err).Msg("invalid configuration")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		logging.Fatal().Err(err).Msg("failed to prepare data directories")
	}

	logging.Info().Str("db_dir", cfg.DBDir).Str("search_engine", cfg.Search.Engine).Msg("starting catalog server")

	catalogStore, err := catalog.New(cfg.CatalogDBPath())
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open catalog database")
	}
	if err := schema.Apply(context.Background(), catalogStore.DB(), schema.CatalogSchema); err != nil {
		logging.Fatal().Err(err).Msg("catalog schema migration failed")
	}

	userStore, err := useraccount.New(cfg.UserDBPath(), cfg.Devices.MaxPerUser)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open user database")
	}
	if err := schema.Apply(context.Background(), userStore.DB(), schema.UserSchema); err != nil {
		logging.Fatal().Err(err).Msg("user schema migration failed")
	}

	serverDB, err := openServerDB(cfg.ServerDBPath())
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open server database")
	}
	if err := schema.Apply(context.Background(), serverDB, schema.ServerSchema); err != nil {
		logging.Fatal().Err(err).Msg("server schema migration failed")
	}

	searchEngine, err := factory.New(cfg.Search.Engine, cfg.SearchDBPath())
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize search engine")
	}
	searchAwareStore := catalog.NewSearchAwareStore(catalogStore, search.EngineIndexer{Engine: searchEngine})

	// Index the catalog's search view before serving.
	if rows, err := catalogStore.SearchContent(context.Background()); err != nil {
		logging.Error().Err(err).Msg("failed to load search content for indexing")
	} else {
		for _, row := range rows {
			if err := searchEngine.AddItem(context.Background(), row.ID, row.Type, row.Name); err != nil {
				logging.Warn().Err(err).Str("id", row.ID).Msg("failed to index search content")
			}
		}
	}

	// internal/sync's event log lands in user.db, sharing useraccount's
	// write lock so a device's like/playlist mutation and the event row it
	// generates commit under the same serialization.
	eventStore := sync.New(userStore.DB(), userStore.WriteMu())

	broker := wsbroker.NewBroker()

	bandwidthTracker := bandwidth.NewTracker(serverDB, bandwidthFlushInt)

	auditStore := audit.New(serverDB)
	auditLogger := audit.NewLogger(auditStore)
	defer auditLogger.Close()

	streamingHandler := streaming.NewHandler(
		catalogStore,
		cfg.AudioMediaDir(),
		bandwidthTracker,
		auditLogger,
		time.Duration(cfg.ContentCacheAgeSec)*time.Second,
		0,
	)

	enforcer, err := authz.NewEnforcer()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize authorization enforcer")
	}

	jobHistory := scheduler.NewHistory(serverDB)
	sched := scheduler.New(jobHistory)
	sched.Register(scheduler.NewAuditLogCleanupJob(auditStore))
	sched.Register(scheduler.NewIntegrityWatchdogJob(searchAwareStore, searchEngine))
	sched.Register(scheduler.NewPopularContentJob(searchAwareStore, searchEngine, serverDB))
	sched.Register(scheduler.NewEventPruningJob(eventStore))

	handler := api.NewHandler(
		searchAwareStore,
		userStore,
		eventStore,
		searchEngine,
		streamingHandler,
		broker,
		sched,
		jobHistory,
		enforcer,
		cfg,
		bandwidthTracker,
	)
	router := api.NewRouter(handler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slogLogger := logging.NewSlogLogger()
	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  shutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create supervisor tree")
	}

	tree.AddMessagingService(sched)

	var bandwidthWG sync.WaitGroup
	bandwidthWG.Add(1)
	go func() {
		defer bandwidthWG.Done()
		if err := bandwidthTracker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("bandwidth tracker stopped with error")
		}
	}()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // streaming responses run open-ended
		IdleTimeout:  60 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, shutdownTimeout))

	if cfg.MetricsPort > 0 && cfg.MetricsPort != cfg.Port {
		metricsServer := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.MetricsPort),
			Handler: promhttp.Handler(),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error().Err(err).Msg("metrics server stopped with error")
			}
		}()
		go func() {
			<-ctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer shutdownCancel()
			_ = metricsServer.Shutdown(shutdownCtx)
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			logging.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		case <-api.RebootRequested():
			logging.Info().Msg("reboot requested, shutting down")
		case <-ctx.Done():
		}
		cancel()
	}()

	logging.Info().Str("addr", server.Addr).Msg("supervisor tree starting")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor tree error")
		}
	}
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor shutdown error")
		}
	}

	bandwidthWG.Wait()
	flushCtx, flushCancel := context.WithTimeout(context.Background(), finalFlushTimeout)
	if err := bandwidthTracker.Flush(flushCtx); err != nil {
		logging.Warn().Err(err).Msg("final bandwidth flush failed")
	}
	flushCancel()

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("service failed to stop")
		}
	}

	if err := catalogStore.Close(); err != nil {
		logging.Error().Err(err).Msg("error closing catalog database")
	}
	if err := userStore.Close(); err != nil {
		logging.Error().Err(err).Msg("error closing user database")
	}
	if err := serverDB.Close(); err != nil {
		logging.Error().Err(err).Msg("error closing server database")
	}

	logging.Info().Msg("catalog server stopped gracefully")
	os.Exit(exitOK)
}
