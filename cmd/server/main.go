package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"agency-itinerary-service/internal/domain/entity"
	"agency-itinerary-service/internal/domain/repository"
	"agency-itinerary-service/internal/infrastructure/config"
	"agency-itinerary-service/internal/infrastructure/persistence"
	"agency-itinerary-service/internal/infrastructure/router"
	sinkRepo "agency-itinerary-service/internal/interface/repository"
	"agency-itinerary-service/internal/usecase"
	"agency-itinerary-service/pkg/logger"
	"agency-itinerary-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger("info").Fatal("Failed to load config", "error", err)
	}

	// Create logger
	log := logger.NewLogger(cfg.LogLevel)
	defer log.Sync()
	log.Info("Starting Agency Itinerary Service", "version", cfg.AppVersion)

	// Resolve the source profile
	profiles := router.NewProfileRouter(log)
	for _, p := range config.BuiltinProfiles() {
		profiles.Register(p)
	}
	base, ok := profiles.Resolve(cfg.SourceProfile)
	if !ok {
		log.Fatal("Unknown source profile", "profile", cfg.SourceProfile, "known", profiles.Names())
	}
	profile, err := cfg.ResolveProfile(base)
	if err != nil {
		log.Fatal("Invalid source profile", "profile", cfg.SourceProfile, "error", err)
	}
	log.Info("Using source profile",
		"profile", profile.Name,
		"source", profile.SourceTable,
		"target", profile.TargetTable,
		"legColumns", profile.Rules.LegColumns,
		"maxLegs", profile.Rules.MaxLegs,
		"gap", profile.Rules.GapThreshold.String(),
		"anchor", profile.Rules.Anchor.String(),
		"overflow", profile.Rules.Overflow.String(),
		"dedupKey", profile.Rules.DedupKey.String())

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conns := &connections{}
	defer conns.close(log)

	source, err := conns.openSource(ctx, cfg, profile)
	if err != nil {
		log.Fatal("Failed to open row source", "driver", cfg.SourceDriver, "error", err)
	}
	sink, err := conns.openSink(ctx, cfg, profile)
	if err != nil {
		log.Fatal("Failed to open itinerary sink", "driver", cfg.SinkDriver, "error", err)
	}

	// Set up the run log
	var runs repository.RunRepository
	if cfg.MongoURI != "" {
		log.Info("Connecting to MongoDB")
		mongoClient, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoUser, cfg.MongoPassword)
		if err != nil {
			log.Fatal("Failed to connect to MongoDB", "error", err)
		}
		defer func() {
			if err := mongoClient.Disconnect(context.Background()); err != nil {
				log.Error("MongoDB disconnect error", "error", err)
			}
		}()
		runs = sinkRepo.NewMongoRunRepository(persistence.GetDatabase(mongoClient, cfg.MongoDB))
	}

	m := metrics.NewMetrics("itinerary", prometheus.DefaultRegisterer)
	orchestrator := usecase.NewBatchOrchestrator(profile, source, sink, runs, m, log, usecase.BatchOptions{
		BatchSize: cfg.BatchSize,
		Workers:   cfg.Workers,
	})

	// Set up HTTP server for metrics
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Run the segmentation job in a goroutine
	done := make(chan *entity.SegmentationRun, 1)
	go func() {
		run, err := orchestrator.Run(ctx)
		if err != nil {
			log.Error("Segmentation run failed", "error", err)
		}
		done <- run
	}()

	// Wait for the job or an interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case sig := <-sigChan:
		log.Info("Received signal", "signal", sig)
		cancel() // stop submitting batches
		run := <-done
		exitCode = runExitCode(run)
	case run := <-done:
		exitCode = runExitCode(run)
		if !cfg.ExitOnComplete {
			log.Info("Run finished, serving metrics until interrupted")
			sig := <-sigChan
			log.Info("Received signal", "signal", sig)
		}
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	log.Info("Agency Itinerary Service stopped", "exitCode", exitCode)
	if exitCode != 0 {
		conns.close(log)
		log.Sync()
		os.Exit(exitCode)
	}
}

func runExitCode(run *entity.SegmentationRun) int {
	if run == nil || run.Status != entity.RunStatusCompleted {
		return 1
	}
	return 0
}

// connections owns the database handles opened for the source and the sink.
// The same DSN on the same driver shares one handle.
type connections struct {
	sqlDBs  map[string]*sql.DB
	gormDBs map[string]*gorm.DB
	pgx     interface{ Close() }
	closed  bool
}

func (c *connections) sqlDB(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	key := driver + "|" + dsn
	if db, ok := c.sqlDBs[key]; ok {
		return db, nil
	}
	db, err := persistence.OpenSQL(ctx, driver, dsn)
	if err != nil {
		return nil, err
	}
	if c.sqlDBs == nil {
		c.sqlDBs = make(map[string]*sql.DB)
	}
	c.sqlDBs[key] = db
	return db, nil
}

func (c *connections) gormConn(dsn string, workers int) (*gorm.DB, error) {
	if db, ok := c.gormDBs[dsn]; ok {
		return db, nil
	}
	db, err := persistence.NewGormDB(dsn, workers)
	if err != nil {
		return nil, err
	}
	if c.gormDBs == nil {
		c.gormDBs = make(map[string]*gorm.DB)
	}
	c.gormDBs[dsn] = db
	return db, nil
}

func (c *connections) openSource(ctx context.Context, cfg *config.Config, profile entity.SourceProfile) (repository.BookingRowRepository, error) {
	switch cfg.SourceDriver {
	case config.DriverPostgres:
		db, err := c.gormConn(cfg.SourceDSN, cfg.Workers)
		if err != nil {
			return nil, err
		}
		return sinkRepo.NewGormBookingRowRepository(db, profile, cfg.SourceOrderBy), nil
	case config.DriverDuckDB, config.DriverSQLite:
		db, err := c.sqlDB(ctx, cfg.SourceDriver, cfg.SourceDSN)
		if err != nil {
			return nil, err
		}
		return sinkRepo.NewSQLBookingRowRepository(db, profile, cfg.SourceOrderBy), nil
	}
	return nil, fmt.Errorf("unsupported source driver %q", cfg.SourceDriver)
}

func (c *connections) openSink(ctx context.Context, cfg *config.Config, profile entity.SourceProfile) (repository.ItineraryRepository, error) {
	switch cfg.SinkDriver {
	case config.DriverPostgres:
		db, err := c.gormConn(cfg.SinkDSN, cfg.Workers)
		if err != nil {
			return nil, err
		}
		return sinkRepo.NewGormItineraryRepository(db, profile), nil
	case config.DriverPgx:
		pool, err := persistence.NewPgxPool(ctx, cfg.SinkDSN, int32(cfg.Workers))
		if err != nil {
			return nil, err
		}
		c.pgx = pool
		return sinkRepo.NewPgxItineraryRepository(pool, profile), nil
	case config.DriverDuckDB:
		db, err := c.sqlDB(ctx, cfg.SinkDriver, cfg.SinkDSN)
		if err != nil {
			return nil, err
		}
		return sinkRepo.NewSQLItineraryRepository(db, sinkRepo.DialectDuckDB, profile), nil
	case config.DriverSQLite:
		db, err := c.sqlDB(ctx, cfg.SinkDriver, cfg.SinkDSN)
		if err != nil {
			return nil, err
		}
		return sinkRepo.NewSQLItineraryRepository(db, sinkRepo.DialectSQLite, profile), nil
	}
	return nil, fmt.Errorf("unsupported sink driver %q", cfg.SinkDriver)
}

func (c *connections) close(log logger.Logger) {
	if c.closed {
		return
	}
	c.closed = true
	for key, db := range c.sqlDBs {
		if err := db.Close(); err != nil {
			log.Error("Database close error", "driver", strings.SplitN(key, "|", 2)[0], "error", err)
		}
	}
	for _, db := range c.gormDBs {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	if c.pgx != nil {
		c.pgx.Close()
	}
}
