package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/flashdrill/internal/api"
	"github.com/vytor/flashdrill/internal/config"
	"github.com/vytor/flashdrill/internal/db"
	"github.com/vytor/flashdrill/internal/jobs"
	"github.com/vytor/flashdrill/internal/logger"
	"github.com/vytor/flashdrill/internal/repository/sqlite"
	"github.com/vytor/flashdrill/internal/services"
	"github.com/vytor/flashdrill/internal/worker"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}

	log.Info("===========================================")
	log.Info("FlashDrill Server Starting")
	log.Info("===========================================")
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("import_worker_count=%d", cfg.ImportWorkerCount)
	log.Debug("import_queue_size=%d", cfg.ImportQueueSize)
	log.Debug("default_group=%s", cfg.DefaultGroup)
	log.Debug("study: timeout=%ds, warn=%ds, wrong_delay=%ds, sound=%t, tts=%t",
		cfg.StudyTimeoutSeconds, cfg.StudyWarnSeconds, cfg.StudyWrongDelaySeconds, cfg.SoundEnabled, cfg.TTSEnabled)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open database
	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	groupRepo := sqlite.NewGroupRepository(database.DB)
	cardRepo := sqlite.NewCardRepository(database.DB)

	importPool := worker.NewPool(cfg.ImportWorkerCount, cfg.ImportQueueSize)
	importPool.Start(ctx)

	groupService := services.NewGroupService(groupRepo, cfg.DefaultGroup)
	cardService := services.NewCardService(groupRepo, cardRepo, jobs.NewWorkerQueue(importPool, cardRepo))
	studyService := services.NewStudyService(ctx, groupRepo, cardRepo, cfg.Study())

	if err := groupService.EnsureDefaultGroup(ctx); err != nil {
		log.Error("failed to create default group: %v", err)
		os.Exit(1)
	}

	srv := &api.Server{
		DB:           database,
		GroupService: groupService,
		CardService:  cardService,
		StudyService: studyService,
	}

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	// Sessions stop before the pool and the database they write to.
	log.Debug("stopping study sessions")
	studyService.Shutdown()

	log.Debug("stopping import pool")
	importPool.Stop()

	log.Info("===========================================")
	log.Info("FlashDrill Server Stopped")
	log.Info("===========================================")
}
