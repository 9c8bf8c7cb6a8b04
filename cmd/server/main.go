package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/speechpath/speechpath-server/internal/api"
	"github.com/speechpath/speechpath-server/internal/config"
	"github.com/speechpath/speechpath-server/internal/filestore"
	"github.com/speechpath/speechpath-server/internal/logger"
	"github.com/speechpath/speechpath-server/internal/repository"
	"github.com/speechpath/speechpath-server/internal/repository/memory"
	"github.com/speechpath/speechpath-server/internal/repository/postgres"
	"github.com/speechpath/speechpath-server/internal/service"
	"github.com/speechpath/speechpath-server/internal/speech"
	"github.com/speechpath/speechpath-server/internal/websocket"
	"github.com/speechpath/speechpath-server/internal/worker"
)

func main() {
	_ = godotenv.Load()
	log := logger.New()
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("failed to load config", "error", err)
	}

	var repos *repository.Repositories
	switch cfg.StorageDriver {
	case "memory":
		log.Warnw("using volatile in-memory storage; nothing survives a restart")
		repos = memory.NewRepositories()
	default:
		db, err := postgres.NewConnection(cfg.DatabaseURL)
		if err != nil {
			log.Fatalw("failed to connect to database", "error", err)
		}
		repos = postgres.NewRepositories(db)
	}

	files, err := filestore.New(cfg.UploadDir)
	if err != nil {
		log.Fatalw("failed to prepare upload dir", "error", err)
	}

	pool := worker.NewPool(cfg.AnalysisWorkers, cfg.AnalysisQueueSize, log)
	pool.Start()

	hub := websocket.NewHub(log)

	seed := time.Now().UnixNano()
	services := service.NewServices(cfg, service.Deps{
		Repos:       repos,
		Files:       files,
		Transcriber: speech.NewMockTranscriber(seed, 2*time.Second),
		Analyzer:    speech.NewAnalyzer(seed),
		Pool:        pool,
		Notifier:    hub,
		Log:         log,
	})

	router := api.NewRouter(services, hub, cfg)

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Port, "storage", cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	hub.Stop()
	pool.Stop()

	log.Infow("server stopped")
}
