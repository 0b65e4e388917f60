package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/avilaroman/cadenza/internal/app"
	"github.com/avilaroman/cadenza/internal/artwork"
	"github.com/avilaroman/cadenza/internal/catalog"
	"github.com/avilaroman/cadenza/internal/config"
	"github.com/avilaroman/cadenza/internal/constants"
	"github.com/avilaroman/cadenza/internal/handlers"
	"github.com/avilaroman/cadenza/internal/logger"
	"github.com/avilaroman/cadenza/internal/store"
	syncsvc "github.com/avilaroman/cadenza/internal/sync"
	"github.com/avilaroman/cadenza/internal/tagging"
)

func main() {
	cfg := config.Load()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	db, err := store.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		appLogger.Error("Failed to init DB", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	artStore, err := artwork.NewStore(cfg.ArtworkDir)
	if err != nil {
		appLogger.Error("Failed to init artwork store", "error", err)
		os.Exit(1)
	}

	settings := store.NewSettingsRepo(db)
	provider := catalog.NewFSProvider(cfg.MediaDirs, appLogger)
	artResolver := app.NewArtResolver(tagging.EmbeddedPictureExtractor{}, artStore, appLogger)
	audioResolver := app.NewAudioMetaResolver(db, tagging.FastReader{}, tagging.DeepProber{}, appLogger)

	syncService := syncsvc.NewService(provider, settings, db, artResolver, audioResolver, cfg.ScanWorkers, appLogger)
	defer syncService.Stop()

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h := handlers.NewHandler(syncService, db, settings, appLogger)
	h.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		appLogger.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server shutdown error", "error", err)
	}
}
