// Package main provides the entry point for the MailTrack service: a
// mail open-tracking web application serving tracking pixel links for
// authenticated users.
package main

import (
	"MailTrack-Backend/internal/auth"
	"MailTrack-Backend/internal/config"
	"MailTrack-Backend/internal/database"
	httpHandler "MailTrack-Backend/internal/handler/http"
	"MailTrack-Backend/internal/identity"
	"MailTrack-Backend/internal/repository/postgres"
	"MailTrack-Backend/internal/service"
	"MailTrack-Backend/pkg/logger"
	"MailTrack-Backend/pkg/useragent"
	"context"
	lg "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)
	defer func() {
		if err := log.Sync(); err != nil {
			lg.Printf("ERROR: failed to sync zap logger: %v\n", err)
		}
	}()

	log.Info("starting MailTrack service", zap.String("env", cfg.Env))

	// Initialize database connection
	db, err := database.NewConnection(&cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, log); err != nil {
			log.Error("failed to close database connection", zap.Error(err))
		}
	}()

	// Run database migrations if enabled
	if cfg.Database.AutoMigrate {
		log.Info("running database migrations (auto_migrate: true)")
		if err := database.AutoMigrate(db, log); err != nil {
			log.Fatal("failed to run database migrations", zap.Error(err))
		}
	} else {
		log.Info("skipping database migrations (auto_migrate: false)")
	}

	// Seed initial data if enabled
	if cfg.Database.SeedData {
		log.Info("seeding database with initial data (seed_data: true)")
		if err := database.SeedData(db, &cfg.Identity, log); err != nil {
			log.Fatal("failed to seed database", zap.Error(err))
		}
	}

	// Initialize User-Agent parser for hit enrichment
	regexesPath := "assets/regexes.yaml"
	if err := useragent.InitGlobalParser(regexesPath, log); err != nil {
		log.Warn("failed to initialize User-Agent parser, using keyword fallback", zap.Error(err))
	}

	// Initialize storage and services
	storage := postgres.New(db, log)
	tracker := service.NewTracker(storage, cfg.Tracking.Location(), log)

	sessionService := auth.NewSessionService(&auth.SessionConfig{
		SecretKey: []byte(cfg.Identity.SessionSecret),
		TTL:       auth.SessionTTL,
		Issuer:    "MailTrack-Backend",
	}, storage)

	// Select the identity provider
	var provider identity.Provider
	if cfg.Identity.Mode == "local" {
		provider = identity.NewLocalProvider(storage, auth.NewPasswordService(), log)
		log.Info("using local identity provider")
	} else {
		provider = identity.NewRemoteProvider(cfg.Identity.SignInEndpoint, cfg.Identity.APIKey, log)
		log.Info("using remote identity provider", zap.String("endpoint", cfg.Identity.SignInEndpoint))
	}

	// Create HTTP server
	httpServer, err := httpHandler.NewServer(storage, tracker, provider, sessionService, log, cfg.Tracking.BaseURL)
	if err != nil {
		log.Fatal("failed to create HTTP server", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      httpServer.SetupRoutes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("starting HTTP server", zap.String("address", cfg.HTTPServer.Address))

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server failed", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down MailTrack service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown HTTP server", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}
}
