// Package main provides the layout server: HTTP API plus WebSocket feed.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/Ekats/mycelica-layout/internal/config"
	"github.com/Ekats/mycelica-layout/internal/db"
	"github.com/Ekats/mycelica-layout/internal/layout"
	"github.com/Ekats/mycelica-layout/internal/metrics"
	"github.com/Ekats/mycelica-layout/internal/models"
	"github.com/Ekats/mycelica-layout/internal/server"
	"github.com/Ekats/mycelica-layout/internal/service"
)

const version = "0.1.0"

func main() {
	wipeDB := flag.Bool("wipe", false, "wipe all data from database on startup (testing only)")
	flag.Parse()

	cfg := config.Load()

	// Dual output: stderr text + file JSON
	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer func() {
		_ = cleanup()
	}()

	logger.Info("layout-server starting",
		"version", version,
		"addr", cfg.ListenAddr,
		"surrealdb_url", cfg.SurrealDBURL,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	dbClient, err := db.NewClient(ctx, db.Config{
		URL:       cfg.SurrealDBURL,
		Namespace: cfg.SurrealDBNamespace,
		Database:  cfg.SurrealDBDatabase,
		Username:  cfg.SurrealDBUser,
		Password:  cfg.SurrealDBPass,
		AuthLevel: cfg.SurrealDBAuthLevel,
	}, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		logger.Info("closing database connection")
		_ = dbClient.Close(context.Background())
	}()

	if err := dbClient.InitSchema(ctx); err != nil {
		logger.Error("failed to initialize database schema", "error", err)
		os.Exit(1)
	}

	if *wipeDB || os.Getenv("MYCELICA_WIPE_DB") == "true" {
		if err := dbClient.WipeData(ctx); err != nil {
			logger.Error("failed to wipe database", "error", err)
			os.Exit(1)
		}
	}

	collector := metrics.NewCollector()
	hub := server.NewHub(logger)
	engine := layout.NewEngineWithConfig(cfg.Columns)
	viewport := models.Viewport{Width: cfg.ViewportWidth, Height: cfg.ViewportHeight}
	svc := service.NewLayoutService(dbClient, engine, collector, hub, viewport)

	srv := server.New(cfg.ListenAddr, svc, collector, hub, logger)
	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
