package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/darregistry/member-registry/go-api-server/internal/bootstrap"
	"github.com/darregistry/member-registry/go-api-server/internal/config"
	"github.com/darregistry/member-registry/go-api-server/internal/router"
	"github.com/darregistry/member-registry/go-api-server/internal/shared/database"
	"github.com/darregistry/member-registry/go-api-server/internal/shared/logger"
	"github.com/darregistry/member-registry/go-api-server/internal/shared/metrics"
	"github.com/darregistry/member-registry/go-api-server/internal/shared/validator"
)

func main() {
	env := parseFlags()

	if err := run(env); err != nil {
		slog.Error("server failed", "env", env, "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped", "env", env)
}

// parseFlags parses command line arguments
func parseFlags() string {
	env := flag.String("env", "local", "Environment (local|dev|production)")
	flag.Parse()
	return *env
}

// run wires config, logging, storage and HTTP, then serves until SIGINT or SIGTERM
func run(env string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Logging needs the loaded config for LOG_LEVEL and LOG_FORMAT
	logger.Setup(cfg)
	slog.Info("configuration loaded", "env", env, "driver", cfg.Database.Driver)

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("close database", "error", err)
		}
	}()

	srv, err := setupServer(cfg, db)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}

// setupServer builds the gin engine with every route registered
func setupServer(cfg *config.Config, db *database.DB) (*bootstrap.Server, error) {
	if err := validator.RegisterAll(); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}

	ginEngine := bootstrap.NewBootstrap(cfg).SetupEngine()

	// Metrics recorder is shared by every service; nil disables /metrics
	var recorder *metrics.Recorder
	if cfg.Metrics.Enabled {
		recorder = metrics.NewRecorder(cfg.Metrics.Namespace)
	}

	router.Setup(ginEngine, cfg, db, recorder)

	slog.Info("server configured",
		"env", cfg.App.Env,
		"metrics", cfg.Metrics.Enabled,
	)
	return bootstrap.New(cfg, ginEngine), nil
}
