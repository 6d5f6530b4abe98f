package logger

import (
	"log/slog"
	"os"

	"github.com/darregistry/member-registry/go-api-server/internal/config"
)

// Setup installs the process-wide slog logger and returns it.
// Production logs JSON at info, every other env logs text at debug;
// LOG_LEVEL and LOG_FORMAT override either default.
func Setup(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: Level(cfg)}

	var handler slog.Handler
	format := Format(cfg)
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler).With("service", cfg.App.Name)
	slog.SetDefault(logger)

	logger.Info("logger initialized",
		"env", cfg.App.Env,
		"level", opts.Level.Level().String(),
		"format", format,
	)
	return logger
}

// Level resolves the minimum level from LOG_LEVEL, falling back to the env default
func Level(cfg *config.Config) slog.Level {
	if cfg.Log.Level != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(cfg.Log.Level)); err == nil {
			return level
		}
	}
	if cfg.IsProduction() {
		return slog.LevelInfo
	}
	return slog.LevelDebug
}

func Format(cfg *config.Config) string {
	if cfg.Log.Format != "" {
		return cfg.Log.Format
	}
	if cfg.IsProduction() {
		return "json"
	}
	return "text"
}
