package logger_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/darregistry/member-registry/go-api-server/internal/config"
	"github.com/darregistry/member-registry/go-api-server/internal/shared/logger"
	"github.com/stretchr/testify/assert"
)

func TestLevelAndFormat(t *testing.T) {
	testCases := []struct {
		name   string
		cfg    config.Config
		level  slog.Level
		format string
	}{
		{
			name:   "production defaults",
			cfg:    config.Config{App: config.AppConfig{Env: "production"}},
			level:  slog.LevelInfo,
			format: "json",
		},
		{
			name:   "local defaults",
			cfg:    config.Config{App: config.AppConfig{Env: "local"}},
			level:  slog.LevelDebug,
			format: "text",
		},
		{
			name: "overrides win",
			cfg: config.Config{
				App: config.AppConfig{Env: "production"},
				Log: config.LogConfig{Level: "error", Format: "text"},
			},
			level:  slog.LevelError,
			format: "text",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.level, logger.Level(&tc.cfg))
			assert.Equal(t, tc.format, logger.Format(&tc.cfg))
		})
	}
}

func TestWith_CarriesAttributes(t *testing.T) {
	// Given: a request logger writing to a buffer
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := logger.WithLogger(context.Background(), base)

	// When
	ctx, _ = logger.With(ctx, "memberID", 42)
	logger.FromContext(ctx).Info("chapter deleted")

	// Then
	assert.Contains(t, buf.String(), "memberID=42")
	assert.Contains(t, buf.String(), "chapter deleted")
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	assert.Same(t, slog.Default(), logger.FromContext(context.Background()))
}
