package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/darregistry/member-registry/go-api-server/internal/config"
	"github.com/darregistry/member-registry/go-api-server/internal/shared/logger"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger writes GORM output through the request-scoped slog logger,
// so SQL lines carry the request_id and any attributes services attached.
type GormLogger struct {
	driver        string
	level         gormlogger.LogLevel
	slowThreshold time.Duration
	// hideSQL drops statement text (and its bound values) from the logs
	hideSQL bool
}

func newLogger(cfg *config.Config) gormlogger.Interface {
	level := gormlogger.Info
	if cfg.IsProduction() {
		level = gormlogger.Error
	}

	return &GormLogger{
		driver:        cfg.Database.Driver,
		level:         level,
		slowThreshold: cfg.Database.SlowQueryThreshold,
		hideSQL:       cfg.IsProduction(),
	}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.log(ctx, gormlogger.Info, slog.LevelInfo, msg, data...)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.log(ctx, gormlogger.Warn, slog.LevelWarn, msg, data...)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.log(ctx, gormlogger.Error, slog.LevelError, msg, data...)
}

// Trace reports one executed statement. Record-not-found is expected on every
// lookup miss and is never logged; statements aborted by the request deadline
// are warnings because the transaction is rolled back on purpose.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := []any{"elapsed", elapsed.String(), "rows", rows}
	if !l.hideSQL {
		fields = append(fields, "sql", sql)
	}

	log := l.logger(ctx)
	switch {
	case err != nil && errors.Is(err, gorm.ErrRecordNotFound):
		return

	case err != nil && (errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)):
		if l.level >= gormlogger.Warn {
			log.WarnContext(ctx, "Query aborted by request context", append(fields, "error", err)...)
		}

	case err != nil:
		if l.level >= gormlogger.Error {
			log.ErrorContext(ctx, "Database query error", append(fields, "error", err)...)
		}

	case l.slowThreshold > 0 && elapsed > l.slowThreshold:
		if l.level >= gormlogger.Warn {
			log.WarnContext(ctx, "Slow SQL query", append(fields, "threshold", l.slowThreshold.String())...)
		}

	case l.level >= gormlogger.Info:
		log.DebugContext(ctx, "SQL query executed", fields...)
	}
}

func (l *GormLogger) log(ctx context.Context, minLevel gormlogger.LogLevel, level slog.Level, msg string, data ...interface{}) {
	if l.level < minLevel {
		return
	}
	l.logger(ctx).Log(ctx, level, fmt.Sprintf(msg, data...))
}

func (l *GormLogger) logger(ctx context.Context) *slog.Logger {
	return logger.FromContext(ctx).With("component", "gorm", "driver", l.driver)
}
