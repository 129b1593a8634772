package db

import (
	"context"
	"errors"
	"time"

	"github.com/buy2brands/wholesale-api/pkg/logger"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// queryLogger routes GORM's trace hook into the service logger. Only slow
// statements and driver failures are reported; record-not-found is a normal
// outcome for lookups and stays silent.
type queryLogger struct {
	logg      *logger.Logger
	threshold time.Duration
	silent    bool
}

func newQueryLogger(logg *logger.Logger, threshold time.Duration) gormlogger.Interface {
	if logg == nil {
		return gormlogger.Discard
	}
	return &queryLogger{logg: logg, threshold: threshold}
}

func (q *queryLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	next := *q
	next.silent = level == gormlogger.Silent
	return &next
}

func (q *queryLogger) Info(ctx context.Context, msg string, _ ...any) {
	if !q.silent {
		q.logg.Debug(ctx, msg)
	}
}

func (q *queryLogger) Warn(ctx context.Context, msg string, _ ...any) {
	if !q.silent {
		q.logg.Warn(ctx, msg)
	}
}

func (q *queryLogger) Error(ctx context.Context, msg string, _ ...any) {
	if !q.silent {
		q.logg.Error(ctx, msg, nil)
	}
}

func (q *queryLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if q.silent {
		return
	}
	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && !errors.Is(err, context.Canceled)
	slow := q.threshold > 0 && elapsed > q.threshold
	if !failed && !slow {
		return
	}

	sql, rows := fc()
	fields := q.logg.WithFields(ctx, map[string]any{
		"sql":         sql,
		"rows":        rows,
		"duration_ms": elapsed.Milliseconds(),
	})
	if failed {
		q.logg.Error(fields, "db.query_failed", err)
		return
	}
	q.logg.Warn(fields, "db.slow_query")
}
