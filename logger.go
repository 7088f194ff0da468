package biclique

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/hupe1980/biclique/cipher"
)

// Logger wraps slog.Logger with search-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithRunID adds a run identifier to the logger.
func (l *Logger) WithRunID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("run_id", id),
	}
}

// WithCipher adds the cipher name to the logger.
func (l *Logger) WithCipher(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("cipher", name),
	}
}

// WithWindow adds the round window to the logger.
func (l *Logger) WithWindow(w cipher.Window) *Logger {
	return &Logger{
		Logger: l.Logger.With("from_round", w.FromRound, "to_round", w.ToRound),
	}
}

// LogPlan logs the iteration plan of a search.
func (l *Logger) LogPlan(ctx context.Context, p Plan) {
	l.InfoContext(ctx, "search planned",
		"differences", p.NumDifferences,
		"iterations", p.Iterations,
		"trails_per_iteration", p.TrailsPerIteration,
		"bytes_per_trail", p.BytesPerTrail,
		"budget_bytes", p.BudgetBytes,
	)
}

// LogReservation logs the trail memory reserved for an iteration and the
// controller's total reservation after it.
func (l *Logger) LogReservation(ctx context.Context, iteration int, bytes, inUse int64) {
	l.DebugContext(ctx, "memory reserved",
		"iteration", iteration,
		"bytes", bytes,
		"in_use", inUse,
	)
}

// LogPhase logs the end of a delta or nabla phase.
func (l *Logger) LogPhase(ctx context.Context, phase Phase, iteration int, candidates uint64, duration time.Duration) {
	l.DebugContext(ctx, "phase completed",
		"phase", phase.String(),
		"iteration", iteration,
		"candidates", candidates,
		"duration", duration,
	)
}

// LogProgress logs how many candidates of a phase have been processed.
func (l *Logger) LogProgress(ctx context.Context, phase Phase, done, total uint64) {
	l.InfoContext(ctx, "progress",
		"phase", phase.String(),
		"done", done,
		"total", total,
	)
}

// LogWorkerError logs a worker that stopped early.
func (l *Logger) LogWorkerError(ctx context.Context, err *WorkerError) {
	l.WarnContext(ctx, "worker stopped early",
		"worker", err.Worker,
		"phase", err.Phase.String(),
		"error", err.Err,
	)
}

// LogSearch logs a finished search over one window.
func (l *Logger) LogSearch(ctx context.Context, found, maxScore int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"found", found,
			"duration", duration,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "search completed",
			"found", found,
			"max_score", maxScore,
			"duration", duration,
		)
	}
}
