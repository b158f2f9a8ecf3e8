package logger

import (
	"context"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// SentryConfig holds Sentry integration configuration.
type SentryConfig struct {
	DSN         string
	Environment string
	Release     string
	// MinLevel determines which log levels are stored in Sentry. Errors always create issues.
	MinLevel slog.Level
}

// NewWithSentry creates a logger writing to the configured output and to
// Sentry. With an empty DSN, or when the SDK fails to start, only the
// regular output is used. The returned flush waits for buffered events.
func NewWithSentry(sc SentryConfig, opts ...Option) (*slog.Logger, func(time.Duration) bool) {
	cfg := buildConfig(opts...)
	base := cfg.baseHandler()
	noFlush := func(time.Duration) bool { return true }

	if sc.DSN == "" {
		return slog.New(NewContextHandler(base, cfg.extractors...)), noFlush
	}

	environment := sc.Environment
	if environment == "" {
		environment = "production"
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         sc.DSN,
		Environment: environment,
		Release:     sc.Release,
		EnableLogs:  true,
	}); err != nil {
		slog.New(base).Error("failed to initialize Sentry", slog.String("error", err.Error()))
		return slog.New(NewContextHandler(base, cfg.extractors...)), noFlush
	}

	logLevel := []slog.Level{slog.LevelWarn, slog.LevelError}
	if sc.MinLevel >= slog.LevelError {
		logLevel = []slog.Level{slog.LevelError}
	}
	sentryHandler := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   logLevel,
	}.NewSentryHandler(context.Background())

	l := slog.New(NewContextHandler(fanoutHandler{base, sentryHandler}, cfg.extractors...))
	return l, sentry.Flush
}
