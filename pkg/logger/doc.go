// Package logger builds the structured loggers used by the dispatcher and
// the HTTP transport.
//
// Loggers are plain *slog.Logger values. New writes JSON to stdout at info
// level by default:
//
//	log := logger.New(
//	    logger.WithLevel(slog.LevelDebug),
//	    logger.WithExtractors(middlewares.RequestIDExtractor()),
//	)
//
// # Context Extractors
//
// A ContextExtractor pulls one attribute out of the context passed to the
// *Context logging methods. The dispatch Context is itself a
// context.Context, so extractors see stash values and the matched action:
//
//	log.InfoContext(c, "order placed")
//	// {"level":"INFO","msg":"order placed","request_id":"...","action":"/orders/create"}
//
// # Categories
//
// Category tags a logger with a component name. The dispatcher logs under
// "dispatcher" and the chained strategy under "dispatcher.chained", so their
// debug output can be filtered independently.
//
// # Sentry
//
// NewWithSentry fans records out to Sentry as well. Errors become issues,
// warnings are stored as logs. With an empty DSN it degrades to the regular
// output, so the same code path works in development:
//
//	log, flush := logger.NewWithSentry(logger.SentryConfig{DSN: os.Getenv("SENTRY_DSN")})
//	defer flush(2 * time.Second)
package logger
