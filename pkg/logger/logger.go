package logger

import (
	"io"
	"log/slog"
	"os"
)

// Format selects the output encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatText
)

// config holds logger settings assembled from options.
type config struct {
	output     io.Writer
	level      slog.Leveler
	extractors []ContextExtractor
	format     Format
}

// Option configures a logger built by New or NewWithSentry.
type Option func(*config)

// WithLevel sets the minimum level. Defaults to slog.LevelInfo.
func WithLevel(l slog.Leveler) Option {
	return func(c *config) {
		if l != nil {
			c.level = l
		}
	}
}

// WithOutput sets the destination. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		if w != nil {
			c.output = w
		}
	}
}

// WithFormat selects JSON (default) or text output.
func WithFormat(f Format) Option {
	return func(c *config) {
		c.format = f
	}
}

// WithExtractors adds context extractors applied on every log call.
func WithExtractors(extractors ...ContextExtractor) Option {
	return func(c *config) {
		c.extractors = append(c.extractors, extractors...)
	}
}

func buildConfig(opts ...Option) *config {
	cfg := &config{
		output: os.Stdout,
		level:  slog.LevelInfo,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func (c *config) baseHandler() slog.Handler {
	ho := &slog.HandlerOptions{Level: c.level}
	if c.format == FormatText {
		return slog.NewTextHandler(c.output, ho)
	}
	return slog.NewJSONHandler(c.output, ho)
}

// New creates a structured logger. Output is JSON on stdout at info level
// unless configured otherwise.
func New(opts ...Option) *slog.Logger {
	cfg := buildConfig(opts...)
	return slog.New(NewContextHandler(cfg.baseHandler(), cfg.extractors...))
}

// NewNope creates a no-op logger that discards all output.
// Use this as a default when logging is not configured.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Category derives a logger tagged with component=name, the way the
// dispatcher and its strategies get their own log streams.
func Category(l *slog.Logger, name string) *slog.Logger {
	if l == nil {
		l = NewNope()
	}
	return l.With(slog.String("component", name))
}
