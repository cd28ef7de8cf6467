package actiondispatch

import (
	"log/slog"
	"os"

	"github.com/caasmo/actiondispatch/cache/ristretto"
	"github.com/caasmo/actiondispatch/config"
	"github.com/caasmo/actiondispatch/core"
	"github.com/caasmo/actiondispatch/log"
	"github.com/caasmo/actiondispatch/router"
	"github.com/caasmo/actiondispatch/router/chi"
	"github.com/caasmo/actiondispatch/router/httprouter"
)

// DefaultLoggerOptions logs at debug level without the time attribute.
var DefaultLoggerOptions = log.HandlerOptions(slog.LevelDebug, true)

// WithPhusLogger logs JSON through phuslu/log to stderr. Uses
// DefaultLoggerOptions if opts is nil.
func WithPhusLogger(opts *slog.HandlerOptions) core.Option {
	return withLogger(config.LogFormatJSON, opts)
}

// WithTextLogger logs with the standard library's text handler to stderr.
func WithTextLogger(opts *slog.HandlerOptions) core.Option {
	return withLogger(config.LogFormatText, opts)
}

func withLogger(format string, opts *slog.HandlerOptions) core.Option {
	if opts == nil {
		opts = DefaultLoggerOptions
	}
	return func(d *core.Dispatcher) error {
		h, err := log.NewHandler(format, os.Stderr, opts)
		if err != nil {
			return err
		}
		return core.WithLogger(slog.New(h))(d)
	}
}

func WithMatcherHttprouter() core.Option {
	return core.WithMatcher(httprouter.New)
}

func WithMatcherChi() core.Option {
	return core.WithMatcher(chi.New)
}

// WithCacheRistretto caches built route indexes in a ristretto cache of
// the given size level.
func WithCacheRistretto(level string) core.Option {
	return func(d *core.Dispatcher) error {
		c, err := ristretto.New[router.Matcher](level)
		if err != nil {
			return err
		}
		return core.WithIndexCache(c)(d)
	}
}
