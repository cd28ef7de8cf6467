// Package log builds the slog loggers used across the dispatcher from the
// [log] config section.
package log

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/caasmo/actiondispatch/config"
	phuslog "github.com/phuslu/log"
)

// HandlerOptions returns the slog options for level. When omitTime is set
// the time attribute is dropped, for output that is timestamped by the
// process supervisor.
func HandlerOptions(level slog.Leveler, omitTime bool) *slog.HandlerOptions {
	opts := &slog.HandlerOptions{Level: level}
	if omitTime {
		opts.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		}
	}
	return opts
}

// NewHandler returns a JSON handler backed by phuslu/log, or the standard
// text handler, writing to w.
func NewHandler(format string, w io.Writer, opts *slog.HandlerOptions) (slog.Handler, error) {
	switch format {
	case config.LogFormatJSON:
		return phuslog.SlogNewJSONHandler(w, opts), nil
	case config.LogFormatText:
		return slog.NewTextHandler(w, opts), nil
	default:
		return nil, fmt.Errorf("log: unknown format %q", format)
	}
}

// New builds a logger from cfg writing to w.
func New(cfg config.Log, w io.Writer) (*slog.Logger, error) {
	h, err := NewHandler(cfg.Format, w, HandlerOptions(cfg.Level.Level, false))
	if err != nil {
		return nil, err
	}
	return slog.New(h), nil
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
