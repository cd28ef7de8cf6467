package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/caasmo/actiondispatch/core"
)

// RequestLog logs every request passing through it with its duration and
// dispatch outcome.
type RequestLog struct {
	logger *slog.Logger
}

func NewRequestLog(logger *slog.Logger) *RequestLog {
	return &RequestLog{logger: logger}
}

func (m *RequestLog) Handle(r *http.Request, next core.Next) (core.Response, error) {
	start := time.Now()
	resp, err := next(r)

	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelWarn
	}
	m.logger.LogAttrs(r.Context(), level, "request",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("remote_ip", r.RemoteAddr),
		slog.String("outcome", core.Outcome(err)),
		slog.Duration("duration", time.Since(start)),
	)
	return resp, err
}
