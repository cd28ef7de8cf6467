package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/caasmo/actiondispatch/core"
	"github.com/caasmo/actiondispatch/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dispatcher is what Handler needs from core.Dispatcher.
type Dispatcher interface {
	Handle(r *http.Request) (core.Response, error)
}

// Handler adapts a Dispatcher to net/http. Dispatch errors become status
// codes, responses are written according to their type.
type Handler struct {
	d      Dispatcher
	logger *slog.Logger
}

func NewHandler(d Dispatcher, logger *slog.Logger) *Handler {
	return &Handler{d: d, logger: logger}
}

// StatusCode maps a dispatch error to an HTTP status.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, core.ErrRouteNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	case errors.Is(err, middleware.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp, err := h.d.Handle(r)
	if err != nil {
		code := StatusCode(err)
		if code == http.StatusInternalServerError {
			h.logger.Error("dispatch failed", "method", r.Method, "path", r.URL.Path, "error", err)
		}
		http.Error(w, http.StatusText(code), code)
		return
	}
	h.write(w, r, resp)
}

func (h *Handler) write(w http.ResponseWriter, r *http.Request, resp core.Response) {
	switch v := resp.(type) {
	case nil:
		w.WriteHeader(http.StatusNoContent)
	case http.Handler:
		v.ServeHTTP(w, r)
	case string:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(v))
	case []byte:
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(v)
	default:
		body, err := json.Marshal(v)
		if err != nil {
			h.logger.Error("failed to encode response", "type", fmt.Sprintf("%T", v), "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}
}

// WithMetricsEndpoint serves g at path and everything else with next.
func WithMetricsEndpoint(next http.Handler, path string, g prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	mux.Handle("/", next)
	return mux
}
