package main

import (
	"net/http"
	"time"

	"github.com/caasmo/actiondispatch/config"
	"github.com/caasmo/actiondispatch/core"
	"github.com/caasmo/actiondispatch/middleware"
)

func classOptions() []core.Option {
	return []core.Option{
		core.WithSharedClass("HealthController", NewHealthController),
		core.WithClass("EchoController", EchoController{}),
	}
}

// HealthController reports liveness. It gets the loaded config injected and
// is shared, so uptime counts from the first health check.
type HealthController struct {
	started time.Time
	matcher string
}

func NewHealthController(cfg *config.Config) *HealthController {
	return &HealthController{started: time.Now(), matcher: cfg.Dispatch.Matcher}
}

type health struct {
	Status  string    `json:"status"`
	Matcher string    `json:"matcher"`
	Started time.Time `json:"started"`
	Uptime  string    `json:"uptime"`
}

func (h *HealthController) Check(r *http.Request) (health, error) {
	return health{
		Status:  "ok",
		Matcher: h.matcher,
		Started: h.started,
		Uptime:  time.Since(h.started).Round(time.Second).String(),
	}, nil
}

// EchoController echoes path params back. It has no dependencies and is
// instantiated as a zero value.
type EchoController struct{}

func (EchoController) Show(r *http.Request, params ...string) (map[string]any, error) {
	out := map[string]any{"params": params}
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		out["subject"] = claims.Subject
	}
	return out, nil
}
