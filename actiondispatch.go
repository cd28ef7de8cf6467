// Package actiondispatch wires a core.Dispatcher, its built-in middlewares
// and an HTTP server from a config file.
package actiondispatch

import (
	"fmt"
	"net/http"
	"os"

	"github.com/caasmo/actiondispatch/config"
	"github.com/caasmo/actiondispatch/container"
	"github.com/caasmo/actiondispatch/core"
	"github.com/caasmo/actiondispatch/log"
	"github.com/caasmo/actiondispatch/middleware"
	"github.com/caasmo/actiondispatch/server"
	"github.com/caasmo/actiondispatch/topk"
	"github.com/prometheus/client_golang/prometheus"
)

// NewFromFile loads the config at path and calls New with it.
func NewFromFile(path string, opts ...core.Option) (*core.Dispatcher, *server.Server, error) {
	cfg, err := config.Load(path, log.Discard())
	if err != nil {
		return nil, nil, err
	}
	return New(cfg, opts...)
}

// New builds a dispatcher and server from cfg. Options run after the ones
// derived from cfg, so they can override the matcher, logger or cache and
// register the application's classes. Routes declared in cfg are
// registered last.
func New(cfg *config.Config, opts ...core.Option) (*core.Dispatcher, *server.Server, error) {
	logger, err := log.New(cfg.Log, os.Stderr)
	if err != nil {
		return nil, nil, err
	}

	c, err := newContainer(cfg)
	if err != nil {
		return nil, nil, err
	}

	matcher, err := matcherOption(cfg.Dispatch.Matcher)
	if err != nil {
		return nil, nil, err
	}

	base := []core.Option{
		matcher,
		core.WithContainer(c),
		core.WithLogger(logger),
	}
	if cfg.Dispatch.IndexCache {
		base = append(base, WithCacheRistretto(cfg.Cache.Level))
	}

	var reg *prometheus.Registry
	if cfg.Metrics.Enabled {
		reg = prometheus.NewRegistry()
		base = append(base, core.WithMetrics(reg, cfg.Metrics.Namespace))
	}

	for name, ctor := range middleware.Classes() {
		base = append(base, core.WithClass(name, ctor))
	}

	d, err := core.NewDispatcher(append(base, opts...)...)
	if err != nil {
		return nil, nil, fmt.Errorf("dispatcher: %w", err)
	}
	logger = d.Logger()

	if err := d.RegisterMiddlewares(cfg.Middlewares...); err != nil {
		return nil, nil, err
	}
	if err := RegisterRoutes(d, cfg.Routes); err != nil {
		return nil, nil, err
	}
	logger.Debug("dispatch: total amount of routes", "routes", len(d.Routes()))

	var handler http.Handler = server.NewHandler(d, logger)
	if reg != nil {
		handler = server.WithMetricsEndpoint(handler, cfg.Metrics.Endpoint, reg)
	}

	return d, server.NewServer(cfg.Server, handler, logger), nil
}

// RegisterRoutes registers routes declared in a config file.
func RegisterRoutes(d *core.Dispatcher, routes []config.Route) error {
	for _, r := range routes {
		target, err := core.ParseTarget(r.Target)
		if err != nil {
			return fmt.Errorf("route %s: %w", r, err)
		}
		if _, err := d.RegisterRoute(r.Method, r.Pattern, target, core.Names(r.Middleware...)...); err != nil {
			return fmt.Errorf("route %s: %w", r, err)
		}
	}
	return nil
}

func newContainer(cfg *config.Config) (*container.Registry, error) {
	c := container.New()

	sketch := topk.New(topk.SketchParams{
		K:               cfg.HotPaths.K,
		WindowSize:      cfg.HotPaths.WindowSize,
		TickSize:        cfg.HotPaths.TickSize,
		HotSharePercent: cfg.HotPaths.HotSharePercent,
	})

	bindings := map[string]any{
		container.KeyOf[*config.Config]():        cfg,
		container.KeyOf[*topk.TopKSketch]():      sketch,
		container.KeyOf[middleware.AuthSecret](): middleware.AuthSecret(cfg.Auth.JwtSecret),
	}
	for key, v := range bindings {
		if err := c.Set(key, v, true); err != nil {
			return nil, fmt.Errorf("container: %w", err)
		}
	}
	return c, nil
}

func matcherOption(name string) (core.Option, error) {
	switch name {
	case config.MatcherHttprouter:
		return WithMatcherHttprouter(), nil
	case config.MatcherChi:
		return WithMatcherChi(), nil
	default:
		return nil, fmt.Errorf("unknown matcher %q", name)
	}
}
