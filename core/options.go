package core

import (
	"fmt"
	"log/slog"

	"github.com/caasmo/actiondispatch/cache"
	"github.com/caasmo/actiondispatch/container"
	"github.com/caasmo/actiondispatch/router"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

type Option func(*Dispatcher) error

// WithMatcher sets the matcher builder used to index the route table.
func WithMatcher(b router.Builder) Option {
	return func(d *Dispatcher) error {
		d.build = b
		return nil
	}
}

// WithContainer sets the container used for named middleware and class
// targets. Defaults to container.New().
func WithContainer(c container.Container) Option {
	return func(d *Dispatcher) error {
		d.container = c
		return nil
	}
}

// WithLogger sets the logger. Without it the dispatcher uses the
// *slog.Logger bound in the container, or discards.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) error {
		d.logger = l
		return nil
	}
}

// WithIndexCache keeps built route indexes in c, keyed by table generation,
// instead of rebuilding them on every request.
func WithIndexCache(c cache.Cache[router.Matcher]) Option {
	return func(d *Dispatcher) error {
		d.indexCache = c
		return nil
	}
}

// WithObservers adds observers to every dispatched chain.
func WithObservers(obs ...Observer) Option {
	return func(d *Dispatcher) error {
		d.observers = append(d.observers, obs...)
		return nil
	}
}

// WithMetrics registers the dispatch metrics on reg.
func WithMetrics(reg prometheus.Registerer, namespace string) Option {
	return func(d *Dispatcher) error {
		m, err := NewMetrics(reg, namespace)
		if err != nil {
			return fmt.Errorf("dispatch metrics: %w", err)
		}
		d.metrics = m
		return nil
	}
}

// WithTracerProvider traces every Handle with a tracer from tp. Without it
// the global provider is used.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(d *Dispatcher) error {
		d.tracer = tp.Tracer(tracerName)
		return nil
	}
}

// WithClass registers a class, see Dispatcher.RegisterClass.
func WithClass(name string, v any) Option {
	return func(d *Dispatcher) error {
		return d.RegisterClass(name, v)
	}
}

// WithSharedClass registers a class, see Dispatcher.RegisterSharedClass.
func WithSharedClass(name string, v any) Option {
	return func(d *Dispatcher) error {
		return d.RegisterSharedClass(name, v)
	}
}
