package core

import (
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/caasmo/actiondispatch/cache"
	"github.com/caasmo/actiondispatch/container"
	"github.com/caasmo/actiondispatch/router"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

const tracerName = "github.com/caasmo/actiondispatch/core"

// Dispatcher maps requests to registered actions and runs them through
// their middleware.
//
// Routes, classes and middleware names are registered during setup; Handle
// may then be called concurrently. Registering while serving is not
// supported: requests in flight may or may not see the new route.
type Dispatcher struct {
	table     *RouteTable
	container container.Container
	logger    *slog.Logger
	build     router.Builder

	// indexCache keeps built matchers per table generation. When nil the
	// index is rebuilt on every Handle.
	indexCache cache.Cache[router.Matcher]
	flight     singleflight.Group

	classesMu sync.RWMutex
	classes   map[string]class

	observers []Observer
	metrics   *Metrics
	tracer    trace.Tracer
}

// NewDispatcher creates a Dispatcher. A matcher is required.
func NewDispatcher(opts ...Option) (*Dispatcher, error) {
	d := &Dispatcher{
		table:   NewRouteTable(),
		classes: make(map[string]class),
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	if d.build == nil {
		return nil, fmt.Errorf("matcher is required but was not provided (use WithMatcher)")
	}
	if d.container == nil {
		d.container = container.New()
	}

	loggerKey := container.KeyOf[*slog.Logger]()
	if d.logger == nil && d.container.Has(loggerKey) {
		if v, err := d.container.Get(loggerKey); err == nil {
			d.logger, _ = v.(*slog.Logger)
		}
	}
	if d.logger == nil {
		d.logger = slog.New(slog.DiscardHandler)
	}
	if !d.container.Has(loggerKey) {
		if err := d.container.Set(loggerKey, d.logger, true); err != nil {
			return nil, err
		}
	}

	if d.tracer == nil {
		d.tracer = otel.Tracer(tracerName)
	}

	return d, nil
}

// RegisterRoute adds a route. Registration only fails for an empty method,
// an empty target or an empty middleware reference.
func (d *Dispatcher) RegisterRoute(method, pattern string, target Target, mw ...MiddlewareRef) (*Action, error) {
	a, err := NewAction(method, pattern, target, mw...)
	if err != nil {
		return nil, err
	}
	d.table.Add(a)
	d.logger.Debug("dispatch: route registered", "method", a.method, "pattern", a.pattern, "target", target.String())
	return a, nil
}

func (d *Dispatcher) Get(pattern string, target Target, mw ...MiddlewareRef) (*Action, error) {
	return d.RegisterRoute(MethodGet, pattern, target, mw...)
}

func (d *Dispatcher) Head(pattern string, target Target, mw ...MiddlewareRef) (*Action, error) {
	return d.RegisterRoute(MethodHead, pattern, target, mw...)
}

func (d *Dispatcher) Post(pattern string, target Target, mw ...MiddlewareRef) (*Action, error) {
	return d.RegisterRoute(MethodPost, pattern, target, mw...)
}

func (d *Dispatcher) Put(pattern string, target Target, mw ...MiddlewareRef) (*Action, error) {
	return d.RegisterRoute(MethodPut, pattern, target, mw...)
}

func (d *Dispatcher) Patch(pattern string, target Target, mw ...MiddlewareRef) (*Action, error) {
	return d.RegisterRoute(MethodPatch, pattern, target, mw...)
}

func (d *Dispatcher) Delete(pattern string, target Target, mw ...MiddlewareRef) (*Action, error) {
	return d.RegisterRoute(MethodDelete, pattern, target, mw...)
}

func (d *Dispatcher) Connect(pattern string, target Target, mw ...MiddlewareRef) (*Action, error) {
	return d.RegisterRoute(MethodConnect, pattern, target, mw...)
}

func (d *Dispatcher) Options(pattern string, target Target, mw ...MiddlewareRef) (*Action, error) {
	return d.RegisterRoute(MethodOptions, pattern, target, mw...)
}

func (d *Dispatcher) Trace(pattern string, target Target, mw ...MiddlewareRef) (*Action, error) {
	return d.RegisterRoute(MethodTrace, pattern, target, mw...)
}

// RegisterClass makes name resolvable as a class target or named
// middleware. v is a constructor (func returning T or (T, error), its
// parameters injected from the container), a prototype value, or a
// reflect.Type. Each dispatch gets a new instance; a prototype is copied
// into it.
func (d *Dispatcher) RegisterClass(name string, v any) error {
	return d.registerClass(name, v, false)
}

// RegisterSharedClass is RegisterClass for a class built on its first
// dispatch and reused by every later one.
func (d *Dispatcher) RegisterSharedClass(name string, v any) error {
	return d.registerClass(name, v, true)
}

func (d *Dispatcher) registerClass(name string, v any, share bool) error {
	if name == "" {
		return fmt.Errorf("%w: empty class name", ErrInvalidRoute)
	}
	cls, err := newClass(v)
	if err != nil {
		return err
	}
	if share {
		cls.shared = &shared{}
	}

	d.classesMu.Lock()
	defer d.classesMu.Unlock()
	d.classes[name] = cls
	return nil
}

// RegisterMiddlewares binds every named class not yet in the container as a
// singleton, so routes can refer to it by name.
func (d *Dispatcher) RegisterMiddlewares(names ...string) error {
	for _, name := range names {
		if d.container.Has(name) {
			continue
		}

		d.classesMu.RLock()
		cls, ok := d.classes[name]
		d.classesMu.RUnlock()
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownMiddleware, name)
		}

		if err := d.container.Set(name, cls.concrete(), true); err != nil {
			return fmt.Errorf("register middleware %q: %w", name, err)
		}
		d.logger.Debug("dispatch: middleware registered", "middleware", name)
	}
	return nil
}

// Routes lists the registered routes in registration order.
func (d *Dispatcher) Routes() []Endpoint {
	return d.table.Endpoints()
}

func (d *Dispatcher) Table() *RouteTable {
	return d.table
}

func (d *Dispatcher) Container() container.Container {
	return d.container
}

func (d *Dispatcher) Logger() *slog.Logger {
	return d.logger
}

// Handle dispatches r and returns the response produced by the chain. All
// failures are returned as errors wrapping one of the Err values of this
// package, or the error returned by a middleware or handler.
func (d *Dispatcher) Handle(r *http.Request) (resp Response, err error) {
	start := time.Now()
	method := strings.ToLower(r.Method)
	path := r.URL.Path

	ctx, span := d.tracer.Start(r.Context(), "dispatch "+strings.ToUpper(method),
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.request.method", r.Method),
			attribute.String("url.path", path),
		),
	)
	defer func() {
		outcome := Outcome(err)
		span.SetAttributes(attribute.String("dispatch.outcome", outcome))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()

		if d.metrics != nil {
			d.metrics.observe(method, outcome, time.Since(start))
		}
	}()

	d.logger.Debug("dispatch: request", "method", r.Method, "target", path)

	m, err := d.index()
	if err != nil {
		d.logger.Error("dispatch: failed to build route index", "error", err)
		return nil, fmt.Errorf("%w: build route index: %w", ErrInternalDispatch, err)
	}

	res := m.Match(strings.ToUpper(method), path)
	d.logger.Debug("dispatch: match complete", "result", res.Status.String())

	switch res.Status {
	case router.Found:
	case router.NotFound:
		return nil, fmt.Errorf("%w: %s %s", ErrRouteNotFound, r.Method, path)
	case router.MethodNotAllowed:
		return nil, fmt.Errorf("%w: %s %s", ErrMethodNotAllowed, r.Method, path)
	default:
		return nil, fmt.Errorf("%w: matcher returned %s", ErrInternalDispatch, res.Status)
	}

	action, ok := d.table.lookup(method, res.ID)
	if !ok {
		d.logger.Warn("dispatch: stale route id", "method", method, "id", res.ID)
		return nil, fmt.Errorf("%w: %s %s: route id %d not in table", ErrRouteNotFound, r.Method, path, res.ID)
	}
	span.SetAttributes(attribute.String("http.route", action.pattern))

	r = r.WithContext(router.WithParams(ctx, res.Params))

	chain, err := d.resolve(action, res.Params)
	if err != nil {
		return nil, err
	}
	chain.WithObservers(d.observers...)
	d.logger.Debug("dispatch: chain resolved", "actions", chain.Len())

	resp, err = d.invoke(chain.Handler(), r)
	d.logger.Debug("dispatch: call chain complete", "outcome", Outcome(err))
	return resp, err
}

// invoke runs the chain and turns panics into ErrInternalDispatch. A zero
// valued class hitting a nil field ends up here.
func (d *Dispatcher) invoke(h Next, r *http.Request) (resp Response, err error) {
	defer func() {
		if p := recover(); p != nil {
			d.logger.Error("dispatch: panic during invocation", "panic", p, "stack", string(debug.Stack()))
			resp = nil
			err = fmt.Errorf("%w: panic: %v", ErrInternalDispatch, p)
		}
	}()
	return h(r)
}

// ClassNames returns the registered class names, for diagnostics.
func (d *Dispatcher) ClassNames() map[string]string {
	d.classesMu.RLock()
	defer d.classesMu.RUnlock()

	out := make(map[string]string, len(d.classes))
	for name, cls := range d.classes {
		out[name] = typeName(cls.typ)
	}
	return out
}

func typeName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	return t.String()
}
