package core

import (
	"fmt"
	"net/http"
	"reflect"
	"runtime/debug"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/caasmo/actiondispatch/container"
	"github.com/caasmo/actiondispatch/router"
)

var (
	requestType = reflect.TypeFor[*http.Request]()
	stringType  = reflect.TypeFor[string]()
	errorType   = reflect.TypeFor[error]()
)

// class is an entry of the class table: how to build an instance of a named
// type when the container does not already hold one.
type class struct {
	ctor  any          // constructor, nil when only the type is known
	typ   reflect.Type // type produced by ctor, or of the prototype
	proto any          // prototype copied into every new instance

	shared *shared // set for classes built once and reused
}

type shared struct {
	once     sync.Once
	instance any
	err      error
}

func newClass(v any) (class, error) {
	if v == nil {
		return class{}, fmt.Errorf("%w: nil class", ErrInvalidRoute)
	}
	if t, ok := v.(reflect.Type); ok {
		return class{typ: t}, nil
	}

	t := reflect.TypeOf(v)
	if t.Kind() != reflect.Func {
		return class{typ: t, proto: v}, nil
	}
	if err := container.CheckConstructor(t); err != nil {
		return class{}, err
	}
	return class{ctor: v, typ: t.Out(0)}, nil
}

// concrete is what the class binds to in a container.
func (c class) concrete() any {
	switch {
	case c.ctor != nil:
		return c.ctor
	case c.proto != nil:
		proto := c.proto
		return func() any { return copyPrototype(proto) }
	default:
		return c.typ
	}
}

// copyPrototype returns a pointer to a shallow copy of v, so methods with
// pointer receivers are callable and never touch the prototype. A pointer
// prototype has its element copied.
func copyPrototype(v any) any {
	pv := reflect.ValueOf(v)
	if pv.Kind() == reflect.Pointer {
		if pv.IsNil() {
			return reflect.New(pv.Type().Elem()).Interface()
		}
		pv = pv.Elem()
	}
	cp := reflect.New(pv.Type())
	cp.Elem().Set(pv)
	return cp.Interface()
}

// resolve prepares the chain for a matched action. Nothing it builds
// outlives the request. A panic in a container lookup fails the dispatch
// with ErrInternalDispatch.
func (d *Dispatcher) resolve(a *Action, params router.Params) (_ *Chain, err error) {
	defer func() {
		if p := recover(); p != nil {
			d.logger.Error("dispatch: panic during resolution", "panic", p, "stack", string(debug.Stack()))
			err = fmt.Errorf("%w: panic: %v", ErrInternalDispatch, p)
		}
	}()

	mws := make([]Middleware, 0, len(a.middleware))
	for _, ref := range a.middleware {
		mw, err := d.middleware(ref)
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}

	terminal, err := d.terminal(a.target, params.Values())
	if err != nil {
		return nil, err
	}

	return NewChain(terminal).WithMiddleware(mws...), nil
}

func (d *Dispatcher) middleware(ref MiddlewareRef) (Middleware, error) {
	if ref.instance != nil {
		d.logger.Debug("dispatch: middleware is an instance", "middleware", ref.String())
		return ref.instance, nil
	}

	d.logger.Debug("dispatch: middleware is a name, fetching from container", "middleware", ref.name)
	if !d.container.Has(ref.name) {
		d.logger.Error("dispatch: failed to fetch middleware", "middleware", ref.name)
		return nil, fmt.Errorf("%w: %q is not in the container", ErrMiddlewareUnavailable, ref.name)
	}

	v, err := d.container.Get(ref.name)
	if err != nil {
		d.logger.Error("dispatch: failed to build middleware", "middleware", ref.name, "error", err)
		return nil, fmt.Errorf("%w: %q: %w", ErrMiddlewareUnavailable, ref.name, err)
	}
	mw, ok := v.(Middleware)
	if !ok {
		return nil, fmt.Errorf("%w: %q is a %T, not a Middleware", ErrMiddlewareUnavailable, ref.name, v)
	}
	return mw, nil
}

func (d *Dispatcher) terminal(t Target, args []string) (Next, error) {
	if t.IsCallback() {
		d.logger.Debug("dispatch: request handler is a callback")
		cb := t.Callback
		return func(r *http.Request) (Response, error) {
			return cb(r, args...)
		}, nil
	}

	d.logger.Debug("dispatch: request handler is a class, resolving", "class", t.Class)
	instance, err := d.instantiate(t.Class)
	if err != nil {
		return nil, err
	}
	return bindMethod(instance, t.Class, t.Method, args)
}

// instantiate builds the target instance: container first, then the class
// constructor with injected dependencies, then a copy of the prototype or a
// zero value of the class type. It only fails when all are impossible.
// Shared classes go through this once.
func (d *Dispatcher) instantiate(name string) (any, error) {
	if d.container.Has(name) {
		v, err := d.container.Get(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrHandlerUnresolvable, name, err)
		}
		return v, nil
	}

	d.classesMu.RLock()
	cls, ok := d.classes[name]
	d.classesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: unknown class %q", ErrHandlerUnresolvable, name)
	}

	if cls.shared == nil {
		return d.build(name, cls)
	}
	cls.shared.once.Do(func() {
		cls.shared.instance, cls.shared.err = d.build(name, cls)
		if cls.shared.err == nil {
			d.logger.Debug("dispatch: shared class built", "class", name)
		}
	})
	return cls.shared.instance, cls.shared.err
}

func (d *Dispatcher) build(name string, cls class) (any, error) {
	if cls.ctor != nil {
		v, err := container.NewInjector(d.container).Create(cls.ctor)
		if err == nil {
			return v, nil
		}
		d.logger.Warn("dispatch: failed to initialize class via injection, creating zero value",
			"class", name, "error", err)
	}

	if cls.proto != nil {
		return copyPrototype(cls.proto), nil
	}

	v, err := container.Zero(cls.typ)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrHandlerUnresolvable, name, err)
	}
	return v, nil
}

// bindMethod finds method on instance and returns a Next calling it with
// the request and the path params. Accepted shapes are
//
//	func(*http.Request, string, ...) (R, error)
//	func(*http.Request, ...string) (R, error)
//
// with any number of leading string params and R of any type; the error
// result is optional. Params beyond what the method takes are dropped.
func bindMethod(instance any, className, method string, args []string) (Next, error) {
	v := reflect.ValueOf(instance)
	if !v.IsValid() {
		return nil, fmt.Errorf("%w: %s resolved to nil", ErrHandlerUnresolvable, className)
	}
	m := v.MethodByName(method)
	if !m.IsValid() {
		m = v.MethodByName(exported(method))
	}
	if !m.IsValid() {
		return nil, fmt.Errorf("%w: %s (%T) has no method %q", ErrHandlerUnresolvable, className, instance, method)
	}

	call, err := methodCaller(m, args)
	if err != nil {
		return nil, fmt.Errorf("%w: %s@%s: %w", ErrHandlerUnresolvable, className, method, err)
	}
	return call, nil
}

func methodCaller(m reflect.Value, args []string) (Next, error) {
	t := m.Type()
	if t.NumIn() == 0 || t.In(0) != requestType {
		return nil, fmt.Errorf("first parameter must be *http.Request, method is %s", t)
	}

	switch t.NumOut() {
	case 1:
	case 2:
		if t.Out(1) != errorType {
			return nil, fmt.Errorf("second result must be error, method is %s", t)
		}
	default:
		return nil, fmt.Errorf("method must return R or (R, error), method is %s", t)
	}

	fixed := t.NumIn() - 1
	if t.IsVariadic() {
		fixed--
		if t.In(t.NumIn()-1).Elem() != stringType {
			return nil, fmt.Errorf("variadic parameter must be ...string, method is %s", t)
		}
	}
	for i := 1; i <= fixed; i++ {
		if t.In(i) != stringType {
			return nil, fmt.Errorf("path parameters are strings, method is %s", t)
		}
	}
	if fixed > len(args) {
		return nil, fmt.Errorf("method takes %d path params, route provides %d", fixed, len(args))
	}

	passed := args
	if !t.IsVariadic() {
		passed = args[:fixed]
	}

	return func(r *http.Request) (Response, error) {
		in := make([]reflect.Value, 0, len(passed)+1)
		in = append(in, reflect.ValueOf(r))
		for _, a := range passed {
			in = append(in, reflect.ValueOf(a))
		}

		out := m.Call(in)
		resp := out[0].Interface()
		if len(out) == 2 && !out[1].IsNil() {
			return resp, out[1].Interface().(error)
		}
		return resp, nil
	}, nil
}

func exported(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}
