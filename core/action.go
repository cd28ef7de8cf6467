package core

import (
	"fmt"
	"net/http"
	"strings"
)

// Target is what a route invokes: either a callback, or a method on a class
// that is resolved through the container on every dispatch.
type Target struct {
	Callback HandlerFunc
	Class    string
	Method   string
}

// Callback targets fn directly.
func Callback(fn HandlerFunc) Target {
	return Target{Callback: fn}
}

// Class targets method on the class registered under name.
func Class(name, method string) Target {
	return Target{Class: name, Method: method}
}

// ParseTarget parses the "Class@method" form used in route files.
func ParseTarget(s string) (Target, error) {
	class, method, ok := strings.Cut(s, "@")
	if !ok || class == "" || method == "" {
		return Target{}, fmt.Errorf("%w: target %q is not in Class@method form", ErrInvalidRoute, s)
	}
	return Class(class, method), nil
}

func (t Target) IsCallback() bool {
	return t.Callback != nil
}

func (t Target) String() string {
	if t.IsCallback() {
		return "callback"
	}
	return t.Class + "@" + t.Method
}

func (t Target) validate() error {
	if t.IsCallback() {
		return nil
	}
	if t.Class == "" || t.Method == "" {
		return fmt.Errorf("%w: target needs a callback or class and method", ErrInvalidRoute)
	}
	return nil
}

// MiddlewareRef is an entry of a route's middleware list: a ready instance
// or a name resolved through the container at dispatch time.
type MiddlewareRef struct {
	instance Middleware
	name     string
}

func Use(m Middleware) MiddlewareRef {
	return MiddlewareRef{instance: m}
}

func UseName(name string) MiddlewareRef {
	return MiddlewareRef{name: name}
}

// UseFunc wraps an inline function. It is stored as a MiddlewareFunc.
func UseFunc(fn func(r *http.Request, next Next) (Response, error)) MiddlewareRef {
	return MiddlewareRef{instance: MiddlewareFunc(fn)}
}

// Names converts a list of middleware names into refs.
func Names(names ...string) []MiddlewareRef {
	refs := make([]MiddlewareRef, len(names))
	for i, n := range names {
		refs[i] = UseName(n)
	}
	return refs
}

func (m MiddlewareRef) Instance() Middleware { return m.instance }
func (m MiddlewareRef) Name() string         { return m.name }

func (m MiddlewareRef) String() string {
	if m.instance != nil {
		return fmt.Sprintf("%T", m.instance)
	}
	return m.name
}

// Action is one registered route. It is immutable once built.
type Action struct {
	method     string
	pattern    string
	target     Target
	middleware []MiddlewareRef
}

// NewAction validates and normalizes a route. The method is lowercased.
// Pattern syntax is not checked here; the matcher reports bad patterns when
// the index is built.
func NewAction(method, pattern string, target Target, mw ...MiddlewareRef) (*Action, error) {
	method = strings.ToLower(strings.TrimSpace(method))
	if method == "" {
		return nil, fmt.Errorf("%w: empty method", ErrInvalidRoute)
	}
	if err := target.validate(); err != nil {
		return nil, err
	}

	refs := make([]MiddlewareRef, 0, len(mw))
	for _, ref := range mw {
		if ref.instance == nil && ref.name == "" {
			return nil, fmt.Errorf("%w: empty middleware reference", ErrInvalidRoute)
		}
		refs = append(refs, ref)
	}

	return &Action{
		method:     method,
		pattern:    pattern,
		target:     target,
		middleware: refs,
	}, nil
}

func (a *Action) Method() string  { return a.method }
func (a *Action) Pattern() string { return a.pattern }
func (a *Action) Target() Target  { return a.target }

// Middleware returns a copy of the middleware list in declared order.
func (a *Action) Middleware() []MiddlewareRef {
	out := make([]MiddlewareRef, len(a.middleware))
	copy(out, a.middleware)
	return out
}
