// Package router defines the boundary between the dispatcher and the
// path matching engines. Matchers only know about methods, patterns and
// integer ids; everything else stays in core.
package router

import (
	"context"
	"fmt"
)

// Status is the outcome of a match. Values follow the FastRoute numbering
// so they can be logged the same way.
type Status int

const (
	NotFound Status = iota
	Found
	MethodNotAllowed
)

func (s Status) String() string {
	switch s {
	case NotFound:
		return "not found"
	case Found:
		return "found"
	case MethodNotAllowed:
		return "method not allowed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Param is a single path parameter extracted by a Matcher.
type Param struct {
	Key   string
	Value string
}

// Params keeps the declaration order of the pattern.
type Params []Param

// ByName returns the value of the first param with the given key.
func (ps Params) ByName(name string) string {
	for _, p := range ps {
		if p.Key == name {
			return p.Value
		}
	}
	return ""
}

// Values returns the param values in declaration order. They are the
// positional arguments handed to route handlers.
func (ps Params) Values() []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Value
	}
	return out
}

// Route is what a Matcher is built from. Method is upper case. ID is the
// position of the action in the per method list of the route table and is
// only valid for the table generation the index was built from.
type Route struct {
	Method  string
	Pattern string
	ID      int
}

// Match is the result of a lookup. ID and Params are only meaningful when
// Status is Found.
type Match struct {
	Status Status
	ID     int
	Params Params
}

// Matcher resolves a method and a path to a route id.
type Matcher interface {
	Match(method, path string) Match
}

// Builder creates a Matcher from the full list of routes. Invalid patterns
// are reported here, not at registration time.
type Builder func(routes []Route) (Matcher, error)

type paramsKey struct{}

// WithParams stores the matched params in ctx.
func WithParams(ctx context.Context, ps Params) context.Context {
	return context.WithValue(ctx, paramsKey{}, ps)
}

// ParamsFromContext returns the params stored by WithParams, or nil.
func ParamsFromContext(ctx context.Context) Params {
	ps, _ := ctx.Value(paramsKey{}).(Params)
	return ps
}
