package core

import (
	"errors"
)

// Dispatch errors. They are always returned wrapped with request details,
// test with errors.Is. Mapping them to transport responses is up to the
// caller.
var (
	// ErrRouteNotFound: no pattern matches the path for any method, or the
	// matched route id no longer exists in the table.
	ErrRouteNotFound = errors.New("route not found")

	// ErrMethodNotAllowed: the path matches a pattern registered under a
	// different method.
	ErrMethodNotAllowed = errors.New("method not allowed")

	// ErrMiddlewareUnavailable: a middleware referenced by name is absent from
	// the container or is not a Middleware.
	ErrMiddlewareUnavailable = errors.New("middleware unavailable")

	// ErrHandlerUnresolvable: the target class cannot be built by any strategy
	// or has no usable method.
	ErrHandlerUnresolvable = errors.New("handler unresolvable")

	// ErrInternalDispatch: unexpected matcher result, index build failure,
	// a continuation called twice or a panic during invocation.
	ErrInternalDispatch = errors.New("internal dispatch error")

	ErrInvalidRoute      = errors.New("invalid route")
	ErrUnknownMiddleware = errors.New("unknown middleware type")
)

// Outcome classifies a Handle result into a short, low cardinality label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrRouteNotFound):
		return "not_found"
	case errors.Is(err, ErrMethodNotAllowed):
		return "method_not_allowed"
	case errors.Is(err, ErrMiddlewareUnavailable):
		return "middleware_unavailable"
	case errors.Is(err, ErrHandlerUnresolvable):
		return "handler_unresolvable"
	case errors.Is(err, ErrInternalDispatch):
		return "internal"
	default:
		return "handler_error"
	}
}
