package core

import (
	"net/http"
)

// Response is whatever handlers and middleware produce. The dispatcher never
// looks inside it.
type Response = any

// Next continues the chain: the next middleware, or the terminal handler
// when called by the last one.
type Next func(r *http.Request) (Response, error)

// Middleware gets the request and a continuation. Calling next advances the
// chain; returning without calling it short circuits and the middleware's
// own result becomes the response. next must be called at most once.
type Middleware interface {
	Handle(r *http.Request, next Next) (Response, error)
}

// MiddlewareFunc adapts an inline function to Middleware.
type MiddlewareFunc func(r *http.Request, next Next) (Response, error)

func (f MiddlewareFunc) Handle(r *http.Request, next Next) (Response, error) {
	return f(r, next)
}

// HandlerFunc is a callback route target. params are the path parameters
// in pattern declaration order.
type HandlerFunc func(r *http.Request, params ...string) (Response, error)
