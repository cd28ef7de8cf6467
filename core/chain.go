package core

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

// Observer runs after the chain has produced its result. Observers see the
// final response and error but cannot change them.
type Observer func(r *http.Request, resp Response, err error)

// Chain composes middleware around a terminal handler. It is built per
// request and not shared.
type Chain struct {
	handler     Next
	middlewares []Middleware
	observers   []Observer
}

// NewChain creates a Chain around the terminal handler h.
func NewChain(h Next) *Chain {
	if h == nil {
		panic("chain handler cannot be nil")
	}
	return &Chain{
		handler:     h,
		middlewares: make([]Middleware, 0),
		observers:   make([]Observer, 0),
	}
}

// WithMiddleware appends middlewares. They see the request in the order
// they were added and the response in reverse order:
//
//	.WithMiddleware(mw1, mw2)
//
// runs mw1 in, mw2 in, handler, mw2 out, mw1 out.
func (c *Chain) WithMiddleware(middlewares ...Middleware) *Chain {
	c.middlewares = append(c.middlewares, middlewares...)
	return c
}

// WithObservers adds functions that run after the middleware chain, in the
// order they were added. They also run when a middleware short circuits or
// the chain fails.
func (c *Chain) WithObservers(observers ...Observer) *Chain {
	c.observers = append(c.observers, observers...)
	return c
}

// Len is the number of callable units, terminal handler included.
func (c *Chain) Len() int {
	return len(c.middlewares) + 1
}

// Handler returns the composed chain. The result is built by folding from
// the last middleware towards the first, so the first one is outermost.
func (c *Chain) Handler() Next {
	h := c.handler

	for i := len(c.middlewares) - 1; i >= 0; i-- {
		mw := c.middlewares[i]
		next := h
		h = func(r *http.Request) (Response, error) {
			return mw.Handle(r, once(next))
		}
	}

	if len(c.observers) == 0 {
		return h
	}

	observers := c.observers
	return func(r *http.Request) (Response, error) {
		resp, err := h(r)
		for _, obs := range observers {
			obs(r, resp, err)
		}
		return resp, err
	}
}

// once guards a continuation so a middleware calling next twice fails
// instead of running the rest of the chain again.
func once(next Next) Next {
	var called atomic.Bool
	return func(r *http.Request) (Response, error) {
		if !called.CompareAndSwap(false, true) {
			return nil, fmt.Errorf("%w: next called more than once", ErrInternalDispatch)
		}
		return next(r)
	}
}
