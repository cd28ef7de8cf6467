// Package middleware holds the built-in middlewares that routes refer to by
// name. Each is a class whose constructor takes its dependencies from the
// container.
package middleware

import (
	"github.com/caasmo/actiondispatch/core"
)

const (
	NameRequestLog = "requestlog"
	NameJWTAuth    = "jwtauth"
	NameHotPaths   = "hotpaths"
)

// Classes returns the built-in middleware constructors by name, ready for
// core.WithClass.
func Classes() map[string]any {
	return map[string]any{
		NameRequestLog: NewRequestLog,
		NameJWTAuth:    NewJWTAuth,
		NameHotPaths:   NewHotPaths,
	}
}

var (
	_ core.Middleware = (*RequestLog)(nil)
	_ core.Middleware = (*JWTAuth)(nil)
	_ core.Middleware = (*HotPaths)(nil)
)
