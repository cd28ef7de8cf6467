package chi

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/caasmo/actiondispatch/router"
	gochi "github.com/go-chi/chi/v5"
)

// Matcher implements router.Matcher with a chi tree. Patterns use the chi
// syntax: /user/{name}, /user/{id:[0-9]+} and /static/*.
type Matcher struct {
	mux     *gochi.Mux
	ids     map[string]int
	methods []string
}

func routeKey(method, pattern string) string {
	return method + " " + pattern
}

func noop(http.ResponseWriter, *http.Request) {}

// chi keeps its method table in a package level map.
var registerMu sync.Mutex

func registerMethod(method string) {
	registerMu.Lock()
	defer registerMu.Unlock()
	gochi.RegisterMethod(method)
}

// New builds a Matcher. Methods outside the standard set, such as PROPFIND,
// are registered with chi first. chi panics on malformed patterns and when
// its method table is full; those panics are returned as errors.
func New(routes []router.Route) (m router.Matcher, err error) {
	mux := gochi.NewRouter()

	defer func() {
		if r := recover(); r != nil {
			m = nil
			err = fmt.Errorf("chi: %v", r)
		}
	}()

	ids := make(map[string]int, len(routes))
	seen := make(map[string]bool)
	var methods []string
	for _, route := range routes {
		key := routeKey(route.Method, route.Pattern)
		if _, dup := ids[key]; dup {
			return nil, fmt.Errorf("chi: route %q registered twice", key)
		}
		ids[key] = route.ID
		registerMethod(route.Method)
		mux.MethodFunc(route.Method, route.Pattern, noop)

		if !seen[route.Method] {
			seen[route.Method] = true
			methods = append(methods, route.Method)
		}
	}

	return &Matcher{mux: mux, ids: ids, methods: methods}, nil
}

func (m *Matcher) Match(method, path string) router.Match {
	rctx := gochi.NewRouteContext()
	if pattern := m.mux.Find(rctx, method, path); pattern != "" {
		id, ok := m.ids[routeKey(method, pattern)]
		if !ok {
			return router.Match{Status: router.NotFound}
		}
		return router.Match{Status: router.Found, ID: id, Params: convert(rctx.URLParams)}
	}

	for _, other := range m.methods {
		if other == method {
			continue
		}
		if m.mux.Match(gochi.NewRouteContext(), other, path) {
			return router.Match{Status: router.MethodNotAllowed}
		}
	}

	return router.Match{Status: router.NotFound}
}

func convert(rp gochi.RouteParams) router.Params {
	if len(rp.Keys) == 0 {
		return nil
	}
	params := make(router.Params, 0, len(rp.Keys))
	for i, k := range rp.Keys {
		params = append(params, router.Param{Key: k, Value: rp.Values[i]})
	}
	return params
}
