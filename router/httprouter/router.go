package httprouter

import (
	"fmt"
	"net/http"

	"github.com/caasmo/actiondispatch/router"
	jshttprouter "github.com/julienschmidt/httprouter"
)

// Matcher implements router.Matcher on top of julienschmidt/httprouter.
// Patterns use the httprouter syntax: /user/:name and /static/*filepath.
type Matcher struct {
	rt      *jshttprouter.Router
	methods []string
}

// idSink is handed to the looked up handle so it can report its route id
// without any shared state.
type idSink struct {
	id int
}

func (s *idSink) Header() http.Header         { return http.Header{} }
func (s *idSink) Write(b []byte) (int, error) { return len(b), nil }
func (s *idSink) WriteHeader(int)             {}

// New builds a Matcher. httprouter panics on invalid or conflicting
// patterns; those panics are returned as errors.
func New(routes []router.Route) (m router.Matcher, err error) {
	rt := jshttprouter.New()
	rt.RedirectTrailingSlash = false
	rt.RedirectFixedPath = false

	defer func() {
		if r := recover(); r != nil {
			m = nil
			err = fmt.Errorf("httprouter: %v", r)
		}
	}()

	seen := make(map[string]bool)
	var methods []string
	for _, route := range routes {
		id := route.ID
		rt.Handle(route.Method, route.Pattern, func(w http.ResponseWriter, _ *http.Request, _ jshttprouter.Params) {
			if s, ok := w.(*idSink); ok {
				s.id = id
			}
		})
		if !seen[route.Method] {
			seen[route.Method] = true
			methods = append(methods, route.Method)
		}
	}

	return &Matcher{rt: rt, methods: methods}, nil
}

func (m *Matcher) Match(method, path string) router.Match {
	if h, ps, _ := m.rt.Lookup(method, path); h != nil {
		var sink idSink
		h(&sink, nil, ps)
		return router.Match{Status: router.Found, ID: sink.id, Params: convert(ps)}
	}

	for _, other := range m.methods {
		if other == method {
			continue
		}
		if h, _, _ := m.rt.Lookup(other, path); h != nil {
			return router.Match{Status: router.MethodNotAllowed}
		}
	}

	return router.Match{Status: router.NotFound}
}

func convert(pms jshttprouter.Params) router.Params {
	if len(pms) == 0 {
		return nil
	}
	params := make(router.Params, 0, len(pms))
	for _, v := range pms {
		params = append(params, router.Param{Key: v.Key, Value: v.Value})
	}
	return params
}
