package core

import (
	"strings"
	"sync"

	"github.com/caasmo/actiondispatch/router"
)

// Verbs with a registration helper on Dispatcher.
const (
	MethodGet     = "get"
	MethodHead    = "head"
	MethodPost    = "post"
	MethodPut     = "put"
	MethodPatch   = "patch"
	MethodDelete  = "delete"
	MethodConnect = "connect"
	MethodOptions = "options"
	MethodTrace   = "trace"
)

// Endpoint is the public view of a registered route.
type Endpoint struct {
	Method  string
	Pattern string
}

// RouteTable maps lowercased methods to their actions in registration
// order. The position of an action in its method list is the id handed to
// the matcher. The table is append only.
type RouteTable struct {
	mu         sync.RWMutex
	actions    map[string][]*Action
	order      []*Action
	generation uint64
}

func NewRouteTable() *RouteTable {
	return &RouteTable{actions: make(map[string][]*Action)}
}

// Add appends a and bumps the generation.
func (t *RouteTable) Add(a *Action) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.actions[a.method] = append(t.actions[a.method], a)
	t.order = append(t.order, a)
	t.generation++
}

// Actions returns the actions for method, or every action when method is
// empty, in registration order.
func (t *RouteTable) Actions(method string) []*Action {
	t.mu.RLock()
	defer t.mu.RUnlock()

	src := t.order
	if method != "" {
		src = t.actions[strings.ToLower(method)]
	}
	out := make([]*Action, len(src))
	copy(out, src)
	return out
}

// Endpoints lists every route in registration order.
func (t *RouteTable) Endpoints() []Endpoint {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Endpoint, len(t.order))
	for i, a := range t.order {
		out[i] = Endpoint{Method: a.method, Pattern: a.pattern}
	}
	return out
}

// Generation changes every time an action is added.
func (t *RouteTable) Generation() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.generation
}

// snapshot returns the matcher input for the current table along with the
// generation it reflects.
func (t *RouteTable) snapshot() ([]router.Route, uint64) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	routes := make([]router.Route, 0, len(t.order))
	next := make(map[string]int, len(t.actions))
	for _, a := range t.order {
		id := next[a.method]
		next[a.method] = id + 1
		routes = append(routes, router.Route{Method: strings.ToUpper(a.method), Pattern: a.pattern, ID: id})
	}
	return routes, t.generation
}

// lookup finds the action a matcher returned. ok is false for ids that do
// not exist in the table.
func (t *RouteTable) lookup(method string, id int) (*Action, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	actions, ok := t.actions[strings.ToLower(method)]
	if !ok || id < 0 || id >= len(actions) {
		return nil, false
	}
	return actions[id], true
}
