package ristretto

import (
	"testing"

	"github.com/caasmo/actiondispatch/router"
	"github.com/caasmo/actiondispatch/router/httprouter"
)

func TestConfigLevels(t *testing.T) {
	testCases := []struct {
		level   string
		wantErr bool
	}{
		{LevelSmall, false},
		{LevelMedium, false},
		{LevelLarge, false},
		{LevelVeryLarge, false},
		{"", true},
		{"Small", true},
		{"huge", true},
	}

	var prev int64
	for _, tc := range testCases {
		t.Run(tc.level, func(t *testing.T) {
			cfg, err := config[router.Matcher](tc.level)
			if (err != nil) != tc.wantErr {
				t.Fatalf("config(%q) error = %v, wantErr %v", tc.level, err, tc.wantErr)
			}
			if tc.wantErr {
				return
			}
			if cfg.MaxCost <= prev {
				t.Errorf("config(%q) MaxCost = %d, want more than the previous level (%d)", tc.level, cfg.MaxCost, prev)
			}
			prev = cfg.MaxCost
			if cfg.NumCounters <= 0 || cfg.BufferItems != 64 {
				t.Errorf("config(%q) = %+v", tc.level, cfg)
			}
		})
	}
}

func TestNew_UnknownLevel(t *testing.T) {
	c, err := New[router.Matcher]("tiny")
	if err == nil {
		c.Close()
		t.Fatal("New(tiny) expected an error")
	}
	if c != nil {
		t.Errorf("New(tiny) = %v, want nil cache", c)
	}
}

func mustMatcher(t *testing.T, routes ...router.Route) router.Matcher {
	t.Helper()
	m, err := httprouter.New(routes)
	if err != nil {
		t.Fatalf("httprouter.New() error = %v", err)
	}
	return m
}

func TestCache_MatchersByGeneration(t *testing.T) {
	c, err := New[router.Matcher](LevelSmall)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer c.Close()

	gen1 := mustMatcher(t, router.Route{Method: "GET", Pattern: "/users/:id", ID: 0})
	gen2 := mustMatcher(t,
		router.Route{Method: "GET", Pattern: "/users/:id", ID: 0},
		router.Route{Method: "GET", Pattern: "/posts", ID: 1},
	)
	c.Set("1", gen1, 1)
	c.Set("2", gen2, 1)
	c.Wait()

	testCases := []struct {
		gen    string
		path   string
		status router.Status
	}{
		{"1", "/users/7", router.Found},
		{"1", "/posts", router.NotFound},
		{"2", "/posts", router.Found},
	}
	for _, tc := range testCases {
		m, ok := c.Get(tc.gen)
		if !ok {
			t.Fatalf("Get(%q) missed", tc.gen)
		}
		if got := m.Match("GET", tc.path); got.Status != tc.status {
			t.Errorf("generation %s Match(GET, %s) = %s, want %s", tc.gen, tc.path, got.Status, tc.status)
		}
	}

	m, _ := c.Get("1")
	if got := m.Match("GET", "/users/7"); got.Params.ByName("id") != "7" {
		t.Errorf("cached matcher params = %+v, want id=7", got.Params)
	}
}

func TestCache_MissAndReplace(t *testing.T) {
	c, err := New[router.Matcher](LevelSmall)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer c.Close()

	if m, ok := c.Get("0"); ok || m != nil {
		t.Errorf("Get(0) on empty cache = (%v, %v), want (nil, false)", m, ok)
	}

	c.Set("3", mustMatcher(t, router.Route{Method: "GET", Pattern: "/old", ID: 0}), 1)
	c.Wait()
	c.Set("3", mustMatcher(t, router.Route{Method: "POST", Pattern: "/new", ID: 0}), 1)
	c.Wait()

	m, ok := c.Get("3")
	if !ok {
		t.Fatal("Get(3) missed after replace")
	}
	if got := m.Match("POST", "/new"); got.Status != router.Found {
		t.Errorf("Match(POST, /new) = %s, want %s", got.Status, router.Found)
	}
	if got := m.Match("GET", "/old"); got.Status != router.NotFound {
		t.Errorf("Match(GET, /old) = %s, want %s", got.Status, router.NotFound)
	}
}
