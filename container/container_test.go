package container

import (
	"errors"
	"reflect"
	"sync"
	"testing"
)

type store struct {
	name string
}

type service struct {
	store *store
}

func newService(s *store) *service {
	return &service{store: s}
}

func newFailing(s *store) (*service, error) {
	return nil, errors.New("boom")
}

func TestRegistry_HasGetSet(t *testing.T) {
	c := New()

	if c.Has("missing") {
		t.Fatal("Has() = true for unknown key")
	}
	if _, err := c.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}

	s := &store{name: "primary"}
	if err := c.Set("store", s, true); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if !c.Has("store") {
		t.Fatal("Has() = false after Set")
	}
	got, err := c.Get("store")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != s {
		t.Errorf("Get() = %v, want the registered instance", got)
	}
}

func TestRegistry_SetInvalid(t *testing.T) {
	c := New()
	testCases := []struct {
		name     string
		key      string
		concrete any
	}{
		{"empty key", "", &store{}},
		{"nil concrete", "a", nil},
		{"nil func", "b", (func() *store)(nil)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := c.Set(tc.key, tc.concrete, false); !errors.Is(err, ErrInvalidConcrete) {
				t.Errorf("Set() error = %v, want ErrInvalidConcrete", err)
			}
		})
	}
}

func TestRegistry_ConstructorInjection(t *testing.T) {
	c := New()
	s := &store{name: "db"}
	if err := c.Set(KeyOf[*store](), s, true); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := c.Set("service", newService, false); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	a, err := c.Get("service")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	b, _ := c.Get("service")

	svc, ok := a.(*service)
	if !ok {
		t.Fatalf("Get() returned %T, want *service", a)
	}
	if svc.store != s {
		t.Error("constructor did not receive the bound store")
	}
	if a == b {
		t.Error("non singleton binding returned the same instance twice")
	}
}

func TestRegistry_Singleton(t *testing.T) {
	c := New()
	calls := 0
	ctor := func() *store {
		calls++
		return &store{}
	}
	if err := c.Set("store", ctor, true); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var wg sync.WaitGroup
	results := make([]any, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = c.Get("store")
		}(i)
	}
	wg.Wait()

	if calls != 1 {
		t.Errorf("constructor called %d times, want 1", calls)
	}
	for i, r := range results {
		if r != results[0] {
			t.Fatalf("result %d differs from first singleton instance", i)
		}
	}
}

func TestRegistry_SingletonConstructorPanics(t *testing.T) {
	c := New()
	calls := 0
	ctor := func() *store {
		calls++
		panic("boom")
	}
	if err := c.Set("store", ctor, true); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	for i := 0; i < 2; i++ {
		got, err := c.Get("store")
		if !errors.Is(err, ErrUnresolvable) {
			t.Fatalf("Get() #%d error = %v, want ErrUnresolvable", i, err)
		}
		if got != nil {
			t.Errorf("Get() #%d = %#v, want nil", i, got)
		}
	}
	if calls != 1 {
		t.Errorf("constructor called %d times, want 1", calls)
	}
}

func TestRegistry_ReflectType(t *testing.T) {
	c := New()
	if err := c.Set("store", reflect.TypeFor[*store](), false); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := c.Get("store")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	s, ok := got.(*store)
	if !ok || s == nil {
		t.Fatalf("Get() = %#v, want non nil *store", got)
	}
	if s.name != "" {
		t.Errorf("zero instance has name %q", s.name)
	}
}

func TestInjector_Create(t *testing.T) {
	testCases := []struct {
		name    string
		bind    bool
		ctor    any
		wantErr error
	}{
		{"resolved", true, newService, nil},
		{"missing dependency", false, newService, ErrUnresolvable},
		{"constructor error", true, newFailing, ErrUnresolvable},
		{"not a function", true, &store{}, ErrInvalidConcrete},
		{"no results", true, func() {}, ErrInvalidConcrete},
		{"bad second result", true, func() (*store, int) { return nil, 0 }, ErrInvalidConcrete},
		{"variadic", true, func(...string) *store { return nil }, ErrInvalidConcrete},
		{"constructor panics", true, func(*store) *service { panic("boom") }, ErrUnresolvable},
		{"nil interface result", true, func() any { return nil }, ErrUnresolvable},
		{"nil pointer result", true, func() *service { return nil }, ErrUnresolvable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := New()
			if tc.bind {
				_ = c.Set(KeyOf[*store](), &store{}, true)
			}
			got, err := NewInjector(c).Create(tc.ctor)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("Create() error = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if _, ok := got.(*service); !ok {
				t.Errorf("Create() = %T, want *service", got)
			}
		})
	}
}

func TestInjector_WrongBindingType(t *testing.T) {
	c := New()
	_ = c.Set(KeyOf[*store](), "not a store", true)
	if _, err := NewInjector(c).Create(newService); !errors.Is(err, ErrUnresolvable) {
		t.Errorf("Create() error = %v, want ErrUnresolvable", err)
	}
}

func TestZero(t *testing.T) {
	if _, err := Zero(reflect.TypeFor[error]()); !errors.Is(err, ErrUnresolvable) {
		t.Errorf("Zero(interface) error = %v, want ErrUnresolvable", err)
	}
	v, err := Zero(reflect.TypeFor[store]())
	if err != nil {
		t.Fatalf("Zero(struct) error = %v", err)
	}
	if _, ok := v.(*store); !ok {
		t.Errorf("Zero(struct) = %T, want *store", v)
	}
}

func TestTypeKey(t *testing.T) {
	testCases := []struct {
		typ  reflect.Type
		want string
	}{
		{reflect.TypeFor[*store](), "*github.com/caasmo/actiondispatch/container.store"},
		{reflect.TypeFor[store](), "github.com/caasmo/actiondispatch/container.store"},
		{reflect.TypeFor[string](), "string"},
		{reflect.TypeFor[[]byte](), "[]uint8"},
	}
	for _, tc := range testCases {
		if got := TypeKey(tc.typ); got != tc.want {
			t.Errorf("TypeKey(%s) = %q, want %q", tc.typ, got, tc.want)
		}
	}
}
