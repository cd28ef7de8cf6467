// Package container is a small service container. The dispatcher only
// depends on the Container interface; Registry is the implementation used
// when nothing else is supplied.
package container

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

var (
	ErrNotFound        = errors.New("container: key not found")
	ErrUnresolvable    = errors.New("container: cannot resolve dependency")
	ErrInvalidConcrete = errors.New("container: invalid concrete")
)

// Container looks up and registers services by key.
type Container interface {
	Has(key string) bool
	// Get fails with ErrNotFound if key was never Set.
	Get(key string) (any, error)
	// Set binds key to concrete. concrete is either a ready instance, a
	// constructor function whose parameters are resolved from the container
	// by TypeKey, or a reflect.Type that is instantiated zero valued.
	Set(key string, concrete any, singleton bool) error
}

type binding struct {
	concrete  any
	singleton bool

	once     sync.Once
	instance any
	err      error
}

// Registry is the default Container. It is safe for concurrent use.
// Constructor graphs must not be cyclic.
type Registry struct {
	mu       sync.RWMutex
	bindings map[string]*binding
}

var _ Container = (*Registry)(nil)

func New() *Registry {
	return &Registry{bindings: make(map[string]*binding)}
}

func (c *Registry) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.bindings[key]
	return ok
}

func (c *Registry) Set(key string, concrete any, singleton bool) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidConcrete)
	}
	if concrete == nil {
		return fmt.Errorf("%w: nil concrete for %q", ErrInvalidConcrete, key)
	}
	if rv := reflect.ValueOf(concrete); rv.Kind() == reflect.Func && rv.IsNil() {
		return fmt.Errorf("%w: nil constructor for %q", ErrInvalidConcrete, key)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindings[key] = &binding{concrete: concrete, singleton: singleton}
	return nil
}

func (c *Registry) Get(key string) (any, error) {
	c.mu.RLock()
	b, ok := c.bindings[key]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	if !b.singleton {
		return c.build(b.concrete)
	}

	b.once.Do(func() {
		b.instance, b.err = c.build(b.concrete)
	})
	return b.instance, b.err
}

func (c *Registry) build(concrete any) (any, error) {
	if t, ok := concrete.(reflect.Type); ok {
		return Zero(t)
	}
	if reflect.ValueOf(concrete).Kind() == reflect.Func {
		return NewInjector(c).Create(concrete)
	}
	return concrete, nil
}

// Zero returns a zero valued instance of t without running any
// constructor. Pointer types get a freshly allocated element so methods
// with pointer receivers are callable. Interfaces cannot be instantiated.
func Zero(t reflect.Type) (any, error) {
	switch t.Kind() {
	case reflect.Interface, reflect.Func, reflect.Invalid:
		return nil, fmt.Errorf("%w: cannot instantiate %s", ErrUnresolvable, t)
	case reflect.Pointer:
		return reflect.New(t.Elem()).Interface(), nil
	default:
		return reflect.New(t).Interface(), nil
	}
}

// TypeKey is the key constructor parameters are looked up with. It uses the
// package path, so two types named the same in different packages differ.
func TypeKey(t reflect.Type) string {
	prefix := ""
	for t.Kind() == reflect.Pointer {
		prefix += "*"
		t = t.Elem()
	}
	if t.PkgPath() == "" || t.Name() == "" {
		return prefix + t.String()
	}
	return prefix + t.PkgPath() + "." + t.Name()
}

// KeyOf returns TypeKey for T.
func KeyOf[T any]() string {
	return TypeKey(reflect.TypeFor[T]())
}
