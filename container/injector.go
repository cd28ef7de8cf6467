package container

import (
	"fmt"
	"reflect"
)

var errorType = reflect.TypeFor[error]()

// Injector calls constructors with arguments taken from a Container.
type Injector struct {
	c Container
}

func NewInjector(c Container) *Injector {
	return &Injector{c: c}
}

// Create calls ctor, which must be a non variadic function returning T or
// (T, error). Every parameter is looked up under TypeKey of its type. A
// constructor that panics or returns a nil instance fails with
// ErrUnresolvable.
func (in *Injector) Create(ctor any) (any, error) {
	fn := reflect.ValueOf(ctor)
	if fn.Kind() != reflect.Func || fn.IsNil() {
		return nil, fmt.Errorf("%w: %T is not a constructor", ErrInvalidConcrete, ctor)
	}
	if err := CheckConstructor(fn.Type()); err != nil {
		return nil, err
	}

	t := fn.Type()
	args := make([]reflect.Value, t.NumIn())
	for i := range args {
		arg, err := in.resolve(t.In(i))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t, err)
		}
		args[i] = arg
	}

	out, err := call(fn, args)
	if err != nil {
		return nil, err
	}
	if len(out) == 2 && !out[1].IsNil() {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnresolvable, t, out[1].Interface().(error))
	}
	switch out[0].Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Func, reflect.Chan:
		if out[0].IsNil() {
			return nil, fmt.Errorf("%w: %s returned nil", ErrUnresolvable, t)
		}
	}
	return out[0].Interface(), nil
}

func call(fn reflect.Value, args []reflect.Value) (out []reflect.Value, err error) {
	defer func() {
		if p := recover(); p != nil {
			out, err = nil, fmt.Errorf("%w: %s panicked: %v", ErrUnresolvable, fn.Type(), p)
		}
	}()
	return fn.Call(args), nil
}

func (in *Injector) resolve(pt reflect.Type) (reflect.Value, error) {
	key := TypeKey(pt)
	if !in.c.Has(key) {
		return reflect.Value{}, fmt.Errorf("%w: no binding for %s", ErrUnresolvable, key)
	}
	dep, err := in.c.Get(key)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("%w: %w", ErrUnresolvable, err)
	}

	dv := reflect.ValueOf(dep)
	if !dv.IsValid() {
		return reflect.Zero(pt), nil
	}
	if !dv.Type().AssignableTo(pt) {
		return reflect.Value{}, fmt.Errorf("%w: %s bound to %s", ErrUnresolvable, key, dv.Type())
	}
	return dv, nil
}

// CheckConstructor reports whether t has a constructor shape.
func CheckConstructor(t reflect.Type) error {
	if t.Kind() != reflect.Func {
		return fmt.Errorf("%w: %s is not a function", ErrInvalidConcrete, t)
	}
	if t.IsVariadic() {
		return fmt.Errorf("%w: variadic constructor %s", ErrInvalidConcrete, t)
	}
	switch t.NumOut() {
	case 1:
	case 2:
		if t.Out(1) != errorType {
			return fmt.Errorf("%w: second result of %s must be error", ErrInvalidConcrete, t)
		}
	default:
		return fmt.Errorf("%w: %s must return T or (T, error)", ErrInvalidConcrete, t)
	}
	return nil
}
