package core

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
)

type shapes struct{}

func (shapes) Fixed(r *http.Request, a, b string) (string, error) { return a + b, nil }
func (shapes) Variadic(r *http.Request, ps ...string) string       { return strings.Join(ps, ",") }
func (shapes) Mixed(r *http.Request, a string, rest ...string) any  { return a + ":" + strings.Join(rest, ",") }
func (shapes) NoRequest(a string) string                            { return a }
func (shapes) IntParam(r *http.Request, n int) string               { return "" }
func (shapes) BadResult(r *http.Request) (string, string)           { return "", "" }
func (shapes) Failing(r *http.Request) (string, error)              { return "partial", errors.New("failed") }

func TestMethodCaller(t *testing.T) {
	testCases := []struct {
		method  string
		args    []string
		want    Response
		wantErr bool
	}{
		{"Fixed", []string{"a", "b"}, "ab", false},
		{"Fixed", []string{"a", "b", "c"}, "ab", false},
		{"Fixed", []string{"a"}, nil, true},
		{"Variadic", nil, "", false},
		{"Variadic", []string{"x", "y"}, "x,y", false},
		{"Mixed", []string{"a", "b", "c"}, "a:b,c", false},
		{"NoRequest", []string{"a"}, nil, true},
		{"IntParam", []string{"1"}, nil, true},
		{"BadResult", nil, nil, true},
	}

	v := reflect.ValueOf(shapes{})
	for _, tc := range testCases {
		t.Run(tc.method, func(t *testing.T) {
			call, err := methodCaller(v.MethodByName(tc.method), tc.args)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("methodCaller() error = %v", err)
			}
			got, err := call(httptest.NewRequest("GET", "/", nil))
			if err != nil {
				t.Fatalf("call error = %v", err)
			}
			if got != tc.want {
				t.Errorf("call = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMethodCallerReturnsHandlerError(t *testing.T) {
	call, err := methodCaller(reflect.ValueOf(shapes{}).MethodByName("Failing"), nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := call(httptest.NewRequest("GET", "/", nil))
	if err == nil || err.Error() != "failed" {
		t.Errorf("expected handler error, got %v", err)
	}
	if resp != "partial" {
		t.Errorf("resp = %v, want partial", resp)
	}
}

func TestBindMethod(t *testing.T) {
	if _, err := bindMethod(shapes{}, "shapes", "variadic", nil); err != nil {
		t.Errorf("bindMethod(variadic) error = %v", err)
	}
	_, err := bindMethod(shapes{}, "shapes", "missing", nil)
	if !errors.Is(err, ErrHandlerUnresolvable) {
		t.Errorf("bindMethod(missing) error = %v, want ErrHandlerUnresolvable", err)
	}
}

func TestNewClass(t *testing.T) {
	testCases := []struct {
		name    string
		v       any
		typ     reflect.Type
		ctor    bool
		proto   bool
		wantErr bool
	}{
		{"prototype", shapes{}, reflect.TypeFor[shapes](), false, true, false},
		{"type", reflect.TypeFor[*shapes](), reflect.TypeFor[*shapes](), false, false, false},
		{"constructor", func() *shapes { return &shapes{} }, reflect.TypeFor[*shapes](), true, false, false},
		{"bad constructor", func() {}, nil, false, false, true},
		{"nil", nil, nil, false, false, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cls, err := newClass(tc.v)
			if (err != nil) != tc.wantErr {
				t.Fatalf("newClass() error = %v, wantErr %v", err, tc.wantErr)
			}
			if tc.wantErr {
				return
			}
			if cls.typ != tc.typ {
				t.Errorf("typ = %v, want %v", cls.typ, tc.typ)
			}
			if (cls.ctor != nil) != tc.ctor {
				t.Errorf("ctor set = %v, want %v", cls.ctor != nil, tc.ctor)
			}
			if (cls.proto != nil) != tc.proto {
				t.Errorf("proto set = %v, want %v", cls.proto != nil, tc.proto)
			}
		})
	}
}

type settings struct {
	prefix string
	hits   int
}

func TestCopyPrototype(t *testing.T) {
	proto := settings{prefix: "v1"}
	got, ok := copyPrototype(proto).(*settings)
	if !ok {
		t.Fatalf("copyPrototype(value) = %T, want *settings", copyPrototype(proto))
	}
	if got.prefix != "v1" {
		t.Errorf("prefix = %q, want v1", got.prefix)
	}
	got.hits++
	if proto.hits != 0 {
		t.Errorf("prototype modified through copy")
	}

	ptr := &settings{prefix: "v2"}
	cp := copyPrototype(ptr).(*settings)
	if cp == ptr {
		t.Fatal("copyPrototype(pointer) returned the prototype itself")
	}
	cp.hits++
	if cp.prefix != "v2" || ptr.hits != 0 {
		t.Errorf("copy = %+v, prototype = %+v", *cp, *ptr)
	}

	if z := copyPrototype((*settings)(nil)).(*settings); z == nil || z.prefix != "" {
		t.Errorf("copyPrototype(nil pointer) = %+v, want zero *settings", z)
	}
}
