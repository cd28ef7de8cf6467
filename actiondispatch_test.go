package actiondispatch

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/caasmo/actiondispatch/config"
	"github.com/caasmo/actiondispatch/core"
	"github.com/caasmo/actiondispatch/jwt"
)

const testSecret = "test_secret_32_bytes_long_xxxxxx"

type PingController struct{}

func (PingController) Ping(r *http.Request) (string, error) {
	return "pong", nil
}

func (PingController) Echo(r *http.Request, word string) (string, error) {
	return word, nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dispatch.toml")
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

const testConfig = `
middlewares = ["requestlog", "jwtauth", "hotpaths"]

[log]
level = "error"

[metrics]
enabled = true
namespace = "test"

[auth]
jwt_secret = "` + testSecret + `"

[[routes]]
method = "get"
pattern = "/ping"
target = "PingController@ping"
middleware = ["requestlog", "hotpaths"]

[[routes]]
method = "get"
pattern = "/echo/:word"
target = "PingController@echo"
middleware = ["jwtauth"]
`

func TestNewFromFile(t *testing.T) {
	for _, matcher := range []string{config.MatcherHttprouter, config.MatcherChi} {
		t.Run(matcher, func(t *testing.T) {
			data := testConfig + "\n[dispatch]\nmatcher = \"" + matcher + "\"\n"
			if matcher == config.MatcherChi {
				data = strings.ReplaceAll(data, "/echo/:word", "/echo/{word}")
			}

			d, srv, err := NewFromFile(writeConfig(t, data),
				core.WithClass("PingController", PingController{}),
				core.WithLogger(newTestLogger()),
			)
			if err != nil {
				t.Fatalf("NewFromFile() error = %v", err)
			}
			if len(d.Routes()) != 2 {
				t.Fatalf("Routes() = %v, want 2 routes", d.Routes())
			}

			token, _, err := jwt.Create("alice", nil, []byte(testSecret), time.Minute)
			if err != nil {
				t.Fatal(err)
			}

			testCases := []struct {
				name     string
				method   string
				target   string
				auth     string
				wantCode int
				wantBody string
			}{
				{"ping", "GET", "/ping", "", http.StatusOK, "pong"},
				{"echo with token", "GET", "/echo/hi", "Bearer " + token, http.StatusOK, "hi"},
				{"echo without token", "GET", "/echo/hi", "", http.StatusUnauthorized, "Unauthorized\n"},
				{"wrong method", "POST", "/ping", "", http.StatusMethodNotAllowed, "Method Not Allowed\n"},
				{"unknown path", "GET", "/nope", "", http.StatusNotFound, "Not Found\n"},
			}

			for _, tc := range testCases {
				t.Run(tc.name, func(t *testing.T) {
					req := httptest.NewRequest(tc.method, tc.target, nil)
					if tc.auth != "" {
						req.Header.Set("Authorization", tc.auth)
					}
					rr := httptest.NewRecorder()
					srv.Handler().ServeHTTP(rr, req)

					if rr.Code != tc.wantCode {
						t.Errorf("status = %d, want %d", rr.Code, tc.wantCode)
					}
					if rr.Body.String() != tc.wantBody {
						t.Errorf("body = %q, want %q", rr.Body.String(), tc.wantBody)
					}
				})
			}

			rr := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
			if !strings.Contains(rr.Body.String(), `test_dispatch_total{method="get",outcome="ok"} 2`) {
				t.Errorf("metrics missing ok counter:\n%s", rr.Body.String())
			}
		})
	}
}

func TestNew_Errors(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown middleware", func(c *config.Config) { c.Middlewares = []string{"gzip"} }},
		{"unknown matcher", func(c *config.Config) { c.Dispatch.Matcher = "gorilla" }},
		{"bad target", func(c *config.Config) {
			c.Routes = []config.Route{{Method: "get", Pattern: "/a", Target: "nomethod"}}
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.NewDefaultConfig()
			tc.mutate(cfg)
			if _, _, err := New(cfg, core.WithLogger(newTestLogger())); err == nil {
				t.Error("New() expected error, got nil")
			}
		})
	}
}

func TestNewFromFile_MissingFile(t *testing.T) {
	if _, _, err := NewFromFile(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("NewFromFile() expected error for missing file")
	}
}
