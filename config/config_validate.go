package config

import (
	"fmt"
	"net"
	"slices"
	"strings"
)

var validMethods = []string{"get", "head", "post", "put", "patch", "delete", "connect", "options", "trace"}

var validCacheLevels = []string{"small", "medium", "large", "very-large"}

func Validate(cfg *Config) error {
	if err := validateServer(&cfg.Server); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}
	if err := validateLog(&cfg.Log); err != nil {
		return fmt.Errorf("log config validation failed: %w", err)
	}
	if err := validateDispatch(&cfg.Dispatch); err != nil {
		return fmt.Errorf("dispatch config validation failed: %w", err)
	}
	if !slices.Contains(validCacheLevels, cfg.Cache.Level) {
		return fmt.Errorf("cache config validation failed: unknown level '%s'", cfg.Cache.Level)
	}
	if err := validateMetrics(&cfg.Metrics); err != nil {
		return fmt.Errorf("metrics config validation failed: %w", err)
	}
	if cfg.HotPaths.K <= 0 {
		return fmt.Errorf("hotpaths config validation failed: k must be positive, got %d", cfg.HotPaths.K)
	}
	if cfg.HotPaths.WindowSize <= 0 || cfg.HotPaths.TickSize == 0 {
		return fmt.Errorf("hotpaths config validation failed: window_size and tick_size must be positive")
	}
	if cfg.HotPaths.HotSharePercent > 100 {
		return fmt.Errorf("hotpaths config validation failed: hot_share_percent above 100")
	}
	if slices.Contains(cfg.Middlewares, "jwtauth") && len(cfg.Auth.JwtSecret) < 32 {
		return fmt.Errorf("auth config validation failed: jwtauth needs a jwt_secret of at least 32 bytes")
	}
	for i := range cfg.Routes {
		if err := validateRoute(&cfg.Routes[i]); err != nil {
			return fmt.Errorf("route %d validation failed: %w", i, err)
		}
	}
	return nil
}

// validateServer checks the Server configuration section.
// It ensures the Addr field is not empty and contains a valid host:port or :port format.
// If only a port is provided (e.g., ":8080"), it defaults the host to "localhost".
//
// Allowed formats:
//   - "host:port" (e.g., "example.com:8080", "127.0.0.1:8080", "[::1]:8080")
//   - ":port"     (e.g., ":8080" becomes "localhost:8080")
//
// The port part is mandatory.
func validateServer(server *Server) error {
	if server.Addr == "" {
		return fmt.Errorf("server address (Addr) cannot be empty")
	}

	host, port, err := net.SplitHostPort(server.Addr)
	if err != nil {
		return fmt.Errorf("invalid server address format '%s': %w", server.Addr, err)
	}
	if port == "" {
		return fmt.Errorf("server address '%s' must include a port", server.Addr)
	}
	if host == "" {
		host = "localhost"
	}
	server.Addr = net.JoinHostPort(host, port)

	if _, err := net.LookupPort("tcp", port); err != nil {
		return fmt.Errorf("invalid port '%s' in server address '%s': %w", port, server.Addr, err)
	}
	if server.ShutdownGracefulTimeout.Duration <= 0 {
		return fmt.Errorf("shutdown_graceful_timeout must be positive")
	}
	return nil
}

func validateLog(l *Log) error {
	l.Format = strings.ToLower(l.Format)
	if l.Format != LogFormatJSON && l.Format != LogFormatText {
		return fmt.Errorf("unknown format '%s', want %s or %s", l.Format, LogFormatJSON, LogFormatText)
	}
	return nil
}

func validateDispatch(d *Dispatch) error {
	d.Matcher = strings.ToLower(d.Matcher)
	if d.Matcher != MatcherHttprouter && d.Matcher != MatcherChi {
		return fmt.Errorf("unknown matcher '%s', want %s or %s", d.Matcher, MatcherHttprouter, MatcherChi)
	}
	return nil
}

func validateMetrics(m *Metrics) error {
	if !m.Enabled {
		return nil
	}
	if !strings.HasPrefix(m.Endpoint, "/") {
		return fmt.Errorf("endpoint '%s' must start with '/'", m.Endpoint)
	}
	return nil
}

func validateRoute(r *Route) error {
	r.Method = strings.ToLower(strings.TrimSpace(r.Method))
	if !slices.Contains(validMethods, r.Method) {
		return fmt.Errorf("unknown method '%s'", r.Method)
	}
	if !strings.HasPrefix(r.Pattern, "/") {
		return fmt.Errorf("pattern '%s' must start with '/'", r.Pattern)
	}
	class, method, ok := strings.Cut(r.Target, "@")
	if !ok || class == "" || method == "" {
		return fmt.Errorf("target '%s' is not in Class@method form", r.Target)
	}
	for _, name := range r.Middleware {
		if name == "" {
			return fmt.Errorf("empty middleware name")
		}
	}
	return nil
}
