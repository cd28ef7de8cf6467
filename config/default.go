package config

import (
	"log/slog"
	"time"
)

// NewDefaultConfig creates a new Config with sensible defaults. It has no
// routes and no auth secret.
func NewDefaultConfig() *Config {
	return &Config{
		Server: Server{
			Addr:                    ":8080",
			ShutdownGracefulTimeout: Duration{Duration: 15 * time.Second},
			ReadTimeout:             Duration{Duration: 2 * time.Second},
			ReadHeaderTimeout:       Duration{Duration: 2 * time.Second},
			WriteTimeout:            Duration{Duration: 3 * time.Second},
			IdleTimeout:             Duration{Duration: 1 * time.Minute},
		},
		Log: Log{
			Level:  LogLevel{Level: slog.LevelInfo},
			Format: LogFormatJSON,
		},
		Dispatch: Dispatch{
			Matcher:    MatcherHttprouter,
			IndexCache: true,
		},
		Cache: Cache{
			Level: "small",
		},
		Metrics: Metrics{
			Enabled:   false,
			Endpoint:  "/metrics",
			Namespace: "actiondispatch",
		},
		HotPaths: HotPaths{
			K:               10,
			WindowSize:      10,
			TickSize:        100,
			HotSharePercent: 50,
		},
	}
}
