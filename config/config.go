package config

import (
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

const (
	MatcherHttprouter = "httprouter"
	MatcherChi        = "chi"

	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Duration wraps time.Duration so it can be written as "15s" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// LogLevel wraps slog.Level so it can be written as "debug" in TOML.
type LogLevel struct {
	slog.Level
}

func (l *LogLevel) UnmarshalText(text []byte) error {
	return l.Level.UnmarshalText([]byte(strings.TrimSpace(string(text))))
}

func (l LogLevel) MarshalText() ([]byte, error) {
	return l.Level.MarshalText()
}

type Config struct {
	Server      Server   `toml:"server"`
	Log         Log      `toml:"log"`
	Dispatch    Dispatch `toml:"dispatch"`
	Cache       Cache    `toml:"cache"`
	Metrics     Metrics  `toml:"metrics"`
	Auth        Auth     `toml:"auth"`
	HotPaths    HotPaths `toml:"hotpaths"`
	Middlewares []string `toml:"middlewares"`
	Routes      []Route  `toml:"routes"`

	// Source is the file the config was loaded from, empty for defaults.
	Source string `toml:"-"`
}

type Server struct {
	Addr                    string   `toml:"addr"`
	ShutdownGracefulTimeout Duration `toml:"shutdown_graceful_timeout"`
	ReadTimeout             Duration `toml:"read_timeout"`
	ReadHeaderTimeout       Duration `toml:"read_header_timeout"`
	WriteTimeout            Duration `toml:"write_timeout"`
	IdleTimeout             Duration `toml:"idle_timeout"`
}

type Log struct {
	Level  LogLevel `toml:"level"`
	Format string   `toml:"format"`
}

type Dispatch struct {
	// Matcher selects the matching engine: "httprouter" or "chi".
	Matcher string `toml:"matcher"`
	// IndexCache keeps built route indexes between requests.
	IndexCache bool `toml:"index_cache"`
}

type Cache struct {
	Level string `toml:"level"`
}

type Metrics struct {
	Enabled   bool   `toml:"enabled"`
	Endpoint  string `toml:"endpoint"`
	Namespace string `toml:"namespace"`
}

type Auth struct {
	JwtSecret string `toml:"jwt_secret"`
}

// HotPaths sizes the sketch behind the hotpaths middleware. The window
// spans WindowSize ticks of TickSize requests each.
type HotPaths struct {
	K               int    `toml:"k"`
	WindowSize      int    `toml:"window_size"`
	TickSize        uint64 `toml:"tick_size"`
	HotSharePercent uint64 `toml:"hot_share_percent"`
}

// Route is a route declared in the config file. Target is in Class@method
// form, Middleware lists container names.
type Route struct {
	Method     string   `toml:"method"`
	Pattern    string   `toml:"pattern"`
	Target     string   `toml:"target"`
	Middleware []string `toml:"middleware"`
}

func (r Route) String() string {
	return fmt.Sprintf("%s %s -> %s", strings.ToUpper(r.Method), r.Pattern, r.Target)
}

// Provider holds the current configuration. Get and Update are safe for
// concurrent use.
type Provider struct {
	value atomic.Pointer[Config]
}

func NewProvider(initialConfig *Config) *Provider {
	if initialConfig == nil {
		panic("initial config cannot be nil")
	}
	p := &Provider{}
	p.value.Store(initialConfig)
	return p
}

func (p *Provider) Get() *Config {
	return p.value.Load()
}

func (p *Provider) Update(newConfig *Config) {
	p.value.Store(newConfig)
}
