// Package config loads the watcher configuration from an optional
// YAML file with environment-variable overrides on top.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/examwatch/examwatch/internal/processor"
)

var errNoTargets = errors.New("config: at least one target URL is required")

// FetcherMode selects how pages are retrieved.
type FetcherMode string

const (
	FetcherBrowser FetcherMode = "browser"
	FetcherHTTP    FetcherMode = "http"
	// FetcherAuto tries the browser and falls back to HTTP when no
	// browser can be launched.
	FetcherAuto FetcherMode = "auto"
)

// Target is one page under watch.
type Target struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Browser holds the headless-browser options.
type Browser struct {
	Headless         bool          `yaml:"headless"`
	Stealth          bool          `yaml:"stealth"`
	UserAgent        string        `yaml:"user_agent"`
	WindowWidth      int           `yaml:"window_width"`
	WindowHeight     int           `yaml:"window_height"`
	NavigateTimeout  time.Duration `yaml:"navigate_timeout"`
	StabilizeTimeout time.Duration `yaml:"stabilize_timeout"`
}

// Config is the full application configuration.
type Config struct {
	Targets   []Target      `yaml:"targets"`
	Fetcher   FetcherMode   `yaml:"fetcher"`
	Interval  time.Duration `yaml:"interval"`
	OutputDir string        `yaml:"output_dir"`
	LogLevel  string        `yaml:"log_level"`

	Browser Browser `yaml:"browser"`

	HTTPTimeout     time.Duration `yaml:"http_timeout"`
	MaxResponseSize int           `yaml:"max_response_size"`
	RespectRobots   bool          `yaml:"respect_robots"`

	// Processor replaces whole sections of the default pattern
	// configuration when present.
	Processor processor.Overrides `yaml:"processor"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Fetcher:         FetcherAuto,
		Interval:        5 * time.Minute,
		OutputDir:       "snapshots",
		LogLevel:        "info",
		HTTPTimeout:     10 * time.Second,
		MaxResponseSize: 4194304, // 4MB
		RespectRobots:   true,
		Browser: Browser{
			Headless:         true,
			Stealth:          false,
			WindowWidth:      1920,
			WindowHeight:     1080,
			NavigateTimeout:  30 * time.Second,
			StabilizeTimeout: 15 * time.Second,
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file
// at path, and environment overrides, in that order. Unknown YAML keys
// are rejected.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// Validate checks the parts that cannot default sensibly.
func (c Config) Validate() error {
	if len(c.Targets) == 0 {
		return errNoTargets
	}
	for _, t := range c.Targets {
		if t.URL == "" {
			return fmt.Errorf("config: target %q has no URL", t.Name)
		}
	}
	switch c.Fetcher {
	case FetcherBrowser, FetcherHTTP, FetcherAuto:
	default:
		return fmt.Errorf("config: unknown fetcher mode %q", c.Fetcher)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.LogLevel = getEnv("EXAMWATCH_LOG_LEVEL", cfg.LogLevel)
	cfg.OutputDir = getEnv("EXAMWATCH_OUTPUT_DIR", cfg.OutputDir)
	if v := os.Getenv("EXAMWATCH_FETCHER"); v != "" {
		cfg.Fetcher = FetcherMode(v)
	}
	cfg.Browser.Headless = getEnvAsBool("EXAMWATCH_HEADLESS", cfg.Browser.Headless)
	cfg.Browser.Stealth = getEnvAsBool("EXAMWATCH_STEALTH", cfg.Browser.Stealth)
	cfg.Browser.UserAgent = getEnv("EXAMWATCH_USER_AGENT", cfg.Browser.UserAgent)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return fallback
	}
	return v
}
