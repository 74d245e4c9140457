package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	Engine      EngineConfig    `toml:"engine"`
	Scraper     ScraperConfig   `toml:"scraper"`
	Auth        AuthConfig      `toml:"auth"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
	LLM         LLMConfig       `toml:"llm"`
	Claude      ClaudeConfig    `toml:"claude"`
	Gemini      GeminiConfig    `toml:"gemini"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gte=0,lte=65535"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Type   string       `toml:"type"` // only "badger" is supported
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// EngineConfig controls job execution behavior
type EngineConfig struct {
	StepTimeout     string `toml:"step_timeout"`      // Per-handler-call timeout, e.g. "60s"
	MaxStoredJobs   int    `toml:"max_stored_jobs"`   // Jobs retained before cleanup eligibility
	StepDataHistory bool   `toml:"step_data_history"` // Persist per-step data packets for inspection
}

// StepTimeoutDuration returns the parsed step timeout with a 60s default
func (e *EngineConfig) StepTimeoutDuration() time.Duration {
	if e.StepTimeout == "" {
		return 60 * time.Second
	}
	d, err := time.ParseDuration(e.StepTimeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// ScraperConfig controls the extraction engine
type ScraperConfig struct {
	MaxPages       int    `toml:"max_pages"`       // Pagination bound (default 20)
	RequestTimeout string `toml:"request_timeout"` // Per-page fetch timeout
	RequestDelay   string `toml:"request_delay"`   // Minimum delay between page fetches
	UserAgent      string `toml:"user_agent"`      // Browser-spoofed user agent
}

func (s *ScraperConfig) RequestTimeoutDuration() time.Duration {
	if d, err := time.ParseDuration(s.RequestTimeout); err == nil && d > 0 {
		return d
	}
	return 30 * time.Second
}

func (s *ScraperConfig) RequestDelayDuration() time.Duration {
	if d, err := time.ParseDuration(s.RequestDelay); err == nil && d >= 0 {
		return d
	}
	return 500 * time.Millisecond
}

// AuthConfig carries OAuth callback settings shared by all providers
type AuthConfig struct {
	CallbackBaseURL string `toml:"callback_base_url"` // e.g. "http://localhost:8085"
	StateTTL        string `toml:"state_ttl"`         // Authorization state nonce lifetime
}

func (a *AuthConfig) StateTTLDuration() time.Duration {
	if d, err := time.ParseDuration(a.StateTTL); err == nil && d > 0 {
		return d
	}
	return 15 * time.Minute
}

type SchedulerConfig struct {
	Enabled bool `toml:"enabled"`
}

// LLMConfig selects the active provider
type LLMConfig struct {
	Provider string `toml:"provider"` // "claude" or "gemini"
}

type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Timeout     string  `toml:"timeout"`
	Temperature float32 `toml:"temperature"`
}

type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	Timeout     string  `toml:"timeout"`
	Temperature float32 `toml:"temperature"`
}

// DefaultConfig returns the baseline configuration applied before file/env overrides
func DefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8085,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Type: "badger",
			Badger: BadgerConfig{
				Path: "./data/conduit",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		Engine: EngineConfig{
			StepTimeout:     "60s",
			MaxStoredJobs:   500,
			StepDataHistory: true,
		},
		Scraper: ScraperConfig{
			MaxPages:       20,
			RequestTimeout: "30s",
			RequestDelay:   "500ms",
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
		Auth: AuthConfig{
			CallbackBaseURL: "http://localhost:8085",
			StateTTL:        "15m",
		},
		Scheduler: SchedulerConfig{
			Enabled: true,
		},
		LLM: LLMConfig{
			Provider: "claude",
		},
		Claude: ClaudeConfig{
			Model:     "claude-sonnet-4-20250514",
			MaxTokens: 8192,
			Timeout:   "120s",
		},
		Gemini: GeminiConfig{
			Model:   "gemini-2.0-flash",
			Timeout: "120s",
		},
	}
}

// LoadFromFiles loads configuration with precedence: defaults -> files (in order) -> env
func LoadFromFiles(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides applies CONDUIT_* environment variables over the loaded config
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CONDUIT_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("CONDUIT_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("CONDUIT_STORAGE_PATH"); v != "" {
		cfg.Storage.Badger.Path = v
	}
	if v := os.Getenv("CONDUIT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" && cfg.Claude.APIKey == "" {
		cfg.Claude.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" && cfg.Gemini.APIKey == "" {
		cfg.Gemini.APIKey = v
	}
}

// ApplyFlagOverrides applies command-line flag values (highest priority)
func ApplyFlagOverrides(cfg *Config, port int, host string) {
	if port != 0 {
		cfg.Server.Port = port
	}
	if host != "" {
		cfg.Server.Host = host
	}
}

// Validate checks structural constraints on the configuration
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Storage.Type != "" && c.Storage.Type != "badger" {
		return fmt.Errorf("unsupported storage type: %s (only 'badger' is supported)", c.Storage.Type)
	}

	switch strings.ToLower(c.LLM.Provider) {
	case "", "claude", "gemini":
	default:
		return fmt.Errorf("unsupported llm provider: %s (must be 'claude' or 'gemini')", c.LLM.Provider)
	}

	return nil
}

// ValidateCronSchedule validates a standard 5-field cron expression
func ValidateCronSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", schedule, err)
	}
	return nil
}
