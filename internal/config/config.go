// Package config loads mathdrill settings from a YAML file. The environment
// may only relocate files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full application configuration.
type Config struct {
	Lessons LessonsConfig `yaml:"lessons"`
	Quiz    QuizConfig    `yaml:"quiz"`
	Store   StoreConfig   `yaml:"store"`
	Log     LogConfig     `yaml:"log"`
	LLM     LLMConfig     `yaml:"llm"`
}

// LessonsConfig locates the lesson sources.
type LessonsConfig struct {
	RemoteURL    string `yaml:"remote_url"`
	CacheFile    string `yaml:"cache_file"`
	CustomFile   string `yaml:"custom_file"`
	FetchTimeout string `yaml:"fetch_timeout"`
}

// QuizConfig tunes a lesson attempt.
type QuizConfig struct {
	SampleLimit int `yaml:"sample_limit"` // 0 means the default of 40
	Countdown   int `yaml:"countdown"`    // seconds before the first task
}

// StoreConfig locates the history database.
type StoreConfig struct {
	DBPath string `yaml:"db_path"`
}

// LogConfig controls the log file.
type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

// LLMConfig selects the provider used for lesson authoring. API keys are
// only read from the environment.
type LLMConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
}

const (
	DefaultRemoteURL    = "https://raw.githubusercontent.com/Tianodont/beeholder/main/lessons.json"
	DefaultFetchTimeout = 10 * time.Second
	DefaultSampleLimit  = 40
	DefaultCountdown    = 3
	DefaultLogLevel     = "info"
)

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Lessons: LessonsConfig{
			RemoteURL:    DefaultRemoteURL,
			FetchTimeout: DefaultFetchTimeout.String(),
		},
		Quiz: QuizConfig{
			SampleLimit: DefaultSampleLimit,
			Countdown:   DefaultCountdown,
		},
		Log: LogConfig{Level: DefaultLogLevel},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// MATHDRILL_* path overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv lets the environment relocate files. Settings that change how
// a quiz plays are only read from the config file.
func (c *Config) applyEnv() {
	if v := os.Getenv("MATHDRILL_LESSONS_CACHE"); v != "" {
		c.Lessons.CacheFile = v
	}
	if v := os.Getenv("MATHDRILL_CUSTOM_LESSONS"); v != "" {
		c.Lessons.CustomFile = v
	}
	if v := os.Getenv("MATHDRILL_DB"); v != "" {
		c.Store.DBPath = v
	}
	if v := os.Getenv("MATHDRILL_LOG_FILE"); v != "" {
		c.Log.File = v
	}
}

var validLevels = map[string]bool{
	"trace": true, "debug": true, "info": true,
	"warn": true, "warning": true, "error": true,
}

// Validate rejects settings the rest of the program cannot honor.
func (c Config) Validate() error {
	if c.Quiz.SampleLimit < 0 {
		return fmt.Errorf("quiz.sample_limit must be >= 0, got %d", c.Quiz.SampleLimit)
	}
	if c.Quiz.Countdown < 0 {
		return fmt.Errorf("quiz.countdown must be >= 0, got %d", c.Quiz.Countdown)
	}
	if c.Log.Level != "" && !validLevels[c.Log.Level] {
		return fmt.Errorf("unknown log.level %q", c.Log.Level)
	}
	if c.Lessons.FetchTimeout != "" {
		if _, err := time.ParseDuration(c.Lessons.FetchTimeout); err != nil {
			return fmt.Errorf("lessons.fetch_timeout: %w", err)
		}
	}
	return nil
}

// FetchTimeout returns the parsed fetch timeout, or the default when unset
// or malformed.
func (c Config) FetchTimeout() time.Duration {
	return Duration(c.Lessons.FetchTimeout, DefaultFetchTimeout)
}

// Duration parses a duration string or returns the fallback if empty.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// DefaultPath resolves the config file path:
// 1. MATHDRILL_CONFIG environment variable
// 2. <UserConfigDir>/mathdrill/config.yaml
func DefaultPath() (string, error) {
	if p := os.Getenv("MATHDRILL_CONFIG"); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "mathdrill", "config.yaml"), nil
}
