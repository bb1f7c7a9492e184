// Package config provides mission configuration loading, saving, and
// validation for the CLI. Configs are shareable files: a saved config
// carries export metadata that loading strips back out.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Version is written into exported config files
const Version = "1.0"

// Config is a mission configuration. All fields are optional in the file;
// missing values fall back to defaults or CLI flags.
type Config struct {
	// Mission
	Topic      string   `json:"topic,omitempty" yaml:"topic,omitempty"`
	Sources    []string `json:"sources,omitempty" yaml:"sources,omitempty" validate:"omitempty,dive,url"`
	MaxSources int      `json:"max_sources,omitempty" yaml:"max_sources,omitempty" validate:"omitempty,min=1,max=20"`
	Style      string   `json:"summary_style,omitempty" yaml:"summary_style,omitempty" validate:"omitempty,oneof=technical executive casual"`
	Mode       string   `json:"fetch_mode,omitempty" yaml:"fetch_mode,omitempty" validate:"omitempty,oneof=simple intelligent"`

	// Behavior
	Verbose        bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`
	FetchWorkers   int  `json:"fetch_workers,omitempty" yaml:"fetch_workers,omitempty" validate:"omitempty,min=1"`
	MaxRetries     int  `json:"max_retries,omitempty" yaml:"max_retries,omitempty"`
	TimeoutSeconds int  `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"`

	// Services
	DatabaseURL      string `json:"database_url,omitempty" yaml:"database_url,omitempty"`
	SearchAPIKey     string `json:"search_api_key,omitempty" yaml:"search_api_key,omitempty"`
	SearchEngineID   string `json:"search_engine_id,omitempty" yaml:"search_engine_id,omitempty"`
	NotionAPIKey     string `json:"notion_api_key,omitempty" yaml:"notion_api_key,omitempty"`
	NotionDatabaseID string `json:"notion_database_id,omitempty" yaml:"notion_database_id,omitempty"`
}

// envelope wraps a Config with export metadata. The embedded struct keeps
// the config fields flat in both JSON and YAML.
type envelope struct {
	ExportedAt string `json:"exported_at" yaml:"exported_at"`
	Version    string `json:"version" yaml:"version"`
	Config     `yaml:",inline"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() Config {
	return Config{
		MaxSources:     5,
		Style:          "technical",
		Mode:           "simple",
		FetchWorkers:   1,
		MaxRetries:     3,
		TimeoutSeconds: 30,
	}
}

// Load reads a config file, picking the format from the extension
// (.yaml/.yml or .json). Export metadata fields are ignored.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
	}

	return &cfg, nil
}

// Save writes the config to path with export metadata, picking the format
// from the extension (.yaml/.yml or .json)
func Save(cfg *Config, path string) error {
	env := envelope{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Version:    Version,
		Config:     *cfg,
	}

	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(env)
	case ".json":
		data, err = json.MarshalIndent(env, "", "  ")
	default:
		return fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// Validate checks the config as a complete, runnable mission
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Topic) == "" {
		return fmt.Errorf("config error: missing required field: topic")
	}
	if len(strings.TrimSpace(c.Topic)) < 3 {
		return fmt.Errorf("config error: 'topic' must be at least 3 characters")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("config error: 'max_retries' must be non-negative")
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'timeout_seconds' must be non-negative")
	}

	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// MergeWithDefaults returns a new Config with unset fields filled from
// defaults. Bool fields are not merged: flags always win for those.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Topic == "" {
		result.Topic = defaults.Topic
	}
	if result.Sources == nil {
		result.Sources = defaults.Sources
	}
	if result.Style == "" {
		result.Style = defaults.Style
	}
	if result.Mode == "" {
		result.Mode = defaults.Mode
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.SearchAPIKey == "" {
		result.SearchAPIKey = defaults.SearchAPIKey
	}
	if result.SearchEngineID == "" {
		result.SearchEngineID = defaults.SearchEngineID
	}
	if result.NotionAPIKey == "" {
		result.NotionAPIKey = defaults.NotionAPIKey
	}
	if result.NotionDatabaseID == "" {
		result.NotionDatabaseID = defaults.NotionDatabaseID
	}

	if result.MaxSources == 0 {
		result.MaxSources = defaults.MaxSources
	}
	if result.FetchWorkers == 0 {
		result.FetchWorkers = defaults.FetchWorkers
	}
	if result.MaxRetries == 0 {
		result.MaxRetries = defaults.MaxRetries
	}
	if result.TimeoutSeconds == 0 {
		result.TimeoutSeconds = defaults.TimeoutSeconds
	}

	return result
}
