// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	// DefaultConfigDir is the default configuration directory
	DefaultConfigDir = ".daybook/configs"
	// DefaultConfigFile is the default configuration filename
	DefaultConfigFile = "config.json"
	// APIKeyEnvVar is consulted when parser.api_key is not set in the file
	APIKeyEnvVar = "DAYBOOK_API_KEY"
)

// Load reads configuration from ~/.daybook/configs/config.json
func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, DefaultConfigDir)

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(configPath)

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found, use defaults
			return loadFromDefaults(v)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadFromPath loads configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	homeDir, _ := os.UserHomeDir()

	// Database defaults
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.sqlite_path", filepath.Join(homeDir, ".daybook/db/daybook.db"))

	// Parser defaults
	v.SetDefault("parser.mode", ParserModeHybrid)
	v.SetDefault("parser.base_url", "https://api.openai.com/v1")
	v.SetDefault("parser.model", "gpt-4o-mini")

	// Journal defaults
	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.path", filepath.Join(homeDir, ".daybook/journal"))

	// Scheduler defaults
	v.SetDefault("scheduler.sweep_interval_minutes", 15)
	v.SetDefault("scheduler.session_idle_minutes", 480)
	v.SetDefault("scheduler.episode_max_open_days", 30)
}

// loadFromDefaults creates a config from default values
func loadFromDefaults(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal default config: %w", err)
	}
	applyEnv(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// applyEnv fills credentials from the environment when absent in the file
func applyEnv(cfg *Config) {
	if cfg.Parser.APIKey == "" {
		cfg.Parser.APIKey = os.Getenv(APIKeyEnvVar)
	}
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	// Validate database type
	if cfg.Database.Type != "sqlite" && cfg.Database.Type != "postgres" {
		return fmt.Errorf("database.type must be 'sqlite' or 'postgres', got '%s'", cfg.Database.Type)
	}
	if cfg.Database.Type == "sqlite" && cfg.Database.SQLitePath == "" {
		return fmt.Errorf("database.sqlite_path is required when type is 'sqlite'")
	}
	if cfg.Database.Type == "postgres" && cfg.Database.PostgresDSN == "" {
		return fmt.Errorf("database.postgres_dsn is required when type is 'postgres'")
	}

	// Validate parser mode
	switch cfg.Parser.Mode {
	case ParserModeLocal, ParserModeHybrid, ParserModeLLM:
	case "":
		cfg.Parser.Mode = ParserModeHybrid
	default:
		return fmt.Errorf("parser.mode must be 'local', 'hybrid', or 'llm', got '%s'", cfg.Parser.Mode)
	}

	// llm mode cannot run without a credential; surface this at startup
	// rather than on the first capture
	if cfg.Parser.Mode == ParserModeLLM && !cfg.Parser.HasAPIKey() {
		return fmt.Errorf("parser.mode 'llm' requires parser.api_key or %s", APIKeyEnvVar)
	}

	// Validate journal
	if cfg.Journal.Enabled && cfg.Journal.Path == "" {
		return fmt.Errorf("journal.path is required when journal is enabled")
	}

	// Validate scheduler
	if cfg.Scheduler.SweepInterval < 1 {
		return fmt.Errorf("scheduler.sweep_interval_minutes must be at least 1, got %d", cfg.Scheduler.SweepInterval)
	}
	if cfg.Scheduler.SessionIdleMinutes < 1 {
		return fmt.Errorf("scheduler.session_idle_minutes must be at least 1, got %d", cfg.Scheduler.SessionIdleMinutes)
	}
	if cfg.Scheduler.EpisodeMaxOpenDays < 1 {
		return fmt.Errorf("scheduler.episode_max_open_days must be at least 1, got %d", cfg.Scheduler.EpisodeMaxOpenDays)
	}

	return nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get user home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, DefaultConfigDir)
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return nil
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Database: DatabaseConfig{
			Type:       "sqlite",
			SQLitePath: filepath.Join(homeDir, ".daybook/db/daybook.db"),
		},
		Parser: ParserConfig{
			Mode:    ParserModeHybrid,
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
		},
		Journal: JournalConfig{
			Enabled: true,
			Path:    filepath.Join(homeDir, ".daybook/journal"),
		},
		Scheduler: SchedulerConfig{
			SweepInterval:      15,
			SessionIdleMinutes: 480,
			EpisodeMaxOpenDays: 30,
		},
	}
}
