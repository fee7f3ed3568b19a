// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

// Parser modes. Local runs only the heuristic parser; hybrid prefers the
// assisted parser and falls back to heuristics; llm requires the assisted
// parser and never falls back.
const (
	ParserModeLocal  = "local"
	ParserModeHybrid = "hybrid"
	ParserModeLLM    = "llm"
)

// Config is the root configuration
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Parser    ParserConfig    `mapstructure:"parser"`
	Journal   JournalConfig   `mapstructure:"journal"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// DatabaseConfig holds record store settings
type DatabaseConfig struct {
	Type        string `mapstructure:"type"` // "sqlite" or "postgres"
	SQLitePath  string `mapstructure:"sqlite_path"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
}

// ParserConfig holds parse strategy settings
type ParserConfig struct {
	Mode    string `mapstructure:"mode"`     // local, hybrid, or llm
	BaseURL string `mapstructure:"base_url"` // OpenAI-compatible endpoint
	Model   string `mapstructure:"model"`
	APIKey  string `mapstructure:"api_key"` // falls back to DAYBOOK_API_KEY env var
}

// JournalConfig holds markdown journal export settings
type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// SchedulerConfig holds background sweeper settings
type SchedulerConfig struct {
	SweepInterval      int `mapstructure:"sweep_interval_minutes"`
	SessionIdleMinutes int `mapstructure:"session_idle_minutes"`
	EpisodeMaxOpenDays int `mapstructure:"episode_max_open_days"`
}

// HasAPIKey reports whether an assisted-parser credential is configured.
func (p ParserConfig) HasAPIKey() bool {
	return p.APIKey != ""
}
