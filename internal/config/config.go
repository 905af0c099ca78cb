// Package config handles Prody configuration.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/prody/prody/internal/llm"
)

// Config holds all configuration
type Config struct {
	DataDir string `json:"data_dir"`

	Server    ServerConfig    `json:"server"`
	Gemini    GeminiConfig    `json:"gemini"`
	Scheduler SchedulerConfig `json:"scheduler"`

	LogLevel string `json:"log_level"`
}

// ServerConfig for the HTTP server
type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// GeminiConfig for the Gemini API
type GeminiConfig struct {
	APIKey string `json:"api_key"`
	Model  string `json:"model"`
}

// SchedulerConfig for background tasks
type SchedulerConfig struct {
	Timezone        string `json:"timezone"`         // Empty means local time
	DeliverySweep   string `json:"delivery_sweep"`   // Interval, e.g. "1m"
	DailyWisdomAt   string `json:"daily_wisdom_at"`  // "HH:MM"
	JournalReminder string `json:"journal_reminder"` // "HH:MM", empty disables
}

// Default returns default configuration
func Default() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		DataDir: filepath.Join(home, ".prody"),
		Server: ServerConfig{
			Host: "localhost",
			Port: 8484,
		},
		Gemini: GeminiConfig{
			APIKey: llm.APIKeyFromEnv(),
			Model:  llm.DefaultModel,
		},
		Scheduler: SchedulerConfig{
			DeliverySweep: "1m",
			DailyWisdomAt: "08:00",
		},
		LogLevel: "info",
	}
}

// DatabasePath returns the SQLite file location under the data dir
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "prody.db")
}

// Load loads config from file, falling back to defaults. The environment
// always wins for the API key.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = filepath.Join(cfg.DataDir, "config.json")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if apiKey := llm.APIKeyFromEnv(); apiKey != "" {
		cfg.Gemini.APIKey = apiKey
	}
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = llm.DefaultModel
	}

	return cfg, nil
}

// Save writes config to file. The API key never touches disk.
func (c *Config) Save(path string) error {
	if path == "" {
		path = filepath.Join(c.DataDir, "config.json")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	safeCfg := *c
	safeCfg.Gemini.APIKey = ""

	data, err := json.MarshalIndent(safeCfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}
