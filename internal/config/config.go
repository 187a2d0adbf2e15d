package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all mailsift configuration.
type Config struct {
	Sync     SyncConfig     `toml:"sync"`
	AI       AIConfig       `toml:"ai"`
	Accounts AccountsConfig `toml:"accounts"`
	Gmail    GmailConfig    `toml:"gmail"`
}

// GmailConfig holds Gmail OAuth credentials.
// Users can override via config file or env vars.
type GmailConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// SyncConfig holds triage pass settings.
type SyncConfig struct {
	Interval string `toml:"interval"`
	PageSize int    `toml:"page_size"`
	Query    string `toml:"query"`
}

// AIConfig holds the external classifier settings. An empty endpoint or key
// leaves the classifier unconfigured; aiPrompt rules then never match and
// summarize actions are skipped.
type AIConfig struct {
	Endpoint        string `toml:"endpoint"`
	APIKey          string `toml:"api_key"`
	Model           string `toml:"model"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
	MinSummaryChars int    `toml:"min_summary_chars"`
}

// AccountsConfig holds account selection settings.
type AccountsConfig struct {
	Default string `toml:"default"`
}

func defaults() Config {
	return Config{
		Sync: SyncConfig{
			Interval: "1m",
			PageSize: 25,
		},
		AI: AIConfig{
			TimeoutSeconds:  30,
			MinSummaryChars: 50,
		},
	}
}

// Load reads config from path. If path is empty or the file does not exist,
// returns defaults.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path == "" {
		return &cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// SyncInterval parses the configured watch interval.
func (c *Config) SyncInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Sync.Interval)
	if err != nil {
		return 0, fmt.Errorf("invalid sync interval %q: %w", c.Sync.Interval, err)
	}
	return d, nil
}

// AITimeout returns the classifier request timeout.
func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.AI.TimeoutSeconds) * time.Second
}

// ConfigDir returns the mailsift config directory path.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mailsift")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "mailsift")
}

// DataDir returns the mailsift data directory path.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "mailsift")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "mailsift")
}
