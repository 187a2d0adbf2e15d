package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg.Sync.Interval != "1m" {
		t.Errorf("Sync.Interval = %q, want 1m", cfg.Sync.Interval)
	}
	if cfg.Sync.PageSize != 25 {
		t.Errorf("Sync.PageSize = %d, want 25", cfg.Sync.PageSize)
	}
	if cfg.AI.TimeoutSeconds != 30 {
		t.Errorf("AI.TimeoutSeconds = %d, want 30", cfg.AI.TimeoutSeconds)
	}
	if cfg.AI.MinSummaryChars != 50 {
		t.Errorf("AI.MinSummaryChars = %d, want 50", cfg.AI.MinSummaryChars)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.toml"))
	if err != nil {
		t.Fatalf("Load() error for missing file: %v", err)
	}
	if cfg.Sync.PageSize != 25 {
		t.Errorf("Sync.PageSize = %d, want default 25", cfg.Sync.PageSize)
	}
}

func TestLoadFile(t *testing.T) {
	content := `
[sync]
interval = "30s"
page_size = 50
query = "label:screener"

[ai]
endpoint = "https://api.example.com/v1/chat/completions"
api_key = "sk-test"
model = "small-1"
timeout_seconds = 10
min_summary_chars = 100

[gmail]
client_id = "cid"
client_secret = "secret"

[accounts]
default = "me@example.com"
`
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Sync.Interval != "30s" || cfg.Sync.PageSize != 50 || cfg.Sync.Query != "label:screener" {
		t.Errorf("sync section = %+v", cfg.Sync)
	}
	if cfg.AI.Endpoint != "https://api.example.com/v1/chat/completions" || cfg.AI.APIKey != "sk-test" {
		t.Errorf("ai section = %+v", cfg.AI)
	}
	if cfg.Gmail.ClientID != "cid" || cfg.Gmail.ClientSecret != "secret" {
		t.Errorf("gmail section = %+v", cfg.Gmail)
	}
	if cfg.Accounts.Default != "me@example.com" {
		t.Errorf("Accounts.Default = %q", cfg.Accounts.Default)
	}

	interval, err := cfg.SyncInterval()
	if err != nil {
		t.Fatalf("SyncInterval() error: %v", err)
	}
	if interval != 30*time.Second {
		t.Errorf("SyncInterval = %v, want 30s", interval)
	}
	if cfg.AITimeout() != 10*time.Second {
		t.Errorf("AITimeout = %v, want 10s", cfg.AITimeout())
	}
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("not [valid toml"), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load() accepted invalid TOML")
	}
}

func TestSyncIntervalInvalid(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	cfg.Sync.Interval = "soon"
	if _, err := cfg.SyncInterval(); err == nil {
		t.Fatal("SyncInterval() accepted an unparseable duration")
	}
}
