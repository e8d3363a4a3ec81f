package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("expected 8080, got %s", cfg.ServerPort)
	}
	if cfg.Transcript.ProviderTimeout != 10*time.Second {
		t.Errorf("expected 10s provider timeout, got %s", cfg.Transcript.ProviderTimeout)
	}
	if cfg.Journal.Path != "" {
		t.Errorf("expected journal disabled by default, got %q", cfg.Journal.Path)
	}
	if len(cfg.Transcript.AllowedHosts) != 0 {
		t.Errorf("expected no host restriction, got %v", cfg.Transcript.AllowedHosts)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("READ_TIMEOUT", "10s")
	t.Setenv("WRITE_TIMEOUT", "20s")
	t.Setenv("PROVIDER_TIMEOUT", "5s")
	t.Setenv("INCLUDE_TIMESTAMPS", "true")
	t.Setenv("ALLOWED_HOSTS", "youtube.com, youtu.be")
	t.Setenv("CAPTION_LANGUAGES", "de,en")
	t.Setenv("PROVIDER_RPS", "2.5")
	t.Setenv("JOURNAL_PATH", "/tmp/journal.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ServerPort != "9090" {
		t.Errorf("expected 9090, got %s", cfg.ServerPort)
	}
	if cfg.ReadTimeout != 10*time.Second {
		t.Errorf("expected 10s, got %s", cfg.ReadTimeout)
	}
	if cfg.WriteTimeout != 20*time.Second {
		t.Errorf("expected 20s, got %s", cfg.WriteTimeout)
	}
	if cfg.Transcript.ProviderTimeout != 5*time.Second {
		t.Errorf("expected 5s, got %s", cfg.Transcript.ProviderTimeout)
	}
	if !cfg.Transcript.IncludeTimestamps {
		t.Error("expected timestamps to be enabled")
	}
	if got := cfg.Transcript.AllowedHosts; len(got) != 2 || got[0] != "youtube.com" || got[1] != "youtu.be" {
		t.Errorf("unexpected allowed hosts: %v", got)
	}
	if got := cfg.YouTube.Languages; len(got) != 2 || got[0] != "de" {
		t.Errorf("unexpected languages: %v", got)
	}
	if cfg.YouTube.RequestsPerSecond != 2.5 {
		t.Errorf("expected 2.5, got %v", cfg.YouTube.RequestsPerSecond)
	}
	if cfg.Journal.Path != "/tmp/journal.db" {
		t.Errorf("expected /tmp/journal.db, got %s", cfg.Journal.Path)
	}
}

func TestLoadInvalidValueFallsBack(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PROVIDER_TIMEOUT", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Transcript.ProviderTimeout != 10*time.Second {
		t.Errorf("expected fallback to 10s, got %s", cfg.Transcript.ProviderTimeout)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "config.yaml")
	content := `
server_port: "7000"
transcript:
  provider_timeout: 3s
  highlight_max_chars: 500
youtube:
  languages: [fr]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SERVER_PORT", "7001")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ServerPort != "7001" {
		t.Errorf("expected env to win, got %s", cfg.ServerPort)
	}
	if cfg.Transcript.ProviderTimeout != 3*time.Second {
		t.Errorf("expected 3s from file, got %s", cfg.Transcript.ProviderTimeout)
	}
	if cfg.Transcript.HighlightMaxChars != 500 {
		t.Errorf("expected 500, got %d", cfg.Transcript.HighlightMaxChars)
	}
	if got := cfg.YouTube.Languages; len(got) != 1 || got[0] != "fr" {
		t.Errorf("unexpected languages: %v", got)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("VERSION=2.3.4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("VERSION") })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Version != "2.3.4" {
		t.Errorf("expected version from .env, got %s", cfg.Version)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"missing port", func(c *Config) { c.ServerPort = "" }},
		{"zero read timeout", func(c *Config) { c.ReadTimeout = 0 }},
		{"zero provider timeout", func(c *Config) { c.Transcript.ProviderTimeout = 0 }},
		{"provider timeout exceeds write timeout", func(c *Config) { c.Transcript.ProviderTimeout = time.Minute }},
		{"zero rps", func(c *Config) { c.YouTube.RequestsPerSecond = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	if err := defaultConfig().Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent of testing.T.Chdir from Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore dir: %v", err)
		}
	})
}
