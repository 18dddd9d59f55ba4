package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestInitConfigCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)
	cfg, err := InitConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config file not written: %v", err)
	}

	again, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if again.Search.Timeout.Duration != cfg.Search.Timeout.Duration {
		t.Errorf("timeout after reload = %v, expected %v", again.Search.Timeout, cfg.Search.Timeout)
	}
	if len(again.Crawler.Sources) != len(cfg.Crawler.Sources) {
		t.Errorf("sources after reload = %d, expected %d", len(again.Crawler.Sources), len(cfg.Crawler.Sources))
	}
	if again.Session.TTL.Duration != 24*time.Hour {
		t.Errorf("ttl = %v", again.Session.TTL)
	}
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		description string
		content     string
		check       func(t *testing.T, cfg *Config)
	}{
		{
			description: "overrides keep unrelated defaults",
			content: `
[search]
timeout = "45s"
max_results = 250

[session]
backend = "sqlite"
path = "/tmp/wh.db"
`,
			check: func(t *testing.T, cfg *Config) {
				if cfg.Search.Timeout.Duration != 45*time.Second || cfg.Search.MaxResults != 250 {
					t.Errorf("search = %+v", cfg.Search)
				}
				if cfg.Session.Backend != BackendSQLite || cfg.Session.Path != "/tmp/wh.db" {
					t.Errorf("session = %+v", cfg.Session)
				}
				if cfg.Server.RateLimit != 10 {
					t.Errorf("rate limit default lost: %d", cfg.Server.RateLimit)
				}
			},
		},
		{
			description: "custom sources replace the defaults",
			content: `
[[crawler.sources]]
url = "https://example.com/words.txt"
type = "wordlist"
priority = 1
`,
			check: func(t *testing.T, cfg *Config) {
				if len(cfg.Crawler.Sources) != 1 || cfg.Crawler.Sources[0].URL != "https://example.com/words.txt" {
					t.Errorf("sources = %+v", cfg.Crawler.Sources)
				}
			},
		},
		{
			description: "bad value recovers the other sections",
			content: `
[search]
max_results = "lots"
mode = "hyper"

[session]
backend = "memory"
`,
			check: func(t *testing.T, cfg *Config) {
				if cfg.Search.MaxResults != 100 {
					t.Errorf("max_results = %d, expected default", cfg.Search.MaxResults)
				}
				if cfg.Search.Mode != "hyper" {
					t.Errorf("mode = %q, expected recovered hyper", cfg.Search.Mode)
				}
				if cfg.Session.Backend != BackendMemory {
					t.Errorf("backend = %q", cfg.Session.Backend)
				}
			},
		},
		{
			description: "bad duration recovers with the default",
			content: `
[session]
ttl = "forever"
key = "mine"
`,
			check: func(t *testing.T, cfg *Config) {
				if cfg.Session.TTL.Duration != 24*time.Hour {
					t.Errorf("ttl = %v", cfg.Session.TTL)
				}
				if cfg.Session.Key != "mine" {
					t.Errorf("key = %q", cfg.Session.Key)
				}
			},
		},
		{
			description: "unknown enum values are normalized",
			content: `
[session]
backend = "redis"

[cli]
format = "xml"
`,
			check: func(t *testing.T, cfg *Config) {
				if cfg.Session.Backend != BackendFile {
					t.Errorf("backend = %q", cfg.Session.Backend)
				}
				if cfg.CLI.Format != FormatText {
					t.Errorf("format = %q", cfg.CLI.Format)
				}
			},
		},
		{
			description: "unparseable file falls back to defaults",
			content:     "[[[ not toml",
			check: func(t *testing.T, cfg *Config) {
				if cfg.Search.MaxResults != 100 || cfg.Session.Backend != BackendFile {
					t.Errorf("expected defaults, got %+v", cfg)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			cfg, err := LoadConfig(writeConfig(t, tt.content))
			if err != nil {
				t.Fatal(err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestLoadConfigWithPriorityCustomPath(t *testing.T) {
	path := writeConfig(t, "[cli]\nrows = 7\n")
	cfg, used, err := LoadConfigWithPriority(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if used != path || cfg.CLI.Rows != 7 {
		t.Errorf("used %q rows %d", used, cfg.CLI.Rows)
	}

	cfg, used, err = LoadConfigWithPriority(filepath.Join(t.TempDir(), "nope.toml"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if used != "" || cfg.CLI.Rows != 25 {
		t.Errorf("expected defaults, used %q rows %d", used, cfg.CLI.Rows)
	}
}

func TestAPIKeyAndEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("WORDHUNT_TEST_KEY=from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WORDHUNT_TEST_KEY", "")
	os.Unsetenv("WORDHUNT_TEST_KEY")
	t.Setenv("OPENAI_API_KEY", "fallback")

	ai := AIConfig{APIKeyEnv: "WORDHUNT_TEST_KEY"}
	if got := ai.APIKey(); got != "fallback" {
		t.Errorf("APIKey() before env file = %q", got)
	}
	LoadEnv(dir)
	if got := ai.APIKey(); got != "from-file" {
		t.Errorf("APIKey() after env file = %q", got)
	}
}
