/*
Package config manages the TOML config for wordhunt.

A missing file is created with defaults. A file that fails to decode is recovered section
by section, so one bad value only resets itself. Secrets never live in the file: the
advisor key is read from the environment, optionally seeded from a .env file.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/bastiangx/wordhunt/internal/utils"
	"github.com/bastiangx/wordhunt/pkg/crawler"
)

// FileName is the config file name inside the config directory.
const FileName = "config.toml"

// Session backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Output formats for the CLI.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config holds the entire config structure
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Dict    DictConfig    `toml:"dict"`
	Search  SearchConfig  `toml:"search"`
	Session SessionConfig `toml:"session"`
	Crawler CrawlerConfig `toml:"crawler"`
	AI      AIConfig      `toml:"ai"`
	CLI     CliConfig     `toml:"cli"`
}

// ServerConfig has the IPC server options. Each client may send RateLimit requests per
// RateWindow.
type ServerConfig struct {
	RateLimit     int      `toml:"rate_limit"`
	RateWindow    Duration `toml:"rate_window"`
	SweepInterval Duration `toml:"sweep_interval"`
}

// DictConfig points at optional word lists loaded on top of the embedded one.
type DictConfig struct {
	TextFile string `toml:"text_file"`
	ChunkDir string `toml:"chunk_dir"`
	MaxWords int    `toml:"max_words"`
}

// SearchConfig holds request defaults. Depth 0 lets the analyzer pick.
type SearchConfig struct {
	Timeout    Duration `toml:"timeout"`
	Mode       string   `toml:"mode"`
	MaxResults int      `toml:"max_results"`
	Depth      int      `toml:"depth"`
}

// SessionConfig selects where session memory is persisted. Path is a directory for the
// file backend and a database file for sqlite; relative paths live next to the config
// and an empty one picks "sessions" or "wordhunt.db".
type SessionConfig struct {
	Backend string   `toml:"backend"`
	Path    string   `toml:"path"`
	Key     string   `toml:"key"`
	TTL     Duration `toml:"ttl"`
}

// CrawlerConfig tunes hyper mode fetching.
type CrawlerConfig struct {
	Timeout           Duration         `toml:"timeout"`
	RequestsPerSecond float64          `toml:"requests_per_second"`
	Burst             int              `toml:"burst"`
	MaxBytes          int64            `toml:"max_bytes"`
	UserAgent         string           `toml:"user_agent"`
	Sources           []crawler.Source `toml:"sources"`
}

// AIConfig enables the optional filter advisor.
type AIConfig struct {
	Enabled     bool     `toml:"enabled"`
	BaseURL     string   `toml:"base_url"`
	Model       string   `toml:"model"`
	APIKeyEnv   string   `toml:"api_key_env"`
	Timeout     Duration `toml:"timeout"`
	MaxTokens   int      `toml:"max_tokens"`
	Temperature float64  `toml:"temperature"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	Format   string `toml:"format"`
	Rows     int    `toml:"rows"`
	Progress bool   `toml:"progress"`
}

// Duration is a time.Duration written as a string such as "90s".
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			RateLimit:     10,
			RateWindow:    Duration{time.Minute},
			SweepInterval: Duration{5 * time.Minute},
		},
		Dict: DictConfig{
			MaxWords: 50000,
		},
		Search: SearchConfig{
			Timeout:    Duration{120 * time.Second},
			Mode:       "speed",
			MaxResults: 100,
		},
		Session: SessionConfig{
			Backend: BackendFile,
			Key:     "wordhunt_session",
			TTL:     Duration{24 * time.Hour},
		},
		Crawler: CrawlerConfig{
			Timeout:           Duration{30 * time.Second},
			RequestsPerSecond: 2,
			Burst:             1,
			MaxBytes:          8 << 20,
			UserAgent:         "wordhunt/1.0 (Go)",
			Sources:           crawler.DefaultSources(),
		},
		AI: AIConfig{
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-4o-mini",
			APIKeyEnv:   "WORDHUNT_AI_KEY",
			Timeout:     Duration{20 * time.Second},
			MaxTokens:   500,
			Temperature: 0.7,
		},
		CLI: CliConfig{
			Format:   FormatText,
			Rows:     25,
			Progress: true,
		},
	}
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [ConfigDir]/wordhunt/config.toml, created when missing
// 3. Builtin defaults
func LoadConfigWithPriority(customPath string, pr *utils.PathResolver) (*Config, string, error) {
	if customPath != "" {
		if _, statErr := os.Stat(customPath); statErr == nil {
			cfg, err := LoadConfig(customPath)
			if err == nil {
				log.Debugf("Loaded config from custom path: %s", customPath)
				return cfg, customPath, nil
			}
			log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customPath, err)
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customPath, statErr)
		}
	}
	if pr == nil {
		log.Warn("No config location available. Using built-in defaults...")
		return DefaultConfig(), "", nil
	}

	defaultPath := pr.ConfigPath(FileName)
	cfg, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return cfg, defaultPath, nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)
	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		cfg := DefaultConfig()
		if err := SaveConfig(cfg, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return cfg, nil
	}
	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file. Keys missing from the file keep their defaults.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()
	if err := utils.LoadTOMLFile(configPath, cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = tryPartialParse(configPath)
	}
	cfg.normalize()
	return cfg, nil
}

// SaveConfig saves into a TOML file
func SaveConfig(cfg *Config, configPath string) error {
	return utils.SaveTOMLFile(cfg, configPath)
}

// LoadEnv seeds the environment from .env files in the working directory and in dirs.
// Variables already set are never overridden.
func LoadEnv(dirs ...string) {
	candidates := append([]string{".env"}, dirs...)
	for i, c := range candidates {
		if i > 0 {
			c = filepath.Join(c, ".env")
		}
		if !utils.FileExists(c) {
			continue
		}
		if err := godotenv.Load(c); err != nil {
			log.Warnf("Failed to read env file %s: %v", c, err)
			continue
		}
		log.Debugf("Loaded environment from %s", c)
	}
}

// APIKey returns the advisor key from the configured variable, then OPENAI_API_KEY.
func (a AIConfig) APIKey() string {
	if a.APIKeyEnv != "" {
		if v := os.Getenv(a.APIKeyEnv); v != "" {
			return v
		}
	}
	return os.Getenv("OPENAI_API_KEY")
}

// normalize resets values that cannot be used to their defaults.
func (c *Config) normalize() {
	def := DefaultConfig()
	switch c.Session.Backend {
	case BackendMemory, BackendFile, BackendSQLite:
	default:
		log.Warnf("Unknown session backend %q. Using %q", c.Session.Backend, def.Session.Backend)
		c.Session.Backend = def.Session.Backend
	}
	switch c.CLI.Format {
	case FormatText, FormatJSON, FormatYAML:
	default:
		log.Warnf("Unknown output format %q. Using %q", c.CLI.Format, def.CLI.Format)
		c.CLI.Format = def.CLI.Format
	}
	if c.Search.Timeout.Duration <= 0 {
		c.Search.Timeout = def.Search.Timeout
	}
	if c.Session.TTL.Duration <= 0 {
		c.Session.TTL = def.Session.TTL
	}
	if c.Session.Key == "" {
		c.Session.Key = def.Session.Key
	}
	if c.Server.RateLimit <= 0 {
		c.Server.RateLimit = def.Server.RateLimit
	}
	if c.Server.RateWindow.Duration <= 0 {
		c.Server.RateWindow = def.Server.RateWindow
	}
	if c.Server.SweepInterval.Duration <= 0 {
		c.Server.SweepInterval = def.Server.SweepInterval
	}
	if len(c.Crawler.Sources) == 0 {
		c.Crawler.Sources = def.Crawler.Sources
	}
}

// tryPartialParse keeps every section that still decodes
func tryPartialParse(configPath string) *Config {
	cfg := DefaultConfig()

	raw, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return cfg
	}

	if section, ok := utils.ExtractSection(raw, "server"); ok {
		extractServerConfig(section, &cfg.Server)
	}
	if section, ok := utils.ExtractSection(raw, "dict"); ok {
		extractDictConfig(section, &cfg.Dict)
	}
	if section, ok := utils.ExtractSection(raw, "search"); ok {
		extractSearchConfig(section, &cfg.Search)
	}
	if section, ok := utils.ExtractSection(raw, "session"); ok {
		extractSessionConfig(section, &cfg.Session)
	}
	if section, ok := utils.ExtractSection(raw, "crawler"); ok {
		extractCrawlerConfig(section, &cfg.Crawler)
	}
	if section, ok := utils.ExtractSection(raw, "ai"); ok {
		extractAIConfig(section, &cfg.AI)
	}
	if section, ok := utils.ExtractSection(raw, "cli"); ok {
		extractCliConfig(section, &cfg.CLI)
	}
	return cfg
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "rate_limit"); ok {
		server.RateLimit = val
	}
	if val, ok := utils.ExtractDuration(data, "rate_window"); ok {
		server.RateWindow = Duration{val}
	}
	if val, ok := utils.ExtractDuration(data, "sweep_interval"); ok {
		server.SweepInterval = Duration{val}
	}
}

func extractDictConfig(data map[string]any, dict *DictConfig) {
	if val, ok := utils.ExtractString(data, "text_file"); ok {
		dict.TextFile = val
	}
	if val, ok := utils.ExtractString(data, "chunk_dir"); ok {
		dict.ChunkDir = val
	}
	if val, ok := utils.ExtractInt64(data, "max_words"); ok {
		dict.MaxWords = val
	}
}

func extractSearchConfig(data map[string]any, search *SearchConfig) {
	if val, ok := utils.ExtractDuration(data, "timeout"); ok {
		search.Timeout = Duration{val}
	}
	if val, ok := utils.ExtractString(data, "mode"); ok {
		search.Mode = val
	}
	if val, ok := utils.ExtractInt64(data, "max_results"); ok {
		search.MaxResults = val
	}
	if val, ok := utils.ExtractInt64(data, "depth"); ok {
		search.Depth = val
	}
}

func extractSessionConfig(data map[string]any, sess *SessionConfig) {
	if val, ok := utils.ExtractString(data, "backend"); ok {
		sess.Backend = val
	}
	if val, ok := utils.ExtractString(data, "path"); ok {
		sess.Path = val
	}
	if val, ok := utils.ExtractString(data, "key"); ok {
		sess.Key = val
	}
	if val, ok := utils.ExtractDuration(data, "ttl"); ok {
		sess.TTL = Duration{val}
	}
}

func extractCrawlerConfig(data map[string]any, c *CrawlerConfig) {
	if val, ok := utils.ExtractDuration(data, "timeout"); ok {
		c.Timeout = Duration{val}
	}
	if val, ok := utils.ExtractFloat(data, "requests_per_second"); ok {
		c.RequestsPerSecond = val
	}
	if val, ok := utils.ExtractInt64(data, "burst"); ok {
		c.Burst = val
	}
	if val, ok := utils.ExtractInt64(data, "max_bytes"); ok {
		c.MaxBytes = int64(val)
	}
	if val, ok := utils.ExtractString(data, "user_agent"); ok {
		c.UserAgent = val
	}
	tables, ok := utils.ExtractTables(data, "sources")
	if !ok {
		return
	}
	var sources []crawler.Source
	for _, t := range tables {
		url, ok := utils.ExtractString(t, "url")
		if !ok || url == "" {
			continue
		}
		src := crawler.Source{URL: url, Type: crawler.TypeWordlist}
		if typ, ok := utils.ExtractString(t, "type"); ok {
			src.Type = crawler.SourceType(typ)
		}
		if p, ok := utils.ExtractInt64(t, "priority"); ok {
			src.Priority = p
		}
		sources = append(sources, src)
	}
	if len(sources) > 0 {
		c.Sources = sources
	}
}

func extractAIConfig(data map[string]any, ai *AIConfig) {
	if val, ok := utils.ExtractBool(data, "enabled"); ok {
		ai.Enabled = val
	}
	if val, ok := utils.ExtractString(data, "base_url"); ok {
		ai.BaseURL = val
	}
	if val, ok := utils.ExtractString(data, "model"); ok {
		ai.Model = val
	}
	if val, ok := utils.ExtractString(data, "api_key_env"); ok {
		ai.APIKeyEnv = val
	}
	if val, ok := utils.ExtractDuration(data, "timeout"); ok {
		ai.Timeout = Duration{val}
	}
	if val, ok := utils.ExtractInt64(data, "max_tokens"); ok {
		ai.MaxTokens = val
	}
	if val, ok := utils.ExtractFloat(data, "temperature"); ok {
		ai.Temperature = val
	}
}

func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractString(data, "format"); ok {
		cli.Format = val
	}
	if val, ok := utils.ExtractInt64(data, "rows"); ok {
		cli.Rows = val
	}
	if val, ok := utils.ExtractBool(data, "progress"); ok {
		cli.Progress = val
	}
}
