package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL        = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultModel          = "gemini-2.0-flash"
	DefaultEmbeddingModel = "text-embedding-004"
	DefaultGitHubAPI      = "https://api.github.com"
	DefaultWeatherURL     = "https://wttr.in"
	DefaultMaxSteps       = 25
)

var ErrMissingAPIKey = errors.New("llm.api_key is required (set GOOGLE_API_KEY or LLM_API_KEY)")

// Config represents the application configuration
type Config struct {
	LLM      LLMConfig      `yaml:"llm"`
	Agent    AgentConfig    `yaml:"agent"`
	Tools    ToolsConfig    `yaml:"tools"`
	GitHub   GitHubConfig   `yaml:"github"`
	Weather  WeatherConfig  `yaml:"weather"`
	Docs     DocsConfig     `yaml:"docs"`
	Memory   MemoryConfig   `yaml:"memory"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type LLMConfig struct {
	BaseURL        string   `yaml:"base_url"`
	APIKey         string   `yaml:"api_key"`
	Model          string   `yaml:"model"`
	EmbeddingModel string   `yaml:"embedding_model"`
	Temperature    *float32 `yaml:"temperature,omitempty"`
	Timeout        string   `yaml:"timeout,omitempty"` // e.g. "60s"; empty = no client timeout
}

type AgentConfig struct {
	MaxSteps     int  `yaml:"max_steps"`
	SaveSessions bool `yaml:"save_sessions"`
}

type ToolsConfig struct {
	CommandTimeout string `yaml:"command_timeout,omitempty"` // empty or "0" = unbounded
	Shell          string `yaml:"shell,omitempty"`
	WorkDir        string `yaml:"work_dir,omitempty"`
}

type GitHubConfig struct {
	Token             string  `yaml:"token,omitempty"`
	Owner             string  `yaml:"owner,omitempty"`
	Repo              string  `yaml:"repo,omitempty"`
	APIBase           string  `yaml:"api_base,omitempty"`
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty"`
}

type WeatherConfig struct {
	BaseURL string `yaml:"base_url,omitempty"`
}

type DocsConfig struct {
	Name              string  `yaml:"name,omitempty"` // shown in prompts, e.g. "ChaiCode"
	Sitemap           string  `yaml:"sitemap,omitempty"`
	ChunkSize         int     `yaml:"chunk_size,omitempty"`
	ChunkOverlap      *int    `yaml:"chunk_overlap,omitempty"` // nil = default; 0 is allowed
	K                 int     `yaml:"k,omitempty"`
	FetchK            int     `yaml:"fetch_k,omitempty"`
	Lambda            float32 `yaml:"lambda,omitempty"`
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty"`
}

// Overlap is the configured chunk overlap, 0 when unset.
func (d DocsConfig) Overlap() int {
	if d.ChunkOverlap == nil {
		return 0
	}
	return *d.ChunkOverlap
}

type MemoryConfig struct {
	UserID string `yaml:"user_id,omitempty"`
	Limit  int    `yaml:"limit,omitempty"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns a config with every optional field filled in.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from a file. A missing file is not an error:
// defaults and environment overrides still apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("GOOGLE_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		c.GitHub.Token = v
	}
	if v := os.Getenv("GITHUB_OWNER"); v != "" {
		c.GitHub.Owner = v
	}
	if v := os.Getenv("GITHUB_REPO"); v != "" {
		c.GitHub.Repo = v
	}
}

func (c *Config) applyDefaults() {
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = DefaultBaseURL
	}
	if c.LLM.Model == "" {
		c.LLM.Model = DefaultModel
	}
	if c.LLM.EmbeddingModel == "" {
		c.LLM.EmbeddingModel = DefaultEmbeddingModel
	}
	if c.Agent.MaxSteps <= 0 {
		c.Agent.MaxSteps = DefaultMaxSteps
	}
	if c.Tools.Shell == "" {
		c.Tools.Shell = "sh"
	}
	if c.GitHub.APIBase == "" {
		c.GitHub.APIBase = DefaultGitHubAPI
	}
	if c.GitHub.RequestsPerSecond <= 0 {
		c.GitHub.RequestsPerSecond = 1
	}
	if c.Weather.BaseURL == "" {
		c.Weather.BaseURL = DefaultWeatherURL
	}
	if c.Docs.ChunkSize <= 0 {
		c.Docs.ChunkSize = 1000
	}
	if c.Docs.ChunkOverlap == nil {
		overlap := 200
		if overlap >= c.Docs.ChunkSize {
			overlap = c.Docs.ChunkSize / 5
		}
		c.Docs.ChunkOverlap = &overlap
	}
	if c.Docs.K <= 0 {
		c.Docs.K = 10
	}
	if c.Docs.FetchK <= 0 {
		c.Docs.FetchK = 20
	}
	if c.Docs.Lambda <= 0 {
		c.Docs.Lambda = 0.7
	}
	if c.Docs.RequestsPerSecond <= 0 {
		c.Docs.RequestsPerSecond = 2
	}
	if c.Memory.UserID == "" {
		c.Memory.UserID = "user_1"
	}
	if c.Memory.Limit <= 0 {
		c.Memory.Limit = 5
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "warn"
	}
}

// Validate checks if the configuration is valid. The API key is checked
// separately by RequireAPIKey because offline commands do not need it.
func (c *Config) Validate() error {
	if c.Agent.MaxSteps <= 0 {
		return fmt.Errorf("agent.max_steps must be positive")
	}
	if overlap := c.Docs.Overlap(); overlap < 0 || overlap >= c.Docs.ChunkSize {
		return fmt.Errorf("docs.chunk_overlap (%d) must be within [0, docs.chunk_size (%d))", overlap, c.Docs.ChunkSize)
	}
	if c.Docs.FetchK < c.Docs.K {
		return fmt.Errorf("docs.fetch_k (%d) must be >= docs.k (%d)", c.Docs.FetchK, c.Docs.K)
	}
	if c.Docs.Lambda > 1 {
		return fmt.Errorf("docs.lambda must be within (0, 1]")
	}
	if _, err := parseDuration(c.LLM.Timeout); err != nil {
		return fmt.Errorf("llm.timeout: %w", err)
	}
	if _, err := parseDuration(c.Tools.CommandTimeout); err != nil {
		return fmt.Errorf("tools.command_timeout: %w", err)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error")
	}
	return nil
}

// RequireAPIKey returns ErrMissingAPIKey when no gateway key is configured.
func (c *Config) RequireAPIKey() error {
	if c.LLM.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// LLMTimeout returns the gateway timeout, zero meaning none.
func (c *Config) LLMTimeout() time.Duration {
	d, _ := parseDuration(c.LLM.Timeout)
	return d
}

// CommandTimeout returns the command_exec timeout, zero meaning none.
func (c *Config) CommandTimeout() time.Duration {
	d, _ := parseDuration(c.Tools.CommandTimeout)
	return d
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" || s == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", s)
	}
	return d, nil
}
