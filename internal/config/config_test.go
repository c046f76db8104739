package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GOOGLE_API_KEY", "LLM_API_KEY", "LLM_BASE_URL", "LLM_MODEL", "GITHUB_TOKEN", "GITHUB_OWNER", "GITHUB_REPO"} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LLM.BaseURL != DefaultBaseURL {
		t.Errorf("base_url = %q, want %q", cfg.LLM.BaseURL, DefaultBaseURL)
	}
	if cfg.LLM.Model != DefaultModel {
		t.Errorf("model = %q", cfg.LLM.Model)
	}
	if cfg.Agent.MaxSteps != DefaultMaxSteps {
		t.Errorf("max_steps = %d", cfg.Agent.MaxSteps)
	}
	if cfg.Docs.ChunkSize != 1000 || cfg.Docs.Overlap() != 200 {
		t.Errorf("docs chunking = %d/%d", cfg.Docs.ChunkSize, cfg.Docs.Overlap())
	}
	if cfg.Docs.K != 10 || cfg.Docs.FetchK != 20 || cfg.Docs.Lambda != 0.7 {
		t.Errorf("docs retrieval = %d/%d/%v", cfg.Docs.K, cfg.Docs.FetchK, cfg.Docs.Lambda)
	}
	if err := cfg.RequireAPIKey(); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("RequireAPIKey = %v, want ErrMissingAPIKey", err)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
llm:
  api_key: from-file
  model: gemini-1.5-flash
agent:
  max_steps: 7
tools:
  command_timeout: 90s
github:
  owner: octo
logging:
  level: debug
`)
	t.Setenv("GOOGLE_API_KEY", "from-env")
	t.Setenv("GITHUB_REPO", "hello")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LLM.APIKey != "from-env" {
		t.Errorf("api_key = %q, want env override", cfg.LLM.APIKey)
	}
	if cfg.LLM.Model != "gemini-1.5-flash" {
		t.Errorf("model = %q", cfg.LLM.Model)
	}
	if cfg.Agent.MaxSteps != 7 {
		t.Errorf("max_steps = %d, want 7", cfg.Agent.MaxSteps)
	}
	if cfg.CommandTimeout() != 90*time.Second {
		t.Errorf("command timeout = %v", cfg.CommandTimeout())
	}
	if cfg.GitHub.Owner != "octo" || cfg.GitHub.Repo != "hello" {
		t.Errorf("github = %+v", cfg.GitHub)
	}
	if err := cfg.RequireAPIKey(); err != nil {
		t.Errorf("RequireAPIKey: %v", err)
	}
}

func TestLoadLLMAPIKeyWinsOverGoogleKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_API_KEY", "google")
	t.Setenv("LLM_API_KEY", "generic")
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LLM.APIKey != "generic" {
		t.Errorf("api_key = %q, want generic", cfg.LLM.APIKey)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"overlap":  "docs:\n  chunk_size: 100\n  chunk_overlap: 100\n",
		"fetch_k":  "docs:\n  k: 30\n  fetch_k: 20\n",
		"timeout":  "tools:\n  command_timeout: soon\n",
		"level":    "logging:\n  level: loud\n",
		"bad yaml": "llm: [\n",
	}
	for name, content := range cases {
		clearEnv(t)
		if _, err := Load(writeConfig(t, content)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestChunkOverlap(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeConfig(t, "docs:\n  chunk_overlap: 0\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Docs.ChunkOverlap == nil || cfg.Docs.Overlap() != 0 {
		t.Errorf("explicit zero overlap = %v", cfg.Docs.ChunkOverlap)
	}

	cfg, err = Load(writeConfig(t, "docs:\n  chunk_size: 100\n"))
	if err != nil {
		t.Fatalf("small chunk_size without overlap: %v", err)
	}
	if cfg.Docs.Overlap() != 20 {
		t.Errorf("overlap for chunk_size 100 = %d, want 20", cfg.Docs.Overlap())
	}
}

func TestZeroCommandTimeoutIsUnbounded(t *testing.T) {
	cfg := Default()
	cfg.Tools.CommandTimeout = "0"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.CommandTimeout() != 0 {
		t.Errorf("timeout = %v, want 0", cfg.CommandTimeout())
	}
}

func TestDBPathExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	cfg := Default()
	cfg.Database.Path = "~/data/sw.db"
	got, err := cfg.DBPath()
	if err != nil {
		t.Fatalf("db path: %v", err)
	}
	if got != filepath.Join(home, "data", "sw.db") {
		t.Errorf("db path = %q", got)
	}

	cfg.Database.Path = ""
	got, err = cfg.DBPath()
	if err != nil {
		t.Fatalf("db path: %v", err)
	}
	if got != filepath.Join(home, ".stepwise", "stepwise.db") {
		t.Errorf("default db path = %q", got)
	}
}
