package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "gpt-4.1", cfg.LLM.Model)
	assert.Equal(t, "gpt-4.1-mini", cfg.LLM.ExtractionModel)
	assert.Equal(t, 5, cfg.LLM.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.LLM.BaseDelay)
	assert.Equal(t, 8192, cfg.Browser.ViewportSize)
	assert.Equal(t, 30000, cfg.Agent.ToolTokenBudget)
	assert.Equal(t, "RESEARCH_COMPLETE", cfg.Agent.Sentinel)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "no model", mutate: func(c *Config) { c.LLM.Model = "" }, wantErr: "llm.model"},
		{name: "zero attempts", mutate: func(c *Config) { c.LLM.MaxAttempts = 0 }, wantErr: "llm.max_attempts"},
		{name: "unknown backend", mutate: func(c *Config) { c.Render.Backend = "selenium" }, wantErr: "render.backend"},
		{name: "webp with playwright", mutate: func(c *Config) {
			c.Render.Backend = BackendPlaywright
			c.Render.ImageType = "webp"
		}, wantErr: "webp"},
		{name: "zero viewport", mutate: func(c *Config) { c.Browser.ViewportSize = 0 }, wantErr: "viewport_size"},
		{name: "no turns", mutate: func(c *Config) { c.Agent.Turns = 0 }, wantErr: "agent.turns"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "priceiq.yaml")
	yamlData := `
llm:
  model: gpt-4o
  base_delay: 500ms
browser:
  viewport_size: 1024
agent:
  turns: 3
`
	require.NoError(t, os.WriteFile(path, []byte(yamlData), 0600))
	t.Setenv(EnvSerpAPIKey, "serp-secret")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, 500*time.Millisecond, cfg.LLM.BaseDelay)
	assert.Equal(t, 1024, cfg.Browser.ViewportSize)
	assert.Equal(t, 3, cfg.Agent.Turns)
	assert.Equal(t, "serp-secret", cfg.Search.APIKey)
	// untouched defaults survive
	assert.Equal(t, "gpt-4.1-mini", cfg.LLM.ExtractionModel)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApplyEnvIgnoresEmpty(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Render.Token = "from-file"

	env := map[string]string{EnvBrowserlessToken: "", EnvOpenAIKey: "sk-test"}
	cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})

	assert.Equal(t, "from-file", cfg.Render.Token)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "priceiq.yaml")
	cfg := DefaultConfig()
	cfg.Agent.Turns = 7

	require.NoError(t, cfg.Save(path))
	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.Agent.Turns)
}
