package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rogally/allychat/internal/profile"
)

func validConfig() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Provider: "siliconflow",
			Model:    "sentence-transformers/all-MiniLM-L6-v2",
			APIKey:   "sk-embed",
		},
		LLM: LLMConfig{
			Provider: "groq",
			Model:    "llama-3.3-70b-versatile",
			APIKey:   "gsk-test",
		},
	}
}

func TestNewConfigFromProfile(t *testing.T) {
	p := &profile.Profile{
		LLMProvider:         "groq",
		LLMAPIKey:           "gsk-test",
		LLMBaseURL:          "https://api.groq.com/openai/v1",
		LLMModel:            "llama-3.3-70b-versatile",
		LLMTimeout:          120,
		EmbeddingProvider:   "siliconflow",
		EmbeddingModel:      "sentence-transformers/all-MiniLM-L6-v2",
		EmbeddingAPIKey:     "sk-embed",
		EmbeddingDimensions: 384,
	}

	cfg := NewConfigFromProfile(p)
	require.NotNil(t, cfg)

	assert.Equal(t, "groq", cfg.LLM.Provider)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.LLM.Model)
	assert.Equal(t, 120, cfg.LLM.Timeout)
	assert.Equal(t, 1000, cfg.LLM.MaxTokens)
	assert.InDelta(t, 0.7, cfg.LLM.Temperature, 1e-6)

	assert.Equal(t, "siliconflow", cfg.Embedding.Provider)
	assert.Equal(t, 384, cfg.Embedding.Dimensions)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(_ *Config) {},
		},
		{
			name:    "missing embedding provider",
			mutate:  func(c *Config) { c.Embedding.Provider = "" },
			wantErr: "embedding provider is required",
		},
		{
			name:    "missing embedding api key",
			mutate:  func(c *Config) { c.Embedding.APIKey = "" },
			wantErr: "embedding API key is required",
		},
		{
			name: "ollama embedding needs no api key",
			mutate: func(c *Config) {
				c.Embedding.Provider = "ollama"
				c.Embedding.APIKey = ""
			},
		},
		{
			name:    "missing llm api key",
			mutate:  func(c *Config) { c.LLM.APIKey = "" },
			wantErr: "LLM API key is required",
		},
		{
			name: "ollama llm needs no api key",
			mutate: func(c *Config) {
				c.LLM.Provider = "ollama"
				c.LLM.APIKey = ""
			},
		},
		{
			name:    "missing llm model",
			mutate:  func(c *Config) { c.LLM.Model = "" },
			wantErr: "LLM model is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
