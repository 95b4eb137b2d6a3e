package ai

import (
	"errors"

	"github.com/rogally/allychat/internal/profile"
)

// Config represents AI configuration.
type Config struct {
	Embedding EmbeddingConfig
	LLM       LLMConfig
}

// EmbeddingConfig represents vector embedding configuration.
type EmbeddingConfig struct {
	Provider   string
	Model      string
	APIKey     string
	BaseURL    string
	Dimensions int
}

// LLMConfig represents LLM configuration.
type LLMConfig struct {
	Provider    string // groq, openai, deepseek, siliconflow, openrouter, ollama
	Model       string // llama-3.3-70b-versatile, gpt-4o, deepseek-chat, ...
	APIKey      string
	BaseURL     string
	MaxTokens   int     // default: 1000
	Temperature float32 // default: 0.7
	Timeout     int     // request timeout in seconds (default: 120)
}

// NewConfigFromProfile creates AI config from profile.
func NewConfigFromProfile(p *profile.Profile) *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Provider:   p.EmbeddingProvider,
			Model:      p.EmbeddingModel,
			APIKey:     p.EmbeddingAPIKey,
			BaseURL:    p.EmbeddingBaseURL,
			Dimensions: p.EmbeddingDimensions,
		},
		LLM: LLMConfig{
			Provider:    p.LLMProvider,
			Model:       p.LLMModel,
			APIKey:      p.LLMAPIKey,
			BaseURL:     p.LLMBaseURL,
			MaxTokens:   1000,
			Temperature: 0.7,
			Timeout:     p.LLMTimeout,
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Embedding.Provider == "" {
		return errors.New("embedding provider is required")
	}
	if c.Embedding.Provider != "ollama" && c.Embedding.APIKey == "" {
		return errors.New("embedding API key is required")
	}
	if c.LLM.Provider == "" {
		return errors.New("LLM provider is required")
	}
	if c.LLM.Provider != "ollama" && c.LLM.APIKey == "" {
		return errors.New("LLM API key is required")
	}
	if c.LLM.Model == "" {
		return errors.New("LLM model is required")
	}
	return nil
}
