package profile

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// Profile is configuration to start the main server.
// It is read once at process start and never mutated afterwards.
type Profile struct {
	// Unified LLM configuration (OpenAI-compatible protocol)
	// All providers (groq, openai, deepseek, siliconflow, openrouter, ollama)
	// use the same config.
	LLMProvider string // Provider identifier: groq, openai, deepseek, ...
	LLMAPIKey   string // LLM API key
	LLMBaseURL  string // LLM base URL (optional, has default per provider)
	LLMModel    string // Model name: llama-3.3-70b-versatile, gpt-4o, etc.
	LLMTimeout  int    // LLM request timeout in seconds (default: 120)

	// Embedding configuration
	EmbeddingProvider   string
	EmbeddingModel      string
	EmbeddingAPIKey     string
	EmbeddingBaseURL    string
	EmbeddingDimensions int

	// Retrieval configuration
	RetrievalTopK  int     // passages fetched per question (default: 5)
	TextMatchScore float64 // similarity assigned by the textual fallback tier

	Mode    string // dev, demo, prod
	Addr    string
	Port    int
	Driver  string // only "postgres" is supported
	DSN     string
	Version string
}

// Provider default configurations for the LLM.
// Used when LLM_BASE_URL is not explicitly set.
var llmProviderDefaults = map[string]struct {
	BaseURL string
	Model   string
}{
	"groq": {
		BaseURL: "https://api.groq.com/openai/v1",
		Model:   "llama-3.3-70b-versatile",
	},
	"openai": {
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-4o",
	},
	"deepseek": {
		BaseURL: "https://api.deepseek.com",
		Model:   "deepseek-chat",
	},
	"siliconflow": {
		BaseURL: "https://api.siliconflow.cn/v1",
		Model:   "Qwen/Qwen2.5-72B-Instruct",
	},
	"openrouter": {
		BaseURL: "https://openrouter.ai/api/v1",
		Model:   "deepseek/deepseek-chat",
	},
	"ollama": {
		BaseURL: "http://localhost:11434/v1",
		Model:   "llama3.1",
	},
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns environment variable value or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default value.
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvOrDefaultFloat returns environment variable value as float64 or default value.
func getEnvOrDefaultFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// FromEnv loads configuration from environment variables.
func (p *Profile) FromEnv() {
	p.LLMProvider = getEnvOrDefault("ALLYCHAT_LLM_PROVIDER", "groq")
	p.LLMAPIKey = getEnvOrDefault("ALLYCHAT_LLM_API_KEY", "")
	p.LLMBaseURL = getEnvOrDefault("ALLYCHAT_LLM_BASE_URL", "")
	p.LLMModel = getEnvOrDefault("ALLYCHAT_LLM_MODEL", "")
	p.LLMTimeout = getEnvOrDefaultInt("ALLYCHAT_LLM_TIMEOUT_SECONDS", 120)

	if _, ok := llmProviderDefaults[p.LLMProvider]; !ok {
		slog.Warn("unknown LLM provider, using default: groq", "provider", p.LLMProvider)
		p.LLMProvider = "groq"
	}
	if defaults, ok := llmProviderDefaults[p.LLMProvider]; ok {
		if p.LLMBaseURL == "" {
			p.LLMBaseURL = defaults.BaseURL
		}
		if p.LLMModel == "" {
			p.LLMModel = defaults.Model
		}
	}

	// Embedding configuration. The corpus was embedded with all-MiniLM-L6-v2
	// (384 dimensions); the query-time model must match it.
	p.EmbeddingProvider = getEnvOrDefault("ALLYCHAT_EMBEDDING_PROVIDER", "siliconflow")
	p.EmbeddingModel = getEnvOrDefault("ALLYCHAT_EMBEDDING_MODEL", "sentence-transformers/all-MiniLM-L6-v2")
	p.EmbeddingAPIKey = getEnvOrDefault("ALLYCHAT_EMBEDDING_API_KEY", "")
	p.EmbeddingBaseURL = getEnvOrDefault("ALLYCHAT_EMBEDDING_BASE_URL", "https://api.siliconflow.cn/v1")
	p.EmbeddingDimensions = getEnvOrDefaultInt("ALLYCHAT_EMBEDDING_DIMENSIONS", 384)

	// Retrieval configuration
	p.RetrievalTopK = getEnvOrDefaultInt("ALLYCHAT_RETRIEVAL_TOP_K", 5)
	p.TextMatchScore = getEnvOrDefaultFloat("ALLYCHAT_RETRIEVAL_TEXT_MATCH_SCORE", 0.5)
}

// Validate checks the profile for misconfiguration that would prevent startup.
func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Driver != "postgres" {
		return errors.Errorf("unsupported database driver %q, only postgres is supported", p.Driver)
	}
	if p.DSN == "" {
		return errors.New("database DSN is required (set ALLYCHAT_DSN)")
	}
	if p.RetrievalTopK < 1 {
		return errors.Errorf("retrieval top-k must be >= 1, got %d", p.RetrievalTopK)
	}
	if p.TextMatchScore < -1 || p.TextMatchScore > 1 {
		return errors.Errorf("text match score must be within [-1, 1], got %v", p.TextMatchScore)
	}

	return nil
}
