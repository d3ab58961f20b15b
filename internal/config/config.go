// Package config loads groundhog configuration from the environment with an
// optional YAML file overlay.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Provider identifies an LLM or embedding backend.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderOllama    Provider = "ollama"
	ProviderBedrock   Provider = "bedrock"
)

// Config holds all configuration values.
type Config struct {
	// SurrealDB connection
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// Completion model
	LLMProvider Provider
	LLMModel    string

	// Embeddings
	EmbedProvider  Provider
	EmbedModel     string
	EmbedDimension int

	// Provider credentials
	OpenAIAPIKey    string
	AnthropicAPIKey string
	OllamaHost      string
	BedrockModelID  string

	// Web search
	TavilyAPIKey string

	// Static knowledge base sources
	PortfolioURL string
	ProjectsURL  string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from the environment. If a config file exists at
// $GROUNDHOG_CONFIG (or ~/.config/groundhog/config.yaml), its values fill in
// anything the environment left unset.
func Load() Config {
	cfg := Config{
		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "groundhog"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "knowledge"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		LLMProvider: Provider(getEnv("GROUNDHOG_LLM_PROVIDER", string(ProviderOpenAI))),
		LLMModel:    getEnv("GROUNDHOG_LLM_MODEL", "gpt-4o-mini"),

		EmbedProvider:  Provider(getEnv("GROUNDHOG_EMBED_PROVIDER", string(ProviderOpenAI))),
		EmbedModel:     getEnv("GROUNDHOG_EMBED_MODEL", "text-embedding-3-small"),
		EmbedDimension: getEnvInt("GROUNDHOG_EMBED_DIMENSION", 1536),

		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),
		BedrockModelID:  getEnv("GROUNDHOG_BEDROCK_MODEL_ID", "anthropic.claude-3-5-sonnet-20240620-v1:0"),

		TavilyAPIKey: getEnv("TAVILY_API_KEY", ""),

		PortfolioURL: getEnv("GROUNDHOG_PORTFOLIO_URL", ""),
		ProjectsURL:  getEnv("GROUNDHOG_PROJECTS_URL", ""),

		LogFile:  getEnv("GROUNDHOG_LOG_FILE", "/tmp/groundhog.log"),
		LogLevel: parseLogLevel(getEnv("GROUNDHOG_LOG_LEVEL", "INFO")),
	}

	if path := configFilePath(); path != "" {
		if overlay, err := loadFile(path); err == nil {
			cfg.applyOverlay(overlay)
		}
	}

	return cfg
}

// Validate checks that the credentials required by the selected providers are
// present. Missing credentials fail here, at construction time, rather than
// surfacing as provider errors mid-conversation.
func (c Config) Validate() error {
	switch c.LLMProvider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY required for llm provider %q", c.LLMProvider)
		}
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY required for llm provider %q", c.LLMProvider)
		}
	case ProviderOllama, ProviderBedrock:
		// Ollama needs no credentials; bedrock resolves credentials through
		// the standard AWS chain when the client is constructed.
	default:
		return fmt.Errorf("unsupported llm provider: %s", c.LLMProvider)
	}

	switch c.EmbedProvider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY required for embed provider %q", c.EmbedProvider)
		}
	case ProviderOllama:
	default:
		return fmt.Errorf("unsupported embedding provider: %s", c.EmbedProvider)
	}

	if c.EmbedDimension <= 0 {
		return fmt.Errorf("embedding dimension must be positive, got %d", c.EmbedDimension)
	}

	return nil
}

func configFilePath() string {
	if p := os.Getenv("GROUNDHOG_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	p := filepath.Join(home, ".config", "groundhog", "config.yaml")
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

// fileConfig mirrors Config with pointer fields so absent keys are
// distinguishable from zero values.
type fileConfig struct {
	SurrealDBURL    *string `yaml:"surrealdb_url"`
	LLMProvider     *string `yaml:"llm_provider"`
	LLMModel        *string `yaml:"llm_model"`
	EmbedProvider   *string `yaml:"embed_provider"`
	EmbedModel      *string `yaml:"embed_model"`
	EmbedDimension  *int    `yaml:"embed_dimension"`
	OpenAIAPIKey    *string `yaml:"openai_api_key"`
	AnthropicAPIKey *string `yaml:"anthropic_api_key"`
	OllamaHost      *string `yaml:"ollama_host"`
	BedrockModelID  *string `yaml:"bedrock_model_id"`
	TavilyAPIKey    *string `yaml:"tavily_api_key"`
	PortfolioURL    *string `yaml:"portfolio_url"`
	ProjectsURL     *string `yaml:"projects_url"`
	LogFile         *string `yaml:"log_file"`
	LogLevel        *string `yaml:"log_level"`
}

func loadFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &fc, nil
}

// applyOverlay fills config values from the file. Environment variables win:
// a file value only applies when the corresponding env var is unset.
func (c *Config) applyOverlay(fc *fileConfig) {
	setIfUnset := func(envKey string, dst *string, src *string) {
		if src != nil && os.Getenv(envKey) == "" {
			*dst = *src
		}
	}

	setIfUnset("SURREALDB_URL", &c.SurrealDBURL, fc.SurrealDBURL)
	setIfUnset("GROUNDHOG_LLM_MODEL", &c.LLMModel, fc.LLMModel)
	setIfUnset("GROUNDHOG_EMBED_MODEL", &c.EmbedModel, fc.EmbedModel)
	setIfUnset("OPENAI_API_KEY", &c.OpenAIAPIKey, fc.OpenAIAPIKey)
	setIfUnset("ANTHROPIC_API_KEY", &c.AnthropicAPIKey, fc.AnthropicAPIKey)
	setIfUnset("OLLAMA_HOST", &c.OllamaHost, fc.OllamaHost)
	setIfUnset("GROUNDHOG_BEDROCK_MODEL_ID", &c.BedrockModelID, fc.BedrockModelID)
	setIfUnset("TAVILY_API_KEY", &c.TavilyAPIKey, fc.TavilyAPIKey)
	setIfUnset("GROUNDHOG_PORTFOLIO_URL", &c.PortfolioURL, fc.PortfolioURL)
	setIfUnset("GROUNDHOG_PROJECTS_URL", &c.ProjectsURL, fc.ProjectsURL)
	setIfUnset("GROUNDHOG_LOG_FILE", &c.LogFile, fc.LogFile)

	if fc.LLMProvider != nil && os.Getenv("GROUNDHOG_LLM_PROVIDER") == "" {
		c.LLMProvider = Provider(*fc.LLMProvider)
	}
	if fc.EmbedProvider != nil && os.Getenv("GROUNDHOG_EMBED_PROVIDER") == "" {
		c.EmbedProvider = Provider(*fc.EmbedProvider)
	}
	if fc.EmbedDimension != nil && os.Getenv("GROUNDHOG_EMBED_DIMENSION") == "" {
		c.EmbedDimension = *fc.EmbedDimension
	}
	if fc.LogLevel != nil && os.Getenv("GROUNDHOG_LOG_LEVEL") == "" {
		c.LogLevel = parseLogLevel(*fc.LogLevel)
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
