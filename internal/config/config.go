package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Known backend identifiers.
const (
	BackendAnthropic = "anthropic"
	BackendOpenAI    = "openai"
	BackendOllama    = "ollama"
	BackendBedrock   = "bedrock"
)

// Bounds enforced before anything reaches the orchestrator.
const (
	MinRounds = 1
	MaxRounds = 3

	MinParticipants = 2
	MaxParticipants = 8
)

// Config holds all configuration values.
type Config struct {
	// Generation backends
	DefaultBackend  string
	AnthropicAPIKey string
	AnthropicModel  string
	OpenAIAPIKey    string
	OpenAIModel     string
	OllamaHost      string
	OllamaModel     string
	BedrockRegion   string
	BedrockModel    string

	// Generation limits
	MaxTokens int
	Streaming bool

	// Optional round count override applied to every council.
	RoundsOverride int

	// Persona/council catalog directory (YAML files), optional.
	CatalogDir string

	// SurrealDB session storage (optional; CLI works without it)
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// Event-stream server
	ServerPort string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		DefaultBackend:  getEnv("QUORUM_BACKEND", BackendAnthropic),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  getEnv("QUORUM_ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:     getEnv("QUORUM_OPENAI_MODEL", "gpt-4o"),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OllamaModel:     getEnv("QUORUM_OLLAMA_MODEL", "llama3.1"),
		BedrockRegion:   getEnv("AWS_REGION", "us-east-1"),
		BedrockModel:    getEnv("QUORUM_BEDROCK_MODEL", "anthropic.claude-3-5-sonnet-20241022-v2:0"),

		MaxTokens: getEnvInt("QUORUM_MAX_TOKENS", 1024),
		Streaming: getEnv("QUORUM_STREAMING", "true") == "true",

		RoundsOverride: getEnvInt("QUORUM_ROUNDS", 0),

		CatalogDir: getEnv("QUORUM_CATALOG_DIR", ""),

		SurrealDBURL:       getEnv("SURREALDB_URL", ""),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "quorum"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "sessions"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		ServerPort: getEnv("QUORUM_SERVER_PORT", "8585"),

		LogFile:  getEnv("QUORUM_LOG_FILE", "/tmp/quorum.log"),
		LogLevel: parseLogLevel(getEnv("QUORUM_LOG_LEVEL", "INFO")),
	}
}

// ClampRounds bounds a requested round count to the allowed range.
func ClampRounds(n int) int {
	if n < MinRounds {
		return MinRounds
	}
	if n > MaxRounds {
		return MaxRounds
	}
	return n
}

// HasStorage reports whether session persistence is configured.
func (c Config) HasStorage() bool {
	return c.SurrealDBURL != ""
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
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
