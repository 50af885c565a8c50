package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	AIProviderOpenAI = "openai"
	AIProviderMock   = "mock"
)

type Config struct {
	AppEnv              string
	AppName             string
	APIPrefix           string
	AppPort             string
	DatabaseURL         string
	JWTSecret           string
	JWTAlgorithm        string
	ClientTokenTTLHours int
	CORSAllowOrigins    []string
	OpenAIAPIKey        string
	OpenAIModel         string
	OpenAIBaseURL       string
	AIProvider          string
	AITemperature       float64
	AIMaxOutputTokens   int
	AITimeoutSeconds    int
	CatalogPath         string
	ChatHistoryLimit    int
	LogLevel            string
	LogFormat           string
}

func Load() Config {
	_ = godotenv.Load(".env")

	port := getEnv("APP_PORT", "")
	if port == "" {
		port = getEnv("PORT", "8787")
	}

	return Config{
		AppEnv:              getEnv("APP_ENV", "local"),
		AppName:             getEnv("APP_NAME", "Skincare Chat API"),
		APIPrefix:           getEnv("API_PREFIX", "/api/v1"),
		AppPort:             port,
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		JWTAlgorithm:        getEnv("JWT_ALGORITHM", "HS256"),
		ClientTokenTTLHours: getEnvInt("CLIENT_TOKEN_TTL_HOURS", 720),
		CORSAllowOrigins:    getEnvCSV("CORS_ALLOW_ORIGINS", []string{"*"}),
		OpenAIAPIKey:        getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:         getEnv("OPENAI_MODEL", "gpt-4o"),
		OpenAIBaseURL:       getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		AIProvider:          strings.ToLower(getEnv("AI_PROVIDER", AIProviderOpenAI)),
		AITemperature:       getEnvFloat("AI_TEMPERATURE", 0.7),
		AIMaxOutputTokens:   getEnvInt("AI_MAX_OUTPUT_TOKENS", 800),
		AITimeoutSeconds:    getEnvInt("AI_TIMEOUT_SECONDS", 30),
		CatalogPath:         getEnv("CATALOG_PATH", ""),
		ChatHistoryLimit:    getEnvInt("CHAT_HISTORY_LIMIT", 50),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "console"),
	}
}

func (c Config) Validate() error {
	secret := strings.TrimSpace(c.JWTSecret)
	if secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if secret == "change-me-in-production" {
		return errors.New("JWT_SECRET must not use insecure default value")
	}
	if len(secret) < 16 {
		return errors.New("JWT_SECRET is too short; use at least 16 characters")
	}
	if strings.TrimSpace(c.JWTAlgorithm) == "" {
		return errors.New("JWT_ALGORITHM is required")
	}
	if !strings.HasPrefix(c.APIPrefix, "/") {
		return errors.New("API_PREFIX must start with /")
	}
	switch c.AIProvider {
	case AIProviderMock:
	case AIProviderOpenAI:
		if strings.TrimSpace(c.OpenAIAPIKey) == "" {
			return errors.New("OPENAI_API_KEY is required when AI_PROVIDER=openai")
		}
	default:
		return fmt.Errorf("AI_PROVIDER %q is not supported", c.AIProvider)
	}
	if c.ClientTokenTTLHours <= 0 {
		return errors.New("CLIENT_TOKEN_TTL_HOURS must be positive")
	}
	if c.ChatHistoryLimit <= 0 {
		return errors.New("CHAT_HISTORY_LIMIT must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvCSV(key string, fallback []string) []string {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, item := range parts {
		trimmed := strings.TrimSpace(item)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return fallback
	}
	return result
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return parsed
}
