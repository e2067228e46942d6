package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"visionmate.app/multimodal-mate/internal/logger"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

type Config struct {
	HTTPPort string

	// Generative models
	GeminiAPIKey          string
	GeminiTextModel       string
	GeminiVisionModel     string
	GeminiMultimodalModel string
	LLMProvider           string
	OpenAIAPIKey          string
	OpenAIModel           string
	OpenAIBaseURL         string

	// Google Cloud (TTS, Vision OCR)
	GoogleCredentialsPath string
	GoogleCredentialsJSON string
	OCREnabled            bool

	// Maps
	MapboxAPIKey       string
	GooglePlacesAPIKey string

	// Document store
	DocumentStore    string
	DocumentStoreDSN string
	UploadMaxBytes   int64

	// Logging
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

// Services selects which backends a process serves.
type Services struct {
	Mate      bool
	Visionary bool
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, relying on environment variables")
	}

	return &Config{
		HTTPPort:              getEnv("HTTP_PORT", "8000"),
		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GeminiTextModel:       getEnv("GEMINI_TEXT_MODEL", "gemini-1.5-flash"),
		GeminiVisionModel:     getEnv("GEMINI_VISION_MODEL", "gemini-1.5-flash"),
		GeminiMultimodalModel: getEnv("GEMINI_MULTIMODAL_MODEL", "gemini-1.5-flash"),
		LLMProvider:           strings.ToLower(getEnv("LLM_PROVIDER", ProviderGemini)),
		OpenAIAPIKey:          getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:           getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:         getEnv("OPENAI_BASE_URL", ""),
		GoogleCredentialsPath: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		GoogleCredentialsJSON: getEnv("GOOGLE_CREDENTIALS", ""),
		OCREnabled:            getEnvAsBool("OCR_ENABLED", true),
		MapboxAPIKey:          getEnv("MAPBOX_API_KEY", ""),
		GooglePlacesAPIKey:    getEnv("GOOGLE_PLACES_API_KEY", ""),
		DocumentStore:         strings.ToLower(getEnv("DOCUMENT_STORE", StoreMemory)),
		DocumentStoreDSN:      getEnv("DOCUMENT_STORE_DSN", "file::memory:?cache=shared"),
		UploadMaxBytes:        int64(getEnvAsInt("UPLOAD_MAX_BYTES", 32<<20)),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:         getEnv("LOG_TIME_FORMAT", time.RFC3339),
		LogOutput:             getEnv("LOG_OUTPUT", "stdout"),
	}
}

// Validate fails on configuration the enabled services cannot start without.
// Keys that only back a single endpoint are reported as warnings instead.
func (c *Config) Validate(s Services) (warnings []string, err error) {
	if !s.Mate && !s.Visionary {
		return nil, fmt.Errorf("no service enabled")
	}

	switch c.LLMProvider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}

	switch c.DocumentStore {
	case StoreMemory, StoreSQLite:
	default:
		return nil, fmt.Errorf("unknown DOCUMENT_STORE %q", c.DocumentStore)
	}

	if s.Mate {
		if c.LLMProvider == ProviderOpenAI && c.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required when LLM_PROVIDER=openai")
		}
		if c.LLMProvider == ProviderGemini && c.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
		}
	}

	if s.Visionary {
		if c.GeminiAPIKey == "" {
			warnings = append(warnings, "GEMINI_API_KEY is not set; audio/image processing is unavailable")
		}
		if !c.HasGoogleCredentials() {
			warnings = append(warnings, "GOOGLE_APPLICATION_CREDENTIALS is not set; speech synthesis is unavailable")
		}
		if c.MapboxAPIKey == "" {
			warnings = append(warnings, "MAPBOX_API_KEY is not set")
		}
		if c.GooglePlacesAPIKey == "" {
			warnings = append(warnings, "GOOGLE_PLACES_API_KEY is not set; place lookup is unavailable")
		}
	}
	return warnings, nil
}

func (c *Config) HasGoogleCredentials() bool {
	return c.GoogleCredentialsPath != "" || c.GoogleCredentialsJSON != ""
}

func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
