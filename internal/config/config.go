package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	ProviderOpenAI = "openai"
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"
)

// Config holds the configuration for the application.
type Config struct {
	// LLM
	LLMProvider  string
	LLMAPIKey    string
	LLMBaseURL   string
	GeminiAPIKey string
	PlannerModel string
	HelperModel  string

	// Image search
	UnsplashAccessKey string
	UnsplashAPIURL    string
	FetchImages       bool

	// Voice
	ElevenLabsAPIKey  string
	ElevenLabsVoiceID string
	ElevenLabsAPIURL  string

	// Storage
	DatabasePath string

	// HTTP server
	Port              string
	JWTSecret         string
	CORSAllowedOrigin string
	LogLevel          string

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	AdminTelegramID        int64
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	provider := strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenAI))

	var llmAPIKey, geminiAPIKey string
	switch provider {
	case ProviderOpenAI, ProviderGroq:
		llmAPIKey = os.Getenv("LLM_API_KEY")
		if llmAPIKey == "" {
			return nil, fmt.Errorf("LLM_API_KEY environment variable not set")
		}
	case ProviderGemini:
		geminiAPIKey = os.Getenv("GEMINI_API_KEY")
		if geminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
		}
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q", provider)
	}

	baseURL := os.Getenv("LLM_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL(provider)
	}

	unsplashKey := os.Getenv("UNSPLASH_ACCESS_KEY")
	fetchImages, err := getEnvBool("FETCH_IMAGES", false)
	if err != nil {
		return nil, err
	}
	// Image search is pointless without credentials.
	if unsplashKey == "" {
		fetchImages = false
	}

	allowed, err := parseIDList(os.Getenv("TELEGRAM_ALLOWED_USER_IDS"))
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS: %w", err)
	}

	var adminID int64
	if v := os.Getenv("ADMIN_TELEGRAM_ID"); v != "" {
		adminID, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
	}

	return &Config{
		LLMProvider:            provider,
		LLMAPIKey:              llmAPIKey,
		LLMBaseURL:             baseURL,
		GeminiAPIKey:           geminiAPIKey,
		PlannerModel:           getEnv("PLANNER_MODEL", defaultPlannerModel(provider)),
		HelperModel:            getEnv("HELPER_MODEL", defaultHelperModel(provider)),
		UnsplashAccessKey:      unsplashKey,
		UnsplashAPIURL:         getEnv("UNSPLASH_API_URL", "https://api.unsplash.com"),
		FetchImages:            fetchImages,
		ElevenLabsAPIKey:       os.Getenv("ELEVENLABS_API_KEY"),
		ElevenLabsVoiceID:      os.Getenv("ELEVENLABS_VOICE_ID"),
		ElevenLabsAPIURL:       getEnv("ELEVENLABS_API_URL", "https://api.elevenlabs.io"),
		DatabasePath:           getEnv("DATABASE_PATH", "data/kitchen.db"),
		Port:                   getEnv("PORT", "8080"),
		JWTSecret:              os.Getenv("JWT_SECRET"),
		CORSAllowedOrigin:      os.Getenv("CORS_ALLOWED_ORIGIN"),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		TelegramBotToken:       os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL:     os.Getenv("TELEGRAM_WEBHOOK_URL"),
		TelegramAllowedUserIDs: allowed,
		AdminTelegramID:        adminID,
	}, nil
}

// RequireServer checks the settings only the HTTP server needs.
func (c *Config) RequireServer() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable not set")
	}
	if c.TelegramBotToken != "" && c.TelegramWebhookURL == "" {
		return fmt.Errorf("TELEGRAM_WEBHOOK_URL environment variable not set")
	}
	return nil
}

// VoiceEnabled reports whether text-to-speech credentials are configured.
func (c *Config) VoiceEnabled() bool {
	return c.ElevenLabsAPIKey != "" && c.ElevenLabsVoiceID != ""
}

func defaultBaseURL(provider string) string {
	switch provider {
	case ProviderGroq:
		return "https://api.groq.com/openai/v1"
	case ProviderOpenAI:
		return "https://api.openai.com/v1"
	}
	return ""
}

func defaultPlannerModel(provider string) string {
	switch provider {
	case ProviderGroq:
		return "llama-3.3-70b-versatile"
	case ProviderGemini:
		return "gemini-1.5-pro"
	}
	return "gpt-4o"
}

func defaultHelperModel(provider string) string {
	switch provider {
	case ProviderGroq:
		return "llama-3.1-8b-instant"
	case ProviderGemini:
		return "gemini-1.5-flash"
	}
	return "gpt-4o-mini"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func parseIDList(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
