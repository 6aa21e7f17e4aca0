package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App    AppConfig
	Ai     AIConfig
	Tuning TuningSet
}

type AppConfig struct {
	ServiceName        string
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	SessionTTL         time.Duration
}

type AIConfig struct {
	Provider      string // "ollama" or "gemini"
	Model         string // e.g. "llama3", "qwen2.5", "gemini-1.5-flash"
	OllamaBaseURL string
	GeminiApiKey  string

	// Embedding settings drive the topic-drift detector; an empty provider
	// disables it.
	EmbeddingProvider string // "ollama", "jina", "gemini" or ""
	EmbeddingModel    string
	JinaApiKey        string
	DriftThreshold    float64
}

// TuningConfig is one operating-mode preset for the suggestion coordinator.
type TuningConfig struct {
	RateLimitSpacing    time.Duration
	RequestTimeout      time.Duration
	MaxQueueSize        int
	MaxConcurrent       int
	EnqueueGuardTTL     time.Duration
	DisplayGuardTTL     time.Duration
	ConfidenceThreshold float64
}

// TuningSet carries the distinct presets for interactive typing ("live") and
// scripted playback ("demo").
type TuningSet struct {
	Live TuningConfig
	Demo TuningConfig
}

// ForMode returns the preset for a mode string, defaulting to live.
func (t TuningSet) ForMode(mode string) TuningConfig {
	if mode == "demo" {
		return t.Demo
	}
	return t.Live
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			ServiceName:        getEnv("OTEL_SERVICE_NAME", "ai-writing-backend"),
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			SessionTTL:         getEnvAsDuration("SESSION_TTL", 2*time.Hour),
		},
		Ai: AIConfig{
			Provider:      getEnv("SUGGESTION_PROVIDER", "ollama"),
			Model:         getEnv("SUGGESTION_MODEL", "llama3"),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			GeminiApiKey:  getEnv("GEMINI_API_KEY", ""),

			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", ""),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
			JinaApiKey:        getEnv("JINA_API_KEY", ""),
			DriftThreshold:    getEnvAsFloat("TOPIC_DRIFT_THRESHOLD", 0.35),
		},
		Tuning: TuningSet{
			Live: TuningConfig{
				RateLimitSpacing:    getEnvAsDuration("LIVE_RATE_SPACING", 4*time.Second),
				RequestTimeout:      getEnvAsDuration("LIVE_REQUEST_TIMEOUT", 20*time.Second),
				MaxQueueSize:        getEnvAsInt("LIVE_MAX_QUEUE_SIZE", 3),
				MaxConcurrent:       getEnvAsInt("LIVE_MAX_CONCURRENT", 1),
				EnqueueGuardTTL:     getEnvAsDuration("LIVE_ENQUEUE_GUARD_TTL", 10*time.Second),
				DisplayGuardTTL:     getEnvAsDuration("LIVE_DISPLAY_GUARD_TTL", 2*time.Minute),
				ConfidenceThreshold: getEnvAsFloat("LIVE_CONFIDENCE_THRESHOLD", 0.5),
			},
			Demo: TuningConfig{
				RateLimitSpacing:    getEnvAsDuration("DEMO_RATE_SPACING", 1*time.Second),
				RequestTimeout:      getEnvAsDuration("DEMO_REQUEST_TIMEOUT", 30*time.Second),
				MaxQueueSize:        getEnvAsInt("DEMO_MAX_QUEUE_SIZE", 5),
				MaxConcurrent:       getEnvAsInt("DEMO_MAX_CONCURRENT", 2),
				EnqueueGuardTTL:     getEnvAsDuration("DEMO_ENQUEUE_GUARD_TTL", 30*time.Second),
				DisplayGuardTTL:     getEnvAsDuration("DEMO_DISPLAY_GUARD_TTL", 10*time.Minute),
				ConfidenceThreshold: getEnvAsFloat("DEMO_CONFIDENCE_THRESHOLD", 0.2),
			},
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
