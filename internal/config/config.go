// README: Config loader with env defaults for HTTP, DB, Redis, AI, maps, auth, and rate limiting.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"tripcraft/internal/ai"
)

type AIConfig struct {
	GeminiKey string
	OpenAIKey string
	// Models is the failover order; the first entry is tried first.
	Models          []string
	HistoryWindow   int
	SessionTTL      time.Duration
	FallbackCatalog string
	MonthlyTokens   int
}

type RateLimitConfig struct {
	RPS            float64
	Burst          int
	TrustedProxies []string
}

type Config struct {
	HTTP struct {
		Addr string
	}
	DB struct {
		DSN     string
		Migrate bool
	}
	Redis struct {
		Addr string
	}
	AI   AIConfig
	Maps struct {
		APIKey      string
		EnrichLimit int
		TravelMode  string
	}
	Firebase struct {
		ProjectID       string
		CredentialsFile string
	}
	RateLimit RateLimitConfig
	Tracing   struct {
		Exporter    string
		SampleRatio float64
	}
}

func Load() (Config, error) {
	var cfg Config
	cfg.HTTP.Addr = envOrDefault("TRIPCRAFT_HTTP_ADDR", ":8080")
	cfg.DB.DSN = envOrDefault("TRIPCRAFT_DB_DSN", "")
	cfg.DB.Migrate = envOrDefaultBool("TRIPCRAFT_DB_MIGRATE", false)
	cfg.Redis.Addr = envOrDefault("TRIPCRAFT_REDIS_ADDR", "")

	cfg.AI.GeminiKey = envOrDefault("GEMINI_API_KEY", "")
	cfg.AI.OpenAIKey = envOrDefault("OPENAI_API_KEY", "")
	cfg.AI.Models = envOrDefaultList("TRIPCRAFT_AI_MODELS", ai.DefaultModels)
	cfg.AI.HistoryWindow = envOrDefaultInt("TRIPCRAFT_AI_HISTORY_WINDOW", 40)
	cfg.AI.SessionTTL = envOrDefaultDuration("TRIPCRAFT_SESSION_TTL", 2*time.Hour)
	cfg.AI.FallbackCatalog = envOrDefault("TRIPCRAFT_FALLBACK_CATALOG", "")
	cfg.AI.MonthlyTokens = envOrDefaultInt("TRIPCRAFT_AI_MONTHLY_TOKENS", 100)

	cfg.Maps.APIKey = envOrDefault("GOOGLE_MAPS_API_KEY", "")
	cfg.Maps.EnrichLimit = envOrDefaultInt("TRIPCRAFT_MAPS_ENRICH_LIMIT", 8)
	cfg.Maps.TravelMode = envOrDefault("TRIPCRAFT_MAPS_TRAVEL_MODE", "walking")

	cfg.Firebase.ProjectID = envOrDefault("TRIPCRAFT_FIREBASE_PROJECT_ID", "")
	cfg.Firebase.CredentialsFile = envOrDefault("TRIPCRAFT_FIREBASE_CREDENTIALS", "")

	cfg.RateLimit.RPS = envOrDefaultFloat("TRIPCRAFT_RATE_LIMIT_RPS", 1)
	cfg.RateLimit.Burst = envOrDefaultInt("TRIPCRAFT_RATE_LIMIT_BURST", 5)
	cfg.RateLimit.TrustedProxies = envOrDefaultList("TRIPCRAFT_TRUSTED_PROXIES", nil)

	cfg.Tracing.Exporter = envOrDefault("TRIPCRAFT_TRACE_EXPORTER", "")
	cfg.Tracing.SampleRatio = envOrDefaultFloat("TRIPCRAFT_TRACE_SAMPLE_RATIO", 1)
	return cfg, nil
}

// Credentials returns the model API keys for ai.NewRegistryFromCredentials.
func (c AIConfig) Credentials() ai.Credentials {
	return ai.Credentials{GeminiKey: c.GeminiKey, OpenAIKey: c.OpenAIKey}
}

func envOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}

// envOrDefaultList splits a comma-separated value, dropping blanks.
func envOrDefaultList(key string, def []string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), def...)
	}
	return out
}
