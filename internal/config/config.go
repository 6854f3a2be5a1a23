package config

import (
	"fmt"
	"log"
	"os"
	"time"
)

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env             string
	HTTPPort        string
	RedisAddr       string
	RetryQueueKey   string
	QueueBackend    string
	JWTIssuer       string
	JWTSigningKey   string
	SessionTTL      time.Duration
	SubmitURL       string
	SubmitTimeout   time.Duration
	GeoProviderURL  string
	GeoTimeout      time.Duration
	RateLimitPerMin int
	Seed            bool
	SeedRand        int
}

// Load returns application config populated from environment variables with sensible defaults.
func Load() App {
	return App{
		Env:             getEnv("APP_ENV", "dev"),
		HTTPPort:        getEnv("HTTP_PORT", "8082"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RetryQueueKey:   getEnv("RETRY_QUEUE_KEY", "attendance:retry"),
		QueueBackend:    getEnv("QUEUE_BACKEND", "redis"),
		JWTIssuer:       getEnv("JWT_ISSUER", "attendhub"),
		JWTSigningKey:   getEnv("JWT_SIGNING_KEY", "dev-signing-secret-change"),
		SessionTTL:      durationEnv("SESSION_TTL", 8*time.Hour),
		SubmitURL:       getEnv("SUBMIT_URL", ""),
		SubmitTimeout:   durationEnv("SUBMIT_TIMEOUT", 10*time.Second),
		GeoProviderURL:  getEnv("GEO_PROVIDER_URL", ""),
		GeoTimeout:      durationEnv("GEO_TIMEOUT", 7*time.Second),
		RateLimitPerMin: intEnv("RATE_LIMIT_PER_MIN", 120),
		Seed:            boolEnv("SEED_DEMO_DATA", true),
		SeedRand:        intEnv("SEED_RAND", 1),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using fallback %s", key, err, fallback)
			return fallback
		}
		return d
	}
	return fallback
}

func boolEnv(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if val == "1" || val == "true" || val == "TRUE" {
			return true
		}
		if val == "0" || val == "false" || val == "FALSE" {
			return false
		}
		log.Printf("invalid bool for %s, using fallback %v", key, fallback)
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var parsed int
		if _, err := fmt.Sscanf(val, "%d", &parsed); err == nil {
			return parsed
		}
		log.Printf("invalid int for %s, using fallback %d", key, fallback)
	}
	return fallback
}
