package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config carries every externally supplied value the services need. It is
// loaded once in main and passed to constructors; no package reads the
// environment after startup.
type Config struct {
	AppEnv string
	Port   string

	JWTSecret  string
	SessionTTL time.Duration

	ActionTokenTTL time.Duration
	OTPTTL         time.Duration
	OTPMaxAttempts int

	BackendURL  string
	FrontendURL string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string

	RedisAddr    string
	KafkaBrokers []string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
}

func Load() (Config, error) {
	cfg := Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "3000"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		SessionTTL:     getDuration("SESSION_TTL", 24*time.Hour),
		ActionTokenTTL: getDuration("ACTION_TOKEN_TTL", 24*time.Hour),
		OTPTTL:         getDuration("OTP_TTL", 10*time.Minute),
		OTPMaxAttempts: getInt("OTP_MAX_ATTEMPTS", 3),
		BackendURL:     getEnv("BACKEND_URL", "http://localhost:3000"),
		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:5173"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBName:         getEnv("DB_NAME", "leave_approval"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBSSLMode:      getEnv("DB_SSLMODE", "disable"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		KafkaBrokers:   splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
		SMTPHost:       os.Getenv("EMAIL_HOST"),
		SMTPPort:       getInt("EMAIL_PORT", 587),
		SMTPUser:       os.Getenv("EMAIL_USER"),
		SMTPPass:       os.Getenv("EMAIL_PASS"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is not set")
	}
	if cfg.OTPMaxAttempts < 1 {
		return Config{}, fmt.Errorf("OTP_MAX_ATTEMPTS must be at least 1")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
