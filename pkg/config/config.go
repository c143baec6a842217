package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	JWTSecret string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AIProvider    string
	GeminiApiKey  string
	OllamaBaseURL string
	OllamaModel   string

	SweepInterval time.Duration

	SLACriticalHours  float64
	SLAHighHours      float64
	SLAMediumHours    float64
	SLALowHours       float64
	SLAAdjustWeekends bool
	WorkingHoursStart int
	WorkingHoursEnd   int
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	sweepInterval := 5 * time.Minute
	if v := os.Getenv("SWEEP_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			sweepInterval = parsed
		}
	}

	return &Config{
		Port:      getEnv("PORT", "8080"),
		JWTSecret: getEnv("JWT_SECRET", "your-secret-key-change-in-production"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "followup"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		AIProvider:    getEnv("AI_PROVIDER", "auto"),
		GeminiApiKey:  getEnv("GEMINI_API_KEY", ""),
		OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:   getEnv("OLLAMA_MODEL", "llama3"),

		SweepInterval: sweepInterval,

		SLACriticalHours:  getEnvFloat("SLA_CRITICAL_HOURS", 4),
		SLAHighHours:      getEnvFloat("SLA_HIGH_HOURS", 8),
		SLAMediumHours:    getEnvFloat("SLA_MEDIUM_HOURS", 24),
		SLALowHours:       getEnvFloat("SLA_LOW_HOURS", 72),
		SLAAdjustWeekends: getEnvBool("SLA_ADJUST_WEEKENDS", true),
		WorkingHoursStart: getEnvInt("WORKING_HOURS_START", 9),
		WorkingHoursEnd:   getEnvInt("WORKING_HOURS_END", 17),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
