package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string

	// Durable session storage: "redis" or "sqlite".
	StorageBackend string
	RedisURL       string
	SQLitePath     string
	// SessionName keys the persisted state in durable storage.
	SessionName string

	// Question-set source: a base URL, or a local directory when set.
	SetsBaseURL string
	SetsDir     string

	// QuizDuration is the default countdown armed when a session has no
	// deadline yet.
	QuizDuration time.Duration
}

func LoadConfig() (*Config, error) {
	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

	durationMinutes, err := strconv.Atoi(getEnv("QUIZ_DURATION_MINUTES", "60"))
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		StorageBackend: getEnv("STORAGE_BACKEND", "sqlite"),
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379"),
		SQLitePath:     getEnv("SQLITE_PATH", "quiz-session.db"),
		SessionName:    getEnv("SESSION_STORAGE_KEY", "question-storage"),
		SetsBaseURL:    getEnv("SETS_BASE_URL", "http://localhost:5173"),
		SetsDir:        getEnv("SETS_DIR", ""),
		QuizDuration:   time.Duration(durationMinutes) * time.Minute,
	}, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
