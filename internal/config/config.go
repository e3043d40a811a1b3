package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort   string
	DatabaseType string
	DatabasePath string
	DatabaseURL  string
	LogLevel     string
	CORSOrigins  []string

	// Session engine pacing
	TimerTick         time.Duration
	FeedbackDelay     time.Duration
	AdvanceDelay      time.Duration
	AccelerationStep  time.Duration
	MinTimeLimit      time.Duration
	GameIdleTimeout   time.Duration
	HistoryLimit      int
	SeedBuiltInThemes bool
	UploadMaxSize     int64
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is applied first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:        getEnv("PORT", "8080"),
		DatabaseType:      getEnv("DB_TYPE", "sqlite"),
		DatabasePath:      getEnv("DB_PATH", "./wordclash.db"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		CORSOrigins:       splitList(getEnv("CORS_ORIGINS", "*")),
		TimerTick:         getEnvMillis("TIMER_TICK_MS", 100),
		FeedbackDelay:     getEnvMillis("FEEDBACK_DELAY_MS", 400),
		AdvanceDelay:      getEnvMillis("ADVANCE_DELAY_MS", 600),
		AccelerationStep:  getEnvMillis("ACCELERATION_STEP_MS", 1000),
		MinTimeLimit:      getEnvMillis("MIN_TIME_LIMIT_MS", 3000),
		GameIdleTimeout:   getEnvDuration("GAME_IDLE_TIMEOUT", 30*time.Minute),
		HistoryLimit:      getEnvInt("HISTORY_LIMIT", 200),
		SeedBuiltInThemes: getEnv("SEED_BUILTIN_THEMES", "true") == "true",
		UploadMaxSize:     5 * 1024 * 1024, // 5MB
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvMillis(key string, defaultMs int) time.Duration {
	return time.Duration(getEnvInt(key, defaultMs)) * time.Millisecond
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
