package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI      string
	MongoDatabase string
	ServerPort    string
	Environment   string

	// StoreDriver selects "mongo" or "memory".
	StoreDriver  string
	StoreTimeout time.Duration
	// GenreUniqueIndex adds a collation-aware unique index on genre names,
	// closing the check-then-insert window of the duplicate check.
	GenreUniqueIndex bool

	JWTSecret   string
	SessionTTL  time.Duration
	RequireAuth bool

	RateLimitRequests int
	RateLimitWindow   time.Duration

	LogFilePath   string
	LogHMACKey    string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	return &Config{
		MongoURI:      getEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "local_library"),
		ServerPort:    getEnv("SERVER_PORT", "3000"),
		Environment:   getEnv("ENVIRONMENT", "development"),

		StoreDriver:      getEnv("STORE_DRIVER", "mongo"),
		StoreTimeout:     getEnvAsDuration("STORE_TIMEOUT", 5*time.Second),
		GenreUniqueIndex: getEnvAsBool("GENRE_UNIQUE_INDEX", false),

		JWTSecret:   getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		SessionTTL:  getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		RequireAuth: getEnvAsBool("REQUIRE_AUTH", false),

		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   getEnvAsDuration("RATE_LIMIT_WINDOW", 10*time.Second),

		LogFilePath:   getEnv("LOG_FILE_PATH", "/var/log/catalog-service/app.log"),
		LogHMACKey:    getEnv("LOG_HMAC_KEY", "default-hmac-key-change-in-production"),
		LogMaxSizeMB:  getEnvAsInt("LOG_MAX_SIZE_MB", 100),
		LogMaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: getEnvAsInt("LOG_MAX_AGE_DAYS", 30),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
