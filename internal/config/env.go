package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// applyEnvOverrides folds process environment variables over the loaded
// config. The hosting platform injects MONGODB_URI / PORT there, and a
// local .env file fills the same variables in development.
func applyEnvOverrides(cfg *AppConfig) {
	_ = godotenv.Load()

	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			cfg.Port = port
		}
	}
	if v := strings.TrimSpace(os.Getenv("EMOGO_ENV")); v != "" {
		cfg.Env = normalizeEnv(v)
	}
	if v := strings.TrimSpace(os.Getenv("MONGODB_URI")); v != "" {
		cfg.MongoDB.URI = v
	}
	if v := strings.TrimSpace(os.Getenv("MONGODB_DB_NAME")); v != "" {
		cfg.MongoDB.Name = v
	}
	if v := strings.TrimSpace(os.Getenv("MONGODB_COLLECTION_NAME")); v != "" {
		cfg.MongoDB.Collection = v
	}
	if v := strings.TrimSpace(os.Getenv("REDIS_URL")); v != "" {
		cfg.Redis.URL = normalizeRedisRawURL(v)
	}

	cfg.MongoDB = normalizeMongoConfig(cfg.MongoDB)
	cfg.Redis = normalizeRedisConfig(cfg.Redis)
}
