package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML config at configPath, applies defaults and
// environment overrides, and validates the result. A missing file is
// only an error when the path was given explicitly; the default path is
// allowed to be absent so the service can run from environment alone.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	explicit := path != "" && path != DefaultConfigPath
	if path == "" {
		path = DefaultConfigPath
	}

	cfg := defaultAppConfig()

	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		decoder := yaml.NewDecoder(bytes.NewReader(content))
		decoder.KnownFields(true)
		raw := rawAppConfig{}
		if decodeErr := decoder.Decode(&raw); decodeErr != nil {
			return nil, fmt.Errorf("parse config file %q: %w", path, decodeErr)
		}
		applyRawAppConfig(&cfg, raw)
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// defaults + environment only
	default:
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	applyEnvOverrides(&cfg)

	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d, expected 1-65535", cfg.Port)
	}
	if cfg.MongoDB.Port < 1 || cfg.MongoDB.Port > 65535 {
		return nil, fmt.Errorf("invalid mongodb.port %d, expected 1-65535", cfg.MongoDB.Port)
	}
	if cfg.Redis.Port < 1 || cfg.Redis.Port > 65535 {
		return nil, fmt.Errorf("invalid redis.port %d, expected 1-65535", cfg.Redis.Port)
	}
	if cfg.Redis.DB < 0 {
		return nil, fmt.Errorf("invalid redis.db %d, expected >= 0", cfg.Redis.DB)
	}

	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	cfg := AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
		MongoDB: MongoRuntimeConfig{
			Host:       defaultMongoHost,
			Port:       defaultMongoPort,
			Name:       defaultMongoName,
			Collection: defaultMongoCollection,
		},
		Redis: RedisRuntimeConfig{
			Host: defaultRedisHost,
			Port: defaultRedisPort,
			DB:   defaultRedisDB,
		},
		Backup: BackupRuntimeConfig{
			IntervalHours: defaultBackupIntervalHours,
			Keep:          defaultBackupKeep,
			S3: S3UploadConfig{
				KeyTemplate: defaultBackupKeyTemplate,
			},
		},
	}
	cfg.MongoDB = normalizeMongoConfig(cfg.MongoDB)
	cfg.Redis = normalizeRedisConfig(cfg.Redis)
	return cfg
}

func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(c.Env, defaultEnv)
}

func (c *AppConfig) LogDir() string {
	if c == nil {
		return ResolveRuntimePath("", "logs")
	}
	return ResolveRuntimePath(c.Paths.Logs, "logs")
}

func (c *AppConfig) BackupDir() string {
	if c == nil {
		return ResolveRuntimePath("", "backups")
	}
	return ResolveRuntimePath(c.Paths.Backups, "backups")
}
