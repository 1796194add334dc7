package config

import "strings"

func applyRawAppConfig(cfg *AppConfig, raw rawAppConfig) {
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	if v := strings.TrimSpace(raw.Env); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(raw.NodeEnv); v != "" {
		cfg.Env = v
	}

	cfg.MongoDB = applyRawMongoConfig(cfg.MongoDB, raw)
	cfg.Redis = applyRawRedisConfig(cfg.Redis, raw)
	cfg.Backup = applyRawBackupConfig(cfg.Backup, raw.Backup)

	if v := strings.TrimSpace(raw.Paths.Logs); v != "" {
		cfg.Paths.Logs = v
	}
	if v := strings.TrimSpace(raw.LogDir); v != "" {
		cfg.Paths.Logs = v
	}
	if v := strings.TrimSpace(raw.Paths.Backups); v != "" {
		cfg.Paths.Backups = v
	}
	if v := strings.TrimSpace(raw.BackupDir); v != "" {
		cfg.Paths.Backups = v
	}

	switch {
	case raw.AllowedOrigins != nil:
		cfg.AllowedOrigins = normalizeOrigins(raw.AllowedOrigins)
	case raw.CORSAllowedOrigins != nil:
		cfg.AllowedOrigins = normalizeOrigins(raw.CORSAllowedOrigins)
	}

	cfg.Paths = normalizeRuntimePaths(cfg.Paths)
	cfg.Env = normalizeEnv(cfg.Env)
}

func applyRawMongoConfig(current MongoRuntimeConfig, raw rawAppConfig) MongoRuntimeConfig {
	cfg := current

	for _, section := range []rawMongoConfig{raw.Database, raw.MongoDB} {
		if v := strings.TrimSpace(section.URI); v != "" {
			cfg.URI = v
		}
		if v := strings.TrimSpace(section.URL); v != "" {
			cfg.URI = v
		}
		if v := strings.TrimSpace(section.Host); v != "" {
			cfg.Host = v
		}
		if section.Port != 0 {
			cfg.Port = section.Port
		}
		if v := strings.TrimSpace(section.User); v != "" {
			cfg.Username = v
		}
		if v := strings.TrimSpace(section.Username); v != "" {
			cfg.Username = v
		}
		if v := strings.TrimSpace(section.Password); v != "" {
			cfg.Password = v
		}
		if v := strings.TrimSpace(section.Name); v != "" {
			cfg.Name = v
		}
		if v := strings.TrimSpace(section.DBName); v != "" {
			cfg.Name = v
		}
		if v := strings.TrimSpace(section.Collection); v != "" {
			cfg.Collection = v
		}
	}

	if v := strings.TrimSpace(raw.MongoURI); v != "" {
		cfg.URI = v
	}
	if v := strings.TrimSpace(raw.MongoDBName); v != "" {
		cfg.Name = v
	}
	if v := strings.TrimSpace(raw.MongoCollection); v != "" {
		cfg.Collection = v
	}

	return normalizeMongoConfig(cfg)
}

func applyRawRedisConfig(current RedisRuntimeConfig, raw rawAppConfig) RedisRuntimeConfig {
	cfg := current

	if v := strings.TrimSpace(raw.Redis.URL); v != "" {
		cfg.URL = v
	}
	if v := strings.TrimSpace(raw.RedisURL); v != "" {
		cfg.URL = v
	}
	if v := strings.TrimSpace(raw.Redis.Host); v != "" {
		cfg.Host = v
	}
	if raw.Redis.Port != 0 {
		cfg.Port = raw.Redis.Port
	}
	if v := strings.TrimSpace(raw.Redis.Username); v != "" {
		cfg.Username = v
	}
	if v := strings.TrimSpace(raw.Redis.Password); v != "" {
		cfg.Password = v
	}
	if raw.Redis.DB != nil {
		cfg.DB = *raw.Redis.DB
	}
	if raw.Redis.TLS != nil {
		cfg.TLS = *raw.Redis.TLS
	}

	return normalizeRedisConfig(cfg)
}

func applyRawBackupConfig(current BackupRuntimeConfig, raw rawBackupConfig) BackupRuntimeConfig {
	cfg := current

	if raw.Enable != nil {
		cfg.Enable = *raw.Enable
	}
	if raw.IntervalHours != 0 {
		cfg.IntervalHours = raw.IntervalHours
	}
	if raw.Keep != 0 {
		cfg.Keep = raw.Keep
	}
	if raw.S3.Enable != nil {
		cfg.S3.Enable = *raw.S3.Enable
	}
	if v := strings.TrimSpace(raw.S3.Endpoint); v != "" {
		cfg.S3.Endpoint = v
	}
	if v := strings.TrimSpace(raw.S3.Region); v != "" {
		cfg.S3.Region = v
	}
	if v := strings.TrimSpace(raw.S3.Bucket); v != "" {
		cfg.S3.Bucket = v
	}
	if v := strings.TrimSpace(raw.S3.AccessKeyID); v != "" {
		cfg.S3.AccessKeyID = v
	}
	if v := strings.TrimSpace(raw.S3.SecretAccessKey); v != "" {
		cfg.S3.SecretAccessKey = v
	}
	if raw.S3.PathStyle != nil {
		cfg.S3.PathStyle = *raw.S3.PathStyle
	}
	if v := strings.TrimSpace(raw.S3.KeyTemplate); v != "" {
		cfg.S3.KeyTemplate = v
	}

	return normalizeBackupConfig(cfg)
}

func normalizeMongoConfig(cfg MongoRuntimeConfig) MongoRuntimeConfig {
	cfg.URI = strings.TrimSpace(cfg.URI)
	cfg.Host = strings.TrimSpace(cfg.Host)
	cfg.Username = strings.TrimSpace(cfg.Username)
	cfg.Password = strings.TrimSpace(cfg.Password)
	cfg.Name = strings.TrimSpace(cfg.Name)
	cfg.Collection = strings.TrimSpace(cfg.Collection)

	if cfg.Host == "" && cfg.URI == "" {
		cfg.Host = defaultMongoHost
	}
	if cfg.Port == 0 {
		cfg.Port = defaultMongoPort
	}
	if cfg.Name == "" {
		cfg.Name = defaultMongoName
	}
	if cfg.Collection == "" {
		cfg.Collection = defaultMongoCollection
	}
	return cfg
}

func normalizeRedisConfig(cfg RedisRuntimeConfig) RedisRuntimeConfig {
	cfg.URL = normalizeRedisRawURL(cfg.URL)
	cfg.Host = strings.TrimSpace(cfg.Host)
	cfg.Username = strings.TrimSpace(cfg.Username)
	cfg.Password = strings.TrimSpace(cfg.Password)

	if cfg.Host == "" && cfg.URL == "" {
		cfg.Host = defaultRedisHost
	}
	if cfg.Port == 0 {
		cfg.Port = defaultRedisPort
	}
	if cfg.DB < 0 {
		cfg.DB = defaultRedisDB
	}
	return cfg
}

func normalizeRedisRawURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "redis://") || strings.HasPrefix(trimmed, "rediss://") {
		return trimmed
	}
	return "redis://" + trimmed
}

func normalizeBackupConfig(cfg BackupRuntimeConfig) BackupRuntimeConfig {
	if cfg.IntervalHours <= 0 {
		cfg.IntervalHours = defaultBackupIntervalHours
	}
	if cfg.Keep <= 0 {
		cfg.Keep = defaultBackupKeep
	}
	cfg.S3.Endpoint = strings.TrimRight(strings.TrimSpace(cfg.S3.Endpoint), "/")
	cfg.S3.Region = strings.TrimSpace(cfg.S3.Region)
	cfg.S3.Bucket = strings.TrimSpace(cfg.S3.Bucket)
	cfg.S3.AccessKeyID = strings.TrimSpace(cfg.S3.AccessKeyID)
	cfg.S3.SecretAccessKey = strings.TrimSpace(cfg.S3.SecretAccessKey)
	if strings.TrimSpace(cfg.S3.KeyTemplate) == "" {
		cfg.S3.KeyTemplate = defaultBackupKeyTemplate
	}
	return cfg
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(env string) string {
	trimmed := strings.ToLower(strings.TrimSpace(env))
	if trimmed == "" {
		return defaultEnv
	}
	return trimmed
}

func normalizeRuntimePaths(paths RuntimePathsConfig) RuntimePathsConfig {
	paths.Logs = strings.TrimSpace(paths.Logs)
	paths.Backups = strings.TrimSpace(paths.Backups)
	return paths
}
