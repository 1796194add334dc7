package config

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	defaultPort       = 8000
	defaultEnv        = "development"

	defaultMongoHost       = "127.0.0.1"
	defaultMongoPort       = 27017
	defaultMongoName       = "Emogo"
	defaultMongoCollection = "records"

	defaultRedisHost = "localhost"
	defaultRedisPort = 6379
	defaultRedisDB   = 0

	defaultBackupIntervalHours = 24
	defaultBackupKeep          = 7
	defaultBackupKeyTemplate   = "{Y}/{m}/{filename}"
)
