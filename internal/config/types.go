package config

// AppConfig holds runtime startup configuration loaded from YAML plus
// environment overrides.
type AppConfig struct {
	Port           int                 `yaml:"port"`
	Env            string              `yaml:"env"` // "development" | "production"
	MongoDB        MongoRuntimeConfig  `yaml:"mongodb"`
	Redis          RedisRuntimeConfig  `yaml:"redis"`
	Paths          RuntimePathsConfig  `yaml:"paths"`
	Backup         BackupRuntimeConfig `yaml:"backup"`
	AllowedOrigins []string            `yaml:"allowed_origins"`
}

type MongoRuntimeConfig struct {
	URI        string `yaml:"uri"`
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	Name       string `yaml:"name"`
	Collection string `yaml:"collection"`
}

type RedisRuntimeConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TLS      bool   `yaml:"tls"`
}

type RuntimePathsConfig struct {
	Logs    string `yaml:"logs"`
	Backups string `yaml:"backups"`
}

type BackupRuntimeConfig struct {
	Enable        bool           `yaml:"enable"`
	IntervalHours int            `yaml:"interval_hours"`
	Keep          int            `yaml:"keep"`
	S3            S3UploadConfig `yaml:"s3"`
}

type S3UploadConfig struct {
	Enable          bool   `yaml:"enable"`
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	PathStyle       bool   `yaml:"path_style"`
	KeyTemplate     string `yaml:"key_template"`
}

// rawAppConfig accepts every spelling the config file historically used;
// normalization folds the aliases into AppConfig.
type rawAppConfig struct {
	Port               int                 `yaml:"port"`
	Env                string              `yaml:"env"`
	NodeEnv            string              `yaml:"node_env"`
	MongoDB            rawMongoConfig      `yaml:"mongodb"`
	Database           rawMongoConfig      `yaml:"database"`
	MongoURI           string              `yaml:"mongodb_uri"`
	MongoDBName        string              `yaml:"mongodb_db_name"`
	MongoCollection    string              `yaml:"mongodb_collection_name"`
	Redis              rawRedisConfig      `yaml:"redis"`
	RedisURL           string              `yaml:"redis_url"`
	Paths              rawPathsConfig      `yaml:"paths"`
	LogDir             string              `yaml:"log_dir"`
	BackupDir          string              `yaml:"backup_dir"`
	Backup             rawBackupConfig     `yaml:"backup"`
	AllowedOrigins     []string            `yaml:"allowed_origins"`
	CORSAllowedOrigins []string            `yaml:"cors_allowed_origins"`
}

type rawMongoConfig struct {
	URI        string `yaml:"uri"`
	URL        string `yaml:"url"`
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Username   string `yaml:"username"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	Name       string `yaml:"name"`
	DBName     string `yaml:"db_name"`
	Collection string `yaml:"collection"`
}

type rawRedisConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       *int   `yaml:"db"`
	TLS      *bool  `yaml:"tls"`
}

type rawPathsConfig struct {
	Logs    string `yaml:"logs"`
	Backups string `yaml:"backups"`
}

type rawBackupConfig struct {
	Enable        *bool             `yaml:"enable"`
	IntervalHours int               `yaml:"interval_hours"`
	Keep          int               `yaml:"keep"`
	S3            rawS3UploadConfig `yaml:"s3"`
}

type rawS3UploadConfig struct {
	Enable          *bool  `yaml:"enable"`
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	PathStyle       *bool  `yaml:"path_style"`
	KeyTemplate     string `yaml:"key_template"`
}
