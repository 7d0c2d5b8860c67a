package conf

import (
	"fmt"
	"os"

	"github.com/holoshare/holoshare-backend/internal/pkg/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
	Log      logger.Config  `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// MaxUploadBytes caps multipart upload size; 0 disables the cap
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`
}

// DatabaseConfig holds the metadata store connection settings.
// URL and Name come from the DATABASE_URL and DATABASE_NAME environment
// variables; both may be empty, in which case metadata operations are
// disabled and the service runs degraded.
type DatabaseConfig struct {
	URL  string `mapstructure:"url"`
	Name string `mapstructure:"name"`
}

type StorageConfig struct {
	// Backend selects the blob store implementation: "local" or "minio"
	Backend string `mapstructure:"backend"`
	// Dir is the local storage root, relative to the working directory
	Dir string `mapstructure:"dir"`
	// PublicPrefix is joined with generated filenames to form public URLs
	PublicPrefix string `mapstructure:"public_prefix"`
	// RetentionDays drives the metadata TTL index. Expiry removes only the
	// metadata record; stored blobs are not reaped (documented asymmetry).
	RetentionDays int `mapstructure:"retention_days"`
}

type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
}

// Enabled reports whether a metadata store connection is configured
func (c *DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// LoadConfig reads configuration from an optional YAML file plus the
// environment. PORT, DATABASE_URL and DATABASE_NAME always come from the
// environment when set; a missing config file is not an error.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.max_upload_bytes", 0)
	v.SetDefault("storage.backend", "local")
	v.SetDefault("storage.dir", "uploads")
	v.SetDefault("storage.public_prefix", "/files")
	v.SetDefault("storage.retention_days", 15)
	v.SetDefault("minio.bucket", "holoshare-assets")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "console")
	v.SetDefault("log.enablestacktrace", true)

	v.AutomaticEnv()
	v.BindEnv("server.port", "PORT")
	v.BindEnv("database.url", "DATABASE_URL")
	v.BindEnv("database.name", "DATABASE_NAME")
	v.BindEnv("minio.endpoint", "MINIO_ENDPOINT")
	v.BindEnv("minio.access_key", "MINIO_ACCESS_KEY")
	v.BindEnv("minio.secret_key", "MINIO_SECRET_KEY")
	v.BindEnv("minio.bucket", "MINIO_BUCKET_NAME")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}
