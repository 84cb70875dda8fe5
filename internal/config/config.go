package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// BlobConfig selects and tunes the chunked blob backend.
// Backend is one of "postgres", "badger" or "minio".
type BlobConfig struct {
	Backend   string
	ChunkSize int
	BadgerDir string
}

// AuthConfig holds bearer-token verification settings.
type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

// NotifyConfig selects where notifications are published.
// Backend is one of "postgres", "kafka" or "log".
type NotifyConfig struct {
	Backend           string
	KafkaBrokers      []string
	KafkaTopic        string
	PublishTimeoutSec int
}

type LogConfig struct {
	Level      string
	Production bool
}

// DeletionConfig tunes the cascading delete policy.
// When StrictStorage is set, a failed blob delete aborts a non-forced document delete.
type DeletionConfig struct {
	StrictStorage bool
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost             string
	Port                string
	Timezone            string
	MaxUploadMB         int
	AllowedContentTypes []string
	TracingEnabled      bool
	Database            DatabaseConfig
	MinIO               MinIOConfig
	Blob                BlobConfig
	Auth                AuthConfig
	Notify              NotifyConfig
	Log                 LogConfig
	Deletion            DeletionConfig
}

// DefaultAllowedContentTypes is the upload allow-list used when ALLOWED_CONTENT_TYPES is unset.
var DefaultAllowedContentTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"application/vnd.ms-powerpoint",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"text/plain",
	"application/zip",
	"application/x-rar-compressed",
	"video/mp4",
	"audio/mpeg",
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:             getEnv("APP_HOST", "localhost:8080"),
		Port:                getEnv("PORT", "8080"),
		Timezone:            getEnv("APP_TIMEZONE", "UTC"),
		MaxUploadMB:         getEnvInt("MAX_UPLOAD_MB", 10),
		AllowedContentTypes: getEnvList("ALLOWED_CONTENT_TYPES", DefaultAllowedContentTypes),
		TracingEnabled:      getEnvBool("TRACING_ENABLED", false),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Blob: BlobConfig{
			Backend:   getEnv("BLOB_BACKEND", "postgres"),
			ChunkSize: getEnvInt("BLOB_CHUNK_SIZE", 255*1024),
			BadgerDir: getEnv("BADGER_DIR", "data/blobs"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			Issuer:    getEnv("JWT_ISSUER", ""),
		},
		Notify: NotifyConfig{
			Backend:           getEnv("NOTIFY_BACKEND", "postgres"),
			KafkaBrokers:      getEnvList("KAFKA_BROKERS", nil),
			KafkaTopic:        getEnv("KAFKA_TOPIC", "notifications"),
			PublishTimeoutSec: getEnvInt("NOTIFY_PUBLISH_TIMEOUT_SEC", 5),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Production: getEnvBool("LOG_PRODUCTION", true),
		},
		Deletion: DeletionConfig{
			StrictStorage: getEnvBool("DELETE_STRICT_STORAGE", false),
		},
	}
}

// Location resolves the configured timezone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// MaxUploadBytes is the request body limit derived from MaxUploadMB.
func (c *AppConfig) MaxUploadBytes() int {
	return c.MaxUploadMB * 1024 * 1024
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

// getEnvList splits a comma-separated variable, dropping empty items.
func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
