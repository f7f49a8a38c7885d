package config

import (
	"os"
	"strconv"
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
	// ArchiveBucket receives backup archives when a job targets object storage.
	// Empty disables the "object" storage target.
	ArchiveBucket string
}

// StorageConfig selects where uploaded case documents live.
type StorageConfig struct {
	// Driver is "minio" or "local".
	Driver    string
	UploadDir string
}

// BackupConfig controls the backup coordinator and its runners.
type BackupConfig struct {
	Dir        string
	StagingDir string
	// Runner is "local" (in-process goroutines) or "redis" (durable queue + worker).
	Runner        string
	Concurrency   int
	JobTimeoutSec int
	// Schedule is a cron expression for periodic backups; empty disables scheduling.
	Schedule     string
	ScheduleKind string
}

// JobTimeout returns the wall-clock budget of a single backup job.
func (b BackupConfig) JobTimeout() time.Duration {
	return time.Duration(b.JobTimeoutSec) * time.Second
}

// RedisConfig holds connection settings for the backup job queue.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	QueueKey string
}

// AuthConfig holds bearer token settings.
type AuthConfig struct {
	JWTSecret   string
	TokenTTLSec int
}

// LogConfig holds zerolog settings.
type LogConfig struct {
	Level  string
	Format string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost string
	Port    string
	// WorkerPort serves /metrics and /healthz of the queue worker.
	WorkerPort string
	Timezone   string
	Database   DatabaseConfig
	MinIO      MinIOConfig
	Storage    StorageConfig
	Backup     BackupConfig
	Redis      RedisConfig
	Auth       AuthConfig
	Log        LogConfig
}

// Location resolves Timezone, falling back to UTC when it is unknown.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:    getEnv("APP_HOST", "localhost:8080"),
		Port:       getEnv("PORT", "8080"),
		WorkerPort: getEnv("WORKER_PORT", "9091"),
		Timezone:   getEnv("APP_TIMEZONE", "UTC"),
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
			Endpoint:      getEnv("MINIO_ENDPOINT", ""),
			AccessKey:     getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey:     getEnv("MINIO_SECRET_KEY", ""),
			Bucket:        getEnv("MINIO_BUCKET", ""),
			UseSSL:        getEnvBool("MINIO_USE_SSL", false),
			ArchiveBucket: getEnv("MINIO_ARCHIVE_BUCKET", ""),
		},
		Storage: StorageConfig{
			Driver:    getEnv("STORAGE_DRIVER", "minio"),
			UploadDir: getEnv("UPLOAD_DIR", "uploads"),
		},
		Backup: BackupConfig{
			Dir:           getEnv("BACKUP_DIR", "backups"),
			StagingDir:    getEnv("BACKUP_STAGING_DIR", os.TempDir()),
			Runner:        getEnv("BACKUP_RUNNER", "local"),
			Concurrency:   getEnvInt("BACKUP_CONCURRENCY", 2),
			JobTimeoutSec: getEnvInt("BACKUP_JOB_TIMEOUT_SEC", 3600),
			Schedule:      getEnv("BACKUP_SCHEDULE", ""),
			ScheduleKind:  getEnv("BACKUP_SCHEDULE_KIND", "incremental"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			QueueKey: getEnv("BACKUP_QUEUE_KEY", "casefiles:backup:queue"),
		},
		Auth: AuthConfig{
			JWTSecret:   getEnv("JWT_SECRET_KEY", ""),
			TokenTTLSec: getEnvInt("JWT_TOKEN_TTL_SEC", 86400),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
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
