package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	OCR      OCRConfig
	Queue    QueueConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver           string // "sqlite" or "postgres"
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr        string
	SessionTTL      time.Duration
	RateLimitPerSec float64
	RateLimitBurst  int
	MaxUploadBytes  int64
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	TesseractPath    string
	Languages        string
	PageSegMode      int
	Timeout          time.Duration
	ArtifactCacheDir string
}

// QueueConfig holds worker queue configuration
type QueueConfig struct {
	Workers        int
	Size           int
	ProcessTimeout time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:           getEnv("DB_DRIVER", "sqlite"),
			DSN:              getEnv("DB_URL", "file:receiptlens.db"),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
			SessionTTL:      getEnvAsDuration("SESSION_TTL", 24*time.Hour),
			RateLimitPerSec: getEnvAsFloat64("RATE_LIMIT_PER_SEC", 10),
			RateLimitBurst:  getEnvAsInt("RATE_LIMIT_BURST", 20),
			MaxUploadBytes:  int64(getEnvAsInt("MAX_UPLOAD_BYTES", 16<<20)),
		},
		OCR: OCRConfig{
			TesseractPath:    getEnv("TESSERACT_PATH", "tesseract"),
			Languages:        getEnv("OCR_LANGUAGES", "eng"),
			PageSegMode:      getEnvAsInt("OCR_PSM", 6),
			Timeout:          getEnvAsDuration("OCR_TIMEOUT", 60*time.Second),
			ArtifactCacheDir: getEnv("ARTIFACT_CACHE_DIR", "./tmp"),
		},
		Queue: QueueConfig{
			Workers:        getEnvAsInt("QUEUE_WORKERS", 4),
			Size:           getEnvAsInt("QUEUE_SIZE", 64),
			ProcessTimeout: getEnvAsDuration("QUEUE_PROCESS_TIMEOUT", 2*time.Minute),
		},
	}
}

// Helper functions for environment variable parsing
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

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// ValidateConfig validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.Driver != "sqlite" && c.Database.Driver != "postgres" {
		return NewAppError("CONFIG_ERROR", "DB_DRIVER must be sqlite or postgres", ErrInvalidInput)
	}
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.OCR.PageSegMode < 0 || c.OCR.PageSegMode > 13 {
		return NewAppError("CONFIG_ERROR", "OCR_PSM must be between 0 and 13", ErrInvalidInput)
	}
	if c.Queue.Workers < 1 {
		return NewAppError("CONFIG_ERROR", "QUEUE_WORKERS must be at least 1", ErrInvalidInput)
	}
	return nil
}
