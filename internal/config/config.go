package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxUploadSizeMB int64
	UploadDir       string

	// DBFile is the bbolt file backing result metadata, and document
	// storage when S3Endpoint is unset.
	DBFile string

	// S3Endpoint, when set, switches document storage from the local
	// bbolt file to this S3-compatible bucket.
	S3Endpoint     string
	S3AccessKey    string
	S3AccessSecret string
	S3Bucket       string
	S3UseSSL       bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:            envInt("PORT", 8080),
		ReadTimeout:     envDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:    envDuration("WRITE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		MaxUploadSizeMB: int64(envInt("MAX_UPLOAD_SIZE_MB", 50)),
		UploadDir:       envString("UPLOAD_DIR", "/tmp/docx-uploads"),
		DBFile:          envString("DB_FILE", "data/supercompare.bolt"),
		S3Endpoint:      envString("S3_ENDPOINT", ""),
		S3AccessKey:     envString("S3_ACCESS_KEY", ""),
		S3AccessSecret:  envString("S3_ACCESS_SECRET", ""),
		S3Bucket:        envString("S3_BUCKET", ""),
		S3UseSSL:        envBool("S3_USE_SSL", true),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
