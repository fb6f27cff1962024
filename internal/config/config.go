package config

import (
	"fmt"
	"os"
)

type Config struct {
	DatabaseURL string // LOUPE_DATABASE_URL (required)
	HTTPAddr    string // LOUPE_HTTP_ADDR (default ":8080")
	LogAPIURL   string // LOUPE_LOG_API_URL (required; upstream log retrieval service)
	LogAPIToken string // LOUPE_LOG_API_TOKEN (optional)
	NATSURL     string // LOUPE_NATS_URL (optional, empty = no events)
	AuthToken   string // LOUPE_AUTH_TOKEN (optional, empty = auth disabled)

	// Export settings
	ExportS3Bucket   string // LOUPE_EXPORT_S3_BUCKET (enables S3 uploads when set)
	ExportS3Endpoint string // LOUPE_EXPORT_S3_ENDPOINT (custom endpoint for MinIO)
	ExportS3Region   string // LOUPE_EXPORT_S3_REGION (default "us-east-1")
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:      os.Getenv("LOUPE_DATABASE_URL"),
		HTTPAddr:         envOrDefault("LOUPE_HTTP_ADDR", ":8080"),
		LogAPIURL:        os.Getenv("LOUPE_LOG_API_URL"),
		LogAPIToken:      os.Getenv("LOUPE_LOG_API_TOKEN"),
		NATSURL:          os.Getenv("LOUPE_NATS_URL"),
		AuthToken:        os.Getenv("LOUPE_AUTH_TOKEN"),
		ExportS3Bucket:   os.Getenv("LOUPE_EXPORT_S3_BUCKET"),
		ExportS3Endpoint: os.Getenv("LOUPE_EXPORT_S3_ENDPOINT"),
		ExportS3Region:   envOrDefault("LOUPE_EXPORT_S3_REGION", "us-east-1"),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("LOUPE_DATABASE_URL is required")
	}
	if c.LogAPIURL == "" {
		return nil, fmt.Errorf("LOUPE_LOG_API_URL is required")
	}
	return c, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
