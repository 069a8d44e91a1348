package config

import (
	"os"
	"strconv"

	"memoria-server/internal/domain"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort         string
	LogLevel           string
	SupabaseURL        string
	SupabaseKey        string
	SupabaseServiceKey string
	BulkBucket         string
	CDNUploadURL       string
	CDNUploadPreset    string
	StoragePolicy      domain.StoragePolicy
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	return &AppConfig{
		// Cloud Run (and many PaaS) provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort:         getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8080")),
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		SupabaseURL:        getEnvOrDefault("SUPABASE_URL", ""),
		SupabaseKey:        getEnvOrDefault("SUPABASE_ANON_KEY", ""),
		SupabaseServiceKey: getEnvOrDefault("SUPABASE_SERVICE_KEY", ""),
		BulkBucket:         getEnvOrDefault("BULK_STORAGE_BUCKET", "brochures"),
		CDNUploadURL:       getEnvOrDefault("CDN_UPLOAD_URL", ""),
		CDNUploadPreset:    getEnvOrDefault("CDN_UPLOAD_PRESET", ""),
		StoragePolicy: storagePolicyFromEnv(),
	}
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetSupabaseURL returns the Supabase URL
func (c *AppConfig) GetSupabaseURL() string {
	return c.SupabaseURL
}

// GetSupabaseKey returns the Supabase anon key
func (c *AppConfig) GetSupabaseKey() string {
	return c.SupabaseKey
}

// GetSupabaseServiceKey returns the elevated service-role key, if any
func (c *AppConfig) GetSupabaseServiceKey() string {
	return c.SupabaseServiceKey
}

// GetBulkBucket returns the bucket name used by the bulk storage backend
func (c *AppConfig) GetBulkBucket() string {
	return c.BulkBucket
}

// GetCDNUploadURL returns the CDN unsigned-upload endpoint
func (c *AppConfig) GetCDNUploadURL() string {
	return c.CDNUploadURL
}

// GetCDNUploadPreset returns the CDN unsigned-upload preset name
func (c *AppConfig) GetCDNUploadPreset() string {
	return c.CDNUploadPreset
}

// GetStoragePolicy returns the size thresholds driving provider routing
func (c *AppConfig) GetStoragePolicy() domain.StoragePolicy {
	return c.StoragePolicy
}

// Helper functions for environment variable handling
// storagePolicyFromEnv starts from the production thresholds and lets the
// environment override each one independently.
func storagePolicyFromEnv() domain.StoragePolicy {
	policy := domain.DefaultStoragePolicy()
	policy.RoutingThresholdMB = getEnvFloatOrDefault("ROUTING_THRESHOLD_MB", policy.RoutingThresholdMB)
	policy.CDNMaxSizeMB = getEnvFloatOrDefault("CDN_MAX_SIZE_MB", policy.CDNMaxSizeMB)
	policy.BulkMaxSizeMB = getEnvFloatOrDefault("BULK_MAX_SIZE_MB", policy.BulkMaxSizeMB)
	return policy
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
