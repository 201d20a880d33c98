package config

import (
	"os"
	"strings"
	"time"
)

// CatalogConfig holds configuration for the catalog backend
type CatalogConfig struct {
	Name        string
	Instances   []string
	Timeout     time.Duration
	HealthCheck string
}

// GatewayConfig holds the main gateway configuration
type GatewayConfig struct {
	Port          string
	Catalog       CatalogConfig
	RedisAddr     string
	RedisPassword string
	KafkaBrokers  []string
	CacheTTL      time.Duration
}

// LoadConfig loads the gateway configuration from the environment.
// CATALOG_SERVICE_URLS accepts a comma separated list of instances.
func LoadConfig() *GatewayConfig {
	cacheTTL := 5 * time.Minute
	if raw := os.Getenv("CACHE_TTL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			cacheTTL = d
		}
	}

	return &GatewayConfig{
		Port: getEnv("GATEWAY_PORT", "8000"),
		Catalog: CatalogConfig{
			Name:        "catalog-service",
			Instances:   splitList(getEnv("CATALOG_SERVICE_URLS", "http://localhost:8080")),
			Timeout:     30 * time.Second,
			HealthCheck: "/health",
		},
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:  splitList(getEnv("KAFKA_BROKERS", "")),
		CacheTTL:      cacheTTL,
	}
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
