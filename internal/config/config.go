package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Geo      GeoConfig
	Planner  PlannerConfig
	CORS     CORSConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// GeoConfig holds external geocoding/distance provider configuration
type GeoConfig struct {
	Mode    string // "dev" returns estimates only, "production" calls the provider
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// PlannerConfig holds trip planning behavior configuration
type PlannerConfig struct {
	DefaultVehicleCapacity int
	StopIntervalMinutes    int
	// ConflictFailOpen controls what a conflict check reports when the
	// underlying query fails: true reports "no conflict" (availability over
	// safety, matching the historical behavior), false propagates the error.
	ConflictFailOpen bool
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		Geo: GeoConfig{
			Mode:    getEnv("GEO_MODE", "dev"),
			BaseURL: getEnv("GEO_API_URL", ""),
			APIKey:  getEnv("GEO_API_KEY", ""),
			Timeout: time.Duration(getEnvAsInt("GEO_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Planner: PlannerConfig{
			DefaultVehicleCapacity: getEnvAsInt("DEFAULT_VEHICLE_CAPACITY", 40),
			StopIntervalMinutes:    getEnvAsInt("STOP_INTERVAL_MINUTES", 5),
			ConflictFailOpen:       getEnvAsBool("CONFLICT_FAIL_OPEN", true),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Planner.DefaultVehicleCapacity <= 0 {
		return fmt.Errorf("DEFAULT_VEHICLE_CAPACITY must be positive")
	}

	if c.Planner.StopIntervalMinutes <= 0 {
		return fmt.Errorf("STOP_INTERVAL_MINUTES must be positive")
	}

	// The geo provider is only required when actually called in production mode
	if c.Geo.Mode == "production" && c.Geo.BaseURL == "" {
		return fmt.Errorf("GEO_API_URL is required in production geo mode")
	}

	return nil
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid boolean value for %s, using default: %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
