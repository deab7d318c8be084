// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Upload      UploadConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

type DatabaseConfig struct {
	Driver string

	// SQLite
	Path          string
	BusyTimeoutMS int

	// Postgres
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string

	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

type UploadConfig struct {
	MaxImageBytes    int64
	MaxImagesPerItem int
	RatePerSecond    float64
	RateBurst        int
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Driver:        getEnv("DB_DRIVER", DriverSQLite),
			Path:          getEnv("DB_PATH", "kb.db"),
			BusyTimeoutMS: getEnvAsInt("DB_BUSY_TIMEOUT_MS", 5000),
			Host:          getEnv("DB_HOST", "localhost"),
			Port:          getEnv("DB_PORT", "5432"),
			User:          getEnv("DB_USER", "postgres"),
			Password:      getEnv("DB_PASSWORD", ""),
			Database:      getEnv("DB_NAME", "product_kb"),
			SSLMode:       getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:  getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:  getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:   getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:      getEnv("DB_LOG_LEVEL", "silent"),
		},
		Upload: UploadConfig{
			MaxImageBytes:    getEnvAsInt64("UPLOAD_MAX_IMAGE_BYTES", 4<<20),
			MaxImagesPerItem: getEnvAsInt("UPLOAD_MAX_IMAGES_PER_ITEM", 15),
			RatePerSecond:    getEnvAsFloat("UPLOAD_RATE_PER_SECOND", 5),
			RateBurst:        getEnvAsInt("UPLOAD_RATE_BURST", 10),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	if c.Database.Driver == DriverPostgres && c.Database.Password == "" && c.Environment == "production" {
		return fmt.Errorf("database password is required in production")
	}

	if c.Upload.MaxImageBytes <= 0 || c.Upload.MaxImagesPerItem <= 0 {
		return fmt.Errorf("upload limits must be positive")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
