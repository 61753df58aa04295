package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Env       string // "production" or "development"
	DBPath    string // badger directory
	Addr      string // HTTP listen address
	BaseIRI   string // default base for relative IRIs
	BatchSize int    // triples per store transaction
	Workers   int    // concurrent conversions
}

// Load reads configuration from environment variables, after loading an
// optional .env file from the working directory.
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	batchSize, err := getEnvInt("YARS_BATCH_SIZE", 1000)
	if err != nil {
		return nil, err
	}
	workers, err := getEnvInt("YARS_WORKERS", 4)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Env:       getEnv("YARS_ENV", "development"),
		DBPath:    getEnv("YARS_DB_PATH", "./yars_data"),
		Addr:      getEnv("YARS_ADDR", "localhost:8080"),
		BaseIRI:   getEnv("YARS_BASE_IRI", "http://localhost/"),
		BatchSize: batchSize,
		Workers:   workers,
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("YARS_DB_PATH is required")
	}
	if c.BaseIRI == "" {
		return fmt.Errorf("YARS_BASE_IRI must not be empty")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("YARS_BATCH_SIZE must be positive, got %d", c.BatchSize)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("YARS_WORKERS must be positive, got %d", c.Workers)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, value)
	}
	return n, nil
}
