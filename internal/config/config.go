package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	GinMode     string
	LogLevel    string
	LogFormat   string
	DatasetPath string
	Estimators  int
	Seed        uint64
	TestSize    float64
	TopFeatures int
	StrictInput bool
	DatabaseURL string
	EnableDB    bool
}

// Load reads the environment, after merging a .env file when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "release"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
		DatasetPath: os.Getenv("DATASET_PATH"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		StrictInput: strings.EqualFold(getEnv("STRICT_INPUT", "false"), "true"),
		EnableDB:    strings.EqualFold(getEnv("ENABLE_DB", "false"), "true"),
	}

	var err error
	if cfg.Estimators, err = getInt("N_ESTIMATORS", 200); err != nil {
		return nil, err
	}
	if cfg.TopFeatures, err = getInt("TOP_FEATURES", 6); err != nil {
		return nil, err
	}
	if cfg.Seed, err = strconv.ParseUint(getEnv("RANDOM_SEED", "42"), 10, 64); err != nil {
		return nil, fmt.Errorf("RANDOM_SEED: %w", err)
	}
	if cfg.TestSize, err = strconv.ParseFloat(getEnv("TEST_SIZE", "0.2"), 64); err != nil {
		return nil, fmt.Errorf("TEST_SIZE: %w", err)
	}

	if cfg.Estimators < 1 {
		return nil, fmt.Errorf("N_ESTIMATORS must be positive, got %d", cfg.Estimators)
	}
	if cfg.TestSize <= 0 || cfg.TestSize >= 1 {
		return nil, fmt.Errorf("TEST_SIZE must be between 0 and 1, got %v", cfg.TestSize)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}
	if cfg.EnableDB && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when ENABLE_DB=true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
