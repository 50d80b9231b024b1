package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting read from the environment.
type Config struct {
	Port              string
	GeminiAPIKey      string
	GeminiModel       string
	StoreDriver       string
	StorePath         string
	WebhookURL        string
	TurnTimeout       time.Duration
	MaxToolIterations int
	LogLevel          string
	LogFormat         string
	GinMode           string
}

// LoadDotEnv loads .env.local and .env when present. Variables already set in
// the environment win.
func LoadDotEnv() error {
	for _, name := range []string{".env.local", ".env"} {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	return nil
}

// Load reads the configuration through lookupEnv, which has the signature of
// os.LookupEnv. All invalid variables are reported together.
func Load(lookupEnv func(string) (string, bool)) (Config, error) {
	get := func(name, fallback string) string {
		if v, ok := lookupEnv(name); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return fallback
	}

	cfg := Config{
		Port:         get("PORT", "8080"),
		GeminiAPIKey: get("GEMINI_API_KEY", ""),
		GeminiModel:  get("GEMINI_MODEL", "gemini-2.5-flash"),
		StoreDriver:  get("STORE_DRIVER", "bolt"),
		StorePath:    get("STORE_PATH", "icp-builder.db"),
		WebhookURL:   get("WEBHOOK_URL", ""),
		LogLevel:     get("LOG_LEVEL", "info"),
		LogFormat:    get("LOG_FORMAT", "json"),
		GinMode:      get("GIN_MODE", "release"),
	}

	var errs []error

	timeout, err := time.ParseDuration(get("TURN_TIMEOUT", "30s"))
	if err != nil || timeout <= 0 {
		errs = append(errs, fmt.Errorf("TURN_TIMEOUT must be a positive duration"))
	}
	cfg.TurnTimeout = timeout

	iterations, err := strconv.Atoi(get("MAX_TOOL_ITERATIONS", "10"))
	if err != nil || iterations <= 0 {
		errs = append(errs, fmt.Errorf("MAX_TOOL_ITERATIONS must be a positive integer"))
	}
	cfg.MaxToolIterations = iterations

	switch cfg.StoreDriver {
	case "bolt", "sqlite", "memory":
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be one of bolt, sqlite, memory; got %q", cfg.StoreDriver))
	}

	switch cfg.LogFormat {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or console; got %q", cfg.LogFormat))
	}

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}
