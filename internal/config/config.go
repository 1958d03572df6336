package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	BackendSQLite   = "sqlite"
	BackendSupabase = "supabase"
)

type Config struct {
	TelegramToken string

	// Storage backend selection
	StorageBackend string
	SQLiteDBPath   string
	SupabaseURL    string
	SupabaseKey    string

	// Display
	Currency string
}

// Load reads configuration from the environment, with .env as an optional
// overlay for local runs.
func Load() (*Config, error) {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		StorageBackend: getEnv("STORAGE_BACKEND", BackendSQLite),
		SQLiteDBPath:   getEnv("SQLITE_DB_PATH", "./data/expenses.db"),
		SupabaseURL:    os.Getenv("SUPABASE_URL"),
		SupabaseKey:    os.Getenv("SUPABASE_KEY"),
		Currency:       getEnv("CURRENCY", "DZD"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string

	if c.TelegramToken == "" {
		errs = append(errs, "TELEGRAM_TOKEN is required")
	}

	switch c.StorageBackend {
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLITE_DB_PATH cannot be empty when using the sqlite backend")
		}
	case BackendSupabase:
		if c.SupabaseURL == "" {
			errs = append(errs, "SUPABASE_URL is required when using the supabase backend")
		}
		if c.SupabaseKey == "" {
			errs = append(errs, "SUPABASE_KEY is required when using the supabase backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid storage backend %q: must be %q or %q",
			c.StorageBackend, BackendSQLite, BackendSupabase))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
