package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "test-token")
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("SQLITE_DB_PATH", "")
	t.Setenv("CURRENCY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.StorageBackend)
	assert.Equal(t, "./data/expenses.db", cfg.SQLiteDBPath)
	assert.Equal(t, "DZD", cfg.Currency)
}

func TestLoadMissingToken(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_TOKEN")
}

func TestValidateSupabaseBackend(t *testing.T) {
	cfg := &Config{
		TelegramToken:  "tok",
		StorageBackend: BackendSupabase,
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SUPABASE_URL")
	assert.Contains(t, err.Error(), "SUPABASE_KEY")

	cfg.SupabaseURL = "https://example.supabase.co"
	cfg.SupabaseKey = "key"
	assert.NoError(t, cfg.Validate())
}

func TestValidateUnknownBackend(t *testing.T) {
	cfg := &Config{TelegramToken: "tok", StorageBackend: "redis"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid storage backend")
}
