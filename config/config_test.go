package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"HTTP_ADDR",
		"HTTP_RATE_LIMIT",
		"HTTP_RATE_BURST",
		"STORE_DRIVER",
		"DATABASE_URL",
		"LOG_LEVEL",
		"SEATING_MAX_SEATS",
		"BREAK_DURATION_MINS",
		"METRICS_ENABLED",
	} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, dir string, name string, content string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := Load(filepath.Join(dir, "missing.yaml"), filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	path := writeFile(t, dir, "config.yaml", `
http:
  addr: ":9000"
  rate_limit: 5
store:
  driver: sqlite
  dsn: /var/lib/poker.db
log:
  level: debug
seating:
  max_seats: 10
metrics:
  enabled: false
`)

	t.Setenv("HTTP_ADDR", ":9100")
	t.Setenv("BREAK_DURATION_MINS", "20")

	cfg, err := Load(path, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.HTTP.Addr)
	assert.Equal(t, 5.0, cfg.HTTP.RateLimit)
	assert.Equal(t, 40, cfg.HTTP.RateBurst)
	assert.Equal(t, StoreDriver_SQLite, cfg.Store.Driver)
	assert.Equal(t, "/var/lib/poker.db", cfg.Store.DSN)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 10, cfg.Seating.MaxSeats)
	assert.Equal(t, 20, cfg.Clock.BreakDurationMins)
	assert.False(t, cfg.Metrics.Enabled)

	assert.Equal(t, logrus.DebugLevel, cfg.NewLogger().GetLevel())
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	// godotenv does not override variables that are already set, even when empty
	os.Unsetenv("STORE_DRIVER")
	os.Unsetenv("DATABASE_URL")

	envFile := writeFile(t, dir, ".env", "STORE_DRIVER=postgres\nDATABASE_URL=postgres://poker@localhost/poker\n")
	t.Cleanup(func() {
		os.Unsetenv("STORE_DRIVER")
		os.Unsetenv("DATABASE_URL")
	})

	cfg, err := Load("", envFile)
	require.NoError(t, err)
	assert.Equal(t, StoreDriver_Postgres, cfg.Store.Driver)
	assert.Equal(t, "postgres://poker@localhost/poker", cfg.Store.DSN)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	missingEnv := filepath.Join(dir, "missing.env")

	testCases := []struct {
		name string
		env  map[string]string
		err  error
	}{
		{
			name: "unknown driver",
			env:  map[string]string{"STORE_DRIVER": "mysql"},
			err:  ErrUnknownStoreDriver,
		},
		{
			name: "postgres without dsn",
			env:  map[string]string{"STORE_DRIVER": "postgres"},
			err:  ErrMissingDSN,
		},
		{
			name: "bad number",
			env:  map[string]string{"SEATING_MAX_SEATS": "nine"},
		},
		{
			name: "bad level",
			env:  map[string]string{"LOG_LEVEL": "loud"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			_, err := Load("", missingEnv)
			require.Error(t, err)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
			}
		})
	}
}
