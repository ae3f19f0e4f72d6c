package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("HF_INT", "42")
	t.Setenv("HF_BAD_INT", "forty")
	t.Setenv("HF_DUR", "90s")
	t.Setenv("HF_BOOL", "true")
	t.Setenv("HF_EMPTY", "")

	assert.Equal(t, 42, GetEnvAsInt("HF_INT", 1))
	assert.Equal(t, 1, GetEnvAsInt("HF_BAD_INT", 1))
	assert.Equal(t, 7, GetEnvAsInt("HF_MISSING", 7))
	assert.Equal(t, 90*time.Second, GetEnvAsDuration("HF_DUR", time.Second))
	assert.True(t, GetEnvAsBool("HF_BOOL", false))
	assert.Equal(t, "fallback", GetEnvAsString("HF_EMPTY", "fallback"))

	t.Setenv("HF_LIST", " https://a.dev, ,https://b.dev ")
	assert.Equal(t, []string{"https://a.dev", "https://b.dev"}, GetEnvAsList("HF_LIST"))
	assert.Nil(t, GetEnvAsList("HF_EMPTY"))
}

func TestFromEnv(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")

		cfg, err := FromEnv()
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, StoragePostgres, cfg.Storage)
		assert.Equal(t, "pgx", cfg.Database.Driver)
		assert.Equal(t, time.UTC, cfg.Location)
		assert.Equal(t, 24*time.Hour, cfg.JWTDuration)
		assert.Equal(t, 100, cfg.RateLimit)
		assert.False(t, cfg.Redis.Enabled)
		assert.Equal(t, 30*time.Second, cfg.AI.Timeout)
	})

	t.Run("Overrides", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("STORAGE_DRIVER", "SQLite")
		t.Setenv("SQLITE_PATH", "/tmp/hf.db")
		t.Setenv("HABITFLOW_TZ", "Europe/Rome")
		t.Setenv("REDIS_ENABLED", "1")
		t.Setenv("OPENAI_API_KEY", "sk-test")
		t.Setenv("AI_PROVIDER", "openai")

		cfg, err := FromEnv()
		require.NoError(t, err)

		assert.Equal(t, StorageSQLite, cfg.Storage)
		assert.Equal(t, "/tmp/hf.db", cfg.SQLitePath)
		assert.Equal(t, "Europe/Rome", cfg.Location.String())
		assert.True(t, cfg.Redis.Enabled)
		assert.Equal(t, "openai", cfg.AI.Default)
		assert.Equal(t, "sk-test", cfg.AI.OpenAI.APIKey)
	})

	t.Run("Missing JWT secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")

		_, err := FromEnv()
		assert.ErrorIs(t, err, ErrMissingJWTSecret)
	})

	t.Run("Unknown storage", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("STORAGE_DRIVER", "mongo")

		_, err := FromEnv()
		assert.ErrorIs(t, err, ErrInvalidStorage)
	})

	t.Run("Bad timezone", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("HABITFLOW_TZ", "Mars/Olympus")

		_, err := FromEnv()
		assert.Error(t, err)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{User: "u", Password: "p", Host: "db", Port: "5432", Name: "hf", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/hf?sslmode=disable", d.DSN())
}

func TestXDGPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")

	assert.Equal(t, filepath.Join("/cfg", "habitflow", "config.toml"), DefaultConfigPath())
	assert.Equal(t, filepath.Join("/data", "habitflow", "habitflow.db"), DefaultDBPath())
}

func TestLoadConfig(t *testing.T) {
	t.Run("Missing file", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
		require.NoError(t, err)
		assert.Nil(t, cfg.General.DBPath)
	})

	t.Run("Empty path", func(t *testing.T) {
		_, err := LoadConfig("")
		assert.Error(t, err)
	})

	t.Run("Parses values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		content := `
[general]
db-path = "/tmp/custom.db"
timezone = "UTC"

[ai]
provider = "anthropic"
timeout = "5s"

[ai.anthropic]
api-key = "file-key"
model = "claude-test"

[display]
heatmap-days = 14
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, "/tmp/custom.db", cfg.DBPathOr("fallback"))
		assert.Equal(t, 14, cfg.HeatmapDaysOr(30))

		loc, err := cfg.Location()
		require.NoError(t, err)
		assert.Equal(t, time.UTC, loc)

		t.Setenv("OPENAI_API_KEY", "env-key")
		aiCfg, err := cfg.AIConfig()
		require.NoError(t, err)
		assert.Equal(t, "anthropic", aiCfg.Default)
		assert.Equal(t, 5*time.Second, aiCfg.Timeout)
		assert.Equal(t, "file-key", aiCfg.Anthropic.APIKey)
		assert.Equal(t, "claude-test", aiCfg.Anthropic.Model)
		assert.Equal(t, "env-key", aiCfg.OpenAI.APIKey)
	})

	t.Run("Malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte("[general\n"), 0o600))

		_, err := LoadConfig(path)
		assert.Error(t, err)
	})
}

func TestFileConfig_Fallbacks(t *testing.T) {
	var cfg FileConfig
	assert.Equal(t, "fallback.db", cfg.DBPathOr("fallback.db"))
	assert.Equal(t, 30, cfg.HeatmapDaysOr(30))

	bad := "5 minutes"
	cfg.AI.Timeout = &bad
	_, err := cfg.AIConfig()
	assert.Error(t, err)
}
