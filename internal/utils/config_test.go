package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "STORE_DRIVER", "DB_LOCATION", "MONGO_URI", "SECRET_ACCESS_KEY", "JWT_SECRET",
		"TOKEN_TTL", "BCRYPT_COST", "USERNAME_MAX_ATTEMPTS", "REDIS_URL",
	} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.ServerPort)
	assert.Equal(t, StoreDriverMongo, cfg.StoreDriver)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Empty(t, cfg.Auth.JWTSecret, "missing secret must not be defaulted")
	assert.Equal(t, 100*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, 3, cfg.Auth.UsernameMaxAttempts)
	assert.Empty(t, cfg.Redis.URL)
}

func TestLoadConfigReadsOriginalVariableNames(t *testing.T) {
	t.Setenv("DB_LOCATION", "mongodb://db.internal:27017")
	t.Setenv("MONGO_URI", "mongodb://ignored:27017")
	t.Setenv("SECRET_ACCESS_KEY", " s3cret ")
	t.Setenv("JWT_SECRET", "fallback")
	t.Setenv("USERNAME_MAX_ATTEMPTS", "0")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "mongodb://db.internal:27017", cfg.Mongo.URI)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 1, cfg.Auth.UsernameMaxAttempts)
}

func TestLoadConfigFallsBackToJWTSecret(t *testing.T) {
	t.Setenv("SECRET_ACCESS_KEY", "")
	t.Setenv("JWT_SECRET", "fallback")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "fallback", cfg.Auth.JWTSecret)
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_DRIVER")
}

func TestLoadEnvFilesIgnoresMissingFile(t *testing.T) {
	err := LoadEnvFiles(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestLoadEnvFilesReadsValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("WWB_BLOG_TEST_VALUE=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("WWB_BLOG_TEST_VALUE") })

	require.NoError(t, LoadEnvFiles(path))
	assert.Equal(t, "from-file", os.Getenv("WWB_BLOG_TEST_VALUE"))
}

func TestBuildDSN(t *testing.T) {
	cfg := PostgresConfig{User: "blog", Password: "pw", Host: "db", Port: 5432, Database: "accounts"}
	assert.Equal(t, "postgres://blog:pw@db:5432/accounts", cfg.BuildDSN())

	cfg.DSN = "postgres://override"
	assert.Equal(t, "postgres://override", cfg.BuildDSN())
}
