package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"SERVER_PORT", "ALGORITHM", "ACCESS_TOKEN_EXPIRE_MINUTES", "REQUEST_EXPIRY_DAYS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "HS256", cfg.Auth.Algorithm)
	assert.Equal(t, 60*time.Minute, cfg.Auth.AccessExpiry)
	assert.Equal(t, 14*24*time.Hour, cfg.Requests.ExpiryAfter)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SECRET_KEY", "prodsecret")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "15")
	t.Setenv("DATABASE_URL", "postgres://app:pw@db:5432/marketplace?sslmode=require")
	t.Setenv("REQUEST_EXPIRY_DAYS", "7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "prodsecret", cfg.Auth.Secret)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessExpiry)
	assert.Equal(t, "postgres://app:pw@db:5432/marketplace?sslmode=require", cfg.Database.GetDatabaseURL())
	assert.Equal(t, 7*24*time.Hour, cfg.Requests.ExpiryAfter)
}

func TestLoadRejectsUnknownAlgorithm(t *testing.T) {
	t.Setenv("ALGORITHM", "none")

	_, err := Load()
	assert.Error(t, err)
}

func TestParseOrigins(t *testing.T) {
	// JSON array form.
	origins := parseOrigins(`["http://localhost:5173","https://energienachweise.com"]`)
	assert.Equal(t, []string{"http://localhost:5173", "https://energienachweise.com"}, origins)

	// Comma-separated form, with duplicates and whitespace.
	origins = parseOrigins("http://a.test, http://b.test,http://a.test")
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, origins)
}

func TestDatabaseURLFromParts(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "app",
		Password: "pw",
		DBName:   "marketplace",
		SSLMode:  "require",
	}
	assert.Equal(t, "postgres://app:pw@db.internal:5433/marketplace?sslmode=require", cfg.GetDatabaseURL())
}
