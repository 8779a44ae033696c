package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV(t *testing.T) {
	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"a:9092", "b:9092"}, CSV(" a:9092 , ,b:9092"))
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("MEDSTOCK_TEST_INT", "42")
	t.Setenv("MEDSTOCK_TEST_BAD_INT", "forty")
	t.Setenv("MEDSTOCK_TEST_BOOL", "false")
	t.Setenv("MEDSTOCK_TEST_DUR", "90s")

	assert.Equal(t, 42, EnvIntDefault("MEDSTOCK_TEST_INT", 1))
	assert.Equal(t, 1, EnvIntDefault("MEDSTOCK_TEST_BAD_INT", 1))
	assert.Equal(t, 7, EnvIntDefault("MEDSTOCK_TEST_MISSING", 7))
	assert.False(t, EnvBoolDefault("MEDSTOCK_TEST_BOOL", true))
	assert.True(t, EnvBoolDefault("MEDSTOCK_TEST_MISSING", true))
	assert.Equal(t, 90*time.Second, EnvDurationDefault("MEDSTOCK_TEST_DUR", time.Second))
	assert.Equal(t, "fallback", EnvDefault("MEDSTOCK_TEST_MISSING", "fallback"))
}

func TestLoad(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg := Load()
	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, []byte("s3cret"), cfg.JWTSecret)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.CookieSecure)
}

func TestProblems(t *testing.T) {
	var p Problems
	p.NonEmpty(" ", "DATABASE_URL")
	p.NonEmptyBytes(nil, "JWT_SECRET")
	p.MinBytes([]byte("abc"), 16, "JWT_SECRET")
	p.MinBytes(nil, 16, "UNSET_IS_NOT_SHORT")
	p.OneOf("mysql", "DB_DRIVER", "pgx", "sqlite")
	p.OneOf("pgx", "DB_DRIVER", "pgx", "sqlite")
	p.Positive(0, "SERVER_PORT")

	err := p.Err()
	require.Error(t, err)
	assert.Len(t, p, 5)
	assert.Contains(t, err.Error(), "DATABASE_URL is required")
	assert.Contains(t, err.Error(), `DB_DRIVER="mysql" must be one of pgx, sqlite`)
	assert.NotContains(t, err.Error(), "UNSET_IS_NOT_SHORT")

	var ok Problems
	ok.NonEmpty("postgres://x", "DATABASE_URL")
	assert.NoError(t, ok.Err())
}
