package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"INVOICE_PREFIX", "ES_INDEX", "LOGIN_RATE_PER_MIN", "KPI_CACHE_TTL", "CSRF_ENABLED", "DB_DRIVER"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	assert.Equal(t, "SANDP", cfg.InvoicePrefix)
	assert.Equal(t, "products", cfg.ESIndex)
	assert.Equal(t, 10, cfg.LoginRatePerMin)
	assert.Equal(t, 30*time.Second, cfg.KPICacheTTL)
	assert.True(t, cfg.CSRFEnabled)
	assert.Equal(t, "pgx", cfg.DatabaseDriver)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("INVOICE_PREFIX", "ACME")
	t.Setenv("SELLER_GSTIN", "27abcde1234f1z5")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("DB_DRIVER", "sqlite")

	cfg := Load()
	assert.Equal(t, "ACME", cfg.InvoicePrefix)
	assert.Equal(t, "27ABCDE1234F1Z5", cfg.Seller.GSTIN)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
}

func TestLoadEnvFile_DoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	assert.NoError(t, os.WriteFile(path, []byte("MEDSTOCK_TEST_A=file\nMEDSTOCK_TEST_B=file\n"), 0o600))

	t.Setenv("MEDSTOCK_TEST_A", "env")
	t.Setenv("MEDSTOCK_TEST_B", "")
	os.Unsetenv("MEDSTOCK_TEST_B")

	LoadEnvFile(path)
	assert.Equal(t, "env", os.Getenv("MEDSTOCK_TEST_A"))
	assert.Equal(t, "file", os.Getenv("MEDSTOCK_TEST_B"))
	os.Unsetenv("MEDSTOCK_TEST_B")

	LoadEnvFile(filepath.Join(dir, "missing.env"))
}

func TestValidate(t *testing.T) {
	cfg := ServiceConfig{LoginRatePerMin: 10}
	cfg.ServerPort = 8080
	cfg.DatabaseDriver = "sqlite"
	cfg.DatabaseURL = ":memory:"

	assert.NoError(t, cfg.ValidateStore())

	err := cfg.ValidateServe()
	assert.ErrorContains(t, err, "JWT_SECRET is required")

	cfg.JWTSecret = []byte("short")
	assert.ErrorContains(t, cfg.ValidateServe(), "JWT_SECRET must be at least 16 bytes")

	cfg.JWTSecret = []byte("0123456789abcdef")
	assert.NoError(t, cfg.ValidateServe())

	cfg.DatabaseDriver = "mysql"
	cfg.DatabaseURL = ""
	err = cfg.ValidateStore()
	assert.ErrorContains(t, err, "DB_DRIVER")
	assert.ErrorContains(t, err, "DATABASE_URL is required")
}
