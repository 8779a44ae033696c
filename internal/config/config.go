package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/sandp/medstock/pkg/config"
	"github.com/sandp/medstock/pkg/db"
)

type Seller struct {
	Name        string
	Address     string
	GSTIN       string
	DrugLicense string
}

type ServiceConfig struct {
	config.Config

	CSRFEnabled   bool
	InvoicePrefix string
	Seller        Seller

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	RedisURL    string
	KPICacheTTL time.Duration

	MongoLogURI string

	LoginRatePerMin int

	AdminEmail    string
	AdminPassword string
}

// LoadEnvFile reads key=value pairs from path into the process environment.
// Variables that are already set win.
func LoadEnvFile(path string) {
	if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: could not load %s: %v", path, err)
	}
}

// Load reads the full service configuration without enforcing required keys.
func Load() ServiceConfig {
	return ServiceConfig{
		Config: config.Load(),

		CSRFEnabled:   config.EnvBoolDefault("CSRF_ENABLED", true),
		InvoicePrefix: config.EnvDefault("INVOICE_PREFIX", "SANDP"),
		Seller: Seller{
			Name:        config.EnvDefault("SELLER_NAME", "S&P Pharma Distributors"),
			Address:     os.Getenv("SELLER_ADDRESS"),
			GSTIN:       strings.ToUpper(os.Getenv("SELLER_GSTIN")),
			DrugLicense: os.Getenv("SELLER_DRUG_LICENSE"),
		},

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    config.EnvDefault("ES_INDEX", "products"),

		RedisURL:    os.Getenv("REDIS_URL"),
		KPICacheTTL: config.EnvDurationDefault("KPI_CACHE_TTL", 30*time.Second),

		MongoLogURI: os.Getenv("MONGO_LOG_URI"),

		LoginRatePerMin: config.EnvIntDefault("LOGIN_RATE_PER_MIN", 10),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
}

const minJWTSecretBytes = 16

// ValidateServe checks what the HTTP server cannot start without.
func (c ServiceConfig) ValidateServe() error {
	p := c.storeProblems()
	p.NonEmptyBytes(c.JWTSecret, "JWT_SECRET")
	p.MinBytes(c.JWTSecret, minJWTSecretBytes, "JWT_SECRET")
	p.Positive(c.ServerPort, "SERVER_PORT")
	p.Positive(c.LoginRatePerMin, "LOGIN_RATE_PER_MIN")
	return p.Err()
}

// ValidateStore checks the settings needed to open the database.
func (c ServiceConfig) ValidateStore() error {
	p := c.storeProblems()
	return p.Err()
}

func (c ServiceConfig) storeProblems() config.Problems {
	var p config.Problems
	p.OneOf(c.DatabaseDriver, "DB_DRIVER", db.DriverPgx, db.DriverPq, db.DriverSQLite)
	p.NonEmpty(c.DatabaseURL, "DATABASE_URL")
	return p
}
