package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const defaultJWTSecret = "your-super-secret-key-change-in-production"

// Config holds runtime configuration read from the environment.
type Config struct {
	AppName string `envconfig:"APP_NAME" default:"Inventory Multi-Tenant v1.0"`
	AppEnv  string `envconfig:"APP_ENV" default:"development"`
	Port    string `envconfig:"PORT" default:"3000"`

	DB  DBConfig  `ignored:"true"`
	JWT JWTConfig `ignored:"true"`
	Log LogConfig `ignored:"true"`

	MetricsPrefix string `envconfig:"METRICS_PREFIX" default:"inventory"`

	Seed SeedConfig `ignored:"true"`
}

type DBConfig struct {
	Driver     string `envconfig:"DB_DRIVER" default:"postgres"`
	URL        string `envconfig:"DATABASE_URL"`
	Host       string `envconfig:"DB_HOST" default:"localhost"`
	Port       string `envconfig:"DB_PORT" default:"5432"`
	User       string `envconfig:"DB_USER" default:"postgres"`
	Password   string `envconfig:"DB_PASSWORD"`
	Name       string `envconfig:"DB_NAME" default:"inventory"`
	TimeZone   string `envconfig:"DB_TIMEZONE" default:"UTC"`
	SQLitePath string `envconfig:"DB_SQLITE_PATH" default:"data/inventory.db"`
	LogLevel   string `envconfig:"DB_LOG_LEVEL" default:"warn"`
}

type JWTConfig struct {
	Secret string        `envconfig:"JWT_SECRET" default:"your-super-secret-key-change-in-production"`
	TTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`
	Issuer string        `envconfig:"JWT_ISSUER" default:"go-inventory-mt"`
}

type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// SeedConfig names the bootstrap super admin created on an empty database.
type SeedConfig struct {
	Username string `envconfig:"SEED_ADMIN_USERNAME" default:"superadmin"`
	Email    string `envconfig:"SEED_ADMIN_EMAIL" default:"admin@example.com"`
	Password string `envconfig:"SEED_ADMIN_PASSWORD" default:"admin123"`
}

// Load reads configuration from environment variables, after loading a .env
// file when one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	for _, spec := range []interface{}{&cfg, &cfg.DB, &cfg.JWT, &cfg.Log, &cfg.Seed} {
		if err := envconfig.Process("", spec); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings that are unsafe or unusable.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if c.IsProduction() && c.JWT.Secret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.JWT.TTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// PostgresDSN returns DATABASE_URL or a DSN assembled from the DB_* parts.
func (c DBConfig) PostgresDSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.TimeZone,
	)
}
