// Package config loads server settings from the environment, optionally
// seeded by a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Logger flavours accepted by ENV.
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

type Config struct {
	Env      string `env:"ENV" env-default:"local"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`
	Port     string `env:"PORT" env-default:"5000"`

	DB   DBConfig
	Auth AuthConfig
	HTTP HTTPConfig
}

type DBConfig struct {
	Driver   string `env:"STORE_DRIVER" env-default:"mongo"`
	User     string `env:"DB_USER" env-required:"true"`
	Password string `env:"DB_PASS" env-required:"true"`
	// Host defaults per driver, see URI.
	Host string `env:"DB_HOST"`
	Port string `env:"DB_PORT" env-default:"5432"`
	Name string `env:"DB_NAME" env-default:"foodDB"`
	// URL overrides the connection string composed from the fields above.
	URL            string        `env:"DATABASE_URL"`
	ConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" env-default:"10s"`
}

type AuthConfig struct {
	TokenSecret  string        `env:"ACCESS_TOKEN_SECRET" env-required:"true"`
	TokenTTL     time.Duration `env:"TOKEN_TTL" env-default:"1h"`
	CookieSecure bool          `env:"COOKIE_SECURE" env-default:"true"`
}

type HTTPConfig struct {
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" env-default:"http://localhost:5173" env-separator:","`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// Load reads the given .env files (a missing file is not an error) and then
// the process environment.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	// cleanenv accepts a required variable that is set but empty.
	var missing []string
	if c.DB.User == "" {
		missing = append(missing, "DB_USER")
	}
	if c.DB.Password == "" {
		missing = append(missing, "DB_PASS")
	}
	if c.Auth.TokenSecret == "" {
		missing = append(missing, "ACCESS_TOKEN_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("required environment variables are not set: %v", missing)
	}

	switch c.DB.Driver {
	case DriverMongo, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.DB.Driver)
	}

	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}

	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}

	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// Default hosts used when DB_HOST is empty.
const (
	DefaultMongoHost    = "cluster0.m2lzn.mongodb.net"
	DefaultPostgresHost = "localhost"
)

// URI builds the driver connection string.
func (c DBConfig) URI() string {
	if c.URL != "" {
		return c.URL
	}

	switch c.Driver {
	case DriverPostgres:
		if c.Host == "" {
			c.Host = DefaultPostgresHost
		}
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.User, c.Password),
			Host:     net.JoinHostPort(c.Host, c.Port),
			Path:     "/" + c.Name,
			RawQuery: "sslmode=disable",
		}
		return u.String()
	case DriverMongo:
		if c.Host == "" {
			c.Host = DefaultMongoHost
		}
		// SRV lookups need a bare host name.
		scheme := "mongodb+srv"
		if strings.Contains(c.Host, ":") {
			scheme = "mongodb"
		}
		u := url.URL{
			Scheme:   scheme,
			User:     url.UserPassword(c.User, c.Password),
			Host:     c.Host,
			Path:     "/",
			RawQuery: "retryWrites=true&w=majority&appName=Cluster0",
		}
		return u.String()
	}

	return ""
}
