// Package config reads runtime settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendMySQL  = "mysql"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds runtime configuration for the terminal.
type Config struct {
	AppEnv       string   `envconfig:"APP_ENV" default:"development"`
	AppAddr      string   `envconfig:"APP_ADDR" default:":8080"`
	BaseURL      string   `envconfig:"BASE_URL" default:"http://localhost:8080"`
	AllowOrigins []string `envconfig:"ALLOW_ORIGINS" default:"http://localhost:5173"`

	StoreBackend  string `envconfig:"STORE_BACKEND" default:"sqlite"`
	DBDSN         string `envconfig:"DB_DSN" default:"pos.db"`
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	JWTSecret  string        `envconfig:"JWT_SECRET"`
	TokenTTL   time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	BcryptCost int           `envconfig:"BCRYPT_COST" default:"10"`
	LoginRate  string        `envconfig:"LOGIN_RATE" default:"10-M"`
	UploadDir  string        `envconfig:"UPLOAD_DIR" default:"./uploads"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
}

// Load reads the given .env files (".env" when none are named), then the
// environment. Variables already set in the environment win over file values.
// Missing files are ignored.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.StoreBackend = strings.ToLower(strings.TrimSpace(c.StoreBackend))
	switch c.StoreBackend {
	case BackendSQLite, BackendMySQL, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("config: unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.IsProduction() && c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET must be provided in production")
	}
	return nil
}

// IsProduction returns true when the terminal runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
