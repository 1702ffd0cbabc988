// Package app wires the terminal's components together over one backing store.
package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm/logger"

	"go-pos-vault/internal/audit"
	"go-pos-vault/internal/auth"
	"go-pos-vault/internal/backup"
	"go-pos-vault/internal/config"
	"go-pos-vault/internal/database"
	"go-pos-vault/internal/repository"
	"go-pos-vault/internal/securestore"
	"go-pos-vault/internal/security"
)

// App is the composition root shared by the HTTP server and the CLI.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Backing database.Backing
	Store   *securestore.Store
	Audit   *audit.Log
	Vault   *auth.Vault
	Repo    *repository.Repository
	Backup  *backup.Codec
	Tokens  *auth.Tokens
}

// Option configures Open.
type Option func(*openOptions)

type openOptions struct {
	backing database.Backing
	clock   func() time.Time
	device  string
}

// WithBacking uses b instead of the backend named in the config.
func WithBacking(b database.Backing) Option {
	return func(o *openOptions) { o.backing = b }
}

// WithClock sets the clock for every component.
func WithClock(clock func() time.Time) Option {
	return func(o *openOptions) { o.clock = clock }
}

// WithDevice overrides the terminal id stamped into backups.
func WithDevice(id string) Option {
	return func(o *openOptions) { o.device = id }
}

// Open connects the backing and loads every component from it, seeding defaults
// on first start.
func Open(cfg *config.Config, log *slog.Logger, opts ...Option) (*App, error) {
	if log == nil {
		log = slog.Default()
	}
	o := openOptions{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	backing := o.backing
	if backing == nil {
		var err error
		if backing, err = OpenBacking(cfg, log); err != nil {
			return nil, err
		}
	}

	store := securestore.New(backing, security.NewCodec(log), log)
	auditLog := audit.New(store, audit.WithClock(o.clock))
	auditLog.Load()

	vault := auth.NewVault(store, auditLog,
		auth.WithBcryptCost(cfg.BcryptCost),
		auth.WithClock(o.clock),
		auth.WithLogger(log),
	)
	if err := vault.Load(); err != nil {
		_ = backing.Close()
		return nil, fmt.Errorf("app: load users: %w", err)
	}

	repo := repository.New(store, auditLog, repository.WithClock(o.clock), repository.WithLogger(log))
	repo.Load()

	secret := cfg.JWTSecret
	if secret == "" {
		secret = uuid.NewString()
		log.Warn("JWT_SECRET is not set, tokens will not survive a restart")
	}

	return &App{
		Config:  cfg,
		Logger:  log,
		Backing: backing,
		Store:   store,
		Audit:   auditLog,
		Vault:   vault,
		Repo:    repo,
		Backup:  backup.New(repo, backup.WithClock(o.clock), backup.WithDevice(o.device)),
		Tokens:  auth.NewTokens(secret, cfg.TokenTTL),
	}, nil
}

// OpenBacking connects the backend named by cfg.StoreBackend.
func OpenBacking(cfg *config.Config, log *slog.Logger) (database.Backing, error) {
	switch cfg.StoreBackend {
	case config.BackendSQLite, config.BackendMySQL, "":
		level := logger.Warn
		if cfg.LogLevel == "debug" {
			level = logger.Info
		}
		return database.Connect(database.Options{
			Driver:   cfg.StoreBackend,
			DSN:      cfg.DBDSN,
			Logger:   log,
			LogLevel: level,
		})
	case config.BackendRedis:
		return database.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	case config.BackendMemory:
		log.Warn("using the in-memory store, nothing will be saved")
		return database.NewMemory(), nil
	}
	return nil, fmt.Errorf("app: unknown store backend %q", cfg.StoreBackend)
}

// Reset wipes every stored key and reloads the defaults: the seeded owner,
// default settings and categories, and no products, customers or sales. The
// reset itself is the first entry of the new audit log.
func (a *App) Reset(actor string) error {
	if err := a.Store.Clear(); err != nil {
		return fmt.Errorf("app: reset: %w", err)
	}
	if err := a.Audit.Reset(); err != nil {
		return fmt.Errorf("app: reset: %w", err)
	}
	if err := a.Vault.Reset(); err != nil {
		return fmt.Errorf("app: reset: %w", err)
	}
	a.Repo.Load()

	if _, err := a.Audit.Append(audit.ActionResetData, "All data reset to factory defaults", actor); err != nil {
		return fmt.Errorf("app: reset: %w", err)
	}
	a.Logger.Warn("all data reset", "by", actor)
	return nil
}

// Close releases the backing.
func (a *App) Close() error {
	if a.Backing == nil {
		return nil
	}
	return a.Backing.Close()
}
