package database

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Blob - one encrypted value in the key-value table
type Blob struct {
	Name      string `gorm:"primaryKey;size:64"`
	Value     string `gorm:"type:longtext"`
	UpdatedAt time.Time
}

// TableName keeps the table name stable regardless of the struct name.
func (Blob) TableName() string { return "secure_blobs" }

// Options configures Connect.
type Options struct {
	Driver   string // "sqlite" (default) or "mysql"
	DSN      string
	Logger   *slog.Logger
	LogLevel logger.LogLevel // gorm's own logging; zero means Warn
}

// SQL is a Backing on top of gorm. SQLite is the default: a single file next to
// the terminal. MySQL is supported for shops that already run one.
type SQL struct {
	db *gorm.DB
}

// Connect opens the database, applies pragmas and migrates the blob table.
func Connect(opts Options) (*SQL, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	if opts.DSN == "" {
		return nil, fmt.Errorf("database: DB_DSN is empty")
	}
	level := opts.LogLevel
	if level == 0 {
		level = logger.Warn
	}

	var dialector gorm.Dialector
	attempts := 1
	switch opts.Driver {
	case "", "sqlite":
		dialector = sqlite.Open(opts.DSN)
	case "mysql":
		dialector = mysql.Open(opts.DSN)
		// MySQL may still be starting next to us
		attempts = 5
	default:
		return nil, fmt.Errorf("database: unknown driver %q", opts.Driver)
	}

	var db *gorm.DB
	var err error
	for i := 0; i < attempts; i++ {
		db, err = gorm.Open(dialector, &gorm.Config{
			Logger: logger.Default.LogMode(level),
		})
		if err == nil {
			break
		}
		if i+1 < attempts {
			log.Warn("failed to connect to database, retrying in 2 seconds", "attempt", i+1, "of", attempts)
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("database: connect after %d attempts: %w", attempts, err)
	}

	if opts.Driver == "" || opts.Driver == "sqlite" {
		if err := applyPragmas(db); err != nil {
			closeQuietly(db)
			return nil, err
		}
	}

	if err := db.AutoMigrate(&Blob{}); err != nil {
		closeQuietly(db)
		return nil, fmt.Errorf("database: migrate: %w", err)
	}

	log.Info("database connected", "driver", driverName(opts.Driver))
	return &SQL{db: db}, nil
}

func driverName(d string) string {
	if d == "" {
		return "sqlite"
	}
	return d
}

// applyPragmas configures SQLite for a single writer with durable commits.
func applyPragmas(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("database: sql handle: %w", err)
	}
	// SQLite only supports one writer at a time
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = FULL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return fmt.Errorf("database: %q: %w", pragma, err)
		}
	}
	return nil
}

func closeQuietly(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

func (s *SQL) Get(key string) ([]byte, error) {
	var blob Blob
	tx := s.db.Where("name = ?", key).Limit(1).Find(&blob)
	if tx.Error != nil {
		return nil, fmt.Errorf("database: get %s: %w", key, tx.Error)
	}
	if tx.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return []byte(blob.Value), nil
}

func (s *SQL) Put(key string, value []byte) error {
	blob := Blob{Name: key, Value: string(value), UpdatedAt: time.Now()}
	err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&blob).Error
	if err != nil {
		return fmt.Errorf("database: put %s: %w", key, err)
	}
	return nil
}

func (s *SQL) Delete(key string) error {
	if err := s.db.Where("name = ?", key).Delete(&Blob{}).Error; err != nil {
		return fmt.Errorf("database: delete %s: %w", key, err)
	}
	return nil
}

func (s *SQL) Keys() ([]string, error) {
	var names []string
	if err := s.db.Model(&Blob{}).Order("name").Pluck("name", &names).Error; err != nil {
		return nil, fmt.Errorf("database: keys: %w", err)
	}
	return names, nil
}

func (s *SQL) Clear() error {
	if err := s.db.Where("1 = 1").Delete(&Blob{}).Error; err != nil {
		return fmt.Errorf("database: clear: %w", err)
	}
	return nil
}

func (s *SQL) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
