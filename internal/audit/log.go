// Package audit keeps the bounded, append-only trail of mutating actions.
package audit

import (
	"fmt"
	"sync"
	"time"

	"go-pos-vault/internal/models"
	"go-pos-vault/internal/securestore"
)

// DefaultCapacity is how many entries the log retains.
const DefaultCapacity = 1000

// Action kinds.
const (
	ActionAddProduct      = "ADD_PRODUCT"
	ActionEditProduct     = "EDIT_PRODUCT"
	ActionDeleteProduct   = "DELETE_PRODUCT"
	ActionAddCustomer     = "ADD_CUSTOMER"
	ActionEditCustomer    = "EDIT_CUSTOMER"
	ActionDeleteCustomer  = "DELETE_CUSTOMER"
	ActionAddTransaction  = "ADD_TRANSACTION"
	ActionVoidTransaction = "VOID_TRANSACTION"
	ActionAddCategory     = "ADD_CATEGORY"
	ActionDeleteCategory  = "DELETE_CATEGORY"
	ActionUpdateSettings  = "UPDATE_SETTINGS"
	ActionAddUser         = "ADD_USER"
	ActionUpdateUser      = "UPDATE_USER"
	ActionDeleteUser      = "DELETE_USER"
	ActionImportData      = "IMPORT_DATA"
	ActionResetData       = "RESET_DATA"
)

// Log is a fixed-capacity ring. When full, appending drops the oldest entry.
type Log struct {
	mu     sync.Mutex
	store  *securestore.Store
	clock  func() time.Time
	buf    []models.AuditLog
	head   int // next slot to write
	size   int
	nextID int64
}

// Option configures a Log.
type Option func(*Log)

// WithClock sets the timestamp source.
func WithClock(clock func() time.Time) Option {
	return func(l *Log) { l.clock = clock }
}

// WithCapacity overrides DefaultCapacity.
func WithCapacity(n int) Option {
	return func(l *Log) {
		if n > 0 {
			l.buf = make([]models.AuditLog, n)
		}
	}
}

// New returns an empty Log persisted through store. Call Load to read what is stored.
func New(store *securestore.Store, opts ...Option) *Log {
	l := &Log{
		store:  store,
		clock:  time.Now,
		buf:    make([]models.AuditLog, DefaultCapacity),
		nextID: 1,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load replaces the in-memory ring with the stored entries.
func (l *Log) Load() {
	entries := securestore.Read(l.store, securestore.KeyAuditLogs, []models.AuditLog{})

	l.mu.Lock()
	defer l.mu.Unlock()
	l.fill(entries)
}

// Capacity is the maximum number of retained entries.
func (l *Log) Capacity() int { return len(l.buf) }

// Len is the number of retained entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size
}

// Append records one action and persists the log.
func (l *Log) Append(action, details, actor string) (models.AuditLog, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := models.AuditLog{
		ID:        l.nextID,
		Timestamp: l.clock().UTC(),
		User:      actor,
		Action:    action,
		Details:   details,
	}

	prevHead, prevSize, prevSlot := l.head, l.size, l.buf[l.head]
	l.push(entry)

	if err := l.store.Write(securestore.KeyAuditLogs, l.newestFirst()); err != nil {
		l.buf[prevHead], l.head, l.size = prevSlot, prevHead, prevSize
		return models.AuditLog{}, fmt.Errorf("audit: append %s: %w", action, err)
	}
	l.nextID++
	return entry, nil
}

// Entries returns a copy of the log, newest first.
func (l *Log) Entries() []models.AuditLog {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.newestFirst()
}

// Restore replaces the log with entries (newest first), keeping at most Capacity of them.
func (l *Log) Restore(entries []models.AuditLog) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(entries) > len(l.buf) {
		entries = entries[:len(l.buf)]
	}
	if err := l.store.Write(securestore.KeyAuditLogs, entries); err != nil {
		return fmt.Errorf("audit: restore: %w", err)
	}
	l.fill(entries)
	return nil
}

// Reset empties the log and removes it from storage.
func (l *Log) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.Delete(securestore.KeyAuditLogs); err != nil {
		return fmt.Errorf("audit: reset: %w", err)
	}
	l.fill(nil)
	return nil
}

// fill rebuilds the ring from a newest-first slice.
func (l *Log) fill(entries []models.AuditLog) {
	for i := range l.buf {
		l.buf[i] = models.AuditLog{}
	}
	l.head, l.size, l.nextID = 0, 0, 1

	if len(entries) > len(l.buf) {
		entries = entries[:len(l.buf)]
	}
	for i := len(entries) - 1; i >= 0; i-- {
		l.push(entries[i])
		if entries[i].ID >= l.nextID {
			l.nextID = entries[i].ID + 1
		}
	}
}

func (l *Log) push(entry models.AuditLog) {
	l.buf[l.head] = entry
	l.head = (l.head + 1) % len(l.buf)
	if l.size < len(l.buf) {
		l.size++
	}
}

func (l *Log) newestFirst() []models.AuditLog {
	out := make([]models.AuditLog, 0, l.size)
	for i := 1; i <= l.size; i++ {
		out = append(out, l.buf[(l.head-i+len(l.buf))%len(l.buf)])
	}
	return out
}
