// Package repository owns the shop's domain collections: products, customers,
// transactions, categories and settings. Every accepted mutation is written
// through the secure store before it becomes visible in memory, and is recorded
// in the audit log.
package repository

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"go-pos-vault/internal/audit"
	"go-pos-vault/internal/models"
	"go-pos-vault/internal/securestore"
)

// DefaultSettings is the configuration of a fresh install.
func DefaultSettings() models.Settings {
	return models.Settings{
		StoreName: "Mitra Cuan Store",
		TaxRate:   decimal.NewFromInt(11),
		Currency:  "IDR (Rp)",
		Address:   "Jalan Teknologi No. 123, Jakarta Selatan",
	}
}

// DefaultCategories are the categories of a fresh install.
func DefaultCategories() []string {
	return []string{"Food", "Fashion", "Accessories", "Electronics", "Other"}
}

// Repository holds every domain collection in memory for the life of the process.
type Repository struct {
	mu      sync.Mutex
	store   *securestore.Store
	audit   *audit.Log
	logger  *slog.Logger
	clock   func() time.Time
	newTxID func() string

	products     []models.Product
	transactions []models.Transaction // newest first
	customers    []models.Customer
	categories   []string
	settings     models.Settings
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock sets the clock used to date transactions.
func WithClock(clock func() time.Time) Option {
	return func(r *Repository) { r.clock = clock }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) { r.logger = logger }
}

// WithTransactionIDs replaces the transaction id generator.
func WithTransactionIDs(gen func() string) Option {
	return func(r *Repository) { r.newTxID = gen }
}

// New returns an empty repository. Call Load before use.
func New(store *securestore.Store, auditLog *audit.Log, opts ...Option) *Repository {
	r := &Repository{
		store:   store,
		audit:   auditLog,
		logger:  slog.Default(),
		clock:   time.Now,
		newTxID: newTransactionID,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// newTransactionID returns ids like TRX-1A2B3C4D.
func newTransactionID() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "TRX-" + strings.ToUpper(id[:8])
}

// Load reads every collection from the store, falling back to defaults.
func (r *Repository) Load() {
	products := securestore.Read(r.store, securestore.KeyProducts, []models.Product{})
	transactions := securestore.Read(r.store, securestore.KeyTransactions, []models.Transaction{})
	customers := securestore.Read(r.store, securestore.KeyCustomers, []models.Customer{})
	categories := securestore.Read(r.store, securestore.KeyCategories, DefaultCategories())
	settings := securestore.Read(r.store, securestore.KeySettings, DefaultSettings())

	r.mu.Lock()
	defer r.mu.Unlock()
	r.products = products
	r.transactions = transactions
	r.customers = customers
	r.categories = categories
	r.settings = settings
}

// State is a point-in-time copy of every collection.
type State struct {
	Products     []models.Product
	Transactions []models.Transaction
	Customers    []models.Customer
	Categories   []string
	Settings     models.Settings
	AuditLogs    []models.AuditLog
}

// State returns a copy of every collection.
func (r *Repository) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return State{
		Products:     slices.Clone(r.products),
		Transactions: cloneTransactions(r.transactions),
		Customers:    slices.Clone(r.customers),
		Categories:   slices.Clone(r.categories),
		Settings:     r.settings,
		AuditLogs:    r.audit.Entries(),
	}
}

// Replace swaps every collection for the ones in s and records one audit entry.
// Collections are written one at a time; a storage failure part-way leaves the
// earlier ones replaced.
func (r *Repository) Replace(s State, action, details, actor string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	steps := []struct {
		key    string
		value  any
		commit func()
	}{
		{securestore.KeyProducts, s.Products, func() { r.products = s.Products }},
		{securestore.KeyTransactions, s.Transactions, func() { r.transactions = s.Transactions }},
		{securestore.KeyCustomers, s.Customers, func() { r.customers = s.Customers }},
		{securestore.KeyCategories, s.Categories, func() { r.categories = s.Categories }},
		{securestore.KeySettings, s.Settings, func() { r.settings = s.Settings }},
	}
	for _, step := range steps {
		if err := r.store.Write(step.key, step.value); err != nil {
			return fmt.Errorf("repository: replace %s: %w", step.key, err)
		}
		step.commit()
	}

	if err := r.audit.Restore(s.AuditLogs); err != nil {
		return fmt.Errorf("repository: replace audit log: %w", err)
	}
	return r.record(action, details, actor)
}

// AuditLogs returns the audit trail, newest first.
func (r *Repository) AuditLogs() []models.AuditLog {
	return r.audit.Entries()
}

// change is one pending write: the new value and the value to restore if a later write fails.
type change struct {
	key        string
	next, prev any
}

// persist writes changes in order. If one fails, the keys already written are put back.
func (r *Repository) persist(changes ...change) error {
	for i, c := range changes {
		if err := r.store.Write(c.key, c.next); err != nil {
			for _, done := range changes[:i] {
				if rbErr := r.store.Write(done.key, done.prev); rbErr != nil {
					r.logger.Error("rollback failed", "key", done.key, "error", rbErr)
				}
			}
			return err
		}
	}
	return nil
}

func (r *Repository) record(action, details, actor string) error {
	if _, err := r.audit.Append(action, details, actor); err != nil {
		return fmt.Errorf("repository: %w", err)
	}
	return nil
}

func cloneTransactions(in []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, len(in))
	for i, tx := range in {
		tx.Items = slices.Clone(tx.Items)
		if tx.CustomerID != nil {
			id := *tx.CustomerID
			tx.CustomerID = &id
		}
		out[i] = tx
	}
	return out
}
