// Package backup exports the shop's data to a plaintext JSON document and
// restores it again.
package backup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go-pos-vault/internal/audit"
	"go-pos-vault/internal/models"
	"go-pos-vault/internal/repository"
	"go-pos-vault/internal/utils"
)

// Version is written into every exported document.
const Version = "1.0"

const (
	MsgInvalidFile     = "Invalid backup file"
	MsgMissingVersion  = "Invalid backup file: missing version"
	MsgMissingProducts = "Invalid backup file: missing products"
)

// Document is the backup file layout.
type Document struct {
	Products     []models.Product     `json:"products"`
	Transactions []models.Transaction `json:"transactions"`
	Customers    []models.Customer    `json:"customers"`
	Settings     models.Settings      `json:"settings"`
	Categories   []string             `json:"categories"`
	AuditLogs    []models.AuditLog    `json:"auditLogs"`
	Version      string               `json:"version"`
	ExportedAt   time.Time            `json:"exportedAt"`
	Device       string               `json:"device,omitempty"`
}

// Codec moves documents in and out of a repository.
type Codec struct {
	repo   *repository.Repository
	clock  func() time.Time
	device string
}

// Option configures a Codec.
type Option func(*Codec)

// WithClock sets the clock used for exportedAt.
func WithClock(clock func() time.Time) Option {
	return func(c *Codec) { c.clock = clock }
}

// WithDevice overrides the terminal id stamped into exports.
func WithDevice(id string) Option {
	return func(c *Codec) { c.device = id }
}

// New returns a Codec over repo.
func New(repo *repository.Repository, opts ...Option) *Codec {
	c := &Codec{repo: repo, clock: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	if c.device == "" {
		c.device = utils.DeviceID()
	}
	return c
}

// Export snapshots every collection.
func (c *Codec) Export() Document {
	s := c.repo.State()
	return Document{
		Products:     s.Products,
		Transactions: s.Transactions,
		Customers:    s.Customers,
		Settings:     s.Settings,
		Categories:   s.Categories,
		AuditLogs:    s.AuditLogs,
		Version:      Version,
		ExportedAt:   c.clock(),
		Device:       c.device,
	}
}

// Encode writes doc as indented JSON.
func Encode(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("backup: encode: %w", err)
	}
	return nil
}

// Decode reads a document. Fields absent from the input are left zero.
func Decode(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("backup: decode: %w", err)
	}
	return doc, nil
}

// Import replaces the repository's data with the collections found in raw.
// Collections missing from the file keep their current contents. A file without
// a version or a products list, or holding a record the repository would
// refuse, is rejected before anything changes.
func (c *Codec) Import(raw []byte, actor string) (models.Result, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return models.Fail(MsgInvalidFile), nil
	}
	if !present(fields, "version") {
		return models.Fail(MsgMissingVersion), nil
	}
	if !present(fields, "products") {
		return models.Fail(MsgMissingProducts), nil
	}

	doc, err := Decode(bytes.NewReader(raw))
	if err != nil {
		return models.Fail(MsgInvalidFile), nil
	}
	if doc.Version == "" {
		return models.Fail(MsgMissingVersion), nil
	}

	state := c.repo.State()
	state.Products = doc.Products
	if present(fields, "transactions") {
		state.Transactions = doc.Transactions
	}
	if present(fields, "customers") {
		state.Customers = doc.Customers
	}
	if present(fields, "settings") {
		state.Settings = doc.Settings
	}
	if present(fields, "categories") {
		state.Categories = doc.Categories
	}
	if present(fields, "auditLogs") {
		state.AuditLogs = doc.AuditLogs
	}

	if res := repository.CheckState(state); !res.Success {
		return models.Fail(MsgInvalidFile + ": " + res.Message), nil
	}

	details := fmt.Sprintf("Imported backup v%s (%d products, %d transactions)", doc.Version, len(state.Products), len(state.Transactions))
	if doc.Device != "" {
		details += " from " + doc.Device
	}
	if err := c.repo.Replace(state, audit.ActionImportData, details, actor); err != nil {
		return models.Result{}, fmt.Errorf("backup: import: %w", err)
	}
	return models.OK(), nil
}

// present reports whether key exists with a non-null value.
func present(fields map[string]json.RawMessage, key string) bool {
	raw, ok := fields[key]
	return ok && !bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Device is the terminal id stamped into exports.
func (c *Codec) Device() string { return c.device }
