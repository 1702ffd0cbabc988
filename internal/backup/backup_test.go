package backup

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-pos-vault/internal/audit"
	"go-pos-vault/internal/database"
	"go-pos-vault/internal/models"
	"go-pos-vault/internal/repository"
	"go-pos-vault/internal/securestore"
	"go-pos-vault/internal/security"
)

var testNow = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

func newTestRepo(t *testing.T) (*repository.Repository, *audit.Log) {
	t.Helper()
	store := securestore.New(database.NewMemory(), security.NewCodec(nil), nil)
	log := audit.New(store, audit.WithClock(func() time.Time { return testNow }))
	log.Load()
	repo := repository.New(store, log, repository.WithClock(func() time.Time { return testNow }))
	repo.Load()
	return repo, log
}

func newCodec(repo *repository.Repository) *Codec {
	return New(repo, WithClock(func() time.Time { return testNow }), WithDevice("POS-TEST0001"))
}

func populate(t *testing.T, repo *repository.Repository) {
	t.Helper()
	p, res, err := repo.AddProduct(models.Product{Name: "Kopi", Category: "Food", Price: decimal.NewFromInt(15000)}, "admin")
	require.NoError(t, err)
	require.True(t, res.Success)
	c, res, err := repo.AddCustomer(models.Customer{Name: "Budi"}, "admin")
	require.NoError(t, err)
	require.True(t, res.Success)
	_, res, err = repo.Checkout([]models.CartLine{{ProductID: p.ID, Quantity: 2}}, &c.ID, "cashier")
	require.NoError(t, err)
	require.True(t, res.Success)
}

func TestExport(t *testing.T) {
	repo, _ := newTestRepo(t)
	populate(t, repo)

	doc := newCodec(repo).Export()
	assert.Equal(t, Version, doc.Version)
	assert.Equal(t, testNow, doc.ExportedAt)
	assert.Equal(t, "POS-TEST0001", doc.Device)
	assert.Len(t, doc.Products, 1)
	assert.Len(t, doc.Transactions, 1)
	assert.Len(t, doc.Customers, 1)
	assert.Len(t, doc.AuditLogs, 3)
	assert.Equal(t, repository.DefaultCategories(), doc.Categories)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, doc))
	var fields map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fields))
	for _, key := range []string{"products", "transactions", "customers", "settings", "categories", "auditLogs", "version", "exportedAt", "device"} {
		assert.Contains(t, fields, key)
	}
	assert.Equal(t, 33300.0, fields["transactions"].([]any)[0].(map[string]any)["total"], "money is a plain number")
}

func TestExportImport_RoundTrip(t *testing.T) {
	src, _ := newTestRepo(t)
	populate(t, src)
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, newCodec(src).Export()))

	dst, dstLog := newTestRepo(t)
	res, err := newCodec(dst).Import(buf.Bytes(), "admin")
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)

	want, got := src.State(), dst.State()
	assert.Equal(t, want.Products[0].Name, got.Products[0].Name)
	assert.True(t, want.Products[0].Price.Equal(got.Products[0].Price))
	assert.Equal(t, want.Transactions[0].ID, got.Transactions[0].ID)
	assert.True(t, want.Customers[0].Spend.Equal(got.Customers[0].Spend))
	assert.Equal(t, want.Categories, got.Categories)
	assert.Equal(t, want.Settings.StoreName, got.Settings.StoreName)

	entries := dstLog.Entries()
	require.Len(t, entries, len(want.AuditLogs)+1)
	assert.Equal(t, audit.ActionImportData, entries[0].Action)
	assert.Contains(t, entries[0].Details, "POS-TEST0001")
	assert.Equal(t, want.AuditLogs, entries[1:])
}

func TestImport_Rejections(t *testing.T) {
	cases := map[string]struct {
		raw  string
		want string
	}{
		"not json":         {`{"products": [`, MsgInvalidFile},
		"not an object":    {`[1, 2, 3]`, MsgInvalidFile},
		"missing version":  {`{"products": []}`, MsgMissingVersion},
		"null version":     {`{"version": null, "products": []}`, MsgMissingVersion},
		"empty version":    {`{"version": "", "products": []}`, MsgMissingVersion},
		"missing products": {`{"version": "1.0"}`, MsgMissingProducts},
		"null products":    {`{"version": "1.0", "products": null}`, MsgMissingProducts},
		"wrong types":      {`{"version": "1.0", "products": "lots"}`, MsgInvalidFile},
		"unreadable date":  {`{"version": "1.0", "products": [], "transactions": [{"id": "T1", "date": "yesterday"}]}`, MsgInvalidFile},

		"empty product name": {
			`{"version": "1.0", "products": [{"id": 1, "name": "", "price": 10}]}`,
			"Invalid backup file: product 1: Product name is required"},
		"negative price": {
			`{"version": "1.0", "products": [{"id": 1, "name": "Kopi", "price": -500}]}`,
			"Invalid backup file: product 1: Price cannot be negative"},
		"duplicate product id": {
			`{"version": "1.0", "products": [{"id": 1, "name": "Kopi", "price": 10}, {"id": 1, "name": "Teh", "price": 10}]}`,
			"Invalid backup file: product 1: Duplicate product ID"},
		"empty customer name": {
			`{"version": "1.0", "products": [], "customers": [{"id": 5, "name": ""}]}`,
			"Invalid backup file: customer 5: Customer name is required"},
		"negative spend": {
			`{"version": "1.0", "products": [], "customers": [{"id": 5, "name": "Budi", "spend": -99}]}`,
			"Invalid backup file: customer 5: Customer spend cannot be negative"},
		"duplicate customer id": {
			`{"version": "1.0", "products": [], "customers": [{"id": 5, "name": "Budi"}, {"id": 5, "name": "Sari"}]}`,
			"Invalid backup file: customer 5: Duplicate customer ID"},
		"missing transaction id": {
			`{"version": "1.0", "products": [], "transactions": [{"subtotal": 1, "tax": 0, "total": 1}]}`,
			"Invalid backup file: transaction #1: Transaction ID is required"},
		"total mismatch": {
			`{"version": "1.0", "products": [], "transactions": [{"id": "T1", "subtotal": 100, "tax": 11, "total": 120, "status": "Success"}]}`,
			"Invalid backup file: transaction T1: Transaction total must equal subtotal plus tax"},
		"negative amount": {
			`{"version": "1.0", "products": [], "transactions": [{"id": "T1", "subtotal": -100, "tax": 0, "total": -100, "status": "Success"}]}`,
			"Invalid backup file: transaction T1: Amounts cannot be negative"},
		"zero quantity": {
			`{"version": "1.0", "products": [], "transactions": [{"id": "T1", "items": [{"id": 1, "name": "Kopi", "price": 1, "quantity": 0}], "subtotal": 0, "tax": 0, "total": 0, "status": "Success"}]}`,
			"Invalid backup file: transaction T1: Quantity must be at least 1"},
		"unknown status": {
			`{"version": "1.0", "products": [], "transactions": [{"id": "T1", "subtotal": 1, "tax": 0, "total": 1, "status": "Refunded"}]}`,
			"Invalid backup file: transaction T1: Invalid transaction status"},
		"duplicate transaction id": {
			`{"version": "1.0", "products": [], "transactions": [{"id": "T1", "subtotal": 1, "tax": 0, "total": 1}, {"id": "T1", "subtotal": 2, "tax": 0, "total": 2}]}`,
			"Invalid backup file: transaction T1: Transaction ID already exists"},
		"empty category": {
			`{"version": "1.0", "products": [], "categories": ["Food", ""]}`,
			"Invalid backup file: category: Category name is required"},
		"duplicate category": {
			`{"version": "1.0", "products": [], "categories": ["Food", "Food"]}`,
			"Invalid backup file: category Food: Category already exists"},
		"negative tax rate": {
			`{"version": "1.0", "products": [], "settings": {"storeName": "Toko", "taxRate": -5}}`,
			"Invalid backup file: settings: Tax rate cannot be negative"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			repo, log := newTestRepo(t)
			populate(t, repo)
			before := repo.State()

			res, err := newCodec(repo).Import([]byte(tc.raw), "admin")
			require.NoError(t, err)
			assert.Equal(t, models.Fail(tc.want), res)
			assert.Equal(t, before, repo.State(), "nothing changes")
			assert.Len(t, log.Entries(), len(before.AuditLogs))
		})
	}
}

// A backup written by the till's browser build: day-month-year dates, cart
// objects as line items, millisecond customer ids and float totals.
const browserBackup = `{
  "version": "1.0",
  "exportedAt": "2026-10-19T08:00:00.000Z",
  "products": [{"id": 1, "name": "Kopi Susu", "category": "Food", "price": 15000, "image": "", "stock": 20}],
  "customers": [{"id": 1729000000000, "name": "Budi", "phone": "0812", "spend": 33300}],
  "transactions": [
    {"id": "#TRX-4821", "date": "19 Oct 2026", "customer": "Budi", "customerId": 1729000000000,
     "items": [{"id": 1, "name": "Kopi Susu", "category": "Food", "price": 15000, "quantity": 2}],
     "subtotal": 30000, "tax": 3300.0000000000005, "total": 33300, "status": "Success"},
    {"id": "#TRX-77", "date": "3 Sept 2026", "customer": "Walk-in Guest", "customerId": null,
     "items": [{"id": 1, "name": "Kopi Susu", "price": 15000, "quantity": 1}],
     "subtotal": 15000, "tax": 1650, "total": 16650, "status": "Void"}
  ],
  "settings": {"storeName": "Mitra Cuan Store", "taxRate": 11, "currency": "IDR (Rp)", "address": "Jakarta"},
  "categories": ["Food", "Other"]
}`

func TestImport_BrowserBackup(t *testing.T) {
	repo, log := newTestRepo(t)

	res, err := newCodec(repo).Import([]byte(browserBackup), "owner")
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)

	txs := repo.Transactions()
	require.Len(t, txs, 2)
	assert.Equal(t, "#TRX-4821", txs[0].ID)
	assert.True(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC).Equal(txs[0].Date))
	assert.Equal(t, time.September, txs[1].Date.Month())
	assert.Equal(t, models.StatusVoid, txs[1].Status)
	require.NotNil(t, txs[0].CustomerID)
	assert.Equal(t, int64(1729000000000), *txs[0].CustomerID)
	assert.Equal(t, []string{"Food", "Other"}, repo.Categories())
	assert.Equal(t, audit.ActionImportData, log.Entries()[0].Action)

	// imported records stay editable
	res, err = repo.EditProduct(1, models.ProductPatch{Description: ptr("Gula aren")}, "owner")
	require.NoError(t, err)
	assert.True(t, res.Success, res.Message)
	res, err = repo.VoidTransaction("#TRX-4821", "owner")
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)
	c, _ := repo.Customer(1729000000000)
	assert.True(t, c.Spend.IsZero(), c.Spend.String())
}

func ptr[T any](v T) *T { return &v }

func TestImport_AbsentCollectionsKeepCurrentValues(t *testing.T) {
	repo, log := newTestRepo(t)
	populate(t, repo)
	before := repo.State()

	res, err := newCodec(repo).Import([]byte(`{"version": "1.0", "products": [{"id": 7, "name": "Teh", "price": 5000}]}`), "owner")
	require.NoError(t, err)
	require.True(t, res.Success)

	after := repo.State()
	require.Len(t, after.Products, 1)
	assert.Equal(t, "Teh", after.Products[0].Name)
	assert.Equal(t, before.Transactions, after.Transactions)
	assert.Equal(t, before.Customers, after.Customers)
	assert.Equal(t, before.Settings, after.Settings)
	assert.Equal(t, before.Categories, after.Categories)

	entries := log.Entries()
	require.Len(t, entries, len(before.AuditLogs)+1)
	assert.Equal(t, audit.ActionImportData, entries[0].Action)
	assert.Equal(t, "owner", entries[0].User)
}

func TestDecode(t *testing.T) {
	doc, err := Decode(bytes.NewBufferString(`{"version": "1.0", "products": [], "settings": {"storeName": "X", "taxRate": 5}}`))
	require.NoError(t, err)
	assert.Equal(t, "1.0", doc.Version)
	assert.Equal(t, "X", doc.Settings.StoreName)
	assert.True(t, decimal.NewFromInt(5).Equal(doc.Settings.TaxRate))

	_, err = Decode(bytes.NewBufferString(`nope`))
	assert.Error(t, err)
}
