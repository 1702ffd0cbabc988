package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-pos-vault/internal/audit"
	"go-pos-vault/internal/config"
	"go-pos-vault/internal/database"
	"go-pos-vault/internal/models"
	"go-pos-vault/internal/repository"
)

var testNow = time.Date(2026, 10, 19, 11, 0, 0, 0, time.UTC)

func testConfig(backend, dsn string) *config.Config {
	return &config.Config{
		StoreBackend: backend,
		DBDSN:        dsn,
		BcryptCost:   bcrypt.MinCost,
		TokenTTL:     time.Hour,
		JWTSecret:    "test-secret",
	}
}

func openTestApp(t *testing.T, cfg *config.Config, opts ...Option) *App {
	t.Helper()
	opts = append(opts, WithClock(func() time.Time { return testNow }), WithDevice("POS-TEST"))
	a, err := Open(cfg, nil, opts...)
	require.NoError(t, err)
	return a
}

func TestOpen_SQLiteSurvivesRestart(t *testing.T) {
	cfg := testConfig(config.BackendSQLite, filepath.Join(t.TempDir(), "pos.db"))

	a := openTestApp(t, cfg)
	res, err := a.Vault.Login("admin", "admin123")
	require.NoError(t, err)
	require.True(t, res.Success)
	_, res, err = a.Repo.AddProduct(models.Product{Name: "Kopi", Price: decimal.NewFromInt(10000)}, "admin")
	require.NoError(t, err)
	require.True(t, res.Success)
	require.NoError(t, a.Close())

	b := openTestApp(t, cfg)
	defer b.Close()
	session, ok := b.Vault.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "admin", session.Username)
	require.Len(t, b.Repo.Products(), 1)
	assert.Equal(t, "Kopi", b.Repo.Products()[0].Name)
	assert.Zero(t, b.Store.DecryptFailures())
}

func TestOpen_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(config.BackendRedis, "")
	cfg.RedisAddr = mr.Addr()

	a := openTestApp(t, cfg)
	defer a.Close()
	assert.Len(t, a.Vault.Users(), 1)
	assert.True(t, mr.Exists("pos:pos_users"))
}

func TestOpenBacking_Unknown(t *testing.T) {
	_, err := OpenBacking(testConfig("cassandra", ""), nil)
	assert.ErrorContains(t, err, "cassandra")
}

func TestReset(t *testing.T) {
	a := openTestApp(t, testConfig(config.BackendMemory, ""), WithBacking(database.NewMemory()))
	defer a.Close()

	_, res, err := a.Vault.AddUser(models.UserInput{Username: "kasir", Password: "pw", Role: models.RoleCashier}, "admin")
	require.NoError(t, err)
	require.True(t, res.Success)
	_, _, err = a.Repo.AddCustomer(models.Customer{Name: "Budi"}, "admin")
	require.NoError(t, err)
	_, err = a.Repo.UpdateSettings(models.SettingsPatch{StoreName: ptr("Toko Baru")}, "admin")
	require.NoError(t, err)
	res, err = a.Vault.Login("kasir", "pw")
	require.NoError(t, err)
	require.True(t, res.Success)

	require.NoError(t, a.Reset("admin"))

	_, loggedIn := a.Vault.CurrentUser()
	assert.False(t, loggedIn)
	users := a.Vault.Users()
	require.Len(t, users, 1)
	assert.Equal(t, "admin", users[0].Username)
	assert.Empty(t, a.Repo.Customers())
	assert.Equal(t, repository.DefaultSettings(), a.Repo.Settings())
	assert.Equal(t, repository.DefaultCategories(), a.Repo.Categories())

	entries := a.Audit.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionResetData, entries[0].Action)
	assert.Equal(t, int64(1), entries[0].ID)
}

func ptr[T any](v T) *T { return &v }
