package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-pos-vault/internal/audit"
	"go-pos-vault/internal/backup"
	"go-pos-vault/internal/models"
)

type env struct {
	dir string
	dsn string
}

func newEnv(t *testing.T) env {
	t.Helper()
	for _, key := range []string{"APP_ENV", "STORE_BACKEND", "DB_DSN", "JWT_SECRET", "LOG_FORMAT", "LOG_LEVEL"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	t.Setenv("BCRYPT_COST", "4")
	dir := t.TempDir()
	return env{dir: dir, dsn: filepath.Join(dir, "pos.db")}
}

// run executes posctl against the env's SQLite file.
func (e env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	base := []string{"--env-file", filepath.Join(e.dir, "missing.env"), "--backend", "sqlite", "--dsn", e.dsn}
	cmd.SetArgs(append(append([]string{}, args...), base...))
	err := cmd.Execute()
	return stdout.String(), err
}

func TestExportResetImport(t *testing.T) {
	e := newEnv(t)
	file := filepath.Join(e.dir, "backup.json")

	out, err := e.run(t, "export", "--out", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 0 products")

	raw, err := os.ReadFile(file)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "1.0", doc["version"])
	assert.Contains(t, doc, "categories")

	_, err = e.run(t, "reset", "--yes", "--as", "owner")
	require.NoError(t, err)

	_, err = e.run(t, "import", file, "--as", "owner")
	require.NoError(t, err)

	out, err = e.run(t, "audit", "--format", "json")
	require.NoError(t, err)
	var entries []models.AuditLog
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.NotEmpty(t, entries)
	assert.Equal(t, audit.ActionImportData, entries[0].Action)
	assert.Equal(t, "owner", entries[0].User)
}

func TestExport_Stdout(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "export")
	require.NoError(t, err)
	assert.Contains(t, out, `"version": "1.0"`)
}

type closeFails struct{ bytes.Buffer }

func (*closeFails) Close() error { return errors.New("disk full") }

func TestWriteAndClose_ReportsCloseError(t *testing.T) {
	var w closeFails
	err := writeAndClose(&w, backup.Document{Version: backup.Version})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Contains(t, w.String(), `"version": "1.0"`)
}

func TestExport_UnwritablePath(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "export", "--out", filepath.Join(e.dir, "no-such-dir", "backup.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestReset_RequiresYes(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "reset")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestReset_LogsResetFirst(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "reset", "--yes")
	require.NoError(t, err)

	out, err := e.run(t, "audit", "--format", "json")
	require.NoError(t, err)
	var entries []models.AuditLog
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionResetData, entries[0].Action)
	assert.Equal(t, "posctl", entries[0].User)
}

func TestImport_RejectedBackup(t *testing.T) {
	e := newEnv(t)
	file := filepath.Join(e.dir, "bad.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"version":"1.0"}`), 0o600))

	_, err := e.run(t, "import", file)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestImport_MissingFile(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "import", filepath.Join(e.dir, "nope.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestUsers(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "users")
	require.NoError(t, err)
	assert.Contains(t, out, "USERNAME")
	assert.Contains(t, out, "admin")

	out, err = e.run(t, "users", "--format", "json")
	require.NoError(t, err)
	var users []models.User
	require.NoError(t, json.Unmarshal([]byte(out), &users))
	require.Len(t, users, 1)
	assert.Equal(t, models.RoleOwner, users[0].Role)
	assert.Empty(t, users[0].PasswordHash)
}

func TestSummary(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "Mitra Cuan Store")
	assert.Contains(t, out, "Rp")

	out, err = e.run(t, "summary", "--format", "json")
	require.NoError(t, err)
	var s Summary
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, "Mitra Cuan Store", s.StoreName)
	assert.Zero(t, s.Dashboard.TotalOrders)
}

func TestInvalidFormat(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "users", "--format", "yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestMemoryBackendRejected(t *testing.T) {
	e := newEnv(t)
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"users", "--backend", "memory", "--env-file", filepath.Join(e.dir, "missing.env")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCurrencySymbol(t *testing.T) {
	assert.Equal(t, "Rp", currencySymbol("IDR (Rp)"))
	assert.Equal(t, "$", currencySymbol("$"))
	assert.Equal(t, "USD", currencySymbol(" USD "))
	assert.Equal(t, "()", currencySymbol("()"))
}
