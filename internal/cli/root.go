// Package cli is posctl, the terminal's maintenance tool.
package cli

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"go-pos-vault/internal/app"
	"go-pos-vault/internal/config"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // the store rejected the request
	ExitCommandError = 2 // bad flags, unreadable files, storage unreachable
)

// ExitError carries the process exit code of a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error { return e.Err }

// WrapExitError wraps err with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	EnvFile string
	Backend string
	DSN     string
	Actor   string
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the posctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "posctl",
		Short: "Maintain the point-of-sale terminal's encrypted store",
		Long: `posctl works directly on the terminal's store: back it up, restore it,
inspect the audit trail or wipe it back to a fresh install.

Stop the server first when using a SQLite store.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return &ExitError{Code: ExitCommandError, Message: fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats)}
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file to read before the environment")
	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", "", "override STORE_BACKEND (sqlite|mysql|redis)")
	cmd.PersistentFlags().StringVar(&opts.DSN, "dsn", "", "override DB_DSN")
	cmd.PersistentFlags().StringVar(&opts.Actor, "as", "posctl", "user name recorded in the audit log")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewAuditCommand(opts))
	cmd.AddCommand(NewSummaryCommand(opts))
	cmd.AddCommand(NewUsersCommand(opts))

	return cmd
}

// openApp loads the configuration, applies flag overrides and opens the store.
// Logs go to stderr so they never mix with command output.
func openApp(opts *RootOptions, stderr io.Writer) (*app.App, error) {
	cfg, err := config.Load(opts.EnvFile)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Backend != "" {
		cfg.StoreBackend = opts.Backend
	}
	if opts.DSN != "" {
		cfg.DBDSN = opts.DSN
	}
	if cfg.StoreBackend == config.BackendMemory {
		return nil, &ExitError{Code: ExitCommandError, Message: "the memory backend has nothing to maintain"}
	}
	cfg.LogLevel = "warn"

	a, err := app.Open(cfg, config.NewLoggerTo(cfg, stderr))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open store", err)
	}
	return a, nil
}
