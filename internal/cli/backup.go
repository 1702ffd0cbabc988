package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"go-pos-vault/internal/backup"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Out string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a plaintext JSON backup",
		Long: `Write every collection (products, transactions, customers, settings,
categories and the audit log) to a JSON backup file.

The file is NOT encrypted. Keep it somewhere safe.

Examples:
  posctl export --out backup.json
  posctl export > backup.json`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	a, err := openApp(opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	doc := a.Backup.Export()
	if opts.Out == "" {
		if err := backup.Encode(cmd.OutOrStdout(), doc); err != nil {
			return WrapExitError(ExitCommandError, "failed to write backup", err)
		}
		return nil
	}

	f, err := os.OpenFile(opts.Out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create backup file", err)
	}
	if err := writeAndClose(f, doc); err != nil {
		return WrapExitError(ExitCommandError, "failed to write backup", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d products, %d transactions, %d customers to %s\n",
		len(doc.Products), len(doc.Transactions), len(doc.Customers), opts.Out)
	return nil
}

// writeAndClose encodes doc to w and closes it. A failed close fails the export.
func writeAndClose(w io.WriteCloser, doc backup.Document) error {
	if err := backup.Encode(w, doc); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Restore a JSON backup",
		Long: `Replace the store's data with the collections in a backup file.
Collections missing from the file are kept as they are. The import is
recorded in the audit log.

Examples:
  posctl import backup.json --as admin`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(rootOpts, cmd, args[0])
		},
	}
}

func runImport(opts *RootOptions, cmd *cobra.Command, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read backup file", err)
	}

	a, err := openApp(opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Backup.Import(raw, opts.Actor)
	if err != nil {
		return WrapExitError(ExitCommandError, "import failed", err)
	}
	if !res.Success {
		return &ExitError{Code: ExitFailure, Message: res.Message}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %s\n", path)
	return nil
}
