package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Wipe the store back to a fresh install",
		Long: `Delete every user, product, customer, transaction and audit entry, and
restore the default owner account, settings and categories.

This cannot be undone. Export a backup first.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return &ExitError{Code: ExitCommandError, Message: "refusing to reset without --yes"}
			}
			a, err := openApp(rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Reset(rootOpts.Actor); err != nil {
				return WrapExitError(ExitCommandError, "reset failed", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Store reset to factory defaults")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}
