package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"go-pos-vault/internal/models"
)

// NewUsersCommand creates the users command.
func NewUsersCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "users",
		Short:        "List user accounts",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			users := a.Vault.Users()
			public := make([]models.User, 0, len(users))
			for _, u := range users {
				public = append(public, u.Public())
			}
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), public)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tUSERNAME\tROLE\tNAME")
			for _, u := range public {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", u.ID, u.Username, u.Role, u.Name)
			}
			return tw.Flush()
		},
	}
}
