package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"go-pos-vault/internal/repository"
)

// Summary is the json output of the summary command.
type Summary struct {
	StoreName       string                     `json:"storeName"`
	Dashboard       repository.Dashboard       `json:"dashboard"`
	TopSelling      []repository.TopSeller     `json:"topSelling"`
	Categories      []repository.CategorySales `json:"categories"`
	Products        int                        `json:"products"`
	DecryptFailures int64                      `json:"decryptFailures"`
}

// NewSummaryCommand creates the summary command.
func NewSummaryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "summary",
		Short:        "Print sales totals and best sellers",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			settings := a.Repo.Settings()
			s := Summary{
				StoreName:       settings.StoreName,
				Dashboard:       a.Repo.Dashboard(),
				TopSelling:      a.Repo.TopSelling(5),
				Categories:      a.Repo.SalesByCategory(),
				Products:        len(a.Repo.Products()),
				DecryptFailures: a.Store.DecryptFailures(),
			}
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), s)
			}

			symbol := currencySymbol(settings.Currency)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", s.StoreName)
			fmt.Fprintf(out, "  Sales:      %s (%d orders)\n", repository.FormatMoney(s.Dashboard.TotalSales, symbol, language.Indonesian), s.Dashboard.TotalOrders)
			fmt.Fprintf(out, "  Pending:    %d\n", s.Dashboard.PendingOrders)
			fmt.Fprintf(out, "  Customers:  %d\n", s.Dashboard.TotalCustomers)
			fmt.Fprintf(out, "  Products:   %d\n", s.Products)
			if len(s.TopSelling) > 0 {
				fmt.Fprintln(out, "Top selling:")
				for i, row := range s.TopSelling {
					fmt.Fprintf(out, "  %d. %s x%d  %s\n", i+1, row.ProductName, row.Sold, repository.FormatMoney(row.Revenue, symbol, language.Indonesian))
				}
			}
			if s.DecryptFailures > 0 {
				fmt.Fprintf(out, "WARNING: %d stored values could not be decrypted and were replaced by defaults\n", s.DecryptFailures)
			}
			return nil
		},
	}
}
