package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/centavo-dev/centavo/internal/investment"
	"github.com/centavo-dev/centavo/internal/quotes"
)

func newPricesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prices",
		Short: "Manage investment prices",
	}
	cmd.AddCommand(newPricesRefreshCommand())
	return cmd
}

func newPricesRefreshCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Fetch current quotes for all positions",
		RunE: func(cmd *cobra.Command, args []string) error {
			svcs, err := openServices(cmd)
			if err != nil {
				return err
			}
			defer svcs.close()

			// The command always fetches, even when the background refresh
			// is disabled in config.
			invSvc := investment.NewService(svcs.store, quotes.NewYahoo())
			result, err := invSvc.RefreshPrices(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("Updated %d position(s), %d failure(s)\n", result.Updated, result.Failed)
			for _, msg := range result.Errors {
				fmt.Println("  " + msg)
			}
			return nil
		},
	}
	return cmd
}
