package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/centavo-dev/centavo/internal/date"
)

func newSalaryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "salary",
		Short: "Manage the monthly salary",
	}
	cmd.AddCommand(newSalaryRunCommand())
	return cmd
}

func newSalaryRunCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process this month's salary if it is due",
		RunE: func(cmd *cobra.Command, args []string) error {
			svcs, err := openServices(cmd)
			if err != nil {
				return err
			}
			defer svcs.close()

			ctx := cmd.Context()
			today := date.Today(time.Now())

			if !force {
				due, err := svcs.salary.Due(ctx, today)
				if err != nil {
					return err
				}
				if !due {
					fmt.Println("Salary is not due")
					return nil
				}
			}

			t, err := svcs.salary.Process(ctx, today)
			if err != nil {
				return err
			}
			fmt.Printf("Salary processed: %s on %s (transaction %d)\n", t.Amount, t.Date, t.ID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "process even before the first business day")
	return cmd
}
