package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhang-san-er/task-tools/internal/engine"
	"github.com/zhang-san-er/task-tools/internal/ui"
)

func newSpendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spend <points>",
		Short: "Spend points outside the reward catalog",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("amount is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			amount, err := engine.ParsePoints(args[0])
			if err != nil {
				return err
			}
			state, err := svc.DeductPoints(ctx, amount)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Warn.Render(ui.IconCoin+" Spent"), amount)
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Balance", ui.Points(state.TotalPoints)))
			if state.TotalPoints.IsNegative() {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Warn.Render(ui.IconWarn+" Balance is overdrawn"))
			}
			return nil
		},
	}
	return cmd
}
