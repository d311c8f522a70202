package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhang-san-er/task-tools/internal/ui"
)

func newRmCmd() *cobra.Command {
	var withHistory bool

	cmd := &cobra.Command{
		Use:   "rm <task>",
		Short: "Take a task off the board",
		Long: `Take a task off the board. Its completion history stays unless
--history is given; removing history also takes back the points and
experience it paid.`,
		Args: taskArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			t, err := resolveTask(svc, args[0])
			if err != nil {
				return err
			}
			if withHistory {
				removed, err := svc.DeleteTaskHistory(ctx, t.Ref())
				if err != nil {
					return err
				}
				if len(removed) > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %d history entries\n", ui.Warn.Render("Removed"), len(removed))
				}
			}
			if _, err := svc.DeleteTask(ctx, t.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Warn.Render("Deleted"), taskLabel(t))
			return nil
		},
	}

	cmd.Flags().BoolVar(&withHistory, "history", false, "also delete the task's completion records")

	return cmd
}
