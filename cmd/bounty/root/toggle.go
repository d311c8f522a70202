package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhang-san-er/task-tools/internal/ui"
)

func newToggleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toggle <task>",
		Short: "Tick or untick a simple one-off task",
		Long: `Tick or untick a one-off task with no deadline.

Ticking pays the reward like "do". Unticking reopens the task but keeps
the points and the history entry; remove those with "records rm".`,
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
			res, err := svc.ToggleCompletion(ctx, t.ID)
			if err != nil {
				return err
			}
			if res.Completed {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Good.Render(ui.IconDone+" Ticked"), taskLabel(res.Task))
				if res.Completion != nil {
					printCompletion(cmd.OutOrStdout(), res.Completion)
				}
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Warn.Render("Reopened"), taskLabel(res.Task))
			return nil
		},
	}
	return cmd
}
