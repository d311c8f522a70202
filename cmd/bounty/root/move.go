package root

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zhang-san-er/task-tools/internal/ui"
)

func newMoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <task> <position>",
		Short: "Move a task to another board position",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("task and position are required")
			}
			if _, err := strconv.Atoi(args[1]); err != nil {
				return errors.New("position must be an integer")
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

			t, err := resolveTask(svc, args[0])
			if err != nil {
				return err
			}
			to, _ := strconv.Atoi(args[1])
			moved, err := svc.MoveTask(ctx, t.ID, to)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Good.Render("Moved"), taskLabel(moved))
			return nil
		},
	}
	return cmd
}
