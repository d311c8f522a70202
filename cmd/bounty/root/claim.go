package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhang-san-er/task-tools/internal/engine"
	"github.com/zhang-san-er/task-tools/internal/ui"
)

func taskArg(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("task is required (board position or id)")
	}
	return nil
}

func newClaimCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claim <task>",
		Short: "Claim a task; paid challenges charge their entry cost",
		Args:  taskArg,
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
			res, err := svc.ClaimTask(ctx, t.ID)
			if err != nil {
				return err
			}
			line := fmt.Sprintf("%s %s", ui.Good.Render(ui.IconScroll+" Claimed"), taskLabel(res.Task))
			if res.CostPaid.IsPositive() {
				line += " " + ui.Warn.Render(fmt.Sprintf("(-%s entry)", res.CostPaid))
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
			if d := ui.Deadline(res.Task); d != "" {
				fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Due", d))
			}
			if res.CostPaid.IsPositive() {
				fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Balance", ui.Points(svc.Economy().TotalPoints)))
			}
			return nil
		},
	}
	return cmd
}

// newTaskStateCmd builds the commands that flip a task's flags without
// touching the economy.
func newTaskStateCmd(use, short, verb string, run func(*engine.Service) func(context.Context, string) (engine.Task, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <task>",
		Short: short,
		Args:  taskArg,
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
			updated, err := run(svc)(ctx, t.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Warn.Render(verb), taskLabel(updated))
			return nil
		},
	}
}

func newUnclaimCmd() *cobra.Command {
	return newTaskStateCmd("unclaim", "Release a claim (entry costs are not refunded)", "Unclaimed",
		func(s *engine.Service) func(context.Context, string) (engine.Task, error) { return s.UnclaimTask })
}

func newCancelCmd() *cobra.Command {
	return newTaskStateCmd("cancel", "Abandon a started paid challenge", "Cancelled",
		func(s *engine.Service) func(context.Context, string) (engine.Task, error) { return s.CancelTask })
}

func newResetCmd() *cobra.Command {
	return newTaskStateCmd("reset", "Clear a task's completion, keeping the claim", "Reset",
		func(s *engine.Service) func(context.Context, string) (engine.Task, error) { return s.ResetTask })
}
