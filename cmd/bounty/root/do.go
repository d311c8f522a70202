package root

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zhang-san-er/task-tools/internal/engine"
	"github.com/zhang-san-er/task-tools/internal/ui"
)

func newDoCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "do <task>",
		Short: "Complete a task and collect its reward",
		Long: `Complete a task and collect its reward.

Tasks with a deadline or an entry cost must be claimed first. Finishing
after the deadline pays the task's late bonus on top of the reward.
Repeatable tasks go back on the board afterwards.`,
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

			if dryRun {
				res, err := svc.PreviewCompletion(t.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Muted.Render("Would complete"), taskLabel(t))
				printCompletion(cmd.OutOrStdout(), res)
				return nil
			}

			res, err := svc.CompleteTask(ctx, t.ID)
			if engine.IsReason(err, engine.ReasonMustClaimFirst) {
				return fmt.Errorf("%w (bounty claim %s)", err, args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Good.Render(ui.IconDone+" Completed"), taskLabel(t))
			printCompletion(cmd.OutOrStdout(), res)
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Balance", ui.Points(svc.Economy().TotalPoints)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "show what completing would pay without doing it")

	return cmd
}

func printCompletion(w io.Writer, res *engine.CompleteResult) {
	fmt.Fprintln(w, ui.LabelValue("Reward", ui.Gold.Render("+"+res.PointsAwarded.String())))
	if res.Bonus.IsPositive() {
		fmt.Fprintln(w, ui.LabelValue("Late bonus", fmt.Sprintf("%s (%d days over)", res.Bonus, res.ExceedDays)))
	}
	if res.CostPaid != nil {
		fmt.Fprintln(w, ui.LabelValue("Entry cost", res.CostPaid.String()))
	}
	fmt.Fprintln(w, ui.LabelValue("Level", fmt.Sprintf("%d → %d", res.LevelBefore, res.LevelAfter)))
	if res.LevelUp {
		fmt.Fprintln(w, ui.BadgeLevelUp)
	}
	if res.Reset {
		fmt.Fprintln(w, ui.Muted.Render(ui.IconLoop+" back on the board"))
	}
}
