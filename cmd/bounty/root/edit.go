package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhang-san-er/task-tools/internal/engine"
	"github.com/zhang-san-er/task-tools/internal/ui"
)

func newEditCmd() *cobra.Command {
	var (
		name       string
		rewardStr  string
		costStr    string
		repeatable bool
		expiresStr string
		days       int
		dailyLimit int
		formula    string
		clearLimit bool
	)

	cmd := &cobra.Command{
		Use:   "edit <task>",
		Short: "Change a task's fields",
		Long: `Change a task's fields. Only the flags given are applied.

--no-deadline removes both the fixed deadline and the duration.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("task is required")
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

			var p engine.TaskPatch
			f := cmd.Flags()
			if f.Changed("name") {
				p.Name = &name
			}
			if f.Changed("reward") {
				v, err := engine.ParsePoints(rewardStr)
				if err != nil {
					return err
				}
				p.RewardPoints = &v
			}
			if f.Changed("cost") {
				v, err := engine.ParsePoints(costStr)
				if err != nil {
					return err
				}
				p.EntryCost = &v
			}
			if f.Changed("repeatable") {
				p.IsRepeatable = &repeatable
			}
			if f.Changed("expires") {
				day, err := engine.ParseDay(expiresStr, svc.Now())
				if err != nil {
					return err
				}
				deadline := engine.EndOfDay(day)
				p.ExpiresAt = &deadline
				p.ClearDurationDays = true
			}
			if f.Changed("days") {
				p.DurationDays = &days
				p.ClearExpiresAt = true
			}
			if clearLimit {
				p.ClearExpiresAt = true
				p.ClearDurationDays = true
			}
			if f.Changed("daily-limit") {
				p.DailyLimit = &dailyLimit
			}
			if f.Changed("formula") {
				p.ExceedDaysRewardFormula = &formula
			}

			updated, err := svc.UpdateTask(ctx, t.ID, p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Good.Render(ui.IconScroll+" Updated"), taskLabel(updated))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVarP(&rewardStr, "reward", "r", "", "points paid on completion")
	cmd.Flags().StringVar(&costStr, "cost", "", "entry cost of a paid challenge")
	cmd.Flags().BoolVar(&repeatable, "repeatable", true, "reset after each completion")
	cmd.Flags().StringVar(&expiresStr, "expires", "", "deadline day (YYYY-MM-DD, today, tomorrow)")
	cmd.Flags().IntVar(&days, "days", 0, "days allowed after claiming")
	cmd.Flags().BoolVar(&clearLimit, "no-deadline", false, "remove the deadline and duration")
	cmd.Flags().IntVar(&dailyLimit, "daily-limit", 1, "completions allowed per day")
	cmd.Flags().StringVar(&formula, "formula", "", "late bonus formula over n overdue days (empty clears)")
	cmd.MarkFlagsMutuallyExclusive("expires", "days", "no-deadline")

	return cmd
}
