package root

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zhang-san-er/task-tools/internal/engine"
	"github.com/zhang-san-er/task-tools/internal/ui"
)

func newAddCmd() *cobra.Command {
	var (
		kindStr    string
		rewardStr  string
		costStr    string
		once       bool
		expiresStr string
		days       int
		dailyLimit int
		formula    string
		at         int
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Post a new task on the board",
		Long: `Post a new task on the board.

Paid challenges (--kind paid) cost --cost points when claimed.
A task has either a fixed deadline (--expires) or a duration counted
from the day it is claimed (--days), never both. --formula sets the
bonus paid for finishing late; n is the number of days overdue.`,
		Example: `  bounty add "Read a chapter" --reward 10
  bounty add "Run 5k" --kind paid --cost 5 --reward 30 --days 2
  bounty add "Tax return" --reward 50 --expires 2024-04-30 --once --formula "n*2"`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 || strings.TrimSpace(strings.Join(args, " ")) == "" {
				return errors.New("name is required")
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

			kind, err := engine.ParseTaskKind(kindStr)
			if err != nil {
				return err
			}
			reward, err := engine.ParsePoints(rewardStr)
			if err != nil {
				return err
			}
			in := engine.TaskInput{
				Name:                    strings.Join(args, " "),
				Kind:                    kind,
				RewardPoints:            reward,
				DailyLimit:              dailyLimit,
				ExceedDaysRewardFormula: strings.TrimSpace(formula),
			}
			if costStr != "" {
				cost, err := engine.ParsePoints(costStr)
				if err != nil {
					return err
				}
				in.EntryCost = &cost
			}
			if cmd.Flags().Changed("once") {
				repeatable := !once
				in.IsRepeatable = &repeatable
			}
			if expiresStr != "" {
				day, err := engine.ParseDay(expiresStr, svc.Now())
				if err != nil {
					return err
				}
				deadline := engine.EndOfDay(day)
				in.ExpiresAt = &deadline
			}
			if cmd.Flags().Changed("days") {
				in.DurationDays = &days
			}
			if cmd.Flags().Changed("at") {
				in.Order = &at
			}

			t, err := svc.AddTask(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n",
				ui.Good.Render(ui.IconPlus+" Posted"), ui.KindIcon(t.Kind), taskLabel(t))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Reward", ui.Points(t.RewardPoints)))
			if t.IsPaid() {
				fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Entry cost", ui.Points(t.Cost())))
			}
			if d := ui.Deadline(t); d != "" {
				fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Deadline", d))
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("id "+t.ID))
			return nil
		},
	}

	cmd.Flags().StringVarP(&kindStr, "kind", "k", "standard", "task kind: standard|paid")
	cmd.Flags().StringVarP(&rewardStr, "reward", "r", "0", "points paid on completion")
	cmd.Flags().StringVar(&costStr, "cost", "", "entry cost of a paid challenge")
	cmd.Flags().BoolVar(&once, "once", false, "complete once instead of resetting after each completion")
	cmd.Flags().StringVar(&expiresStr, "expires", "", "deadline day (YYYY-MM-DD, today, tomorrow)")
	cmd.Flags().IntVar(&days, "days", 0, "days allowed after claiming")
	cmd.Flags().IntVar(&dailyLimit, "daily-limit", 0, "completions allowed per day (default from config)")
	cmd.Flags().StringVar(&formula, "formula", "", "late bonus formula over n overdue days")
	cmd.Flags().IntVar(&at, "at", 0, "board position (1-based)")

	return cmd
}
