package root

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zhang-san-er/task-tools/internal/engine"
	"github.com/zhang-san-er/task-tools/internal/ui"
)

func newRecordsCmd() *cobra.Command {
	var (
		dateStr string
		taskStr string
		totals  int
		limit   int
	)

	cmd := &cobra.Command{
		Use:     "records",
		Aliases: []string{"history"},
		Short:   "Show completion history",
		Long: `Show completion history, newest first.

--task accepts a board position, an id, or the name of a task that has
since been removed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			now := svc.Now()

			if totals > 0 {
				from := engine.StartOfDay(now).AddDate(0, 0, -(totals - 1))
				fmt.Fprintln(out, ui.Heading(ui.IconScroll, fmt.Sprintf("Last %d days", totals)))
				for _, d := range svc.DailyTotals(from, now) {
					fmt.Fprintf(out, "%s  %s  %s\n", d.Day.Format("2006-01-02"), ui.Points(d.Points), ui.Muted.Render(fmt.Sprintf("%d done", d.Count)))
				}
				return nil
			}

			var records []engine.CompletionRecord
			switch {
			case dateStr != "":
				day, err := engine.ParseDay(dateStr, now)
				if err != nil {
					return err
				}
				records = svc.RecordsOnDate(day)
			case taskStr != "":
				ref := engine.TaskRef{Name: taskStr}
				if t, err := resolveTask(svc, taskStr); err == nil {
					ref = t.Ref()
				}
				records = svc.RecordsForTask(ref)
			default:
				records = svc.Records()
			}

			fmt.Fprintln(out, ui.Heading(ui.IconScroll, "History"))
			printRecords(out, records, limit)
			return nil
		},
	}

	cmd.Flags().StringVar(&dateStr, "date", "", "only records from this day (YYYY-MM-DD, today, yesterday)")
	cmd.Flags().StringVar(&taskStr, "task", "", "only records of this task")
	cmd.Flags().IntVar(&totals, "totals", 0, "show per-day totals for the last N days")
	cmd.Flags().IntVar(&limit, "limit", 0, "show at most N records")
	cmd.MarkFlagsMutuallyExclusive("date", "task", "totals")

	cmd.AddCommand(newRecordsRmCmd(), newRecordsAddCmd())
	return cmd
}

func printRecords(w io.Writer, records []engine.CompletionRecord, limit int) {
	if len(records) == 0 {
		fmt.Fprintln(w, ui.Muted.Render("(no records)"))
		return
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	for _, r := range records {
		parts := []string{
			ui.Muted.Render(shortID(r.ID)),
			r.CompletedAt.Format("2006-01-02 15:04"),
			ui.KindIcon(r.TaskKind),
			r.TaskName,
			ui.Gold.Render("+" + r.PointsAwarded.String()),
		}
		if r.CostPaid != nil {
			parts = append(parts, ui.Dim.Render("cost "+r.CostPaid.String()))
		}
		fmt.Fprintln(w, strings.Join(parts, "  "))
	}
}

func newRecordsRmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <record>",
		Short: "Delete a record and take back what it paid",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("record id is required")
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

			var ids []string
			for _, r := range svc.Records() {
				ids = append(ids, r.ID)
			}
			id, err := resolvePrefix("record", args[0], ids)
			if err != nil {
				return err
			}
			rec, err := svc.DeleteRecord(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %q %s\n", ui.Warn.Render("Deleted record"), rec.TaskName,
				ui.Muted.Render(fmt.Sprintf("(-%s points, -%s xp)", rec.PointsAwarded, rec.PointsAwarded)))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Balance", ui.Points(svc.Economy().TotalPoints)))
			return nil
		},
	}
	return cmd
}

func newRecordsAddCmd() *cobra.Command {
	var (
		pointsStr string
		kindStr   string
		dateStr   string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Book a completion that is not on the board",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
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

			points, err := engine.ParsePoints(pointsStr)
			if err != nil {
				return err
			}
			kind, err := engine.ParseTaskKind(kindStr)
			if err != nil {
				return err
			}
			var at *time.Time
			if dateStr != "" {
				day, err := engine.ParseDay(dateStr, svc.Now())
				if err != nil {
					return err
				}
				noon := day.Add(12 * time.Hour)
				at = &noon
			}
			rec, err := svc.AddManualRecord(ctx, strings.Join(args, " "), points, kind, at)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %q %s\n", ui.Good.Render(ui.IconPlus+" Booked"), rec.TaskName, ui.Gold.Render("+"+rec.PointsAwarded.String()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&pointsStr, "points", "p", "0", "points to credit")
	cmd.Flags().StringVarP(&kindStr, "kind", "k", "standard", "task kind: standard|paid")
	cmd.Flags().StringVar(&dateStr, "date", "", "day it happened (default now)")

	return cmd
}
