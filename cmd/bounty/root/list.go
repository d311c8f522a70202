package root

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zhang-san-er/task-tools/internal/engine"
	"github.com/zhang-san-er/task-tools/internal/ui"
)

func newListCmd() *cobra.Command {
	var (
		active  bool
		expired bool
		today   bool
		kindStr string
		showIDs bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show the board",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			var tasks []engine.Task
			switch {
			case active:
				tasks = svc.ActiveTasks()
			case expired:
				tasks = svc.ExpiredTasks()
			case today:
				tasks = svc.TasksDueToday()
			case kindStr != "":
				kind, err := engine.ParseTaskKind(kindStr)
				if err != nil {
					return err
				}
				tasks = svc.TasksByKind(kind)
			default:
				tasks = svc.Tasks()
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconBoard, "Bounty board"))
			if len(tasks) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(nothing here)"))
				return nil
			}
			now := svc.Now()
			for _, t := range tasks {
				fmt.Fprintln(out, formatTaskRow(svc, t, now, showIDs))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&active, "active", false, "only claimed, unfinished tasks")
	cmd.Flags().BoolVar(&expired, "expired", false, "only overdue tasks")
	cmd.Flags().BoolVar(&today, "today", false, "only tasks due today")
	cmd.Flags().StringVarP(&kindStr, "kind", "k", "", "only tasks of this kind: standard|paid")
	cmd.Flags().BoolVar(&showIDs, "ids", false, "show task ids")
	cmd.MarkFlagsMutuallyExclusive("active", "expired", "today", "kind")

	return cmd
}

func formatTaskRow(svc *engine.Service, t engine.Task, now time.Time, showID bool) string {
	pos := "  -"
	if t.Order != nil {
		pos = fmt.Sprintf("%3d", *t.Order)
	}
	parts := []string{
		ui.Muted.Render(pos),
		ui.KindIcon(t.Kind),
		t.Name,
		ui.Points(t.RewardPoints),
		ui.StateText(t, now),
	}
	if t.IsPaid() {
		parts = append(parts, ui.Dim.Render("cost "+t.Cost().String()))
	}
	if d := ui.Deadline(t); d != "" {
		parts = append(parts, ui.Dim.Render(d))
	}
	if t.IsRepeatable {
		done := svc.CompletedToday(t.ID)
		parts = append(parts, ui.Dim.Render(fmt.Sprintf("%s %d/%d today", ui.IconLoop, done, t.DailyLimit)))
		if streak := svc.TaskStreak(t.ID); streak > 1 {
			parts = append(parts, ui.Warn.Render(fmt.Sprintf("%s %dd", ui.IconFire, streak)))
		}
	}
	if showID {
		parts = append(parts, ui.Muted.Render(shortID(t.ID)))
	}
	return strings.Join(parts, "  ")
}
