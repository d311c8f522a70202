package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhang-san-er/task-tools/internal/engine"
	"github.com/zhang-san-er/task-tools/internal/ui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show points, level and achievements",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			econ := svc.Economy()
			progress := svc.LevelProgress()
			nextAt := engine.ExperienceForLevel(econ.Level + 1)

			fmt.Fprintln(out, ui.Heading(ui.IconSparkle, "Status"))
			fmt.Fprintln(out, ui.LabelValue("Points", ui.Points(econ.TotalPoints)))
			fmt.Fprintln(out, ui.LabelValue("Level", fmt.Sprintf("%d  %s %3.0f%%", econ.Level, ui.ProgressBar(progress, 20), progress)))
			fmt.Fprintln(out, ui.LabelValue("Experience", fmt.Sprintf("%s (next level at %.0f)", econ.Experience, nextAt)))
			fmt.Fprintln(out, ui.LabelValue("Points this level", econ.CurrentPoints))
			fmt.Fprintln(out, "")

			tasks := svc.Tasks()
			active := svc.ActiveTasks()
			expired := svc.ExpiredTasks()
			today := svc.RecordsOnDate(svc.Now())
			fmt.Fprintln(out, ui.H2.Render(ui.IconBoard+" Board"))
			fmt.Fprintf(out, "- %s %d %s\n", ui.Key.Render("Tasks:"), len(tasks), ui.Muted.Render(fmt.Sprintf("(%d claimed)", len(active))))
			if len(expired) > 0 {
				fmt.Fprintf(out, "- %s %s\n", ui.Key.Render("Overdue:"), ui.Bad.Render(fmt.Sprint(len(expired))))
			}
			fmt.Fprintf(out, "- %s %d\n", ui.Key.Render("Done today:"), len(today))
			fmt.Fprintf(out, "- %s %s\n", ui.Key.Render("Streak:"), fmt.Sprintf("%s %d days", ui.IconFire, svc.DayStreak()))
			fmt.Fprintln(out, "")

			checker := svc.Achievements()
			fmt.Fprintln(out, ui.H2.Render(fmt.Sprintf("%s Achievements (%d/%d)", ui.IconTrophy, checker.CountEarned(), checker.CountTotal())))
			for _, a := range checker.GetAchievements() {
				if a.Earned {
					fmt.Fprintf(out, "- %s %s %s\n", a.Icon, ui.Good.Render(a.Name), ui.Muted.Render(a.Description))
				} else {
					fmt.Fprintf(out, "- %s %s\n", ui.Muted.Render("🔒 "+a.Name), ui.Dim.Render(a.Description))
				}
			}
			return nil
		},
	}

	return cmd
}
