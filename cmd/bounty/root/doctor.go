package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhang-san-er/task-tools/internal/engine"
	"github.com/zhang-san-er/task-tools/internal/storage"
	"github.com/zhang-san-er/task-tools/internal/ui"
)

func newDoctorCmd() *cobra.Command {
	var clean bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check stored documents and clear backups of unreadable ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, cleanup, err := openDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			// Loading the service upgrades old documents and sets aside
			// unreadable ones before we look.
			if _, err := engine.NewService(ctx, db, serviceOptions(cfg)); err != nil {
				return err
			}

			repo := storage.NewDocumentRepo(db)
			docs, err := repo.List(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconInfo, "Documents"))
			backups := 0
			for _, d := range docs {
				if storage.IsBackupKey(d.Key) {
					backups++
					if clean {
						if err := repo.Delete(ctx, d.Key); err != nil {
							return err
						}
						fmt.Fprintf(out, "- %s %s\n", ui.Warn.Render("removed"), d.Key)
						continue
					}
					fmt.Fprintf(out, "- %s %s\n", ui.Bad.Render(d.Key), ui.Muted.Render(fmt.Sprintf("%d bytes, saved %s", len(d.Data), d.UpdatedAt.Local().Format("2006-01-02 15:04"))))
					continue
				}
				state := ui.Good.Render("ok")
				if want := storage.CurrentVersion(d.Key); d.Version != want {
					state = ui.Warn.Render(fmt.Sprintf("v%d, want v%d", d.Version, want))
				}
				fmt.Fprintf(out, "- %s v%d %s %s\n", ui.Key.Render(d.Key), d.Version, state, ui.Muted.Render(fmt.Sprintf("%d bytes", len(d.Data))))
			}
			if backups > 0 && !clean {
				fmt.Fprintln(out, ui.Muted.Render(fmt.Sprintf("%d backup(s) of unreadable data; run with --clean to remove them", backups)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&clean, "clean", false, "delete backups of unreadable documents")

	return cmd
}
