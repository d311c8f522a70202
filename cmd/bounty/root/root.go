package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zhang-san-er/task-tools/internal/ui"
)

const Version = "0.1.0"

var flags struct {
	db      string
	config  string
	verbose bool
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "bounty",
		Short:         "Bounty board: tasks that pay out points",
		Long:          "Bounty is a local-first task board. Tasks pay points on completion, paid challenges cost points to enter, and points buy rewards.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.db, "db", "", "database path (default $BOUNTY_DB or the XDG data dir)")
	pf.StringVar(&flags.config, "config", "", "config file (default ~/.bounty/config.yaml)")
	pf.BoolVar(&flags.verbose, "verbose", false, "log engine activity to stderr")

	rootCmd.AddCommand(
		newAddCmd(),
		newEditCmd(),
		newListCmd(),
		newClaimCmd(),
		newUnclaimCmd(),
		newCancelCmd(),
		newDoCmd(),
		newToggleCmd(),
		newResetCmd(),
		newRmCmd(),
		newMoveCmd(),
		newStatusCmd(),
		newRecordsCmd(),
		newRewardsCmd(),
		newSpendCmd(),
		newBoardCmd(),
		newConfigCmd(),
		newDoctorCmd(),
	)
	return rootCmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
