package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/callisatech-creator/QuestFocus/internal/ui"
)

const Version = "0.1.0"

var (
	flagDB     string
	flagConfig string
)

var rootCmd = &cobra.Command{
	Use:           "qf",
	Short:         "QuestFocus: a study timer that levels you up",
	Long:          "QuestFocus is a local-first study timer. Finished sessions earn XP, build streaks and unlock achievements.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "path to the SQLite database (default ~/.questfocus.db)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to a YAML config file (default ~/.questfocus.yaml)")

	rootCmd.AddCommand(
		newStartCmd(),
		newPauseCmd(),
		newResumeCmd(),
		newStopCmd(),
		newDiscardCmd(),
		newStatusCmd(),
		newHistoryCmd(),
		newAchievementsCmd(),
		newWeekCmd(),
		newTimerCmd(),
		newExportCmd(),
		newResetCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
