package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/callisatech-creator/QuestFocus/internal/engine"
	"github.com/callisatech-creator/QuestFocus/internal/ui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show level, XP, streak and the running session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			st := svc.LoadState(ctx)
			now := svc.Now()
			stats := st.Stats

			fmt.Fprintln(out, ui.Heading(ui.IconSparkle, "Study Status"))
			fmt.Fprintln(out, ui.LabelValue("Level", stats.Level))
			fmt.Fprintln(out, ui.LabelValue("XP", fmt.Sprintf("%s %d/%d (%d to go)",
				ui.ProgressBar(stats.CurrentXP, stats.NextLevelXP, 20),
				stats.CurrentXP, stats.NextLevelXP, stats.NextLevelXP-stats.CurrentXP)))
			fmt.Fprintln(out, ui.LabelValue("Total XP", stats.TotalXP()))
			fmt.Fprintln(out, ui.LabelValue("Studied", ui.Minutes(stats.TotalStudyMinutes)))

			streak := fmt.Sprintf("%s %d day(s)", ui.IconFire, stats.StreakDays)
			switch {
			case stats.LastStudyDate == nil:
				streak = ui.Muted.Render("no sessions yet")
			case !engine.StreakAlive(stats.LastStudyDate, now):
				streak += " " + ui.Bad.Render("(broken, study today to restart)")
			case engine.DateKey(stats.LastStudyDate.In(now.Location())) != engine.DateKey(now):
				streak += " " + ui.Warn.Render("(study today to keep it)")
			}
			fmt.Fprintln(out, ui.LabelValue("Streak", streak))
			fmt.Fprintln(out, ui.LabelValue("Achievements", fmt.Sprintf("%d/%d", engine.CountUnlocked(st.Achievements), len(st.Achievements))))
			fmt.Fprintln(out, "")

			fmt.Fprintln(out, ui.H2.Render(ui.IconTimer+" Session"))
			t, err := svc.Active(ctx)
			switch {
			case errors.Is(err, engine.ErrNoActiveSession):
				fmt.Fprintln(out, ui.Muted.Render("No session running."))
			case err != nil:
				return err
			default:
				state := ui.Good.Render("running")
				if t.Paused() {
					state = ui.Warn.Render("paused")
				}
				fmt.Fprintf(out, "- %s %s %s\n", ui.Key.Render(t.Subject), ui.Clock(t.Elapsed(now)), state)
			}
			return nil
		},
	}

	return cmd
}
