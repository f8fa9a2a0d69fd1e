package root

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/callisatech-creator/QuestFocus/internal/engine"
	"github.com/callisatech-creator/QuestFocus/internal/feedback"
	"github.com/callisatech-creator/QuestFocus/internal/ui"
)

func newStopCmd() *cobra.Command {
	var yes bool
	var noFeedback bool

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Finish the running session and collect XP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx, false)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			res, err := a.svc.Stop(ctx, engine.StopInput{})
			if engine.IsShortSession(err) {
				fmt.Fprintln(out, ui.Warn.Render(ui.IconWarn+" "+err.Error()))
				if !yes && !confirm(cmd.InOrStdin(), out, "Discard it?") {
					fmt.Fprintln(out, ui.Muted.Render("Kept running."))
					return nil
				}
				res, err = a.svc.Stop(ctx, engine.StopInput{ConfirmDiscard: true})
			}
			if err != nil {
				return friendly(err)
			}

			if res.Discarded {
				fmt.Fprintf(out, "%s Discarded %s (%s)\n", ui.IconTrash, res.Subject, ui.Clock(res.Elapsed))
				return nil
			}
			printCommit(out, res)

			if noFeedback {
				return nil
			}
			wait := a.cfg.Feedback.Timeout + time.Second
			select {
			case fb, ok := <-a.svc.RequestFeedback(ctx, res.CommitResult):
				if ok {
					printFeedback(out, fb)
				}
			case <-time.After(wait):
				printFeedback(out, feedback.Fallback())
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "discard a sub-minute session without asking")
	cmd.Flags().BoolVar(&noFeedback, "no-feedback", false, "skip the AI feedback message")
	return cmd
}

func printCommit(out io.Writer, res *engine.StopResult) {
	s := res.Session
	fmt.Fprintf(out, "%s %s · %s · %s\n",
		ui.IconDone, ui.Key.Render(s.Subject), ui.Minutes(s.DurationMinutes),
		ui.Good.Render(fmt.Sprintf("+%d XP", res.XPAwarded)))
	if res.LevelUp {
		fmt.Fprintf(out, "%s %s %d → %d\n", ui.IconBolt, ui.BadgeLevelUp, res.LevelBefore, res.LevelAfter)
	}
	st := res.Stats
	fmt.Fprintf(out, "Level %d %s %d/%d XP\n", st.Level, ui.ProgressBar(st.CurrentXP, st.NextLevelXP, 20), st.CurrentXP, st.NextLevelXP)
	fmt.Fprintf(out, "%s Streak: %d day(s)\n", ui.IconFire, res.StreakDays)
	for _, ach := range res.Unlocked {
		fmt.Fprintln(out, ui.Gold.Render(fmt.Sprintf("%s Achievement unlocked: %s %s", ui.IconTrophy, ach.Icon, ach.Title)))
	}
}

func printFeedback(out io.Writer, fb feedback.Feedback) {
	fmt.Fprintln(out, ui.FeedbackStyle(string(fb.Type)).Render(ui.IconChat+" "+fb.Message))
}

func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
