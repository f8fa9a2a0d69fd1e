package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/callisatech-creator/QuestFocus/internal/ui"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List completed sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			sessions := svc.LoadState(ctx).Sessions
			loc := svc.Now().Location()

			fmt.Fprintln(out, ui.Heading(ui.IconBook, "History"))
			if len(sessions) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("No sessions yet."))
				return nil
			}
			if limit > 0 && len(sessions) > limit {
				sessions = sessions[:limit]
			}
			for _, s := range sessions {
				fmt.Fprintf(out, "- %s %s %s %s\n",
					ui.Muted.Render(s.EndTime.In(loc).Format("2006-01-02 15:04")),
					ui.Key.Render(s.Subject),
					ui.Minutes(s.DurationMinutes),
					ui.Good.Render(fmt.Sprintf("+%d XP", s.XPEarned)),
				)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of sessions to show (0 = all)")
	return cmd
}
