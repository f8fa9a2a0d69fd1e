package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/callisatech-creator/QuestFocus/internal/engine"
	"github.com/callisatech-creator/QuestFocus/internal/ui"
)

func newAchievementsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "achievements",
		Short: "Show unlocked and locked achievements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			achs := svc.LoadState(ctx).Achievements
			loc := svc.Now().Location()

			fmt.Fprintln(out, ui.Heading(ui.IconTrophy, fmt.Sprintf("Achievements (%d/%d)", engine.CountUnlocked(achs), len(achs))))
			for _, a := range achs {
				if a.Unlocked {
					when := ""
					if a.UnlockedAt != nil {
						when = " " + ui.Muted.Render(a.UnlockedAt.In(loc).Format("2006-01-02"))
					}
					fmt.Fprintf(out, "- %s %s %s%s\n", a.Icon, ui.Gold.Render(a.Title), a.Description, when)
					continue
				}
				fmt.Fprintf(out, "- %s %s %s\n", ui.IconLock, ui.Muted.Render(a.Title), ui.Muted.Render(a.Description))
			}
			return nil
		},
	}

	return cmd
}
