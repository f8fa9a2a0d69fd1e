package root

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/callisatech-creator/QuestFocus/internal/engine"
	"github.com/callisatech-creator/QuestFocus/internal/tui"
)

func newTimerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timer [subject]",
		Short: "Open the live timer (starts a session when a subject is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx, true)
			if err != nil {
				return err
			}
			defer cleanup()

			if subject := strings.Join(args, " "); strings.TrimSpace(subject) != "" {
				if _, err := a.svc.Start(ctx, subject); err != nil && !errors.Is(err, engine.ErrActiveSession) {
					return err
				}
			}
			return tui.RunTimer(ctx, a.svc, cmd.OutOrStdout())
		},
	}

	return cmd
}
