package root

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/callisatech-creator/QuestFocus/internal/ui"
)

func newStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start <subject>",
		Short: "Start a study session",
		Args: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(strings.Join(args, " ")) == "" {
				return errors.New("subject is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			t, err := svc.Start(ctx, strings.Join(args, " "))
			if err != nil {
				return friendly(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Studying %s since %s\n",
				ui.IconTimer, ui.Key.Render(t.Subject), t.StartedAt.Format("15:04"))
			return nil
		},
	}

	return cmd
}

func newPauseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pause",
		Short: "Pause the running session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			t, err := svc.Pause(ctx)
			if err != nil {
				return friendly(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Paused %s at %s\n",
				ui.IconPause, ui.Key.Render(t.Subject), ui.Clock(t.Elapsed(svc.Now())))
			return nil
		},
	}

	return cmd
}

func newResumeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resume",
		Short: "Resume a paused session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			t, err := svc.Resume(ctx)
			if err != nil {
				return friendly(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Resumed %s at %s\n",
				ui.IconPlay, ui.Key.Render(t.Subject), ui.Clock(t.Elapsed(svc.Now())))
			return nil
		},
	}

	return cmd
}

func newDiscardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discard",
		Short: "Throw away the running session without earning XP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			t, err := svc.Discard(ctx)
			if err != nil {
				return friendly(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Discarded %s (%s)\n",
				ui.IconTrash, t.Subject, ui.Clock(t.Elapsed(svc.Now())))
			return nil
		},
	}

	return cmd
}
