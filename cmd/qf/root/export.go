package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/callisatech-creator/QuestFocus/internal/export"
	"github.com/callisatech-creator/QuestFocus/internal/ui"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <file.xlsx>",
		Short: "Export sessions and stats to an Excel workbook",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("output file is required")
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

			st := svc.LoadState(ctx)
			if err := export.SaveAs(args[0], st, svc.Now().Location()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Exported %d session(s) to %s\n", ui.IconDone, len(st.Sessions), args[0])
			return nil
		},
	}

	return cmd
}
