package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/callisatech-creator/QuestFocus/internal/ui"
)

// maxChartDays bounds --days to one year.
const maxChartDays = 366

func validateDays(days int) error {
	if days < 1 || days > maxChartDays {
		return fmt.Errorf("--days must be between 1 and %d, got %d", maxChartDays, days)
	}
	return nil
}

func newWeekCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Chart study minutes per day and per subject",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateDays(days); err != nil {
				return err
			}
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			sessions := svc.LoadState(ctx).Sessions
			now := svc.Now()

			daily := sessions.DailyMinutes(now, days, now.Location())
			bars := make([]ui.Bar, 0, len(daily))
			total := 0
			for _, d := range daily {
				bars = append(bars, ui.Bar{Label: d.Date[5:] + " " + d.Weekday.String()[:3], Value: d.Minutes})
				total += d.Minutes
			}
			fmt.Fprintln(out, ui.Heading(ui.IconChart, fmt.Sprintf("Last %d days (%s)", days, ui.Minutes(total))))
			fmt.Fprint(out, ui.BarChart(bars, 30))
			fmt.Fprintln(out, "")

			subjects := sessions.SubjectMinutes()
			if len(subjects) == 0 {
				return nil
			}
			bars = bars[:0]
			for _, s := range subjects {
				bars = append(bars, ui.Bar{Label: s.Subject, Value: s.Minutes})
			}
			fmt.Fprintln(out, ui.H2.Render(ui.IconBook+" By subject (all time)"))
			fmt.Fprint(out, ui.BarChart(bars, 30))
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 7, "number of days to chart")
	return cmd
}
