package root

import (
	"io"
	"strings"
	"testing"
)

func TestValidateDays(t *testing.T) {
	for _, days := range []int{1, 7, maxChartDays} {
		if err := validateDays(days); err != nil {
			t.Fatalf("validateDays(%d): %v", days, err)
		}
	}
	for _, days := range []int{0, -3, maxChartDays + 1, 1 << 40} {
		if err := validateDays(days); err == nil {
			t.Fatalf("validateDays(%d) accepted", days)
		}
	}
}

func TestWeekRejectsBadDaysBeforeOpeningStorage(t *testing.T) {
	// An unusable --db would fail on open; the flag check must come first.
	flagDB = "/dev/null/questfocus.db"
	t.Cleanup(func() { flagDB = "" })

	for _, arg := range []string{"0", "-1", "100000"} {
		cmd := newWeekCmd()
		cmd.SetArgs([]string{"--days=" + arg})
		cmd.SetOut(io.Discard)
		cmd.SetErr(io.Discard)
		err := cmd.Execute()
		if err == nil || !strings.Contains(err.Error(), "--days must be between") {
			t.Fatalf("--days %s: err=%v", arg, err)
		}
	}
}
