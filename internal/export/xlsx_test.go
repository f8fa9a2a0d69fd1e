package export

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/callisatech-creator/QuestFocus/internal/engine"
)

func sampleState() engine.State {
	st := engine.DefaultState()
	end := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	st, _ = engine.Commit(st, engine.NewSession("s1", "Math", end, 65*time.Minute))
	st, _ = engine.Commit(st, engine.NewSession("s2", "Art", end.Add(3*time.Hour), 20*time.Minute))
	st, _ = engine.Commit(st, engine.NewSession("s3", "Math", end.Add(24*time.Hour), 15*time.Minute))
	return st
}

func TestWorkbookSheets(t *testing.T) {
	f, err := Workbook(sampleState(), time.UTC)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSessions, SheetDaily, SheetSummary}, f.GetSheetList())

	rows, err := f.GetRows(SheetSessions)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"ID", "Subject", "Start", "End", "Minutes", "XP"}, rows[0])
	// Newest first, like the ledger.
	assert.Equal(t, []string{"s3", "Math", "2024-01-02 09:45", "2024-01-02 10:00", "15", "150"}, rows[1])
	assert.Equal(t, "s1", rows[3][0])

	daily, err := f.GetRows(SheetDaily)
	require.NoError(t, err)
	require.Len(t, daily, 3)
	assert.Equal(t, []string{"2024-01-01", "85", "2"}, daily[1])
	assert.Equal(t, []string{"2024-01-02", "15", "1"}, daily[2])

	summary, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	assert.Equal(t, []string{"Level", "2"}, summary[1])
	assert.Equal(t, []string{"Total minutes", "100"}, summary[5])
	assert.Equal(t, []string{"Achievements", "2/5"}, summary[8])
}

func TestWorkbookUsesLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	f, err := Workbook(sampleState(), tokyo)
	require.NoError(t, err)
	defer f.Close()

	daily, err := f.GetRows(SheetDaily)
	require.NoError(t, err)
	// 10:00 and 13:00 UTC on Jan 1 are 19:00 and 22:00 in Tokyo; Jan 2 10:00 UTC is 19:00 Jan 2.
	assert.Equal(t, "2024-01-01", daily[1][0])
	assert.Equal(t, "2024-01-02", daily[2][0])

	sessions, err := f.GetRows(SheetSessions)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02 19:00", sessions[1][3])
}

func TestSaveAsAndWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.xlsx")
	require.NoError(t, SaveAs(path, sampleState(), time.UTC))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(SheetSessions)
	require.NoError(t, err)
	assert.Len(t, rows, 4)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, engine.DefaultState(), nil))
	g, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer g.Close()
	empty, err := g.GetRows(SheetSessions)
	require.NoError(t, err)
	assert.Len(t, empty, 1)
}
