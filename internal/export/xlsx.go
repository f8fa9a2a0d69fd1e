// Package export writes the study history to an Excel workbook.
package export

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/callisatech-creator/QuestFocus/internal/engine"
)

const (
	SheetSessions = "Sessions"
	SheetDaily    = "Daily"
	SheetSummary  = "Summary"

	timeLayout = "2006-01-02 15:04"
)

// Workbook builds the export workbook for st. Times are rendered in loc.
// The caller must Close the returned file.
func Workbook(st engine.State, loc *time.Location) (*excelize.File, error) {
	if loc == nil {
		loc = time.Local
	}
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetSessions); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetDaily, SheetSummary} {
		if _, err := f.NewSheet(name); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("new sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("header style: %w", err)
	}

	steps := []func() error{
		func() error { return writeSessions(f, st.Sessions, loc, bold) },
		func() error { return writeDaily(f, st.Sessions, loc, bold) },
		func() error { return writeSummary(f, st, bold) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return f, nil
}

// Write streams the workbook for st to w.
func Write(w io.Writer, st engine.State, loc *time.Location) error {
	f, err := Workbook(st, loc)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// SaveAs writes the workbook for st to path.
func SaveAs(path string, st engine.State, loc *time.Location) error {
	f, err := Workbook(st, loc)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("%s row %d: %w", sheet, row, err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, style int, titles ...any) error {
	if err := writeRow(f, sheet, 1, titles...); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(titles), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func writeSessions(f *excelize.File, sessions engine.Ledger, loc *time.Location, style int) error {
	if err := writeHeader(f, SheetSessions, style, "ID", "Subject", "Start", "End", "Minutes", "XP"); err != nil {
		return err
	}
	for i, s := range sessions {
		err := writeRow(f, SheetSessions, i+2,
			s.ID,
			s.Subject,
			s.StartTime.In(loc).Format(timeLayout),
			s.EndTime.In(loc).Format(timeLayout),
			s.DurationMinutes,
			s.XPEarned,
		)
		if err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetSessions, "A", "D", 20)
}

func writeDaily(f *excelize.File, sessions engine.Ledger, loc *time.Location, style int) error {
	if err := writeHeader(f, SheetDaily, style, "Date", "Minutes", "Sessions"); err != nil {
		return err
	}
	type agg struct{ minutes, count int }
	byDate := map[string]*agg{}
	for _, s := range sessions {
		key := engine.DateKey(s.EndTime.In(loc))
		a, ok := byDate[key]
		if !ok {
			a = &agg{}
			byDate[key] = a
		}
		a.minutes += s.DurationMinutes
		a.count++
	}
	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	for i, d := range dates {
		if err := writeRow(f, SheetDaily, i+2, d, byDate[d].minutes, byDate[d].count); err != nil {
			return err
		}
	}
	return nil
}

func writeSummary(f *excelize.File, st engine.State, style int) error {
	if err := writeHeader(f, SheetSummary, style, "Metric", "Value"); err != nil {
		return err
	}
	rows := [][]any{
		{"Level", st.Stats.Level},
		{"Current XP", st.Stats.CurrentXP},
		{"Next level XP", st.Stats.NextLevelXP},
		{"Total XP", st.Stats.TotalXP()},
		{"Total minutes", st.Stats.TotalStudyMinutes},
		{"Streak days", st.Stats.StreakDays},
		{"Sessions", len(st.Sessions)},
		{"Achievements", fmt.Sprintf("%d/%d", engine.CountUnlocked(st.Achievements), len(st.Achievements))},
	}
	for i, r := range rows {
		if err := writeRow(f, SheetSummary, i+2, r...); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetSummary, "A", "A", 18)
}
