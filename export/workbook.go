// Package export renders lending data as files: an xlsx statistics report
// and an iCalendar feed of return dates.
package export

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"equipment_lending_client/rules"
)

var ErrGenerateFailed = errors.New("export: generating file failed")

const (
	sheetEquipment  = "Equipment"
	sheetCategories = "Categories"
	sheetDurations  = "Borrow durations"
	sheetSummary    = "Summary"
)

// StatisticsWorkbook writes stats as an xlsx workbook and suggests a file
// name for it.
func StatisticsWorkbook(stats rules.Statistics) (*bytes.Buffer, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrGenerateFailed, err)
	}

	w := &sheetWriter{f: f, header: header}
	w.table(sheetSummary, []any{"Field", "Value"}, [][]any{
		{"From", stats.From.Format("2006-01-02")},
		{"To", stats.To.Format("2006-01-02")},
		{"Month", stats.Monthly.Month},
		{"Units borrowed this month", stats.Monthly.TotalBorrowed},
		{"Students borrowing this month", stats.Monthly.UniqueUsers},
		{"Most borrowed this month", fmt.Sprintf("%s (%d)", stats.Monthly.MostBorrowed.Name, stats.Monthly.MostBorrowed.Count)},
	})
	w.table(sheetEquipment, []any{"Equipment", "Units borrowed"}, countRows(stats.ByEquipment))
	w.table(sheetCategories, []any{"Category", "Units borrowed"}, countRows(stats.ByCategory))

	durations := make([][]any, 0, len(stats.Equipment))
	for _, e := range stats.Equipment {
		durations = append(durations, []any{e.EquipmentName, e.TotalBorrows, e.AvgBorrowDuration.InexactFloat64()})
	}
	w.table(sheetDurations, []any{"Equipment", "Borrows", "Average days"}, durations)
	if w.err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrGenerateFailed, w.err)
	}

	if idx, err := f.GetSheetIndex(sheetSummary); err == nil {
		f.SetActiveSheet(idx)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrGenerateFailed, err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrGenerateFailed, err)
	}
	name := fmt.Sprintf("lending-statistics-%s-%s.xlsx", stats.From.Format("20060102"), stats.To.Format("20060102"))
	return buf, name, nil
}

func countRows(rows []rules.CountRow) [][]any {
	out := make([][]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, []any{r.Name, r.Count})
	}
	return out
}

// sheetWriter keeps the first error so the table calls read straight.
type sheetWriter struct {
	f      *excelize.File
	header int
	err    error
}

func (w *sheetWriter) table(sheet string, head []any, rows [][]any) {
	if w.err != nil {
		return
	}
	if _, w.err = w.f.NewSheet(sheet); w.err != nil {
		return
	}
	if w.err = w.f.SetSheetRow(sheet, "A1", &head); w.err != nil {
		return
	}
	last, _ := excelize.CoordinatesToCellName(len(head), 1)
	if w.err = w.f.SetCellStyle(sheet, "A1", last, w.header); w.err != nil {
		return
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if w.err = w.f.SetSheetRow(sheet, cell, &row); w.err != nil {
			return
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(len(head))
	w.err = w.f.SetColWidth(sheet, "A", lastCol, 28)
}
