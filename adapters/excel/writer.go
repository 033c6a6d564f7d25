package excel

import (
	"chainbench/domain/run"
	"chainbench/internal/errors"
	"chainbench/internal/profiling"

	"github.com/xuri/excelize/v2"
)

const (
	runsSheet    = "Runs"
	summarySheet = "Summary"
)

var (
	runsHeaders    = []string{"timestamp", "order", "count", "insert_seconds", "search_seconds", "delete_seconds"}
	summaryHeaders = []string{
		"count", "order", "phase", "runs",
		"mean_seconds", "median_seconds", "stddev_seconds", "ci95_seconds",
		"min_seconds", "max_seconds", "outliers",
	}
)

// WriteWorkbook saves records and their summaries to an xlsx file with a
// Runs sheet and a Summary sheet.
func WriteWorkbook(path string, records []run.Record, summaries []profiling.Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	// The default sheet becomes Runs so the workbook opens on the raw data.
	if err := f.SetSheetName(f.GetSheetName(0), runsSheet); err != nil {
		return errors.WriteFailed(path, err)
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return errors.WriteFailed(path, err)
	}

	runRows := make([][]interface{}, 0, len(records))
	for _, rec := range records {
		runRows = append(runRows, []interface{}{
			rec.Timestamp.UnixMilli(), string(rec.Order), rec.Count,
			rec.InsertSeconds, rec.SearchSeconds, rec.DeleteSeconds,
		})
	}
	if err := writeSheet(f, runsSheet, runsHeaders, runRows); err != nil {
		return errors.WriteFailed(path, err)
	}

	summaryRows := make([][]interface{}, 0, 3*len(summaries))
	for _, s := range summaries {
		for _, p := range []struct {
			name  string
			stats profiling.PhaseStats
		}{
			{"insert", s.Insert},
			{"search", s.Search},
			{"delete", s.Delete},
		} {
			summaryRows = append(summaryRows, []interface{}{
				s.Count, string(s.Order), p.name, s.Runs,
				p.stats.Mean, p.stats.Median, p.stats.StdDev, p.stats.CI95,
				p.stats.Min, p.stats.Max, p.stats.Outliers,
			})
		}
	}
	if err := writeSheet(f, summarySheet, summaryHeaders, summaryRows); err != nil {
		return errors.WriteFailed(path, err)
	}

	if err := f.SaveAs(path); err != nil {
		return errors.WriteFailed(path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]interface{}) error {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for r, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
