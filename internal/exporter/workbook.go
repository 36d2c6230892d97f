package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"trafficcli/internal/analytics"
	"trafficcli/internal/errors"
	"trafficcli/internal/visualizer"
	"trafficcli/pkg/contracts/domain"
)

// ReportSheet is the first sheet of the workbook
const ReportSheet = "Report"

const maxSheetName = 31

// Workbook writes analysis summaries to an xlsx file, one sheet per
// summary with a native chart next to the data.
type Workbook struct {
	logger *slog.Logger
}

// NewWorkbook creates a workbook exporter
func NewWorkbook(logger *slog.Logger) *Workbook {
	if logger == nil {
		logger = slog.Default()
	}
	return &Workbook{logger: logger}
}

// Write saves the summary, and the cleaning report when given, to path
func (w *Workbook) Write(path string, sum analytics.Summary, report *domain.CleaningReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ReportSheet); err != nil {
		return errors.NewStorageError("failed to name report sheet", err)
	}
	if report != nil {
		if err := writeReportSheet(f, *report); err != nil {
			return err
		}
	}

	sheets := 0
	for _, s := range sum.Series {
		if s.Len() == 0 {
			continue
		}
		if err := writeSeriesSheet(f, s); err != nil {
			return fmt.Errorf("sheet %s: %w", s.Name, err)
		}
		sheets++
	}
	for _, ct := range sum.CrossTabs {
		if len(ct.RowLabels) == 0 || len(ct.ColumnLabels) == 0 {
			continue
		}
		if err := writeCrossTabSheet(f, ct); err != nil {
			return fmt.Errorf("sheet %s: %w", ct.Name, err)
		}
		sheets++
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewStorageError("failed to create directory", err).WithContext("path", path)
	}
	if err := f.SaveAs(path); err != nil {
		return errors.NewStorageError("failed to save workbook", err).WithContext("path", path)
	}

	w.logger.Info("Workbook exported",
		slog.String("path", path),
		slog.Int("sheets", sheets))
	return nil
}

// SheetName turns a summary name into a valid, bounded sheet name
func SheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']', '\'':
			return '_'
		}
		return r
	}, name)
	if runes := []rune(name); len(runes) > maxSheetName {
		name = string(runes[:maxSheetName])
	}
	return name
}

func title(name string) string {
	if spec, ok := visualizer.Catalog[name]; ok {
		return spec.Labels.Title
	}
	return name
}

func writeReportSheet(f *excelize.File, report domain.CleaningReport) error {
	rows := [][]interface{}{
		{"variant", string(report.Variant)},
		{"rule_set", report.RuleSet},
		{"original_rows", report.OriginalRows},
		{"cleaned_rows", report.CleanedRows},
		{"rows_removed", report.RowsRemoved},
		{"nulls_before", report.TotalNullsBefore()},
		{"nulls_after", report.TotalNullsAfter()},
		{},
		{"column", "nulls_before", "nulls_after"},
	}
	after := make(map[string]int, len(report.NullsAfter))
	for _, n := range report.NullsAfter {
		after[n.Column] = n.Nulls
	}
	for _, n := range report.NullsBefore {
		rows = append(rows, []interface{}{n.Column, n.Nulls, after[n.Column]})
	}
	if err := setRows(f, ReportSheet, rows); err != nil {
		return err
	}
	if err := f.SetColWidth(ReportSheet, "A", "A", 28); err != nil {
		return errors.NewStorageError("failed to size column", err)
	}
	return nil
}

func writeSeriesSheet(f *excelize.File, s domain.Series) error {
	sheet := SheetName(s.Name)
	if _, err := f.NewSheet(sheet); err != nil {
		return errors.NewStorageError("failed to add sheet", err)
	}

	rows := [][]interface{}{{"label", string(s.Unit)}}
	for _, p := range s.Points {
		rows = append(rows, []interface{}{p.Label, p.Value})
	}
	if err := setRows(f, sheet, rows); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", "A", 24); err != nil {
		return errors.NewStorageError("failed to size column", err)
	}

	kind := excelize.Col
	if spec, ok := visualizer.Catalog[s.Name]; ok {
		switch spec.Kind {
		case visualizer.KindLine:
			kind = excelize.Line
		case visualizer.KindHorizontalBar:
			kind = excelize.Bar
		}
	}
	last := s.Len() + 1
	chart := &excelize.Chart{
		Type: kind,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("'%s'!$B$1", sheet),
			Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", sheet, last),
			Values:     fmt.Sprintf("'%s'!$B$2:$B$%d", sheet, last),
		}},
		Title:  []excelize.RichTextRun{{Text: title(s.Name)}},
		Legend: excelize.ChartLegend{Position: "none"},
	}
	if err := f.AddChart(sheet, "D2", chart); err != nil {
		return errors.NewStorageError("failed to add chart", err)
	}
	return nil
}

func writeCrossTabSheet(f *excelize.File, ct domain.CrossTab) error {
	sheet := SheetName(ct.Name)
	if _, err := f.NewSheet(sheet); err != nil {
		return errors.NewStorageError("failed to add sheet", err)
	}

	header := []interface{}{""}
	for _, c := range ct.ColumnLabels {
		header = append(header, c)
	}
	rows := [][]interface{}{header}
	for i, label := range ct.RowLabels {
		row := []interface{}{label}
		for _, v := range ct.Cells[i] {
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	if err := setRows(f, sheet, rows); err != nil {
		return err
	}

	// one stacked series per column label, row labels on the category axis
	last := len(ct.RowLabels) + 1
	series := make([]excelize.ChartSeries, 0, len(ct.ColumnLabels))
	for j := range ct.ColumnLabels {
		col, err := excelize.ColumnNumberToName(j + 2)
		if err != nil {
			return errors.NewStorageError("failed to address column", err)
		}
		series = append(series, excelize.ChartSeries{
			Name:       fmt.Sprintf("'%s'!$%s$1", sheet, col),
			Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", sheet, last),
			Values:     fmt.Sprintf("'%s'!$%s$2:$%s$%d", sheet, col, col, last),
		})
	}
	anchor, err := excelize.CoordinatesToCellName(len(ct.ColumnLabels)+3, 2)
	if err != nil {
		return errors.NewStorageError("failed to address chart anchor", err)
	}
	chart := &excelize.Chart{
		Type:   excelize.ColStacked,
		Series: series,
		Title:  []excelize.RichTextRun{{Text: title(ct.Name)}},
		Legend: excelize.ChartLegend{Position: "right"},
	}
	if err := f.AddChart(sheet, anchor, chart); err != nil {
		return errors.NewStorageError("failed to add chart", err)
	}
	return nil
}

func setRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return errors.NewStorageError("failed to address row", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.NewStorageError("failed to write row", err).WithContext("sheet", sheet)
		}
	}
	return nil
}
