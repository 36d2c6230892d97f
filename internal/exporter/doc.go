// Package exporter writes the artifacts of a run to disk.
//
// CSVWriter exports the cleaned table, with an optional UTF-8 BOM for
// Excel, either in one call (WriteTable) or row by row through a
// StreamWriter. WriteReportJSON stores the cleaning report. Workbook
// collects every summary into one xlsx file with a native chart per sheet.
//
// Example usage:
//
//	w := exporter.NewCSVWriter(paths.OutputDir, logger)
//	err := w.WriteTable("violations_clean.csv", clean, exporter.WriteOptions{BOMPrefix: true})
//
//	err = exporter.WriteReportJSON(paths.ReportJSON, report)
//	err = exporter.NewWorkbook(logger).Write(paths.Workbook, summary, &report)
package exporter
