package dataprocessing

import (
	"context"
	"log/slog"

	"trafficcli/pkg/contracts/domain"
)

// BuildReport compares a raw table with its cleaned form. ColumnsProcessed
// lists the rule set's columns that exist in the raw table, in raw order.
func BuildReport(rules RuleSet, original, cleaned *domain.Table) domain.CleaningReport {
	report := domain.CleaningReport{
		Variant: rules.Variant,
		RuleSet: rules.Name,
	}
	if original == nil {
		return report
	}

	report.OriginalRows = original.Len()
	report.NullsBefore = original.NullCounts()

	ruleColumns := make(map[string]bool)
	for _, name := range rules.Columns() {
		ruleColumns[name] = true
	}
	for _, name := range original.Names() {
		if ruleColumns[name] {
			report.ColumnsProcessed = append(report.ColumnsProcessed, name)
		}
	}

	if cleaned != nil {
		report.CleanedRows = cleaned.Len()
		report.NullsAfter = cleaned.NullCounts()
	}
	report.RowsRemoved = report.OriginalRows - report.CleanedRows
	return report
}

// LogReport writes the report as structured log records
func LogReport(ctx context.Context, logger *slog.Logger, report domain.CleaningReport) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.InfoContext(ctx, "Cleaning report",
		slog.String("variant", string(report.Variant)),
		slog.String("rule_set", report.RuleSet),
		slog.Int("original_rows", report.OriginalRows),
		slog.Int("cleaned_rows", report.CleanedRows),
		slog.Int("rows_removed", report.RowsRemoved),
		slog.Int("nulls_before", report.TotalNullsBefore()),
		slog.Int("nulls_after", report.TotalNullsAfter()),
		slog.Any("columns_processed", report.ColumnsProcessed))

	for _, op := range report.Operations {
		logger.DebugContext(ctx, "Cleaning operation",
			slog.String("step", op.Step),
			slog.String("column", op.Column),
			slog.Int("cells", op.Cells))
	}
}
