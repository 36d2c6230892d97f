package exporter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trafficcli/pkg/contracts/domain"
)

func sampleReport() domain.CleaningReport {
	return domain.CleaningReport{
		Variant:          domain.VariantViolations,
		RuleSet:          "violations",
		OriginalRows:     5,
		CleanedRows:      2,
		RowsRemoved:      3,
		ColumnsProcessed: []string{"Violation_ID", "Gender"},
		NullsBefore:      []domain.NullCount{{Column: "Gender", Nulls: 2}, {Column: "Location", Nulls: 1}},
		NullsAfter:       []domain.NullCount{{Column: "Gender", Nulls: 0}, {Column: "Location", Nulls: 0}},
	}
}

func TestWriteReportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "cleaning_report.json")
	require.NoError(t, WriteReportJSON(path, sampleReport()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "violations", got["variant"])
	assert.Equal(t, float64(3), got["rows_removed"])
	assert.Len(t, got["nulls_before"], 2)
	assert.NotContains(t, got, "operations")

	var report domain.CleaningReport
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, sampleReport(), report)
}
