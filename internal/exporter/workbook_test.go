package exporter

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"trafficcli/internal/analytics"
	"trafficcli/internal/shared/testutil"
	"trafficcli/pkg/contracts/domain"
)

func TestSheetName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"seasons", "seasons"},
		{"a/b:c", "a_b_c"},
		{strings.Repeat("x", 40), strings.Repeat("x", 31)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SheetName(tt.in))
	}
}

func TestWorkbook_Write(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	path := filepath.Join(t.TempDir(), "summary.xlsx")

	sum := analytics.Summary{
		Series: []domain.Series{
			{Name: analytics.SeriesSeasons, Unit: domain.UnitPercent, Points: []domain.Point{
				{Label: "Winter", Value: 66.67}, {Label: "Spring", Value: 33.33},
			}},
			{Name: analytics.SeriesTemporalTrend, Unit: domain.UnitCount, Points: []domain.Point{
				{Label: "2023-01", Value: 2}, {Label: "2023-02", Value: 1},
			}},
			{Name: analytics.SeriesDriverGender, Unit: domain.UnitPercent},
		},
		CrossTabs: []domain.CrossTab{{
			Name:         analytics.TabVehicleViolation,
			Unit:         domain.UnitPercent,
			RowLabels:    []string{"Bike", "Car"},
			ColumnLabels: []string{"No Helmet", "Speeding"},
			Cells:        [][]float64{{100, 0}, {0, 100}},
		}},
	}
	report := sampleReport()

	require.NoError(t, NewWorkbook(logger).Write(path, sum, &report))
	testutil.AssertLogAttr(t, handler, "sheets", 3)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{
		ReportSheet,
		analytics.SeriesSeasons,
		analytics.SeriesTemporalTrend,
		analytics.TabVehicleViolation,
	}, f.GetSheetList())

	v, err := f.GetCellValue(ReportSheet, "B5")
	require.NoError(t, err)
	assert.Equal(t, "3", v)

	rows, err := f.GetRows(analytics.SeriesSeasons)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"label", "percent"}, {"Winter", "66.67"}, {"Spring", "33.33"}}, rows)

	rows, err = f.GetRows(analytics.TabVehicleViolation)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"", "No Helmet", "Speeding"}, rows[0])
	assert.Equal(t, []string{"Car", "0", "100"}, rows[2])
}

func TestWorkbook_WithoutReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "summary.xlsx")
	require.NoError(t, NewWorkbook(nil).Write(path, analytics.Summary{}, nil))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{ReportSheet}, f.GetSheetList())
}
