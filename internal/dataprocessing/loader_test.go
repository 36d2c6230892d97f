package dataprocessing

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"trafficcli/internal/errors"
	"trafficcli/pkg/contracts/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoader_LoadCSV(t *testing.T) {
	path := writeFile(t, "accidents.csv",
		"\xef\xbb\xbfFECHA ACCIDENTE,GRAVEDAD,ESTADO CLIMA\n"+
			"11/06/2014,h,Normal\n"+
			"2014-06-12,NA,\n"+
			"31/02/2014,m,Lluvia\n")

	table, err := NewLoader(nil).Load(context.Background(), path, LoadOptions{DateColumn: ColAccidentDate})
	require.NoError(t, err)

	assert.Equal(t, []string{ColAccidentDate, ColSeverity, ColWeather}, table.Names())
	require.Equal(t, 3, table.Len())

	dates, ok := table.Column(ColAccidentDate)
	require.True(t, ok)
	assert.Equal(t, domain.KindDate, dates.Kind)
	first, ok := dates.Values[0].Time()
	require.True(t, ok)
	assert.Equal(t, time.Date(2014, time.June, 11, 0, 0, 0, 0, time.UTC), first)
	second, _ := dates.Values[1].Time()
	assert.Equal(t, time.June, second.Month())
	assert.Equal(t, 12, second.Day())
	assert.True(t, dates.Values[2].IsNull(), "impossible date must be missing")

	assert.True(t, table.Value(ColSeverity, 1).IsNull())
	assert.True(t, table.Value(ColWeather, 1).IsNull())
	assert.Equal(t, "Lluvia", table.Value(ColWeather, 2).Text())
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		monthFirst bool
		want       time.Time
		wantOK     bool
	}{
		{name: "iso", input: "2023-11-19", want: time.Date(2023, 11, 19, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "day first", input: "05/04/2023", want: time.Date(2023, 4, 5, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "month first", input: "05/04/2023", monthFirst: true, want: time.Date(2023, 5, 4, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "with time", input: "2014-06-11 13:45:00", want: time.Date(2014, 6, 11, 13, 45, 0, 0, time.UTC), wantOK: true},
		{name: "blank", input: "  ", wantOK: false},
		{name: "garbage", input: "yesterday", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.input, tt.monthFirst)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.True(t, tt.want.Equal(got), "want %v got %v", tt.want, got)
			}
		})
	}
}

func TestLoader_HeaderOnlyCSV(t *testing.T) {
	path := writeFile(t, "violations.csv", "Violation_ID,Date\n")

	table, err := NewLoader(nil).Load(context.Background(), path, LoadOptions{DateColumn: ColDate})
	require.NoError(t, err)

	assert.Equal(t, 0, table.Len())
	assert.Equal(t, []string{ColViolationID, ColDate}, table.Names())
	c, _ := table.Column(ColDate)
	assert.Equal(t, domain.KindDate, c.Kind)
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name     string
		path     func(t *testing.T) string
		wantType errors.ErrorType
	}{
		{
			name:     "missing file",
			path:     func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.csv") },
			wantType: errors.ErrTypeNotFound,
		},
		{
			name:     "ragged rows",
			path:     func(t *testing.T) string { return writeFile(t, "bad.csv", "a,b\n1,2,3\n") },
			wantType: errors.ErrTypeParsing,
		},
		{
			name:     "unsupported format",
			path:     func(t *testing.T) string { return writeFile(t, "data.json", "{}") },
			wantType: errors.ErrTypeValidation,
		},
		{
			name:     "corrupt workbook",
			path:     func(t *testing.T) string { return writeFile(t, "bad.xlsx", "not a zip") },
			wantType: errors.ErrTypeParsing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader(nil).Load(context.Background(), tt.path(t), LoadOptions{})
			require.Error(t, err)
			assert.True(t, errors.IsType(err, tt.wantType), "got %v", err)
		})
	}
}

func TestLoader_LoadXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Violation_ID", "Date", "Comments"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"1", "19/11/2023", "ok"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"2", "20/11/2023"}))
	path := filepath.Join(t.TempDir(), "violations.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := NewLoader(nil).Load(context.Background(), path, LoadOptions{DateColumn: ColDate})
	require.NoError(t, err)

	require.Equal(t, 2, table.Len())
	assert.Equal(t, "1", table.Value(ColViolationID, 0).Text())
	assert.True(t, table.Value(ColComments, 1).IsNull(), "short row is padded with missing")
	d, ok := table.Value(ColDate, 1).Time()
	require.True(t, ok)
	assert.Equal(t, 20, d.Day())
}
