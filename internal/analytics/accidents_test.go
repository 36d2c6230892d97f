package analytics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trafficcli/internal/dataprocessing"
	apperrors "trafficcli/internal/errors"
	"trafficcli/internal/shared/testutil"
	"trafficcli/pkg/contracts/domain"
)

func cleanAccidents(t *testing.T) *domain.Table {
	t.Helper()
	raw := testutil.Table(t,
		testutil.DateColumn(t, dataprocessing.ColAccidentDate, "2014-01-05", "2014-01-20", "2014-03-02", "2014-12-31"),
		testutil.TextColumn(dataprocessing.ColSeverity, "h", "m", "h", "d"),
		testutil.TextColumn(dataprocessing.ColAccidentClass, "CHOQUE", "CHOQUE", "VOLCAMIENTO", "CHOQUE"),
		testutil.TextColumn(dataprocessing.ColMunicipality, "MEDELLÍN", "BELLO", "MEDELLÍN", "ENVIGADO"),
		testutil.TextColumn(dataprocessing.ColWeather, "normal", "lluvia", "normal", ""),
		testutil.TextColumn(dataprocessing.ColAccidentHour, "08:15", "17:40", "08:59", "sin dato"),
		testutil.TextColumn(dataprocessing.VictimColumns[0], "1", "0", "0", "4"),
		testutil.TextColumn(dataprocessing.VictimColumns[1], "0", "0", "1", "0"),
		testutil.TextColumn(dataprocessing.VictimColumns[2], "0", "2", "0", "0"),
		testutil.TextColumn(dataprocessing.VictimColumns[3], "1", "0", "0", "0"),
		testutil.TextColumn(dataprocessing.VictimColumns[4], "0", "0", "0", "0"),
		testutil.TextColumn(dataprocessing.VictimColumns[5], "0", "0", "0", "0"),
	)
	clean, err := dataprocessing.NewCleaner(dataprocessing.AccidentRules(), nil).Clean(context.Background(), raw)
	require.NoError(t, err)
	return clean
}

func newAccidentAnalyzer(t *testing.T) *AccidentAnalyzer {
	t.Helper()
	a, err := NewAccidentAnalyzer(cleanAccidents(t), nil)
	require.NoError(t, err)
	return a
}

func TestNewAccidentAnalyzer_Validation(t *testing.T) {
	_, err := NewAccidentAnalyzer(nil, nil)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	// a raw table has no TOTAL VICTIMAS yet
	_, err = NewAccidentAnalyzer(testutil.RawAccidents(t), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	assert.Contains(t, err.Error(), dataprocessing.ColTotalVictims)
}

func TestAccidentsByMonth(t *testing.T) {
	a := newAccidentAnalyzer(t)

	s, err := a.AccidentsByMonth()
	require.NoError(t, err)

	require.Equal(t, 12, s.Len())
	assert.Equal(t, "Ene", s.Points[0].Label)
	assert.Equal(t, 2.0, s.Points[0].Value)
	assert.Equal(t, 1.0, s.Points[2].Value)
	assert.Equal(t, "Dic", s.Points[11].Label)
	assert.Equal(t, 1.0, s.Points[11].Value)
	assert.Equal(t, float64(a.Table().Len()), s.Total())
}

func TestAccidentValueCounts(t *testing.T) {
	a := newAccidentAnalyzer(t)

	tests := []struct {
		name   string
		query  func() (domain.Series, error)
		labels []string
		values []float64
	}{
		{"severity", a.AccidentsBySeverity, []string{"h", "m", "d"}, []float64{2, 1, 1}},
		{"class", a.AccidentsByClass, []string{"CHOQUE", "VOLCAMIENTO"}, []float64{3, 1}},
		{"weather", a.WeatherConditions, []string{"NORMAL", "LLUVIA"}, []float64{2, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := tt.query()
			require.NoError(t, err)
			assert.Equal(t, domain.UnitCount, s.Unit)
			assert.Equal(t, tt.labels, s.Labels())
			assert.Equal(t, tt.values, s.Values())
		})
	}
}

func TestVictimsByMunicipality(t *testing.T) {
	a := newAccidentAnalyzer(t)

	s, err := a.VictimsByMunicipality(10)
	require.NoError(t, err)
	assert.Equal(t, domain.UnitSum, s.Unit)
	assert.Equal(t, []string{"ENVIGADO", "MEDELLÍN", "BELLO"}, s.Labels())
	assert.Equal(t, []float64{4, 3, 2}, s.Values())

	top, err := a.VictimsByMunicipality(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"ENVIGADO"}, top.Labels())
}

func TestSeverityByClass(t *testing.T) {
	a := newAccidentAnalyzer(t)

	ct, err := a.SeverityByClass()
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "h", "m"}, ct.RowLabels)
	assert.Equal(t, []string{"CHOQUE", "VOLCAMIENTO"}, ct.ColumnLabels)
	v, ok := ct.Cell("h", "VOLCAMIENTO")
	require.True(t, ok)
	assert.Equal(t, 1.0, v)
	v, _ = ct.Cell("m", "VOLCAMIENTO")
	assert.Equal(t, 0.0, v)
}

func TestVictimsByHour(t *testing.T) {
	a := newAccidentAnalyzer(t)

	s, err := a.VictimsByHour()
	require.NoError(t, err)
	require.Equal(t, 24, s.Len())
	assert.Equal(t, "8:00", s.Points[8].Label)
	assert.Equal(t, 3.0, s.Points[8].Value)
	assert.Equal(t, 2.0, s.Points[17].Value)
	// the unparsed hour's 4 victims are left out
	assert.Equal(t, 5.0, s.Total())
}

func TestAccidentAnalyzer_MissingOptionalColumns(t *testing.T) {
	clean := testutil.Table(t,
		testutil.DateColumn(t, dataprocessing.ColAccidentDate, "2014-01-05"),
		testutil.TextColumn(dataprocessing.ColSeverity, "h"),
		testutil.TextColumn(dataprocessing.ColAccidentClass, "CHOQUE"),
		testutil.TextColumn(dataprocessing.ColMunicipality, "BELLO"),
		testutil.NumberColumn(dataprocessing.ColTotalVictims, testutil.F(1)),
	)
	a, err := NewAccidentAnalyzer(clean, nil)
	require.NoError(t, err)

	_, err = a.WeatherConditions()
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	_, err = a.VictimsByHour()
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	sum, err := a.Summaries(context.Background(), 10, Monthly)
	require.NoError(t, err)
	_, ok := sum.Find(SeriesWeatherConditions)
	assert.False(t, ok)
	_, ok = sum.Find(SeriesAccidentsByMonth)
	assert.True(t, ok)
	_, ok = sum.FindCrossTab(TabSeverityByClass)
	assert.True(t, ok)
}
