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

// violations builds a cleaned violation table. Dates are ISO text as in a
// table loaded without date parsing.
func violations(t *testing.T, extra ...domain.Column) *domain.Table {
	t.Helper()
	cols := []domain.Column{
		testutil.TextColumn(dataprocessing.ColViolationID, "1", "2", "3", "4", "5", "6"),
		testutil.TextColumn(dataprocessing.ColViolationType, "Speeding", "Speeding", "Red Light", "Speeding", "No Helmet", "Red Light"),
		testutil.TextColumn(dataprocessing.ColDate, "2023-01-15", "2023-01-20", "2023-02-03", "2023-07-09", "2023-12-24", "2024-03-31"),
		testutil.TextColumn(dataprocessing.ColLocation, "Delhi", "Punjab", "Delhi", "Delhi", "Gujarat", "Punjab"),
	}
	return testutil.Table(t, append(cols, extra...)...)
}

func newViolationAnalyzer(t *testing.T, extra ...domain.Column) *ViolationAnalyzer {
	t.Helper()
	a, err := NewViolationAnalyzer(violations(t, extra...), nil)
	require.NoError(t, err)
	return a
}

func TestNewViolationAnalyzer_Validation(t *testing.T) {
	tests := []struct {
		name  string
		table func(t *testing.T) *domain.Table
	}{
		{name: "nil table", table: func(*testing.T) *domain.Table { return nil }},
		{name: "empty table", table: func(t *testing.T) *domain.Table {
			return testutil.Table(t,
				testutil.TextColumn(dataprocessing.ColViolationType),
				testutil.TextColumn(dataprocessing.ColDate),
				testutil.TextColumn(dataprocessing.ColLocation))
		}},
		{name: "missing location", table: func(t *testing.T) *domain.Table {
			return testutil.Table(t,
				testutil.TextColumn(dataprocessing.ColViolationType, "Speeding"),
				testutil.TextColumn(dataprocessing.ColDate, "2023-01-01"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewViolationAnalyzer(tt.table(t), nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrValidation), "got %v", err)
		})
	}
}

func TestNewViolationAnalyzer_DerivedColumns(t *testing.T) {
	a := newViolationAnalyzer(t,
		testutil.TextColumn(dataprocessing.ColTime, "05:59", "06:00", "12:30", "18:00", "23:59", "bad"),
		testutil.TextColumn(dataprocessing.ColFineAmount, "1000", "1000.5", "5000", "5001", "0", "abc"),
	)
	table := a.Table()

	for _, name := range []string{ColYear, ColMonth, ColMonthName, ColDayOfWeek, ColDayOfWeekNum, ColQuarter, ColHour, ColTimeOfDay, ColFineCategory} {
		assert.True(t, table.Has(name), name)
	}

	// 2023-01-15 is a Sunday
	assert.Equal(t, "January", table.Value(ColMonthName, 0).Text())
	assert.Equal(t, "Sunday", table.Value(ColDayOfWeek, 0).Text())
	f, _ := table.Value(ColDayOfWeekNum, 0).Float()
	assert.Equal(t, 6.0, f)
	q, _ := table.Value(ColQuarter, 3).Float()
	assert.Equal(t, 3.0, q)

	date, ok := table.Column(dataprocessing.ColDate)
	require.True(t, ok)
	assert.Equal(t, domain.KindDate, date.Kind)

	var buckets, categories []string
	for i := 0; i < table.Len(); i++ {
		buckets = append(buckets, table.Value(ColTimeOfDay, i).String())
		categories = append(categories, table.Value(ColFineCategory, i).String())
	}
	assert.Equal(t, []string{"Night", "Morning", "Afternoon", "Evening", "Evening", ""}, buckets)
	assert.Equal(t, []string{"<1K", "1K-2K", "4K-5K", "5K+", "", ""}, categories)

	assert.True(t, a.Capabilities().Has(ColTimeOfDay))
}

func TestViolationAnalyzer_NoOptionalColumns(t *testing.T) {
	a := newViolationAnalyzer(t)

	assert.False(t, a.Table().Has(ColTimeOfDay))
	assert.False(t, a.Table().Has(ColFineCategory))

	tests := []struct {
		name string
		call func() error
	}{
		{"time of day", func() error { _, err := a.TimeOfDayDistribution(); return err }},
		{"fine summary", func() error { _, err := a.FineAmountSummary(); return err }},
		{"fine categories", func() error { _, err := a.FineCategoryDistribution(); return err }},
		{"vehicle cross-tab", func() error { _, err := a.ViolationByVehicleType(); return err }},
		{"gender", func() error { _, err := a.DriverDemographics(ByGender); return err }},
		{"age", func() error { _, err := a.DriverDemographics(ByAge); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(tt.call(), apperrors.ErrValidation))
		})
	}
}

func TestViolationAnalyzer_DoesNotModifyInput(t *testing.T) {
	clean := violations(t)
	_, err := NewViolationAnalyzer(clean, nil)
	require.NoError(t, err)

	assert.False(t, clean.Has(ColYear))
	c, _ := clean.Column(dataprocessing.ColDate)
	assert.Equal(t, domain.KindText, c.Kind)
}

func TestViolationTypeDistribution(t *testing.T) {
	a := newViolationAnalyzer(t)

	s, err := a.ViolationTypeDistribution(10)
	require.NoError(t, err)
	assert.Equal(t, domain.UnitPercent, s.Unit)
	assert.Equal(t, []string{"Speeding", "Red Light", "No Helmet"}, s.Labels())
	assert.Equal(t, []float64{50, 33.33, 16.67}, s.Values())

	top, err := a.ViolationTypeDistribution(2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Speeding", "Red Light"}, top.Labels())

	_, err = a.ViolationTypeDistribution(0)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestTemporalTrend(t *testing.T) {
	a := newViolationAnalyzer(t)

	tests := []struct {
		freq   Frequency
		labels []string
		values []float64
	}{
		{Monthly, []string{"2023-01", "2023-02", "2023-07", "2023-12", "2024-03"}, []float64{2, 1, 1, 1, 1}},
		{Quarterly, []string{"2023Q1", "2023Q3", "2023Q4", "2024Q1"}, []float64{3, 1, 1, 1}},
		{Yearly, []string{"2023", "2024"}, []float64{5, 1}},
		{Weekly, []string{"2023-01-09/2023-01-15", "2023-01-16/2023-01-22", "2023-01-30/2023-02-05", "2023-07-03/2023-07-09", "2023-12-18/2023-12-24", "2024-03-25/2024-03-31"}, []float64{1, 1, 1, 1, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(string(tt.freq), func(t *testing.T) {
			s, err := a.TemporalTrend(tt.freq)
			require.NoError(t, err)
			assert.Equal(t, tt.labels, s.Labels())
			assert.Equal(t, tt.values, s.Values())
			assert.Equal(t, float64(a.Table().Len()), s.Total())
		})
	}

	_, err := a.TemporalTrend(Frequency("H"))
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestTemporalTrend_MonthSumsToRowCount(t *testing.T) {
	a := newViolationAnalyzer(t)
	s, err := a.TemporalTrend(Monthly)
	require.NoError(t, err)
	assert.Equal(t, float64(a.Table().Len()), s.Total())
}

func TestParseFrequency(t *testing.T) {
	tests := []struct {
		input   string
		want    Frequency
		wantErr bool
	}{
		{input: "M", want: Monthly},
		{input: "month", want: Monthly},
		{input: "Weekly", want: Weekly},
		{input: "d", want: Daily},
		{input: "Quarter", want: Quarterly},
		{input: "Y", want: Yearly},
		{input: "H", wantErr: true},
		{input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFrequency(tt.input)
			if tt.wantErr {
				assert.True(t, errors.Is(err, apperrors.ErrValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGeographicalDistribution(t *testing.T) {
	a := newViolationAnalyzer(t)

	s, err := a.GeographicalDistribution(2)
	require.NoError(t, err)
	assert.Equal(t, domain.UnitCount, s.Unit)
	assert.Equal(t, []string{"Delhi", "Punjab"}, s.Labels())
	assert.Equal(t, []float64{3, 2}, s.Values())
}

func TestViolationByVehicleType(t *testing.T) {
	a := newViolationAnalyzer(t,
		testutil.TextColumn(dataprocessing.ColVehicleType, "Car", "Car", "Bike", "Car", "Bike", "Car"))

	ct, err := a.ViolationByVehicleType()
	require.NoError(t, err)

	assert.Equal(t, domain.UnitPercent, ct.Unit)
	assert.Equal(t, []string{"Bike", "Car"}, ct.RowLabels)
	assert.Equal(t, []string{"No Helmet", "Red Light", "Speeding"}, ct.ColumnLabels)
	assert.Equal(t, []float64{50, 50, 0}, ct.Cells[0])
	assert.Equal(t, []float64{0, 25, 75}, ct.Cells[1])
	assert.InDelta(t, 100, ct.RowTotal("Car"), 0.01)
}

func TestTimeOfDayDistribution(t *testing.T) {
	a := newViolationAnalyzer(t,
		testutil.TextColumn(dataprocessing.ColTime, "19:00", "07:15", "08:00", "20:30", "21:00", "09:45"))

	s, err := a.TimeOfDayDistribution()
	require.NoError(t, err)
	assert.Equal(t, []string{"Morning", "Evening"}, s.Labels())
	assert.Equal(t, []float64{50, 50}, s.Values())
}

func TestDriverDemographics(t *testing.T) {
	t.Run("age bands", func(t *testing.T) {
		clean := testutil.Table(t,
			testutil.TextColumn(dataprocessing.ColViolationType, "A", "B", "C"),
			testutil.TextColumn(dataprocessing.ColDate, "2023-01-01", "2023-01-02", "2023-01-03"),
			testutil.TextColumn(dataprocessing.ColLocation, "Delhi", "Delhi", "Delhi"),
			testutil.NumberColumn(dataprocessing.ColDriverAge, testutil.F(15), testutil.F(25), testutil.F(65)),
		)
		a, err := NewViolationAnalyzer(clean, nil)
		require.NoError(t, err)

		s, err := a.DriverDemographics("Age")
		require.NoError(t, err)
		assert.Equal(t, []string{"<20", "20-29", "60-69"}, s.Labels())
		for _, v := range s.Values() {
			assert.Positive(t, v)
		}
		assert.InDelta(t, 100, s.Total(), 0.02)
	})

	t.Run("gender", func(t *testing.T) {
		a := newViolationAnalyzer(t,
			testutil.TextColumn(dataprocessing.ColDriverGender, "Male", "Female", "Male", "Male", "Other", "Female"))

		s, err := a.DriverDemographics("gender")
		require.NoError(t, err)
		assert.Equal(t, []string{"Male", "Female", "Other"}, s.Labels())
		assert.Equal(t, []float64{50, 33.33, 16.67}, s.Values())
	})

	t.Run("unsupported selector", func(t *testing.T) {
		a := newViolationAnalyzer(t)
		_, err := a.DriverDemographics("Income")
		assert.True(t, errors.Is(err, apperrors.ErrValidation))
	})
}

func TestFineAmountSummary(t *testing.T) {
	a := newViolationAnalyzer(t,
		testutil.TextColumn(dataprocessing.ColFineAmount, "100", "200", "300", "400", "", "x"))

	stats, err := a.FineAmountSummary()
	require.NoError(t, err)
	assert.Equal(t, domain.DescriptiveStats{
		Count: 4, Mean: 250, Std: 129.1, Min: 100, Q25: 175, Median: 250, Q75: 325, Max: 400,
	}, stats)
}

func TestFineCategoryDistribution(t *testing.T) {
	a := newViolationAnalyzer(t,
		testutil.TextColumn(dataprocessing.ColFineAmount, "6000", "500", "700", "1500", "", "9000"))

	s, err := a.FineCategoryDistribution()
	require.NoError(t, err)
	assert.Equal(t, []string{"<1K", "1K-2K", "5K+"}, s.Labels())
	assert.Equal(t, []float64{40, 20, 40}, s.Values())
}

func TestSeasonalDistribution(t *testing.T) {
	a := newViolationAnalyzer(t)

	s, err := a.SeasonalDistribution()
	require.NoError(t, err)
	// Jan, Jan, Feb, Dec are winter; Jul summer; Mar spring
	assert.Equal(t, []string{"Winter", "Spring", "Summer"}, s.Labels())
	assert.Equal(t, []float64{66.67, 16.67, 16.67}, s.Values())
}

func TestViolationAnalyzer_Summaries(t *testing.T) {
	a := newViolationAnalyzer(t,
		testutil.TextColumn(dataprocessing.ColVehicleType, "Car", "Car", "Bike", "Car", "Bike", "Car"),
		testutil.TextColumn(dataprocessing.ColFineAmount, "100", "200", "300", "400", "500", "600"))

	sum, err := a.Summaries(context.Background(), 5, Monthly)
	require.NoError(t, err)

	for _, name := range []string{SeriesViolationTypes, SeriesTemporalTrend, SeriesLocations, SeriesFineCategories, SeriesFineSummary, SeriesSeasons} {
		_, ok := sum.Find(name)
		assert.True(t, ok, name)
	}
	_, ok := sum.Find(SeriesTimeOfDay)
	assert.False(t, ok)
	_, ok = sum.FindCrossTab(TabVehicleViolation)
	assert.True(t, ok)

	_, err = a.Summaries(context.Background(), 5, Frequency("X"))
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}
