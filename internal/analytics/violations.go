package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"trafficcli/internal/dataprocessing"
	"trafficcli/internal/errors"
	"trafficcli/pkg/contracts/domain"
)

// Columns derived by NewViolationAnalyzer
const (
	ColYear         = "Year"
	ColMonth        = "Month"
	ColMonthName    = "MonthName"
	ColDayOfWeek    = "DayOfWeek"
	ColDayOfWeekNum = "DayOfWeekNum"
	ColQuarter      = "Quarter"
	ColHour         = "Hour"
	ColTimeOfDay    = "TimeOfDay"
	ColFineCategory = "Fine_Category"
)

// Demographic selectors for DriverDemographics
const (
	ByGender = "Gender"
	ByAge    = "Age"
)

var violationRequired = []string{
	dataprocessing.ColViolationType,
	dataprocessing.ColDate,
	dataprocessing.ColLocation,
}

// ViolationAnalyzer answers summary queries over a cleaned violation table
type ViolationAnalyzer struct {
	table  *domain.Table
	caps   domain.Schema
	logger *slog.Logger
}

// NewViolationAnalyzer validates clean and derives the calendar, time of
// day and fine category columns
func NewViolationAnalyzer(clean *domain.Table, logger *slog.Logger) (*ViolationAnalyzer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := validateInput(clean, violationRequired); err != nil {
		return nil, err
	}

	derived, err := deriveViolationColumns(clean)
	if err != nil {
		return nil, errors.NewValidationError(fmt.Sprintf("failed to derive columns: %v", err))
	}

	a := &ViolationAnalyzer{table: derived, caps: derived.Schema(), logger: logger}
	logger.Debug("Violation analyzer ready",
		slog.Int("rows", derived.Len()),
		slog.Bool("time_of_day", a.caps.Has(ColTimeOfDay)),
		slog.Bool("fine_category", a.caps.Has(ColFineCategory)))
	return a, nil
}

func validateInput(clean *domain.Table, required []string) error {
	if clean == nil {
		return errors.NewValidationError("analyzer input must be a table, got nil")
	}
	if clean.Len() == 0 {
		return errors.NewValidationError("analyzer input table is empty")
	}
	if missing := clean.Schema().Missing(required...); len(missing) > 0 {
		return errors.NewValidationError("missing required columns: "+strings.Join(missing, ", ")).
			WithContext("missing_columns", missing)
	}
	return nil
}

func deriveViolationColumns(clean *domain.Table) (*domain.Table, error) {
	src, _ := clean.Column(dataprocessing.ColDate)
	n := clean.Len()
	var (
		dates     = make([]domain.Value, n)
		years     = make([]domain.Value, n)
		months    = make([]domain.Value, n)
		names     = make([]domain.Value, n)
		weekdays  = make([]domain.Value, n)
		weekdayNo = make([]domain.Value, n)
		quarters  = make([]domain.Value, n)
	)
	for i, v := range src.Values {
		t, ok := dateAt(v)
		if !ok {
			dates[i] = domain.Null(domain.KindDate)
			years[i] = domain.Null(domain.KindNumber)
			months[i] = domain.Null(domain.KindNumber)
			names[i] = domain.Null(domain.KindText)
			weekdays[i] = domain.Null(domain.KindText)
			weekdayNo[i] = domain.Null(domain.KindNumber)
			quarters[i] = domain.Null(domain.KindNumber)
			continue
		}
		dates[i] = domain.Date(t)
		years[i] = domain.Number(float64(t.Year()))
		months[i] = domain.Number(float64(t.Month()))
		names[i] = domain.Text(t.Month().String())
		weekdays[i] = domain.Text(t.Weekday().String())
		weekdayNo[i] = domain.Number(float64((int(t.Weekday()) + 6) % 7))
		quarters[i] = domain.Number(float64((int(t.Month())-1)/3 + 1))
	}

	columns := []domain.Column{
		{Name: dataprocessing.ColDate, Kind: domain.KindDate, Values: dates},
		{Name: ColYear, Kind: domain.KindNumber, Values: years},
		{Name: ColMonth, Kind: domain.KindNumber, Values: months},
		{Name: ColMonthName, Kind: domain.KindText, Values: names},
		{Name: ColDayOfWeek, Kind: domain.KindText, Values: weekdays},
		{Name: ColDayOfWeekNum, Kind: domain.KindNumber, Values: weekdayNo},
		{Name: ColQuarter, Kind: domain.KindNumber, Values: quarters},
	}

	if timeCol, ok := clean.Column(dataprocessing.ColTime); ok {
		hours := make([]domain.Value, n)
		buckets := make([]domain.Value, n)
		for i, v := range timeCol.Values {
			hours[i] = dataprocessing.HourValue(v)
			buckets[i] = domain.Null(domain.KindText)
			if h, ok := hours[i].HourOfDay(); ok && h.Parsed {
				if label, ok := TimeOfDay(h.Hour); ok {
					buckets[i] = domain.Text(label)
				}
			}
		}
		columns = append(columns,
			domain.Column{Name: ColHour, Kind: domain.KindHour, Values: hours},
			domain.Column{Name: ColTimeOfDay, Kind: domain.KindText, Values: buckets})
	}

	if fineCol, ok := clean.Column(dataprocessing.ColFineAmount); ok {
		categories := make([]domain.Value, n)
		for i, v := range fineCol.Values {
			categories[i] = domain.Null(domain.KindText)
			if f, ok := dataprocessing.ParseNumber(v); ok {
				if label, ok := FineCategory(f); ok {
					categories[i] = domain.Text(label)
				}
			}
		}
		columns = append(columns, domain.Column{Name: ColFineCategory, Kind: domain.KindText, Values: categories})
	}

	table := clean
	for _, c := range columns {
		next, err := table.WithColumn(c)
		if err != nil {
			return nil, err
		}
		table = next
	}
	return table, nil
}

// Table returns the cleaned table with the derived columns
func (a *ViolationAnalyzer) Table() *domain.Table { return a.table }

// Capabilities lists the columns queries may rely on
func (a *ViolationAnalyzer) Capabilities() domain.Schema { return a.caps }

func (a *ViolationAnalyzer) require(name, hint string) (domain.Column, error) {
	if !a.caps.Has(name) {
		msg := fmt.Sprintf("column %s not found", name)
		if hint != "" {
			msg += " - " + hint
		}
		return domain.Column{}, errors.NewValidationError(msg).WithContext("column", name)
	}
	c, _ := a.table.Column(name)
	return c, nil
}

// ViolationTypeDistribution returns the percent share of each violation
// type, largest first, limited to topN
func (a *ViolationAnalyzer) ViolationTypeDistribution(topN int) (domain.Series, error) {
	if err := checkTopN(topN); err != nil {
		return domain.Series{}, err
	}
	c, err := a.require(dataprocessing.ColViolationType, "")
	if err != nil {
		return domain.Series{}, err
	}
	t := countText(c)
	points := percentOf(descending(t.points()), t.sum())
	return domain.Series{Name: SeriesViolationTypes, Unit: domain.UnitPercent, Points: head(points, topN)}, nil
}

// TemporalTrend counts violations per calendar period in ascending order.
// Rows without a readable date are skipped.
func (a *ViolationAnalyzer) TemporalTrend(freq Frequency) (domain.Series, error) {
	if !freq.Valid() {
		return domain.Series{}, errors.NewValidationError(fmt.Sprintf("unsupported frequency %q", string(freq))).
			WithContext("supported", Frequencies)
	}
	c, err := a.require(dataprocessing.ColDate, "")
	if err != nil {
		return domain.Series{}, err
	}
	return trend(SeriesTemporalTrend, c, freq, nil), nil
}

// trend buckets dates by freq; weight defaults to one per row
func trend(name string, dates domain.Column, freq Frequency, weight func(i int) float64) domain.Series {
	type bucket struct {
		start time.Time
		label string
		value float64
	}
	byLabel := map[string]*bucket{}
	for i, v := range dates.Values {
		t, ok := dateAt(v)
		if !ok {
			continue
		}
		start, label := freq.bucket(t)
		b, ok := byLabel[label]
		if !ok {
			b = &bucket{start: start, label: label}
			byLabel[label] = b
		}
		if weight == nil {
			b.value++
		} else {
			b.value += weight(i)
		}
	}
	buckets := make([]*bucket, 0, len(byLabel))
	for _, b := range byLabel {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].start.Before(buckets[j].start) })

	points := make([]domain.Point, len(buckets))
	for i, b := range buckets {
		points[i] = domain.Point{Label: b.label, Value: b.value}
	}
	unit := domain.UnitCount
	if weight != nil {
		unit = domain.UnitSum
	}
	return domain.Series{Name: name, Unit: unit, Points: points}
}

// GeographicalDistribution counts violations per location, largest first,
// limited to topN
func (a *ViolationAnalyzer) GeographicalDistribution(topN int) (domain.Series, error) {
	if err := checkTopN(topN); err != nil {
		return domain.Series{}, err
	}
	c, err := a.require(dataprocessing.ColLocation, "")
	if err != nil {
		return domain.Series{}, err
	}
	points := descending(countText(c).points())
	return domain.Series{Name: SeriesLocations, Unit: domain.UnitCount, Points: head(points, topN)}, nil
}

// ViolationByVehicleType returns, for each vehicle type, the percent share
// of each violation type
func (a *ViolationAnalyzer) ViolationByVehicleType() (domain.CrossTab, error) {
	vehicles, err := a.require(dataprocessing.ColVehicleType, "")
	if err != nil {
		return domain.CrossTab{}, err
	}
	types, _ := a.table.Column(dataprocessing.ColViolationType)
	ct := crossTab(TabVehicleViolation, vehicles, types, func(int) float64 { return 1 })
	return rowPercent(ct), nil
}

// TimeOfDayDistribution returns the percent share of each time of day
// bucket in Night, Morning, Afternoon, Evening order
func (a *ViolationAnalyzer) TimeOfDayDistribution() (domain.Series, error) {
	c, err := a.require(ColTimeOfDay, "check if the Time column exists")
	if err != nil {
		return domain.Series{}, err
	}
	t := countText(c)
	points := percentOf(t.ordered(TimeOfDayLabels), t.sum())
	return domain.Series{Name: SeriesTimeOfDay, Unit: domain.UnitPercent, Points: points}, nil
}

// DriverDemographics returns percent shares by ByGender or by ByAge band
func (a *ViolationAnalyzer) DriverDemographics(by string) (domain.Series, error) {
	switch {
	case strings.EqualFold(by, ByGender):
		c, err := a.require(dataprocessing.ColDriverGender, "")
		if err != nil {
			return domain.Series{}, err
		}
		t := countText(c)
		points := percentOf(descending(t.points()), t.sum())
		return domain.Series{Name: SeriesDriverGender, Unit: domain.UnitPercent, Points: points}, nil

	case strings.EqualFold(by, ByAge):
		c, err := a.require(dataprocessing.ColDriverAge, "")
		if err != nil {
			return domain.Series{}, err
		}
		t := newTally()
		for _, age := range numbers(c) {
			if band, ok := AgeBand(age); ok {
				t.add(band, 1)
			}
		}
		points := percentOf(t.ordered(AgeBandLabels), t.sum())
		return domain.Series{Name: SeriesDriverAge, Unit: domain.UnitPercent, Points: points}, nil
	}
	return domain.Series{}, errors.NewValidationError(fmt.Sprintf("invalid demographic option: %s", by)).
		WithContext("supported", []string{ByGender, ByAge})
}

// FineAmountSummary describes the fine amounts
func (a *ViolationAnalyzer) FineAmountSummary() (domain.DescriptiveStats, error) {
	c, err := a.require(dataprocessing.ColFineAmount, "")
	if err != nil {
		return domain.DescriptiveStats{}, err
	}
	return Describe(numbers(c))
}

// FineCategoryDistribution returns the percent share of each fine category
// in ascending amount order
func (a *ViolationAnalyzer) FineCategoryDistribution() (domain.Series, error) {
	c, err := a.require(ColFineCategory, "check if the Fine_Amount column exists")
	if err != nil {
		return domain.Series{}, err
	}
	t := countText(c)
	points := percentOf(t.ordered(FineCategoryLabels), t.sum())
	return domain.Series{Name: SeriesFineCategories, Unit: domain.UnitPercent, Points: points}, nil
}

// SeasonalDistribution returns the percent share of each meteorological
// season in calendar order
func (a *ViolationAnalyzer) SeasonalDistribution() (domain.Series, error) {
	c, err := a.require(ColMonth, "")
	if err != nil {
		return domain.Series{}, err
	}
	t := newTally()
	for _, m := range numbers(c) {
		t.add(Season(time.Month(int(m))), 1)
	}
	points := percentOf(t.ordered(SeasonLabels), t.sum())
	return domain.Series{Name: SeriesSeasons, Unit: domain.UnitPercent, Points: points}, nil
}

// Summaries runs every query the table supports, in a fixed order.
// Queries whose columns are absent are skipped.
func (a *ViolationAnalyzer) Summaries(ctx context.Context, topN int, freq Frequency) (Summary, error) {
	if err := checkTopN(topN); err != nil {
		return Summary{}, err
	}
	if !freq.Valid() {
		return Summary{}, errors.NewValidationError(fmt.Sprintf("unsupported frequency %q", string(freq)))
	}

	var sum Summary
	add := func(s domain.Series, err error) {
		if err != nil {
			a.logger.DebugContext(ctx, "Summary skipped", slog.String("error", err.Error()))
			return
		}
		sum.Series = append(sum.Series, s)
	}
	add(a.ViolationTypeDistribution(topN))
	add(a.TemporalTrend(freq))
	add(a.GeographicalDistribution(topN))
	add(a.TimeOfDayDistribution())
	add(a.DriverDemographics(ByAge))
	add(a.DriverDemographics(ByGender))
	add(a.FineCategoryDistribution())
	add(a.SeasonalDistribution())
	if stats, err := a.FineAmountSummary(); err == nil {
		sum.Series = append(sum.Series, stats.AsSeries(SeriesFineSummary))
	}
	if ct, err := a.ViolationByVehicleType(); err == nil {
		sum.CrossTabs = append(sum.CrossTabs, ct)
	}

	a.logger.InfoContext(ctx, "Violation summaries computed",
		slog.Int("series", len(sum.Series)),
		slog.Int("cross_tabs", len(sum.CrossTabs)))
	return sum, nil
}
