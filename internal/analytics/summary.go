package analytics

import (
	"context"

	"trafficcli/pkg/contracts/domain"
)

// Series and cross-tab names. Charts and workbook sheets are keyed by them.
const (
	SeriesViolationTypes = "violation_types"
	SeriesTemporalTrend  = "temporal_trend"
	SeriesLocations      = "locations"
	SeriesTimeOfDay      = "time_of_day"
	SeriesDriverAge      = "driver_age"
	SeriesDriverGender   = "driver_gender"
	SeriesFineCategories = "fine_categories"
	SeriesFineSummary    = "fine_amount_summary"
	SeriesSeasons        = "seasons"
	TabVehicleViolation  = "violation_by_vehicle_type"

	SeriesAccidentsByMonth      = "accidents_by_month"
	SeriesAccidentsBySeverity   = "accidents_by_severity"
	SeriesAccidentsByClass      = "accidents_by_class"
	SeriesWeatherConditions     = "weather_conditions"
	SeriesVictimsByMunicipality = "victims_by_municipality"
	SeriesVictimsByHour         = "victims_by_hour"
	TabSeverityByClass          = "severity_by_class"
)

// Summary collects every result an analyzer could compute for one table
type Summary struct {
	Series    []domain.Series
	CrossTabs []domain.CrossTab
}

// Find looks up a series by name
func (s Summary) Find(name string) (domain.Series, bool) {
	for _, series := range s.Series {
		if series.Name == name {
			return series, true
		}
	}
	return domain.Series{}, false
}

// FindCrossTab looks up a cross-tab by name
func (s Summary) FindCrossTab(name string) (domain.CrossTab, bool) {
	for _, ct := range s.CrossTabs {
		if ct.Name == name {
			return ct, true
		}
	}
	return domain.CrossTab{}, false
}

// Analyzer is implemented by both dataset analyzers
type Analyzer interface {
	Summaries(ctx context.Context, topN int, freq Frequency) (Summary, error)
	Table() *domain.Table
}

var (
	_ Analyzer = (*ViolationAnalyzer)(nil)
	_ Analyzer = (*AccidentAnalyzer)(nil)
)
