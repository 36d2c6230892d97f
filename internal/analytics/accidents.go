package analytics

import (
	"context"
	"fmt"
	"log/slog"

	"trafficcli/internal/dataprocessing"
	"trafficcli/internal/errors"
	"trafficcli/pkg/contracts/domain"
)

var accidentRequired = []string{
	dataprocessing.ColAccidentDate,
	dataprocessing.ColSeverity,
	dataprocessing.ColAccidentClass,
	dataprocessing.ColMunicipality,
	dataprocessing.ColTotalVictims,
}

// AccidentAnalyzer answers summary queries over a cleaned accident table
type AccidentAnalyzer struct {
	table   *domain.Table
	caps    domain.Schema
	victims []float64
	logger  *slog.Logger
}

// NewAccidentAnalyzer validates clean. The victim totals are read once.
func NewAccidentAnalyzer(clean *domain.Table, logger *slog.Logger) (*AccidentAnalyzer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := validateInput(clean, accidentRequired); err != nil {
		return nil, err
	}

	c, _ := clean.Column(dataprocessing.ColTotalVictims)
	victims := make([]float64, len(c.Values))
	for i, v := range c.Values {
		victims[i], _ = dataprocessing.ParseNumber(v)
	}

	return &AccidentAnalyzer{
		table:   clean,
		caps:    clean.Schema(),
		victims: victims,
		logger:  logger,
	}, nil
}

// Table returns the analyzed table
func (a *AccidentAnalyzer) Table() *domain.Table { return a.table }

func (a *AccidentAnalyzer) column(name string) (domain.Column, error) {
	if !a.caps.Has(name) {
		return domain.Column{}, errors.NewValidationError(fmt.Sprintf("column %s not found", name)).
			WithContext("column", name)
	}
	c, _ := a.table.Column(name)
	return c, nil
}

func (a *AccidentAnalyzer) victimsAt(i int) float64 { return a.victims[i] }

// AccidentsByMonth counts accidents per calendar month, January to
// December, labelled with Spanish month abbreviations. Months without
// accidents are zero.
func (a *AccidentAnalyzer) AccidentsByMonth() (domain.Series, error) {
	c, err := a.column(dataprocessing.ColAccidentDate)
	if err != nil {
		return domain.Series{}, err
	}
	counts := make([]float64, 12)
	for _, v := range c.Values {
		if t, ok := dateAt(v); ok {
			counts[t.Month()-1]++
		}
	}
	points := make([]domain.Point, 12)
	for i, n := range counts {
		points[i] = domain.Point{Label: spanishMonths[i], Value: n}
	}
	return domain.Series{Name: SeriesAccidentsByMonth, Unit: domain.UnitCount, Points: points}, nil
}

func (a *AccidentAnalyzer) valueCounts(col, name string) (domain.Series, error) {
	c, err := a.column(col)
	if err != nil {
		return domain.Series{}, err
	}
	return domain.Series{Name: name, Unit: domain.UnitCount, Points: descending(countText(c).points())}, nil
}

// AccidentsBySeverity counts accidents per GRAVEDAD value, largest first
func (a *AccidentAnalyzer) AccidentsBySeverity() (domain.Series, error) {
	return a.valueCounts(dataprocessing.ColSeverity, SeriesAccidentsBySeverity)
}

// AccidentsByClass counts accidents per CLASE ACCIDENTE value, largest first
func (a *AccidentAnalyzer) AccidentsByClass() (domain.Series, error) {
	return a.valueCounts(dataprocessing.ColAccidentClass, SeriesAccidentsByClass)
}

// WeatherConditions counts accidents per ESTADO CLIMA value, largest first
func (a *AccidentAnalyzer) WeatherConditions() (domain.Series, error) {
	return a.valueCounts(dataprocessing.ColWeather, SeriesWeatherConditions)
}

// VictimsByMunicipality sums victims per municipality, largest first,
// limited to topN
func (a *AccidentAnalyzer) VictimsByMunicipality(topN int) (domain.Series, error) {
	if err := checkTopN(topN); err != nil {
		return domain.Series{}, err
	}
	c, err := a.column(dataprocessing.ColMunicipality)
	if err != nil {
		return domain.Series{}, err
	}
	t := newTally()
	for i, v := range c.Values {
		if l, ok := labelOf(v); ok {
			t.add(l, a.victimsAt(i))
		}
	}
	return domain.Series{
		Name:   SeriesVictimsByMunicipality,
		Unit:   domain.UnitSum,
		Points: head(descending(t.points()), topN),
	}, nil
}

// SeverityByClass counts accidents for every GRAVEDAD and CLASE ACCIDENTE pair
func (a *AccidentAnalyzer) SeverityByClass() (domain.CrossTab, error) {
	severity, err := a.column(dataprocessing.ColSeverity)
	if err != nil {
		return domain.CrossTab{}, err
	}
	class, err := a.column(dataprocessing.ColAccidentClass)
	if err != nil {
		return domain.CrossTab{}, err
	}
	return crossTab(TabSeverityByClass, severity, class, func(int) float64 { return 1 }), nil
}

// VictimsByHour sums victims per hour of day, 0 to 23. Rows whose hour was
// missing or unparsed are left out.
func (a *AccidentAnalyzer) VictimsByHour() (domain.Series, error) {
	c, err := a.column(dataprocessing.ColHourOfDay)
	if err != nil {
		return domain.Series{}, err
	}
	sums := make([]float64, 24)
	for i, v := range c.Values {
		h, ok := v.HourOfDay()
		if !ok || !h.Parsed {
			continue
		}
		sums[h.Hour] += a.victimsAt(i)
	}
	points := make([]domain.Point, 24)
	for h, s := range sums {
		points[h] = domain.Point{Label: fmt.Sprintf("%d:00", h), Value: s}
	}
	return domain.Series{Name: SeriesVictimsByHour, Unit: domain.UnitSum, Points: points}, nil
}

// Summaries runs every query the table supports. freq is accepted for
// interface compatibility; accident months are always calendar months.
func (a *AccidentAnalyzer) Summaries(ctx context.Context, topN int, _ Frequency) (Summary, error) {
	if err := checkTopN(topN); err != nil {
		return Summary{}, err
	}

	var sum Summary
	add := func(s domain.Series, err error) {
		if err != nil {
			a.logger.DebugContext(ctx, "Summary skipped", slog.String("error", err.Error()))
			return
		}
		sum.Series = append(sum.Series, s)
	}
	add(a.AccidentsByMonth())
	add(a.AccidentsBySeverity())
	add(a.VictimsByMunicipality(topN))
	add(a.AccidentsByClass())
	add(a.WeatherConditions())
	add(a.VictimsByHour())
	if ct, err := a.SeverityByClass(); err == nil {
		sum.CrossTabs = append(sum.CrossTabs, ct)
	}

	a.logger.InfoContext(ctx, "Accident summaries computed",
		slog.Int("series", len(sum.Series)),
		slog.Int("cross_tabs", len(sum.CrossTabs)))
	return sum, nil
}
