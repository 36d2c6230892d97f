package visualizer

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"trafficcli/internal/analytics"
	"trafficcli/internal/errors"
	"trafficcli/pkg/contracts/domain"
)

// Chart names a chart topic. Its file name is fixed.
type Chart string

const (
	ChartViolationTypes        Chart = "violation_types"
	ChartTemporalTrends        Chart = "temporal_trends"
	ChartGeographical          Chart = "geographical_distribution"
	ChartTimeOfDay             Chart = "time_of_day"
	ChartDriverAge             Chart = "driver_age_distribution"
	ChartDriverGender          Chart = "driver_gender_distribution"
	ChartFineCategories        Chart = "fine_categories"
	ChartSeasonalTrends        Chart = "seasonal_trends"
	ChartVehicleViolation      Chart = "vehicle_violation_matrix"
	ChartAccidentsByMonth      Chart = "accidents_by_month"
	ChartAccidentsByGravity    Chart = "accidents_by_gravity"
	ChartVictimsByMunicipality Chart = "victims_by_municipality"
	ChartAccidentsByClass      Chart = "accidents_by_class"
	ChartWeatherConditions     Chart = "weather_conditions"
	ChartGravityVsClass        Chart = "gravity_vs_class_heatmap"
	ChartVictimsByHour         Chart = "victims_by_hour"
)

// FileName returns the PNG file name of the chart
func (c Chart) FileName() string { return string(c) + ".png" }

// Kind selects the drawing routine
type Kind int

const (
	KindBar Kind = iota
	KindHorizontalBar
	KindLine
	KindHeatMap
)

func (k Kind) String() string {
	switch k {
	case KindBar:
		return "bar"
	case KindHorizontalBar:
		return "horizontal_bar"
	case KindLine:
		return "line"
	case KindHeatMap:
		return "heatmap"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Spec describes how one summary is drawn
type Spec struct {
	Chart  Chart
	Kind   Kind
	Labels Labels
}

// Catalog maps analytics summary names to their chart
var Catalog = map[string]Spec{
	analytics.SeriesViolationTypes: {ChartViolationTypes, KindHorizontalBar,
		Labels{Title: "Top Traffic Violation Types", X: "Percentage of Violations"}},
	analytics.SeriesTemporalTrend: {ChartTemporalTrends, KindLine,
		Labels{Title: "Traffic Violations Trend Over Time", X: "Period", Y: "Number of Violations"}},
	analytics.SeriesLocations: {ChartGeographical, KindBar,
		Labels{Title: "Locations with Most Traffic Violations", X: "Location", Y: "Number of Violations"}},
	analytics.SeriesTimeOfDay: {ChartTimeOfDay, KindBar,
		Labels{Title: "Distribution of Violations by Time of Day", X: "Time of Day", Y: "Percentage of Violations"}},
	analytics.SeriesDriverAge: {ChartDriverAge, KindBar,
		Labels{Title: "Driver Age Distribution", X: "Age Group", Y: "Percentage of Drivers"}},
	analytics.SeriesDriverGender: {ChartDriverGender, KindBar,
		Labels{Title: "Driver Gender Distribution", X: "Gender", Y: "Percentage of Drivers"}},
	analytics.SeriesFineCategories: {ChartFineCategories, KindBar,
		Labels{Title: "Distribution of Fine Amounts", X: "Fine Category", Y: "Percentage of Violations"}},
	analytics.SeriesSeasons: {ChartSeasonalTrends, KindBar,
		Labels{Title: "Seasonal Trends in Traffic Violations", X: "Season", Y: "Percentage of Violations"}},
	analytics.TabVehicleViolation: {ChartVehicleViolation, KindHeatMap,
		Labels{Title: "Violation Types by Vehicle Type (%)", X: "Violation Type", Y: "Vehicle Type"}},

	analytics.SeriesAccidentsByMonth: {ChartAccidentsByMonth, KindBar,
		Labels{Title: "Número de Accidentes por Mes", X: "Mes", Y: "Número de Accidentes"}},
	analytics.SeriesAccidentsBySeverity: {ChartAccidentsByGravity, KindBar,
		Labels{Title: "Número de Accidentes por Gravedad", X: "Gravedad", Y: "Número de Accidentes"}},
	analytics.SeriesVictimsByMunicipality: {ChartVictimsByMunicipality, KindBar,
		Labels{Title: "Total de Víctimas por Municipio", X: "Municipio", Y: "Total de Víctimas"}},
	analytics.SeriesAccidentsByClass: {ChartAccidentsByClass, KindBar,
		Labels{Title: "Número de Accidentes por Clase", X: "Clase de Accidente", Y: "Número de Accidentes"}},
	analytics.SeriesWeatherConditions: {ChartWeatherConditions, KindBar,
		Labels{Title: "Número de Accidentes por Estado del Clima", X: "Estado del Clima", Y: "Número de Accidentes"}},
	analytics.TabSeverityByClass: {ChartGravityVsClass, KindHeatMap,
		Labels{Title: "Relación entre Gravedad y Clase del Accidente", X: "Clase de Accidente", Y: "Gravedad"}},
	analytics.SeriesVictimsByHour: {ChartVictimsByHour, KindLine,
		Labels{Title: "Total de Víctimas por Hora del Accidente", X: "Hora del Día", Y: "Total de Víctimas"}},
}

// Job is one chart to render
type Job struct {
	Spec     Spec
	Series   domain.Series
	CrossTab domain.CrossTab
}

// JobsFor pairs every catalogued summary with its chart, in a stable order.
// Empty summaries are left out.
func JobsFor(sum analytics.Summary) []Job {
	var jobs []Job
	for _, s := range sum.Series {
		spec, ok := Catalog[s.Name]
		if !ok || s.Len() == 0 || spec.Kind == KindHeatMap {
			continue
		}
		jobs = append(jobs, Job{Spec: spec, Series: s})
	}
	for _, ct := range sum.CrossTabs {
		spec, ok := Catalog[ct.Name]
		if !ok || len(ct.RowLabels) == 0 || spec.Kind != KindHeatMap {
			continue
		}
		jobs = append(jobs, Job{Spec: spec, CrossTab: ct})
	}
	return jobs
}

// Render draws one job into dir
func (r *Renderer) Render(dir string, job Job) (string, error) {
	path := filepath.Join(dir, job.Spec.Chart.FileName())
	var err error
	switch job.Spec.Kind {
	case KindBar:
		err = r.BarChart(job.Series, path, job.Spec.Labels)
	case KindHorizontalBar:
		err = r.HorizontalBarChart(job.Series, path, job.Spec.Labels)
	case KindLine:
		err = r.LineChart(job.Series, path, job.Spec.Labels)
	case KindHeatMap:
		err = r.HeatMap(job.CrossTab, path, job.Spec.Labels)
	default:
		err = errors.NewRenderError(fmt.Sprintf("unknown chart kind %s", job.Spec.Kind), nil)
	}
	if err != nil {
		return "", err
	}
	return path, nil
}

// RenderAll draws jobs into dir with at most workers charts in flight. The
// first failure cancels the jobs not yet started. Written paths are
// returned sorted.
func (r *Renderer) RenderAll(ctx context.Context, dir string, jobs []Job, workers int) ([]string, error) {
	if workers < 1 {
		workers = 1
	}
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var (
		mu    sync.Mutex
		paths = make([]string, 0, len(jobs))
	)
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path, err := r.Render(dir, job)
			if err != nil {
				r.logger.ErrorContext(ctx, "Chart failed",
					slog.String("chart", string(job.Spec.Chart)),
					slog.String("error", err.Error()))
				return fmt.Errorf("render %s: %w", job.Spec.Chart, err)
			}
			mu.Lock()
			paths = append(paths, path)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(paths)
	r.logger.InfoContext(ctx, "Charts rendered",
		slog.String("directory", dir),
		slog.Int("charts", len(paths)),
		slog.Duration("duration", time.Since(start)))
	return paths, nil
}
