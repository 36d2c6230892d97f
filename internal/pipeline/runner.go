package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"trafficcli/internal/analytics"
	"trafficcli/internal/config"
	"trafficcli/internal/dataprocessing"
	"trafficcli/internal/errors"
	"trafficcli/internal/exporter"
	"trafficcli/internal/infrastructure"
	"trafficcli/internal/visualizer"
	"trafficcli/pkg/contracts/domain"
)

// Step names a pipeline stage
type Step string

const (
	StepLoad    Step = "load"
	StepClean   Step = "clean"
	StepReport  Step = "report"
	StepAnalyze Step = "analyze"
	StepRender  Step = "render"
	StepExport  Step = "export"
)

// StepStatus represents the outcome of a step
type StepStatus string

const (
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// StepResult records one executed step
type StepResult struct {
	Step     Step          `json:"step"`
	Status   StepStatus    `json:"status"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// Request describes one run
type Request struct {
	InputPath string `validate:"required"`
	Variant   string `validate:"oneof=accidents violations violations-basic"`
	TopN      int    `validate:"min=1"`
	Frequency analytics.Frequency
	Workers   int

	// Analyze computes summaries; Render draws them. Render implies Analyze.
	Analyze       bool
	Render        bool
	WriteWorkbook bool
	CSVBOM        bool
}

// RequestFromConfig fills a request from the pipeline configuration
func RequestFromConfig(cfg config.PipelineConfig, input string) Request {
	return Request{
		InputPath:     input,
		Variant:       cfg.Variant,
		TopN:          cfg.TopN,
		Frequency:     analytics.Frequency(cfg.Frequency),
		Workers:       cfg.Workers,
		Analyze:       true,
		Render:        true,
		WriteWorkbook: cfg.WriteWorkbook,
		CSVBOM:        cfg.CSVBOM,
	}
}

// Result lists the artifacts and the report of a run
type Result struct {
	RunID      string                `json:"run_id"`
	Report     domain.CleaningReport `json:"report"`
	Summary    analytics.Summary     `json:"-"`
	CleanCSV   string                `json:"clean_csv"`
	ReportJSON string                `json:"report_json"`
	Workbook   string                `json:"workbook,omitempty"`
	Charts     []string              `json:"charts,omitempty"`
	Steps      []StepResult          `json:"steps"`
}

// Runner executes load, clean, report, analyze, render and export in order
type Runner struct {
	paths   *config.Paths
	style   visualizer.Style
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// Option configures a Runner
type Option func(*Runner)

// WithTracer traces every step as a span
func WithTracer(t trace.Tracer) Option {
	return func(r *Runner) {
		if t != nil {
			r.tracer = t
		}
	}
}

// WithMetrics records row counts and step durations
func WithMetrics(m *infrastructure.PipelineMetrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// NewRunner creates a runner writing under paths
func NewRunner(paths *config.Paths, style visualizer.Style, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{
		paths:  paths,
		style:  style,
		logger: logger,
		tracer: noop.NewTracerProvider().Tracer(infrastructure.TracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the request. The first failing step stops the run; the
// partial result lists the steps done so far.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	if err := validateRequest(&req); err != nil {
		return nil, err
	}
	rules, err := dataprocessing.RuleSetByName(req.Variant)
	if err != nil {
		return nil, err
	}

	ctx = infrastructure.EnsureRunID(ctx)
	ctx = infrastructure.WithComponent(ctx, "pipeline")
	result := &Result{RunID: infrastructure.GetRunID(ctx)}

	ctx, span := r.tracer.Start(ctx, "pipeline.run",
		trace.WithAttributes(
			attribute.String("run.id", result.RunID),
			attribute.String("pipeline.variant", req.Variant),
			attribute.String("pipeline.input", req.InputPath),
		))
	defer span.End()

	start := time.Now()
	r.logger.InfoContext(ctx, "Pipeline started",
		slog.String("input", req.InputPath),
		slog.String("variant", req.Variant),
		slog.String("output_dir", r.paths.OutputDir))

	if err := r.paths.EnsureDirectories(); err != nil {
		return result, r.fail(ctx, span, errors.NewStorageError("failed to prepare output directory", err))
	}

	var raw, clean *domain.Table
	cleaner := dataprocessing.NewCleaner(rules, r.logger)

	steps := []struct {
		step Step
		skip bool
		run  func(ctx context.Context) error
	}{
		{StepLoad, false, func(ctx context.Context) error {
			raw, err = dataprocessing.NewLoader(r.logger).Load(ctx, req.InputPath,
				dataprocessing.LoadOptions{DateColumn: rules.DateColumn})
			if err == nil && r.metrics != nil {
				r.metrics.RowsLoaded.Add(ctx, int64(raw.Len()), r.variantAttr(req))
			}
			return err
		}},
		{StepClean, false, func(ctx context.Context) error {
			clean, result.Report, err = cleaner.CleanWithReport(ctx, raw)
			if err != nil {
				return err
			}
			if r.metrics != nil {
				r.metrics.RowsCleaned.Add(ctx, int64(clean.Len()), r.variantAttr(req))
				r.metrics.RowsDropped.Add(ctx, int64(result.Report.RowsRemoved), r.variantAttr(req))
			}
			err = exporter.NewCSVWriter(r.paths.OutputDir, r.logger).
				WriteTable(r.paths.CleanCSV, clean, exporter.WriteOptions{BOMPrefix: req.CSVBOM})
			if err == nil {
				result.CleanCSV = r.paths.CleanCSV
			}
			return err
		}},
		{StepReport, false, func(ctx context.Context) error {
			dataprocessing.LogReport(ctx, r.logger, result.Report)
			if err := exporter.WriteReportJSON(r.paths.ReportJSON, result.Report); err != nil {
				return err
			}
			result.ReportJSON = r.paths.ReportJSON
			return nil
		}},
		{StepAnalyze, !req.Analyze, func(ctx context.Context) error {
			analyzer, err := newAnalyzer(rules.Variant, clean, r.logger)
			if err != nil {
				return err
			}
			result.Summary, err = analyzer.Summaries(ctx, req.TopN, req.Frequency)
			return err
		}},
		{StepRender, !req.Render, func(ctx context.Context) error {
			renderer := visualizer.NewRenderer(r.style, r.logger)
			charts, err := renderer.RenderAll(ctx, r.paths.ChartsDir, visualizer.JobsFor(result.Summary), req.Workers)
			if err != nil {
				return err
			}
			result.Charts = charts
			if r.metrics != nil {
				r.metrics.ChartsRendered.Add(ctx, int64(len(charts)), r.variantAttr(req))
			}
			return nil
		}},
		{StepExport, !req.Analyze || !req.WriteWorkbook, func(ctx context.Context) error {
			report := result.Report
			if err := exporter.NewWorkbook(r.logger).Write(r.paths.Workbook, result.Summary, &report); err != nil {
				return err
			}
			result.Workbook = r.paths.Workbook
			return nil
		}},
	}

	for _, s := range steps {
		if s.skip {
			result.Steps = append(result.Steps, StepResult{Step: s.step, Status: StepStatusSkipped})
			continue
		}
		sr, err := r.runStep(ctx, s.step, s.run)
		result.Steps = append(result.Steps, sr)
		if err != nil {
			return result, r.fail(ctx, span, fmt.Errorf("%s step: %w", s.step, err))
		}
	}

	span.SetStatus(codes.Ok, "pipeline completed")
	r.logger.InfoContext(ctx, "Pipeline completed",
		slog.Int("cleaned_rows", result.Report.CleanedRows),
		slog.Int("charts", len(result.Charts)),
		slog.Duration("duration", time.Since(start)))
	return result, nil
}

// runStep wraps one step in a span, a duration measurement and log records
func (r *Runner) runStep(ctx context.Context, step Step, fn func(context.Context) error) (StepResult, error) {
	ctx, span := r.tracer.Start(ctx, "pipeline.step."+string(step),
		trace.WithAttributes(attribute.String("step.name", string(step))))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return StepResult{Step: step, Status: StepStatusFailed, Error: err.Error()}, err
	}

	r.logger.DebugContext(ctx, "Step started", slog.String("step", string(step)))
	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start)
	r.metrics.RecordStage(ctx, string(step), duration, err)

	result := StepResult{Step: step, Status: StepStatusCompleted, Duration: duration}
	if err != nil {
		result.Status = StepStatusFailed
		result.Error = err.Error()
		infrastructure.RecordError(ctx, err)
		r.logger.ErrorContext(ctx, "Step failed",
			slog.String("step", string(step)),
			slog.String("error", err.Error()),
			slog.Duration("duration", duration))
		return result, err
	}

	span.SetStatus(codes.Ok, "step completed")
	r.logger.InfoContext(ctx, "Step completed",
		slog.String("step", string(step)),
		slog.Duration("duration", duration))
	return result, nil
}

func (r *Runner) fail(ctx context.Context, span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	r.logger.ErrorContext(ctx, "Pipeline failed", slog.String("error", err.Error()))
	return err
}

func (r *Runner) variantAttr(req Request) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("variant", req.Variant))
}

func newAnalyzer(variant domain.Variant, clean *domain.Table, logger *slog.Logger) (analytics.Analyzer, error) {
	if variant == domain.VariantAccidents {
		a, err := analytics.NewAccidentAnalyzer(clean, logger)
		if err != nil {
			return nil, err
		}
		return a, nil
	}
	a, err := analytics.NewViolationAnalyzer(clean, logger)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// validateRequest fills defaults and checks the request
func validateRequest(req *Request) error {
	if req.Render {
		req.Analyze = true
	}
	if req.TopN == 0 {
		req.TopN = 10
	}
	if req.Workers < 1 {
		req.Workers = 1
	}
	if req.Frequency == "" {
		req.Frequency = analytics.Monthly
	}
	freq, err := analytics.ParseFrequency(string(req.Frequency))
	if err != nil {
		return err
	}
	req.Frequency = freq

	if err := validator.New().Struct(req); err != nil {
		return errors.NewValidationError(fmt.Sprintf("invalid pipeline request: %v", err))
	}
	return nil
}
