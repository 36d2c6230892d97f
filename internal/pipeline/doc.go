// Package pipeline wires loading, cleaning, analysis, chart rendering and
// export into one run.
//
// A run is a fixed sequence of steps: load, clean, report, analyze, render
// and export. Each step runs inside its own OpenTelemetry span and records
// its duration through infrastructure.PipelineMetrics. The first failing
// step stops the run and the error names the step.
//
//	runner := pipeline.NewRunner(paths, style, logger,
//		pipeline.WithTracer(otel.Tracer), pipeline.WithMetrics(metrics))
//	result, err := runner.Run(ctx, pipeline.RequestFromConfig(cfg.Pipeline, input))
package pipeline
