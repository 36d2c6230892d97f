package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"trafficcli/internal/analytics"
	"trafficcli/internal/config"
	"trafficcli/internal/infrastructure"
	"trafficcli/internal/pipeline"
	"trafficcli/internal/visualizer"
	"trafficcli/pkg/contracts"
)

// options are the flags shared by every sub-command
type options struct {
	configPath string
	input      string
	outputDir  string
	variant    string
	topN       int
	frequency  string
	logLevel   string
	workers    int
}

// mode selects which steps a sub-command runs
type mode struct {
	analyze bool
	render  bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		slog.Error("Command failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "trafficcli",
		Short:         "Traffic accident and violation cleaning and analysis",
		Long:          `Cleans traffic accident or violation records, computes summary statistics and renders charts`,
		Version:       contracts.GetFullVersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	flags.StringVarP(&opts.input, "input", "i", "", "input CSV or XLSX file")
	flags.StringVarP(&opts.outputDir, "out", "o", "", "output directory (default from config)")
	flags.StringVar(&opts.variant, "variant", "", "dataset variant: accidents | violations | violations-basic")
	flags.IntVar(&opts.topN, "top", 0, "number of entries in top-N summaries")
	flags.StringVar(&opts.frequency, "frequency", "", "trend bucket: D | W | M | Q | Y")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug | info | warn | error")
	flags.IntVar(&opts.workers, "workers", 0, "charts rendered concurrently")

	rootCmd.AddCommand(createRunCmd(opts))
	rootCmd.AddCommand(createCleanCmd(opts))
	rootCmd.AddCommand(createAnalyzeCmd(opts))
	return rootCmd
}

// createRunCmd creates the full pipeline command
func createRunCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Clean, analyze and chart a dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd, opts, mode{analyze: true, render: true})
		},
	}
}

// createCleanCmd creates the cleaning-only command
func createCleanCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Clean a dataset and write the cleaned CSV and report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd, opts, mode{})
		},
	}
}

// createAnalyzeCmd creates the analysis command without charts
func createAnalyzeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Clean and analyze a dataset and print the summaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd, opts, mode{analyze: true})
		},
	}
}

// loadConfig reads the configuration and applies explicitly set flags on top
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("out") {
		cfg.Pipeline.OutputDir = opts.outputDir
	}
	if flags.Changed("variant") {
		cfg.Pipeline.Variant = opts.variant
	}
	if flags.Changed("top") {
		cfg.Pipeline.TopN = opts.topN
	}
	if flags.Changed("frequency") {
		freq, err := analytics.ParseFrequency(opts.frequency)
		if err != nil {
			return nil, err
		}
		cfg.Pipeline.Frequency = string(freq)
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}
	if flags.Changed("workers") {
		cfg.Pipeline.Workers = opts.workers
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func execute(cmd *cobra.Command, opts *options, m mode) error {
	if opts.input == "" {
		return fmt.Errorf("--input is required")
	}

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer infrastructure.CloseLogFile()

	providers, err := infrastructure.InitializeOTel(&infrastructure.OTelConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: infrastructure.ServiceVersion,
		EnableTracing:  cfg.Telemetry.Tracing,
	}, logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	metrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	paths, err := config.GetPaths(cfg.Pipeline.OutputDir, cfg.Pipeline.Variant, cfg.Telemetry.MetricsFile)
	if err != nil {
		return err
	}
	style, err := visualizer.StyleFromConfig(cfg.Chart)
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(paths, style, logger,
		pipeline.WithTracer(providers.Tracer),
		pipeline.WithMetrics(metrics))

	req := pipeline.RequestFromConfig(cfg.Pipeline, opts.input)
	req.Analyze = m.analyze
	req.Render = m.render

	result, runErr := runner.Run(cmd.Context(), req)

	if paths.MetricsFile != "" {
		if err := providers.WriteMetrics(paths.MetricsFile); err != nil {
			logger.Warn("Failed to write metrics", slog.String("error", err.Error()))
		}
	}
	if runErr != nil {
		return runErr
	}

	printResult(cmd.OutOrStdout(), result, m.analyze)
	return nil
}

// printResult writes a human readable overview of a run
func printResult(w io.Writer, result *pipeline.Result, withSummaries bool) {
	r := result.Report
	fmt.Fprintf(w, "Rows: %d -> %d (%d removed)\n", r.OriginalRows, r.CleanedRows, r.RowsRemoved)
	fmt.Fprintf(w, "Missing values: %d -> %d\n", r.TotalNullsBefore(), r.TotalNullsAfter())
	fmt.Fprintf(w, "Cleaned data: %s\n", result.CleanCSV)
	fmt.Fprintf(w, "Report: %s\n", result.ReportJSON)
	if result.Workbook != "" {
		fmt.Fprintf(w, "Workbook: %s\n", result.Workbook)
	}
	for _, c := range result.Charts {
		fmt.Fprintf(w, "Chart: %s\n", c)
	}
	if !withSummaries {
		return
	}

	for _, s := range result.Summary.Series {
		fmt.Fprintf(w, "\n%s (%s)\n", s.Name, s.Unit)
		for _, p := range s.Points {
			fmt.Fprintf(w, "  %-28s %10.2f\n", p.Label, p.Value)
		}
	}
	for _, ct := range result.Summary.CrossTabs {
		fmt.Fprintf(w, "\n%s (%s)\n", ct.Name, ct.Unit)
		fmt.Fprintf(w, "  %-20s %s\n", "", strings.Join(ct.ColumnLabels, " | "))
		for i, row := range ct.RowLabels {
			cells := make([]string, len(ct.Cells[i]))
			for j, v := range ct.Cells[i] {
				cells[j] = fmt.Sprintf("%.2f", v)
			}
			fmt.Fprintf(w, "  %-20s %s\n", row, strings.Join(cells, " | "))
		}
	}
}
