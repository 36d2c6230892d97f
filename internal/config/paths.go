package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains every artifact path of one run. All of them live under
// the configured output directory.
type Paths struct {
	OutputDir   string
	ChartsDir   string
	CleanCSV    string
	ReportJSON  string
	Workbook    string
	MetricsFile string
}

// GetPaths derives artifact paths for a run of the given variant
func GetPaths(outputDir, variant, metricsFile string) (*Paths, error) {
	if outputDir == "" {
		return nil, fmt.Errorf("output directory must not be empty")
	}
	abs, err := filepath.Abs(outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory %s: %w", outputDir, err)
	}

	paths := &Paths{
		OutputDir:  abs,
		ChartsDir:  filepath.Join(abs, "charts"),
		CleanCSV:   filepath.Join(abs, fmt.Sprintf("%s_clean.csv", variant)),
		ReportJSON: filepath.Join(abs, "cleaning_report.json"),
		Workbook:   filepath.Join(abs, "summary.xlsx"),
	}
	if metricsFile != "" {
		paths.MetricsFile = filepath.Join(abs, metricsFile)
	}
	return paths, nil
}

// EnsureDirectories creates the output directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	logger := slog.Default()

	for _, dir := range []string{p.OutputDir, p.ChartsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		logger.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
