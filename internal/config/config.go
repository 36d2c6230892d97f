package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"trafficcli/internal/errors"
)

// EnvPrefix namespaces every environment variable, e.g. TRAFFIC_PIPELINE_TOP_N
const EnvPrefix = "TRAFFIC"

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Chart     ChartConfig     `yaml:"chart" envconfig:"CHART"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// PipelineConfig selects the rule set and the analysis parameters
type PipelineConfig struct {
	Variant       string `yaml:"variant" envconfig:"VARIANT" validate:"oneof=accidents violations violations-basic"`
	OutputDir     string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	TopN          int    `yaml:"top_n" envconfig:"TOP_N" validate:"min=1,max=1000"`
	Frequency     string `yaml:"frequency" envconfig:"FREQUENCY" validate:"oneof=D W M Q Y"`
	Workers       int    `yaml:"workers" envconfig:"WORKERS" validate:"min=1,max=64"`
	WriteWorkbook bool   `yaml:"write_workbook" envconfig:"WRITE_WORKBOOK"`
	CSVBOM        bool   `yaml:"csv_bom" envconfig:"CSV_BOM"`
}

// ChartConfig holds the explicit styling handed to the chart renderer
type ChartConfig struct {
	WidthCM    float64 `yaml:"width_cm" envconfig:"WIDTH_CM" validate:"gt=0"`
	HeightCM   float64 `yaml:"height_cm" envconfig:"HEIGHT_CM" validate:"gt=0"`
	DPI        int     `yaml:"dpi" envconfig:"DPI" validate:"min=36,max=600"`
	TitleSize  float64 `yaml:"title_size" envconfig:"TITLE_SIZE" validate:"gt=0"`
	LabelSize  float64 `yaml:"label_size" envconfig:"LABEL_SIZE" validate:"gt=0"`
	BarColor   string  `yaml:"bar_color" envconfig:"BAR_COLOR" validate:"hexcolor"`
	LineColor  string  `yaml:"line_color" envconfig:"LINE_COLOR" validate:"hexcolor"`
	ShowValues bool    `yaml:"show_values" envconfig:"SHOW_VALUES"`
}

// TelemetryConfig controls tracing and the metrics textfile
type TelemetryConfig struct {
	ServiceName string `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	Tracing     bool   `yaml:"tracing" envconfig:"TRACING"`
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// Load builds the configuration. Precedence, lowest first: built-in
// defaults, the YAML file at path (skipped when empty or absent), a .env
// file in the working directory, then TRAFFIC_* environment variables.
// Fields carry no envconfig default tags, so an unset variable leaves the
// lower layers untouched.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return nil, errors.NewConfigError("failed to read .env file", err)
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, errors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile overlays YAML values onto cfg
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return errors.NewConfigError("failed to read config file", err).WithContext("path", path)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.NewConfigError("failed to parse config file", err).WithContext("path", path)
	}
	return nil
}

// Validate checks struct tags and normalizes a few fields
func (c *Config) Validate() error {
	c.Pipeline.Variant = strings.ToLower(strings.TrimSpace(c.Pipeline.Variant))
	c.Pipeline.Frequency = strings.ToUpper(strings.TrimSpace(c.Pipeline.Frequency))
	c.Logging.Level = strings.ToLower(c.Logging.Level)

	if err := validator.New().Struct(c); err != nil {
		return errors.NewConfigError("config validation failed", err)
	}
	return nil
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/trafficcli.log",
		},
		Pipeline: PipelineConfig{
			Variant:       "violations",
			OutputDir:     "output",
			TopN:          10,
			Frequency:     "M",
			Workers:       4,
			WriteWorkbook: true,
		},
		Chart: ChartConfig{
			WidthCM:    25,
			HeightCM:   15,
			DPI:        96,
			TitleSize:  14,
			LabelSize:  10,
			BarColor:   "#4C72B0",
			LineColor:  "#DD8452",
			ShowValues: true,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "trafficcli",
			MetricsFile: "metrics.prom",
		},
	}
}

// String renders the effective configuration as YAML
func (c *Config) String() string {
	out, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return string(out)
}
