// Package config provides configuration loading for the traffic pipeline.
//
// # Configuration Sources
//
// Configuration is layered, later sources winning:
//
//	1. Built-in defaults (Default)
//	2. A YAML file passed with --config
//	3. A .env file in the working directory
//	4. Environment variables
//
// # Environment Variables
//
// All environment variables follow the pattern TRAFFIC_<SECTION>_<FIELD>:
//
//	TRAFFIC_PIPELINE_VARIANT=accidents
//	TRAFFIC_PIPELINE_TOP_N=15
//	TRAFFIC_LOGGING_LEVEL=debug
//	TRAFFIC_CHART_DPI=150
//
// Every pipeline parameter also has a command line flag; flags are applied
// after Load and take precedence over all of the above.
//
// # Path Management
//
// GetPaths turns the output directory into the set of artifact paths a run
// writes (cleaned CSV, cleaning report, workbook, charts, metrics).
package config
