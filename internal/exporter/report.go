package exporter

import (
	"encoding/json"
	"os"
	"path/filepath"

	"trafficcli/internal/errors"
	"trafficcli/pkg/contracts/domain"
)

// WriteReportJSON writes the cleaning report as indented JSON
func WriteReportJSON(path string, report domain.CleaningReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return errors.NewStorageError("failed to encode cleaning report", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewStorageError("failed to create directory", err).WithContext("path", path)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return errors.NewStorageError("failed to write cleaning report", err).WithContext("path", path)
	}
	return nil
}
