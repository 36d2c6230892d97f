package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"trafficcli/internal/errors"
	"trafficcli/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality. Relative paths resolve
// against the base directory.
type CSVWriter struct {
	baseDir string
	logger  *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(baseDir string, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{baseDir: baseDir, logger: logger}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Append    bool
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes headers and records to filePath
func (w *CSVWriter) WriteCSV(filePath string, headers []string, records [][]string, opts WriteOptions) error {
	fullPath := w.resolvePath(filePath)

	w.logger.Info("Writing CSV file",
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(records)))

	stream, err := w.open(fullPath, opts)
	if err != nil {
		return err
	}

	if !opts.Append && len(headers) > 0 {
		if err := stream.WriteRecord(headers); err != nil {
			stream.Close()
			return errors.NewStorageError("failed to write headers", err).WithContext("path", fullPath)
		}
	}
	for i, record := range records {
		if err := stream.WriteRecord(record); err != nil {
			stream.Close()
			return errors.NewStorageError(fmt.Sprintf("failed to write record %d", i), err).WithContext("path", fullPath)
		}
	}
	return stream.Close()
}

// WriteTable writes a table in its column order. Nulls are written as
// empty cells and dates in ISO form.
func (w *CSVWriter) WriteTable(filePath string, table *domain.Table, opts WriteOptions) error {
	if table == nil {
		return errors.NewInputTypeError("table is nil")
	}
	stream, err := w.CreateStreamWriter(filePath, table.Names(), opts.BOMPrefix)
	if err != nil {
		return err
	}
	for row := 0; row < table.Len(); row++ {
		if err := stream.WriteRecord(table.Row(row)); err != nil {
			stream.Close()
			return errors.NewStorageError(fmt.Sprintf("failed to write row %d", row), err)
		}
	}
	if err := stream.Close(); err != nil {
		return err
	}

	w.logger.Info("Table exported",
		slog.String("path", w.resolvePath(filePath)),
		slog.Int("rows", table.Len()),
		slog.Int("columns", table.Width()))
	return nil
}

// StreamWriter provides streaming CSV writing for large tables
type StreamWriter struct {
	path   string
	file   *os.File
	writer *csv.Writer
}

// CreateStreamWriter creates the file and writes the header row
func (w *CSVWriter) CreateStreamWriter(filePath string, headers []string, bom bool) (*StreamWriter, error) {
	fullPath := w.resolvePath(filePath)

	w.logger.Debug("Creating CSV stream writer",
		slog.String("full_path", fullPath),
		slog.Int("header_count", len(headers)))

	stream, err := w.open(fullPath, WriteOptions{BOMPrefix: bom})
	if err != nil {
		return nil, err
	}
	if len(headers) > 0 {
		if err := stream.WriteRecord(headers); err != nil {
			stream.file.Close()
			return nil, errors.NewStorageError("failed to write headers", err).WithContext("path", fullPath)
		}
	}
	return stream, nil
}

func (w *CSVWriter) open(fullPath string, opts WriteOptions) (*StreamWriter, error) {
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, errors.NewStorageError("failed to create directory", err).WithContext("path", fullPath)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if opts.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	file, err := os.OpenFile(fullPath, flags, 0644)
	if err != nil {
		return nil, errors.NewStorageError("failed to open file", err).WithContext("path", fullPath)
	}

	if opts.BOMPrefix && !opts.Append {
		if _, err := file.Write(utf8BOM); err != nil {
			file.Close()
			return nil, errors.NewStorageError("failed to write BOM", err).WithContext("path", fullPath)
		}
	}
	return &StreamWriter{path: fullPath, file: file, writer: csv.NewWriter(file)}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Close flushes and closes the stream writer
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return errors.NewStorageError("failed to flush csv", err).WithContext("path", s.path)
	}
	if err := s.file.Close(); err != nil {
		return errors.NewStorageError("failed to close csv", err).WithContext("path", s.path)
	}
	return nil
}

// resolvePath keeps absolute paths and joins relative ones to the base directory
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) || w.baseDir == "" {
		return filePath
	}
	return filepath.Join(w.baseDir, filePath)
}
