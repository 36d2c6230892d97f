package dataprocessing

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"

	"trafficcli/internal/errors"
	"trafficcli/internal/validation"
	"trafficcli/pkg/contracts/domain"
)

// NAMarkers are cell contents read as missing values
var NAMarkers = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "None"}

// LoadOptions controls how a file becomes a table
type LoadOptions struct {
	// DateColumn is parsed into dates; unreadable values become missing.
	DateColumn string
	// MonthFirst switches date parsing from day-first to month-first.
	MonthFirst bool
	// Sheet selects the worksheet of an xlsx file. Defaults to the first.
	Sheet string
}

// Loader reads one input file into a table
type Loader struct {
	validator *validation.FileValidator
	logger    *slog.Logger
}

// NewLoader creates a loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{validator: validation.NewFileValidator(logger), logger: logger}
}

// Load validates path and dispatches on its extension
func (l *Loader) Load(ctx context.Context, path string, opts LoadOptions) (*domain.Table, error) {
	if err := l.validator.ValidateInputFile(path); err != nil {
		return nil, err
	}

	start := time.Now()
	var (
		table *domain.Table
		err   error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		table, err = LoadXLSX(path, opts)
	default:
		table, err = LoadCSV(path, opts)
	}
	if err != nil {
		return nil, err
	}

	l.logger.InfoContext(ctx, "Loaded input file",
		slog.String("file", path),
		slog.Int("rows", table.Len()),
		slog.Int("columns", table.Width()),
		slog.Duration("duration", time.Since(start)))
	return table, nil
}

// LoadCSV reads a UTF-8 CSV file with a header row. A leading byte order
// mark is ignored. Every column is text except opts.DateColumn.
func LoadCSV(path string, opts LoadOptions) (*domain.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError(fmt.Sprintf("input file %s", path))
		}
		return nil, errors.NewStorageError("failed to read input file", err).WithContext("file", path)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	if header, ok := headerOnly(data); ok {
		return emptyTable(header, opts)
	}

	df := dataframe.ReadCSV(bytes.NewReader(data),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(NAMarkers),
	)
	if df.Err != nil {
		return nil, errors.NewParsingError("failed to parse csv", df.Err).WithContext("file", path)
	}

	columns := make([]domain.Column, 0, df.Ncol())
	for _, name := range df.Names() {
		s := df.Col(name)
		values := make([]domain.Value, s.Len())
		for i := 0; i < s.Len(); i++ {
			e := s.Elem(i)
			if e.IsNA() {
				values[i] = domain.Null(domain.KindText)
				continue
			}
			values[i] = domain.Text(e.String())
		}
		columns = append(columns, domain.Column{Name: name, Kind: domain.KindText, Values: values})
	}

	return buildTable(columns, opts, path)
}

// headerOnly detects a file holding nothing but a header row, which the
// dataframe reader rejects as empty
func headerOnly(data []byte) ([]string, bool) {
	r := csv.NewReader(bytes.NewReader(data))
	header, err := r.Read()
	if err != nil {
		return nil, false
	}
	if _, err := r.Read(); err == io.EOF {
		return header, true
	}
	return nil, false
}

func emptyTable(header []string, opts LoadOptions) (*domain.Table, error) {
	columns := make([]domain.Column, len(header))
	for i, name := range header {
		kind := domain.KindText
		if name == opts.DateColumn {
			kind = domain.KindDate
		}
		columns[i] = domain.Column{Name: strings.TrimSpace(name), Kind: kind}
	}
	table, err := domain.NewTable(columns...)
	if err != nil {
		return nil, errors.NewParsingError("invalid header", err)
	}
	return table, nil
}

// LoadXLSX reads the first (or the named) worksheet. The first row is the
// header; short rows are padded with missing values.
func LoadXLSX(path string, opts LoadOptions) (*domain.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewParsingError("failed to open workbook", err).WithContext("file", path)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.NewParsingError("workbook has no sheets", nil).WithContext("file", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.NewParsingError(fmt.Sprintf("failed to read sheet %q", sheet), err).WithContext("file", path)
	}
	if len(rows) == 0 {
		return nil, errors.NewParsingError(fmt.Sprintf("sheet %q is empty", sheet), nil).WithContext("file", path)
	}

	header := rows[0]
	columns := make([]domain.Column, len(header))
	for j, name := range header {
		columns[j] = domain.Column{
			Name:   strings.TrimSpace(name),
			Kind:   domain.KindText,
			Values: make([]domain.Value, 0, len(rows)-1),
		}
	}
	for _, row := range rows[1:] {
		for j := range columns {
			cell := ""
			if j < len(row) {
				cell = row[j]
			}
			columns[j].Values = append(columns[j].Values, textCell(cell))
		}
	}

	return buildTable(columns, opts, path)
}

func textCell(s string) domain.Value {
	for _, marker := range NAMarkers {
		if s == marker {
			return domain.Null(domain.KindText)
		}
	}
	return domain.Text(s)
}

func buildTable(columns []domain.Column, opts LoadOptions, path string) (*domain.Table, error) {
	for i, c := range columns {
		if opts.DateColumn != "" && c.Name == opts.DateColumn {
			columns[i] = parseDateColumn(c, opts.MonthFirst)
		}
	}
	table, err := domain.NewTable(columns...)
	if err != nil {
		return nil, errors.NewParsingError("malformed table", err).WithContext("file", path)
	}
	return table, nil
}

var (
	dayFirstLayouts = []string{
		"02/01/2006", "2/1/2006", "02-01-2006", "2-1-2006", "02.01.2006",
		"02/01/2006 15:04", "02/01/2006 15:04:05", "02/01/2006 03:04:05 PM",
		"02/01/06",
	}
	monthFirstLayouts = []string{
		"01/02/2006", "1/2/2006", "01-02-2006", "1-2-2006",
		"01/02/2006 15:04", "01/02/2006 15:04:05", "01/02/2006 03:04:05 PM",
		"01/02/06",
	}
	isoLayouts = []string{
		"2006-01-02", "2006-01-02 15:04:05", "2006-01-02T15:04:05", time.RFC3339,
		"2006/01/02", "02-Jan-2006", "Jan 2, 2006", "2 January 2006",
	}
)

// ParseDate reads a date string. ISO forms are always accepted; slash and
// dash forms are read day-first unless monthFirst is set.
func ParseDate(s string, monthFirst bool) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	local := dayFirstLayouts
	if monthFirst {
		local = monthFirstLayouts
	}
	for _, layouts := range [][]string{isoLayouts, local} {
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func parseDateColumn(c domain.Column, monthFirst bool) domain.Column {
	values := make([]domain.Value, len(c.Values))
	for i, v := range c.Values {
		if t, ok := ParseDate(v.Text(), monthFirst); ok {
			values[i] = domain.Date(t)
		} else {
			values[i] = domain.Null(domain.KindDate)
		}
	}
	return domain.Column{Name: c.Name, Kind: domain.KindDate, Values: values}
}
