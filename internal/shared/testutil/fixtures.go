package testutil

import (
	"testing"
	"time"

	"trafficcli/pkg/contracts/domain"
)

// TextColumn builds a text column where "" stands for a missing value
func TextColumn(name string, values ...string) domain.Column {
	out := make([]domain.Value, len(values))
	for i, v := range values {
		if v == "" {
			out[i] = domain.Null(domain.KindText)
		} else {
			out[i] = domain.Text(v)
		}
	}
	return domain.Column{Name: name, Kind: domain.KindText, Values: out}
}

// DateColumn builds a date column from ISO dates where "" is missing
func DateColumn(t *testing.T, name string, values ...string) domain.Column {
	t.Helper()
	out := make([]domain.Value, len(values))
	for i, v := range values {
		if v == "" {
			out[i] = domain.Null(domain.KindDate)
			continue
		}
		layout := "2006-01-02"
		if len(v) > len(layout) {
			layout = "2006-01-02 15:04"
		}
		d, err := time.Parse(layout, v)
		if err != nil {
			t.Fatalf("bad fixture date %q: %v", v, err)
		}
		out[i] = domain.Date(d)
	}
	return domain.Column{Name: name, Kind: domain.KindDate, Values: out}
}

// NumberColumn builds a numeric column; nil entries are missing
func NumberColumn(name string, values ...*float64) domain.Column {
	out := make([]domain.Value, len(values))
	for i, v := range values {
		if v == nil {
			out[i] = domain.Null(domain.KindNumber)
		} else {
			out[i] = domain.Number(*v)
		}
	}
	return domain.Column{Name: name, Kind: domain.KindNumber, Values: out}
}

// F returns a pointer to f, for NumberColumn literals
func F(f float64) *float64 { return &f }

// Table builds a table or fails the test
func Table(t *testing.T, columns ...domain.Column) *domain.Table {
	t.Helper()
	table, err := domain.NewTable(columns...)
	if err != nil {
		t.Fatalf("bad fixture table: %v", err)
	}
	return table
}

// RawAccidents is the three row accident sample: two complete rows and
// one row that is entirely missing.
func RawAccidents(t *testing.T) *domain.Table {
	t.Helper()
	return Table(t,
		DateColumn(t, "FECHA ACCIDENTE", "2014-06-11", "2014-06-12", ""),
		TextColumn("GRAVEDAD", "h", "m", ""),
		TextColumn("CLASE ACCIDENTE", "VOLCAMIENTO", "CHOQUE", ""),
		TextColumn("MUNICIPIO", "MEDELLÍN", "ENVIGADO", ""),
		TextColumn("NUMERO VICTIMA PEATÓN", "0", "1", ""),
		TextColumn("NUMERO VICTIMA ACOMPAÑANTE", "0", "0", ""),
		TextColumn("NUMERO VICTIMA PASAJERO", "0", "1", ""),
		TextColumn("NUMERO VICTIMA CONDUCTOR", "1", "0", ""),
		TextColumn("NUMERO VICTIMA HERIDO", "0", "1", ""),
		TextColumn("NUMERO VICTIMA MUERTO", "0", "0", ""),
	)
}

// RawViolations is the five row violation sample that cleans to two rows
func RawViolations(t *testing.T) *domain.Table {
	t.Helper()
	return Table(t,
		TextColumn("Violation_ID", "1", "2", "3", "4", ""),
		TextColumn("Violation_Type", "Speeding", "Red Light", "", "Parking Violation", "Speeding"),
		TextColumn("Date", "2023-11-19", "2023-11-20", "2023-11-21", "", "2023-11-22"),
		TextColumn("Location", "Delhi", "Unknown", "Maharashtra", "Karnataka", ""),
		TextColumn("Comments", "", "No seatbelt", "Over speed", "", ""),
		TextColumn("Previous_Violations", "2", "", "1", "0", ""),
		TextColumn("Vehicle_Type", "Bike", "Scooter", "", "Car", "Auto Rickshaw"),
		TextColumn("Driver_Gender", "Male", "Female", "Unknown", "", "Other"),
	)
}
