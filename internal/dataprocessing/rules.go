package dataprocessing

import (
	"fmt"
	"strings"

	"trafficcli/internal/errors"
	"trafficcli/pkg/contracts/domain"
)

// Accident (variant A) column names
const (
	ColAccidentDate  = "FECHA ACCIDENTE"
	ColSeverity      = "GRAVEDAD"
	ColAccidentClass = "CLASE ACCIDENTE"
	ColMunicipality  = "MUNICIPIO"
	ColWeather       = "ESTADO CLIMA"
	ColAccidentHour  = "HORA ACCIDENTE"
	ColHourOfDay     = "HORA DEL DIA"
	ColTotalVictims  = "TOTAL VICTIMAS"
)

// VictimColumns are the per-role victim counts summed into ColTotalVictims
var VictimColumns = []string{
	"NUMERO VICTIMA PEATÓN",
	"NUMERO VICTIMA ACOMPAÑANTE",
	"NUMERO VICTIMA PASAJERO",
	"NUMERO VICTIMA CONDUCTOR",
	"NUMERO VICTIMA HERIDO",
	"NUMERO VICTIMA MUERTO",
}

// Violation (variant B) column names
const (
	ColViolationID       = "Violation_ID"
	ColViolationType     = "Violation_Type"
	ColDate              = "Date"
	ColTime              = "Time"
	ColLocation          = "Location"
	ColComments          = "Comments"
	ColPreviousViolation = "Previous_Violations"
	ColVehicleType       = "Vehicle_Type"
	ColDriverGender      = "Driver_Gender"
	ColDriverAge         = "Driver_Age"
	ColWeatherCondition  = "Weather_Condition"
	ColSeatbelt          = "Seatbelt_Worn"
	ColHelmet            = "Helmet_Worn"
	ColFineAmount        = "Fine_Amount"
)

// Fill replaces missing text in Column with Value
type Fill struct {
	Column string
	Value  string
}

// Domain restricts a categorical column to Allowed; anything else becomes Fallback
type Domain struct {
	Column   string
	Allowed  []string
	Fallback string
}

// Contains reports whether v is an allowed label
func (d Domain) Contains(v string) bool {
	for _, a := range d.Allowed {
		if a == v {
			return true
		}
	}
	return false
}

// Sum derives Target as the element-wise sum of Sources
type Sum struct {
	Target  string
	Sources []string
}

// HourRule derives an hour-of-day column from an HH:MM text column
type HourRule struct {
	Source string
	Target string
}

// RuleSet is a declarative cleaning recipe for one dataset variant. Rules
// naming optional columns are skipped when the column is absent.
type RuleSet struct {
	Name    string
	Variant domain.Variant

	// Critical columns: rows missing any of them are dropped
	Critical []string
	// Required columns that may hold missing values
	Required []string
	// DateColumn is parsed as a date by the loader
	DateColumn string
	// Identifier, when set, must be unique; the first occurrence is kept
	Identifier string

	Fills     []Fill
	Numeric   []string
	Uppercase []string
	TitleCase []string
	Domains   []Domain
	Sums      []Sum
	Hours     []HourRule
}

// RequiredColumns returns critical and required columns together
func (r RuleSet) RequiredColumns() []string {
	out := make([]string, 0, len(r.Critical)+len(r.Required))
	out = append(out, r.Critical...)
	return append(out, r.Required...)
}

// Columns returns every source column a rule refers to, without duplicates,
// in declaration order
func (r RuleSet) Columns() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(names ...string) {
		for _, n := range names {
			if n != "" && !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	add(r.Critical...)
	add(r.Required...)
	add(r.Identifier)
	for _, f := range r.Fills {
		add(f.Column)
	}
	add(r.Numeric...)
	add(r.Uppercase...)
	add(r.TitleCase...)
	for _, d := range r.Domains {
		add(d.Column)
	}
	for _, s := range r.Sums {
		add(s.Sources...)
	}
	for _, h := range r.Hours {
		add(h.Source)
	}
	return out
}

// ValidLocations are the regions accepted in the violation dataset
var ValidLocations = []string{
	"Karnataka", "Punjab", "Maharashtra", "Uttar Pradesh",
	"West Bengal", "Delhi", "Gujarat", "Tamil Nadu",
}

// ValidGenders are the accepted driver gender labels
var ValidGenders = []string{"Male", "Female", "Other"}

// AccidentRules cleans the accident dataset
func AccidentRules() RuleSet {
	return RuleSet{
		Name:       "accidents",
		Variant:    domain.VariantAccidents,
		Critical:   []string{ColAccidentDate, ColSeverity, ColAccidentClass, ColMunicipality},
		Required:   append([]string(nil), VictimColumns...),
		DateColumn: ColAccidentDate,
		Numeric:    append([]string(nil), VictimColumns...),
		Uppercase:  []string{ColWeather},
		Sums:       []Sum{{Target: ColTotalVictims, Sources: append([]string(nil), VictimColumns...)}},
		Hours:      []HourRule{{Source: ColAccidentHour, Target: ColHourOfDay}},
	}
}

// ViolationRules cleans the violation dataset, filling every optional
// categorical column including the safety equipment flags
func ViolationRules() RuleSet {
	rs := ViolationRulesBasic()
	rs.Name = "violations"
	rs.Fills = append(rs.Fills,
		Fill{Column: ColSeatbelt, Value: "Unknown"},
		Fill{Column: ColHelmet, Value: "Unknown"},
	)
	return rs
}

// ViolationRulesBasic is ViolationRules without the safety equipment fills
func ViolationRulesBasic() RuleSet {
	return RuleSet{
		Name:       "violations-basic",
		Variant:    domain.VariantViolations,
		Critical:   []string{ColViolationID, ColViolationType, ColDate, ColLocation},
		Required:   []string{ColComments, ColPreviousViolation},
		DateColumn: ColDate,
		Identifier: ColViolationID,
		Fills: []Fill{
			{Column: ColComments, Value: "No comments"},
			{Column: ColVehicleType, Value: "Unknown"},
			{Column: ColDriverGender, Value: "Unknown"},
			{Column: ColWeatherCondition, Value: "Unknown"},
		},
		Numeric:   []string{ColPreviousViolation},
		TitleCase: []string{ColViolationType, ColLocation, ColVehicleType, ColDriverGender},
		Domains: []Domain{
			{Column: ColDriverGender, Allowed: ValidGenders, Fallback: "Other"},
			{Column: ColLocation, Allowed: ValidLocations, Fallback: "Unknown"},
		},
	}
}

// RuleSetByName resolves a configured variant name
func RuleSetByName(name string) (RuleSet, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "accidents", "accident":
		return AccidentRules(), nil
	case "violations", "violation":
		return ViolationRules(), nil
	case "violations-basic":
		return ViolationRulesBasic(), nil
	default:
		return RuleSet{}, errors.NewValidationError(fmt.Sprintf("unknown dataset variant %q", name)).
			WithContext("variant", name)
	}
}
