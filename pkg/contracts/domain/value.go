package domain

import (
	"fmt"
	"strconv"
	"time"
)

// Kind identifies the logical type carried by a column.
type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindDate
	KindHour
)

// String returns the lowercase kind name
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	case KindHour:
		return "hour"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// HourOfDay is the derived hour of an incident. A value that came from
// text that could not be read as HH:MM has Parsed set to false.
type HourOfDay struct {
	Hour   int
	Parsed bool
}

// UnparsedLabel is how an unparsed hour renders in exported files.
const UnparsedLabel = "unparsed"

// Value is a single nullable table cell.
type Value struct {
	kind  Kind
	valid bool
	text  string
	num   float64
	when  time.Time
	hour  HourOfDay
}

// Null returns a missing value of the given kind
func Null(kind Kind) Value {
	return Value{kind: kind}
}

// Text returns a present text value
func Text(s string) Value {
	return Value{kind: KindText, valid: true, text: s}
}

// Number returns a present numeric value
func Number(f float64) Value {
	return Value{kind: KindNumber, valid: true, num: f}
}

// Date returns a present date value
func Date(t time.Time) Value {
	return Value{kind: KindDate, valid: true, when: t}
}

// Hour returns a parsed hour-of-day value
func Hour(h int) Value {
	return Value{kind: KindHour, valid: true, hour: HourOfDay{Hour: h, Parsed: true}}
}

// UnparsedHour returns the hour sentinel for text that was present but unreadable
func UnparsedHour() Value {
	return Value{kind: KindHour, valid: true}
}

// Kind returns the value kind
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is missing
func (v Value) IsNull() bool { return !v.valid }

// Text returns the text payload. Empty for non-text or null values.
func (v Value) Text() string {
	if !v.valid || v.kind != KindText {
		return ""
	}
	return v.text
}

// Float returns the numeric payload and whether it exists
func (v Value) Float() (float64, bool) {
	if !v.valid || v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// Time returns the date payload and whether it exists
func (v Value) Time() (time.Time, bool) {
	if !v.valid || v.kind != KindDate {
		return time.Time{}, false
	}
	return v.when, true
}

// HourOfDay returns the hour payload and whether it exists
func (v Value) HourOfDay() (HourOfDay, bool) {
	if !v.valid || v.kind != KindHour {
		return HourOfDay{}, false
	}
	return v.hour, true
}

// Equal compares two values including kind and nullness
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind || v.valid != o.valid {
		return false
	}
	if !v.valid {
		return true
	}
	switch v.kind {
	case KindNumber:
		return v.num == o.num
	case KindDate:
		return v.when.Equal(o.when)
	case KindHour:
		return v.hour == o.hour
	default:
		return v.text == o.text
	}
}

// String renders the value the way it is written to CSV. Null renders empty.
func (v Value) String() string {
	if !v.valid {
		return ""
	}
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindDate:
		if v.when.Hour() == 0 && v.when.Minute() == 0 && v.when.Second() == 0 {
			return v.when.Format("2006-01-02")
		}
		return v.when.Format("2006-01-02 15:04:05")
	case KindHour:
		if !v.hour.Parsed {
			return UnparsedLabel
		}
		return strconv.Itoa(v.hour.Hour)
	default:
		return v.text
	}
}
