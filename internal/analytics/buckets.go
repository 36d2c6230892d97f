package analytics

import (
	"fmt"
	"math"
	"strings"
	"time"

	"trafficcli/internal/errors"
)

// Time of day buckets over [0,6), [6,12), [12,18), [18,24)
var TimeOfDayLabels = []string{"Night", "Morning", "Afternoon", "Evening"}

// TimeOfDay buckets an hour of day
func TimeOfDay(hour int) (string, bool) {
	if hour < 0 || hour > 23 {
		return "", false
	}
	return TimeOfDayLabels[hour/6], true
}

// Fine categories over (0,1000], (1000,2000], ..., (5000,inf)
var FineCategoryLabels = []string{"<1K", "1K-2K", "2K-3K", "3K-4K", "4K-5K", "5K+"}

// FineCategory buckets a fine amount. Zero, negative and NaN amounts have
// no category.
func FineCategory(amount float64) (string, bool) {
	if math.IsNaN(amount) || amount <= 0 {
		return "", false
	}
	if amount > 5000 {
		return FineCategoryLabels[5], true
	}
	return FineCategoryLabels[int(math.Ceil(amount/1000))-1], true
}

// Age bands over [0,20), [20,30), ..., [70,inf)
var AgeBandLabels = []string{"<20", "20-29", "30-39", "40-49", "50-59", "60-69", "70+"}

// AgeBand buckets a driver age
func AgeBand(age float64) (string, bool) {
	switch {
	case math.IsNaN(age) || age < 0:
		return "", false
	case age < 20:
		return AgeBandLabels[0], true
	case age >= 70:
		return AgeBandLabels[6], true
	default:
		return AgeBandLabels[int(age/10)-1], true
	}
}

// Meteorological seasons in calendar order
var SeasonLabels = []string{"Winter", "Spring", "Summer", "Autumn"}

// Season returns the meteorological season of a month
func Season(m time.Month) string {
	return SeasonLabels[(int(m)%12)/3]
}

var spanishMonths = []string{"Ene", "Feb", "Mar", "Abr", "May", "Jun", "Jul", "Ago", "Sep", "Oct", "Nov", "Dic"}

// Frequency selects the calendar bucket of a temporal trend
type Frequency string

const (
	Daily     Frequency = "D"
	Weekly    Frequency = "W"
	Monthly   Frequency = "M"
	Quarterly Frequency = "Q"
	Yearly    Frequency = "Y"
)

// Frequencies lists the supported bucket sizes
var Frequencies = []Frequency{Daily, Weekly, Monthly, Quarterly, Yearly}

// ParseFrequency accepts a one letter code or a full name such as "Month"
// or "monthly"
func ParseFrequency(s string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "d", "day", "daily":
		return Daily, nil
	case "w", "week", "weekly":
		return Weekly, nil
	case "m", "month", "monthly":
		return Monthly, nil
	case "q", "quarter", "quarterly":
		return Quarterly, nil
	case "y", "year", "yearly", "annual":
		return Yearly, nil
	}
	return "", errors.NewValidationError(fmt.Sprintf("unsupported frequency %q", s)).
		WithContext("supported", Frequencies)
}

// Valid reports whether f is one of Frequencies
func (f Frequency) Valid() bool {
	for _, v := range Frequencies {
		if v == f {
			return true
		}
	}
	return false
}

// bucket returns the start of the period containing t and its label. Weeks
// run Monday to Sunday.
func (f Frequency) bucket(t time.Time) (time.Time, string) {
	y, m, d := t.Date()
	switch f {
	case Daily:
		start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return start, start.Format("2006-01-02")
	case Weekly:
		offset := (int(t.Weekday()) + 6) % 7
		start := time.Date(y, m, d-offset, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 0, 6)
		return start, start.Format("2006-01-02") + "/" + end.Format("2006-01-02")
	case Monthly:
		start := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
		return start, start.Format("2006-01")
	case Quarterly:
		q := (int(m)-1)/3 + 1
		start := time.Date(y, time.Month((q-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
		return start, fmt.Sprintf("%dQ%d", y, q)
	default:
		start := time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
		return start, fmt.Sprintf("%d", y)
	}
}
