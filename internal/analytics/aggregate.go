package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"trafficcli/internal/dataprocessing"
	"trafficcli/internal/errors"
	"trafficcli/pkg/contracts/domain"
)

// round2 rounds half away from zero to two decimals
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// tally accumulates weights per label, remembering first-seen order
type tally struct {
	order  []string
	totals map[string]float64
}

func newTally() *tally {
	return &tally{totals: make(map[string]float64)}
}

func (t *tally) add(label string, w float64) {
	if _, ok := t.totals[label]; !ok {
		t.order = append(t.order, label)
	}
	t.totals[label] += w
}

func (t *tally) sum() float64 {
	var s float64
	for _, v := range t.totals {
		s += v
	}
	return s
}

// points returns labels in first-seen order
func (t *tally) points() []domain.Point {
	out := make([]domain.Point, len(t.order))
	for i, l := range t.order {
		out[i] = domain.Point{Label: l, Value: t.totals[l]}
	}
	return out
}

// ordered returns the non-empty labels of order, in that order
func (t *tally) ordered(order []string) []domain.Point {
	var out []domain.Point
	for _, l := range order {
		if v, ok := t.totals[l]; ok && v != 0 {
			out = append(out, domain.Point{Label: l, Value: v})
		}
	}
	return out
}

// descending sorts by value, largest first; ties keep first-seen order
func descending(points []domain.Point) []domain.Point {
	sort.SliceStable(points, func(i, j int) bool { return points[i].Value > points[j].Value })
	return points
}

func percentOf(points []domain.Point, total float64) []domain.Point {
	for i := range points {
		if total == 0 {
			points[i].Value = 0
			continue
		}
		points[i].Value = round2(points[i].Value / total * 100)
	}
	return points
}

func head(points []domain.Point, n int) []domain.Point {
	if n < len(points) {
		return points[:n]
	}
	return points
}

func checkTopN(topN int) error {
	if topN < 1 {
		return errors.NewValidationError(fmt.Sprintf("top_n must be positive, got %d", topN))
	}
	return nil
}

// countText tallies non-missing text values of a column
func countText(c domain.Column) *tally {
	t := newTally()
	for _, v := range c.Values {
		if label, ok := labelOf(v); ok {
			t.add(label, 1)
		}
	}
	return t
}

func labelOf(v domain.Value) (string, bool) {
	if v.IsNull() {
		return "", false
	}
	s := strings.TrimSpace(v.String())
	return s, s != ""
}

// crossTab pivots two categorical columns. Labels are sorted; absent
// combinations are zero.
func crossTab(name string, rows, cols domain.Column, weight func(i int) float64) domain.CrossTab {
	rowIdx, colIdx := map[string]int{}, map[string]int{}
	var rowLabels, colLabels []string
	for i := range rows.Values {
		r, okR := labelOf(rows.Values[i])
		c, okC := labelOf(cols.Values[i])
		if !okR || !okC {
			continue
		}
		if _, ok := rowIdx[r]; !ok {
			rowIdx[r] = 0
			rowLabels = append(rowLabels, r)
		}
		if _, ok := colIdx[c]; !ok {
			colIdx[c] = 0
			colLabels = append(colLabels, c)
		}
	}
	sort.Strings(rowLabels)
	sort.Strings(colLabels)
	for i, l := range rowLabels {
		rowIdx[l] = i
	}
	for j, l := range colLabels {
		colIdx[l] = j
	}

	cells := make([][]float64, len(rowLabels))
	for i := range cells {
		cells[i] = make([]float64, len(colLabels))
	}
	for i := range rows.Values {
		r, okR := labelOf(rows.Values[i])
		c, okC := labelOf(cols.Values[i])
		if !okR || !okC {
			continue
		}
		cells[rowIdx[r]][colIdx[c]] += weight(i)
	}

	return domain.CrossTab{
		Name:         name,
		Unit:         domain.UnitCount,
		RowLabels:    rowLabels,
		ColumnLabels: colLabels,
		Cells:        cells,
	}
}

// rowPercent turns every row of a cross-tab into percent shares of its total
func rowPercent(ct domain.CrossTab) domain.CrossTab {
	for i, row := range ct.Cells {
		total := floats.Sum(row)
		for j := range row {
			if total > 0 {
				row[j] = round2(row[j] / total * 100)
			}
		}
		ct.Cells[i] = row
	}
	ct.Unit = domain.UnitPercent
	return ct
}

// numbers reads the finite numeric values of a column
func numbers(c domain.Column) []float64 {
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if f, ok := dataprocessing.ParseNumber(v); ok {
			out = append(out, f)
		}
	}
	return out
}

// dateAt reads a date cell, parsing text day-first
func dateAt(v domain.Value) (time.Time, bool) {
	if v.IsNull() {
		return time.Time{}, false
	}
	if t, ok := v.Time(); ok {
		return t, true
	}
	if v.Kind() == domain.KindText {
		return dataprocessing.ParseDate(v.Text(), false)
	}
	return time.Time{}, false
}

// Describe computes count, mean, sample standard deviation, min, quartiles
// and max, each rounded to two decimals. Quartiles interpolate linearly
// between closest ranks. A single value has a standard deviation of 0.
func Describe(values []float64) (domain.DescriptiveStats, error) {
	if len(values) == 0 {
		return domain.DescriptiveStats{}, errors.NewValidationError("no numeric values to describe")
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	std := 0.0
	if len(sorted) > 1 {
		std = stat.StdDev(sorted, nil)
	}

	return domain.DescriptiveStats{
		Count:  len(sorted),
		Mean:   round2(stat.Mean(sorted, nil)),
		Std:    round2(std),
		Min:    round2(floats.Min(sorted)),
		Q25:    round2(quantile(sorted, 0.25)),
		Median: round2(quantile(sorted, 0.5)),
		Q75:    round2(quantile(sorted, 0.75)),
		Max:    round2(floats.Max(sorted)),
	}, nil
}

// quantile interpolates between the order statistics around (n-1)p.
// stat.Quantile offers only step and type 4 interpolation.
func quantile(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	hi := math.Ceil(h)
	return sorted[int(lo)] + (h-lo)*(sorted[int(hi)]-sorted[int(lo)])
}
