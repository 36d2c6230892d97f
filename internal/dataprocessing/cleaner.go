package dataprocessing

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"trafficcli/internal/errors"
	"trafficcli/pkg/contracts/domain"
)

// Cleaner applies one RuleSet to raw tables. It holds no per-call state
// and is safe for concurrent use.
type Cleaner struct {
	rules  RuleSet
	logger *slog.Logger
}

// NewCleaner creates a cleaner for the given rule set
func NewCleaner(rules RuleSet, logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{rules: rules, logger: logger}
}

// Rules returns the rule set in use
func (c *Cleaner) Rules() RuleSet { return c.rules }

// Clean returns a new table with every rule applied. The input is never
// modified. An empty input comes back unchanged.
func (c *Cleaner) Clean(ctx context.Context, raw *domain.Table) (*domain.Table, error) {
	cleaned, _, err := c.clean(ctx, raw)
	return cleaned, err
}

// CleanWithReport cleans raw and also describes what changed
func (c *Cleaner) CleanWithReport(ctx context.Context, raw *domain.Table) (*domain.Table, domain.CleaningReport, error) {
	cleaned, ops, err := c.clean(ctx, raw)
	if err != nil {
		return nil, domain.CleaningReport{}, err
	}
	report := BuildReport(c.rules, raw, cleaned)
	report.Operations = ops
	return cleaned, report, nil
}

func (c *Cleaner) clean(ctx context.Context, raw *domain.Table) (*domain.Table, []domain.Operation, error) {
	if raw == nil {
		return nil, nil, errors.NewInputTypeError("cleaner input must be a table, got nil")
	}
	if raw.Len() == 0 {
		c.logger.DebugContext(ctx, "Empty table, nothing to clean", slog.String("rule_set", c.rules.Name))
		return raw, nil, nil
	}
	if missing := raw.Schema().Missing(c.rules.RequiredColumns()...); len(missing) > 0 {
		return nil, nil, errors.NewSchemaError(missing).WithContext("rule_set", c.rules.Name)
	}

	start := time.Now()
	w := newWorkTable(raw)

	w.dropMissing(c.rules.Critical)
	for _, f := range c.rules.Fills {
		w.fillText(f)
	}
	for _, col := range c.rules.Numeric {
		w.coerceNumeric(col)
	}
	upper := cases.Upper(language.Und)
	for _, col := range c.rules.Uppercase {
		w.normalizeText(col, "uppercase", upper)
	}
	title := cases.Title(language.Und)
	for _, col := range c.rules.TitleCase {
		w.normalizeText(col, "title_case", title)
	}
	for _, d := range c.rules.Domains {
		w.restrictDomain(d)
	}
	if c.rules.Identifier != "" {
		w.dedupe(c.rules.Identifier)
	}
	for _, s := range c.rules.Sums {
		w.sum(s)
	}
	for _, h := range c.rules.Hours {
		w.deriveHour(h)
	}

	cleaned, err := w.build()
	if err != nil {
		return nil, nil, err
	}

	c.logger.InfoContext(ctx, "Cleaned table",
		slog.String("rule_set", c.rules.Name),
		slog.Int("rows_in", raw.Len()),
		slog.Int("rows_out", cleaned.Len()),
		slog.Int("rows_removed", raw.Len()-cleaned.Len()),
		slog.Duration("duration", time.Since(start)))

	return cleaned, w.ops, nil
}

// workTable is the mutable scratch space of a single Clean call. Column
// values are indexed by original row; rows lists the surviving ones.
type workTable struct {
	cols  []domain.Column
	index map[string]int
	rows  []int
	ops   []domain.Operation
}

func newWorkTable(t *domain.Table) *workTable {
	w := &workTable{
		cols:  t.Columns(),
		index: make(map[string]int, t.Width()),
		rows:  make([]int, t.Len()),
	}
	for i, c := range w.cols {
		w.index[c.Name] = i
	}
	for i := range w.rows {
		w.rows[i] = i
	}
	return w
}

func (w *workTable) column(name string) (*domain.Column, bool) {
	i, ok := w.index[name]
	if !ok {
		return nil, false
	}
	return &w.cols[i], true
}

func (w *workTable) record(step, column string, cells int) {
	if cells > 0 {
		w.ops = append(w.ops, domain.Operation{Step: step, Column: column, Cells: cells})
	}
}

func (w *workTable) setColumn(c domain.Column) {
	if i, ok := w.index[c.Name]; ok {
		w.cols[i] = c
		return
	}
	w.index[c.Name] = len(w.cols)
	w.cols = append(w.cols, c)
}

// dropMissing removes rows with a missing value in any of cols. Each drop
// is attributed to the first missing column.
func (w *workTable) dropMissing(cols []string) {
	dropped := make(map[string]int)
	kept := w.rows[:0]
	for _, r := range w.rows {
		reason := ""
		for _, name := range cols {
			if c, ok := w.column(name); ok && isMissing(c.Values[r]) {
				reason = name
				break
			}
		}
		if reason != "" {
			dropped[reason]++
			continue
		}
		kept = append(kept, r)
	}
	w.rows = kept
	for _, name := range cols {
		w.record("drop_missing", name, dropped[name])
	}
}

// isMissing treats blank text as missing alongside nulls
func isMissing(v domain.Value) bool {
	if v.IsNull() {
		return true
	}
	return v.Kind() == domain.KindText && strings.TrimSpace(v.Text()) == ""
}

func (w *workTable) fillText(f Fill) {
	c, ok := w.column(f.Column)
	if !ok {
		return
	}
	if c.Kind != domain.KindText {
		w.toText(c)
	}
	n := 0
	for _, r := range w.rows {
		if isMissing(c.Values[r]) {
			c.Values[r] = domain.Text(f.Value)
			n++
		}
	}
	w.record("fill", f.Column, n)
}

// toText re-types a non-text column as text using its rendered values
func (w *workTable) toText(c *domain.Column) {
	for i, v := range c.Values {
		if v.IsNull() {
			c.Values[i] = domain.Null(domain.KindText)
		} else {
			c.Values[i] = domain.Text(v.String())
		}
	}
	c.Kind = domain.KindText
}

// coerceNumeric converts a column to numbers; missing or unreadable cells become 0
func (w *workTable) coerceNumeric(name string) {
	c, ok := w.column(name)
	if !ok {
		return
	}
	values := make([]domain.Value, len(c.Values))
	n := 0
	for i, v := range c.Values {
		f, parsed := ParseNumber(v)
		if !parsed {
			f = 0
			n++
		}
		values[i] = domain.Number(f)
	}
	w.setColumn(domain.Column{Name: name, Kind: domain.KindNumber, Values: values})
	w.record("coerce_numeric", name, n)
}

// ParseNumber reads a numeric cell. Text is trimmed; blank, unreadable or
// non-finite input reports false.
func ParseNumber(v domain.Value) (float64, bool) {
	if v.IsNull() {
		return 0, false
	}
	if f, ok := v.Float(); ok {
		return f, !math.IsNaN(f) && !math.IsInf(f, 0)
	}
	if v.Kind() != domain.KindText {
		return 0, false
	}
	s := strings.TrimSpace(v.Text())
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// normalizeText trims and re-cases text. Missing cells stay missing.
func (w *workTable) normalizeText(name, step string, caser cases.Caser) {
	c, ok := w.column(name)
	if !ok || c.Kind != domain.KindText {
		return
	}
	n := 0
	for _, r := range w.rows {
		v := c.Values[r]
		if v.IsNull() {
			continue
		}
		normalized := caser.String(strings.TrimSpace(v.Text()))
		if normalized != v.Text() {
			c.Values[r] = domain.Text(normalized)
			n++
		}
	}
	w.record(step, name, n)
}

func (w *workTable) restrictDomain(d Domain) {
	c, ok := w.column(d.Column)
	if !ok || c.Kind != domain.KindText {
		return
	}
	n := 0
	for _, r := range w.rows {
		v := c.Values[r]
		if v.IsNull() || !d.Contains(v.Text()) {
			c.Values[r] = domain.Text(d.Fallback)
			n++
		}
	}
	w.record("restrict_domain", d.Column, n)
}

// dedupe drops rows with a missing identifier and every repeat of an
// identifier after its first occurrence
func (w *workTable) dedupe(name string) {
	c, ok := w.column(name)
	if !ok {
		return
	}
	seen := make(map[string]struct{}, len(w.rows))
	kept := w.rows[:0]
	dropped := 0
	for _, r := range w.rows {
		v := c.Values[r]
		if isMissing(v) {
			dropped++
			continue
		}
		key := identifierKey(v)
		if _, dup := seen[key]; dup {
			dropped++
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, r)
	}
	w.rows = kept
	w.record("dedupe", name, dropped)
}

// identifierKey renders an id so that "7", " 7" and 7.0 collide
func identifierKey(v domain.Value) string {
	if f, ok := ParseNumber(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strings.TrimSpace(v.String())
}

func (w *workTable) sum(s Sum) {
	sources := make([]*domain.Column, 0, len(s.Sources))
	for _, name := range s.Sources {
		c, ok := w.column(name)
		if !ok {
			return
		}
		sources = append(sources, c)
	}
	values := make([]domain.Value, len(sources[0].Values))
	for i := range values {
		var total float64
		for _, c := range sources {
			f, _ := ParseNumber(c.Values[i])
			total += f
		}
		values[i] = domain.Number(total)
	}
	w.setColumn(domain.Column{Name: s.Target, Kind: domain.KindNumber, Values: values})
	w.record("derive_sum", s.Target, len(w.rows))
}

func (w *workTable) deriveHour(h HourRule) {
	c, ok := w.column(h.Source)
	if !ok {
		return
	}
	values := make([]domain.Value, len(c.Values))
	unparsed := 0
	for i, v := range c.Values {
		values[i] = HourValue(v)
		if hv, ok := values[i].HourOfDay(); ok && !hv.Parsed {
			unparsed++
		}
	}
	w.setColumn(domain.Column{Name: h.Target, Kind: domain.KindHour, Values: values})
	w.record("derive_hour", h.Target, len(w.rows))
	w.record("unparsed_hour", h.Target, unparsed)
}

var hourLayouts = []string{"15:04", "15:04:05", "3:04 PM", "3:04:05 PM", "3:04PM", "15.04"}

// HourValue turns a time-of-day cell into an hour value. Missing input
// stays missing; present but unreadable input yields the unparsed sentinel.
func HourValue(v domain.Value) domain.Value {
	if v.IsNull() {
		return domain.Null(domain.KindHour)
	}
	switch v.Kind() {
	case domain.KindHour:
		return v
	case domain.KindDate:
		t, _ := v.Time()
		return domain.Hour(t.Hour())
	case domain.KindText:
		s := strings.TrimSpace(v.Text())
		if s == "" {
			return domain.Null(domain.KindHour)
		}
		for _, layout := range hourLayouts {
			if t, err := time.Parse(layout, strings.ToUpper(s)); err == nil {
				return domain.Hour(t.Hour())
			}
		}
	}
	return domain.UnparsedHour()
}

func (w *workTable) build() (*domain.Table, error) {
	full, err := domain.NewTable(w.cols...)
	if err != nil {
		return nil, err
	}
	return full.SelectRows(w.rows), nil
}
