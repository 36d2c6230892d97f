package domain

// Variant names a dataset family handled by the cleaner
type Variant string

const (
	VariantAccidents  Variant = "accidents"
	VariantViolations Variant = "violations"
)

// Operation counts how many cells one cleaning step rewrote in one column
type Operation struct {
	Step   string `json:"step"`
	Column string `json:"column"`
	Cells  int    `json:"cells"`
}

// CleaningReport describes the difference between a raw and a cleaned table.
// It is informational only and never feeds back into cleaning.
type CleaningReport struct {
	Variant          Variant     `json:"variant" validate:"required"`
	RuleSet          string      `json:"rule_set" validate:"required"`
	OriginalRows     int         `json:"original_rows" validate:"gte=0"`
	CleanedRows      int         `json:"cleaned_rows" validate:"gte=0,ltefield=OriginalRows"`
	RowsRemoved      int         `json:"rows_removed" validate:"gte=0"`
	ColumnsProcessed []string    `json:"columns_processed"`
	NullsBefore      []NullCount `json:"nulls_before"`
	NullsAfter       []NullCount `json:"nulls_after"`
	Operations       []Operation `json:"operations,omitempty"`
}

// TotalNullsBefore sums missing values in the raw table
func (r CleaningReport) TotalNullsBefore() int {
	return sumNulls(r.NullsBefore)
}

// TotalNullsAfter sums missing values in the cleaned table
func (r CleaningReport) TotalNullsAfter() int {
	return sumNulls(r.NullsAfter)
}

func sumNulls(counts []NullCount) int {
	total := 0
	for _, c := range counts {
		total += c.Nulls
	}
	return total
}
