package domain

// Unit describes what the numbers in a summary measure
type Unit string

const (
	UnitCount   Unit = "count"
	UnitPercent Unit = "percent"
	UnitSum     Unit = "sum"
)

// Point is one labelled value of a Series
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Series is an ordered label to value mapping produced by an analysis query.
type Series struct {
	Name   string  `json:"name" validate:"required"`
	Unit   Unit    `json:"unit" validate:"required,oneof=count percent sum"`
	Points []Point `json:"points"`
}

// Len returns the number of points
func (s Series) Len() int { return len(s.Points) }

// Labels returns point labels in order
func (s Series) Labels() []string {
	out := make([]string, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Label
	}
	return out
}

// Values returns point values in order
func (s Series) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

// Value looks up the value for a label
func (s Series) Value(label string) (float64, bool) {
	for _, p := range s.Points {
		if p.Label == label {
			return p.Value, true
		}
	}
	return 0, false
}

// Total sums all values
func (s Series) Total() float64 {
	var total float64
	for _, p := range s.Points {
		total += p.Value
	}
	return total
}

// CrossTab is a two-way table of values, for example counts of severity by
// class. Cells[i][j] belongs to RowLabels[i] and ColumnLabels[j].
type CrossTab struct {
	Name         string      `json:"name" validate:"required"`
	Unit         Unit        `json:"unit" validate:"required,oneof=count percent sum"`
	RowLabels    []string    `json:"row_labels"`
	ColumnLabels []string    `json:"column_labels"`
	Cells        [][]float64 `json:"cells"`
}

// Cell looks up a value by its row and column labels
func (c CrossTab) Cell(row, column string) (float64, bool) {
	ri, ci := -1, -1
	for i, l := range c.RowLabels {
		if l == row {
			ri = i
			break
		}
	}
	for j, l := range c.ColumnLabels {
		if l == column {
			ci = j
			break
		}
	}
	if ri < 0 || ci < 0 {
		return 0, false
	}
	return c.Cells[ri][ci], true
}

// RowTotal sums one row
func (c CrossTab) RowTotal(row string) float64 {
	var total float64
	for i, l := range c.RowLabels {
		if l == row {
			for _, v := range c.Cells[i] {
				total += v
			}
		}
	}
	return total
}

// DescriptiveStats summarises a numeric column. Std is the sample
// standard deviation; quartiles use linear interpolation.
type DescriptiveStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"25%"`
	Median float64 `json:"50%"`
	Q75    float64 `json:"75%"`
	Max    float64 `json:"max"`
}

// AsSeries lays the statistics out as a series in describe order
func (d DescriptiveStats) AsSeries(name string) Series {
	return Series{
		Name: name,
		Unit: UnitSum,
		Points: []Point{
			{Label: "count", Value: float64(d.Count)},
			{Label: "mean", Value: d.Mean},
			{Label: "std", Value: d.Std},
			{Label: "min", Value: d.Min},
			{Label: "25%", Value: d.Q25},
			{Label: "50%", Value: d.Median},
			{Label: "75%", Value: d.Q75},
			{Label: "max", Value: d.Max},
		},
	}
}
