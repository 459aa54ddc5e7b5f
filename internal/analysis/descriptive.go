package analysis

import (
	"math"

	"github.com/montanaflynn/stats"

	"spckit/domain/table"
	"spckit/internal/errors"
)

// Summary holds descriptive statistics for one numeric series. Statistics
// are computed over present values only; missing cells are counted.
type Summary struct {
	Count        int     `json:"count"`
	Mean         float64 `json:"mean"`
	Median       float64 `json:"median"`
	Std          float64 `json:"std"`
	Variance     float64 `json:"variance"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Range        float64 `json:"range"`
	MissingCount int     `json:"missing_count"`
	MissingPct   float64 `json:"missing_pct"`
}

// Summarize computes descriptive statistics for cells.
func Summarize(cells []table.Cell) (Summary, error) {
	values, missing := table.PresentFloats(cells)
	if len(values) == 0 {
		return Summary{}, errors.EmptySeries("")
	}

	s, err := summarizeValues(values)
	if err != nil {
		return Summary{}, err
	}
	s.MissingCount = missing
	s.MissingPct = float64(missing) / float64(len(cells)) * 100
	return s, nil
}

// SummarizeColumn summarizes a numeric column of t.
func SummarizeColumn(t *table.Table, column string) (Summary, error) {
	col, err := t.NumericColumn(column)
	if err != nil {
		return Summary{}, err
	}
	s, err := Summarize(col.Cells)
	if errors.HasCode(err, errors.CodeEmptySeries) {
		return Summary{}, errors.EmptySeries(column)
	}
	return s, err
}

// summarizeValues computes the statistics of a non-empty value slice.
func summarizeValues(values []float64) (Summary, error) {
	mean, err := stats.Mean(values)
	if err != nil {
		return Summary{}, errors.Wrap(err, "mean")
	}
	median, err := stats.Median(values)
	if err != nil {
		return Summary{}, errors.Wrap(err, "median")
	}
	min, err := stats.Min(values)
	if err != nil {
		return Summary{}, errors.Wrap(err, "min")
	}
	max, err := stats.Max(values)
	if err != nil {
		return Summary{}, errors.Wrap(err, "max")
	}
	variance, err := sampleVariance(values)
	if err != nil {
		return Summary{}, err
	}

	if !finite(mean, variance, max-min) {
		return Summary{}, errors.New(errors.CodeOutOfRangeResult,
			"statistics overflow the float64 range")
	}

	return Summary{
		Count:    len(values),
		Mean:     mean,
		Median:   median,
		Std:      math.Sqrt(variance),
		Variance: variance,
		Min:      min,
		Max:      max,
		Range:    max - min,
	}, nil
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// sampleVariance uses the n-1 denominator and is 0 for a single value.
func sampleVariance(values []float64) (float64, error) {
	if len(values) < 2 {
		return 0, nil
	}
	v, err := stats.SampleVariance(values)
	if err != nil {
		return 0, errors.Wrap(err, "variance")
	}
	return v, nil
}

// MissingEntry reports missing cells of one column.
type MissingEntry struct {
	Column  string     `json:"column"`
	Kind    table.Kind `json:"kind"`
	Missing int        `json:"missing"`
	Pct     float64    `json:"pct"`
}

// MissingReport counts missing cells per column, in table order.
func MissingReport(t *table.Table) ([]MissingEntry, error) {
	if t.RowCount() == 0 {
		return nil, errors.EmptyTable("table has no rows")
	}
	report := make([]MissingEntry, 0, t.ColumnCount())
	for _, info := range t.Columns() {
		col, err := t.Column(info.Name)
		if err != nil {
			return nil, err
		}
		missing := col.MissingCount()
		report = append(report, MissingEntry{
			Column:  info.Name,
			Kind:    info.Kind,
			Missing: missing,
			Pct:     100 * float64(missing) / float64(t.RowCount()),
		})
	}
	return report, nil
}

// round2 rounds half away from zero to two decimals.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
