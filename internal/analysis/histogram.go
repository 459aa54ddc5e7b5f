package analysis

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"spckit/domain/table"
	"spckit/internal/errors"
)

// Bin is one equal-width histogram bucket, [Lower, Upper) except for the
// last bin which also holds the maximum.
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Histogram is a descriptive summary plus the frequency distribution.
type Histogram struct {
	Variable string   `json:"variable"`
	Summary  Summary  `json:"summary"`
	Bins     []Bin    `json:"bins"`
	Shape    *Shape   `json:"shape,omitempty"`
	Notes    []string `json:"notes"`
}

// MaxBins bounds caller-requested bin counts.
const MaxBins = 200

// SturgesBins returns ceil(log2 n) + 1.
func SturgesBins(n int) int {
	if n <= 1 {
		return 1
	}
	return int(math.Ceil(math.Log2(float64(n)))) + 1
}

// AnalyzeHistogram bins a numeric column. With bins == 0 the bin count
// follows Sturges' rule. A constant column yields a single bin.
func AnalyzeHistogram(t *table.Table, column string, bins int) (*Histogram, error) {
	if err := validateBins(bins, MaxBins); err != nil {
		return nil, err
	}
	summary, err := SummarizeColumn(t, column)
	if err != nil {
		return nil, err
	}
	col, _ := t.NumericColumn(column)
	values, _ := col.Floats()

	h := &Histogram{
		Variable: column,
		Summary:  summary,
		Bins:     binValues(values, summary.Min, summary.Max, bins),
	}
	h.Notes = []string{
		fmt.Sprintf("Central Value: The mean of %.2f indicates the central tendency of the distribution.", summary.Mean),
		fmt.Sprintf("Variability: A standard deviation of %.2f suggests the spread of data.", summary.Std),
		fmt.Sprintf("Range: It varies between %.2f and %.2f.", summary.Min, summary.Max),
	}
	if shape, ok := DescribeShape(values); ok {
		h.Shape = shape
		h.Notes = append(h.Notes, shape.Note())
	}
	return h, nil
}

func binValues(values []float64, min, max float64, bins int) []Bin {
	if bins <= 0 {
		bins = SturgesBins(len(values))
	}
	if min == max {
		bins = 1
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	// the last divider must be strictly greater than the maximum
	dividers := make([]float64, bins+1)
	width := (max - min) / float64(bins)
	for i := 0; i < bins; i++ {
		dividers[i] = min + float64(i)*width
	}
	dividers[bins] = math.Nextafter(max, math.Inf(1))

	counts := stat.Histogram(nil, dividers, sorted, nil)

	out := make([]Bin, bins)
	for i := range out {
		upper := dividers[i+1]
		if i == bins-1 {
			upper = max
		}
		out[i] = Bin{Lower: dividers[i], Upper: upper, Count: int(counts[i])}
	}
	return out
}

// validateBins rejects absurd bin requests from callers.
func validateBins(bins, limit int) error {
	if bins < 0 || bins > limit {
		return errors.InvalidInput(fmt.Sprintf("bins must be between 0 and %d", limit))
	}
	return nil
}
