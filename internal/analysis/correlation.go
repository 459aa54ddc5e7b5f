package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"spckit/domain/table"
	"spckit/internal/errors"
)

// Strength labels a correlation coefficient.
type Strength string

const (
	StrengthWeak     Strength = "weak"
	StrengthModerate Strength = "moderate"
	StrengthStrong   Strength = "strong"
)

// StrengthOf buckets |r| at 0.3 and 0.7.
func StrengthOf(r float64) Strength {
	switch a := math.Abs(r); {
	case a < 0.3:
		return StrengthWeak
	case a < 0.7:
		return StrengthModerate
	default:
		return StrengthStrong
	}
}

// Correlation describes the linear relationship between two columns.
type Correlation struct {
	X         string   `json:"x"`
	Y         string   `json:"y"`
	Pairs     int      `json:"pairs"`
	R         float64  `json:"r"`
	Strength  Strength `json:"strength"`
	MeanX     float64  `json:"mean_x"`
	MeanY     float64  `json:"mean_y"`
	Slope     float64  `json:"slope"`
	Intercept float64  `json:"intercept"`
	Summary   string   `json:"summary"`
}

// Correlate computes Pearson's r over rows where both columns are present.
func Correlate(t *table.Table, xColumn, yColumn string) (*Correlation, error) {
	xc, err := t.NumericColumn(xColumn)
	if err != nil {
		return nil, err
	}
	yc, err := t.NumericColumn(yColumn)
	if err != nil {
		return nil, err
	}

	xs := make([]float64, 0, t.RowCount())
	ys := make([]float64, 0, t.RowCount())
	for i := 0; i < t.RowCount(); i++ {
		if xc.Cells[i].Missing || yc.Cells[i].Missing {
			continue
		}
		xs = append(xs, xc.Cells[i].Num)
		ys = append(ys, yc.Cells[i].Num)
	}
	if len(xs) < 2 {
		return nil, errors.InsufficientData(fmt.Sprintf(
			"correlation needs at least 2 complete pairs, got %d", len(xs)))
	}

	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) {
		return nil, errors.InsufficientData(fmt.Sprintf(
			"%q or %q has no variance", xColumn, yColumn))
	}
	intercept, slope := stat.LinearRegression(xs, ys, nil, false)

	c := &Correlation{
		X:         xColumn,
		Y:         yColumn,
		Pairs:     len(xs),
		R:         r,
		Strength:  StrengthOf(r),
		MeanX:     stat.Mean(xs, nil),
		MeanY:     stat.Mean(ys, nil),
		Slope:     slope,
		Intercept: intercept,
	}
	c.Summary = describeCorrelation(r, c.Strength)
	return c, nil
}

func describeCorrelation(r float64, s Strength) string {
	switch s {
	case StrengthWeak:
		return fmt.Sprintf("Weak correlation (%.2f): No strong linear relationship.", r)
	case StrengthModerate:
		return fmt.Sprintf("Moderate correlation (%.2f): Partial linear relationship.", r)
	default:
		return fmt.Sprintf("Strong correlation (%.2f): Significant linear relationship.", r)
	}
}
