package analysis

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"spckit/domain/table"
	"spckit/internal/errors"
)

// ControlLimits are the 3-sigma X-bar limits of a series. Sigma is the
// sample standard deviation; the limits sit three standard errors
// (Sigma/sqrt(N)) from the mean.
type ControlLimits struct {
	Mean       float64 `json:"mean"`
	UpperLimit float64 `json:"upper_limit"`
	LowerLimit float64 `json:"lower_limit"`
	Sigma      float64 `json:"sigma"`
	N          int     `json:"n"`
}

// ControlPoint is one classified observation.
type ControlPoint struct {
	Index        int     `json:"index"`
	Value        float64 `json:"value"`
	OutOfControl bool    `json:"out_of_control"`
}

// ControlChart bundles limits and classified points for a column.
type ControlChart struct {
	Variable string         `json:"variable"`
	Limits   ControlLimits  `json:"limits"`
	Points   []ControlPoint `json:"points"`
	Summary  []string       `json:"summary"`
}

// OutOfControlCount returns the number of points outside the limits.
func (c *ControlChart) OutOfControlCount() int {
	return countOutOfControl(c.Points)
}

// ComputeLimits computes X-bar control limits over present values.
func ComputeLimits(values []float64) (ControlLimits, error) {
	n := len(values)
	if n < 2 {
		return ControlLimits{}, errors.InsufficientData(fmt.Sprintf(
			"control limits need at least 2 values, got %d", n))
	}

	mean, err := stats.Mean(values)
	if err != nil {
		return ControlLimits{}, errors.Wrap(err, "mean")
	}
	sigma, err := stats.StandardDeviationSample(values)
	if err != nil {
		return ControlLimits{}, errors.Wrap(err, "standard deviation")
	}

	se := sigma / math.Sqrt(float64(n))
	if !finite(mean, mean+3*se, mean-3*se) {
		return ControlLimits{}, errors.New(errors.CodeOutOfRangeResult,
			"control limits overflow the float64 range")
	}
	return ControlLimits{
		Mean:       mean,
		UpperLimit: mean + 3*se,
		LowerLimit: mean - 3*se,
		Sigma:      sigma,
		N:          n,
	}, nil
}

// Classify marks each observation out of control when it lies strictly
// outside the limits; points on a limit are in control.
func Classify(obs []table.Observation, limits ControlLimits) []ControlPoint {
	points := make([]ControlPoint, len(obs))
	for i, o := range obs {
		points[i] = ControlPoint{
			Index:        o.Row,
			Value:        o.Value,
			OutOfControl: o.Value > limits.UpperLimit || o.Value < limits.LowerLimit,
		}
	}
	return points
}

// InterpretControl renders the textual summary of a control chart.
func InterpretControl(variable string, limits ControlLimits, points []ControlPoint) []string {
	out := countOutOfControl(points)
	lines := []string{
		fmt.Sprintf("Quality Control Analysis for %s:", variable),
		fmt.Sprintf("Mean: %.2f", limits.Mean),
		fmt.Sprintf("Upper Control Limit: %.2f", limits.UpperLimit),
		fmt.Sprintf("Lower Control Limit: %.2f", limits.LowerLimit),
		fmt.Sprintf("Number of out-of-control samples: %d", out),
	}
	if out > 0 {
		lines = append(lines, "ALERT: There are samples outside the control limits")
	}
	return lines
}

// AnalyzeControl runs the full X-bar analysis over a numeric column.
// Missing cells are neither used for the limits nor classified.
func AnalyzeControl(t *table.Table, column string) (*ControlChart, error) {
	col, err := t.NumericColumn(column)
	if err != nil {
		return nil, err
	}
	obs := col.Observations()
	values := make([]float64, len(obs))
	for i, o := range obs {
		values[i] = o.Value
	}

	limits, err := ComputeLimits(values)
	if err != nil {
		return nil, errors.Wrapf(err, "control chart for %q", column)
	}
	points := Classify(obs, limits)
	return &ControlChart{
		Variable: column,
		Limits:   limits,
		Points:   points,
		Summary:  InterpretControl(column, limits, points),
	}, nil
}

func countOutOfControl(points []ControlPoint) int {
	n := 0
	for _, p := range points {
		if p.OutOfControl {
			n++
		}
	}
	return n
}
