package analysis

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// minShapeValues is the smallest sample for which kurtosis is defined.
const minShapeValues = 4

// Shape describes the form of a distribution: bias-corrected skewness and
// excess kurtosis, quartiles with IQR outliers, and a Jarque-Bera test.
type Shape struct {
	Skewness   float64 `json:"skewness"`
	Kurtosis   float64 `json:"excess_kurtosis"`
	Q1         float64 `json:"q1"`
	Q3         float64 `json:"q3"`
	Outliers   int     `json:"outliers"`
	JarqueBera float64 `json:"jarque_bera"`
	NormalP    float64 `json:"normal_p"`
	Symmetry   string  `json:"symmetry"`
}

// DescribeShape returns false for fewer than four values or a constant
// series, where the moments are undefined.
func DescribeShape(values []float64) (*Shape, bool) {
	n := float64(len(values))
	if len(values) < minShapeValues {
		return nil, false
	}
	mean, err := stats.Mean(values)
	if err != nil {
		return nil, false
	}
	var m2, m3, m4 float64
	for _, x := range values {
		d := x - mean
		m2 += d * d
		m3 += d * d * d
		m4 += d * d * d * d
	}
	m2, m3, m4 = m2/n, m3/n, m4/n
	if m2 == 0 {
		return nil, false
	}

	g1 := m3 / math.Pow(m2, 1.5)
	g2 := m4/(m2*m2) - 3
	quartiles, err := stats.Quartile(values)
	if err != nil {
		return nil, false
	}

	jb := n / 6 * (g1*g1 + g2*g2/4)
	s := &Shape{
		Skewness:   g1 * math.Sqrt(n*(n-1)) / (n - 2),
		Kurtosis:   (n - 1) / ((n - 2) * (n - 3)) * ((n+1)*g2 + 6),
		Q1:         quartiles.Q1,
		Q3:         quartiles.Q3,
		Outliers:   countIQROutliers(values, quartiles.Q1, quartiles.Q3),
		JarqueBera: jb,
		NormalP:    1 - distuv.ChiSquared{K: 2}.CDF(jb),
	}
	switch {
	case s.Skewness >= 0.5:
		s.Symmetry = "right-skewed"
	case s.Skewness <= -0.5:
		s.Symmetry = "left-skewed"
	default:
		s.Symmetry = "approximately symmetric"
	}
	return s, true
}

func countIQROutliers(values []float64, q1, q3 float64) int {
	iqr := q3 - q1
	lo, hi := q1-1.5*iqr, q3+1.5*iqr
	n := 0
	for _, x := range values {
		if x < lo || x > hi {
			n++
		}
	}
	return n
}

// Note renders the shape as one interpretation line.
func (s *Shape) Note() string {
	return fmt.Sprintf("Shape: %s (skewness %.2f, excess kurtosis %.2f), %d values outside the 1.5 IQR fences, Jarque-Bera p = %.3f.",
		s.Symmetry, s.Skewness, s.Kurtosis, s.Outliers, s.NormalP)
}
