package analysis

import (
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"spckit/internal/errors"
)

// SigmaShift is the conventional long-term to short-term shift added to
// the normal quantile of the process yield.
const SigmaShift = 1.5

// Tier is the qualitative performance bucket of a sigma level.
type Tier string

const (
	TierCritical   Tier = "critical"
	TierPoor       Tier = "poor"
	TierAcceptable Tier = "acceptable"
	TierGood       Tier = "good"
	TierExcellent  Tier = "excellent"
	TierSixSigma   Tier = "six_sigma"
	TierOutOfRange Tier = "out_of_range"
)

var tierText = map[Tier]string{
	TierCritical:   "Critical Level: High variability and many defects",
	TierPoor:       "Poor Level: Significant improvements needed",
	TierAcceptable: "Acceptable Level: Medium quality process",
	TierGood:       "Good Level: High-quality process",
	TierExcellent:  "Excellent Level: World-class process",
	TierSixSigma:   "Six Sigma Level: Near-perfect process",
}

// Interpretation returns the tier's text, or OUT_OF_RANGE_RESULT.
func (t Tier) Interpretation() (string, error) {
	text, ok := tierText[t]
	if !ok {
		return "", errors.New(errors.CodeOutOfRangeResult, "sigma level is outside every performance tier")
	}
	return text, nil
}

// TierFor buckets a sigma level into half-open ranges [0,2), [2,3), [3,4),
// [4,5), [5,6) and [6,+Inf]. A +Inf level (zero defects) is six sigma;
// negative levels and NaN are out of range.
func TierFor(sigma float64) Tier {
	switch {
	case math.IsNaN(sigma) || sigma < 0:
		return TierOutOfRange
	case sigma < 2:
		return TierCritical
	case sigma < 3:
		return TierPoor
	case sigma < 4:
		return TierAcceptable
	case sigma < 5:
		return TierGood
	case sigma < 6:
		return TierExcellent
	default:
		return TierSixSigma
	}
}

// DpmoResult is the outcome of a DPMO calculation.
type DpmoResult struct {
	Defects       int64   `json:"defects"`
	Units         int64   `json:"units"`
	Opportunities int64   `json:"opportunities"`
	DPMO          float64 `json:"dpmo"`
	Yield         float64 `json:"yield"`
	SigmaLevel    float64 `json:"sigma_level"`
	Tier          Tier    `json:"tier"`
}

// CalculateDPMO converts defect counts into DPMO, yield and sigma level.
func CalculateDPMO(defects, units, opportunities int64) (*DpmoResult, error) {
	if units <= 0 || opportunities <= 0 {
		return nil, errors.InvalidInput("units and opportunities must be greater than zero")
	}
	if defects < 0 {
		return nil, errors.InvalidInput("defects must not be negative")
	}
	total := float64(units) * float64(opportunities)
	if float64(defects) > total {
		return nil, errors.New(errors.CodeDefectsExceedOpportunities, fmt.Sprintf(
			"%d defects exceed %d units x %d opportunities", defects, units, opportunities))
	}

	dpmo := float64(defects) * 1_000_000 / total
	yield := 1 - dpmo/1_000_000
	// guard the quantile's [0,1] domain against rounding
	yield = math.Max(0, math.Min(1, yield))
	sigma := distuv.UnitNormal.Quantile(yield) + SigmaShift

	return &DpmoResult{
		Defects:       defects,
		Units:         units,
		Opportunities: opportunities,
		DPMO:          dpmo,
		Yield:         yield,
		SigmaLevel:    sigma,
		Tier:          TierFor(sigma),
	}, nil
}

// MarshalJSON writes an infinite sigma level as null; sigma_display always
// carries the printable value.
func (r DpmoResult) MarshalJSON() ([]byte, error) {
	type plain DpmoResult
	out := struct {
		plain
		SigmaLevel   *float64 `json:"sigma_level"`
		SigmaDisplay string   `json:"sigma_display"`
	}{plain: plain(r), SigmaDisplay: FormatSigma(r.SigmaLevel)}
	if !math.IsInf(r.SigmaLevel, 0) && !math.IsNaN(r.SigmaLevel) {
		sigma := r.SigmaLevel
		out.SigmaLevel = &sigma
	}
	return json.Marshal(out)
}

// FormatSigma prints a sigma level with two decimals, or +Inf / -Inf.
func FormatSigma(sigma float64) string {
	switch {
	case math.IsInf(sigma, 1):
		return "+Inf"
	case math.IsInf(sigma, -1):
		return "-Inf"
	default:
		return fmt.Sprintf("%.2f", sigma)
	}
}

// SigmaReference is one row of the standard sigma conversion table.
type SigmaReference struct {
	Label       string  `json:"label"`
	Sigma       float64 `json:"sigma"`
	DPMO        float64 `json:"dpmo"`
	Performance float64 `json:"performance_pct"`
}

// SigmaReferenceTable lists the textbook DPMO for 2 to 6 sigma.
func SigmaReferenceTable() []SigmaReference {
	return []SigmaReference{
		{Label: "2σ", Sigma: 2, DPMO: 308537, Performance: 69.2},
		{Label: "3σ", Sigma: 3, DPMO: 66807, Performance: 93.3},
		{Label: "4σ", Sigma: 4, DPMO: 6210, Performance: 99.38},
		{Label: "5σ", Sigma: 5, DPMO: 233, Performance: 99.977},
		{Label: "6σ", Sigma: 6, DPMO: 3.4, Performance: 99.9997},
	}
}
