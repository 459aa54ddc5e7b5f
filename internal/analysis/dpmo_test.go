package analysis

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spckit/internal/errors"
)

func TestCalculateDPMO_Scenario(t *testing.T) {
	res, err := CalculateDPMO(3, 100, 5)
	require.NoError(t, err)

	assert.Equal(t, 6000.0, res.DPMO)
	assert.InDelta(t, 0.994, res.Yield, 1e-12)
	// z(0.994) ~ 2.5121
	assert.InDelta(t, 4.0121, res.SigmaLevel, 1e-3)
	assert.Equal(t, TierGood, res.Tier)
}

func TestCalculateDPMO_ZeroDefects(t *testing.T) {
	res, err := CalculateDPMO(0, 250, 4)
	require.NoError(t, err)

	assert.Equal(t, 0.0, res.DPMO)
	assert.Equal(t, 1.0, res.Yield)
	// the normal quantile saturates at +Inf for a yield of exactly 1
	assert.True(t, math.IsInf(res.SigmaLevel, 1))
	assert.Equal(t, TierSixSigma, res.Tier)
}

func TestCalculateDPMO_AllDefective(t *testing.T) {
	res, err := CalculateDPMO(500, 100, 5)
	require.NoError(t, err)

	assert.Equal(t, 1_000_000.0, res.DPMO)
	assert.Equal(t, 0.0, res.Yield)
	assert.True(t, math.IsInf(res.SigmaLevel, -1))
	assert.Equal(t, TierOutOfRange, res.Tier)

	_, err = res.Tier.Interpretation()
	assert.True(t, errors.HasCode(err, errors.CodeOutOfRangeResult))
}

func TestCalculateDPMO_InvalidInput(t *testing.T) {
	testCases := []struct {
		name                          string
		defects, units, opportunities int64
		code                          string
	}{
		{"zero units", 1, 0, 5, errors.CodeInvalidInput},
		{"negative units", 1, -3, 5, errors.CodeInvalidInput},
		{"zero opportunities", 1, 10, 0, errors.CodeInvalidInput},
		{"negative defects", -1, 10, 1, errors.CodeInvalidInput},
		{"defects exceed opportunities", 51, 10, 5, errors.CodeDefectsExceedOpportunities},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CalculateDPMO(tc.defects, tc.units, tc.opportunities)
			assert.True(t, errors.HasCode(err, tc.code), "got %v", err)
		})
	}
}

func TestTierFor_Buckets(t *testing.T) {
	testCases := []struct {
		sigma float64
		tier  Tier
	}{
		{0, TierCritical},
		{1.99, TierCritical},
		{2, TierPoor},
		{2.999, TierPoor},
		{3, TierAcceptable},
		{4, TierGood},
		{5, TierExcellent},
		{5.9999, TierExcellent},
		{6, TierSixSigma},
		{math.Inf(1), TierSixSigma},
		{-0.01, TierOutOfRange},
		{math.Inf(-1), TierOutOfRange},
		{math.NaN(), TierOutOfRange},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.tier, TierFor(tc.sigma), "sigma %v", tc.sigma)
	}
}

func TestTier_Interpretation(t *testing.T) {
	text, err := TierExcellent.Interpretation()
	require.NoError(t, err)
	assert.Equal(t, "Excellent Level: World-class process", text)
}

func TestSigmaReferenceTable_Ordered(t *testing.T) {
	ref := SigmaReferenceTable()
	require.Len(t, ref, 5)
	for i := 1; i < len(ref); i++ {
		assert.Less(t, ref[i].DPMO, ref[i-1].DPMO)
		assert.Greater(t, ref[i].Performance, ref[i-1].Performance)
	}
}

func TestDpmoResult_MarshalJSON(t *testing.T) {
	res, err := CalculateDPMO(0, 10, 1)
	require.NoError(t, err)

	b, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"defects":0,"units":10,"opportunities":1,"dpmo":0,"yield":1,
		"sigma_level":null,"sigma_display":"+Inf","tier":"six_sigma"}`, string(b))

	res, err = CalculateDPMO(3, 100, 5)
	require.NoError(t, err)
	b, err = json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"sigma_display":"4.01"`)
	assert.NotContains(t, string(b), `"sigma_level":null`)
}
