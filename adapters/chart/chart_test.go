package chart

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spckit/domain/table"
	"spckit/internal/analysis"
	"spckit/internal/errors"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func sampleTable(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.New(
		table.Column{Name: "defect_type", Kind: table.KindCategorical, Cells: table.Strings("dent", "scratch", "dent", "crack", "dent", "scratch")},
		table.Column{Name: "line", Kind: table.KindCategorical, Cells: table.Strings("L1", "L1", "L2", "L2", "L3", "L3")},
		table.Column{Name: "weight", Kind: table.KindNumeric, Cells: table.Numbers(10.1, 9.8, 10.4, 10.0, 9.9, 14.0)},
	)
	require.NoError(t, err)
	return tbl
}

func assertPNG(t *testing.T, buf *bytes.Buffer) {
	t.Helper()
	require.Greater(t, buf.Len(), len(pngMagic))
	assert.Equal(t, pngMagic, buf.Bytes()[:len(pngMagic)])
}

func TestRenderers(t *testing.T) {
	tbl := sampleTable(t)

	pareto, err := analysis.AggregatePareto(tbl, "defect_type", "")
	require.NoError(t, err)
	control, err := analysis.AnalyzeControl(tbl, "weight")
	require.NoError(t, err)
	hist, err := analysis.AnalyzeHistogram(tbl, "weight", 0)
	require.NoError(t, err)
	strata, err := analysis.Stratify(tbl, "line", "weight")
	require.NoError(t, err)
	dpmo, err := analysis.CalculateDPMO(12, 1000, 5)
	require.NoError(t, err)

	testCases := []struct {
		name   string
		render func(*bytes.Buffer) error
	}{
		{"pareto", func(b *bytes.Buffer) error { return Pareto(b, pareto, analysis.DefaultCriticalThreshold) }},
		{"control", func(b *bytes.Buffer) error { return Control(b, control) }},
		{"histogram", func(b *bytes.Buffer) error { return Histogram(b, hist) }},
		{"stratification", func(b *bytes.Buffer) error { return Stratification(b, strata) }},
		{"dpmo", func(b *bytes.Buffer) error { return DPMO(b, dpmo) }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, tc.render(&buf))
			assertPNG(t, &buf)
		})
	}
}

func TestControl_ConstantSeries(t *testing.T) {
	tbl, err := table.New(table.Column{Name: "x", Kind: table.KindNumeric, Cells: table.Numbers(5, 5, 5)})
	require.NoError(t, err)
	control, err := analysis.AnalyzeControl(tbl, "x")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Control(&buf, control))
	assertPNG(t, &buf)
}

func TestEmptyInputs(t *testing.T) {
	var buf bytes.Buffer
	err := Pareto(&buf, &analysis.Pareto{CategoryColumn: "c"}, 80)
	assert.True(t, errors.HasCode(err, errors.CodeEmptyTable))

	err = Histogram(&buf, &analysis.Histogram{Variable: "x"})
	assert.True(t, errors.HasCode(err, errors.CodeEmptySeries))

	err = Stratification(&buf, &analysis.StratumSummary{NumericColumn: "x"})
	assert.True(t, errors.HasCode(err, errors.CodeEmptySeries))
	assert.Zero(t, buf.Len())
}

func TestValueRange(t *testing.T) {
	r := valueRange(true, 0, 0)
	assert.Equal(t, 0.0, r.Min)
	assert.Equal(t, 1.0, r.Max)

	r = valueRange(false, 5, 5)
	assert.Equal(t, 4.0, r.Min)
	assert.Equal(t, 6.0, r.Max)

	r = valueRange(true, 10, 20)
	assert.Equal(t, 0.0, r.Min)
	assert.Equal(t, 22.0, r.Max)
}
