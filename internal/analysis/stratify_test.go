package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spckit/domain/table"
	"spckit/internal/errors"
)

func TestStratify_Scenario(t *testing.T) {
	tbl, err := table.New(
		table.Column{Name: "group", Kind: table.KindCategorical, Cells: table.Strings("X", "Y", "X", "Y", "X")},
		table.Column{Name: "value", Kind: table.KindNumeric, Cells: table.Numbers(1, 10, 2, 20, 3)},
	)
	require.NoError(t, err)

	s, err := Stratify(tbl, "group", "value")
	require.NoError(t, err)
	require.Len(t, s.Groups, 2)

	x, ok := s.Group("X")
	require.True(t, ok)
	assert.Equal(t, 3, x.Count)
	assert.Equal(t, 2.0, x.Mean)
	assert.Equal(t, 2.0, x.Median)
	assert.Equal(t, 1.0, x.Min)
	assert.Equal(t, 3.0, x.Max)
	assert.InDelta(t, 1.0, x.Std, 1e-12)

	y, ok := s.Group("Y")
	require.True(t, ok)
	assert.Equal(t, 2, y.Count)
	assert.Equal(t, 15.0, y.Mean)

	assert.Equal(t, "Y", s.DominantByMean())
	assert.Equal(t, "X", s.DominantByCount())
	assert.Equal(t, 5, s.TotalCount())
}

func TestStratify_CountInvariantWithMissing(t *testing.T) {
	tbl, err := table.New(
		table.Column{Name: "shift", Kind: table.KindCategorical, Cells: table.Strings("day", "", "night", "day", "swing", "")},
		table.Column{Name: "scrap", Kind: table.KindNumeric, Cells: []table.Cell{
			table.Number(1.234), table.Number(2), table.Missing(), table.Number(4.5), table.Missing(), table.Number(6),
		}},
	)
	require.NoError(t, err)

	s, err := Stratify(tbl, "shift", "scrap")
	require.NoError(t, err)

	col, _ := tbl.Column("scrap")
	present, _ := col.Floats()
	assert.Equal(t, len(present), s.TotalCount())

	keys := make([]string, len(s.Groups))
	for i, g := range s.Groups {
		keys[i] = g.Key
	}
	assert.Equal(t, []string{"day", MissingGroupKey}, keys)
	assert.Equal(t, []string{"night", "swing"}, s.EmptyGroups)

	miss, _ := s.Group(MissingGroupKey)
	assert.Equal(t, 2, miss.Count)
	assert.Equal(t, 4.0, miss.Mean)
}

func TestStratify_RoundedKeepsRawValues(t *testing.T) {
	tbl, err := table.New(
		table.Column{Name: "g", Kind: table.KindCategorical, Cells: table.Strings("a", "a", "a")},
		table.Column{Name: "v", Kind: table.KindNumeric, Cells: table.Numbers(1, 2, 2)},
	)
	require.NoError(t, err)

	s, err := Stratify(tbl, "g", "v")
	require.NoError(t, err)

	raw := s.Groups[0]
	rounded := s.Rounded()[0]
	assert.InDelta(t, 5.0/3.0, raw.Mean, 1e-12)
	assert.Equal(t, 1.67, rounded.Mean)
	assert.Equal(t, 0.58, rounded.Std)
	// the summary itself is not rounded in place
	assert.InDelta(t, 5.0/3.0, s.Groups[0].Mean, 1e-12)
}

func TestStratify_SingleValueGroupHasZeroStd(t *testing.T) {
	tbl, _ := table.New(
		table.Column{Name: "g", Kind: table.KindCategorical, Cells: table.Strings("only")},
		table.Column{Name: "v", Kind: table.KindNumeric, Cells: table.Numbers(7)},
	)
	s, err := Stratify(tbl, "g", "v")
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.Groups[0].Std)
}

func TestStratify_DominantTiesKeepFirstGroup(t *testing.T) {
	tbl, _ := table.New(
		table.Column{Name: "g", Kind: table.KindCategorical, Cells: table.Strings("b", "a", "b", "a")},
		table.Column{Name: "v", Kind: table.KindNumeric, Cells: table.Numbers(1, 3, 3, 1)},
	)
	s, err := Stratify(tbl, "g", "v")
	require.NoError(t, err)
	assert.Equal(t, "b", s.DominantByCount())
	assert.Equal(t, "b", s.DominantByMean())
}

func TestStratify_Errors(t *testing.T) {
	tbl, _ := table.New(
		table.Column{Name: "g", Kind: table.KindCategorical, Cells: table.Strings("a", "b")},
		table.Column{Name: "v", Kind: table.KindNumeric, Cells: []table.Cell{table.Missing(), table.Missing()}},
	)

	_, err := Stratify(tbl, "g", "v")
	assert.True(t, errors.HasCode(err, errors.CodeEmptySeries))

	_, err = Stratify(tbl, "ghost", "v")
	assert.True(t, errors.HasCode(err, errors.CodeUnknownColumn))

	_, err = Stratify(tbl, "v", "g")
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))

	var empty StratumSummary
	assert.Equal(t, "", empty.DominantByMean())
}
