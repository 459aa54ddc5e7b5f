package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spckit/domain/table"
)

func TestProfileTable(t *testing.T) {
	tbl, err := table.New(
		table.Column{Name: "a", Kind: table.KindNumeric, Cells: table.Numbers(1, 2, 3)},
		table.Column{Name: "label", Kind: table.KindCategorical, Cells: table.Strings("x", "", "z")},
		table.Column{Name: "b", Kind: table.KindNumeric, Cells: []table.Cell{table.Missing(), table.Missing(), table.Missing()}},
		table.Column{Name: "c", Kind: table.KindNumeric, Cells: table.Numbers(10, 20, 60)},
	)
	require.NoError(t, err)

	for _, workers := range []int{0, 1, 4} {
		p, err := ProfileTable(context.Background(), tbl, workers)
		require.NoError(t, err)

		assert.Equal(t, 3, p.Rows)
		require.Len(t, p.Columns, 3)
		assert.Equal(t, "a", p.Columns[0].Column)
		assert.Equal(t, "b", p.Columns[1].Column)
		assert.Equal(t, "c", p.Columns[2].Column)

		require.NotNil(t, p.Columns[0].Summary)
		assert.Equal(t, 2.0, p.Columns[0].Summary.Mean)
		assert.Nil(t, p.Columns[1].Summary)
		assert.NotEmpty(t, p.Columns[1].Error)
		assert.Equal(t, 30.0, p.Columns[2].Summary.Mean)

		require.Len(t, p.Missing, 4)
		assert.Equal(t, 1, p.Missing[1].Missing)
		assert.Equal(t, 3, p.Missing[2].Missing)
	}
}

func TestProfileTable_Cancelled(t *testing.T) {
	tbl, _ := table.New(table.Column{Name: "a", Kind: table.KindNumeric, Cells: table.Numbers(1, 2)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ProfileTable(ctx, tbl, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
