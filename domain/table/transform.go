package table

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"

	"spckit/internal/errors"
)

// FillStrategy selects the replacement value for missing numeric cells.
type FillStrategy string

const (
	FillMean   FillStrategy = "mean"
	FillMedian FillStrategy = "median"
)

// DropMissingRows returns a table without any row that has a missing cell
// in one of the given columns, or in any column when none are given.
func (t *Table) DropMissingRows(columns ...string) (*Table, error) {
	checked := make([]int, 0, len(t.columns))
	if len(columns) == 0 {
		for i := range t.columns {
			checked = append(checked, i)
		}
	}
	for _, name := range columns {
		i, ok := t.index[name]
		if !ok {
			return nil, errors.UnknownColumn(name)
		}
		checked = append(checked, i)
	}

	keep := make([]int, 0, t.rows)
	for r := 0; r < t.rows; r++ {
		complete := true
		for _, c := range checked {
			if t.columns[c].Cells[r].Missing {
				complete = false
				break
			}
		}
		if complete {
			keep = append(keep, r)
		}
	}

	out := make([]Column, len(t.columns))
	for i, col := range t.columns {
		cells := make([]Cell, len(keep))
		for j, r := range keep {
			cells[j] = col.Cells[r]
		}
		out[i] = Column{Name: col.Name, Kind: col.Kind, Cells: cells}
	}
	return New(out...)
}

// FillMissing replaces missing cells of every numeric column with that
// column's mean or median. Columns without any value are left untouched.
func (t *Table) FillMissing(strategy FillStrategy) (*Table, error) {
	out := make([]Column, len(t.columns))
	for i, col := range t.columns {
		out[i] = col
		if col.Kind != KindNumeric {
			continue
		}
		values, missing := col.Floats()
		if missing == 0 || len(values) == 0 {
			continue
		}

		var fill float64
		var err error
		switch strategy {
		case FillMean:
			fill, err = stats.Mean(values)
		case FillMedian:
			fill, err = stats.Median(values)
		default:
			return nil, errors.InvalidInput(fmt.Sprintf("unknown fill strategy %q", strategy))
		}
		if err != nil {
			return nil, errors.Wrapf(err, "compute %s of %q", strategy, col.Name)
		}

		cells := make([]Cell, len(col.Cells))
		for j, cell := range col.Cells {
			if cell.Missing {
				cell = Number(fill)
			}
			cells[j] = cell
		}
		out[i] = Column{Name: col.Name, Kind: col.Kind, Cells: cells}
	}
	return New(out...)
}

// Convert returns a table in which the named column has been re-typed.
// Values that cannot be represented in the target kind become missing.
func (t *Table) Convert(name string, kind Kind) (*Table, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, errors.UnknownColumn(name)
	}
	src := t.columns[i]

	cells := make([]Cell, len(src.Cells))
	switch kind {
	case KindNumeric:
		for r := range src.Cells {
			key, present := src.Key(r)
			if !present {
				cells[r] = Missing()
				continue
			}
			if src.Kind == KindNumeric {
				cells[r] = src.Cells[r]
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(key), 64)
			if err != nil {
				cells[r] = Missing()
				continue
			}
			cells[r] = Number(v)
		}
	case KindCategorical, KindText:
		for r := range src.Cells {
			key, present := src.Key(r)
			if !present {
				cells[r] = Missing()
				continue
			}
			cells[r] = String(key)
		}
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("cannot convert column %q to %s", name, kind))
	}

	out := make([]Column, len(t.columns))
	copy(out, t.columns)
	out[i] = Column{Name: src.Name, Kind: kind, Cells: cells}
	return New(out...)
}
