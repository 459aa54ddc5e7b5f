package table

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"spckit/internal/errors"
)

// Kind is the storage kind of a column, resolved once at ingestion.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
	KindDate        Kind = "date"
	KindText        Kind = "text"
)

// Cell holds one value of a column. Only the field matching the column
// kind is meaningful; Missing marks an absent value.
type Cell struct {
	Num     float64   `json:"num,omitempty"`
	Str     string    `json:"str,omitempty"`
	Time    time.Time `json:"time,omitempty"`
	Missing bool      `json:"missing,omitempty"`
}

// Number returns a present numeric cell. NaN and infinities are missing.
func Number(v float64) Cell {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Missing()
	}
	return Cell{Num: v}
}

// String returns a present string cell. An empty string is missing.
func String(s string) Cell {
	if s == "" {
		return Missing()
	}
	return Cell{Str: s}
}

// Date returns a present date cell.
func Date(t time.Time) Cell {
	if t.IsZero() {
		return Missing()
	}
	return Cell{Time: t}
}

// Missing returns the missing marker.
func Missing() Cell {
	return Cell{Missing: true}
}

// Numbers builds numeric cells; non-finite entries become missing.
func Numbers(values ...float64) []Cell {
	cells := make([]Cell, len(values))
	for i, v := range values {
		cells[i] = Number(v)
	}
	return cells
}

// Strings builds string cells; empty entries become missing.
func Strings(values ...string) []Cell {
	cells := make([]Cell, len(values))
	for i, v := range values {
		cells[i] = String(v)
	}
	return cells
}

// ColumnInfo describes a column without its values.
type ColumnInfo struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

// Column is a named, typed, ordered sequence of cells.
type Column struct {
	Name  string
	Kind  Kind
	Cells []Cell
}

// Info returns the column descriptor.
func (c Column) Info() ColumnInfo {
	return ColumnInfo{Name: c.Name, Kind: c.Kind}
}

// Key returns the grouping key of row i, and false when the cell is missing.
func (c Column) Key(i int) (string, bool) {
	cell := c.Cells[i]
	if cell.Missing {
		return "", false
	}
	switch c.Kind {
	case KindNumeric:
		return strconv.FormatFloat(cell.Num, 'f', -1, 64), true
	case KindDate:
		return cell.Time.Format("2006-01-02"), true
	default:
		return cell.Str, true
	}
}

// Observation is a present numeric value together with its row index.
type Observation struct {
	Row   int     `json:"row"`
	Value float64 `json:"value"`
}

// Observations returns the present values of a numeric column in row order.
func (c Column) Observations() []Observation {
	obs := make([]Observation, 0, len(c.Cells))
	for i, cell := range c.Cells {
		if cell.Missing {
			continue
		}
		obs = append(obs, Observation{Row: i, Value: cell.Num})
	}
	return obs
}

// Floats returns the present numeric values and the number of missing cells.
func (c Column) Floats() ([]float64, int) {
	return PresentFloats(c.Cells)
}

// PresentFloats splits cells into present numeric values and a missing count.
func PresentFloats(cells []Cell) ([]float64, int) {
	values := make([]float64, 0, len(cells))
	missing := 0
	for _, cell := range cells {
		if cell.Missing {
			missing++
			continue
		}
		values = append(values, cell.Num)
	}
	return values, missing
}

// MissingCount returns the number of missing cells.
func (c Column) MissingCount() int {
	n := 0
	for _, cell := range c.Cells {
		if cell.Missing {
			n++
		}
	}
	return n
}

// Table is an immutable, column-oriented snapshot of an uploaded dataset.
// All columns have the same length and names are unique.
type Table struct {
	columns []Column
	index   map[string]int
	rows    int
}

// New validates and builds a table. Cell slices are copied.
func New(columns ...Column) (*Table, error) {
	t := &Table{
		columns: make([]Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, col := range columns {
		if col.Name == "" {
			return nil, errors.InvalidInput(fmt.Sprintf("column %d has no name", i))
		}
		if _, dup := t.index[col.Name]; dup {
			return nil, errors.InvalidInput(fmt.Sprintf("duplicate column name %q", col.Name))
		}
		switch col.Kind {
		case KindNumeric, KindCategorical, KindDate, KindText:
		default:
			return nil, errors.InvalidInput(fmt.Sprintf("column %q has unknown kind %q", col.Name, col.Kind))
		}
		if i == 0 {
			t.rows = len(col.Cells)
		} else if len(col.Cells) != t.rows {
			return nil, errors.InvalidInput(fmt.Sprintf(
				"column %q has %d rows, expected %d", col.Name, len(col.Cells), t.rows))
		}
		cells := make([]Cell, len(col.Cells))
		copy(cells, col.Cells)
		t.index[col.Name] = len(t.columns)
		t.columns = append(t.columns, Column{Name: col.Name, Kind: col.Kind, Cells: cells})
	}
	return t, nil
}

// Columns returns the column descriptors in table order.
func (t *Table) Columns() []ColumnInfo {
	infos := make([]ColumnInfo, len(t.columns))
	for i, col := range t.columns {
		infos[i] = col.Info()
	}
	return infos
}

// NumericColumns returns the names of numeric columns in table order.
func (t *Table) NumericColumns() []string {
	return t.namesOfKind(KindNumeric)
}

// CategoricalColumns returns the names of categorical columns in table order.
func (t *Table) CategoricalColumns() []string {
	return t.namesOfKind(KindCategorical)
}

func (t *Table) namesOfKind(kind Kind) []string {
	names := make([]string, 0, len(t.columns))
	for _, col := range t.columns {
		if col.Kind == kind {
			names = append(names, col.Name)
		}
	}
	return names
}

// Column returns a copy of the named column.
func (t *Table) Column(name string) (Column, error) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, errors.UnknownColumn(name)
	}
	src := t.columns[i]
	cells := make([]Cell, len(src.Cells))
	copy(cells, src.Cells)
	return Column{Name: src.Name, Kind: src.Kind, Cells: cells}, nil
}

// NumericColumn returns the named column, failing unless it is numeric.
func (t *Table) NumericColumn(name string) (Column, error) {
	col, err := t.Column(name)
	if err != nil {
		return Column{}, err
	}
	if col.Kind != KindNumeric {
		return Column{}, errors.InvalidInput(fmt.Sprintf("column %q is %s, not numeric", name, col.Kind))
	}
	return col, nil
}

// Has reports whether the table has a column with this name.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int {
	return t.rows
}

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int {
	return len(t.columns)
}
