package analysis

import (
	"fmt"
	"sort"

	"spckit/domain/table"
	"spckit/internal/errors"
)

// DefaultCriticalThreshold is the cumulative percentage bounding the
// "vital few" categories of a Pareto analysis.
const DefaultCriticalThreshold = 80.0

// ParetoRow is one ranked category of a Pareto analysis.
type ParetoRow struct {
	Category      string  `json:"category"`
	Value         float64 `json:"value"`
	IndividualPct float64 `json:"individual_pct"`
	CumulativePct float64 `json:"cumulative_pct"`
}

// Pareto is the result of aggregating a categorical column.
type Pareto struct {
	CategoryColumn string      `json:"category_column"`
	ValueColumn    string      `json:"value_column,omitempty"`
	Total          float64     `json:"total"`
	Rows           []ParetoRow `json:"rows"`
}

// AggregatePareto groups t by categoryColumn and ranks the groups. With an
// empty valueColumn each group's value is its row frequency, otherwise the
// sum of valueColumn over the group.
//
// Rows with a missing category are skipped, as are missing weights. Ties in
// value keep the order in which categories were first encountered.
// IndividualPct is rounded to two decimals; CumulativePct is the sum of the
// rounded IndividualPct values so far, so the last row may miss 100 by a
// few hundredths.
func AggregatePareto(t *table.Table, categoryColumn, valueColumn string) (*Pareto, error) {
	cat, err := t.Column(categoryColumn)
	if err != nil {
		return nil, err
	}
	var weights *table.Column
	if valueColumn != "" {
		w, err := t.NumericColumn(valueColumn)
		if err != nil {
			return nil, err
		}
		weights = &w
	}
	if t.RowCount() == 0 {
		return nil, errors.EmptyTable("table has no rows")
	}

	order := make([]string, 0)
	totals := make(map[string]float64)
	for i := 0; i < t.RowCount(); i++ {
		key, ok := cat.Key(i)
		if !ok {
			continue
		}
		if _, seen := totals[key]; !seen {
			order = append(order, key)
			totals[key] = 0
		}
		if weights == nil {
			totals[key]++
			continue
		}
		if cell := weights.Cells[i]; !cell.Missing {
			totals[key] += cell.Num
		}
	}
	if len(order) == 0 {
		return nil, errors.EmptySeries(categoryColumn)
	}

	grand := 0.0
	for _, key := range order {
		if totals[key] < 0 {
			return nil, errors.InvalidInput(fmt.Sprintf(
				"category %q has a negative total %g", key, totals[key]))
		}
		grand += totals[key]
	}
	if grand == 0 {
		return nil, errors.InsufficientData(fmt.Sprintf(
			"total of %q over %q is zero", valueColumn, categoryColumn))
	}

	rows := make([]ParetoRow, len(order))
	for i, key := range order {
		rows[i] = ParetoRow{Category: key, Value: totals[key]}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Value > rows[j].Value
	})

	// Cumulative shares add up the rounded individual shares.
	running := 0.0
	for i := range rows {
		rows[i].IndividualPct = round2(rows[i].Value / grand * 100)
		running += rows[i].IndividualPct
		rows[i].CumulativePct = round2(running)
	}

	return &Pareto{
		CategoryColumn: categoryColumn,
		ValueColumn:    valueColumn,
		Total:          grand,
		Rows:           rows,
	}, nil
}

// CriticalPrefix returns the leading rows whose cumulative percentage is at
// most threshold. The row that crosses the threshold is not included, so a
// first category above the threshold yields an empty prefix.
func CriticalPrefix(rows []ParetoRow, threshold float64) []ParetoRow {
	n := 0
	for n < len(rows) && rows[n].CumulativePct <= threshold {
		n++
	}
	out := make([]ParetoRow, n)
	copy(out, rows[:n])
	return out
}

// Critical returns the critical prefix at threshold.
func (p *Pareto) Critical(threshold float64) []ParetoRow {
	return CriticalPrefix(p.Rows, threshold)
}
