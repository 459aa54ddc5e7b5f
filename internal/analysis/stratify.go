package analysis

import (
	"spckit/domain/table"
	"spckit/internal/errors"
)

// MissingGroupKey collects rows whose category is missing.
const MissingGroupKey = "(missing)"

// Stratum holds the statistics of one group.
type Stratum struct {
	Key    string  `json:"key"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Std    float64 `json:"std"`
}

// Rounded returns a copy rounded to two decimals for display.
func (s Stratum) Rounded() Stratum {
	return Stratum{
		Key:    s.Key,
		Count:  s.Count,
		Mean:   round2(s.Mean),
		Median: round2(s.Median),
		Min:    round2(s.Min),
		Max:    round2(s.Max),
		Std:    round2(s.Std),
	}
}

// StratumSummary is a numeric column split by a categorical column. Groups
// keep the order in which their key first appeared.
type StratumSummary struct {
	CategoryColumn string    `json:"category_column"`
	NumericColumn  string    `json:"numeric_column"`
	Groups         []Stratum `json:"groups"`
	// EmptyGroups have rows but no numeric value, hence no statistics.
	EmptyGroups []string `json:"empty_groups,omitempty"`
}

// Group returns the stratum for key.
func (s *StratumSummary) Group(key string) (Stratum, bool) {
	for _, g := range s.Groups {
		if g.Key == key {
			return g, true
		}
	}
	return Stratum{}, false
}

// Rounded returns the groups rounded for display.
func (s *StratumSummary) Rounded() []Stratum {
	out := make([]Stratum, len(s.Groups))
	for i, g := range s.Groups {
		out[i] = g.Rounded()
	}
	return out
}

// TotalCount sums group counts; it equals the number of present values of
// the numeric column.
func (s *StratumSummary) TotalCount() int {
	n := 0
	for _, g := range s.Groups {
		n += g.Count
	}
	return n
}

// DominantByCount returns the key of the largest group.
func (s *StratumSummary) DominantByCount() string {
	return s.dominant(func(g Stratum) float64 { return float64(g.Count) })
}

// DominantByMean returns the key of the group with the highest mean.
func (s *StratumSummary) DominantByMean() string {
	return s.dominant(func(g Stratum) float64 { return g.Mean })
}

// dominant keeps the first group on ties.
func (s *StratumSummary) dominant(metric func(Stratum) float64) string {
	if len(s.Groups) == 0 {
		return ""
	}
	best := 0
	for i := 1; i < len(s.Groups); i++ {
		if metric(s.Groups[i]) > metric(s.Groups[best]) {
			best = i
		}
	}
	return s.Groups[best].Key
}

// Stratify groups numericColumn by categoryColumn.
func Stratify(t *table.Table, categoryColumn, numericColumn string) (*StratumSummary, error) {
	cat, err := t.Column(categoryColumn)
	if err != nil {
		return nil, err
	}
	num, err := t.NumericColumn(numericColumn)
	if err != nil {
		return nil, err
	}
	if t.RowCount() == 0 {
		return nil, errors.EmptyTable("table has no rows")
	}

	order := make([]string, 0)
	groups := make(map[string][]float64)
	for i := 0; i < t.RowCount(); i++ {
		key, ok := cat.Key(i)
		if !ok {
			key = MissingGroupKey
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
			groups[key] = nil
		}
		if cell := num.Cells[i]; !cell.Missing {
			groups[key] = append(groups[key], cell.Num)
		}
	}

	summary := &StratumSummary{
		CategoryColumn: categoryColumn,
		NumericColumn:  numericColumn,
	}
	for _, key := range order {
		values := groups[key]
		if len(values) == 0 {
			summary.EmptyGroups = append(summary.EmptyGroups, key)
			continue
		}
		stratum, err := summarizeGroup(key, values)
		if err != nil {
			return nil, errors.Wrapf(err, "stratum %q", key)
		}
		summary.Groups = append(summary.Groups, stratum)
	}
	if len(summary.Groups) == 0 {
		return nil, errors.EmptySeries(numericColumn)
	}
	return summary, nil
}

func summarizeGroup(key string, values []float64) (Stratum, error) {
	s, err := summarizeValues(values)
	if err != nil {
		return Stratum{}, err
	}
	return Stratum{
		Key:    key,
		Count:  s.Count,
		Mean:   s.Mean,
		Median: s.Median,
		Min:    s.Min,
		Max:    s.Max,
		Std:    s.Std,
	}, nil
}
