package report

import (
	"fmt"
	"strconv"
	"strings"

	"spckit/domain/table"
	"spckit/internal/analysis"
	"spckit/internal/ishikawa"
)

func f2(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// Pareto reports a Pareto aggregation. Rows within the critical prefix for
// threshold are flagged.
func Pareto(p *analysis.Pareto, threshold float64, interpretation string) *Document {
	critical := p.Critical(threshold)
	grid := &Grid{Header: []string{"category", "value", "individual_pct", "cumulative_pct", "critical"}}
	for i, r := range p.Rows {
		grid.Rows = append(grid.Rows, []string{
			r.Category, f2(r.Value), f2(r.IndividualPct), f2(r.CumulativePct), yesNo(i < len(critical)),
		})
	}

	measure := "frequency"
	if p.ValueColumn != "" {
		measure = "sum of " + p.ValueColumn
	}
	names := make([]string, len(critical))
	for i, r := range critical {
		names[i] = r.Category
	}
	criticalText := "No category falls within the critical threshold on its own."
	if len(names) > 0 {
		criticalText = fmt.Sprintf("Critical categories (cumulative %% <= %s): %s.", f2(threshold), strings.Join(names, ", "))
	}

	return &Document{
		Title: "Pareto Analysis: " + p.CategoryColumn,
		Sections: []Section{
			{
				Heading: "Summary",
				Paragraphs: []string{
					fmt.Sprintf("%d categories of %s, measured by %s, total %s.", len(p.Rows), p.CategoryColumn, measure, f2(p.Total)),
					criticalText,
				},
				Table: grid,
			},
			{Heading: "Interpretation", Paragraphs: []string{interpretation}},
		},
		Data: grid,
	}
}

// Control reports an X-bar control chart.
func Control(c *analysis.ControlChart) *Document {
	limits := &Grid{
		Header: []string{"metric", "value"},
		Rows: [][]string{
			{"samples", strconv.Itoa(c.Limits.N)},
			{"mean", f2(c.Limits.Mean)},
			{"sigma", f2(c.Limits.Sigma)},
			{"upper_control_limit", f2(c.Limits.UpperLimit)},
			{"lower_control_limit", f2(c.Limits.LowerLimit)},
			{"out_of_control", strconv.Itoa(c.OutOfControlCount())},
		},
	}
	points := &Grid{Header: []string{"row", "value", "out_of_control"}}
	for _, p := range c.Points {
		points.Rows = append(points.Rows, []string{strconv.Itoa(p.Index), f2(p.Value), yesNo(p.OutOfControl)})
	}

	return &Document{
		Title: "Control Chart: " + c.Variable,
		Sections: []Section{
			{Heading: "Control Limits", Table: limits},
			{Heading: "Interpretation", Paragraphs: c.Summary},
			{Heading: "Samples", Table: points},
		},
		Data: points,
	}
}

// DPMO reports a DPMO calculation with the sigma reference table.
func DPMO(r *analysis.DpmoResult) *Document {
	metrics := &Grid{
		Header: []string{"metric", "value"},
		Rows: [][]string{
			{"defects", strconv.FormatInt(r.Defects, 10)},
			{"units", strconv.FormatInt(r.Units, 10)},
			{"opportunities_per_unit", strconv.FormatInt(r.Opportunities, 10)},
			{"dpmo", f2(r.DPMO)},
			{"yield_pct", f2(r.Yield * 100)},
			{"sigma_level", analysis.FormatSigma(r.SigmaLevel)},
			{"tier", string(r.Tier)},
		},
	}
	text, err := r.Tier.Interpretation()
	if err != nil {
		text = "The sigma level is outside every performance tier: " + err.Error()
	}

	ref := &Grid{Header: []string{"level", "dpmo", "performance_pct"}}
	for _, s := range analysis.SigmaReferenceTable() {
		ref.Rows = append(ref.Rows, []string{s.Label, strconv.FormatFloat(s.DPMO, 'f', -1, 64), strconv.FormatFloat(s.Performance, 'f', -1, 64)})
	}

	return &Document{
		Title: "DPMO and Sigma Level",
		Sections: []Section{
			{Heading: "Metrics", Table: metrics},
			{Heading: "Interpretation", Paragraphs: []string{text}},
			{Heading: "Sigma Reference", Table: ref},
		},
		Data: metrics,
	}
}

// Stratification reports a stratified summary, rounded to two decimals.
func Stratification(s *analysis.StratumSummary) *Document {
	grid := &Grid{Header: []string{s.CategoryColumn, "count", "mean", "median", "min", "max", "std"}}
	for _, g := range s.Rounded() {
		grid.Rows = append(grid.Rows, []string{
			g.Key, strconv.Itoa(g.Count), f2(g.Mean), f2(g.Median), f2(g.Min), f2(g.Max), f2(g.Std),
		})
	}

	paragraphs := []string{
		fmt.Sprintf("Stratification analysis of %s by %s.", s.NumericColumn, s.CategoryColumn),
		fmt.Sprintf("Identified categories: %d.", len(s.Groups)),
		fmt.Sprintf("Highest concentration: %s. Highest average: %s.", s.DominantByCount(), s.DominantByMean()),
	}
	if len(s.EmptyGroups) > 0 {
		paragraphs = append(paragraphs, fmt.Sprintf("Categories without %s values: %s.", s.NumericColumn, strings.Join(s.EmptyGroups, ", ")))
	}

	return &Document{
		Title: fmt.Sprintf("Stratification: %s by %s", s.NumericColumn, s.CategoryColumn),
		Sections: []Section{
			{Heading: "Summary", Table: grid},
			{Heading: "Interpretation", Paragraphs: paragraphs},
		},
		Data: grid,
	}
}

func summaryGrid(s analysis.Summary) *Grid {
	return &Grid{
		Header: []string{"statistic", "value"},
		Rows: [][]string{
			{"count", strconv.Itoa(s.Count)},
			{"mean", f2(s.Mean)},
			{"median", f2(s.Median)},
			{"std", f2(s.Std)},
			{"variance", f2(s.Variance)},
			{"min", f2(s.Min)},
			{"max", f2(s.Max)},
			{"range", f2(s.Range)},
			{"missing", strconv.Itoa(s.MissingCount)},
			{"missing_pct", f2(s.MissingPct)},
		},
	}
}

// Histogram reports a histogram and its summary.
func Histogram(h *analysis.Histogram) *Document {
	bins := &Grid{Header: []string{"lower", "upper", "count"}}
	for _, b := range h.Bins {
		bins.Rows = append(bins.Rows, []string{f2(b.Lower), f2(b.Upper), strconv.Itoa(b.Count)})
	}
	sections := []Section{
		{Heading: "Descriptive Statistics", Table: summaryGrid(h.Summary)},
		{Heading: "Distribution", Table: bins},
	}
	if s := h.Shape; s != nil {
		sections = append(sections, Section{Heading: "Shape", Table: &Grid{
			Header: []string{"metric", "value"},
			Rows: [][]string{
				{"skewness", f2(s.Skewness)},
				{"excess_kurtosis", f2(s.Kurtosis)},
				{"q1", f2(s.Q1)},
				{"q3", f2(s.Q3)},
				{"iqr_outliers", strconv.Itoa(s.Outliers)},
				{"jarque_bera_p", strconv.FormatFloat(s.NormalP, 'f', 3, 64)},
			},
		}})
	}
	sections = append(sections, Section{Heading: "Interpretation", Paragraphs: h.Notes})
	return &Document{
		Title:    "Histogram: " + h.Variable,
		Sections: sections,
		Data:     bins,
	}
}

// Correlation reports a correlation between two columns.
func Correlation(c *analysis.Correlation) *Document {
	grid := &Grid{
		Header: []string{"metric", "value"},
		Rows: [][]string{
			{"pairs", strconv.Itoa(c.Pairs)},
			{"r", f2(c.R)},
			{"strength", string(c.Strength)},
			{"mean_" + c.X, f2(c.MeanX)},
			{"mean_" + c.Y, f2(c.MeanY)},
			{"slope", strconv.FormatFloat(c.Slope, 'g', 6, 64)},
			{"intercept", strconv.FormatFloat(c.Intercept, 'g', 6, 64)},
		},
	}
	return &Document{
		Title: fmt.Sprintf("Correlation: %s vs %s", c.X, c.Y),
		Sections: []Section{
			{Heading: "Metrics", Table: grid},
			{Heading: "Interpretation", Paragraphs: []string{c.Summary}},
		},
		Data: grid,
	}
}

// Profile reports the summary of every numeric column.
func Profile(name string, p *analysis.Profile) *Document {
	cols := &Grid{Header: []string{"column", "count", "mean", "median", "std", "min", "max", "note"}}
	for _, c := range p.Columns {
		if c.Summary == nil {
			cols.Rows = append(cols.Rows, []string{c.Column, "0", "", "", "", "", "", c.Error})
			continue
		}
		s := c.Summary
		cols.Rows = append(cols.Rows, []string{
			c.Column, strconv.Itoa(s.Count), f2(s.Mean), f2(s.Median), f2(s.Std), f2(s.Min), f2(s.Max), "",
		})
	}
	missing := &Grid{Header: []string{"column", "kind", "missing", "missing_pct"}}
	for _, m := range p.Missing {
		missing.Rows = append(missing.Rows, []string{m.Column, string(m.Kind), strconv.Itoa(m.Missing), f2(m.Pct)})
	}

	return &Document{
		Title: "Profile: " + name,
		Sections: []Section{
			{Heading: "Numeric Columns", Paragraphs: []string{fmt.Sprintf("%d rows.", p.Rows)}, Table: cols},
			{Heading: "Missing Values", Table: missing},
		},
		Data: cols,
	}
}

// Ishikawa reports the cause summary of a diagram, optionally filtered.
func Ishikawa(d *ishikawa.Diagram, filter ...ishikawa.Category) *Document {
	grid := &Grid{Header: []string{"Category", "Cause", "Whys"}}
	for _, r := range d.Summary(filter...) {
		grid.Rows = append(grid.Rows, []string{string(r.Category), r.Cause, r.Whys})
	}
	return &Document{
		Title: "Ishikawa Diagram: " + d.Effect,
		Sections: []Section{
			{Heading: "Summary of Causes", Table: grid},
		},
		Data: grid,
	}
}

// Table exports a whole table; missing cells are blank.
func Table(name string, t *table.Table) *Document {
	infos := t.Columns()
	grid := &Grid{Header: make([]string, len(infos))}
	columns := make([]table.Column, len(infos))
	for j, info := range infos {
		grid.Header[j] = info.Name
		columns[j], _ = t.Column(info.Name)
	}
	for i := 0; i < t.RowCount(); i++ {
		row := make([]string, len(columns))
		for j, c := range columns {
			row[j], _ = c.Key(i)
		}
		grid.Rows = append(grid.Rows, row)
	}
	return &Document{
		Title:    name,
		Sections: []Section{{Heading: "Data", Table: grid}},
		Data:     grid,
	}
}

// Summary reports the descriptive statistics of one column.
func Summary(column string, s analysis.Summary) *Document {
	grid := summaryGrid(s)
	return &Document{
		Title:    "Descriptive Statistics: " + column,
		Sections: []Section{{Heading: "Summary", Table: grid}},
		Data:     grid,
	}
}

// Dataset lists the columns of a loaded dataset with their kinds.
func Dataset(name string, rows int, columns []table.ColumnInfo) *Document {
	grid := &Grid{Header: []string{"column", "kind"}}
	for _, c := range columns {
		grid.Rows = append(grid.Rows, []string{c.Name, string(c.Kind)})
	}
	return &Document{
		Title: "Dataset: " + name,
		Sections: []Section{{
			Heading:    "Columns",
			Paragraphs: []string{fmt.Sprintf("%d rows, %d columns.", rows, len(columns))},
			Table:      grid,
		}},
		Data: grid,
	}
}
