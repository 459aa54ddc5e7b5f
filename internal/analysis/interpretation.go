package analysis

import "strings"

// KeywordRule maps column-name keywords to interpretation lines.
type KeywordRule struct {
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
	Lines    []string `yaml:"lines" json:"lines"`
}

// Catalog holds the configurable interpretation texts. The Pareto keyword
// match is a plain substring heuristic on the category column name.
type Catalog struct {
	Pareto        []KeywordRule `yaml:"pareto" json:"pareto"`
	ParetoDefault []string      `yaml:"pareto_default" json:"pareto_default"`
}

// DefaultCatalog returns the built-in interpretation texts.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Pareto: []KeywordRule{
			{
				Name:     "defects",
				Keywords: []string{"defect"},
				Lines: []string{
					"Critical defects require immediate attention.",
					"Focus efforts on reducing the main causes of defects.",
				},
			},
			{
				Name:     "times",
				Keywords: []string{"time"},
				Lines: []string{
					"Stages with the longest processing times need optimization.",
					"Identify improvement opportunities in the slowest processes.",
				},
			},
			{
				Name:     "costs",
				Keywords: []string{"cost"},
				Lines: []string{
					"Items with the highest economic impact demand strategic review.",
					"Prioritize actions to reduce the most significant costs.",
				},
			},
		},
		ParetoDefault: []string{
			"Key categories in the analysis have been identified.",
			"Focus your efforts on areas with the greatest impact.",
		},
	}
}

// ParetoLines returns the lines of the first rule with a keyword contained
// in the lower-cased column name, or the default lines.
func (c *Catalog) ParetoLines(categoryColumn string) []string {
	name := strings.ToLower(categoryColumn)
	for _, rule := range c.Pareto {
		for _, kw := range rule.Keywords {
			if kw != "" && strings.Contains(name, strings.ToLower(kw)) {
				return rule.Lines
			}
		}
	}
	return c.ParetoDefault
}

// InterpretPareto joins the matching lines into one sentence block.
func (c *Catalog) InterpretPareto(categoryColumn string) string {
	return strings.Join(c.ParetoLines(categoryColumn), " ")
}
