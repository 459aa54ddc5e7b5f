// Package ishikawa builds cause-and-effect (fishbone) diagrams: an effect,
// causes grouped into five fixed categories and up to five "whys" per cause.
package ishikawa

import (
	"fmt"
	"strings"

	"spckit/internal/errors"
)

// Category is one of the fixed cause categories.
type Category string

const (
	Methods     Category = "Methods"
	Machines    Category = "Machines"
	People      Category = "People"
	Materials   Category = "Materials"
	Environment Category = "Environment"
)

// Categories lists the categories in display order.
var Categories = []Category{Methods, Machines, People, Materials, Environment}

// MaxWhys bounds the why-chain of a cause.
const MaxWhys = 5

// ParseCategory matches a category name case-insensitively.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c, nil
		}
	}
	return "", errors.InvalidInput(fmt.Sprintf("unknown category %q", s))
}

// Cause is one contributing cause and its why-chain.
type Cause struct {
	Text string   `json:"cause" yaml:"cause"`
	Whys []string `json:"whys,omitempty" yaml:"whys"`
}

// Diagram is an effect with its causes per category.
type Diagram struct {
	Effect string               `json:"effect"`
	Causes map[Category][]Cause `json:"causes"`
}

// NewDiagram creates an empty diagram for effect.
func NewDiagram(effect string) *Diagram {
	return &Diagram{
		Effect: strings.TrimSpace(effect),
		Causes: make(map[Category][]Cause),
	}
}

// AddCause appends a cause to category. Blank whys are dropped; more than
// MaxWhys remaining whys is an error, as is a blank cause.
func (d *Diagram) AddCause(category Category, cause string, whys ...string) error {
	if _, err := ParseCategory(string(category)); err != nil {
		return err
	}
	cause = strings.TrimSpace(cause)
	if cause == "" {
		return errors.InvalidInput("cause must not be empty")
	}

	kept := make([]string, 0, len(whys))
	for _, w := range whys {
		if w = strings.TrimSpace(w); w != "" {
			kept = append(kept, w)
		}
	}
	if len(kept) > MaxWhys {
		return errors.InvalidInput(fmt.Sprintf("at most %d whys per cause, got %d", MaxWhys, len(kept)))
	}

	if d.Causes == nil {
		d.Causes = make(map[Category][]Cause)
	}
	d.Causes[category] = append(d.Causes[category], Cause{Text: cause, Whys: kept})
	return nil
}

// CauseCount returns the number of causes over all categories.
func (d *Diagram) CauseCount() int {
	n := 0
	for _, causes := range d.Causes {
		n += len(causes)
	}
	return n
}

// SummaryRow is one line of the cause summary table.
type SummaryRow struct {
	Category Category `json:"category"`
	Cause    string   `json:"cause"`
	Whys     string   `json:"whys"`
}

// WhySeparator joins a why-chain in summaries.
const WhySeparator = " → "

// Summary flattens the diagram into rows in category order. When filter is
// non-empty only those categories are included.
func (d *Diagram) Summary(filter ...Category) []SummaryRow {
	include := make(map[Category]bool, len(filter))
	for _, c := range filter {
		include[c] = true
	}

	rows := make([]SummaryRow, 0, d.CauseCount())
	for _, category := range Categories {
		if len(include) > 0 && !include[category] {
			continue
		}
		for _, cause := range d.Causes[category] {
			rows = append(rows, SummaryRow{
				Category: category,
				Cause:    cause.Text,
				Whys:     strings.Join(cause.Whys, WhySeparator),
			})
		}
	}
	return rows
}

// Validate checks the diagram can be rendered.
func (d *Diagram) Validate() error {
	if d.Effect == "" {
		return errors.InvalidInput("effect must not be empty")
	}
	for category, causes := range d.Causes {
		if _, err := ParseCategory(string(category)); err != nil {
			return err
		}
		for _, c := range causes {
			if strings.TrimSpace(c.Text) == "" {
				return errors.InvalidInput(fmt.Sprintf("blank cause in %s", category))
			}
			if len(c.Whys) > MaxWhys {
				return errors.InvalidInput(fmt.Sprintf("cause %q has more than %d whys", c.Text, MaxWhys))
			}
		}
	}
	return nil
}
