package coercer

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"spckit/domain/table"
	"spckit/internal/errors"
)

// TypeCoercer resolves the kind of raw string columns and converts them to
// typed cells. The kind is decided once per column.
type TypeCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the coercion thresholds and rules
type CoercionConfig struct {
	NumericThreshold float64 `json:"numeric_threshold" mapstructure:"numeric_threshold"` // % of values that must parse as numbers
	DateThreshold    float64 `json:"date_threshold" mapstructure:"date_threshold"`       // % of values that must parse as dates
	MaxCategories    int     `json:"max_categories" mapstructure:"max_categories"`       // above this a string column is free text
	NormalizeStrings bool    `json:"normalize_strings" mapstructure:"normalize_strings"` // lower-case and collapse whitespace
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold: 0.8,
		DateThreshold:    0.8,
		MaxCategories:    100,
		NormalizeStrings: false,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	return &TypeCoercer{config: config}
}

// TypeAnalysis contains the results of type distribution analysis
type TypeAnalysis struct {
	TotalCount   int        `json:"total_count"`
	ValidCount   int        `json:"valid_count"`
	NumericCount int        `json:"numeric_count"`
	DateCount    int        `json:"date_count"`
	UniqueCount  int        `json:"unique_count"`
	NumericRatio float64    `json:"numeric_ratio"`
	DateRatio    float64    `json:"date_ratio"`
	Kind         table.Kind `json:"kind"`
}

// AnalyzeTypeDistribution counts how many non-blank values parse as each
// kind and picks the column kind.
func (c *TypeCoercer) AnalyzeTypeDistribution(values []string) TypeAnalysis {
	analysis := TypeAnalysis{TotalCount: len(values)}

	unique := make(map[string]struct{})
	for _, raw := range values {
		v := strings.TrimSpace(raw)
		if v == "" {
			continue
		}
		analysis.ValidCount++
		unique[v] = struct{}{}

		if _, ok := ParseNumber(v); ok {
			analysis.NumericCount++
		}
		if _, ok := ParseDate(v); ok {
			analysis.DateCount++
		}
	}
	analysis.UniqueCount = len(unique)

	if analysis.ValidCount > 0 {
		analysis.NumericRatio = float64(analysis.NumericCount) / float64(analysis.ValidCount)
		analysis.DateRatio = float64(analysis.DateCount) / float64(analysis.ValidCount)
	}
	analysis.Kind = c.determineKind(analysis)
	return analysis
}

// determineKind checks thresholds in order of preference. A column with no
// values at all is numeric, the same as an all-blank spreadsheet column.
func (c *TypeCoercer) determineKind(analysis TypeAnalysis) table.Kind {
	if analysis.ValidCount == 0 {
		return table.KindNumeric
	}
	if analysis.NumericRatio >= c.config.NumericThreshold {
		return table.KindNumeric
	}
	if analysis.DateRatio >= c.config.DateThreshold {
		return table.KindDate
	}
	if c.config.MaxCategories > 0 && analysis.UniqueCount > c.config.MaxCategories {
		return table.KindText
	}
	return table.KindCategorical
}

// CoerceColumn converts raw values to cells of the given kind. Values that
// do not parse become missing.
func (c *TypeCoercer) CoerceColumn(name string, kind table.Kind, values []string) table.Column {
	cells := make([]table.Cell, len(values))
	for i, raw := range values {
		cells[i] = c.coerceValue(kind, raw)
	}
	return table.Column{Name: name, Kind: kind, Cells: cells}
}

func (c *TypeCoercer) coerceValue(kind table.Kind, raw string) table.Cell {
	v := strings.TrimSpace(raw)
	if v == "" {
		return table.Missing()
	}
	switch kind {
	case table.KindNumeric:
		if f, ok := ParseNumber(v); ok {
			return table.Number(f)
		}
		return table.Missing()
	case table.KindDate:
		if t, ok := ParseDate(v); ok {
			return table.Date(t)
		}
		return table.Missing()
	default:
		if c.config.NormalizeStrings {
			v = normalizeString(v)
		}
		return table.String(v)
	}
}

// BuildTable infers the kind of every column and builds the table. rows may
// be ragged; short rows are padded with blanks.
func (c *TypeCoercer) BuildTable(headers []string, rows [][]string) (*table.Table, error) {
	if len(headers) == 0 {
		return nil, errors.EmptyTable("no columns")
	}

	columns := make([]table.Column, len(headers))
	for j, header := range headers {
		values := make([]string, len(rows))
		for i, row := range rows {
			if j < len(row) {
				values[i] = row[j]
			}
		}
		analysis := c.AnalyzeTypeDistribution(values)
		columns[j] = c.CoerceColumn(header, analysis.Kind, values)
	}
	return table.New(columns...)
}

var currencySymbols = []string{"$", "€", "£", "¥", "USD", "EUR", "GBP", "JPY"}

// ParseNumber parses a numeric string with strict rules. Handles
// parentheses for negatives, currency symbols, percent signs and European
// decimal commas.
func ParseNumber(s string) (float64, bool) {
	cleanVal := strings.TrimSpace(s)
	if cleanVal == "" {
		return 0, false
	}

	// (123) -> -123
	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimSuffix(strings.TrimPrefix(cleanVal, "("), ")")
		isNegative = true
	}

	for _, symbol := range currencySymbols {
		cleanVal = strings.ReplaceAll(cleanVal, symbol, "")
	}
	cleanVal = strings.TrimSpace(cleanVal)
	cleanVal = strings.ReplaceAll(cleanVal, "%", "")

	hasComma := strings.Contains(cleanVal, ",")
	hasPeriod := strings.Contains(cleanVal, ".")
	hasSpace := strings.Contains(cleanVal, " ")

	switch {
	case hasComma && (hasPeriod || hasSpace):
		// 1.234,56 or 1 234,56 when the comma comes last
		commaIdx := strings.LastIndex(cleanVal, ",")
		if commaIdx > strings.LastIndex(cleanVal, ".") {
			cleanVal = strings.ReplaceAll(cleanVal, ".", "")
			cleanVal = strings.ReplaceAll(cleanVal, " ", "")
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		} else {
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
		}
	case hasComma:
		cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
	default:
		cleanVal = strings.ReplaceAll(cleanVal, " ", "")
	}

	if isNegative {
		cleanVal = "-" + cleanVal
	}

	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

var dateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
	"02-Jan-2006",
	"01-02-06",
	"1/2/06",
}

// ParseDate tries the supported date layouts in order.
func ParseDate(s string) (time.Time, bool) {
	v := strings.TrimSpace(s)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var whitespace = regexp.MustCompile(`\s+`)

// normalizeString lower-cases, collapses whitespace and drops control
// characters.
func normalizeString(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = whitespace.ReplaceAllString(s, " ")
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
}
