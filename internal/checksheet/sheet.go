// Package checksheet implements typed data-collection sheets whose records
// can be analyzed like any uploaded dataset.
package checksheet

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"spckit/adapters/coercer"
	"spckit/domain/table"
	"spckit/internal/errors"
)

// SheetType is the purpose of a check sheet.
type SheetType string

const (
	DefectCount       SheetType = "Defect Count"
	EventLog          SheetType = "Event Log"
	ProcessControl    SheetType = "Process Control"
	FrequencyAnalysis SheetType = "Frequency Analysis"
)

// SheetTypes lists the supported sheet types.
var SheetTypes = []SheetType{DefectCount, EventLog, ProcessControl, FrequencyAnalysis}

// FieldType is the kind of value a field collects.
type FieldType string

const (
	FieldText     FieldType = "Text"
	FieldNumeric  FieldType = "Numeric"
	FieldCategory FieldType = "Category"
	FieldDate     FieldType = "Date"
)

// MaxFields bounds the number of fields on one sheet.
const MaxFields = 10

var fieldKinds = map[FieldType]table.Kind{
	FieldText:     table.KindText,
	FieldNumeric:  table.KindNumeric,
	FieldCategory: table.KindCategorical,
	FieldDate:     table.KindDate,
}

// Field is one column of a sheet. Options, when set, restrict the values of
// a Category field.
type Field struct {
	Name    string    `json:"name"`
	Type    FieldType `json:"type"`
	Options []string  `json:"options,omitempty"`
}

// Definition describes a sheet before any record is entered.
type Definition struct {
	Type   SheetType `json:"type"`
	Fields []Field   `json:"fields"`
}

// Validate checks the sheet type and the fields.
func (d Definition) Validate() error {
	known := false
	for _, t := range SheetTypes {
		if d.Type == t {
			known = true
			break
		}
	}
	if !known {
		return errors.InvalidInput(fmt.Sprintf("unknown sheet type %q", d.Type))
	}
	if len(d.Fields) == 0 || len(d.Fields) > MaxFields {
		return errors.InvalidInput(fmt.Sprintf("a sheet needs between 1 and %d fields, got %d", MaxFields, len(d.Fields)))
	}

	seen := make(map[string]bool, len(d.Fields))
	for i, f := range d.Fields {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			return errors.InvalidInput(fmt.Sprintf("field %d has no name", i+1))
		}
		if seen[name] {
			return errors.InvalidInput(fmt.Sprintf("duplicate field %q", name))
		}
		seen[name] = true
		if _, ok := fieldKinds[f.Type]; !ok {
			return errors.InvalidInput(fmt.Sprintf("field %q has unknown type %q", name, f.Type))
		}
		if len(f.Options) > 0 && f.Type != FieldCategory {
			return errors.InvalidInput(fmt.Sprintf("field %q: options are only valid on Category fields", name))
		}
	}
	return nil
}

// Sheet is a check sheet and its records. It is safe for concurrent use.
type Sheet struct {
	ID         uuid.UUID
	Definition Definition
	CreatedAt  time.Time

	mu      sync.RWMutex
	records [][]table.Cell
}

// NewSheet validates def and creates an empty sheet.
func NewSheet(def Definition) (*Sheet, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	fields := make([]Field, len(def.Fields))
	for i, f := range def.Fields {
		f.Name = strings.TrimSpace(f.Name)
		f.Options = append([]string(nil), f.Options...)
		fields[i] = f
	}
	return &Sheet{
		ID:         uuid.New(),
		Definition: Definition{Type: def.Type, Fields: fields},
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// Record validates values (field name to raw value) and appends a row.
// Fields left out or blank are recorded as missing.
func (s *Sheet) Record(values map[string]string) error {
	byName := make(map[string]Field, len(s.Definition.Fields))
	for _, f := range s.Definition.Fields {
		byName[f.Name] = f
	}
	for name := range values {
		if _, ok := byName[name]; !ok {
			return errors.InvalidInput(fmt.Sprintf("unknown field %q", name))
		}
	}

	row := make([]table.Cell, len(s.Definition.Fields))
	for i, f := range s.Definition.Fields {
		cell, err := parseValue(f, values[f.Name])
		if err != nil {
			return err
		}
		row[i] = cell
	}

	s.mu.Lock()
	s.records = append(s.records, row)
	s.mu.Unlock()
	return nil
}

func parseValue(f Field, raw string) (table.Cell, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return table.Missing(), nil
	}
	switch f.Type {
	case FieldNumeric:
		n, ok := coercer.ParseNumber(v)
		if !ok {
			return table.Cell{}, errors.InvalidInput(fmt.Sprintf("field %q: %q is not a number", f.Name, v))
		}
		return table.Number(n), nil
	case FieldDate:
		t, ok := coercer.ParseDate(v)
		if !ok {
			return table.Cell{}, errors.InvalidInput(fmt.Sprintf("field %q: %q is not a date", f.Name, v))
		}
		return table.Date(t), nil
	case FieldCategory:
		if len(f.Options) > 0 && !contains(f.Options, v) {
			return table.Cell{}, errors.InvalidInput(fmt.Sprintf("field %q: %q is not one of %s", f.Name, v, strings.Join(f.Options, ", ")))
		}
		return table.String(v), nil
	default:
		return table.String(v), nil
	}
}

func contains(options []string, v string) bool {
	for _, o := range options {
		if strings.TrimSpace(o) == v {
			return true
		}
	}
	return false
}

// Len returns the number of records.
func (s *Sheet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// ToTable converts the records into a table, one column per field.
func (s *Sheet) ToTable() (*table.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	columns := make([]table.Column, len(s.Definition.Fields))
	for j, f := range s.Definition.Fields {
		cells := make([]table.Cell, len(s.records))
		for i, row := range s.records {
			cells[i] = row[j]
		}
		columns[j] = table.Column{Name: f.Name, Kind: fieldKinds[f.Type], Cells: cells}
	}
	return table.New(columns...)
}
