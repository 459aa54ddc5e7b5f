package checksheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spckit/domain/table"
	"spckit/internal/errors"
)

func defectSheet(t *testing.T) *Sheet {
	t.Helper()
	s, err := NewSheet(Definition{
		Type: DefectCount,
		Fields: []Field{
			{Name: " defect ", Type: FieldCategory, Options: []string{"scratch", "dent", "crack"}},
			{Name: "count", Type: FieldNumeric},
			{Name: "day", Type: FieldDate},
			{Name: "note", Type: FieldText},
		},
	})
	require.NoError(t, err)
	return s
}

func TestDefinition_Validate(t *testing.T) {
	fields := func(n int) []Field {
		out := make([]Field, n)
		for i := range out {
			out[i] = Field{Name: string(rune('a' + i)), Type: FieldText}
		}
		return out
	}

	testCases := []struct {
		name string
		def  Definition
	}{
		{"unknown type", Definition{Type: "Survey", Fields: fields(1)}},
		{"no fields", Definition{Type: EventLog}},
		{"too many fields", Definition{Type: EventLog, Fields: fields(MaxFields + 1)}},
		{"blank name", Definition{Type: EventLog, Fields: []Field{{Name: " ", Type: FieldText}}}},
		{"duplicate name", Definition{Type: EventLog, Fields: []Field{{Name: "a", Type: FieldText}, {Name: "a", Type: FieldDate}}}},
		{"unknown field type", Definition{Type: EventLog, Fields: []Field{{Name: "a", Type: "Boolean"}}}},
		{"options on numeric", Definition{Type: EventLog, Fields: []Field{{Name: "a", Type: FieldNumeric, Options: []string{"1"}}}}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, errors.HasCode(tc.def.Validate(), errors.CodeInvalidInput))
		})
	}

	assert.NoError(t, Definition{Type: ProcessControl, Fields: fields(MaxFields)}.Validate())
}

func TestSheet_RecordAndToTable(t *testing.T) {
	s := defectSheet(t)

	require.NoError(t, s.Record(map[string]string{"defect": "scratch", "count": "3", "day": "2024-06-01", "note": "line 2"}))
	require.NoError(t, s.Record(map[string]string{"defect": "dent", "count": "1"}))
	require.NoError(t, s.Record(map[string]string{"defect": "scratch", "count": "4", "day": "2024-06-03"}))
	assert.Equal(t, 3, s.Len())

	tbl, err := s.ToTable()
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.RowCount())
	assert.Equal(t, []string{"count"}, tbl.NumericColumns())
	assert.Equal(t, []string{"defect"}, tbl.CategoricalColumns())

	day, _ := tbl.Column("day")
	assert.Equal(t, table.KindDate, day.Kind)
	assert.True(t, day.Cells[1].Missing)

	note, _ := tbl.Column("note")
	assert.Equal(t, table.KindText, note.Kind)
	assert.Equal(t, "line 2", note.Cells[0].Str)
}

func TestSheet_RecordRejectsBadValues(t *testing.T) {
	s := defectSheet(t)

	testCases := []struct {
		name   string
		values map[string]string
	}{
		{"unknown field", map[string]string{"shift": "night"}},
		{"not a number", map[string]string{"count": "three"}},
		{"not a date", map[string]string{"day": "yesterday"}},
		{"not an option", map[string]string{"defect": "stain"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, errors.HasCode(s.Record(tc.values), errors.CodeInvalidInput))
		})
	}
	assert.Equal(t, 0, s.Len())
}

func TestSheet_EmptyToTable(t *testing.T) {
	tbl, err := defectSheet(t).ToTable()
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.RowCount())
	assert.Equal(t, 4, tbl.ColumnCount())
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	s, err := r.Create(Definition{Type: EventLog, Fields: []Field{{Name: "event", Type: FieldText}}})
	require.NoError(t, err)

	got, err := r.Get(s.ID.String())
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = r.Get("not-a-uuid")
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))

	_, err = r.Get("6f1c1a55-8c0e-4b1e-9d7a-2d1f0e6c9b11")
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))

	_, err = r.Create(Definition{Type: "Unknown"})
	assert.Error(t, err)
	assert.Len(t, r.List(), 1)
}
