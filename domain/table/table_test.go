package table

import (
	"testing"
	"time"

	"spckit/internal/errors"
)

func sampleTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := New(
		Column{Name: "line", Kind: KindCategorical, Cells: Strings("A", "B", "", "A")},
		Column{Name: "weight", Kind: KindNumeric, Cells: []Cell{Number(1.5), Missing(), Number(3), Number(4.5)}},
		Column{Name: "shift_date", Kind: KindDate, Cells: []Cell{
			Date(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)), Missing(), Missing(),
			Date(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)),
		}},
		Column{Name: "note", Kind: KindText, Cells: Strings("ok", "late", "ok", "")},
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return tbl
}

func TestNew_Validation(t *testing.T) {
	testCases := []struct {
		name    string
		columns []Column
	}{
		{"duplicate names", []Column{
			{Name: "a", Kind: KindNumeric, Cells: Numbers(1)},
			{Name: "a", Kind: KindNumeric, Cells: Numbers(2)},
		}},
		{"unequal lengths", []Column{
			{Name: "a", Kind: KindNumeric, Cells: Numbers(1, 2)},
			{Name: "b", Kind: KindNumeric, Cells: Numbers(2)},
		}},
		{"empty name", []Column{{Name: "", Kind: KindText}}},
		{"unknown kind", []Column{{Name: "a", Kind: Kind("blob")}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.columns...); !errors.HasCode(err, errors.CodeInvalidInput) {
				t.Errorf("expected INVALID_INPUT, got %v", err)
			}
		})
	}
}

func TestTable_Accessors(t *testing.T) {
	tbl := sampleTable(t)

	if tbl.RowCount() != 4 {
		t.Errorf("RowCount = %d, want 4", tbl.RowCount())
	}
	if got := tbl.NumericColumns(); len(got) != 1 || got[0] != "weight" {
		t.Errorf("NumericColumns = %v", got)
	}
	if got := tbl.CategoricalColumns(); len(got) != 1 || got[0] != "line" {
		t.Errorf("CategoricalColumns = %v", got)
	}
	cols := tbl.Columns()
	if len(cols) != 4 || cols[2].Kind != KindDate || cols[3].Name != "note" {
		t.Errorf("Columns = %+v", cols)
	}

	if _, err := tbl.Column("missing_col"); !errors.HasCode(err, errors.CodeUnknownColumn) {
		t.Errorf("expected UNKNOWN_COLUMN, got %v", err)
	}
	if _, err := tbl.NumericColumn("line"); !errors.HasCode(err, errors.CodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT for non-numeric column, got %v", err)
	}
}

func TestTable_ColumnIsACopy(t *testing.T) {
	tbl := sampleTable(t)
	col, _ := tbl.Column("weight")
	col.Cells[0] = Number(999)

	again, _ := tbl.Column("weight")
	if again.Cells[0].Num != 1.5 {
		t.Errorf("table was mutated through a returned column: %v", again.Cells[0].Num)
	}
}

func TestColumn_KeysAndObservations(t *testing.T) {
	tbl := sampleTable(t)

	weight, _ := tbl.Column("weight")
	obs := weight.Observations()
	if len(obs) != 3 || obs[1].Row != 2 || obs[1].Value != 3 {
		t.Errorf("Observations = %+v", obs)
	}
	if k, ok := weight.Key(0); !ok || k != "1.5" {
		t.Errorf("numeric key = %q,%v", k, ok)
	}

	dates, _ := tbl.Column("shift_date")
	if k, ok := dates.Key(3); !ok || k != "2024-03-04" {
		t.Errorf("date key = %q,%v", k, ok)
	}
	line, _ := tbl.Column("line")
	if _, ok := line.Key(2); ok {
		t.Error("missing categorical cell should have no key")
	}
}

func TestTransform_DropAndFill(t *testing.T) {
	tbl := sampleTable(t)

	dropped, err := tbl.DropMissingRows("weight")
	if err != nil {
		t.Fatalf("DropMissingRows: %v", err)
	}
	if dropped.RowCount() != 3 {
		t.Errorf("expected 3 rows after dropping missing weight, got %d", dropped.RowCount())
	}
	all, _ := tbl.DropMissingRows()
	if all.RowCount() != 1 {
		t.Errorf("expected only the first row to be complete, got %d rows", all.RowCount())
	}
	if _, err := tbl.DropMissingRows("nope"); !errors.HasCode(err, errors.CodeUnknownColumn) {
		t.Errorf("expected UNKNOWN_COLUMN, got %v", err)
	}

	filled, err := tbl.FillMissing(FillMean)
	if err != nil {
		t.Fatalf("FillMissing: %v", err)
	}
	w, _ := filled.Column("weight")
	if w.Cells[1].Missing || w.Cells[1].Num != 3 {
		t.Errorf("expected mean fill 3, got %+v", w.Cells[1])
	}

	median, _ := tbl.FillMissing(FillMedian)
	w, _ = median.Column("weight")
	if w.Cells[1].Num != 3 {
		t.Errorf("expected median fill 3, got %v", w.Cells[1].Num)
	}

	// the source table is untouched
	orig, _ := tbl.Column("weight")
	if !orig.Cells[1].Missing {
		t.Error("FillMissing mutated the source table")
	}
}

func TestTransform_Convert(t *testing.T) {
	tbl, err := New(Column{Name: "code", Kind: KindCategorical, Cells: Strings("10", "x", "12.5", "")})
	if err != nil {
		t.Fatal(err)
	}

	num, err := tbl.Convert("code", KindNumeric)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	col, _ := num.Column("code")
	if col.Kind != KindNumeric || col.Cells[0].Num != 10 || !col.Cells[1].Missing || col.Cells[2].Num != 12.5 {
		t.Errorf("numeric conversion = %+v", col.Cells)
	}

	back, _ := num.Convert("code", KindCategorical)
	col, _ = back.Column("code")
	if col.Cells[2].Str != "12.5" {
		t.Errorf("categorical conversion = %+v", col.Cells)
	}

	if _, err := tbl.Convert("code", KindDate); !errors.HasCode(err, errors.CodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT for date conversion, got %v", err)
	}
}

func TestTransform_ConvertNonFiniteIsMissing(t *testing.T) {
	tbl, err := New(Column{Name: "reading", Kind: KindCategorical, Cells: Strings("1", "2", "inf", "-Infinity", "NaN")})
	if err != nil {
		t.Fatal(err)
	}

	num, err := tbl.Convert("reading", KindNumeric)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	col, _ := num.Column("reading")
	for i, want := range []bool{false, false, true, true, true} {
		if col.Cells[i].Missing != want {
			t.Errorf("cell %d missing = %v, want %v", i, col.Cells[i].Missing, want)
		}
	}
	if got := col.MissingCount(); got != 3 {
		t.Errorf("MissingCount = %d, want 3", got)
	}
}
