package analysis

import (
	"context"

	"golang.org/x/sync/errgroup"

	"spckit/domain/table"
)

// ColumnProfile is the summary of one numeric column. Error is set instead
// of Summary when the column cannot be summarized (for example, no values).
type ColumnProfile struct {
	Column  string   `json:"column"`
	Summary *Summary `json:"summary,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// Profile describes a whole table: one summary per numeric column plus the
// missing-value report.
type Profile struct {
	Rows    int             `json:"rows"`
	Columns []ColumnProfile `json:"columns"`
	Missing []MissingEntry  `json:"missing"`
}

// ProfileTable summarizes every numeric column concurrently, at most
// workers at a time. The table is read-only, so no locking is needed.
func ProfileTable(ctx context.Context, t *table.Table, workers int) (*Profile, error) {
	missing, err := MissingReport(t)
	if err != nil {
		return nil, err
	}

	names := t.NumericColumns()
	columns := make([]ColumnProfile, len(names))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			columns[i] = ColumnProfile{Column: name}
			s, err := SummarizeColumn(t, name)
			if err != nil {
				columns[i].Error = err.Error()
				return nil
			}
			columns[i].Summary = &s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Profile{
		Rows:    t.RowCount(),
		Columns: columns,
		Missing: missing,
	}, nil
}
