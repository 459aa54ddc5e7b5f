package app

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spckit/adapters/excel"
	"spckit/domain/table"
	"spckit/internal/analysis"
	"spckit/internal/checksheet"
	"spckit/internal/config"
	"spckit/internal/errors"
	"spckit/internal/session"
)

const defectsCSV = `defect_type,line,weight,count
dent,L1,10.1,3
scratch,L1,9.8,1
dent,L2,10.4,2
crack,L2,,4
dent,L3,9.9,1
`

func newTestService(t *testing.T) *AnalysisService {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewAnalysisService(
		session.NewWorkspace(),
		excel.NewDataReader(excel.DefaultReaderConfig(), log),
		checksheet.NewRegistry(),
		nil,
		config.AnalysisConfig{ProfileWorkers: 2},
		log,
	)
}

func loadedService(t *testing.T) *AnalysisService {
	t.Helper()
	svc := newTestService(t)
	_, err := svc.Load(context.Background(), "defects.csv", strings.NewReader(defectsCSV))
	require.NoError(t, err)
	return svc
}

func TestLoad(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Current()
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))

	info, err := svc.Load(context.Background(), "defects.csv", strings.NewReader(defectsCSV))
	require.NoError(t, err)
	assert.Equal(t, int64(1), info.Version)
	assert.Equal(t, "defects.csv", info.Name)
	assert.Equal(t, 5, info.Rows)
	require.Len(t, info.Columns, 4)
	assert.Equal(t, table.KindCategorical, info.Columns[0].Kind)
	assert.Equal(t, table.KindNumeric, info.Columns[2].Kind)

	_, err = svc.Load(context.Background(), "notes.txt", strings.NewReader("a"))
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))

	cur, err := svc.Current()
	require.NoError(t, err)
	assert.Equal(t, int64(1), cur.Version)
}

func TestPareto(t *testing.T) {
	svc := loadedService(t)

	res, err := svc.Pareto(ParetoRequest{CategoryColumn: "defect_type"})
	require.NoError(t, err)
	assert.Equal(t, analysis.DefaultCriticalThreshold, res.Threshold)
	require.Len(t, res.Pareto.Rows, 3)
	assert.Equal(t, "dent", res.Pareto.Rows[0].Category)
	assert.Equal(t, 60.0, res.Pareto.Rows[0].IndividualPct)
	require.Len(t, res.Critical, 2)
	assert.Equal(t, "scratch", res.Critical[1].Category)
	assert.Contains(t, res.Interpretation, "Critical defects require immediate attention.")

	res, err = svc.Pareto(ParetoRequest{CategoryColumn: "defect_type", ValueColumn: "count", Threshold: 50})
	require.NoError(t, err)
	assert.Equal(t, 11.0, res.Pareto.Total)
	assert.Equal(t, 6.0, res.Pareto.Rows[0].Value)
	assert.Empty(t, res.Critical)

	_, err = svc.Pareto(ParetoRequest{CategoryColumn: "defect_type", Threshold: 120})
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))

	_, err = svc.Pareto(ParetoRequest{CategoryColumn: "nope"})
	assert.True(t, errors.HasCode(err, errors.CodeUnknownColumn))
}

func TestVersionConflict(t *testing.T) {
	svc := loadedService(t)
	_, err := svc.Load(context.Background(), "defects.csv", strings.NewReader(defectsCSV))
	require.NoError(t, err)

	_, err = svc.Control(1, "weight")
	assert.True(t, errors.HasCode(err, errors.CodeConflict))

	c, err := svc.Control(2, "weight")
	require.NoError(t, err)
	assert.Equal(t, 4, c.Limits.N)
}

func TestAnalyses(t *testing.T) {
	svc := loadedService(t)

	sum, err := svc.Describe(0, "weight")
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Count)
	assert.Equal(t, 1, sum.MissingCount)

	strata, err := svc.Stratify(0, "line", "count")
	require.NoError(t, err)
	require.Len(t, strata.Groups, 3)
	assert.Equal(t, "L1", strata.Groups[0].Key)

	h, err := svc.Histogram(0, "count", 2)
	require.NoError(t, err)
	assert.Len(t, h.Bins, 2)

	corr, err := svc.Correlate(0, "weight", "count")
	require.NoError(t, err)
	assert.Equal(t, 4, corr.Pairs)

	_, err = svc.Stratify(0, "line", "defect_type")
	assert.Error(t, err)

	p, err := svc.Profile(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, p.Columns, 2)
}

func TestDPMO(t *testing.T) {
	svc := newTestService(t)

	r, err := svc.DPMO(5, 100, 10)
	require.NoError(t, err)
	assert.InDelta(t, 5000.0, r.DPMO, 1e-9)

	_, err = svc.DPMO(2000, 100, 10)
	assert.True(t, errors.HasCode(err, errors.CodeDefectsExceedOpportunities))
}

func TestPrepare(t *testing.T) {
	svc := loadedService(t)

	info, err := svc.Prepare(PrepareRequest{Op: OpDropMissing, Columns: []string{"weight"}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), info.Version)
	assert.Equal(t, 4, info.Rows)

	_, err = svc.Prepare(PrepareRequest{Op: OpFillMissing, Strategy: "mode"})
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))

	info, err = svc.Prepare(PrepareRequest{Op: OpConvert, Column: "count", Kind: table.KindCategorical, Version: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), info.Version)
	assert.Equal(t, table.KindCategorical, info.Columns[3].Kind)

	_, err = svc.Prepare(PrepareRequest{Op: "shuffle"})
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}

func TestPrepare_ConcurrentChangesAreNotLost(t *testing.T) {
	svc := loadedService(t)

	const workers = 6
	var wg sync.WaitGroup
	results := make([]*session.SnapshotInfo, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Prepare(PrepareRequest{Op: OpFillMissing, Strategy: table.FillMean})
		}(i)
	}
	wg.Wait()

	versions := make(map[int64]bool)
	for i, err := range errs {
		if err != nil {
			assert.True(t, errors.HasCode(err, errors.CodeConflict), "worker %d: %v", i, err)
			continue
		}
		assert.False(t, versions[results[i].Version], "version %d installed twice", results[i].Version)
		versions[results[i].Version] = true
	}
	require.NotEmpty(t, versions)

	cur, err := svc.Current()
	require.NoError(t, err)
	assert.Equal(t, int64(1+len(versions)), cur.Version)
}

func TestLoadCheckSheet(t *testing.T) {
	svc := newTestService(t)
	sheet, err := svc.Sheets().Create(checksheet.Definition{
		Type: checksheet.DefectCount,
		Fields: []checksheet.Field{
			{Name: "defect", Type: checksheet.FieldCategory},
			{Name: "count", Type: checksheet.FieldNumeric},
		},
	})
	require.NoError(t, err)

	_, err = svc.LoadCheckSheet(sheet.ID.String())
	assert.True(t, errors.HasCode(err, errors.CodeEmptyTable))

	require.NoError(t, sheet.Record(map[string]string{"defect": "dent", "count": "4"}))
	require.NoError(t, sheet.Record(map[string]string{"defect": "crack", "count": "1"}))

	info, err := svc.LoadCheckSheet(sheet.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 2, info.Rows)

	res, err := svc.Pareto(ParetoRequest{CategoryColumn: "defect", ValueColumn: "count"})
	require.NoError(t, err)
	assert.Equal(t, "dent", res.Pareto.Rows[0].Category)
	assert.Equal(t, 80.0, res.Pareto.Rows[0].CumulativePct)
}
