package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"spckit/internal/errors"
)

const defectsCSV = `defect_type,line,weight,count
dent,L1,10.1,3
scratch,L1,9.8,1
dent,L2,10.4,2
crack,L2,,4
dent,L3,9.9,1
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPareto_CSV(t *testing.T) {
	path := writeFile(t, "defects.csv", defectsCSV)

	out, err := run(t, "pareto", path, "defect_type", "--format", "csv")
	require.NoError(t, err)
	assert.Equal(t, "category,value,individual_pct,cumulative_pct,critical\n"+
		"dent,3.00,60.00,60.00,yes\n"+
		"scratch,1.00,20.00,80.00,yes\n"+
		"crack,1.00,20.00,100.00,no\n", out)
}

func TestPareto_Chart(t *testing.T) {
	path := writeFile(t, "defects.csv", defectsCSV)
	chartPath := filepath.Join(t.TempDir(), "pareto.png")

	_, err := run(t, "pareto", path, "defect_type", "--value", "count", "--chart", chartPath, "--format", "json")
	require.NoError(t, err)

	data, err := os.ReadFile(chartPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestDescribe(t *testing.T) {
	path := writeFile(t, "defects.csv", defectsCSV)

	out, err := run(t, "describe", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Dataset: defects.csv")
	assert.Contains(t, out, "weight")
	assert.Contains(t, out, "numeric")

	out, err = run(t, "describe", path, "weight", "--format", "json")
	require.NoError(t, err)
	assert.Equal(t, int64(4), gjson.Get(out, "count").Int())
	assert.Equal(t, int64(1), gjson.Get(out, "missing_count").Int())
}

func TestUnknownColumn(t *testing.T) {
	path := writeFile(t, "defects.csv", defectsCSV)

	_, err := run(t, "control", path, "pressure")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeUnknownColumn))
}

func TestDPMO_JSON(t *testing.T) {
	out, err := run(t, "dpmo", "0", "10", "1", "--format", "json")
	require.NoError(t, err)
	assert.Equal(t, "+Inf", gjson.Get(out, "sigma_display").String())
	assert.Equal(t, "six_sigma", gjson.Get(out, "tier").String())

	_, err = run(t, "dpmo", "x", "10", "1")
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}

func TestIshikawa(t *testing.T) {
	path := writeFile(t, "delays.yaml", `effect: Late deliveries
causes:
  machines:
    - cause: Forklift breakdowns
      whys: [No preventive maintenance]
  Methods:
    - cause: Manual picking lists
`)

	out, err := run(t, "ishikawa", path, "--format", "dot")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "digraph ishikawa {"))

	out, err = run(t, "ishikawa", path, "--format", "csv", "--category", "Machines")
	require.NoError(t, err)
	assert.Equal(t, "Category,Cause,Whys\nMachines,Forklift breakdowns,No preventive maintenance\n", out)

	bad := writeFile(t, "bad.yaml", "effect: x\ncauses:\n  Money:\n    - cause: Cash\n")
	_, err = run(t, "ishikawa", bad)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}
