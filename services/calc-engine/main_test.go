package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intrinsic_valuation/pkg/core/valuation"
)

const zeroGrowth = `{model_type: "zero", current_dividend: 4, shares_outstanding: 10, required_return: 0.08}`

func TestRunCalculate(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(options{mode: "calculate", kind: "ddm", data: zeroGrowth, format: "json"}, &out))

	var resp valuation.Response
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	require.NotNil(t, resp.DDM)
	assert.InDelta(t, 50.0, resp.DDM.IntrinsicValuePerShare, 1e-9)
}

func TestRunMarkdownFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nav.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"total_assets": 1000, "total_liabilities": 400, "shares_outstanding": 10}`), 0644))

	var out bytes.Buffer
	require.NoError(t, run(options{mode: "calculate", kind: "nav", file: path, format: "md"}, &out))
	assert.Contains(t, out.String(), "# Net Asset Value")
	assert.Contains(t, out.String(), "| NAV per share | 60.00 |")
}

func TestRunSensitivity(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "absent.yaml")

	var out bytes.Buffer
	require.NoError(t, run(options{mode: "sensitivity", kind: "ddm", data: zeroGrowth, format: "md", config: cfg}, &out))
	assert.Contains(t, out.String(), "## Sensitivity")
	assert.Contains(t, out.String(), "Growth \\ Discount")
}

func TestRunValidate(t *testing.T) {
	var out bytes.Buffer
	err := run(options{mode: "validate", kind: "ddm", data: `{"model_type":"gordon","current_dividend":2,"shares_outstanding":1,"required_return":0.05,"gordon_growth_rate":0.06}`}, &out)
	assert.Error(t, err)
	assert.Contains(t, out.String(), `"is_valid": false`)
}

func TestRunErrors(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run(options{mode: "calculate", kind: "ddm"}, &out))
	assert.Error(t, run(options{mode: "calculate", kind: "rim", data: zeroGrowth}, &out))
	assert.Error(t, run(options{mode: "explode", kind: "ddm", data: zeroGrowth}, &out))
	assert.Error(t, run(options{mode: "calculate", kind: "ddm", data: zeroGrowth, format: "pdf"}, &out))
	assert.Error(t, run(options{mode: "calculate", kind: "ddm", file: "/does/not/exist"}, &out))
}
