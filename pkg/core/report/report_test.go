package report

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intrinsic_valuation/pkg/core/store"
	"intrinsic_valuation/pkg/core/valuation"
	"intrinsic_valuation/pkg/models"
)

func gordonRun(t *testing.T) store.Run {
	t.Helper()
	in := models.DDMInputs{
		ModelType:         models.DDMGordon,
		CurrentDividend:   2.00,
		SharesOutstanding: 100,
		RequiredReturn:    0.10,
		GordonGrowthRate:  0.05,
	}
	resp, err := valuation.Run(valuation.Request{Kind: valuation.KindDDM, DDM: &in})
	require.NoError(t, err)

	sens, err := valuation.CalculateDDMSensitivity(in, []float64{0, 0.05}, []float64{-0.01, 0})
	require.NoError(t, err)

	result, err := json.Marshal(Document{
		Response:    resp,
		Sensitivity: &valuation.SensitivityResponse{Kind: valuation.KindDDM, DDM: sens},
	})
	require.NoError(t, err)

	return store.Run{
		ID:        "5f0c6a4e-8a53-4a43-9a43-1b1d1a3e9a10",
		Ticker:    "KO",
		Kind:      "ddm",
		Result:    result,
		CreatedAt: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "42.00", money(42))
	assert.Equal(t, "-1.24", money(-1.235))
	assert.Equal(t, "8.50%", percent(0.085))
	assert.Equal(t, "0.8264", ratio(0.826446))
	assert.Equal(t, "n/a", money(math.NaN()))
	assert.Equal(t, "n/a", percent(math.Inf(1)))
}

func TestMarkdown(t *testing.T) {
	md, err := Markdown(gordonRun(t))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(md, "# Dividend Discount Model: KO\n"))
	assert.Contains(t, md, "2024-03-01 09:30 UTC")
	assert.Contains(t, md, "| Intrinsic value per share | 42.00 |")
	assert.Contains(t, md, "| Current dividend yield | 4.76% |")
	assert.Contains(t, md, "| 1 | 2.10 | 5.00% | 1.1000 | 1.91 |")
	assert.Contains(t, md, "## Sensitivity")
	assert.NotContains(t, md, "## Warnings")
}

func TestMarkdownRejectsCorruptRun(t *testing.T) {
	_, err := Markdown(store.Run{ID: "x", Result: json.RawMessage(`{`)})
	assert.Error(t, err)
}

func TestHTML(t *testing.T) {
	html, err := HTML(gordonRun(t))
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	assert.Equal(t, "Dividend Discount Model: KO", doc.Find("h1").Text())
	tables := doc.Find("table")
	require.Equal(t, 3, tables.Length())

	summary := tables.Eq(0)
	assert.Equal(t, "42.00", summary.Find("tbody tr").Eq(1).Find("td").Eq(1).Text())

	projections := tables.Eq(1)
	assert.Equal(t, 10, projections.Find("tbody tr").Length())

	// Growth 10% against a 10% discount rate has no finite value.
	sensitivity := tables.Eq(2)
	rows := sensitivity.Find("tbody tr")
	require.Equal(t, 2, rows.Length())
	assert.Equal(t, "5.00%", rows.Eq(0).Find("td").First().Text())
	assert.Equal(t, "52.50", rows.Eq(0).Find("td").Eq(1).Text())
	assert.Equal(t, "42.00", rows.Eq(0).Find("td").Eq(2).Text())
	assert.Equal(t, "10.00%", rows.Eq(1).Find("td").First().Text())
	assert.Equal(t, "n/a", rows.Eq(1).Find("td").Eq(1).Text())
	assert.Equal(t, "n/a", rows.Eq(1).Find("td").Eq(2).Text())
}

func TestBuildWarningsAndAxes(t *testing.T) {
	nav := &models.NAVResult{NAVPerShare: 5, Warnings: []string{"Tangible NAV is negative"}}
	sens := &models.NAVSensitivity{SensitivityTable: models.SensitivityTable{
		Matrix: [][]models.SensitivityCell{{{GrowthRate: 1000, DiscountRate: 600, Value: 20, Computable: true}}},
	}}

	md := Build(Header{}, Document{
		Response:    valuation.Response{Kind: valuation.KindNAV, NAV: nav},
		Sensitivity: &valuation.SensitivityResponse{Kind: valuation.KindNAV, NAV: sens},
	})

	assert.True(t, strings.HasPrefix(md, "# Net Asset Value\n"))
	assert.Contains(t, md, "| 1000.00 | 20.00 |")
	assert.Contains(t, md, "600.00")
	assert.Contains(t, md, "## Warnings\n\n- Tangible NAV is negative\n")
	assert.NotContains(t, md, "## Projections")
}
