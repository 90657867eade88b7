// Package report renders valuation runs as Markdown and HTML.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"intrinsic_valuation/pkg/core/store"
	"intrinsic_valuation/pkg/core/utils"
	"intrinsic_valuation/pkg/core/valuation"
	"intrinsic_valuation/pkg/models"
)

// Document is the result payload persisted for each run.
type Document struct {
	Response    valuation.Response             `json:"response"`
	Sensitivity *valuation.SensitivityResponse `json:"sensitivity,omitempty"`
}

// Header identifies the run a report was built from.
type Header struct {
	ID        string
	Ticker    string
	CreatedAt string
}

// Markdown renders a stored run.
func Markdown(run store.Run) (string, error) {
	var doc Document
	if err := json.Unmarshal(run.Result, &doc); err != nil {
		return "", fmt.Errorf("failed to decode run %s: %w", run.ID, err)
	}
	if doc.Response.Kind == "" {
		doc.Response.Kind = valuation.CalculatorKind(run.Kind)
	}

	h := Header{ID: run.ID, Ticker: run.Ticker}
	if !run.CreatedAt.IsZero() {
		h.CreatedAt = run.CreatedAt.UTC().Format("2006-01-02 15:04 UTC")
	}
	return Build(h, doc), nil
}

// HTML renders a stored run as an HTML fragment.
func HTML(run store.Run) (string, error) {
	md, err := Markdown(run)
	if err != nil {
		return "", err
	}
	return utils.MarkdownToHTML(md)
}

// Build renders the summary, projections, sensitivity matrix and warnings.
func Build(h Header, doc Document) string {
	var b strings.Builder
	resp := doc.Response

	title := valuation.ModelName(resp.Kind)
	if h.Ticker != "" {
		title += ": " + h.Ticker
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if h.ID != "" {
		fmt.Fprintf(&b, "Run `%s`", h.ID)
		if h.CreatedAt != "" {
			fmt.Fprintf(&b, ", %s", h.CreatedAt)
		}
		b.WriteString("\n\n")
	}

	b.WriteString("## Summary\n\n")
	writeRows(&b, []string{"Metric", "Value"}, summaryRows(resp))

	if header, rows := projectionRows(resp); len(rows) > 0 {
		b.WriteString("\n## Projections\n\n")
		writeRows(&b, header, rows)
	}

	if doc.Sensitivity != nil {
		if tbl := doc.Sensitivity.Table(); tbl != nil && len(tbl.Matrix) > 0 && len(tbl.Matrix[0]) > 0 {
			b.WriteString("\n## Sensitivity\n\n")
			writeMatrix(&b, doc.Sensitivity.Kind, tbl)
		}
	}

	if warnings := resp.Warnings(); len(warnings) > 0 {
		b.WriteString("\n## Warnings\n\n")
		for _, w := range warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}

	return b.String()
}

func writeRows(b *strings.Builder, header []string, rows [][]string) {
	b.WriteString("| " + strings.Join(header, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat("---|", len(header)) + "\n")
	for _, row := range rows {
		b.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}
}

func summaryRows(resp valuation.Response) [][]string {
	switch {
	case resp.DCF != nil:
		r := resp.DCF
		return [][]string{
			{"Intrinsic value per share", money(r.IntrinsicValuePerShare)},
			{"Enterprise value", money(r.EnterpriseValue)},
			{"Equity value", money(r.EquityValue)},
			{"PV of cash flows", money(r.PVOfCashFlows)},
			{"Terminal value", money(r.TerminalValue)},
			{"Terminal value (PV)", money(r.TerminalValuePV)},
			{"Terminal value share", percent(r.TerminalValueShare)},
		}
	case resp.DDM != nil:
		r := resp.DDM
		rows := [][]string{
			{"Model", string(r.ModelType)},
			{"Intrinsic value per share", money(r.IntrinsicValuePerShare)},
			{"Intrinsic value", money(r.IntrinsicValue)},
			{"Current dividend yield", percent(r.CurrentDividendYield)},
			{"Forward dividend yield", percent(r.ForwardDividendYield)},
			{"PV of dividends", money(r.TotalPVOfDividends)},
		}
		if r.TerminalValue != nil && r.TerminalValuePV != nil {
			rows = append(rows,
				[]string{"Terminal value", money(*r.TerminalValue)},
				[]string{"Terminal value (PV)", money(*r.TerminalValuePV)},
			)
		}
		return append(rows, []string{"Years projected", fmt.Sprint(r.YearsProjected)})
	case resp.EPV != nil:
		r := resp.EPV
		return [][]string{
			{"EPV per share", money(r.EPVPerShare)},
			{"EPV total value", money(r.EPVTotalValue)},
			{"Normalized earnings", money(r.NormalizedEarnings)},
			{"Maintenance capex", money(r.MaintenanceCapex)},
			{"Adjusted earnings", money(r.AdjustedEarnings)},
			{"Cost of capital", percent(r.CostOfCapital)},
			{"Earnings yield", percent(r.EarningsYield)},
			{"Quality score", money(r.EarningsNormalization.QualityScore)},
			{"Moat", string(r.MoatAnalysis.MoatStrength)},
			{"Confidence", string(r.ConfidenceLevel)},
		}
	case resp.NAV != nil:
		r := resp.NAV
		return [][]string{
			{"NAV per share", money(r.NAVPerShare)},
			{"Net asset value", money(r.NetAssetValue)},
			{"Book value", money(r.BookValue)},
			{"Adjusted assets", money(r.AdjustedAssets)},
			{"Total liabilities", money(r.TotalLiabilities)},
			{"Tangible NAV", money(r.TangibleNAV)},
			{"Tangible NAV per share", money(r.TangibleNAVPerShare)},
		}
	}
	return nil
}

func projectionRows(resp valuation.Response) ([]string, [][]string) {
	switch {
	case resp.DCF != nil:
		rows := make([][]string, len(resp.DCF.Projections))
		for i, p := range resp.DCF.Projections {
			rows[i] = []string{fmt.Sprint(p.Year), money(p.FreeCashFlow), percent(p.GrowthRate), ratio(p.DiscountFactor), money(p.PresentValue)}
		}
		return []string{"Year", "Free cash flow", "Growth", "Discount factor", "Present value"}, rows
	case resp.DDM != nil:
		rows := make([][]string, len(resp.DDM.DividendProjections))
		for i, p := range resp.DDM.DividendProjections {
			rows[i] = []string{fmt.Sprint(p.Year), money(p.Dividend), percent(p.GrowthRate), ratio(p.DiscountFactor), money(p.PresentValue)}
		}
		return []string{"Year", "Dividend", "Growth", "Discount factor", "Present value"}, rows
	}
	return nil, nil
}

// axisFormat labels the matrix axes: DDM and DCF sweep rates, EPV sweeps an
// earnings level against a rate, NAV sweeps two levels.
func axisFormat(kind valuation.CalculatorKind) (rows, cols func(float64) string, corner string) {
	switch kind {
	case valuation.KindEPV:
		return money, percent, "Earnings \\ Cost of capital"
	case valuation.KindNAV:
		return money, money, "Assets \\ Liabilities"
	default:
		return percent, percent, "Growth \\ Discount"
	}
}

func writeMatrix(b *strings.Builder, kind valuation.CalculatorKind, tbl *models.SensitivityTable) {
	rowLabel, colLabel, corner := axisFormat(kind)

	header := []string{corner}
	for _, cell := range tbl.Matrix[0] {
		header = append(header, colLabel(cell.DiscountRate))
	}

	rows := make([][]string, len(tbl.Matrix))
	for i, line := range tbl.Matrix {
		row := []string{rowLabel(line[0].GrowthRate)}
		for _, cell := range line {
			if !cell.Computable {
				row = append(row, notAvailable)
				continue
			}
			row = append(row, money(cell.Value))
		}
		rows[i] = row
	}
	writeRows(b, header, rows)
}
