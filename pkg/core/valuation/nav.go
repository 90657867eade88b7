package valuation

import (
	"errors"

	"intrinsic_valuation/pkg/core/validate"
	"intrinsic_valuation/pkg/models"
)

// ErrNoBalanceSheets is returned when statements carry no balance sheet.
var ErrNoBalanceSheets = errors.New("no balance sheets")

// CalculateNAV values equity from the balance sheet.
//
// FORMULA:
//
//	Adjusted Assets = Total Assets + Σ adjustments
//	NAV             = Adjusted Assets - Total Liabilities
//	Tangible NAV    = NAV - Goodwill - Intangibles
func CalculateNAV(in models.NAVInputs) (*models.NAVResult, error) {
	check := validate.ValidateNAVInputs(in)
	if !check.IsValid {
		return nil, &ValidationError{Messages: check.Errors}
	}

	adjusted := in.TotalAssets
	for _, adj := range in.AssetAdjustments {
		adjusted += adj.Amount
	}
	nav := adjusted - in.TotalLiabilities
	tangible := nav - in.Goodwill - in.IntangibleAssets

	res := &models.NAVResult{
		BookValue:           in.TotalAssets - in.TotalLiabilities,
		AdjustedAssets:      adjusted,
		TotalLiabilities:    in.TotalLiabilities,
		NetAssetValue:       nav,
		NAVPerShare:         nav / in.SharesOutstanding,
		TangibleNAV:         tangible,
		TangibleNAVPerShare: tangible / in.SharesOutstanding,
		Warnings:            append([]string{}, check.Warnings...),
	}
	if err := requireFinite("net asset value", res.NAVPerShare, res.TangibleNAVPerShare); err != nil {
		return nil, err
	}
	if tangible < 0 && nav >= 0 {
		res.Warnings = append(res.Warnings, "Tangible net asset value is negative - value rests on goodwill and intangibles")
	}
	return res, nil
}

func latestBalanceSheet(fin models.Financials) (models.BalanceSheet, bool) {
	var latest models.BalanceSheet
	found := false
	for _, bs := range fin.BalanceSheets {
		if !found || bs.Date > latest.Date {
			latest = bs
			found = true
		}
	}
	return latest, found
}

// NAVInputsFromFinancials builds NAV inputs from the latest balance sheet.
func NAVInputsFromFinancials(fin models.Financials, sharesOutstanding float64) (models.NAVInputs, error) {
	bs, ok := latestBalanceSheet(fin)
	if !ok {
		return models.NAVInputs{}, ErrNoBalanceSheets
	}
	return models.NAVInputs{
		TotalAssets:       bs.TotalAssets,
		TotalLiabilities:  bs.TotalLiabilities,
		Goodwill:          bs.Goodwill,
		IntangibleAssets:  bs.IntangibleAssets,
		SharesOutstanding: sharesOutstanding,
	}, nil
}
