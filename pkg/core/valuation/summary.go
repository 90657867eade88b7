package valuation

// ValuationLineItem is one row of a model comparison.
type ValuationLineItem struct {
	Kind       CalculatorKind `json:"kind"`
	ModelName  string         `json:"model_name"`
	SharePrice float64        `json:"share_price"`
	Warnings   int            `json:"warnings"`
	Error      string         `json:"error,omitempty"`
}

var modelNames = map[CalculatorKind]string{
	KindDCF: "Discounted Cash Flow",
	KindDDM: "Dividend Discount Model",
	KindEPV: "Earnings Power Value",
	KindNAV: "Net Asset Value",
}

// ModelName is the display name of a kind.
func ModelName(k CalculatorKind) string {
	if name, ok := modelNames[k]; ok {
		return name
	}
	return string(k)
}

// RunAll runs every request independently so the models can be compared side
// by side. A failing model is reported on its row and does not stop the rest.
func RunAll(reqs []Request) []ValuationLineItem {
	results := make([]ValuationLineItem, 0, len(reqs))
	for _, req := range reqs {
		item := ValuationLineItem{Kind: req.Kind, ModelName: ModelName(req.Kind)}
		resp, err := Run(req)
		if err != nil {
			item.Error = err.Error()
		} else {
			item.SharePrice = resp.PerShare()
			item.Warnings = len(resp.Warnings())
		}
		results = append(results, item)
	}
	return results
}
