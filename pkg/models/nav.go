package models

type AssetAdjustment struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

type NAVInputs struct {
	TotalAssets       float64           `json:"total_assets"`
	TotalLiabilities  float64           `json:"total_liabilities"`
	Goodwill          float64           `json:"goodwill,omitempty"`
	IntangibleAssets  float64           `json:"intangible_assets,omitempty"`
	SharesOutstanding float64           `json:"shares_outstanding"`
	AssetAdjustments  []AssetAdjustment `json:"asset_adjustments,omitempty"`
}

type NAVResult struct {
	BookValue           float64  `json:"book_value"`
	AdjustedAssets      float64  `json:"adjusted_assets"`
	TotalLiabilities    float64  `json:"total_liabilities"`
	NetAssetValue       float64  `json:"net_asset_value"`
	NAVPerShare         float64  `json:"nav_per_share"`
	TangibleNAV         float64  `json:"tangible_nav"`
	TangibleNAVPerShare float64  `json:"tangible_nav_per_share"`
	Warnings            []string `json:"warnings,omitempty"`
}
