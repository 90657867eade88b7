package models

// SensitivityPoint is one evaluation of a one-dimensional sweep.
// When Computable is false, Value and PercentChange are zero.
type SensitivityPoint struct {
	Offset         float64 `json:"offset"`
	ParameterValue float64 `json:"parameter_value"`
	Value          float64 `json:"value"`
	PercentChange  float64 `json:"percent_change"`
	Computable     bool    `json:"computable"`
}

// SensitivityCell is one cell of the growth x discount matrix.
type SensitivityCell struct {
	GrowthRate   float64 `json:"growth_rate"`
	DiscountRate float64 `json:"discount_rate"`
	Value        float64 `json:"value"`
	Computable   bool    `json:"computable"`
}

// SensitivityTable is shared by every model's sensitivity result.
// Matrix rows follow the growth grid and columns the discount grid.
type SensitivityTable struct {
	BaseValue       float64             `json:"base_value"`
	GrowthOffsets   []float64           `json:"growth_offsets"`
	DiscountOffsets []float64           `json:"discount_offsets"`
	GrowthSweep     []SensitivityPoint  `json:"growth_sweep"`
	DiscountSweep   []SensitivityPoint  `json:"discount_sweep"`
	Matrix          [][]SensitivityCell `json:"matrix"`
}

type DDMSensitivity struct {
	ModelType DDMModelType `json:"model_type"`
	SensitivityTable
}

// EPVSensitivity uses earnings-level change as the growth axis and cost of
// capital as the discount axis, plus a maintenance capex sweep.
type EPVSensitivity struct {
	SensitivityTable
	CapexSweep []SensitivityPoint `json:"capex_sweep"`
}

type DCFSensitivity struct {
	SensitivityTable
}

// NAVSensitivity uses asset value change as the growth axis and liability
// change as the discount axis.
type NAVSensitivity struct {
	SensitivityTable
}
