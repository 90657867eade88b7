package report

import (
	"math"

	"github.com/shopspring/decimal"
)

const notAvailable = "n/a"

var hundred = decimal.NewFromInt(100)

// money renders v rounded half away from zero to 2 dp.
func money(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return notAvailable
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

// percent renders a rate such as 0.085 as "8.50%".
func percent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return notAvailable
	}
	return decimal.NewFromFloat(v).Mul(hundred).StringFixed(2) + "%"
}

func ratio(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return notAvailable
	}
	return decimal.NewFromFloat(v).StringFixed(4)
}
