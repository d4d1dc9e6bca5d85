// Package pricemath holds the rounding and average-price arithmetic shared by
// the lifecycle engine and the background fill generators.
package pricemath

import (
	"github.com/shopspring/decimal"
)

// DefaultPrecision is the number of fractional decimal digits used when no
// FIXimulatorPricePrecision setting is configured.
const DefaultPrecision int32 = 4

// Round rounds half away from zero to precision fractional digits.
func Round(x decimal.Decimal, precision int32) decimal.Decimal {
	return x.Round(precision)
}

// WeightedAvg returns the average price after adding addQty shares at addPx
// to priorQty shares at priorAvg, rounded to precision. priorQty+addQty must
// be positive; a zero total yields zero.
func WeightedAvg(priorQty int64, priorAvg decimal.Decimal, addQty int64, addPx decimal.Decimal, precision int32) decimal.Decimal {
	total := priorQty + addQty
	if total <= 0 {
		return decimal.Zero
	}
	num := priorAvg.Mul(decimal.NewFromInt(priorQty)).Add(addPx.Mul(decimal.NewFromInt(addQty)))
	return num.Div(decimal.NewFromInt(total)).Round(precision)
}

// BustAvg returns the average price after removing removeQty shares at
// removePx from executed shares at avg. A bust that removes everything
// resets the average to zero.
func BustAvg(executed int64, avg decimal.Decimal, removeQty int64, removePx decimal.Decimal, precision int32) decimal.Decimal {
	remaining := executed - removeQty
	if remaining <= 0 {
		return decimal.Zero
	}
	num := avg.Mul(decimal.NewFromInt(executed)).Sub(removePx.Mul(decimal.NewFromInt(removeQty)))
	return num.Div(decimal.NewFromInt(remaining)).Round(precision)
}

// CorrectAvg returns the average price after restating a prior fill of
// oldQty@oldPx as newQty@newPx against executed shares at avg.
func CorrectAvg(executed int64, avg decimal.Decimal, oldQty int64, oldPx decimal.Decimal, newQty int64, newPx decimal.Decimal, precision int32) decimal.Decimal {
	newCum := executed - oldQty + newQty
	if newCum <= 0 {
		return decimal.Zero
	}
	num := avg.Mul(decimal.NewFromInt(executed)).
		Sub(oldPx.Mul(decimal.NewFromInt(oldQty))).
		Add(newPx.Mul(decimal.NewFromInt(newQty)))
	return num.Div(decimal.NewFromInt(newCum)).Round(precision)
}
