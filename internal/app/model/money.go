package model

import "github.com/shopspring/decimal"

// MoneyScale is the number of fractional digits kept for prices and totals.
const MoneyScale = 2

// MaxMoney is the largest amount a decimal(12,2) column holds.
var MaxMoney = decimal.RequireFromString("9999999999.99")

// RoundMoney rounds to two fractional digits, half up. decimal.Round rounds
// half away from zero, which is half up for the non-negative amounts priced
// here.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// HasMoneyScale reports whether d needs no more than two fractional digits.
func HasMoneyScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(MoneyScale))
}

// FormatMoney renders d with exactly two fractional digits.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(MoneyScale)
}
