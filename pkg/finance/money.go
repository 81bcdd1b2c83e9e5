package finance

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var euroPrinter = message.NewPrinter(language.English)

// RoundCurrency rounds an amount to whole cents.
func RoundCurrency(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// FormatEuro renders whole euros with thousands separators, e.g. "-12,500€".
func FormatEuro(v float64) string {
	return euroPrinter.Sprintf("%d€", decimal.NewFromFloat(v).Round(0).IntPart())
}
