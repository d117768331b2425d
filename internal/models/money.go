package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ISO 4217 exponents that differ from the usual two decimal places.
var minorUnitExponents = map[string]int32{
	"BIF": 0, "CLP": 0, "JPY": 0, "KRW": 0, "PYG": 0, "UGX": 0, "VND": 0, "XAF": 0, "XOF": 0,
	"BHD": 3, "IQD": 3, "JOD": 3, "KWD": 3, "LYD": 3, "OMR": 3, "TND": 3,
}

// MinorUnitExponent returns how many decimal places currency uses.
func MinorUnitExponent(currency string) int32 {
	if exp, ok := minorUnitExponents[strings.ToUpper(currency)]; ok {
		return exp
	}
	return 2
}

// FormatMinor renders an amount in minor units as a fixed-point major amount.
func FormatMinor(amount int64, currency string) string {
	exp := MinorUnitExponent(currency)
	return decimal.New(amount, -exp).StringFixed(exp)
}
