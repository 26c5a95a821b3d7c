package utils

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Tolerance is the smallest amount treated as money (one cent).
const Tolerance = 0.01

var moneyPrinter = message.NewPrinter(language.English)

// Round2 rounds x to 2 decimal places (banking-style simple round).
func Round2(x float64) float64 {
	return decimal.NewFromFloat(ToNumber(x)).Round(2).InexactFloat64()
}

// ToNumber coerces any input to a finite float64. Non-numeric input yields 0; it never panics.
func ToNumber(x any) float64 {
	var f float64
	switch v := x.(type) {
	case nil:
		return 0
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint:
		f = float64(v)
	case uint32:
		f = float64(v)
	case uint64:
		f = float64(v)
	case *float64:
		if v == nil {
			return 0
		}
		f = *v
	case decimal.Decimal:
		f = v.InexactFloat64()
	case json.Number:
		return ToNumber(string(v))
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
		if s == "" {
			return 0
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return 0
		}
		f = d.InexactFloat64()
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// SafeSum adds values exactly, treating anything non-numeric as 0.
func SafeSum(values ...any) float64 {
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(decimal.NewFromFloat(ToNumber(v)))
	}
	return sum.InexactFloat64()
}

// ToLocal converts a foreign amount with a frozen rate, rounded to cents.
func ToLocal(foreign, rate float64) float64 {
	r := ToNumber(rate)
	if r == 0 {
		r = 1
	}
	return decimal.NewFromFloat(ToNumber(foreign)).
		Mul(decimal.NewFromFloat(r)).
		Round(2).
		InexactFloat64()
}

// ApproxZero reports whether x is below one cent in magnitude.
func ApproxZero(x float64) bool {
	return math.Abs(x) < Tolerance
}

// ApproxEqual reports whether a and b differ by less than one cent.
func ApproxEqual(a, b float64) bool {
	return ApproxZero(a - b)
}

// FormatMoney renders a local amount with two decimals and a currency prefix: "$1,234.50".
func FormatMoney(amount float64, symbol string) string {
	a := Round2(amount)
	if a < 0 {
		return "-" + symbol + moneyPrinter.Sprintf("%.2f", -a)
	}
	return symbol + moneyPrinter.Sprintf("%.2f", a)
}

// FormatFx renders a foreign amount, adding its local equivalent when the currencies differ:
// "100.00 USD (27,850.00 PKR)".
func FormatFx(foreignAmount float64, foreignCode string, localAmount float64, baseCode string) string {
	foreign := fmt.Sprintf("%s %s", moneyPrinter.Sprintf("%.2f", Round2(foreignAmount)), foreignCode)
	if foreignCode == "" || strings.EqualFold(foreignCode, baseCode) {
		return strings.TrimSpace(foreign)
	}
	return fmt.Sprintf("%s (%s %s)", foreign, moneyPrinter.Sprintf("%.2f", Round2(localAmount)), baseCode)
}
