// Package money holds currency amounts as integer minor units.
package money

import "fmt"

// Amount is a currency value in minor units (cents). It is stored and
// serialized as a plain integer.
type Amount int64

func FromMajor(units int64) Amount { return Amount(units * 100) }

func (a Amount) Add(b Amount) Amount { return a + b }

func (a Amount) Sub(b Amount) Amount { return a - b }

func (a Amount) Mul(qty int) Amount { return a * Amount(qty) }

// Percent returns round(a * pct / 100), rounding half away from zero.
func (a Amount) Percent(pct int64) Amount {
	p := int64(a) * pct
	if p >= 0 {
		return Amount((p + 50) / 100)
	}
	return Amount((p - 50) / 100)
}

// ClampZero returns a, or zero when a is negative.
func (a Amount) ClampZero() Amount {
	if a < 0 {
		return 0
	}
	return a
}

func Min(a, b Amount) Amount {
	if a < b {
		return a
	}
	return b
}

// String renders the amount with two decimals, e.g. 1234 -> "12.34".
func (a Amount) String() string {
	sign := ""
	v := int64(a)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
