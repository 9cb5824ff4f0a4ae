// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts exported by the
// bank (decimal comma, grouped thousands, trailing currency code) and for
// rendering aggregated amounts back to display strings.
package core

import (
	"math"
	"math/big"
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// MoneyParser turns localized money cells into exact decimal amounts.
type MoneyParser struct {
	// Currencies are markers stripped anywhere in the cell before conversion.
	Currencies []string
}

// DefaultMoneyParser strips the ruble markers used by the statement export.
var DefaultMoneyParser = MoneyParser{Currencies: []string{"RUB", "₽"}}

// ParseMoney converts a statement money cell to float64.
//
// It never fails: missing ("") or unparseable input yields 0.
//
// Examples:
//
//	ParseMoney("1.234,56 RUB") -> 1234.56
//	ParseMoney("50 000,00")    -> 50000
//	ParseMoney("n/a")          -> 0
func ParseMoney(raw string) float64 {
	f := DefaultMoneyParser.Parse(raw).InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	return f
}

// Parse converts a money cell to an exact decimal.
//
// A comma is always the decimal separator; when a comma is present every dot
// is a thousands separator. Without a comma a single dot is the decimal point
// and several dots are thousands separators. Whitespace of any kind is a
// thousands separator too. The result is zero for anything left over that is
// not a number.
func (p MoneyParser) Parse(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero
	}
	for _, c := range p.Currencies {
		if c != "" {
			s = strings.ReplaceAll(s, c, "")
		}
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return decimal.Zero
	}

	switch {
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	if !isPlainNumber(s) {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// isPlainNumber reports whether s is an optional sign, digits and at most one
// decimal point. Exponents and anything else are rejected.
func isPlainNumber(s string) bool {
	if s != "" && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}
	digits, dots := 0, 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}

// FormatMoney renders an amount with space-grouped thousands and exactly two
// decimals, e.g. "-1 234 567.80". This is the only place amounts are rounded.
func FormatMoney(d decimal.Decimal) string {
	fixed := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	grouped := intPart
	if n, ok := new(big.Int).SetString(intPart, 10); ok {
		grouped = strings.ReplaceAll(humanize.BigComma(n), ",", " ")
	}

	sign := ""
	if d.IsNegative() && fixed != "0.00" {
		sign = "-"
	}
	return sign + grouped + "." + frac
}

// RoundCents rounds to two decimals for machine-readable outputs (CSV).
func RoundCents(d decimal.Decimal) string {
	return d.StringFixed(2)
}
