// Package money converts amounts between the database, business logic and
// wire representations, and formats Rupiah for printed documents.
//
// Amounts are decimal.Decimal in logic, pgtype.Numeric at the DB edge and
// two-decimal strings ("150000.00") in JSON.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrInvalidAmount is returned by Parse for malformed or negative input.
var ErrInvalidAmount = errors.New("nominal tidak valid")

var hundred = decimal.NewFromInt(100)

// FromNumeric converts a pgtype.Numeric to decimal. NULL becomes zero.
func FromNumeric(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ToNumeric converts a decimal to pgtype.Numeric, rounded to two places.
func ToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}

// String renders a numeric for JSON. NULL renders as "0.00".
func String(n pgtype.Numeric) string {
	return FromNumeric(n).StringFixed(2)
}

// StringPtr renders a nullable numeric; NULL becomes nil.
func StringPtr(n pgtype.Numeric) *string {
	if !n.Valid {
		return nil
	}
	s := String(n)
	return &s
}

// Parse reads a non-negative amount from a request string.
// An empty string is zero.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// Percent returns base * rate / 100 rounded to two places.
func Percent(base, rate decimal.Decimal) decimal.Decimal {
	return base.Mul(rate).Div(hundred).Round(2)
}

var idPrinter = message.NewPrinter(language.Indonesian)

// Rupiah formats an amount the way Indonesian receipts print it: "Rp 1.500.000".
// Cents are only shown when non-zero.
func Rupiah(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	whole := d.Truncate(0)
	out := idPrinter.Sprintf("%d", whole.IntPart())
	if frac := d.Sub(whole); !frac.IsZero() {
		out += fmt.Sprintf(",%02d", frac.Shift(2).Round(0).IntPart())
	}
	return sign + "Rp " + out
}
