package workflow

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Plain signed decimal notation only. Exponent forms such as "1e30000000"
// are refused before decimal sees them: comparing one rescales to a huge
// big.Int.
var amountPattern = regexp.MustCompile(`^[+-]?\d{1,15}(\.\d{1,8})?$`)

var ErrAmountFormat = errors.New("amount is not a plain decimal")

// ParseAmount parses a money value written as plain digits with an
// optional sign and fraction.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if !amountPattern.MatchString(raw) {
		return decimal.Zero, ErrAmountFormat
	}
	return decimal.NewFromString(raw)
}

// wholeCents reports whether amount has no sub-cent digits.
func wholeCents(amount decimal.Decimal) bool {
	return amount.Equal(amount.Truncate(2))
}
