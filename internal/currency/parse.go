package currency

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// MaxIntegerDigits bounds the integer part of an accepted amount.
	MaxIntegerDigits = 30
	// MaxFractionDigits bounds the scale of an accepted amount.
	MaxFractionDigits = 30

	maxAmountLength = 96
)

var (
	maxMagnitude = decimal.New(1, MaxIntegerDigits)

	// A comma may only separate complete groups of three integer digits.
	groupedAmount = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d*)?$`)
)

// ParseAmount parses user supplied text such as "1,234.50" or "-42.1".
// Surrounding whitespace is ignored. Commas are accepted only as thousands
// separators in the integer part, so "1,2,3" and ",5" are rejected. The
// result is checked with CheckAmount.
func ParseAmount(raw string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("%w: empty input", ErrInvalidAmount)
	}
	if len(cleaned) > maxAmountLength {
		return decimal.Zero, fmt.Errorf("%w: longer than %d characters", ErrInvalidAmount, maxAmountLength)
	}
	if strings.Contains(cleaned, thousandSeparator) {
		if !groupedAmount.MatchString(cleaned) {
			return decimal.Zero, fmt.Errorf("%w: misplaced grouping in %q", ErrInvalidAmount, raw)
		}
		cleaned = strings.ReplaceAll(cleaned, thousandSeparator, "")
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	if err := CheckAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// CheckAmount reports ErrInvalidAmount when d has more than MaxIntegerDigits
// integer digits or a scale finer than MaxFractionDigits. The exponent is
// checked first so that the comparison never rescales a huge exponent.
func CheckAmount(d decimal.Decimal) error {
	exp := d.Exponent()
	if exp < -MaxFractionDigits {
		return fmt.Errorf("%w: more than %d decimal places", ErrInvalidAmount, MaxFractionDigits)
	}
	if exp >= MaxIntegerDigits || d.Abs().GreaterThanOrEqual(maxMagnitude) {
		return fmt.Errorf("%w: more than %d integer digits", ErrInvalidAmount, MaxIntegerDigits)
	}
	return nil
}
