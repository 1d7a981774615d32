package domain

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// maxAmountDigits is the length of the largest uint256 in decimal form.
const maxAmountDigits = 78

var (
	amountPattern  = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)
	integerPattern = regexp.MustCompile(`^[0-9]+$`)
)

// ToRaw scales a human amount by decimals into an integer string, e.g. "1.5" with 18 decimals
// becomes "1500000000000000000".
func ToRaw(amount string, decimals int32) (string, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return "", errors.Wrap(ErrInvalidAmount, "amount is empty")
	}

	if len(amount) > maxAmountDigits || !amountPattern.MatchString(amount) {
		return "", errors.Wrapf(ErrInvalidAmount, "%q is not a plain decimal number", truncate(amount))
	}

	whole, frac, _ := strings.Cut(amount, ".")
	frac = strings.TrimRight(frac, "0")
	if len(frac) > int(decimals) {
		return "", errors.Wrapf(ErrInvalidAmount, "%s has more than %d fractional digits", amount, decimals)
	}
	if len(strings.TrimLeft(whole, "0"))+int(decimals) > maxAmountDigits {
		return "", errors.Wrapf(ErrInvalidAmount, "%s is too large", amount)
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return "", errors.Wrapf(ErrInvalidAmount, "parse %q", amount)
	}
	if !d.IsPositive() {
		return "", errors.Wrapf(ErrInvalidAmount, "%s is not positive", amount)
	}

	scaled := d.Shift(decimals)
	return scaled.BigInt().String(), nil
}

// FromRaw converts a raw integer amount into its human value.
func FromRaw(raw string, decimals int32) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if !isRawInteger(raw) {
		return decimal.Zero, errors.Wrapf(ErrInvalidAmount, "raw amount %q is not an integer", truncate(raw))
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.Wrapf(ErrInvalidAmount, "parse raw amount %q", raw)
	}

	return d.Shift(-decimals), nil
}

// FormatUnits renders a raw amount with at least one fractional digit ("3000000", 6 -> "3.0").
func FormatUnits(raw string, decimals int32) (string, error) {
	d, err := FromRaw(raw, decimals)
	if err != nil {
		return "", err
	}

	s := d.String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s, nil
}

// IsPositiveInteger reports whether raw is an integer string greater than zero.
func IsPositiveInteger(raw string) bool {
	raw = strings.TrimSpace(raw)
	if !isRawInteger(raw) {
		return false
	}
	return strings.TrimLeft(raw, "0") != ""
}

func isRawInteger(raw string) bool {
	return len(raw) <= maxAmountDigits && integerPattern.MatchString(raw)
}

func truncate(s string) string {
	if len(s) > 32 {
		return s[:32] + "..."
	}
	return s
}
