package token

import (
	"math/big"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// GweiDecimals is the scale between wei and gwei.
const GweiDecimals uint8 = 9

// maxUint256Digits is the number of decimal digits of 2^256-1.
const maxUint256Digits = 78

//nolint:gochecknoglobals
var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// ErrInvalidAmount is returned for amounts that are not non-negative decimal numbers or do
// not fit in uint256 base units.
var ErrInvalidAmount = errors.New("invalid amount")

// ToBaseUnits converts a human readable amount to base units: round(amount × 10^decimals).
// The conversion is exact decimal arithmetic, half away from zero.
func ToBaseUnits(amount string, decimals uint8) (*big.Int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidAmount, "%q: %v", amount, err)
	}

	if d.IsNegative() {
		return nil, errors.Wrapf(ErrInvalidAmount, "%q is negative", amount)
	}

	// Bound the exponent before shifting, rescaling to an extreme exponent never finishes.
	if int64(d.Exponent()) < -(int64(decimals) + maxUint256Digits) {
		return nil, errors.Wrapf(ErrInvalidAmount, "%q has too many fractional digits", amount)
	}

	if int64(d.NumDigits())+int64(d.Exponent())+int64(decimals) > maxUint256Digits {
		return nil, errors.Wrapf(ErrInvalidAmount, "%q does not fit in uint256", amount)
	}

	raw := d.Shift(int32(decimals)).Round(0).BigInt()
	if raw.Cmp(maxUint256) > 0 {
		return nil, errors.Wrapf(ErrInvalidAmount, "%q does not fit in uint256", amount)
	}

	return raw, nil
}

// FromBaseUnits formats a base unit value as a decimal string, trailing zeros trimmed.
func FromBaseUnits(raw *big.Int, decimals uint8) string {
	if raw == nil {
		return "0"
	}

	return decimal.NewFromBigInt(raw, -int32(decimals)).String()
}

// ParseGwei converts a gwei amount to wei.
func ParseGwei(gwei string) (*big.Int, error) {
	return ToBaseUnits(gwei, GweiDecimals)
}

// FormatGwei formats a wei amount in gwei.
func FormatGwei(wei *big.Int) string {
	return FromBaseUnits(wei, GweiDecimals)
}

// FormatEther formats a wei amount in ether.
func FormatEther(wei *big.Int) string {
	const etherDecimals = 18

	return FromBaseUnits(wei, etherDecimals)
}
