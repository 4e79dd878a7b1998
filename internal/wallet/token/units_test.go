package token_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/token-transfer/internal/wallet/token"
)

func TestToBaseUnits(t *testing.T) {
	tests := []struct {
		amount   string
		decimals uint8
		want     string
	}{
		{"4.00", 2, "400"},
		{"1", 18, "1000000000000000000"},
		{"0.1", 18, "100000000000000000"},
		{"0.001", 6, "1000"},
		{"123456789.123456789123456789", 18, "123456789123456789123456789"},
		{"0.005", 2, "1"},
		{"0.004", 2, "0"},
		{"7", 0, "7"},
		{" 2.5 ", 1, "25"},
		{"1e3", 2, "100000"},
	}

	for _, tt := range tests {
		got, err := token.ToBaseUnits(tt.amount, tt.decimals)
		require.NoError(t, err, tt.amount)
		assert.Equal(t, tt.want, got.String(), tt.amount)
	}
}

func TestToBaseUnitsInvalid(t *testing.T) {
	for _, amount := range []string{"", "abc", "-1", "1,5"} {
		_, err := token.ToBaseUnits(amount, 18)
		require.ErrorIs(t, err, token.ErrInvalidAmount, amount)
	}
}

func TestToBaseUnitsBounds(t *testing.T) {
	for _, amount := range []string{"1e-2147483648", "1e5000000", "1e60", "0.0000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000001"} {
		_, err := token.ToBaseUnits(amount, 18)
		require.ErrorIs(t, err, token.ErrInvalidAmount, amount)
	}

	maxUint256, ok := new(big.Int).SetString("115792089237316195423570985008687907853269984665640564039457584007913129639935", 10)
	require.True(t, ok)

	raw, err := token.ToBaseUnits(maxUint256.String(), 0)
	require.NoError(t, err)
	assert.Equal(t, maxUint256, raw)

	tooLarge := new(big.Int).Add(maxUint256, big.NewInt(1))
	_, err = token.ToBaseUnits(tooLarge.String(), 0)
	require.ErrorIs(t, err, token.ErrInvalidAmount)

	raw, err = token.ToBaseUnits("115792089237316195423570985008687907853269984665640564039457.584007913129639935", 18)
	require.NoError(t, err)
	assert.Equal(t, maxUint256, raw)
}

func TestFromBaseUnits(t *testing.T) {
	assert.Equal(t, "4", token.FromBaseUnits(big.NewInt(400), 2))
	assert.Equal(t, "1234.5", token.FromBaseUnits(big.NewInt(123450), 2))
	assert.Equal(t, "0", token.FromBaseUnits(big.NewInt(0), 18))
	assert.Equal(t, "0", token.FromBaseUnits(nil, 18))
	assert.Equal(t, "0.000000000000000001", token.FromBaseUnits(big.NewInt(1), 18))

	huge, ok := new(big.Int).SetString("115792089237316195423570985008687907853269984665640564039457584007913129639935", 10)
	require.True(t, ok)
	assert.Equal(t, "115792089237316195423570985008687907853269984665640564039457.584007913129639935", token.FromBaseUnits(huge, 18))
}

func TestBaseUnitsRoundTrip(t *testing.T) {
	for _, amount := range []string{"0", "1", "0.5", "10.25", "99999999999.999999", "0.000001"} {
		for _, decimals := range []uint8{6, 8, 18} {
			raw, err := token.ToBaseUnits(amount, decimals)
			require.NoError(t, err)

			back, err := token.ToBaseUnits(token.FromBaseUnits(raw, decimals), decimals)
			require.NoError(t, err)
			assert.Equal(t, raw, back, "%s with %d decimals", amount, decimals)
		}
	}
}

func TestGwei(t *testing.T) {
	wei, err := token.ParseGwei("20")
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(20_000_000_000), wei)

	assert.Equal(t, "1.5", token.FormatGwei(big.NewInt(1_500_000_000)))
	assert.Equal(t, "0.0036", token.FormatEther(big.NewInt(3_600_000_000_000_000)))
}
