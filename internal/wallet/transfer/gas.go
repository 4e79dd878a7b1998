package transfer

import (
	"math"
	"math/big"
)

const (
	// FallbackGasEstimate is used when the node refuses to simulate the transfer.
	FallbackGasEstimate uint64 = 150_000

	gasBufferNumerator   = 120
	gasBufferDenominator = 100

	// DefaultGasPriceGwei prices a transfer when neither the node nor the config provides a price.
	DefaultGasPriceGwei = 20

	baseFeeMultiplier = 2
	weiPerGwei        = 1_000_000_000
)

// DefaultGasPrice returns 20 gwei in wei.
func DefaultGasPrice() *big.Int {
	return new(big.Int).Mul(big.NewInt(DefaultGasPriceGwei), big.NewInt(weiPerGwei))
}

// BufferedGasLimit adds the 20% safety margin: floor(estimate × 120 / 100).
func BufferedGasLimit(estimate uint64) uint64 {
	limit := new(big.Int).SetUint64(estimate)
	limit.Mul(limit, big.NewInt(gasBufferNumerator))
	limit.Quo(limit, big.NewInt(gasBufferDenominator))

	if !limit.IsUint64() {
		return math.MaxUint64
	}

	return limit.Uint64()
}

// MaxFee is the most a transaction can cost: gas limit × gas price.
func MaxFee(gasLimit uint64, gasPrice *big.Int) *big.Int {
	if gasPrice == nil {
		return big.NewInt(0)
	}

	return new(big.Int).Mul(new(big.Int).SetUint64(gasLimit), gasPrice)
}

// FeeData is the endpoint's current fee snapshot. Any field may be nil.
type FeeData struct {
	GasPrice             *big.Int
	BaseFee              *big.Int
	MaxPriorityFeePerGas *big.Int
	MaxFeePerGas         *big.Int
}

// ResolveGasPrice returns the reported gas price, or fallback (20 gwei if nil) when the node
// reported none. The second result is true when the fallback was used.
func (f FeeData) ResolveGasPrice(fallback *big.Int) (*big.Int, bool) {
	if f.GasPrice != nil && f.GasPrice.Sign() > 0 {
		return new(big.Int).Set(f.GasPrice), false
	}

	if fallback != nil && fallback.Sign() > 0 {
		return new(big.Int).Set(fallback), true
	}

	return DefaultGasPrice(), true
}

func maxFeePerGas(baseFee *big.Int, tip *big.Int) *big.Int {
	if baseFee == nil {
		return nil
	}

	fee := new(big.Int).Mul(baseFee, big.NewInt(baseFeeMultiplier))
	if tip != nil {
		fee.Add(fee, tip)
	}

	return fee
}
