package chain

import "math/big"

// networkNames covers the chains the tool is usually pointed at. Anything else is "unknown".
//
//nolint:gochecknoglobals
var networkNames = map[uint64]string{
	1:        "mainnet",
	10:       "optimism",
	56:       "bnb",
	97:       "bnbt",
	137:      "matic",
	8453:     "base",
	17000:    "holesky",
	42161:    "arbitrum",
	43114:    "avalanche",
	80002:    "matic-amoy",
	84532:    "base-sepolia",
	11155111: "sepolia",
}

// NetworkName returns a short network name for a chain id.
func NetworkName(chainID *big.Int) string {
	if chainID == nil || !chainID.IsUint64() {
		return "unknown"
	}

	if name, ok := networkNames[chainID.Uint64()]; ok {
		return name
	}

	return "unknown"
}
