package transfer

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github/chapool/token-transfer/internal/metrics"
	"github/chapool/token-transfer/internal/wallet/token"
)

const (
	// MinConfirmations is the lowest confirmation depth TransferTokens waits for.
	MinConfirmations uint64 = 2

	defaultPollInterval = 3 * time.Second
)

// Backend is the network endpoint the service talks to. *chain.RPCClient implements it.
type Backend interface {
	token.CallerBackend
	token.TransactorBackend

	BlockNumber(ctx context.Context) (uint64, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Options tune a Service. The zero value is usable.
type Options struct {
	// WatchAddress is the destination of interest for GetTransferEvents.
	WatchAddress common.Address
	// DefaultGasPrice in wei, nil means 20 gwei.
	DefaultGasPrice *big.Int
	// Confirmations is clamped to MinConfirmations.
	Confirmations uint64
	// ConfirmTimeout bounds the confirmation wait. Zero waits until ctx is done.
	ConfirmTimeout time.Duration
	PollInterval   time.Duration
	// EventsBlockChunk caps the block span of a single log query. Zero queries the whole range at once.
	EventsBlockChunk uint64
	Metrics          *metrics.Transfer
}

// Balance of one account.
type Balance struct {
	Address   common.Address
	Raw       *big.Int
	Formatted string
	Token     token.Metadata
}

// Plan is everything decided before a transfer is signed.
type Plan struct {
	From            common.Address
	To              common.Address
	Token           token.Metadata
	Amount          *big.Int
	AmountFormatted string
	Balance         *big.Int

	EstimatedGas uint64
	// GasEstimateErr is the *Error of kind KindGasEstimation when FallbackGasEstimate was used.
	GasEstimateErr error
	GasLimit       uint64

	GasPrice         *big.Int
	GasPriceFallback bool
	// MaxFee is GasLimit × GasPrice in wei.
	MaxFee *big.Int
}

func (p *Plan) GasEstimateFallback() bool {
	return p.GasEstimateErr != nil
}

// Receipt of a transfer that reached the required confirmation depth.
type Receipt struct {
	TxHash            common.Hash
	BlockNumber       uint64
	BlockHash         common.Hash
	GasUsed           uint64
	GasLimit          uint64
	EffectiveGasPrice *big.Int
	Confirmations     uint64
	Plan              *Plan
}

// TransferEvent is a decoded Transfer to the watch address.
type TransferEvent struct {
	From        common.Address
	To          common.Address
	Value       *big.Int
	Formatted   string
	BlockNumber uint64
	LogIndex    uint
	TxHash      common.Hash
}

// NetworkInfo is a read-only snapshot of the endpoint.
type NetworkInfo struct {
	ChainID     *big.Int
	Name        string
	BlockNumber uint64
	Fees        FeeData
}
