package transfer_test

import (
	"bytes"
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github/chapool/token-transfer/internal/wallet/token"
)

// fakeBackend answers the calls the service makes from in-memory state.
type fakeBackend struct {
	mu sync.Mutex

	meta     token.Metadata
	balances map[common.Address]*big.Int

	chainID  *big.Int
	head     uint64
	autoMine bool

	gasPrice    *big.Int
	gasPriceErr error
	baseFee     *big.Int
	tipCap      *big.Int
	tipCapErr   error

	estimate    uint64
	estimateErr error
	sendErr     error

	// pendingPolls is how many receipt lookups answer NotFound before the receipt shows up.
	pendingPolls  int
	receiptStatus uint64
	neverMined    bool

	logs []types.Log

	calls          int
	balanceQueries []common.Address
	estimateCalls  int
	filterQueries  []ethereum.FilterQuery
	sent           []*types.Transaction
	attempted      []*types.Transaction
	receiptPolls   int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		meta:          token.Metadata{Name: "Test Token", Symbol: "TST", Decimals: 2},
		balances:      map[common.Address]*big.Int{},
		chainID:       big.NewInt(11155111),
		head:          100,
		autoMine:      true,
		gasPrice:      big.NewInt(3_000_000_000),
		estimate:      100_000,
		receiptStatus: types.ReceiptStatusSuccessful,
	}
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeBackend) hit() {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}

func (f *fakeBackend) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.hit()
	erc20 := token.ABI()

	for name, method := range erc20.Methods {
		if !bytes.Equal(msg.Data[:4], method.ID) {
			continue
		}

		switch name {
		case "name":
			return method.Outputs.Pack(f.meta.Name)
		case "symbol":
			return method.Outputs.Pack(f.meta.Symbol)
		case "decimals":
			return method.Outputs.Pack(f.meta.Decimals)
		case "balanceOf":
			args, err := method.Inputs.Unpack(msg.Data[4:])
			if err != nil {
				return nil, err
			}
			account, _ := args[0].(common.Address)

			f.mu.Lock()
			f.balanceQueries = append(f.balanceQueries, account)
			balance, ok := f.balances[account]
			f.mu.Unlock()

			if !ok {
				balance = big.NewInt(0)
			}
			return method.Outputs.Pack(balance)
		}
	}

	return nil, errors.New("execution reverted")
}

func (f *fakeBackend) FilterLogs(_ context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	f.hit()
	f.mu.Lock()
	defer f.mu.Unlock()

	f.filterQueries = append(f.filterQueries, query)

	var out []types.Log
	for _, l := range f.logs {
		if l.BlockNumber >= query.FromBlock.Uint64() && l.BlockNumber <= query.ToBlock.Uint64() {
			out = append(out, l)
		}
	}

	return out, nil
}

func (f *fakeBackend) ChainID(context.Context) (*big.Int, error) {
	f.hit()
	return f.chainID, nil
}

func (f *fakeBackend) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	f.hit()
	f.mu.Lock()
	defer f.mu.Unlock()

	f.estimateCalls++
	return f.estimate, f.estimateErr
}

func (f *fakeBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	f.hit()
	return 7, nil
}

func (f *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.hit()
	f.mu.Lock()
	defer f.mu.Unlock()

	f.attempted = append(f.attempted, tx)
	if f.sendErr != nil {
		return f.sendErr
	}

	f.sent = append(f.sent, tx)
	return nil
}

func (f *fakeBackend) BlockNumber(context.Context) (uint64, error) {
	f.hit()
	f.mu.Lock()
	defer f.mu.Unlock()

	head := f.head
	if f.autoMine && len(f.sent) > 0 {
		f.head++
	}

	return head, nil
}

func (f *fakeBackend) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	f.hit()
	f.mu.Lock()
	defer f.mu.Unlock()

	return &types.Header{Number: new(big.Int).SetUint64(f.head), BaseFee: f.baseFee}, nil
}

func (f *fakeBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	f.hit()
	return f.gasPrice, f.gasPriceErr
}

func (f *fakeBackend) SuggestGasTipCap(context.Context) (*big.Int, error) {
	f.hit()
	return f.tipCap, f.tipCapErr
}

func (f *fakeBackend) TransactionReceipt(_ context.Context, txHash common.Hash) (*types.Receipt, error) {
	f.hit()
	f.mu.Lock()
	defer f.mu.Unlock()

	f.receiptPolls++
	if f.neverMined || f.receiptPolls <= f.pendingPolls || len(f.sent) == 0 {
		return nil, ethereum.NotFound
	}

	tx := f.sent[len(f.sent)-1]
	return &types.Receipt{
		Status:            f.receiptStatus,
		TxHash:            txHash,
		BlockNumber:       big.NewInt(100),
		BlockHash:         common.HexToHash("0xb10c"),
		GasUsed:           52_000,
		EffectiveGasPrice: tx.GasPrice(),
	}, nil
}
