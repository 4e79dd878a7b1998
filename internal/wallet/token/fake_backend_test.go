package token_test

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

// fakeBackend answers ERC-20 view calls from fixed values and records writes.
type fakeBackend struct {
	mu sync.Mutex

	name     string
	symbol   string
	decimals uint8
	balances map[common.Address]*big.Int
	emptyFor map[string]bool

	logs []types.Log

	chainID     *big.Int
	nonce       uint64
	estimate    uint64
	estimateErr error
	sendErr     error

	estimateCalls []ethereum.CallMsg
	filterQueries []ethereum.FilterQuery
	sent          []*types.Transaction
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		name:     "Test Token",
		symbol:   "TST",
		decimals: 6,
		balances: map[common.Address]*big.Int{},
		emptyFor: map[string]bool{},
		chainID:  big.NewInt(11155111),
		estimate: 51000,
	}
}

func (f *fakeBackend) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	erc20 := token.ABI()

	for name, method := range erc20.Methods {
		if !bytes.Equal(msg.Data[:4], method.ID) {
			continue
		}

		if f.emptyFor[name] {
			return nil, nil
		}

		switch name {
		case "name":
			return method.Outputs.Pack(f.name)
		case "symbol":
			return method.Outputs.Pack(f.symbol)
		case "decimals":
			return method.Outputs.Pack(f.decimals)
		case "balanceOf":
			args, err := method.Inputs.Unpack(msg.Data[4:])
			if err != nil {
				return nil, err
			}
			account, _ := args[0].(common.Address)
			f.mu.Lock()
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
	f.mu.Lock()
	defer f.mu.Unlock()

	f.filterQueries = append(f.filterQueries, query)
	return f.logs, nil
}

func (f *fakeBackend) ChainID(context.Context) (*big.Int, error) {
	return f.chainID, nil
}

func (f *fakeBackend) EstimateGas(_ context.Context, msg ethereum.CallMsg) (uint64, error) {
	f.estimateCalls = append(f.estimateCalls, msg)
	return f.estimate, f.estimateErr
}

func (f *fakeBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return f.nonce, nil
}

func (f *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, tx)
	return nil
}
