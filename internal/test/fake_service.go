// Package test holds fakes shared by command tests.
package test

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github/chapool/token-transfer/internal/wallet/token"
	"github/chapool/token-transfer/internal/wallet/transfer"
)

// FakeService is an in-memory transfer.Service. Balances default to zero.
type FakeService struct {
	Signer   common.Address
	Token    common.Address
	Meta     token.Metadata
	Balances map[common.Address]*big.Int
	Network  *transfer.NetworkInfo
	Events   []transfer.TransferEvent

	// EstimateErrs fails EstimateTransfer for the given amounts.
	EstimateErrs map[string]error
	TransferErr  error

	mu             sync.Mutex
	BalanceQueries []common.Address
	Estimates      []string
	Transfers      []string
}

var _ transfer.Service = (*FakeService)(nil)

func NewFakeService(signer common.Address) *FakeService {
	return &FakeService{
		Signer:       signer,
		Token:        common.HexToAddress("0x312fc28767329faf567f3ad61943b447a53d09d6"),
		Meta:         token.Metadata{Name: "Test Token", Symbol: "TST", Decimals: 2},
		Balances:     map[common.Address]*big.Int{},
		EstimateErrs: map[string]error{},
		Network: &transfer.NetworkInfo{
			ChainID:     big.NewInt(11155111),
			Name:        "sepolia",
			BlockNumber: 100,
			Fees:        transfer.FeeData{GasPrice: big.NewInt(1_000_000_000)},
		},
	}
}

func (f *FakeService) Address() common.Address {
	return f.Signer
}

func (f *FakeService) TokenAddress() common.Address {
	return f.Token
}

func (f *FakeService) GetTokenInfo(context.Context) (token.Metadata, error) {
	return f.Meta, nil
}

func (f *FakeService) GetBalance(ctx context.Context) (*transfer.Balance, error) {
	return f.GetBalanceOf(ctx, f.Signer)
}

func (f *FakeService) GetBalanceOf(_ context.Context, account common.Address) (*transfer.Balance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.BalanceQueries = append(f.BalanceQueries, account)

	raw, ok := f.Balances[account]
	if !ok {
		raw = big.NewInt(0)
	}

	return &transfer.Balance{
		Address:   account,
		Raw:       raw,
		Formatted: token.FromBaseUnits(raw, f.Meta.Decimals),
		Token:     f.Meta,
	}, nil
}

func (f *FakeService) EstimateTransfer(_ context.Context, to common.Address, amount string) (*transfer.Plan, error) {
	f.mu.Lock()
	f.Estimates = append(f.Estimates, amount)
	f.mu.Unlock()

	if err := f.EstimateErrs[amount]; err != nil {
		return nil, err
	}

	return f.plan(to, amount)
}

func (f *FakeService) TransferTokens(_ context.Context, to common.Address, amount string) (*transfer.Receipt, error) {
	f.mu.Lock()
	f.Transfers = append(f.Transfers, amount)
	f.mu.Unlock()

	if f.TransferErr != nil {
		return nil, f.TransferErr
	}

	plan, err := f.plan(to, amount)
	if err != nil {
		return nil, err
	}

	return &transfer.Receipt{
		TxHash:        common.HexToHash("0xfeed"),
		BlockNumber:   101,
		GasUsed:       52_000,
		GasLimit:      plan.GasLimit,
		Confirmations: transfer.MinConfirmations,
		Plan:          plan,
	}, nil
}

func (f *FakeService) GetTransferEvents(context.Context, uint64) ([]transfer.TransferEvent, error) {
	return f.Events, nil
}

func (f *FakeService) GetNetworkInfo(context.Context) (*transfer.NetworkInfo, error) {
	return f.Network, nil
}

func (f *FakeService) plan(to common.Address, amount string) (*transfer.Plan, error) {
	raw, err := token.ToBaseUnits(amount, f.Meta.Decimals)
	if err != nil {
		return nil, &transfer.Error{Kind: transfer.KindInvalidInput, Op: "EstimateTransfer", Err: err}
	}

	gasPrice := big.NewInt(1_000_000_000)
	gasLimit := transfer.BufferedGasLimit(100_000)

	return &transfer.Plan{
		From:            f.Signer,
		To:              to,
		Token:           f.Meta,
		Amount:          raw,
		AmountFormatted: token.FromBaseUnits(raw, f.Meta.Decimals),
		Balance:         big.NewInt(0),
		EstimatedGas:    100_000,
		GasLimit:        gasLimit,
		GasPrice:        gasPrice,
		MaxFee:          transfer.MaxFee(gasLimit, gasPrice),
	}, nil
}
