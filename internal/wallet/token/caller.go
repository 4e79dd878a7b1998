package token

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// ErrNoCode is returned when a call comes back empty, usually because there is no
// contract at the configured address.
var ErrNoCode = errors.New("no contract code at given address")

// CallerBackend is the read-only part of the endpoint.
type CallerBackend interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error)
}

// Metadata of an ERC-20 token.
type Metadata struct {
	Name     string
	Symbol   string
	Decimals uint8
}

// Caller is a read-only binding of an ERC-20 contract. It needs no signing identity.
type Caller struct {
	address common.Address
	backend CallerBackend
}

func NewCaller(address common.Address, backend CallerBackend) *Caller {
	return &Caller{address: address, backend: backend}
}

func (c *Caller) Address() common.Address {
	return c.address
}

func (c *Caller) Name(ctx context.Context) (string, error) {
	out, err := c.call(ctx, "name")
	if err != nil {
		return "", err
	}

	name, ok := out[0].(string)
	if !ok {
		return "", errors.Errorf("unexpected name type %T", out[0])
	}

	return name, nil
}

func (c *Caller) Symbol(ctx context.Context) (string, error) {
	out, err := c.call(ctx, "symbol")
	if err != nil {
		return "", err
	}

	symbol, ok := out[0].(string)
	if !ok {
		return "", errors.Errorf("unexpected symbol type %T", out[0])
	}

	return symbol, nil
}

func (c *Caller) Decimals(ctx context.Context) (uint8, error) {
	out, err := c.call(ctx, "decimals")
	if err != nil {
		return 0, err
	}

	decimals, ok := out[0].(uint8)
	if !ok {
		return 0, errors.Errorf("unexpected decimals type %T", out[0])
	}

	return decimals, nil
}

// BalanceOf returns the raw base unit balance of account.
func (c *Caller) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	out, err := c.call(ctx, "balanceOf", account)
	if err != nil {
		return nil, err
	}

	balance, ok := out[0].(*big.Int)
	if !ok {
		return nil, errors.Errorf("unexpected balanceOf type %T", out[0])
	}

	return balance, nil
}

// Metadata queries name, symbol and decimals concurrently. Nothing is cached.
func (c *Caller) Metadata(ctx context.Context) (Metadata, error) {
	var meta Metadata

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		meta.Name, err = c.Name(egCtx)
		return err
	})
	eg.Go(func() (err error) {
		meta.Symbol, err = c.Symbol(egCtx)
		return err
	})
	eg.Go(func() (err error) {
		meta.Decimals, err = c.Decimals(egCtx)
		return err
	})

	if err := eg.Wait(); err != nil {
		return Metadata{}, err
	}

	return meta, nil
}

func (c *Caller) call(ctx context.Context, method string, args ...any) ([]any, error) {
	erc20 := ABI()

	data, err := erc20.Pack(method, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to pack %s", method)
	}

	resp, err := c.backend.CallContract(ctx, ethereum.CallMsg{To: &c.address, Data: data}, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to call %s", method)
	}

	if len(resp) == 0 {
		return nil, errors.Wrapf(ErrNoCode, "%s returned no data from %s", method, c.address.Hex())
	}

	out, err := erc20.Unpack(method, resp)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to unpack %s result", method)
	}

	if len(out) == 0 {
		return nil, errors.Errorf("%s unpack returned no data", method)
	}

	return out, nil
}
