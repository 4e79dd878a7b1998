package token

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github/chapool/token-transfer/internal/wallet/signer"
)

// TransactorBackend is the part of the endpoint that writes.
type TransactorBackend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// Transactor is the signing binding of an ERC-20 contract.
type Transactor struct {
	address common.Address
	backend TransactorBackend
	signer  signer.Signer
}

func NewTransactor(address common.Address, backend TransactorBackend, s signer.Signer) *Transactor {
	return &Transactor{address: address, backend: backend, signer: s}
}

func (t *Transactor) Address() common.Address {
	return t.address
}

// From is the signing identity's address.
func (t *Transactor) From() common.Address {
	return t.signer.Address()
}

// PackTransfer ABI encodes transfer(to, amount).
func PackTransfer(to common.Address, amount *big.Int) ([]byte, error) {
	data, err := ABI().Pack("transfer", to, amount)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack transfer")
	}

	return data, nil
}

// EstimateTransfer simulates transfer(to, amount) from the signer and returns the gas used.
func (t *Transactor) EstimateTransfer(ctx context.Context, to common.Address, amount *big.Int) (uint64, error) {
	data, err := PackTransfer(to, amount)
	if err != nil {
		return 0, err
	}

	gas, err := t.backend.EstimateGas(ctx, ethereum.CallMsg{
		From: t.From(),
		To:   &t.address,
		Data: data,
	})
	if err != nil {
		return 0, errors.Wrap(err, "failed to estimate transfer gas")
	}

	return gas, nil
}

// TransactOpts are the fee and nonce settings of a single transaction.
type TransactOpts struct {
	GasLimit uint64
	GasPrice *big.Int
	// Nonce nil uses the pending nonce of the signer.
	Nonce *uint64
}

// Transfer signs and broadcasts transfer(to, amount) as a legacy gas price transaction.
// When the broadcast fails the signed transaction is returned with the error, since a node
// that timed out may still have accepted it.
func (t *Transactor) Transfer(ctx context.Context, opts TransactOpts, to common.Address, amount *big.Int) (*types.Transaction, error) {
	if opts.GasLimit == 0 {
		return nil, errors.New("gas limit is required")
	}

	if opts.GasPrice == nil {
		return nil, errors.New("gas price is required")
	}

	data, err := PackTransfer(to, amount)
	if err != nil {
		return nil, err
	}

	chainID, err := t.backend.ChainID(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get chain ID for signing")
	}

	var nonce uint64
	if opts.Nonce != nil {
		nonce = *opts.Nonce
	} else {
		nonce, err = t.backend.PendingNonceAt(ctx, t.From())
		if err != nil {
			return nil, errors.Wrap(err, "failed to fetch pending nonce")
		}
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: opts.GasPrice,
		Gas:      opts.GasLimit,
		To:       &t.address,
		Value:    big.NewInt(0),
		Data:     data,
	})

	signedTx, err := t.signer.SignTx(tx, chainID)
	if err != nil {
		return nil, err
	}

	if err := t.backend.SendTransaction(ctx, signedTx); err != nil {
		return signedTx, errors.Wrap(err, "failed to broadcast transfer transaction")
	}

	return signedTx, nil
}
