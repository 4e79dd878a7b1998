package signer

import (
	"crypto/ecdsa"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// Signer is the signing identity of the executor.
type Signer interface {
	// Address is the account the key controls.
	Address() common.Address
	// SignTx signs tx for chainID using the latest signer the chain id supports.
	SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

type keySigner struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

// NewKeySigner builds a Signer from a hex private key, with or without 0x prefix.
// The key is kept in memory only.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewKeySigner(hexKey string) (Signer, error) {
	privateKey, err := ParsePrivateKey(hexKey)
	if err != nil {
		return nil, err
	}

	publicKey := privateKey.Public()
	publicKeyECDSA, ok := publicKey.(*ecdsa.PublicKey)
	if !ok {
		return nil, errors.New("failed to cast public key to ECDSA")
	}

	return &keySigner{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(*publicKeyECDSA),
	}, nil
}

// ParsePrivateKey converts hex key material to an ECDSA key.
func ParsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	if hexKey == "" {
		return nil, errors.New("private key is empty")
	}

	privateKey, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert private key to ECDSA")
	}

	return privateKey, nil
}

func (s *keySigner) Address() common.Address {
	return s.address
}

func (s *keySigner) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	if chainID == nil || chainID.Sign() <= 0 {
		return nil, errors.New("chain id is required for signing")
	}

	signedTx, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), s.privateKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign transaction")
	}

	return signedTx, nil
}
