package token

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

const transferTopicCount = 3

// TransferLog is a decoded Transfer(from, to, value) event.
type TransferLog struct {
	From        common.Address
	To          common.Address
	Value       *big.Int
	BlockNumber uint64
	TxHash      common.Hash
	Index       uint
	Removed     bool
}

// ParseTransfer decodes a raw log emitted by an ERC-20 Transfer event.
func ParseTransfer(l types.Log) (*TransferLog, error) {
	if len(l.Topics) != transferTopicCount || l.Topics[0] != TransferEventID {
		return nil, errors.New("log is not an ERC20 Transfer event")
	}

	out, err := ABI().Unpack("Transfer", l.Data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to unpack Transfer data")
	}

	if len(out) != 1 {
		return nil, errors.Errorf("unexpected Transfer data length %d", len(out))
	}

	value, ok := out[0].(*big.Int)
	if !ok {
		return nil, errors.Errorf("unexpected Transfer value type %T", out[0])
	}

	return &TransferLog{
		From:        common.BytesToAddress(l.Topics[1].Bytes()),
		To:          common.BytesToAddress(l.Topics[2].Bytes()),
		Value:       value,
		BlockNumber: l.BlockNumber,
		TxHash:      l.TxHash,
		Index:       l.Index,
		Removed:     l.Removed,
	}, nil
}

// TransferFilter narrows a Transfer log query. Empty address lists match anything.
type TransferFilter struct {
	FromBlock uint64
	ToBlock   uint64
	From      []common.Address
	To        []common.Address
}

// FilterTransfers returns the contract's Transfer events in [FromBlock, ToBlock] in the order
// the node returns them.
func (c *Caller) FilterTransfers(ctx context.Context, filter TransferFilter) ([]TransferLog, error) {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(filter.FromBlock),
		ToBlock:   new(big.Int).SetUint64(filter.ToBlock),
		Addresses: []common.Address{c.address},
		Topics: [][]common.Hash{
			{TransferEventID},
			addressTopics(filter.From),
			addressTopics(filter.To),
		},
	}

	logs, err := c.backend.FilterLogs(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to filter Transfer logs")
	}

	transfers := make([]TransferLog, 0, len(logs))
	for _, l := range logs {
		transfer, err := ParseTransfer(l)
		if err != nil {
			return nil, errors.Wrapf(err, "log %d in tx %s", l.Index, l.TxHash.Hex())
		}
		transfers = append(transfers, *transfer)
	}

	return transfers, nil
}

func addressTopics(addresses []common.Address) []common.Hash {
	if len(addresses) == 0 {
		return nil
	}

	topics := make([]common.Hash, 0, len(addresses))
	for _, address := range addresses {
		topics = append(topics, common.BytesToHash(address.Bytes()))
	}

	return topics
}
