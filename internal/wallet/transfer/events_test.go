package transfer_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/token-transfer/internal/wallet/token"
	"github/chapool/token-transfer/internal/wallet/transfer"
)

func transferLog(t *testing.T, from, to common.Address, value int64, block uint64, index uint) types.Log {
	t.Helper()

	data, err := token.ABI().Events["Transfer"].Inputs.NonIndexed().Pack(big.NewInt(value))
	require.NoError(t, err)

	return types.Log{
		Address:     tokenAddress,
		Topics:      []common.Hash{token.TransferEventID, common.BytesToHash(from.Bytes()), common.BytesToHash(to.Bytes())},
		Data:        data,
		BlockNumber: block,
		TxHash:      common.BigToHash(new(big.Int).SetUint64(block*1000 + uint64(index))),
		Index:       index,
	}
}

func TestGetTransferEventsFiltersAndSorts(t *testing.T) {
	backend := newFakeBackend()
	removed := transferLog(t, sender, recipient, 9, 50, 0)
	removed.Removed = true
	backend.logs = []types.Log{
		transferLog(t, sender, recipient, 250, 90, 4),
		transferLog(t, sender, stranger, 1, 20, 0),
		transferLog(t, stranger, recipient, 100, 20, 7),
		removed,
		transferLog(t, sender, recipient, 5, 20, 2),
	}
	svc := newTestService(t, backend, transfer.Options{WatchAddress: recipient})

	events, err := svc.GetTransferEvents(t.Context(), 10)
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, uint64(20), events[0].BlockNumber)
	assert.Equal(t, uint(2), events[0].LogIndex)
	assert.Equal(t, "0.05", events[0].Formatted)
	assert.Equal(t, stranger, events[1].From)
	assert.Equal(t, "1", events[1].Formatted)
	assert.Equal(t, uint64(90), events[2].BlockNumber)
	assert.Equal(t, "2.5", events[2].Formatted)

	for _, event := range events {
		assert.Equal(t, recipient, event.To)
	}

	require.Len(t, backend.filterQueries, 1)
	query := backend.filterQueries[0]
	assert.Equal(t, uint64(10), query.FromBlock.Uint64())
	assert.Equal(t, uint64(100), query.ToBlock.Uint64())
	assert.Equal(t, []common.Hash{common.BytesToHash(recipient.Bytes())}, query.Topics[2])
}

func TestGetTransferEventsEmpty(t *testing.T) {
	backend := newFakeBackend()
	backend.logs = []types.Log{transferLog(t, sender, stranger, 1, 20, 0)}
	svc := newTestService(t, backend, transfer.Options{WatchAddress: recipient})

	events, err := svc.GetTransferEvents(t.Context(), 0)
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)

	events, err = svc.GetTransferEvents(t.Context(), 101)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Len(t, backend.filterQueries, 1)
}

func TestGetTransferEventsChunked(t *testing.T) {
	backend := newFakeBackend()
	backend.head = 25
	backend.logs = []types.Log{
		transferLog(t, sender, recipient, 1, 3, 0),
		transferLog(t, sender, recipient, 2, 15, 0),
		transferLog(t, sender, recipient, 3, 25, 1),
	}
	svc := newTestService(t, backend, transfer.Options{WatchAddress: recipient, EventsBlockChunk: 10})

	events, err := svc.GetTransferEvents(t.Context(), 0)
	require.NoError(t, err)
	require.Len(t, events, 3)

	var ranges [][2]uint64
	for _, query := range backend.filterQueries {
		ranges = append(ranges, [2]uint64{query.FromBlock.Uint64(), query.ToBlock.Uint64()})
	}
	assert.Equal(t, [][2]uint64{{0, 9}, {10, 19}, {20, 25}}, ranges)
}

func TestGetTransferEventsRequiresWatchAddress(t *testing.T) {
	svc := newTestService(t, newFakeBackend(), transfer.Options{})

	_, err := svc.GetTransferEvents(t.Context(), 0)
	assert.Equal(t, transfer.KindConfiguration, transfer.KindOf(err))
}
