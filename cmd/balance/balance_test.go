package balance_test

import (
	"bytes"
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/token-transfer/cmd/balance"
	"github/chapool/token-transfer/internal/test"
	"github/chapool/token-transfer/internal/util/command"
)

var signer = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

func TestRun(t *testing.T) {
	other := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")

	svc := test.NewFakeService(signer)
	svc.Balances[signer] = big.NewInt(12345)
	e := &command.Executor{Service: svc}

	var out bytes.Buffer
	require.NoError(t, balance.Run(context.Background(), &out, e, nil))
	assert.Equal(t, "Signer "+signer.Hex()+": 123.45 TST (raw 12345)\n", out.String())

	out.Reset()
	require.NoError(t, balance.Run(context.Background(), &out, e, []string{other.Hex()}))
	assert.Equal(t, "Account "+other.Hex()+": 0 TST (raw 0)\n", out.String())

	assert.Equal(t, []common.Address{signer, other}, svc.BalanceQueries)
}

func TestRunInvalidAddress(t *testing.T) {
	svc := test.NewFakeService(signer)

	var out bytes.Buffer
	err := balance.Run(context.Background(), &out, &command.Executor{Service: svc}, []string{"0x12"})
	require.Error(t, err)

	assert.Empty(t, svc.BalanceQueries)
}
