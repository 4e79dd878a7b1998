package metrics_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/token-transfer/internal/metrics"
)

func TestTransferCounters(t *testing.T) {
	m := metrics.NewTransfer()

	m.ObserveTransfer(metrics.ResultConfirmed)
	m.ObserveTransfer(metrics.ResultConfirmed)
	m.ObserveTransfer(metrics.ResultInsufficientBalance)
	m.ObserveGasFallback()
	m.ObserveQuery("balance", nil)
	m.ObserveQuery("balance", errors.New("boom"))
	m.ObserveConfirmationWait(3 * time.Second)

	count, err := testutil.GatherAndCount(m.Registry(),
		"token_transfer_transfers_total",
		"token_transfer_gas_estimate_fallbacks_total",
		"token_transfer_queries_total",
		"token_transfer_confirmation_wait_seconds",
	)
	require.NoError(t, err)
	assert.Equal(t, 6, count)

	count, err = testutil.GatherAndCount(m.Registry(), "token_transfer_gas_price_fallbacks_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNilTransferIsNoop(t *testing.T) {
	var m *metrics.Transfer

	assert.NotPanics(t, func() {
		m.ObserveTransfer(metrics.ResultReverted)
		m.ObserveGasFallback()
		m.ObserveGasPriceFallback()
		m.ObserveQuery("info", nil)
		m.ObserveConfirmationWait(time.Second)
	})
	assert.Nil(t, m.Registry())
	require.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}

func TestWriteTextfile(t *testing.T) {
	m := metrics.NewTransfer()
	m.ObserveTransfer(metrics.ResultConfirmed)

	path := filepath.Join(t.TempDir(), "transfer.prom")
	require.NoError(t, m.WriteTextfile(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `token_transfer_transfers_total{result="confirmed"} 1`)

	require.Error(t, m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "x.prom")))
}
