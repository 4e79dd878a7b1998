// Package metrics 提供转账执行器的 Prometheus 指标
package metrics

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	namespace = "token_transfer"

	ResultConfirmed           = "confirmed"
	ResultInsufficientBalance = "insufficient_balance"
	ResultInvalidInput        = "invalid_input"
	ResultSubmissionFailed    = "submission_failed"
	ResultReverted            = "reverted"
	ResultUnconfirmed         = "unconfirmed"
	ResultQueryFailed         = "query_failed"
)

// Transfer 转账执行器指标, 使用独立的 Registry. nil *Transfer 可以直接使用, 不记录任何数据
type Transfer struct {
	registry *prometheus.Registry

	transfers         *prometheus.CounterVec
	gasFallbacks      prometheus.Counter
	gasPriceFallbacks prometheus.Counter
	queries           *prometheus.CounterVec
	confirmWait       prometheus.Histogram
}

func NewTransfer() *Transfer {
	m := &Transfer{
		registry: prometheus.NewRegistry(),
		// transfers 转账结果计数
		transfers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_total",
			Help:      "Total number of transfer attempts by result",
		}, []string{"result"}),
		gasFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gas_estimate_fallbacks_total",
			Help:      "Total number of transfers that used the fallback gas estimate",
		}),
		gasPriceFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gas_price_fallbacks_total",
			Help:      "Total number of transfers priced with the configured default gas price",
		}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Total number of read operations by operation and status",
		}, []string{"op", "status"}), // status: success/failed
		confirmWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "confirmation_wait_seconds",
			Help:      "Time between broadcast and the required confirmation depth",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10), // 1s ~ 512s
		}),
	}

	m.registry.MustRegister(
		m.transfers,
		m.gasFallbacks,
		m.gasPriceFallbacks,
		m.queries,
		m.confirmWait,
		collectors.NewGoCollector(),
	)

	return m
}

func (m *Transfer) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Transfer) ObserveTransfer(result string) {
	if m == nil {
		return
	}
	m.transfers.WithLabelValues(result).Inc()
}

func (m *Transfer) ObserveGasFallback() {
	if m == nil {
		return
	}
	m.gasFallbacks.Inc()
}

func (m *Transfer) ObserveGasPriceFallback() {
	if m == nil {
		return
	}
	m.gasPriceFallbacks.Inc()
}

func (m *Transfer) ObserveQuery(op string, err error) {
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "failed"
	}
	m.queries.WithLabelValues(op, status).Inc()
}

func (m *Transfer) ObserveConfirmationWait(d time.Duration) {
	if m == nil {
		return
	}
	m.confirmWait.Observe(d.Seconds())
}

// WriteTextfile 以 node_exporter textfile 格式写出全部指标
func (m *Transfer) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}

	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.Wrapf(err, "failed to write metrics textfile %s", path)
	}

	return nil
}
