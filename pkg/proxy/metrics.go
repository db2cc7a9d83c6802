package proxy

import (
	"time"

	"github.com/lk2023060901/xproxy/pkg/prometheus"
)

// 指标标签取值
const (
	ReasonNoCandidates    = "no_candidates"
	ReasonUpstreamTimeout = "upstream_timeout"
	ReasonUpstreamRefused = "upstream_refused"
	ReasonUpstreamError   = "upstream_error"

	DirectionIn  = "in"
	DirectionOut = "out"

	OutcomeSuccess = "success"
)

// Metrics 代理运行指标，direction=in 表示客户端到上游，out 表示上游到客户端
type Metrics struct {
	accepted *prometheus.CounterVec
	active   *prometheus.GaugeVec
	failures *prometheus.CounterVec
	relayed  *prometheus.CounterVec
	dial     *prometheus.HistogramVec
}

// NewMetrics 在指标客户端上注册代理指标
func NewMetrics(client *prometheus.Client) (*Metrics, error) {
	accepted, err := client.NewCounter("connections_accepted_total",
		"Total client connections accepted.", nil)
	if err != nil {
		return nil, err
	}

	active, err := client.NewGauge("connections_active",
		"Client connections currently relaying.", nil)
	if err != nil {
		return nil, err
	}

	failures, err := client.NewCounter("connection_failures_total",
		"Connections closed before relaying started.", []string{"reason"})
	if err != nil {
		return nil, err
	}

	relayed, err := client.NewCounter("relay_bytes_total",
		"Bytes relayed between clients and upstreams.", []string{"direction"})
	if err != nil {
		return nil, err
	}

	dial, err := client.NewHistogram("upstream_dial_seconds",
		"Upstream dial latency in seconds.", []string{"outcome"}, nil)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		accepted: accepted,
		active:   active,
		failures: failures,
		relayed:  relayed,
		dial:     dial,
	}, nil
}

func (m *Metrics) connAccepted() {
	if m == nil {
		return
	}
	m.accepted.WithLabelValues().Inc()
}

func (m *Metrics) connOpened() {
	if m == nil {
		return
	}
	m.active.WithLabelValues().Inc()
}

func (m *Metrics) connClosed() {
	if m == nil {
		return
	}
	m.active.WithLabelValues().Dec()
}

func (m *Metrics) connFailed(reason string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(reason).Inc()
}

func (m *Metrics) bytesRelayed(direction string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.relayed.WithLabelValues(direction).Add(float64(n))
}

func (m *Metrics) dialObserved(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.dial.WithLabelValues(outcome).Observe(elapsed.Seconds())
}
