package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lk2023060901/xproxy/pkg/discovery"
	xprom "github.com/lk2023060901/xproxy/pkg/prometheus"
)

// DiscoveryMetrics 服务发现侧指标。轮询结果走计数器，
// 快照规模、序号和年龄在采集时直接读取快照存储。
type DiscoveryMetrics struct {
	polls *xprom.CounterVec
}

// RegisterDiscovery 注册发现侧指标
func RegisterDiscovery(client *xprom.Client, store *discovery.Store) (*DiscoveryMetrics, error) {
	polls, err := client.NewCounter("discovery_polls_total",
		"Registry polls by outcome.", []string{"outcome"})
	if err != nil {
		return nil, err
	}

	namespace := client.Config().Namespace

	collectors := []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "discovery_endpoints",
			Help:      "Endpoints in the current snapshot.",
		}, func() float64 {
			snap := store.Current()
			if snap == nil {
				return 0
			}
			return float64(len(snap.Endpoints))
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "discovery_snapshot_seq",
			Help:      "Sequence number of the current snapshot.",
		}, func() float64 {
			snap := store.Current()
			if snap == nil {
				return 0
			}
			return float64(snap.Seq)
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "discovery_snapshot_age_seconds",
			Help:      "Age of the current snapshot in seconds.",
		}, func() float64 {
			snap := store.Current()
			if snap == nil {
				return 0
			}
			return snap.Age().Seconds()
		}),
	}

	for _, collector := range collectors {
		if err := client.RegisterCollector(collector); err != nil {
			return nil, err
		}
	}

	return &DiscoveryMetrics{polls: polls}, nil
}

// OnPoll 记录一次轮询结果，作为刷新器的轮询回调使用
func (m *DiscoveryMetrics) OnPoll(outcome discovery.PollOutcome, _ int) {
	m.polls.WithLabelValues(string(outcome)).Inc()
}
