package selector

import (
	"sync/atomic"

	"github.com/lk2023060901/xproxy/pkg/discovery"
)

const RoundRobinName = "round_robin"

type roundRobinBuilder struct{}

func NewRoundRobinBuilder() Builder {
	return &roundRobinBuilder{}
}

func (b *roundRobinBuilder) Build() Picker {
	return &roundRobinPicker{}
}

func (b *roundRobinBuilder) Name() string {
	return RoundRobinName
}

// roundRobinPicker 在快照内轮转，避免所有连接集中到头部端点
// 计数器跨快照保留，快照收缩时按新长度取模
type roundRobinPicker struct {
	counter uint64
}

func (p *roundRobinPicker) Pick(snap *discovery.Snapshot, _ PickInfo) *discovery.Endpoint {
	if snap == nil || len(snap.Endpoints) == 0 {
		return nil
	}
	idx := atomic.AddUint64(&p.counter, 1) - 1
	return &snap.Endpoints[idx%uint64(len(snap.Endpoints))]
}
