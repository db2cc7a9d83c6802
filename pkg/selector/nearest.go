package selector

import (
	"github.com/lk2023060901/xproxy/pkg/discovery"
)

const NearestName = "nearest"

type nearestBuilder struct{}

func NewNearestBuilder() Builder {
	return &nearestBuilder{}
}

func (b *nearestBuilder) Build() Picker {
	return &nearestPicker{}
}

func (b *nearestBuilder) Name() string {
	return NearestName
}

// nearestPicker 总是返回快照头部的端点
// 快照顺序即优先级：启用就近排序时是最近的候选，否则是注册中心返回的第一个
type nearestPicker struct{}

func (p *nearestPicker) Pick(snap *discovery.Snapshot, _ PickInfo) *discovery.Endpoint {
	if snap == nil || len(snap.Endpoints) == 0 {
		return nil
	}
	return &snap.Endpoints[0]
}
