package selector

import (
	"github.com/lk2023060901/xproxy/pkg/discovery"
)

// PickInfo 选择时的上下文信息
type PickInfo struct {
	// RemoteAddr 发起连接的客户端地址
	RemoteAddr string
}

// Picker 从快照中为一条新连接选出一个端点
// 快照为空或尚未发布时返回 nil，从不阻塞
type Picker interface {
	Pick(snap *discovery.Snapshot, info PickInfo) *discovery.Endpoint
}

// Builder 选择器构建器
type Builder interface {
	// Build 创建选择器实例
	Build() Picker
	// Name 返回选择器名称
	Name() string
}
