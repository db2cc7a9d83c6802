package discovery

import (
	"context"

	"github.com/hashicorp/serf/coordinate"
)

// Source 执行一次目录查询，返回通过过滤条件的候选端点
// 不在内部重试，重试节奏由 Refresher 控制
type Source interface {
	Fetch(ctx context.Context) ([]Endpoint, error)
}

// CoordinateSource 提供节点网络坐标，用于就近排序
type CoordinateSource interface {
	// Coordinates 返回节点名到坐标的映射
	Coordinates(ctx context.Context) (map[string]*coordinate.Coordinate, error)

	// NodeName 返回注册中心本地 agent 的节点名
	NodeName(ctx context.Context) (string, error)
}
