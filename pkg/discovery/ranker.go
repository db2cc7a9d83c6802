package discovery

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// AgentNode 哨兵值，表示以注册中心本地 agent 所在节点为参考点
const AgentNode = "_agent"

// Ranker 对候选端点重新排序
// 排序失败时返回原始顺序的端点和错误，调用方可以直接使用返回值降级
type Ranker interface {
	Rank(ctx context.Context, endpoints []Endpoint) ([]Endpoint, error)
}

// Unranked 保持注册中心返回的原始顺序
type Unranked struct{}

// Rank 原样返回输入
func (Unranked) Rank(_ context.Context, endpoints []Endpoint) ([]Endpoint, error) {
	return endpoints, nil
}

// NearestRanker 按到参考节点的估算往返时延升序排序
// 时延来自注册中心发布的网络坐标，坐标缺失的端点排在所有可解析端点之后
type NearestRanker struct {
	near   string
	coords CoordinateSource
}

// NewNearestRanker 创建就近排序器
// near 为参考节点名，AgentNode 表示使用本地 agent 节点
func NewNearestRanker(near string, coords CoordinateSource) *NearestRanker {
	return &NearestRanker{
		near:   near,
		coords: coords,
	}
}

type rankedEndpoint struct {
	ep    Endpoint
	rtt   time.Duration
	known bool
}

// Rank 稳定排序：RTT 相等或均不可解析时保持原有相对顺序
func (r *NearestRanker) Rank(ctx context.Context, endpoints []Endpoint) ([]Endpoint, error) {
	if len(endpoints) <= 1 {
		return endpoints, nil
	}

	coords, err := r.coords.Coordinates(ctx)
	if err != nil {
		return endpoints, fmt.Errorf("%w: %v", ErrCoordinatesUnavailable, err)
	}

	near := r.near
	if near == AgentNode {
		name, err := r.coords.NodeName(ctx)
		if err != nil {
			return endpoints, fmt.Errorf("%w: resolve agent node: %v", ErrCoordinatesUnavailable, err)
		}
		near = name
	}

	ref, ok := coords[near]
	if !ok || ref == nil {
		return endpoints, fmt.Errorf("%w: no coordinate for node %q", ErrCoordinatesUnavailable, near)
	}

	items := make([]rankedEndpoint, len(endpoints))
	for i, ep := range endpoints {
		items[i] = rankedEndpoint{ep: ep}
		if c := coords[ep.Node]; c != nil {
			items[i].rtt = ref.DistanceTo(c)
			items[i].known = true
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.known != b.known {
			return a.known
		}
		if !a.known {
			return false
		}
		return a.rtt < b.rtt
	})

	ranked := make([]Endpoint, len(items))
	for i, it := range items {
		ranked[i] = it.ep
	}
	return ranked, nil
}
