package selector

import (
	"sync"
	"testing"

	"github.com/lk2023060901/xproxy/pkg/discovery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotOf(nodes ...string) *discovery.Snapshot {
	endpoints := make([]discovery.Endpoint, len(nodes))
	for i, n := range nodes {
		endpoints[i] = discovery.Endpoint{Node: n, Address: "10.0.0.1", Port: 9000 + i}
	}
	return &discovery.Snapshot{Seq: 1, Endpoints: endpoints}
}

func TestNearestPicksHead(t *testing.T) {
	p := New(NearestName)
	require.NotNil(t, p)

	snap := snapshotOf("a", "b", "c")

	// 每次选择都返回头部端点
	for i := 0; i < 5; i++ {
		ep := p.Pick(snap, PickInfo{})
		require.NotNil(t, ep)
		assert.Equal(t, "a", ep.Node)
	}
}

func TestNearestEmptySnapshot(t *testing.T) {
	p := New(NearestName)

	assert.Nil(t, p.Pick(nil, PickInfo{}))
	assert.Nil(t, p.Pick(&discovery.Snapshot{}, PickInfo{}))
}

func TestRoundRobinCycles(t *testing.T) {
	p := New(RoundRobinName)
	require.NotNil(t, p)

	snap := snapshotOf("a", "b", "c")

	var picked []string
	for i := 0; i < 6; i++ {
		ep := p.Pick(snap, PickInfo{})
		require.NotNil(t, ep)
		picked = append(picked, ep.Node)
	}
	assert.Equal(t, []string{"a", "b", "c", "a", "b", "c"}, picked)
}

func TestRoundRobinEmptySnapshot(t *testing.T) {
	p := New(RoundRobinName)

	assert.Nil(t, p.Pick(nil, PickInfo{}))
	assert.Nil(t, p.Pick(&discovery.Snapshot{}, PickInfo{}))
}

func TestRoundRobinSnapshotShrink(t *testing.T) {
	p := New(RoundRobinName)

	big := snapshotOf("a", "b", "c", "d")
	for i := 0; i < 3; i++ {
		p.Pick(big, PickInfo{})
	}

	// 快照收缩后选择仍然有效
	small := snapshotOf("x")
	for i := 0; i < 4; i++ {
		ep := p.Pick(small, PickInfo{})
		require.NotNil(t, ep)
		assert.Equal(t, "x", ep.Node)
	}
}

func TestRoundRobinConcurrent(t *testing.T) {
	p := New(RoundRobinName)
	snap := snapshotOf("a", "b", "c")

	var wg sync.WaitGroup
	counts := make([]int64, 3)
	var mu sync.Mutex

	for i := 0; i < 9; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 300; j++ {
				ep := p.Pick(snap, PickInfo{})
				mu.Lock()
				switch ep.Node {
				case "a":
					counts[0]++
				case "b":
					counts[1]++
				case "c":
					counts[2]++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// 2700 次选择均匀分布在三个端点上
	assert.Equal(t, int64(900), counts[0])
	assert.Equal(t, int64(900), counts[1])
	assert.Equal(t, int64(900), counts[2])
}

func TestRegistry(t *testing.T) {
	assert.NotNil(t, Get(NearestName))
	assert.NotNil(t, Get(RoundRobinName))
	assert.Nil(t, Get("no-such-policy"))
	assert.Nil(t, New("no-such-policy"))
}
