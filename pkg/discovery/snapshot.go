package discovery

import (
	"sync/atomic"
	"time"
)

// Snapshot 一次成功轮询产出的候选集
// 发布后不再修改，刷新总是产出全新的快照对象
type Snapshot struct {
	// Seq 单调递增的发布序号，从 1 开始
	Seq uint64

	// Taken 快照采集时间
	Taken time.Time

	// Endpoints 候选端点，顺序即选取优先级
	Endpoints []Endpoint
}

// Age 返回快照距今的时长
func (s *Snapshot) Age() time.Duration {
	return time.Since(s.Taken)
}

// Store 保存最新快照，供所有 worker 无锁读取
// 发布是原子指针替换，旧快照由仍持有引用的会话继续使用
type Store struct {
	cur atomic.Pointer[Snapshot]
	seq atomic.Uint64
}

// NewStore 创建空的快照存储
func NewStore() *Store {
	return &Store{}
}

// Current 返回最新快照，首次发布前为 nil
func (s *Store) Current() *Snapshot {
	return s.cur.Load()
}

// Publish 以递增序号发布新快照并返回它
func (s *Store) Publish(endpoints []Endpoint) *Snapshot {
	snap := &Snapshot{
		Seq:       s.seq.Add(1),
		Taken:     time.Now(),
		Endpoints: endpoints,
	}
	s.cur.Store(snap)
	return snap
}
