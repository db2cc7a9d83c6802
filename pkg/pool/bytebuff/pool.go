package bytebuff

import (
	"sync"
	"sync/atomic"
)

const (
	// 分级配置: 512B, 2KB, 8KB, 32KB, 128KB
	minSize  = 512
	maxSize  = 128 << 10 // 128KB，超过此大小的 buffer 不放回池中
	numPools = 5         // 分级数量
)

// 分级大小: 512, 2048, 8192, 32768, 131072
var poolSizes = [numPools]int{
	1 << 9,  // 512B
	1 << 11, // 2KB
	1 << 13, // 8KB，转发缓冲区默认档位
	1 << 15, // 32KB
	1 << 17, // 128KB
}

// Pool 是分级的字节切片对象池
// Get 返回的切片长度等于请求大小，容量为所在档位大小
type Pool struct {
	pools [numPools]sync.Pool

	// 统计信息
	gets   uint64
	puts   uint64
	misses uint64
}

// defaultPool 是默认的全局池
var defaultPool = NewPool()

// NewPool 创建一个新的分级 buffer pool
func NewPool() *Pool {
	p := &Pool{}
	for i := 0; i < numPools; i++ {
		size := poolSizes[i]
		p.pools[i].New = func() interface{} {
			buf := make([]byte, size)
			return &buf
		}
	}
	return p
}

// Default 返回默认的全局池
func Default() *Pool {
	return defaultPool
}

// Get 从池中获取一个长度为 size 的切片
// 超过最大档位的请求直接分配，不经过池
func (p *Pool) Get(size int) []byte {
	atomic.AddUint64(&p.gets, 1)

	if size <= 0 {
		size = minSize
	}

	if size > maxSize {
		atomic.AddUint64(&p.misses, 1)
		return make([]byte, size)
	}

	idx := p.selectPool(size)
	v := p.pools[idx].Get().(*[]byte)
	return (*v)[:size]
}

// Put 将切片归还到池中
// 容量低于最小档位或超过最大档位的切片交给 GC 回收
func (p *Pool) Put(buf []byte) {
	c := cap(buf)
	if c < minSize || c > maxSize {
		return
	}

	atomic.AddUint64(&p.puts, 1)

	// 归还到不超过自身容量的最大档位，保证后续 Get 的切片操作不越界
	full := buf[:c]
	idx := p.selectPoolByCap(c)
	p.pools[idx].Put(&full)
}

// selectPool 根据请求大小选择分级池（向上取档）
func (p *Pool) selectPool(size int) int {
	for i := 0; i < numPools; i++ {
		if size <= poolSizes[i] {
			return i
		}
	}
	return numPools - 1
}

// selectPoolByCap 根据实际容量选择归还的池（向下取档）
func (p *Pool) selectPoolByCap(c int) int {
	for i := numPools - 1; i >= 0; i-- {
		if c >= poolSizes[i] {
			return i
		}
	}
	return 0
}

// Stats 返回池的统计信息
func (p *Pool) Stats() (gets, puts, misses uint64) {
	return atomic.LoadUint64(&p.gets),
		atomic.LoadUint64(&p.puts),
		atomic.LoadUint64(&p.misses)
}

// --- 全局便捷函数 ---

// Get 从默认池中获取一个切片
func Get(size int) []byte {
	return defaultPool.Get(size)
}

// Put 将切片归还到默认池中
func Put(buf []byte) {
	defaultPool.Put(buf)
}

// Stats 返回默认池的统计信息
func Stats() (gets, puts, misses uint64) {
	return defaultPool.Stats()
}
