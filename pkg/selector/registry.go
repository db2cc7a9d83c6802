package selector

import "sync"

var (
	mu       sync.RWMutex
	builders = make(map[string]Builder)
)

func init() {
	// 注册内置选择器
	Register(NewNearestBuilder())
	Register(NewRoundRobinBuilder())
}

// Register 注册选择器构建器
func Register(b Builder) {
	mu.Lock()
	defer mu.Unlock()
	builders[b.Name()] = b
}

// Get 获取选择器构建器
func Get(name string) Builder {
	mu.RLock()
	defer mu.RUnlock()
	return builders[name]
}

// New 创建选择器实例，未注册的名称返回 nil
func New(name string) Picker {
	b := Get(name)
	if b == nil {
		return nil
	}
	return b.Build()
}
