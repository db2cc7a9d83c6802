package discovery

import "errors"

var (
	// ErrRegistryUnavailable 注册中心传输层失败
	ErrRegistryUnavailable = errors.New("discovery: registry unavailable")

	// ErrRegistryProtocol 注册中心返回了非预期或无法解码的响应
	ErrRegistryProtocol = errors.New("discovery: registry protocol error")

	// ErrCoordinatesUnavailable 网络坐标不可用，就近排序退化为原始顺序
	ErrCoordinatesUnavailable = errors.New("discovery: coordinates unavailable")

	// ErrInitialDiscovery 启动超时内未能完成首次发现
	ErrInitialDiscovery = errors.New("discovery: initial discovery failed")

	// ErrAlreadyStarted 刷新器重复启动
	ErrAlreadyStarted = errors.New("discovery: refresher already started")

	// ErrInvalidNodeMeta 节点元数据过滤项格式错误
	ErrInvalidNodeMeta = errors.New("discovery: invalid node meta filter")
)
