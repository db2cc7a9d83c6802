package proxy

import "errors"

var (
	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("proxy: invalid config")

	// ErrServerClosed 服务器已关闭
	ErrServerClosed = errors.New("proxy: server closed")

	// ErrServerAlreadyStarted 服务器已启动
	ErrServerAlreadyStarted = errors.New("proxy: server already started")

	// ErrNoCandidates 当前快照中没有可用端点
	ErrNoCandidates = errors.New("proxy: no candidate endpoints")

	// ErrUnknownSelector 未注册的端点选择策略
	ErrUnknownSelector = errors.New("proxy: unknown selector")
)
