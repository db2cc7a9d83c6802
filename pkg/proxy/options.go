package proxy

import (
	"github.com/lk2023060901/xproxy/pkg/logger"
	"github.com/lk2023060901/xproxy/pkg/pool/bytebuff"
	"github.com/lk2023060901/xproxy/pkg/selector"
)

// Option 服务器选项
type Option func(*Server)

// WithLogger 设置日志记录器
func WithLogger(log logger.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithPicker 直接设置端点选择器，优先于配置中的 Selector 名称
func WithPicker(p selector.Picker) Option {
	return func(s *Server) {
		if p != nil {
			s.picker = p
		}
	}
}

// WithMetrics 设置运行指标
func WithMetrics(m *Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithBufferPool 设置转发缓冲池
func WithBufferPool(p *bytebuff.Pool) Option {
	return func(s *Server) {
		if p != nil {
			s.pool = p
		}
	}
}
