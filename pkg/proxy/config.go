package proxy

import (
	"fmt"
	"time"

	"github.com/lk2023060901/xproxy/pkg/selector"
)

// Config 代理服务器配置
type Config struct {
	// Bind 监听地址，如 "0.0.0.0:17382"
	Bind string `mapstructure:"bind" json:"bind" yaml:"bind"`

	// Network 网络类型，tcp/tcp4/tcp6
	Network string `mapstructure:"network" json:"network" yaml:"network"`

	// Workers 共享监听器的接收循环数量
	Workers int `mapstructure:"workers" json:"workers" yaml:"workers"`

	// ConnectTimeout 上游建连超时
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" json:"connect_timeout" yaml:"connect_timeout"`

	// BufferSize 每个转发方向的缓冲区大小
	BufferSize int `mapstructure:"buffer_size" json:"buffer_size" yaml:"buffer_size"`

	// MaxConnections 并发会话上限，超出后接收循环阻塞等待空位
	MaxConnections int `mapstructure:"max_connections" json:"max_connections" yaml:"max_connections"`

	// Selector 端点选择策略
	Selector string `mapstructure:"selector" json:"selector" yaml:"selector"`

	// TCPNoDelay 是否禁用 Nagle 算法
	TCPNoDelay bool `mapstructure:"tcp_no_delay" json:"tcp_no_delay" yaml:"tcp_no_delay"`

	// TCPKeepAlive KeepAlive 间隔
	TCPKeepAlive time.Duration `mapstructure:"tcp_keep_alive" json:"tcp_keep_alive" yaml:"tcp_keep_alive"`

	// DrainTimeout 停止时等待在途会话结束的宽限期
	DrainTimeout time.Duration `mapstructure:"drain_timeout" json:"drain_timeout" yaml:"drain_timeout"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Bind:           "0.0.0.0:17382",
		Network:        "tcp",
		Workers:        1,
		ConnectTimeout: 1 * time.Second,
		BufferSize:     8 * 1024,
		MaxConnections: 65536,
		Selector:       selector.NearestName,
		TCPNoDelay:     true,
		TCPKeepAlive:   30 * time.Second,
		DrainTimeout:   5 * time.Second,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c == nil {
		return ErrInvalidConfig
	}
	if c.Bind == "" {
		return fmt.Errorf("%w: bind is required", ErrInvalidConfig)
	}
	if c.Network == "" {
		c.Network = "tcp"
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 1 * time.Second
	}
	if c.BufferSize <= 0 {
		c.BufferSize = 8 * 1024
	}
	if c.MaxConnections <= 0 {
		c.MaxConnections = 65536
	}
	if c.Selector == "" {
		c.Selector = selector.NearestName
	}
	if c.DrainTimeout <= 0 {
		c.DrainTimeout = 5 * time.Second
	}
	return nil
}
