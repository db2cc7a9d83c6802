package app

import (
	"time"

	"github.com/google/uuid"
	"github.com/lk2023060901/xproxy/pkg/logger"
)

// Options 应用程序选项
type Options struct {
	ID          string
	Name        string
	Version     string
	StopTimeout time.Duration
	Logger      logger.Logger
	LogConfig   *logger.Config
}

// Option 应用程序选项函数
type Option func(*Options)

// DefaultOptions 返回默认选项
func DefaultOptions() Options {
	return Options{
		ID:          uuid.NewString(),
		Name:        AppName,
		Version:     Version,
		StopTimeout: 30 * time.Second,
		Logger:      logger.Default(),
	}
}

// WithID 设置应用实例 ID
func WithID(id string) Option {
	return func(o *Options) {
		o.ID = id
	}
}

// WithName 设置应用名称
func WithName(name string) Option {
	return func(o *Options) {
		o.Name = name
	}
}

// WithVersion 设置应用版本
func WithVersion(version string) Option {
	return func(o *Options) {
		o.Version = version
	}
}

// WithStopTimeout 设置停止超时时间
func WithStopTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.StopTimeout = timeout
	}
}

// WithLogger 设置应用日志对象
func WithLogger(l logger.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithLogConfig 设置日志配置，应用启动时据此构建主日志对象
func WithLogConfig(cfg *logger.Config) Option {
	return func(o *Options) {
		o.LogConfig = cfg
	}
}
