package consul

import (
	"github.com/lk2023060901/xproxy/pkg/config"
)

// Config Consul 目录客户端配置
type Config struct {
	// Address 注册中心地址 host:port
	Address string `mapstructure:"address" json:"address" yaml:"address" validate:"omitempty,hostname_port"`

	// Scheme 访问协议
	Scheme string `mapstructure:"scheme" json:"scheme" yaml:"scheme" validate:"omitempty,oneof=http https"`

	// Token 访问令牌（可选）
	Token string `mapstructure:"token" json:"token" yaml:"token"`

	// Service 要发现的服务名
	Service string `mapstructure:"service" json:"service" yaml:"service" validate:"required"`

	// Datacenter 数据中心，留空使用 agent 所在数据中心
	Datacenter string `mapstructure:"datacenter" json:"datacenter" yaml:"datacenter"`

	// Tag 服务标签过滤，至多一个
	Tag string `mapstructure:"tag" json:"tag" yaml:"tag"`

	// NodeMeta 节点元数据过滤，所有键值必须精确匹配
	NodeMeta map[string]string `mapstructure:"node_meta" json:"node_meta" yaml:"node_meta"`

	// PortOverride 大于 0 时覆盖所有端点的注册端口
	PortOverride int `mapstructure:"port_override" json:"port_override" yaml:"port_override" validate:"omitempty,min=1,max=65535"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Address: "127.0.0.1:8500",
		Scheme:  "http",
	}
}

var validate = config.NewValidator()

// Validate 验证配置
func (c *Config) Validate() error {
	return validate.Validate(c)
}
