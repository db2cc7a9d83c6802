package consul

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/hashicorp/consul/api"
	"github.com/hashicorp/serf/coordinate"
	"github.com/lk2023060901/xproxy/pkg/config"
	"github.com/lk2023060901/xproxy/pkg/discovery"
	"github.com/lk2023060901/xproxy/pkg/logger"
)

// Client Consul 目录客户端
// 实现 discovery.Source 与 discovery.CoordinateSource
type Client struct {
	config *Config
	api    *api.Client
	log    logger.Logger
}

// New 创建 Consul 客户端
func New(cfg *Config) (*Client, error) {
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, err
	}

	if err := merged.Validate(); err != nil {
		return nil, err
	}

	apiCfg := api.DefaultConfig()
	apiCfg.Address = merged.Address
	apiCfg.Scheme = merged.Scheme
	apiCfg.Token = merged.Token

	cli, err := api.NewClient(apiCfg)
	if err != nil {
		return nil, err
	}

	return &Client{
		config: merged,
		api:    cli,
		log:    logger.Default().Named("consul"),
	}, nil
}

// Config 获取配置
func (c *Client) Config() *Config {
	return c.config
}

// Fetch 查询目录中的服务实例
// 按 地址:端口 去重，配置了端口覆盖时替换每个端点的注册端口
func (c *Client) Fetch(ctx context.Context) ([]discovery.Endpoint, error) {
	opts := &api.QueryOptions{
		Datacenter: c.config.Datacenter,
		NodeMeta:   c.config.NodeMeta,
	}

	services, _, err := c.api.Catalog().Service(c.config.Service, c.config.Tag, opts.WithContext(ctx))
	if err != nil {
		return nil, classify(err)
	}

	endpoints := make([]discovery.Endpoint, 0, len(services))
	seen := make(map[string]struct{}, len(services))
	for _, svc := range services {
		addr := svc.ServiceAddress
		if addr == "" {
			addr = svc.Address
		}

		port := svc.ServicePort
		if c.config.PortOverride > 0 {
			port = c.config.PortOverride
		}

		ep := discovery.Endpoint{
			Node:       svc.Node,
			Address:    addr,
			Port:       port,
			Tags:       svc.ServiceTags,
			Meta:       svc.NodeMeta,
			Datacenter: svc.Datacenter,
		}

		key := ep.Addr()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		endpoints = append(endpoints, ep)
	}

	return endpoints, nil
}

// Coordinates 返回数据中心内所有节点的网络坐标
func (c *Client) Coordinates(ctx context.Context) (map[string]*coordinate.Coordinate, error) {
	opts := &api.QueryOptions{
		Datacenter: c.config.Datacenter,
	}

	entries, _, err := c.api.Coordinate().Nodes(opts.WithContext(ctx))
	if err != nil {
		return nil, classify(err)
	}

	coords := make(map[string]*coordinate.Coordinate, len(entries))
	for _, entry := range entries {
		coords[entry.Node] = entry.Coord
	}
	return coords, nil
}

// NodeName 返回本地 agent 的节点名，agent 侧会缓存结果
func (c *Client) NodeName(_ context.Context) (string, error) {
	name, err := c.api.Agent().NodeName()
	if err != nil {
		return "", classify(err)
	}
	if name == "" {
		return "", fmt.Errorf("%w: agent reported empty node name", discovery.ErrRegistryProtocol)
	}
	return name, nil
}

// classify 区分传输层失败与协议层失败
func classify(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%w: %v", discovery.ErrRegistryUnavailable, err)
	}
	return fmt.Errorf("%w: %v", discovery.ErrRegistryProtocol, err)
}
