package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/lk2023060901/xproxy/app/proxy/internal/metrics"
	"github.com/lk2023060901/xproxy/pkg/app"
	"github.com/lk2023060901/xproxy/pkg/config"
	"github.com/lk2023060901/xproxy/pkg/discovery"
	"github.com/lk2023060901/xproxy/pkg/discovery/consul"
	"github.com/lk2023060901/xproxy/pkg/logger"
	"github.com/lk2023060901/xproxy/pkg/prometheus"
	"github.com/lk2023060901/xproxy/pkg/proxy"
	"github.com/lk2023060901/xproxy/pkg/selector"
)

// Config 代理服务配置
type Config struct {
	Log logger.Config `mapstructure:"log"`

	// 代理配置
	Proxy proxy.Config `mapstructure:"proxy"`

	// 服务发现配置
	Discovery DiscoveryConfig `mapstructure:"discovery"`

	// Prometheus 配置
	Prometheus prometheus.Config `mapstructure:"prometheus"`
}

// DiscoveryConfig 服务发现配置
type DiscoveryConfig struct {
	Consul consul.Config `mapstructure:"consul"`

	// Near 就近排序的参照节点，留空保持注册中心顺序，
	// "_agent" 表示本地 agent 所在节点
	Near string `mapstructure:"near"`

	// NodeMeta 以 key:value 形式给出的节点元数据过滤，与 consul.node_meta 合并
	NodeMeta []string `mapstructure:"node_meta"`

	// StartupTimeout 首次发现的截止时间，超时则启动失败
	StartupTimeout time.Duration `mapstructure:"startup_timeout"`
}

// 命令行参数与配置键同名，可直接覆盖对应配置项
func init() {
	pflag.String("proxy.bind", "0.0.0.0:17382", "proxy listen address")
	pflag.String("proxy.selector", selector.NearestName, "endpoint selection strategy")
	pflag.Int("proxy.workers", 1, "accept loops sharing the listener")
	pflag.Duration("proxy.connect_timeout", time.Second, "upstream dial timeout")

	pflag.String("discovery.consul.address", "127.0.0.1:8500", "consul HTTP address")
	pflag.String("discovery.consul.service", "", "service name to discover")
	pflag.String("discovery.consul.datacenter", "", "consul datacenter")
	pflag.String("discovery.consul.tag", "", "require candidates to carry this tag")
	pflag.String("discovery.consul.token", "", "consul ACL token")
	pflag.StringSlice("discovery.node_meta", nil, "node meta filters as key:value pairs")
	pflag.String("discovery.near", "", `reference node for proximity ranking, "_agent" for the local agent node`)
	pflag.Duration("discovery.startup_timeout", 10*time.Second, "deadline for the first discovery poll")

	pflag.String("prometheus.http_server.addr", ":9090", "metrics HTTP listen address")
}

func main() {
	var cfg Config

	// 1. 加载配置
	if err := app.LoadConfig(&cfg); err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	l, err := logger.New(&cfg.Log)
	if err != nil {
		panic(err)
	}
	logger.SetDefault(l)

	// 3. 合并命令行形式的 node_meta 过滤
	if len(cfg.Discovery.NodeMeta) > 0 {
		meta, err := discovery.ParseNodeMeta(cfg.Discovery.NodeMeta)
		if err != nil {
			l.Error("invalid node_meta filter", "error", err)
			os.Exit(1)
		}
		if cfg.Discovery.Consul.NodeMeta == nil {
			cfg.Discovery.Consul.NodeMeta = make(map[string]string, len(meta))
		}
		for k, v := range meta {
			cfg.Discovery.Consul.NodeMeta[k] = v
		}
	}

	// 4. 创建 Consul 目录客户端
	catalog, err := consul.New(&cfg.Discovery.Consul)
	if err != nil {
		l.Error("failed to create consul client", "error", err)
		os.Exit(1)
	}

	// 5. 可选的就近排序
	var ranker discovery.Ranker
	if cfg.Discovery.Near != "" {
		ranker = discovery.NewNearestRanker(cfg.Discovery.Near, catalog)
	}

	// 6. 指标客户端
	promCfg, err := config.MergeConfig(prometheus.DefaultConfig(), &cfg.Prometheus)
	if err != nil {
		l.Error("failed to merge prometheus config", "error", err)
		os.Exit(1)
	}
	promClient, err := prometheus.New(promCfg)
	if err != nil {
		l.Error("failed to create prometheus client", "error", err)
		os.Exit(1)
	}

	// 7. 快照存储与各项指标序列
	store := discovery.NewStore()

	discoveryMetrics, err := metrics.RegisterDiscovery(promClient, store)
	if err != nil {
		l.Error("failed to register discovery metrics", "error", err)
		os.Exit(1)
	}

	proxyMetrics, err := proxy.NewMetrics(promClient)
	if err != nil {
		l.Error("failed to register proxy metrics", "error", err)
		os.Exit(1)
	}

	// 8. 后台刷新器，启动返回即保证首个快照已发布
	refresherOpts := []discovery.RefresherOption{
		discovery.WithLogger(l.Named("discovery")),
		discovery.WithPollHook(discoveryMetrics.OnPoll),
	}
	if cfg.Discovery.StartupTimeout > 0 {
		refresherOpts = append(refresherOpts, discovery.WithStartupTimeout(cfg.Discovery.StartupTimeout))
	}
	refresher := discovery.NewRefresher(catalog, ranker, store, refresherOpts...)

	// 9. 代理服务器
	proxyServer, err := proxy.New(store, &cfg.Proxy,
		proxy.WithLogger(l.Named("proxy")),
		proxy.WithMetrics(proxyMetrics),
	)
	if err != nil {
		l.Error("failed to create proxy server", "error", err)
		os.Exit(1)
	}

	// 10. 组装应用，启动顺序为先有快照、再开监听、最后暴露指标
	application := app.NewBaseApp(
		app.WithName("xproxy"),
		app.WithLogger(l),
	)
	application.AppendServer(refresher)
	application.AppendServer(proxyServer)
	application.AppendServer(promClient)

	// 11. 运行
	if err := application.Run(); err != nil {
		l.Error("proxy exited with error", "error", err)
		os.Exit(1)
	}
}
