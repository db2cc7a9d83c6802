package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lk2023060901/xproxy/pkg/config"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// LoadConfig 加载应用配置，优先级为 命令行参数 > 环境变量 > 配置文件 > 默认值
//
// 配置文件路径通过 --config/-c 或环境变量 XPROXY_CONFIG 指定；
// 未显式指定时尝试可执行文件目录下的 config.yaml，文件不存在则仅使用
// 命令行、环境变量和默认值。
func LoadConfig(cfg interface{}) error {
	execDir := GetExecDir()
	defaultConfig := filepath.Join(execDir, "config.yaml")
	defaultLogPath := filepath.Join(execDir, "logs")

	configPath := pflag.StringP("config", "c", defaultConfig, "path to config file")
	logPath := pflag.String("log.path", defaultLogPath, "path to log directory")
	pflag.Parse()

	v := viper.New()

	// 环境变量：XPROXY_PROXY_BIND 对应配置键 proxy.bind
	v.SetEnvPrefix("XPROXY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// 命令行参数与配置键同名，直接绑定
	if err := v.BindPFlags(pflag.CommandLine); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	explicit := pflag.CommandLine.Changed("config")
	path := *configPath
	if env := os.Getenv("XPROXY_CONFIG"); env != "" && !explicit {
		path = env
		explicit = true
	}

	v.SetConfigFile(path)
	v.SetDefault("log.output_path", *logPath)
	v.SetDefault("log.enable_file", true)

	if pflag.CommandLine.Changed("log.path") {
		v.Set("log.output_path", *logPath)
	}

	mgr := config.NewManager(config.WithViper(v))

	if err := mgr.LoadFile(path); err != nil {
		// 默认路径下没有配置文件不算错误，仍可用参数和环境变量运行
		if !config.IsNotFound(err) || explicit {
			return fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := mgr.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if dir := v.GetString("log.output_path"); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create log directory %s: %w", dir, err)
		}
	}

	return nil
}

// GetExecDir 返回可执行文件所在目录
func GetExecDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// GetConfigPath 返回默认配置文件路径
func GetConfigPath() string {
	return filepath.Join(GetExecDir(), "config.yaml")
}

// GetLogPath 返回默认日志目录
func GetLogPath() string {
	return filepath.Join(GetExecDir(), "logs")
}
