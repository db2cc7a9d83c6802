package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// createTestConfigFile 创建测试配置文件
func createTestConfigFile(t *testing.T, content string) string {
	t.Helper()

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	return configPath
}

const testConfigContent = `
service: web
proxy:
  bind: "0.0.0.0:17382"
  workers: 4
  connect_timeout: 1s
registry:
  address: "127.0.0.1:8500"
log:
  level: debug
`

// TestManagerLoadFile 测试加载配置文件
func TestManagerLoadFile(t *testing.T) {
	configPath := createTestConfigFile(t, testConfigContent)

	m := NewManager()
	if err := m.LoadFile(configPath); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if got := m.GetString("service"); got != "web" {
		t.Errorf("GetString(service) = %q, want %q", got, "web")
	}
	if got := m.GetInt("proxy.workers"); got != 4 {
		t.Errorf("GetInt(proxy.workers) = %d, want 4", got)
	}
	if !m.IsSet("registry.address") {
		t.Error("IsSet(registry.address) = false, want true")
	}
}

// TestManagerLoadFileNotFound 测试加载不存在的配置文件
func TestManagerLoadFileNotFound(t *testing.T) {
	m := NewManager()
	err := m.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("LoadFile() expected error for missing file")
	}
	if !errors.Is(err, ErrConfigFileNotFound) {
		t.Errorf("LoadFile() error = %v, want ErrConfigFileNotFound", err)
	}
}

// TestManagerUnmarshal 测试解析整个配置
func TestManagerUnmarshal(t *testing.T) {
	configPath := createTestConfigFile(t, testConfigContent)

	m := NewManager()
	if err := m.LoadFile(configPath); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	type proxySection struct {
		Bind           string        `mapstructure:"bind"`
		Workers        int           `mapstructure:"workers"`
		ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	}
	type fullConfig struct {
		Service string       `mapstructure:"service"`
		Proxy   proxySection `mapstructure:"proxy"`
	}

	var cfg fullConfig
	if err := m.Unmarshal(&cfg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if cfg.Service != "web" {
		t.Errorf("Service = %q, want %q", cfg.Service, "web")
	}
	if cfg.Proxy.Bind != "0.0.0.0:17382" {
		t.Errorf("Proxy.Bind = %q, want %q", cfg.Proxy.Bind, "0.0.0.0:17382")
	}
	// 时长字符串应经 decode hook 转成 time.Duration
	if cfg.Proxy.ConnectTimeout != time.Second {
		t.Errorf("Proxy.ConnectTimeout = %v, want 1s", cfg.Proxy.ConnectTimeout)
	}
}

// TestManagerUnmarshalKey 测试解析指定路径
func TestManagerUnmarshalKey(t *testing.T) {
	configPath := createTestConfigFile(t, testConfigContent)

	m := NewManager()
	if err := m.LoadFile(configPath); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	type proxySection struct {
		Bind    string `mapstructure:"bind"`
		Workers int    `mapstructure:"workers"`
	}

	var proxy proxySection
	if err := m.UnmarshalKey("proxy", &proxy); err != nil {
		t.Fatalf("UnmarshalKey(proxy) error = %v", err)
	}
	if proxy.Workers != 4 {
		t.Errorf("proxy.Workers = %d, want 4", proxy.Workers)
	}

	var level string
	if err := m.UnmarshalKey("log.level", &level); err != nil {
		t.Fatalf("UnmarshalKey(log.level) error = %v", err)
	}
	if level != "debug" {
		t.Errorf("log.level = %q, want %q", level, "debug")
	}
}

// TestManagerBindEnv 测试环境变量绑定
func TestManagerBindEnv(t *testing.T) {
	configPath := createTestConfigFile(t, testConfigContent)

	t.Setenv("XPROXY_PROXY_BIND", "127.0.0.1:9999")

	m := NewManager()
	if err := m.LoadFile(configPath); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	m.BindEnv("XPROXY")

	if got := m.GetString("proxy.bind"); got != "127.0.0.1:9999" {
		t.Errorf("GetString(proxy.bind) = %q, want env override %q", got, "127.0.0.1:9999")
	}
}

// TestManagerWithDefaults 测试默认值选项
func TestManagerWithDefaults(t *testing.T) {
	m := NewManager(WithDefaults(map[string]any{
		"proxy.workers": 1,
		"log.level":     "info",
	}))

	if got := m.GetInt("proxy.workers"); got != 1 {
		t.Errorf("GetInt(proxy.workers) = %d, want default 1", got)
	}
	if got := m.GetString("log.level"); got != "info" {
		t.Errorf("GetString(log.level) = %q, want default %q", got, "info")
	}
}

// TestManagerWatch 测试配置文件变化通知
func TestManagerWatch(t *testing.T) {
	configPath := createTestConfigFile(t, testConfigContent)

	m := NewManager()
	if err := m.LoadFile(configPath); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	changed := make(chan struct{}, 1)
	if err := m.Watch(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	// 修改配置文件触发 fsnotify 事件
	if err := os.WriteFile(configPath, []byte(testConfigContent+"\nextra: 1\n"), 0o644); err != nil {
		t.Fatalf("Failed to rewrite config file: %v", err)
	}

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("Watch callback not invoked within 5s")
	}
}
