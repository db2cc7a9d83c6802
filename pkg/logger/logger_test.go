package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TestNew 测试创建 Logger
func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:    "nil config uses default",
			config:  nil,
			wantErr: false,
		},
		{
			name: "valid minimal config",
			config: &Config{
				Level:         InfoLevel,
				Format:        JSONFormat,
				EnableConsole: true,
			},
			wantErr: false,
		},
		{
			name: "invalid config - file enabled but no path",
			config: &Config{
				Level:      InfoLevel,
				EnableFile: true,
				OutputPath: "",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && logger == nil {
				t.Error("New() returned nil logger without error")
			}
		})
	}
}

// newBufferLogger 创建输出到内存缓冲区的 logger，便于断言输出内容
func newBufferLogger(t *testing.T, level Level) (*BaseLogger, *bytes.Buffer) {
	t.Helper()

	logger, err := New(&Config{
		Level:         level,
		Format:        JSONFormat,
		EnableConsole: true,
	})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	var buf bytes.Buffer
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zapcore.EncoderConfig{
			MessageKey:  "msg",
			LevelKey:    "level",
			NameKey:     "logger",
			EncodeLevel: zapcore.LowercaseLevelEncoder,
		}),
		zapcore.AddSync(&buf),
		logger.parseLevel(level),
	)
	logger.Logger = zap.New(core)

	return logger, &buf
}

// TestLoggerLevels 测试日志级别过滤
func TestLoggerLevels(t *testing.T) {
	logger, buf := newBufferLogger(t, WarnLevel)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 log lines at warn level, got %d: %q", len(lines), buf.String())
	}

	var first map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("Failed to decode log line: %v", err)
	}
	if first["level"] != "warn" || first["msg"] != "warn message" {
		t.Errorf("Unexpected first line: %v", first)
	}
}

// TestLoggerKeyValues 测试 key-value 字段输出
func TestLoggerKeyValues(t *testing.T) {
	logger, buf := newBufferLogger(t, DebugLevel)

	logger.Info("connected", "address", "127.0.0.1:8500", "attempt", 3)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to decode log line: %v", err)
	}

	if entry["address"] != "127.0.0.1:8500" {
		t.Errorf("Expected address field, got %v", entry["address"])
	}
	if entry["attempt"] != float64(3) {
		t.Errorf("Expected attempt=3, got %v", entry["attempt"])
	}
}

// TestNamed 测试具名 logger
func TestNamed(t *testing.T) {
	logger, buf := newBufferLogger(t, DebugLevel)

	named := logger.Named("discovery")
	named.Info("poll ok")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to decode log line: %v", err)
	}
	if entry["logger"] != "discovery" {
		t.Errorf("Expected logger name 'discovery', got %v", entry["logger"])
	}
}

// TestWithFields 测试字段附加
func TestWithFields(t *testing.T) {
	logger, buf := newBufferLogger(t, DebugLevel)

	child := logger.WithFields("session_id", "abc123")
	child.Info("relay done")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to decode log line: %v", err)
	}
	if entry["session_id"] != "abc123" {
		t.Errorf("Expected session_id field, got %v", entry["session_id"])
	}
}

// TestToZapFields 测试 key-value 转换
func TestToZapFields(t *testing.T) {
	// 奇数个参数视为非法
	if fields := toZapFields("key"); fields != nil {
		t.Errorf("Expected nil for odd arguments, got %v", fields)
	}

	// 非字符串 key 被跳过
	fields := toZapFields(42, "value", "ok", true)
	if len(fields) != 1 {
		t.Fatalf("Expected 1 field, got %d", len(fields))
	}
	if fields[0].Key != "ok" {
		t.Errorf("Expected key 'ok', got %s", fields[0].Key)
	}

	// zap.Field 直接透传
	fields = toZapFields(zap.String("a", "b"), zap.Int("c", 1))
	if len(fields) != 2 {
		t.Errorf("Expected 2 fields for zap.Field passthrough, got %d", len(fields))
	}
}

// TestFileOutput 测试文件输出
func TestFileOutput(t *testing.T) {
	tempDir := t.TempDir()
	outputPath := filepath.Join(tempDir, "test.log")

	logger, err := New(&Config{
		Level:         InfoLevel,
		Format:        JSONFormat,
		EnableConsole: false,
		EnableFile:    true,
		OutputPath:    outputPath,
	})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	logger.Info("written to file")
	_ = logger.Sync()

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Errorf("Log file does not contain expected message: %s", data)
	}
}

// TestDefault 测试默认 logger
func TestDefault(t *testing.T) {
	if Default() == nil {
		t.Fatal("Default() returned nil")
	}

	noop := NewNoop()
	SetDefault(noop)
	if Default() != Logger(noop) {
		t.Error("Default() did not return the logger set by SetDefault")
	}

	// 恢复，避免影响其他测试
	SetDefault(NewNoop())
}
