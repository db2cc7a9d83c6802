package logger

import "errors"

var (
	// ErrInvalidOutputPath 启用文件输出时必须指定路径
	ErrInvalidOutputPath = errors.New("logger: output path is required when file output is enabled")

	// ErrNoOutputEnabled 控制台和文件输出至少启用一个
	ErrNoOutputEnabled = errors.New("logger: at least one output (console or file) must be enabled")
)
