// Package logging 将 hlog 的输出切换到 logrus（JSON 格式），业务代码继续使用 hlog。
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	hertzlogrus "github.com/hertz-contrib/logger/logrus"
	"github.com/sirupsen/logrus"
)

// NewLogrus 创建结构化 JSON logger，字段名与日志平台约定一致
func NewLogrus(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.Formatter = &logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "severity",
			logrus.FieldKeyMsg:   "message",
		},
		TimestampFormat: time.RFC3339Nano,
	}
	l.Out = out
	return l
}

// Init 安装全局 hlog 实现
func Init(level string) {
	logger := hertzlogrus.NewLogger(hertzlogrus.WithLogger(NewLogrus(os.Stdout)))
	hlog.SetLogger(logger)
	hlog.SetLevel(ParseLevel(level))
}

// ParseLevel 未识别的级别按 info 处理
func ParseLevel(level string) hlog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return hlog.LevelTrace
	case "debug":
		return hlog.LevelDebug
	case "warn", "warning":
		return hlog.LevelWarn
	case "error":
		return hlog.LevelError
	case "fatal":
		return hlog.LevelFatal
	default:
		return hlog.LevelInfo
	}
}
