// Package logging 把 hlog 的输出接到 logrus 上，业务代码仍然只调用 hlog。
package logging

import (
	"io"
	"strings"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	hertzlogrus "github.com/hertz-contrib/logger/logrus"
	"github.com/sirupsen/logrus"
)

// Init 设置全局 hlog 后端
func Init(level, format string, out io.Writer) {
	l := logrus.New()
	if out != nil {
		l.SetOutput(out)
	}
	if strings.EqualFold(format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	hlog.SetLogger(hertzlogrus.NewLogger(hertzlogrus.WithLogger(l)))
	hlog.SetLevel(ParseLevel(level))
}

// ParseLevel 未识别的级别按 info 处理
func ParseLevel(level string) hlog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return hlog.LevelTrace
	case "debug":
		return hlog.LevelDebug
	case "notice":
		return hlog.LevelNotice
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
