package logger

import (
	"os"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	EncodingJSON    = "json"
	EncodingConsole = "console"
)

var (
	current atomic.Pointer[zap.Logger]
	level   = zap.NewAtomicLevelAt(parseLevel(getEnv("CHAT_LOG_LEVEL", "info")))
)

func init() {
	current.Store(newLogger(getEnv("CHAT_LOG_ENCODING", EncodingJSON)))
}

// newLogger 所有 logger 共享同一个 AtomicLevel，SetLevel 立即对已有 logger 生效
func newLogger(encoding string) *zap.Logger {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "ts"
	ec.StacktraceKey = "stack"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeDuration = zapcore.SecondsDurationEncoder

	var enc zapcore.Encoder
	if parseEncoding(encoding) == EncodingConsole {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(ec)
	} else {
		enc = zapcore.NewJSONEncoder(ec)
	}
	core := zapcore.NewCore(enc, zapcore.Lock(os.Stdout), level)
	return zap.New(core, zap.AddCaller(), zap.ErrorOutput(zapcore.Lock(os.Stderr)))
}

func L() *zap.Logger { return current.Load() }

// S 便捷获取 SugaredLogger
func S() *zap.SugaredLogger { return L().Sugar() }

func SetLevel(s string) { level.SetLevel(parseLevel(s)) }

// Configure 按配置替换全局 logger（级别 + 编码方式），可与日志调用并发执行
func Configure(lvl, encoding string) error {
	SetLevel(lvl)
	old := current.Swap(newLogger(encoding))
	if old != nil {
		// stdout 在部分平台上 Sync 会返回 EINVAL，忽略
		_ = old.Sync()
	}
	return nil
}

// parseLevel 无法识别时回退到 info
func parseLevel(s string) zapcore.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	l, err := zapcore.ParseLevel(s)
	if err != nil || s == "" {
		return zapcore.InfoLevel
	}
	return l
}

func parseEncoding(s string) string {
	if strings.EqualFold(strings.TrimSpace(s), EncodingConsole) {
		return EncodingConsole
	}
	return EncodingJSON
}

func getEnv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}
