package monitor

import (
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/d60-Lab/linkboard/config"
)

// InitSentry DSN 为空时不启用，返回 false
func InitSentry(cfg config.SentryConfig) (bool, error) {
	if cfg.DSN == "" {
		return false, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		AttachStacktrace: true,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// Flush 退出前等待事件发送
func Flush() { sentry.Flush(2 * time.Second) }

// CaptureError 未初始化时 sentry 客户端为空，调用是安全的空操作
func CaptureError(err error) {
	if err == nil {
		return
	}
	sentry.CaptureException(err)
}
