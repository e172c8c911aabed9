// Package logging 根据配置创建 slog 日志器。只有命令行工具记录日志，库包只返回错误。
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/luhaoyun888/go-imapwire/internal/config"
)

type contextKey string

const loggerKey contextKey = "logger"

// ParseLevel 把配置中的级别名称转换为 slog.Level，无法识别的名称视为 info。
func ParseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New 按配置创建日志器。Output 为文件路径时，返回的 io.Closer 关闭该文件，否则它什么也不做。
func New(cfg config.LoggingConfig) (*slog.Logger, io.Closer, error) {
	var (
		output io.Writer
		closer io.Closer = nopCloser{}
	)
	switch cfg.Output {
	case "stdout":
		output = os.Stdout
	case "stderr", "":
		output = os.Stderr
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log output: %w", err)
		}
		output, closer = f, f
	}
	return NewWithWriter(cfg, output), closer, nil
}

// NewWithWriter 创建写入 w 的日志器，忽略 cfg.Output。
func NewWithWriter(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     ParseLevel(cfg.Level),
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// WithContext 返回携带 logger 的新上下文。
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext 返回上下文中的日志器，没有时返回 slog.Default()。
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.Default()
	}
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithComponent 返回带有 component 属性的日志器。
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With("component", component)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
