package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/luhaoyun888/go-imapwire/internal/config"
	"github.com/luhaoyun888/go-imapwire/internal/logging"
)

// app 保存所有子命令共用的状态，在 PersistentPreRunE 中初始化。
type app struct {
	configPath string
	logLevel   string

	cfg    config.Config
	closer io.Closer
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:           "imapwire",
		Short:         "imapwire - IMAP wire protocol inspector",
		Long:          "Parse server responses into value trees, convert them into typed data and encode commands.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := a.setup()
			if err != nil {
				return err
			}
			// 子命令通过 logging.FromContext(cmd.Context()) 取得日志器
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(logging.WithContext(ctx, logger))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default ~/.config/imapwire/config.yaml)")
	flags.StringVar(&a.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newParseCmd(a),
		newConvertCmd(a),
		newEncodeCmd(a),
		newConfigCmd(a),
	)
	return rootCmd
}

func (a *app) setup() (*slog.Logger, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
		if err := config.Validate(cfg); err != nil {
			return nil, err
		}
	}
	a.cfg = cfg

	logger, closer, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}
	a.closer = closer
	return logger, nil
}

func (a *app) close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// openInput 打开 args 中的第一个文件，没有参数或参数为 "-" 时使用标准输入。
func openInput(cmd *cobra.Command, args []string) (io.ReadCloser, string, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(cmd.InOrStdin()), "-", nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, "", err
	}
	return f, args[0], nil
}
