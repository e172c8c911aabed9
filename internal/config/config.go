// Package config 加载命令行工具的配置：YAML 文件、IMAPWIRE_ 前缀的环境变量和默认值。
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/luhaoyun888/go-imapwire/imapconv"
	"github.com/luhaoyun888/go-imapwire/imapwire"
)

// AppName 用于配置目录和环境变量前缀。
const AppName = "imapwire"

type Config struct {
	Parser  ParserConfig  `mapstructure:"parser" yaml:"parser"`
	Encoder EncoderConfig `mapstructure:"encoder" yaml:"encoder"`
	Convert ConvertConfig `mapstructure:"convert" yaml:"convert"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

type ParserConfig struct {
	SpillThreshold int   `mapstructure:"spill_threshold" yaml:"spill_threshold"`
	MaxLiteralSize int64 `mapstructure:"max_literal_size" yaml:"max_literal_size"`
}

type EncoderConfig struct {
	LiteralPlus  bool `mapstructure:"literal_plus" yaml:"literal_plus"`
	LiteralMinus bool `mapstructure:"literal_minus" yaml:"literal_minus"`
}

type ConvertConfig struct {
	DecodeMailboxUTF7 bool `mapstructure:"decode_mailbox_utf7" yaml:"decode_mailbox_utf7"`
}

// LoggingConfig 是日志设置。Output 为 stdout、stderr 或文件路径。
type LoggingConfig struct {
	Level     string `mapstructure:"level" yaml:"level"`
	Format    string `mapstructure:"format" yaml:"format"`
	Output    string `mapstructure:"output" yaml:"output"`
	AddSource bool   `mapstructure:"add_source" yaml:"add_source"`
}

func DefaultConfig() Config {
	return Config{
		Parser: ParserConfig{
			SpillThreshold: imapwire.DefaultSpillThreshold,
		},
		Convert: ConvertConfig{
			DecodeMailboxUTF7: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// ParserOptions 返回对应的解析器选项。
func (cfg ParserConfig) ParserOptions() *imapwire.ParserOptions {
	return &imapwire.ParserOptions{
		SpillThreshold: cfg.SpillThreshold,
		MaxLiteralSize: cfg.MaxLiteralSize,
	}
}

// Encoder 返回对应的编码器。
func (cfg EncoderConfig) Encoder() *imapwire.Encoder {
	return &imapwire.Encoder{
		LiteralPlus:  cfg.LiteralPlus,
		LiteralMinus: cfg.LiteralMinus,
	}
}

// ConverterOptions 返回对应的转换选项。
func (cfg ConvertConfig) ConverterOptions() *imapconv.Options {
	return &imapconv.Options{DecodeMailboxUTF7: cfg.DecodeMailboxUTF7}
}

func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home dir: %w", err)
	}
	return filepath.Join(home, ".config", AppName), nil
}

func ConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load 读取 path 处的配置文件，path 为空时使用 ConfigPath。文件不存在不是错误。
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		var err error
		if path, err = ConfigPath(); err != nil {
			return cfg, err
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config %v: %w", path, err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config %v: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save 把配置写入 path，path 为空时使用 ConfigPath。返回实际写入的路径。
func Save(path string, cfg Config) (string, error) {
	if path == "" {
		var err error
		if path, err = ConfigPath(); err != nil {
			return "", err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("ensure config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}

	return path, nil
}

func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("parser.spill_threshold", cfg.Parser.SpillThreshold)
	v.SetDefault("parser.max_literal_size", cfg.Parser.MaxLiteralSize)

	v.SetDefault("encoder.literal_plus", cfg.Encoder.LiteralPlus)
	v.SetDefault("encoder.literal_minus", cfg.Encoder.LiteralMinus)

	v.SetDefault("convert.decode_mailbox_utf7", cfg.Convert.DecodeMailboxUTF7)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.output", cfg.Logging.Output)
	v.SetDefault("logging.add_source", cfg.Logging.AddSource)
}

func Validate(cfg Config) error {
	if cfg.Parser.MaxLiteralSize < 0 {
		return fmt.Errorf("parser.max_literal_size must not be negative")
	}
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error: %q", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json: %q", cfg.Logging.Format)
	}
	return nil
}
