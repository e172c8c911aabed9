package imap

import (
	"strings"

	"github.com/luhaoyun888/go-imapwire/imapwire"
)

// IDData 表示客户端或服务器的身份信息（RFC 2971）。
type IDData struct {
	Name        string // 客户端名称
	Version     string // 客户端版本
	OS          string // 操作系统名称
	OSVersion   string // 操作系统版本
	Vendor      string // 客户端供应商
	SupportURL  string // 支持链接
	Address     string // 客户端地址
	Date        string // 日期
	Command     string // 执行的命令
	Arguments   string // 命令参数
	Environment string // 环境信息
}

// idKeys 是 RFC 2971 定义的键，Arg 按此顺序写出字段。
var idKeys = []string{
	"name", "version", "os", "os-version", "vendor", "support-url",
	"address", "date", "command", "arguments", "environment",
}

// Field 返回键对应的字段，键不区分大小写。未知的键返回 nil。
func (data *IDData) Field(key string) *string {
	switch strings.ToLower(key) {
	case "name":
		return &data.Name
	case "version":
		return &data.Version
	case "os":
		return &data.OS
	case "os-version":
		return &data.OSVersion
	case "vendor":
		return &data.Vendor
	case "support-url":
		return &data.SupportURL
	case "address":
		return &data.Address
	case "date":
		return &data.Date
	case "command":
		return &data.Command
	case "arguments":
		return &data.Arguments
	case "environment":
		return &data.Environment
	default:
		return nil
	}
}

// Arg 返回 ID 命令的参数：由非空字段组成的 (键 值 ...) 列表。data 为 nil 或所有字段为空时写出 NIL。
func (data *IDData) Arg() imapwire.Arg {
	if data == nil {
		return imapwire.NilArg{}
	}
	var l imapwire.List
	for _, key := range idKeys {
		if val := *data.Field(key); val != "" {
			l = append(l, imapwire.Quoted(key), imapwire.String(val))
		}
	}
	if len(l) == 0 {
		return imapwire.NilArg{}
	}
	return l
}
