// Package internal 包含各子包共用的辅助函数。
package internal

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

const (
	DateTimeLayout = "_2-Jan-2006 15:04:05 -0700" // date-time，例如 INTERNALDATE
	DateLayout     = "2-Jan-2006"                 // date，例如 SEARCH SINCE
)

// ParseDateTime 解析 date-time。一位数的日期前可能是空格，也可能没有。
func ParseDateTime(s string) (time.Time, error) {
	t, err := time.Parse(DateTimeLayout, s)
	if err != nil {
		// 有些服务器省略了一位数日期前的空格
		if t2, err2 := time.Parse("2-Jan-2006 15:04:05 -0700", strings.TrimSpace(s)); err2 == nil {
			return t2, nil
		}
		return time.Time{}, fmt.Errorf("imap: invalid date-time %q: %w", s, err)
	}
	return t, nil
}

// EncodeSASL 把 SASL 数据编码为 base64。空响应编码为 "="（RFC 4959）。
func EncodeSASL(b []byte) string {
	if len(b) == 0 {
		return "="
	}
	return base64.StdEncoding.EncodeToString(b)
}

// DecodeSASL 解码 base64 编码的 SASL 数据。
func DecodeSASL(s string) ([]byte, error) {
	if s == "=" {
		return []byte{}, nil
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("imap: invalid SASL data: %w", err)
	}
	return b, nil
}
