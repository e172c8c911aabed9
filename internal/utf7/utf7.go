// Package utf7 实现 IMAP 邮箱名称使用的修改版 UTF-7 编码（RFC 3501 第 5.1.3 节）。
package utf7

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

const utf7chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+,"

var encoding = base64.NewEncoding(utf7chars).WithPadding(base64.NoPadding)

var utf16be = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

var (
	ErrSuperfluousShift = errors.New("utf7: superfluous unshift+shift")
	ErrBase64           = errors.New("utf7: bad base64")
	ErrOddSized         = errors.New("utf7: odd-sized data")
	ErrUnneededShift    = errors.New("utf7: unneeded shift")
	ErrUnfinishedShift  = errors.New("utf7: unfinished shift")
	ErrBadUTF16         = errors.New("utf7: invalid UTF-16")
)

// Decode 把修改版 UTF-7 编码的邮箱名称解码为 UTF-8。
func Decode(s string) (string, error) {
	var (
		sb          strings.Builder
		shifted     bool
		b           strings.Builder
		lastUnshift = -2
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !shifted {
			if c == '&' {
				if lastUnshift == i-1 {
					return "", ErrSuperfluousShift
				}
				shifted = true
			} else {
				sb.WriteByte(c)
			}
			continue
		}

		if c != '-' {
			b.WriteByte(c)
			continue
		}

		shifted = false
		lastUnshift = i
		if b.Len() == 0 {
			sb.WriteByte('&')
			continue
		}
		decoded, err := decodeShifted(b.String())
		if err != nil {
			return "", err
		}
		b.Reset()
		sb.WriteString(decoded)
	}
	if shifted {
		return "", ErrUnfinishedShift
	}
	return sb.String(), nil
}

func decodeShifted(b64 string) (string, error) {
	buf, err := encoding.DecodeString(b64)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrBase64, b64, err)
	}
	if len(buf)%2 != 0 {
		return "", ErrOddSized
	}

	out, err := utf16be.NewDecoder().Bytes(buf)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadUTF16, err)
	}
	if !utf8.Valid(out) || strings.ContainsRune(string(out), utf8.RuneError) {
		return "", ErrBadUTF16
	}

	need := false
	for _, r := range string(out) {
		if !isDirect(r) {
			need = true
		}
	}
	if !need {
		return "", ErrUnneededShift
	}
	return string(out), nil
}

// isDirect 判断字符能否不经编码直接出现。'&' 总是需要转义。
func isDirect(r rune) bool {
	return r >= 0x20 && r <= 0x7e && r != '&'
}

// Encode 把 UTF-8 邮箱名称编码为修改版 UTF-7。
func Encode(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == '&' {
			sb.WriteString("&-")
			i += size
			continue
		}
		if isDirect(r) {
			sb.WriteRune(r)
			i += size
			continue
		}

		// 收集一段需要编码的字符
		start := i
		for i < len(s) {
			r, size := utf8.DecodeRuneInString(s[i:])
			if isDirect(r) || r == '&' {
				break
			}
			i += size
		}
		buf, err := utf16be.NewEncoder().Bytes([]byte(s[start:i]))
		if err != nil {
			// 非法的 UTF-8 在编码器中被替换，不会出错
			panic(err)
		}
		sb.WriteByte('&')
		sb.WriteString(encoding.EncodeToString(buf))
		sb.WriteByte('-')
	}
	return sb.String()
}
