// Package imapconv 把 imapwire 解析出的 Value 树转换为 imap 包中的类型化实体。
//
// 每个转换函数对应一条语法产生式：先检查值的形态（种类和元素个数），再解构。
// 形态不符时返回 *imapwire.MalformedDataError，其中携带出错的子值，不会悄悄替换为默认值。
// 对于按 "名称 值" 成对出现的列表（STATUS、ESEARCH 等），名称匹配不区分大小写，无法识别的名称被忽略。
package imapconv

import (
	"fmt"
	"mime"
	"strings"

	"github.com/emersion/go-message/charset"

	"github.com/luhaoyun888/go-imapwire/imapwire"
	"github.com/luhaoyun888/go-imapwire/internal/utf7"
)

// Options 包含转换选项。
type Options struct {
	// 用于解码 RFC 2047 编码字（主题、地址名称、参数值）的解码器。
	// 为 nil 时使用支持 go-message 全部字符集的解码器。
	WordDecoder *mime.WordDecoder
	// 为 true 时邮箱名称按修改版 UTF-7 解码。服务器启用了 UTF8=ACCEPT 时应为 false。
	DecodeMailboxUTF7 bool
}

// Converter 按给定选项转换值。Converter 没有可变状态，可以被多个 goroutine 共用。
type Converter struct {
	wordDecoder *mime.WordDecoder
	decodeUTF7  bool
}

// New 创建转换器。options 可以为 nil。
func New(options *Options) *Converter {
	if options == nil {
		options = &Options{}
	}
	c := &Converter{
		wordDecoder: options.WordDecoder,
		decodeUTF7:  options.DecodeMailboxUTF7,
	}
	if c.wordDecoder == nil {
		c.wordDecoder = &mime.WordDecoder{CharsetReader: charset.Reader}
	}
	return c
}

// decodeText 解码 RFC 2047 编码字。解码失败时原样返回，服务器发来的文本不一定规范。
func (c *Converter) decodeText(s string) string {
	out, err := c.wordDecoder.DecodeHeader(s)
	if err != nil {
		return s
	}
	return out
}

// list 要求 v 是列表。
func list(v imapwire.Value, expected string) ([]imapwire.Value, error) {
	if !v.IsList() {
		return nil, imapwire.Malformed(v, expected)
	}
	l, _ := v.List()
	return l, nil
}

// nlist 要求 v 是列表或 NIL，NIL 时返回 nil。
func nlist(v imapwire.Value, expected string) ([]imapwire.Value, error) {
	if v.IsNil() {
		return nil, nil
	}
	return list(v, expected)
}

// text 要求 v 是文本（原子、带引号的字符串或字面量），即 astring/string。
func text(v imapwire.Value, expected string) (string, error) {
	if !v.IsText() {
		return "", imapwire.Malformed(v, expected)
	}
	s, err := v.Text()
	if err != nil {
		return "", imapwire.Malformedf(v, expected, "%v", err)
	}
	return s, nil
}

// nstring 要求 v 是文本或 NIL，NIL 时返回空字符串。
func nstring(v imapwire.Value, expected string) (string, error) {
	if v.IsNil() {
		return "", nil
	}
	return text(v, expected)
}

// nstringPtr 与 nstring 相同，但 NIL 时返回 nil，以区分 NIL 和空字符串。
func nstringPtr(v imapwire.Value, expected string) (*string, error) {
	if v.IsNil() {
		return nil, nil
	}
	s, err := text(v, expected)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// atom 要求 v 是裸记号。
func atom(v imapwire.Value, expected string) (string, error) {
	if !v.IsText() || v.Format() != imapwire.FormatAtom {
		return "", imapwire.Malformed(v, expected)
	}
	return text(v, expected)
}

// arity 要求列表恰好有 n 个元素。
func arity(v imapwire.Value, l []imapwire.Value, n int, expected string) error {
	if len(l) != n {
		return imapwire.Malformedf(v, expected, "expected %v elements, got %v", n, len(l))
	}
	return nil
}

// minArity 要求列表至少有 n 个元素。
func minArity(v imapwire.Value, l []imapwire.Value, n int, expected string) error {
	if len(l) < n {
		return imapwire.Malformedf(v, expected, "expected at least %v elements, got %v", n, len(l))
	}
	return nil
}

// Mailbox 转换邮箱名称。"INBOX" 不区分大小写，总是规范化为大写。
func (c *Converter) Mailbox(v imapwire.Value) (string, error) {
	name, err := text(v, "mailbox")
	if err != nil {
		return "", err
	}
	if strings.EqualFold(name, "INBOX") {
		return "INBOX", nil
	}
	if c.decodeUTF7 {
		decoded, err := utf7.Decode(name)
		if err != nil {
			return "", imapwire.Malformedf(v, "mailbox", "%v", err)
		}
		name = decoded
	}
	return name, nil
}

// Delim 转换层级分隔符：单个字符的带引号字符串，或 NIL（返回 0）。
func Delim(v imapwire.Value) (rune, error) {
	if v.IsNil() {
		return 0, nil
	}
	s, err := text(v, "delimiter")
	if err != nil {
		return 0, err
	}
	r := []rune(s)
	if len(r) != 1 {
		return 0, imapwire.Malformedf(v, "delimiter", "expected a single character")
	}
	return r[0], nil
}

// pairs 遍历 "名称 值" 成对出现的列表，名称转换为大写后传给 f。
func pairs(v imapwire.Value, l []imapwire.Value, expected string, f func(name string, value imapwire.Value) error) error {
	if len(l)%2 != 0 {
		return imapwire.Malformedf(v, expected, "odd number of elements")
	}
	for i := 0; i < len(l); i += 2 {
		name, err := text(l[i], expected)
		if err != nil {
			return err
		}
		if err := f(strings.ToUpper(name), l[i+1]); err != nil {
			return fmt.Errorf("in %v %v: %w", expected, name, err)
		}
	}
	return nil
}
