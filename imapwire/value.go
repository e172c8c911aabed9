// Package imapwire 实现 IMAP 线路协议引擎：无类型的值模型、增量响应解析器以及命令序列化器。
//
// 响应解析器把字节流转换为 Value 树，imapconv 包再把 Value 树转换为 imap 包中的类型化实体。
// 命令序列化器把类型化的参数转换为一串线路片段，并在同步字面量处暂停发送，等待服务器的继续请求。
package imapwire

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Kind 是 Value 的种类。
type Kind int

const (
	KindNil  Kind = iota // NIL
	KindText             // 原子、数字、带引号的字符串或字面量
	KindList             // 括号列表
)

// String 实现 fmt.Stringer 接口。
func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindText:
		return "text"
	case KindList:
		return "list"
	default:
		panic(fmt.Errorf("imapwire: unknown kind %v", int(k)))
	}
}

// TextFormat 记录文本值在线路上的原始形式。
type TextFormat int

const (
	FormatAtom     TextFormat = iota // 裸记号：原子、数字、标志
	FormatQuoted                     // 带引号的字符串
	FormatLiteral                    // {N} 字面量
	FormatLiteral8                   // ~{N} 二进制字面量
)

// LiteralStream 是可定位的字面量数据流。
//
// 较大的字面量不会整体放在内存中，而是写入这样的流（通常是 *iox.BufferFile）。
type LiteralStream interface {
	io.ReadSeeker
	io.Closer
	Size() int64
}

// Value 是协议数据的不可变标签树：NIL、文本或列表。
//
// 零值是 NIL。
type Value struct {
	kind   Kind
	format TextFormat    // 仅用于文本值
	text   []byte        // 内存中的文本内容
	stream LiteralStream // 落盘的字面量，不为 nil 时 text 为空
	list   []Value       // 列表值的子值
}

// Nil 返回 NIL 值。
func Nil() Value {
	return Value{}
}

// NewText 返回由字节切片支持的文本值。调用方之后不得修改 b。
func NewText(b []byte) Value {
	if b == nil {
		b = []byte{}
	}
	return Value{kind: KindText, text: b}
}

// NewTextString 返回由字符串构造的文本值。
func NewTextString(s string) Value {
	return NewText([]byte(s))
}

// NewTextStream 返回由数据流支持的文本值。值获得流的所有权。
func NewTextStream(stream LiteralStream) Value {
	return Value{kind: KindText, format: FormatLiteral, stream: stream}
}

// NewList 返回包含给定子值的列表。
func NewList(children ...Value) Value {
	if children == nil {
		children = []Value{}
	}
	return Value{kind: KindList, list: children}
}

func newFormattedText(b []byte, format TextFormat) Value {
	v := NewText(b)
	v.format = format
	return v
}

// Kind 返回值的种类。
func (v Value) Kind() Kind {
	return v.kind
}

// Format 返回文本值在线路上的形式。对非文本值返回 FormatAtom。
func (v Value) Format() TextFormat {
	return v.format
}

// IsNil 判断值是否为 NIL。
func (v Value) IsNil() bool {
	return v.kind == KindNil
}

// IsText 判断值是否为文本。
func (v Value) IsText() bool {
	return v.kind == KindText
}

// IsList 判断值是否为列表。
func (v Value) IsList() bool {
	return v.kind == KindList
}

// IsAtom 判断值是否为与 name 大小写无关相等的裸记号。
func (v Value) IsAtom(name string) bool {
	if v.kind != KindText || v.format != FormatAtom || v.stream != nil {
		return false
	}
	return strings.EqualFold(string(v.text), name)
}

func (v Value) expectText(op string) error {
	if v.kind != KindText {
		return &ContractError{Op: op, Kind: v.kind}
	}
	return nil
}

// Len 返回文本值的字节数。
func (v Value) Len() (int64, error) {
	if err := v.expectText("Len"); err != nil {
		return 0, err
	}
	if v.stream != nil {
		return v.stream.Size(), nil
	}
	return int64(len(v.text)), nil
}

// Bytes 返回文本值的内容。
//
// 对于由流支持的值，这会把整个流读入内存，读取前后流的位置都会重置为 0。
func (v Value) Bytes() ([]byte, error) {
	if err := v.expectText("Bytes"); err != nil {
		return nil, err
	}
	if v.stream == nil {
		return v.text, nil
	}
	var buf bytes.Buffer
	buf.Grow(int(v.stream.Size()))
	if _, err := v.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Text 返回文本值的字符串形式。
func (v Value) Text() (string, error) {
	b, err := v.Bytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Number 把文本值按无符号十进制整数解析。
//
// 非数字字符或溢出返回 MalformedDataError。
func (v Value) Number() (uint64, error) {
	return v.parseUint("Number", 64)
}

// Number32 与 Number 相同，但要求结果能放进 uint32。
func (v Value) Number32() (uint32, error) {
	n, err := v.parseUint("Number32", 32)
	return uint32(n), err
}

func (v Value) parseUint(op string, bitSize int) (uint64, error) {
	if err := v.expectText(op); err != nil {
		return 0, err
	}
	if v.stream != nil || len(v.text) == 0 {
		return 0, Malformed(v, "number")
	}
	for _, ch := range v.text {
		if ch < '0' || ch > '9' {
			return 0, Malformed(v, "number")
		}
	}
	n, err := strconv.ParseUint(string(v.text), 10, bitSize)
	if err != nil {
		return 0, &MalformedDataError{Value: v, Expected: "number", Offset: -1, Err: err}
	}
	return n, nil
}

// Stream 返回读取文本内容的 io.ReadSeeker。
//
// 对于由字节切片支持的值，返回一个不复制数据的只读视图。对于由流支持的值，流的位置先被重置为 0，
// 然后直接返回底层流：调用方不能假设多次调用之间位置保持不变，也不能关闭它。
func (v Value) Stream() (io.ReadSeeker, error) {
	if err := v.expectText("Stream"); err != nil {
		return nil, err
	}
	if v.stream == nil {
		return bytes.NewReader(v.text), nil
	}
	if _, err := v.stream.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return v.stream, nil
}

// WriteTo 把文本内容写入 w。流支持的值在写入前后都会重置位置。
func (v Value) WriteTo(w io.Writer) (int64, error) {
	if err := v.expectText("WriteTo"); err != nil {
		return 0, err
	}
	if v.stream == nil {
		n, err := w.Write(v.text)
		return int64(n), err
	}
	if _, err := v.stream.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	n, err := io.Copy(w, v.stream)
	if _, seekErr := v.stream.Seek(0, io.SeekStart); err == nil {
		err = seekErr
	}
	return n, err
}

// List 返回列表值的子值。返回的切片不得修改。
func (v Value) List() ([]Value, error) {
	if v.kind != KindList {
		return nil, &ContractError{Op: "List", Kind: v.kind}
	}
	return v.list, nil
}

// Close 释放值（及其子值）持有的数据流。
func (v Value) Close() error {
	var firstErr error
	if v.stream != nil {
		firstErr = v.stream.Close()
	}
	for _, child := range v.list {
		if err := child.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// String 返回值的调试表示，格式接近线路形式。
func (v Value) String() string {
	var sb strings.Builder
	v.format1(&sb)
	return sb.String()
}

func (v Value) format1(sb *strings.Builder) {
	switch v.kind {
	case KindNil:
		sb.WriteString("NIL")
	case KindList:
		sb.WriteByte('(')
		for i, child := range v.list {
			if i > 0 {
				sb.WriteByte(' ')
			}
			child.format1(sb)
		}
		sb.WriteByte(')')
	case KindText:
		switch {
		case v.stream != nil:
			fmt.Fprintf(sb, "{%v}", v.stream.Size())
		case v.format == FormatQuoted:
			sb.WriteString(strconv.Quote(string(v.text)))
		case v.format == FormatLiteral, v.format == FormatLiteral8:
			fmt.Fprintf(sb, "{%v}%q", len(v.text), v.text)
		default:
			sb.Write(v.text)
		}
	}
}
