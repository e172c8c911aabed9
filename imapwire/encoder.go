package imapwire

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// literalMinusLimit 是 LITERAL- 允许使用非同步字面量的最大字节数（RFC 7888）。
const literalMinusLimit = 4096

// Arg 是命令参数。
type Arg interface {
	encode(st *encodeState) error
}

// Atom 原样写出，不加引号。
type Atom string

// Quoted 写为带引号的字符串，'"' 和 '\' 会被转义。
type Quoted string

// Number 写为十进制数字。
type Number uint64

// NilArg 写为 NIL。
type NilArg struct{}

// List 写为括号列表，元素之间用空格分隔。
type List []Arg

// Group 写为用空格分隔的参数序列，不加括号。
type Group []Arg

// Literal 是字面量参数。同步字面量会在头部之后暂停发送，直到服务器发出继续请求。
type Literal struct {
	Data   io.Reader // 恰好提供 Size 个字节
	Size   int64     // 写入头部的字节数
	Binary bool      // 写为 literal8: ~{N}
}

// LiteralBytes 返回以 b 为内容的字面量。
func LiteralBytes(b []byte) Literal {
	return Literal{Data: bytes.NewReader(b), Size: int64(len(b))}
}

// String 返回写出 s 的最紧凑安全形式：能放进带引号字符串时使用带引号字符串，否则使用字面量。
func String(s string) Arg {
	if isQuotedSafe(s) {
		return Quoted(s)
	}
	return LiteralBytes([]byte(s))
}

// AString 与 String 相同，但 s 是合法原子时直接写为原子。
func AString(s string) Arg {
	if isAtom(s) && !strings.EqualFold(s, "NIL") {
		return Atom(s)
	}
	return String(s)
}

// NString 在 s 为 nil 时写出 NIL。
func NString(s *string) Arg {
	if s == nil {
		return NilArg{}
	}
	return String(*s)
}

// FlagList 返回括号括起来的标志列表。
func FlagList(flags []string) List {
	l := make(List, len(flags))
	for i, f := range flags {
		l[i] = Atom(f)
	}
	return l
}

// NumSet 返回序号集合或 UID 集合参数。
func NumSet(set fmt.Stringer) Arg {
	return Atom(set.String())
}

// Fragment 是发送队列中的一个线路片段：Chunk、Payload、Suspend 或 *ContinuationWait。
type Fragment interface {
	fragment()
}

// Chunk 是原样写出的字节。
type Chunk []byte

// Payload 是来自数据流的字面量数据。
type Payload struct {
	Reader io.Reader // 字面量数据
	Size   int64     // 需要复制的字节数，数据不足是连接错误
}

// Suspend 表示发送必须在此暂停，直到服务器发出继续请求。
type Suspend struct{}

func (Chunk) fragment()             {}
func (Payload) fragment()           {}
func (Suspend) fragment()           {}
func (*ContinuationWait) fragment() {}

// Encoder 把参数转换为片段序列。
type Encoder struct {
	// 服务器支持 LITERAL+：所有字面量都是非同步的
	LiteralPlus bool
	// 服务器支持 LITERAL-：不超过 4096 字节的字面量是非同步的
	LiteralMinus bool
}

type encodeState struct {
	enc   *Encoder
	buf   []byte     // 尚未形成 Chunk 的字节
	frags []Fragment // 已完成的片段
}

func (st *encodeState) flush() {
	if len(st.buf) > 0 {
		st.frags = append(st.frags, Chunk(st.buf))
		st.buf = nil
	}
}

func (st *encodeState) args(args []Arg) error {
	for i, arg := range args {
		if i > 0 {
			st.buf = append(st.buf, ' ')
		}
		if arg == nil {
			return fmt.Errorf("imapwire: nil argument at index %v", i)
		}
		if err := arg.encode(st); err != nil {
			return err
		}
	}
	return nil
}

// Encode 返回参数的片段序列，参数之间用空格分隔，末尾不含 CRLF。相邻的字节片段会被合并。
func (enc *Encoder) Encode(args ...Arg) ([]Fragment, error) {
	st := &encodeState{enc: enc}
	if err := st.args(args); err != nil {
		return nil, err
	}
	st.flush()
	return st.frags, nil
}

// EncodeCommand 返回完整命令的片段序列：标签、命令名、参数以及结尾的 CRLF。
func (enc *Encoder) EncodeCommand(tag, name string, args ...Arg) ([]Fragment, error) {
	if !isAtom(tag) || tag == "+" {
		return nil, fmt.Errorf("imapwire: invalid tag %q", tag)
	}
	st := &encodeState{enc: enc}
	st.buf = append(st.buf, tag...)
	st.buf = append(st.buf, ' ')
	st.buf = append(st.buf, name...)
	if len(args) > 0 {
		st.buf = append(st.buf, ' ')
		if err := st.args(args); err != nil {
			return nil, err
		}
	}
	st.buf = append(st.buf, '\r', '\n')
	st.flush()
	return st.frags, nil
}

func (a Atom) encode(st *encodeState) error {
	if a == "" {
		return fmt.Errorf("imapwire: empty atom")
	}
	if strings.ContainsAny(string(a), "\r\n") {
		return fmt.Errorf("imapwire: atom %q contains line break", string(a))
	}
	st.buf = append(st.buf, a...)
	return nil
}

func (q Quoted) encode(st *encodeState) error {
	if strings.ContainsAny(string(q), "\r\n\x00") {
		return fmt.Errorf("imapwire: quoted string contains CR, LF or NUL")
	}
	st.buf = append(st.buf, '"')
	for i := 0; i < len(q); i++ {
		ch := q[i]
		if ch == '"' || ch == '\\' {
			st.buf = append(st.buf, '\\')
		}
		st.buf = append(st.buf, ch)
	}
	st.buf = append(st.buf, '"')
	return nil
}

func (n Number) encode(st *encodeState) error {
	st.buf = strconv.AppendUint(st.buf, uint64(n), 10)
	return nil
}

func (NilArg) encode(st *encodeState) error {
	st.buf = append(st.buf, "NIL"...)
	return nil
}

func (l List) encode(st *encodeState) error {
	st.buf = append(st.buf, '(')
	if err := st.args(l); err != nil {
		return err
	}
	st.buf = append(st.buf, ')')
	return nil
}

func (g Group) encode(st *encodeState) error {
	return st.args(g)
}

func (lit Literal) encode(st *encodeState) error {
	if lit.Size < 0 {
		return fmt.Errorf("imapwire: negative literal size")
	}
	if lit.Data == nil && lit.Size > 0 {
		return fmt.Errorf("imapwire: literal without data")
	}

	nonSync := st.enc.LiteralPlus || (st.enc.LiteralMinus && lit.Size <= literalMinusLimit)
	if lit.Binary {
		st.buf = append(st.buf, '~')
	}
	st.buf = append(st.buf, '{')
	st.buf = strconv.AppendInt(st.buf, lit.Size, 10)
	if nonSync {
		st.buf = append(st.buf, '+')
	}
	st.buf = append(st.buf, '}', '\r', '\n')
	st.flush()
	if !nonSync {
		st.frags = append(st.frags, Suspend{})
	}
	if lit.Size > 0 {
		st.frags = append(st.frags, Payload{Reader: lit.Data, Size: lit.Size})
	}
	return nil
}

func isAtomChar(ch byte) bool {
	switch ch {
	case '(', ')', '{', ' ', '%', '*', '"', '\\', ']':
		return false
	}
	return ch > 0x1f && ch < 0x7f
}

func isAtom(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isAtomChar(s[i]) {
			return false
		}
	}
	return true
}

func isQuotedSafe(s string) bool {
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch == '\r' || ch == '\n' || ch == 0 || ch >= 0x80 {
			return false
		}
	}
	return true
}
