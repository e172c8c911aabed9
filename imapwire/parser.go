package imapwire

import (
	"bytes"
	"fmt"
	"io"

	"crawshaw.io/iox"
)

// DefaultSpillThreshold 是字面量改为写入临时文件的默认字节数。
const DefaultSpillThreshold = 40 * 1024

// maxLiteralHeaderLen 限制字面量头部 "~{4294967295+}" 的长度。
const maxLiteralHeaderLen = 24

// defaultFiler 为所有未指定 Filer 的解析器创建缓冲文件。
var defaultFiler = iox.NewFiler(0)

var errNoLiteral = fmt.Errorf("%w: no pending literal", ErrContract)

// ParserOptions 包含解析器的选项。
type ParserOptions struct {
	// 字面量超过该字节数时，数据写入 iox.BufferFile（超出部分落盘）而不是一个大的字节切片。
	// 0 表示 DefaultSpillThreshold，负数表示总是使用字节切片。
	SpillThreshold int
	// 用于创建缓冲文件。nil 表示使用包级别的默认值。
	Filer *iox.Filer
	// 允许的最大字面量大小，0 表示不限制。超出限制是致命错误。
	MaxLiteralSize int64
}

// Parser 把原始响应字节解析为 Value 树。
//
// Parser 本身没有可变状态，解析中途的状态全部保存在 Context 中，因此一个 Parser 可以依次解析任意多个响应。
type Parser struct {
	threshold int        // 字面量落盘阈值
	filer     *iox.Filer // 创建缓冲文件
	maxLit    int64      // 最大字面量大小，0 表示不限制
}

// NewParser 创建一个解析器。nil 选项等价于零值选项。
func NewParser(options *ParserOptions) *Parser {
	if options == nil {
		options = &ParserOptions{}
	}
	p := &Parser{
		threshold: options.SpillThreshold,
		filer:     options.Filer,
		maxLit:    options.MaxLiteralSize,
	}
	if p.threshold == 0 {
		p.threshold = DefaultSpillThreshold
	}
	if p.filer == nil {
		p.filer = defaultFiler
	}
	return p
}

// Result 是 Parser.Parse 的结果：*Complete、*NeedMoreInput 或 *NeedLiteralBytes。
type Result interface {
	result()
}

// Complete 表示一个完整的响应已解析完毕。
type Complete struct {
	// 响应的顶层值
	Values []Value
	// 输入中属于下一个响应的剩余字节，应传给新的 Parse 调用
	Remaining []byte
}

// NeedMoreInput 表示需要更多输入才能继续。把 Context 连同新的字节传回 Parse。
type NeedMoreInput struct {
	Context *Context
}

// NeedLiteralBytes 表示解析器在等待字面量的数据。
//
// 调用方可以用 Parser.ReadLiteral 直接从流中读取这些字节，也可以继续通过 Parse 提供输入。
type NeedLiteralBytes struct {
	Context *Context
	Size    int64 // 仍需读取的字节数
}

func (*Complete) result()         {}
func (*NeedMoreInput) result()    {}
func (*NeedLiteralBytes) result() {}

// Context 是单个响应的解析状态：未消费的输入、每层嵌套一个的列表缓冲区以及待读取的字面量。
//
// Context 只属于一个正在进行的响应，不得在 goroutine 之间共享。
type Context struct {
	buf      []byte          // 未消费的输入
	consumed int             // 已消费的字节数，用于错误信息
	stack    [][]Value       // stack[0] 是顶层
	lit      *pendingLiteral // 正在读取的字面量，没有时为 nil
}

func newContext() *Context {
	return &Context{stack: make([][]Value, 1, 4)}
}

// Depth 返回当前打开的括号层数。
func (ctx *Context) Depth() int {
	return len(ctx.stack) - 1
}

// release 释放已经解析出的值持有的流。
func (ctx *Context) release() {
	for _, level := range ctx.stack {
		for _, v := range level {
			v.Close()
		}
	}
	if ctx.lit != nil && ctx.lit.file != nil {
		ctx.lit.file.Close()
	}
	ctx.stack = nil
	ctx.lit = nil
}

func (ctx *Context) appendValue(v Value) {
	top := len(ctx.stack) - 1
	ctx.stack[top] = append(ctx.stack[top], v)
}

func (ctx *Context) advance(n int) {
	ctx.buf = ctx.buf[n:]
	ctx.consumed += n
}

func (ctx *Context) malformed(expected string, err error) *MalformedDataError {
	input := ctx.buf
	if len(input) > 64 {
		input = input[:64]
	}
	return &MalformedDataError{
		Expected: expected,
		Offset:   ctx.consumed,
		Input:    append([]byte(nil), input...),
		Err:      err,
	}
}

// pendingLiteral 是已经解析了头部、正在等待数据的字面量。
type pendingLiteral struct {
	remaining int64           // 还没收到的字节数
	format    TextFormat      // FormatLiteral 或 FormatLiteral8
	mem       []byte          // 小字面量的数据
	file      *iox.BufferFile // 大字面量的数据，超过阈值的部分落盘
}

func (lit *pendingLiteral) write(b []byte) error {
	lit.remaining -= int64(len(b))
	if lit.file != nil {
		_, err := lit.file.Write(b)
		return err
	}
	lit.mem = append(lit.mem, b...)
	return nil
}

func (lit *pendingLiteral) value() (Value, error) {
	if lit.file == nil {
		return newFormattedText(lit.mem, lit.format), nil
	}
	if _, err := lit.file.Seek(0, io.SeekStart); err != nil {
		lit.file.Close()
		return Value{}, &ConnectionError{Op: "literal spill", Err: err}
	}
	v := NewTextStream(lit.file)
	v.format = lit.format
	return v, nil
}

// Parse 解析 input 并返回结果。ctx 为 nil 时开始一个新的响应。
//
// input 可以在任意字节处切分：不完整的记号保留在 Context 中，直到后续输入补全。
// 返回错误时 Context 被丢弃，已解析的兄弟值不受影响。
func (p *Parser) Parse(ctx *Context, input []byte) (Result, error) {
	if ctx == nil {
		ctx = newContext()
	}
	ctx.buf = append(ctx.buf, input...)

	res, err := p.run(ctx)
	if err != nil {
		ctx.release()
		return nil, err
	}
	return res, nil
}

// ReadLiteral 从 r 中读取待处理字面量的剩余数据。
//
// 在字面量数据结束前遇到 EOF 是致命的连接错误。
func (p *Parser) ReadLiteral(ctx *Context, r io.Reader) error {
	if ctx == nil || ctx.lit == nil {
		return errNoLiteral
	}
	lit := ctx.lit

	// 先消费已经缓冲的字节
	if n := min64(int64(len(ctx.buf)), lit.remaining); n > 0 {
		if err := lit.write(ctx.buf[:n]); err != nil {
			ctx.release()
			return &ConnectionError{Op: "literal spill", Err: err}
		}
		ctx.advance(int(n))
	}

	if lit.remaining > 0 {
		var err error
		if lit.file != nil {
			var n int64
			n, err = io.CopyN(lit.file, r, lit.remaining)
			lit.remaining -= n
		} else {
			buf := make([]byte, lit.remaining)
			var n int
			n, err = io.ReadFull(r, buf)
			lit.mem = append(lit.mem, buf[:n]...)
			lit.remaining -= int64(n)
		}
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			ctx.release()
			return &ConnectionError{Op: "literal read", Err: err}
		}
	}

	return p.finishLiteral(ctx)
}

func (p *Parser) finishLiteral(ctx *Context) error {
	v, err := ctx.lit.value()
	ctx.lit = nil
	if err != nil {
		ctx.release()
		return err
	}
	ctx.appendValue(v)
	return nil
}

func (p *Parser) run(ctx *Context) (Result, error) {
	for {
		if lit := ctx.lit; lit != nil {
			if n := min64(int64(len(ctx.buf)), lit.remaining); n > 0 {
				if err := lit.write(ctx.buf[:n]); err != nil {
					return nil, &ConnectionError{Op: "literal spill", Err: err}
				}
				ctx.advance(int(n))
			}
			if lit.remaining > 0 {
				return &NeedLiteralBytes{Context: ctx, Size: lit.remaining}, nil
			}
			if err := p.finishLiteral(ctx); err != nil {
				return nil, err
			}
			continue
		}

		if len(ctx.buf) == 0 {
			return &NeedMoreInput{Context: ctx}, nil
		}

		switch ctx.buf[0] {
		case '\r', '\n':
			n := lineEnd(ctx.buf)
			if n == 0 {
				return &NeedMoreInput{Context: ctx}, nil
			} else if n < 0 {
				return nil, ctx.malformed("CRLF", nil)
			}
			if ctx.Depth() > 0 {
				return nil, ctx.malformed("')'", fmt.Errorf("%v unclosed parenthesis at end of line", ctx.Depth()))
			}
			ctx.advance(n)
			values := ctx.stack[0]
			if values == nil {
				values = []Value{}
			}
			return &Complete{Values: values, Remaining: ctx.buf}, nil
		case ' ':
			ctx.advance(1)
			continue
		}

		if ctx.Depth() == 0 && ctx.inTextTail() {
			if !p.readTextTail(ctx) {
				return &NeedMoreInput{Context: ctx}, nil
			}
			continue
		}

		var (
			ok  bool
			err error
		)
		switch ch := ctx.buf[0]; ch {
		case '"':
			ok = p.readQuoted(ctx)
		case '(':
			ctx.stack = append(ctx.stack, nil)
			ctx.advance(1)
			ok = true
		case ')':
			if ctx.Depth() == 0 {
				return nil, ctx.malformed("token", fmt.Errorf("unexpected ')' without open list"))
			}
			top := len(ctx.stack) - 1
			children := ctx.stack[top]
			ctx.stack = ctx.stack[:top]
			ctx.appendValue(NewList(children...))
			ctx.advance(1)
			ok = true
		case '{':
			ok, err = p.readLiteralHeader(ctx)
		case '~':
			if len(ctx.buf) < 2 {
				return &NeedMoreInput{Context: ctx}, nil
			}
			if ctx.buf[1] == '{' {
				ok, err = p.readLiteralHeader(ctx)
			} else {
				ok = p.readBareToken(ctx)
			}
		default:
			ok = p.readBareToken(ctx)
		}
		if err != nil {
			return nil, err
		}
		if !ok {
			return &NeedMoreInput{Context: ctx}, nil
		}
	}
}

// lineEnd 返回行结束符的长度：CRLF 为 2，单独的 LF 为 1。需要更多输入时返回 0，格式错误返回 -1。
func lineEnd(b []byte) int {
	switch {
	case b[0] == '\n':
		return 1
	case len(b) < 2:
		return 0
	case b[1] == '\n':
		return 2
	default:
		return -1
	}
}

// inTextTail 判断顶层是否已经到了 resp-text 部分：继续请求 "+" 之后，或状态响应 (OK/NO/BAD/PREAUTH/BYE)
// 及其可选的 [响应代码] 之后。这部分是供人阅读的文本，可能包含不成对的括号和引号，因此整体作为一个文本值。
func (ctx *Context) inTextTail() bool {
	top := ctx.stack[0]
	switch len(top) {
	case 1:
		return top[0].IsAtom("+")
	case 2:
		return isStatusCond(top[1]) && ctx.buf[0] != '['
	case 3:
		return isStatusCond(top[1]) && isBracketed(top[2])
	default:
		return false
	}
}

func isStatusCond(v Value) bool {
	for _, cond := range []string{"OK", "NO", "BAD", "PREAUTH", "BYE"} {
		if v.IsAtom(cond) {
			return true
		}
	}
	return false
}

func isBracketed(v Value) bool {
	return v.kind == KindText && v.format == FormatAtom && len(v.text) > 0 && v.text[0] == '['
}

// readTextTail 把到行尾为止的所有字节读作一个文本值。
func (p *Parser) readTextTail(ctx *Context) bool {
	i := bytes.IndexByte(ctx.buf, '\n')
	if i < 0 {
		return false
	}
	end := i
	if end > 0 && ctx.buf[end-1] == '\r' {
		end--
	}
	ctx.appendValue(newFormattedText(append([]byte(nil), ctx.buf[:end]...), FormatAtom))
	ctx.advance(end)
	return true
}

// readQuoted 解析带引号的字符串。CR 或 LF 会提前结束记号：带引号的字符串不能跨行。
func (p *Parser) readQuoted(ctx *Context) bool {
	var out []byte
	for i := 1; i < len(ctx.buf); i++ {
		switch ch := ctx.buf[i]; ch {
		case '"':
			ctx.appendValue(newFormattedText(out, FormatQuoted))
			ctx.advance(i + 1)
			return true
		case '\r', '\n':
			ctx.appendValue(newFormattedText(out, FormatQuoted))
			ctx.advance(i)
			return true
		case '\\':
			if i+1 >= len(ctx.buf) {
				return false
			}
			next := ctx.buf[i+1]
			if next == '"' || next == '\\' {
				out = append(out, next)
				i++
			} else {
				out = append(out, ch)
			}
		default:
			out = append(out, ch)
		}
	}
	return false
}

// readLiteralHeader 解析 "{N}"、"{N+}"、"~{N}" 或 "~{N+}"，以及紧随其后的 CRLF。
func (p *Parser) readLiteralHeader(ctx *Context) (bool, error) {
	format := FormatLiteral
	i := 0
	if ctx.buf[0] == '~' {
		format = FormatLiteral8
		i++
	}
	i++ // '{'

	var (
		size   int64
		digits int
	)
	for ; i < len(ctx.buf); i++ {
		ch := ctx.buf[i]
		if ch < '0' || ch > '9' {
			break
		}
		size = size*10 + int64(ch-'0')
		digits++
		if size > 1<<32 {
			return false, ctx.malformed("literal size", fmt.Errorf("literal size overflows"))
		}
	}
	if i >= len(ctx.buf) {
		if i > maxLiteralHeaderLen {
			return false, ctx.malformed("'}'", nil)
		}
		return false, nil
	}
	if digits == 0 {
		return false, ctx.malformed("literal size", nil)
	}
	if ctx.buf[i] == '+' {
		i++
		if i >= len(ctx.buf) {
			return false, nil
		}
	}
	if ctx.buf[i] != '}' {
		return false, ctx.malformed("'}'", nil)
	}
	i++
	if len(ctx.buf) < i+2 {
		return false, nil
	}
	if ctx.buf[i] != '\r' || ctx.buf[i+1] != '\n' {
		return false, ctx.malformed("CRLF after literal header", nil)
	}
	i += 2

	if p.maxLit > 0 && size > p.maxLit {
		return false, &ConnectionError{Op: "literal header", Err: fmt.Errorf("literal size %v exceeds limit %v", size, p.maxLit)}
	}

	lit := &pendingLiteral{remaining: size, format: format}
	if p.threshold >= 0 && size > int64(p.threshold) {
		lit.file = p.filer.BufferFile(p.threshold)
	} else {
		lit.mem = make([]byte, 0, size)
	}
	ctx.lit = lit
	ctx.advance(i)
	return true, nil
}

// readBareToken 解析原子、数字或标志。'[' 开始一个原样复制的节段，直到匹配的 ']'。
func (p *Parser) readBareToken(ctx *Context) bool {
	brackets := 0
	i := 0
loop:
	for ; i < len(ctx.buf); i++ {
		ch := ctx.buf[i]
		if brackets > 0 {
			switch ch {
			case '[':
				brackets++
			case ']':
				brackets--
			case '\r', '\n':
				// 节段不能跨行，交给行尾处理
				break loop
			}
			continue
		}
		switch ch {
		case '[':
			brackets++
		case ' ', '\r', '\n', '(', ')':
			break loop
		}
	}
	if i >= len(ctx.buf) {
		return false
	}

	token := append([]byte(nil), ctx.buf[:i]...)
	ctx.advance(i)
	if bytes.EqualFold(token, []byte("NIL")) {
		ctx.appendValue(Nil())
	} else {
		ctx.appendValue(newFormattedText(token, FormatAtom))
	}
	return true
}

// ParseBytes 解析一个完整的响应（必须以 CRLF 结尾）并返回顶层值。
func (p *Parser) ParseBytes(b []byte) ([]Value, error) {
	res, err := p.Parse(nil, b)
	if err != nil {
		return nil, err
	}
	for {
		switch r := res.(type) {
		case *Complete:
			return r.Values, nil
		case *NeedLiteralBytes:
			r.Context.release()
			return nil, &ConnectionError{Op: "literal read", Err: io.ErrUnexpectedEOF}
		case *NeedMoreInput:
			r.Context.release()
			return nil, &ConnectionError{Op: "response read", Err: io.ErrUnexpectedEOF}
		}
	}
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
