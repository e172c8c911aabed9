package imapwire

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// LineReader 是接收器使用的读取原语：ReadLine 读取一整行（包括行结束符），Read 用于读取字面量数据。
type LineReader interface {
	io.Reader
	ReadLine() ([]byte, error)
}

type bufioLineReader struct {
	*bufio.Reader
}

// NewLineReader 把 *bufio.Reader 包装为 LineReader。
func NewLineReader(br *bufio.Reader) LineReader {
	return bufioLineReader{br}
}

// ReadLine 读取到 '\n' 为止的所有字节。超过缓冲区大小的行会被拼接起来。
func (r bufioLineReader) ReadLine() ([]byte, error) {
	var line []byte
	for {
		b, err := r.ReadSlice('\n')
		if err == bufio.ErrBufferFull {
			line = append(line, b...)
			continue
		}
		if line == nil {
			line = append([]byte(nil), b...)
		} else {
			line = append(line, b...)
		}
		return line, err
	}
}

// Receiver 从 LineReader 中逐个读取完整的响应。
type Receiver struct {
	r      LineReader
	parser *Parser
}

// NewReceiver 创建一个接收器。parser 为 nil 时使用默认选项。
func NewReceiver(r LineReader, parser *Parser) *Receiver {
	if parser == nil {
		parser = NewParser(nil)
	}
	return &Receiver{r: r, parser: parser}
}

// ReadResponse 读取下一个完整的响应并返回它的顶层值。
//
// 一个响应可能跨越多行：每个字面量头部之后，数据直接从流中读取，然后继续读取该行的剩余部分。
// 在两个响应之间遇到 EOF 时返回 io.EOF；在响应中途遇到 EOF 时返回 *ConnectionError。
// 格式错误的响应被整个跳过，之后的 ReadResponse 从下一个响应开始读取。
func (rc *Receiver) ReadResponse() ([]Value, error) {
	var ctx *Context
	for {
		line, err := rc.r.ReadLine()
		if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
			if ctx != nil {
				ctx.release()
			}
			if errors.Is(err, io.EOF) {
				if ctx == nil && len(line) == 0 {
					return nil, io.EOF
				}
				err = io.ErrUnexpectedEOF
			}
			return nil, &ConnectionError{Op: "response read", Err: err}
		}

		res, err := rc.parser.Parse(ctx, line)
		if err != nil {
			return nil, rc.skipLiterals(line, err)
		}
		for err == nil {
			switch r := res.(type) {
			case *Complete:
				return r.Values, nil
			case *NeedLiteralBytes:
				if err = rc.parser.ReadLiteral(r.Context, rc.r); err == nil {
					res, err = rc.parser.Parse(r.Context, nil)
				}
				continue
			case *NeedMoreInput:
				ctx = r.Context
			}
			break
		}
		if err != nil {
			return nil, err
		}
	}
}

// skipLiterals 在行解析失败后跳过该响应剩余的字面量。
//
// 解析器在出错的位置停下，行尾的字面量头部不会被处理，它的数据仍在流中。
// 这里丢弃这些数据和之后的行，直到某一行不再以字面量头部结尾，然后返回原来的错误。
func (rc *Receiver) skipLiterals(line []byte, parseErr error) error {
	if !errors.Is(parseErr, ErrMalformed) {
		return parseErr
	}
	for {
		size, ok := trailingLiteral(line)
		if !ok {
			return parseErr
		}
		if limit := rc.parser.maxLit; limit > 0 && size > limit {
			return &ConnectionError{Op: "literal header", Err: fmt.Errorf("literal size %v exceeds limit %v", size, limit)}
		}
		if n, err := io.CopyN(io.Discard, rc.r, size); err != nil {
			if errors.Is(err, io.EOF) && n < size {
				err = io.ErrUnexpectedEOF
			}
			return &ConnectionError{Op: "literal read", Err: err}
		}

		var err error
		line, err = rc.r.ReadLine()
		if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return &ConnectionError{Op: "response read", Err: err}
		}
	}
}

// trailingLiteral 判断 line 是否以 "{N}"、"{N+}" 或 "~{N}" 头部结尾，并返回 N。
func trailingLiteral(line []byte) (int64, bool) {
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	if !bytes.HasSuffix(line, []byte("}")) {
		return 0, false
	}
	line = line[:len(line)-1]
	line = bytes.TrimSuffix(line, []byte("+"))
	i := bytes.LastIndexByte(line, '{')
	if i < 0 || i == len(line)-1 {
		return 0, false
	}
	for _, ch := range line[i+1:] {
		if ch < '0' || ch > '9' {
			return 0, false
		}
	}
	size, err := strconv.ParseInt(string(line[i+1:]), 10, 64)
	return size, err == nil
}
