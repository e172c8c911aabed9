// Package imapconn 把一个接收器和一个发送器绑定到同一条连接上。
//
// Conn 不做任何并发协调：一条连接同一时间只由一个 goroutine 驱动。
// 它记录连接是否处于 IDLE 状态，并在流升级（例如 STARTTLS）失败时把传输层错误转换为 *imapwire.ConnectionError。
package imapconn

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/luhaoyun888/go-imapwire"
	"github.com/luhaoyun888/go-imapwire/imapwire"
)

// ErrIdling 表示连接处于 IDLE 状态，此时只能发送 DONE。
var ErrIdling = errors.New("imapconn: connection is idling")

// UpgradeFunc 把明文连接替换为新的连接，例如在其上建立 TLS。
type UpgradeFunc func(conn net.Conn) (net.Conn, error)

// Options 包含连接的选项。
type Options struct {
	// 原始的输入和输出数据将被写入此写入器（如果有）。注意，这可能包含身份验证时使用的凭证。
	DebugWriter io.Writer
	// 解析器选项，nil 表示默认值
	ParserOptions *imapwire.ParserOptions
	// 服务器支持 LITERAL+ 或 LITERAL-（RFC 7888）时，同步字面量改为非同步字面量
	LiteralPlus  bool
	LiteralMinus bool
}

// wrapReadWriter 在设置了 DebugWriter 时返回同时写入 DebugWriter 的读写器。
func (options *Options) wrapReadWriter(rw io.ReadWriter) io.ReadWriter {
	if options.DebugWriter == nil {
		return rw
	}
	return struct {
		io.Reader
		io.Writer
	}{
		Reader: io.TeeReader(rw, options.DebugWriter),
		Writer: io.MultiWriter(rw, options.DebugWriter),
	}
}

// Conn 是一条 IMAP 连接。
type Conn struct {
	conn    net.Conn
	options Options
	parser  *imapwire.Parser
	enc     imapwire.Encoder

	br       *bufio.Reader
	bw       *bufio.Writer
	receiver *imapwire.Receiver
	sender   *imapwire.Sender

	idling       bool
	suspendedTag string // 在同步字面量处暂停的命令的标签
}

// New 创建一条连接。此函数不执行 I/O。
//
// nil 选项指针等效于零选项值。
func New(conn net.Conn, options *Options) *Conn {
	if options == nil {
		options = &Options{}
	}
	c := &Conn{
		options: *options,
		parser:  imapwire.NewParser(options.ParserOptions),
		enc: imapwire.Encoder{
			LiteralPlus:  options.LiteralPlus,
			LiteralMinus: options.LiteralMinus,
		},
	}
	c.attach(conn)
	return c
}

// attach 让读写缓冲区和收发器指向 conn。
func (c *Conn) attach(conn net.Conn) {
	rw := c.options.wrapReadWriter(conn)
	c.conn = conn
	if c.br == nil {
		c.br = bufio.NewReader(rw)
	} else {
		c.br.Reset(rw)
	}
	c.bw = bufio.NewWriter(rw)
	c.receiver = imapwire.NewReceiver(imapwire.NewLineReader(c.br), c.parser)
	c.sender = imapwire.NewSender(c.bw)
}

// NetConn 返回底层连接。流升级之后它是升级后的连接。
func (c *Conn) NetConn() net.Conn {
	return c.conn
}

// Close 关闭底层连接。
func (c *Conn) Close() error {
	return c.conn.Close()
}

// SetLiteralExtensions 在得知服务器能力后更新字面量选项。
func (c *Conn) SetLiteralExtensions(literalPlus, literalMinus bool) {
	c.enc.LiteralPlus = literalPlus
	c.enc.LiteralMinus = literalMinus
}

// ApplyCapabilities 根据服务器宣告的能力更新字面量选项。
func (c *Conn) ApplyCapabilities(caps imap.CapSet) {
	c.SetLiteralExtensions(caps.LiteralExtensions())
}

// ReadResponse 读取下一个完整的响应。
//
// 如果这是暂停中的命令的带标签响应，说明服务器拒绝了字面量，命令尚未发送的片段会被丢弃。
func (c *Conn) ReadResponse() ([]imapwire.Value, error) {
	values, err := c.receiver.ReadResponse()
	if err != nil {
		return nil, err
	}
	if c.suspendedTag != "" && isTagged(values, c.suspendedTag) {
		c.Discard()
	}
	return values, nil
}

// WriteCommand 编码并发送一条命令。
//
// 如果命令包含同步字面量，发送会在字面量之前暂停并返回 suspended = true。
// 调用方应读取响应直到服务器发出继续请求，然后调用 Continue。
// 上一条命令仍有片段未发送时返回 imapwire.ErrContract。
func (c *Conn) WriteCommand(tag, name string, args ...imapwire.Arg) (suspended bool, err error) {
	if c.idling {
		return false, ErrIdling
	}
	if err := c.checkPending("command"); err != nil {
		return false, err
	}
	frags, err := c.enc.EncodeCommand(tag, name, args...)
	if err != nil {
		return false, err
	}
	c.sender.Enqueue(frags...)
	return c.send(tag)
}

// Continue 在收到继续请求后恢复发送。
func (c *Conn) Continue() (suspended bool, err error) {
	return c.send(c.suspendedTag)
}

// Discard 丢弃暂停中的命令尚未发送的片段，返回丢弃的数量。
//
// ReadResponse 读到该命令的带标签响应时会自动调用它。
func (c *Conn) Discard() int {
	c.suspendedTag = ""
	return c.sender.Discard()
}

// send 写出队列并记录暂停中的命令。
func (c *Conn) send(tag string) (suspended bool, err error) {
	suspended, err = c.sender.Send()
	if suspended {
		c.suspendedTag = tag
	} else {
		c.suspendedTag = ""
	}
	return suspended, err
}

// checkPending 在发送队列非空时返回 imapwire.ErrContract。
func (c *Conn) checkPending(op string) error {
	if n := c.sender.Pending(); n > 0 {
		return fmt.Errorf("%w: %v with %v pending fragments", imapwire.ErrContract, op, n)
	}
	return nil
}

// writeLine 发送一行不属于任何命令语法的数据，例如 DONE 或 SASL 响应。
func (c *Conn) writeLine(s string) error {
	if err := c.checkPending("line"); err != nil {
		return err
	}
	c.sender.Enqueue(imapwire.Chunk(s + "\r\n"))
	_, err := c.sender.Send()
	return err
}

// IsIdling 判断连接是否处于 IDLE 状态。
func (c *Conn) IsIdling() bool {
	return c.idling
}

// Idle 发送 IDLE 命令（RFC 2177）并进入 IDLE 状态。
//
// 之后服务器会先发出继续请求，再发送单方面的数据，调用方继续用 ReadResponse 读取它们。
// 在调用 Done 之前，WriteCommand、Idle 和 Upgrade 都返回 ErrIdling。
// 与 WriteCommand 一样，上一条命令仍有片段未发送时返回 imapwire.ErrContract。
func (c *Conn) Idle(tag string) error {
	if _, err := c.WriteCommand(tag, "IDLE"); err != nil {
		return err
	}
	c.idling = true
	return nil
}

// Done 发送 DONE 结束 IDLE。之后服务器会发出 IDLE 命令的带标签响应。
func (c *Conn) Done() error {
	if !c.idling {
		return fmt.Errorf("imapconn: DONE without IDLE")
	}
	if err := c.writeLine("DONE"); err != nil {
		return err
	}
	c.idling = false
	return nil
}

// Upgrade 用 f 返回的连接替换底层连接。
//
// 已读入缓冲区但尚未解析的字节会先交给新连接读取。f 返回的错误被包装为 *imapwire.ConnectionError，
// 此时连接应被关闭。
func (c *Conn) Upgrade(f UpgradeFunc) error {
	if c.idling {
		return ErrIdling
	}
	if err := c.checkPending("upgrade"); err != nil {
		return err
	}

	// 从 bufio.Reader 中取出已缓冲的数据
	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, c.br, int64(c.br.Buffered())); err != nil {
		return &imapwire.ConnectionError{Op: "upgrade", Err: err}
	}

	var cleartext net.Conn = c.conn
	if buf.Len() > 0 {
		cleartext = bufferedConn{c.conn, io.MultiReader(&buf, c.conn)}
	}

	upgraded, err := f(cleartext)
	if err != nil {
		return &imapwire.ConnectionError{Op: "upgrade", Err: err}
	}
	c.attach(upgraded)
	return nil
}

// bufferedConn 先读出升级之前缓冲的数据，再从原连接读取。
type bufferedConn struct {
	net.Conn
	r io.Reader
}

func (conn bufferedConn) Read(b []byte) (int, error) {
	return conn.r.Read(b)
}

// isTagged 判断响应是否是 tag 的带标签响应。
func isTagged(values []imapwire.Value, tag string) bool {
	if len(values) == 0 || !values[0].IsText() || values[0].Format() != imapwire.FormatAtom {
		return false
	}
	s, err := values[0].Text()
	return err == nil && s == tag
}

// closeValues 释放被丢弃的响应持有的字面量流。
func closeValues(values []imapwire.Value) {
	for _, v := range values {
		v.Close()
	}
}
