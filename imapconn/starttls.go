package imapconn

import (
	"crypto/tls"
	"fmt"
	"net"

	"github.com/luhaoyun888/go-imapwire/imapconv"
)

// StartTLS 发送 STARTTLS 命令，服务器返回 OK 后在当前连接上完成 TLS 握手。
//
// 服务器拒绝时返回 *imap.Error，连接保持明文。握手失败时返回 *imapwire.ConnectionError。
// config 为 nil 时使用默认配置。
func (c *Conn) StartTLS(tag string, config *tls.Config) error {
	if config == nil {
		config = new(tls.Config)
	}
	if _, err := c.WriteCommand(tag, "STARTTLS"); err != nil {
		return err
	}

	status, err := c.waitTagged(tag)
	if err != nil {
		return err
	}
	if err := status.Err(); err != nil {
		return err
	}

	return c.Upgrade(func(conn net.Conn) (net.Conn, error) {
		tlsConn := tls.Client(conn, config)
		if err := tlsConn.Handshake(); err != nil {
			return nil, err
		}
		return tlsConn, nil
	})
}

// waitTagged 读取响应直到 tag 的带标签响应，期间的其他响应被丢弃。
func (c *Conn) waitTagged(tag string) (*imapconv.StatusResult, error) {
	for {
		values, err := c.ReadResponse()
		if err != nil {
			return nil, err
		}
		if !isTagged(values, tag) {
			closeValues(values)
			continue
		}
		status, err := imapconv.StatusResponse(values[1:])
		if err != nil {
			return nil, fmt.Errorf("imapconn: in response to %v: %w", tag, err)
		}
		return status, nil
	}
}
