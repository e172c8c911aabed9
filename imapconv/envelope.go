package imapconv

import (
	netmail "net/mail"

	"github.com/emersion/go-message/mail"

	"github.com/luhaoyun888/go-imapwire"
	"github.com/luhaoyun888/go-imapwire/imapwire"
)

// Envelope 转换 envelope：
//
//	(date subject from sender reply-to to cc bcc in-reply-to message-id)
//
// 无法解析的日期和消息标识符留空，服务器在这些字段中常常原样转发不规范的头部。
func (c *Converter) Envelope(v imapwire.Value) (*imap.Envelope, error) {
	l, err := list(v, "envelope")
	if err != nil {
		return nil, err
	}
	if err := arity(v, l, 10, "envelope"); err != nil {
		return nil, err
	}

	var envelope imap.Envelope

	date, err := nstring(l[0], "env-date")
	if err != nil {
		return nil, err
	}
	envelope.Date, _ = netmail.ParseDate(date)

	subject, err := nstring(l[1], "env-subject")
	if err != nil {
		return nil, err
	}
	envelope.Subject = c.decodeText(subject)

	addrLists := []struct {
		name string
		out  *[]imap.Address
	}{
		{"env-from", &envelope.From},
		{"env-sender", &envelope.Sender},
		{"env-reply-to", &envelope.ReplyTo},
		{"env-to", &envelope.To},
		{"env-cc", &envelope.Cc},
		{"env-bcc", &envelope.Bcc},
	}
	for i, addrList := range addrLists {
		*addrList.out, err = c.addressList(l[2+i], addrList.name)
		if err != nil {
			return nil, err
		}
	}

	inReplyTo, err := nstring(l[8], "env-in-reply-to")
	if err != nil {
		return nil, err
	}
	envelope.InReplyTo, _ = parseMsgIDList(inReplyTo)

	messageID, err := nstring(l[9], "env-message-id")
	if err != nil {
		return nil, err
	}
	envelope.MessageID, _ = parseMsgID(messageID)

	return &envelope, nil
}

// AddressList 转换地址列表（NIL 或括号中的 address 序列）。
func (c *Converter) AddressList(v imapwire.Value) ([]imap.Address, error) {
	return c.addressList(v, "address-list")
}

func (c *Converter) addressList(v imapwire.Value, expected string) ([]imap.Address, error) {
	l, err := nlist(v, expected)
	if err != nil || l == nil {
		return nil, err
	}
	addrs := make([]imap.Address, 0, len(l))
	for _, item := range l {
		addr, err := c.Address(item)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, *addr)
	}
	return addrs, nil
}

// Address 转换 address：(addr-name addr-adl addr-mailbox addr-host)。
//
// 组的开始和结束标记也是 address，见 imap.Address 的 IsGroupStart 和 IsGroupEnd。
func (c *Converter) Address(v imapwire.Value) (*imap.Address, error) {
	l, err := list(v, "address")
	if err != nil {
		return nil, err
	}
	if err := arity(v, l, 4, "address"); err != nil {
		return nil, err
	}

	var addr imap.Address
	name, err := nstring(l[0], "addr-name")
	if err != nil {
		return nil, err
	}
	// addr-adl 是过时的源路由，只检查形态
	if _, err := nstring(l[1], "addr-adl"); err != nil {
		return nil, err
	}
	if addr.Mailbox, err = nstring(l[2], "addr-mailbox"); err != nil {
		return nil, err
	}
	if addr.Host, err = nstring(l[3], "addr-host"); err != nil {
		return nil, err
	}
	addr.Name = c.decodeText(name)
	return &addr, nil
}

func parseMsgID(s string) (string, error) {
	var h mail.Header
	h.Set("Message-Id", s)
	return h.MessageID()
}

func parseMsgIDList(s string) ([]string, error) {
	var h mail.Header
	h.Set("In-Reply-To", s)
	return h.MsgIDList("In-Reply-To")
}
