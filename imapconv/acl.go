package imapconv

import (
	"github.com/luhaoyun888/go-imapwire"
	"github.com/luhaoyun888/go-imapwire/imapwire"
)

// ACL 转换 ACL 响应（RFC 4314）的参数：mailbox *(SP identifier SP rights)。
func (c *Converter) ACL(args []imapwire.Value) (*imap.ACLData, error) {
	v := imapwire.NewList(args...)
	if err := minArity(v, args, 1, "acl-data"); err != nil {
		return nil, err
	}
	mailbox, err := c.Mailbox(args[0])
	if err != nil {
		return nil, err
	}
	rest := args[1:]
	if len(rest)%2 != 0 {
		return nil, imapwire.Malformedf(v, "acl-data", "identifier without rights")
	}
	data := &imap.ACLData{
		Mailbox: mailbox,
		Rights:  make(map[imap.RightsIdentifier]imap.RightSet, len(rest)/2),
	}
	for i := 0; i < len(rest); i += 2 {
		id, err := text(rest[i], "identifier")
		if err != nil {
			return nil, err
		}
		rights, err := rightSet(rest[i+1])
		if err != nil {
			return nil, err
		}
		data.Rights[imap.RightsIdentifier(id)] = rights
	}
	return data, nil
}

// MyRights 转换 MYRIGHTS 响应的参数：mailbox rights。
func (c *Converter) MyRights(args []imapwire.Value) (*imap.MyRightsData, error) {
	v := imapwire.NewList(args...)
	if err := arity(v, args, 2, "myrights-data"); err != nil {
		return nil, err
	}
	var (
		data imap.MyRightsData
		err  error
	)
	if data.Mailbox, err = c.Mailbox(args[0]); err != nil {
		return nil, err
	}
	if data.Rights, err = rightSet(args[1]); err != nil {
		return nil, err
	}
	return &data, nil
}

// ListRights 转换 LISTRIGHTS 响应的参数：mailbox identifier required *(SP optional)。
func (c *Converter) ListRights(args []imapwire.Value) (*imap.ListRightsData, error) {
	v := imapwire.NewList(args...)
	if err := minArity(v, args, 3, "listrights-data"); err != nil {
		return nil, err
	}
	var (
		data imap.ListRightsData
		err  error
	)
	if data.Mailbox, err = c.Mailbox(args[0]); err != nil {
		return nil, err
	}
	id, err := text(args[1], "identifier")
	if err != nil {
		return nil, err
	}
	data.Identifier = imap.RightsIdentifier(id)
	if data.Required, err = rightSet(args[2]); err != nil {
		return nil, err
	}
	for _, arg := range args[3:] {
		rights, err := rightSet(arg)
		if err != nil {
			return nil, err
		}
		data.Optional = append(data.Optional, rights)
	}
	return &data, nil
}

// rightSet 转换 rights：由权限字母组成的 astring。
func rightSet(v imapwire.Value) (imap.RightSet, error) {
	s, err := text(v, "rights")
	if err != nil {
		return nil, err
	}
	for i := 0; i < len(s); i++ {
		if s[i] <= ' ' || s[i] >= 0x7f {
			return nil, imapwire.Malformedf(v, "rights", "invalid right %q", s[i])
		}
	}
	return imap.RightSet(s), nil
}
