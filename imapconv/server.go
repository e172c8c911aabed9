package imapconv

import (
	"strings"

	"github.com/luhaoyun888/go-imapwire"
	"github.com/luhaoyun888/go-imapwire/imapwire"
)

// Capability 转换 CAPABILITY 响应（或 CAPABILITY 响应代码）的参数。
func Capability(args []imapwire.Value) (imap.CapSet, error) {
	caps := make(imap.CapSet, len(args))
	for _, arg := range args {
		name, err := atom(arg, "capability")
		if err != nil {
			return nil, err
		}
		caps[imap.Cap(name)] = struct{}{}
	}
	return caps, nil
}

// Enabled 转换 ENABLED 响应（RFC 5161）的参数。
func Enabled(args []imapwire.Value) (imap.CapSet, error) {
	return Capability(args)
}

// Namespace 转换 NAMESPACE 响应的参数：个人、其他用户和共享三组命名空间，每组为 NIL 或描述符列表。
func Namespace(args []imapwire.Value) (*imap.NamespaceData, error) {
	v := imapwire.NewList(args...)
	if err := arity(v, args, 3, "namespace-response"); err != nil {
		return nil, err
	}
	var (
		data imap.NamespaceData
		err  error
	)
	if data.Personal, err = namespace(args[0]); err != nil {
		return nil, err
	}
	if data.Other, err = namespace(args[1]); err != nil {
		return nil, err
	}
	if data.Shared, err = namespace(args[2]); err != nil {
		return nil, err
	}
	return &data, nil
}

func namespace(v imapwire.Value) ([]imap.NamespaceDescriptor, error) {
	l, err := nlist(v, "namespace")
	if err != nil || l == nil {
		return nil, err
	}
	descrs := make([]imap.NamespaceDescriptor, 0, len(l))
	for _, item := range l {
		fields, err := list(item, "namespace-descr")
		if err != nil {
			return nil, err
		}
		// 前缀和分隔符之后可能是 namespace-response-extensions，忽略
		if err := minArity(item, fields, 2, "namespace-descr"); err != nil {
			return nil, err
		}
		var descr imap.NamespaceDescriptor
		if descr.Prefix, err = text(fields[0], "namespace prefix"); err != nil {
			return nil, err
		}
		if descr.Delim, err = Delim(fields[1]); err != nil {
			return nil, err
		}
		descrs = append(descrs, descr)
	}
	return descrs, nil
}

// ID 转换 ID 响应（RFC 2971）的参数：NIL 或 (键 值 ...)。键不区分大小写，未知的键被忽略。
func ID(args []imapwire.Value) (*imap.IDData, error) {
	v := imapwire.NewList(args...)
	if err := arity(v, args, 1, "id-response"); err != nil {
		return nil, err
	}
	var data imap.IDData
	l, err := nlist(args[0], "id-params-list")
	if err != nil || l == nil {
		return &data, err
	}
	if len(l)%2 != 0 {
		return nil, imapwire.Malformedf(args[0], "id-params-list", "key without value")
	}

	for i := 0; i < len(l); i += 2 {
		key, err := text(l[i], "id key")
		if err != nil {
			return nil, err
		}
		val, err := nstring(l[i+1], "id value")
		if err != nil {
			return nil, err
		}
		if field := data.Field(key); field != nil {
			*field = val
		}
	}
	return &data, nil
}

// Quota 转换 QUOTA 响应（RFC 9208）的参数：quota-root (资源 使用量 限制 ...)。
func Quota(args []imapwire.Value) (*imap.QuotaData, error) {
	v := imapwire.NewList(args...)
	if err := arity(v, args, 2, "quota-response"); err != nil {
		return nil, err
	}
	root, err := text(args[0], "quota-root-name")
	if err != nil {
		return nil, err
	}
	l, err := list(args[1], "quota-list")
	if err != nil {
		return nil, err
	}
	if len(l)%3 != 0 {
		return nil, imapwire.Malformedf(args[1], "quota-list", "expected resource usage limit triples")
	}

	data := &imap.QuotaData{
		Root:      root,
		Resources: make(map[imap.QuotaResourceType]imap.QuotaResourceData, len(l)/3),
	}
	for i := 0; i < len(l); i += 3 {
		name, err := atom(l[i], "quota-resource")
		if err != nil {
			return nil, err
		}
		var res imap.QuotaResourceData
		if res.Usage, err = Number64(l[i+1]); err != nil {
			return nil, err
		}
		if res.Limit, err = Number64(l[i+2]); err != nil {
			return nil, err
		}
		data.Resources[imap.QuotaResourceType(strings.ToUpper(name))] = res
	}
	return data, nil
}

// QuotaRoot 转换 QUOTAROOT 响应的参数：mailbox *(SP quota-root-name)。
func (c *Converter) QuotaRoot(args []imapwire.Value) (*imap.QuotaRootData, error) {
	v := imapwire.NewList(args...)
	if err := minArity(v, args, 1, "quotaroot-response"); err != nil {
		return nil, err
	}
	mailbox, err := c.Mailbox(args[0])
	if err != nil {
		return nil, err
	}
	data := &imap.QuotaRootData{Mailbox: mailbox}
	for _, arg := range args[1:] {
		root, err := text(arg, "quota-root-name")
		if err != nil {
			return nil, err
		}
		data.Roots = append(data.Roots, root)
	}
	return data, nil
}

// Metadata 转换 METADATA 响应（RFC 5464）的参数。
//
// 响应要么是 mailbox (条目 值 ...)，要么是 mailbox 条目 条目 ...（未经请求的变化通知）。
func (c *Converter) Metadata(args []imapwire.Value) (*imap.MetadataData, error) {
	v := imapwire.NewList(args...)
	if err := minArity(v, args, 2, "metadata-resp"); err != nil {
		return nil, err
	}
	var (
		data imap.MetadataData
		err  error
	)
	if data.Mailbox, err = c.Mailbox(args[0]); err != nil {
		return nil, err
	}

	if !args[1].IsList() {
		for _, arg := range args[1:] {
			entry, err := text(arg, "entry")
			if err != nil {
				return nil, err
			}
			data.EntryList = append(data.EntryList, entry)
		}
		return &data, nil
	}

	if err := arity(v, args, 2, "metadata-resp"); err != nil {
		return nil, err
	}
	l, _ := args[1].List()
	if len(l)%2 != 0 {
		return nil, imapwire.Malformedf(args[1], "entry-values", "entry without value")
	}
	data.EntryValues = make(map[string]*[]byte, len(l)/2)
	for i := 0; i < len(l); i += 2 {
		entry, err := text(l[i], "entry")
		if err != nil {
			return nil, err
		}
		var value *[]byte
		if !l[i+1].IsNil() {
			if !l[i+1].IsText() {
				return nil, imapwire.Malformed(l[i+1], "value")
			}
			b, err := l[i+1].Bytes()
			if err != nil {
				return nil, imapwire.Malformedf(l[i+1], "value", "%v", err)
			}
			b = append([]byte(nil), b...)
			value = &b
		}
		data.EntryValues[entry] = value
	}
	return &data, nil
}
