package imap

import "strings"

// NamespaceData 是 NAMESPACE 响应（RFC 2342）的数据。
type NamespaceData struct {
	Personal []NamespaceDescriptor // 个人命名空间
	Other    []NamespaceDescriptor // 其他用户的命名空间
	Shared   []NamespaceDescriptor // 共享命名空间
}

// NamespaceDescriptor 描述一个命名空间。Delim 为 0 表示没有层级分隔符。
type NamespaceDescriptor struct {
	Prefix string
	Delim  rune
}

// Lookup 返回包含 mailbox 的命名空间，前缀最长的优先。
func (data *NamespaceData) Lookup(mailbox string) (*NamespaceDescriptor, bool) {
	var best *NamespaceDescriptor
	for _, l := range [][]NamespaceDescriptor{data.Personal, data.Other, data.Shared} {
		for i := range l {
			desc := &l[i]
			if !desc.Contains(mailbox) {
				continue
			}
			if best == nil || len(desc.Prefix) > len(best.Prefix) {
				best = desc
			}
		}
	}
	return best, best != nil
}

// Contains 判断 mailbox 是否属于该命名空间。
//
// 以分隔符结尾的前缀也包含去掉分隔符后的邮箱本身，例如前缀 "Other Users/" 包含 "Other Users"。
// INBOX 不区分大小写。
func (desc *NamespaceDescriptor) Contains(mailbox string) bool {
	if strings.EqualFold(mailbox, "INBOX") && strings.EqualFold(desc.Prefix, "INBOX") {
		return true
	}
	if strings.HasPrefix(mailbox, desc.Prefix) {
		return true
	}
	if desc.Delim != 0 {
		return mailbox+string(desc.Delim) == desc.Prefix
	}
	return false
}
