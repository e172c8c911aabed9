package imapconv

import (
	"strings"

	"github.com/luhaoyun888/go-imapwire"
	"github.com/luhaoyun888/go-imapwire/imapwire"
)

// FlagList 转换 flag-list，例如 FLAGS 响应中的 "(\Answered \Seen $Forwarded)"。
//
// 系统标志规范化为 imap 包中的写法，重复的标志只保留第一次出现。
func FlagList(v imapwire.Value) ([]imap.Flag, error) {
	return flagList(v, "flag-list", false, nil)
}

// PermanentFlags 转换 PERMANENTFLAGS 响应代码中的标志列表，其中允许出现 "\*"。
func PermanentFlags(v imapwire.Value) ([]imap.Flag, error) {
	return flagList(v, "flag-perm", true, nil)
}

// FetchFlags 转换 FETCH 响应中的 FLAGS 数据项（flag-fetch）。
//
// 有些服务器会返回以 '\' 开头却不是系统标志的标志。这样的标志如果不在 permitted 中，就被悄悄丢弃，而不是报错。
// permitted 通常是邮箱的 FLAGS 响应。
func FetchFlags(v imapwire.Value, permitted []imap.Flag) ([]imap.Flag, error) {
	return flagList(v, "flag-fetch", false, func(flag imap.Flag) bool {
		if !imap.IsSystemFlag(flag) || imap.IsKnownSystemFlag(flag) {
			return true
		}
		for _, p := range permitted {
			if strings.EqualFold(string(p), string(flag)) {
				return true
			}
		}
		return false
	})
}

func flagList(v imapwire.Value, expected string, allowWildcard bool, keep func(imap.Flag) bool) ([]imap.Flag, error) {
	l, err := list(v, expected)
	if err != nil {
		return nil, err
	}
	flags := make([]imap.Flag, 0, len(l))
	seen := make(map[imap.Flag]struct{}, len(l))
	for _, item := range l {
		s, err := atom(item, "flag")
		if err != nil {
			return nil, err
		}
		if s == "" || s == "\\" {
			return nil, imapwire.Malformed(item, "flag")
		}
		flag := imap.CanonicalFlag(s)
		if flag == imap.FlagWildcard && !allowWildcard {
			return nil, imapwire.Malformedf(item, "flag", "\\* is only allowed in PERMANENTFLAGS")
		}
		if keep != nil && !keep(flag) {
			continue
		}
		if _, ok := seen[flag]; ok {
			continue
		}
		seen[flag] = struct{}{}
		flags = append(flags, flag)
	}
	return flags, nil
}

var mailboxAttrs = map[string]imap.MailboxAttr{}

func init() {
	for _, attr := range []imap.MailboxAttr{
		imap.MailboxAttrNonExistent,
		imap.MailboxAttrNoInferiors,
		imap.MailboxAttrNoSelect,
		imap.MailboxAttrHasChildren,
		imap.MailboxAttrHasNoChildren,
		imap.MailboxAttrMarked,
		imap.MailboxAttrUnmarked,
		imap.MailboxAttrSubscribed,
		imap.MailboxAttrRemote,
		imap.MailboxAttrAll,
		imap.MailboxAttrArchive,
		imap.MailboxAttrDrafts,
		imap.MailboxAttrFlagged,
		imap.MailboxAttrJunk,
		imap.MailboxAttrSent,
		imap.MailboxAttrTrash,
		imap.MailboxAttrImportant,
	} {
		mailboxAttrs[strings.ToLower(string(attr))] = attr
	}
}

// MailboxAttrList 转换 mbx-list-flags。已知属性不区分大小写，规范化为 imap 包中的写法。
func MailboxAttrList(v imapwire.Value) ([]imap.MailboxAttr, error) {
	l, err := list(v, "mbx-list-flags")
	if err != nil {
		return nil, err
	}
	attrs := make([]imap.MailboxAttr, 0, len(l))
	for _, item := range l {
		s, err := atom(item, "mbx-list-flag")
		if err != nil {
			return nil, err
		}
		attr, ok := mailboxAttrs[strings.ToLower(s)]
		if !ok {
			attr = imap.MailboxAttr(s)
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}
