// Package imap 定义 IMAP 响应转换后得到的类型化实体。
//
// IMAP4rev1 在 RFC 3501 中定义，IMAP4rev2 在 RFC 9051 中定义。
//
// 线路层的解析和序列化见 imapwire 子包，从 Value 树到本包类型的转换见 imapconv 子包。
package imap

import (
	"strings"
)

// MailboxAttr 是邮箱属性。
//
// 邮箱属性在 RFC 9051 第 7.3.1 节中定义。
type MailboxAttr string

const (
	// 基础属性
	MailboxAttrNonExistent   MailboxAttr = "\\NonExistent"   // 不存在
	MailboxAttrNoInferiors   MailboxAttr = "\\Noinferiors"   // 无下级
	MailboxAttrNoSelect      MailboxAttr = "\\Noselect"      // 不可选择
	MailboxAttrHasChildren   MailboxAttr = "\\HasChildren"   // 有子项
	MailboxAttrHasNoChildren MailboxAttr = "\\HasNoChildren" // 无子项
	MailboxAttrMarked        MailboxAttr = "\\Marked"        // 已标记
	MailboxAttrUnmarked      MailboxAttr = "\\Unmarked"      // 未标记
	MailboxAttrSubscribed    MailboxAttr = "\\Subscribed"    // 已订阅
	MailboxAttrRemote        MailboxAttr = "\\Remote"        // 远程

	// 角色（即 "特殊用途"）属性
	MailboxAttrAll       MailboxAttr = "\\All"       // 全部
	MailboxAttrArchive   MailboxAttr = "\\Archive"   // 档案
	MailboxAttrDrafts    MailboxAttr = "\\Drafts"    // 草稿
	MailboxAttrFlagged   MailboxAttr = "\\Flagged"   // 标记
	MailboxAttrJunk      MailboxAttr = "\\Junk"      // 垃圾
	MailboxAttrSent      MailboxAttr = "\\Sent"      // 已发送
	MailboxAttrTrash     MailboxAttr = "\\Trash"     // 垃圾箱
	MailboxAttrImportant MailboxAttr = "\\Important" // 重要（RFC 8457）
)

// Flag 是消息标志。
//
// 消息标志在 RFC 9051 第 2.3.2 节中定义。
type Flag string

const (
	// 系统标志
	FlagSeen     Flag = "\\Seen"     // 已读
	FlagAnswered Flag = "\\Answered" // 已回复
	FlagFlagged  Flag = "\\Flagged"  // 已标记
	FlagDeleted  Flag = "\\Deleted"  // 已删除
	FlagDraft    Flag = "\\Draft"    // 草稿
	FlagRecent   Flag = "\\Recent"   // 最近到达，只能由服务器设置（仅 IMAP4rev1）

	// 常用标志
	FlagForwarded Flag = "$Forwarded" // 已转发
	FlagMDNSent   Flag = "$MDNSent"   // 消息处理通知已发送
	FlagJunk      Flag = "$Junk"      // 垃圾
	FlagNotJunk   Flag = "$NotJunk"   // 非垃圾
	FlagPhishing  Flag = "$Phishing"  // 钓鱼
	FlagImportant Flag = "$Important" // 重要（RFC 8457）

	// 永久标志
	FlagWildcard Flag = "\\*" // 通配符
)

// UID 是消息的唯一标识符。
type UID uint32

// systemFlags 是 RFC 3501 定义的系统标志，按小写索引。
var systemFlags = map[string]Flag{
	"\\seen":     FlagSeen,
	"\\answered": FlagAnswered,
	"\\flagged":  FlagFlagged,
	"\\deleted":  FlagDeleted,
	"\\draft":    FlagDraft,
	"\\recent":   FlagRecent,
	"\\*":        FlagWildcard,
}

// CanonicalFlag 返回标志的规范形式。
//
// 系统标志不区分大小写，规范化为 RFC 中的写法。关键字标志原样返回。
func CanonicalFlag(flag string) Flag {
	if f, ok := systemFlags[strings.ToLower(flag)]; ok {
		return f
	}
	return Flag(flag)
}

// IsSystemFlag 判断标志是否以反斜杠开头，即声称是系统标志。
func IsSystemFlag(flag Flag) bool {
	return strings.HasPrefix(string(flag), "\\")
}

// IsKnownSystemFlag 判断标志是否为 RFC 3501 定义的系统标志之一。
func IsKnownSystemFlag(flag Flag) bool {
	_, ok := systemFlags[strings.ToLower(string(flag))]
	return ok
}
