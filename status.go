package imap

import (
	"github.com/luhaoyun888/go-imapwire/imapwire"
)

// StatusOptions 选择 STATUS 命令请求的数据项。
type StatusOptions struct {
	NumMessages bool // MESSAGES
	UIDNext     bool // UIDNEXT
	UIDValidity bool // UIDVALIDITY
	NumUnseen   bool // UNSEEN
	NumDeleted  bool // DELETED，要求 IMAP4rev2 或 QUOTA
	Size        bool // SIZE，要求 IMAP4rev2 或 STATUS=SIZE

	AppendLimit    bool // APPENDLIMIT
	DeletedStorage bool // DELETED-STORAGE，要求 QUOTA=RES-STORAGE
	HighestModSeq  bool // HIGHESTMODSEQ，要求 CONDSTORE
}

// Arg 返回括号括起来的数据项名称列表。
func (options *StatusOptions) Arg() imapwire.List {
	items := []struct {
		on   bool
		name string
	}{
		{options.NumMessages, "MESSAGES"},
		{options.UIDNext, "UIDNEXT"},
		{options.UIDValidity, "UIDVALIDITY"},
		{options.NumUnseen, "UNSEEN"},
		{options.NumDeleted, "DELETED"},
		{options.Size, "SIZE"},
		{options.AppendLimit, "APPENDLIMIT"},
		{options.DeletedStorage, "DELETED-STORAGE"},
		{options.HighestModSeq, "HIGHESTMODSEQ"},
	}
	l := imapwire.List{}
	for _, item := range items {
		if item.on {
			l = append(l, imapwire.Atom(item.name))
		}
	}
	return l
}

// StatusData 是 STATUS 响应的数据。
//
// 邮箱名称总是存在，其他字段只在响应中出现时才设置。
type StatusData struct {
	Mailbox string // 邮箱名称

	NumMessages *uint32 // 邮箱中的邮件数量
	UIDNext     UID     // 下一个可用的 UID
	UIDValidity uint32  // UID 有效性
	NumUnseen   *uint32 // 未读邮件数量
	NumDeleted  *uint32 // 已删除邮件数量
	Size        *int64  // 邮箱大小

	AppendLimit    *uint32 // 附加限制，无限制时为 ^uint32(0)
	DeletedStorage *int64  // 已删除邮件的存储量
	HighestModSeq  uint64  // 最高的修改序列号
}
