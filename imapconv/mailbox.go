package imapconv

import (
	"strings"

	"github.com/luhaoyun888/go-imapwire"
	"github.com/luhaoyun888/go-imapwire/imapwire"
)

// Status 转换 STATUS 响应的参数：mailbox (status-att-val ...)。
//
// APPENDLIMIT 为 NIL 表示没有限制，此时 AppendLimit 为 uint32 的最大值。
func (c *Converter) Status(args []imapwire.Value) (*imap.StatusData, error) {
	v := imapwire.NewList(args...)
	if err := arity(v, args, 2, "status-response"); err != nil {
		return nil, err
	}

	var (
		data imap.StatusData
		err  error
	)
	if data.Mailbox, err = c.Mailbox(args[0]); err != nil {
		return nil, err
	}
	atts, err := list(args[1], "status-att-list")
	if err != nil {
		return nil, err
	}
	err = pairs(args[1], atts, "status-att-val", func(name string, val imapwire.Value) error {
		var err error
		switch name {
		case "MESSAGES":
			var num uint32
			num, err = Number(val)
			data.NumMessages = &num
		case "UIDNEXT":
			var uid uint32
			uid, err = NZNumber(val)
			data.UIDNext = imap.UID(uid)
		case "UIDVALIDITY":
			data.UIDValidity, err = NZNumber(val)
		case "UNSEEN":
			var num uint32
			num, err = Number(val)
			data.NumUnseen = &num
		case "DELETED":
			var num uint32
			num, err = Number(val)
			data.NumDeleted = &num
		case "SIZE":
			var size int64
			size, err = Number64(val)
			data.Size = &size
		case "APPENDLIMIT":
			num := ^uint32(0)
			if !val.IsNil() {
				num, err = Number(val)
			}
			data.AppendLimit = &num
		case "DELETED-STORAGE":
			var storage int64
			storage, err = Number64(val)
			data.DeletedStorage = &storage
		case "HIGHESTMODSEQ":
			data.HighestModSeq, err = ModSeqValzer(val)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// List 转换 LIST 或 LSUB 响应的参数：(mbx-list-flags) delimiter mailbox [(mbox-list-extended)]。
func (c *Converter) List(args []imapwire.Value) (*imap.ListData, error) {
	v := imapwire.NewList(args...)
	if len(args) != 3 && len(args) != 4 {
		return nil, imapwire.Malformedf(v, "mailbox-list", "expected 3 or 4 elements, got %v", len(args))
	}

	var (
		data imap.ListData
		err  error
	)
	if data.Attrs, err = MailboxAttrList(args[0]); err != nil {
		return nil, err
	}
	if data.Delim, err = Delim(args[1]); err != nil {
		return nil, err
	}
	if data.Mailbox, err = c.Mailbox(args[2]); err != nil {
		return nil, err
	}
	if len(args) == 4 {
		items, err := list(args[3], "mbox-list-extended")
		if err != nil {
			return nil, err
		}
		err = pairs(args[3], items, "mbox-list-extended-item", func(name string, val imapwire.Value) error {
			var err error
			switch name {
			case "CHILDINFO":
				data.ChildInfo, err = childInfo(val)
			case "OLDNAME":
				var l []imapwire.Value
				if l, err = list(val, "oldname-extended-item"); err == nil {
					if err = arity(val, l, 1, "oldname-extended-item"); err == nil {
						data.OldName, err = c.Mailbox(l[0])
					}
				}
			}
			return err
		})
		if err != nil {
			return nil, err
		}
	}
	return &data, nil
}

func childInfo(v imapwire.Value) (*imap.ListDataChildInfo, error) {
	l, err := list(v, "childinfo-extended-item")
	if err != nil {
		return nil, err
	}
	var info imap.ListDataChildInfo
	for _, item := range l {
		opt, err := text(item, "list-select-base-opt-quoted")
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(opt, "SUBSCRIBED") {
			info.Subscribed = true
		}
	}
	return &info, nil
}

// MergeListStatus 把 LIST-STATUS（RFC 5819）返回的 STATUS 数据合并到同名邮箱的 LIST 数据中。
//
// 没有对应 LIST 数据的 STATUS 被忽略。
func MergeListStatus(lists []*imap.ListData, statuses []*imap.StatusData) {
	byName := make(map[string]*imap.ListData, len(lists))
	for _, data := range lists {
		byName[data.Mailbox] = data
	}
	for _, status := range statuses {
		if data, ok := byName[status.Mailbox]; ok {
			data.Status = status
		}
	}
}
