package imap

import (
	"github.com/luhaoyun888/go-imapwire/imapwire"
)

// StoreOptions 包含 STORE 命令的选项。
type StoreOptions struct {
	UnchangedSince uint64 // 要求 CONDSTORE
}

// StoreFlagsOp 是标志操作：设置、添加或删除。
type StoreFlagsOp int

const (
	StoreFlagsSet StoreFlagsOp = iota // 设置标志
	StoreFlagsAdd                     // 添加标志
	StoreFlagsDel                     // 删除标志
)

// StoreFlags 修改消息标志。
type StoreFlags struct {
	Op     StoreFlagsOp // 操作类型
	Silent bool         // 是否静默操作
	Flags  []Flag       // 要修改的标志
}

// Args 返回 STORE 命令中数据项名称和标志列表两个参数，例如 +FLAGS.SILENT (\Seen)。
func (store *StoreFlags) Args() []imapwire.Arg {
	var item string
	switch store.Op {
	case StoreFlagsAdd:
		item = "+FLAGS"
	case StoreFlagsDel:
		item = "-FLAGS"
	default:
		item = "FLAGS"
	}
	if store.Silent {
		item += ".SILENT"
	}

	flags := make([]string, len(store.Flags))
	for i, f := range store.Flags {
		flags[i] = string(f)
	}
	return []imapwire.Arg{imapwire.Atom(item), imapwire.FlagList(flags)}
}

// Args 返回 STORE 命令 UNCHANGEDSINCE 修饰符的参数，未设置时返回 nil。
func (options *StoreOptions) Args() []imapwire.Arg {
	if options == nil || options.UnchangedSince == 0 {
		return nil
	}
	return []imapwire.Arg{imapwire.List{imapwire.Atom("UNCHANGEDSINCE"), imapwire.Number(options.UnchangedSince)}}
}
