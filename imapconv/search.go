package imapconv

import (
	"github.com/luhaoyun888/go-imapwire"
	"github.com/luhaoyun888/go-imapwire/imapwire"
)

// Search 转换 SEARCH 响应的参数：*(SP nz-number) [SP search-sort-mod-seq]。
//
// uid 表示这是 UID SEARCH 的结果，此时 All 为 imap.UIDSet，否则为 imap.SeqSet。
func Search(args []imapwire.Value, uid bool) (*imap.SearchData, error) {
	nums, modSeq, err := searchNums(args)
	if err != nil {
		return nil, err
	}
	data := &imap.SearchData{UID: uid, ModSeq: modSeq}
	if uid {
		uids := make([]imap.UID, len(nums))
		for i, num := range nums {
			uids[i] = imap.UID(num)
		}
		var all imap.UIDSet
		all.AddNum(uids...)
		data.All = all
	} else {
		var all imap.SeqSet
		all.AddNum(nums...)
		data.All = all
	}
	return data, nil
}

// Sort 转换 SORT 响应的参数（RFC 5256）。
func Sort(args []imapwire.Value) (*imap.SortData, error) {
	nums, modSeq, err := searchNums(args)
	if err != nil {
		return nil, err
	}
	return &imap.SortData{Nums: nums, ModSeq: modSeq}, nil
}

// searchNums 转换一串数字，最后可能跟着 (MODSEQ mod-sequence-value)。
func searchNums(args []imapwire.Value) (nums []uint32, modSeq uint64, err error) {
	for i, arg := range args {
		if arg.IsList() && i == len(args)-1 {
			modSeq, err = searchSortModSeq(arg)
			if err != nil {
				return nil, 0, err
			}
			break
		}
		num, err := NZNumber(arg)
		if err != nil {
			return nil, 0, err
		}
		nums = append(nums, num)
	}
	return nums, modSeq, nil
}

// searchSortModSeq 转换 search-sort-mod-seq：(MODSEQ mod-sequence-value)。
func searchSortModSeq(v imapwire.Value) (uint64, error) {
	l, err := list(v, "search-sort-mod-seq")
	if err != nil {
		return 0, err
	}
	if err := arity(v, l, 2, "search-sort-mod-seq"); err != nil {
		return 0, err
	}
	if !l[0].IsAtom("MODSEQ") {
		return 0, imapwire.Malformed(l[0], "MODSEQ")
	}
	return ModSeqValue(l[1])
}

// ESearch 转换 ESEARCH 响应的参数（RFC 4731）：[search-correlator] [SP "UID"] *(SP search-return-data)。
//
// 相关器中的命令标签保存在 Tag 中。ALL 不能是动态集合。
func ESearch(args []imapwire.Value) (*imap.SearchData, error) {
	data := &imap.SearchData{}
	v := imapwire.NewList(args...)

	if len(args) > 0 && args[0].IsList() {
		correlator, err := list(args[0], "search-correlator")
		if err != nil {
			return nil, err
		}
		if err := arity(args[0], correlator, 2, "search-correlator"); err != nil {
			return nil, err
		}
		if !correlator[0].IsAtom("TAG") {
			return nil, imapwire.Malformed(correlator[0], "TAG")
		}
		if data.Tag, err = text(correlator[1], "tag-string"); err != nil {
			return nil, err
		}
		args = args[1:]
	}
	if len(args) > 0 && args[0].IsAtom("UID") {
		data.UID = true
		args = args[1:]
	}

	err := pairs(v, args, "search-return-data", func(name string, val imapwire.Value) error {
		var err error
		switch name {
		case "MIN":
			data.Min, err = NZNumber(val)
		case "MAX":
			data.Max, err = NZNumber(val)
		case "COUNT":
			data.Count, err = Number(val)
		case "MODSEQ":
			data.ModSeq, err = ModSeqValue(val)
		case "ALL":
			var all imap.NumSet
			if data.UID {
				all, err = UIDSet(val)
			} else {
				all, err = SeqSet(val)
			}
			if err == nil && all.Dynamic() {
				err = imapwire.Malformedf(val, "sequence-set", "dynamic set in ESEARCH ALL")
			}
			data.All = all
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if data.All == nil {
		if data.UID {
			data.All = imap.UIDSet(nil)
		} else {
			data.All = imap.SeqSet(nil)
		}
	}
	return data, nil
}

// Thread 转换 THREAD 响应的参数（RFC 5256），每个参数是一个 thread-list。
func Thread(args []imapwire.Value) ([]imap.ThreadData, error) {
	threads := make([]imap.ThreadData, 0, len(args))
	for _, arg := range args {
		thread, err := threadList(arg)
		if err != nil {
			return nil, err
		}
		threads = append(threads, *thread)
	}
	return threads, nil
}

// threadList 转换 thread-list：链中的消息编号之后是子线程。
func threadList(v imapwire.Value) (*imap.ThreadData, error) {
	l, err := list(v, "thread-list")
	if err != nil {
		return nil, err
	}
	var data imap.ThreadData
	for _, item := range l {
		if len(data.SubThreads) == 0 && item.IsText() {
			num, err := NZNumber(item)
			if err != nil {
				return nil, err
			}
			data.Chain = append(data.Chain, num)
			continue
		}
		sub, err := threadList(item)
		if err != nil {
			return nil, err
		}
		data.SubThreads = append(data.SubThreads, *sub)
	}
	return &data, nil
}

