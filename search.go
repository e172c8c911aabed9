package imap

import (
	"reflect"
)

// SearchData 表示 SEARCH 或 ESEARCH 响应的数据。
type SearchData struct {
	All NumSet // 所有结果

	// 需要 IMAP4rev2 或 ESEARCH
	Tag   string // 搜索相关器中的命令标签
	UID   bool   // 是否返回 UID
	Min   uint32 // 最小值
	Max   uint32 // 最大值
	Count uint32 // 计数

	// 需要 CONDSTORE
	ModSeq uint64 // ModSeq 值
}

// AllSeqNums 方法返回 All 作为消息序号的切片。
//
// 返回：
// 消息序号的切片。
func (data *SearchData) AllSeqNums() []uint32 {
	seqSet, ok := data.All.(SeqSet)
	if !ok {
		return nil
	}

	// 注意：动态序号集将是服务器错误
	nums, ok := seqSet.Nums()
	if !ok {
		panic("imap: SearchData.All 是动态号码集")
	}
	return nums
}

// AllUIDs 方法返回 All 作为 UID 的切片。
//
// 返回：
// UID 的切片。
func (data *SearchData) AllUIDs() []UID {
	uidSet, ok := data.All.(UIDSet)
	if !ok {
		return nil
	}

	// 注意：动态序号集将是服务器错误
	uids, ok := uidSet.Nums()
	if !ok {
		panic("imap: SearchData.All 是动态号码集")
	}
	return uids
}

// searchRes 是一个特殊的空 UIDSet，用作标记。它具有非零容量，因此它的数据指针非 nil，可以用于比较。
//
// 它是 UIDSet 而非 SeqSet，因此它可以传递给 UID EXPUNGE 命令。
var (
	searchRes     = make(UIDSet, 0, 1)
	searchResAddr = reflect.ValueOf(searchRes).Pointer()
)

// SearchRes 方法返回一个特殊的标记，可以替代 UIDSet 引用上次 SEARCH 结果。在传输中，它被编码为 '$'。
//
// 需要 IMAP4rev2 或 SEARCHRES 扩展。
func SearchRes() UIDSet {
	return searchRes
}

// IsSearchRes 方法检查序号集是否引用了上次 SEARCH 结果。请参阅 SearchRes。
//
// 参数：
// - numSet: 要检查的序号集。
//
// 返回：
// 如果是上次搜索结果的引用，返回 true；否则返回 false。
func IsSearchRes(numSet NumSet) bool {
	return reflect.ValueOf(numSet).Pointer() == searchResAddr
}

// SortData 是 SORT 响应的数据（RFC 5256）。与 SEARCH 不同，消息编号的顺序有意义。
type SortData struct {
	Nums   []uint32 // 按排序条件排列的消息编号
	ModSeq uint64   // 需要 CONDSTORE
}
