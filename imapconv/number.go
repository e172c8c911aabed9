package imapconv

import (
	"math"
	"strings"

	"github.com/luhaoyun888/go-imapwire"
	"github.com/luhaoyun888/go-imapwire/imapwire"
	"github.com/luhaoyun888/go-imapwire/internal/imapnum"
)

// Number 转换 number（32 位无符号整数）。
func Number(v imapwire.Value) (uint32, error) {
	if !v.IsText() {
		return 0, imapwire.Malformed(v, "number")
	}
	return v.Number32()
}

// NZNumber 转换 nz-number：不能为 0 的 number。
func NZNumber(v imapwire.Value) (uint32, error) {
	n, err := Number(v)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, imapwire.Malformedf(v, "nz-number", "zero")
	}
	return n, nil
}

// Number64 转换 number64（RFC 9051）：0 到 2^63-1 之间的整数。
func Number64(v imapwire.Value) (int64, error) {
	n, err := number63(v, "number64")
	return int64(n), err
}

func number63(v imapwire.Value, expected string) (uint64, error) {
	if !v.IsText() {
		return 0, imapwire.Malformed(v, expected)
	}
	n, err := v.Number()
	if err != nil {
		return 0, err
	}
	if n > math.MaxInt64 {
		return 0, imapwire.Malformedf(v, expected, "%v overflows 63 bits", n)
	}
	return n, nil
}

// ModSeqValzer 转换 mod-sequence-valzer（RFC 7162），允许为 0。
//
// 0 出现在 SEARCH 和 STATUS 的 MODSEQ 中，表示邮箱不支持持久的修改序列。
func ModSeqValzer(v imapwire.Value) (uint64, error) {
	return number63(v, "mod-sequence-valzer")
}

// ModSeqValue 转换 mod-sequence-value（RFC 7162），不能为 0。
//
// 与 ModSeqValzer 的区别是有意保留的：两者在语法中属于不同的产生式。
func ModSeqValue(v imapwire.Value) (uint64, error) {
	n, err := number63(v, "mod-sequence-value")
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, imapwire.Malformedf(v, "mod-sequence-value", "zero")
	}
	return n, nil
}

// SeqSet 转换 sequence-set，例如 "1:3,5,7:*"。
//
// 单独的 "*"（以及 "*:*"）表示全部消息（1:*），"*:n" 等价于 "n:*"。
func SeqSet(v imapwire.Value) (imap.SeqSet, error) {
	set, err := numSet(v, "sequence-set")
	if err != nil {
		return nil, err
	}
	seqSet := make(imap.SeqSet, len(set))
	for i, r := range set {
		seqSet[i] = imap.SeqRange{Start: r.Start, Stop: r.Stop}
	}
	return seqSet, nil
}

// UIDSet 转换 UID 集合，语法与 SeqSet 相同。
func UIDSet(v imapwire.Value) (imap.UIDSet, error) {
	set, err := numSet(v, "uid-set")
	if err != nil {
		return nil, err
	}
	uidSet := make(imap.UIDSet, len(set))
	for i, r := range set {
		uidSet[i] = imap.UIDRange{Start: imap.UID(r.Start), Stop: imap.UID(r.Stop)}
	}
	return uidSet, nil
}

// numSet 按 ',' 拆分段，再按 ':' 拆分区间。所有区间收集完之后一次性排序合并，返回的集合已规范化。
func numSet(v imapwire.Value, expected string) (imapnum.Set, error) {
	s, err := atom(v, expected)
	if err != nil {
		return nil, err
	}
	if s == "" {
		return nil, imapwire.Malformedf(v, expected, "empty set")
	}

	segs := strings.Split(s, ",")
	ranges := make(imapnum.Set, 0, len(segs))
	for _, seg := range segs {
		r, err := imapnum.ParseRange(seg)
		if err != nil {
			return nil, imapwire.Malformedf(v, expected, "%v", err)
		}
		if r.Start == 0 && r.Stop == 0 {
			// "*" 和 "*:*"
			r.Start = 1
		}
		ranges = append(ranges, r)
	}

	var set imapnum.Set
	set.AddSet(ranges)
	return set, nil
}
