// Package imapnum 实现 SeqSet 和 UIDSet 共用的数字集合运算。
package imapnum

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// infinity 是 "*" 在区间运算中的取值，大于任何 uint32。
const infinity = uint64(1) << 32

// Range 表示一组连续的数字。
//
// 值 0 表示 "*"：Stop 为 0 时区间一直延伸到邮箱末尾。Start 和 Stop 都为 0 时表示单独的 "*"。
type Range struct {
	Start, Stop uint32
}

// isStar 判断区间是否为单独的 "*"。
func (r Range) isStar() bool {
	return r.Start == 0 && r.Stop == 0
}

// bounds 返回区间的闭区间表示，"*" 被映射为 infinity。
//
// "*:4" 与 "4:*" 等价（RFC 3501 第 9 节）。
func (r Range) bounds() (lo, hi uint64) {
	lo, hi = uint64(r.Start), uint64(r.Stop)
	if lo == 0 {
		lo = infinity
	}
	if hi == 0 {
		hi = infinity
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi
}

// Contains 判断非零数字 num 是否在区间内。单独的 "*" 不包含任何已知数字。
func (r Range) Contains(num uint32) bool {
	if num == 0 || r.isStar() {
		return false
	}
	lo, hi := r.bounds()
	n := uint64(num)
	return n >= lo && n <= hi
}

// String 返回区间的 IMAP 表示。
func (r Range) String() string {
	if r.Start == r.Stop {
		return formatNum(r.Start)
	}
	return formatNum(r.Start) + ":" + formatNum(r.Stop)
}

func formatNum(num uint32) string {
	if num == 0 {
		return "*"
	}
	return strconv.FormatUint(uint64(num), 10)
}

// Set 是一组数字，以有序、合并后的区间列表存储。
//
// 所有修改操作都会把集合规范化，因此以任意顺序合并相同的区间得到相同的结果。
type Set []Range

// String 返回集合的 IMAP 表示。
func (s Set) String() string {
	l := make([]string, len(s))
	for i, r := range s {
		l[i] = r.String()
	}
	return strings.Join(l, ",")
}

// Dynamic 在集合包含 "*" 或 "n:*" 区间时返回 true。
func (s Set) Dynamic() bool {
	for _, r := range s {
		if r.Start == 0 || r.Stop == 0 {
			return true
		}
	}
	return false
}

// Contains 判断非零数字 num 是否在集合内。
func (s Set) Contains(num uint32) bool {
	for _, r := range s {
		if r.Contains(num) {
			return true
		}
	}
	return false
}

// Nums 返回集合中所有数字。动态集合无法展开，此时 ok 为 false。
func (s Set) Nums() (nums []uint32, ok bool) {
	if s.Dynamic() {
		return nil, false
	}
	for _, r := range s {
		for n := r.Start; ; n++ {
			nums = append(nums, n)
			if n == r.Stop {
				break
			}
		}
	}
	return nums, true
}

// AddNum 插入数字。0 表示 "*"。
func (s *Set) AddNum(nums ...uint32) {
	if len(nums) == 0 {
		return
	}
	for _, n := range nums {
		*s = append(*s, Range{Start: n, Stop: n})
	}
	s.normalize()
}

// AddRange 插入区间 start:stop。任一端为 0 表示 "*"。
func (s *Set) AddRange(start, stop uint32) {
	*s = append(*s, Range{Start: start, Stop: stop})
	s.normalize()
}

// AddSet 把 other 的全部区间并入 s。
func (s *Set) AddSet(other Set) {
	if len(other) == 0 {
		return
	}
	*s = append(*s, other...)
	s.normalize()
}

// normalize 排序并合并重叠或相邻的区间。
func (s *Set) normalize() {
	type interval struct{ lo, hi uint64 }

	star := false
	l := make([]interval, 0, len(*s))
	for _, r := range *s {
		if r.isStar() {
			star = true
			continue
		}
		lo, hi := r.bounds()
		l = append(l, interval{lo, hi})
	}
	sort.Slice(l, func(i, j int) bool {
		return l[i].lo < l[j].lo
	})

	var merged []interval
	for _, iv := range l {
		if n := len(merged); n > 0 && iv.lo <= merged[n-1].hi+1 {
			if iv.hi > merged[n-1].hi {
				merged[n-1].hi = iv.hi
			}
			continue
		}
		merged = append(merged, iv)
	}

	out := make(Set, 0, len(merged)+1)
	for _, iv := range merged {
		if iv.lo == infinity {
			// "*:*" 就是单独的 "*"
			star = true
			continue
		}
		r := Range{Start: uint32(iv.lo)}
		if iv.hi != infinity {
			r.Stop = uint32(iv.hi)
		}
		out = append(out, r)
	}
	// 已有 "n:*" 区间时单独的 "*" 是多余的
	if star && (len(out) == 0 || out[len(out)-1].Stop != 0) {
		out = append(out, Range{})
	}
	*s = out
}

// ParseRange 解析单个区间，例如 "4"、"2:9" 或 "5:*"。
func ParseRange(s string) (Range, error) {
	var r Range
	start, stop, isRange := strings.Cut(s, ":")
	var err error
	if r.Start, err = parseNum(start); err != nil {
		return r, err
	}
	if !isRange {
		r.Stop = r.Start
		return r, nil
	}
	if r.Stop, err = parseNum(stop); err != nil {
		return r, err
	}
	return r, nil
}

func parseNum(s string) (uint32, error) {
	if s == "*" {
		return 0, nil
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("imapnum: invalid number %q: %w", s, err)
	} else if n == 0 {
		return 0, fmt.Errorf("imapnum: number must be non-zero")
	}
	return uint32(n), nil
}
