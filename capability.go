package imap

import (
	"sort"
	"strconv"
	"strings"
)

// Cap 是 CAPABILITY 或 ENABLED 响应中的一个能力名称。
type Cap string

// 会改变线路行为或响应形态的能力。其余能力仍然可以用 Cap("...") 查询。
//
// 参见：https://www.iana.org/assignments/imap-capabilities/
const (
	CapIMAP4rev1 Cap = "IMAP4rev1" // RFC 3501
	CapIMAP4rev2 Cap = "IMAP4rev2" // RFC 9051，隐含 imap4rev2Caps 中的扩展

	CapStartTLS      Cap = "STARTTLS"      // 可以用 imapconn.StartTLS 升级
	CapLoginDisabled Cap = "LOGINDISABLED" // 只能用 AUTHENTICATE
	CapSASLIR        Cap = "SASL-IR"       // AUTHENTICATE 可以附带初始响应，RFC 4959
	CapIdle          Cap = "IDLE"          // RFC 2177

	CapLiteralPlus  Cap = "LITERAL+" // 任意字面量都可以不等待继续请求，RFC 7888
	CapLiteralMinus Cap = "LITERAL-" // 不超过 4096 字节的字面量可以不等待，RFC 7888
	CapBinary       Cap = "BINARY"   // 允许 ~{N} 字面量和 BINARY[] 数据项，RFC 3516

	CapNamespace Cap = "NAMESPACE" // RFC 2342
	CapUnselect  Cap = "UNSELECT"  // RFC 3691
	CapUIDPlus   Cap = "UIDPLUS"   // APPENDUID 与 COPYUID 响应码，RFC 4315
	CapESearch   Cap = "ESEARCH"   // RFC 4731
	CapSearchRes Cap = "SEARCHRES" // RFC 5182
	CapEnable    Cap = "ENABLE"    // RFC 5161
	CapMove      Cap = "MOVE"      // RFC 6851

	CapListExtended Cap = "LIST-EXTENDED" // RFC 5258
	CapListStatus   Cap = "LIST-STATUS"   // LIST 响应之后附带 STATUS，RFC 5819
	CapStatusSize   Cap = "STATUS=SIZE"   // RFC 8438
	CapSpecialUse   Cap = "SPECIAL-USE"   // LIST 中的 \Sent 等属性，RFC 6154

	CapACL         Cap = "ACL"         // RFC 4314
	CapAppendLimit Cap = "APPENDLIMIT" // RFC 7889，也可能是 APPENDLIMIT=<n>
	CapCondStore   Cap = "CONDSTORE"   // MODSEQ 数据项，RFC 7162
	CapQResync     Cap = "QRESYNC"     // 隐含 CONDSTORE，RFC 7162
	CapID          Cap = "ID"          // RFC 2971
	CapMetadata    Cap = "METADATA"    // RFC 5464
	CapQuota       Cap = "QUOTA"       // RFC 9208
	CapSort        Cap = "SORT"        // RFC 5256
	CapObjectID    Cap = "OBJECTID"    // EMAILID 与 THREADID，RFC 8474
	CapUTF8Accept  Cap = "UTF8=ACCEPT" // 邮箱名不再使用修改版 UTF-7，RFC 6855
	CapUTF8Only    Cap = "UTF8=ONLY"   // 隐含 UTF8=ACCEPT，RFC 6855
)

// imap4rev2Caps 是 IMAP4rev2 并入基础协议的扩展。
var imap4rev2Caps = CapSet{
	CapNamespace:    {},
	CapUnselect:     {},
	CapUIDPlus:      {},
	CapESearch:      {},
	CapSearchRes:    {},
	CapEnable:       {},
	CapIdle:         {},
	CapSASLIR:       {},
	CapListExtended: {},
	CapListStatus:   {},
	CapMove:         {},
	CapLiteralMinus: {},
	CapStatusSize:   {},
}

// impliedBy 记录一个能力被哪个更强的能力隐含。
var impliedBy = map[Cap]Cap{
	CapLiteralMinus: CapLiteralPlus,
	CapCondStore:    CapQResync,
	CapUTF8Accept:   CapUTF8Only,
}

// CapSet 是服务器宣告或已启用的能力集合。
type CapSet map[Cap]struct{}

func (set CapSet) has(c Cap) bool {
	_, ok := set[c]
	return ok
}

// Has 判断集合是否支持 c，包括被其他能力隐含的情况。
func (set CapSet) Has(c Cap) bool {
	switch {
	case set.has(c):
		return true
	case set.has(CapIMAP4rev2) && imap4rev2Caps.has(c):
		return true
	case c == CapAppendLimit:
		_, ok := set.AppendLimit()
		return ok
	}
	if stronger, ok := impliedBy[c]; ok {
		return set.has(stronger)
	}
	return false
}

// LiteralExtensions 返回服务器支持的非同步字面量扩展（RFC 7888）。LITERAL+ 隐含 LITERAL-。
func (set CapSet) LiteralExtensions() (literalPlus, literalMinus bool) {
	literalPlus = set.has(CapLiteralPlus)
	return literalPlus, set.Has(CapLiteralMinus)
}

// MailboxUTF7 判断邮箱名是否仍按修改版 UTF-7 编码。set 应为 ENABLED 响应中的能力。
func (set CapSet) MailboxUTF7() bool {
	return !set.Has(CapUTF8Accept)
}

// params 返回形如 prefix+value 的能力中的 value 部分，按字典序排列。
func (set CapSet) params(prefix string) []string {
	var l []string
	for c := range set {
		if v, ok := strings.CutPrefix(string(c), prefix); ok && v != "" {
			l = append(l, v)
		}
	}
	sort.Strings(l)
	return l
}

// AuthMechanisms 返回 AUTH= 能力宣告的 SASL 机制，按字典序排列。
func (set CapSet) AuthMechanisms() []string {
	return set.params("AUTH=")
}

// ThreadAlgorithms 返回 THREAD= 能力宣告的线程算法。
func (set CapSet) ThreadAlgorithms() []ThreadAlgorithm {
	var l []ThreadAlgorithm
	for _, alg := range set.params("THREAD=") {
		l = append(l, ThreadAlgorithm(alg))
	}
	return l
}

// AppendLimit 返回 APPENDLIMIT 能力中的上传限制。
//
// 只有 "APPENDLIMIT" 而没有数值时，limit 为 nil，各邮箱的限制要通过 STATUS 查询。
// 服务器不支持时 ok 为 false。
func (set CapSet) AppendLimit() (limit *uint32, ok bool) {
	if set.has(CapAppendLimit) {
		return nil, true
	}
	for _, s := range set.params("APPENDLIMIT=") {
		if n, err := strconv.ParseUint(s, 10, 32); err == nil && n > 0 {
			n32 := uint32(n)
			return &n32, true
		}
	}
	return nil, false
}

// Sorted 返回按字典序排列的能力列表。
func (set CapSet) Sorted() []Cap {
	l := make([]Cap, 0, len(set))
	for c := range set {
		l = append(l, c)
	}
	sort.Slice(l, func(i, j int) bool { return l[i] < l[j] })
	return l
}

// MarshalYAML 把能力集合写为有序列表。
func (set CapSet) MarshalYAML() (interface{}, error) {
	return set.Sorted(), nil
}
