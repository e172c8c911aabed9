package imap

import (
	"strconv"
	"strings"
	"time"

	"github.com/luhaoyun888/go-imapwire/imapwire"
)

// PartSpecifier 描述要获取的部分的头、体或两者。
type PartSpecifier string

const (
	PartSpecifierNone   PartSpecifier = ""       // 不获取任何部分
	PartSpecifierHeader PartSpecifier = "HEADER" // 获取头部
	PartSpecifierMIME   PartSpecifier = "MIME"   // 获取 MIME 部分
	PartSpecifierText   PartSpecifier = "TEXT"   // 获取文本部分
)

// SectionPartial 描述获取消息有效载荷时的字节范围。
//
// 在响应中服务器只返回起始偏移量（"<origin>"），此时 Size 为 0。
type SectionPartial struct {
	Offset, Size int64 // 偏移量和大小
}

// FetchItemBodySection 是一个 BODY[] 数据项的节段说明。
//
// 消息的完整体对应零值：
// imap.FetchItemBodySection{}
//
// 特定部分使用 Part 字段：
// imap.FetchItemBodySection{Part: []int{1, 2, 3}}
//
// 消息的头部使用 Specifier 字段：
// imap.FetchItemBodySection{Specifier: imap.PartSpecifierHeader}
type FetchItemBodySection struct {
	Specifier       PartSpecifier   // 部分类型
	Part            []int           // 部分的索引
	HeaderFields    []string        // HEADER.FIELDS 的字段列表
	HeaderFieldsNot []string        // HEADER.FIELDS.NOT 的字段列表
	Partial         *SectionPartial // 部分内容的偏移和大小
	Peek            bool            // 是否使用 BODY.PEEK
}

// String 返回数据项的线路形式，例如 "BODY[1.2.HEADER.FIELDS (FROM TO)]<0>"。
func (section *FetchItemBodySection) String() string {
	var sb strings.Builder
	sb.WriteString("BODY")
	if section.Peek {
		sb.WriteString(".PEEK")
	}
	sb.WriteByte('[')
	sb.WriteString(FormatSectionPart(section.Part))
	if len(section.Part) > 0 && section.Specifier != PartSpecifierNone {
		sb.WriteByte('.')
	}
	if section.Specifier != PartSpecifierNone {
		sb.WriteString(string(section.Specifier))

		var headerList []string
		if len(section.HeaderFields) > 0 {
			headerList = section.HeaderFields
			sb.WriteString(".FIELDS")
		} else if len(section.HeaderFieldsNot) > 0 {
			headerList = section.HeaderFieldsNot
			sb.WriteString(".FIELDS.NOT")
		}

		if len(headerList) > 0 {
			sb.WriteString(" (")
			sb.WriteString(strings.Join(headerList, " "))
			sb.WriteByte(')')
		}
	}
	sb.WriteByte(']')
	writeSectionPartial(&sb, section.Partial)
	return sb.String()
}

// FetchItemBinarySection 是一个 BINARY[] 数据项的节段说明。
type FetchItemBinarySection struct {
	Part    []int           // 部分的索引
	Partial *SectionPartial // 部分内容的偏移和大小
	Peek    bool            // 是否使用 BINARY.PEEK
}

// String 返回数据项的线路形式，例如 "BINARY[1.2]"。
func (section *FetchItemBinarySection) String() string {
	var sb strings.Builder
	sb.WriteString("BINARY")
	if section.Peek {
		sb.WriteString(".PEEK")
	}
	sb.WriteByte('[')
	sb.WriteString(FormatSectionPart(section.Part))
	sb.WriteByte(']')
	writeSectionPartial(&sb, section.Partial)
	return sb.String()
}

func writeSectionPartial(sb *strings.Builder, partial *SectionPartial) {
	if partial == nil {
		return
	}
	sb.WriteByte('<')
	sb.WriteString(strconv.FormatInt(partial.Offset, 10))
	if partial.Size > 0 {
		sb.WriteByte('.')
		sb.WriteString(strconv.FormatInt(partial.Size, 10))
	}
	sb.WriteByte('>')
}

// FormatSectionPart 把部分路径格式化为点分形式，例如 []int{4, 1} 为 "4.1"。
func FormatSectionPart(part []int) string {
	l := make([]string, len(part))
	for i, num := range part {
		l[i] = strconv.Itoa(num)
	}
	return strings.Join(l, ".")
}

// FetchMessageData 是一个 FETCH 响应中消息的全部数据项。
//
// 字面量数据可能由临时文件支持，使用完毕后应调用 Close。
type FetchMessageData struct {
	SeqNum            uint32                       // 序列号
	Flags             []Flag                       // 标志，nil 表示响应中没有 FLAGS
	Envelope          *Envelope                    // 邮件信封
	InternalDate      time.Time                    // 内部日期
	RFC822Size        int64                        // 邮件大小
	UID               UID                          // 邮件唯一标识
	BodyStructure     BodyStructure                // 邮件正文结构（BODY 或 BODYSTRUCTURE）
	BodySection       []FetchBodySectionData       // 正文部分
	BinarySection     []FetchBinarySectionData     // 二进制部分
	BinarySectionSize []FetchBinarySectionSizeData // 二进制部分大小
	ModSeq            uint64                       // 修改序列号（需要 CONDSTORE）

	// 无法识别的数据项，按大写名称索引，值保持原样
	Unknown map[string]imapwire.Value
}

// FindBodySection 返回与 section 匹配的正文部分数据。
func (data *FetchMessageData) FindBodySection(section *FetchItemBodySection) (imapwire.Value, bool) {
	key := section.String()
	for _, item := range data.BodySection {
		if item.Section.String() == key {
			return item.Literal, true
		}
	}
	return imapwire.Nil(), false
}

// Close 释放数据项持有的字面量流。
func (data *FetchMessageData) Close() error {
	var firstErr error
	closeValue := func(v imapwire.Value) {
		if err := v.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, item := range data.BodySection {
		closeValue(item.Literal)
	}
	for _, item := range data.BinarySection {
		closeValue(item.Literal)
	}
	for _, v := range data.Unknown {
		closeValue(v)
	}
	return firstErr
}

// FetchBodySectionData 是 BODY[] 数据项。服务器返回 NIL 时 Literal 为 NIL 值。
type FetchBodySectionData struct {
	Section *FetchItemBodySection // 节段说明，Peek 总是为 false
	Literal imapwire.Value        // 节段数据
}

// FetchBinarySectionData 是 BINARY[] 数据项。
type FetchBinarySectionData struct {
	Section *FetchItemBinarySection // 节段说明
	Literal imapwire.Value          // 解码后的节段数据
}

// FetchBinarySectionSizeData 是 BINARY.SIZE[] 数据项。
type FetchBinarySectionSizeData struct {
	Part []int  // 部分索引
	Size uint32 // 解码后的大小
}

// Envelope 是消息的信封结构。
//
// 主题和地址采用 UTF-8 格式（即非编码形式）。In-Reply-To 和 Message-ID 的值包含没有尖括号的消息标识符。
type Envelope struct {
	Date      time.Time // 消息日期
	Subject   string    // 主题
	From      []Address // 发件人地址
	Sender    []Address // 发送者地址
	ReplyTo   []Address // 回复地址
	To        []Address // 收件人地址
	Cc        []Address // 抄送地址
	Bcc       []Address // 密送地址
	InReplyTo []string  // 引用的消息 ID
	MessageID string    // 消息 ID
}

// Address 表示消息的发送者或接收者。
type Address struct {
	Name    string // 名称
	Mailbox string // 邮箱名
	Host    string // 主机
}

// Addr 返回邮件地址，格式为 "foo@example.org"。
//
// 如果地址是组的开始或结束，则返回空字符串。
func (addr *Address) Addr() string {
	if addr.Mailbox == "" || addr.Host == "" {
		return ""
	}
	return addr.Mailbox + "@" + addr.Host
}

// IsGroupStart 返回如果该地址是组的开始标记则为真。
//
// 在这种情况下，Mailbox 包含组名短语。
func (addr *Address) IsGroupStart() bool {
	return addr.Host == "" && addr.Mailbox != ""
}

// IsGroupEnd 返回如果该地址是组的结束标记则为真。
func (addr *Address) IsGroupEnd() bool {
	return addr.Host == "" && addr.Mailbox == ""
}
