package imap

import (
	"strings"

	"github.com/luhaoyun888/go-imapwire/imapwire"
)

// BodyStructure 描述消息的体结构。
//
// BodyStructure 值是 *BodyStructureSinglePart、*BodyStructureMultiPart 或 *BodyStructureMessageRFC822。
// BODYSTRUCTURE 响应中的扩展数据保存在各变体的 Extended 字段中，BODY 响应中该字段为 nil。
type BodyStructure interface {
	// MediaType 返回该体结构的 MIME 类型，例如 "text/plain"。
	MediaType() string
	// SectionString 返回该部分的点分节段编号（RFC 3501 第 6.4.5 节），顶层 multipart 为空字符串。
	SectionString() string
	// Walk 遍历体结构树，对每个部分调用 f，包括 bs 本身。部分按 DFS 前序访问。
	Walk(f BodyStructureWalkFunc)
	// Disposition 返回体结构的处置方式（如果可用）。
	Disposition() *BodyStructureDisposition

	bodyStructure()
}

// BodyStructureWalkFunc 是一个函数，用于访问 BodyStructure.Walk 遍历的每个体结构。
//
// path 参数包含 IMAP 部分路径。
//
// 函数应返回 true 以访问所有部分的子项，或 false 以跳过它们。
type BodyStructureWalkFunc func(path []int, part BodyStructure) (walkChildren bool)

// BodyFields 是非 multipart 部分共有的 body-fields。
type BodyFields struct {
	Type, Subtype string            // MIME 类型和子类型
	Params        map[string]string // 参数，键为小写
	ID            string            // Content-ID
	Description   string            // Content-Description
	Encoding      string            // Content-Transfer-Encoding
	Size          uint32            // 大小（字节）
}

// BodyStructureSinglePart 是具有单个部分的体结构。
type BodyStructureSinglePart struct {
	BodyFields

	Text     *BodyStructureText          // 仅适用于 "text/*"
	Extended *BodyStructureSinglePartExt // 扩展数据
	Section  []int                       // 节段编号
}

func (bs *BodyStructureSinglePart) MediaType() string {
	return strings.ToLower(bs.Type) + "/" + strings.ToLower(bs.Subtype)
}

func (bs *BodyStructureSinglePart) SectionString() string {
	return FormatSectionPart(bs.Section)
}

func (bs *BodyStructureSinglePart) Walk(f BodyStructureWalkFunc) {
	f(bs.Section, bs)
}

func (bs *BodyStructureSinglePart) Disposition() *BodyStructureDisposition {
	if bs.Extended == nil {
		return nil
	}
	return bs.Extended.Disposition
}

// Filename 解码体结构的文件名（如果有的话）。
func (bs *BodyStructureSinglePart) Filename() string {
	var filename string
	if bs.Extended != nil && bs.Extended.Disposition != nil {
		filename = bs.Extended.Disposition.Params["filename"]
	}
	if filename == "" {
		// 注意：在 Content-Type 中使用 "name" 是不建议的
		filename = bs.Params["name"]
	}
	return filename
}

func (*BodyStructureSinglePart) bodyStructure() {}

// BodyStructureText 包含文本部分的元数据。
type BodyStructureText struct {
	NumLines int64 // 行数
}

// BodyStructureMessageRFC822 是 message/rfc822（或 message/global）部分，内嵌另一封消息。
type BodyStructureMessageRFC822 struct {
	BodyFields

	Envelope      *Envelope     // 内嵌消息的信封
	BodyStructure BodyStructure // 内嵌消息的体结构
	NumLines      int64         // 行数

	Extended *BodyStructureSinglePartExt // 扩展数据
	Section  []int                       // 节段编号
}

func (bs *BodyStructureMessageRFC822) MediaType() string {
	return strings.ToLower(bs.Type) + "/" + strings.ToLower(bs.Subtype)
}

func (bs *BodyStructureMessageRFC822) SectionString() string {
	return FormatSectionPart(bs.Section)
}

func (bs *BodyStructureMessageRFC822) Walk(f BodyStructureWalkFunc) {
	if !f(bs.Section, bs) || bs.BodyStructure == nil {
		return
	}
	bs.BodyStructure.Walk(f)
}

func (bs *BodyStructureMessageRFC822) Disposition() *BodyStructureDisposition {
	if bs.Extended == nil {
		return nil
	}
	return bs.Extended.Disposition
}

func (*BodyStructureMessageRFC822) bodyStructure() {}

// BodyStructureSinglePartExt 包含非 multipart 部分的扩展数据（body-ext-1part）。
//
// 服务器省略的字段保持为 nil，而不是空值。
type BodyStructureSinglePartExt struct {
	MD5         *string                   // Content-MD5
	Disposition *BodyStructureDisposition // 处置方式
	Language    []string                  // 语言
	Location    *string                   // Content-Location
	Extensions  []imapwire.Value          // 未来扩展的数据，原样保留
}

// BodyStructureMultiPart 是具有多个部分的体结构。
type BodyStructureMultiPart struct {
	Children []BodyStructure // 子部分
	Subtype  string          // 子类型

	Extended *BodyStructureMultiPartExt // 扩展数据
	Section  []int                      // 节段编号，顶层为空
}

func (bs *BodyStructureMultiPart) MediaType() string {
	return "multipart/" + strings.ToLower(bs.Subtype)
}

func (bs *BodyStructureMultiPart) SectionString() string {
	return FormatSectionPart(bs.Section)
}

func (bs *BodyStructureMultiPart) Walk(f BodyStructureWalkFunc) {
	if !f(bs.Section, bs) {
		return
	}
	for _, part := range bs.Children {
		part.Walk(f)
	}
}

func (bs *BodyStructureMultiPart) Disposition() *BodyStructureDisposition {
	if bs.Extended == nil {
		return nil
	}
	return bs.Extended.Disposition
}

func (*BodyStructureMultiPart) bodyStructure() {}

// BodyStructureMultiPartExt 包含 multipart 部分的扩展数据（body-ext-mpart）。
type BodyStructureMultiPartExt struct {
	Params      map[string]string         // 参数
	Disposition *BodyStructureDisposition // 处置方式
	Language    []string                  // 语言
	Location    *string                   // Content-Location
	Extensions  []imapwire.Value          // 未来扩展的数据，原样保留
}

// BodyStructureDisposition 描述部分的内容处置（在 Content-Disposition 头字段中指定）。
type BodyStructureDisposition struct {
	Value  string            // 处置方式
	Params map[string]string // 参数
}
