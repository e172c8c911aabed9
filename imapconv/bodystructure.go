package imapconv

import (
	"strings"

	"github.com/luhaoyun888/go-imapwire"
	"github.com/luhaoyun888/go-imapwire/imapwire"
)

// sectionIndex 在递归转换体结构时记录当前部分的节段编号。
//
// path 的最后一个元素是当前层级上最后访问的部分编号，进入 multipart 或 message/rfc822 时压入新层级。
type sectionIndex struct {
	path []int
}

func newSectionIndex() *sectionIndex {
	return &sectionIndex{path: []int{0}}
}

// next 移到当前层级的下一个部分并返回它的编号。
func (idx *sectionIndex) next() []int {
	idx.path[len(idx.path)-1]++
	return append([]int(nil), idx.path...)
}

// prefix 返回当前层级所属部分的编号，顶层为空。
func (idx *sectionIndex) prefix() []int {
	return append([]int(nil), idx.path[:len(idx.path)-1]...)
}

func (idx *sectionIndex) push() {
	idx.path = append(idx.path, 0)
}

func (idx *sectionIndex) pop() {
	idx.path = idx.path[:len(idx.path)-1]
}

// BodyStructure 转换 BODY 或 BODYSTRUCTURE 数据项中的 body。
//
// 每个部分的 Section 字段都会填上点分节段编号（RFC 3501 第 6.4.5 节）。
// 扩展数据是可选的尾部元素，服务器省略时对应字段保持为 nil。
func (c *Converter) BodyStructure(v imapwire.Value) (imap.BodyStructure, error) {
	return c.body(v, newSectionIndex(), true)
}

// body 转换一个 body。root 表示它是整封消息（或 message/rfc822 内嵌消息）的顶层。
func (c *Converter) body(v imapwire.Value, idx *sectionIndex, root bool) (imap.BodyStructure, error) {
	l, err := list(v, "body")
	if err != nil {
		return nil, err
	}
	if len(l) == 0 {
		return nil, imapwire.Malformedf(v, "body", "empty list")
	}
	if l[0].IsList() {
		return c.bodyTypeMpart(v, l, idx, root)
	}
	return c.bodyType1part(v, l, idx)
}

func (c *Converter) bodyTypeMpart(v imapwire.Value, l []imapwire.Value, idx *sectionIndex, root bool) (*imap.BodyStructureMultiPart, error) {
	var bs imap.BodyStructureMultiPart
	if root {
		bs.Section = idx.prefix()
	} else {
		bs.Section = idx.next()
		idx.push()
		defer idx.pop()
	}

	i := 0
	for ; i < len(l) && l[i].IsList(); i++ {
		child, err := c.body(l[i], idx, false)
		if err != nil {
			return nil, err
		}
		bs.Children = append(bs.Children, child)
	}
	if i >= len(l) {
		return nil, imapwire.Malformedf(v, "body-type-mpart", "missing media-subtype")
	}
	subtype, err := text(l[i], "media-subtype")
	if err != nil {
		return nil, err
	}
	bs.Subtype = subtype
	i++

	if i < len(l) {
		bs.Extended, err = c.bodyExtMpart(l[i:])
		if err != nil {
			return nil, err
		}
	}
	return &bs, nil
}

func (c *Converter) bodyType1part(v imapwire.Value, l []imapwire.Value, idx *sectionIndex) (imap.BodyStructure, error) {
	if err := minArity(v, l, 7, "body-type-1part"); err != nil {
		return nil, err
	}
	fields, err := c.bodyFields(l)
	if err != nil {
		return nil, err
	}
	section := idx.next()
	rest := l[7:]

	typ, subtype := strings.ToLower(fields.Type), strings.ToLower(fields.Subtype)
	if typ == "message" && (subtype == "rfc822" || subtype == "global") && len(rest) >= 3 && rest[0].IsList() {
		msg := imap.BodyStructureMessageRFC822{BodyFields: *fields, Section: section}
		if msg.Envelope, err = c.Envelope(rest[0]); err != nil {
			return nil, err
		}
		idx.push()
		msg.BodyStructure, err = c.body(rest[1], idx, true)
		idx.pop()
		if err != nil {
			return nil, err
		}
		if msg.NumLines, err = Number64(rest[2]); err != nil {
			return nil, err
		}
		if len(rest) > 3 {
			if msg.Extended, err = c.bodyExt1part(rest[3:]); err != nil {
				return nil, err
			}
		}
		return &msg, nil
	}

	bs := imap.BodyStructureSinglePart{BodyFields: *fields, Section: section}
	if typ == "text" {
		if len(rest) == 0 {
			return nil, imapwire.Malformedf(v, "body-type-text", "missing body-fld-lines")
		}
		lines, err := Number64(rest[0])
		if err != nil {
			return nil, err
		}
		bs.Text = &imap.BodyStructureText{NumLines: lines}
		rest = rest[1:]
	}
	if len(rest) > 0 {
		if bs.Extended, err = c.bodyExt1part(rest); err != nil {
			return nil, err
		}
	}
	return &bs, nil
}

// bodyFields 转换 media-type 和 body-fields：type subtype params id description encoding octets。
func (c *Converter) bodyFields(l []imapwire.Value) (*imap.BodyFields, error) {
	var (
		fields imap.BodyFields
		err    error
	)
	if fields.Type, err = text(l[0], "media-type"); err != nil {
		return nil, err
	}
	if fields.Subtype, err = text(l[1], "media-subtype"); err != nil {
		return nil, err
	}
	if fields.Params, err = c.bodyFldParam(l[2]); err != nil {
		return nil, err
	}
	if fields.ID, err = nstring(l[3], "body-fld-id"); err != nil {
		return nil, err
	}
	description, err := nstring(l[4], "body-fld-desc")
	if err != nil {
		return nil, err
	}
	fields.Description = c.decodeText(description)
	// 有些服务器对 body-fld-enc 返回 NIL
	if fields.Encoding, err = nstring(l[5], "body-fld-enc"); err != nil {
		return nil, err
	}
	if fields.Size, err = Number(l[6]); err != nil {
		return nil, err
	}
	return &fields, nil
}

// bodyExt1part 转换 body-ext-1part：md5 [dsp [lang [loc *extension]]]。
func (c *Converter) bodyExt1part(l []imapwire.Value) (*imap.BodyStructureSinglePartExt, error) {
	var (
		ext imap.BodyStructureSinglePartExt
		err error
	)
	if ext.MD5, err = nstringPtr(l[0], "body-fld-md5"); err != nil {
		return nil, err
	}
	ext.Disposition, ext.Language, ext.Location, ext.Extensions, err = c.bodyExtTail(l[1:])
	if err != nil {
		return nil, err
	}
	return &ext, nil
}

// bodyExtMpart 转换 body-ext-mpart：param [dsp [lang [loc *extension]]]。
func (c *Converter) bodyExtMpart(l []imapwire.Value) (*imap.BodyStructureMultiPartExt, error) {
	var (
		ext imap.BodyStructureMultiPartExt
		err error
	)
	if ext.Params, err = c.bodyFldParam(l[0]); err != nil {
		return nil, err
	}
	ext.Disposition, ext.Language, ext.Location, ext.Extensions, err = c.bodyExtTail(l[1:])
	if err != nil {
		return nil, err
	}
	return &ext, nil
}

// bodyExtTail 转换两种扩展共有的尾部：dsp、lang、loc 和未知的扩展数据，每一项都可以省略。
func (c *Converter) bodyExtTail(l []imapwire.Value) (dsp *imap.BodyStructureDisposition, lang []string, loc *string, extensions []imapwire.Value, err error) {
	if len(l) == 0 {
		return
	}
	if dsp, err = c.bodyFldDsp(l[0]); err != nil {
		return
	}
	if len(l) == 1 {
		return
	}
	if lang, err = bodyFldLang(l[1]); err != nil {
		return
	}
	if len(l) == 2 {
		return
	}
	if loc, err = nstringPtr(l[2], "body-fld-loc"); err != nil {
		return
	}
	if len(l) > 3 {
		extensions = l[3:]
	}
	return
}

// bodyFldParam 转换 body-fld-param：NIL 或 (键 值 ...)。键转换为小写，值按 RFC 2047 解码。
func (c *Converter) bodyFldParam(v imapwire.Value) (map[string]string, error) {
	l, err := nlist(v, "body-fld-param")
	if err != nil || l == nil {
		return nil, err
	}
	if len(l)%2 != 0 {
		return nil, imapwire.Malformedf(v, "body-fld-param", "key without value")
	}
	params := make(map[string]string, len(l)/2)
	for i := 0; i < len(l); i += 2 {
		k, err := text(l[i], "body-fld-param key")
		if err != nil {
			return nil, err
		}
		val, err := text(l[i+1], "body-fld-param value")
		if err != nil {
			return nil, err
		}
		params[strings.ToLower(k)] = c.decodeText(val)
	}
	return params, nil
}

// bodyFldDsp 转换 body-fld-dsp：NIL 或 (处置方式 body-fld-param)。
func (c *Converter) bodyFldDsp(v imapwire.Value) (*imap.BodyStructureDisposition, error) {
	l, err := nlist(v, "body-fld-dsp")
	if err != nil || l == nil {
		return nil, err
	}
	if err := arity(v, l, 2, "body-fld-dsp"); err != nil {
		return nil, err
	}
	var disp imap.BodyStructureDisposition
	if disp.Value, err = text(l[0], "body-fld-dsp"); err != nil {
		return nil, err
	}
	if disp.Params, err = c.bodyFldParam(l[1]); err != nil {
		return nil, err
	}
	return &disp, nil
}

// bodyFldLang 转换 body-fld-lang：nstring 或字符串列表。
func bodyFldLang(v imapwire.Value) ([]string, error) {
	if v.IsList() {
		l, _ := v.List()
		langs := make([]string, 0, len(l))
		for _, item := range l {
			s, err := text(item, "body-fld-lang")
			if err != nil {
				return nil, err
			}
			langs = append(langs, s)
		}
		return langs, nil
	}
	s, err := nstring(v, "body-fld-lang")
	if err != nil || s == "" {
		return nil, err
	}
	return []string{s}, nil
}
