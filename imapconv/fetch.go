package imapconv

import (
	"strconv"
	"strings"

	"github.com/luhaoyun888/go-imapwire"
	"github.com/luhaoyun888/go-imapwire/imapwire"
	"github.com/luhaoyun888/go-imapwire/internal"
)

// innerParser 用于重新解析方括号中的内容，例如节段说明中的头字段列表和响应代码的参数。
var innerParser = imapwire.NewParser(nil)

// parseInner 把一段不含换行的文本解析为值序列。
func parseInner(v imapwire.Value, s, expected string) ([]imapwire.Value, error) {
	values, err := innerParser.ParseBytes([]byte(s + "\r\n"))
	if err != nil {
		return nil, imapwire.Malformedf(v, expected, "%v", err)
	}
	return values, nil
}

// MessageAttributes 转换 FETCH 响应中的 msg-att 列表，例如：
//
//	(FLAGS (\Seen) UID 17 BODY[HEADER]<0> {42})
//
// permitted 传给 FetchFlags，用于过滤服务器返回的非法系统标志。
// RFC822、RFC822.HEADER 和 RFC822.TEXT 被归入 BodySection，分别对应 BODY[]、BODY[HEADER] 和 BODY[TEXT]。
// 无法识别的数据项按大写名称原样保存在 Unknown 中。
//
// 返回的数据与 v 共用字面量流，使用完毕后调用其中之一的 Close 即可。
func (c *Converter) MessageAttributes(seqNum uint32, v imapwire.Value, permitted []imap.Flag) (*imap.FetchMessageData, error) {
	l, err := list(v, "msg-att")
	if err != nil {
		return nil, err
	}
	if len(l)%2 != 0 {
		return nil, imapwire.Malformedf(v, "msg-att", "attribute without value")
	}

	data := &imap.FetchMessageData{SeqNum: seqNum}
	for i := 0; i < len(l); i += 2 {
		if err := c.messageAttribute(data, l[i], l[i+1], permitted); err != nil {
			return nil, err
		}
	}
	return data, nil
}

func (c *Converter) messageAttribute(data *imap.FetchMessageData, nameValue, v imapwire.Value, permitted []imap.Flag) error {
	name, err := atom(nameValue, "msg-att name")
	if err != nil {
		return err
	}
	base, section, hasSection := strings.Cut(name, "[")
	base = strings.ToUpper(base)

	if hasSection {
		return c.sectionAttribute(data, nameValue, base, "["+section, v)
	}

	switch base {
	case "FLAGS":
		data.Flags, err = FetchFlags(v, permitted)
	case "ENVELOPE":
		data.Envelope, err = c.Envelope(v)
	case "INTERNALDATE":
		var s string
		if s, err = text(v, "date-time"); err == nil {
			data.InternalDate, err = internal.ParseDateTime(s)
			if err != nil {
				err = imapwire.Malformedf(v, "date-time", "%v", err)
			}
		}
	case "RFC822.SIZE":
		data.RFC822Size, err = Number64(v)
	case "UID":
		var uid uint32
		uid, err = NZNumber(v)
		data.UID = imap.UID(uid)
	case "BODY", "BODYSTRUCTURE":
		data.BodyStructure, err = c.BodyStructure(v)
	case "MODSEQ":
		data.ModSeq, err = modSeqAttribute(v)
	case "RFC822", "RFC822.HEADER", "RFC822.TEXT":
		var literal imapwire.Value
		if literal, err = nstringValue(v); err == nil {
			data.BodySection = append(data.BodySection, imap.FetchBodySectionData{
				Section: &imap.FetchItemBodySection{Specifier: rfc822Specifiers[base]},
				Literal: literal,
			})
		}
	default:
		if data.Unknown == nil {
			data.Unknown = make(map[string]imapwire.Value)
		}
		data.Unknown[base] = v
	}
	return err
}

var rfc822Specifiers = map[string]imap.PartSpecifier{
	"RFC822":        imap.PartSpecifierNone,
	"RFC822.HEADER": imap.PartSpecifierHeader,
	"RFC822.TEXT":   imap.PartSpecifierText,
}

// sectionAttribute 转换带节段的数据项：BODY[...]<origin>、BINARY[...]<origin> 和 BINARY.SIZE[...]。
func (c *Converter) sectionAttribute(data *imap.FetchMessageData, nameValue imapwire.Value, base, spec string, v imapwire.Value) error {
	end := strings.LastIndexByte(spec, ']')
	if end < 0 {
		return imapwire.Malformedf(nameValue, "section", "missing ']'")
	}
	inner, tail := spec[1:end], spec[end+1:]

	var partial *imap.SectionPartial
	if tail != "" {
		if len(tail) < 3 || tail[0] != '<' || tail[len(tail)-1] != '>' {
			return imapwire.Malformedf(nameValue, "partial origin", "unexpected %q", tail)
		}
		offset, err := strconv.ParseUint(tail[1:len(tail)-1], 10, 32)
		if err != nil {
			return imapwire.Malformedf(nameValue, "partial origin", "%v", err)
		}
		partial = &imap.SectionPartial{Offset: int64(offset)}
	}

	switch base {
	case "BODY":
		section, err := sectionSpec(nameValue, inner)
		if err != nil {
			return err
		}
		section.Partial = partial
		literal, err := nstringValue(v)
		if err != nil {
			return err
		}
		data.BodySection = append(data.BodySection, imap.FetchBodySectionData{Section: section, Literal: literal})
	case "BINARY":
		part, err := sectionPart(nameValue, inner)
		if err != nil {
			return err
		}
		literal, err := nstringValue(v)
		if err != nil {
			return err
		}
		data.BinarySection = append(data.BinarySection, imap.FetchBinarySectionData{
			Section: &imap.FetchItemBinarySection{Part: part, Partial: partial},
			Literal: literal,
		})
	case "BINARY.SIZE":
		if partial != nil {
			return imapwire.Malformedf(nameValue, "BINARY.SIZE", "unexpected partial origin")
		}
		part, err := sectionPart(nameValue, inner)
		if err != nil {
			return err
		}
		size, err := Number(v)
		if err != nil {
			return err
		}
		data.BinarySectionSize = append(data.BinarySectionSize, imap.FetchBinarySectionSizeData{Part: part, Size: size})
	default:
		if data.Unknown == nil {
			data.Unknown = make(map[string]imapwire.Value)
		}
		data.Unknown[strings.ToUpper(nameValue.String())] = v
	}
	return nil
}

// nstringValue 要求 v 是文本或 NIL，并原样返回，以便保留字面量流。
func nstringValue(v imapwire.Value) (imapwire.Value, error) {
	if !v.IsNil() && !v.IsText() {
		return imapwire.Nil(), imapwire.Malformed(v, "nstring")
	}
	return v, nil
}

// modSeqAttribute 转换 FETCH 的 MODSEQ 数据项：(mod-sequence-value)。
func modSeqAttribute(v imapwire.Value) (uint64, error) {
	l, err := list(v, "fetch-mod-resp")
	if err != nil {
		return 0, err
	}
	if err := arity(v, l, 1, "fetch-mod-resp"); err != nil {
		return 0, err
	}
	return ModSeqValue(l[0])
}

// sectionSpec 转换方括号中的 section-spec，例如 "1.2.HEADER.FIELDS (FROM TO)"。
func sectionSpec(v imapwire.Value, s string) (*imap.FetchItemBodySection, error) {
	var section imap.FetchItemBodySection

	spec, fieldList, hasFields := strings.Cut(s, " ")
	partStr, specifier := splitSectionPart(spec)
	part, err := sectionPart(v, partStr)
	if err != nil {
		return nil, err
	}
	section.Part = part

	specifier = strings.ToUpper(specifier)
	switch specifier {
	case "":
		if hasFields {
			return nil, imapwire.Malformedf(v, "section-spec", "unexpected header list")
		}
	case "HEADER", "TEXT":
		section.Specifier = imap.PartSpecifier(specifier)
	case "MIME":
		if len(part) == 0 {
			return nil, imapwire.Malformedf(v, "section-spec", "MIME requires a part number")
		}
		section.Specifier = imap.PartSpecifierMIME
	case "HEADER.FIELDS", "HEADER.FIELDS.NOT":
		if !hasFields {
			return nil, imapwire.Malformedf(v, "section-spec", "missing header list")
		}
		headers, err := headerList(v, fieldList)
		if err != nil {
			return nil, err
		}
		section.Specifier = imap.PartSpecifierHeader
		if specifier == "HEADER.FIELDS" {
			section.HeaderFields = headers
		} else {
			section.HeaderFieldsNot = headers
		}
	default:
		return nil, imapwire.Malformedf(v, "section-msgtext", "unknown specifier %q", specifier)
	}
	if hasFields && section.HeaderFields == nil && section.HeaderFieldsNot == nil {
		return nil, imapwire.Malformedf(v, "section-spec", "unexpected header list")
	}
	return &section, nil
}

// splitSectionPart 把 "1.2.HEADER" 拆分为 "1.2" 和 "HEADER"。
func splitSectionPart(s string) (part, specifier string) {
	i := 0
	for i < len(s) {
		j := i
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		if j == i || (j < len(s) && s[j] != '.') {
			break
		}
		if j == len(s) {
			return s, ""
		}
		i = j + 1
	}
	if i == 0 {
		return "", s
	}
	return s[:i-1], s[i:]
}

// sectionPart 转换点分部分编号，例如 "4.1"。空字符串表示整封消息。
func sectionPart(v imapwire.Value, s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	var part []int
	for _, num := range strings.Split(s, ".") {
		n, err := strconv.ParseUint(num, 10, 31)
		if err != nil || n == 0 {
			return nil, imapwire.Malformedf(v, "section-part", "invalid part number %q", num)
		}
		part = append(part, int(n))
	}
	return part, nil
}

// headerList 转换 header-list，例如 "(FROM TO)"。
func headerList(v imapwire.Value, s string) ([]string, error) {
	values, err := parseInner(v, s, "header-list")
	if err != nil {
		return nil, err
	}
	if len(values) != 1 {
		return nil, imapwire.Malformedf(v, "header-list", "expected a single list")
	}
	l, err := list(values[0], "header-list")
	if err != nil {
		return nil, err
	}
	if len(l) == 0 {
		return nil, imapwire.Malformedf(v, "header-list", "empty list")
	}
	headers := make([]string, 0, len(l))
	for _, item := range l {
		h, err := text(item, "header-fld-name")
		if err != nil {
			return nil, err
		}
		headers = append(headers, h)
	}
	return headers, nil
}
