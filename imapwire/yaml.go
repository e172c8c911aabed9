package imapwire

import (
	"encoding/base64"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

var _ yaml.Marshaler = Value{}

// MarshalYAML 实现 yaml.Marshaler。
//
// NIL 写为 null，列表写为序列。原子写为普通标量，带引号的字符串写为双引号标量，字面量写为块标量。
// 不是合法 UTF-8 的文本写为 !!binary。
func (v Value) MarshalYAML() (interface{}, error) {
	return v.yamlNode()
}

func (v Value) yamlNode() (*yaml.Node, error) {
	switch v.kind {
	case KindNil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case KindList:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, child := range v.list {
			c, err := child.yamlNode()
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, c)
		}
		return n, nil
	}

	b, err := v.Bytes()
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(b) {
		return &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!binary",
			Value: base64.StdEncoding.EncodeToString(b),
		}, nil
	}

	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(b)}
	switch v.format {
	case FormatQuoted:
		n.Style = yaml.DoubleQuotedStyle
	case FormatLiteral, FormatLiteral8:
		n.Style = yaml.LiteralStyle
	}
	return n, nil
}
