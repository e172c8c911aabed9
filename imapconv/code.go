package imapconv

import (
	"strings"

	"github.com/luhaoyun888/go-imapwire"
	"github.com/luhaoyun888/go-imapwire/imapwire"
)

// CodeData 是响应代码携带的数据。只有与代码对应的字段会被填充。
type CodeData struct {
	Capabilities   imap.CapSet      // CAPABILITY
	PermanentFlags []imap.Flag      // PERMANENTFLAGS
	UIDNext        imap.UID         // UIDNEXT
	UIDValidity    uint32           // UIDVALIDITY
	Unseen         uint32           // UNSEEN
	HighestModSeq  uint64           // HIGHESTMODSEQ
	Append         *imap.AppendData // APPENDUID
	Copy           *imap.CopyData   // COPYUID
	Charsets       []string         // BADCHARSET
	Args           []imapwire.Value // 其他代码的参数，原样保留
}

// Code 转换 resp-text-code，即状态响应中方括号括起的部分，例如 "[UIDVALIDITY 3857529045]"。
//
// 代码名称转换为大写。不携带数据且没有参数的代码返回 nil 数据。
func Code(v imapwire.Value) (imap.ResponseCode, *CodeData, error) {
	s, err := atom(v, "resp-text-code")
	if err != nil {
		return "", nil, err
	}
	if len(s) < 3 || s[0] != '[' || s[len(s)-1] != ']' {
		return "", nil, imapwire.Malformed(v, "resp-text-code")
	}
	name, rest, hasArgs := strings.Cut(s[1:len(s)-1], " ")
	code := imap.ResponseCode(strings.ToUpper(name))
	if name == "" {
		return "", nil, imapwire.Malformed(v, "resp-text-code")
	}

	var args []imapwire.Value
	if hasArgs {
		if args, err = parseInner(v, rest, "resp-text-code"); err != nil {
			return "", nil, err
		}
	}

	data := &CodeData{}
	switch code {
	case imap.ResponseCodeCapability:
		data.Capabilities, err = Capability(args)
	case imap.ResponseCodePermanentFlags:
		if err = arity(v, args, 1, "PERMANENTFLAGS"); err == nil {
			data.PermanentFlags, err = PermanentFlags(args[0])
		}
	case imap.ResponseCodeUIDNext:
		if err = arity(v, args, 1, "UIDNEXT"); err == nil {
			var uid uint32
			uid, err = NZNumber(args[0])
			data.UIDNext = imap.UID(uid)
		}
	case imap.ResponseCodeUIDValidity:
		if err = arity(v, args, 1, "UIDVALIDITY"); err == nil {
			data.UIDValidity, err = NZNumber(args[0])
		}
	case imap.ResponseCodeUnseen:
		if err = arity(v, args, 1, "UNSEEN"); err == nil {
			data.Unseen, err = NZNumber(args[0])
		}
	case imap.ResponseCodeHighestModSeq:
		if err = arity(v, args, 1, "HIGHESTMODSEQ"); err == nil {
			data.HighestModSeq, err = ModSeqValue(args[0])
		}
	case imap.ResponseCodeAppendUID:
		data.Append, err = appendUID(v, args)
	case imap.ResponseCodeCopyUID:
		data.Copy, err = copyUID(v, args)
	case imap.ResponseCodeBadCharset:
		if len(args) > 0 {
			data.Charsets, err = charsetList(v, args)
		}
	default:
		if len(args) == 0 {
			return code, nil, nil
		}
		data.Args = args
	}
	if err != nil {
		return "", nil, err
	}
	return code, data, nil
}

// appendUID 转换 resp-code-apnd：uidvalidity SP uid。
func appendUID(v imapwire.Value, args []imapwire.Value) (*imap.AppendData, error) {
	if err := arity(v, args, 2, "resp-code-apnd"); err != nil {
		return nil, err
	}
	var (
		data imap.AppendData
		err  error
	)
	if data.UIDValidity, err = NZNumber(args[0]); err != nil {
		return nil, err
	}
	uid, err := NZNumber(args[1])
	if err != nil {
		return nil, err
	}
	data.UID = imap.UID(uid)
	return &data, nil
}

// copyUID 转换 resp-code-copy：uidvalidity SP 源 UID 集合 SP 目标 UID 集合。
func copyUID(v imapwire.Value, args []imapwire.Value) (*imap.CopyData, error) {
	if err := arity(v, args, 3, "resp-code-copy"); err != nil {
		return nil, err
	}
	var (
		data imap.CopyData
		err  error
	)
	if data.UIDValidity, err = NZNumber(args[0]); err != nil {
		return nil, err
	}
	if data.SourceUIDs, err = UIDSet(args[1]); err != nil {
		return nil, err
	}
	if data.DestUIDs, err = UIDSet(args[2]); err != nil {
		return nil, err
	}
	return &data, nil
}

func charsetList(v imapwire.Value, args []imapwire.Value) ([]string, error) {
	if err := arity(v, args, 1, "BADCHARSET"); err != nil {
		return nil, err
	}
	l, err := list(args[0], "BADCHARSET")
	if err != nil {
		return nil, err
	}
	charsets := make([]string, 0, len(l))
	for _, item := range l {
		s, err := text(item, "charset")
		if err != nil {
			return nil, err
		}
		charsets = append(charsets, s)
	}
	return charsets, nil
}

// StatusResult 是转换后的状态响应：resp-cond-state、resp-cond-auth 或 resp-cond-bye。
type StatusResult struct {
	imap.StatusResponse
	CodeData *CodeData // 响应代码携带的数据，可能为 nil
}

// Err 在状态为 NO 或 BAD 时返回 *imap.Error，否则返回 nil。
func (res *StatusResult) Err() error {
	switch res.Type {
	case imap.StatusResponseTypeNo, imap.StatusResponseTypeBad:
		err := imap.Error(res.StatusResponse)
		return &err
	default:
		return nil
	}
}

// StatusResponse 转换状态响应，values 从状态（OK、NO、BAD、PREAUTH 或 BYE）开始：
//
//	OK [UIDNEXT 4392] Predicted next UID
func StatusResponse(values []imapwire.Value) (*StatusResult, error) {
	v := imapwire.NewList(values...)
	if err := minArity(v, values, 1, "resp-cond-state"); err != nil {
		return nil, err
	}
	typ, err := atom(values[0], "resp-cond-state")
	if err != nil {
		return nil, err
	}
	var res StatusResult
	res.Type = imap.StatusResponseType(strings.ToUpper(typ))
	switch res.Type {
	case imap.StatusResponseTypeOK, imap.StatusResponseTypeNo, imap.StatusResponseTypeBad,
		imap.StatusResponseTypePreAuth, imap.StatusResponseTypeBye:
	default:
		return nil, imapwire.Malformed(values[0], "resp-cond-state")
	}

	rest := values[1:]
	if len(rest) > 0 && isCode(rest[0]) {
		if res.Code, res.CodeData, err = Code(rest[0]); err != nil {
			return nil, err
		}
		rest = rest[1:]
	}
	switch len(rest) {
	case 0:
	case 1:
		if res.Text, err = text(rest[0], "resp-text"); err != nil {
			return nil, err
		}
	default:
		return nil, imapwire.Malformedf(v, "resp-text", "unexpected trailing values")
	}
	return &res, nil
}

func isCode(v imapwire.Value) bool {
	if !v.IsText() || v.Format() != imapwire.FormatAtom {
		return false
	}
	b, err := v.Bytes()
	return err == nil && len(b) > 0 && b[0] == '['
}
