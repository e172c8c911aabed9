package imapconv

import (
	"strings"

	"github.com/luhaoyun888/go-imapwire"
	"github.com/luhaoyun888/go-imapwire/imapwire"
)

// Response 是一个完整响应转换后的结果。
//
// Response 值是 *ContinuationRequest、*TaggedStatus、*UntaggedStatus、*NumberedData 或 *NamedData。
type Response interface {
	response()
}

// ContinuationRequest 是继续请求："+" 之后的文本（AUTHENTICATE 时为 base64 质询）。
type ContinuationRequest struct {
	Text string // "+" 之后的文本，SASL 交换时是 base64 质询
}

// TaggedStatus 是带标签的状态响应，表示命令完成。
type TaggedStatus struct {
	Tag    string        // 命令的标签
	Status *StatusResult // 完成状态及响应码
}

// UntaggedStatus 是不带标签的状态响应（OK、NO、BAD、PREAUTH 或 BYE）。
type UntaggedStatus struct {
	Status *StatusResult // 状态及响应码
}

// NumberedData 是以数字开头的不带标签数据：EXISTS、RECENT、EXPUNGE 和 FETCH。
type NumberedData struct {
	Num   uint32                 // 消息数量或序列号
	Name  string                 // 大写的数据名称
	Fetch *imap.FetchMessageData // 仅 FETCH
	Args  []imapwire.Value       // 名称之后的原始参数
}

// NamedData 是以名称开头的不带标签数据。
//
// Data 的具体类型取决于 Name：
//
//	CAPABILITY, ENABLED  imap.CapSet
//	FLAGS                []imap.Flag
//	LIST, LSUB           *imap.ListData
//	STATUS               *imap.StatusData
//	SEARCH, ESEARCH      *imap.SearchData
//	SORT                 *imap.SortData
//	THREAD               []imap.ThreadData
//	NAMESPACE            *imap.NamespaceData
//	QUOTA                *imap.QuotaData
//	QUOTAROOT            *imap.QuotaRootData
//	ID                   *imap.IDData
//	ACL                  *imap.ACLData
//	MYRIGHTS             *imap.MyRightsData
//	LISTRIGHTS           *imap.ListRightsData
//	METADATA             *imap.MetadataData
//
// 无法识别的名称 Data 为 nil，参数原样保留在 Args 中。
// SEARCH 响应本身不区分序列号和 UID：Data.All 总是 imap.SeqSet，UID SEARCH 的结果应使用 Search(Args, true) 重新转换。
type NamedData struct {
	Name string           // 数据名称，例如 LIST 或 CAPABILITY
	Data interface{}      // 转换结果，无法识别的名称为 nil
	Args []imapwire.Value // 名称之后的原始参数
}

func (*ContinuationRequest) response() {}
func (*TaggedStatus) response()        {}
func (*UntaggedStatus) response()      {}
func (*NumberedData) response()        {}
func (*NamedData) response()           {}

// Response 转换 imapwire.Receiver 读取的一个完整响应。
//
// FETCH 中的 FLAGS 不使用邮箱的标志过滤，未知的系统标志都会被丢弃。
func (c *Converter) Response(values []imapwire.Value) (Response, error) {
	v := imapwire.NewList(values...)
	if err := minArity(v, values, 1, "response"); err != nil {
		return nil, err
	}

	switch {
	case values[0].IsAtom("+"):
		var res ContinuationRequest
		switch len(values) {
		case 1:
		case 2:
			var err error
			if res.Text, err = text(values[1], "continue-req"); err != nil {
				return nil, err
			}
		default:
			return nil, imapwire.Malformedf(v, "continue-req", "unexpected trailing values")
		}
		return &res, nil
	case values[0].IsAtom("*"):
		return c.untagged(v, values[1:])
	}

	tag, err := atom(values[0], "tag")
	if err != nil {
		return nil, err
	}
	if len(values) < 2 || !isStateCond(values[1]) {
		return nil, imapwire.Malformedf(v, "response-tagged", "expected OK, NO or BAD")
	}
	status, err := StatusResponse(values[1:])
	if err != nil {
		return nil, err
	}
	return &TaggedStatus{Tag: tag, Status: status}, nil
}

func isStateCond(v imapwire.Value) bool {
	return v.IsAtom("OK") || v.IsAtom("NO") || v.IsAtom("BAD")
}

func (c *Converter) untagged(v imapwire.Value, values []imapwire.Value) (Response, error) {
	if len(values) == 0 {
		return nil, imapwire.Malformedf(v, "response-data", "empty untagged response")
	}
	if isStateCond(values[0]) || values[0].IsAtom("PREAUTH") || values[0].IsAtom("BYE") {
		status, err := StatusResponse(values)
		if err != nil {
			return nil, err
		}
		return &UntaggedStatus{Status: status}, nil
	}

	if num, err := Number(values[0]); err == nil {
		if len(values) < 2 {
			return nil, imapwire.Malformedf(v, "message-data", "missing name")
		}
		name, err := atom(values[1], "message-data")
		if err != nil {
			return nil, err
		}
		data := &NumberedData{Num: num, Name: strings.ToUpper(name), Args: values[2:]}
		switch data.Name {
		case "EXISTS", "RECENT", "EXPUNGE":
			if len(data.Args) != 0 {
				return nil, imapwire.Malformedf(v, "message-data", "unexpected arguments")
			}
		case "FETCH":
			if err := arity(v, data.Args, 1, "message-data FETCH"); err != nil {
				return nil, err
			}
			if data.Fetch, err = c.MessageAttributes(num, data.Args[0], nil); err != nil {
				return nil, err
			}
		}
		return data, nil
	}

	name, err := atom(values[0], "response-data")
	if err != nil {
		return nil, err
	}
	data := &NamedData{Name: strings.ToUpper(name), Args: values[1:]}
	data.Data, err = c.namedData(v, data.Name, data.Args)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (c *Converter) namedData(v imapwire.Value, name string, args []imapwire.Value) (interface{}, error) {
	switch name {
	case "CAPABILITY":
		return Capability(args)
	case "ENABLED":
		return Enabled(args)
	case "FLAGS":
		if err := arity(v, args, 1, "mailbox-data FLAGS"); err != nil {
			return nil, err
		}
		return FlagList(args[0])
	case "LIST", "LSUB":
		return c.List(args)
	case "STATUS":
		return c.Status(args)
	case "SEARCH":
		return Search(args, false)
	case "ESEARCH":
		return ESearch(args)
	case "SORT":
		return Sort(args)
	case "THREAD":
		return Thread(args)
	case "NAMESPACE":
		return Namespace(args)
	case "QUOTA":
		return Quota(args)
	case "QUOTAROOT":
		return c.QuotaRoot(args)
	case "ID":
		return ID(args)
	case "ACL":
		return c.ACL(args)
	case "MYRIGHTS":
		return c.MyRights(args)
	case "LISTRIGHTS":
		return c.ListRights(args)
	case "METADATA":
		return c.Metadata(args)
	default:
		return nil, nil
	}
}

// SelectAccumulator 收集 SELECT 或 EXAMINE 命令完成之前的响应，组成 imap.SelectData。
type SelectAccumulator struct {
	Data imap.SelectData
}

// Add 处理一个响应。如果响应属于 SELECT 的结果则返回 true。
//
// 带标签的 OK 响应中的 [READ-ONLY] 设置 ReadOnly。
func (acc *SelectAccumulator) Add(resp Response) bool {
	switch resp := resp.(type) {
	case *NumberedData:
		switch resp.Name {
		case "EXISTS":
			acc.Data.NumMessages = resp.Num
		case "RECENT":
			acc.Data.NumRecent = resp.Num
		default:
			return false
		}
	case *NamedData:
		switch data := resp.Data.(type) {
		case []imap.Flag:
			acc.Data.Flags = data
		case *imap.ListData:
			acc.Data.List = data
		default:
			return false
		}
	case *UntaggedStatus:
		if resp.Status.Type != imap.StatusResponseTypeOK {
			return false
		}
		return acc.addCode(resp.Status)
	case *TaggedStatus:
		if resp.Status.Type != imap.StatusResponseTypeOK {
			return false
		}
		acc.Data.ReadOnly = resp.Status.Code == imap.ResponseCodeReadOnly
		return true
	default:
		return false
	}
	return true
}

func (acc *SelectAccumulator) addCode(status *StatusResult) bool {
	data := status.CodeData
	switch status.Code {
	case imap.ResponseCodePermanentFlags:
		acc.Data.PermanentFlags = data.PermanentFlags
	case imap.ResponseCodeUIDNext:
		acc.Data.UIDNext = data.UIDNext
	case imap.ResponseCodeUIDValidity:
		acc.Data.UIDValidity = data.UIDValidity
	case imap.ResponseCodeUnseen:
		acc.Data.FirstUnseen = data.Unseen
	case imap.ResponseCodeHighestModSeq:
		acc.Data.HighestModSeq = data.HighestModSeq
	default:
		return false
	}
	return true
}
