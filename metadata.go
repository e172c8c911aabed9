package imap

// MetadataData 是 METADATA 响应的数据（RFC 5464）。
//
// 服务器既可以返回条目值，也可以只列出发生变化的条目名称。
type MetadataData struct {
	Mailbox     string             // 邮箱名称，空字符串表示服务器级元数据
	EntryValues map[string]*[]byte // 条目值，nil 表示 NIL
	EntryList   []string           // 未附带值的条目名称
}
