package imap

// ListData 是 LIST 或 LSUB 响应中的邮箱数据。
type ListData struct {
	Attrs   []MailboxAttr // 邮箱属性的列表
	Delim   rune          // 用于分隔邮箱名称的分隔符
	Mailbox string        // 邮箱的名称

	// 扩展数据
	ChildInfo *ListDataChildInfo // 子邮箱信息
	OldName   string             // 旧的邮箱名称
	Status    *StatusData        // 状态数据，LIST-STATUS 时由随后的 STATUS 响应合并
}

// ListDataChildInfo 是关于子邮箱的信息。
type ListDataChildInfo struct {
	Subscribed bool // 是否已订阅子邮箱
}
