package imap

// AppendData 是 APPENDUID 响应代码携带的数据。
type AppendData struct {
	UID         UID    // 消息的唯一标识符，要求支持 UIDPLUS 或 IMAP4rev2
	UIDValidity uint32 // UID 的有效性，表示 UID 可能会在此有效性范围内变化
}
