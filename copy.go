package imap

// CopyData 是 COPYUID 响应代码（RFC 4315）携带的数据。
type CopyData struct {
	UIDValidity uint32 // 目标邮箱的 UIDVALIDITY
	SourceUIDs  UIDSet // 被复制邮件在源邮箱中的 UID
	DestUIDs    UIDSet // 复制后在目标邮箱中的 UID，与 SourceUIDs 按顺序一一对应
}

// UIDMap 返回源 UID 到目标 UID 的映射。
//
// 两个集合都不能含有 "*"，且大小必须相同，否则 ok 为 false。
func (data *CopyData) UIDMap() (m map[UID]UID, ok bool) {
	src, ok := data.SourceUIDs.Nums()
	if !ok {
		return nil, false
	}
	dst, ok := data.DestUIDs.Nums()
	if !ok || len(src) != len(dst) {
		return nil, false
	}
	m = make(map[UID]UID, len(src))
	for i, uid := range src {
		m[uid] = dst[i]
	}
	return m, true
}
