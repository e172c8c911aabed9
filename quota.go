package imap

// QuotaResourceType 表示 QUOTA 资源类型。
//
// 参见 RFC 9208 第 5 节。
type QuotaResourceType string

const (
	QuotaResourceStorage           QuotaResourceType = "STORAGE"            // 存储资源类型
	QuotaResourceMessage           QuotaResourceType = "MESSAGE"            // 消息资源类型
	QuotaResourceMailbox           QuotaResourceType = "MAILBOX"            // 邮箱资源类型
	QuotaResourceAnnotationStorage QuotaResourceType = "ANNOTATION-STORAGE" // 注释存储资源类型
)

// QuotaData 是 QUOTA 响应的数据。
type QuotaData struct {
	Root      string                                  // 配额根
	Resources map[QuotaResourceType]QuotaResourceData // 资源数据
}

// QuotaResourceData 是某一资源的使用量和限制。
type QuotaResourceData struct {
	Usage int64 // 使用量
	Limit int64 // 限制量
}

// QuotaRootData 是 QUOTAROOT 响应的数据。
type QuotaRootData struct {
	Mailbox string   // 邮箱名称
	Roots   []string // 配额根列表
}
