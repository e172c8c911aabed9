package imap

// ThreadAlgorithm 表示一个线程算法。
type ThreadAlgorithm string

const (
	ThreadOrderedSubject ThreadAlgorithm = "ORDEREDSUBJECT" // 有序主题算法
	ThreadReferences     ThreadAlgorithm = "REFERENCES"     // 引用算法
)

// ThreadData 是 THREAD 响应中的一个线程。
//
// Chain 是线程开头的一串消息，SubThreads 是从链尾分出的子线程。
type ThreadData struct {
	Chain      []uint32     // 线程链
	SubThreads []ThreadData // 子线程
}
