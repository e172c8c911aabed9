package imapwire

import (
	"bufio"
	"io"
	"sync"
)

// ContinuationWait 是由外部解除的等待点，用于 AUTHENTICATE 和 IDLE 这类需要等待服务器响应的命令。
//
// 在 Resolve 被调用之前，Sender 不会越过它发送后续片段，也不会把它移出队列。
type ContinuationWait struct {
	mutex    sync.Mutex
	resolved bool
}

// NewContinuationWait 返回一个尚未解除的等待点。
func NewContinuationWait() *ContinuationWait {
	return &ContinuationWait{}
}

// Resolve 解除等待。
func (cw *ContinuationWait) Resolve() {
	cw.mutex.Lock()
	cw.resolved = true
	cw.mutex.Unlock()
}

// Resolved 判断等待是否已被解除。
func (cw *ContinuationWait) Resolved() bool {
	cw.mutex.Lock()
	defer cw.mutex.Unlock()
	return cw.resolved
}

// Sender 按顺序把片段写入连接。
type Sender struct {
	w     *bufio.Writer
	queue []Fragment
}

// NewSender 创建一个写入 w 的发送器。
func NewSender(w *bufio.Writer) *Sender {
	return &Sender{w: w}
}

// Enqueue 把片段追加到发送队列。
func (s *Sender) Enqueue(frags ...Fragment) {
	s.queue = append(s.queue, frags...)
}

// Pending 返回队列中剩余的片段数。
func (s *Sender) Pending() int {
	return len(s.queue)
}

// Discard 丢弃队列中剩余的片段并返回丢弃的数量。
//
// 服务器可以用带标签的 NO 或 BAD 代替继续请求来拒绝同步字面量，此时命令的剩余部分不能再发送。
func (s *Sender) Discard() int {
	n := len(s.queue)
	s.queue = nil
	return n
}

// Send 依次写出队列中的片段并刷新缓冲区。
//
// 遇到 Suspend 时把它移出队列并返回 suspended = true：调用方应等待服务器的继续请求，然后再次调用 Send。
// 遇到尚未解除的 *ContinuationWait 时同样返回 suspended = true，但等待点留在队列头部。
// 写入失败是致命的连接错误。
func (s *Sender) Send() (suspended bool, err error) {
	defer func() {
		if flushErr := s.w.Flush(); err == nil && flushErr != nil {
			err = &ConnectionError{Op: "command write", Err: flushErr}
		}
	}()

	for len(s.queue) > 0 {
		switch frag := s.queue[0].(type) {
		case Chunk:
			if _, err := s.w.Write(frag); err != nil {
				return false, &ConnectionError{Op: "command write", Err: err}
			}
		case Payload:
			n, err := io.CopyN(s.w, frag.Reader, frag.Size)
			if err != nil {
				if err == io.EOF && n < frag.Size {
					err = io.ErrUnexpectedEOF
				}
				return false, &ConnectionError{Op: "literal write", Err: err}
			}
		case Suspend:
			s.queue = s.queue[1:]
			return true, nil
		case *ContinuationWait:
			if !frag.Resolved() {
				return true, nil
			}
		}
		s.queue = s.queue[1:]
	}
	s.queue = nil
	return false, nil
}
