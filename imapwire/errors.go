package imapwire

import (
	"errors"
	"fmt"
)

// 错误分类。可以用 errors.Is 判断具体错误属于哪一类。
var (
	// ErrMalformed 表示数据不符合预期的语法形态。只影响当前响应或命令，连接仍然可用。
	ErrMalformed = errors.New("imapwire: malformed data")
	// ErrConnection 表示字节级别的帧同步已经丢失，连接必须关闭。
	ErrConnection = errors.New("imapwire: connection failure")
	// ErrContract 表示调用方使用错误，例如在 List 上调用文本访问器。
	ErrContract = errors.New("imapwire: contract violation")
)

// MalformedDataError 描述一个不符合语法的值。
type MalformedDataError struct {
	// 出问题的值，解析阶段出错时可能为空
	Value Value
	// 期望的语法形态，例如 "number" 或 "body-fld-param"
	Expected string
	// 出错位置在输入中的偏移量，未知时为 -1
	Offset int
	// 原始输入片段，便于诊断
	Input []byte
	Err   error
}

var _ error = (*MalformedDataError)(nil)

// Error 实现 error 接口。
func (err *MalformedDataError) Error() string {
	msg := "imapwire: malformed data"
	if err.Expected != "" {
		msg += ": expected " + err.Expected
	}
	if err.Offset >= 0 && err.Input != nil {
		msg += fmt.Sprintf(" at offset %v in %q", err.Offset, err.Input)
	} else {
		msg += fmt.Sprintf(", got %v", err.Value)
	}
	if err.Err != nil {
		msg += ": " + err.Err.Error()
	}
	return msg
}

// Unwrap 返回内部错误。
func (err *MalformedDataError) Unwrap() error {
	return err.Err
}

// Is 使 errors.Is(err, ErrMalformed) 成立。
func (err *MalformedDataError) Is(target error) bool {
	return target == ErrMalformed
}

// Malformed 创建一个携带出错值的 MalformedDataError。
func Malformed(v Value, expected string) *MalformedDataError {
	return &MalformedDataError{Value: v, Expected: expected, Offset: -1}
}

// Malformedf 与 Malformed 相同，但附带格式化的原因。
func Malformedf(v Value, expected string, format string, args ...interface{}) *MalformedDataError {
	err := Malformed(v, expected)
	err.Err = fmt.Errorf(format, args...)
	return err
}

// ConnectionError 是致命的连接错误：读取字面量时遇到 EOF、传输层错误、流升级失败等。
type ConnectionError struct {
	Op  string // 出错时正在执行的操作
	Err error
}

var _ error = (*ConnectionError)(nil)

// Error 实现 error 接口。
func (err *ConnectionError) Error() string {
	if err.Err == nil {
		return fmt.Sprintf("imapwire: connection failure during %v", err.Op)
	}
	return fmt.Sprintf("imapwire: connection failure during %v: %v", err.Op, err.Err)
}

// Unwrap 返回内部错误。
func (err *ConnectionError) Unwrap() error {
	return err.Err
}

// Is 使 errors.Is(err, ErrConnection) 成立。
func (err *ConnectionError) Is(target error) bool {
	return target == ErrConnection
}

// ContractError 表示在错误种类的值上调用了访问器。
type ContractError struct {
	Op   string // 被调用的访问器
	Kind Kind   // 值的实际种类
}

var _ error = (*ContractError)(nil)

// Error 实现 error 接口。
func (err *ContractError) Error() string {
	return fmt.Sprintf("imapwire: %v called on %v value", err.Op, err.Kind)
}

// Is 使 errors.Is(err, ErrContract) 成立。
func (err *ContractError) Is(target error) bool {
	return target == ErrContract
}
