package protocol

import (
	"errors"
	"fmt"
)

// 帧解码错误定义
var (
	ErrTransient        = NewFrameError(1001, "Frame not complete yet")
	ErrInvalidFrame     = NewFrameError(1002, "Invalid frame")
	ErrConnectionClosed = NewFrameError(1003, "Connection closed")
	ErrIO               = NewFrameError(1004, "I/O error")
	ErrFrameTooLarge    = NewFrameError(1005, "Frame too large")
)

// FrameError 带错误码的协议错误
type FrameError struct {
	code int
	msg  string
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("Error %d: %s", e.code, e.msg)
}

// Code 错误码
func (e *FrameError) Code() int { return e.code }

func NewFrameError(code int, message string) *FrameError {
	return &FrameError{code: code, msg: message}
}

// IsTransient 数据暂不完整，稍后重试即可
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// IsFatal 除 Transient 以外的错误都会终结该连接的读取
func IsFatal(err error) bool {
	return err != nil && !IsTransient(err)
}
