package protocol

import (
	"fmt"
	"strings"
)

// MessageType 消息类型，线上以纯文本出现在头部行中
type MessageType string

const (
	RegName     MessageType = "REG_NAME"
	ChatMessage MessageType = "CHAT_MESSAGE"
)

// HeaderTag 头部行固定前缀
const HeaderTag = "Message-Type:"

// ParseMessageType 解析头部中的类型名，只接受已知类型
func ParseMessageType(s string) (MessageType, error) {
	switch MessageType(s) {
	case RegName, ChatMessage:
		return MessageType(s), nil
	default:
		return "", fmt.Errorf("unknown message type %q", s)
	}
}

func (t MessageType) String() string { return string(t) }

// headerLine 生成 "Message-Type: <TYPE>\n"
func headerLine(t MessageType) string {
	return HeaderTag + " " + string(t) + "\n"
}

// Message 一条协议消息。Length 为长度前缀之后的字节数（头部行 + 正文）
type Message struct {
	Length uint64
	Type   MessageType
	Body   string
}

// NewMessage 创建消息并计算长度
func NewMessage(t MessageType, body string) Message {
	return Message{Length: payloadLen(t, body), Type: t, Body: body}
}

func payloadLen(t MessageType, body string) uint64 {
	return uint64(len(headerLine(t)) + len(body))
}

// WithBody 返回替换正文后的新消息，长度同步重算
func (m Message) WithBody(body string) Message {
	return NewMessage(m.Type, body)
}

// Validate 检查消息能否无损往返：正文不能为空，也不能含换行
// （解码端按行切分后无分隔符拼接，空正文只剩一行会被判为非法帧）
func (m Message) Validate() error {
	if _, err := ParseMessageType(string(m.Type)); err != nil {
		return err
	}
	if m.Body == "" {
		return fmt.Errorf("%w: empty body", ErrInvalidFrame)
	}
	if strings.ContainsAny(m.Body, "\r\n") {
		return fmt.Errorf("%w: body contains a line break", ErrInvalidFrame)
	}
	return nil
}

func (m Message) String() string {
	return fmt.Sprintf("Message{len=%d type=%s body=%q}", m.Length, m.Type, m.Body)
}
