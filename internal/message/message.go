// Package message 定义会话中流转的消息模型。
package message

// SenderRole 表示消息发送者的角色
type SenderRole string

const (
	User      SenderRole = "user"      // 用户发送的消息
	Assistant SenderRole = "assistant" // 助手发送的消息
)

// FileRef 表示随消息附带的文件
type FileRef struct {
	Name    string `json:"name"`    // 文件名
	Content string `json:"content"` // 文件文本内容
}

// Message 表示一条会话消息
type Message struct {
	Sender  SenderRole `json:"sender"`           // 发送者角色
	Content string     `json:"content"`          // 消息正文
	Images  []string   `json:"images,omitempty"` // 图片列表（data URI 编码）
	Files   []FileRef  `json:"files,omitempty"`  // 文件列表
	Online  bool       `json:"online,omitempty"` // 是否启用联网搜索
}

// NewUserMessage 创建一条用户消息
func NewUserMessage(content string) Message {
	return Message{Sender: User, Content: content}
}

// NewAssistantMessage 创建一条助手消息
func NewAssistantMessage(content string) Message {
	return Message{Sender: Assistant, Content: content}
}

// LastUser 返回最后一条用户消息的下标，不存在时返回 -1
func LastUser(msgs []Message) int {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Sender == User {
			return i
		}
	}
	return -1
}

// TrimToGroups 按对话分组裁剪历史，保留最近 n 组完整的问答。
// 一组以一条用户消息开始，包含其后的全部助手消息。
func TrimToGroups(msgs []Message, n int) []Message {
	if n <= 0 {
		return msgs
	}
	groups := 0
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Sender == User {
			groups++
			if groups == n {
				return msgs[i:]
			}
		}
	}
	return msgs
}
