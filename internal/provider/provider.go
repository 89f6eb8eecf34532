// Package provider 把不同大模型服务商的流式接口归一化为统一的事件流。
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/purpose168/deskchat-cn/internal/message"
)

// EventType 表示流式事件的类型
type EventType string

const (
	EventContentDelta  EventType = "content_delta"   // 正文文本增量
	EventThinkingDelta EventType = "thinking_delta"  // 思考过程增量
	EventToolCallDelta EventType = "tool_call_delta" // 工具调用参数增量
	EventUsage         EventType = "usage"           // 用量统计
	EventComplete      EventType = "complete"        // 流正常结束
	EventError         EventType = "error"           // 流异常终止
)

// Event 是适配器发出的归一化流式事件
type Event struct {
	Type     EventType      // 事件类型
	Content  string         // 正文增量，仅 EventContentDelta 有效
	Thinking string         // 思考增量，仅 EventThinkingDelta 有效
	ToolCall *ToolCallDelta // 工具调用增量，仅 EventToolCallDelta 有效
	Usage    *Usage         // 用量，仅 EventUsage 有效
	Error    error          // 错误，仅 EventError 有效
}

// ToolCallDelta 表示一个工具调用的增量片段。
// 同一次调用的片段共享相同的 Index，ID 与 Name 只在首个片段出现。
type ToolCallDelta struct {
	Index     int    // 工具调用在本次响应中的序号
	ID        string // 服务商分配的调用 ID
	Name      string // 工具名称
	Arguments string // 参数 JSON 片段
}

// Usage 表示一次生成的 token 用量
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`  // 输入 token 数
	OutputTokens int64 `json:"output_tokens"` // 输出 token 数
}

// Merge 合并一份新的用量报告，非零值覆盖旧值。
// 部分服务商把输入和输出用量拆在不同事件里报告。
func (u *Usage) Merge(o Usage) {
	if o.InputTokens > 0 {
		u.InputTokens = o.InputTokens
	}
	if o.OutputTokens > 0 {
		u.OutputTokens = o.OutputTokens
	}
}

// ToolCall 表示一次完整的工具调用
type ToolCall struct {
	ID        string `json:"id"`        // 调用 ID
	Name      string `json:"name"`      // 工具名称
	Arguments string `json:"arguments"` // 完整参数 JSON
}

// ToolDefinition 描述一个可供模型调用的工具
type ToolDefinition struct {
	Name        string         // 工具名称
	Description string         // 工具用途说明
	Parameters  map[string]any // JSON Schema 形式的参数定义
}

// Request 是一次生成请求
type Request struct {
	Messages  []message.Message // 会话消息
	System    string            // 系统提示词
	Tools     []ToolDefinition  // 可用工具
	ForceTool string            // 强制模型调用的工具名，为空则由模型自行决定
}

// Response 是一次非流式生成的完整结果
type Response struct {
	Content   string     // 正文
	Thinking  string     // 思考过程
	ToolCalls []ToolCall // 工具调用列表
	Usage     Usage      // 用量
}

// Adapter 把某个服务商的接口归一化为统一的请求与事件模型
type Adapter interface {
	// Complete 发起一次非流式生成
	Complete(ctx context.Context, req Request) (*Response, error)
	// Stream 发起一次流式生成，事件按到达顺序写入返回的通道。
	// 通道以 EventComplete 或 EventError 收尾后关闭；上下文取消时直接关闭。
	Stream(ctx context.Context, req Request) <-chan Event
}

// Config 是适配器的连接配置
type Config struct {
	BaseURL   string        // 接口地址，不含具体路径
	APIKey    string        // 鉴权密钥
	Model     string        // 模型名称
	MaxTokens int64         // 单次生成的输出上限，0 表示使用默认值
	Client    *http.Client  // 自定义 HTTP 客户端，为空时使用默认客户端
	Timeout   time.Duration // 默认客户端的请求超时，0 表示不限
}

// ErrUnknownChannel 表示渠道编码没有对应的适配器
var ErrUnknownChannel = errors.New("未知的渠道编码")

// New 根据渠道编码创建适配器。
// OpenAI 兼容网关统一走 openai 渠道。
func New(channelCode string, cfg Config) (Adapter, error) {
	switch channelCode {
	case "openai":
		return newOpenAIAdapter(cfg), nil
	case "anthropic":
		return newAnthropicAdapter(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownChannel, channelCode)
	}
}

func (c Config) httpClient() *http.Client {
	if c.Client != nil {
		return c.Client
	}
	return &http.Client{Timeout: c.Timeout}
}

// emitErr 把错误作为事件上报。
// 上下文取消是调用方的主动行为，不作为错误上报。
func emitErr(ctx context.Context, ch chan<- Event, err error) {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return
	}
	ch <- Event{Type: EventError, Error: err}
}
