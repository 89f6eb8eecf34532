package chat

import (
	"log/slog"

	"github.com/tidwall/gjson"

	"github.com/purpose168/deskchat-cn/internal/provider"
)

// 单个工具调用参数缓冲的上限，超限的调用被丢弃
const maxToolCallArgs = 64 * 1024

// toolCallAccumulator 按序号累积工具调用的参数片段。
// 参数拼出合法 JSON 即视为调用完成，残缺的 JSON 不是错误。
type toolCallAccumulator struct {
	pending   map[int]*provider.ToolCall
	dropped   map[int]struct{}
	completed []provider.ToolCall
}

func newToolCallAccumulator() *toolCallAccumulator {
	return &toolCallAccumulator{
		pending: make(map[int]*provider.ToolCall),
		dropped: make(map[int]struct{}),
	}
}

// Add 追加一个增量片段
func (a *toolCallAccumulator) Add(delta provider.ToolCallDelta) {
	// 已放弃的序号不再接收后续片段，避免残片拼成无名调用
	if _, ok := a.dropped[delta.Index]; ok {
		return
	}
	call, ok := a.pending[delta.Index]
	if !ok {
		call = &provider.ToolCall{}
		a.pending[delta.Index] = call
	}
	// ID 与名称只在首个片段出现
	if delta.ID != "" {
		call.ID = delta.ID
	}
	if delta.Name != "" {
		call.Name = delta.Name
	}
	call.Arguments += delta.Arguments

	if len(call.Arguments) > maxToolCallArgs {
		slog.Warn("工具调用参数超出缓冲上限，放弃该调用", "index", delta.Index, "name", call.Name)
		delete(a.pending, delta.Index)
		a.dropped[delta.Index] = struct{}{}
		return
	}
	if call.Arguments != "" && gjson.Valid(call.Arguments) {
		a.completed = append(a.completed, *call)
		delete(a.pending, delta.Index)
	}
}

// Completed 返回已拼接完成的调用列表
func (a *toolCallAccumulator) Completed() []provider.ToolCall {
	return a.completed
}
