package provider

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/purpose168/deskchat-cn/internal/message"
	"github.com/stretchr/testify/require"
)

func TestAnthropicStreamTextAndUsage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(sseHandler(t, []string{
		`data: {"type":"message_start","message":{"usage":{"input_tokens":12,"output_tokens":0}}}`,
		`data: {"type":"content_block_start","index":0,"content_block":{"type":"text"}}`,
		`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"你"}}`,
		`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"好"}}`,
		`data: {"type":"content_block_stop","index":0}`,
		`data: {"type":"message_delta","delta":{"stop_reason":"end_turn"},"usage":{"output_tokens":6}}`,
		`data: {"type":"message_stop"}`,
	}))
	defer srv.Close()

	adapter := newAnthropicAdapter(Config{BaseURL: srv.URL, APIKey: "k", Model: "claude-3-opus-20240229"})
	events := collect(adapter.Stream(t.Context(), Request{
		Messages: []message.Message{message.NewUserMessage("hi")},
	}))

	require.Len(t, events, 5)
	require.Equal(t, EventUsage, events[0].Type)
	require.Equal(t, int64(12), events[0].Usage.InputTokens)
	require.Equal(t, "你", events[1].Content)
	require.Equal(t, "好", events[2].Content)
	require.Equal(t, EventUsage, events[3].Type)
	require.Equal(t, int64(6), events[3].Usage.OutputTokens)
	require.Equal(t, EventComplete, events[4].Type)
}

func TestAnthropicStreamToolUse(t *testing.T) {
	t.Parallel()

	// 文本块占用了内容块序号 0，工具块的序号从 1 开始，
	// 适配器要把它重映射为工具序号 0
	srv := httptest.NewServer(sseHandler(t, []string{
		`data: {"type":"message_start","message":{"usage":{"input_tokens":3,"output_tokens":0}}}`,
		`data: {"type":"content_block_start","index":0,"content_block":{"type":"text"}}`,
		`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"让我搜索"}}`,
		`data: {"type":"content_block_start","index":1,"content_block":{"type":"tool_use","id":"toolu_1","name":"web_search"}}`,
		`data: {"type":"content_block_delta","index":1,"delta":{"type":"input_json_delta","partial_json":"{\"keywords\":"}}`,
		`data: {"type":"content_block_delta","index":1,"delta":{"type":"input_json_delta","partial_json":"\"新闻\"}"}}`,
		`data: {"type":"message_stop"}`,
	}))
	defer srv.Close()

	adapter := newAnthropicAdapter(Config{BaseURL: srv.URL, Model: "claude-3-opus-20240229"})
	events := collect(adapter.Stream(t.Context(), Request{
		Messages: []message.Message{{Sender: message.User, Content: "新闻", Online: true}},
	}))

	require.Len(t, events, 6)
	require.Equal(t, EventContentDelta, events[1].Type)

	start := events[2].ToolCall
	require.NotNil(t, start)
	require.Equal(t, 0, start.Index)
	require.Equal(t, "toolu_1", start.ID)
	require.Equal(t, "web_search", start.Name)
	require.Equal(t, 0, events[3].ToolCall.Index)
	require.Equal(t, `{"keywords":`, events[3].ToolCall.Arguments)
	require.Equal(t, `"新闻"}`, events[4].ToolCall.Arguments)
	require.Equal(t, EventComplete, events[5].Type)
}

func TestAnthropicStreamThinking(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(sseHandler(t, []string{
		`data: {"type":"content_block_start","index":0,"content_block":{"type":"thinking"}}`,
		`data: {"type":"content_block_delta","index":0,"delta":{"type":"thinking_delta","thinking":"推理中"}}`,
		`data: {"type":"content_block_delta","index":1,"delta":{"type":"text_delta","text":"结论"}}`,
		`data: {"type":"message_stop"}`,
	}))
	defer srv.Close()

	adapter := newAnthropicAdapter(Config{BaseURL: srv.URL, Model: "claude-sonnet-4-20250514"})
	events := collect(adapter.Stream(t.Context(), Request{
		Messages: []message.Message{message.NewUserMessage("问题")},
	}))

	require.Len(t, events, 3)
	require.Equal(t, EventThinkingDelta, events[0].Type)
	require.Equal(t, "推理中", events[0].Thinking)
	require.Equal(t, EventContentDelta, events[1].Type)
}

func TestAnthropicStreamError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(sseHandler(t, []string{
		`data: {"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`,
	}))
	defer srv.Close()

	adapter := newAnthropicAdapter(Config{BaseURL: srv.URL, Model: "claude-3-opus-20240229"})
	events := collect(adapter.Stream(t.Context(), Request{
		Messages: []message.Message{message.NewUserMessage("hi")},
	}))

	require.Len(t, events, 1)
	require.Equal(t, EventError, events[0].Type)
	require.ErrorContains(t, events[0].Error, "Overloaded")
}

func TestAnthropicComplete(t *testing.T) {
	t.Parallel()

	var got anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "k", r.Header.Get("X-Api-Key"))
		require.Equal(t, anthropicVersion, r.Header.Get("Anthropic-Version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"id":"msg_1","content":[{"type":"text","text":"回答"}],"usage":{"input_tokens":4,"output_tokens":2}}`))
	}))
	defer srv.Close()

	adapter := newAnthropicAdapter(Config{BaseURL: srv.URL, APIKey: "k", Model: "claude-3-opus-20240229"})
	resp, err := adapter.Complete(t.Context(), Request{
		System:   "你是助手",
		Messages: []message.Message{message.NewUserMessage("hi")},
	})
	require.NoError(t, err)
	require.Equal(t, "回答", resp.Content)
	require.Equal(t, int64(4), resp.Usage.InputTokens)

	// max_tokens 必填，未配置时使用默认值
	require.Equal(t, int64(defaultAnthropicMaxTokens), got.MaxTokens)
	require.Equal(t, "你是助手", got.System)
}

func TestAnthropicCompleteToolUse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"msg_2","content":[{"type":"tool_use","id":"toolu_9","name":"web_search","input":{"keywords":"天气"}}],"usage":{"input_tokens":5,"output_tokens":8}}`))
	}))
	defer srv.Close()

	adapter := newAnthropicAdapter(Config{BaseURL: srv.URL, Model: "claude-3-opus-20240229"})
	resp, err := adapter.Complete(t.Context(), Request{
		Messages:  []message.Message{{Sender: message.User, Content: "天气", Online: true}},
		Tools:     []ToolDefinition{{Name: "web_search"}},
		ForceTool: "web_search",
	})
	require.NoError(t, err)
	require.Len(t, resp.ToolCalls, 1)
	require.Equal(t, "toolu_9", resp.ToolCalls[0].ID)
	require.Equal(t, "web_search", resp.ToolCalls[0].Name)
	require.JSONEq(t, `{"keywords":"天气"}`, resp.ToolCalls[0].Arguments)
}

func TestFormatAnthropicMessageImages(t *testing.T) {
	t.Parallel()

	rich := formatAnthropicMessage(message.Message{
		Sender:  message.User,
		Content: "描述这张图",
		Images:  []string{"data:image/png;base64,AAAA"},
	})
	blocks, ok := rich.Content.([]anthropicContentBlock)
	require.True(t, ok)
	require.Len(t, blocks, 2)
	require.Equal(t, "text", blocks[0].Type)
	require.Equal(t, "image", blocks[1].Type)
	require.Equal(t, "base64", blocks[1].Source.Type)
	require.Equal(t, "image/png", blocks[1].Source.MediaType)
	require.Equal(t, "AAAA", blocks[1].Source.Data)
}

func TestSplitDataURI(t *testing.T) {
	t.Parallel()

	mt, data := splitDataURI("data:image/webp;base64,QUJD")
	require.Equal(t, "image/webp", mt)
	require.Equal(t, "QUJD", data)

	// 不带 data 头时按 jpeg 处理
	mt, data = splitDataURI("QUJD")
	require.Equal(t, "image/jpeg", mt)
	require.Equal(t, "QUJD", data)
}
