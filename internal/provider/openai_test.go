package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/purpose168/deskchat-cn/internal/message"
	"github.com/stretchr/testify/require"
)

func sseHandler(t *testing.T, lines []string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, line := range lines {
			_, err := w.Write([]byte(line + "\n\n"))
			require.NoError(t, err)
		}
	}
}

func collect(ch <-chan Event) []Event {
	var out []Event
	for ev := range ch {
		out = append(out, ev)
	}
	return out
}

func TestOpenAIStreamTextAndUsage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(sseHandler(t, []string{
		`data: {"choices":[{"delta":{"content":"He"}}]}`,
		`data: {"choices":[{"delta":{"content":"llo"}}]}`,
		`data: {"choices":[],"usage":{"prompt_tokens":5,"completion_tokens":2}}`,
		`data: [DONE]`,
	}))
	defer srv.Close()

	adapter := newOpenAIAdapter(Config{BaseURL: srv.URL, APIKey: "k", Model: "gpt-4o-mini"})
	events := collect(adapter.Stream(t.Context(), Request{
		Messages: []message.Message{message.NewUserMessage("你好")},
	}))

	require.Len(t, events, 4)
	require.Equal(t, EventContentDelta, events[0].Type)
	require.Equal(t, "He", events[0].Content)
	require.Equal(t, "llo", events[1].Content)
	require.Equal(t, EventUsage, events[2].Type)
	require.Equal(t, int64(5), events[2].Usage.InputTokens)
	require.Equal(t, int64(2), events[2].Usage.OutputTokens)
	require.Equal(t, EventComplete, events[3].Type)
}

func TestOpenAIStreamReasoning(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(sseHandler(t, []string{
		`data: {"choices":[{"delta":{"reasoning_content":"先想一下"}}]}`,
		`data: {"choices":[{"delta":{"content":"答案"}}]}`,
		`data: [DONE]`,
	}))
	defer srv.Close()

	adapter := newOpenAIAdapter(Config{BaseURL: srv.URL, Model: "deepseek-r1"})
	events := collect(adapter.Stream(t.Context(), Request{
		Messages: []message.Message{message.NewUserMessage("问题")},
	}))

	require.Len(t, events, 3)
	require.Equal(t, EventThinkingDelta, events[0].Type)
	require.Equal(t, "先想一下", events[0].Thinking)
	require.Equal(t, EventContentDelta, events[1].Type)
	require.Equal(t, EventComplete, events[2].Type)
}

func TestOpenAIStreamToolCallFragments(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(sseHandler(t, []string{
		`data: {"choices":[{"delta":{"tool_calls":[{"index":0,"id":"call_1","function":{"name":"web_search","arguments":""}}]}}]}`,
		`data: {"choices":[{"delta":{"tool_calls":[{"index":0,"function":{"arguments":"{\"keywords\":"}}]}}]}`,
		`data: {"choices":[{"delta":{"tool_calls":[{"index":0,"function":{"arguments":"\"天气\"}"}}]}}]}`,
		`data: [DONE]`,
	}))
	defer srv.Close()

	adapter := newOpenAIAdapter(Config{BaseURL: srv.URL, Model: "gpt-4o-mini"})
	events := collect(adapter.Stream(t.Context(), Request{
		Messages: []message.Message{{Sender: message.User, Content: "今天天气", Online: true}},
	}))

	require.Len(t, events, 4)
	first := events[0].ToolCall
	require.NotNil(t, first)
	require.Equal(t, 0, first.Index)
	require.Equal(t, "call_1", first.ID)
	require.Equal(t, "web_search", first.Name)
	require.Equal(t, `{"keywords":`, events[1].ToolCall.Arguments)
	require.Equal(t, `"天气"}`, events[2].ToolCall.Arguments)
	require.Equal(t, EventComplete, events[3].Type)
}

func TestOpenAIStreamHTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Invalid API key","type":"auth_error"}}`))
	}))
	defer srv.Close()

	adapter := newOpenAIAdapter(Config{BaseURL: srv.URL, APIKey: "bad", Model: "gpt-4o-mini"})
	events := collect(adapter.Stream(t.Context(), Request{
		Messages: []message.Message{message.NewUserMessage("hi")},
	}))

	require.Len(t, events, 1)
	require.Equal(t, EventError, events[0].Type)
	require.ErrorContains(t, events[0].Error, "Invalid API key")
}

func TestOpenAIStreamCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"片段\"}}]}\n\n"))
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	adapter := newOpenAIAdapter(Config{BaseURL: srv.URL, Model: "gpt-4o-mini"})
	events := adapter.Stream(ctx, Request{
		Messages: []message.Message{message.NewUserMessage("hi")},
	})

	ev := <-events
	require.Equal(t, EventContentDelta, ev.Type)
	cancel()

	// 取消后通道直接关闭，不上报错误事件
	for ev := range events {
		require.NotEqual(t, EventError, ev.Type)
	}
}

func TestFormatOpenAIMessage(t *testing.T) {
	t.Parallel()

	plain := formatOpenAIMessage(message.NewUserMessage("你好"))
	require.Equal(t, "user", plain.Role)
	require.Equal(t, "你好", plain.Content)

	rich := formatOpenAIMessage(message.Message{
		Sender:  message.User,
		Content: "看看这两张图",
		Images:  []string{"data:image/png;base64,AAAA", "data:image/jpeg;base64,BBBB"},
		Files:   []message.FileRef{{Name: "notes.txt", Content: "内容"}},
	})
	parts, ok := rich.Content.([]openaiContentPart)
	require.True(t, ok)
	require.Len(t, parts, 3)
	require.Equal(t, "text", parts[0].Type)
	require.Contains(t, parts[0].Text, "Files: notes.txt")
	require.Equal(t, "data:image/png;base64,AAAA", parts[1].ImageURL.URL)
	require.Equal(t, "data:image/jpeg;base64,BBBB", parts[2].ImageURL.URL)
}

func TestOpenAIBuildRequestForceTool(t *testing.T) {
	t.Parallel()

	adapter := newOpenAIAdapter(Config{Model: "gpt-4o-mini"})
	req := adapter.buildRequest(Request{
		Messages:  []message.Message{message.NewUserMessage("今天的新闻")},
		Tools:     []ToolDefinition{{Name: "web_search", Description: "搜索"}},
		ForceTool: "web_search",
	}, true)

	require.True(t, req.Stream)
	require.NotNil(t, req.StreamOptions)
	require.True(t, req.StreamOptions.IncludeUsage)
	require.Len(t, req.Tools, 1)
	require.Equal(t, "function", req.Tools[0].Type)
	require.NotNil(t, req.ToolChoice)
	require.Equal(t, "web_search", req.ToolChoice.Function.Name)
}

func TestOpenAIComplete(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"完整回答"}}],"usage":{"prompt_tokens":7,"completion_tokens":3}}`))
	}))
	defer srv.Close()

	adapter := newOpenAIAdapter(Config{BaseURL: srv.URL, Model: "gpt-4o-mini"})
	resp, err := adapter.Complete(t.Context(), Request{
		Messages: []message.Message{message.NewUserMessage("hi")},
	})
	require.NoError(t, err)
	require.Equal(t, "完整回答", resp.Content)
	require.Equal(t, int64(7), resp.Usage.InputTokens)
	require.Equal(t, int64(3), resp.Usage.OutputTokens)
}
