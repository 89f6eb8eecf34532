package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/purpose168/deskchat-cn/internal/message"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// openaiAdapter 对接 OpenAI 及其兼容网关的 chat/completions 接口
type openaiAdapter struct {
	cfg    Config
	client *http.Client
}

func newOpenAIAdapter(cfg Config) *openaiAdapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOpenAIBaseURL
	}
	return &openaiAdapter{cfg: cfg, client: cfg.httpClient()}
}

// OpenAI 接口的请求与响应结构

type openaiRequest struct {
	Model         string              `json:"model"`                    // 模型名称
	Messages      []openaiMessage     `json:"messages"`                 // 消息列表
	MaxTokens     int64               `json:"max_tokens,omitempty"`     // 输出上限
	Stream        bool                `json:"stream,omitempty"`         // 是否流式
	StreamOptions *openaiStreamOpts   `json:"stream_options,omitempty"` // 流式选项
	Tools         []openaiTool        `json:"tools,omitempty"`          // 工具列表
	ToolChoice    *openaiToolChoice   `json:"tool_choice,omitempty"`    // 工具选择策略
}

type openaiStreamOpts struct {
	IncludeUsage bool `json:"include_usage"` // 在末尾块中携带用量
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"` // 纯文本为 string，多模态为 []openaiContentPart
}

type openaiContentPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *openaiImageURL `json:"image_url,omitempty"`
}

type openaiImageURL struct {
	URL string `json:"url"`
}

type openaiTool struct {
	Type     string         `json:"type"`
	Function openaiFunction `json:"function"`
}

type openaiFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

type openaiToolChoice struct {
	Type     string             `json:"type"`
	Function openaiToolChoiceFn `json:"function"`
}

type openaiToolChoiceFn struct {
	Name string `json:"name"`
}

type openaiUsage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
}

type openaiToolCallChunk struct {
	Index    int    `json:"index"`
	ID       string `json:"id"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type openaiChunk struct {
	Choices []struct {
		Delta struct {
			Content          string                `json:"content"`
			ReasoningContent string                `json:"reasoning_content"`
			ToolCalls        []openaiToolCallChunk `json:"tool_calls"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *openaiUsage     `json:"usage"`
	Error *openaiWireError `json:"error"`
}

type openaiCompletion struct {
	Choices []struct {
		Message struct {
			Content          string                `json:"content"`
			ReasoningContent string                `json:"reasoning_content"`
			ToolCalls        []openaiToolCallChunk `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
	Usage *openaiUsage     `json:"usage"`
	Error *openaiWireError `json:"error"`
}

type openaiWireError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (a *openaiAdapter) buildRequest(req Request, stream bool) openaiRequest {
	msgs := make([]openaiMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		msgs = append(msgs, openaiMessage{Role: "system", Content: req.System})
	}
	for _, m := range req.Messages {
		msgs = append(msgs, formatOpenAIMessage(m))
	}

	out := openaiRequest{
		Model:     a.cfg.Model,
		Messages:  msgs,
		MaxTokens: a.cfg.MaxTokens,
		Stream:    stream,
	}
	if stream {
		// 部分网关只有显式要求时才在末尾块携带用量
		out.StreamOptions = &openaiStreamOpts{IncludeUsage: true}
	}
	for _, t := range req.Tools {
		out.Tools = append(out.Tools, openaiTool{
			Type: "function",
			Function: openaiFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	if req.ForceTool != "" {
		out.ToolChoice = &openaiToolChoice{
			Type:     "function",
			Function: openaiToolChoiceFn{Name: req.ForceTool},
		}
	}
	return out
}

// formatOpenAIMessage 把内部消息转换成 OpenAI 的消息格式。
// 带图片的消息使用多模态内容数组，文件内容追加在文本之后。
func formatOpenAIMessage(m message.Message) openaiMessage {
	role := "assistant"
	if m.Sender == message.User {
		role = "user"
	}

	text := m.Content
	if len(m.Files) > 0 {
		names := make([]string, 0, len(m.Files))
		for _, f := range m.Files {
			if f.Content != "" {
				names = append(names, f.Name+"\n"+f.Content)
			} else {
				names = append(names, f.Name)
			}
		}
		text += "\nFiles: " + strings.Join(names, ", ")
	}

	if len(m.Images) == 0 {
		return openaiMessage{Role: role, Content: text}
	}

	parts := []openaiContentPart{{Type: "text", Text: text}}
	for _, img := range m.Images {
		parts = append(parts, openaiContentPart{
			Type:     "image_url",
			ImageURL: &openaiImageURL{URL: img},
		})
	}
	return openaiMessage{Role: role, Content: parts}
}

func (a *openaiAdapter) post(ctx context.Context, body openaiRequest, stream bool) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("序列化请求失败: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimSuffix(a.cfg.BaseURL, "/")+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("构建请求失败: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)
	if stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if msg := wireErrorMessage(raw); msg != "" {
			return nil, fmt.Errorf("接口返回错误（状态码 %d）: %s", resp.StatusCode, msg)
		}
		return nil, fmt.Errorf("接口返回错误（状态码 %d）: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return resp, nil
}

// wireErrorMessage 尝试从错误响应体中提取错误描述
func wireErrorMessage(raw []byte) string {
	var wrapped struct {
		Error *openaiWireError `json:"error"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Error != nil {
		return wrapped.Error.Message
	}
	return ""
}

// Complete 发起一次非流式生成
func (a *openaiAdapter) Complete(ctx context.Context, req Request) (*Response, error) {
	resp, err := a.post(ctx, a.buildRequest(req, false), false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var completion openaiCompletion
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}
	if completion.Error != nil {
		return nil, fmt.Errorf("接口返回错误: %s", completion.Error.Message)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("响应中没有候选结果")
	}

	msg := completion.Choices[0].Message
	out := &Response{
		Content:  msg.Content,
		Thinking: msg.ReasoningContent,
	}
	for _, tc := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	if completion.Usage != nil {
		out.Usage = Usage{
			InputTokens:  completion.Usage.PromptTokens,
			OutputTokens: completion.Usage.CompletionTokens,
		}
	}
	return out, nil
}

// Stream 发起一次流式生成
func (a *openaiAdapter) Stream(ctx context.Context, req Request) <-chan Event {
	events := make(chan Event)
	go func() {
		defer close(events)

		resp, err := a.post(ctx, a.buildRequest(req, true), true)
		if err != nil {
			emitErr(ctx, events, err)
			return
		}
		defer resp.Body.Close()

		dec := newSSEDecoder(resp.Body)
		for {
			data, err := dec.Next()
			if err != nil {
				if err == io.EOF {
					// 个别网关不发送 [DONE] 就直接断开连接
					events <- Event{Type: EventComplete}
					return
				}
				emitErr(ctx, events, err)
				return
			}

			data = bytes.TrimSpace(data)
			if bytes.Equal(data, []byte("[DONE]")) {
				events <- Event{Type: EventComplete}
				return
			}

			var chunk openaiChunk
			if err := json.Unmarshal(data, &chunk); err != nil {
				emitErr(ctx, events, fmt.Errorf("解析流式响应块失败: %w", err))
				return
			}
			if chunk.Error != nil {
				emitErr(ctx, events, fmt.Errorf("接口返回错误: %s", chunk.Error.Message))
				return
			}

			if chunk.Usage != nil {
				events <- Event{Type: EventUsage, Usage: &Usage{
					InputTokens:  chunk.Usage.PromptTokens,
					OutputTokens: chunk.Usage.CompletionTokens,
				}}
			}
			if len(chunk.Choices) == 0 {
				continue
			}
			delta := chunk.Choices[0].Delta
			if delta.ReasoningContent != "" {
				events <- Event{Type: EventThinkingDelta, Thinking: delta.ReasoningContent}
			}
			if delta.Content != "" {
				events <- Event{Type: EventContentDelta, Content: delta.Content}
			}
			for _, tc := range delta.ToolCalls {
				events <- Event{Type: EventToolCallDelta, ToolCall: &ToolCallDelta{
					Index:     tc.Index,
					ID:        tc.ID,
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				}}
			}
		}
	}()
	return events
}
