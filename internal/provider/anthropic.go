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

const (
	defaultAnthropicBaseURL   = "https://api.anthropic.com"
	anthropicVersion          = "2023-06-01"
	defaultAnthropicMaxTokens = 4000
)

// anthropicAdapter 对接 Anthropic 的 messages 接口
type anthropicAdapter struct {
	cfg    Config
	client *http.Client
}

func newAnthropicAdapter(cfg Config) *anthropicAdapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultAnthropicBaseURL
	}
	if cfg.MaxTokens <= 0 {
		// max_tokens 是该接口的必填字段
		cfg.MaxTokens = defaultAnthropicMaxTokens
	}
	return &anthropicAdapter{cfg: cfg, client: cfg.httpClient()}
}

// Anthropic 接口的请求与响应结构

type anthropicRequest struct {
	Model      string                `json:"model"`                 // 模型名称
	Messages   []anthropicMessage    `json:"messages"`              // 消息列表
	System     string                `json:"system,omitempty"`      // 系统提示词
	MaxTokens  int64                 `json:"max_tokens"`            // 输出上限，必填
	Stream     bool                  `json:"stream,omitempty"`      // 是否流式
	Tools      []anthropicTool       `json:"tools,omitempty"`       // 工具列表
	ToolChoice *anthropicToolChoice  `json:"tool_choice,omitempty"` // 工具选择策略
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"` // 纯文本为 string，多模态为 []anthropicContentBlock
}

type anthropicContentBlock struct {
	Type   string           `json:"type"`
	Text   string           `json:"text,omitempty"`
	Source *anthropicSource `json:"source,omitempty"`
}

type anthropicSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema"`
}

type anthropicToolChoice struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

type anthropicUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// anthropicStreamEvent 覆盖流式响应的各类事件字段，
// 按 data 负载中的 type 字段区分。
type anthropicStreamEvent struct {
	Type    string `json:"type"`
	Index   int    `json:"index"`
	Message *struct {
		Usage anthropicUsage `json:"usage"`
	} `json:"message"`
	ContentBlock *struct {
		Type string `json:"type"`
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"content_block"`
	Delta *struct {
		Type        string `json:"type"`
		Text        string `json:"text"`
		Thinking    string `json:"thinking"`
		PartialJSON string `json:"partial_json"`
		StopReason  string `json:"stop_reason"`
	} `json:"delta"`
	Usage *anthropicUsage     `json:"usage"`
	Error *anthropicWireError `json:"error"`
}

type anthropicWireError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type anthropicCompletion struct {
	ID      string `json:"id"`
	Content []struct {
		Type     string          `json:"type"`
		Text     string          `json:"text"`
		Thinking string          `json:"thinking"`
		ID       string          `json:"id"`
		Name     string          `json:"name"`
		Input    json.RawMessage `json:"input"`
	} `json:"content"`
	Usage anthropicUsage      `json:"usage"`
	Error *anthropicWireError `json:"error"`
}

func (a *anthropicAdapter) buildRequest(req Request, stream bool) anthropicRequest {
	msgs := make([]anthropicMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, formatAnthropicMessage(m))
	}

	out := anthropicRequest{
		Model:     a.cfg.Model,
		Messages:  msgs,
		System:    req.System,
		MaxTokens: a.cfg.MaxTokens,
		Stream:    stream,
	}
	for _, t := range req.Tools {
		out.Tools = append(out.Tools, anthropicTool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.Parameters,
		})
	}
	if req.ForceTool != "" {
		out.ToolChoice = &anthropicToolChoice{Type: "tool", Name: req.ForceTool}
	}
	return out
}

// formatAnthropicMessage 把内部消息转换成 Anthropic 的消息格式。
// 图片以 base64 内容块传递，文件内容追加在文本之后。
func formatAnthropicMessage(m message.Message) anthropicMessage {
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
		return anthropicMessage{Role: role, Content: text}
	}

	var blocks []anthropicContentBlock
	if text != "" {
		blocks = append(blocks, anthropicContentBlock{Type: "text", Text: text})
	}
	for _, img := range m.Images {
		mediaType, data := splitDataURI(img)
		blocks = append(blocks, anthropicContentBlock{
			Type: "image",
			Source: &anthropicSource{
				Type:      "base64",
				MediaType: mediaType,
				Data:      data,
			},
		})
	}
	return anthropicMessage{Role: role, Content: blocks}
}

// splitDataURI 从 data URI 中拆出 MIME 类型与 base64 数据。
// 不带 data 头的输入按 image/jpeg 处理。
func splitDataURI(uri string) (mediaType, data string) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "image/jpeg", uri
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "image/jpeg", uri
	}
	mediaType = strings.TrimSuffix(meta, ";base64")
	if mediaType == "" {
		mediaType = "image/jpeg"
	}
	return mediaType, payload
}

func (a *anthropicAdapter) post(ctx context.Context, body anthropicRequest, stream bool) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("序列化请求失败: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimSuffix(a.cfg.BaseURL, "/")+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("构建请求失败: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", a.cfg.APIKey)
	httpReq.Header.Set("Anthropic-Version", anthropicVersion)
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
		var wrapped struct {
			Error *anthropicWireError `json:"error"`
		}
		if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Error != nil {
			return nil, fmt.Errorf("接口返回错误（状态码 %d）: %s", resp.StatusCode, wrapped.Error.Message)
		}
		return nil, fmt.Errorf("接口返回错误（状态码 %d）: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return resp, nil
}

// Complete 发起一次非流式生成
func (a *anthropicAdapter) Complete(ctx context.Context, req Request) (*Response, error) {
	resp, err := a.post(ctx, a.buildRequest(req, false), false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var completion anthropicCompletion
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}
	if completion.Error != nil {
		return nil, fmt.Errorf("接口返回错误: %s", completion.Error.Message)
	}

	out := &Response{
		Usage: Usage{
			InputTokens:  completion.Usage.InputTokens,
			OutputTokens: completion.Usage.OutputTokens,
		},
	}
	for _, block := range completion.Content {
		switch block.Type {
		case "text":
			out.Content += block.Text
		case "thinking":
			out.Thinking += block.Thinking
		case "tool_use":
			id := block.ID
			if id == "" {
				id = completion.ID
			}
			out.ToolCalls = append(out.ToolCalls, ToolCall{
				ID:        id,
				Name:      block.Name,
				Arguments: string(block.Input),
			})
		}
	}
	return out, nil
}

// Stream 发起一次流式生成
func (a *anthropicAdapter) Stream(ctx context.Context, req Request) <-chan Event {
	events := make(chan Event)
	go func() {
		defer close(events)

		resp, err := a.post(ctx, a.buildRequest(req, true), true)
		if err != nil {
			emitErr(ctx, events, err)
			return
		}
		defer resp.Body.Close()

		// 内容块序号到工具调用序号的映射，
		// 文本块也占用内容块序号，两者并不一致
		toolIndex := map[int]int{}

		dec := newSSEDecoder(resp.Body)
		for {
			data, err := dec.Next()
			if err != nil {
				if err == io.EOF {
					events <- Event{Type: EventComplete}
					return
				}
				emitErr(ctx, events, err)
				return
			}

			var ev anthropicStreamEvent
			if err := json.Unmarshal(bytes.TrimSpace(data), &ev); err != nil {
				emitErr(ctx, events, fmt.Errorf("解析流式响应块失败: %w", err))
				return
			}

			switch ev.Type {
			case "message_start":
				if ev.Message != nil {
					events <- Event{Type: EventUsage, Usage: &Usage{
						InputTokens: ev.Message.Usage.InputTokens,
					}}
				}
			case "content_block_start":
				if ev.ContentBlock != nil && ev.ContentBlock.Type == "tool_use" {
					idx := len(toolIndex)
					toolIndex[ev.Index] = idx
					events <- Event{Type: EventToolCallDelta, ToolCall: &ToolCallDelta{
						Index: idx,
						ID:    ev.ContentBlock.ID,
						Name:  ev.ContentBlock.Name,
					}}
				}
			case "content_block_delta":
				if ev.Delta == nil {
					continue
				}
				switch ev.Delta.Type {
				case "text_delta":
					if ev.Delta.Text != "" {
						events <- Event{Type: EventContentDelta, Content: ev.Delta.Text}
					}
				case "thinking_delta":
					if ev.Delta.Thinking != "" {
						events <- Event{Type: EventThinkingDelta, Thinking: ev.Delta.Thinking}
					}
				case "input_json_delta":
					if idx, ok := toolIndex[ev.Index]; ok && ev.Delta.PartialJSON != "" {
						events <- Event{Type: EventToolCallDelta, ToolCall: &ToolCallDelta{
							Index:     idx,
							Arguments: ev.Delta.PartialJSON,
						}}
					}
				}
			case "message_delta":
				if ev.Usage != nil {
					events <- Event{Type: EventUsage, Usage: &Usage{
						OutputTokens: ev.Usage.OutputTokens,
					}}
				}
			case "message_stop":
				events <- Event{Type: EventComplete}
				return
			case "error":
				msg := "未知错误"
				if ev.Error != nil {
					msg = ev.Error.Message
				}
				emitErr(ctx, events, fmt.Errorf("接口返回错误: %s", msg))
				return
			}
			// ping 等其他事件直接忽略
		}
	}()
	return events
}
