package search

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/purpose168/deskchat-cn/internal/provider"
)

// WebSearchToolName 是暴露给模型的搜索工具名
const WebSearchToolName = "web_search"

// WebSearchTool 是暴露给模型的搜索工具定义
var WebSearchTool = provider.ToolDefinition{
	Name:        WebSearchToolName,
	Description: "Generate search keywords based on user queries and perform the search.",
	Parameters: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"keywords": map[string]any{
				"type":        "string",
				"description": "Key search terms extracted from user queries.",
			},
		},
		"required": []string{"keywords"},
	},
}

// SettingSource 提供首选搜索引擎的名称与 JSON 配置
type SettingSource interface {
	PreferredSearchEngine(ctx context.Context) (name, config string, err error)
}

// Dispatcher 把模型发出的搜索工具调用分发给首选引擎
type Dispatcher struct {
	source SettingSource
	client *http.Client // 为空时各引擎使用自己的默认客户端
}

// NewDispatcher 创建搜索分发器
func NewDispatcher(source SettingSource) *Dispatcher {
	return &Dispatcher{source: source}
}

// HandleWebSearch 处理工具调用列表中的搜索请求，
// 返回格式化后的搜索结果文本。没有可处理的调用、
// 或搜索失败时返回空串，生成流程继续而不中断。
func (d *Dispatcher) HandleWebSearch(ctx context.Context, calls []provider.ToolCall) string {
	var searchCall *provider.ToolCall
	for i := range calls {
		if calls[i].Name == WebSearchToolName {
			searchCall = &calls[i]
			break
		}
	}
	if searchCall == nil {
		return ""
	}

	keywords := gjson.Get(searchCall.Arguments, "keywords").String()
	if keywords == "" {
		slog.Warn("搜索调用缺少关键词", "arguments", searchCall.Arguments)
		return ""
	}

	name, config, err := d.source.PreferredSearchEngine(ctx)
	if err != nil {
		slog.Error("获取首选搜索引擎失败", "error", err)
		return ""
	}

	engine := EngineFor(name, config, d.client)
	results, err := engine.Search(ctx, keywords)
	if err != nil {
		slog.Error("搜索失败", "engine", name, "keywords", keywords, "error", err)
		return ""
	}
	return FormatResults(results)
}

// FormatResults 把搜索结果格式化为提供给模型的文本块
func FormatResults(results []Result) string {
	blocks := make([]string, 0, len(results))
	for _, r := range results {
		blocks = append(blocks, fmt.Sprintf("Title: %s\n Url: %s\n Abstract: %s\n", r.Title, r.URL, r.Content))
	}
	return strings.Join(blocks, "\n")
}
