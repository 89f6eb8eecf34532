// Package search 实现联网搜索：按首选引擎分发查询并格式化结果。
package search

import (
	"context"
	"net/http"

	"github.com/tidwall/gjson"
)

// Result 是一条搜索结果
type Result struct {
	Title   string `json:"title"`   // 标题
	URL     string `json:"url"`     // 链接
	Content string `json:"content"` // 摘要
}

// Engine 是搜索引擎的统一接口
type Engine interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// 引擎名称，与 search_engines 表中的记录对应
const (
	EngineLocalhost = "Localhost"
	EngineSerper    = "Serper"
)

const defaultResultCount = 5

// EngineFor 按名称和 JSON 配置构建搜索引擎。
// 未知名称回退到本地代理引擎。
func EngineFor(name, config string, client *http.Client) Engine {
	switch name {
	case EngineSerper:
		return NewSerper(
			gjson.Get(config, "apikey").String(),
			gjson.Get(config, "baseurl").String(),
			client,
		)
	case EngineLocalhost:
		count := int(gjson.Get(config, "count").Int())
		if count <= 0 {
			count = defaultResultCount
		}
		return NewYahoo(gjson.Get(config, "proxy_port").String(), count, client)
	default:
		return NewYahoo(gjson.Get(config, "proxy_port").String(), defaultResultCount, client)
	}
}
