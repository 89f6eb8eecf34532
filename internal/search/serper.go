package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultSerperBaseURL = "https://google.serper.dev/search"

// Serper 调用 serper.dev 的 Google 搜索接口
type Serper struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewSerper 创建 Serper 引擎，client 为空时使用带超时的默认客户端
func NewSerper(apiKey, baseURL string, client *http.Client) *Serper {
	if baseURL == "" {
		baseURL = defaultSerperBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Serper{apiKey: apiKey, baseURL: baseURL, client: client}
}

// Search 执行一次搜索
func (s *Serper) Search(ctx context.Context, query string) ([]Result, error) {
	payload, err := json.Marshal(map[string]string{"q": query})
	if err != nil {
		return nil, fmt.Errorf("序列化搜索请求失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("构建搜索请求失败: %w", err)
	}
	req.Header.Set("X-API-KEY", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("搜索请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("搜索接口返回状态码 %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
	}

	var body struct {
		Organic []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"organic"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("解析搜索响应失败: %w", err)
	}
	if len(body.Organic) == 0 {
		return nil, fmt.Errorf("没有找到搜索结果")
	}

	results := make([]Result, 0, len(body.Organic))
	for _, item := range body.Organic {
		results = append(results, Result{
			Title:   item.Title,
			URL:     item.Link,
			Content: item.Snippet,
		})
	}
	return results, nil
}
