package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const yahooSearchURL = "https://sg.search.yahoo.com/search"

// Yahoo 通过本地 HTTP 代理抓取雅虎搜索结果页
type Yahoo struct {
	count  int
	client *http.Client
}

// NewYahoo 创建雅虎引擎。proxyPort 指定本地代理端口，
// client 为空时构建经由 http://127.0.0.1:<port> 的客户端。
func NewYahoo(proxyPort string, count int, client *http.Client) *Yahoo {
	if count <= 0 {
		count = defaultResultCount
	}
	if client == nil {
		if proxyPort == "" {
			proxyPort = "7890"
		}
		proxyURL := &url.URL{Scheme: "http", Host: "127.0.0.1:" + proxyPort}
		client = &http.Client{
			Timeout:   10 * time.Second,
			Transport: &http.Transport{Proxy: http.ProxyURL(proxyURL)},
		}
	}
	return &Yahoo{count: count, client: client}
}

// Search 执行一次搜索
func (y *Yahoo) Search(ctx context.Context, query string) ([]Result, error) {
	u := yahooSearchURL + "?p=" + url.QueryEscape(query) + "&ei=UTF-8"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("构建搜索请求失败: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.8,zh-TW;q=0.7")

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("搜索请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("搜索接口返回状态码 %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("解析结果页失败: %w", err)
	}
	return y.parseResults(doc), nil
}

// parseResults 从结果页提取搜索结果。
// 标题与链接在 h3.title a 中，摘要在 span.fc-falcon 中，
// 两者按出现顺序一一对应。
func (y *Yahoo) parseResults(doc *goquery.Document) []Result {
	var titles, urls []string
	doc.Find("h3.title a").Each(func(_ int, sel *goquery.Selection) {
		title := strings.TrimSpace(sel.Text())
		if title == "" || strings.Contains(title, "Images") || strings.Contains(title, "Videos") {
			return
		}
		href := sel.AttrOr("href", "")
		href = unwrapRedirect(href)
		if href == "" || strings.Contains(href, "/images/") || strings.Contains(href, "/video/") {
			return
		}
		titles = append(titles, title)
		urls = append(urls, href)
	})

	var contents []string
	doc.Find("span.fc-falcon").Each(func(_ int, sel *goquery.Selection) {
		contents = append(contents, strings.TrimSpace(sel.Text()))
	})

	var results []Result
	for i := 0; i < len(titles) && i < len(contents) && len(results) < y.count; i++ {
		if titles[i] == "" || contents[i] == "" || urls[i] == "" {
			continue
		}
		results = append(results, Result{
			Title:   titles[i],
			URL:     urls[i],
			Content: contents[i],
		})
	}
	return results
}

// unwrapRedirect 从雅虎的跳转链接中还原目标地址（RU 参数）
func unwrapRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("RU"); target != "" {
		return target
	}
	return href
}
