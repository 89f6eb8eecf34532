package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/purpose168/deskchat-cn/internal/provider"
)

func TestSerperSearch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "secret", r.Header.Get("X-API-KEY"))
		w.Write([]byte(`{"organic":[
			{"title":"新闻一","link":"https://example.com/1","snippet":"摘要一"},
			{"title":"新闻二","link":"https://example.com/2","snippet":"摘要二"}
		]}`))
	}))
	defer srv.Close()

	engine := NewSerper("secret", srv.URL, srv.Client())
	results, err := engine.Search(t.Context(), "今日新闻")
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "新闻一", results[0].Title)
	require.Equal(t, "https://example.com/2", results[1].URL)
}

func TestSerperSearchNoResults(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"organic":[]}`))
	}))
	defer srv.Close()

	engine := NewSerper("k", srv.URL, srv.Client())
	_, err := engine.Search(t.Context(), "冷门查询")
	require.ErrorContains(t, err, "没有找到搜索结果")
}

const yahooFixture = `<html><body>
<h3 class="title"><a href="https://r.search.yahoo.com/redir?RU=https%3A%2F%2Fexample.com%2Fa">结果甲</a></h3>
<span class="fc-falcon">摘要甲</span>
<h3 class="title"><a href="https://sg.search.yahoo.com/images/x">Images of something</a></h3>
<h3 class="title"><a href="https://example.com/b">结果乙</a></h3>
<span class="fc-falcon">摘要乙</span>
<h3 class="title"><a href="https://example.com/c">结果丙</a></h3>
<span class="fc-falcon">摘要丙</span>
</body></html>`

func TestYahooParseResults(t *testing.T) {
	t.Parallel()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(yahooFixture))
	require.NoError(t, err)

	y := NewYahoo("7890", 2, http.DefaultClient)
	results := y.parseResults(doc)

	// Images 结果被过滤，count 限制为 2
	require.Len(t, results, 2)
	require.Equal(t, "结果甲", results[0].Title)
	require.Equal(t, "https://example.com/a", results[0].URL)
	require.Equal(t, "摘要甲", results[0].Content)
	require.Equal(t, "结果乙", results[1].Title)
}

func TestEngineFor(t *testing.T) {
	t.Parallel()

	e := EngineFor(EngineSerper, `{"baseurl":"https://google.serper.dev/search","apikey":"k"}`, nil)
	require.IsType(t, &Serper{}, e)

	e = EngineFor(EngineLocalhost, `{"proxy_port":"7890","count":"3"}`, nil)
	yahoo, ok := e.(*Yahoo)
	require.True(t, ok)
	require.Equal(t, 3, yahoo.count)

	// 未知引擎回退到本地代理引擎
	e = EngineFor("Unknown", `{"proxy_port":"7890"}`, nil)
	require.IsType(t, &Yahoo{}, e)
}

type staticSource struct {
	name   string
	config string
}

func (s staticSource) PreferredSearchEngine(context.Context) (string, string, error) {
	return s.name, s.config, nil
}

func TestDispatcherHandleWebSearch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"organic":[{"title":"天气预报","link":"https://example.com/w","snippet":"晴"}]}`))
	}))
	defer srv.Close()

	d := &Dispatcher{
		source: staticSource{name: EngineSerper, config: `{"baseurl":"` + srv.URL + `","apikey":"k"}`},
		client: srv.Client(),
	}

	out := d.HandleWebSearch(t.Context(), []provider.ToolCall{
		{ID: "call_1", Name: WebSearchToolName, Arguments: `{"keywords":"明天天气"}`},
	})
	require.Contains(t, out, "Title: 天气预报")
	require.Contains(t, out, " Url: https://example.com/w")
	require.Contains(t, out, " Abstract: 晴")
}

func TestDispatcherIgnoresOtherCalls(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(staticSource{name: EngineSerper, config: `{}`})

	require.Empty(t, d.HandleWebSearch(t.Context(), nil))
	require.Empty(t, d.HandleWebSearch(t.Context(), []provider.ToolCall{
		{Name: "other_tool", Arguments: `{}`},
	}))
	// 缺少关键词时静默放弃搜索
	require.Empty(t, d.HandleWebSearch(t.Context(), []provider.ToolCall{
		{Name: WebSearchToolName, Arguments: `{}`},
	}))
}

func TestFormatResults(t *testing.T) {
	t.Parallel()

	out := FormatResults([]Result{
		{Title: "甲", URL: "https://a", Content: "一"},
		{Title: "乙", URL: "https://b", Content: "二"},
	})
	require.Equal(t, "Title: 甲\n Url: https://a\n Abstract: 一\n\nTitle: 乙\n Url: https://b\n Abstract: 二\n", out)
}
