// Package tokens 在服务商未返回用量时本地估算 token 数。
package tokens

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"github.com/purpose168/deskchat-cn/internal/csync"
	"github.com/purpose168/deskchat-cn/internal/message"
)

// encodings 进程级词表缓存，按编码名复用已加载的词表。
// 加载失败时缓存 nil，避免反复重试。
var encodings = csync.NewMap[string, *tiktoken.Tiktoken]()

// Estimator 基于 tiktoken 词表估算 token 数
type Estimator struct {
	name string
}

// NewEstimator 创建估算器。encoding 为空时使用 cl100k_base，
// 与多数近代模型的词表兼容。
func NewEstimator(encoding string) *Estimator {
	if encoding == "" {
		encoding = "cl100k_base"
	}
	return &Estimator{name: encoding}
}

// ForModel 返回与模型匹配的估算器
func ForModel(model string) *Estimator {
	if strings.HasPrefix(model, "gpt-4o") || strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") {
		return NewEstimator("o200k_base")
	}
	return NewEstimator("cl100k_base")
}

// Count 返回文本的估算 token 数。
// 词表加载失败时退化为按字符数粗略估算。
func (e *Estimator) Count(text string) int64 {
	if text == "" {
		return 0
	}
	enc := encodings.GetOrSet(e.name, func() *tiktoken.Tiktoken {
		enc, err := tiktoken.GetEncoding(e.name)
		if err != nil {
			slog.Warn("加载 tiktoken 词表失败，退化为粗略估算", "encoding", e.name, "error", err)
			return nil
		}
		return enc
	})
	if enc == nil {
		// 经验值：平均每个 token 约 4 个字符
		n := int64(utf8.RuneCountInString(text) / 4)
		if n == 0 {
			n = 1
		}
		return n
	}
	return int64(len(enc.Encode(text, nil, nil)))
}

// CountMessages 估算一组消息的输入 token 总数，只统计正文
func (e *Estimator) CountMessages(msgs []message.Message) int64 {
	var total int64
	for _, m := range msgs {
		total += e.Count(m.Content)
	}
	return total
}
