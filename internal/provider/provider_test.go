package provider

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewByChannelCode(t *testing.T) {
	t.Parallel()

	a, err := New("openai", Config{Model: "gpt-4o-mini"})
	require.NoError(t, err)
	require.IsType(t, &openaiAdapter{}, a)

	a, err = New("anthropic", Config{Model: "claude-3-opus-20240229"})
	require.NoError(t, err)
	require.IsType(t, &anthropicAdapter{}, a)

	_, err = New("gemini", Config{})
	require.ErrorIs(t, err, ErrUnknownChannel)
}

func TestUsageMerge(t *testing.T) {
	t.Parallel()

	var u Usage
	u.Merge(Usage{InputTokens: 10})
	u.Merge(Usage{OutputTokens: 4})
	require.Equal(t, int64(10), u.InputTokens)
	require.Equal(t, int64(4), u.OutputTokens)

	// 零值不覆盖已有的统计
	u.Merge(Usage{})
	require.Equal(t, int64(10), u.InputTokens)

	// 新的非零值覆盖旧值
	u.Merge(Usage{OutputTokens: 9})
	require.Equal(t, int64(9), u.OutputTokens)
}
