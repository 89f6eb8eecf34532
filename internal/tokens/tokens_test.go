package tokens

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/purpose168/deskchat-cn/internal/message"
)

func TestCountMonotonic(t *testing.T) {
	t.Parallel()

	e := NewEstimator("")
	require.Equal(t, int64(0), e.Count(""))

	short := e.Count("hello")
	long := e.Count(strings.Repeat("hello world ", 50))
	require.Greater(t, short, int64(0))
	require.Greater(t, long, short)
}

func TestCountMessages(t *testing.T) {
	t.Parallel()

	e := NewEstimator("")
	msgs := []message.Message{
		message.NewUserMessage("第一条消息"),
		message.NewAssistantMessage("第二条消息"),
	}
	total := e.CountMessages(msgs)
	require.Equal(t, e.Count("第一条消息")+e.Count("第二条消息"), total)
}

func TestForModel(t *testing.T) {
	t.Parallel()

	require.Equal(t, "o200k_base", ForModel("gpt-4o-mini").name)
	require.Equal(t, "o200k_base", ForModel("o1-preview").name)
	require.Equal(t, "cl100k_base", ForModel("claude-3-opus-20240229").name)
	require.Equal(t, "cl100k_base", ForModel("deepseek-chat").name)
}
