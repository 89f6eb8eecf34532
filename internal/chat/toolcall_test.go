package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/purpose168/deskchat-cn/internal/provider"
)

func TestAccumulatorSplitFragments(t *testing.T) {
	t.Parallel()

	acc := newToolCallAccumulator()
	acc.Add(provider.ToolCallDelta{Index: 0, ID: "call_1", Name: "web_search"})
	require.Empty(t, acc.Completed())

	acc.Add(provider.ToolCallDelta{Index: 0, Arguments: `{"keywords":`})
	require.Empty(t, acc.Completed())

	acc.Add(provider.ToolCallDelta{Index: 0, Arguments: `"天气"}`})
	completed := acc.Completed()
	require.Len(t, completed, 1)
	require.Equal(t, "call_1", completed[0].ID)
	require.Equal(t, "web_search", completed[0].Name)
	require.Equal(t, `{"keywords":"天气"}`, completed[0].Arguments)
}

func TestAccumulatorInterleavedIndexes(t *testing.T) {
	t.Parallel()

	acc := newToolCallAccumulator()
	acc.Add(provider.ToolCallDelta{Index: 0, ID: "a", Name: "web_search", Arguments: `{"keywords":`})
	acc.Add(provider.ToolCallDelta{Index: 1, ID: "b", Name: "web_search", Arguments: `{"keywords":"乙"}`})
	acc.Add(provider.ToolCallDelta{Index: 0, Arguments: `"甲"}`})

	completed := acc.Completed()
	require.Len(t, completed, 2)
	require.Equal(t, "b", completed[0].ID)
	require.Equal(t, "a", completed[1].ID)
}

func TestAccumulatorPartialNeverCompletes(t *testing.T) {
	t.Parallel()

	acc := newToolCallAccumulator()
	acc.Add(provider.ToolCallDelta{Index: 0, ID: "c", Name: "web_search", Arguments: `{"keywords":"未闭合`})
	require.Empty(t, acc.Completed())
}

func TestAccumulatorOverflowDropsCall(t *testing.T) {
	t.Parallel()

	acc := newToolCallAccumulator()
	acc.Add(provider.ToolCallDelta{Index: 0, ID: "d", Name: "web_search", Arguments: `{"keywords":"`})
	acc.Add(provider.ToolCallDelta{Index: 0, Arguments: strings.Repeat("x", maxToolCallArgs+1)})
	// 超限后即使补上合法结尾也不再完成
	acc.Add(provider.ToolCallDelta{Index: 0, Arguments: `"}`})
	require.Empty(t, acc.Completed())
}

func TestAccumulatorDroppedIndexStaysDead(t *testing.T) {
	t.Parallel()

	acc := newToolCallAccumulator()
	acc.Add(provider.ToolCallDelta{Index: 0, ID: "e", Name: "web_search", Arguments: `{"keywords":"`})
	acc.Add(provider.ToolCallDelta{Index: 0, Arguments: strings.Repeat("y", maxToolCallArgs+1)})
	// 放弃后的尾片段即便自身是合法 JSON，也不得拼成新的调用
	acc.Add(provider.ToolCallDelta{Index: 0, Arguments: `"尾巴"`})
	require.Empty(t, acc.Completed())

	// 其他序号不受影响
	acc.Add(provider.ToolCallDelta{Index: 1, ID: "f", Name: "web_search", Arguments: `{"keywords":"好"}`})
	require.Len(t, acc.Completed(), 1)
	require.Equal(t, "f", acc.Completed()[0].ID)
}
