package provider

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSSEDecoder(t *testing.T) {
	t.Parallel()

	body := ": 注释行\n" +
		"event: message\n" +
		"data: 第一行\n" +
		"data: 第二行\n" +
		"\n" +
		"data: 单独事件\n" +
		"\n"
	dec := newSSEDecoder(strings.NewReader(body))

	ev, err := dec.Next()
	require.NoError(t, err)
	require.Equal(t, "第一行\n第二行", string(ev))

	ev, err = dec.Next()
	require.NoError(t, err)
	require.Equal(t, "单独事件", string(ev))

	_, err = dec.Next()
	require.Equal(t, io.EOF, err)
}

func TestSSEDecoderTruncatedStream(t *testing.T) {
	t.Parallel()

	// 连接在事件中途断开时仍返回已累积的数据
	dec := newSSEDecoder(strings.NewReader("data: 半截"))
	ev, err := dec.Next()
	require.NoError(t, err)
	require.Equal(t, "半截", string(ev))

	_, err = dec.Next()
	require.Equal(t, io.EOF, err)
}
