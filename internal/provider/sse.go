package provider

import (
	"bufio"
	"bytes"
	"io"
)

// sseDecoder 解析 text/event-stream 响应体，
// 把每个事件的 data 行拼接后逐条返回。
type sseDecoder struct {
	r *bufio.Reader
}

func newSSEDecoder(r io.Reader) *sseDecoder {
	return &sseDecoder{r: bufio.NewReaderSize(r, 64*1024)}
}

// Next 返回下一个事件拼接后的 data 负载。
// 多个 data 行按 SSE 规范以 \n 连接。
func (d *sseDecoder) Next() ([]byte, error) {
	var dataLines [][]byte
	for {
		line, err := d.r.ReadBytes('\n')
		if err != nil {
			// 连接在事件中途断开时，先返回已累积的数据
			if len(line) > 0 {
				line = bytes.TrimRight(line, "\r\n")
				if len(line) > 0 {
					dataLines = appendDataLine(dataLines, line)
				}
			}
			if len(dataLines) > 0 {
				return bytes.Join(dataLines, []byte("\n")), nil
			}
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, err
		}

		line = bytes.TrimRight(line, "\r\n")
		if len(line) == 0 {
			if len(dataLines) == 0 {
				continue
			}
			return bytes.Join(dataLines, []byte("\n")), nil
		}

		// 注释行
		if line[0] == ':' {
			continue
		}
		dataLines = appendDataLine(dataLines, line)
	}
}

func appendDataLine(dst [][]byte, line []byte) [][]byte {
	if !bytes.HasPrefix(line, []byte("data:")) {
		return dst
	}
	val := line[len("data:"):]
	if len(val) > 0 && val[0] == ' ' {
		val = val[1:]
	}
	return append(dst, append([]byte(nil), val...))
}
