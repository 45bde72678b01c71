package remote

import (
	"io"
	"net/http"
)

// Payload 是待落盘的内容；无论来自流式响应还是静态替换，最终都会转换为字节。
type Payload interface {
	Content() ([]byte, error)
}

// ResponsePayload 包装上游原始响应，读取完毕后关闭 Body。
type ResponsePayload struct {
	Response *http.Response
}

func (p ResponsePayload) Content() ([]byte, error) {
	if p.Response == nil || p.Response.Body == nil {
		return nil, nil
	}
	defer p.Response.Body.Close()
	return io.ReadAll(p.Response.Body)
}

// StaticPayload 是已经物化的内容，例如处理器返回的替换页面。
type StaticPayload []byte

func (p StaticPayload) Content() ([]byte, error) {
	return []byte(p), nil
}
