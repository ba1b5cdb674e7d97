package generator

import "strings"

// PostProcess 校验模型输出：去掉首尾空白，空文本视为失败。
func PostProcess(raw string) (string, error) {
	text := strings.TrimSpace(stripFence(raw))
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// stripFence 去掉模型偶尔包裹整篇输出的 ```markdown 代码块。
func stripFence(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") || !strings.HasSuffix(t, "```") || len(t) < 6 {
		return s
	}
	body := strings.TrimSuffix(t, "```")
	nl := strings.IndexByte(body, '\n')
	if nl < 0 {
		return s
	}
	return body[nl+1:]
}
