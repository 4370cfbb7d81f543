// Package textutil 提供文本切分与截断工具，切分以 rune 计数，保证中文不被截断在字节中间。
package textutil

import "unicode/utf8"

// SplitChunks 将文本按固定 rune 数切分为连续、不重叠的片段。
// 最后一个片段保留剩余部分，可能短于 size。空文本返回 nil。
// 片段按序拼接等于原文。
func SplitChunks(text string, size int) []string {
	if text == "" || size <= 0 {
		return nil
	}

	runes := []rune(text)
	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

// TruncateRunes 返回 s 的前 n 个 rune；s 不足 n 时原样返回。
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
