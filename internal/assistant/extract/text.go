package extract

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
)

// extractText 读取纯文本文件。非 UTF-8 内容按 GBK 解码，
// 这是国内物业文档最常见的旧编码。
func extractText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read text file: %w", err)
	}

	if utf8.Valid(data) {
		return strings.TrimSpace(string(data)), nil
	}

	decoded, err := simplifiedchinese.GBK.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode gbk: %w", err)
	}
	return strings.TrimSpace(string(decoded)), nil
}
