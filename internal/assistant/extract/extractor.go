// Package extract 把各种格式的文档统一转换为纯文本。
package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Kind 是文件类型的封闭枚举，按扩展名识别。
type Kind int

const (
	KindUnknown Kind = iota
	KindPDF
	KindDocx
	KindXlsx
	KindText
	KindMarkdown
	KindImage
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindPDF:
		return "pdf"
	case KindDocx:
		return "docx"
	case KindXlsx:
		return "xlsx"
	case KindText:
		return "text"
	case KindMarkdown:
		return "markdown"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// DetectKind 按文件扩展名识别类型。
func DetectKind(filename string) Kind {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return KindPDF
	case ".docx":
		return KindDocx
	case ".xlsx":
		return KindXlsx
	case ".txt":
		return KindText
	case ".md", ".markdown":
		return KindMarkdown
	case ".png", ".jpg", ".jpeg", ".bmp", ".tiff", ".webp":
		return KindImage
	default:
		return KindUnknown
	}
}

// ErrUnsupportedKind 表示文件类型无法提取。
var ErrUnsupportedKind = errors.New("unsupported file kind")

// ErrOCRUnavailable 表示 tesseract 不可用，图片无法识别。
var ErrOCRUnavailable = errors.New("ocr engine unavailable")

// Options 配置提取器。
type Options struct {
	// OCRLanguages 传给 tesseract -l。
	OCRLanguages string
	// TesseractPath 指定 tesseract 可执行文件。
	TesseractPath string
}

// Extractor 按类型分发到具体格式的提取实现。
type Extractor struct {
	opts Options
}

// New 创建提取器。
func New(opts Options) *Extractor {
	if opts.OCRLanguages == "" {
		opts.OCRLanguages = "chi_sim+eng"
	}
	if opts.TesseractPath == "" {
		opts.TesseractPath = "tesseract"
	}
	return &Extractor{opts: opts}
}

// ExtractFile 提取文件的纯文本。提取成功但内容为空（如扫描版 PDF）
// 不算错误，由调用方区分处理。
func (e *Extractor) ExtractFile(ctx context.Context, path string, kind Kind) (string, error) {
	switch kind {
	case KindPDF:
		return extractPDF(path)
	case KindDocx:
		return extractDocx(path)
	case KindXlsx:
		return extractXlsx(path)
	case KindText, KindMarkdown:
		return extractText(path)
	case KindImage:
		return e.extractImage(ctx, path)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}
}
