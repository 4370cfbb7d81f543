package extract

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// extractImage 调用本机 tesseract 做 OCR。
// tesseract 未安装时返回 ErrOCRUnavailable，由上层降级处理。
func (e *Extractor) extractImage(ctx context.Context, path string) (string, error) {
	bin, err := exec.LookPath(e.opts.TesseractPath)
	if err != nil {
		return "", fmt.Errorf("%w: %s not found", ErrOCRUnavailable, e.opts.TesseractPath)
	}

	cmd := exec.CommandContext(ctx, bin, path, "stdout", "-l", e.opts.OCRLanguages)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	return strings.TrimSpace(stdout.String()), nil
}
