package extract

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/simplifiedchinese"
)

func TestDetectKind(t *testing.T) {
	tests := []struct {
		filename string
		want     Kind
	}{
		{"条例.pdf", KindPDF},
		{"notice.PDF", KindPDF},
		{"合同.docx", KindDocx},
		{"收费明细.xlsx", KindXlsx},
		{"说明.txt", KindText},
		{"README.md", KindMarkdown},
		{"扫描件.jpg", KindImage},
		{"photo.png", KindImage},
		{"archive.zip", KindUnknown},
		{"noext", KindUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectKind(tt.filename), tt.filename)
	}
}

func TestExtractFileUnknownKind(t *testing.T) {
	e := New(Options{})
	_, err := e.ExtractFile(context.Background(), "whatever.bin", KindUnknown)
	assert.ErrorIs(t, err, ErrUnsupportedKind)
}

func TestExtractTextUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notice.txt")
	require.NoError(t, os.WriteFile(path, []byte("各位业主：\n明日停水检修。\n"), 0o644))

	e := New(Options{})
	got, err := e.ExtractFile(context.Background(), path, KindText)
	require.NoError(t, err)
	assert.Equal(t, "各位业主：\n明日停水检修。", got)
}

func TestExtractTextGBKFallback(t *testing.T) {
	raw, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte("物业费缴纳通知"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "gbk.txt")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	e := New(Options{})
	got, err := e.ExtractFile(context.Background(), path, KindText)
	require.NoError(t, err)
	assert.Equal(t, "物业费缴纳通知", got)
}

func writeTestDocx(t *testing.T, paragraphs []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)

	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`))
	require.NoError(t, err)
	for _, p := range paragraphs {
		_, err = w.Write([]byte(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`))
		require.NoError(t, err)
	}
	_, err = w.Write([]byte(`</w:body></w:document>`))
	require.NoError(t, err)

	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func TestExtractDocx(t *testing.T) {
	path := writeTestDocx(t, []string{"第一条 电梯使用规范", "第二条 维保周期"})

	e := New(Options{})
	got, err := e.ExtractFile(context.Background(), path, KindDocx)
	require.NoError(t, err)
	assert.Equal(t, "第一条 电梯使用规范\n第二条 维保周期", got)
}

func TestExtractDocxMissingDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	e := New(Options{})
	_, err = e.ExtractFile(context.Background(), path, KindDocx)
	assert.Error(t, err)
}

func TestExtractXlsx(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fees.xlsx")
	wb := excelize.NewFile()
	require.NoError(t, wb.SetCellValue("Sheet1", "A1", "楼栋"))
	require.NoError(t, wb.SetCellValue("Sheet1", "B1", "物业费"))
	require.NoError(t, wb.SetCellValue("Sheet1", "A2", "1号楼"))
	require.NoError(t, wb.SetCellValue("Sheet1", "B2", "2.5元/㎡"))
	require.NoError(t, wb.SaveAs(path))
	require.NoError(t, wb.Close())

	e := New(Options{})
	got, err := e.ExtractFile(context.Background(), path, KindXlsx)
	require.NoError(t, err)
	assert.Contains(t, got, "楼栋\t物业费")
	assert.Contains(t, got, "1号楼\t2.5元/㎡")
}

func TestExtractImageWithoutTesseract(t *testing.T) {
	e := New(Options{TesseractPath: "tesseract-definitely-not-installed"})
	_, err := e.ExtractFile(context.Background(), "scan.png", KindImage)
	assert.ErrorIs(t, err, ErrOCRUnavailable)
}

func TestExtractPDFInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf"), 0o644))

	e := New(Options{})
	_, err := e.ExtractFile(context.Background(), path, KindPDF)
	assert.Error(t, err)
}
