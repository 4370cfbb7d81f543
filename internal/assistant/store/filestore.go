package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FileStore 把上传的原始文件保存在本地磁盘。
// 文件名带 uuid 前缀，避免同名覆盖。
type FileStore struct {
	dir string
}

// NewFileStore 创建文件存储，目录不存在时创建。
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Save 保存文件内容，返回相对存储路径。
func (s *FileStore) Save(filename string, r io.Reader) (string, error) {
	name := uuid.NewString() + "_" + filepath.Base(filename)
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write file: %w", err)
	}
	return name, nil
}

// Open 打开已保存的文件。
func (s *FileStore) Open(name string) (*os.File, error) {
	return os.Open(s.Path(name))
}

// Remove 删除已保存的文件，文件不存在时不报错。
func (s *FileStore) Remove(name string) error {
	err := os.Remove(s.Path(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// Path 返回文件的绝对路径。
func (s *FileStore) Path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}
