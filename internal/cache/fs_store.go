package cache

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// NewStore 以 root 为根目录构建缓存存储，整站复用一份实例。fsys 为 nil 时使用真实文件系统。
func NewStore(fsys afero.Fs, root string) (Store, error) {
	if root == "" {
		return nil, errors.New("view folder required")
	}
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &fileStore{
		fs:   fsys,
		root: filepath.Clean(root),
	}, nil
}

// fileStore 不做任何加锁：并发的首次抓取可能重复写入同一文件，内容幂等。
type fileStore struct {
	fs   afero.Fs
	root string
}

func (s *fileStore) Root() string {
	return s.root
}

func (s *fileStore) EnsureDir(namespace string) (string, error) {
	if strings.TrimSpace(namespace) == "" {
		return "", ErrNamespaceRequired
	}
	dir := filepath.Join(s.root, namespace)

	err := s.fs.MkdirAll(dir, 0o755)
	if err == nil || errors.Is(err, fs.ErrExist) {
		return dir, nil
	}
	// 另一个进程可能恰好在失败前创建了目录。
	if info, statErr := s.fs.Stat(dir); statErr == nil && info.IsDir() {
		return dir, nil
	}
	return "", &DirectoryCreateError{Path: dir, Err: err}
}

func (s *fileStore) Path(namespace, filename string) string {
	return filepath.Join(s.root, namespace, filename)
}

func (s *fileStore) Exists(path string) (bool, error) {
	info, err := s.fs.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

func (s *fileStore) Put(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil && !errors.Is(err, fs.ErrExist) {
		return &DirectoryCreateError{Path: dir, Err: err}
	}

	tempFile, err := afero.TempFile(s.fs, dir, ".template-*")
	if err != nil {
		return err
	}
	tempName := tempFile.Name()

	_, err = tempFile.Write(data)
	closeErr := tempFile.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = s.fs.Remove(tempName)
		return err
	}

	if err := s.fs.Rename(tempName, path); err != nil {
		_ = s.fs.Remove(tempName)
		return err
	}
	return nil
}
