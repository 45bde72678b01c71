package cache

import (
	"errors"
	"fmt"
)

// Store 负责远程模板缓存目录的寻址与落盘。磁盘布局遵循：
//
//	<view-folder>/<namespace>/<filename>    # 抓取到的模板正文
//
// 每个条目仅由一个文件组成，存在即命中。
type Store interface {
	// EnsureDir 创建命名空间目录并返回其路径；目录已存在视为成功。
	EnsureDir(namespace string) (string, error)

	// Path 拼接命名空间目录与文件名，不触碰文件系统。
	Path(namespace, filename string) string

	// Exists 报告候选缓存文件是否已存在。
	Exists(path string) (bool, error)

	// Put 覆盖写入正文，最后一次写入生效。
	Put(path string, data []byte) error

	// Root 返回缓存根目录。
	Root() string
}

var (
	// ErrNamespaceRequired 表示寻址时缺少命名空间。
	ErrNamespaceRequired = errors.New("namespace required")
	// ErrDirectoryCreate 是 DirectoryCreateError 对应的哨兵错误。
	ErrDirectoryCreate = errors.New("directory was not created")
)

// DirectoryCreateError 表示命名空间目录创建失败，且失败原因不是“已存在”。
type DirectoryCreateError struct {
	Path string
	Err  error
}

func (e *DirectoryCreateError) Error() string {
	return fmt.Sprintf("directory %q was not created: %v", e.Path, e.Err)
}

func (e *DirectoryCreateError) Unwrap() error {
	return e.Err
}

func (e *DirectoryCreateError) Is(target error) bool {
	return target == ErrDirectoryCreate
}
