package cache

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/zeebo/blake3"
)

// DefaultFilenameSuffix 是缓存文件的默认后缀。
const DefaultFilenameSuffix = ".template"

// FilenameStrategy 根据修饰后的相对 URL 计算缓存文件名。
type FilenameStrategy interface {
	Filename(url string) string
}

// FilenameFunc 将普通函数适配为 FilenameStrategy。
type FilenameFunc func(url string) string

// Filename 使 FilenameFunc 满足 FilenameStrategy。
func (f FilenameFunc) Filename(url string) string {
	return f(url)
}

// SlugFilename 输出 slug(url)+Suffix，例如 "/foo/bar?lang=de" → "foobarlangde.template"。
type SlugFilename struct {
	Suffix string
}

func (s SlugFilename) Filename(url string) string {
	return Slugify(url) + suffixOrDefault(s.Suffix)
}

// HashFilename 使用 BLAKE3-256 的十六进制摘要作为文件名，避免不同路由 slug 后碰撞。
type HashFilename struct {
	Suffix string
}

func (h HashFilename) Filename(url string) string {
	sum := blake3.Sum256([]byte(url))
	return hex.EncodeToString(sum[:]) + suffixOrDefault(h.Suffix)
}

// NewFilenameStrategy 根据 filename-strategy 配置选择实现。
func NewFilenameStrategy(name, suffix string) (FilenameStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "slug":
		return SlugFilename{Suffix: suffix}, nil
	case "hash":
		return HashFilename{Suffix: suffix}, nil
	default:
		return nil, fmt.Errorf("unsupported filename strategy: %s", name)
	}
}

func suffixOrDefault(suffix string) string {
	if suffix == "" {
		return DefaultFilenameSuffix
	}
	return suffix
}
