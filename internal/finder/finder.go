// Package finder 按视图名定位模板文件：远程标识交给 remote.Engine，
// 其余名称在本地 view-paths × view-extensions 中查找。结果在进程内缓存，不过期。
package finder

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	gocache "github.com/patrickmn/go-cache"
	"github.com/spf13/afero"
)

// ErrViewNotFound 表示本地路径中没有匹配的模板。
var ErrViewNotFound = errors.New("view not found")

// RemoteResolver 是 Finder 对远程解析器的最小依赖，*remote.Engine 满足该接口。
type RemoteResolver interface {
	IsRemote(name string) bool
	Resolve(ctx context.Context, identifier string) (string, error)
}

// Finder 可被多个 goroutine 共享。
type Finder struct {
	remote     RemoteResolver
	fs         afero.Fs
	paths      []string
	extensions []string
	views      *gocache.Cache
}

// New 构建 Finder。fsys 为 nil 时使用真实文件系统；extensions 为空时使用 ".html"。
func New(remote RemoteResolver, fsys afero.Fs, paths, extensions []string) *Finder {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if len(extensions) == 0 {
		extensions = []string{".html"}
	}
	return &Finder{
		remote:     remote,
		fs:         fsys,
		paths:      append([]string(nil), paths...),
		extensions: normalizeExtensions(extensions),
		views:      gocache.New(gocache.NoExpiration, 0),
	}
}

// Find 返回模板的本地路径，同名的后续查询直接命中缓存。
func (f *Finder) Find(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if cached, ok := f.views.Get(name); ok {
		if path, ok := cached.(string); ok {
			return path, nil
		}
	}

	var (
		path string
		err  error
	)
	if f.remote != nil && f.remote.IsRemote(name) {
		path, err = f.remote.Resolve(ctx, name)
	} else {
		path, err = f.findLocal(name)
	}
	if err != nil {
		return "", err
	}

	f.views.Set(name, path, gocache.NoExpiration)
	return path, nil
}

// Forget 删除单个名称的缓存，下一次 Find 会重新解析。
func (f *Finder) Forget(name string) {
	f.views.Delete(strings.TrimSpace(name))
}

// Flush 清空全部缓存。
func (f *Finder) Flush() {
	f.views.Flush()
}

// Cached 返回当前缓存的条目数。
func (f *Finder) Cached() int {
	return f.views.ItemCount()
}

// findLocal 将 "layouts.main" 视为 "layouts/main"，按 paths 顺序、extensions 顺序尝试。
func (f *Finder) findLocal(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrViewNotFound)
	}
	relative := strings.ReplaceAll(name, ".", "/")
	for _, root := range f.paths {
		for _, ext := range f.extensions {
			candidate := filepath.Join(root, filepath.FromSlash(relative)+ext)
			ok, err := afero.Exists(f.fs, candidate)
			if err != nil {
				return "", err
			}
			if ok {
				return candidate, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s", ErrViewNotFound, name)
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}
