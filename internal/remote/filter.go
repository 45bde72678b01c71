package remote

import "strings"

// CheckFilters 依次执行后缀过滤与禁止路径过滤，二者都只看 path 部分（去掉查询串），
// 并且都在映射、修饰器、缓存与网络之前完成。
func CheckFilters(path string, route *HostRoute) error {
	if err := checkIgnoredSuffix(path, route.IgnoredSuffixes); err != nil {
		return err
	}
	return checkForbidden(path, route.ForbiddenPaths)
}

func checkIgnoredSuffix(path string, suffixes map[string]struct{}) error {
	ext, ok := extension(urlPath(path))
	if !ok {
		return nil
	}
	if _, hit := suffixes[ext]; hit {
		return &IgnoredSuffixError{Path: path, Suffix: ext}
	}
	return nil
}

func checkForbidden(path string, forbidden map[string]struct{}) error {
	if len(forbidden) == 0 {
		return nil
	}
	clean := urlPath(path)
	dir := dirname(clean)
	if _, hit := forbidden[dir]; hit {
		return &URLForbiddenError{Path: path, Matched: dir}
	}
	base := basename(clean)
	if _, hit := forbidden[base]; hit {
		return &URLForbiddenError{Path: path, Matched: base}
	}
	return nil
}

// urlPath 截掉查询串与片段。
func urlPath(raw string) string {
	if idx := strings.IndexAny(raw, "?#"); idx >= 0 {
		return raw[:idx]
	}
	return raw
}

// extension 返回末段最后一个 "." 之后的内容，大小写保持不变。
func extension(p string) (string, bool) {
	base := basename(p)
	idx := strings.LastIndexByte(base, '.')
	if idx < 0 {
		return "", false
	}
	return base[idx+1:], true
}

// basename 忽略末尾的 "/"，"a/b/" 的末段为 "b"。
func basename(p string) string {
	trimmed := strings.TrimRight(p, "/")
	if trimmed == "" {
		return ""
	}
	if idx := strings.LastIndexByte(trimmed, '/'); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}

// dirname 返回完整目录部分：无目录时为 "."，根目录为 "/"，末尾 "/" 在计算前移除。
func dirname(p string) string {
	if p == "" {
		return ""
	}
	trimmed := strings.TrimRight(p, "/")
	if trimmed == "" {
		return "/"
	}
	idx := strings.LastIndexByte(trimmed, '/')
	if idx < 0 {
		return "."
	}
	dir := strings.TrimRight(trimmed[:idx], "/")
	if dir == "" {
		return "/"
	}
	return dir
}
