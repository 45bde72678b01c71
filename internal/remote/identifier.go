package remote

import (
	"strings"

	"github.com/any-hub/remote-view/internal/config"
)

// NamespaceSeparator 分隔命名空间与路径，例如 "specific::dasLamm"。
const NamespaceSeparator = "::"

// Identifier 是解析后的远程标识，构造后不再修改。
type Identifier struct {
	Namespace string
	Path      string
}

// String 还原为不带分隔前缀的 "<namespace>::<path>" 形式。
func (id Identifier) String() string {
	return id.Namespace + NamespaceSeparator + id.Path
}

// Parser 识别并拆分带分隔前缀的远程标识。
type Parser struct {
	delimiter string
}

// NewParser 使用配置的 remote-delimiter 构建解析器，空值回退到 "remote:"。
func NewParser(delimiter string) Parser {
	delimiter = strings.TrimSpace(delimiter)
	if delimiter == "" {
		delimiter = "remote:"
	}
	return Parser{delimiter: delimiter}
}

// Delimiter 返回当前识别的前缀。
func (p Parser) Delimiter() string {
	return p.delimiter
}

// IsRemote 报告 raw 是否以分隔前缀开头。
func (p Parser) IsRemote(raw string) bool {
	return strings.HasPrefix(strings.TrimSpace(raw), p.delimiter)
}

// Parse 去掉前缀并按 "::" 拆分；只有一个片段时命名空间为 "default"，
// 多于两个片段时首段为命名空间，其余片段原样拼回路径。
// 命名空间或路径之一为空仍视为有效："::foo" 交给 Host 查找（空命名空间必然未配置），
// "specific::" 指向 Host 根路径。两者都为空时才返回 InvalidIdentifierError。
func (p Parser) Parse(raw string) (Identifier, error) {
	name := strings.TrimSpace(strings.Replace(strings.TrimSpace(raw), p.delimiter, "", 1))
	if name == "" {
		return Identifier{}, &InvalidIdentifierError{Identifier: raw}
	}

	segments := strings.Split(name, NamespaceSeparator)
	if len(segments) < 2 {
		return Identifier{Namespace: config.DefaultNamespace, Path: name}, nil
	}

	namespace := strings.TrimSpace(segments[0])
	path := strings.TrimSpace(strings.Join(segments[1:], NamespaceSeparator))
	if namespace == "" && path == "" {
		return Identifier{}, &InvalidIdentifierError{Identifier: raw}
	}
	return Identifier{Namespace: namespace, Path: path}, nil
}

// Remote 拼出 "<delimiter><namespace>::<path>"，供预热等调用方构造标识。
func (p Parser) Remote(namespace, path string) string {
	return p.delimiter + namespace + NamespaceSeparator + path
}
