package remote

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/any-hub/remote-view/internal/cache"
)

// Sentinel errors; every typed error below matches exactly one of them via errors.Is.
var (
	ErrNotRemote          = errors.New("identifier is not remote")
	ErrInvalidIdentifier  = errors.New("invalid identifier")
	ErrHostNotConfigured  = errors.New("remote host not configured")
	ErrIgnoredSuffix      = errors.New("url has an ignored suffix")
	ErrURLForbidden       = errors.New("url is forbidden")
	ErrRemoteFetch        = errors.New("remote template not found")
	ErrInvalidModifier    = errors.New("invalid url modifier")
	ErrInvalidHandlerCode = errors.New("invalid response handler status code")
)

// InvalidIdentifierError 表示命名空间语法无法解析出可用片段。
type InvalidIdentifierError struct {
	Identifier string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("view [%s] has an invalid name", e.Identifier)
}

func (e *InvalidIdentifierError) Is(target error) bool { return target == ErrInvalidIdentifier }

// HostNotConfiguredError 携带缺失的命名空间名称。
type HostNotConfiguredError struct {
	Namespace string
}

func (e *HostNotConfiguredError) Error() string {
	return fmt.Sprintf("no remote host configured for namespace # %s", e.Namespace)
}

func (e *HostNotConfiguredError) Is(target error) bool { return target == ErrHostNotConfigured }

// IgnoredSuffixError 表示路径扩展名命中忽略列表。
type IgnoredSuffixError struct {
	Path   string
	Suffix string
}

func (e *IgnoredSuffixError) Error() string {
	return fmt.Sprintf("URL # %s has an ignored suffix", e.Path)
}

func (e *IgnoredSuffixError) Is(target error) bool { return target == ErrIgnoredSuffix }

// URLForbiddenError 表示路径的目录或末段命中禁止列表。
type URLForbiddenError struct {
	Path    string
	Matched string
}

func (e *URLForbiddenError) Error() string {
	return fmt.Sprintf("URL # %s is forbidden", e.Path)
}

func (e *URLForbiddenError) Is(target error) bool { return target == ErrURLForbidden }

// StatusCode 禁止访问按 404 对外呈现。
func (e *URLForbiddenError) StatusCode() int { return http.StatusNotFound }

// RemoteFetchError 归一化所有回源失败；Code 固定为 404，调用方无法仅凭类型区分传输错误与真实 404。
type RemoteFetchError struct {
	URL  string
	Code int
	Err  error
}

func newRemoteFetchError(url string, err error) *RemoteFetchError {
	return &RemoteFetchError{URL: url, Code: http.StatusNotFound, Err: err}
}

func (e *RemoteFetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("remote template %s not found", e.URL)
	}
	return fmt.Sprintf("remote template %s not found: %v", e.URL, e.Err)
}

func (e *RemoteFetchError) Is(target error) bool { return target == ErrRemoteFetch }

func (e *RemoteFetchError) Unwrap() error { return e.Err }

// StatusCode 返回固定的 “not found” 语义码。
func (e *RemoteFetchError) StatusCode() int { return e.Code }

// InvalidModifierError 表示修饰链中存在不满足约定的修饰器。
type InvalidModifierError struct {
	Index  int
	Name   string
	Reason string
	Err    error
}

func (e *InvalidModifierError) Error() string {
	label := fmt.Sprintf("#%d", e.Index)
	if e.Name != "" {
		label = fmt.Sprintf("#%d (%s)", e.Index, e.Name)
	}
	if e.Err != nil {
		return fmt.Sprintf("url modifier %s is invalid: %s: %v", label, e.Reason, e.Err)
	}
	return fmt.Sprintf("url modifier %s is invalid: %s", label, e.Reason)
}

func (e *InvalidModifierError) Is(target error) bool { return target == ErrInvalidModifier }

func (e *InvalidModifierError) Unwrap() error { return e.Err }

// DirectoryCreateError 复用缓存层的目录创建错误。
type DirectoryCreateError = cache.DirectoryCreateError

// ErrDirectoryCreate 匹配任何 DirectoryCreateError。
var ErrDirectoryCreate = cache.ErrDirectoryCreate
