package config

import "fmt"

// FieldError 提供字段路径与错误原因，便于 CLI 向用户反馈。
type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// newFieldError 创建包含字段路径与原因的 error，便于 CLI 定位。
func newFieldError(field, reason string) error {
	return FieldError{Field: field, Reason: reason}
}

// hostField 用于拼接 Host 级字段路径，输出 hosts.<ns>.field 形式。
func hostField(name, field string) string {
	if name == "" {
		return fmt.Sprintf("hosts.?.%s", field)
	}
	return fmt.Sprintf("hosts.%s.%s", name, field)
}

// indexedField 拼接列表项字段路径，例如 url-modifiers[2].query。
func indexedField(list string, idx int, field string) string {
	return fmt.Sprintf("%s[%d].%s", list, idx, field)
}
