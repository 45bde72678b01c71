package remote

import (
	"reflect"
	"strings"
)

// URLModifier 在映射之后依次作用于路由，追加查询片段。
type URLModifier interface {
	// Applicable 判断当前解析是否需要追加片段。
	Applicable(res *Resolution) bool
	// QueryFragment 返回要追加的查询片段，开头的 "?" 或 "&" 会被去掉。
	QueryFragment(res *Resolution) string
	// BreakChain 为 true 时，无论是否生效都终止后续修饰器。
	BreakChain() bool
}

// EvaluatingModifier 是可能在判断阶段失败的修饰器（例如表达式求值），
// 修饰链优先调用 Evaluate 并将错误转换为 InvalidModifierError。
type EvaluatingModifier interface {
	URLModifier
	Evaluate(res *Resolution) (bool, error)
}

// QueryModifier 是代码中直接构造修饰器的便捷实现。When 为空时总是生效。
type QueryModifier struct {
	When  func(res *Resolution) bool
	Query string
	Break bool
}

func (m QueryModifier) Applicable(res *Resolution) bool {
	if m.When == nil {
		return true
	}
	return m.When(res)
}

func (m QueryModifier) QueryFragment(*Resolution) string { return m.Query }

func (m QueryModifier) BreakChain() bool { return m.Break }

// MapRoute 查找映射表并在首个 "/" 位于非开头位置时补一个前导 "/"。
func MapRoute(path string, mapping map[string]string) string {
	route := path
	if mapped, ok := mapping[path]; ok {
		route = mapped
	}
	if strings.IndexByte(route, '/') > 0 {
		return "/" + route
	}
	return route
}

// applyModifiers 按注册顺序执行修饰链，结果写回 res.URL。
func applyModifiers(res *Resolution, modifiers []URLModifier) error {
	for i, modifier := range modifiers {
		if isNilModifier(modifier) {
			return &InvalidModifierError{Index: i, Reason: "modifier is nil"}
		}

		applies, err := evaluateModifier(modifier, res)
		if err != nil {
			return &InvalidModifierError{Index: i, Name: modifierName(modifier), Reason: "condition could not be evaluated", Err: err}
		}
		if applies {
			res.URL = appendQuery(res.URL, modifier.QueryFragment(res))
		}
		if modifier.BreakChain() {
			break
		}
	}
	return nil
}

func evaluateModifier(modifier URLModifier, res *Resolution) (bool, error) {
	if evaluating, ok := modifier.(EvaluatingModifier); ok {
		return evaluating.Evaluate(res)
	}
	return modifier.Applicable(res), nil
}

func appendQuery(url, fragment string) string {
	fragment = strings.TrimLeft(fragment, "?&")
	if fragment == "" {
		return url
	}
	if strings.Contains(url, "?") {
		return url + "&" + fragment
	}
	return url + "?" + fragment
}

// validateModifiers 在构造阶段拦截 nil（含带类型的 nil）修饰器。
func validateModifiers(modifiers []URLModifier) error {
	for i, modifier := range modifiers {
		if isNilModifier(modifier) {
			return &InvalidModifierError{Index: i, Reason: "modifier is nil"}
		}
	}
	return nil
}

func isNilModifier(modifier URLModifier) bool {
	if modifier == nil {
		return true
	}
	value := reflect.ValueOf(modifier)
	switch value.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan:
		return value.IsNil()
	default:
		return false
	}
}

type namedModifier interface {
	Name() string
}

func modifierName(modifier URLModifier) string {
	if named, ok := modifier.(namedModifier); ok {
		return named.Name()
	}
	return ""
}
