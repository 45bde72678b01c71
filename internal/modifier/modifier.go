// Package modifier 将 url-modifiers 配置编译为 expr 表达式驱动的 URL 修饰器。
package modifier

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/any-hub/remote-view/internal/config"
	"github.com/any-hub/remote-view/internal/remote"
)

// Env 是表达式可访问的变量，字段名即表达式中的标识符。
type Env struct {
	Namespace string `expr:"namespace"`
	Path      string `expr:"path"`
	URL       string `expr:"url"`
	Host      string `expr:"host"`
}

// ExprModifier 在 When 表达式为真时追加 Query。When 为空表示总是生效。
type ExprModifier struct {
	name    string
	when    string
	query   string
	brk     bool
	program *vm.Program
}

var _ remote.EvaluatingModifier = (*ExprModifier)(nil)

// Compile 编译单个修饰器；表达式语法错误或返回值不是 bool 时直接报错。
func Compile(index int, cfg config.ModifierConfig) (*ExprModifier, error) {
	m := &ExprModifier{
		name:  cfg.Name,
		when:  strings.TrimSpace(cfg.When),
		query: cfg.Query,
		brk:   cfg.Break,
	}
	if m.when == "" {
		return m, nil
	}

	program, err := expr.Compile(m.when, expr.Env(Env{}), expr.AsBool())
	if err != nil {
		return nil, &remote.InvalidModifierError{Index: index, Name: cfg.Name, Reason: "expression does not compile to bool", Err: err}
	}
	m.program = program
	return m, nil
}

// Build 按配置顺序编译全部修饰器。
func Build(cfgs []config.ModifierConfig) ([]remote.URLModifier, error) {
	if len(cfgs) == 0 {
		return nil, nil
	}
	out := make([]remote.URLModifier, 0, len(cfgs))
	for i, cfg := range cfgs {
		m, err := Compile(i, cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (m *ExprModifier) Name() string { return m.name }

// Evaluate 执行 When 表达式。
func (m *ExprModifier) Evaluate(res *remote.Resolution) (bool, error) {
	if m.program == nil {
		return true, nil
	}
	out, err := expr.Run(m.program, envFor(res))
	if err != nil {
		return false, err
	}
	matched, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("expression %q returned %T", m.when, out)
	}
	return matched, nil
}

// Applicable 在求值失败时按不生效处理；修饰链会优先调用 Evaluate 以便报告错误。
func (m *ExprModifier) Applicable(res *remote.Resolution) bool {
	matched, err := m.Evaluate(res)
	return err == nil && matched
}

func (m *ExprModifier) QueryFragment(*remote.Resolution) string { return m.query }

func (m *ExprModifier) BreakChain() bool { return m.brk }

func envFor(res *remote.Resolution) Env {
	if res == nil {
		return Env{}
	}
	return Env{
		Namespace: res.Namespace(),
		Path:      res.Identifier.Path,
		URL:       res.URL,
		Host:      res.HostURL(),
	}
}
