package logging

import "github.com/sirupsen/logrus"

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// ResolveFields 提供 namespace/path/命中状态字段，供远程模板解析日志复用。
func ResolveFields(namespace, path, cacheMode string, cacheHit bool) logrus.Fields {
	return logrus.Fields{
		"action":     "resolve",
		"namespace":  namespace,
		"path":       path,
		"cache_mode": cacheMode,
		"cache_hit":  cacheHit,
	}
}
