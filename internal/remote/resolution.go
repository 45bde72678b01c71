package remote

// Resolution 记录单次解析过程中的中间结果，只属于一次 Resolve 调用。
type Resolution struct {
	// Raw 是调用方传入的原始标识。
	Raw        string
	Identifier Identifier
	Host       *HostRoute
	// Route 是映射并补齐前导 "/" 之后、修饰器之前的路由。
	Route string
	// URL 是修饰链处理后的相对地址，也是文件名策略的输入。
	URL string
	// FetchURL 是拼接 Host 后真正请求的完整地址，仅在回源时填充。
	FetchURL   string
	CachePath  string
	CacheHit   bool
	StatusCode int
}

// Namespace 便于修饰器与日志读取。
func (r *Resolution) Namespace() string {
	if r == nil {
		return ""
	}
	return r.Identifier.Namespace
}

// HostURL 返回当前命名空间配置的上游地址。
func (r *Resolution) HostURL() string {
	if r == nil || r.Host == nil {
		return ""
	}
	return r.Host.Config.Host
}
