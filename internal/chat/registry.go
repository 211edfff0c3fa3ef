package chat

// DefaultName 收到 REG_NAME 之前使用的昵称
const DefaultName = "Unknown"

// Registry 地址 -> 昵称。仅由 Dispatcher 协程访问，因此不加锁。
// 条目在断开后不会删除，随进程生命周期单调增长。
type Registry struct {
	names map[string]string
}

func NewRegistry() *Registry {
	return &Registry{names: make(map[string]string)}
}

// Add 为新连接写入默认昵称
func (r *Registry) Add(addr string) {
	r.names[addr] = DefaultName
}

// SetName 设置或覆盖昵称
func (r *Registry) SetName(addr, name string) {
	r.names[addr] = name
}

// Name 查询昵称，不存在时返回 DefaultName
func (r *Registry) Name(addr string) string {
	if name, ok := r.names[addr]; ok {
		return name
	}
	return DefaultName
}

func (r *Registry) Len() int { return len(r.names) }
