package collab

import (
	"sort"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Registry 进程级会话注册表：文档标识到 Session 的映射
// 注册表锁只在查找/插入/移除映射条目时短暂持有，
// 不同文档的会话操作互不阻塞
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	opts     Options
	// slots 限制同时活跃的会话数，创建时非阻塞获取，移除时释放
	slots *semaphore.Weighted
}

// NewRegistry 创建会话注册表
// opts 中的零值字段回落到默认调参
func NewRegistry(opts Options) *Registry {
	if len(opts.Palette) == 0 {
		opts.Palette = DefaultPalette()
	}
	if opts.LogWindow <= 0 {
		opts.LogWindow = DefaultLogWindow
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	return &Registry{
		sessions: make(map[string]*Session),
		opts:     opts,
		slots:    semaphore.NewWeighted(int64(opts.MaxSessions)),
	}
}

// GetOrCreate 查找会话，不存在时以 initialContent 为版本 0 创建
// 对同一 key 的并发调用保证只产生一个 Session 实例
// 会话容量耗尽时返回 ErrSessionLimit
func (r *Registry) GetOrCreate(key, initialContent string) (*Session, bool, error) {
	// 快路径：已存在
	r.mu.RLock()
	if s, exists := r.sessions[key]; exists {
		r.mu.RUnlock()
		return s, false, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// 二次检查，避免并发创建出多个实例
	if s, exists := r.sessions[key]; exists {
		return s, false, nil
	}

	if !r.slots.TryAcquire(1) {
		return nil, false, ErrSessionLimit
	}

	s := newSession(key, initialContent, &r.opts)
	r.sessions[key] = s
	return s, true, nil
}

// Get 查找会话
func (r *Registry) Get(key string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, exists := r.sessions[key]
	return s, exists
}

// RemoveIfEmpty 仅当参与者表为空时移除会话
// 通过 markClosedIfEmpty 保证检查与移除原子：
// 被封闭的会话不再接受 Join，后来的加入方会重新创建会话
func (r *Registry) RemoveIfEmpty(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, exists := r.sessions[key]
	if !exists {
		return false
	}
	if !s.markClosedIfEmpty() {
		return false
	}

	delete(r.sessions, key)
	r.slots.Release(1)
	return true
}

// ListActive 返回所有会话的摘要快照，按 key 排序
func (r *Registry) ListActive() []SessionSummary {
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	// 摘要在注册表锁之外读取，避免持锁期间进入会话锁
	summaries := make([]SessionSummary, 0, len(sessions))
	for _, s := range sessions {
		summaries = append(summaries, s.Summary())
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Key < summaries[j].Key
	})
	return summaries
}

// Keys 返回当前所有会话的 key 快照
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.sessions))
	for key := range r.sessions {
		keys = append(keys, key)
	}
	return keys
}

// Len 返回当前会话数量
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
