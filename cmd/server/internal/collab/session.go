package collab

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session 单个文档的权威协作状态
// 所有读写方法内部持有 mu，同一会话上的变更严格串行：
// 版本 N+1 必然基于版本 N 的内容产生
type Session struct {
	key string

	mu           sync.Mutex
	content      string
	version      int
	participants map[string]*Participant
	opLog        []LoggedOperation
	closed       bool

	createdAt    time.Time
	lastActivity time.Time

	opts *Options
}

// newSession 创建会话，初始内容计为版本 0
func newSession(key, initialContent string, opts *Options) *Session {
	now := time.Now()
	return &Session{
		key:          key,
		content:      initialContent,
		version:      0,
		participants: make(map[string]*Participant),
		createdAt:    now,
		lastActivity: now,
		opts:         opts,
	}
}

// Key 返回文档标识
func (s *Session) Key() string {
	return s.key
}

// Join 加入会话
// 已存在的 userID 视为幂等重入：仅刷新 lastSeenAt 并返回原有颜色
// 返回 rejoined 表示是否为重入，ok=false 表示会话已被注册表移除，调用方应重建
func (s *Session) Join(userID, userName string) (result JoinResult, rejoined bool, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return JoinResult{}, false, false
	}

	now := time.Now()
	s.lastActivity = now

	// 幂等重入
	if p, exists := s.participants[userID]; exists {
		p.LastSeenAt = now
		return JoinResult{
			SessionID:        s.key,
			Color:            p.Color,
			Version:          s.version,
			ParticipantCount: len(s.participants),
		}, true, true
	}

	// 排除当前参与者已持有的颜色后分配
	taken := make(map[string]struct{}, len(s.participants))
	for _, p := range s.participants {
		taken[p.Color] = struct{}{}
	}
	color := assignColor(s.opts.Palette, taken)

	s.participants[userID] = &Participant{
		UserID:         userID,
		UserName:       userName,
		Color:          color,
		CursorPosition: 0,
		JoinedAt:       now,
		LastSeenAt:     now,
	}

	// 加入不修改文档内容，version 保持不变
	return JoinResult{
		SessionID:        s.key,
		Color:            color,
		Version:          s.version,
		ParticipantCount: len(s.participants),
	}, false, true
}

// Leave 离开会话，参与者不存在时返回 false
// 不修改 version；会话是否随之销毁由调用方通过注册表决定
func (s *Session) Leave(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.participants[userID]; !exists {
		return false
	}
	delete(s.participants, userID)
	s.lastActivity = time.Now()
	return true
}

// UpdateCursor 更新光标位置与选区
// 光标属于瞬时在场状态，不产生新版本
func (s *Session) UpdateCursor(userID string, position int, selection *Selection) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.participants[userID]
	if !exists {
		return false
	}

	p.CursorPosition = position
	p.Selection = selection
	p.LastSeenAt = time.Now()
	s.lastActivity = p.LastSeenAt
	return true
}

// ApplyOperation 应用单个编辑操作
// 成功时写入新内容、递增版本并追加操作日志；失败时状态保持不变
func (s *Session) ApplyOperation(userID string, op Operation) (ApplyResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actor, exists := s.participants[userID]
	if !exists {
		return ApplyResult{}, fmt.Errorf("%w: user %s has not joined session %s",
			ErrNotParticipant, userID, s.key)
	}

	newContent, err := ApplyToContent(s.content, op)
	if err != nil {
		return ApplyResult{}, err
	}

	now := time.Now()
	s.content = newContent
	s.version++
	s.lastActivity = now
	actor.LastSeenAt = now

	logged := LoggedOperation{
		ID:            uuid.NewString(),
		UserID:        userID,
		Type:          op.Type,
		Position:      op.Position,
		Content:       op.Content,
		Length:        op.Length,
		ResultVersion: s.version,
		AppliedAt:     now,
	}
	s.appendLogUnsafe(logged)

	return ApplyResult{Operation: logged, NewVersion: s.version}, nil
}

// SyncContent 无条件替换全文内容
// 面向本地状态已漂移的客户端的逃生通道：记录一条覆盖原全文的合成
// Replace 操作，使增量消费者能观察到这次跳变
func (s *Session) SyncContent(userID, content string) (SyncResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actor, exists := s.participants[userID]
	if !exists {
		return SyncResult{}, fmt.Errorf("%w: user %s has not joined session %s",
			ErrNotParticipant, userID, s.key)
	}

	now := time.Now()
	priorLen := len([]rune(s.content))
	s.content = content
	s.version++
	s.lastActivity = now
	actor.LastSeenAt = now

	s.appendLogUnsafe(LoggedOperation{
		ID:            uuid.NewString(),
		UserID:        userID,
		Type:          OpReplace,
		Position:      0,
		Content:       content,
		Length:        priorLen,
		ResultVersion: s.version,
		AppliedAt:     now,
	})

	return SyncResult{Version: s.version}, nil
}

// StateSince 返回参与者快照与 resultVersion > since 的操作
// since < 0 表示不请求增量，仅返回参与者与当前版本
// since 早于日志保留窗口时返回 ErrStaleVersion，调用方应回退到全量拉取
func (s *Session) StateSince(since int) (SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := SessionState{
		Version:      s.version,
		Participants: s.participantSnapshotUnsafe(),
		Operations:   []LoggedOperation{},
	}

	if since < 0 || since >= s.version {
		return state, nil
	}

	// 窗口内最早可服务的基准版本为最老日志条目的 resultVersion-1
	if len(s.opLog) == 0 || since < s.opLog[0].ResultVersion-1 {
		return SessionState{}, fmt.Errorf("%w: version %d is older than the retained log window",
			ErrStaleVersion, since)
	}

	for _, op := range s.opLog {
		if op.ResultVersion > since {
			state.Operations = append(state.Operations, op)
		}
	}
	return state, nil
}

// Snapshot 返回当前内容与版本
func (s *Session) Snapshot() ContentSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ContentSnapshot{Content: s.content, Version: s.version}
}

// ParticipantCount 返回当前参与者数量
func (s *Session) ParticipantCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.participants)
}

// Summary 返回会话摘要
func (s *Session) Summary() SessionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionSummary{
		Key:              s.key,
		Version:          s.version,
		ParticipantCount: len(s.participants),
	}
}

// sweepIdle 移除 lastSeenAt 早于 cutoff 的参与者，返回移除数量
func (s *Session) sweepIdle(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, p := range s.participants {
		if p.LastSeenAt.Before(cutoff) {
			delete(s.participants, id)
			removed++
		}
	}
	return removed
}

// markClosedIfEmpty 在参与者表为空时封闭会话，供注册表原子移除使用
func (s *Session) markClosedIfEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.participants) > 0 {
		return false
	}
	s.closed = true
	return true
}

// ========== 内部辅助方法 ==========

// appendLogUnsafe 追加操作日志并按保留窗口裁剪 (不加锁,内部使用)
func (s *Session) appendLogUnsafe(op LoggedOperation) {
	s.opLog = append(s.opLog, op)
	if window := s.opts.LogWindow; window > 0 && len(s.opLog) > window {
		// 仅保留最新的 window 条，保持版本连续
		s.opLog = s.opLog[len(s.opLog)-window:]
	}
}

// participantSnapshotUnsafe 复制参与者列表 (不加锁,内部使用)
func (s *Session) participantSnapshotUnsafe() []Participant {
	snapshot := make([]Participant, 0, len(s.participants))
	for _, p := range s.participants {
		copied := *p
		if p.Selection != nil {
			sel := *p.Selection
			copied.Selection = &sel
		}
		snapshot = append(snapshot, copied)
	}
	return snapshot
}
