package collab

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/houzhh15/coedit/cmd/server/internal/audit"
	"github.com/houzhh15/coedit/pkg/metrics"
)

// CollaborationService 协作会话引擎对外门面
type CollaborationService interface {
	// 加入会话，key 无会话时创建（initialContent 为版本 0 的种子内容）
	Join(key, userID, userName, initialContent string) (JoinResult, error)
	// 离开会话，最后一名参与者离开时会话立即销毁
	Leave(key, userID string) (bool, error)
	// 更新光标位置与选区
	UpdateCursor(key, userID string, position int, selection *Selection) (bool, error)
	// 应用编辑操作，content/length 按操作类型可选
	ApplyOperation(key, userID, opType string, position int, content *string, length *int) (ApplyResult, error)
	// 全量替换内容
	SyncContent(key, userID, content string) (SyncResult, error)
	// 查询会话状态，since >= 0 时附带增量操作
	SessionState(key string, since int) (SessionState, error)
	// 查询文档内容快照
	SessionContent(key string) (ContentSnapshot, error)
	// 列出所有活跃会话
	ActiveSessions() []SessionSummary
	// 清理超过 maxIdle 未活动的参与者，返回 (移除参与者数, 销毁会话数)
	SweepIdle(maxIdle time.Duration) (int, int)
}

// collabService 协作服务实现
type collabService struct {
	registry    *Registry
	auditLogger audit.AuditLogger
	logger      *slog.Logger
}

// NewCollaborationService 创建协作服务实例
// auditLogger 可为 nil（不记录审计）
func NewCollaborationService(registry *Registry, auditLogger audit.AuditLogger, logger *slog.Logger) CollaborationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &collabService{
		registry:    registry,
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// Join 加入会话
func (cs *collabService) Join(key, userID, userName, initialContent string) (JoinResult, error) {
	if err := validateKeyUser(key, userID); err != nil {
		return JoinResult{}, err
	}
	if strings.TrimSpace(userName) == "" {
		return JoinResult{}, fmt.Errorf("%w: user_name is required", ErrValidation)
	}

	// 会话可能在 GetOrCreate 与 Join 之间被最后一名参与者销毁，
	// 此时 Join 返回 ok=false，重新创建即可
	for {
		sess, created, err := cs.registry.GetOrCreate(key, initialContent)
		if err != nil {
			return JoinResult{}, err
		}
		result, rejoined, ok := sess.Join(userID, userName)
		if !ok {
			continue
		}

		if created {
			metrics.SessionOpened()
		}
		if !rejoined {
			metrics.ParticipantJoined()
			if cs.auditLogger != nil {
				_ = cs.auditLogger.LogSessionAction(userID, audit.ActionJoinSession, key, result.Version,
					fmt.Sprintf("joined as %q, %d participant(s)", userName, result.ParticipantCount))
			}
		}
		cs.logger.Debug("session join", "session", key, "user_id", userID, "rejoined", rejoined)
		return result, nil
	}
}

// Leave 离开会话
func (cs *collabService) Leave(key, userID string) (bool, error) {
	if err := validateKeyUser(key, userID); err != nil {
		return false, err
	}

	sess, exists := cs.registry.Get(key)
	if !exists {
		return false, nil
	}
	if !sess.Leave(userID) {
		return false, nil
	}

	metrics.ParticipantLeft(1)
	if cs.auditLogger != nil {
		_ = cs.auditLogger.LogSessionAction(userID, audit.ActionLeaveSession, key, sess.Summary().Version, "")
	}
	if cs.registry.RemoveIfEmpty(key) {
		metrics.SessionClosed()
		cs.logger.Info("session closed", "session", key)
	}
	return true, nil
}

// UpdateCursor 更新光标
func (cs *collabService) UpdateCursor(key, userID string, position int, selection *Selection) (bool, error) {
	if err := validateKeyUser(key, userID); err != nil {
		return false, err
	}
	if position < 0 {
		return false, fmt.Errorf("%w: position must be non-negative", ErrValidation)
	}
	if selection != nil && (selection.Start < 0 || selection.End < selection.Start) {
		return false, fmt.Errorf("%w: invalid selection range", ErrValidation)
	}

	sess, exists := cs.registry.Get(key)
	if !exists {
		return false, nil
	}
	return sess.UpdateCursor(userID, position, selection), nil
}

// ApplyOperation 应用编辑操作
func (cs *collabService) ApplyOperation(key, userID, opType string, position int, content *string, length *int) (ApplyResult, error) {
	if err := validateKeyUser(key, userID); err != nil {
		return ApplyResult{}, err
	}
	op, err := buildOperation(opType, position, content, length)
	if err != nil {
		return ApplyResult{}, err
	}

	sess, exists := cs.registry.Get(key)
	if !exists {
		return ApplyResult{}, fmt.Errorf("%w: no active session for %s", ErrSessionNotFound, key)
	}

	start := time.Now()
	result, err := sess.ApplyOperation(userID, op)
	if err != nil {
		metrics.RecordOperation(string(op.Type), "rejected")
		return ApplyResult{}, err
	}
	metrics.RecordOperation(string(op.Type), "applied")
	metrics.RecordOperationDuration(string(op.Type), time.Since(start).Seconds())

	cs.logger.Debug("operation applied",
		"session", key, "user_id", userID, "type", op.Type, "version", result.NewVersion)
	return result, nil
}

// SyncContent 全量替换内容
func (cs *collabService) SyncContent(key, userID, content string) (SyncResult, error) {
	if err := validateKeyUser(key, userID); err != nil {
		return SyncResult{}, err
	}

	sess, exists := cs.registry.Get(key)
	if !exists {
		metrics.RecordSync("rejected")
		return SyncResult{}, fmt.Errorf("%w: no active session for %s", ErrSessionNotFound, key)
	}

	result, err := sess.SyncContent(userID, content)
	if err != nil {
		metrics.RecordSync("rejected")
		return SyncResult{}, err
	}
	metrics.RecordSync("applied")

	if cs.auditLogger != nil {
		_ = cs.auditLogger.LogSessionAction(userID, audit.ActionSyncContent, key, result.Version,
			fmt.Sprintf("content replaced, %d byte(s)", len(content)))
	}
	return result, nil
}

// SessionState 查询会话状态
func (cs *collabService) SessionState(key string, since int) (SessionState, error) {
	if strings.TrimSpace(key) == "" {
		return SessionState{}, fmt.Errorf("%w: key is required", ErrValidation)
	}

	sess, exists := cs.registry.Get(key)
	if !exists {
		return SessionState{}, fmt.Errorf("%w: no active session for %s", ErrSessionNotFound, key)
	}
	return sess.StateSince(since)
}

// SessionContent 查询内容快照
func (cs *collabService) SessionContent(key string) (ContentSnapshot, error) {
	if strings.TrimSpace(key) == "" {
		return ContentSnapshot{}, fmt.Errorf("%w: key is required", ErrValidation)
	}

	sess, exists := cs.registry.Get(key)
	if !exists {
		return ContentSnapshot{}, fmt.Errorf("%w: no active session for %s", ErrSessionNotFound, key)
	}
	return sess.Snapshot(), nil
}

// ActiveSessions 列出活跃会话
func (cs *collabService) ActiveSessions() []SessionSummary {
	return cs.registry.ListActive()
}

// SweepIdle 清理闲置参与者与空会话
func (cs *collabService) SweepIdle(maxIdle time.Duration) (int, int) {
	cutoff := time.Now().Add(-maxIdle)
	removedParticipants := 0
	removedSessions := 0

	for _, key := range cs.registry.Keys() {
		sess, exists := cs.registry.Get(key)
		if !exists {
			continue
		}
		if removed := sess.sweepIdle(cutoff); removed > 0 {
			removedParticipants += removed
			metrics.ParticipantLeft(removed)
			if cs.auditLogger != nil {
				_ = cs.auditLogger.LogSessionAction("system", audit.ActionSweepIdle, key, sess.Summary().Version,
					fmt.Sprintf("removed %d idle participant(s)", removed))
			}
		}
		if cs.registry.RemoveIfEmpty(key) {
			removedSessions++
			metrics.SessionClosed()
		}
	}

	if removedParticipants > 0 || removedSessions > 0 {
		cs.logger.Info("idle sweep finished",
			"participants_removed", removedParticipants, "sessions_removed", removedSessions)
	}
	return removedParticipants, removedSessions
}

// ========== 内部辅助方法 ==========

// validateKeyUser 校验 key 与 userID 非空
func validateKeyUser(key, userID string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: key is required", ErrValidation)
	}
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user_id is required", ErrValidation)
	}
	return nil
}

// buildOperation 根据操作类型校验必填字段并构造 Operation
// 未识别的类型不在此处拦截，由 ApplyToContent 统一返回 UNSUPPORTED_OPERATION
func buildOperation(opType string, position int, content *string, length *int) (Operation, error) {
	if position < 0 {
		return Operation{}, fmt.Errorf("%w: position must be non-negative", ErrValidation)
	}
	if length != nil && *length < 0 {
		return Operation{}, fmt.Errorf("%w: length must be non-negative", ErrValidation)
	}

	op := Operation{Type: OperationType(opType), Position: position}
	switch op.Type {
	case OpInsert:
		if content == nil {
			return Operation{}, fmt.Errorf("%w: content is required for insert", ErrValidation)
		}
		op.Content = *content
	case OpDelete:
		if length == nil {
			return Operation{}, fmt.Errorf("%w: length is required for delete", ErrValidation)
		}
		op.Length = *length
	case OpReplace:
		if content == nil || length == nil {
			return Operation{}, fmt.Errorf("%w: content and length are required for replace", ErrValidation)
		}
		op.Content = *content
		op.Length = *length
	}
	return op, nil
}
