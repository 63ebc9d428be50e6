package audit

import (
	"encoding/json"
	"log"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// AuditAction 审计日志操作类型
type AuditAction string

const (
	ActionJoinSession  AuditAction = "join_session"
	ActionLeaveSession AuditAction = "leave_session"
	ActionSyncContent  AuditAction = "sync_content"
	ActionSweepIdle    AuditAction = "sweep_idle"
)

// AuditEntry 审计日志条目
type AuditEntry struct {
	Timestamp  time.Time   `json:"timestamp"`
	Operator   string      `json:"operator"`          // 操作者用户 ID
	Action     AuditAction `json:"action"`            // 操作类型
	SessionKey string      `json:"session_key"`       // 会话标识 (文档路径)
	Version    int         `json:"version"`           // 事件后的文档版本
	Details    string      `json:"details,omitempty"` // 额外详情
}

// AuditLogger 审计日志记录器接口
type AuditLogger interface {
	// LogSessionAction 记录一次会话级操作
	LogSessionAction(operator string, action AuditAction, sessionKey string, version int, details string) error
}

// RotatingAuditLogger 基于 lumberjack 滚动文件的审计日志实现
// 按大小与保留期自动轮转，写入 JSONL 格式
type RotatingAuditLogger struct {
	logger *log.Logger
}

// NewRotatingAuditLogger 创建带自动轮转的审计日志记录器
func NewRotatingAuditLogger(logPath string) *RotatingAuditLogger {
	writer := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    100, // MB
		MaxBackups: 10,  // 保留 10 个历史文件
		MaxAge:     30,  // 保留 30 天
		Compress:   true,
	}

	return &RotatingAuditLogger{
		logger: log.New(writer, "", 0), // 时间戳由条目自带
	}
}

// LogSessionAction 将审计条目序列化为 JSON 并写入滚动日志
func (a *RotatingAuditLogger) LogSessionAction(operator string, action AuditAction, sessionKey string, version int, details string) error {
	entry := AuditEntry{
		Timestamp:  time.Now().UTC(),
		Operator:   operator,
		Action:     action,
		SessionKey: sessionKey,
		Version:    version,
		Details:    details,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	a.logger.Println(string(data))
	return nil
}
