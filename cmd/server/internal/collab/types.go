package collab

import (
	"time"
)

// OperationType 编辑操作类型枚举
type OperationType string

const (
	OpInsert  OperationType = "insert"
	OpDelete  OperationType = "delete"
	OpReplace OperationType = "replace"
)

// Operation 单次编辑操作
// Position/Length 均以 rune 为单位，避免多字节字符被截断
type Operation struct {
	Type     OperationType `json:"type"`
	Position int           `json:"position"`
	Content  string        `json:"content,omitempty"`
	Length   int           `json:"length,omitempty"`
}

// LoggedOperation 已应用操作的日志条目
// ResultVersion 为该操作产生的文档版本号
type LoggedOperation struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	Type          OperationType `json:"type"`
	Position      int           `json:"position"`
	Content       string        `json:"content,omitempty"`
	Length        int           `json:"length,omitempty"`
	ResultVersion int           `json:"result_version"`
	AppliedAt     time.Time     `json:"applied_at"`
}

// Selection 光标选区 [Start, End)
type Selection struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Participant 会话参与者
// Color 在当前参与者之间唯一（超出调色板容量时允许复用）
type Participant struct {
	UserID         string     `json:"user_id"`
	UserName       string     `json:"user_name"`
	Color          string     `json:"color"`
	CursorPosition int        `json:"cursor_position"`
	Selection      *Selection `json:"selection,omitempty"`
	JoinedAt       time.Time  `json:"joined_at"`
	LastSeenAt     time.Time  `json:"last_seen_at"`
}

// JoinResult 加入会话的返回结果
type JoinResult struct {
	SessionID        string `json:"session_id"`
	Color            string `json:"color"`
	Version          int    `json:"version"`
	ParticipantCount int    `json:"participant_count"`
}

// ApplyResult 应用操作的返回结果
type ApplyResult struct {
	Operation  LoggedOperation `json:"operation"`
	NewVersion int             `json:"new_version"`
}

// SyncResult 全量同步的返回结果
type SyncResult struct {
	Version int `json:"version"`
}

// SessionState 会话状态快照（含增量操作）
type SessionState struct {
	Version      int               `json:"version"`
	Participants []Participant     `json:"participants"`
	Operations   []LoggedOperation `json:"operations"`
}

// ContentSnapshot 文档内容快照
type ContentSnapshot struct {
	Content string `json:"content"`
	Version int    `json:"version"`
}

// SessionSummary 会话摘要（用于列表查询）
type SessionSummary struct {
	Key              string `json:"key"`
	Version          int    `json:"version"`
	ParticipantCount int    `json:"participant_count"`
}

// Options 会话引擎可调参数
type Options struct {
	// Palette 参与者颜色调色板，按顺序分配
	Palette []string
	// LogWindow 操作日志保留窗口（条数）
	LogWindow int
	// MaxSessions 同时活跃会话数上限
	MaxSessions int
}

// 默认调参
const (
	DefaultLogWindow   = 200
	DefaultMaxSessions = 1024
)

// DefaultOptions 返回默认调参
func DefaultOptions() Options {
	return Options{
		Palette:     DefaultPalette(),
		LogWindow:   DefaultLogWindow,
		MaxSessions: DefaultMaxSessions,
	}
}
