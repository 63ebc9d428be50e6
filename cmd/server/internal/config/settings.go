package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// CollabSettings 协作引擎调参，通过 YAML 文件下发
type CollabSettings struct {
	// Palette 参与者颜色调色板，覆盖内置默认值
	Palette []string `yaml:"palette"`
	// OperationLogWindow 操作日志保留窗口（条数）
	OperationLogWindow int `yaml:"operation_log_window"`
	// MaxSessions 同时活跃会话数上限
	MaxSessions int `yaml:"max_sessions"`
	// IdleExpiry 参与者闲置过期时间，如 "10m"；空或 "0" 表示不启用清理
	IdleExpiry string `yaml:"idle_expiry"`
	// SweepInterval 闲置清理周期，如 "1m"
	SweepInterval string `yaml:"sweep_interval"`
}

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// DefaultCollabSettings 返回默认调参
func DefaultCollabSettings() *CollabSettings {
	return &CollabSettings{
		OperationLogWindow: 200,
		MaxSessions:        1024,
		IdleExpiry:         "0",
		SweepInterval:      "1m",
	}
}

// LoadCollabSettings 从 YAML 文件加载协作调参并验证
// path 为空时返回默认调参
func LoadCollabSettings(path string) (*CollabSettings, error) {
	settings := DefaultCollabSettings()
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read collab settings file: %w", err)
	}
	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse collab settings: %w", err)
	}
	if err := validateCollabSettings(settings); err != nil {
		return nil, fmt.Errorf("invalid collab settings: %w", err)
	}
	return settings, nil
}

// IdleExpiryDuration 解析闲置过期时间，0 表示禁用
func (s *CollabSettings) IdleExpiryDuration() (time.Duration, error) {
	if s.IdleExpiry == "" || s.IdleExpiry == "0" {
		return 0, nil
	}
	return time.ParseDuration(s.IdleExpiry)
}

// SweepIntervalDuration 解析清理周期
func (s *CollabSettings) SweepIntervalDuration() (time.Duration, error) {
	if s.SweepInterval == "" {
		return time.Minute, nil
	}
	return time.ParseDuration(s.SweepInterval)
}

// validateCollabSettings 验证调参的有效性
func validateCollabSettings(s *CollabSettings) error {
	// 1. 调色板颜色格式
	for i, color := range s.Palette {
		if !hexColorPattern.MatchString(color) {
			return fmt.Errorf("palette[%d]: %q is not a #rrggbb color", i, color)
		}
	}

	// 2. 日志窗口
	if s.OperationLogWindow <= 0 {
		return fmt.Errorf("operation_log_window must be positive, got %d", s.OperationLogWindow)
	}

	// 3. 会话上限
	if s.MaxSessions <= 0 {
		return fmt.Errorf("max_sessions must be positive, got %d", s.MaxSessions)
	}

	// 4. 时间参数
	if d, err := s.IdleExpiryDuration(); err != nil {
		return fmt.Errorf("idle_expiry: %w", err)
	} else if d < 0 {
		return fmt.Errorf("idle_expiry must not be negative")
	}
	if d, err := s.SweepIntervalDuration(); err != nil {
		return fmt.Errorf("sweep_interval: %w", err)
	} else if d <= 0 {
		return fmt.Errorf("sweep_interval must be positive")
	}

	return nil
}
