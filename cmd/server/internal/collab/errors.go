package collab

import (
	"errors"
)

// 错误定义
var (
	ErrValidation           = errors.New("VALIDATION_FAILED")
	ErrSessionNotFound      = errors.New("SESSION_NOT_FOUND")
	ErrNotParticipant       = errors.New("NOT_PARTICIPANT")
	ErrInvalidOperation     = errors.New("INVALID_OPERATION")
	ErrUnsupportedOperation = errors.New("UNSUPPORTED_OPERATION")
	ErrStaleVersion         = errors.New("STALE_VERSION")
	ErrSessionLimit         = errors.New("SESSION_LIMIT_REACHED")
)
