package collab

import (
	"fmt"
)

// ApplyToContent 将单个编辑操作应用到文档内容，返回新内容
// 纯函数：不感知会话、版本与用户，可独立测试
// 索引以 rune 计，越界返回 ErrInvalidOperation
func ApplyToContent(content string, op Operation) (string, error) {
	runes := []rune(content)

	switch op.Type {
	case OpInsert:
		if op.Position < 0 || op.Position > len(runes) {
			return "", fmt.Errorf("%w: insert position %d out of range [0,%d]",
				ErrInvalidOperation, op.Position, len(runes))
		}
		return string(runes[:op.Position]) + op.Content + string(runes[op.Position:]), nil

	case OpDelete:
		if err := checkSpan(op.Position, op.Length, len(runes)); err != nil {
			return "", err
		}
		return string(runes[:op.Position]) + string(runes[op.Position+op.Length:]), nil

	case OpReplace:
		// 等价于 Delete(position,length) 后再 Insert(position,content)
		if err := checkSpan(op.Position, op.Length, len(runes)); err != nil {
			return "", err
		}
		return string(runes[:op.Position]) + op.Content + string(runes[op.Position+op.Length:]), nil

	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedOperation, string(op.Type))
	}
}

// checkSpan 校验 [position, position+length) 是否落在内容范围内
func checkSpan(position, length, contentLen int) error {
	if position < 0 || length < 0 || position+length > contentLen {
		return fmt.Errorf("%w: span [%d,%d) out of range [0,%d]",
			ErrInvalidOperation, position, position+length, contentLen)
	}
	return nil
}
