package collab

import (
	"errors"
	"testing"
)

// TestApplyToContent_Insert 测试插入操作
func TestApplyToContent_Insert(t *testing.T) {
	// 正常案例: 中间插入
	result, err := ApplyToContent("hello world", Operation{Type: OpInsert, Position: 5, Content: "X"})
	if err != nil {
		t.Fatalf("ApplyToContent failed: %v", err)
	}
	if result != "helloX world" {
		t.Errorf("Expected 'helloX world', got %q", result)
	}

	// 边界案例: 头部与尾部插入
	result, _ = ApplyToContent("abc", Operation{Type: OpInsert, Position: 0, Content: ">"})
	if result != ">abc" {
		t.Errorf("Expected '>abc', got %q", result)
	}
	result, _ = ApplyToContent("abc", Operation{Type: OpInsert, Position: 3, Content: "<"})
	if result != "abc<" {
		t.Errorf("Expected 'abc<', got %q", result)
	}

	// 空内容插入空串
	result, err = ApplyToContent("", Operation{Type: OpInsert, Position: 0, Content: "go"})
	if err != nil || result != "go" {
		t.Errorf("Expected 'go', got %q (err=%v)", result, err)
	}

	// 错误案例: 越界
	_, err = ApplyToContent("hello world", Operation{Type: OpInsert, Position: 100, Content: "X"})
	if !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("Expected ErrInvalidOperation, got %v", err)
	}
	_, err = ApplyToContent("hello", Operation{Type: OpInsert, Position: -1, Content: "X"})
	if !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("Expected ErrInvalidOperation, got %v", err)
	}
}

// TestApplyToContent_Delete 测试删除操作
func TestApplyToContent_Delete(t *testing.T) {
	result, err := ApplyToContent("hello world", Operation{Type: OpDelete, Position: 5, Length: 6})
	if err != nil {
		t.Fatalf("ApplyToContent failed: %v", err)
	}
	if result != "hello" {
		t.Errorf("Expected 'hello', got %q", result)
	}

	// 删除全文
	result, _ = ApplyToContent("abc", Operation{Type: OpDelete, Position: 0, Length: 3})
	if result != "" {
		t.Errorf("Expected empty string, got %q", result)
	}

	// 零长度删除等价于无操作
	result, err = ApplyToContent("abc", Operation{Type: OpDelete, Position: 1, Length: 0})
	if err != nil || result != "abc" {
		t.Errorf("Expected 'abc', got %q (err=%v)", result, err)
	}

	// 错误案例: span 超出内容
	_, err = ApplyToContent("abc", Operation{Type: OpDelete, Position: 2, Length: 5})
	if !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("Expected ErrInvalidOperation, got %v", err)
	}
	_, err = ApplyToContent("abc", Operation{Type: OpDelete, Position: -1, Length: 1})
	if !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("Expected ErrInvalidOperation, got %v", err)
	}
}

// TestApplyToContent_Replace 测试替换操作
func TestApplyToContent_Replace(t *testing.T) {
	result, err := ApplyToContent("hello world", Operation{Type: OpReplace, Position: 6, Length: 5, Content: "gopher"})
	if err != nil {
		t.Fatalf("ApplyToContent failed: %v", err)
	}
	if result != "hello gopher" {
		t.Errorf("Expected 'hello gopher', got %q", result)
	}

	// 替换等价于先删后插
	direct, _ := ApplyToContent("abcdef", Operation{Type: OpReplace, Position: 1, Length: 3, Content: "XY"})
	deleted, _ := ApplyToContent("abcdef", Operation{Type: OpDelete, Position: 1, Length: 3})
	stepwise, _ := ApplyToContent(deleted, Operation{Type: OpInsert, Position: 1, Content: "XY"})
	if direct != stepwise {
		t.Errorf("Replace mismatch: direct=%q stepwise=%q", direct, stepwise)
	}

	// 错误案例: 与 Delete 相同的边界校验
	_, err = ApplyToContent("abc", Operation{Type: OpReplace, Position: 1, Length: 5, Content: "X"})
	if !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("Expected ErrInvalidOperation, got %v", err)
	}
}

// TestApplyToContent_MultiByte 测试多字节字符按 rune 切分
func TestApplyToContent_MultiByte(t *testing.T) {
	result, err := ApplyToContent("你好世界", Operation{Type: OpInsert, Position: 2, Content: "，"})
	if err != nil {
		t.Fatalf("ApplyToContent failed: %v", err)
	}
	if result != "你好，世界" {
		t.Errorf("Expected '你好，世界', got %q", result)
	}

	result, _ = ApplyToContent("你好世界", Operation{Type: OpDelete, Position: 2, Length: 2})
	if result != "你好" {
		t.Errorf("Expected '你好', got %q", result)
	}

	// 位置按 rune 计：4 个汉字的末尾是 4，不是字节长度
	_, err = ApplyToContent("你好世界", Operation{Type: OpInsert, Position: 4, Content: "!"})
	if err != nil {
		t.Errorf("Expected rune-based bounds, got %v", err)
	}
}

// TestApplyToContent_Unsupported 测试未识别的操作类型
func TestApplyToContent_Unsupported(t *testing.T) {
	_, err := ApplyToContent("abc", Operation{Type: "move", Position: 0})
	if !errors.Is(err, ErrUnsupportedOperation) {
		t.Errorf("Expected ErrUnsupportedOperation, got %v", err)
	}
}
