package collab

import (
	"testing"
)

// TestAssignColor 测试颜色分配
func TestAssignColor(t *testing.T) {
	palette := []string{"red", "green", "blue"}

	// 空集合分配第一个颜色
	if color := assignColor(palette, map[string]struct{}{}); color != "red" {
		t.Errorf("Expected 'red', got %q", color)
	}

	// 跳过已占用颜色
	taken := map[string]struct{}{"red": {}}
	if color := assignColor(palette, taken); color != "green" {
		t.Errorf("Expected 'green', got %q", color)
	}

	taken = map[string]struct{}{"red": {}, "green": {}}
	if color := assignColor(palette, taken); color != "blue" {
		t.Errorf("Expected 'blue', got %q", color)
	}
}

// TestAssignColor_Exhausted 测试调色板耗尽后的循环复用
func TestAssignColor_Exhausted(t *testing.T) {
	palette := []string{"red", "green"}
	taken := map[string]struct{}{"red": {}, "green": {}}

	// 2 个颜色全部占用，第 3 人取模复用
	color := assignColor(palette, taken)
	if color != "red" && color != "green" {
		t.Errorf("Expected a palette color on reuse, got %q", color)
	}
}

// TestDefaultPalette 测试默认调色板返回副本
func TestDefaultPalette(t *testing.T) {
	p1 := DefaultPalette()
	if len(p1) == 0 {
		t.Fatal("Default palette must not be empty")
	}

	p1[0] = "mutated"
	p2 := DefaultPalette()
	if p2[0] == "mutated" {
		t.Error("DefaultPalette must return an independent copy")
	}
}
