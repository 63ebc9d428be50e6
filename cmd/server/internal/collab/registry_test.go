package collab

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

// TestRegistry_GetOrCreate 测试会话创建与查找
func TestRegistry_GetOrCreate(t *testing.T) {
	reg := NewRegistry(DefaultOptions())

	s1, created, err := reg.GetOrCreate("docs/a.md", "seed")
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if !created {
		t.Error("Expected created=true for first call")
	}
	if snap := s1.Snapshot(); snap.Content != "seed" || snap.Version != 0 {
		t.Errorf("Expected seeded content at version 0, got %+v", snap)
	}

	// 第二次调用返回同一实例，不覆盖已有内容
	s2, created, err := reg.GetOrCreate("docs/a.md", "other seed")
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if created || s2 != s1 {
		t.Error("Expected the existing instance on second call")
	}
	if snap := s2.Snapshot(); snap.Content != "seed" {
		t.Errorf("Existing session content must be untouched, got %q", snap.Content)
	}
}

// TestRegistry_GetOrCreate_Concurrent 测试同一 key 并发创建只产生一个实例
func TestRegistry_GetOrCreate_Concurrent(t *testing.T) {
	reg := NewRegistry(DefaultOptions())

	const callers = 16
	var wg sync.WaitGroup
	sessions := make([]*Session, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s, _, err := reg.GetOrCreate("docs/a.md", "")
			if err != nil {
				t.Errorf("GetOrCreate failed: %v", err)
				return
			}
			sessions[n] = s
		}(i)
	}
	wg.Wait()

	for i := 1; i < callers; i++ {
		if sessions[i] != sessions[0] {
			t.Fatalf("Got distinct session instances for the same key")
		}
	}
	if reg.Len() != 1 {
		t.Errorf("Expected 1 registry entry, got %d", reg.Len())
	}
}

// TestRegistry_RemoveIfEmpty 测试空会话移除
func TestRegistry_RemoveIfEmpty(t *testing.T) {
	reg := NewRegistry(DefaultOptions())

	s, _, _ := reg.GetOrCreate("docs/a.md", "")
	s.Join("u1", "Alice")

	// 仍有参与者时不移除
	if reg.RemoveIfEmpty("docs/a.md") {
		t.Error("RemoveIfEmpty must not remove a non-empty session")
	}

	s.Leave("u1")
	if !reg.RemoveIfEmpty("docs/a.md") {
		t.Error("RemoveIfEmpty must remove an empty session")
	}
	if _, exists := reg.Get("docs/a.md"); exists {
		t.Error("Removed session still present in registry")
	}

	// 不存在的 key
	if reg.RemoveIfEmpty("docs/missing.md") {
		t.Error("RemoveIfEmpty must return false for unknown key")
	}
}

// TestRegistry_RemovedSessionRejectsJoin 测试被移除的会话拒绝后续 Join
func TestRegistry_RemovedSessionRejectsJoin(t *testing.T) {
	reg := NewRegistry(DefaultOptions())

	s, _, _ := reg.GetOrCreate("docs/a.md", "")
	if !reg.RemoveIfEmpty("docs/a.md") {
		t.Fatal("RemoveIfEmpty failed on empty session")
	}

	// 持有旧引用的调用方必须拿到 ok=false 并重建会话
	if _, _, ok := s.Join("u1", "Alice"); ok {
		t.Error("Join on a removed session must fail")
	}

	s2, created, err := reg.GetOrCreate("docs/a.md", "")
	if err != nil || !created {
		t.Fatalf("Expected a fresh session after removal, created=%v err=%v", created, err)
	}
	if _, _, ok := s2.Join("u1", "Alice"); !ok {
		t.Error("Join on the recreated session must succeed")
	}
}

// TestRegistry_SessionLimit 测试会话容量上限
func TestRegistry_SessionLimit(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxSessions = 2
	reg := NewRegistry(opts)

	for i := 0; i < 2; i++ {
		if _, _, err := reg.GetOrCreate(fmt.Sprintf("docs/%d.md", i), ""); err != nil {
			t.Fatalf("GetOrCreate %d failed: %v", i, err)
		}
	}

	_, _, err := reg.GetOrCreate("docs/overflow.md", "")
	if !errors.Is(err, ErrSessionLimit) {
		t.Fatalf("Expected ErrSessionLimit, got %v", err)
	}

	// 已存在的 key 不受容量限制影响
	if _, _, err := reg.GetOrCreate("docs/0.md", ""); err != nil {
		t.Errorf("Existing key lookup must not fail at capacity: %v", err)
	}

	// 释放一个槽位后可再次创建
	if !reg.RemoveIfEmpty("docs/0.md") {
		t.Fatal("RemoveIfEmpty failed")
	}
	if _, _, err := reg.GetOrCreate("docs/overflow.md", ""); err != nil {
		t.Errorf("Expected creation after slot release, got %v", err)
	}
}

// TestRegistry_ListActive 测试活跃会话列表
func TestRegistry_ListActive(t *testing.T) {
	reg := NewRegistry(DefaultOptions())

	sa, _, _ := reg.GetOrCreate("docs/a.md", "aaa")
	sa.Join("u1", "Alice")
	sa.Join("u2", "Bob")
	sb, _, _ := reg.GetOrCreate("docs/b.md", "")
	sb.Join("u3", "Carol")
	sb.ApplyOperation("u3", Operation{Type: OpInsert, Position: 0, Content: "x"})

	summaries := reg.ListActive()
	if len(summaries) != 2 {
		t.Fatalf("Expected 2 summaries, got %d", len(summaries))
	}
	// 按 key 排序
	if summaries[0].Key != "docs/a.md" || summaries[1].Key != "docs/b.md" {
		t.Errorf("Expected sorted keys, got %v", summaries)
	}
	if summaries[0].ParticipantCount != 2 || summaries[0].Version != 0 {
		t.Errorf("Unexpected summary for a.md: %+v", summaries[0])
	}
	if summaries[1].ParticipantCount != 1 || summaries[1].Version != 1 {
		t.Errorf("Unexpected summary for b.md: %+v", summaries[1])
	}
}
