package chat

import (
	"sync"
	"testing"
)

func TestManagerGetCreatesAndReuses(t *testing.T) {
	m := NewManager()

	s1 := m.Get("abc")
	s2 := m.Get("abc")

	if s1 != s2 {
		t.Error("same id returned different sessions")
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
}

func TestManagerGetMintsID(t *testing.T) {
	m := NewManager()

	s := m.Get("")

	if s.ID == "" {
		t.Fatal("minted session has empty ID")
	}
	if m.Get(s.ID) != s {
		t.Error("minted session not retrievable by its ID")
	}
}

func TestManagerConcurrentGet(t *testing.T) {
	m := NewManager()

	var wg sync.WaitGroup
	sessions := make([]*Session, 50)
	for i := range sessions {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sessions[i] = m.Get("shared")
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(sessions); i++ {
		if sessions[i] != sessions[0] {
			t.Fatal("concurrent Get returned different sessions for one id")
		}
	}
}
