package session

import (
	"sync"
	"testing"
)

func TestStoreGetSetClear(t *testing.T) {
	s := NewStore()
	userA := int64(1)
	userB := int64(2)

	if got := s.Get(userA); !got.Idle() || got.Step != "" || len(got.Fields) != 0 {
		t.Fatalf("expected empty session, got %+v", got)
	}

	s.Set(userA, Session{Flow: "consultation", Step: "city", Fields: map[string]string{}})
	s.Set(userB, Session{Flow: "emergency", Step: "emergency_menu", Fields: map[string]string{"phone": "1"}})

	a := s.Get(userA)
	if a.Flow != "consultation" || a.Step != "city" {
		t.Fatalf("unexpected A: %+v", a)
	}

	// Ensure copy semantics (modifying returned fields does not affect internal state)
	b := s.Get(userB)
	b.Fields["phone"] = "mutated"
	if s.Get(userB).Fields["phone"] != "1" {
		t.Fatalf("internal state mutated via returned session")
	}

	s.Clear(userA)
	if !s.Get(userA).Idle() {
		t.Fatalf("clear did not reset user A")
	}
	if s.Get(userB).Flow != "emergency" {
		t.Fatalf("clear should not affect other users")
	}

	// clearing an unknown user is a no-op
	s.Clear(99)
}

func TestStoreLockSerializesPerUser(t *testing.T) {
	s := NewStore()
	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := s.Lock(7)
			defer unlock()
			sess := s.Get(7)
			if sess.Fields == nil {
				sess.Fields = map[string]string{}
			}
			sess.Fields["n"] += "x"
			s.Set(7, sess)
		}()
	}
	wg.Wait()
	if got := len(s.Get(7).Fields["n"]); got != n {
		t.Fatalf("lost updates: want %d, got %d", n, got)
	}
}
