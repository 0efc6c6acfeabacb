package history

import (
	"fmt"
	"testing"
)

func TestHistoryEvictsOldestBeyondLimit(t *testing.T) {
	m := NewManager(5)
	user := "u1"

	for i := 1; i <= 7; i++ {
		m.Append(user, "Player", fmt.Sprintf("m%d", i))
	}

	got := m.Snapshot(user)
	if len(got) != 5 {
		t.Fatalf("expected 5 retained messages, got %d", len(got))
	}
	for i, want := range []string{"m3", "m4", "m5", "m6", "m7"} {
		if got[i].Content != want {
			t.Fatalf("unexpected message at %d: got %q want %q", i, got[i].Content, want)
		}
	}
}

func TestHistoryAppendSnapshotClear(t *testing.T) {
	m := NewManager(5)
	userA := "a"
	userB := "b"

	m.Append(userA, "Alice", "hello")
	m.Append(userA, "AI", "hi")
	m.Append(userB, "Bob", "foo")

	msgsA := m.Snapshot(userA)
	if len(msgsA) != 2 {
		t.Fatalf("unexpected length for A: %d", len(msgsA))
	}
	if msgsA[0].Sender != "Alice" || msgsA[0].Content != "hello" {
		t.Fatalf("unexpected A[0]: %+v", msgsA[0])
	}
	if msgsA[1].Sender != "AI" || msgsA[1].Content != "hi" {
		t.Fatalf("unexpected A[1]: %+v", msgsA[1])
	}

	// Ensure copy semantics (modifying returned slice does not affect internal state)
	msgsA[0] = Message{Sender: "x", Content: "mutated"}
	if again := m.Snapshot(userA); again[0].Content != "hello" {
		t.Fatalf("internal state mutated via returned slice")
	}

	m.Clear(userA)
	if got := m.Snapshot(userA); got != nil {
		t.Fatalf("clear did not empty user A: %+v", got)
	}
	if got := m.Snapshot(userB); len(got) != 1 {
		t.Fatalf("clear should not affect other users")
	}

	// Clearing again (or an unknown user) is a no-op, not an error.
	m.Clear(userA)
	m.Clear("never-seen")
}

func TestHistoryIgnoresEmptyUserID(t *testing.T) {
	m := NewManager(5)
	m.Append("", "Player", "dropped")
	if got := m.Snapshot(""); got != nil {
		t.Fatalf("expected no history for empty user id, got %+v", got)
	}
}

func TestHistorySetLimitTrimsOnNextAppend(t *testing.T) {
	m := NewManager(5)
	user := "u"
	for i := 1; i <= 5; i++ {
		m.Append(user, "Player", fmt.Sprintf("m%d", i))
	}

	m.SetLimit(2)
	m.Append(user, "Player", "m6")

	got := m.Snapshot(user)
	if len(got) != 2 {
		t.Fatalf("expected 2 messages after limit change, got %d", len(got))
	}
	if got[0].Content != "m5" || got[1].Content != "m6" {
		t.Fatalf("unexpected retained messages: %+v", got)
	}
}
