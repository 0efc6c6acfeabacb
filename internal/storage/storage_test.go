package storage

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileRecorderAppendsJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "transcript.jsonl")
	r, err := NewFileRecorder(path)
	if err != nil {
		t.Fatalf("failed to create recorder: %v", err)
	}

	first := Exchange{
		Timestamp: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		UserID:    "u1",
		Kind:      "chat",
		Prompt:    "hello",
		Response:  "hi there",
	}
	second := first
	second.Prompt = "again"
	if err := r.Append(first); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := r.Append(second); err != nil {
		t.Fatalf("append: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open transcript: %v", err)
	}
	defer f.Close()

	var got []Exchange
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var ex Exchange
		if err := json.Unmarshal(sc.Bytes(), &ex); err != nil {
			t.Fatalf("unmarshal line: %v", err)
		}
		got = append(got, ex)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 exchanges, got %d", len(got))
	}
	if got[0].Prompt != "hello" || got[1].Prompt != "again" {
		t.Fatalf("exchanges out of order: %+v", got)
	}
	if got[0].UserID != "u1" || got[0].Kind != "chat" || got[0].Response != "hi there" {
		t.Fatalf("unexpected first exchange: %+v", got[0])
	}
}

func TestSQLiteRecorderAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "transcript.db")
	r, err := NewSQLiteRecorder(path)
	if err != nil {
		t.Fatalf("failed to create recorder: %v", err)
	}
	defer r.Close()

	for i := 0; i < 3; i++ {
		ex := Exchange{Timestamp: time.Now().UTC(), UserID: "u1", Kind: "chat", Prompt: "p", Response: "r"}
		if err := r.Append(ex); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM exchanges WHERE user_id = ?`, "u1").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 rows, got %d", count)
	}
}
