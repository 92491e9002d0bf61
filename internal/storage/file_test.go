package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewFileStore(
		filepath.Join(dir, "users.json"),
		filepath.Join(dir, "chats.jsonl"),
		filepath.Join(dir, "files.jsonl"),
	)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	return s
}

func TestFileStore_GetUserAbsent(t *testing.T) {
	s := newTestFileStore(t)
	_, ok, err := s.GetUser(context.Background(), 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatal("expected absent user")
	}
}

func TestFileStore_UpsertIsKeyedByID(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := s.UpsertUser(ctx, User{ID: 1, FirstName: "Alice", State: StateAwaitingPhone}); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	u, ok, err := s.GetUser(ctx, 1)
	if err != nil || !ok {
		t.Fatalf("get after upserts: ok=%v err=%v", ok, err)
	}
	if u.FirstName != "Alice" || u.State != StateAwaitingPhone {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestFileStore_StateNeverMovesBackward(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()
	if err := s.UpsertUser(ctx, User{ID: 1, State: StateRegistered, Phone: "+1"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.UpsertUser(ctx, User{ID: 1, State: StateAwaitingPhone}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	u, _, _ := s.GetUser(ctx, 1)
	if u.State != StateRegistered {
		t.Fatalf("state regressed: %q", u.State)
	}
	if u.Phone != "+1" {
		t.Fatalf("empty incoming phone must keep stored one, got %q", u.Phone)
	}
}

func TestFileStore_MergeKeepsFieldsIfEmpty(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()
	if err := s.UpsertUser(ctx, User{ID: 1, FirstName: "Alice", Username: "alice", State: StateAwaitingPhone}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.UpsertUser(ctx, User{ID: 1, ReferralCode: "XYZ", State: StateAwaitingPhone}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	u, _, _ := s.GetUser(ctx, 1)
	if u.FirstName != "Alice" || u.Username != "alice" || u.ReferralCode != "XYZ" {
		t.Fatalf("merge lost fields: %+v", u)
	}
}

func TestFileStore_AppendAndLoadChats(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()
	recs := []ChatRecord{
		{UserID: 1, UserMessage: "hi", BotResponse: "hello", Timestamp: time.Now().UTC()},
		{UserID: 2, UserMessage: "yo", BotResponse: "hey", Timestamp: time.Now().UTC()},
	}
	for _, r := range recs {
		if err := s.AppendChat(ctx, r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	got, err := s.LoadChats(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 || got[0].UserMessage != "hi" || got[1].UserID != 2 {
		t.Fatalf("unexpected chats: %+v", got)
	}
}

func TestFileStore_AppendAndLoadFiles(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()
	rec := FileRecord{UserID: 1, FileName: "a.pdf", Category: CategoryPDF, Description: "doc", Timestamp: time.Now().UTC()}
	if err := s.AppendFile(ctx, rec); err != nil {
		t.Fatalf("append: %v", err)
	}
	got, err := s.LoadFiles(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0].Category != CategoryPDF || got[0].FileName != "a.pdf" {
		t.Fatalf("unexpected files: %+v", got)
	}
}

func TestFileStore_ConcurrentUpsertsSameUser(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()
	done := make(chan error, 10)
	for i := 0; i < 10; i++ {
		go func() {
			done <- s.UpsertUser(ctx, User{ID: 1, State: StateAwaitingPhone})
		}()
	}
	for i := 0; i < 10; i++ {
		if err := <-done; err != nil {
			t.Fatalf("concurrent upsert: %v", err)
		}
	}
	u, ok, err := s.GetUser(ctx, 1)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if u.State != StateAwaitingPhone {
		t.Fatalf("unexpected state: %q", u.State)
	}
}
