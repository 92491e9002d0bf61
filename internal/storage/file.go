package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStore keeps users in a JSON file and chat/file logs in JSONL files.
// A single mutex serializes all writers, which also makes the user upsert
// atomic per identifier. Meant for development and tests; production runs
// sqlite.
type FileStore struct {
	usersPath string
	chatsPath string
	filesPath string
	mu        sync.Mutex
}

func NewFileStore(usersPath, chatsPath, filesPath string) (*FileStore, error) {
	for _, p := range []string{usersPath, chatsPath, filesPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return nil, fmt.Errorf("ensure dir: %w", err)
		}
		// Touch file if not exists
		f, err := os.OpenFile(p, os.O_CREATE, 0o644)
		if err != nil {
			return nil, fmt.Errorf("touch file: %w", err)
		}
		_ = f.Close()
	}
	return &FileStore{usersPath: usersPath, chatsPath: chatsPath, filesPath: filesPath}, nil
}

func (s *FileStore) GetUser(_ context.Context, id int64) (User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users, err := s.loadUsersUnlocked()
	if err != nil {
		return User{}, false, fmt.Errorf("%w: load users: %v", ErrPersistence, err)
	}
	u, ok := users[id]
	return u, ok, nil
}

func (s *FileStore) UpsertUser(_ context.Context, u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	users, err := s.loadUsersUnlocked()
	if err != nil {
		return fmt.Errorf("%w: load users: %v", ErrPersistence, err)
	}
	now := time.Now().UTC()
	if old, ok := users[u.ID]; ok {
		users[u.ID] = merge(old, u, now)
	} else {
		u.CreatedAt = now
		u.UpdatedAt = now
		users[u.ID] = u
	}
	if err := s.saveUsersUnlocked(users); err != nil {
		return fmt.Errorf("%w: save users: %v", ErrPersistence, err)
	}
	return nil
}

func (s *FileStore) AppendChat(_ context.Context, rec ChatRecord) error {
	return s.appendJSONL(s.chatsPath, rec)
}

func (s *FileStore) AppendFile(_ context.Context, rec FileRecord) error {
	return s.appendJSONL(s.filesPath, rec)
}

func (s *FileStore) LoadChats(_ context.Context) ([]ChatRecord, error) {
	var out []ChatRecord
	err := s.scanJSONL(s.chatsPath, func(line []byte) {
		var rec ChatRecord
		if json.Unmarshal(line, &rec) == nil {
			out = append(out, rec)
		}
	})
	return out, err
}

func (s *FileStore) LoadFiles(_ context.Context) ([]FileRecord, error) {
	var out []FileRecord
	err := s.scanJSONL(s.filesPath, func(line []byte) {
		var rec FileRecord
		if json.Unmarshal(line, &rec) == nil {
			out = append(out, rec)
		}
	})
	return out, err
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) appendJSONL(path string, rec any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: open append: %v", ErrPersistence, err)
	}
	defer func() { _ = f.Close() }()
	if err := json.NewEncoder(f).Encode(rec); err != nil {
		return fmt.Errorf("%w: encode append: %v", ErrPersistence, err)
	}
	return nil
}

func (s *FileStore) scanJSONL(path string, fn func(line []byte)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: open read: %v", ErrPersistence, err)
	}
	defer func() { _ = f.Close() }()
	sc := bufio.NewScanner(f)
	buf := make([]byte, 0, 1024*1024)
	sc.Buffer(buf, 10*1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		fn(line)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("%w: scan: %v", ErrPersistence, err)
	}
	return nil
}

func (s *FileStore) loadUsersUnlocked() (map[int64]User, error) {
	f, err := os.Open(s.usersPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	var users []User
	dec := json.NewDecoder(f)
	if err := dec.Decode(&users); err != nil && err != io.EOF {
		// empty or malformed -> start fresh
		users = nil
	}
	out := make(map[int64]User, len(users))
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func (s *FileStore) saveUsersUnlocked(users map[int64]User) error {
	list := make([]User, 0, len(users))
	for _, u := range users {
		list = append(list, u)
	}
	f, err := os.OpenFile(s.usersPath, os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(list)
}
