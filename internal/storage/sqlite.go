package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    first_name    TEXT NOT NULL DEFAULT '',
    username      TEXT NOT NULL DEFAULT '',
    phone         TEXT NOT NULL DEFAULT '',
    referral_code TEXT NOT NULL DEFAULT '',
    state         TEXT NOT NULL,
    created_at    INTEGER NOT NULL,
    updated_at    INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS chats (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id      INTEGER NOT NULL,
    user_message TEXT NOT NULL,
    bot_response TEXT NOT NULL,
    created_at   INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS files (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id     INTEGER NOT NULL,
    file_name   TEXT NOT NULL,
    category    TEXT NOT NULL,
    description TEXT NOT NULL,
    created_at  INTEGER NOT NULL
);
`

// The upsert folds the monotonic-state and keep-if-empty rules into a single
// statement, so concurrent callers for the same identifier serialize inside
// SQLite instead of racing a read-then-write.
const upsertUserSQL = `
INSERT INTO users (id, first_name, username, phone, referral_code, state, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    first_name    = CASE WHEN excluded.first_name <> '' THEN excluded.first_name ELSE users.first_name END,
    username      = CASE WHEN excluded.username <> '' THEN excluded.username ELSE users.username END,
    phone         = CASE WHEN excluded.phone <> '' THEN excluded.phone ELSE users.phone END,
    referral_code = CASE WHEN excluded.referral_code <> '' THEN excluded.referral_code ELSE users.referral_code END,
    state         = CASE WHEN excluded.state = 'registered' THEN excluded.state ELSE users.state END,
    updated_at    = excluded.updated_at
`

// SQLiteStore provides SQLite-backed persistence for user, chat and file
// records.
type SQLiteStore struct {
	sqlDB *sql.DB
}

// OpenSQLite opens a SQLite store at the provided path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure storage dir: %w", err)
	}

	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{sqlDB: sqlDB}, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *SQLiteStore) GetUser(ctx context.Context, id int64) (User, bool, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, first_name, username, phone, referral_code, state, created_at, updated_at
		 FROM users WHERE id = ?`, id)
	var (
		u                    User
		createdAt, updatedAt int64
	)
	err := row.Scan(&u.ID, &u.FirstName, &u.Username, &u.Phone, &u.ReferralCode, &u.State, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, fmt.Errorf("%w: get user: %v", ErrPersistence, err)
	}
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updatedAt)
	return u, true, nil
}

func (s *SQLiteStore) UpsertUser(ctx context.Context, u User) error {
	now := time.Now().UTC()
	_, err := s.sqlDB.ExecContext(ctx, upsertUserSQL,
		u.ID, u.FirstName, u.Username, u.Phone, u.ReferralCode, string(u.State),
		toMillis(now), toMillis(now))
	if err != nil {
		return fmt.Errorf("%w: upsert user: %v", ErrPersistence, err)
	}
	return nil
}

func (s *SQLiteStore) AppendChat(ctx context.Context, rec ChatRecord) error {
	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO chats (user_id, user_message, bot_response, created_at) VALUES (?, ?, ?, ?)`,
		rec.UserID, rec.UserMessage, rec.BotResponse, toMillis(ts))
	if err != nil {
		return fmt.Errorf("%w: append chat: %v", ErrPersistence, err)
	}
	return nil
}

func (s *SQLiteStore) AppendFile(ctx context.Context, rec FileRecord) error {
	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO files (user_id, file_name, category, description, created_at) VALUES (?, ?, ?, ?, ?)`,
		rec.UserID, rec.FileName, string(rec.Category), rec.Description, toMillis(ts))
	if err != nil {
		return fmt.Errorf("%w: append file: %v", ErrPersistence, err)
	}
	return nil
}

func (s *SQLiteStore) LoadChats(ctx context.Context) ([]ChatRecord, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT user_id, user_message, bot_response, created_at FROM chats ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: load chats: %v", ErrPersistence, err)
	}
	defer rows.Close()
	var out []ChatRecord
	for rows.Next() {
		var (
			rec ChatRecord
			ts  int64
		)
		if err := rows.Scan(&rec.UserID, &rec.UserMessage, &rec.BotResponse, &ts); err != nil {
			return nil, fmt.Errorf("%w: scan chat: %v", ErrPersistence, err)
		}
		rec.Timestamp = fromMillis(ts)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate chats: %v", ErrPersistence, err)
	}
	return out, nil
}

func (s *SQLiteStore) LoadFiles(ctx context.Context) ([]FileRecord, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT user_id, file_name, category, description, created_at FROM files ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: load files: %v", ErrPersistence, err)
	}
	defer rows.Close()
	var out []FileRecord
	for rows.Next() {
		var (
			rec FileRecord
			ts  int64
		)
		if err := rows.Scan(&rec.UserID, &rec.FileName, &rec.Category, &rec.Description, &ts); err != nil {
			return nil, fmt.Errorf("%w: scan file: %v", ErrPersistence, err)
		}
		rec.Timestamp = fromMillis(ts)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate files: %v", ErrPersistence, err)
	}
	return out, nil
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}
