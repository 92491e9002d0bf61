package storage

import (
	"context"
	"errors"
	"time"
)

// ErrPersistence wraps every store failure. Handlers treat it as non-fatal:
// the user still gets a reply, the missing record is a logged gap.
var ErrPersistence = errors.New("storage: persistence failure")

// RegState is the registration state of a user. A missing record means the
// user is new; stored states only ever move forward
// (awaiting_phone -> registered), never back.
type RegState string

const (
	StateAwaitingPhone RegState = "awaiting_phone"
	StateRegistered    RegState = "registered"
)

// rank orders states for the monotonic-upsert guard.
func (s RegState) rank() int {
	switch s {
	case StateAwaitingPhone:
		return 1
	case StateRegistered:
		return 2
	}
	return 0
}

// Forward reports whether moving from s to next is a legal transition.
func (s RegState) Forward(next RegState) bool { return next.rank() >= s.rank() }

// User is the per-identifier registration record. At most one exists per
// Telegram user ID.
type User struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"first_name"`
	Username     string    `json:"username"`
	Phone        string    `json:"phone,omitempty"`
	ReferralCode string    `json:"referral_code,omitempty"`
	State        RegState  `json:"state"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ChatRecord is one completed text exchange. Records are append-only and
// never mutated.
type ChatRecord struct {
	UserID      int64     `json:"user_id"`
	UserMessage string    `json:"user_message"`
	BotResponse string    `json:"bot_response"`
	Timestamp   time.Time `json:"timestamp"`
}

type FileCategory string

const (
	CategoryImage FileCategory = "image"
	CategoryPDF   FileCategory = "pdf"
)

// FileRecord is the metadata of one successfully described upload.
// Unsupported uploads never produce a record.
type FileRecord struct {
	UserID      int64        `json:"user_id"`
	FileName    string       `json:"file_name"`
	Category    FileCategory `json:"category"`
	Description string       `json:"description"`
	Timestamp   time.Time    `json:"timestamp"`
}

// Store abstracts persistence of users and the append-only chat/file logs.
// UpsertUser must be atomic per identifier and must never move a stored
// state backward, even under concurrent callers; phone and referral fields
// are merged in (an empty incoming value keeps the stored one).
// Implementations must be safe for concurrent use.
type Store interface {
	GetUser(ctx context.Context, id int64) (User, bool, error)
	UpsertUser(ctx context.Context, u User) error
	AppendChat(ctx context.Context, rec ChatRecord) error
	AppendFile(ctx context.Context, rec FileRecord) error
	LoadChats(ctx context.Context) ([]ChatRecord, error)
	LoadFiles(ctx context.Context) ([]FileRecord, error)
	Close() error
}

// merge applies the upsert semantics shared by all drivers: forward-only
// state, keep-if-empty phone and referral, preserved creation time.
func merge(old, in User, now time.Time) User {
	out := in
	if !old.State.Forward(in.State) {
		out.State = old.State
	}
	if out.Phone == "" {
		out.Phone = old.Phone
	}
	if out.ReferralCode == "" {
		out.ReferralCode = old.ReferralCode
	}
	if out.FirstName == "" {
		out.FirstName = old.FirstName
	}
	if out.Username == "" {
		out.Username = old.Username
	}
	out.CreatedAt = old.CreatedAt
	out.UpdatedAt = now
	return out
}
