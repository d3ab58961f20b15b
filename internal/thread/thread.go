// Package thread persists conversation threads and their turn state.
//
// A thread owns one ephemeral vector collection for web search results. Its
// flags survive across turns: is_first_run flips to false after the first web
// acquisition decision, and has_search_data only ever transitions false to
// true - there is no automatic invalidation, only explicit cleanup.
package thread

import (
	"context"
	"time"
)

// Thread is a persistent conversation identified by a caller-supplied id.
type Thread struct {
	ID            string
	IsFirstRun    bool
	HasSearchData bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Message is a single stored conversation message.
type Message struct {
	Role      string
	Content   string
	CreatedAt time.Time
}

// Store persists threads and messages. The caller serializes turns: at most
// one active turn per thread at a time.
type Store interface {
	// Ensure returns the thread, creating it with default flags if absent.
	Ensure(ctx context.Context, id string) (*Thread, error)

	// Messages returns the thread's messages in append order. A non-positive
	// limit returns all messages; otherwise the most recent limit messages.
	Messages(ctx context.Context, id string, limit int) ([]Message, error)

	// Append adds a message to the thread.
	Append(ctx context.Context, id, role, content string) error

	// SetFlags persists turn state flags. has_search_data is monotone: once
	// true it stays true regardless of the value passed here.
	SetFlags(ctx context.Context, id string, isFirstRun, hasSearchData bool) error

	// List returns all known threads.
	List(ctx context.Context) ([]Thread, error)

	// Delete removes the thread and its messages. Explicit cleanup only.
	Delete(ctx context.Context, id string) error
}
