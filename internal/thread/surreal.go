package thread

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"

	"github.com/groundhog-ai/groundhog/internal/store"
)

// SurrealStore persists threads and messages in SurrealDB.
type SurrealStore struct {
	client *store.Client
}

// NewSurrealStore creates a thread store backed by the given client.
func NewSurrealStore(client *store.Client) *SurrealStore {
	return &SurrealStore{client: client}
}

var _ Store = (*SurrealStore)(nil)

type threadRow struct {
	ThreadID      string    `json:"thread_id"`
	IsFirstRun    bool      `json:"is_first_run"`
	HasSearchData bool      `json:"has_search_data"`
	Created       time.Time `json:"created"`
	Updated       time.Time `json:"updated"`
}

type messageRow struct {
	ThreadID string    `json:"thread_id"`
	Seq      int       `json:"seq"`
	Role     string    `json:"role"`
	Content  string    `json:"content"`
	Created  time.Time `json:"created"`
}

func (r threadRow) toThread() Thread {
	return Thread{
		ID:            r.ThreadID,
		IsFirstRun:    r.IsFirstRun,
		HasSearchData: r.HasSearchData,
		CreatedAt:     r.Created,
		UpdatedAt:     r.Updated,
	}
}

// Ensure returns the thread, creating it with default flags if absent.
func (s *SurrealStore) Ensure(ctx context.Context, id string) (*Thread, error) {
	rows, err := surrealdb.Query[[]threadRow](ctx, s.client.DB(),
		"SELECT * FROM thread WHERE thread_id = $id",
		map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("load thread %s: %w", id, err)
	}
	if rows != nil && len(*rows) > 0 && len((*rows)[0].Result) > 0 {
		t := (*rows)[0].Result[0].toThread()
		return &t, nil
	}

	created, err := surrealdb.Query[[]threadRow](ctx, s.client.DB(),
		"CREATE thread SET thread_id = $id, is_first_run = true, has_search_data = false",
		map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("create thread %s: %w", id, err)
	}
	if created == nil || len(*created) == 0 || len((*created)[0].Result) == 0 {
		return nil, fmt.Errorf("create thread %s: no row returned", id)
	}
	t := (*created)[0].Result[0].toThread()
	return &t, nil
}

// Messages returns the thread's messages in append order.
func (s *SurrealStore) Messages(ctx context.Context, id string, limit int) ([]Message, error) {
	sql := "SELECT * FROM message WHERE thread_id = $id ORDER BY seq ASC"
	vars := map[string]any{"id": id}
	if limit > 0 {
		// Most recent messages win, so page from the tail.
		sql = "SELECT * FROM (SELECT * FROM message WHERE thread_id = $id ORDER BY seq DESC LIMIT $limit) ORDER BY seq ASC"
		vars["limit"] = limit
	}

	rows, err := surrealdb.Query[[]messageRow](ctx, s.client.DB(), sql, vars)
	if err != nil {
		return nil, fmt.Errorf("load messages %s: %w", id, err)
	}

	var msgs []Message
	if rows != nil && len(*rows) > 0 {
		for _, r := range (*rows)[0].Result {
			msgs = append(msgs, Message{Role: r.Role, Content: r.Content, CreatedAt: r.Created})
		}
	}
	return msgs, nil
}

// Append adds a message with the next sequence number. Turns are serialized
// per thread, so the count-then-insert pair does not race.
func (s *SurrealStore) Append(ctx context.Context, id, role, content string) error {
	type countRow struct {
		Count int `json:"count"`
	}
	rows, err := surrealdb.Query[[]countRow](ctx, s.client.DB(),
		"SELECT count() AS count FROM message WHERE thread_id = $id GROUP ALL",
		map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("count messages %s: %w", id, err)
	}
	seq := 0
	if rows != nil && len(*rows) > 0 && len((*rows)[0].Result) > 0 {
		seq = (*rows)[0].Result[0].Count
	}

	_, err = surrealdb.Query[any](ctx, s.client.DB(),
		"CREATE message SET thread_id = $id, seq = $seq, role = $role, content = $content",
		map[string]any{"id": id, "seq": seq, "role": role, "content": content})
	if err != nil {
		return fmt.Errorf("append message %s: %w", id, err)
	}
	return nil
}

// SetFlags persists the turn flags. has_search_data only ever moves from
// false to true; the OR below enforces that at the database.
func (s *SurrealStore) SetFlags(ctx context.Context, id string, isFirstRun, hasSearchData bool) error {
	_, err := surrealdb.Query[any](ctx, s.client.DB(),
		`UPDATE thread SET
			is_first_run = $first,
			has_search_data = has_search_data OR $has,
			updated = time::now()
		WHERE thread_id = $id`,
		map[string]any{"id": id, "first": isFirstRun, "has": hasSearchData})
	if err != nil {
		return fmt.Errorf("update thread %s: %w", id, err)
	}
	return nil
}

// List returns all threads ordered by last update, newest first.
func (s *SurrealStore) List(ctx context.Context) ([]Thread, error) {
	rows, err := surrealdb.Query[[]threadRow](ctx, s.client.DB(),
		"SELECT * FROM thread ORDER BY updated DESC", nil)
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}

	var threads []Thread
	if rows != nil && len(*rows) > 0 {
		for _, r := range (*rows)[0].Result {
			threads = append(threads, r.toThread())
		}
	}
	return threads, nil
}

// Delete removes the thread and its messages. The caller is responsible for
// cleaning up the thread's ephemeral vector collection as well.
func (s *SurrealStore) Delete(ctx context.Context, id string) error {
	_, err := surrealdb.Query[any](ctx, s.client.DB(),
		"DELETE message WHERE thread_id = $id; DELETE thread WHERE thread_id = $id",
		map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("delete thread %s: %w", id, err)
	}
	return nil
}
