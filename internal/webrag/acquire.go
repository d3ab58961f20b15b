package webrag

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/groundhog-ai/groundhog/internal/store"
)

// maxSearchResults caps a single web acquisition.
const maxSearchResults = 10

// VectorStore is the storage surface the agent needs. Satisfied by
// *store.VectorStore.
type VectorStore interface {
	Upsert(ctx context.Context, collection string, docs []store.Document) (int, error)
	Query(ctx context.Context, collection, query string, opts store.QueryOptions) ([]store.Result, error)
	Delete(ctx context.Context, collection string) error
}

// acquire searches the web for the optimized query, chunks every result and
// stores the chunks under the thread's collection. The collection is created
// lazily by the first upsert. Returns the number of stored chunks.
func (a *Agent) acquire(ctx context.Context, query, collection string) (int, error) {
	results, err := a.search.Search(ctx, query, maxSearchResults)
	if err != nil {
		return 0, fmt.Errorf("web search: %w", err)
	}
	if len(results) == 0 {
		return 0, fmt.Errorf("web search: no results for %q", query)
	}

	now := a.now()
	var docs []store.Document
	for _, r := range results {
		text := r.Content
		if r.Title != "" {
			text = r.Title + "\n\n" + r.Content
		}
		sourceID := "web:" + a.newID()
		for i, chunk := range splitText(text, chunkSize, chunkOverlap) {
			docs = append(docs, store.Document{
				Content: chunk,
				Metadata: store.Metadata{
					Source:      sourceID,
					URL:         r.URL,
					Title:       r.Title,
					ContentType: "web_search",
					ChunkIndex:  i,
					Ingested:    now,
				},
			})
		}
	}

	stored, err := a.vectors.Upsert(ctx, collection, docs)
	if err != nil {
		return 0, fmt.Errorf("store search results: %w", err)
	}
	return stored, nil
}

func newSourceID() string {
	return uuid.NewString()
}
