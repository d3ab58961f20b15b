package store

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"

	"github.com/groundhog-ai/groundhog/internal/metrics"
)

// Embedder generates embedding vectors for text. Satisfied by llm.Embedder.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Metadata carries document provenance. Chunks are immutable once stored.
type Metadata struct {
	Source      string
	URL         string
	Title       string
	Section     string
	ContentType string
	Tags        []string
	ChunkIndex  int
	Ingested    time.Time
}

// Document is a (text, metadata) pair to be stored.
type Document struct {
	Content  string
	Metadata Metadata
}

// Result is a retrieved document with its similarity score.
type Result struct {
	Content    string
	Score      float64
	Collection string
	Metadata   Metadata
}

// QueryOptions configures a vector query.
type QueryOptions struct {
	// K is the maximum number of results (default 5).
	K int
	// Filter constrains results by metadata predicates.
	Filter Filter
	// ScoreThreshold drops results below this cosine similarity. Zero
	// disables the threshold.
	ScoreThreshold float64
}

// DefaultK is the default top-k for similarity searches.
const DefaultK = 5

// VectorStore provides collection-partitioned vector persistence and search.
// Collections are created implicitly on first upsert.
type VectorStore struct {
	client   *Client
	embedder Embedder
	stats    *metrics.Collector
}

// NewVectorStore creates a vector store over the given client and embedder.
func NewVectorStore(client *Client, embedder Embedder) *VectorStore {
	return &VectorStore{client: client, embedder: embedder}
}

// WithMetrics attaches a metrics collector recording operation timings.
func (s *VectorStore) WithMetrics(c *metrics.Collector) *VectorStore {
	s.stats = c
	return s
}

// documentRow is the wire representation of a document record.
type documentRow struct {
	Collection  string    `json:"collection"`
	Content     string    `json:"content"`
	Embedding   []float32 `json:"embedding"`
	Source      string    `json:"source,omitempty"`
	URL         string    `json:"url,omitempty"`
	Title       string    `json:"title,omitempty"`
	Section     string    `json:"section,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	Tags        []string  `json:"tags"`
	ChunkIndex  int       `json:"chunk_index"`
	Ingested    time.Time `json:"ingested"`
}

// scoredRow is a query result row including the computed similarity.
type scoredRow struct {
	documentRow
	Score float64 `json:"score"`
}

// Upsert embeds and stores documents under the named collection, creating the
// collection implicitly if absent. Returns the number of stored documents.
func (s *VectorStore) Upsert(ctx context.Context, collection string, docs []Document) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	start := time.Now()
	defer s.record(metrics.OpDBUpsert, start)

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Content
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed documents: %w", err)
	}
	if len(vectors) != len(docs) {
		return 0, fmt.Errorf("embed documents: got %d vectors for %d texts", len(vectors), len(docs))
	}

	rows := make([]documentRow, len(docs))
	for i, d := range docs {
		ingested := d.Metadata.Ingested
		if ingested.IsZero() {
			ingested = time.Now().UTC()
		}
		tags := d.Metadata.Tags
		if tags == nil {
			tags = []string{}
		}
		rows[i] = documentRow{
			Collection:  collection,
			Content:     d.Content,
			Embedding:   vectors[i],
			Source:      d.Metadata.Source,
			URL:         d.Metadata.URL,
			Title:       d.Metadata.Title,
			Section:     d.Metadata.Section,
			ContentType: d.Metadata.ContentType,
			Tags:        tags,
			ChunkIndex:  d.Metadata.ChunkIndex,
			Ingested:    ingested,
		}
	}

	if _, err := surrealdb.Query[any](ctx, s.client.db,
		"INSERT INTO document $rows", map[string]any{"rows": rows}); err != nil {
		return 0, fmt.Errorf("insert documents: %w", err)
	}

	return len(rows), nil
}

// Query performs a top-k cosine similarity search within a collection,
// optionally constrained by metadata predicates and a score threshold.
// The store is never mutated by a query.
func (s *VectorStore) Query(ctx context.Context, collection, query string, opts QueryOptions) ([]Result, error) {
	start := time.Now()
	defer s.record(metrics.OpDBSearch, start)

	k := opts.K
	if k <= 0 {
		k = DefaultK
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	clauses, vars, err := filterClauses(opts.Filter)
	if err != nil {
		return nil, fmt.Errorf("build filter: %w", err)
	}
	vars["collection"] = collection
	vars["emb"] = embedding
	vars["limit"] = k

	// HNSW KNN with ef=40 for recall, scored by cosine similarity
	sql := fmt.Sprintf(`
		SELECT collection, content, source, url, title, section, content_type,
		       tags, chunk_index, ingested,
		       vector::similarity::cosine(embedding, $emb) AS score
		FROM document
		WHERE collection = $collection AND embedding <|%d,40|> $emb %s
		ORDER BY score DESC
		LIMIT $limit
	`, k, clauses)

	rows, err := surrealdb.Query[[]scoredRow](ctx, s.client.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}

	var results []Result
	if rows != nil && len(*rows) > 0 {
		for _, row := range (*rows)[0].Result {
			if opts.ScoreThreshold > 0 && row.Score < opts.ScoreThreshold {
				continue
			}
			results = append(results, Result{
				Content:    row.Content,
				Score:      row.Score,
				Collection: row.Collection,
				Metadata: Metadata{
					Source:      row.Source,
					URL:         row.URL,
					Title:       row.Title,
					Section:     row.Section,
					ContentType: row.ContentType,
					Tags:        row.Tags,
					ChunkIndex:  row.ChunkIndex,
					Ingested:    row.Ingested,
				},
			})
		}
	}

	return results, nil
}

// Delete removes all documents in a collection. Collections are never deleted
// automatically; this is the explicit cleanup path.
func (s *VectorStore) Delete(ctx context.Context, collection string) error {
	_, err := surrealdb.Query[any](ctx, s.client.db,
		"DELETE document WHERE collection = $collection",
		map[string]any{"collection": collection})
	if err != nil {
		return fmt.Errorf("delete collection %s: %w", collection, err)
	}
	return nil
}

// Count returns the number of documents stored under a collection.
func (s *VectorStore) Count(ctx context.Context, collection string) (int, error) {
	type countRow struct {
		Count int `json:"count"`
	}
	rows, err := surrealdb.Query[[]countRow](ctx, s.client.db,
		"SELECT count() AS count FROM document WHERE collection = $collection GROUP ALL",
		map[string]any{"collection": collection})
	if err != nil {
		return 0, fmt.Errorf("count collection %s: %w", collection, err)
	}
	if rows == nil || len(*rows) == 0 || len((*rows)[0].Result) == 0 {
		return 0, nil
	}
	return (*rows)[0].Result[0].Count, nil
}

func (s *VectorStore) record(op string, start time.Time) {
	if s.stats != nil {
		s.stats.RecordTiming(op, time.Since(start))
	}
}
