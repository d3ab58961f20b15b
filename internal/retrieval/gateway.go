// Package retrieval exposes a uniform query interface over the vector store:
// metadata filter construction, top-k similarity search and context
// formatting. Read-only; it never writes to the store.
package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/groundhog-ai/groundhog/internal/store"
)

// QueryFilter is the caller-facing filter shape. Fields map onto document
// metadata columns; zero values mean "no constraint".
type QueryFilter struct {
	// ContentType requires an exact content_type match (e.g. "readme").
	ContentType string
	// Section requires an exact section match (e.g. "Work Experience").
	Section string
	// TitleContains requires a case-insensitive title substring.
	TitleContains string
	// Tags requires at least one overlapping technology tag.
	Tags []string
}

// IsEmpty reports whether the filter has no constraints.
func (f QueryFilter) IsEmpty() bool {
	return f.ContentType == "" && f.Section == "" && f.TitleContains == "" && len(f.Tags) == 0
}

func (f QueryFilter) toStoreFilter() store.Filter {
	var sf store.Filter
	if f.ContentType != "" || f.Section != "" {
		sf.Equals = map[string]string{}
		if f.ContentType != "" {
			sf.Equals["content_type"] = f.ContentType
		}
		if f.Section != "" {
			sf.Equals["section"] = f.Section
		}
	}
	if f.TitleContains != "" {
		sf.Contains = map[string]string{"title": f.TitleContains}
	}
	if len(f.Tags) > 0 {
		sf.Overlaps = map[string][]string{"tags": f.Tags}
	}
	return sf
}

// Store is the vector search surface the gateway needs.
type Store interface {
	Query(ctx context.Context, collection, query string, opts store.QueryOptions) ([]store.Result, error)
}

// Gateway runs filtered similarity searches and formats results as context.
type Gateway struct {
	store Store
}

// NewGateway creates a gateway over the given vector store.
func NewGateway(s Store) *Gateway {
	return &Gateway{store: s}
}

// Options configures a gateway search.
type Options struct {
	// K is the maximum number of results (default 5).
	K int
	// Filter constrains results by metadata. When InferFromQuery is set the
	// explicit filter is ignored.
	Filter QueryFilter
	// InferFromQuery derives the filter from keywords in the query text.
	InferFromQuery bool
	// ScoreThreshold drops results below this cosine similarity.
	ScoreThreshold float64
}

// Search runs a top-k similarity search within a collection.
func (g *Gateway) Search(ctx context.Context, collection, query string, opts Options) ([]store.Result, error) {
	filter := opts.Filter
	if opts.InferFromQuery {
		filter = InferFilter(query)
	}

	results, err := g.store.Query(ctx, collection, query, store.QueryOptions{
		K:              opts.K,
		Filter:         filter.toStoreFilter(),
		ScoreThreshold: opts.ScoreThreshold,
	})
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", collection, err)
	}
	return results, nil
}

// Context runs Search and joins the result texts with blank lines, the shape
// answer synthesis embeds into its system instruction.
func (g *Gateway) Context(ctx context.Context, collection, query string, opts Options) (string, error) {
	results, err := g.Search(ctx, collection, query, opts)
	if err != nil {
		return "", err
	}
	return FormatContext(results), nil
}

// FormatContext concatenates result texts with a blank-line separator.
func FormatContext(results []store.Result) string {
	texts := make([]string, 0, len(results))
	for _, r := range results {
		texts = append(texts, r.Content)
	}
	return strings.Join(texts, "\n\n")
}
