// Package websearch provides web search providers for retrieval grounding.
package websearch

import "context"

// Result is a single web search hit.
type Result struct {
	Title   string
	URL     string
	Content string
}

// Searcher runs a web search and returns scored results, best first.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
}
