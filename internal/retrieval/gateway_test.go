package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groundhog-ai/groundhog/internal/store"
)

type fakeStore struct {
	gotCollection string
	gotQuery      string
	gotOpts       store.QueryOptions
	results       []store.Result
	err           error
}

func (f *fakeStore) Query(_ context.Context, collection, query string, opts store.QueryOptions) ([]store.Result, error) {
	f.gotCollection = collection
	f.gotQuery = query
	f.gotOpts = opts
	return f.results, f.err
}

func TestGatewaySearchExplicitFilter(t *testing.T) {
	fs := &fakeStore{results: []store.Result{{Content: "a"}, {Content: "b"}}}
	g := NewGateway(fs)

	results, err := g.Search(context.Background(), "projects", "vector databases", Options{
		K: 3,
		Filter: QueryFilter{
			ContentType:   "readme",
			TitleContains: "know",
			Tags:          []string{"go"},
		},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "projects", fs.gotCollection)
	assert.Equal(t, "vector databases", fs.gotQuery)
	assert.Equal(t, 3, fs.gotOpts.K)
	assert.Equal(t, "readme", fs.gotOpts.Filter.Equals["content_type"])
	assert.Equal(t, "know", fs.gotOpts.Filter.Contains["title"])
	assert.Equal(t, []string{"go"}, fs.gotOpts.Filter.Overlaps["tags"])
}

func TestGatewaySearchInferredFilter(t *testing.T) {
	fs := &fakeStore{}
	g := NewGateway(fs)

	_, err := g.Search(context.Background(), "projects", "python readme", Options{InferFromQuery: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"python"}, fs.gotOpts.Filter.Overlaps["tags"])
	assert.Equal(t, "readme", fs.gotOpts.Filter.Equals["content_type"])
}

func TestGatewayContextJoinsWithBlankLine(t *testing.T) {
	fs := &fakeStore{results: []store.Result{
		{Content: "first chunk"},
		{Content: "second chunk"},
	}}
	g := NewGateway(fs)

	got, err := g.Context(context.Background(), "resume", "education", Options{})
	require.NoError(t, err)
	assert.Equal(t, "first chunk\n\nsecond chunk", got)
}

func TestGatewayContextEmptyResults(t *testing.T) {
	g := NewGateway(&fakeStore{})
	got, err := g.Context(context.Background(), "resume", "anything", Options{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGatewaySearchError(t *testing.T) {
	g := NewGateway(&fakeStore{err: errors.New("boom")})
	_, err := g.Search(context.Background(), "projects", "q", Options{})
	require.Error(t, err)
}
