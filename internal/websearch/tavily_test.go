package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTavilyRequiresAPIKey(t *testing.T) {
	_, err := NewTavily("")
	require.Error(t, err)
}

func TestTavilySearch(t *testing.T) {
	var gotReq tavilyRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"title": "Go 1.25 Release Notes", "url": "https://go.dev/doc/go1.25", "content": "Go 1.25 adds ...", "score": 0.93},
				{"title": "Go Blog", "url": "https://go.dev/blog", "content": "Announcements", "score": 0.71},
			},
		})
	}))
	defer srv.Close()

	tv, err := NewTavily("test-key")
	require.NoError(t, err)
	tv.WithBaseURL(srv.URL)

	results, err := tv.Search(context.Background(), "go 1.25 release notes", 3)
	require.NoError(t, err)

	assert.Equal(t, "test-key", gotReq.APIKey)
	assert.Equal(t, "go 1.25 release notes", gotReq.Query)
	assert.Equal(t, 3, gotReq.MaxResults)

	require.Len(t, results, 2)
	assert.Equal(t, "Go 1.25 Release Notes", results[0].Title)
	assert.Equal(t, "https://go.dev/doc/go1.25", results[0].URL)
	assert.Equal(t, "Go 1.25 adds ...", results[0].Content)
}

func TestTavilySearchDefaultsMaxResults(t *testing.T) {
	var gotReq tavilyRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
	}))
	defer srv.Close()

	tv, err := NewTavily("test-key")
	require.NoError(t, err)
	tv.WithBaseURL(srv.URL)

	results, err := tv.Search(context.Background(), "anything", 0)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 5, gotReq.MaxResults)
}

func TestTavilySearchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	tv, err := NewTavily("bad-key")
	require.NoError(t, err)
	tv.WithBaseURL(srv.URL)

	_, err = tv.Search(context.Background(), "anything", 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
