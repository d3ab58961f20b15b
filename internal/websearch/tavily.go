package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/groundhog-ai/groundhog/internal/metrics"
)

const defaultTavilyURL = "https://api.tavily.com/search"

// Tavily is a Searcher backed by the Tavily search API.
type Tavily struct {
	apiKey  string
	baseURL string
	client  *http.Client
	stats   *metrics.Collector
}

// NewTavily creates a Tavily searcher. The API key must be set; search is a
// hard capability and misconfiguration should fail at startup, not mid-turn.
func NewTavily(apiKey string) (*Tavily, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("tavily: missing API key")
	}
	return &Tavily{
		apiKey:  apiKey,
		baseURL: defaultTavilyURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// WithBaseURL overrides the API endpoint. Testing only.
func (t *Tavily) WithBaseURL(url string) *Tavily {
	t.baseURL = url
	return t
}

// WithMetrics attaches a metrics collector recording search timings.
func (t *Tavily) WithMetrics(c *metrics.Collector) *Tavily {
	t.stats = c
	return t
}

type tavilyRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

// Search runs a Tavily search and returns up to maxResults hits.
func (t *Tavily) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	start := time.Now()
	defer func() {
		if t.stats != nil {
			t.stats.RecordTiming(metrics.OpWebSearch, time.Since(start))
		}
	}()

	if maxResults <= 0 {
		maxResults = 5
	}

	body, err := json.Marshal(tavilyRequest{
		APIKey:     t.apiKey,
		Query:      query,
		MaxResults: maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("tavily: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("tavily: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("tavily: status %d: %s", resp.StatusCode, msg)
	}

	var parsed tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("tavily: decode response: %w", err)
	}

	results := make([]Result, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		results = append(results, Result{Title: r.Title, URL: r.URL, Content: r.Content})
	}
	return results, nil
}
