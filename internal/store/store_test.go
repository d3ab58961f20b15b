// Package store provides integration tests for SurrealDB operations.
package store

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const testDimension = 8

var (
	testDB        *Client
	testContainer testcontainers.Container
)

// TestMain sets up and tears down the SurrealDB container for all tests.
func TestMain(m *testing.M) {
	// Disable ryuk (cleanup container) as it can cause issues in some environments
	os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")

	ctx := context.Background()

	var err error
	testContainer, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "surrealdb/surrealdb:v3.0.0-beta.1",
			ExposedPorts: []string{"8000/tcp"},
			Cmd:          []string{"start", "--log", "info", "--user", "root", "--pass", "root"},
			WaitingFor:   wait.ForLog("Started web server").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		log.Fatalf("Failed to start SurrealDB container: %v", err)
	}

	host, err := testContainer.Host(ctx)
	if err != nil {
		log.Fatalf("Failed to get container host: %v", err)
	}
	// Workaround: testcontainers may return "null" as host in some environments
	if host == "" || host == "null" {
		host = "localhost"
	}
	mappedPort, err := testContainer.MappedPort(ctx, "8000")
	if err != nil {
		log.Fatalf("Failed to get mapped port: %v", err)
	}

	testDB, err = NewClient(ctx, Config{
		URL:       fmt.Sprintf("ws://%s:%s/rpc", host, mappedPort.Port()),
		Namespace: "test",
		Database:  "test",
		Username:  "root",
		Password:  "root",
		AuthLevel: "root",
	}, nil)
	if err != nil {
		log.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := testDB.InitSchema(ctx, testDimension); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	code := m.Run()

	_ = testDB.Close(ctx)
	_ = testContainer.Terminate(ctx)

	os.Exit(code)
}

// stubEmbedder produces deterministic vectors: identical texts embed
// identically, so exact-text queries rank their document first.
type stubEmbedder struct{}

func (stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return stubVector(text), nil
}

func (stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = stubVector(t)
	}
	return out, nil
}

func stubVector(text string) []float32 {
	v := make([]float32, testDimension)
	for i, b := range []byte(text) {
		v[i%testDimension] += float32(b) / 255.0
	}
	// Avoid the zero vector for empty text.
	v[0] += 1
	return v
}

func newTestStore() *VectorStore {
	return NewVectorStore(testDB, stubEmbedder{})
}

func TestUpsertAndCount(t *testing.T) {
	ctx := context.Background()
	vs := newTestStore()
	t.Cleanup(func() { _ = vs.Delete(ctx, "count_test") })

	n, err := vs.Upsert(ctx, "count_test", []Document{
		{Content: "first document"},
		{Content: "second document", Metadata: Metadata{Tags: []string{"go"}}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	count, err := vs.Count(ctx, "count_test")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestUpsertEmptyIsNoop(t *testing.T) {
	ctx := context.Background()
	vs := newTestStore()

	n, err := vs.Upsert(ctx, "noop_test", nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestQueryRanksExactMatchFirst(t *testing.T) {
	ctx := context.Background()
	vs := newTestStore()
	t.Cleanup(func() { _ = vs.Delete(ctx, "rank_test") })

	_, err := vs.Upsert(ctx, "rank_test", []Document{
		{Content: "surrealdb vector search"},
		{Content: "completely different topic"},
	})
	require.NoError(t, err)

	results, err := vs.Query(ctx, "rank_test", "surrealdb vector search", QueryOptions{K: 2})
	require.NoError(t, err)
	require.NotEmpty(t, results)

	assert.Equal(t, "surrealdb vector search", results[0].Content)
	assert.InDelta(t, 1.0, results[0].Score, 0.001)
	assert.Equal(t, "rank_test", results[0].Collection)
}

func TestQueryRespectsCollectionPartition(t *testing.T) {
	ctx := context.Background()
	vs := newTestStore()
	t.Cleanup(func() {
		_ = vs.Delete(ctx, "part_a")
		_ = vs.Delete(ctx, "part_b")
	})

	_, err := vs.Upsert(ctx, "part_a", []Document{{Content: "alpha only"}})
	require.NoError(t, err)
	_, err = vs.Upsert(ctx, "part_b", []Document{{Content: "beta only"}})
	require.NoError(t, err)

	results, err := vs.Query(ctx, "part_a", "beta only", QueryOptions{K: 5})
	require.NoError(t, err)
	for _, r := range results {
		assert.Equal(t, "part_a", r.Collection)
		assert.NotEqual(t, "beta only", r.Content)
	}
}

func TestQueryWithMetadataFilters(t *testing.T) {
	ctx := context.Background()
	vs := newTestStore()
	t.Cleanup(func() { _ = vs.Delete(ctx, "filter_test") })

	_, err := vs.Upsert(ctx, "filter_test", []Document{
		{Content: "python readme chunk", Metadata: Metadata{
			Title: "snakeproject", ContentType: "readme", Tags: []string{"python"},
		}},
		{Content: "python description", Metadata: Metadata{
			Title: "snakeproject", ContentType: "description", Tags: []string{"python"},
		}},
		{Content: "go readme chunk", Metadata: Metadata{
			Title: "gopherproject", ContentType: "readme", Tags: []string{"go"},
		}},
	})
	require.NoError(t, err)

	results, err := vs.Query(ctx, "filter_test", "python readme chunk", QueryOptions{
		K: 5,
		Filter: Filter{
			Equals:   map[string]string{"content_type": "readme"},
			Overlaps: map[string][]string{"tags": {"python"}},
		},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "python readme chunk", results[0].Content)

	// Case-insensitive title substring.
	results, err = vs.Query(ctx, "filter_test", "go readme chunk", QueryOptions{
		K:      5,
		Filter: Filter{Contains: map[string]string{"title": "GOPHER"}},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "gopherproject", results[0].Metadata.Title)
}

func TestQueryScoreThreshold(t *testing.T) {
	ctx := context.Background()
	vs := newTestStore()
	t.Cleanup(func() { _ = vs.Delete(ctx, "threshold_test") })

	_, err := vs.Upsert(ctx, "threshold_test", []Document{{Content: "exact match text"}})
	require.NoError(t, err)

	results, err := vs.Query(ctx, "threshold_test", "exact match text", QueryOptions{
		K:              5,
		ScoreThreshold: 0.99,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	results, err = vs.Query(ctx, "threshold_test", "exact match text", QueryOptions{
		K:              5,
		ScoreThreshold: 1.01,
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestDeleteCollection(t *testing.T) {
	ctx := context.Background()
	vs := newTestStore()

	_, err := vs.Upsert(ctx, "delete_test", []Document{{Content: "doomed"}})
	require.NoError(t, err)

	require.NoError(t, vs.Delete(ctx, "delete_test"))

	count, err := vs.Count(ctx, "delete_test")
	require.NoError(t, err)
	assert.Zero(t, count)

	// Deleting a collection that never existed is a no-op.
	assert.NoError(t, vs.Delete(ctx, "never_existed"))
}
